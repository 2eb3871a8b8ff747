// Package xid generates human-readable record identifiers in the form
// PREFIX-<base36 millisecond timestamp>-<base36 random suffix>, upper-cased.
// Uniqueness rests on collision probability only; the store enforces no
// constraint on these values.
package xid

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"
)

const (
	PrefixSKU           = "SKU"
	PrefixTransaction   = "TXN"
	PrefixCustomer      = "CUST"
	PrefixPurchaseOrder = "PO"
)

func New(prefix string) string {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)
	return strings.ToUpper(fmt.Sprintf("%s-%s-%s", prefix, ts, randomBase36(5)))
}

func randomBase36(length int) string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand should never fail; fall back to the clock so id
		// generation stays total.
		binary.BigEndian.PutUint64(buf, uint64(time.Now().UnixNano()))
	}
	n := new(big.Int).SetBytes(buf)
	encoded := n.Text(36)
	if len(encoded) < length {
		encoded = strings.Repeat("0", length-len(encoded)) + encoded
	}
	return encoded[:length]
}
