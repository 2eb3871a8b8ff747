package xid

import (
	"regexp"
	"testing"
)

func TestNewFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^TXN-[0-9A-Z]+-[0-9A-Z]{5}$`)
	for i := 0; i < 50; i++ {
		id := New(PrefixTransaction)
		if !pattern.MatchString(id) {
			t.Fatalf("unexpected id format: %s", id)
		}
	}
}

func TestNewPrefixes(t *testing.T) {
	for _, prefix := range []string{PrefixSKU, PrefixTransaction, PrefixCustomer, PrefixPurchaseOrder} {
		id := New(prefix)
		if id[:len(prefix)+1] != prefix+"-" {
			t.Fatalf("expected prefix %s-, got %s", prefix, id)
		}
	}
}

func TestNewNoImmediateCollision(t *testing.T) {
	seen := make(map[string]struct{}, 200)
	for i := 0; i < 200; i++ {
		id := New(PrefixCustomer)
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id generated: %s", id)
		}
		seen[id] = struct{}{}
	}
}
