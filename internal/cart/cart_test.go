package cart

import (
	"errors"
	"math"
	"testing"

	"tillpoint/backend/internal/domain"
)

func headphones() domain.Product {
	return domain.Product{ID: 1, SKU: "PROD-001", Name: "Wireless Bluetooth Headphones", UnitPrice: 99.99, CurrentStock: 25}
}

func mug() domain.Product {
	return domain.Product{ID: 2, SKU: "PROD-002", Name: "Coffee Mug - Ceramic", UnitPrice: 12.99, CurrentStock: 45}
}

func TestAddNewProduct(t *testing.T) {
	c := New()
	if err := c.Add(headphones()); err != nil {
		t.Fatalf("add: %v", err)
	}
	items := c.Items()
	if len(items) != 1 || items[0].Quantity != 1 || items[0].Total != 99.99 {
		t.Fatalf("unexpected items: %+v", items)
	}
}

func TestAddOutOfStockRejected(t *testing.T) {
	c := New()
	p := headphones()
	p.CurrentStock = 0
	if err := c.Add(p); !errors.Is(err, ErrOutOfStock) {
		t.Fatalf("expected ErrOutOfStock, got %v", err)
	}
	if !c.IsEmpty() {
		t.Fatal("cart should stay empty")
	}
}

func TestAddExistingIncrementsQuantity(t *testing.T) {
	c := New()
	p := headphones()
	if err := c.Add(p); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if err := c.Add(p); err != nil {
		t.Fatalf("second add: %v", err)
	}
	items := c.Items()
	if len(items) != 1 {
		t.Fatalf("expected one line, got %d", len(items))
	}
	if items[0].Quantity != 2 || math.Abs(items[0].Total-199.98) > 1e-9 {
		t.Fatalf("unexpected line: %+v", items[0])
	}
}

func TestAddAtStockCeilingRejected(t *testing.T) {
	c := New()
	p := headphones()
	p.CurrentStock = 1
	if err := c.Add(p); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := c.Add(p); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	if c.Items()[0].Quantity != 1 {
		t.Fatalf("quantity should be unchanged, got %d", c.Items()[0].Quantity)
	}
}

func TestUpdateQuantityZeroRemovesLine(t *testing.T) {
	c := New()
	if err := c.Add(headphones()); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := c.UpdateQuantity(1, 0); err != nil {
		t.Fatalf("update: %v", err)
	}
	if !c.IsEmpty() {
		t.Fatal("expected empty cart")
	}
}

func TestUpdateQuantityBeyondStockRejected(t *testing.T) {
	c := New()
	if err := c.Add(headphones()); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := c.UpdateQuantity(1, 26); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	if c.Items()[0].Quantity != 1 {
		t.Fatalf("quantity should keep previous value, got %d", c.Items()[0].Quantity)
	}
}

func TestUpdateQuantityMissingProductNoop(t *testing.T) {
	c := New()
	if err := c.UpdateQuantity(99, 3); err != nil {
		t.Fatalf("update on absent product: %v", err)
	}
}

func TestRemoveMissingProductNoop(t *testing.T) {
	c := New()
	if err := c.Add(headphones()); err != nil {
		t.Fatalf("add: %v", err)
	}
	c.Remove(42)
	if len(c.Items()) != 1 {
		t.Fatalf("expected one line, got %d", len(c.Items()))
	}
}

func TestClearDropsItemsAndCustomer(t *testing.T) {
	c := New()
	if err := c.Add(headphones()); err != nil {
		t.Fatalf("add: %v", err)
	}
	c.SelectCustomer(&domain.Customer{ID: 1, Name: "John Smith"})
	c.Clear()
	if !c.IsEmpty() {
		t.Fatal("expected empty cart")
	}
	if c.Customer() != nil {
		t.Fatal("expected customer cleared")
	}
}

func TestTotalsFlatTax(t *testing.T) {
	c := New()
	if err := c.Add(headphones()); err != nil {
		t.Fatalf("add headphones: %v", err)
	}
	if err := c.Add(mug()); err != nil {
		t.Fatalf("add mug: %v", err)
	}
	if err := c.UpdateQuantity(2, 2); err != nil {
		t.Fatalf("update mug quantity: %v", err)
	}

	totals := c.Totals()
	wantSubtotal := 99.99 + 2*12.99
	if math.Abs(totals.Subtotal-wantSubtotal) > 1e-9 {
		t.Fatalf("subtotal = %v, want %v", totals.Subtotal, wantSubtotal)
	}
	if math.Abs(totals.Tax-wantSubtotal*0.085) > 1e-9 {
		t.Fatalf("tax = %v, want %v", totals.Tax, wantSubtotal*0.085)
	}
	if math.Abs(totals.Total-wantSubtotal*1.085) > 1e-9 {
		t.Fatalf("total = %v, want %v", totals.Total, wantSubtotal*1.085)
	}
}

func TestTotalsKeepRawFloats(t *testing.T) {
	c := New()
	if err := c.Add(headphones()); err != nil {
		t.Fatalf("add: %v", err)
	}
	totals := c.Totals()
	// 99.99 * 0.085 is not a round cent amount; no rounding happens here.
	if math.Abs(totals.Tax-8.49915) > 1e-9 {
		t.Fatalf("tax = %v, want 8.49915", totals.Tax)
	}
	if math.Abs(totals.Total-108.48915) > 1e-9 {
		t.Fatalf("total = %v, want 108.48915", totals.Total)
	}
}

func TestEmptyCartTotalsZero(t *testing.T) {
	c := New()
	totals := c.Totals()
	if totals.Subtotal != 0 || totals.Tax != 0 || totals.Total != 0 {
		t.Fatalf("expected zero totals, got %+v", totals)
	}
}
