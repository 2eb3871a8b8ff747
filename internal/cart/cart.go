// Package cart implements the in-progress sale: line items keyed by product,
// stock-aware quantity edits, and totals.
package cart

import (
	"errors"

	"tillpoint/backend/internal/domain"
)

// TaxRate is the flat rate applied to every sale. The tax_rate setting stored
// alongside the catalog is not consulted here.
const TaxRate = 0.085

var (
	ErrOutOfStock        = errors.New("product is out of stock")
	ErrInsufficientStock = errors.New("requested quantity exceeds available stock")
)

// Item is one cart line. Total is always Quantity * UnitPrice, maintained on
// every edit.
type Item struct {
	Product  domain.Product
	Quantity int
	Total    float64
}

// Totals is the price breakdown for the current cart contents.
type Totals struct {
	Subtotal float64
	Tax      float64
	Total    float64
}

// Cart holds an in-progress sale for one request. It is not safe for
// concurrent use; each checkout builds its own.
type Cart struct {
	items    []Item
	customer *domain.Customer
}

func New() *Cart {
	return &Cart{}
}

// Add puts one unit of product in the cart. Adding a product already in the
// cart bumps its quantity instead, subject to the same stock ceiling.
func (c *Cart) Add(product domain.Product) error {
	if product.CurrentStock <= 0 {
		return ErrOutOfStock
	}
	for i := range c.items {
		if c.items[i].Product.ID == product.ID {
			return c.UpdateQuantity(product.ID, c.items[i].Quantity+1)
		}
	}
	c.items = append(c.items, Item{
		Product:  product,
		Quantity: 1,
		Total:    product.UnitPrice,
	})
	return nil
}

// UpdateQuantity sets the quantity of a line. A quantity of zero or less
// removes the line; a quantity above the product's current stock is rejected
// and the line keeps its previous quantity.
func (c *Cart) UpdateQuantity(productID int64, quantity int) error {
	if quantity <= 0 {
		c.Remove(productID)
		return nil
	}
	for i := range c.items {
		if c.items[i].Product.ID == productID {
			if quantity > c.items[i].Product.CurrentStock {
				return ErrInsufficientStock
			}
			c.items[i].Quantity = quantity
			c.items[i].Total = float64(quantity) * c.items[i].Product.UnitPrice
			return nil
		}
	}
	return nil
}

// Remove drops a line. Removing a product that is not in the cart is a no-op.
func (c *Cart) Remove(productID int64) {
	for i := range c.items {
		if c.items[i].Product.ID == productID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

// Clear empties the cart and drops the selected customer.
func (c *Cart) Clear() {
	c.items = nil
	c.customer = nil
}

func (c *Cart) SelectCustomer(customer *domain.Customer) {
	c.customer = customer
}

func (c *Cart) Customer() *domain.Customer {
	return c.customer
}

func (c *Cart) Items() []Item {
	return c.items
}

func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

// Totals runs raw float arithmetic; callers round for display only.
func (c *Cart) Totals() Totals {
	var subtotal float64
	for _, item := range c.items {
		subtotal += item.Total
	}
	tax := subtotal * TaxRate
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal + tax,
	}
}
