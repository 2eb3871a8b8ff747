// Package seed loads the demo catalog into an empty store on first boot.
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tillpoint/backend/internal/domain"
	"tillpoint/backend/internal/store"
)

// Run populates demo products, customers, and settings. It is guarded by the
// product count alone: a store with any products at all is left untouched,
// even if customers or settings are missing.
func Run(ctx context.Context, repo store.Repository) error {
	count, err := repo.CountProducts(ctx)
	if err != nil {
		return fmt.Errorf("seed: count products: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, p := range demoProducts() {
		if _, err := repo.CreateProduct(ctx, p); err != nil {
			return fmt.Errorf("seed: create product %s: %w", p.SKU, err)
		}
	}
	for _, c := range demoCustomers() {
		if _, err := repo.CreateCustomer(ctx, c); err != nil {
			// A concurrent boot may have seeded the same customer already.
			if errors.Is(err, store.ErrDuplicate) {
				continue
			}
			return fmt.Errorf("seed: create customer %s: %w", c.CustomerID, err)
		}
	}
	for key, value := range demoSettings() {
		if _, err := repo.PutSetting(ctx, key, value); err != nil {
			return fmt.Errorf("seed: put setting %s: %w", key, err)
		}
	}
	return nil
}

func demoProducts() []domain.Product {
	return []domain.Product{
		{
			SKU:           "PROD-001",
			Name:          "Wireless Bluetooth Headphones",
			Description:   "High-quality wireless headphones with noise cancellation",
			Category:      "Electronics",
			UnitPrice:     99.99,
			CostPrice:     60.00,
			Barcode:       "1234567890123",
			TaxCategory:   "standard",
			Supplier:      "TechCorp",
			MinStockLevel: 10,
			CurrentStock:  25,
		},
		{
			SKU:           "PROD-002",
			Name:          "Coffee Mug - Ceramic",
			Description:   "Premium ceramic coffee mug, 12oz capacity",
			Category:      "Home & Kitchen",
			UnitPrice:     12.99,
			CostPrice:     7.50,
			Barcode:       "2345678901234",
			TaxCategory:   "standard",
			Supplier:      "KitchenWare Inc",
			MinStockLevel: 20,
			CurrentStock:  45,
		},
		{
			// Seeded below its minimum on purpose so the dashboard has a
			// low-stock row out of the box.
			SKU:           "PROD-003",
			Name:          "Notebook - A5 Lined",
			Description:   "Professional lined notebook, 200 pages",
			Category:      "Stationery",
			UnitPrice:     8.99,
			CostPrice:     4.50,
			Barcode:       "3456789012345",
			TaxCategory:   "standard",
			Supplier:      "Paper Plus",
			MinStockLevel: 30,
			CurrentStock:  15,
		},
		{
			SKU:           "PROD-004",
			Name:          "USB-C Cable - 6ft",
			Description:   "Fast charging USB-C cable, 6 feet length",
			Category:      "Electronics",
			UnitPrice:     19.99,
			CostPrice:     12.00,
			Barcode:       "4567890123456",
			TaxCategory:   "standard",
			Supplier:      "TechCorp",
			MinStockLevel: 15,
			CurrentStock:  35,
		},
		{
			SKU:           "PROD-005",
			Name:          "Desk Lamp - LED",
			Description:   "Adjustable LED desk lamp with touch controls",
			Category:      "Home & Office",
			UnitPrice:     45.99,
			CostPrice:     28.00,
			Barcode:       "5678901234567",
			TaxCategory:   "standard",
			Supplier:      "LightCorp",
			MinStockLevel: 8,
			CurrentStock:  12,
		},
	}
}

func demoCustomers() []domain.Customer {
	johnLast := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
	sarahLast := time.Date(2024, 1, 18, 0, 0, 0, 0, time.UTC)
	return []domain.Customer{
		{
			CustomerID:       "CUST-001",
			Name:             "John Smith",
			Email:            "john.smith@email.com",
			Phone:            "+1-555-0123",
			Address:          "123 Main St, City, State 12345",
			CustomerType:     domain.CustomerTypeRegular,
			LoyaltyPoints:    150,
			RegistrationDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			LastPurchase:     &johnLast,
		},
		{
			CustomerID:       "CUST-002",
			Name:             "Sarah Johnson",
			Email:            "sarah.j@email.com",
			Phone:            "+1-555-0456",
			Address:          "456 Oak Ave, City, State 12345",
			CustomerType:     domain.CustomerTypeVIP,
			LoyaltyPoints:    850,
			RegistrationDate: time.Date(2023, 11, 10, 0, 0, 0, 0, time.UTC),
			LastPurchase:     &sarahLast,
		},
	}
}

func demoSettings() map[string]string {
	return map[string]string{
		"tax_rate":        "8.5",
		"currency":        "USD",
		"company_name":    "My Store",
		"company_address": "123 Business St, City, State 12345",
		"company_phone":   "+1-555-STORE",
	}
}
