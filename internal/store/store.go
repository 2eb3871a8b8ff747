// Package store defines the persistence contract for the POS collections.
// The repository is an explicitly constructed handle passed to every
// component; there is no package-level store instance.
package store

import (
	"context"
	"errors"
	"time"

	"tillpoint/backend/internal/domain"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicate    = errors.New("duplicate record")
	ErrInvalidInput = errors.New("invalid input")
)

type Repository interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProductByID(ctx context.Context, id int64) (*domain.Product, error)
	CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	// UpdateProductStock overwrites the stock counter with the caller's
	// computed value. The read-modify-write sequence lives in the caller;
	// the store performs no atomic decrement.
	UpdateProductStock(ctx context.Context, id int64, newStock int) error
	CountProducts(ctx context.Context) (int, error)
	ListLowStockProducts(ctx context.Context, limit int) ([]domain.Product, error)

	ListCustomers(ctx context.Context) ([]domain.Customer, error)
	GetCustomerByID(ctx context.Context, id int64) (*domain.Customer, error)
	CreateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error)
	CountCustomers(ctx context.Context) (int, error)
	AddLoyaltyPoints(ctx context.Context, id int64, points int, purchasedAt time.Time) error

	CreateTransaction(ctx context.Context, tx domain.Transaction) (*domain.Transaction, error)
	ListTransactionsBetween(ctx context.Context, from time.Time, to time.Time, status string) ([]domain.Transaction, error)
	ListRecentTransactions(ctx context.Context, limit int) ([]domain.Transaction, error)

	ListSettings(ctx context.Context) ([]domain.Setting, error)
	GetSetting(ctx context.Context, key string) (*domain.Setting, error)
	PutSetting(ctx context.Context, key string, value string) (*domain.Setting, error)
}
