// Package memory holds the in-memory repository used when no DATABASE_URL is
// configured, and as the test double throughout the codebase.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"tillpoint/backend/internal/domain"
	"tillpoint/backend/internal/store"
)

type Store struct {
	mu sync.RWMutex

	products  map[int64]domain.Product
	customers map[int64]domain.Customer
	// transactions are append-only: created once at checkout, never mutated.
	transactions  map[int64]domain.Transaction
	settingsByKey map[string]domain.Setting

	nextProductID     int64
	nextCustomerID    int64
	nextTransactionID int64
	nextSettingID     int64
}

func New() *Store {
	return &Store{
		products:      make(map[int64]domain.Product),
		customers:     make(map[int64]domain.Customer),
		transactions:  make(map[int64]domain.Transaction),
		settingsByKey: make(map[string]domain.Setting),
	}
}

func (s *Store) ListProducts(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		products = append(products, p)
	}
	slices.SortFunc(products, func(a, b domain.Product) int {
		return cmpInt64(a.ID, b.ID)
	})
	return products, nil
}

func (s *Store) GetProductByID(_ context.Context, id int64) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, exists := s.products[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	copyProduct := product
	return &copyProduct, nil
}

func (s *Store) CreateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.products {
		if existing.SKU == product.SKU {
			return nil, store.ErrDuplicate
		}
	}

	s.nextProductID++
	product.ID = s.nextProductID
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now

	s.products[product.ID] = product
	created := product
	return &created, nil
}

func (s *Store) UpdateProductStock(_ context.Context, id int64, newStock int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, exists := s.products[id]
	if !exists {
		return store.ErrNotFound
	}
	product.CurrentStock = newStock
	product.UpdatedAt = time.Now().UTC()
	s.products[id] = product
	return nil
}

func (s *Store) CountProducts(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products), nil
}

func (s *Store) ListLowStockProducts(_ context.Context, limit int) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	low := make([]domain.Product, 0, limit)
	for _, p := range s.products {
		if p.CurrentStock <= p.MinStockLevel {
			low = append(low, p)
		}
	}
	slices.SortFunc(low, func(a, b domain.Product) int {
		return cmpInt64(a.ID, b.ID)
	})
	if limit > 0 && len(low) > limit {
		low = low[:limit]
	}
	return low, nil
}

func (s *Store) ListCustomers(_ context.Context) ([]domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	customers := make([]domain.Customer, 0, len(s.customers))
	for _, c := range s.customers {
		customers = append(customers, cloneCustomer(c))
	}
	slices.SortFunc(customers, func(a, b domain.Customer) int {
		return cmpInt64(a.ID, b.ID)
	})
	return customers, nil
}

func (s *Store) GetCustomerByID(_ context.Context, id int64) (*domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	customer, exists := s.customers[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	copyCustomer := cloneCustomer(customer)
	return &copyCustomer, nil
}

func (s *Store) CreateCustomer(_ context.Context, customer domain.Customer) (*domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.customers {
		if existing.CustomerID == customer.CustomerID {
			return nil, store.ErrDuplicate
		}
	}

	s.nextCustomerID++
	customer.ID = s.nextCustomerID
	if customer.RegistrationDate.IsZero() {
		customer.RegistrationDate = time.Now().UTC()
	}
	if customer.CustomerType == "" {
		customer.CustomerType = domain.CustomerTypeRegular
	}

	s.customers[customer.ID] = cloneCustomer(customer)
	created := cloneCustomer(customer)
	return &created, nil
}

func (s *Store) CountCustomers(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.customers), nil
}

func (s *Store) AddLoyaltyPoints(_ context.Context, id int64, points int, purchasedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	customer, exists := s.customers[id]
	if !exists {
		return store.ErrNotFound
	}
	customer.LoyaltyPoints += points
	at := purchasedAt.UTC()
	customer.LastPurchase = &at
	s.customers[id] = customer
	return nil
}

func (s *Store) CreateTransaction(_ context.Context, tx domain.Transaction) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextTransactionID++
	tx.ID = s.nextTransactionID
	if tx.Timestamp.IsZero() {
		tx.Timestamp = time.Now().UTC()
	}

	s.transactions[tx.ID] = cloneTransaction(tx)
	created := cloneTransaction(tx)
	return &created, nil
}

func (s *Store) ListTransactionsBetween(_ context.Context, from time.Time, to time.Time, status string) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Transaction, 0, 32)
	for _, tx := range s.transactions {
		if tx.Timestamp.Before(from) || !tx.Timestamp.Before(to) {
			continue
		}
		if status != "" && tx.Status != status {
			continue
		}
		result = append(result, cloneTransaction(tx))
	}
	slices.SortFunc(result, func(a, b domain.Transaction) int {
		return cmpInt64(a.ID, b.ID)
	})
	return result, nil
}

func (s *Store) ListRecentTransactions(_ context.Context, limit int) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Transaction, 0, len(s.transactions))
	for _, tx := range s.transactions {
		result = append(result, cloneTransaction(tx))
	}
	slices.SortFunc(result, func(a, b domain.Transaction) int {
		if a.Timestamp.Equal(b.Timestamp) {
			return cmpInt64(b.ID, a.ID)
		}
		if a.Timestamp.After(b.Timestamp) {
			return -1
		}
		return 1
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *Store) ListSettings(_ context.Context) ([]domain.Setting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	settings := make([]domain.Setting, 0, len(s.settingsByKey))
	for _, setting := range s.settingsByKey {
		settings = append(settings, setting)
	}
	slices.SortFunc(settings, func(a, b domain.Setting) int {
		return strings.Compare(a.Key, b.Key)
	})
	return settings, nil
}

func (s *Store) GetSetting(_ context.Context, key string) (*domain.Setting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	setting, exists := s.settingsByKey[key]
	if !exists {
		return nil, store.ErrNotFound
	}
	copySetting := setting
	return &copySetting, nil
}

func (s *Store) PutSetting(_ context.Context, key string, value string) (*domain.Setting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	setting, exists := s.settingsByKey[key]
	if !exists {
		s.nextSettingID++
		setting = domain.Setting{ID: s.nextSettingID, Key: key}
	}
	setting.Value = value
	setting.UpdatedAt = time.Now().UTC()
	s.settingsByKey[key] = setting
	copySetting := setting
	return &copySetting, nil
}

func cmpInt64(a int64, b int64) int {
	if a == b {
		return 0
	}
	if a < b {
		return -1
	}
	return 1
}

func cloneTransaction(src domain.Transaction) domain.Transaction {
	dup := src
	items := make([]domain.TransactionItem, len(src.Items))
	copy(items, src.Items)
	dup.Items = items
	if src.CustomerID != nil {
		id := *src.CustomerID
		dup.CustomerID = &id
	}
	return dup
}

func cloneCustomer(src domain.Customer) domain.Customer {
	dup := src
	if src.LastPurchase != nil {
		at := *src.LastPurchase
		dup.LastPurchase = &at
	}
	return dup
}
