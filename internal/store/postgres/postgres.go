// Package postgres implements the repository against PostgreSQL through the
// pgx stdlib driver.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"tillpoint/backend/internal/domain"
	"tillpoint/backend/internal/store"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := ensureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func ensureSchema(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS products (
			id BIGSERIAL PRIMARY KEY,
			sku TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT '',
			unit_price DOUBLE PRECISION NOT NULL,
			cost_price DOUBLE PRECISION NOT NULL DEFAULT 0,
			barcode TEXT NOT NULL DEFAULT '',
			tax_category TEXT NOT NULL DEFAULT 'standard',
			supplier TEXT NOT NULL DEFAULT '',
			min_stock_level INTEGER NOT NULL DEFAULT 0,
			current_stock INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS customers (
			id BIGSERIAL PRIMARY KEY,
			customer_id TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			email TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			address TEXT NOT NULL DEFAULT '',
			customer_type TEXT NOT NULL DEFAULT 'regular',
			loyalty_points INTEGER NOT NULL DEFAULT 0,
			registration_date TIMESTAMPTZ NOT NULL,
			last_purchase TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id BIGSERIAL PRIMARY KEY,
			transaction_id TEXT NOT NULL UNIQUE,
			customer_id BIGINT,
			items JSONB NOT NULL,
			subtotal DOUBLE PRECISION NOT NULL,
			tax_amount DOUBLE PRECISION NOT NULL,
			discount_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
			total DOUBLE PRECISION NOT NULL,
			payment_method TEXT NOT NULL,
			status TEXT NOT NULL,
			ts TIMESTAMPTZ NOT NULL,
			cashier_id TEXT NOT NULL,
			notes TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS stock_adjustments (
			id BIGSERIAL PRIMARY KEY,
			product_id BIGINT NOT NULL,
			adjustment_type TEXT NOT NULL,
			quantity INTEGER NOT NULL,
			reason TEXT NOT NULL DEFAULT '',
			ts TIMESTAMPTZ NOT NULL,
			user_id TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS purchase_orders (
			id BIGSERIAL PRIMARY KEY,
			order_id TEXT NOT NULL UNIQUE,
			supplier TEXT NOT NULL,
			items JSONB NOT NULL,
			status TEXT NOT NULL,
			order_date TIMESTAMPTZ NOT NULL,
			expected_delivery TIMESTAMPTZ,
			total_cost DOUBLE PRECISION NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS settings (
			id BIGSERIAL PRIMARY KEY,
			key TEXT NOT NULL UNIQUE,
			value TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_ts ON transactions (ts)`,
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

const productColumns = `id, sku, name, description, category, unit_price, cost_price,
	barcode, tax_category, supplier, min_stock_level, current_stock, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.SKU, &p.Name, &p.Description, &p.Category, &p.UnitPrice,
		&p.CostPrice, &p.Barcode, &p.TaxCategory, &p.Supplier, &p.MinStockLevel,
		&p.CurrentStock, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 128)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return products, nil
}

func (s *Store) GetProductByID(ctx context.Context, id int64) (*domain.Product, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = $1
	`, id)

	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO products (sku, name, description, category, unit_price, cost_price,
			barcode, tax_category, supplier, min_stock_level, current_stock, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`, product.SKU, product.Name, product.Description, product.Category, product.UnitPrice,
		product.CostPrice, product.Barcode, product.TaxCategory, product.Supplier,
		product.MinStockLevel, product.CurrentStock, product.CreatedAt, product.UpdatedAt,
	).Scan(&product.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrDuplicate
		}
		return nil, err
	}

	return &product, nil
}

func (s *Store) UpdateProductStock(ctx context.Context, id int64, newStock int) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET current_stock = $2, updated_at = $3
		WHERE id = $1
	`, id, newStock, time.Now().UTC())
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) CountProducts(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&count)
	return count, err
}

func (s *Store) ListLowStockProducts(ctx context.Context, limit int) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE current_stock <= min_stock_level
		ORDER BY id
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0, limit)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return products, nil
}

const customerColumns = `id, customer_id, name, email, phone, address, customer_type,
	loyalty_points, registration_date, last_purchase`

func scanCustomer(row interface{ Scan(...any) error }) (domain.Customer, error) {
	var c domain.Customer
	var lastPurchase sql.NullTime
	err := row.Scan(&c.ID, &c.CustomerID, &c.Name, &c.Email, &c.Phone, &c.Address,
		&c.CustomerType, &c.LoyaltyPoints, &c.RegistrationDate, &lastPurchase)
	if lastPurchase.Valid {
		at := lastPurchase.Time
		c.LastPurchase = &at
	}
	return c, err
}

func (s *Store) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+customerColumns+`
		FROM customers
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := make([]domain.Customer, 0, 64)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return customers, nil
}

func (s *Store) GetCustomerByID(ctx context.Context, id int64) (*domain.Customer, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+customerColumns+`
		FROM customers
		WHERE id = $1
	`, id)

	c, err := scanCustomer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) CreateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error) {
	if customer.RegistrationDate.IsZero() {
		customer.RegistrationDate = time.Now().UTC()
	}
	if customer.CustomerType == "" {
		customer.CustomerType = domain.CustomerTypeRegular
	}

	var lastPurchase sql.NullTime
	if customer.LastPurchase != nil {
		lastPurchase = sql.NullTime{Time: *customer.LastPurchase, Valid: true}
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO customers (customer_id, name, email, phone, address, customer_type,
			loyalty_points, registration_date, last_purchase)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`, customer.CustomerID, customer.Name, customer.Email, customer.Phone, customer.Address,
		customer.CustomerType, customer.LoyaltyPoints, customer.RegistrationDate, lastPurchase,
	).Scan(&customer.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrDuplicate
		}
		return nil, err
	}

	return &customer, nil
}

func (s *Store) CountCustomers(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM customers`).Scan(&count)
	return count, err
}

func (s *Store) AddLoyaltyPoints(ctx context.Context, id int64, points int, purchasedAt time.Time) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE customers
		SET loyalty_points = loyalty_points + $2, last_purchase = $3
		WHERE id = $1
	`, id, points, purchasedAt.UTC())
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

const transactionColumns = `id, transaction_id, customer_id, items, subtotal, tax_amount,
	discount_amount, total, payment_method, status, ts, cashier_id, notes`

func scanTransaction(row interface{ Scan(...any) error }) (domain.Transaction, error) {
	var tx domain.Transaction
	var customerID sql.NullInt64
	var itemsJSON []byte
	err := row.Scan(&tx.ID, &tx.TransactionID, &customerID, &itemsJSON, &tx.Subtotal,
		&tx.TaxAmount, &tx.DiscountAmount, &tx.Total, &tx.PaymentMethod, &tx.Status,
		&tx.Timestamp, &tx.CashierID, &tx.Notes)
	if err != nil {
		return tx, err
	}
	if customerID.Valid {
		id := customerID.Int64
		tx.CustomerID = &id
	}
	if err := json.Unmarshal(itemsJSON, &tx.Items); err != nil {
		return tx, err
	}
	return tx, nil
}

func (s *Store) CreateTransaction(ctx context.Context, tx domain.Transaction) (*domain.Transaction, error) {
	if tx.Timestamp.IsZero() {
		tx.Timestamp = time.Now().UTC()
	}

	itemsJSON, err := json.Marshal(tx.Items)
	if err != nil {
		return nil, err
	}

	var customerID sql.NullInt64
	if tx.CustomerID != nil {
		customerID = sql.NullInt64{Int64: *tx.CustomerID, Valid: true}
	}

	err = s.db.QueryRowContext(ctx, `
		INSERT INTO transactions (transaction_id, customer_id, items, subtotal, tax_amount,
			discount_amount, total, payment_method, status, ts, cashier_id, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`, tx.TransactionID, customerID, itemsJSON, tx.Subtotal, tx.TaxAmount, tx.DiscountAmount,
		tx.Total, tx.PaymentMethod, tx.Status, tx.Timestamp, tx.CashierID, tx.Notes,
	).Scan(&tx.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrDuplicate
		}
		return nil, err
	}

	return &tx, nil
}

func (s *Store) ListTransactionsBetween(ctx context.Context, from time.Time, to time.Time, status string) ([]domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE ts >= $1 AND ts < $2
	`
	args := []any{from, to}
	if status != "" {
		query += ` AND status = $3`
		args = append(args, status)
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := make([]domain.Transaction, 0, 32)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return transactions, nil
}

func (s *Store) ListRecentTransactions(ctx context.Context, limit int) ([]domain.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		ORDER BY ts DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := make([]domain.Transaction, 0, limit)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return transactions, nil
}

func (s *Store) ListSettings(ctx context.Context) ([]domain.Setting, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, key, value, updated_at
		FROM settings
		ORDER BY key
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	settings := make([]domain.Setting, 0, 8)
	for rows.Next() {
		var setting domain.Setting
		if err := rows.Scan(&setting.ID, &setting.Key, &setting.Value, &setting.UpdatedAt); err != nil {
			return nil, err
		}
		settings = append(settings, setting)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return settings, nil
}

func (s *Store) GetSetting(ctx context.Context, key string) (*domain.Setting, error) {
	var setting domain.Setting
	err := s.db.QueryRowContext(ctx, `
		SELECT id, key, value, updated_at
		FROM settings
		WHERE key = $1
	`, key).Scan(&setting.ID, &setting.Key, &setting.Value, &setting.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

func (s *Store) PutSetting(ctx context.Context, key string, value string) (*domain.Setting, error) {
	var setting domain.Setting
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO settings (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
		RETURNING id, key, value, updated_at
	`, key, value, time.Now().UTC()).Scan(&setting.ID, &setting.Key, &setting.Value, &setting.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
