package domain

import "time"

// CustomerType classifies a customer for pricing and reporting purposes.
const (
	CustomerTypeRegular   = "regular"
	CustomerTypeVIP       = "vip"
	CustomerTypeWholesale = "wholesale"
)

const (
	TxStatusCompleted = "completed"
	TxStatusVoided    = "voided"
	TxStatusRefunded  = "refunded"
)

// PaymentMethodCash is the only payment method the checkout flow writes.
const PaymentMethodCash = "cash"

type Product struct {
	ID            int64     `json:"id"`
	SKU           string    `json:"sku"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	Category      string    `json:"category"`
	UnitPrice     float64   `json:"unit_price"`
	CostPrice     float64   `json:"cost_price"`
	Barcode       string    `json:"barcode,omitempty"`
	TaxCategory   string    `json:"tax_category"`
	Supplier      string    `json:"supplier,omitempty"`
	MinStockLevel int       `json:"min_stock_level"`
	CurrentStock  int       `json:"current_stock"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type Customer struct {
	ID               int64      `json:"id"`
	CustomerID       string     `json:"customer_id"`
	Name             string     `json:"name"`
	Email            string     `json:"email,omitempty"`
	Phone            string     `json:"phone,omitempty"`
	Address          string     `json:"address,omitempty"`
	CustomerType     string     `json:"customer_type"`
	LoyaltyPoints    int        `json:"loyalty_points"`
	RegistrationDate time.Time  `json:"registration_date"`
	LastPurchase     *time.Time `json:"last_purchase,omitempty"`
}

// TransactionItem is a denormalized snapshot of a product at sale time.
// No referential integrity is enforced back to the product collection.
type TransactionItem struct {
	ProductID int64   `json:"product_id"`
	SKU       string  `json:"sku"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Total     float64 `json:"total"`
	TaxRate   float64 `json:"tax_rate"`
}

type Transaction struct {
	ID             int64             `json:"id"`
	TransactionID  string            `json:"transaction_id"`
	CustomerID     *int64            `json:"customer_id,omitempty"`
	Items          []TransactionItem `json:"items"`
	Subtotal       float64           `json:"subtotal"`
	TaxAmount      float64           `json:"tax_amount"`
	DiscountAmount float64           `json:"discount_amount"`
	Total          float64           `json:"total"`
	PaymentMethod  string            `json:"payment_method"`
	Status         string            `json:"status"`
	Timestamp      time.Time         `json:"timestamp"`
	CashierID      string            `json:"cashier_id,omitempty"`
	Notes          string            `json:"notes,omitempty"`
}

// StockAdjustment is reserved schema: the collection exists but no flow
// writes or reads it yet.
type StockAdjustment struct {
	ID             int64     `json:"id"`
	ProductID      int64     `json:"product_id"`
	AdjustmentType string    `json:"adjustment_type"`
	Quantity       int       `json:"quantity"`
	Reason         string    `json:"reason"`
	Timestamp      time.Time `json:"timestamp"`
	UserID         string    `json:"user_id,omitempty"`
}

// PurchaseOrder is reserved schema, same as StockAdjustment.
type PurchaseOrder struct {
	ID           int64               `json:"id"`
	OrderID      string              `json:"order_id"`
	Supplier     string              `json:"supplier"`
	Status       string              `json:"status"`
	Items        []PurchaseOrderItem `json:"items"`
	OrderDate    time.Time           `json:"order_date"`
	ExpectedDate *time.Time          `json:"expected_date,omitempty"`
	ReceivedDate *time.Time          `json:"received_date,omitempty"`
	Total        float64             `json:"total"`
}

type PurchaseOrderItem struct {
	ProductID        int64   `json:"product_id"`
	SKU              string  `json:"sku"`
	Name             string  `json:"name"`
	OrderedQuantity  int     `json:"ordered_quantity"`
	ReceivedQuantity int     `json:"received_quantity"`
	UnitCost         float64 `json:"unit_cost"`
}

type Setting struct {
	ID        int64     `json:"id"`
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DashboardStats is the read-only aggregate behind the dashboard view,
// recomputed from the store on each load.
type DashboardStats struct {
	TodaySales         float64       `json:"today_sales"`
	TodayTransactions  int           `json:"today_transactions"`
	TotalProducts      int           `json:"total_products"`
	TotalCustomers     int           `json:"total_customers"`
	LowStockItems      []Product     `json:"low_stock_items"`
	RecentTransactions []Transaction `json:"recent_transactions"`
	GeneratedAt        time.Time     `json:"generated_at"`
}

type ProductCreateRequest struct {
	SKU           string  `json:"sku,omitempty"`
	Name          string  `json:"name"`
	Description   string  `json:"description,omitempty"`
	Category      string  `json:"category,omitempty"`
	UnitPrice     float64 `json:"unit_price"`
	CostPrice     float64 `json:"cost_price,omitempty"`
	Barcode       string  `json:"barcode,omitempty"`
	TaxCategory   string  `json:"tax_category,omitempty"`
	Supplier      string  `json:"supplier,omitempty"`
	MinStockLevel int     `json:"min_stock_level,omitempty"`
	CurrentStock  int     `json:"current_stock,omitempty"`
}

type CustomerCreateRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Address      string `json:"address,omitempty"`
	CustomerType string `json:"customer_type,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	ExpiresAt   string `json:"expires_at"`
}

// Actor identifies the authenticated user attached to a request context.
type Actor struct {
	Username string
	Role     string
}

type CheckoutLine struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type CheckoutRequest struct {
	CustomerID *int64         `json:"customer_id,omitempty"`
	Items      []CheckoutLine `json:"items"`
	Notes      string         `json:"notes,omitempty"`
}

type CheckoutResponse struct {
	Transaction  Transaction `json:"transaction"`
	PointsEarned int         `json:"points_earned"`
}

type SettingPutRequest struct {
	Value string `json:"value"`
}

type CashierCreateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type CashierUser struct {
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// View is one entry of the fixed path-to-view mapping. Five of the seven
// views are placeholders with no backing flow.
type View struct {
	Path   string `json:"path"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

const (
	ViewStatusActive     = "active"
	ViewStatusComingSoon = "coming_soon"
)
