// Package service holds the application operations behind the HTTP layer:
// catalog search, checkout, dashboard aggregation, and settings.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"tillpoint/backend/internal/cache"
	"tillpoint/backend/internal/cart"
	"tillpoint/backend/internal/domain"
	"tillpoint/backend/internal/store"
	"tillpoint/backend/internal/xid"
)

var ErrEmptyCart = errors.New("cart is empty")

const (
	dashboardCacheKey = "dashboard:stats"
	fallbackCashierID = "admin"
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

type Service struct {
	repo         store.Repository
	dashCache    cache.DashboardCache
	dashCacheTTL time.Duration

	now func() time.Time
}

func New(repo store.Repository, dashCache cache.DashboardCache, dashCacheTTL time.Duration) *Service {
	if dashCache == nil {
		dashCache = cache.NoopDashboardCache{}
	}
	if dashCacheTTL <= 0 {
		dashCacheTTL = 30 * time.Second
	}

	return &Service{
		repo:         repo,
		dashCache:    dashCache,
		dashCacheTTL: dashCacheTTL,
		now:          time.Now,
	}
}

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx)
}

// SearchProducts filters the catalog by case-insensitive substring match on
// name, SKU, and barcode. An empty query returns the whole catalog.
func (s *Service) SearchProducts(ctx context.Context, query string) ([]domain.Product, error) {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return products, nil
	}

	needle := strings.ToLower(query)
	matched := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), needle) ||
			strings.Contains(strings.ToLower(p.SKU), needle) ||
			strings.Contains(strings.ToLower(p.Barcode), needle) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

func (s *Service) CreateProduct(ctx context.Context, req domain.ProductCreateRequest) (domain.Product, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return domain.Product{}, fmt.Errorf("admin role required")
	}

	if strings.TrimSpace(req.Name) == "" || req.UnitPrice <= 0 {
		return domain.Product{}, store.ErrInvalidInput
	}
	sku := strings.TrimSpace(req.SKU)
	if sku == "" {
		sku = xid.New(xid.PrefixSKU)
	}
	taxCategory := req.TaxCategory
	if taxCategory == "" {
		taxCategory = "standard"
	}

	created, err := s.repo.CreateProduct(ctx, domain.Product{
		SKU:           sku,
		Name:          strings.TrimSpace(req.Name),
		Description:   req.Description,
		Category:      req.Category,
		UnitPrice:     req.UnitPrice,
		CostPrice:     req.CostPrice,
		Barcode:       req.Barcode,
		TaxCategory:   taxCategory,
		Supplier:      req.Supplier,
		MinStockLevel: req.MinStockLevel,
		CurrentStock:  req.CurrentStock,
	})
	if err != nil {
		return domain.Product{}, err
	}
	return *created, nil
}

func (s *Service) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	return s.repo.ListCustomers(ctx)
}

func (s *Service) CreateCustomer(ctx context.Context, req domain.CustomerCreateRequest) (domain.Customer, error) {
	if strings.TrimSpace(req.Name) == "" {
		return domain.Customer{}, store.ErrInvalidInput
	}
	customerType := req.CustomerType
	switch customerType {
	case "":
		customerType = domain.CustomerTypeRegular
	case domain.CustomerTypeRegular, domain.CustomerTypeVIP, domain.CustomerTypeWholesale:
	default:
		return domain.Customer{}, store.ErrInvalidInput
	}

	created, err := s.repo.CreateCustomer(ctx, domain.Customer{
		CustomerID:       xid.New(xid.PrefixCustomer),
		Name:             strings.TrimSpace(req.Name),
		Email:            req.Email,
		Phone:            req.Phone,
		Address:          req.Address,
		CustomerType:     customerType,
		RegistrationDate: s.now().UTC(),
	})
	if err != nil {
		return domain.Customer{}, err
	}
	return *created, nil
}

// Checkout replays the requested lines through a fresh cart against the
// current catalog, then performs three sequential writes: the transaction
// record, per-line stock decrements, and the customer's loyalty update. There
// is no surrounding database transaction; a failure partway leaves the earlier
// writes in place, matching the store's single-writer deployment shape.
func (s *Service) Checkout(ctx context.Context, req domain.CheckoutRequest) (domain.CheckoutResponse, error) {
	if len(req.Items) == 0 {
		return domain.CheckoutResponse{}, ErrEmptyCart
	}

	basket := cart.New()
	for _, line := range req.Items {
		if line.Quantity < 1 {
			return domain.CheckoutResponse{}, store.ErrInvalidInput
		}
		product, err := s.repo.GetProductByID(ctx, line.ProductID)
		if err != nil {
			return domain.CheckoutResponse{}, err
		}
		if err := basket.Add(*product); err != nil {
			return domain.CheckoutResponse{}, err
		}
		if err := basket.UpdateQuantity(product.ID, line.Quantity); err != nil {
			return domain.CheckoutResponse{}, err
		}
	}
	if basket.IsEmpty() {
		return domain.CheckoutResponse{}, ErrEmptyCart
	}

	var customer *domain.Customer
	if req.CustomerID != nil {
		found, err := s.repo.GetCustomerByID(ctx, *req.CustomerID)
		if err != nil {
			return domain.CheckoutResponse{}, err
		}
		customer = found
		basket.SelectCustomer(customer)
	}

	cashierID := fallbackCashierID
	if actor, ok := ActorFromContext(ctx); ok && actor.Username != "" {
		cashierID = actor.Username
	}

	totals := basket.Totals()
	items := make([]domain.TransactionItem, 0, len(basket.Items()))
	for _, line := range basket.Items() {
		items = append(items, domain.TransactionItem{
			ProductID: line.Product.ID,
			SKU:       line.Product.SKU,
			Name:      line.Product.Name,
			Quantity:  line.Quantity,
			UnitPrice: line.Product.UnitPrice,
			Total:     line.Total,
			TaxRate:   cart.TaxRate,
		})
	}

	tx := domain.Transaction{
		TransactionID: xid.New(xid.PrefixTransaction),
		CustomerID:    req.CustomerID,
		Items:         items,
		Subtotal:      totals.Subtotal,
		TaxAmount:     totals.Tax,
		Total:         totals.Total,
		PaymentMethod: domain.PaymentMethodCash,
		Status:        domain.TxStatusCompleted,
		Timestamp:     s.now().UTC(),
		CashierID:     cashierID,
		Notes:         req.Notes,
	}

	created, err := s.repo.CreateTransaction(ctx, tx)
	if err != nil {
		return domain.CheckoutResponse{}, fmt.Errorf("create transaction: %w", err)
	}

	for _, line := range basket.Items() {
		product, err := s.repo.GetProductByID(ctx, line.Product.ID)
		if err != nil {
			return domain.CheckoutResponse{}, fmt.Errorf("reread product %d: %w", line.Product.ID, err)
		}
		newStock := product.CurrentStock - line.Quantity
		if err := s.repo.UpdateProductStock(ctx, product.ID, newStock); err != nil {
			return domain.CheckoutResponse{}, fmt.Errorf("update stock for product %d: %w", product.ID, err)
		}
	}

	pointsEarned := 0
	if customer != nil {
		pointsEarned = int(math.Floor(totals.Total))
		if err := s.repo.AddLoyaltyPoints(ctx, customer.ID, pointsEarned, created.Timestamp); err != nil {
			return domain.CheckoutResponse{}, fmt.Errorf("add loyalty points: %w", err)
		}
	}

	return domain.CheckoutResponse{
		Transaction:  *created,
		PointsEarned: pointsEarned,
	}, nil
}

// DashboardStats aggregates today's completed sales, catalog counts, low
// stock, and the five most recent transactions. Today is the local calendar
// day of the server clock.
func (s *Service) DashboardStats(ctx context.Context) (domain.DashboardStats, error) {
	if cached, hit, err := s.dashCache.Get(ctx, dashboardCacheKey); err != nil {
		log.Printf("dashboard cache read failed: %v", err)
	} else if hit {
		return *cached, nil
	}

	now := s.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	todayTx, err := s.repo.ListTransactionsBetween(ctx, dayStart, dayEnd, domain.TxStatusCompleted)
	if err != nil {
		return domain.DashboardStats{}, err
	}
	var todaySales float64
	for _, tx := range todayTx {
		todaySales += tx.Total
	}

	totalProducts, err := s.repo.CountProducts(ctx)
	if err != nil {
		return domain.DashboardStats{}, err
	}
	totalCustomers, err := s.repo.CountCustomers(ctx)
	if err != nil {
		return domain.DashboardStats{}, err
	}
	lowStock, err := s.repo.ListLowStockProducts(ctx, 5)
	if err != nil {
		return domain.DashboardStats{}, err
	}
	recent, err := s.repo.ListRecentTransactions(ctx, 5)
	if err != nil {
		return domain.DashboardStats{}, err
	}

	stats := domain.DashboardStats{
		TodaySales:         todaySales,
		TodayTransactions:  len(todayTx),
		TotalProducts:      totalProducts,
		TotalCustomers:     totalCustomers,
		LowStockItems:      lowStock,
		RecentTransactions: recent,
		GeneratedAt:        now.UTC(),
	}

	if err := s.dashCache.Set(ctx, dashboardCacheKey, &stats, s.dashCacheTTL); err != nil {
		log.Printf("dashboard cache write failed: %v", err)
	}

	return stats, nil
}

func (s *Service) ListSettings(ctx context.Context) ([]domain.Setting, error) {
	return s.repo.ListSettings(ctx)
}

func (s *Service) GetSetting(ctx context.Context, key string) (domain.Setting, error) {
	setting, err := s.repo.GetSetting(ctx, key)
	if err != nil {
		return domain.Setting{}, err
	}
	return *setting, nil
}

func (s *Service) PutSetting(ctx context.Context, key string, value string) (domain.Setting, error) {
	if strings.TrimSpace(key) == "" {
		return domain.Setting{}, store.ErrInvalidInput
	}
	setting, err := s.repo.PutSetting(ctx, key, value)
	if err != nil {
		return domain.Setting{}, err
	}
	return *setting, nil
}
