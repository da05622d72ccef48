package service

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"lojinha/internal/domain"
	"lojinha/internal/metrics"
	"lojinha/internal/repo"
)

// fakeDriver satisfies database/sql so services can begin and commit
// transactions against mock repositories that never touch the *sql.Tx.
type fakeDriver struct{}

func (fakeDriver) Open(string) (driver.Conn, error) { return fakeConn{}, nil }

type fakeConn struct{}

func (fakeConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("not supported") }
func (fakeConn) Close() error                        { return nil }
func (fakeConn) Begin() (driver.Tx, error)           { return fakeTx{}, nil }

type fakeTx struct{}

func (fakeTx) Commit() error   { return nil }
func (fakeTx) Rollback() error { return nil }

func init() {
	sql.Register("servicetest", fakeDriver{})
}

func testDB() *sql.DB {
	db, err := sql.Open("servicetest", "")
	if err != nil {
		panic(err)
	}
	return db
}

func testMetrics() *metrics.Metrics {
	return metrics.NewFor(prometheus.NewRegistry())
}

type mockPrincipalRepo struct {
	principals map[string]domain.Principal
}

func (m *mockPrincipalRepo) FindById(_ context.Context, id string) (*domain.Principal, error) {
	if p, ok := m.principals[id]; ok {
		return &p, nil
	}
	return nil, nil
}

type mockCustomerRepo struct {
	mu      sync.Mutex
	byEmail map[string]*domain.Customer
}

func newMockCustomerRepo() *mockCustomerRepo {
	return &mockCustomerRepo{byEmail: make(map[string]*domain.Customer)}
}

func (m *mockCustomerRepo) FindById(_ context.Context, id uuid.UUID) (*domain.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.byEmail {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}

func (m *mockCustomerRepo) FindOrCreateByEmail(_ context.Context, email, name string) (*domain.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.byEmail[email]; ok {
		return c, nil
	}
	c := &domain.Customer{ID: uuid.New(), Email: email, Name: name, CreatedAt: time.Now()}
	m.byEmail[email] = c
	return c, nil
}

func (m *mockCustomerRepo) add(c *domain.Customer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byEmail[c.Email] = c
}

type mockAddressRepo struct {
	addresses map[uuid.UUID]*domain.Address
}

func newMockAddressRepo() *mockAddressRepo {
	return &mockAddressRepo{addresses: make(map[uuid.UUID]*domain.Address)}
}

func (m *mockAddressRepo) FindById(_ context.Context, id uuid.UUID) (*domain.Address, error) {
	if a, ok := m.addresses[id]; ok {
		copied := *a
		return &copied, nil
	}
	return nil, nil
}

func (m *mockAddressRepo) ListByCustomer(_ context.Context, customerID uuid.UUID) ([]domain.Address, error) {
	var out []domain.Address
	for _, a := range m.addresses {
		if a.CustomerID == customerID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *mockAddressRepo) Create(_ context.Context, a *domain.Address) error {
	m.addresses[a.ID] = a
	return nil
}

func (m *mockAddressRepo) Update(_ context.Context, a *domain.Address) error {
	m.addresses[a.ID] = a
	return nil
}

type mockProductRepo struct {
	mu       sync.Mutex
	products map[uuid.UUID]*domain.Product
}

func newMockProductRepo() *mockProductRepo {
	return &mockProductRepo{products: make(map[uuid.UUID]*domain.Product)}
}

func (m *mockProductRepo) FindById(_ context.Context, id uuid.UUID) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.products[id]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, nil
}

func (m *mockProductRepo) List(_ context.Context) ([]domain.Product, error) { return nil, nil }

func (m *mockProductRepo) Create(_ context.Context, p *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[p.ID] = p
	return nil
}

func (m *mockProductRepo) UpdatePrice(_ context.Context, id uuid.UUID, price decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.products[id]; ok {
		p.Price = price
	}
	return nil
}

// mockCartRepo mirrors the SQL upsert semantics: merge-add clamped at the
// line cap, lines valued at the product's current price.
type mockCartRepo struct {
	mu       sync.Mutex
	products *mockProductRepo
	carts    map[uuid.UUID]*storedCart
	cleared  int
}

type storedCart struct {
	id    uuid.UUID
	lines []storedLine
}

type storedLine struct {
	productID uuid.UUID
	quantity  int
	addedAt   time.Time
}

func newMockCartRepo(products *mockProductRepo) *mockCartRepo {
	return &mockCartRepo{products: products, carts: make(map[uuid.UUID]*storedCart)}
}

func (m *mockCartRepo) GetOrCreate(_ context.Context, customerID uuid.UUID) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sc, ok := m.carts[customerID]
	if !ok {
		sc = &storedCart{id: uuid.New()}
		m.carts[customerID] = sc
	}

	cart := &domain.Cart{ID: sc.id, CustomerID: customerID}
	for _, line := range sc.lines {
		p := m.products.products[line.productID]
		cart.Items = append(cart.Items, domain.CartItem{
			ProductID:   line.productID,
			ProductName: p.Name,
			UnitPrice:   p.Price,
			Quantity:    line.quantity,
			AddedAt:     line.addedAt,
		})
	}
	return cart, nil
}

func (m *mockCartRepo) UpsertItem(_ context.Context, cartID, productID uuid.UUID, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, sc := range m.carts {
		if sc.id != cartID {
			continue
		}
		for i := range sc.lines {
			if sc.lines[i].productID == productID {
				q := sc.lines[i].quantity + quantity
				if q > domain.MaxLineQuantity {
					q = domain.MaxLineQuantity
				}
				sc.lines[i].quantity = q
				return nil
			}
		}
		sc.lines = append(sc.lines, storedLine{productID: productID, quantity: quantity, addedAt: time.Now()})
		return nil
	}
	return errors.New("cart not found")
}

func (m *mockCartRepo) RemoveItem(_ context.Context, cartID, productID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, sc := range m.carts {
		if sc.id != cartID {
			continue
		}
		for i := range sc.lines {
			if sc.lines[i].productID == productID {
				sc.lines = append(sc.lines[:i], sc.lines[i+1:]...)
				return nil
			}
		}
	}
	return nil
}

func (m *mockCartRepo) Clear(_ context.Context, _ *sql.Tx, cartID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, sc := range m.carts {
		if sc.id == cartID {
			sc.lines = nil
			m.cleared++
		}
	}
	return nil
}

type mockOrderRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*domain.Order
	seq    int
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{orders: make(map[uuid.UUID]*domain.Order)}
}

func (m *mockOrderRepo) Create(_ context.Context, _ *sql.Tx, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if order.IdempotencyKey != "" {
		for _, o := range m.orders {
			if o.IdempotencyKey == order.IdempotencyKey {
				return repo.ErrDuplicateKey
			}
		}
	}
	m.seq++
	order.Number = time.Now().Format("20060102") + "-" + padSeq(m.seq)
	copied := *order
	m.orders[order.ID] = &copied
	return nil
}

func padSeq(n int) string {
	s := ""
	for v := n; v > 0; v /= 10 {
		s = string(rune('0'+v%10)) + s
	}
	for len(s) < 6 {
		s = "0" + s
	}
	return s
}

func (m *mockOrderRepo) FindById(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o, ok := m.orders[id]; ok {
		copied := *o
		return &copied, nil
	}
	return nil, nil
}

func (m *mockOrderRepo) FindByIdempotencyKey(_ context.Context, key string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.IdempotencyKey == key {
			copied := *o
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *mockOrderRepo) ListByCustomer(_ context.Context, customerID uuid.UUID) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Order
	for _, o := range m.orders {
		if o.CustomerID == customerID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *mockOrderRepo) UpdateStatusFrom(_ context.Context, _ *sql.Tx, order *domain.Order, from domain.OrderStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.orders[order.ID]
	if !ok || stored.Status != from {
		return false, nil
	}
	stored.Status = order.Status
	stored.UpdatedAt = order.UpdatedAt
	stored.PaidAt = order.PaidAt
	stored.CanceledAt = order.CanceledAt
	return true, nil
}

func (m *mockOrderRepo) FindExpiredBoletoOrders(_ context.Context, _ time.Time) ([]domain.Order, error) {
	return nil, nil
}

type mockPaymentRepo struct {
	mu       sync.Mutex
	payments map[uuid.UUID]*domain.Payment
}

func newMockPaymentRepo() *mockPaymentRepo {
	return &mockPaymentRepo{payments: make(map[uuid.UUID]*domain.Payment)}
}

func (m *mockPaymentRepo) Create(_ context.Context, _ *sql.Tx, p *domain.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.payments {
		if existing.OrderID == p.OrderID {
			return errors.New("payment already exists for order")
		}
	}
	copied := *p
	m.payments[p.ID] = &copied
	return nil
}

func (m *mockPaymentRepo) FindByOrderId(_ context.Context, orderID uuid.UUID) (*domain.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.payments {
		if p.OrderID == orderID {
			copied := *p
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *mockPaymentRepo) FindByBoletoLine(_ context.Context, line string) (*domain.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.payments {
		if p.BoletoLine == line {
			copied := *p
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *mockPaymentRepo) UpdateStatus(_ context.Context, _ *sql.Tx, p *domain.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if stored, ok := m.payments[p.ID]; ok {
		stored.Status = p.Status
		stored.ProviderRef = p.ProviderRef
	}
	return nil
}

func (m *mockPaymentRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.payments)
}

type mockNotificationRepo struct {
	mu      sync.Mutex
	created []domain.Notification
}

func (m *mockNotificationRepo) Create(_ context.Context, n *domain.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, *n)
	return nil
}

func (m *mockNotificationRepo) ListByCustomer(_ context.Context, _ uuid.UUID) ([]domain.Notification, error) {
	return nil, nil
}

func (m *mockNotificationRepo) PurgeOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []domain.Notification
	var purged int64
	for _, n := range m.created {
		if n.CreatedAt.Before(cutoff) {
			purged++
			continue
		}
		kept = append(kept, n)
	}
	m.created = kept
	return purged, nil
}

func (m *mockNotificationRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.created)
}
