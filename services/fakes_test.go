package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"medcart/libs"
	"medcart/models"
	"medcart/repositories"
)

type fakeUsers struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newFakeUsers(users ...models.User) *fakeUsers {
	f := &fakeUsers{users: map[string]*models.User{}}
	for i := range users {
		u := users[i]
		f.users[u.ID] = &u
	}
	return f
}

func (f *fakeUsers) Create(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email {
			return repositories.ErrDuplicate
		}
	}
	user.ID = fmt.Sprintf("user-%d", len(f.users)+1)
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeUsers) ListCustomers(ctx context.Context, filter models.CustomerFilter) ([]models.User, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.User{}
	for _, u := range f.users {
		if u.Role == models.RoleCustomer {
			out = append(out, *u)
		}
	}
	return out, len(out), nil
}

func (f *fakeUsers) CountCustomers(ctx context.Context) (int, error) {
	_, n, err := f.ListCustomers(ctx, models.CustomerFilter{})
	return n, err
}

type fakeAddresses struct {
	mu    sync.Mutex
	items map[string]models.Address
}

func newFakeAddresses(addrs ...models.Address) *fakeAddresses {
	f := &fakeAddresses{items: map[string]models.Address{}}
	for _, a := range addrs {
		f.items[a.ID] = a
	}
	return f
}

func (f *fakeAddresses) ListByUser(ctx context.Context, userID string) ([]models.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Address{}
	for _, a := range f.items {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAddresses) Get(ctx context.Context, userID, id string) (*models.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.items[id]
	if !ok || a.UserID != userID {
		return nil, repositories.ErrNotFound
	}
	return &a, nil
}

func (f *fakeAddresses) Create(ctx context.Context, a *models.Address) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a.ID = fmt.Sprintf("addr-%d", len(f.items)+1)
	f.items[a.ID] = *a
	return nil
}

func (f *fakeAddresses) Update(ctx context.Context, a *models.Address) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if cur, ok := f.items[a.ID]; !ok || cur.UserID != a.UserID {
		return repositories.ErrNotFound
	}
	f.items[a.ID] = *a
	return nil
}

func (f *fakeAddresses) Delete(ctx context.Context, userID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if cur, ok := f.items[id]; !ok || cur.UserID != userID {
		return repositories.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

type fakeCatalog struct {
	mu    sync.Mutex
	items map[string]models.CatalogItem
}

func newFakeCatalog(items ...models.CatalogItem) *fakeCatalog {
	f := &fakeCatalog{items: map[string]models.CatalogItem{}}
	for _, it := range items {
		f.items[it.ID] = it
	}
	return f
}

func (f *fakeCatalog) List(ctx context.Context, filter models.CatalogFilter) ([]models.CatalogItem, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.CatalogItem{}
	for _, it := range f.items {
		if it.IsActive && (filter.Kind == "" || it.Kind == filter.Kind) {
			out = append(out, it)
		}
	}
	return out, len(out), nil
}

func (f *fakeCatalog) Get(ctx context.Context, id string) (*models.CatalogItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &it, nil
}

func (f *fakeCatalog) GetMany(ctx context.Context, ids []string) (map[string]models.CatalogItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[string]models.CatalogItem{}
	for _, id := range ids {
		if it, ok := f.items[id]; ok {
			out[id] = it
		}
	}
	return out, nil
}

func (f *fakeCatalog) Create(ctx context.Context, item *models.CatalogItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	item.ID = fmt.Sprintf("item-%d", len(f.items)+1)
	item.IsActive = true
	f.items[item.ID] = *item
	return nil
}

func (f *fakeCatalog) Update(ctx context.Context, item *models.CatalogItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[item.ID] = *item
	return nil
}

func (f *fakeCatalog) Deactivate(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[id]
	if !ok {
		return repositories.ErrNotFound
	}
	it.IsActive = false
	f.items[id] = it
	return nil
}

type fakeCoupons struct {
	mu      sync.Mutex
	coupons map[string]models.Coupon
	lookups int
}

func (f *fakeCoupons) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	c, ok := f.coupons[code]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &c, nil
}

type memCache struct {
	mu   sync.Mutex
	data map[string]interface{}
}

func newMemCache() *memCache {
	return &memCache{data: map[string]interface{}{}}
}

func (m *memCache) Get(ctx context.Context, key string, dest interface{}) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return false
	}
	switch d := dest.(type) {
	case *models.Coupon:
		*d = *(v.(*models.Coupon))
	case *models.GeocodedAddress:
		*d = v.(models.GeocodedAddress)
	case *idempotentReply:
		*d = v.(idempotentReply)
	default:
		return false
	}
	return true
}

func (m *memCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
}

func (m *memCache) Delete(ctx context.Context, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
}

type fakeOrders struct {
	mu     sync.Mutex
	orders map[string]*models.Order
	seq    int
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{orders: map[string]*models.Order{}}
}

func (f *fakeOrders) Create(ctx context.Context, order *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	order.ID = fmt.Sprintf("order-%d", f.seq)
	order.CreatedAt = time.Now()
	cp := *order
	f.orders[order.ID] = &cp
	return nil
}

func (f *fakeOrders) Get(ctx context.Context, id string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrders) SetGatewayOrderID(ctx context.Context, id, gatewayOrderID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return "", repositories.ErrNotFound
	}
	if o.GatewayOrderID == "" {
		o.GatewayOrderID = gatewayOrderID
	}
	return o.GatewayOrderID, nil
}

func (f *fakeOrders) UpdateStatus(ctx context.Context, id, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return repositories.ErrNotFound
	}
	o.Status = status
	return nil
}

func (f *fakeOrders) List(ctx context.Context, filter models.OrderFilter) ([]models.Order, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Order{}
	for _, o := range f.orders {
		if filter.Status == "" || o.Status == filter.Status {
			out = append(out, *o)
		}
	}
	return out, len(out), nil
}

func (f *fakeOrders) Summary(ctx context.Context) (*models.DashboardSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := &models.DashboardSummary{OrdersByStatus: map[string]int{}}
	for _, o := range f.orders {
		s.OrdersByStatus[o.Status]++
		s.TotalOrders++
		if o.Status == models.OrderStatusPaid {
			s.Revenue += o.TotalAmount
		}
	}
	return s, nil
}

func (f *fakeOrders) status(id string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.orders[id].Status
}

type fakePayments struct {
	mu       sync.Mutex
	payments map[string]models.Payment
}

func newFakePayments() *fakePayments {
	return &fakePayments{payments: map[string]models.Payment{}}
}

func paymentKey(orderID, status, pid string) string {
	return orderID + "|" + status + "|" + pid
}

func (f *fakePayments) Record(ctx context.Context, p *models.Payment) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := paymentKey(p.OrderID, p.Status, p.ProviderPaymentID)
	if _, ok := f.payments[key]; ok {
		return false, nil
	}
	p.ID = fmt.Sprintf("pay-%d", len(f.payments)+1)
	f.payments[key] = *p
	return true, nil
}

func (f *fakePayments) Find(ctx context.Context, orderID, status, pid string) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[paymentKey(orderID, status, pid)]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &p, nil
}

func (f *fakePayments) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.payments)
}

type fakeGateway struct {
	mu     sync.Mutex
	secret string
	calls  int
	err    error
	// created, when set, runs after an order is created and before it is returned.
	created func()
}

func (g *fakeGateway) KeyID() string { return "rzp_test_key" }

func (g *fakeGateway) CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string, notes map[string]string) (*libs.RazorpayOrder, error) {
	g.mu.Lock()
	if g.err != nil {
		g.mu.Unlock()
		return nil, g.err
	}
	g.calls++
	order := &libs.RazorpayOrder{ID: fmt.Sprintf("order_gw_%d", g.calls), Amount: amountPaise, Currency: currency, Receipt: receipt}
	created := g.created
	g.mu.Unlock()

	if created != nil {
		created()
	}
	return order, nil
}

func (g *fakeGateway) VerifySignature(gatewayOrderID, paymentID, signature string) bool {
	return libs.VerifyPaymentSignature(g.secret, gatewayOrderID, paymentID, signature)
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []string
}

func (n *fakeNotifier) SendOrderConfirmation(toEmail string, order models.Order) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, toEmail+":"+order.ID)
	return nil
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }
