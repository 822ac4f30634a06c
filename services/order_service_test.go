package services

import (
	"context"
	"testing"
	"time"

	"medcart/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const customerID = "user-1"

type orderFixture struct {
	users     *fakeUsers
	addresses *fakeAddresses
	catalog   *fakeCatalog
	coupons   *fakeCoupons
	orders    *fakeOrders
	notifier  *fakeNotifier
	svc       *OrderService
}

func newOrderFixture() *orderFixture {
	f := &orderFixture{
		users: newFakeUsers(
			models.User{ID: customerID, Email: "asha@example.com", FullName: "Asha Rao", Role: models.RoleCustomer},
			models.User{ID: "user-2", Email: "ravi@example.com", Role: models.RoleCustomer},
		),
		addresses: newFakeAddresses(models.Address{
			ID: "addr-1", UserID: customerID, FullName: "Asha Rao", AddressLine1: "12 MG Road",
			City: "Bengaluru", State: "Karnataka", PostalCode: "560001", PhoneNumber: "9876543210",
			Latitude: floatPtr(12.97), Longitude: floatPtr(77.59),
		}),
		catalog: newFakeCatalog(
			models.CatalogItem{ID: "p1", Kind: models.KindProduct, Name: "Thermometer", Price: 100, IsActive: true},
			models.CatalogItem{ID: "m1", Kind: models.KindMedicine, Name: "Paracetamol", Price: 25, IsActive: true},
			models.CatalogItem{ID: "p-old", Kind: models.KindProduct, Name: "Old stock", Price: 10, IsActive: false},
		),
		coupons: &fakeCoupons{coupons: map[string]models.Coupon{
			"SAVE10": {Code: "SAVE10", Discount: 10, Active: true},
		}},
		orders:   newFakeOrders(),
		notifier: &fakeNotifier{},
	}
	f.svc = NewOrderService(f.orders, f.catalog, f.addresses, f.users, NewCouponService(f.coupons, nil), f.notifier)
	return f
}

// p1 x1 + m1 x2 = 150
func basketLines() []models.OrderLine {
	return []models.OrderLine{
		{ProductID: strPtr("p1"), Quantity: 1, Price: 100},
		{MedicineID: strPtr("m1"), Quantity: 2, Price: 25},
	}
}

func TestCreateOrderCODWithCoupon(t *testing.T) {
	f := newOrderFixture()

	order, err := f.svc.Create(context.Background(), customerID, models.CreateOrderRequest{
		Address:       models.Address{ID: "addr-1"},
		TotalAmount:   193,
		PaymentMethod: models.PaymentMethodCOD,
		Items:         basketLines(),
		CouponCode:    "save10",
	})
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusPlaced, order.Status)
	assert.Equal(t, 150.0, order.Subtotal)
	assert.Equal(t, 15.0, order.Discount)
	assert.Equal(t, 49.0, order.DeliveryFee)
	assert.Equal(t, 193.0, order.TotalAmount)
	assert.Equal(t, "SAVE10", order.CouponCode)
	assert.Equal(t, "Bengaluru", order.Address.City)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "Thermometer", order.Items[0].Name)

	assert.Eventually(t, func() bool { return f.notifier.count() == 1 }, time.Second, 5*time.Millisecond)
}

func TestCreateOrderRejectsMismatchedTotal(t *testing.T) {
	f := newOrderFixture()

	_, err := f.svc.Create(context.Background(), customerID, models.CreateOrderRequest{
		Address:       models.Address{ID: "addr-1"},
		TotalAmount:   150,
		PaymentMethod: models.PaymentMethodCOD,
		Items:         basketLines(),
		CouponCode:    "SAVE10",
	})
	assert.ErrorIs(t, err, ErrAmountMismatch)
	assert.Empty(t, f.orders.orders)
}

func TestCreateOrderUsesCatalogPrices(t *testing.T) {
	f := newOrderFixture()

	lines := basketLines()
	lines[0].Price = 1

	// 150 + 49 + 9
	order, err := f.svc.Create(context.Background(), customerID, models.CreateOrderRequest{
		Address:       models.Address{ID: "addr-1"},
		TotalAmount:   208,
		PaymentMethod: models.PaymentMethodUPI,
		Items:         lines,
	})
	require.NoError(t, err)
	assert.Equal(t, 100.0, order.Items[0].UnitPrice)
	assert.Equal(t, models.OrderStatusPaymentPending, order.Status)

	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, 0, f.notifier.count())
}

func TestCreateOrderValidation(t *testing.T) {
	tests := []struct {
		name string
		req  models.CreateOrderRequest
	}{
		{
			name: "no items",
			req:  models.CreateOrderRequest{Address: models.Address{ID: "addr-1"}, TotalAmount: 10, PaymentMethod: "cod"},
		},
		{
			name: "unknown method",
			req:  models.CreateOrderRequest{Address: models.Address{ID: "addr-1"}, TotalAmount: 208, PaymentMethod: "wallet", Items: basketLines()},
		},
		{
			name: "inactive item",
			req: models.CreateOrderRequest{Address: models.Address{ID: "addr-1"}, TotalAmount: 78, PaymentMethod: "cod",
				Items: []models.OrderLine{{ProductID: strPtr("p-old"), Quantity: 2}}},
		},
		{
			name: "medicine id pointing at a product",
			req: models.CreateOrderRequest{Address: models.Address{ID: "addr-1"}, TotalAmount: 158, PaymentMethod: "cod",
				Items: []models.OrderLine{{MedicineID: strPtr("p1"), Quantity: 1}}},
		},
		{
			name: "zero quantity",
			req: models.CreateOrderRequest{Address: models.Address{ID: "addr-1"}, TotalAmount: 158, PaymentMethod: "cod",
				Items: []models.OrderLine{{ProductID: strPtr("p1"), Quantity: 0}}},
		},
		{
			name: "address of another user",
			req:  models.CreateOrderRequest{Address: models.Address{ID: "addr-9"}, TotalAmount: 208, PaymentMethod: "cod", Items: basketLines()},
		},
		{
			name: "missing address",
			req:  models.CreateOrderRequest{TotalAmount: 208, PaymentMethod: "cod", Items: basketLines()},
		},
		{
			name: "unknown coupon",
			req:  models.CreateOrderRequest{Address: models.Address{ID: "addr-1"}, TotalAmount: 208, PaymentMethod: "cod", Items: basketLines(), CouponCode: "NOPE"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newOrderFixture()
			_, err := f.svc.Create(context.Background(), customerID, tt.req)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Empty(t, f.orders.orders)
		})
	}
}

func TestGetOrderHidesOtherUsersOrders(t *testing.T) {
	f := newOrderFixture()
	order, err := f.svc.Create(context.Background(), customerID, models.CreateOrderRequest{
		Address: models.Address{ID: "addr-1"}, TotalAmount: 208, PaymentMethod: "card", Items: basketLines(),
	})
	require.NoError(t, err)

	got, err := f.svc.Get(context.Background(), customerID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	_, err = f.svc.Get(context.Background(), "user-2", order.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
