package services

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/franciscosanchezn/gin-pizza-orders/internal/catalog"
	"github.com/franciscosanchezn/gin-pizza-orders/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Mock OrderCache
type mockOrderCache struct {
	mu     sync.Mutex
	orders map[uint]models.Order
	gets   int
	getErr error
	setErr error
}

func newMockOrderCache() *mockOrderCache {
	return &mockOrderCache{orders: make(map[uint]models.Order)}
}

func (m *mockOrderCache) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if m.getErr != nil {
		return nil, m.getErr
	}
	order, ok := m.orders[id]
	if !ok {
		return nil, nil
	}
	return &order, nil
}

func (m *mockOrderCache) SetOrder(ctx context.Context, order models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.orders[order.ID] = order
	return nil
}

// Mock OrderEventPublisher
type mockPublisher struct {
	mu        sync.Mutex
	published []models.Order
	err       error
}

func (m *mockPublisher) PublishOrderPlaced(ctx context.Context, order models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, order)
	return nil
}

func newTestOrderService(t *testing.T) (OrderService, *mockOrderCache, *mockPublisher) {
	db := setupTestDB(t)
	cache := newMockOrderCache()
	events := &mockPublisher{}
	return NewOrderService(db, catalog.Default(), cache, events), cache, events
}

func TestPlaceOrder_NewCustomer(t *testing.T) {
	db := setupTestDB(t)
	svc := NewOrderService(db, catalog.Default(), nil, nil)

	order, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		CustomerName: "Alice",
		Email:        "a@x.com",
		Phone:        "555",
		PizzaID:      1,
		Quantity:     3,
	})
	require.NoError(t, err)

	assert.NotZero(t, order.ID)
	assert.Equal(t, "Margherita", order.PizzaName)
	assert.Equal(t, 597.0, order.TotalPrice)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, "a@x.com", order.Customer.Email)

	assert.Equal(t, int64(1), countRows(t, db, &models.Customer{}))
	assert.Equal(t, int64(1), countRows(t, db, &models.Order{}))

	var stored models.Order
	require.NoError(t, db.First(&stored, order.ID).Error)
	assert.Equal(t, order.CustomerID, stored.CustomerID)
	assert.Equal(t, models.OrderStatusPending, stored.Status)
}

func TestPlaceOrder_RepeatEmailReusesCustomer(t *testing.T) {
	db := setupTestDB(t)
	svc := NewOrderService(db, catalog.Default(), nil, nil)
	ctx := context.Background()

	first, err := svc.PlaceOrder(ctx, PlaceOrderRequest{CustomerName: "Alice", Email: "a@x.com", Phone: "555", PizzaID: 1, Quantity: 3})
	require.NoError(t, err)

	second, err := svc.PlaceOrder(ctx, PlaceOrderRequest{CustomerName: "Alice B.", Email: "a@x.com", Phone: "777", PizzaID: 2, Quantity: 1})
	require.NoError(t, err)

	assert.Equal(t, first.CustomerID, second.CustomerID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, int64(1), countRows(t, db, &models.Customer{}))
	assert.Equal(t, int64(2), countRows(t, db, &models.Order{}))

	var customer models.Customer
	require.NoError(t, db.First(&customer, first.CustomerID).Error)
	assert.Equal(t, "Alice B.", customer.Name)
	assert.Equal(t, "777", customer.Phone)
}

func TestPlaceOrder_UnknownPizzaIsFree(t *testing.T) {
	svc, _, _ := newTestOrderService(t)

	order, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		CustomerName: "Bob", Email: "b@x.com", PizzaID: 99, Quantity: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, order.TotalPrice)
	assert.Empty(t, order.PizzaName)
	assert.Equal(t, models.OrderStatusPending, order.Status)
}

func TestPlaceOrder_TotalIsQuantityTimesUnitPrice(t *testing.T) {
	svc, _, _ := newTestOrderService(t)
	menu := catalog.Default()

	for _, pizzaID := range []int{1, 2, 3, 4} {
		for _, quantity := range []int{1, 2, 7} {
			order, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
				CustomerName: "Carol", Email: "c@x.com", PizzaID: pizzaID, Quantity: quantity,
			})
			require.NoError(t, err)
			assert.Equal(t, float64(quantity)*menu.UnitPriceOf(pizzaID), order.TotalPrice)
		}
	}
}

func TestPlaceOrder_SnapshotSurvivesCatalogChange(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	order, err := NewOrderService(db, catalog.Default(), nil, nil).PlaceOrder(ctx, PlaceOrderRequest{
		CustomerName: "Dan", Email: "d@x.com", PizzaID: 1, Quantity: 2,
	})
	require.NoError(t, err)

	repriced := catalog.New(models.Pizza{ID: 1, Name: "Margherita Deluxe", Price: 500})
	stored, err := NewOrderService(db, repriced, nil, nil).CheckOrderStatus(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "Margherita", stored.PizzaName)
	assert.Equal(t, 398.0, stored.TotalPrice)
}

func TestPlaceOrder_FailedInsertRollsBackCustomer(t *testing.T) {
	db := setupTestDB(t)
	err := db.Callback().Create().Before("gorm:create").Register("test:fail_order_insert", func(tx *gorm.DB) {
		if tx.Statement.Table == "orders" {
			tx.AddError(errors.New("disk full"))
		}
	})
	require.NoError(t, err)

	svc := NewOrderService(db, catalog.Default(), nil, nil)
	_, err = svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		CustomerName: "Olga", Email: "o@x.com", PizzaID: 1, Quantity: 1,
	})
	assert.ErrorContains(t, err, "disk full")

	assert.Equal(t, int64(0), countRows(t, db, &models.Customer{}))
	assert.Equal(t, int64(0), countRows(t, db, &models.Order{}))
}

func TestPlaceOrder_CachesAndPublishes(t *testing.T) {
	svc, cache, events := newTestOrderService(t)

	order, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		CustomerName: "Eve", Email: "e@x.com", PizzaID: 3, Quantity: 1,
	})
	require.NoError(t, err)

	assert.Contains(t, cache.orders, order.ID)
	require.Len(t, events.published, 1)
	assert.Equal(t, order.ID, events.published[0].ID)
}

func TestPlaceOrder_SideChannelFailuresDoNotFailOrder(t *testing.T) {
	svc, cache, events := newTestOrderService(t)
	cache.setErr = errors.New("redis down")
	events.err = errors.New("broker down")

	order, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		CustomerName: "Frank", Email: "f@x.com", PizzaID: 2, Quantity: 1,
	})
	require.NoError(t, err)
	assert.NotZero(t, order.ID)
}

func TestCheckOrderStatus_NotFound(t *testing.T) {
	svc, _, _ := newTestOrderService(t)

	_, err := svc.CheckOrderStatus(context.Background(), 12345)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestCheckOrderStatus_ReadsThroughCache(t *testing.T) {
	db := setupTestDB(t)
	cache := newMockOrderCache()
	svc := NewOrderService(db, catalog.Default(), cache, nil)
	ctx := context.Background()

	order, err := NewOrderService(db, catalog.Default(), nil, nil).PlaceOrder(ctx, PlaceOrderRequest{
		CustomerName: "Gina", Email: "g@x.com", PizzaID: 1, Quantity: 1,
	})
	require.NoError(t, err)
	assert.NotContains(t, cache.orders, order.ID)

	found, err := svc.CheckOrderStatus(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "Gina", found.Customer.Name)
	assert.Contains(t, cache.orders, order.ID)

	// Served from cache even after the row is gone
	require.NoError(t, db.Delete(&models.Order{}, order.ID).Error)
	cached, err := svc.CheckOrderStatus(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, cached.ID)
}

func TestCheckOrderStatus_CachedOrderShowsCurrentCustomer(t *testing.T) {
	db := setupTestDB(t)
	cache := newMockOrderCache()
	svc := NewOrderService(db, catalog.Default(), cache, nil)
	ctx := context.Background()

	first, err := svc.PlaceOrder(ctx, PlaceOrderRequest{CustomerName: "Jane", Email: "j@x.com", Phone: "555", PizzaID: 1, Quantity: 1})
	require.NoError(t, err)
	require.Contains(t, cache.orders, first.ID)
	assert.Zero(t, cache.orders[first.ID].Customer.ID, "customer is not cached with the order")

	_, err = svc.PlaceOrder(ctx, PlaceOrderRequest{CustomerName: "Jane Doe", Email: "j@x.com", Phone: "777", PizzaID: 2, Quantity: 1})
	require.NoError(t, err)

	// Drop the row so only the cached copy can answer
	require.NoError(t, db.Delete(&models.Order{}, first.ID).Error)

	found, err := svc.CheckOrderStatus(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)
	assert.Equal(t, "Jane Doe", found.Customer.Name)
	assert.Equal(t, "777", found.Customer.Phone)
}

func TestCheckOrderStatus_CachedOrderWithoutCustomerFallsBack(t *testing.T) {
	svc, cache, _ := newTestOrderService(t)
	cache.orders[41] = models.Order{ID: 41, CustomerID: 999, Status: models.OrderStatusPending}

	_, err := svc.CheckOrderStatus(context.Background(), 41)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestCheckOrderStatus_CacheErrorFallsBackToDatabase(t *testing.T) {
	svc, cache, _ := newTestOrderService(t)
	ctx := context.Background()

	order, err := svc.PlaceOrder(ctx, PlaceOrderRequest{CustomerName: "Hal", Email: "h@x.com", PizzaID: 2, Quantity: 2})
	require.NoError(t, err)

	cache.getErr = errors.New("redis down")
	found, err := svc.CheckOrderStatus(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 498.0, found.TotalPrice)
}

func TestViewOrders_Pagination(t *testing.T) {
	db := setupTestDB(t)
	svc := NewOrderService(db, catalog.Default(), nil, nil)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		_, err := svc.PlaceOrder(ctx, PlaceOrderRequest{CustomerName: "Ivy", Email: "i@x.com", PizzaID: 1, Quantity: i + 1})
		require.NoError(t, err)
	}

	testCases := []struct {
		name        string
		page, size  int
		wantLen     int
		wantPages   int
		hasNext     bool
		hasPrevious bool
	}{
		{name: "first page", page: 0, size: 10, wantLen: 10, wantPages: 3, hasNext: true, hasPrevious: false},
		{name: "middle page", page: 1, size: 10, wantLen: 10, wantPages: 3, hasNext: true, hasPrevious: true},
		{name: "last page", page: 2, size: 10, wantLen: 5, wantPages: 3, hasNext: false, hasPrevious: true},
		{name: "out of range", page: 7, size: 10, wantLen: 0, wantPages: 3, hasNext: false, hasPrevious: true},
		{name: "exact fit", page: 0, size: 25, wantLen: 25, wantPages: 1, hasNext: false, hasPrevious: false},
		{name: "negative page", page: -1, size: 10, wantLen: 0, wantPages: 3, hasNext: true, hasPrevious: false},
		{name: "zero size", page: 0, size: 0, wantLen: 0, wantPages: 0, hasNext: true, hasPrevious: false},
		{name: "huge page", page: 1 << 62, size: 4, wantLen: 0, wantPages: 7, hasNext: false, hasPrevious: true},
		{name: "max page", page: math.MaxInt, size: 10, wantLen: 0, wantPages: 3, hasNext: false, hasPrevious: true},
		{name: "min page", page: math.MinInt, size: 10, wantLen: 0, wantPages: 3, hasNext: true, hasPrevious: false},
		{name: "huge size", page: 1, size: math.MaxInt, wantLen: 0, wantPages: 1, hasNext: false, hasPrevious: true},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			page, err := svc.ViewOrders(ctx, tt.page, tt.size)
			require.NoError(t, err)
			assert.Len(t, page.Orders, tt.wantLen)
			assert.LessOrEqual(t, len(page.Orders), max(tt.size, 0))
			assert.Equal(t, int64(25), page.TotalItems)
			assert.Equal(t, tt.wantPages, page.TotalPages)
			assert.Equal(t, tt.hasNext, page.HasNext)
			assert.Equal(t, tt.hasPrevious, page.HasPrevious)
		})
	}

	page, err := svc.ViewOrders(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 11, page.Orders[0].Quantity, "orders are listed in id order")
	assert.Equal(t, "Ivy", page.Orders[0].Customer.Name)
}

func TestViewOrders_Empty(t *testing.T) {
	svc, _, _ := newTestOrderService(t)

	page, err := svc.ViewOrders(context.Background(), 0, 10)
	require.NoError(t, err)
	assert.NotNil(t, page.Orders)
	assert.Empty(t, page.Orders)
	assert.Equal(t, 0, page.TotalPages)
	assert.False(t, page.HasNext)
	assert.False(t, page.HasPrevious)
}
