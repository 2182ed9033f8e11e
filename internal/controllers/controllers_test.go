package controllers

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/franciscosanchezn/gin-pizza-orders/internal/catalog"
	"github.com/franciscosanchezn/gin-pizza-orders/internal/models"
	"github.com/franciscosanchezn/gin-pizza-orders/internal/services"
	"github.com/franciscosanchezn/gin-pizza-orders/internal/web"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// Mock OrderService
type mockOrderService struct {
	mu       sync.Mutex
	placed   []services.PlaceOrderRequest
	orders   map[uint]models.Order
	lastPage [2]int
	err      error
}

func newMockOrderService() *mockOrderService {
	return &mockOrderService{orders: make(map[uint]models.Order)}
}

func (m *mockOrderService) PlaceOrder(ctx context.Context, req services.PlaceOrderRequest) (models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return models.Order{}, m.err
	}
	m.placed = append(m.placed, req)
	menu := catalog.Default()
	name, _ := menu.NameOf(req.PizzaID)
	order := models.Order{
		ID:         uint(len(m.placed)),
		CustomerID: 1,
		Customer:   models.Customer{ID: 1, Name: req.CustomerName, Email: req.Email, Phone: req.Phone},
		PizzaID:    req.PizzaID,
		PizzaName:  name,
		Quantity:   req.Quantity,
		TotalPrice: float64(req.Quantity) * menu.UnitPriceOf(req.PizzaID),
		Status:     models.OrderStatusPending,
	}
	m.orders[order.ID] = order
	return order, nil
}

func (m *mockOrderService) ViewOrders(ctx context.Context, page, size int) (models.OrderPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastPage = [2]int{page, size}
	if m.err != nil {
		return models.OrderPage{}, m.err
	}
	orders := []models.Order{}
	for id := uint(1); id <= uint(len(m.orders)); id++ {
		orders = append(orders, m.orders[id])
	}
	return models.OrderPage{
		Orders:      orders,
		CurrentPage: page,
		PageSize:    size,
		TotalPages:  1,
		TotalItems:  int64(len(orders)),
	}, nil
}

func (m *mockOrderService) CheckOrderStatus(ctx context.Context, id uint) (models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return models.Order{}, m.err
	}
	order, ok := m.orders[id]
	if !ok {
		return models.Order{}, services.ErrOrderNotFound
	}
	return order, nil
}

var errStoreDown = errors.New("store unavailable")

func setupRouter(t *testing.T, svc services.OrderService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	tmpl, err := web.Templates()
	require.NoError(t, err)
	router.SetHTMLTemplate(tmpl)

	menu := catalog.Default()
	RegisterRoutes(router, NewOrderController(svc, menu, 10), NewAPIController(svc, menu, 10))
	return router
}
