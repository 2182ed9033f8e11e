package services

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/franciscosanchezn/gin-pizza-orders/internal/catalog"
	"github.com/franciscosanchezn/gin-pizza-orders/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
}

// SetLogLevel adjusts the level of the services logger
func SetLogLevel(level logrus.Level) {
	log.SetLevel(level)
}

// ErrOrderNotFound is returned when no order has the requested id
var ErrOrderNotFound = errors.New("order not found")

// PlaceOrderRequest carries the order form fields. Nothing here is validated:
// an unknown PizzaID yields an order with no name and a zero total.
type PlaceOrderRequest struct {
	CustomerName string `json:"customer_name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	PizzaID      int    `json:"pizza_id"`
	Quantity     int    `json:"quantity"`
}

// OrderCache is a read-through cache for single order lookups
type OrderCache interface {
	// GetOrder returns nil without error on a miss
	GetOrder(ctx context.Context, id uint) (*models.Order, error)
	SetOrder(ctx context.Context, order models.Order) error
}

// OrderEventPublisher announces placed orders to downstream consumers
type OrderEventPublisher interface {
	PublishOrderPlaced(ctx context.Context, order models.Order) error
}

// OrderService places and reads pizza orders
type OrderService interface {
	// PlaceOrder upserts the customer by email and records a PENDING order
	PlaceOrder(ctx context.Context, req PlaceOrderRequest) (models.Order, error)
	// ViewOrders returns one page of orders in id order
	ViewOrders(ctx context.Context, page, size int) (models.OrderPage, error)
	// CheckOrderStatus retrieves an order by its ID
	CheckOrderStatus(ctx context.Context, id uint) (models.Order, error)
}

// orderService is the implementation of the OrderService interface
type orderService struct {
	db     *gorm.DB
	menu   *catalog.Catalog
	cache  OrderCache
	events OrderEventPublisher
}

// NewOrderService creates a new instance of OrderService. cache and events may be nil.
func NewOrderService(db *gorm.DB, menu *catalog.Catalog, cache OrderCache, events OrderEventPublisher) OrderService {
	return &orderService{db: db, menu: menu, cache: cache, events: events}
}

func (s *orderService) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (models.Order, error) {
	pizzaName, _ := s.menu.NameOf(req.PizzaID)
	order := models.Order{
		PizzaID:    req.PizzaID,
		PizzaName:  pizzaName,
		Quantity:   req.Quantity,
		TotalPrice: float64(req.Quantity) * s.menu.UnitPriceOf(req.PizzaID),
		Status:     models.OrderStatusPending,
	}

	var created bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		customer, isNew, err := NewCustomerService(tx).UpsertByEmail(ctx, req.CustomerName, req.Email, req.Phone)
		if err != nil {
			return err
		}
		created = isNew
		order.CustomerID = customer.ID
		order.Customer = *customer
		// Customer is already persisted, skip gorm's association upsert
		return tx.Omit("Customer").Create(&order).Error
	})
	if err != nil {
		return models.Order{}, fmt.Errorf("place order: %w", err)
	}

	log.WithFields(logrus.Fields{
		"order_id":     order.ID,
		"customer_id":  order.CustomerID,
		"new_customer": created,
		"pizza_id":     order.PizzaID,
		"quantity":     order.Quantity,
		"total_price":  order.TotalPrice,
	}).Info("Order placed")

	s.cacheOrder(ctx, order)
	if s.events != nil {
		if err := s.events.PublishOrderPlaced(ctx, order); err != nil {
			log.WithError(err).WithField("order_id", order.ID).Warn("Failed to publish order event")
		}
	}
	return order, nil
}

func (s *orderService) ViewOrders(ctx context.Context, page, size int) (models.OrderPage, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Order{}).Count(&total).Error; err != nil {
		return models.OrderPage{}, fmt.Errorf("count orders: %w", err)
	}

	orders := []models.Order{}
	if page >= 0 && size > 0 && int64(page) < pageCount(total, size) {
		// page*size < total here, so the offset cannot wrap
		err := s.db.WithContext(ctx).
			Preload("Customer").
			Order("id").
			Offset(page * size).
			Limit(size).
			Find(&orders).Error
		if err != nil {
			return models.OrderPage{}, fmt.Errorf("list orders: %w", err)
		}
	}

	return newOrderPage(orders, page, size, total), nil
}

// pageCount is ceil(total/size) for a positive size
func pageCount(total int64, size int) int64 {
	pages := total / int64(size)
	if total%int64(size) != 0 {
		pages++
	}
	return pages
}

// hasNextPage reports (page+1)*size < total without overflowing on huge or negative inputs
func hasNextPage(page, size int, total int64) bool {
	next := new(big.Int).Add(big.NewInt(int64(page)), big.NewInt(1))
	next.Mul(next, big.NewInt(int64(size)))
	return next.Cmp(big.NewInt(total)) < 0
}

// newOrderPage derives the pagination flags. Out of range requests are not
// rejected, they produce an empty page.
func newOrderPage(orders []models.Order, page, size int, total int64) models.OrderPage {
	totalPages := 0
	if size > 0 {
		totalPages = int(pageCount(total, size))
	}
	return models.OrderPage{
		Orders:      orders,
		CurrentPage: page,
		PageSize:    size,
		TotalPages:  totalPages,
		TotalItems:  total,
		HasNext:     hasNextPage(page, size, total),
		HasPrevious: page > 0,
	}
}

func (s *orderService) CheckOrderStatus(ctx context.Context, id uint) (models.Order, error) {
	if order, ok := s.cachedOrder(ctx, id); ok {
		return order, nil
	}

	var order models.Order
	if err := s.db.WithContext(ctx).Preload("Customer").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Order{}, ErrOrderNotFound
		}
		return models.Order{}, fmt.Errorf("find order %d: %w", id, err)
	}

	s.cacheOrder(ctx, order)
	return order, nil
}

// cacheOrder stores the order without its customer. Customer details change on
// every repeat order, so they are always read from the database.
func (s *orderService) cacheOrder(ctx context.Context, order models.Order) {
	if s.cache == nil {
		return
	}
	order.Customer = models.Customer{}
	if err := s.cache.SetOrder(ctx, order); err != nil {
		log.WithError(err).WithField("order_id", order.ID).Warn("Failed to cache order")
	}
}

// cachedOrder returns a cached order joined with the current customer row.
// Any cache or customer lookup failure is reported as a miss.
func (s *orderService) cachedOrder(ctx context.Context, id uint) (models.Order, bool) {
	if s.cache == nil {
		return models.Order{}, false
	}
	cached, err := s.cache.GetOrder(ctx, id)
	if err != nil {
		log.WithError(err).WithField("order_id", id).Warn("Order cache lookup failed")
		return models.Order{}, false
	}
	if cached == nil {
		return models.Order{}, false
	}

	customer, err := NewCustomerService(s.db).GetCustomerByID(ctx, cached.CustomerID)
	if err != nil {
		log.WithError(err).WithField("order_id", id).Debug("Cached order has no current customer")
		return models.Order{}, false
	}
	cached.Customer = *customer
	return *cached, true
}
