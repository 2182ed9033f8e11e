package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/franciscosanchezn/gin-pizza-orders/internal/catalog"
	"github.com/franciscosanchezn/gin-pizza-orders/internal/models"
	"github.com/franciscosanchezn/gin-pizza-orders/internal/services"
	"github.com/gin-gonic/gin"
)

// APIController exposes the order operations as JSON
type APIController interface {
	// ListPizzas returns the catalog
	ListPizzas(c *gin.Context)
	// CreateOrder places an order
	CreateOrder(c *gin.Context)
	// ListOrders returns one page of orders
	ListOrders(c *gin.Context)
	// GetOrder returns a single order
	GetOrder(c *gin.Context)
}

type apiController struct {
	service         services.OrderService
	menu            *catalog.Catalog
	defaultPageSize int
}

// NewAPIController creates a new instance of APIController
func NewAPIController(service services.OrderService, menu *catalog.Catalog, defaultPageSize int) *apiController {
	if defaultPageSize <= 0 {
		defaultPageSize = 10
	}
	return &apiController{service: service, menu: menu, defaultPageSize: defaultPageSize}
}

// orderRequest is the JSON body of CreateOrder. Numeric fields are decoded
// leniently, anything that is not an integer becomes 0.
type orderRequest struct {
	CustomerName string          `json:"customer_name"`
	Email        string          `json:"email"`
	Phone        string          `json:"phone"`
	PizzaID      json.RawMessage `json:"pizza_id"`
	Quantity     json.RawMessage `json:"quantity"`
}

// intOrZero accepts a JSON integer or a string holding one
func intOrZero(raw json.RawMessage) int {
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return atoiOrDefault(s, 0)
	}
	return 0
}

func (r orderRequest) toPlaceOrder() services.PlaceOrderRequest {
	return services.PlaceOrderRequest{
		CustomerName: r.CustomerName,
		Email:        r.Email,
		Phone:        r.Phone,
		PizzaID:      intOrZero(r.PizzaID),
		Quantity:     intOrZero(r.Quantity),
	}
}

// ListPizzas godoc
// @Summary List pizzas
// @Description Get the pizza catalog sorted by id
// @Tags pizzas
// @Produce json
// @Success 200 {array} models.Pizza
// @Router /api/v1/pizzas [get]
func (c *apiController) ListPizzas(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, c.menu.Entries())
}

// CreateOrder godoc
// @Summary Place an order
// @Description Upsert the customer by email and record a PENDING order. Unknown pizza ids are accepted with a zero total,
// @Description a pizza_id or quantity that is not an integer is taken as 0.
// @Tags orders
// @Accept json
// @Produce json
// @Param order body services.PlaceOrderRequest true "Order details"
// @Success 201 {object} models.Order
// @Failure 400 {object} models.APIError
// @Failure 500 {object} models.APIError
// @Router /api/v1/orders [post]
func (c *apiController) CreateOrder(ctx *gin.Context) {
	var req orderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, "Invalid request body"))
		return
	}

	order, err := c.service.PlaceOrder(ctx.Request.Context(), req.toPlaceOrder())
	if err != nil {
		ctx.Error(err)
		ctx.JSON(http.StatusInternalServerError, models.NewAPIError(models.ErrInternalServer, "Failed to place order"))
		return
	}
	ctx.JSON(http.StatusCreated, order)
}

// ListOrders godoc
// @Summary List orders
// @Description Get a page of orders in id order
// @Tags orders
// @Produce json
// @Param page query int false "Zero based page number" default(0)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} models.OrderPage
// @Failure 500 {object} models.APIError
// @Router /api/v1/orders [get]
func (c *apiController) ListOrders(ctx *gin.Context) {
	page, size := pageParams(ctx, c.defaultPageSize)

	orderPage, err := c.service.ViewOrders(ctx.Request.Context(), page, size)
	if err != nil {
		ctx.Error(err)
		ctx.JSON(http.StatusInternalServerError, models.NewAPIError(models.ErrInternalServer, "Failed to retrieve orders"))
		return
	}
	ctx.JSON(http.StatusOK, orderPage)
}

// GetOrder godoc
// @Summary Get order by ID
// @Description Get a single order and its status
// @Tags orders
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} models.Order
// @Failure 404 {object} models.APIError
// @Failure 500 {object} models.APIError
// @Router /api/v1/orders/{id} [get]
func (c *apiController) GetOrder(ctx *gin.Context) {
	id := ctx.Param("id")
	notFound := models.NewAPIError(models.ErrOrderNotFound, notFoundMessage(id), map[string]interface{}{"id": id})

	orderID, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		ctx.JSON(http.StatusNotFound, notFound)
		return
	}

	order, err := c.service.CheckOrderStatus(ctx.Request.Context(), uint(orderID))
	if errors.Is(err, services.ErrOrderNotFound) {
		ctx.JSON(http.StatusNotFound, notFound)
		return
	}
	if err != nil {
		ctx.Error(err)
		ctx.JSON(http.StatusInternalServerError, models.NewAPIError(models.ErrInternalServer, "Failed to retrieve order"))
		return
	}
	ctx.JSON(http.StatusOK, order)
}
