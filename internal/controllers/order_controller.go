package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/franciscosanchezn/gin-pizza-orders/internal/catalog"
	"github.com/franciscosanchezn/gin-pizza-orders/internal/services"
	"github.com/franciscosanchezn/gin-pizza-orders/internal/web"
	"github.com/gin-gonic/gin"
)

// OrderController handles the HTML order pages
type OrderController interface {
	// ShowForm renders the order form
	ShowForm(c *gin.Context)
	// PlaceOrder handles the submitted order form
	PlaceOrder(c *gin.Context)
	// Success renders the confirmation page
	Success(c *gin.Context)
	// ViewOrders renders one page of orders
	ViewOrders(c *gin.Context)
	// CheckOrderStatus renders a single order or a not found message
	CheckOrderStatus(c *gin.Context)
}

type orderController struct {
	service         services.OrderService
	menu            *catalog.Catalog
	defaultPageSize int
}

// NewOrderController creates a new instance of OrderController
func NewOrderController(service services.OrderService, menu *catalog.Catalog, defaultPageSize int) *orderController {
	if defaultPageSize <= 0 {
		defaultPageSize = 10
	}
	return &orderController{service: service, menu: menu, defaultPageSize: defaultPageSize}
}

// atoiOrDefault parses an integer, falling back to def when the value is missing or malformed
func atoiOrDefault(value string, def int) int {
	n, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return n
}

// pageParams reads page and size query parameters with their defaults
func pageParams(ctx *gin.Context, defaultPageSize int) (int, int) {
	page := atoiOrDefault(ctx.Query("page"), 0)
	size := atoiOrDefault(ctx.Query("size"), defaultPageSize)
	return page, size
}

// notFoundMessage is shown on the status page for unknown ids
func notFoundMessage(id string) string {
	return fmt.Sprintf("Order not found with ID: %s", id)
}

func (c *orderController) ShowForm(ctx *gin.Context) {
	ctx.HTML(http.StatusOK, web.FormTemplate, gin.H{"pizzaNames": c.menu.Names()})
}

func (c *orderController) PlaceOrder(ctx *gin.Context) {
	// Malformed numbers degrade to 0 instead of rejecting the form
	req := services.PlaceOrderRequest{
		CustomerName: ctx.PostForm("customerName"),
		Email:        ctx.PostForm("email"),
		Phone:        ctx.PostForm("phone"),
		PizzaID:      atoiOrDefault(ctx.PostForm("pizzaId"), 0),
		Quantity:     atoiOrDefault(ctx.PostForm("quantity"), 0),
	}

	if _, err := c.service.PlaceOrder(ctx.Request.Context(), req); err != nil {
		ctx.Error(err)
		ctx.String(http.StatusInternalServerError, "Failed to place order")
		return
	}
	ctx.Redirect(http.StatusFound, "/success")
}

func (c *orderController) Success(ctx *gin.Context) {
	ctx.HTML(http.StatusOK, web.SuccessTemplate, nil)
}

func (c *orderController) ViewOrders(ctx *gin.Context) {
	page, size := pageParams(ctx, c.defaultPageSize)

	orderPage, err := c.service.ViewOrders(ctx.Request.Context(), page, size)
	if err != nil {
		ctx.Error(err)
		ctx.String(http.StatusInternalServerError, "Failed to retrieve orders")
		return
	}

	ctx.HTML(http.StatusOK, web.OrderListTemplate, gin.H{
		"orders":          orderPage.Orders,
		"currentPage":     orderPage.CurrentPage,
		"pageSize":        orderPage.PageSize,
		"totalPages":      orderPage.TotalPages,
		"totalItems":      orderPage.TotalItems,
		"hasNextPage":     orderPage.HasNext,
		"hasPreviousPage": orderPage.HasPrevious,
	})
}

func (c *orderController) CheckOrderStatus(ctx *gin.Context) {
	id := ctx.Param("id")

	orderID, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		ctx.HTML(http.StatusNotFound, web.OrderStatusTemplate, gin.H{"error": notFoundMessage(id)})
		return
	}

	order, err := c.service.CheckOrderStatus(ctx.Request.Context(), uint(orderID))
	if errors.Is(err, services.ErrOrderNotFound) {
		ctx.HTML(http.StatusNotFound, web.OrderStatusTemplate, gin.H{"error": notFoundMessage(id)})
		return
	}
	if err != nil {
		ctx.Error(err)
		ctx.String(http.StatusInternalServerError, "Failed to retrieve order")
		return
	}
	ctx.HTML(http.StatusOK, web.OrderStatusTemplate, gin.H{"order": order})
}
