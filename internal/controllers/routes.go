package controllers

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the HTML pages and the JSON API
func RegisterRoutes(router *gin.Engine, orders OrderController, api APIController) {
	// Order pages
	router.GET("/", orders.ShowForm)
	router.GET("/orderForm", orders.ShowForm)
	router.POST("/submitOrder", orders.PlaceOrder)
	router.GET("/success", orders.Success)
	router.GET("/orders", orders.ViewOrders)
	router.GET("/orderStatus/:id", orders.CheckOrderStatus)

	// JSON API
	v1 := router.Group("/api/v1")
	{
		v1.GET("/pizzas", api.ListPizzas)
		v1.POST("/orders", api.CreateOrder)
		v1.GET("/orders", api.ListOrders)
		v1.GET("/orders/:id", api.GetOrder)
	}
}
