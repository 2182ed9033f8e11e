package models

import (
	"time"
)

// OrderStatus is the lifecycle state of an order
type OrderStatus string

const (
	// OrderStatusPending is assigned to every new order
	OrderStatusPending OrderStatus = "PENDING"
	// OrderStatusShipped means the order left the kitchen
	OrderStatusShipped OrderStatus = "SHIPPED"
	// OrderStatusDelivered means the order reached the customer
	OrderStatusDelivered OrderStatus = "DELIVERED"
)

// IsValid reports whether s is one of the known statuses
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusShipped, OrderStatusDelivered:
		return true
	}
	return false
}

func (s OrderStatus) String() string {
	return string(s)
}

// Order is a single pizza line placed by a customer.
// PizzaName and TotalPrice are copied from the catalog when the order is placed.
type Order struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	CustomerID uint        `gorm:"not null;index" json:"customer_id"`
	Customer   Customer    `gorm:"foreignKey:CustomerID" json:"customer"`
	PizzaID    int         `json:"pizza_id"`
	PizzaName  string      `json:"pizza_name"`
	Quantity   int         `json:"quantity"`
	TotalPrice float64     `json:"total_price"`
	Status     OrderStatus `gorm:"type:varchar(16);not null;default:'PENDING'" json:"status"`
	CreatedAt  time.Time   `json:"created_at"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderPage is one page of the order listing
type OrderPage struct {
	Orders      []Order `json:"orders"`
	CurrentPage int     `json:"current_page"`
	PageSize    int     `json:"page_size"`
	TotalPages  int     `json:"total_pages"`
	TotalItems  int64   `json:"total_items"`
	HasNext     bool    `json:"has_next"`
	HasPrevious bool    `json:"has_previous"`
}
