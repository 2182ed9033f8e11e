// Package events publishes order lifecycle messages to RabbitMQ.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/franciscosanchezn/gin-pizza-orders/internal/models"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
}

// SetLogLevel adjusts the level of the events logger
func SetLogLevel(level logrus.Level) {
	log.SetLevel(level)
}

// RoutingKeyOrderPlaced is used for every newly placed order
const RoutingKeyOrderPlaced = "order.placed"

const publishTimeout = 5 * time.Second

// OrderPlacedMessage is the JSON body of an order.placed event
type OrderPlacedMessage struct {
	OrderID       uint               `json:"order_id"`
	CustomerID    uint               `json:"customer_id"`
	CustomerEmail string             `json:"customer_email"`
	PizzaID       int                `json:"pizza_id"`
	PizzaName     string             `json:"pizza_name"`
	Quantity      int                `json:"quantity"`
	TotalPrice    float64            `json:"total_price"`
	Status        models.OrderStatus `json:"status"`
	PlacedAt      time.Time          `json:"placed_at"`
}

// NewOrderPlacedMessage builds the event body for order
func NewOrderPlacedMessage(order models.Order) OrderPlacedMessage {
	return OrderPlacedMessage{
		OrderID:       order.ID,
		CustomerID:    order.CustomerID,
		CustomerEmail: order.Customer.Email,
		PizzaID:       order.PizzaID,
		PizzaName:     order.PizzaName,
		Quantity:      order.Quantity,
		TotalPrice:    order.TotalPrice,
		Status:        order.Status,
		PlacedAt:      order.CreatedAt,
	}
}

// Publisher sends order events to a durable topic exchange
type Publisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

// NewPublisher dials url and declares the exchange
func NewPublisher(url, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare %s exchange: %w", exchange, err)
	}

	log.WithField("exchange", exchange).Info("Connected to RabbitMQ")
	return &Publisher{conn: conn, channel: channel, exchange: exchange}, nil
}

// PublishOrderPlaced sends a persistent order.placed message
func (p *Publisher) PublishOrderPlaced(ctx context.Context, order models.Order) error {
	body, err := json.Marshal(NewOrderPlacedMessage(order))
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	// amqp channels are not safe for concurrent publishing
	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.PublishWithContext(
		ctx,
		p.exchange,            // exchange
		RoutingKeyOrderPlaced, // routing key
		false,                 // mandatory
		false,                 // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	log.WithFields(logrus.Fields{
		"exchange":     p.exchange,
		"routing_key":  RoutingKeyOrderPlaced,
		"order_id":     order.ID,
		"message_size": len(body),
	}).Debug("Order event published")
	return nil
}

// Close closes the channel and the connection
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.channel.Close(); err != nil && !p.conn.IsClosed() {
		log.WithError(err).Warn("Failed to close RabbitMQ channel")
	}
	return p.conn.Close()
}
