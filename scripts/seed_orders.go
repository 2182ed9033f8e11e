package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/franciscosanchezn/gin-pizza-orders/internal/catalog"
	"github.com/franciscosanchezn/gin-pizza-orders/internal/database"
	"github.com/franciscosanchezn/gin-pizza-orders/internal/services"
)

type demoOrder struct {
	name, email, phone string
	pizzaID, quantity  int
}

var demoOrders = []demoOrder{
	{"Alice", "alice@example.com", "555-0100", 1, 3},
	{"Bob", "bob@example.com", "555-0101", 2, 1},
	{"Carol", "carol@example.com", "555-0102", 3, 2},
	{"Alice B.", "alice@example.com", "555-0199", 2, 2},
}

func main() {
	// Parse command line flags
	path := flag.String("db", "pizza.sqlite", "SQLite database file")
	rounds := flag.Int("rounds", 1, "How many times to place the demo orders")
	flag.Parse()

	db, err := database.InitDatabase(database.DatabaseConfig{Driver: "sqlite", Path: *path})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	svc := services.NewOrderService(db, catalog.Default(), nil, nil)
	ctx := context.Background()

	for round := 0; round < *rounds; round++ {
		for _, o := range demoOrders {
			order, err := svc.PlaceOrder(ctx, services.PlaceOrderRequest{
				CustomerName: o.name,
				Email:        o.email,
				Phone:        o.phone,
				PizzaID:      o.pizzaID,
				Quantity:     o.quantity,
			})
			if err != nil {
				log.Fatal("Failed to place order:", err)
			}
			fmt.Printf("Order %d: %d x %s for %s = %.2f\n", order.ID, order.Quantity, order.PizzaName, o.email, order.TotalPrice)
		}
	}

	page, err := svc.ViewOrders(ctx, 0, 1)
	if err != nil {
		log.Fatal("Failed to count orders:", err)
	}
	fmt.Printf("\n%d orders in %s\n", page.TotalItems, *path)
}
