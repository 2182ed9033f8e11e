// Package catalog holds the fixed table of orderable pizzas.
package catalog

import (
	"sort"

	"github.com/franciscosanchezn/gin-pizza-orders/internal/models"
)

// Catalog is an immutable id -> pizza table. It is built once at startup and
// shared by reference; nothing mutates it afterwards.
type Catalog struct {
	entries map[int]models.Pizza
}

// New builds a catalog from the given entries. Later duplicates of an id win.
func New(pizzas ...models.Pizza) *Catalog {
	entries := make(map[int]models.Pizza, len(pizzas))
	for _, p := range pizzas {
		entries[p.ID] = p
	}
	return &Catalog{entries: entries}
}

// Default returns the house menu
func Default() *Catalog {
	return New(
		models.Pizza{ID: 1, Name: "Margherita", Price: 199.0},
		models.Pizza{ID: 2, Name: "Pepperoni", Price: 249.0},
		models.Pizza{ID: 3, Name: "Veggie Delight", Price: 329.0},
	)
}

// NameOf returns the display name of a pizza and whether the id is known
func (c *Catalog) NameOf(pizzaID int) (string, bool) {
	p, ok := c.entries[pizzaID]
	return p.Name, ok
}

// UnitPriceOf returns the unit price of a pizza, or 0 for an unknown id.
func (c *Catalog) UnitPriceOf(pizzaID int) float64 {
	return c.entries[pizzaID].Price
}

// Names returns the id -> name mapping used by the order form
func (c *Catalog) Names() map[int]string {
	names := make(map[int]string, len(c.entries))
	for id, p := range c.entries {
		names[id] = p.Name
	}
	return names
}

// Entries returns a copy of every entry sorted by id
func (c *Catalog) Entries() []models.Pizza {
	pizzas := make([]models.Pizza, 0, len(c.entries))
	for _, p := range c.entries {
		pizzas = append(pizzas, p)
	}
	sort.Slice(pizzas, func(i, j int) bool { return pizzas[i].ID < pizzas[j].ID })
	return pizzas
}
