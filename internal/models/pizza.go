package models

// Pizza represents an orderable catalog entry
type Pizza struct {
	ID    int     `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}
