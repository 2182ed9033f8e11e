// Package web holds the HTML views of the order pages.
package web

import (
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Template names rendered by the controllers
const (
	FormTemplate        = "form.tmpl"
	SuccessTemplate     = "success.tmpl"
	OrderListTemplate   = "order_list.tmpl"
	OrderStatusTemplate = "order_status.tmpl"
)

var funcs = template.FuncMap{
	"price": func(v float64) string { return fmt.Sprintf("%.2f", v) },
	"add":   func(a, b int) int { return a + b },
}

// Templates parses the embedded views
func Templates() (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.tmpl")
}
