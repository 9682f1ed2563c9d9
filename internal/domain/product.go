package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	// amounts are persisted and served as plain JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

// Categories available for products, in display order
var Categories = []string{
	"kitchen",
	"decor",
	"organizers",
	"cleaning",
	"bathroom",
	"toys",
	"tools",
	"stationery",
	"misc",
}

const (
	DefaultCategory = "misc"
	DefaultMinStock = 5
)

// Product is a catalog record keyed by barcode
type Product struct {
	Barcode  string          `json:"barcode"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Cost     decimal.Decimal `json:"cost"`
	Stock    int             `json:"stock"`
	MinStock int             `json:"minStock"`
	Category string          `json:"category"`
}

// LowStock reports stock at or under the configured threshold
func (p Product) LowStock() bool {
	return p.Stock <= p.MinStock
}

// Validate checks the field constraints of a product record
func (p Product) Validate() error {
	if strings.TrimSpace(p.Barcode) == "" {
		return ErrBarcodeRequired
	}
	if strings.TrimSpace(p.Name) == "" {
		return ErrNameRequired
	}
	if p.Price.IsNegative() || p.Cost.IsNegative() {
		return ErrNegativeAmount
	}
	if p.MinStock < 0 {
		return ErrNegativeMinStock
	}
	return nil
}

// DraftProduct is the prefilled record offered when a typed code matches nothing
func DraftProduct(barcode string) Product {
	return Product{
		Barcode:  strings.TrimSpace(barcode),
		MinStock: DefaultMinStock,
		Category: DefaultCategory,
	}
}

// DefaultProducts is the demo catalog written on first start
func DefaultProducts() map[string]Product {
	items := []Product{
		{Barcode: "7891000100015", Name: "Stainless Thermal Bottle 1L", Price: decimal.RequireFromString("49.90"), Cost: decimal.RequireFromString("25.00"), Stock: 20, MinStock: 5, Category: "kitchen"},
		{Barcode: "7891000100022", Name: "Airtight Container Kit 5pc", Price: decimal.RequireFromString("89.90"), Cost: decimal.RequireFromString("45.00"), Stock: 12, MinStock: 3, Category: "organizers"},
		{Barcode: "7891000100039", Name: "Spin Mop 360", Price: decimal.RequireFromString("65.00"), Cost: decimal.RequireFromString("35.00"), Stock: 15, MinStock: 5, Category: "cleaning"},
		{Barcode: "7891000100046", Name: "Knife Set 6 Pieces", Price: decimal.RequireFromString("39.90"), Cost: decimal.RequireFromString("18.00"), Stock: 30, MinStock: 10, Category: "kitchen"},
		{Barcode: "7891000100053", Name: "Ceramic Decorative Vase", Price: decimal.RequireFromString("29.90"), Cost: decimal.RequireFromString("12.00"), Stock: 8, MinStock: 2, Category: "decor"},
	}
	result := make(map[string]Product, len(items))
	for _, p := range items {
		result[p.Barcode] = p
	}
	return result
}
