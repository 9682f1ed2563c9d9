package cart

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/talkincode/toughpos/internal/domain"
)

var ErrOutOfStock = errors.New("product out of stock")

// Summary derived amounts of the cart under the current checkout inputs
type Summary struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
	Change   decimal.Decimal `json:"change"`
}

// Cart is the ordered line list of the sale in progress. It holds at most
// one line per barcode. Cart is not safe for concurrent use; the register
// serializes access.
type Cart struct {
	items []domain.CartItem
}

func New() *Cart {
	return &Cart{}
}

// Add merges product into the cart. A product with no stock is refused
// and the cart is left untouched.
func (c *Cart) Add(p domain.Product) error {
	if p.Stock <= 0 {
		return ErrOutOfStock
	}
	for i := range c.items {
		if c.items[i].Barcode == p.Barcode {
			c.items[i].Qty++
			return nil
		}
	}
	c.items = append(c.items, domain.CartItem{Product: p, Qty: 1})
	return nil
}

// Remove drops the whole line at index, ignoring out of range indexes
func (c *Cart) Remove(index int) bool {
	if index < 0 || index >= len(c.items) {
		return false
	}
	c.items = append(c.items[:index:index], c.items[index+1:]...)
	return true
}

func (c *Cart) Clear() {
	c.items = nil
}

// Replace overwrites the lines, used when a suspended sale is restored
func (c *Cart) Replace(items []domain.CartItem) {
	c.items = domain.CloneItems(items)
}

// Items returns a copy of the lines in insertion order
func (c *Cart) Items() []domain.CartItem {
	return domain.CloneItems(c.items)
}

func (c *Cart) Len() int {
	return len(c.items)
}

func (c *Cart) Empty() bool {
	return len(c.items) == 0
}

func (c *Cart) Subtotal() decimal.Decimal {
	return domain.SumItems(c.items)
}

// Totals derives total and change. Total is subtotal minus discount and is
// not clamped. Change is only given for cash and never below zero.
func (c *Cart) Totals(discount decimal.Decimal, method domain.PaymentMethod, cashReceived decimal.Decimal) Summary {
	subtotal := c.Subtotal()
	total := subtotal.Sub(discount)
	change := decimal.Zero
	if method == domain.PaymentCash {
		change = decimal.Max(decimal.Zero, cashReceived.Sub(total))
	}
	return Summary{Subtotal: subtotal, Discount: discount, Total: total, Change: change}
}
