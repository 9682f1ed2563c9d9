package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentCredit PaymentMethod = "credit"
	PaymentDebit  PaymentMethod = "debit"
	PaymentPix    PaymentMethod = "pix"
)

// PaymentMethods in display order
var PaymentMethods = []PaymentMethod{PaymentCash, PaymentCredit, PaymentDebit, PaymentPix}

const (
	// DefaultClient labels a sale finalized without a client name
	DefaultClient = "General Customer"
	// UnknownClient labels a suspended cart without a client name
	UnknownClient = "N/A"
)

// ParsePaymentMethod accepts the canonical names and the legacy "money" alias
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cash", "money":
		return PaymentCash, nil
	case "credit":
		return PaymentCredit, nil
	case "debit":
		return PaymentDebit, nil
	case "pix":
		return PaymentPix, nil
	}
	return "", ErrInvalidPaymentMethod
}

func (m PaymentMethod) Label() string {
	switch m {
	case PaymentCash:
		return "Cash"
	case PaymentCredit:
		return "Credit"
	case PaymentDebit:
		return "Debit"
	case PaymentPix:
		return "Pix"
	}
	return string(m)
}

// CartItem is a product snapshot with the quantity being sold
type CartItem struct {
	Product
	Qty int `json:"qty"`
}

// LineTotal price * qty
func (i CartItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Qty)))
}

// Sale is a finalized, immutable ledger record
type Sale struct {
	ID            string          `json:"id"`
	Date          time.Time       `json:"date"`
	Items         []CartItem      `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Discount      decimal.Decimal `json:"discount"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	Client        string          `json:"client,omitempty"`
}

// ItemCount total units sold
func (s Sale) ItemCount() int {
	n := 0
	for _, it := range s.Items {
		n += it.Qty
	}
	return n
}

// Clone returns a copy that shares no slice with s
func (s Sale) Clone() Sale {
	s.Items = CloneItems(s.Items)
	return s
}

// SuspendedSale is a cart set aside before finalization
type SuspendedSale struct {
	ID     string     `json:"id"`
	Date   time.Time  `json:"date"`
	Items  []CartItem `json:"items"`
	Client string     `json:"client"`
}

func (s SuspendedSale) Clone() SuspendedSale {
	s.Items = CloneItems(s.Items)
	return s
}

// SumItems subtotal of a set of lines
func SumItems(items []CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	return total
}

func CloneItems(items []CartItem) []CartItem {
	if items == nil {
		return nil
	}
	out := make([]CartItem, len(items))
	copy(out, items)
	return out
}
