package ledger

import (
	"time"

	"github.com/araddon/dateparse"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/talkincode/toughpos/internal/domain"
)

// storedSale accepts every sale shape written so far: dates as free text,
// the "money" payment alias, and records without subtotal or discount.
type storedSale struct {
	ID            string            `json:"id"`
	Date          string            `json:"date"`
	Items         []domain.CartItem `json:"items"`
	Subtotal      *decimal.Decimal  `json:"subtotal"`
	Discount      *decimal.Decimal  `json:"discount"`
	Total         *decimal.Decimal  `json:"total"`
	PaymentMethod string            `json:"paymentMethod"`
	Client        string            `json:"client,omitempty"`
}

func (s storedSale) canonical(loc *time.Location) (sale domain.Sale, changed bool) {
	sale = domain.Sale{ID: s.ID, Items: s.Items, Client: s.Client}

	date, err := time.Parse(time.RFC3339Nano, s.Date)
	if err != nil {
		changed = true
		if date, err = dateparse.ParseIn(s.Date, loc); err != nil {
			zap.L().Warn("sale date unreadable", zap.String("id", s.ID), zap.String("date", s.Date))
			date = time.Time{}
		}
	}
	sale.Date = date

	method, err := domain.ParsePaymentMethod(s.PaymentMethod)
	if err != nil {
		zap.L().Warn("sale payment method unknown", zap.String("id", s.ID), zap.String("method", s.PaymentMethod))
		method = domain.PaymentMethod(s.PaymentMethod)
	}
	if string(method) != s.PaymentMethod {
		changed = true
	}
	sale.PaymentMethod = method

	if s.Subtotal != nil {
		sale.Subtotal = *s.Subtotal
	} else {
		sale.Subtotal = domain.SumItems(s.Items)
		changed = true
	}
	if s.Total != nil {
		sale.Total = *s.Total
	} else {
		sale.Total = sale.Subtotal
		changed = true
	}
	if s.Discount != nil {
		sale.Discount = *s.Discount
	} else {
		sale.Discount = decimal.Max(decimal.Zero, sale.Subtotal.Sub(sale.Total))
		changed = true
	}
	return sale, changed
}
