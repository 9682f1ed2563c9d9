package report

import (
	"sort"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/talkincode/toughpos/internal/domain"
)

// PaymentTotal revenue of one payment method
type PaymentTotal struct {
	Method  domain.PaymentMethod `json:"method"`
	Label   string               `json:"label"`
	Count   int                  `json:"count"`
	Revenue decimal.Decimal      `json:"revenue"`
}

// ProductTotal units and revenue of one product
type ProductTotal struct {
	Barcode string          `json:"barcode"`
	Name    string          `json:"name"`
	Qty     int             `json:"qty"`
	Revenue decimal.Decimal `json:"revenue"`
}

type Summary struct {
	Revenue       decimal.Decimal `json:"revenue"`
	Sales         int             `json:"sales"`
	Items         int             `json:"items"`
	AverageTicket decimal.Decimal `json:"averageTicket"`
	MedianTicket  decimal.Decimal `json:"medianTicket"`
	Discounts     decimal.Decimal `json:"discounts"`
	ByPayment     []PaymentTotal  `json:"byPayment"`
	TopProducts   []ProductTotal  `json:"topProducts"`
}

// TopLimit caps Summary.TopProducts
const TopLimit = 10

// Summarize aggregates sales into revenue figures. Payment methods without
// sales are listed with zero so every method is always present.
func Summarize(sales []domain.Sale, lang language.Tag) Summary {
	s := Summary{
		Revenue:       decimal.Zero,
		AverageTicket: decimal.Zero,
		MedianTicket:  decimal.Zero,
		Discounts:     decimal.Zero,
	}
	payments := map[domain.PaymentMethod]*PaymentTotal{}
	for _, m := range domain.PaymentMethods {
		payments[m] = &PaymentTotal{Method: m, Label: m.Label(), Revenue: decimal.Zero}
	}
	products := map[string]*ProductTotal{}
	tickets := make([]float64, 0, len(sales))

	for _, sale := range sales {
		s.Sales++
		s.Revenue = s.Revenue.Add(sale.Total)
		s.Discounts = s.Discounts.Add(sale.Discount)
		s.Items += sale.ItemCount()
		tickets = append(tickets, sale.Total.InexactFloat64())

		pt, ok := payments[sale.PaymentMethod]
		if !ok {
			pt = &PaymentTotal{Method: sale.PaymentMethod, Label: sale.PaymentMethod.Label(), Revenue: decimal.Zero}
			payments[sale.PaymentMethod] = pt
		}
		pt.Count++
		pt.Revenue = pt.Revenue.Add(sale.Total)

		for _, it := range sale.Items {
			p, ok := products[it.Barcode]
			if !ok {
				p = &ProductTotal{Barcode: it.Barcode, Name: it.Name, Revenue: decimal.Zero}
				products[it.Barcode] = p
			}
			p.Qty += it.Qty
			p.Revenue = p.Revenue.Add(it.LineTotal())
		}
	}

	if s.Sales > 0 {
		s.AverageTicket = s.Revenue.Div(decimal.NewFromInt(int64(s.Sales))).Round(2)
		if m, err := stats.Median(tickets); err == nil {
			s.MedianTicket = decimal.NewFromFloat(m).Round(2)
		}
	}

	for _, m := range domain.PaymentMethods {
		s.ByPayment = append(s.ByPayment, *payments[m])
		delete(payments, m)
	}
	for _, pt := range payments {
		s.ByPayment = append(s.ByPayment, *pt)
	}

	col := collate.New(lang)
	for _, p := range products {
		s.TopProducts = append(s.TopProducts, *p)
	}
	sort.Slice(s.TopProducts, func(i, j int) bool {
		a, b := s.TopProducts[i], s.TopProducts[j]
		if a.Qty != b.Qty {
			return a.Qty > b.Qty
		}
		return col.CompareString(a.Name, b.Name) < 0
	})
	if len(s.TopProducts) > TopLimit {
		s.TopProducts = s.TopProducts[:TopLimit]
	}
	return s
}

// Day revenue of one calendar day
type Day struct {
	Date    string          `json:"date"`
	Sales   int             `json:"sales"`
	Revenue decimal.Decimal `json:"revenue"`
	Average decimal.Decimal `json:"average"`
}

// Daily groups sales by calendar day in loc, oldest day first
func Daily(sales []domain.Sale, loc *time.Location) []Day {
	if loc == nil {
		loc = time.Local
	}
	byDay := map[string]*Day{}
	amounts := map[string][]float64{}
	for _, sale := range sales {
		key := sale.Date.In(loc).Format("2006-01-02")
		d, ok := byDay[key]
		if !ok {
			d = &Day{Date: key, Revenue: decimal.Zero}
			byDay[key] = d
		}
		d.Sales++
		d.Revenue = d.Revenue.Add(sale.Total)
		amounts[key] = append(amounts[key], sale.Total.InexactFloat64())
	}
	result := make([]Day, 0, len(byDay))
	for key, d := range byDay {
		if mean, err := stats.Mean(amounts[key]); err == nil {
			d.Average = decimal.NewFromFloat(mean).Round(2)
		}
		result = append(result, *d)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date < result[j].Date })
	return result
}
