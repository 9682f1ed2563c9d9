package catalog

import (
	"io"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"

	"github.com/talkincode/toughpos/internal/domain"
)

// productRow is the flat CSV shape of a product
type productRow struct {
	Barcode  string `csv:"barcode"`
	Name     string `csv:"name"`
	Price    string `csv:"price"`
	Cost     string `csv:"cost"`
	Stock    string `csv:"stock"`
	MinStock string `csv:"min_stock"`
	Category string `csv:"category"`
}

// ExportCSV writes the catalog in barcode order
func (s *Store) ExportCSV(w io.Writer) error {
	products := s.All()
	rows := make([]*productRow, 0, len(products))
	for _, p := range products {
		rows = append(rows, &productRow{
			Barcode:  p.Barcode,
			Name:     p.Name,
			Price:    p.Price.StringFixed(2),
			Cost:     p.Cost.StringFixed(2),
			Stock:    cast.ToString(p.Stock),
			MinStock: cast.ToString(p.MinStock),
			Category: p.Category,
		})
	}
	return gocsv.Marshal(rows, w)
}

// ImportCSV upserts every valid row of r. Rows with a malformed amount or
// failing validation are reported by barcode and skipped.
func (s *Store) ImportCSV(r io.Reader) (saved int, rejected []string, err error) {
	var rows []*productRow
	if err = gocsv.Unmarshal(r, &rows); err != nil {
		return 0, nil, errors.Wrap(err, "parse product csv")
	}
	items := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		p, perr := row.product()
		if perr != nil {
			rejected = append(rejected, row.Barcode)
			continue
		}
		items = append(items, p)
	}
	n, bad := s.UpsertMany(items)
	return n, append(rejected, bad...), nil
}

func (row *productRow) product() (domain.Product, error) {
	price, err := parseAmount(row.Price)
	if err != nil {
		return domain.Product{}, err
	}
	cost, err := parseAmount(row.Cost)
	if err != nil {
		return domain.Product{}, err
	}
	stock, err := cast.ToIntE(strings.TrimSpace(row.Stock))
	if err != nil {
		return domain.Product{}, err
	}
	minStock := domain.DefaultMinStock
	if strings.TrimSpace(row.MinStock) != "" {
		if minStock, err = cast.ToIntE(strings.TrimSpace(row.MinStock)); err != nil {
			return domain.Product{}, err
		}
	}
	return domain.Product{
		Barcode:  row.Barcode,
		Name:     row.Name,
		Price:    price,
		Cost:     cost,
		Stock:    stock,
		MinStock: minStock,
		Category: strings.TrimSpace(row.Category),
	}, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(strings.Replace(s, ",", ".", 1))
}
