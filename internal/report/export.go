package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"

	"github.com/talkincode/toughpos/internal/domain"
)

// saleRow is the flat export shape of a sale
type saleRow struct {
	ID       string `csv:"id"`
	Date     string `csv:"date"`
	Client   string `csv:"client"`
	Payment  string `csv:"payment"`
	Items    int    `csv:"items"`
	Products string `csv:"products"`
	Subtotal string `csv:"subtotal"`
	Discount string `csv:"discount"`
	Total    string `csv:"total"`
}

var headers = []string{"id", "date", "client", "payment", "items", "products", "subtotal", "discount", "total"}

func rows(sales []domain.Sale, loc *time.Location) []*saleRow {
	if loc == nil {
		loc = time.Local
	}
	result := make([]*saleRow, 0, len(sales))
	for _, s := range sales {
		names := make([]string, 0, len(s.Items))
		for _, it := range s.Items {
			names = append(names, fmt.Sprintf("%dx %s", it.Qty, it.Name))
		}
		result = append(result, &saleRow{
			ID:       s.ID,
			Date:     s.Date.In(loc).Format("2006-01-02 15:04:05"),
			Client:   s.Client,
			Payment:  s.PaymentMethod.Label(),
			Items:    s.ItemCount(),
			Products: strings.Join(names, "; "),
			Subtotal: s.Subtotal.StringFixed(2),
			Discount: s.Discount.StringFixed(2),
			Total:    s.Total.StringFixed(2),
		})
	}
	return result
}

// WriteCSV exports sales as CSV with a header row
func WriteCSV(w io.Writer, sales []domain.Sale, loc *time.Location) error {
	return errors.Wrap(gocsv.Marshal(rows(sales, loc), w), "write sales csv")
}

const sheet = "Sheet1"

// cellName converts zero based col and one based row to an A1 reference
func cellName(col, row int) string {
	name := ""
	for col >= 0 {
		name = string(rune('A'+col%26)) + name
		col = col/26 - 1
	}
	return fmt.Sprintf("%s%d", name, row)
}

// WriteXLSX exports sales as a workbook with a sales sheet and a summary
// of the totals per payment method below it
func WriteXLSX(w io.Writer, sales []domain.Sale, loc *time.Location, summary Summary) error {
	f := excelize.NewFile()
	for i, h := range headers {
		f.SetCellValue(sheet, cellName(i, 1), h)
	}
	for r, row := range rows(sales, loc) {
		n := r + 2
		f.SetCellValue(sheet, cellName(0, n), row.ID)
		f.SetCellValue(sheet, cellName(1, n), row.Date)
		f.SetCellValue(sheet, cellName(2, n), row.Client)
		f.SetCellValue(sheet, cellName(3, n), row.Payment)
		f.SetCellValue(sheet, cellName(4, n), row.Items)
		f.SetCellValue(sheet, cellName(5, n), row.Products)
		f.SetCellValue(sheet, cellName(6, n), sales[r].Subtotal.InexactFloat64())
		f.SetCellValue(sheet, cellName(7, n), sales[r].Discount.InexactFloat64())
		f.SetCellValue(sheet, cellName(8, n), sales[r].Total.InexactFloat64())
	}

	n := len(sales) + 3
	f.SetCellValue(sheet, cellName(0, n), "revenue")
	f.SetCellValue(sheet, cellName(1, n), summary.Revenue.InexactFloat64())
	f.SetCellValue(sheet, cellName(0, n+1), "sales")
	f.SetCellValue(sheet, cellName(1, n+1), summary.Sales)
	f.SetCellValue(sheet, cellName(0, n+2), "average ticket")
	f.SetCellValue(sheet, cellName(1, n+2), summary.AverageTicket.InexactFloat64())
	for i, pt := range summary.ByPayment {
		f.SetCellValue(sheet, cellName(0, n+3+i), pt.Label)
		f.SetCellValue(sheet, cellName(1, n+3+i), pt.Revenue.InexactFloat64())
	}
	return errors.Wrap(f.Write(w), "write sales workbook")
}
