package receipt

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/talkincode/toughpos/internal/domain"
	"github.com/talkincode/toughpos/pkg/common"
)

const (
	// Width of an 80mm thermal roll in monospace columns
	Width      = 48
	Currency   = "R$"
	Disclaimer = "*** NOT A FISCAL DOCUMENT ***"
	DateLayout = "02/01/2006 15:04:05"
)

// Render lays out sale as plain monospace text. Dates are shown in loc.
func Render(sale domain.Sale, settings domain.AppSettings, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	var b strings.Builder
	line := func(s string) {
		b.WriteString(s)
		b.WriteByte('\n')
	}
	divider := strings.Repeat("-", Width)

	line(center(settings.CompanyName))
	if settings.TaxID != "" {
		line(center("Tax ID: " + settings.TaxID))
	}
	if settings.Address != "" {
		line(center(settings.Address))
	}
	if settings.Phone != "" {
		line(center("Tel: " + settings.Phone))
	}
	line(center(sale.Date.In(loc).Format(DateLayout)))
	line(center("Order #" + common.TailStr(sale.ID, 6)))
	line(divider)

	for _, it := range sale.Items {
		line(truncate(fmt.Sprintf("%dx %s", it.Qty, it.Name), Width))
		line(columns("  "+common.TailStr(it.Barcode, 4), money(it.LineTotal())))
	}
	line(divider)

	line(columns("Subtotal:", money(sale.Subtotal)))
	if sale.Discount.IsPositive() {
		line(columns("Discount:", "-"+money(sale.Discount)))
	}
	line(columns("TOTAL:", money(sale.Total)))
	line(columns(fmt.Sprintf("Payment (%s):", sale.PaymentMethod.Label()), money(sale.Total)))
	if sale.Client != "" && sale.Client != domain.DefaultClient {
		line(columns("Client:", sale.Client))
	}

	line(divider)
	line(center(common.IfEmptyStr(settings.ReceiptFooter, domain.DefaultReceiptFooter)))
	line(center(Disclaimer))
	return b.String()
}

func money(v decimal.Decimal) string {
	return Currency + " " + v.StringFixed(2)
}

func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func center(s string) string {
	s = truncate(strings.TrimSpace(s), Width)
	pad := (Width - utf8.RuneCountInString(s)) / 2
	return strings.Repeat(" ", pad) + s
}

// columns puts left and right on the same row, right aligned to Width
func columns(left, right string) string {
	gap := Width - utf8.RuneCountInString(left) - utf8.RuneCountInString(right)
	if gap < 1 {
		left = truncate(left, Width-utf8.RuneCountInString(right)-1)
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}
