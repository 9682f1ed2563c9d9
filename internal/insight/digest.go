package insight

import (
	"fmt"
	"strings"

	"github.com/talkincode/toughpos/internal/domain"
)

// MaxSales is the most sales sent for one analysis
const MaxSales = 50

// Digest is the compact form of a sale sent to the model
type Digest struct {
	Date   string `json:"date"`
	Items  string `json:"items"`
	Total  string `json:"total"`
	Method string `json:"method"`
}

// Summarize digests at most MaxSales of the given sales, in order
func Summarize(sales []domain.Sale) []Digest {
	if len(sales) > MaxSales {
		sales = sales[:MaxSales]
	}
	result := make([]Digest, 0, len(sales))
	for _, s := range sales {
		names := make([]string, 0, len(s.Items))
		for _, it := range s.Items {
			names = append(names, fmt.Sprintf("%dx %s", it.Qty, it.Name))
		}
		result = append(result, Digest{
			Date:   s.Date.Format("2006-01-02 15:04"),
			Items:  strings.Join(names, ", "),
			Total:  s.Total.StringFixed(2),
			Method: string(s.PaymentMethod),
		})
	}
	return result
}

// Prompt builds the request text for the digests
func Prompt(digests []Digest) string {
	var b strings.Builder
	b.WriteString("You are a retail consultant for a small housewares and variety shop. ")
	b.WriteString("Analyze the recent sales below and give three short, practical strategic suggestions ")
	b.WriteString("about best sellers, payment habits and stock to reinforce.\n\n")
	b.WriteString("date | items | total | payment\n")
	for _, d := range digests {
		fmt.Fprintf(&b, "%s | %s | %s | %s\n", d.Date, d.Items, d.Total, d.Method)
	}
	return b.String()
}
