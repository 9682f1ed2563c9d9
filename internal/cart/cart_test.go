package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talkincode/toughpos/internal/domain"
)

func item(barcode string, price string, stock int) domain.Product {
	return domain.Product{Barcode: barcode, Name: "P" + barcode, Price: decimal.RequireFromString(price), Stock: stock}
}

func TestAddMergesByBarcode(t *testing.T) {
	c := New()
	a := item("A", "10", 5)
	require.NoError(t, c.Add(a))
	require.NoError(t, c.Add(item("B", "2.5", 1)))
	require.NoError(t, c.Add(a))

	items := c.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "A", items[0].Barcode)
	assert.Equal(t, 2, items[0].Qty)
	assert.Equal(t, 1, items[1].Qty)
	assert.True(t, c.Subtotal().Equal(decimal.RequireFromString("22.5")))
}

func TestAddRefusesOutOfStock(t *testing.T) {
	c := New()
	assert.ErrorIs(t, c.Add(item("A", "10", 0)), ErrOutOfStock)
	assert.ErrorIs(t, c.Add(item("A", "10", -3)), ErrOutOfStock)
	assert.True(t, c.Empty())
}

func TestRemove(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(item("A", "1", 5)))
	require.NoError(t, c.Add(item("A", "1", 5)))
	require.NoError(t, c.Add(item("B", "1", 5)))

	assert.False(t, c.Remove(2))
	assert.False(t, c.Remove(-1))
	assert.Equal(t, 2, c.Len())

	// the whole line goes, whatever its quantity
	assert.True(t, c.Remove(0))
	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "B", items[0].Barcode)
}

func TestItemsIsACopy(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(item("A", "1", 5)))
	items := c.Items()
	items[0].Qty = 40
	assert.Equal(t, 1, c.Items()[0].Qty)

	c.Replace(items)
	items[0].Qty = 7
	assert.Equal(t, 40, c.Items()[0].Qty)
	c.Clear()
	assert.True(t, c.Empty())
}

func TestTotals(t *testing.T) {
	c := New()
	a := item("A", "10", 5)
	require.NoError(t, c.Add(a))
	require.NoError(t, c.Add(a))

	tests := []struct {
		name     string
		discount string
		method   domain.PaymentMethod
		cash     string
		total    string
		change   string
	}{
		{"cash with change", "5", domain.PaymentCash, "20", "15", "5"},
		{"cash short", "0", domain.PaymentCash, "10", "20", "0"},
		{"card ignores cash", "0", domain.PaymentCredit, "50", "20", "0"},
		{"discount above subtotal", "25", domain.PaymentPix, "0", "-5", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := c.Totals(decimal.RequireFromString(tt.discount), tt.method, decimal.RequireFromString(tt.cash))
			assert.True(t, s.Subtotal.Equal(decimal.NewFromInt(20)))
			assert.True(t, s.Total.Equal(decimal.RequireFromString(tt.total)), s.Total.String())
			assert.True(t, s.Change.Equal(decimal.RequireFromString(tt.change)), s.Change.String())
		})
	}
}
