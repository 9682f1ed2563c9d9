package checkout

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/talkincode/toughpos/internal/cart"
	"github.com/talkincode/toughpos/internal/catalog"
	"github.com/talkincode/toughpos/internal/domain"
	"github.com/talkincode/toughpos/internal/events"
	"github.com/talkincode/toughpos/internal/kvstore"
	"github.com/talkincode/toughpos/internal/ledger"
	"github.com/talkincode/toughpos/internal/settings"
	"github.com/talkincode/toughpos/internal/suspend"
)

type recorder struct {
	mu     sync.Mutex
	topics []string
	args   []interface{}
}

func (r *recorder) Publish(topic string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.topics = append(r.topics, topic)
	r.args = append(r.args, args...)
}

type fixture struct {
	reg      *Register
	kv       *kvstore.MemoryStore
	catalog  *catalog.Store
	ledger   *ledger.Ledger
	queue    *suspend.Queue
	settings *settings.Store
	tone     *CountingNotifier
	events   *recorder
}

func newFixture(t *testing.T, products ...domain.Product) *fixture {
	t.Helper()
	kv := kvstore.NewMemoryStore()
	f := &fixture{
		kv:       kv,
		catalog:  catalog.New(kv, language.English),
		ledger:   ledger.New(kv, time.UTC),
		queue:    suspend.New(kv),
		settings: settings.New(kv),
		tone:     &CountingNotifier{},
		events:   &recorder{},
	}
	f.settings.Load()
	seed := map[string]domain.Product{}
	for _, p := range products {
		seed[p.Barcode] = p
	}
	f.catalog.Reset(seed)
	f.reg = New(Deps{
		Catalog:  f.catalog,
		Ledger:   f.ledger,
		Queue:    f.queue,
		Settings: f.settings,
		Notifier: f.tone,
		Events:   f.events,
	})
	seq := 0
	f.reg.newID = func() string {
		seq++
		return fmt.Sprintf("id-%d", seq)
	}
	return f
}

func prod(barcode, name, price string, stock int) domain.Product {
	return domain.Product{
		Barcode:  barcode,
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
		MinStock: 1,
		Category: domain.DefaultCategory,
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestWorkedExampleCashSale(t *testing.T) {
	f := newFixture(t, prod("A", "Thermal Bottle", "10", 5))

	_, err := f.reg.AddBarcode("A")
	require.NoError(t, err)
	state, err := f.reg.AddBarcode("A")
	require.NoError(t, err)
	require.Len(t, state.Items, 1)
	assert.Equal(t, 2, state.Items[0].Qty)
	assert.True(t, state.Summary.Subtotal.Equal(dec("20")))

	state, err = f.reg.UpdateInputs(func(in *Inputs) {
		in.Discount = dec("5")
		in.PaymentMethod = domain.PaymentCash
		in.CashReceived = "20"
	})
	require.NoError(t, err)
	assert.True(t, state.Summary.Total.Equal(dec("15")))
	assert.True(t, state.Summary.Change.Equal(dec("5")))

	sale, err := f.reg.Finalize()
	require.NoError(t, err)
	assert.True(t, sale.Total.Equal(dec("15")))
	assert.True(t, sale.Discount.Equal(dec("5")))
	assert.Equal(t, domain.DefaultClient, sale.Client)

	p, _ := f.catalog.Lookup("A")
	assert.Equal(t, 3, p.Stock)
	require.Equal(t, 1, f.ledger.Count())
	stored, ok := f.ledger.Find(sale.ID)
	require.True(t, ok)
	assert.True(t, stored.Total.Equal(dec("15")))

	state = f.reg.State()
	assert.Empty(t, state.Items)
	assert.Equal(t, "", state.Inputs.CashReceived)
	assert.True(t, state.Inputs.Discount.IsZero())
	assert.Equal(t, domain.PaymentCash, state.Inputs.PaymentMethod)

	// two adds and the finalize
	assert.Equal(t, 3, f.tone.Count())
	assert.Contains(t, f.events.topics, events.SaleFinalized)
}

func TestAddOutOfStockLeavesCartUntouched(t *testing.T) {
	f := newFixture(t, prod("Z", "Empty", "3", 0))
	state, err := f.reg.AddBarcode("Z")
	assert.ErrorIs(t, err, cart.ErrOutOfStock)
	assert.Empty(t, state.Items)
	assert.Equal(t, 0, f.tone.Count())

	_, err = f.reg.AddBarcode("missing")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestFinalizeValidationMutatesNothing(t *testing.T) {
	f := newFixture(t, prod("A", "Mop", "10", 5))

	_, err := f.reg.Finalize()
	assert.ErrorIs(t, err, ErrEmptyCart)

	_, err = f.reg.AddBarcode("A")
	require.NoError(t, err)
	_, err = f.reg.UpdateInputs(func(in *Inputs) { in.CashReceived = "9.99" })
	require.NoError(t, err)

	_, err = f.reg.Finalize()
	assert.ErrorIs(t, err, ErrInsufficientPayment)
	p, _ := f.catalog.Lookup("A")
	assert.Equal(t, 5, p.Stock)
	assert.Equal(t, 0, f.ledger.Count())
	assert.Len(t, f.reg.State().Items, 1)
	assert.Equal(t, "9.99", f.reg.State().Inputs.CashReceived)

	// unreadable cash text counts as zero
	_, err = f.reg.UpdateInputs(func(in *Inputs) { in.CashReceived = "abc" })
	require.NoError(t, err)
	_, err = f.reg.Finalize()
	assert.ErrorIs(t, err, ErrInsufficientPayment)
}

func TestFinalizeCardIgnoresCash(t *testing.T) {
	f := newFixture(t, prod("A", "Mop", "10", 1))
	_, err := f.reg.AddBarcode("A")
	require.NoError(t, err)
	_, err = f.reg.UpdateInputs(func(in *Inputs) {
		in.PaymentMethod = domain.PaymentPix
		in.Client = "  Ana "
	})
	require.NoError(t, err)

	sale, err := f.reg.Finalize()
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPix, sale.PaymentMethod)
	assert.Equal(t, "Ana", sale.Client)

	// the method survives the reset, client does not
	state := f.reg.State()
	assert.Equal(t, domain.PaymentPix, state.Inputs.PaymentMethod)
	assert.Equal(t, "", state.Inputs.Client)
}

func TestFinalizeDrivesStockNegativeAndSkipsDeleted(t *testing.T) {
	f := newFixture(t, prod("A", "Mop", "10", 1), prod("B", "Vase", "2", 3))
	_, err := f.reg.AddBarcode("A")
	require.NoError(t, err)
	_, err = f.reg.AddBarcode("B")
	require.NoError(t, err)

	// another client of the catalog sells the last unit and deletes B
	f.catalog.DecrementStock([]domain.CartItem{{Product: prod("A", "Mop", "10", 1), Qty: 1}})
	require.True(t, f.catalog.Delete("B"))

	_, err = f.reg.UpdateInputs(func(in *Inputs) { in.PaymentMethod = domain.PaymentDebit })
	require.NoError(t, err)
	sale, err := f.reg.Finalize()
	require.NoError(t, err)
	assert.Len(t, sale.Items, 2)

	p, _ := f.catalog.Lookup("A")
	assert.Equal(t, -1, p.Stock)
	_, ok := f.catalog.Lookup("B")
	assert.False(t, ok)
	assert.Contains(t, f.events.topics, events.StockLow)
}

func TestStockAlertsDisabled(t *testing.T) {
	f := newFixture(t, prod("A", "Mop", "10", 1))
	_, err := f.settings.Patch(map[string]interface{}{"enableStockAlerts": false, "soundEnabled": false})
	require.NoError(t, err)
	_, err = f.reg.AddBarcode("A")
	require.NoError(t, err)
	_, err = f.reg.UpdateInputs(func(in *Inputs) { in.PaymentMethod = domain.PaymentCredit })
	require.NoError(t, err)
	_, err = f.reg.Finalize()
	require.NoError(t, err)

	assert.NotContains(t, f.events.topics, events.StockLow)
	assert.Equal(t, 0, f.tone.Count())
}

func TestUpdateInputsValidation(t *testing.T) {
	f := newFixture(t)
	_, err := f.reg.UpdateInputs(func(in *Inputs) { in.Discount = dec("-1") })
	assert.ErrorIs(t, err, ErrNegativeDiscount)
	_, err = f.reg.UpdateInputs(func(in *Inputs) { in.PaymentMethod = "voucher" })
	assert.ErrorIs(t, err, domain.ErrInvalidPaymentMethod)

	state, err := f.reg.UpdateInputs(func(in *Inputs) { in.PaymentMethod = "money" })
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentCash, state.Inputs.PaymentMethod)
}

func TestDiscountAboveSubtotalIsNotClamped(t *testing.T) {
	f := newFixture(t, prod("A", "Mop", "10", 5))
	_, err := f.reg.AddBarcode("A")
	require.NoError(t, err)
	state, err := f.reg.UpdateInputs(func(in *Inputs) {
		in.PaymentMethod = domain.PaymentCredit
		in.Discount = dec("12")
	})
	require.NoError(t, err)
	assert.True(t, state.Summary.Total.Equal(dec("-2")))
}

func TestSuspendAndRestore(t *testing.T) {
	f := newFixture(t, prod("A", "Mop", "10", 5), prod("B", "Vase", "4", 5))

	_, err := f.reg.Suspend()
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, 0, f.queue.Len())

	_, err = f.reg.AddBarcode("A")
	require.NoError(t, err)
	_, err = f.reg.AddBarcode("A")
	require.NoError(t, err)
	_, err = f.reg.UpdateInputs(func(in *Inputs) { in.Discount = dec("3") })
	require.NoError(t, err)

	anon, err := f.reg.Suspend()
	require.NoError(t, err)
	assert.Equal(t, domain.UnknownClient, anon.Client)
	assert.Empty(t, f.reg.State().Items)
	assert.True(t, f.reg.State().Inputs.Discount.IsZero())

	_, err = f.reg.AddBarcode("B")
	require.NoError(t, err)
	_, err = f.reg.UpdateInputs(func(in *Inputs) { in.Client = "Bia" })
	require.NoError(t, err)
	named, err := f.reg.Suspend()
	require.NoError(t, err)
	assert.Equal(t, "Bia", named.Client)
	assert.Equal(t, 2, f.queue.Len())

	// stock is untouched while suspended
	p, _ := f.catalog.Lookup("A")
	assert.Equal(t, 5, p.Stock)

	_, err = f.reg.AddBarcode("B")
	require.NoError(t, err)
	_, err = f.reg.Restore(anon.ID, false)
	assert.ErrorIs(t, err, ErrCartNotEmpty)
	assert.Equal(t, 2, f.queue.Len())

	state, err := f.reg.Restore(anon.ID, true)
	require.NoError(t, err)
	require.Len(t, state.Items, 1)
	assert.Equal(t, "A", state.Items[0].Barcode)
	assert.Equal(t, 2, state.Items[0].Qty)
	assert.Equal(t, "", state.Inputs.Client)
	assert.True(t, state.Inputs.Discount.IsZero())
	assert.Equal(t, 1, f.queue.Len())

	f.reg.Cancel()
	state, err = f.reg.Restore(named.ID, false)
	require.NoError(t, err)
	assert.Equal(t, "Bia", state.Inputs.Client)
	assert.Equal(t, 0, f.queue.Len())

	_, err = f.reg.Restore(named.ID, true)
	assert.ErrorIs(t, err, ErrSuspendedNotFound)
}

func TestCancelRecordsNothing(t *testing.T) {
	f := newFixture(t, prod("A", "Mop", "10", 5))
	_, err := f.reg.AddBarcode("A")
	require.NoError(t, err)
	_, err = f.reg.UpdateInputs(func(in *Inputs) {
		in.Client = "Ana"
		in.CashReceived = "50"
	})
	require.NoError(t, err)

	assert.Equal(t, 1, f.reg.Cancel())
	state := f.reg.State()
	assert.Empty(t, state.Items)
	assert.Equal(t, "", state.Inputs.Client)
	assert.Equal(t, "", state.Inputs.CashReceived)
	assert.Equal(t, 0, f.ledger.Count())
	assert.Equal(t, 0, f.queue.Len())
	p, _ := f.catalog.Lookup("A")
	assert.Equal(t, 5, p.Stock)
	assert.Equal(t, 0, f.reg.Cancel())
}

func TestDeleteSuspended(t *testing.T) {
	f := newFixture(t, prod("A", "Mop", "10", 5))
	_, err := f.reg.AddBarcode("A")
	require.NoError(t, err)
	entry, err := f.reg.Suspend()
	require.NoError(t, err)
	assert.True(t, f.reg.DeleteSuspended(entry.ID))
	assert.False(t, f.reg.DeleteSuspended(entry.ID))
}

func TestSubmit(t *testing.T) {
	f := newFixture(t,
		prod("7891000100015", "Thermal Bottle", "49.90", 20),
		prod("7891000100022", "Container Kit", "89.90", 12),
		prod("7891000100039", "Spin Mop", "65", 15),
	)

	_, err := f.reg.Submit("  ")
	assert.ErrorIs(t, err, ErrEmptyQuery)

	res, err := f.reg.Submit("7891000100015")
	require.NoError(t, err)
	assert.True(t, res.Added)
	assert.Equal(t, "Thermal Bottle", res.Product.Name)

	// exactly one fuzzy match is added
	res, err = f.reg.Submit("mop")
	require.NoError(t, err)
	assert.True(t, res.Added)
	assert.Equal(t, "7891000100039", res.Product.Barcode)
	assert.Len(t, res.State.Items, 2)

	// ambiguous queries offer a draft with the candidates
	res, err = f.reg.Submit("78910001000")
	require.NoError(t, err)
	assert.False(t, res.Added)
	require.NotNil(t, res.Draft)
	assert.Len(t, res.Matches, 3)

	res, err = f.reg.Submit("999")
	require.NoError(t, err)
	require.NotNil(t, res.Draft)
	assert.Equal(t, "999", res.Draft.Barcode)
	assert.Equal(t, domain.DefaultMinStock, res.Draft.MinStock)
	assert.Equal(t, domain.DefaultCategory, res.Draft.Category)
	assert.Empty(t, res.Matches)
	assert.Len(t, f.reg.State().Items, 2)
}

func TestRemoveLine(t *testing.T) {
	f := newFixture(t, prod("A", "Mop", "10", 5), prod("B", "Vase", "2", 5))
	_, _ = f.reg.AddBarcode("A")
	_, _ = f.reg.AddBarcode("A")
	_, _ = f.reg.AddBarcode("B")

	state := f.reg.RemoveLine(7)
	assert.Len(t, state.Items, 2)
	state = f.reg.RemoveLine(0)
	require.Len(t, state.Items, 1)
	assert.True(t, state.Summary.Subtotal.Equal(dec("2")))
}

func TestCashValue(t *testing.T) {
	assert.True(t, CashValue("20").Equal(dec("20")))
	assert.True(t, CashValue(" 12,5 ").Equal(dec("12.5")))
	assert.True(t, CashValue("").IsZero())
	assert.True(t, CashValue("x").IsZero())
}
