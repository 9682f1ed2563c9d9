package checkout

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/talkincode/toughpos/internal/cart"
	"github.com/talkincode/toughpos/internal/catalog"
	"github.com/talkincode/toughpos/internal/domain"
	"github.com/talkincode/toughpos/internal/events"
	"github.com/talkincode/toughpos/internal/ledger"
	"github.com/talkincode/toughpos/internal/settings"
	"github.com/talkincode/toughpos/internal/suspend"
	"github.com/talkincode/toughpos/pkg/common"
)

var (
	ErrEmptyCart           = errors.New("cart is empty")
	ErrInsufficientPayment = errors.New("cash received is less than the total")
	ErrNegativeDiscount    = errors.New("discount must be greater than or equal to 0")
	ErrEmptyQuery          = errors.New("barcode or name is required")
	ErrSuspendedNotFound   = errors.New("suspended sale not found")
	ErrCartNotEmpty        = errors.New("cart is not empty")
)

// Inputs are the transient checkout fields of the sale in progress
type Inputs struct {
	PaymentMethod domain.PaymentMethod `json:"paymentMethod"`
	CashReceived  string               `json:"cashReceived"`
	Discount      decimal.Decimal      `json:"discount"`
	Client        string               `json:"client"`
}

// State is a consistent snapshot of the register
type State struct {
	Items   []domain.CartItem `json:"items"`
	Inputs  Inputs            `json:"inputs"`
	Summary cart.Summary      `json:"summary"`
}

// Deps are the stores and collaborators a register coordinates
type Deps struct {
	Catalog  *catalog.Store
	Ledger   *ledger.Ledger
	Queue    *suspend.Queue
	Settings *settings.Store
	Notifier Notifier
	Events   events.Publisher
}

// Register is the checkout orchestrator. Every operation runs to completion
// under one mutex before the next one starts.
type Register struct {
	mu       sync.Mutex
	cart     *cart.Cart
	inputs   Inputs
	catalog  *catalog.Store
	ledger   *ledger.Ledger
	queue    *suspend.Queue
	settings *settings.Store
	notifier Notifier
	events   events.Publisher
	now      func() time.Time
	newID    func() string
}

func New(d Deps) *Register {
	r := &Register{
		cart:     cart.New(),
		inputs:   Inputs{PaymentMethod: domain.PaymentCash, Discount: decimal.Zero},
		catalog:  d.Catalog,
		ledger:   d.Ledger,
		queue:    d.Queue,
		settings: d.Settings,
		notifier: d.Notifier,
		events:   d.Events,
		now:      time.Now,
		newID:    common.UUIDString,
	}
	if r.notifier == nil {
		r.notifier = Mute{}
	}
	if r.events == nil {
		r.events = events.Discard{}
	}
	return r
}

// CashValue parses the cash received text, treating anything unreadable as 0
func CashValue(s string) decimal.Decimal {
	s = strings.TrimSpace(strings.Replace(s, ",", ".", 1))
	if s == "" {
		return decimal.Zero
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return v
}

func (r *Register) summary() cart.Summary {
	return r.cart.Totals(r.inputs.Discount, r.inputs.PaymentMethod, CashValue(r.inputs.CashReceived))
}

func (r *Register) state() State {
	items := r.cart.Items()
	if items == nil {
		items = []domain.CartItem{}
	}
	return State{Items: items, Inputs: r.inputs, Summary: r.summary()}
}

func (r *Register) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state()
}

func (r *Register) beep() {
	if r.settings.Get().SoundEnabled {
		r.notifier.Beep()
	}
}

// AddProduct puts one unit of p in the cart
func (r *Register) AddProduct(p domain.Product) (State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.cart.Add(p); err != nil {
		return r.state(), err
	}
	r.beep()
	return r.state(), nil
}

// AddBarcode adds the catalog product stored under barcode
func (r *Register) AddBarcode(barcode string) (State, error) {
	p, ok := r.catalog.Lookup(strings.TrimSpace(barcode))
	if !ok {
		return r.State(), domain.ErrProductNotFound
	}
	return r.AddProduct(p)
}

// RemoveLine drops the whole cart line at index; out of range is a no-op
func (r *Register) RemoveLine(index int) State {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cart.Remove(index)
	return r.state()
}

// UpdateInputs applies fn to a copy of the transient inputs and commits it
// when the result is valid
func (r *Register) UpdateInputs(fn func(in *Inputs)) (State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	next := r.inputs
	fn(&next)
	if next.Discount.IsNegative() {
		return r.state(), ErrNegativeDiscount
	}
	method, err := domain.ParsePaymentMethod(string(next.PaymentMethod))
	if err != nil {
		return r.state(), err
	}
	next.PaymentMethod = method
	r.inputs = next
	return r.state(), nil
}

func (r *Register) resetInputs() {
	r.inputs.CashReceived = ""
	r.inputs.Client = ""
	r.inputs.Discount = decimal.Zero
}

// Finalize commits the cart as a sale. Validation happens before anything
// changes: an empty cart or short cash payment leaves every store untouched.
func (r *Register) Finalize() (domain.Sale, error) {
	r.mu.Lock()
	if r.cart.Empty() {
		r.mu.Unlock()
		return domain.Sale{}, ErrEmptyCart
	}
	sum := r.summary()
	if r.inputs.PaymentMethod == domain.PaymentCash && CashValue(r.inputs.CashReceived).LessThan(sum.Total) {
		r.mu.Unlock()
		return domain.Sale{}, ErrInsufficientPayment
	}

	items := r.cart.Items()
	low := r.catalog.DecrementStock(items)
	sale := domain.Sale{
		ID:            r.newID(),
		Date:          r.now(),
		Items:         items,
		Subtotal:      sum.Subtotal,
		Discount:      sum.Discount,
		Total:         sum.Total,
		PaymentMethod: r.inputs.PaymentMethod,
		Client:        common.IfEmptyStr(strings.TrimSpace(r.inputs.Client), domain.DefaultClient),
	}
	r.ledger.Append(sale)
	r.cart.Clear()
	r.resetInputs()
	r.beep()
	r.mu.Unlock()

	zap.L().Info("sale finalized",
		zap.String("id", sale.ID),
		zap.String("total", sale.Total.StringFixed(2)),
		zap.String("payment", string(sale.PaymentMethod)))
	r.events.Publish(events.SaleFinalized, sale.Clone())
	if r.settings.Get().EnableStockAlerts {
		for _, p := range low {
			r.events.Publish(events.StockLow, p)
		}
	}
	return sale, nil
}

// Suspend sets the cart aside and clears it together with client and discount
func (r *Register) Suspend() (domain.SuspendedSale, error) {
	r.mu.Lock()
	if r.cart.Empty() {
		r.mu.Unlock()
		return domain.SuspendedSale{}, ErrEmptyCart
	}
	entry := domain.SuspendedSale{
		ID:     r.newID(),
		Date:   r.now(),
		Items:  r.cart.Items(),
		Client: common.IfEmptyStr(strings.TrimSpace(r.inputs.Client), domain.UnknownClient),
	}
	r.queue.Push(entry)
	r.cart.Clear()
	r.inputs.Client = ""
	r.inputs.Discount = decimal.Zero
	r.mu.Unlock()

	r.events.Publish(events.SaleSuspended, entry.Clone())
	return entry, nil
}

// Cancel discards the cart and transient inputs without recording anything
func (r *Register) Cancel() int {
	r.mu.Lock()
	n := r.cart.Len()
	r.cart.Clear()
	r.resetInputs()
	r.mu.Unlock()

	if n > 0 {
		r.events.Publish(events.SaleCanceled, n)
	}
	return n
}

// Restore moves the suspended sale id back into the cart, replacing its
// lines. Unless replace is set a non-empty cart is refused with
// ErrCartNotEmpty. Discount is reset since suspended sales do not keep one.
func (r *Register) Restore(id string, replace bool) (State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !replace && !r.cart.Empty() {
		return r.state(), ErrCartNotEmpty
	}
	entry, ok := r.queue.Take(id)
	if !ok {
		return r.state(), ErrSuspendedNotFound
	}
	r.cart.Replace(entry.Items)
	r.inputs.Client = entry.Client
	if entry.Client == domain.UnknownClient {
		r.inputs.Client = ""
	}
	r.inputs.Discount = decimal.Zero
	return r.state(), nil
}

// DeleteSuspended drops a queued cart, a no-op when absent
func (r *Register) DeleteSuspended(id string) bool {
	return r.queue.Delete(id)
}

// SubmitResult is the outcome of a barcode field submit. Either a product
// was added, or Draft holds a prefilled record to create.
type SubmitResult struct {
	Added   bool             `json:"added"`
	Product *domain.Product  `json:"product,omitempty"`
	Draft   *domain.Product  `json:"draft,omitempty"`
	Matches []domain.Product `json:"matches,omitempty"`
	State   State            `json:"state"`
}

// Submit resolves query as an exact barcode first, then as a search with
// exactly one match. Anything else yields a draft for a new product.
func (r *Register) Submit(query string) (SubmitResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return SubmitResult{State: r.State()}, ErrEmptyQuery
	}
	p, ok := r.catalog.Lookup(query)
	if !ok {
		matches := r.catalog.Search(query)
		if len(matches) != 1 {
			draft := domain.DraftProduct(query)
			return SubmitResult{Draft: &draft, Matches: matches, State: r.State()}, nil
		}
		p = matches[0]
	}
	state, err := r.AddProduct(p)
	if err != nil {
		return SubmitResult{Product: &p, State: state}, err
	}
	return SubmitResult{Added: true, Product: &p, State: state}, nil
}
