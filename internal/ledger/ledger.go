package ledger

import (
	"strings"
	"sync"
	"time"

	"github.com/araddon/dateparse"
	"github.com/pkg/errors"

	"github.com/talkincode/toughpos/internal/domain"
	"github.com/talkincode/toughpos/internal/kvstore"
	"github.com/talkincode/toughpos/pkg/common"
)

// Ledger is the append-only log of finalized sales. Sales are handed out as
// copies and are never mutated once appended.
type Ledger struct {
	mu    sync.RWMutex
	kv    kvstore.Store
	loc   *time.Location
	sales []domain.Sale
}

// New creates a ledger whose calendar date filter is evaluated in loc
func New(kv kvstore.Store, loc *time.Location) *Ledger {
	if loc == nil {
		loc = time.Local
	}
	return &Ledger{kv: kv, loc: loc}
}

// Load reads the persisted log, migrating older record shapes. An absent or
// corrupt value leaves the ledger empty. It returns the number of migrated
// records, which are written back in canonical form.
func (l *Ledger) Load() (migrated int) {
	var stored []storedSale
	if !kvstore.LoadJSON(l.kv, domain.KeySales, &stored) {
		return 0
	}
	sales := make([]domain.Sale, 0, len(stored))
	for _, s := range stored {
		sale, changed := s.canonical(l.loc)
		if changed {
			migrated++
		}
		sales = append(sales, sale)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sales = sales
	if migrated > 0 {
		l.persist()
	}
	return migrated
}

func (l *Ledger) persist() {
	_ = kvstore.SaveJSON(l.kv, domain.KeySales, l.sales)
}

// Append stores a copy of sale at the end of the log
func (l *Ledger) Append(sale domain.Sale) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sales = append(l.sales, sale.Clone())
	l.persist()
}

func (l *Ledger) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.sales)
}

// List returns all sales in append order
func (l *Ledger) List() []domain.Sale {
	l.mu.RLock()
	defer l.mu.RUnlock()
	result := make([]domain.Sale, len(l.sales))
	for i, s := range l.sales {
		result[i] = s.Clone()
	}
	return result
}

// Recent returns up to n of the latest sales, newest first
func (l *Ledger) Recent(n int) []domain.Sale {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var result []domain.Sale
	for i := len(l.sales) - 1; i >= 0 && len(result) < n; i-- {
		result = append(result, l.sales[i].Clone())
	}
	return result
}

func (l *Ledger) Find(id string) (domain.Sale, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, s := range l.sales {
		if s.ID == id {
			return s.Clone(), true
		}
	}
	return domain.Sale{}, false
}

// Filter narrows the sales history
type Filter struct {
	// Query matches the sale id or client name, ignoring case
	Query string
	// Date keeps only sales of that calendar day, in any format dateparse accepts
	Date string
}

var ErrInvalidDate = errors.New("invalid date filter")

// History returns the sales matching f, newest first
func (l *Ledger) History(f Filter) ([]domain.Sale, error) {
	var day time.Time
	hasDay := strings.TrimSpace(f.Date) != ""
	if hasDay {
		t, err := dateparse.ParseIn(strings.TrimSpace(f.Date), l.loc)
		if err != nil {
			return nil, errors.Wrap(ErrInvalidDate, err.Error())
		}
		day = t
	}
	query := strings.TrimSpace(f.Query)

	l.mu.RLock()
	defer l.mu.RUnlock()
	result := make([]domain.Sale, 0)
	for i := len(l.sales) - 1; i >= 0; i-- {
		s := l.sales[i]
		if query != "" && !common.ContainsFold(s.ID, query) && !common.ContainsFold(s.Client, query) {
			continue
		}
		if hasDay && !sameDay(s.Date.In(l.loc), day) {
			continue
		}
		result = append(result, s.Clone())
	}
	return result, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
