package catalog

import (
	"sort"
	"strings"
	"sync"

	"github.com/google/btree"
	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/talkincode/toughpos/internal/domain"
	"github.com/talkincode/toughpos/internal/kvstore"
	"github.com/talkincode/toughpos/pkg/common"
)

// SearchLimit caps quick search results
const SearchLimit = 5

// Store is the single source of truth for products, keyed by barcode.
// Every mutation rewrites the products snapshot in the key-value store.
type Store struct {
	mu       sync.RWMutex
	kv       kvstore.Store
	lang     language.Tag
	products map[string]domain.Product
	index    *btree.BTreeG[string]
}

func New(kv kvstore.Store, lang language.Tag) *Store {
	return &Store{
		kv:       kv,
		lang:     lang,
		products: map[string]domain.Product{},
		index:    btree.NewG[string](16, func(a, b string) bool { return a < b }),
	}
}

// Load reads the persisted catalog. When the key is absent or corrupt the
// demo catalog is installed and persisted, and Load reports true.
func (s *Store) Load() (seeded bool) {
	products := map[string]domain.Product{}
	if !kvstore.LoadJSON(s.kv, domain.KeyProducts, &products) {
		s.Reset(domain.DefaultProducts())
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replace(products)
	return false
}

// Reset replaces the whole catalog
func (s *Store) Reset(products map[string]domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replace(products)
	s.persist()
}

func (s *Store) replace(products map[string]domain.Product) {
	s.products = make(map[string]domain.Product, len(products))
	s.index.Clear(false)
	for key, p := range products {
		// the map key is authoritative for records written by older versions
		if p.Barcode == "" {
			p.Barcode = key
		}
		s.products[p.Barcode] = p
		s.index.ReplaceOrInsert(p.Barcode)
	}
}

func (s *Store) persist() {
	_ = kvstore.SaveJSON(s.kv, domain.KeyProducts, s.products)
}

// Upsert inserts or fully replaces the record at p.Barcode
func (s *Store) Upsert(p domain.Product) error {
	p.Barcode = strings.TrimSpace(p.Barcode)
	p.Name = strings.TrimSpace(p.Name)
	if p.Category == "" {
		p.Category = domain.DefaultCategory
	}
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.Barcode] = p
	s.index.ReplaceOrInsert(p.Barcode)
	s.persist()
	return nil
}

// UpsertMany applies a batch with a single write, skipping invalid records
func (s *Store) UpsertMany(items []domain.Product) (saved int, rejected []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range items {
		p.Barcode = strings.TrimSpace(p.Barcode)
		p.Name = strings.TrimSpace(p.Name)
		if p.Category == "" {
			p.Category = domain.DefaultCategory
		}
		if err := p.Validate(); err != nil {
			rejected = append(rejected, p.Barcode)
			continue
		}
		s.products[p.Barcode] = p
		s.index.ReplaceOrInsert(p.Barcode)
		saved++
	}
	if saved > 0 {
		s.persist()
	}
	return saved, rejected
}

// Delete removes the record, reporting whether it existed
func (s *Store) Delete(barcode string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[barcode]; !ok {
		return false
	}
	delete(s.products, barcode)
	s.index.Delete(barcode)
	s.persist()
	return true
}

// Lookup is the exact barcode lookup used for scan-to-add
func (s *Store) Lookup(barcode string) (domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[barcode]
	return p, ok
}

func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products)
}

// All returns every product in barcode order
func (s *Store) All() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Product, 0, len(s.products))
	s.index.Ascend(func(barcode string) bool {
		result = append(result, s.products[barcode])
		return true
	})
	return result
}

// Search matches the name case-insensitively or the barcode as a substring.
// At most SearchLimit products are returned, in barcode order.
func (s *Store) Search(query string) []domain.Product {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Product
	s.index.Ascend(func(barcode string) bool {
		p := s.products[barcode]
		if common.ContainsFold(p.Name, q) || common.ContainsFold(p.Barcode, q) {
			result = append(result, p)
		}
		return len(result) < SearchLimit
	})
	return result
}

// Inventory lists products matching term by name, barcode or category,
// low stock first and then by name in the configured locale
func (s *Store) Inventory(term string) []domain.Product {
	term = strings.TrimSpace(term)
	s.mu.RLock()
	result := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		if term == "" ||
			common.ContainsFold(p.Name, term) ||
			common.ContainsFold(p.Barcode, term) ||
			common.ContainsFold(p.Category, term) {
			result = append(result, p)
		}
	}
	s.mu.RUnlock()
	SortInventory(result, s.lang)
	return result
}

// SortInventory orders low stock products first, then by name
func SortInventory(products []domain.Product, lang language.Tag) {
	col := collate.New(lang)
	sort.SliceStable(products, func(i, j int) bool {
		a, b := products[i], products[j]
		if a.LowStock() != b.LowStock() {
			return a.LowStock()
		}
		return col.CompareString(a.Name, b.Name) < 0
	})
}

// LowStock lists every product at or under its threshold
func (s *Store) LowStock() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Product
	s.index.Ascend(func(barcode string) bool {
		if p := s.products[barcode]; p.LowStock() {
			result = append(result, p)
		}
		return true
	})
	return result
}

// DecrementStock subtracts each line quantity from the matching product.
// Lines whose barcode is no longer in the catalog are skipped. Stock may go
// negative. It returns the products that are low on stock afterwards.
func (s *Store) DecrementStock(items []domain.CartItem) (low []domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range items {
		p, ok := s.products[it.Barcode]
		if !ok {
			zap.L().Debug("sold item no longer in catalog, stock untouched", zap.String("barcode", it.Barcode))
			continue
		}
		p.Stock -= it.Qty
		s.products[it.Barcode] = p
		if p.LowStock() {
			low = append(low, p)
		}
	}
	s.persist()
	return low
}
