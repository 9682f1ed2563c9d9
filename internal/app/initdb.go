package app

import (
	"go.uber.org/zap"

	"github.com/talkincode/toughpos/internal/domain"
)

func (a *Application) checkSettings() {
	if !a.settings.Load() {
		zap.L().Info("initialized default settings",
			zap.String("companyName", a.settings.Get().CompanyName))
	}
}

func (a *Application) checkCatalog() {
	if a.catalog.Load() {
		zap.L().Info("initialized demo catalog", zap.Int("products", a.catalog.Count()))
	}
}

// Seed reinstalls the demo catalog when force is set or the catalog is
// empty. Products outside the demo set are kept.
func (a *Application) Seed(force bool) bool {
	if !force && a.catalog.Count() > 0 {
		return false
	}
	products := domain.DefaultProducts()
	for _, p := range a.catalog.All() {
		if _, ok := products[p.Barcode]; !ok {
			products[p.Barcode] = p
		}
	}
	a.catalog.Reset(products)
	zap.L().Warn("demo catalog seeded",
		zap.Bool("force", force),
		zap.Int("products", len(products)))
	return true
}
