package app

import (
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/text/language"

	"github.com/talkincode/toughpos/config"
	"github.com/talkincode/toughpos/internal/catalog"
	"github.com/talkincode/toughpos/internal/checkout"
	"github.com/talkincode/toughpos/internal/insight"
	"github.com/talkincode/toughpos/internal/kvstore"
	"github.com/talkincode/toughpos/internal/ledger"
	"github.com/talkincode/toughpos/internal/receipt"
	"github.com/talkincode/toughpos/internal/settings"
	"github.com/talkincode/toughpos/internal/suspend"
)

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
	Location() *time.Location
	Language() language.Tag
}

// StorageProvider provides the durable key-value store
type StorageProvider interface {
	Storage() kvstore.Store
}

// StoreProvider provides the domain stores
type StoreProvider interface {
	Catalog() *catalog.Store
	Ledger() *ledger.Ledger
	Suspended() *suspend.Queue
	Settings() *settings.Store
}

// RegisterProvider provides the checkout orchestrator
type RegisterProvider interface {
	Register() *checkout.Register
}

// ReceiptProvider provides receipt rendering and delivery
type ReceiptProvider interface {
	Receipts() *receipt.Dispatcher
}

// InsightProvider provides the background sales analysis
type InsightProvider interface {
	Insight() *insight.Job
}

// SchedulerProvider provides task scheduling capability
type SchedulerProvider interface {
	Scheduler() *cron.Cron
}

// AppContext combines all provider interfaces for full application context
// Services should depend on specific providers or this combined interface
type AppContext interface {
	ConfigProvider
	StorageProvider
	StoreProvider
	RegisterProvider
	ReceiptProvider
	InsightProvider
	SchedulerProvider

	// Seed reinstalls the demo catalog when force is set or the catalog is empty
	Seed(force bool) bool
	// Jobs lists the scheduled jobs with their last run
	Jobs() []JobStatus
	// RunJobNow triggers a scheduled job immediately by name
	RunJobNow(name string) error
}
