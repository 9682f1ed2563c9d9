package app

import (
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	jsoniter "github.com/json-iterator/go"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/text/language"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/talkincode/toughpos/config"
	"github.com/talkincode/toughpos/internal/catalog"
	"github.com/talkincode/toughpos/internal/checkout"
	"github.com/talkincode/toughpos/internal/domain"
	"github.com/talkincode/toughpos/internal/events"
	"github.com/talkincode/toughpos/internal/insight"
	"github.com/talkincode/toughpos/internal/kvstore"
	"github.com/talkincode/toughpos/internal/ledger"
	"github.com/talkincode/toughpos/internal/receipt"
	"github.com/talkincode/toughpos/internal/settings"
	"github.com/talkincode/toughpos/internal/suspend"
	"github.com/talkincode/toughpos/pkg/metrics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Application struct {
	appConfig *config.AppConfig
	loc       *time.Location
	lang      language.Tag
	kv        kvstore.Store
	bus       *events.Bus
	catalog   *catalog.Store
	ledger    *ledger.Ledger
	suspended *suspend.Queue
	settings  *settings.Store
	register  *checkout.Register
	receipts  *receipt.Dispatcher
	insight   *insight.Job
	sched     *cron.Cron
	jobs      *jobRegistry
	kvCancel  []func()
}

// Ensure Application implements all interfaces
var (
	_ ConfigProvider    = (*Application)(nil)
	_ StorageProvider   = (*Application)(nil)
	_ StoreProvider     = (*Application)(nil)
	_ RegisterProvider  = (*Application)(nil)
	_ ReceiptProvider   = (*Application)(nil)
	_ InsightProvider   = (*Application)(nil)
	_ SchedulerProvider = (*Application)(nil)
	_ AppContext        = (*Application)(nil)
)

func NewApplication(appConfig *config.AppConfig) *Application {
	a := &Application{appConfig: appConfig, loc: time.Local, lang: language.English}
	if loc, err := time.LoadLocation(appConfig.System.Location); err == nil {
		a.loc = loc
	}
	if tag, err := language.Parse(appConfig.System.Language); err == nil {
		a.lang = tag
	}
	a.jobs = newJobRegistry()
	return a
}

func (a *Application) Config() *config.AppConfig {
	return a.appConfig
}

func (a *Application) Location() *time.Location {
	return a.loc
}

func (a *Application) Language() language.Tag {
	return a.lang
}

func (a *Application) Storage() kvstore.Store {
	return a.kv
}

func (a *Application) Catalog() *catalog.Store {
	return a.catalog
}

func (a *Application) Ledger() *ledger.Ledger {
	return a.ledger
}

func (a *Application) Suspended() *suspend.Queue {
	return a.suspended
}

func (a *Application) Settings() *settings.Store {
	return a.settings
}

func (a *Application) Register() *checkout.Register {
	return a.register
}

func (a *Application) Receipts() *receipt.Dispatcher {
	return a.receipts
}

func (a *Application) Insight() *insight.Job {
	return a.insight
}

// Scheduler returns the cron scheduler
func (a *Application) Scheduler() *cron.Cron {
	return a.sched
}

func (a *Application) Init(cfg *config.AppConfig) {
	time.Local = a.loc

	// Initialize zap logger
	var zapConfig zap.Config
	if cfg.Logger.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}
	zapConfig.OutputPaths = []string{"stdout"}

	// Build logger with file rotation if enabled
	var logger *zap.Logger
	var err error
	if cfg.Logger.FileEnable {
		lumberJackLogger := &lumberjack.Logger{
			Filename:   cfg.Logger.Filename,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
			Compress:   false,
		}

		core := zapcore.NewTee(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(lumberJackLogger),
				zapConfig.Level,
			),
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				zapConfig.Level,
			),
		)
		logger = zap.New(core, zap.AddCaller())
	} else {
		logger, err = zapConfig.Build(zap.AddCaller())
		if err != nil {
			panic(err)
		}
	}
	zap.ReplaceGlobals(logger)

	// Initialize metrics with workdir convention
	if err = metrics.InitMetrics(cfg.System.Workdir); err != nil {
		zap.S().Warn("Failed to initialize metrics:", err)
	}

	a.InitStores(openStorage(cfg))
	a.initJob()
}

// openStorage opens the configured backend. A backend that cannot be opened
// falls back to a volatile memory store so the register keeps selling.
func openStorage(cfg *config.AppConfig) kvstore.Store {
	var (
		kv  kvstore.Store
		err error
	)
	switch strings.ToLower(cfg.Storage.Type) {
	case "postgres":
		kv, err = kvstore.OpenPostgres(cfg.Storage.Dsn, cfg.System.Debug)
	case "memory":
		kv = kvstore.NewMemoryStore()
	default:
		kv, err = kvstore.OpenBolt(cfg.GetStoragePath())
	}
	if err != nil {
		zap.L().Error("storage unavailable, falling back to memory; data will not survive a restart",
			zap.String("type", cfg.Storage.Type), zap.Error(err))
		return kvstore.NewMemoryStore()
	}
	zap.S().Infof("Storage ready, type: %s", cfg.Storage.Type)
	return kv
}

// InitStores loads every store from kv and wires the register and its
// listeners. Tests call it directly with a memory store.
func (a *Application) InitStores(kv kvstore.Store) {
	cfg := a.appConfig
	a.kv = kv
	a.bus = events.NewBus()

	a.settings = settings.New(kv)
	a.checkSettings()
	a.catalog = catalog.New(kv, a.lang)
	a.checkCatalog()
	a.ledger = ledger.New(kv, a.loc)
	if n := a.ledger.Load(); n > 0 {
		zap.L().Info("migrated legacy sales", zap.Int("count", n))
	}
	a.suspended = suspend.New(kv)
	a.suspended.Load()

	var notifier checkout.Notifier = checkout.Mute{}
	if !cfg.System.Debug {
		notifier = &checkout.Bell{W: os.Stdout}
	}
	a.register = checkout.New(checkout.Deps{
		Catalog:  a.catalog,
		Ledger:   a.ledger,
		Queue:    a.suspended,
		Settings: a.settings,
		Notifier: notifier,
		Events:   a.bus,
	})

	receipts, err := receipt.NewDispatcher(cfg.Receipt.PoolSize, a.receiptPrinter(), a.settings.Get, a.loc)
	if err != nil {
		zap.L().Error("receipt dispatcher unavailable", zap.Error(err))
	}
	a.receipts = receipts

	a.insight = insight.NewJob(&insight.Client{
		Endpoint: cfg.Insight.Endpoint,
		ApiKey:   cfg.Insight.ApiKey,
		Model:    cfg.Insight.Model,
		Timeout:  time.Duration(cfg.Insight.Timeout) * time.Second,
	})

	a.subscribe()
	a.updateLowStockGauge()
	a.registerJobs()
}

func (a *Application) receiptPrinter() receipt.Printer {
	cfg := a.appConfig
	printers := receipt.MultiPrinter{receipt.FilePrinter{Dir: cfg.GetReceiptDir()}}
	if cfg.Receipt.SmtpHost != "" && cfg.Receipt.MailTo != "" {
		printers = append(printers, receipt.MailPrinter{
			Host:     cfg.Receipt.SmtpHost,
			Port:     cfg.Receipt.SmtpPort,
			Username: cfg.Receipt.SmtpUser,
			Password: cfg.Receipt.SmtpPwd,
			From:     cfg.Receipt.MailFrom,
			To:       cfg.Receipt.MailTo,
		})
	}
	return printers
}

// subscribe attaches metrics and receipt delivery to domain events and
// keeps the low stock gauge in step with catalog writes
func (a *Application) subscribe() {
	sub := func(topic string, fn interface{}) {
		if err := a.bus.SubscribeAsync(topic, fn, false); err != nil {
			zap.L().Error("event subscribe failed", zap.String("topic", topic), zap.Error(err))
		}
	}
	sub(events.SaleFinalized, func(sale domain.Sale) {
		metrics.Incr(metrics.SaleFinalized, 1)
		metrics.Observe(metrics.SaleRevenue, sale.Total.InexactFloat64())
	})
	if a.receipts != nil {
		sub(events.SaleFinalized, a.receipts.OnSaleFinalized)
	}
	sub(events.SaleSuspended, func(domain.SuspendedSale) {
		metrics.Incr(metrics.SaleSuspended, 1)
	})
	sub(events.SaleCanceled, func(int) {
		metrics.Incr(metrics.SaleCanceled, 1)
	})
	sub(events.StockLow, func(p domain.Product) {
		zap.L().Warn("product low on stock",
			zap.String("barcode", p.Barcode),
			zap.String("name", p.Name),
			zap.Int("stock", p.Stock),
			zap.Int("minStock", p.MinStock))
	})

	// the catalog still holds its lock while writing, so the snapshot is
	// decoded here instead of read back from the store
	a.kvCancel = append(a.kvCancel, a.kv.Subscribe(domain.KeyProducts, func(value []byte) {
		products := map[string]domain.Product{}
		if err := json.Unmarshal(value, &products); err != nil {
			zap.L().Warn("products snapshot unreadable", zap.Error(err))
			return
		}
		low := 0
		for _, p := range products {
			if p.LowStock() {
				low++
			}
		}
		metrics.SetGauge(metrics.LowStockProduct, int64(low))
	}))
}

func (a *Application) updateLowStockGauge() {
	metrics.SetGauge(metrics.LowStockProduct, int64(len(a.catalog.LowStock())))
}

// WaitEvents blocks until every async event handler has returned
func (a *Application) WaitEvents() {
	if a.bus != nil {
		a.bus.WaitAsync()
	}
}

// Release releases application resources
func (a *Application) Release() {
	if a.sched != nil {
		<-a.sched.Stop().Done()
	}
	for _, cancel := range a.kvCancel {
		cancel()
	}
	if a.insight != nil {
		a.insight.Cancel()
	}
	a.WaitEvents()
	if a.receipts != nil {
		a.receipts.Release(10 * time.Second)
	}
	if a.kv != nil {
		if err := a.kv.Close(); err != nil {
			zap.L().Error("storage close failed", zap.Error(err))
		}
	}
	_ = metrics.Close()
	_ = zap.L().Sync()
}
