package metrics

import (
	"path"
	"sync"
	"time"

	"github.com/nakabonne/tstorage"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	SaleFinalized   = "pos_sale_finalized"
	SaleRevenue     = "pos_sale_revenue"
	SaleSuspended   = "pos_sale_suspended"
	SaleCanceled    = "pos_sale_canceled"
	LowStockProduct = "pos_low_stock_products"
	ReceiptPrinted  = "pos_receipt_printed"
	ReceiptFailed   = "pos_receipt_failed"
)

var (
	mu       sync.RWMutex
	storage  tstorage.Storage
	counters = map[string]int64{}
	gauges   = map[string]int64{}
)

// Point is a single stored sample
type Point struct {
	Timestamp int64   `json:"timestamp"`
	Value     float64 `json:"value"`
}

// InitMetrics opens the time series storage under workdir/data/metrics.
// Counters and gauges still work in memory when it is never called.
func InitMetrics(workdir string) error {
	s, err := tstorage.NewStorage(
		tstorage.WithDataPath(path.Join(workdir, "data", "metrics")),
		tstorage.WithTimestampPrecision(tstorage.Seconds),
		tstorage.WithRetention(90*24*time.Hour),
	)
	if err != nil {
		return errors.Wrap(err, "open metrics storage")
	}
	mu.Lock()
	storage = s
	mu.Unlock()
	return nil
}

func insert(name string, value float64) {
	if storage == nil {
		return
	}
	err := storage.InsertRows([]tstorage.Row{{
		Metric:    name,
		DataPoint: tstorage.DataPoint{Timestamp: time.Now().Unix(), Value: value},
	}})
	if err != nil {
		zap.L().Warn("metrics insert failed", zap.String("metric", name), zap.Error(err))
	}
}

// SetGauge records the current value of name
func SetGauge(name string, value int64) {
	mu.Lock()
	defer mu.Unlock()
	gauges[name] = value
	insert(name, float64(value))
}

// Incr adds delta to the counter name
func Incr(name string, delta int64) {
	mu.Lock()
	defer mu.Unlock()
	counters[name] += delta
	insert(name, float64(counters[name]))
}

// Observe stores a raw sample, e.g. a sale amount
func Observe(name string, value float64) {
	mu.Lock()
	defer mu.Unlock()
	insert(name, value)
}

func GetGauge(name string) int64 {
	mu.RLock()
	defer mu.RUnlock()
	return gauges[name]
}

func GetCounter(name string) int64 {
	mu.RLock()
	defer mu.RUnlock()
	return counters[name]
}

// Query returns samples of name between start and end
func Query(name string, start, end time.Time) ([]Point, error) {
	mu.RLock()
	defer mu.RUnlock()
	if storage == nil {
		return nil, nil
	}
	points, err := storage.Select(name, nil, start.Unix(), end.Unix()+1)
	if errors.Is(err, tstorage.ErrNoDataPoints) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	result := make([]Point, 0, len(points))
	for _, p := range points {
		result = append(result, Point{Timestamp: p.Timestamp, Value: p.Value})
	}
	return result, nil
}

func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if storage == nil {
		return nil
	}
	err := storage.Close()
	storage = nil
	return err
}
