package receipt

import (
	"context"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/talkincode/toughpos/internal/domain"
	"github.com/talkincode/toughpos/pkg/metrics"
)

var ErrBusy = errors.New("receipt printer queue is full")

// Dispatcher renders and prints receipts on a bounded worker pool so
// checkout never waits for a printer
type Dispatcher struct {
	pool     *ants.Pool
	printer  Printer
	settings func() domain.AppSettings
	loc      *time.Location
	timeout  time.Duration
}

func NewDispatcher(size int, printer Printer, settings func() domain.AppSettings, loc *time.Location) (*Dispatcher, error) {
	if size <= 0 {
		size = 1
	}
	pool, err := ants.NewPool(size, ants.WithNonblocking(true))
	if err != nil {
		return nil, errors.Wrap(err, "create receipt pool")
	}
	return &Dispatcher{
		pool:     pool,
		printer:  printer,
		settings: settings,
		loc:      loc,
		timeout:  30 * time.Second,
	}, nil
}

// Dispatch queues the receipt of sale and returns immediately
func (d *Dispatcher) Dispatch(sale domain.Sale) error {
	job := Job{Sale: sale, Text: Render(sale, d.settings(), d.loc)}
	err := d.pool.Submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		if err := d.printer.Print(ctx, job); err != nil {
			metrics.Incr(metrics.ReceiptFailed, 1)
			zap.L().Error("receipt print failed", zap.String("sale", sale.ID), zap.Error(err))
			return
		}
		metrics.Incr(metrics.ReceiptPrinted, 1)
		zap.L().Info("receipt printed", zap.String("sale", sale.ID))
	})
	if errors.Is(err, ants.ErrPoolOverload) {
		return ErrBusy
	}
	return err
}

// OnSaleFinalized is the event bus handler for finalized sales
func (d *Dispatcher) OnSaleFinalized(sale domain.Sale) {
	if err := d.Dispatch(sale); err != nil {
		zap.L().Warn("receipt not queued", zap.String("sale", sale.ID), zap.Error(err))
	}
}

func (d *Dispatcher) Running() int {
	return d.pool.Running()
}

// Release waits for queued receipts up to timeout and stops the pool
func (d *Dispatcher) Release(timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for d.pool.Running() > 0 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	d.pool.Release()
}
