package events

import (
	"github.com/asaskevich/EventBus"
)

// Domain topics published by the register
const (
	// SaleFinalized carries the appended domain.Sale
	SaleFinalized = "sale.finalized"
	// SaleSuspended carries the queued domain.SuspendedSale
	SaleSuspended = "sale.suspended"
	// SaleCanceled carries the number of discarded cart lines
	SaleCanceled = "sale.canceled"
	// StockLow carries a domain.Product whose stock fell to its threshold
	StockLow = "stock.low"
)

// Publisher is what the register needs from the bus
type Publisher interface {
	Publish(topic string, args ...interface{})
}

// Bus is the process wide event bus
type Bus struct {
	EventBus.Bus
}

func NewBus() *Bus {
	return &Bus{Bus: EventBus.New()}
}

// Discard drops every event
type Discard struct{}

func (Discard) Publish(string, ...interface{}) {}
