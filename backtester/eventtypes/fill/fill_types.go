package fill

import (
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventtypes/event"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventtypes/order"
	"github.com/shopspring/decimal"
)

// Fill is the immutable outcome of one execution attempt against a bar
type Fill struct {
	event.Base
	OrderID         string          `json:"order-id"`
	Side            order.Side      `json:"side"`
	Type            order.Type      `json:"type"`
	Purpose         order.Purpose   `json:"purpose"`
	Status          order.Status    `json:"status"`
	RequestedAmount decimal.Decimal `json:"requested-amount"`
	FilledAmount    decimal.Decimal `json:"filled-amount"`
	Price           decimal.Decimal `json:"fill-price"`
	// ReferencePrice is the decision time price slippage is measured from
	ReferencePrice decimal.Decimal `json:"reference-price"`
	// IdealPrice is the frictionless execution price for the theoretical curve
	IdealPrice  decimal.Decimal `json:"ideal-price"`
	Fee         decimal.Decimal `json:"fee"`
	SlippageBPS decimal.Decimal `json:"slippage-bps"`
	FillRatio   decimal.Decimal `json:"fill-ratio"`
	Gap         bool            `json:"gap"`
	Fallback    bool            `json:"orderbook-fallback"`
}
