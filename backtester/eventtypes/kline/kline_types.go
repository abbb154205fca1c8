package kline

import (
	"errors"
	"time"

	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventtypes/event"
	"github.com/shopspring/decimal"
)

var (
	// ErrBookMissing is returned when a bar has no order book snapshot
	ErrBookMissing = errors.New("order book snapshot missing")
	// ErrBookStale is returned when the snapshot is older than the allowed age
	ErrBookStale = errors.New("order book snapshot stale")
	// ErrBookEmptySide is returned when either side has no depth
	ErrBookEmptySide = errors.New("order book side empty")
	// ErrBookCrossed is returned when the best bid is at or above the best ask
	ErrBookCrossed = errors.New("order book crossed")

	errInvalidOHLC  = errors.New("invalid ohlc values")
	errInvalidLevel = errors.New("invalid book level")
)

// Level is a single price level of depth
type Level struct {
	Price  decimal.Decimal `json:"price"`
	Amount decimal.Decimal `json:"amount"`
}

// Book is an order book snapshot attached to a bar. Bids are sorted best
// (highest) first and asks best (lowest) first
type Book struct {
	Time time.Time `json:"timestamp"`
	Bids []Level   `json:"bids"`
	Asks []Level   `json:"asks"`
}

// Kline is an immutable OHLCV bar with an optional order book snapshot and
// an optional externally supplied volatility estimate
type Kline struct {
	event.Base
	Open   decimal.Decimal `json:"open"`
	High   decimal.Decimal `json:"high"`
	Low    decimal.Decimal `json:"low"`
	Close  decimal.Decimal `json:"close"`
	Volume decimal.Decimal `json:"volume"`
	Book   *Book           `json:"book,omitempty"`
	// Volatility is a per bar volatility ratio, eg 0.01 for 1%
	Volatility *decimal.Decimal `json:"volatility,omitempty"`
}
