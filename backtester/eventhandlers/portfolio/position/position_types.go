package position

import (
	"errors"
	"time"

	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventtypes/order"
	"github.com/shopspring/decimal"
)

var (
	errNotExecuted   = errors.New("fill did not execute")
	errSideMismatch  = errors.New("fill side does not match position")
	errReduceTooMuch = errors.New("reduce amount exceeds position")
)

// Position is the single open position of a run. It carries the realistic
// entry price alongside the frictionless entry price so that both equity
// curves can be valued from the same quantity. Zero protective levels are unset
type Position struct {
	Side            order.Side      `json:"side"`
	Amount          decimal.Decimal `json:"amount"`
	EntryPrice      decimal.Decimal `json:"entry-price"`
	IdealEntryPrice decimal.Decimal `json:"ideal-entry-price"`
	EntryFees       decimal.Decimal `json:"entry-fees"`
	OpenedAt        time.Time       `json:"opened-at"`
	OpenOffset      int64           `json:"open-offset"`

	StopLoss          decimal.Decimal `json:"stop-loss"`
	TakeProfit        decimal.Decimal `json:"take-profit"`
	TrailingDistance  decimal.Decimal `json:"trailing-distance"`
	TrailingPct       decimal.Decimal `json:"trailing-pct"`
	TrailingStopPrice decimal.Decimal `json:"trailing-stop-price"`
	HighWaterMark     decimal.Decimal `json:"high-water-mark"`
	LowWaterMark      decimal.Decimal `json:"low-water-mark"`
}

// Trade is a closed slice of a position
type Trade struct {
	Side             order.Side      `json:"side"`
	Amount           decimal.Decimal `json:"amount"`
	EntryTime        time.Time       `json:"entry-time"`
	ExitTime         time.Time       `json:"exit-time"`
	EntryPrice       decimal.Decimal `json:"entry-price"`
	ExitPrice        decimal.Decimal `json:"exit-price"`
	IdealEntryPrice  decimal.Decimal `json:"ideal-entry-price"`
	IdealExitPrice   decimal.Decimal `json:"ideal-exit-price"`
	Fees             decimal.Decimal `json:"fees"`
	PNL              decimal.Decimal `json:"pnl"`
	TheoreticalPNL   decimal.Decimal `json:"theoretical-pnl"`
	ReturnPercentage decimal.Decimal `json:"return-percentage"`
	BarsHeld         int64           `json:"bars-held"`
	ExitReason       order.Purpose   `json:"exit-reason"`
	Gap              bool            `json:"gap,omitempty"`
}
