package signal

import (
	"errors"

	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventtypes/order"
	"github.com/shopspring/decimal"
)

// Action names the kind of a signal
type Action string

// Action values
const (
	ActionEnter        Action = "ENTER"
	ActionExit         Action = "EXIT"
	ActionStopLoss     Action = "STOP_LOSS"
	ActionTakeProfit   Action = "TAKE_PROFIT"
	ActionTrailingStop Action = "TRAILING_STOP"
	ActionAdjust       Action = "ADJUST"
	ActionHold         Action = "HOLD"
)

// ErrInvalidSignal is returned when a signal is malformed or does not make
// sense for the current position. The driver treats it as a hold
var ErrInvalidSignal = errors.New("invalid signal")

// Signal is the closed set of instructions a strategy can return for a bar.
// Only types declared in this package implement it
type Signal interface {
	Action() Action
	Validate() error
	isSignal()
}

// Enter opens a new position. A zero Amount is sized by the risk sizer, a
// zero OrderType is a market order
type Enter struct {
	Side       order.Side
	EntryPrice decimal.Decimal
	Amount     decimal.Decimal
	OrderType  order.Type
	StopLoss   decimal.Decimal
	TakeProfit decimal.Decimal
}

// Exit closes the open position. A zero Price exits at the bar close
type Exit struct {
	Price decimal.Decimal
}

// StopLoss sets or moves the stop loss of the open position
type StopLoss struct {
	Price decimal.Decimal
}

// TakeProfit sets or moves the take profit of the open position
type TakeProfit struct {
	Price decimal.Decimal
}

// TrailingStop attaches a trailing stop by either an absolute distance or a
// ratio of price, eg 0.02 for 2%
type TrailingStop struct {
	Distance    decimal.Decimal
	DistancePct decimal.Decimal
}

// Adjust resizes the open position to Amount units
type Adjust struct {
	Amount decimal.Decimal
}

// Hold does nothing
type Hold struct{}
