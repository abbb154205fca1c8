package order

import (
	"errors"

	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventtypes/event"
	"github.com/shopspring/decimal"
)

// Side is the direction of an order
type Side string

// Side values
const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// Type is the execution style of an order
type Type string

// Type values
const (
	Market Type = "MARKET"
	Limit  Type = "LIMIT"
	Stop   Type = "STOP"
)

// Status is the lifecycle state of an order
type Status string

// Status values
const (
	StatusPending         Status = "PENDING"
	StatusFilled          Status = "FILLED"
	StatusPartiallyFilled Status = "PARTIALLY_FILLED"
	StatusRejected        Status = "REJECTED"
	StatusCancelled       Status = "CANCELLED"
)

// Purpose records why the driver created the order
type Purpose string

// Purpose values
const (
	PurposeEntry        Purpose = "ENTRY"
	PurposeExit         Purpose = "EXIT"
	PurposeStopLoss     Purpose = "STOP_LOSS"
	PurposeTakeProfit   Purpose = "TAKE_PROFIT"
	PurposeTrailingStop Purpose = "TRAILING_STOP"
	PurposeAdjust       Purpose = "ADJUST"
)

var (
	// ErrInvalidTransition is returned when an order status change is not allowed
	ErrInvalidTransition = errors.New("invalid order status transition")

	errInvalidSide       = errors.New("invalid order side")
	errInvalidType       = errors.New("invalid order type")
	errInvalidAmount     = errors.New("order amount must be positive")
	errMissingLimitPrice = errors.New("limit order requires a positive limit price")
	errMissingStopPrice  = errors.New("stop order requires a positive stop price")
	errOverfilled        = errors.New("fill amount exceeds remaining order amount")
)

// Order is a request to trade generated by the driver from a strategy signal.
// Zero prices are treated as unset
type Order struct {
	event.Base
	ID               string          `json:"id"`
	Side             Side            `json:"side"`
	Type             Type            `json:"type"`
	Purpose          Purpose         `json:"purpose"`
	Status           Status          `json:"status"`
	Amount           decimal.Decimal `json:"amount"`
	FilledAmount     decimal.Decimal `json:"filled-amount"`
	LimitPrice       decimal.Decimal `json:"limit-price"`
	StopPrice        decimal.Decimal `json:"stop-price"`
	TrailingDistance decimal.Decimal `json:"trailing-distance"`
	// IdealPrice is the frictionless price used for the theoretical curve
	// when the order executes at decision time
	IdealPrice decimal.Decimal `json:"ideal-price"`
	// ExpiresAfterBars cancels a resting order once it has been active for
	// this many bars. Zero keeps it working until filled or cancelled
	ExpiresAfterBars int64 `json:"expires-after-bars,omitempty"`
}
