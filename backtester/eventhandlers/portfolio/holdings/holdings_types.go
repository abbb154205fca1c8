package holdings

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInitialFundsZero is an error when initial funds are zero or less
var ErrInitialFundsZero = errors.New("initial funds must be greater than zero")

// Holding tracks cash and exposure of a run on both equity curves. The
// realistic curve pays the simulated fill price and fees, the theoretical
// curve trades the same quantity at the frictionless price
type Holding struct {
	Offset    int64     `json:"offset"`
	Timestamp time.Time `json:"timestamp"`

	InitialFunds     decimal.Decimal `json:"initial-funds"`
	RemainingFunds   decimal.Decimal `json:"remaining-funds"`
	TheoreticalFunds decimal.Decimal `json:"theoretical-funds"`
	// PositionsSize is signed, shorts are negative
	PositionsSize    decimal.Decimal `json:"positions-size"`
	PositionsValue   decimal.Decimal `json:"positions-value"`
	TotalValue       decimal.Decimal `json:"total-value"`
	TheoreticalValue decimal.Decimal `json:"theoretical-value"`

	BoughtAmount decimal.Decimal `json:"bought-amount"`
	BoughtValue  decimal.Decimal `json:"bought-value"`
	SoldAmount   decimal.Decimal `json:"sold-amount"`
	SoldValue    decimal.Decimal `json:"sold-value"`

	TotalFees                decimal.Decimal `json:"total-fees"`
	TotalValueLostToSlippage decimal.Decimal `json:"total-value-lost-to-slippage"`

	TotalValueDifference      decimal.Decimal `json:"total-value-difference"`
	ChangeInTotalValuePercent decimal.Decimal `json:"change-in-total-value-percent"`
}
