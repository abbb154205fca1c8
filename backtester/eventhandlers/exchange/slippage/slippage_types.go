package slippage

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	errInvalidAmount    = errors.New("amount must be positive")
	errInvalidReference = errors.New("reference price must be positive")
	errNoLevels         = errors.New("no depth levels available")
	errUnknownImpact    = errors.New("unknown market impact model")
)

// Movement is the result of walking one side of the book for an amount
type Movement struct {
	// Requested is the amount asked for
	Requested decimal.Decimal
	// Filled is the amount which could be consumed
	Filled decimal.Decimal
	// Cost is the quotation value of the consumed levels
	Cost decimal.Decimal
	// VWAP is the volume weighted average price across consumed levels
	VWAP decimal.Decimal
	// StartPrice is the price of the first consumed level
	StartPrice decimal.Decimal
	// EndPrice is the price of the last consumed level
	EndPrice decimal.Decimal
	// ReferencePrice is the price slippage is measured against
	ReferencePrice decimal.Decimal
	// SlippageBPS is the adverse distance of the VWAP from the reference
	// price in basis points. Price improvement is negative
	SlippageBPS decimal.Decimal
	// LevelsConsumed is the number of levels touched
	LevelsConsumed int
	// FullBookSideConsumed defines if the available liquidity was exhausted
	// before the requested amount was filled
	FullBookSideConsumed bool
}
