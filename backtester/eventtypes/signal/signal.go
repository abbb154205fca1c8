package signal

import (
	"fmt"

	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventtypes/order"
	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// Action returns the signal kind
func (Enter) Action() Action { return ActionEnter }

// Action returns the signal kind
func (Exit) Action() Action { return ActionExit }

// Action returns the signal kind
func (StopLoss) Action() Action { return ActionStopLoss }

// Action returns the signal kind
func (TakeProfit) Action() Action { return ActionTakeProfit }

// Action returns the signal kind
func (TrailingStop) Action() Action { return ActionTrailingStop }

// Action returns the signal kind
func (Adjust) Action() Action { return ActionAdjust }

// Action returns the signal kind
func (Hold) Action() Action { return ActionHold }

func (Enter) isSignal()        {}
func (Exit) isSignal()         {}
func (StopLoss) isSignal()     {}
func (TakeProfit) isSignal()   {}
func (TrailingStop) isSignal() {}
func (Adjust) isSignal()       {}
func (Hold) isSignal()         {}

// Validate checks the enter signal shape. Protective levels must sit on the
// correct side of the entry price
func (e Enter) Validate() error {
	if !e.Side.IsValid() {
		return fmt.Errorf("%w: enter side '%v'", ErrInvalidSignal, e.Side)
	}
	if !e.EntryPrice.IsPositive() {
		return fmt.Errorf("%w: enter requires a positive entry price", ErrInvalidSignal)
	}
	if e.Amount.IsNegative() {
		return fmt.Errorf("%w: negative enter amount %v", ErrInvalidSignal, e.Amount)
	}
	if e.OrderType != "" && !e.OrderType.IsValid() {
		return fmt.Errorf("%w: enter order type '%v'", ErrInvalidSignal, e.OrderType)
	}
	if e.StopLoss.IsNegative() || e.TakeProfit.IsNegative() {
		return fmt.Errorf("%w: negative protective level", ErrInvalidSignal)
	}
	long := e.Side == order.Buy
	if e.StopLoss.IsPositive() {
		if long && e.StopLoss.GreaterThanOrEqual(e.EntryPrice) ||
			!long && e.StopLoss.LessThanOrEqual(e.EntryPrice) {
			return fmt.Errorf("%w: stop loss %v on wrong side of %v entry %v", ErrInvalidSignal, e.StopLoss, e.Side, e.EntryPrice)
		}
	}
	if e.TakeProfit.IsPositive() {
		if long && e.TakeProfit.LessThanOrEqual(e.EntryPrice) ||
			!long && e.TakeProfit.GreaterThanOrEqual(e.EntryPrice) {
			return fmt.Errorf("%w: take profit %v on wrong side of %v entry %v", ErrInvalidSignal, e.TakeProfit, e.Side, e.EntryPrice)
		}
	}
	return nil
}

// Type returns the order type the entry is placed with
func (e Enter) Type() order.Type {
	if e.OrderType == "" {
		return order.Market
	}
	return e.OrderType
}

// Validate checks the exit signal shape
func (e Exit) Validate() error {
	if e.Price.IsNegative() {
		return fmt.Errorf("%w: negative exit price %v", ErrInvalidSignal, e.Price)
	}
	return nil
}

// Validate checks the stop loss signal shape
func (s StopLoss) Validate() error {
	if !s.Price.IsPositive() {
		return fmt.Errorf("%w: stop loss requires a positive price", ErrInvalidSignal)
	}
	return nil
}

// Validate checks the take profit signal shape
func (s TakeProfit) Validate() error {
	if !s.Price.IsPositive() {
		return fmt.Errorf("%w: take profit requires a positive price", ErrInvalidSignal)
	}
	return nil
}

// Validate ensures exactly one positive distance is provided
func (s TrailingStop) Validate() error {
	if s.Distance.IsNegative() || s.DistancePct.IsNegative() {
		return fmt.Errorf("%w: negative trailing distance", ErrInvalidSignal)
	}
	if s.Distance.IsPositive() == s.DistancePct.IsPositive() {
		return fmt.Errorf("%w: trailing stop requires exactly one of distance or distance pct", ErrInvalidSignal)
	}
	if s.DistancePct.GreaterThanOrEqual(one) {
		return fmt.Errorf("%w: trailing distance pct %v must be below 1", ErrInvalidSignal, s.DistancePct)
	}
	return nil
}

// Validate checks the adjust signal shape
func (a Adjust) Validate() error {
	if !a.Amount.IsPositive() {
		return fmt.Errorf("%w: adjust requires a positive size, use exit to close", ErrInvalidSignal)
	}
	return nil
}

// Validate always succeeds
func (Hold) Validate() error { return nil }
