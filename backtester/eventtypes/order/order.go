package order

import (
	"fmt"
	"strconv"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

// Opposite returns the side which closes a position opened by s
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

// Sign returns 1 for buys and -1 for sells
func (s Side) Sign() decimal.Decimal {
	if s == Sell {
		return decimal.NewFromInt(-1)
	}
	return decimal.NewFromInt(1)
}

// IsValid ensures the side is known
func (s Side) IsValid() bool {
	return s == Buy || s == Sell
}

// IsValid ensures the type is known
func (t Type) IsValid() bool {
	return t == Market || t == Limit || t == Stop
}

// IsTerminal returns whether no further status change can occur
func (s Status) IsTerminal() bool {
	return s == StatusFilled || s == StatusRejected || s == StatusCancelled
}

// IsProtective returns whether the order protects an open position
func (p Purpose) IsProtective() bool {
	return p == PurposeStopLoss || p == PurposeTakeProfit || p == PurposeTrailingStop
}

// GenerateID derives a deterministic order ID from the run namespace and the
// order sequence number so repeated runs produce identical IDs
func GenerateID(namespace uuid.UUID, sequence uint64) string {
	return uuid.NewV5(namespace, strconv.FormatUint(sequence, 10)).String()
}

// Validate checks the order shape
func (o *Order) Validate() error {
	if !o.Side.IsValid() {
		return fmt.Errorf("%w '%v'", errInvalidSide, o.Side)
	}
	if !o.Type.IsValid() {
		return fmt.Errorf("%w '%v'", errInvalidType, o.Type)
	}
	if !o.Amount.IsPositive() {
		return errInvalidAmount
	}
	switch o.Type {
	case Limit:
		if !o.LimitPrice.IsPositive() {
			return errMissingLimitPrice
		}
	case Stop:
		if !o.StopPrice.IsPositive() {
			return errMissingStopPrice
		}
	}
	return nil
}

// Remaining returns the unfilled amount
func (o *Order) Remaining() decimal.Decimal {
	r := o.Amount.Sub(o.FilledAmount)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

// IsActive returns whether the order still works in the market. Partially
// filled limit orders keep their residual working, other partial fills have
// their residual cancelled
func (o *Order) IsActive() bool {
	switch o.Status {
	case StatusPending:
		return true
	case StatusPartiallyFilled:
		return o.Type == Limit
	}
	return false
}

// SetStatus transitions the order, refusing to leave a terminal state
func (o *Order) SetStatus(s Status) error {
	if o.Status == s {
		return nil
	}
	if o.Status.IsTerminal() ||
		(o.Status == StatusPartiallyFilled && (s == StatusPending || s == StatusRejected)) {
		return fmt.Errorf("%w from %v to %v for order %v", ErrInvalidTransition, o.Status, s, o.ID)
	}
	o.Status = s
	return nil
}

// RecordFill adds an executed amount and updates the status
func (o *Order) RecordFill(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return errInvalidAmount
	}
	if amount.GreaterThan(o.Remaining()) {
		return fmt.Errorf("%w: %v > %v", errOverfilled, amount, o.Remaining())
	}
	o.FilledAmount = o.FilledAmount.Add(amount)
	if o.FilledAmount.Equal(o.Amount) {
		return o.SetStatus(StatusFilled)
	}
	return o.SetStatus(StatusPartiallyFilled)
}

// Cancel cancels an order if it is still working
func (o *Order) Cancel(reason string) error {
	if err := o.SetStatus(StatusCancelled); err != nil {
		return err
	}
	o.AppendReason(reason)
	return nil
}

// ResizeRemaining sets the order amount so that the remaining amount matches
// the provided amount, used when the protected position changes size
func (o *Order) ResizeRemaining(remaining decimal.Decimal) {
	o.Amount = o.FilledAmount.Add(remaining)
}
