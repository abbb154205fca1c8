package fill

import (
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventtypes/event"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventtypes/order"
	"github.com/shopspring/decimal"
)

// New creates an unfilled attempt for the order
func New(o *order.Order, b event.Base) *Fill {
	return &Fill{
		Base:            b,
		OrderID:         o.ID,
		Side:            o.Side,
		Type:            o.Type,
		Purpose:         o.Purpose,
		Status:          order.StatusPending,
		RequestedAmount: o.Remaining(),
	}
}

// IsExecuted returns whether any amount changed hands
func (f *Fill) IsExecuted() bool {
	return f.FilledAmount.IsPositive()
}

// Notional returns the realised traded value
func (f *Fill) Notional() decimal.Decimal {
	return f.FilledAmount.Mul(f.Price)
}

// IdealNotional returns the traded value at the frictionless price
func (f *Fill) IdealNotional() decimal.Decimal {
	return f.FilledAmount.Mul(f.IdealPrice)
}

// SetFilled records the executed amount and derives the fill ratio
func (f *Fill) SetFilled(amount decimal.Decimal) {
	f.FilledAmount = amount
	if f.RequestedAmount.IsPositive() {
		f.FillRatio = amount.Div(f.RequestedAmount)
	}
}
