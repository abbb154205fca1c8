package position

import (
	"fmt"

	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/common"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventtypes/fill"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventtypes/kline"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventtypes/order"
	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// Open creates a position from an executed entry fill
func Open(f *fill.Fill) (*Position, error) {
	if f == nil {
		return nil, common.ErrNilEvent
	}
	if !f.IsExecuted() {
		return nil, errNotExecuted
	}
	return &Position{
		Side:            f.Side,
		Amount:          f.FilledAmount,
		EntryPrice:      f.Price,
		IdealEntryPrice: f.IdealPrice,
		EntryFees:       f.Fee,
		OpenedAt:        f.GetTime(),
		OpenOffset:      f.GetOffset(),
		HighWaterMark:   f.Price,
		LowWaterMark:    f.Price,
	}, nil
}

// IsLong returns whether the position profits from rising prices
func (p *Position) IsLong() bool {
	return p.Side == order.Buy
}

// Increase adds an executed fill on the position side, averaging both entry
// prices
func (p *Position) Increase(f *fill.Fill) error {
	if f == nil {
		return common.ErrNilEvent
	}
	if !f.IsExecuted() {
		return errNotExecuted
	}
	if f.Side != p.Side {
		return fmt.Errorf("%w: %v fill on %v position", errSideMismatch, f.Side, p.Side)
	}
	total := p.Amount.Add(f.FilledAmount)
	p.EntryPrice = p.EntryPrice.Mul(p.Amount).Add(f.Notional()).Div(total)
	p.IdealEntryPrice = p.IdealEntryPrice.Mul(p.Amount).Add(f.IdealNotional()).Div(total)
	p.EntryFees = p.EntryFees.Add(f.Fee)
	p.Amount = total
	return nil
}

// Reduce closes part or all of the position with an executed fill on the
// opposite side and returns the closed trade. Entry fees are attributed to
// the trade pro rata
func (p *Position) Reduce(f *fill.Fill) (*Trade, error) {
	if f == nil {
		return nil, common.ErrNilEvent
	}
	if !f.IsExecuted() {
		return nil, errNotExecuted
	}
	if f.Side != p.Side.Opposite() {
		return nil, fmt.Errorf("%w: %v fill cannot reduce %v position", errSideMismatch, f.Side, p.Side)
	}
	if f.FilledAmount.GreaterThan(p.Amount) {
		return nil, fmt.Errorf("%w: %v > %v", errReduceTooMuch, f.FilledAmount, p.Amount)
	}
	qty := f.FilledAmount
	entryFees := p.EntryFees
	if !qty.Equal(p.Amount) {
		entryFees = p.EntryFees.Mul(qty).Div(p.Amount)
	}
	sign := p.Side.Sign()
	fees := entryFees.Add(f.Fee)
	t := &Trade{
		Side:            p.Side,
		Amount:          qty,
		EntryTime:       p.OpenedAt,
		ExitTime:        f.GetTime(),
		EntryPrice:      p.EntryPrice,
		ExitPrice:       f.Price,
		IdealEntryPrice: p.IdealEntryPrice,
		IdealExitPrice:  f.IdealPrice,
		Fees:            fees,
		PNL:             f.Price.Sub(p.EntryPrice).Mul(qty).Mul(sign).Sub(fees),
		TheoreticalPNL:  f.IdealPrice.Sub(p.IdealEntryPrice).Mul(qty).Mul(sign),
		BarsHeld:        f.GetOffset() - p.OpenOffset,
		ExitReason:      f.Purpose,
		Gap:             f.Gap,
	}
	if cost := p.EntryPrice.Mul(qty); cost.IsPositive() {
		t.ReturnPercentage = t.PNL.Div(cost).Mul(decimal.NewFromInt(100))
	}
	p.EntryFees = p.EntryFees.Sub(entryFees)
	p.Amount = p.Amount.Sub(qty)
	return t, nil
}

// IsClosed returns whether nothing remains open
func (p *Position) IsClosed() bool {
	return !p.Amount.IsPositive()
}

// UnrealisedPNL returns the realistic and theoretical open profit at the mark
func (p *Position) UnrealisedPNL(mark decimal.Decimal) (realistic, theoretical decimal.Decimal) {
	sign := p.Side.Sign()
	realistic = mark.Sub(p.EntryPrice).Mul(p.Amount).Mul(sign)
	theoretical = mark.Sub(p.IdealEntryPrice).Mul(p.Amount).Mul(sign)
	return realistic, theoretical
}

// SetTrailing attaches a trailing stop by absolute distance or ratio and
// places it from the most favourable price seen so far
func (p *Position) SetTrailing(distance, pct decimal.Decimal) {
	p.TrailingDistance = distance
	p.TrailingPct = pct
	extreme := p.HighWaterMark
	if !p.IsLong() {
		extreme = p.LowWaterMark
	}
	p.TrailingStopPrice = p.trailFrom(extreme)
}

func (p *Position) trailFrom(extreme decimal.Decimal) decimal.Decimal {
	switch {
	case p.TrailingDistance.IsPositive():
		if p.IsLong() {
			return extreme.Sub(p.TrailingDistance)
		}
		return extreme.Add(p.TrailingDistance)
	case p.TrailingPct.IsPositive():
		if p.IsLong() {
			return extreme.Mul(one.Sub(p.TrailingPct))
		}
		return extreme.Mul(one.Add(p.TrailingPct))
	}
	return decimal.Zero
}

// UpdateTrailing records the bar extremes and ratchets the trailing stop in
// the favourable direction only. It must be called after the bar's exits
// have been resolved. Returns whether the stop moved
func (p *Position) UpdateTrailing(k *kline.Kline) bool {
	if k.High.GreaterThan(p.HighWaterMark) {
		p.HighWaterMark = k.High
	}
	if p.LowWaterMark.IsZero() || k.Low.LessThan(p.LowWaterMark) {
		p.LowWaterMark = k.Low
	}
	if !p.TrailingDistance.IsPositive() && !p.TrailingPct.IsPositive() {
		return false
	}
	extreme := p.HighWaterMark
	if !p.IsLong() {
		extreme = p.LowWaterMark
	}
	candidate := p.trailFrom(extreme)
	if !candidate.IsPositive() {
		return false
	}
	if p.TrailingStopPrice.IsZero() ||
		p.IsLong() && candidate.GreaterThan(p.TrailingStopPrice) ||
		!p.IsLong() && candidate.LessThan(p.TrailingStopPrice) {
		p.TrailingStopPrice = candidate
		return true
	}
	return false
}

// EffectiveStop returns the tighter of the stop loss and the trailing stop.
// Zero when neither is set
func (p *Position) EffectiveStop() decimal.Decimal {
	switch {
	case !p.TrailingStopPrice.IsPositive():
		return p.StopLoss
	case !p.StopLoss.IsPositive():
		return p.TrailingStopPrice
	case p.IsLong():
		return decimal.Max(p.StopLoss, p.TrailingStopPrice)
	default:
		return decimal.Min(p.StopLoss, p.TrailingStopPrice)
	}
}

// StopPurpose returns which protective level the effective stop comes from
func (p *Position) StopPurpose() order.Purpose {
	if p.TrailingStopPrice.IsPositive() && p.EffectiveStop().Equal(p.TrailingStopPrice) &&
		!p.EffectiveStop().Equal(p.StopLoss) {
		return order.PurposeTrailingStop
	}
	return order.PurposeStopLoss
}
