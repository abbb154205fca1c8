package exchange

import (
	"fmt"

	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/common"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventhandlers/exchange/slippage"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventtypes/event"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventtypes/fill"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventtypes/kline"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventtypes/order"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/log"
	"github.com/shopspring/decimal"
)

var half = decimal.NewFromFloat(0.5)

// New validates the settings and returns a fresh per run simulator
func New(s *Settings) (*Exchange, error) {
	if s == nil {
		return nil, common.ErrNilArguments
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &Exchange{Settings: *s}, nil
}

// Validate ensures the friction model is usable
func (s *Settings) Validate() error {
	for name, v := range map[string]decimal.Decimal{
		"maker fee":                s.MakerFee,
		"taker fee":                s.TakerFee,
		"base slippage":            s.BaseSlippageBPS,
		"volatility coefficient":   s.VolatilityCoefficient,
		"impact coefficient":       s.ImpactCoefficientBPS,
		"impact exponent":          s.ImpactExponent,
		"fallback spread":          s.FallbackSpreadBPS,
		"gap penalty":              s.GapPenaltyBPS,
		"max volume participation": s.MaxVolumeParticipation,
	} {
		if v.IsNegative() {
			return fmt.Errorf("%s %w: %v", name, errNegativeSetting, v)
		}
	}
	if s.MaxBookAge < 0 {
		return fmt.Errorf("max book age %w: %v", errNegativeSetting, s.MaxBookAge)
	}
	switch s.ImpactModel {
	case "", common.ImpactLinear, common.ImpactPower:
	default:
		return fmt.Errorf("%w '%v'", errInvalidImpactModel, s.ImpactModel)
	}
	return nil
}

// Reset returns the exchange to its initial run state, keeping its settings
func (e *Exchange) Reset() {
	*e = Exchange{Settings: e.Settings}
}

// OrderbookFallbackCount returns the number of bars on which execution fell
// back to the spread estimated model
func (e *Exchange) OrderbookFallbackCount() int64 {
	return e.fallbackCount
}

// Simulate attempts to execute the order against the bar. The order status
// and filled amount are updated to reflect the outcome. Conditional orders
// which are not triggered return a pending fill which executed nothing.
// Errors are only returned for invalid input, never for a missed fill
func (e *Exchange) Simulate(o *order.Order, k *kline.Kline, volatility decimal.Decimal) (*fill.Fill, error) {
	if o == nil || k == nil {
		return nil, common.ErrNilArguments
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	if !o.IsActive() {
		return nil, fmt.Errorf("%w: order %v is %v", errOrderNotActive, o.ID, o.Status)
	}
	f := fill.New(o, event.Base{Offset: k.Offset, Time: k.Time})
	var err error
	switch o.Type {
	case order.Market:
		err = e.executeMarket(o, k, volatility, f)
	case order.Stop:
		err = e.executeStop(o, k, volatility, f)
	case order.Limit:
		err = e.executeLimit(o, k, volatility, f)
	}
	if err != nil {
		return f, err
	}
	return f, e.finalise(o, f)
}

// usableBook returns the bar snapshot when execution can walk it, otherwise
// registers a fallback for the bar
func (e *Exchange) usableBook(k *kline.Kline) *kline.Book {
	err := k.BookState(e.MaxBookAge)
	if err == nil {
		return k.Book
	}
	if !e.hasFallback || !e.lastFallback.Equal(k.Time) {
		e.fallbackCount++
		e.hasFallback = true
		e.lastFallback = k.Time
		log.Warnf(common.Simulator, "orderbook unavailable at %v, using spread estimated slippage: %v", k.Time, err)
	}
	return nil
}

func (e *Exchange) executeMarket(o *order.Order, k *kline.Kline, volatility decimal.Decimal, f *fill.Fill) error {
	book := e.usableBook(k)
	reference := k.Close
	if book != nil {
		reference = book.Mid()
	}
	f.ReferencePrice = reference
	f.IdealPrice = o.IdealPrice
	if !f.IdealPrice.IsPositive() {
		f.IdealPrice = reference
	}
	return e.takerFill(o, k, book, volatility, decimal.Zero, f)
}

func (e *Exchange) executeStop(o *order.Order, k *kline.Kline, volatility decimal.Decimal, f *fill.Fill) error {
	triggered, gap := stopTriggered(o.Side, o.StopPrice, k)
	if !triggered {
		f.AppendReason("stop not triggered")
		return nil
	}
	book := e.usableBook(k)
	reference := o.StopPrice
	extra := decimal.Zero
	if gap {
		reference = k.Open
		extra = e.GapPenaltyBPS
		f.Gap = true
		f.AppendReason(fmt.Sprintf("gap exit, bar opened at %v through stop %v", k.Open, o.StopPrice))
	}
	f.ReferencePrice = reference
	f.IdealPrice = reference
	return e.takerFill(o, k, book, volatility, extra, f)
}

// takerFill executes the remaining amount as a taker from the fill's
// reference price. With a book the realised walk is the impact term,
// without one the impact is estimated from bar volume participation
func (e *Exchange) takerFill(o *order.Order, k *kline.Kline, book *kline.Book, volatility, extraBPS decimal.Decimal, f *fill.Fill) error {
	amount := o.Remaining()
	bps := e.BaseSlippageBPS.Add(slippage.VolatilityBPS(e.VolatilityCoefficient, volatility)).Add(extraBPS)
	var filled decimal.Decimal
	if book != nil {
		m, err := slippage.WalkDepth(book, o.Side, amount, decimal.Zero, book.Mid())
		if err != nil {
			return err
		}
		if !m.Filled.IsPositive() {
			f.Status = order.StatusRejected
			f.AppendReason("no depth available")
			return nil
		}
		if m.FullBookSideConsumed {
			f.AppendReason(fmt.Sprintf("depth exhausted after %v of %v", m.Filled, amount))
		}
		filled = m.Filled
		bps = bps.Add(m.SlippageBPS)
	} else {
		f.Fallback = true
		filled = slippage.EnsureOrderFitsWithinVolume(amount, k.Volume, e.MaxVolumeParticipation)
		if !filled.IsPositive() {
			f.Status = order.StatusRejected
			f.AppendReason("no bar volume available")
			return nil
		}
		if !filled.Equal(amount) {
			f.AppendReason(fmt.Sprintf("order size shrunk from %v to %v to fit bar volume", amount, filled))
		}
		impact, err := e.impactBPS(filled, k.Volume)
		if err != nil {
			return err
		}
		bps = bps.Add(e.FallbackSpreadBPS.Mul(half)).Add(impact)
	}
	price := slippage.ApplyBPS(o.Side, f.ReferencePrice, bps)
	if !price.IsPositive() {
		f.Status = order.StatusRejected
		f.AppendReason(fmt.Sprintf("slippage of %v bps leaves no valid price", bps))
		return nil
	}
	f.Price = price
	f.SlippageBPS = bps
	f.SetFilled(filled)
	f.Fee = calculateExchangeFee(price, filled, e.TakerFee)
	return nil
}

func (e *Exchange) executeLimit(o *order.Order, k *kline.Kline, volatility decimal.Decimal, f *fill.Fill) error {
	touched, gap := limitTouched(o.Side, o.LimitPrice, k)
	if !touched {
		f.AppendReason("limit not touched")
		return nil
	}
	amount := o.Remaining()
	book := e.usableBook(k)
	var filled decimal.Decimal
	if book != nil {
		m, err := slippage.WalkDepth(book, o.Side, amount, o.LimitPrice, book.Mid())
		if err != nil {
			return err
		}
		if !m.Filled.IsPositive() {
			f.AppendReason("no depth at or better than limit")
			return nil
		}
		filled = m.Filled
		f.ReferencePrice = m.VWAP
	} else {
		f.Fallback = true
		filled = slippage.EnsureOrderFitsWithinVolume(amount, k.Volume, e.MaxVolumeParticipation)
		if !filled.IsPositive() {
			f.AppendReason("no bar volume available")
			return nil
		}
		f.ReferencePrice = o.LimitPrice
		if gap {
			f.ReferencePrice = k.Open
			f.Gap = true
		}
	}
	bps := e.BaseSlippageBPS.Add(slippage.VolatilityBPS(e.VolatilityCoefficient, volatility))
	price := clampToLimit(o.Side, slippage.ApplyBPS(o.Side, f.ReferencePrice, bps), o.LimitPrice)
	f.IdealPrice = f.ReferencePrice
	f.Price = price
	f.SlippageBPS = slippage.AdverseBPS(o.Side, f.ReferencePrice, price)
	f.SetFilled(filled)
	f.Fee = calculateExchangeFee(price, filled, e.MakerFee)
	return nil
}

// finalise applies the fill outcome to the order
func (e *Exchange) finalise(o *order.Order, f *fill.Fill) error {
	switch {
	case f.IsExecuted():
		if err := o.RecordFill(f.FilledAmount); err != nil {
			return err
		}
		f.Status = o.Status
		if o.Status == order.StatusPartiallyFilled && !o.IsActive() {
			f.AppendReason(fmt.Sprintf("residual %v cancelled", o.Remaining()))
		}
		log.Debugf(common.Simulator, "%v %v %v order %v filled %v/%v at %v fee %v slippage %v bps",
			f.Time, o.Side, o.Type, o.ID, f.FilledAmount, f.RequestedAmount, f.Price, f.Fee, f.SlippageBPS.StringFixed(2))
	case f.Status == order.StatusRejected:
		if err := o.SetStatus(order.StatusRejected); err != nil {
			return err
		}
		o.AppendReason(f.Reason)
		log.Warnf(common.Simulator, "%v %v %v order %v rejected: %v", f.Time, o.Side, o.Type, o.ID, f.Reason)
	}
	return nil
}

// stopTriggered reports a gap only when the open is strictly through the
// stop. An open at the stop fills from the stop without the gap penalty
func stopTriggered(side order.Side, stop decimal.Decimal, k *kline.Kline) (triggered, gap bool) {
	if side == order.Sell {
		return k.Low.LessThanOrEqual(stop), k.Open.LessThan(stop)
	}
	return k.High.GreaterThanOrEqual(stop), k.Open.GreaterThan(stop)
}

func limitTouched(side order.Side, limit decimal.Decimal, k *kline.Kline) (touched, gap bool) {
	if side == order.Sell {
		return k.High.GreaterThanOrEqual(limit), k.Open.GreaterThan(limit)
	}
	return k.Low.LessThanOrEqual(limit), k.Open.LessThan(limit)
}

func clampToLimit(side order.Side, price, limit decimal.Decimal) decimal.Decimal {
	if side == order.Sell {
		return decimal.Max(price, limit)
	}
	return decimal.Min(price, limit)
}

func (e *Exchange) impactBPS(filled, volume decimal.Decimal) (decimal.Decimal, error) {
	if !volume.IsPositive() {
		return decimal.Zero, nil
	}
	return slippage.MarketImpactBPS(e.ImpactModel, e.ImpactCoefficientBPS, e.ImpactExponent, filled.Div(volume))
}

func calculateExchangeFee(price, amount, fee decimal.Decimal) decimal.Decimal {
	return fee.Mul(price).Mul(amount)
}
