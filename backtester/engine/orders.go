package engine

import (
	"fmt"

	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/common"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventhandlers/exchange"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventhandlers/portfolio/position"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventhandlers/portfolio/size"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventhandlers/statistics"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventtypes/event"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventtypes/fill"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventtypes/kline"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventtypes/order"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventtypes/signal"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/log"
	"github.com/shopspring/decimal"
)

// newOrder creates a pending order stamped with the bar and the next
// deterministic ID of the run
func (r *run) newOrder(k *kline.Kline, side order.Side, t order.Type, purpose order.Purpose, amount decimal.Decimal) *order.Order {
	r.sequence++
	r.result.ExecutionStats.Orders++
	return &order.Order{
		Base:    event.Base{Offset: k.Offset, Time: k.Time},
		ID:      order.GenerateID(r.namespace, r.sequence),
		Side:    side,
		Type:    t,
		Purpose: purpose,
		Status:  order.StatusPending,
		Amount:  amount,
	}
}

// processActiveOrders works the orders placed on earlier bars. Protective
// exits resolve first, then the trailing stop ratchets from the bar's
// extreme, then resting entries are tried. Anything filled here gets its
// protective orders from the next bar onwards
func (r *run) processActiveOrders(k *kline.Kline, volatility decimal.Decimal) error {
	if r.position != nil {
		if err := r.processProtection(k, volatility); err != nil {
			return err
		}
		if r.position != nil && r.position.UpdateTrailing(k) {
			log.Debugf(common.Backtester, "trailing stop moved to %v at bar %v", r.position.TrailingStopPrice, k.Offset)
		}
	}
	if err := r.processEntries(k, volatility); err != nil {
		return err
	}
	r.syncProtection(k)
	return nil
}

// processProtection simulates whichever protective order the bar resolves
// to. The stop loss wins when both levels lie within the bar
func (r *run) processProtection(k *kline.Kline, volatility decimal.Decimal) error {
	exit := exchange.ResolveExit(k, r.position.Side, r.position.EffectiveStop(), r.position.TakeProfit)
	var o *order.Order
	switch exit.Trigger {
	case exchange.ExitStopLoss:
		o = r.stop
	case exchange.ExitTakeProfit:
		o = r.takeProfit
	default:
		return nil
	}
	if o == nil || !o.IsActive() {
		return nil
	}
	f, err := r.exchange.Simulate(o, k, volatility)
	if err != nil {
		return err
	}
	return r.applyFill(f, k)
}

// processEntries tries every resting entry against the bar, cancelling those
// which have outlived the expiry
func (r *run) processEntries(k *kline.Kline, volatility decimal.Decimal) error {
	working := r.entries[:0]
	for _, o := range r.entries {
		if !o.IsActive() {
			continue
		}
		if expiry := r.bt.OrderExpiryBars; expiry > 0 && k.Offset-o.Offset > expiry {
			r.result.ExecutionStats.ExpiredOrders++
			r.cancel(o, k, fmt.Sprintf("expired after %v bars", expiry))
			delete(r.protect, o.ID)
			continue
		}
		f, err := r.exchange.Simulate(o, k, volatility)
		if err != nil {
			return err
		}
		if f.IsExecuted() || f.Status == order.StatusRejected {
			if err = r.applyFill(f, k); err != nil {
				return err
			}
		}
		if o.IsActive() {
			working = append(working, o)
		} else {
			delete(r.protect, o.ID)
		}
	}
	r.entries = working
	return nil
}

// validateSignal checks the signal shape and that it makes sense for the
// current position
func (r *run) validateSignal(sig signal.Signal, k *kline.Kline) error {
	if err := sig.Validate(); err != nil {
		return err
	}
	flat := r.position == nil
	switch s := sig.(type) {
	case signal.Enter:
		if !flat || len(r.entries) > 0 {
			return fmt.Errorf("%w: %w", signal.ErrInvalidSignal, errPositionOpen)
		}
		if s.Amount.IsZero() && (r.bt.Sizer == nil || !s.StopLoss.IsPositive()) {
			return fmt.Errorf("%w: %w", signal.ErrInvalidSignal, errCannotSize)
		}
	case signal.Exit:
		if flat && len(r.entries) == 0 {
			return fmt.Errorf("%w: exit %w", signal.ErrInvalidSignal, errNoPosition)
		}
	case signal.StopLoss:
		if flat {
			return fmt.Errorf("%w: stop loss %w", signal.ErrInvalidSignal, errNoPosition)
		}
		if r.position.IsLong() && s.Price.GreaterThanOrEqual(k.Close) ||
			!r.position.IsLong() && s.Price.LessThanOrEqual(k.Close) {
			return fmt.Errorf("%w: stop loss %v on wrong side of close %v for %v position", signal.ErrInvalidSignal, s.Price, k.Close, r.position.Side)
		}
	case signal.TakeProfit:
		if flat {
			return fmt.Errorf("%w: take profit %w", signal.ErrInvalidSignal, errNoPosition)
		}
		if r.position.IsLong() && s.Price.LessThanOrEqual(k.Close) ||
			!r.position.IsLong() && s.Price.GreaterThanOrEqual(k.Close) {
			return fmt.Errorf("%w: take profit %v on wrong side of close %v for %v position", signal.ErrInvalidSignal, s.Price, k.Close, r.position.Side)
		}
	case signal.TrailingStop, signal.Adjust:
		if flat {
			return fmt.Errorf("%w: %v %w", signal.ErrInvalidSignal, sig.Action(), errNoPosition)
		}
	}
	return nil
}

// executeSignal turns a validated signal into orders and position changes
func (r *run) executeSignal(sig signal.Signal, k *kline.Kline, volatility decimal.Decimal) error {
	var err error
	switch s := sig.(type) {
	case signal.Enter:
		err = r.enter(s, k, volatility)
	case signal.Exit:
		err = r.exit(s, k, volatility)
	case signal.StopLoss:
		r.position.StopLoss = s.Price
	case signal.TakeProfit:
		r.position.TakeProfit = s.Price
	case signal.TrailingStop:
		r.position.SetTrailing(s.Distance, s.DistancePct)
	case signal.Adjust:
		err = r.adjust(s, k, volatility)
	}
	if err != nil {
		return err
	}
	r.syncProtection(k)
	return nil
}

func (r *run) enter(s signal.Enter, k *kline.Kline, volatility decimal.Decimal) error {
	amount := s.Amount
	if amount.IsZero() {
		res, err := r.bt.Sizer.Size(r.sizeRequest(s, volatility))
		if err == nil && !res.Units.IsPositive() {
			err = errSizedToZero
		}
		if err != nil {
			r.result.ExecutionStats.InvalidSignals++
			log.Warnf(common.Sizing, "%v entry at bar %v not placed: %v", s.Side, k.Offset, err)
			return nil
		}
		amount = res.Units
	}
	o := r.newOrder(k, s.Side, s.Type(), order.PurposeEntry, amount)
	r.protect[o.ID] = protection{stopLoss: s.StopLoss, takeProfit: s.TakeProfit}
	switch o.Type {
	case order.Market:
		o.IdealPrice = s.EntryPrice
		f, err := r.exchange.Simulate(o, k, volatility)
		if err != nil {
			return err
		}
		err = r.applyFill(f, k)
		delete(r.protect, o.ID)
		return err
	case order.Limit:
		o.LimitPrice = s.EntryPrice
	case order.Stop:
		o.StopPrice = s.EntryPrice
	}
	o.ExpiresAfterBars = r.bt.OrderExpiryBars
	r.entries = append(r.entries, o)
	log.Debugf(common.Backtester, "resting %v %v entry %v for %v at %v", o.Side, o.Type, o.ID, o.Amount, s.EntryPrice)
	return nil
}

// sizeRequest feeds the sizer what the run knows so far. Kelly inputs only
// come from the run's own closed trades
func (r *run) sizeRequest(s signal.Enter, volatility decimal.Decimal) size.Request {
	req := size.Request{
		Capital:    r.holding.TotalValue,
		EntryPrice: s.EntryPrice,
		StopPrice:  s.StopLoss,
	}
	if r.ledger.Len() > 0 {
		_, drawdown := r.ledger.Drawdown()
		req.CurrentDrawdown = decimal.NewNullDecimal(drawdown)
	}
	if volatility.IsPositive() {
		req.RealizedVolatility = decimal.NewNullDecimal(volatility)
	}
	if n := int64(len(r.result.Trades)); n > 0 && n >= r.bt.MinTradesForKelly {
		ts := statistics.TradeStatisticsFrom(r.result.Trades)
		if ts.PayoffRatio > 0 {
			req.WinRate = decimal.NewNullDecimal(decimal.NewFromFloat(ts.WinRate))
			req.PayoffRatio = decimal.NewNullDecimal(decimal.NewFromFloat(ts.PayoffRatio))
		}
	}
	return req
}

func (r *run) exit(s signal.Exit, k *kline.Kline, volatility decimal.Decimal) error {
	r.cancelEntries(k, "exit signal")
	if r.position == nil {
		return nil
	}
	o := r.newOrder(k, r.position.Side.Opposite(), order.Market, order.PurposeExit, r.position.Amount)
	o.IdealPrice = s.Price
	if !o.IdealPrice.IsPositive() {
		o.IdealPrice = k.Close
	}
	f, err := r.exchange.Simulate(o, k, volatility)
	if err != nil {
		return err
	}
	return r.applyFill(f, k)
}

// adjust trades the difference between the open amount and the target
func (r *run) adjust(s signal.Adjust, k *kline.Kline, volatility decimal.Decimal) error {
	diff := s.Amount.Sub(r.position.Amount)
	if diff.IsZero() {
		return nil
	}
	side := r.position.Side
	if diff.IsNegative() {
		side = side.Opposite()
	}
	o := r.newOrder(k, side, order.Market, order.PurposeAdjust, diff.Abs())
	o.IdealPrice = k.Close
	f, err := r.exchange.Simulate(o, k, volatility)
	if err != nil {
		return err
	}
	return r.applyFill(f, k)
}

// applyFill records a fill and moves cash, position and trades. Fills which
// executed nothing never touch the position
func (r *run) applyFill(f *fill.Fill, k *kline.Kline) error {
	r.record(f)
	if !f.IsExecuted() {
		return nil
	}
	if err := r.holding.Update(f); err != nil {
		return err
	}
	switch {
	case r.position == nil:
		p, err := position.Open(f)
		if err != nil {
			return err
		}
		r.position = p
	case f.Side == r.position.Side:
		if err := r.position.Increase(f); err != nil {
			return err
		}
	default:
		t, err := r.position.Reduce(f)
		if err != nil {
			return err
		}
		r.result.Trades = append(r.result.Trades, *t)
		log.Debugf(common.Backtester, "%v trade closed by %v at %v pnl %v", t.Side, t.ExitReason, t.ExitPrice, t.PNL)
		if r.position.IsClosed() {
			r.position = nil
			r.cancelEntries(k, "position closed")
		}
	}
	if pr, ok := r.protect[f.OrderID]; ok && r.position != nil {
		if pr.stopLoss.IsPositive() {
			r.position.StopLoss = pr.stopLoss
		}
		if pr.takeProfit.IsPositive() {
			r.position.TakeProfit = pr.takeProfit
		}
	}
	return nil
}

// syncProtection keeps the stop and take profit orders in line with the
// position. Once the position is gone both are cancelled
func (r *run) syncProtection(k *kline.Kline) {
	if r.position == nil {
		r.cancel(r.stop, k, "position closed, one cancels other")
		r.cancel(r.takeProfit, k, "position closed, one cancels other")
		r.stop, r.takeProfit = nil, nil
		return
	}
	exitSide := r.position.Side.Opposite()
	if level := r.position.EffectiveStop(); level.IsPositive() {
		if r.stop == nil || !r.stop.IsActive() {
			r.stop = r.newOrder(k, exitSide, order.Stop, r.position.StopPurpose(), r.position.Amount)
		} else {
			r.stop.ResizeRemaining(r.position.Amount)
			r.stop.Purpose = r.position.StopPurpose()
		}
		r.stop.StopPrice = level
	} else if r.stop != nil {
		r.cancel(r.stop, k, "stop removed")
		r.stop = nil
	}
	if level := r.position.TakeProfit; level.IsPositive() {
		if r.takeProfit == nil || !r.takeProfit.IsActive() {
			r.takeProfit = r.newOrder(k, exitSide, order.Limit, order.PurposeTakeProfit, r.position.Amount)
		} else {
			r.takeProfit.ResizeRemaining(r.position.Amount)
		}
		r.takeProfit.LimitPrice = level
	} else if r.takeProfit != nil {
		r.cancel(r.takeProfit, k, "take profit removed")
		r.takeProfit = nil
	}
}

func (r *run) cancelEntries(k *kline.Kline, reason string) {
	for _, o := range r.entries {
		r.cancel(o, k, reason)
		delete(r.protect, o.ID)
	}
	r.entries = nil
}

// cancel cancels a working order and records the cancellation as a fill
func (r *run) cancel(o *order.Order, k *kline.Kline, reason string) {
	if o == nil || !o.IsActive() {
		return
	}
	if err := o.Cancel(reason); err != nil {
		log.Errorf(common.Backtester, "could not cancel order %v: %v", o.ID, err)
		return
	}
	f := fill.New(o, event.Base{Offset: k.Offset, Time: k.Time})
	f.Status = order.StatusCancelled
	f.AppendReason(reason)
	r.record(f)
	log.Debugf(common.Backtester, "%v %v order %v cancelled: %v", o.Purpose, o.Type, o.ID, reason)
}

// record appends the fill to the run history and counts its outcome
func (r *run) record(f *fill.Fill) {
	stats := &r.result.ExecutionStats
	switch {
	case f.Status == order.StatusRejected:
		stats.RejectedOrders++
	case f.Status == order.StatusCancelled:
		stats.CancelledOrders++
	case f.IsExecuted():
		stats.Fills++
		if f.FilledAmount.LessThan(f.RequestedAmount) {
			stats.PartialFills++
		}
		if f.Gap && f.Purpose.IsProtective() {
			stats.GapExits++
		}
	}
	r.result.Fills = append(r.result.Fills, *f)
}
