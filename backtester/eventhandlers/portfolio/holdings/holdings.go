package holdings

import (
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/common"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventtypes/fill"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventtypes/kline"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventtypes/order"
	"github.com/shopspring/decimal"
)

// Create starts a holding with initial funds on both curves
func Create(initialFunds decimal.Decimal) (*Holding, error) {
	if !initialFunds.IsPositive() {
		return nil, ErrInitialFundsZero
	}
	return &Holding{
		InitialFunds:     initialFunds,
		RemainingFunds:   initialFunds,
		TheoreticalFunds: initialFunds,
		TotalValue:       initialFunds,
		TheoreticalValue: initialFunds,
	}, nil
}

// Update applies an executed fill to cash and exposure. The realistic curve
// pays the fill price plus fees, the theoretical curve the ideal price only
func (h *Holding) Update(f *fill.Fill) error {
	if f == nil {
		return common.ErrNilEvent
	}
	if !f.IsExecuted() {
		return nil
	}
	h.Timestamp = f.GetTime()
	h.Offset = f.GetOffset()
	amount := f.FilledAmount
	value := f.Notional()
	idealValue := f.IdealNotional()
	switch f.Side {
	case order.Buy:
		h.RemainingFunds = h.RemainingFunds.Sub(value).Sub(f.Fee)
		h.TheoreticalFunds = h.TheoreticalFunds.Sub(idealValue)
		h.PositionsSize = h.PositionsSize.Add(amount)
		h.BoughtAmount = h.BoughtAmount.Add(amount)
		h.BoughtValue = h.BoughtValue.Add(value)
	case order.Sell:
		h.RemainingFunds = h.RemainingFunds.Add(value).Sub(f.Fee)
		h.TheoreticalFunds = h.TheoreticalFunds.Add(idealValue)
		h.PositionsSize = h.PositionsSize.Sub(amount)
		h.SoldAmount = h.SoldAmount.Add(amount)
		h.SoldValue = h.SoldValue.Add(value)
	}
	h.TotalFees = h.TotalFees.Add(f.Fee)
	h.TotalValueLostToSlippage = h.TotalValueLostToSlippage.Add(f.Price.Sub(f.IdealPrice).Mul(amount).Mul(f.Side.Sign()))
	h.updateValue(f.Price)
	return nil
}

// UpdateValue marks the holding to the bar close
func (h *Holding) UpdateValue(k *kline.Kline) error {
	if k == nil {
		return common.ErrNilEvent
	}
	h.Timestamp = k.GetTime()
	h.Offset = k.GetOffset()
	h.updateValue(k.Close)
	return nil
}

func (h *Holding) updateValue(mark decimal.Decimal) {
	origTotalValue := h.TotalValue
	h.PositionsValue = h.PositionsSize.Mul(mark)
	h.TotalValue = h.RemainingFunds.Add(h.PositionsValue)
	h.TheoreticalValue = h.TheoreticalFunds.Add(h.PositionsValue)
	h.TotalValueDifference = h.TotalValue.Sub(origTotalValue)
	if !origTotalValue.IsZero() {
		h.ChangeInTotalValuePercent = h.TotalValueDifference.Div(origTotalValue)
	}
}
