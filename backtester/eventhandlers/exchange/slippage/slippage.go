package slippage

import (
	"fmt"
	"math"
	"strings"

	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/common"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventtypes/kline"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventtypes/order"
	"github.com/shopspring/decimal"
)

// WalkDepth consumes the levels which a taker on the given side would hit,
// level by level, until the amount is exhausted or depth runs out. Buys
// consume asks, sells consume bids. A positive limit stops the walk at the
// first level priced worse than the limit
func WalkDepth(book *kline.Book, side order.Side, amount, limit, reference decimal.Decimal) (*Movement, error) {
	if book == nil {
		return nil, fmt.Errorf("%w: book", common.ErrNilPointer)
	}
	if !amount.IsPositive() {
		return nil, errInvalidAmount
	}
	if !reference.IsPositive() {
		return nil, errInvalidReference
	}
	levels := book.Asks
	if side == order.Sell {
		levels = book.Bids
	}
	if len(levels) == 0 {
		return nil, errNoLevels
	}
	m := &Movement{
		Requested:      amount,
		ReferencePrice: reference,
	}
	leftover := amount
	for i := range levels {
		if limit.IsPositive() && worseThanLimit(side, levels[i].Price, limit) {
			break
		}
		if !levels[i].Amount.IsPositive() {
			continue
		}
		take := decimal.Min(levels[i].Amount, leftover)
		if m.LevelsConsumed == 0 {
			m.StartPrice = levels[i].Price
		}
		m.EndPrice = levels[i].Price
		m.LevelsConsumed++
		m.Cost = m.Cost.Add(take.Mul(levels[i].Price))
		m.Filled = m.Filled.Add(take)
		leftover = leftover.Sub(take)
		if leftover.IsZero() {
			break
		}
	}
	m.FullBookSideConsumed = leftover.IsPositive()
	if m.Filled.IsPositive() {
		m.VWAP = m.Cost.Div(m.Filled)
		m.SlippageBPS = AdverseBPS(side, reference, m.VWAP)
	}
	return m, nil
}

func worseThanLimit(side order.Side, price, limit decimal.Decimal) bool {
	if side == order.Sell {
		return price.LessThan(limit)
	}
	return price.GreaterThan(limit)
}

// AdverseBPS returns how far price moved against the side from the reference
// in basis points. Buying above or selling below the reference is positive
func AdverseBPS(side order.Side, reference, price decimal.Decimal) decimal.Decimal {
	if reference.IsZero() {
		return decimal.Zero
	}
	diff := price.Sub(reference)
	if side == order.Sell {
		diff = diff.Neg()
	}
	return common.RatioToBPS(diff.Div(reference))
}

// ApplyBPS moves the price against the side by bps
func ApplyBPS(side order.Side, price, bps decimal.Decimal) decimal.Decimal {
	ratio := common.BPSToRatio(bps)
	if side == order.Sell {
		return price.Mul(decimal.NewFromInt(1).Sub(ratio))
	}
	return price.Mul(decimal.NewFromInt(1).Add(ratio))
}

// MarketImpactBPS returns the impact cost in basis points for the share of
// available liquidity consumed. The linear model is coefficient × participation,
// the power model is coefficient × participation^exponent
func MarketImpactBPS(model string, coefficient, exponent, participation decimal.Decimal) (decimal.Decimal, error) {
	if !participation.IsPositive() || !coefficient.IsPositive() {
		return decimal.Zero, nil
	}
	switch strings.ToLower(model) {
	case common.ImpactLinear, "":
		return coefficient.Mul(participation), nil
	case common.ImpactPower:
		p, _ := participation.Float64()
		e, _ := exponent.Float64()
		return coefficient.Mul(decimal.NewFromFloat(math.Pow(p, e))), nil
	default:
		return decimal.Zero, fmt.Errorf("%w '%v'", errUnknownImpact, model)
	}
}

// VolatilityBPS converts a per bar volatility ratio into a slippage
// contribution in basis points
func VolatilityBPS(coefficient, volatility decimal.Decimal) decimal.Decimal {
	if !volatility.IsPositive() {
		return decimal.Zero
	}
	return coefficient.Mul(common.RatioToBPS(volatility))
}

// EnsureOrderFitsWithinVolume caps the amount to the share of the bar volume
// the simulator allows an order to consume. A zero participation disables the cap
func EnsureOrderFitsWithinVolume(amount, volume, maxParticipation decimal.Decimal) decimal.Decimal {
	if !maxParticipation.IsPositive() {
		return amount
	}
	return decimal.Min(amount, volume.Mul(maxParticipation))
}
