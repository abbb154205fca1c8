package engine

import (
	"math"

	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventtypes/kline"
	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/gct-ta/indicators"
)

// atrWarmup is how many lookbacks of history feed the ATR smoothing
const atrWarmup = 4

// EstimateVolatility returns the latest bar's own volatility estimate when it
// carries one, otherwise the average true range over lookback bars as a ratio
// of the close. Zero when there is not enough history
func EstimateVolatility(history []*kline.Kline, lookback int) decimal.Decimal {
	if len(history) == 0 {
		return decimal.Zero
	}
	latest := history[len(history)-1]
	if latest.Volatility != nil && !latest.Volatility.IsNegative() {
		return *latest.Volatility
	}
	if lookback <= 0 || len(history) <= lookback || !latest.Close.IsPositive() {
		return decimal.Zero
	}
	window := history[max(0, len(history)-lookback*atrWarmup):]
	highs := make([]float64, len(window))
	lows := make([]float64, len(window))
	closes := make([]float64, len(window))
	for i := range window {
		highs[i] = window[i].High.InexactFloat64()
		lows[i] = window[i].Low.InexactFloat64()
		closes[i] = window[i].Close.InexactFloat64()
	}
	atr := indicators.ATR(highs, lows, closes, lookback)
	if len(atr) == 0 {
		return decimal.Zero
	}
	v := atr[len(atr)-1]
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v).Div(latest.Close)
}
