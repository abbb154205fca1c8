package exchange

import (
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventtypes/kline"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventtypes/order"
	"github.com/shopspring/decimal"
)

// ResolveExit decides which protective level a bar hits for a position on
// positionSide. Zero levels are unset. The order of precedence is a stop
// gapped strictly through at the open, then a stop touched within the bar, then the
// take profit. When both levels lie within the bar range the stop loss
// always wins as bar data cannot tell which was touched first
func ResolveExit(k *kline.Kline, positionSide order.Side, stop, takeProfit decimal.Decimal) Exit {
	long := positionSide == order.Buy
	if stop.IsPositive() {
		if long && k.Open.LessThan(stop) || !long && k.Open.GreaterThan(stop) {
			return Exit{Trigger: ExitStopLoss, Gap: true}
		}
		if long && k.Low.LessThanOrEqual(stop) || !long && k.High.GreaterThanOrEqual(stop) {
			return Exit{Trigger: ExitStopLoss}
		}
	}
	if takeProfit.IsPositive() {
		if long && k.High.GreaterThanOrEqual(takeProfit) || !long && k.Low.LessThanOrEqual(takeProfit) {
			return Exit{Trigger: ExitTakeProfit}
		}
	}
	return Exit{Trigger: ExitNone}
}
