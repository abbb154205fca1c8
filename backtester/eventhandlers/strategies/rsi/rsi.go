package rsi

import (
	"fmt"
	"math"

	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/common"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventhandlers/strategies/base"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventtypes/order"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventtypes/signal"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/log"
	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/gct-ta/indicators"
)

const (
	// Name is the strategy name
	Name            = "rsi"
	rsiPeriodKey    = "rsi-period"
	rsiLowKey       = "rsi-low"
	rsiHighKey      = "rsi-high"
	stopLossKey     = "stop-loss-pct"
	takeProfitKey   = "take-profit-pct"
	trailingStopKey = "trailing-stop-pct"
	description     = `The relative strength index is a technical indicator used in the analysis of financial markets. It is intended to chart the current and historical strength or weakness of a stock or market based on the closing prices of a recent trading period. This version only goes long, entering with a protective stop when RSI is oversold and exiting when it is overbought`
)

var one = decimal.NewFromInt(1)

// Strategy is an implementation of the Handler interface
type Strategy struct {
	rsiPeriod     decimal.Decimal
	rsiLow        decimal.Decimal
	rsiHigh       decimal.Decimal
	stopLossPct   decimal.Decimal
	takeProfitPct decimal.Decimal
	trailingPct   decimal.Decimal
}

// Name returns the name of the strategy
func (s *Strategy) Name() string {
	return Name
}

// Description provides a nice overview of the strategy
// be it definition of terms or to highlight its purpose
func (s *Strategy) Description() string {
	return description
}

// OnBar returns an entry when flat and RSI is at or below the low level, and
// an exit when long and RSI is at or above the high level. While long with
// no trailing stop attached it attaches one if configured
func (s *Strategy) OnBar(c *base.Context) (signal.Signal, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	period := s.rsiPeriod.IntPart()
	if int64(len(c.History)) <= period {
		return signal.Hold{}, nil
	}
	rsi := indicators.RSI(c.Closes(), int(period))
	latest := rsi[len(rsi)-1]
	if math.IsNaN(latest) || math.IsInf(latest, 0) {
		return signal.Hold{}, nil
	}
	latestRSIValue := decimal.NewFromFloat(latest)
	price := c.Bar.Close

	if c.IsFlat() {
		if latestRSIValue.GreaterThan(s.rsiLow) {
			return signal.Hold{}, nil
		}
		e := signal.Enter{
			Side:       order.Buy,
			EntryPrice: price,
			StopLoss:   price.Mul(one.Sub(s.stopLossPct)),
		}
		if s.takeProfitPct.IsPositive() {
			e.TakeProfit = price.Mul(one.Add(s.takeProfitPct))
		}
		log.Debugf(common.Strategy, "%v RSI at %v, entering at %v", c.Bar.Time, latestRSIValue.StringFixed(2), price)
		return e, nil
	}

	if latestRSIValue.GreaterThanOrEqual(s.rsiHigh) {
		log.Debugf(common.Strategy, "%v RSI at %v, exiting at %v", c.Bar.Time, latestRSIValue.StringFixed(2), price)
		return signal.Exit{}, nil
	}
	if s.trailingPct.IsPositive() && c.Position.TrailingPct.IsZero() && c.Position.TrailingDistance.IsZero() {
		return signal.TrailingStop{DistancePct: s.trailingPct}, nil
	}
	return signal.Hold{}, nil
}

// SetCustomSettings allows a user to modify the RSI limits in their config
func (s *Strategy) SetCustomSettings(customSettings map[string]any) error {
	for k, v := range customSettings {
		d, err := base.PositiveDecimal(k, v)
		if err != nil {
			return err
		}
		switch k {
		case rsiHighKey:
			s.rsiHigh = d
		case rsiLowKey:
			s.rsiLow = d
		case rsiPeriodKey:
			s.rsiPeriod = d.Floor()
		case stopLossKey:
			s.stopLossPct = d
		case takeProfitKey:
			s.takeProfitPct = d
		case trailingStopKey:
			s.trailingPct = d
		default:
			return fmt.Errorf("%w unrecognised custom setting key %v with value %v. Cannot apply", base.ErrInvalidCustomSettings, k, v)
		}
	}
	if s.rsiLow.GreaterThanOrEqual(s.rsiHigh) {
		return fmt.Errorf("%w rsi-low %v must be below rsi-high %v", base.ErrInvalidCustomSettings, s.rsiLow, s.rsiHigh)
	}
	for _, pct := range []decimal.Decimal{s.stopLossPct, s.trailingPct} {
		if pct.GreaterThanOrEqual(one) {
			return fmt.Errorf("%w percentage %v must be below 1", base.ErrInvalidCustomSettings, pct)
		}
	}
	if !s.rsiPeriod.IsPositive() {
		return fmt.Errorf("%w rsi-period must be at least 1", base.ErrInvalidCustomSettings)
	}
	return nil
}

// SetDefaults sets the custom settings to their default values
func (s *Strategy) SetDefaults() {
	s.rsiHigh = decimal.NewFromInt(70)
	s.rsiLow = decimal.NewFromInt(30)
	s.rsiPeriod = decimal.NewFromInt(14)
	s.stopLossPct = decimal.NewFromFloat(0.02)
	s.takeProfitPct = decimal.NewFromFloat(0.04)
	s.trailingPct = decimal.Zero
}
