package size

import (
	"fmt"
	"strings"

	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/common"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/log"
	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// New validates settings and returns a Sizer
func New(s Settings) (*Sizer, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &Sizer{Settings: s}, nil
}

// Validate ensures settings are usable
func (s *Settings) Validate() error {
	if s == nil {
		return common.ErrNilArguments
	}
	for name, v := range map[string]decimal.Decimal{
		"risk budget":       s.RiskBudgetPercent,
		"kelly fraction":    s.KellyFraction,
		"kelly cap":         s.KellyCap,
		"target volatility": s.TargetVolatility,
		"drawdown ceiling":  s.DrawdownCeiling,
		"max leverage":      s.MaxLeverage,
		"minimum size":      s.MinimumSize,
		"maximum size":      s.MaximumSize,
	} {
		if v.IsNegative() {
			return fmt.Errorf("%w %v cannot be negative", errInvalidSetting, name)
		}
	}
	if s.RiskBudgetPercent.GreaterThan(one) {
		return fmt.Errorf("%w risk budget %v above 1", errInvalidSetting, s.RiskBudgetPercent)
	}
	if s.KellyFraction.GreaterThan(MaximumKellyFraction) {
		return fmt.Errorf("%w kelly fraction %v above %v", errInvalidSetting, s.KellyFraction, MaximumKellyFraction)
	}
	if s.KellyCap.GreaterThan(MaximumKellyCap) {
		return fmt.Errorf("%w kelly cap %v above %v", errInvalidSetting, s.KellyCap, MaximumKellyCap)
	}
	if !s.MaximumSize.IsZero() && s.MinimumSize.GreaterThan(s.MaximumSize) {
		return fmt.Errorf("%w minimum size %v above maximum %v", errInvalidSetting, s.MinimumSize, s.MaximumSize)
	}
	return nil
}

// Size runs the pipeline in order: drawdown throttle on the risk budget, risk
// based units, volatility scaling, the minimum of that and Kelly units, then
// the leverage and size limits
func (s *Sizer) Size(r Request) (*Result, error) {
	if err := r.validate(); err != nil {
		return nil, err
	}
	resp := &Result{}
	explain := func(format string, a ...any) {
		resp.Explanation = append(resp.Explanation, fmt.Sprintf(format, a...))
	}

	riskPct := s.RiskBudgetPercent
	if r.CurrentDrawdown.Valid && s.DrawdownCeiling.IsPositive() {
		m := DrawdownMultiplier(r.CurrentDrawdown.Decimal, s.DrawdownCeiling)
		riskPct = riskPct.Mul(m)
		explain("drawdown %v against ceiling %v scales risk budget by %v to %v", r.CurrentDrawdown.Decimal, s.DrawdownCeiling, m, riskPct)
	}

	units := RiskUnits(r.Capital, riskPct, r.EntryPrice, r.StopPrice)
	explain("risk budget %v of capital %v over stop distance %v gives %v units", riskPct, r.Capital, r.EntryPrice.Sub(r.StopPrice).Abs(), units)

	if r.RealizedVolatility.Valid && s.TargetVolatility.IsPositive() {
		scale := VolatilityScale(s.TargetVolatility, r.RealizedVolatility.Decimal)
		units = units.Mul(scale)
		explain("volatility %v against target %v scales units by %v to %v", r.RealizedVolatility.Decimal, s.TargetVolatility, scale, units)
	}

	if r.WinRate.Valid && r.PayoffRatio.Valid {
		full := KellyFraction(r.WinRate.Decimal, r.PayoffRatio.Decimal)
		truncated := TruncatedKelly(full, s.KellyFraction, s.KellyCap)
		kellyUnits := KellyUnits(r.Capital, truncated, r.EntryPrice)
		if kellyUnits.LessThan(units) {
			units = kellyUnits
			explain("kelly %v truncated to %v limits units to %v", full, truncated, units)
		} else {
			explain("kelly %v truncated to %v allows %v units, risk sizing is smaller", full, truncated, kellyUnits)
		}
	}

	if s.MaxLeverage.IsPositive() {
		capped := LeverageCap(units, r.Capital, s.MaxLeverage, r.EntryPrice)
		if capped.LessThan(units) {
			explain("leverage %v caps units from %v to %v", s.MaxLeverage, units, capped)
			units = capped
		}
	}

	if s.MaximumSize.IsPositive() && units.GreaterThan(s.MaximumSize) {
		explain("units %v above maximum size %v", units, s.MaximumSize)
		units = s.MaximumSize
	}
	if units.IsPositive() && units.LessThan(s.MinimumSize) {
		explain("units %v below minimum size %v, not trading", units, s.MinimumSize)
		units = decimal.Zero
	}

	resp.Units = units
	resp.Notional = units.Mul(r.EntryPrice)
	resp.RiskAmount = units.Mul(r.EntryPrice.Sub(r.StopPrice).Abs())
	resp.RiskPercentage = resp.RiskAmount.Div(r.Capital)
	log.Debugf(common.Sizing, "sized %v units notional %v risking %v: %v",
		resp.Units, resp.Notional, resp.RiskAmount, strings.Join(resp.Explanation, ". "))
	return resp, nil
}

func (r *Request) validate() error {
	if !r.Capital.IsPositive() {
		return errZeroCapital
	}
	if !r.EntryPrice.IsPositive() {
		return errInvalidEntryPrice
	}
	if r.EntryPrice.Equal(r.StopPrice) {
		return errStopEqualsEntry
	}
	if r.WinRate.Valid && (r.WinRate.Decimal.IsNegative() || r.WinRate.Decimal.GreaterThan(one)) {
		return fmt.Errorf("%w, received %v", errInvalidWinRate, r.WinRate.Decimal)
	}
	if r.PayoffRatio.Valid && !r.PayoffRatio.Decimal.IsPositive() {
		return fmt.Errorf("%w, received %v", errInvalidPayoffRatio, r.PayoffRatio.Decimal)
	}
	return nil
}

// DrawdownMultiplier returns clamp(1 - drawdown/ceiling, 0, 1)
func DrawdownMultiplier(drawdown, ceiling decimal.Decimal) decimal.Decimal {
	if !ceiling.IsPositive() {
		return one
	}
	return clamp(one.Sub(drawdown.Div(ceiling)), decimal.Zero, one)
}

// RiskUnits returns capital * riskPct / |entry - stop|
func RiskUnits(capital, riskPct, entry, stop decimal.Decimal) decimal.Decimal {
	distance := entry.Sub(stop).Abs()
	if distance.IsZero() {
		return decimal.Zero
	}
	return capital.Mul(riskPct).Div(distance)
}

// VolatilityScale returns target/realized clamped to [0.5, 2]. A missing
// realized volatility leaves size unscaled
func VolatilityScale(target, realized decimal.Decimal) decimal.Decimal {
	if !target.IsPositive() || !realized.IsPositive() {
		return one
	}
	return clamp(target.Div(realized), MinimumVolatilityScale, MaximumVolatilityScale)
}

// KellyFraction returns win - (1-win)/payoff
func KellyFraction(winRate, payoff decimal.Decimal) decimal.Decimal {
	if !payoff.IsPositive() {
		return decimal.Zero
	}
	return winRate.Sub(one.Sub(winRate).Div(payoff))
}

// TruncatedKelly scales full Kelly by fraction and caps it. Fraction and
// limit never exceed MaximumKellyFraction and MaximumKellyCap, a zero
// fraction is half Kelly and a zero limit is MaximumKellyCap. A negative edge
// allocates nothing
func TruncatedKelly(full, fraction, limit decimal.Decimal) decimal.Decimal {
	if !full.IsPositive() {
		return decimal.Zero
	}
	if !fraction.IsPositive() || fraction.GreaterThan(MaximumKellyFraction) {
		fraction = MaximumKellyFraction
	}
	if !limit.IsPositive() || limit.GreaterThan(MaximumKellyCap) {
		limit = MaximumKellyCap
	}
	return decimal.Min(full.Mul(fraction), limit)
}

// KellyUnits converts a ratio of capital into units at the entry price
func KellyUnits(capital, fraction, entry decimal.Decimal) decimal.Decimal {
	if !entry.IsPositive() {
		return decimal.Zero
	}
	return capital.Mul(fraction).Div(entry)
}

// LeverageCap limits units so notional does not exceed capital * leverage
func LeverageCap(units, capital, leverage, entry decimal.Decimal) decimal.Decimal {
	if !leverage.IsPositive() || !entry.IsPositive() {
		return units
	}
	return decimal.Min(units, capital.Mul(leverage).Div(entry))
}

func clamp(v, lower, upper decimal.Decimal) decimal.Decimal {
	return decimal.Max(lower, decimal.Min(upper, v))
}
