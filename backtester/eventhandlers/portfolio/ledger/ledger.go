package ledger

import (
	"fmt"
	"sort"
	"time"

	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/common"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/log"
	"github.com/shopspring/decimal"
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// DefaultDivergenceTolerance is used when no tolerance is set
var DefaultDivergenceTolerance = decimal.NewFromFloat(0.001)

// New returns an empty ledger
func New(s Settings) (*Ledger, error) {
	if s.DivergenceTolerance.IsNegative() {
		return nil, errBadTolerance
	}
	if s.DivergenceTolerance.IsZero() {
		s.DivergenceTolerance = DefaultDivergenceTolerance
	}
	switch s.DivergencePolicy {
	case "":
		s.DivergencePolicy = common.DivergencePolicyWarn
	case common.DivergencePolicyWarn, common.DivergencePolicyFatal:
	default:
		return nil, fmt.Errorf("%w '%v'", errInvalidPolicy, s.DivergencePolicy)
	}
	return &Ledger{Settings: s}, nil
}

// UpdateEquity appends one point to both curves and recomputes peak equity
// and drawdown. Timestamps must strictly increase; violating points are not
// recorded. Realistic equity above theoretical equity beyond the tolerance
// is always logged and is returned as a *DivergenceError under the fatal policy
func (l *Ledger) UpdateEquity(theoretical, realistic decimal.Decimal, timestamp time.Time) error {
	if n := len(l.points); n > 0 && !timestamp.After(l.points[n-1].Time) {
		return fmt.Errorf("%w: %v after %v", ErrNonIncreasingTimestamp, timestamp, l.points[n-1].Time)
	}
	p := EquityPoint{
		Time:        timestamp,
		Theoretical: theoretical,
		Realistic:   realistic,
	}
	if !theoretical.IsZero() {
		p.DivergencePct = theoretical.Sub(realistic).Div(theoretical).Mul(hundred)
	}
	l.points = append(l.points, p)
	l.peakTheoretical, l.drawdownTheoretical, l.maxDrawdownTheoretical = trackDrawdown(theoretical, l.peakTheoretical, l.maxDrawdownTheoretical)
	l.peakRealistic, l.drawdownRealistic, l.maxDrawdownRealistic = trackDrawdown(realistic, l.peakRealistic, l.maxDrawdownRealistic)

	if realistic.GreaterThan(theoretical.Mul(one.Add(l.DivergenceTolerance))) {
		l.divergences++
		if l.DivergencePolicy == common.DivergencePolicyFatal {
			return &DivergenceError{Point: p, Tolerance: l.DivergenceTolerance}
		}
		log.Warnf(common.Ledger, "%v at %v realistic equity %v exceeds theoretical %v beyond tolerance %v",
			ErrEquityDivergence, timestamp, realistic, theoretical, l.DivergenceTolerance)
	}
	return nil
}

func trackDrawdown(equity, peak, maxDrawdown decimal.Decimal) (newPeak, drawdown, newMax decimal.Decimal) {
	newPeak = decimal.Max(peak, equity)
	if newPeak.IsPositive() {
		drawdown = newPeak.Sub(equity).Div(newPeak)
	}
	newMax = decimal.Max(maxDrawdown, drawdown)
	return newPeak, drawdown, newMax
}

// Points returns a copy of the equity curve
func (l *Ledger) Points() []EquityPoint {
	resp := make([]EquityPoint, len(l.points))
	copy(resp, l.points)
	return resp
}

// Len returns the number of recorded points
func (l *Ledger) Len() int {
	return len(l.points)
}

// Latest returns the most recent point
func (l *Ledger) Latest() (EquityPoint, error) {
	if len(l.points) == 0 {
		return EquityPoint{}, errNoEquity
	}
	return l.points[len(l.points)-1], nil
}

// Drawdown returns the current drawdown ratio of both curves
func (l *Ledger) Drawdown() (theoretical, realistic decimal.Decimal) {
	return l.drawdownTheoretical, l.drawdownRealistic
}

// MaxDrawdown returns the largest drawdown ratio seen on both curves
func (l *Ledger) MaxDrawdown() (theoretical, realistic decimal.Decimal) {
	return l.maxDrawdownTheoretical, l.maxDrawdownRealistic
}

// PeakEquity returns the running peak of both curves
func (l *Ledger) PeakEquity() (theoretical, realistic decimal.Decimal) {
	return l.peakTheoretical, l.peakRealistic
}

// DivergenceCount returns how many points breached the tolerance
func (l *Ledger) DivergenceCount() int64 {
	return l.divergences
}

// ValueAt returns the last point recorded at or before t
func (l *Ledger) ValueAt(t time.Time) (EquityPoint, bool) {
	idx := sort.Search(len(l.points), func(i int) bool {
		return l.points[i].Time.After(t)
	})
	if idx == 0 {
		return EquityPoint{}, false
	}
	return l.points[idx-1], true
}

// PeriodicReturns buckets the curves into calendar periods in UTC. Each
// period's start and end equity is the last value known at or before its
// boundary, so irregular spacing and gaps are handled without assuming a
// fixed number of bars per period
func (l *Ledger) PeriodicReturns(p Period) ([]PeriodReturn, error) {
	if len(l.points) == 0 {
		return nil, errNoEquity
	}
	if p != Daily && p != Weekly && p != Monthly {
		return nil, fmt.Errorf("%w '%v'", errInvalidPeriod, p)
	}
	first, last := l.points[0], l.points[len(l.points)-1]
	var resp []PeriodReturn
	for b := periodStart(first.Time, p); b.Before(last.Time); b = nextPeriod(b, p) {
		next := nextPeriod(b, p)
		start, ok := l.ValueAt(b)
		if !ok {
			start = first
		}
		end, _ := l.ValueAt(next)
		pr := PeriodReturn{
			Start:       b,
			End:         next,
			StartEquity: start.Realistic,
			EndEquity:   end.Realistic,
		}
		if start.Realistic.IsPositive() {
			pr.Return = end.Realistic.Div(start.Realistic).Sub(one)
		}
		if start.Theoretical.IsPositive() {
			pr.TheoreticalReturn = end.Theoretical.Div(start.Theoretical).Sub(one)
		}
		resp = append(resp, pr)
	}
	return resp, nil
}

func periodStart(t time.Time, p Period) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	switch p {
	case Weekly:
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case Monthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return day
	}
}

func nextPeriod(t time.Time, p Period) time.Time {
	switch p {
	case Weekly:
		return t.AddDate(0, 0, 7)
	case Monthly:
		return t.AddDate(0, 1, 0)
	default:
		return t.AddDate(0, 0, 1)
	}
}

// Returns converts the realistic curve into per point returns
func (l *Ledger) Returns() (theoretical, realistic []float64) {
	if len(l.points) < 2 {
		return nil, nil
	}
	theoretical = make([]float64, 0, len(l.points)-1)
	realistic = make([]float64, 0, len(l.points)-1)
	for i := 1; i < len(l.points); i++ {
		theoretical = append(theoretical, ratio(l.points[i-1].Theoretical, l.points[i].Theoretical))
		realistic = append(realistic, ratio(l.points[i-1].Realistic, l.points[i].Realistic))
	}
	return theoretical, realistic
}

func ratio(prev, curr decimal.Decimal) float64 {
	if prev.IsZero() {
		return 0
	}
	f, _ := curr.Div(prev).Sub(one).Float64()
	return f
}
