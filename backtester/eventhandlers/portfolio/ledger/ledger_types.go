package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrNonIncreasingTimestamp is returned when an equity update does not
	// move forward in time
	ErrNonIncreasingTimestamp = errors.New("equity timestamp is not strictly increasing")
	// ErrEquityDivergence is returned when realistic equity exceeds
	// theoretical equity beyond the tolerance
	ErrEquityDivergence = errors.New("realistic equity exceeds theoretical equity")

	errNoEquity      = errors.New("no equity points recorded")
	errInvalidPolicy = errors.New("invalid divergence policy")
	errInvalidPeriod = errors.New("invalid period")
	errBadTolerance  = errors.New("divergence tolerance cannot be negative")
)

// Period is a calendar bucket for periodic returns
type Period string

// Period values
const (
	Daily   Period = "daily"
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
)

// Settings controls how divergence between the curves is handled
type Settings struct {
	// DivergenceTolerance is the ratio realistic equity may exceed
	// theoretical equity by. Zero means DefaultDivergenceTolerance
	DivergenceTolerance decimal.Decimal
	// DivergencePolicy is warn or fatal
	DivergencePolicy string
}

// EquityPoint is one bar of both equity curves
type EquityPoint struct {
	Time        time.Time       `json:"timestamp"`
	Theoretical decimal.Decimal `json:"equity-theoretical"`
	Realistic   decimal.Decimal `json:"equity-realistic"`
	// DivergencePct is how far realistic equity trails theoretical equity in percent
	DivergencePct decimal.Decimal `json:"divergence-pct"`
}

// Ledger is the append only record of both equity curves of a run
type Ledger struct {
	Settings
	points []EquityPoint

	peakTheoretical        decimal.Decimal
	peakRealistic          decimal.Decimal
	drawdownTheoretical    decimal.Decimal
	drawdownRealistic      decimal.Decimal
	maxDrawdownTheoretical decimal.Decimal
	maxDrawdownRealistic   decimal.Decimal
	divergences            int64
}

// PeriodReturn is the equity change over one calendar period
type PeriodReturn struct {
	Start             time.Time       `json:"start"`
	End               time.Time       `json:"end"`
	StartEquity       decimal.Decimal `json:"start-equity"`
	EndEquity         decimal.Decimal `json:"end-equity"`
	Return            decimal.Decimal `json:"return"`
	TheoreticalReturn decimal.Decimal `json:"theoretical-return"`
}

// DivergenceError is returned under the fatal policy
type DivergenceError struct {
	Point     EquityPoint
	Tolerance decimal.Decimal
}

// Error implements error
func (e *DivergenceError) Error() string {
	return fmt.Sprintf("%v at %v: realistic %v theoretical %v tolerance %v",
		ErrEquityDivergence, e.Point.Time, e.Point.Realistic, e.Point.Theoretical, e.Tolerance)
}

// Unwrap allows errors.Is against ErrEquityDivergence
func (e *DivergenceError) Unwrap() error {
	return ErrEquityDivergence
}
