package statistics

import (
	"fmt"
	"math"
	"sort"

	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventhandlers/portfolio/ledger"
	ostmath "github.com/LautaroIbanez/One-Smart-Trade-sub000/common/math"
)

// CurvesFromEquity splits ledger points into the two curves
func CurvesFromEquity(points []ledger.EquityPoint) (theoretical, realistic []CurvePoint) {
	theoretical = make([]CurvePoint, len(points))
	realistic = make([]CurvePoint, len(points))
	for i := range points {
		theoretical[i] = CurvePoint{Time: points[i].Time, Value: points[i].Theoretical.InexactFloat64()}
		realistic[i] = CurvePoint{Time: points[i].Time, Value: points[i].Realistic.InexactFloat64()}
	}
	return theoretical, realistic
}

// TrackingErrorFromCurves compares two curves over their time aligned pairs.
// Points present in only one curve are ignored. RMSE is taken over the
// difference of per bar returns and annualised by sqrt(bars per year).
// Divergence is how far realistic equity trails theoretical equity in basis points
func TrackingErrorFromCurves(theoretical, realistic []CurvePoint, opts TrackingErrorOptions) (*TrackingErrorSummary, error) {
	if opts.BarsPerYear <= 0 {
		return nil, fmt.Errorf("%w, received %v", errInvalidBarsPerYear, opts.BarsPerYear)
	}
	theo, actual := alignCurves(theoretical, realistic)
	if len(theo) < 2 {
		return nil, fmt.Errorf("%w, received %v", errNotEnoughAligned, len(theo))
	}

	resp := &TrackingErrorSummary{
		Start:  theo[0].Time,
		End:    theo[len(theo)-1].Time,
		Points: len(theo),
	}
	var divergenceSum float64
	var above int
	for i := range theo {
		var bps float64
		if theo[i].Value != 0 {
			bps = (theo[i].Value - actual[i].Value) / theo[i].Value * 10000
		}
		divergenceSum += bps
		if i == 0 || bps > resp.MaxDivergenceBPS {
			resp.MaxDivergenceBPS = bps
		}
		if bps > opts.ThresholdBPS {
			above++
		}
	}
	resp.MeanDivergenceBPS = divergenceSum / float64(len(theo))
	resp.PctBarsAboveThreshold = float64(above) / float64(len(theo)) * 100

	theoReturns, realReturns := curveReturns(theo), curveReturns(actual)
	rmse, err := ostmath.RMSE(theoReturns, realReturns)
	if err != nil {
		return nil, err
	}
	resp.RMSE = rmse
	resp.AnnualizedTrackingError = rmse * math.Sqrt(opts.BarsPerYear)
	resp.Correlation = returnsCorrelation(theoReturns, realReturns)
	return resp, nil
}

// ExceedsCeiling reports whether annualised tracking error is above the ceiling, eg 0.03
func (t *TrackingErrorSummary) ExceedsCeiling(ceiling float64) bool {
	return t != nil && t.AnnualizedTrackingError > ceiling
}

func alignCurves(theoretical, realistic []CurvePoint) (theo, actual []CurvePoint) {
	byTime := make(map[int64]float64, len(theoretical))
	for i := range theoretical {
		byTime[theoretical[i].Time.UnixNano()] = theoretical[i].Value
	}
	for i := range realistic {
		v, ok := byTime[realistic[i].Time.UnixNano()]
		if !ok {
			continue
		}
		theo = append(theo, CurvePoint{Time: realistic[i].Time, Value: v})
		actual = append(actual, realistic[i])
	}
	sort.Sort(byCurveTime{theo, actual})
	return theo, actual
}

type byCurveTime struct {
	a, b []CurvePoint
}

func (s byCurveTime) Len() int           { return len(s.a) }
func (s byCurveTime) Less(i, j int) bool { return s.a[i].Time.Before(s.a[j].Time) }
func (s byCurveTime) Swap(i, j int) {
	s.a[i], s.a[j] = s.a[j], s.a[i]
	s.b[i], s.b[j] = s.b[j], s.b[i]
}

func curveReturns(c []CurvePoint) []float64 {
	resp := make([]float64, 0, len(c)-1)
	for i := 1; i < len(c); i++ {
		r, err := ostmath.PercentageChange(c[i-1].Value, c[i].Value)
		if err != nil {
			r = 0
		}
		resp = append(resp, r)
	}
	return resp
}

func returnsCorrelation(a, b []float64) float64 {
	c, err := ostmath.Correlation(a, b)
	if err == nil {
		return c
	}
	for i := range a {
		if a[i] != b[i] {
			return 0
		}
	}
	return 1
}
