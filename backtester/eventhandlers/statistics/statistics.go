package statistics

import (
	"context"
	"fmt"
	"math"

	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/common"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventhandlers/portfolio/ledger"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventhandlers/portfolio/position"
	ostmath "github.com/LautaroIbanez/One-Smart-Trade-sub000/common/math"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/log"
	"github.com/shopspring/decimal"
)

// CalculateAllResults derives every end of run statistic from the equity
// curve and closed trades. A nil ruin leaves the ruin estimate unset
func CalculateAllResults(ctx context.Context, s Settings, points []ledger.EquityPoint, trades []position.Trade, ruin *RuinParams) (*Statistic, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("%w to calculate statistics", errReceivedNoData)
	}
	resp := &Statistic{
		Trades: TradeStatisticsFrom(trades),
	}
	theo := make([]ValueAtTime, len(points))
	realistic := make([]ValueAtTime, len(points))
	for i := range points {
		theo[i] = ValueAtTime{Time: points[i].Time, Value: points[i].Theoretical, Set: true}
		realistic[i] = ValueAtTime{Time: points[i].Time, Value: points[i].Realistic, Set: true}
	}
	var err error
	resp.TheoreticalDrawdown, err = CalculateBiggestValueAtTimeDrawdown(theo)
	if err != nil {
		return nil, err
	}
	resp.RealisticDrawdown, err = CalculateBiggestValueAtTimeDrawdown(realistic)
	if err != nil {
		return nil, err
	}

	if len(points) >= 2 {
		theoCurve, realCurve := CurvesFromEquity(points)
		resp.TrackingError, err = TrackingErrorFromCurves(theoCurve, realCurve, TrackingErrorOptions{
			BarsPerYear:  s.BarsPerYear,
			ThresholdBPS: s.DivergenceThresholdBPS,
		})
		if err != nil {
			return nil, err
		}
		resp.Ratios = CalculateRatios(realCurve, resp.RealisticDrawdown, s)
	}

	if ruin != nil {
		resp.Ruin, err = SimulateRuin(ctx, *ruin)
		if err != nil {
			return nil, err
		}
	}
	log.Debugf(common.Statistics, "calculated statistics over %v points and %v trades", len(points), len(trades))
	return resp, nil
}

// CalculateRatios annualises Sharpe and Sortino from per bar returns and
// compares the growth rate against the maximum drawdown
func CalculateRatios(curve []CurvePoint, maxDrawdown Swing, s Settings) Ratios {
	var resp Ratios
	if len(curve) < 2 || s.BarsPerYear <= 0 {
		return resp
	}
	returns := curveReturns(curve)
	perBarRiskFree := s.RiskFreeRate / s.BarsPerYear
	annualise := math.Sqrt(s.BarsPerYear)
	resp.SharpeRatio = ostmath.SharpeRatio(returns, perBarRiskFree) * annualise
	resp.SortinoRatio = ostmath.SortinoRatio(returns, perBarRiskFree) * annualise
	cagr, err := ostmath.CompoundAnnualGrowthRate(curve[0].Value, curve[len(curve)-1].Value, s.BarsPerYear, float64(len(returns)))
	if err != nil {
		log.Warnf(common.Statistics, "compound annual growth rate: %v", err)
		return resp
	}
	resp.CompoundAnnualGrowthRate = cagr
	drawdown := maxDrawdown.DrawdownPercent.Abs().Div(decimal.NewFromInt(100)).InexactFloat64()
	if drawdown > 0 {
		resp.CalmarRatio = cagr / drawdown
	}
	return resp
}

// CalculateBiggestValueAtTimeDrawdown returns the largest retracement from a
// running peak. DrawdownPercent is negative, eg -25 for a 25% drawdown, and
// IntervalDuration counts the points from peak to trough
func CalculateBiggestValueAtTimeDrawdown(values []ValueAtTime) (Swing, error) {
	if len(values) == 0 {
		return Swing{}, fmt.Errorf("%w to calculate drawdowns", errReceivedNoData)
	}
	hundred := decimal.NewFromInt(100)
	peak, peakIndex := values[0], 0
	resp := Swing{
		Highest:         values[0],
		Lowest:          values[0],
		DrawdownPercent: decimal.Zero,
	}
	for i := range values {
		if values[i].Value.GreaterThan(peak.Value) {
			peak, peakIndex = values[i], i
			continue
		}
		if !peak.Value.IsPositive() {
			continue
		}
		dd := values[i].Value.Sub(peak.Value).Div(peak.Value).Mul(hundred)
		if dd.LessThan(resp.DrawdownPercent) {
			resp = Swing{
				Highest:          peak,
				Lowest:           values[i],
				DrawdownPercent:  dd,
				IntervalDuration: int64(i - peakIndex),
			}
		}
	}
	return resp, nil
}

// TradeStatisticsFrom summarises closed trades. A trade with zero PNL counts
// as neither a win nor a loss
func TradeStatisticsFrom(trades []position.Trade) TradeStatistics {
	resp := TradeStatistics{Trades: int64(len(trades))}
	var winSum, lossSum decimal.Decimal
	for i := range trades {
		resp.TotalPNL = resp.TotalPNL.Add(trades[i].PNL)
		resp.TotalFees = resp.TotalFees.Add(trades[i].Fees)
		if trades[i].Gap {
			resp.GapExits++
		}
		switch {
		case trades[i].PNL.IsPositive():
			resp.Wins++
			winSum = winSum.Add(trades[i].PNL)
		case trades[i].PNL.IsNegative():
			resp.Losses++
			lossSum = lossSum.Add(trades[i].PNL.Abs())
		}
	}
	if resp.Trades > 0 {
		resp.WinRate = float64(resp.Wins) / float64(resp.Trades)
	}
	if resp.Wins > 0 && resp.Losses > 0 {
		avgWin := winSum.Div(decimal.NewFromInt(resp.Wins))
		avgLoss := lossSum.Div(decimal.NewFromInt(resp.Losses))
		resp.PayoffRatio = avgWin.Div(avgLoss).InexactFloat64()
	}
	return resp
}
