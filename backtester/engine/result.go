package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/common"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventhandlers/portfolio/ledger"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventhandlers/statistics"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/common/file"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/log"
	"github.com/shopspring/decimal"
)

// finish derives everything that is only known once the loop ends. It runs
// for aborted runs too so partial results carry the same fields
func (r *run) finish(ctx context.Context) *Result {
	res := r.result
	res.EquityCurve = r.ledger.Points()
	if r.position != nil {
		p := *r.position
		res.OpenPosition = &p
	}
	res.ExecutionStats.OrderbookFallback = r.exchange.OrderbookFallbackCount()
	res.ExecutionStats.Divergences = r.ledger.DivergenceCount()
	res.MaxDrawdownTheoretical, res.MaxDrawdownRealistic = r.ledger.MaxDrawdown()
	res.FinalTheoretical, res.FinalRealistic = res.InitialFunds, res.InitialFunds
	if latest, err := r.ledger.Latest(); err == nil {
		res.FinalTheoretical, res.FinalRealistic = latest.Theoretical, latest.Realistic
	}
	r.validateTemporal()

	if len(res.EquityCurve) > 0 {
		r.periodicReturns()
		stats, err := statistics.CalculateAllResults(ctx, r.bt.Statistics, res.EquityCurve, res.Trades, nil)
		if err != nil {
			log.Errorf(common.Statistics, "run %v statistics: %v", res.RunID, err)
		} else {
			res.Statistics = stats
			res.TrackingError = stats.TrackingError
		}
		r.estimateRuin(ctx)
	}
	log.Infof(common.Backtester, "run %v %v after %v bars, theoretical %v realistic %v, %v trades, %v fills, %v orderbook fallbacks",
		res.RunID, res.Status, r.bars, res.FinalTheoretical.StringFixed(2), res.FinalRealistic.StringFixed(2),
		len(res.Trades), res.ExecutionStats.Fills, res.ExecutionStats.OrderbookFallback)
	return res
}

// validateTemporal marks the run failed when too many bar intervals gapped
func (r *run) validateTemporal() {
	tv := &r.result.TemporalValidation
	tv.Bars = r.bars
	tv.Status = StatusCompleted
	if r.result.Status == StatusFailedTemporalOrder {
		tv.Status = StatusFailedTemporalOrder
	}
	if r.bars < 2 {
		return
	}
	tv.GapRatio = decimal.NewFromInt(tv.GapCount).Div(decimal.NewFromInt(r.bars - 1))
	if !r.bt.MaxGapRatio.IsPositive() || tv.GapRatio.LessThanOrEqual(r.bt.MaxGapRatio) {
		return
	}
	tv.Status = StatusFailedTemporalValidation
	if r.result.Status == StatusCompleted {
		r.result.Status = StatusFailedTemporalValidation
		r.result.Reason = fmt.Sprintf("gap ratio %v exceeds maximum %v", tv.GapRatio.StringFixed(4), r.bt.MaxGapRatio)
		log.Warnf(common.Data, "run %v %v", r.result.RunID, r.result.Reason)
	}
}

func (r *run) periodicReturns() {
	pr := &r.result.ReturnsPerPeriod
	for p, dst := range map[ledger.Period]*[]ledger.PeriodReturn{
		ledger.Daily:   &pr.Daily,
		ledger.Weekly:  &pr.Weekly,
		ledger.Monthly: &pr.Monthly,
	} {
		returns, err := r.ledger.PeriodicReturns(p)
		if err != nil {
			log.Warnf(common.Statistics, "run %v %v returns: %v", r.result.RunID, p, err)
			continue
		}
		*dst = returns
	}
}

// estimateRuin runs the Monte Carlo ruin estimate from the run's own trade
// statistics. It needs at least one win and one loss for a payoff ratio
func (r *run) estimateRuin(ctx context.Context) {
	rs := r.bt.Ruin
	if rs.Trials <= 0 {
		return
	}
	ts := statistics.TradeStatisticsFrom(r.result.Trades)
	if ts.Wins == 0 || ts.Losses == 0 {
		log.Warnf(common.Statistics, "run %v ruin estimate skipped, %v wins and %v losses", r.result.RunID, ts.Wins, ts.Losses)
		return
	}
	est, err := statistics.SimulateRuin(ctx, statistics.RuinParams{
		WinRate:       ts.WinRate,
		PayoffRatio:   ts.PayoffRatio,
		RiskFraction:  rs.RiskFraction,
		HorizonTrades: rs.HorizonTrades,
		Threshold:     rs.Threshold,
		Trials:        rs.Trials,
		Seed:          rs.Seed,
		Workers:       rs.Workers,
	})
	if err != nil {
		log.Warnf(common.Statistics, "run %v ruin estimate: %v", r.result.RunID, err)
		return
	}
	r.result.Ruin = est
}

// WriteResult encodes the result as indented JSON
func WriteResult(w io.Writer, res *Result) error {
	if res == nil {
		return common.ErrNilArguments
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	return enc.Encode(res)
}

// WriteResultToFile saves the result as indented JSON, creating directories
// as needed
func WriteResultToFile(path string, res *Result) error {
	if res == nil {
		return common.ErrNilArguments
	}
	data, err := json.MarshalIndent(res, "", " ")
	if err != nil {
		return err
	}
	return file.Write(path, data)
}
