package engine

import (
	"context"
	"errors"

	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/common"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/data"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventhandlers/exchange"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventhandlers/portfolio/holdings"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventhandlers/portfolio/ledger"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventhandlers/statistics"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventhandlers/strategies"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventtypes/kline"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/log"
	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

// New returns a backtest definition. The sizer may be nil
func New(s *Settings, strategy strategies.Handler, sizer RiskSizer) (*BackTest, error) {
	if s == nil {
		return nil, common.ErrNilArguments
	}
	if strategy == nil {
		return nil, errNilStrategy
	}
	if !s.InitialFunds.IsPositive() {
		return nil, holdings.ErrInitialFundsZero
	}
	if err := s.Exchange.Validate(); err != nil {
		return nil, err
	}
	if _, err := ledger.New(s.Ledger); err != nil {
		return nil, err
	}
	return &BackTest{Settings: *s, Strategy: strategy, Sizer: sizer}, nil
}

// Run replays the stream through the strategy one bar at a time. Each call
// builds its own exchange, holding, ledger and order book keeping. A fatal
// condition returns the partial result alongside the error, the result
// status and reason describe why the run stopped. Cancelling ctx stops the
// run between bars
func (bt *BackTest) Run(ctx context.Context, stream data.Streamer) (*Result, error) {
	if bt == nil || bt.Strategy == nil {
		return nil, errNilStrategy
	}
	if stream == nil {
		return nil, errNilStream
	}
	r, err := bt.newRun(stream)
	if err != nil {
		return nil, err
	}
	log.Infof(common.Backtester, "run %v starting %v over %v bars", r.result.RunID, r.result.Strategy, stream.Len())
	for {
		if err = ctx.Err(); err != nil {
			r.abort(failureStatus(err), err)
			return r.finish(ctx), err
		}
		k, ok := stream.Next()
		if !ok {
			break
		}
		if err = r.processBar(k); err != nil {
			r.abort(failureStatus(err), err)
			return r.finish(ctx), err
		}
	}
	return r.finish(ctx), nil
}

func (bt *BackTest) newRun(stream data.Streamer) (*run, error) {
	stream.Reset()
	ex, err := exchange.New(&bt.Exchange)
	if err != nil {
		return nil, err
	}
	h, err := holdings.Create(bt.InitialFunds)
	if err != nil {
		return nil, err
	}
	l, err := ledger.New(bt.Ledger)
	if err != nil {
		return nil, err
	}
	runID := bt.RunID
	if runID == "" {
		id, err := uuid.NewV4()
		if err != nil {
			return nil, err
		}
		runID = id.String()
	}
	return &run{
		bt:        bt,
		stream:    stream,
		exchange:  ex,
		holding:   h,
		ledger:    l,
		namespace: uuid.NewV5(uuid.NamespaceOID, runID),
		protect:   make(map[string]protection),
		result: &Result{
			RunID:        runID,
			Strategy:     bt.Strategy.Name(),
			Status:       StatusCompleted,
			InitialFunds: bt.InitialFunds,
		},
	}, nil
}

// processBar runs the per bar state machine. Only fatal conditions are
// returned as errors
func (r *run) processBar(k *kline.Kline) error {
	if r.previous != nil && !k.Time.After(r.previous.Time) {
		return &TemporalOrderError{Offset: k.Offset, Previous: r.previous.Time, Current: k.Time}
	}
	if err := k.Validate(); err != nil {
		r.result.ExecutionStats.InvalidBars++
		log.Warnf(common.Data, "skipping bar %v at %v: %v", k.Offset, k.Time, err)
		return nil
	}
	r.checkGap(k)
	r.previous = k
	r.bars++

	// orders working through the bar are priced before its range is known,
	// orders placed at the close may use it
	intrabar := EstimateVolatility(r.validBars, r.bt.VolatilityLookback)
	r.validBars = append(r.validBars, k)
	volatility := EstimateVolatility(r.validBars, r.bt.VolatilityLookback)
	if err := r.processActiveOrders(k, intrabar); err != nil {
		return err
	}
	if err := r.holding.UpdateValue(k); err != nil {
		return err
	}
	if err := r.processSignal(k, volatility); err != nil {
		return err
	}
	if err := r.holding.UpdateValue(k); err != nil {
		return err
	}
	if err := r.ledger.UpdateEquity(r.holding.TheoreticalValue, r.holding.TotalValue, k.Time); err != nil {
		return err
	}
	r.snapshotTrackingError(k)
	return nil
}

func (r *run) checkGap(k *kline.Kline) {
	if r.previous == nil || r.bt.Interval <= 0 {
		return
	}
	multiplier := r.bt.GapMultiplier
	if !multiplier.IsPositive() {
		multiplier = decimal.NewFromInt(1)
	}
	elapsed := k.Time.Sub(r.previous.Time)
	limit := decimal.NewFromInt(int64(r.bt.Interval)).Mul(multiplier)
	if decimal.NewFromInt(int64(elapsed)).LessThanOrEqual(limit) {
		return
	}
	tv := &r.result.TemporalValidation
	tv.GapCount++
	tv.Gaps = append(tv.Gaps, Gap{Offset: k.Offset, Time: k.Time, Duration: elapsed})
	log.Warnf(common.Data, "gap of %v before bar %v at %v exceeds %v", elapsed, k.Offset, k.Time, r.bt.Interval)
}

// processSignal queries the strategy and acts on a valid signal. Strategy
// errors and invalid signals are counted and treated as hold
func (r *run) processSignal(k *kline.Kline, volatility decimal.Decimal) error {
	c := &strategies.Context{
		Bar:        k,
		History:    r.stream.History(),
		Equity:     r.holding.TotalValue,
		Cash:       r.holding.RemainingFunds,
		Volatility: volatility,
	}
	if r.position != nil {
		p := *r.position
		c.Position = &p
	}
	sig, err := r.bt.Strategy.OnBar(c)
	if err != nil {
		r.result.ExecutionStats.StrategyErrors++
		log.Errorf(common.Strategy, "%v at bar %v %v, holding: %v", r.bt.Strategy.Name(), k.Offset, k.Time, err)
		return nil
	}
	if sig == nil {
		return nil
	}
	if err = r.validateSignal(sig, k); err != nil {
		r.result.ExecutionStats.InvalidSignals++
		log.Warnf(common.Strategy, "%v at bar %v %v, holding: %v", r.bt.Strategy.Name(), k.Offset, k.Time, err)
		return nil
	}
	return r.executeSignal(sig, k, volatility)
}

// snapshotTrackingError appends a tracking error summary every interval bars
func (r *run) snapshotTrackingError(k *kline.Kline) {
	interval := r.bt.TrackingErrorInterval
	if interval <= 0 || r.bars%interval != 0 || r.ledger.Len() < 2 {
		return
	}
	theo, realistic := statistics.CurvesFromEquity(r.ledger.Points())
	summary, err := statistics.TrackingErrorFromCurves(theo, realistic, statistics.TrackingErrorOptions{
		BarsPerYear:  r.bt.Statistics.BarsPerYear,
		ThresholdBPS: r.bt.Statistics.DivergenceThresholdBPS,
	})
	if err != nil {
		log.Warnf(common.Statistics, "tracking error snapshot at bar %v: %v", k.Offset, err)
		return
	}
	r.result.TrackingErrorSnapshots = append(r.result.TrackingErrorSnapshots, TrackingErrorSnapshot{
		Offset:  k.Offset,
		Time:    k.Time,
		Summary: summary,
	})
	if r.bt.TrackingErrorCeiling > 0 && summary.ExceedsCeiling(r.bt.TrackingErrorCeiling) {
		log.Warnf(common.Statistics, "annualised tracking error %.4f exceeds ceiling %v at bar %v",
			summary.AnnualizedTrackingError, r.bt.TrackingErrorCeiling, k.Offset)
	}
}

func failureStatus(err error) RunStatus {
	var temporal *TemporalOrderError
	switch {
	case errors.As(err, &temporal):
		return StatusFailedTemporalOrder
	case errors.Is(err, ledger.ErrEquityDivergence):
		return StatusFailedEquityDivergence
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return StatusCancelled
	}
	return StatusFailed
}

func (r *run) abort(status RunStatus, err error) {
	r.result.Status = status
	r.result.Reason = err.Error()
	log.Errorf(common.Backtester, "run %v stopped: %v", r.result.RunID, err)
}
