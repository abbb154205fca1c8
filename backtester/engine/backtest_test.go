package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/common"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/data"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventhandlers/exchange"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventhandlers/portfolio/ledger"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventhandlers/portfolio/size"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventhandlers/statistics"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventhandlers/strategies"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventtypes/event"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventtypes/kline"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventtypes/order"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventtypes/signal"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	start          = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	errStrategy    = errors.New("strategy failed")
	errSizerStub   = errors.New("cannot size")
	initialFunds   = decimal.NewFromInt(10000)
	volumePerBar   = decimal.NewFromInt(1000)
	longStopLoss   = d("95")
	longTakeProfit = d("110")
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

// scripted returns a fixed signal or error per bar offset and holds otherwise
type scripted struct {
	signals map[int64]signal.Signal
	errs    map[int64]error
}

func (s *scripted) Name() string {
	return "scripted"
}

func (s *scripted) OnBar(c *strategies.Context) (signal.Signal, error) {
	if err := s.errs[c.Bar.Offset]; err != nil {
		return nil, err
	}
	if sig, ok := s.signals[c.Bar.Offset]; ok {
		return sig, nil
	}
	return signal.Hold{}, nil
}

type stubSizer struct {
	units    decimal.Decimal
	err      error
	requests []size.Request
}

func (s *stubSizer) Size(r size.Request) (*size.Result, error) {
	s.requests = append(s.requests, r)
	if s.err != nil {
		return nil, s.err
	}
	return &size.Result{Units: s.units}, nil
}

func testSettings(t *testing.T) *Settings {
	t.Helper()
	return &Settings{
		RunID:         "test-run",
		InitialFunds:  initialFunds,
		Interval:      time.Hour,
		GapMultiplier: d("1.5"),
		Statistics:    statistics.Settings{BarsPerYear: 8760},
	}
}

// bar builds an hourly bar i hours after start
func bar(t *testing.T, i int, o, h, l, c string) *kline.Kline {
	t.Helper()
	return &kline.Kline{
		Base:   event.Base{Time: start.Add(time.Duration(i) * time.Hour)},
		Open:   d(o),
		High:   d(h),
		Low:    d(l),
		Close:  d(c),
		Volume: volumePerBar,
	}
}

// flatBars returns n bars which never move from price
func flatBars(t *testing.T, n int, price string) []*kline.Kline {
	t.Helper()
	bars := make([]*kline.Kline, n)
	for i := range bars {
		bars[i] = bar(t, i, price, price, price, price)
	}
	return bars
}

func newStream(t *testing.T, bars ...*kline.Kline) *data.Stream {
	t.Helper()
	s, err := data.NewStream(bars...)
	require.NoError(t, err)
	return s
}

func runScript(t *testing.T, s *Settings, script *scripted, bars ...*kline.Kline) (*Result, error) {
	t.Helper()
	bt, err := New(s, script, nil)
	require.NoError(t, err)
	return bt.Run(context.Background(), newStream(t, bars...))
}

func TestNew(t *testing.T) {
	t.Parallel()
	s := testSettings(t)
	_, err := New(nil, &scripted{}, nil)
	assert.ErrorIs(t, err, common.ErrNilArguments)

	_, err = New(s, nil, nil)
	assert.ErrorIs(t, err, errNilStrategy)

	bad := *s
	bad.InitialFunds = decimal.Zero
	_, err = New(&bad, &scripted{}, nil)
	assert.Error(t, err)

	bad = *s
	bad.Exchange.TakerFee = d("-1")
	_, err = New(&bad, &scripted{}, nil)
	assert.Error(t, err)

	bad = *s
	bad.Ledger.DivergencePolicy = "panic"
	_, err = New(&bad, &scripted{}, nil)
	assert.Error(t, err)

	bt, err := New(s, &scripted{}, nil)
	require.NoError(t, err)
	_, err = bt.Run(context.Background(), nil)
	assert.ErrorIs(t, err, errNilStream)
}

func TestHoldKeepsEquityFlat(t *testing.T) {
	t.Parallel()
	hold, err := strategies.LoadStrategyByName("hold", nil)
	require.NoError(t, err)
	s := testSettings(t)
	s.TrackingErrorInterval = 2
	bt, err := New(s, hold, nil)
	require.NoError(t, err)

	res, err := bt.Run(context.Background(), newStream(t, flatBars(t, 10, "100")...))
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, res.Status)
	assert.Equal(t, "hold", res.Strategy)
	require.Len(t, res.EquityCurve, 10)
	for _, p := range res.EquityCurve {
		assert.True(t, p.Theoretical.Equal(initialFunds), p.Theoretical)
		assert.True(t, p.Realistic.Equal(initialFunds), p.Realistic)
	}
	assert.True(t, res.FinalRealistic.Equal(initialFunds))
	assert.Empty(t, res.Fills)
	assert.Empty(t, res.Trades)
	assert.Nil(t, res.OpenPosition)
	assert.Len(t, res.TrackingErrorSnapshots, 5)
	assert.Equal(t, int64(10), res.TemporalValidation.Bars)
}

func TestTheoreticalAgainstRealisticEquity(t *testing.T) {
	t.Parallel()
	script := func() *scripted {
		return &scripted{signals: map[int64]signal.Signal{
			1: signal.Enter{Side: order.Buy, EntryPrice: d("50000"), Amount: d("0.2")},
			2: signal.Exit{},
		}}
	}
	bars := func() []*kline.Kline {
		return []*kline.Kline{
			bar(t, 0, "50000", "50000", "50000", "50000"),
			bar(t, 1, "51000", "51000", "51000", "51000"),
		}
	}

	res, err := runScript(t, testSettings(t), script(), bars()...)
	require.NoError(t, err)
	assert.True(t, res.FinalTheoretical.Equal(d("10200")), res.FinalTheoretical)
	assert.True(t, res.FinalRealistic.Equal(d("10200")), res.FinalRealistic)
	require.Len(t, res.Trades, 1)
	assert.True(t, res.Trades[0].PNL.Equal(d("200")), res.Trades[0].PNL)
	assert.Equal(t, order.PurposeExit, res.Trades[0].ExitReason)
	assert.Equal(t, int64(2), res.ExecutionStats.OrderbookFallback)

	s := testSettings(t)
	s.Exchange = exchange.Settings{
		BaseSlippageBPS: d("5"),
		TakerFee:        d("0.001"),
	}
	res, err = runScript(t, s, script(), bars()...)
	require.NoError(t, err)
	assert.True(t, res.FinalTheoretical.Equal(d("10200")), res.FinalTheoretical)
	assert.True(t, res.FinalRealistic.Equal(d("10169.7001")), res.FinalRealistic)
	assert.True(t, res.FinalRealistic.LessThan(res.FinalTheoretical))
	require.Len(t, res.Fills, 2)
	assert.True(t, res.Fills[0].Price.Equal(d("50025")), res.Fills[0].Price)
	assert.True(t, res.Fills[0].IdealPrice.Equal(d("50000")), res.Fills[0].IdealPrice)
	assert.True(t, res.Fills[1].Price.Equal(d("50974.5")), res.Fills[1].Price)
	assert.Zero(t, res.ExecutionStats.Divergences)
	for _, p := range res.EquityCurve {
		assert.True(t, p.Realistic.LessThanOrEqual(p.Theoretical))
	}
}

func TestTemporalOrderAborts(t *testing.T) {
	t.Parallel()
	bars := []*kline.Kline{
		bar(t, 0, "100", "100", "100", "100"),
		bar(t, 2, "100", "100", "100", "100"),
		bar(t, 1, "100", "100", "100", "100"),
		bar(t, 3, "100", "100", "100", "100"),
	}
	res, err := runScript(t, testSettings(t), &scripted{}, bars...)
	require.ErrorIs(t, err, ErrTemporalOrder)
	var temporal *TemporalOrderError
	require.ErrorAs(t, err, &temporal)
	assert.Equal(t, int64(3), temporal.Offset)
	require.NotNil(t, res)
	assert.Equal(t, StatusFailedTemporalOrder, res.Status)
	assert.Equal(t, StatusFailedTemporalOrder, res.TemporalValidation.Status)
	assert.NotEmpty(t, res.Reason)
	assert.Len(t, res.EquityCurve, 2)
}

func TestInvalidBarsAreSkipped(t *testing.T) {
	t.Parallel()
	bars := flatBars(t, 4, "100")
	bars[1].Low = d("101")
	res, err := runScript(t, testSettings(t), &scripted{}, bars...)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.ExecutionStats.InvalidBars)
	assert.Len(t, res.EquityCurve, 3)
}

func TestOrderbookFallbackCount(t *testing.T) {
	t.Parallel()
	dca, err := strategies.LoadStrategyByName("dollarcostaverage", nil)
	require.NoError(t, err)
	bars := make([]*kline.Kline, 100)
	for i := range bars {
		price := decimal.NewFromInt(int64(100 + i))
		p := price.String()
		bars[i] = bar(t, i, p, p, p, p)
		if i%10 == 0 {
			continue
		}
		bars[i].Book = &kline.Book{
			Bids: []kline.Level{{Price: price.Sub(d("0.05")), Amount: d("10")}},
			Asks: []kline.Level{{Price: price.Add(d("0.05")), Amount: d("10")}},
		}
	}
	bt, err := New(testSettings(t), dca, nil)
	require.NoError(t, err)
	res, err := bt.Run(context.Background(), newStream(t, bars...))
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, res.Status)
	assert.Equal(t, int64(10), res.ExecutionStats.OrderbookFallback)
	assert.Equal(t, int64(100), res.ExecutionStats.Fills)
	require.NotNil(t, res.OpenPosition)
	assert.True(t, res.OpenPosition.Amount.Equal(d("100")), res.OpenPosition.Amount)
	assert.True(t, res.FinalRealistic.LessThan(res.FinalTheoretical))
}

func TestProtectiveExits(t *testing.T) {
	t.Parallel()
	enter := signal.Enter{
		Side:       order.Buy,
		EntryPrice: d("100"),
		Amount:     d("1"),
		StopLoss:   longStopLoss,
		TakeProfit: longTakeProfit,
	}
	for _, tc := range []struct {
		name      string
		exitBar   *kline.Kline
		reason    order.Purpose
		exitPrice decimal.Decimal
		gap       bool
	}{
		{
			name:      "both levels in range, stop loss first",
			exitBar:   bar(t, 1, "100", "112", "94", "100"),
			reason:    order.PurposeStopLoss,
			exitPrice: longStopLoss,
		},
		{
			name:      "take profit",
			exitBar:   bar(t, 1, "100", "111", "99", "105"),
			reason:    order.PurposeTakeProfit,
			exitPrice: longTakeProfit,
		},
		{
			name:      "gap through stop",
			exitBar:   bar(t, 1, "90", "92", "88", "91"),
			reason:    order.PurposeStopLoss,
			exitPrice: d("90"),
			gap:       true,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			script := &scripted{signals: map[int64]signal.Signal{1: enter}}
			res, err := runScript(t, testSettings(t), script,
				bar(t, 0, "100", "100", "100", "100"), tc.exitBar, bar(t, 2, "100", "100", "100", "100"))
			require.NoError(t, err)
			require.Len(t, res.Trades, 1)
			assert.Equal(t, tc.reason, res.Trades[0].ExitReason)
			assert.True(t, res.Trades[0].ExitPrice.Equal(tc.exitPrice), res.Trades[0].ExitPrice)
			assert.Equal(t, tc.gap, res.Trades[0].Gap)
			assert.Nil(t, res.OpenPosition)
			// the other protective order is cancelled
			assert.Equal(t, int64(1), res.ExecutionStats.CancelledOrders)
			last := res.Fills[len(res.Fills)-1]
			assert.Equal(t, order.StatusCancelled, last.Status)
			assert.NotEqual(t, tc.reason, last.Purpose)
			if tc.gap {
				assert.Equal(t, int64(1), res.ExecutionStats.GapExits)
			}
		})
	}
}

func TestStopFillIgnoresTriggeringBarRange(t *testing.T) {
	t.Parallel()
	enter := signal.Enter{
		Side:       order.Buy,
		EntryPrice: d("100"),
		Amount:     d("1"),
		StopLoss:   longStopLoss,
	}
	history := func() []*kline.Kline {
		bars := make([]*kline.Kline, 4)
		for i := range bars {
			bars[i] = bar(t, i, "100", "101", "99", "100")
		}
		return bars
	}
	streams := map[string][]*kline.Kline{
		"narrow trigger": append(history(),
			bar(t, 4, "100", "101", "90", "100"), bar(t, 5, "100", "100", "100", "100")),
		"wide trigger": append(history(),
			bar(t, 4, "100", "140", "90", "100"), bar(t, 5, "100", "100", "100", "100")),
		"skipped bar before trigger": append(history(),
			bar(t, 4, "100", "90", "110", "100"), bar(t, 5, "100", "140", "90", "100")),
	}
	prices := make(map[string]decimal.Decimal, len(streams))
	for name, bars := range streams {
		s := testSettings(t)
		s.VolatilityLookback = 2
		s.Exchange.VolatilityCoefficient = d("1")
		script := &scripted{signals: map[int64]signal.Signal{4: enter}}
		res, err := runScript(t, s, script, bars...)
		require.NoError(t, err, name)
		require.Len(t, res.Trades, 1, name)
		assert.Equal(t, order.PurposeStopLoss, res.Trades[0].ExitReason, name)
		assert.False(t, res.Trades[0].Gap, name)
		assert.True(t, res.Trades[0].ExitPrice.LessThan(longStopLoss), "%s: volatility slippage applies", name)
		prices[name] = res.Trades[0].ExitPrice
	}
	for name, p := range prices {
		assert.True(t, p.Equal(prices["narrow trigger"]), "%s exit %v", name, p)
	}
}

func TestRestingEntries(t *testing.T) {
	t.Parallel()
	enter := signal.Enter{Side: order.Buy, EntryPrice: d("90"), Amount: d("1"), OrderType: order.Limit}

	s := testSettings(t)
	s.OrderExpiryBars = 2
	script := &scripted{signals: map[int64]signal.Signal{1: enter}}
	bars := make([]*kline.Kline, 5)
	for i := range bars {
		bars[i] = bar(t, i, "100", "101", "99", "100")
	}
	res, err := runScript(t, s, script, bars...)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.ExecutionStats.ExpiredOrders)
	assert.Equal(t, int64(1), res.ExecutionStats.CancelledOrders)
	assert.Zero(t, res.ExecutionStats.Fills)
	assert.Nil(t, res.OpenPosition)
	require.Len(t, res.Fills, 1)
	assert.Equal(t, int64(4), res.Fills[0].Offset)

	script = &scripted{signals: map[int64]signal.Signal{1: enter}}
	bars[2] = bar(t, 2, "95", "96", "89", "92")
	res, err = runScript(t, s, script, bars...)
	require.NoError(t, err)
	require.NotNil(t, res.OpenPosition)
	assert.True(t, res.OpenPosition.EntryPrice.Equal(d("90")), res.OpenPosition.EntryPrice)
	assert.Equal(t, int64(3), res.OpenPosition.OpenOffset)
	assert.Zero(t, res.ExecutionStats.ExpiredOrders)
}

func TestExitCancelsRestingEntry(t *testing.T) {
	t.Parallel()
	script := &scripted{signals: map[int64]signal.Signal{
		1: signal.Enter{Side: order.Buy, EntryPrice: d("90"), Amount: d("1"), OrderType: order.Limit},
		2: signal.Exit{},
	}}
	res, err := runScript(t, testSettings(t), script, flatBars(t, 3, "100")...)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.ExecutionStats.CancelledOrders)
	assert.Zero(t, res.ExecutionStats.InvalidSignals)
	assert.Nil(t, res.OpenPosition)
}

func TestTrailingStop(t *testing.T) {
	t.Parallel()
	script := &scripted{signals: map[int64]signal.Signal{
		1: signal.Enter{Side: order.Buy, EntryPrice: d("100"), Amount: d("1")},
		2: signal.TrailingStop{Distance: d("5")},
	}}
	res, err := runScript(t, testSettings(t), script,
		bar(t, 0, "100", "100", "100", "100"),
		bar(t, 1, "100", "101", "99", "100"),
		bar(t, 2, "100", "110", "99", "108"),
		bar(t, 3, "107", "107", "104", "104"),
	)
	require.NoError(t, err)
	require.Len(t, res.Trades, 1)
	assert.Equal(t, order.PurposeTrailingStop, res.Trades[0].ExitReason)
	assert.True(t, res.Trades[0].ExitPrice.Equal(d("105")), res.Trades[0].ExitPrice)
	assert.True(t, res.Trades[0].PNL.Equal(d("5")), res.Trades[0].PNL)
	assert.Nil(t, res.OpenPosition)
}

func TestInvalidSignalsAreHeld(t *testing.T) {
	t.Parallel()
	script := &scripted{
		signals: map[int64]signal.Signal{
			1: signal.Exit{},
			2: signal.Adjust{Amount: d("1")},
			3: signal.Enter{Side: order.Buy, EntryPrice: d("100")},
			4: signal.Enter{Side: order.Buy, EntryPrice: d("100"), Amount: d("1")},
			5: signal.Enter{Side: order.Buy, EntryPrice: d("100"), Amount: d("1")},
			6: signal.StopLoss{Price: d("200")},
		},
		errs: map[int64]error{7: errStrategy},
	}
	res, err := runScript(t, testSettings(t), script, flatBars(t, 8, "100")...)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, res.Status)
	assert.Equal(t, int64(5), res.ExecutionStats.InvalidSignals)
	assert.Equal(t, int64(1), res.ExecutionStats.StrategyErrors)
	require.NotNil(t, res.OpenPosition)
	assert.True(t, res.OpenPosition.Amount.Equal(d("1")))
	assert.True(t, res.OpenPosition.StopLoss.IsZero())
}

func TestAdjust(t *testing.T) {
	t.Parallel()
	script := &scripted{signals: map[int64]signal.Signal{
		1: signal.Enter{Side: order.Buy, EntryPrice: d("100"), Amount: d("2")},
		2: signal.Adjust{Amount: d("3")},
		3: signal.Adjust{Amount: d("1")},
	}}
	res, err := runScript(t, testSettings(t), script, flatBars(t, 3, "100")...)
	require.NoError(t, err)
	require.NotNil(t, res.OpenPosition)
	assert.True(t, res.OpenPosition.Amount.Equal(d("1")), res.OpenPosition.Amount)
	require.Len(t, res.Trades, 1)
	assert.True(t, res.Trades[0].Amount.Equal(d("2")))
	assert.Equal(t, order.PurposeAdjust, res.Trades[0].ExitReason)
}

func TestSizerFeedsEntries(t *testing.T) {
	t.Parallel()
	enter := signal.Enter{Side: order.Buy, EntryPrice: d("100"), StopLoss: longStopLoss}

	sizer := &stubSizer{units: d("3")}
	bt, err := New(testSettings(t), &scripted{signals: map[int64]signal.Signal{1: enter}}, sizer)
	require.NoError(t, err)
	res, err := bt.Run(context.Background(), newStream(t, flatBars(t, 2, "100")...))
	require.NoError(t, err)
	require.NotNil(t, res.OpenPosition)
	assert.True(t, res.OpenPosition.Amount.Equal(d("3")))
	assert.True(t, res.OpenPosition.StopLoss.Equal(longStopLoss))
	require.Len(t, sizer.requests, 1)
	assert.True(t, sizer.requests[0].Capital.Equal(initialFunds))
	assert.True(t, sizer.requests[0].StopPrice.Equal(longStopLoss))
	assert.False(t, sizer.requests[0].CurrentDrawdown.Valid)
	assert.False(t, sizer.requests[0].WinRate.Valid)

	for _, sizer := range []*stubSizer{{units: decimal.Zero}, {err: errSizerStub}} {
		bt, err = New(testSettings(t), &scripted{signals: map[int64]signal.Signal{1: enter}}, sizer)
		require.NoError(t, err)
		res, err = bt.Run(context.Background(), newStream(t, flatBars(t, 2, "100")...))
		require.NoError(t, err)
		assert.Nil(t, res.OpenPosition)
		assert.Equal(t, int64(1), res.ExecutionStats.InvalidSignals)
	}
}

func TestGapValidation(t *testing.T) {
	t.Parallel()
	bars := func() []*kline.Kline {
		var resp []*kline.Kline
		for _, h := range []int{0, 1, 2, 5, 6} {
			resp = append(resp, bar(t, h, "100", "100", "100", "100"))
		}
		return resp
	}
	s := testSettings(t)
	s.MaxGapRatio = d("0.1")
	res, err := runScript(t, s, &scripted{}, bars()...)
	require.NoError(t, err)
	assert.Equal(t, StatusFailedTemporalValidation, res.Status)
	assert.Equal(t, StatusFailedTemporalValidation, res.TemporalValidation.Status)
	assert.Equal(t, int64(1), res.TemporalValidation.GapCount)
	assert.True(t, res.TemporalValidation.GapRatio.Equal(d("0.25")), res.TemporalValidation.GapRatio)
	require.Len(t, res.TemporalValidation.Gaps, 1)
	assert.Equal(t, 3*time.Hour, res.TemporalValidation.Gaps[0].Duration)
	assert.Len(t, res.EquityCurve, 5)

	s.MaxGapRatio = d("0.5")
	res, err = runScript(t, s, &scripted{}, bars()...)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, res.Status)
	assert.Equal(t, int64(1), res.TemporalValidation.GapCount)
}

func TestDeterministicOrderIDs(t *testing.T) {
	t.Parallel()
	script := &scripted{signals: map[int64]signal.Signal{
		1: signal.Enter{Side: order.Buy, EntryPrice: d("100"), Amount: d("1"), StopLoss: longStopLoss},
		3: signal.Exit{},
	}}
	bt, err := New(testSettings(t), script, nil)
	require.NoError(t, err)
	stream := newStream(t, flatBars(t, 4, "100")...)
	first, err := bt.Run(context.Background(), stream)
	require.NoError(t, err)
	second, err := bt.Run(context.Background(), stream)
	require.NoError(t, err)
	require.NotEmpty(t, first.Fills)
	require.Equal(t, len(first.Fills), len(second.Fills))
	for i := range first.Fills {
		assert.Equal(t, first.Fills[i].OrderID, second.Fills[i].OrderID)
	}

	s := testSettings(t)
	s.RunID = "another-run"
	bt, err = New(s, script, nil)
	require.NoError(t, err)
	other, err := bt.Run(context.Background(), stream)
	require.NoError(t, err)
	assert.NotEqual(t, first.Fills[0].OrderID, other.Fills[0].OrderID)

	s.RunID = ""
	bt, err = New(s, script, nil)
	require.NoError(t, err)
	generated, err := bt.Run(context.Background(), stream)
	require.NoError(t, err)
	assert.NotEmpty(t, generated.RunID)
}

func TestRunCancelled(t *testing.T) {
	t.Parallel()
	bt, err := New(testSettings(t), &scripted{}, nil)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := bt.Run(ctx, newStream(t, flatBars(t, 3, "100")...))
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	assert.Equal(t, StatusCancelled, res.Status)
	assert.Empty(t, res.EquityCurve)
	assert.True(t, res.FinalRealistic.Equal(initialFunds))
}

func TestFailureStatus(t *testing.T) {
	t.Parallel()
	assert.Equal(t, StatusFailedTemporalOrder, failureStatus(fmt.Errorf("wrapped: %w", &TemporalOrderError{})))
	assert.Equal(t, StatusFailedEquityDivergence, failureStatus(fmt.Errorf("wrapped: %w", ledger.ErrEquityDivergence)))
	assert.Equal(t, StatusCancelled, failureStatus(context.DeadlineExceeded))
	assert.Equal(t, StatusFailed, failureStatus(errStrategy))
}
