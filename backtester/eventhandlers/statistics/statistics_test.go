package statistics

import (
	"context"
	"testing"
	"time"

	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventhandlers/portfolio/ledger"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventhandlers/portfolio/position"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func valuesAtTime(t *testing.T, values ...int64) []ValueAtTime {
	t.Helper()
	resp := make([]ValueAtTime, len(values))
	for i := range values {
		resp[i] = ValueAtTime{Time: start.Add(time.Duration(i) * time.Hour), Value: decimal.NewFromInt(values[i]), Set: true}
	}
	return resp
}

func TestCalculateBiggestValueAtTimeDrawdown(t *testing.T) {
	t.Parallel()
	_, err := CalculateBiggestValueAtTimeDrawdown(nil)
	assert.ErrorIs(t, err, errReceivedNoData)

	s, err := CalculateBiggestValueAtTimeDrawdown(valuesAtTime(t, 100, 120, 90, 130, 91, 140))
	require.NoError(t, err)
	assert.True(t, s.DrawdownPercent.Equal(decimal.NewFromInt(-30)), s.DrawdownPercent.String())
	assert.True(t, s.Highest.Value.Equal(decimal.NewFromInt(130)))
	assert.True(t, s.Lowest.Value.Equal(decimal.NewFromInt(91)))
	assert.Equal(t, int64(1), s.IntervalDuration)

	s, err = CalculateBiggestValueAtTimeDrawdown(valuesAtTime(t, 100, 110, 120))
	require.NoError(t, err)
	assert.True(t, s.DrawdownPercent.IsZero())
}

func TestTradeStatisticsFrom(t *testing.T) {
	t.Parallel()
	ts := TradeStatisticsFrom(nil)
	assert.Zero(t, ts.Trades)
	assert.Zero(t, ts.WinRate)

	ts = TradeStatisticsFrom([]position.Trade{
		{PNL: decimal.NewFromInt(20), Fees: decimal.NewFromInt(1)},
		{PNL: decimal.NewFromInt(-10), Fees: decimal.NewFromInt(1), Gap: true},
		{PNL: decimal.NewFromInt(40), Fees: decimal.NewFromInt(1)},
		{PNL: decimal.Zero},
	})
	assert.Equal(t, int64(4), ts.Trades)
	assert.Equal(t, int64(2), ts.Wins)
	assert.Equal(t, int64(1), ts.Losses)
	assert.Equal(t, int64(1), ts.GapExits)
	assert.Equal(t, 0.5, ts.WinRate)
	assert.Equal(t, 3.0, ts.PayoffRatio)
	assert.True(t, ts.TotalPNL.Equal(decimal.NewFromInt(50)))
	assert.True(t, ts.TotalFees.Equal(decimal.NewFromInt(3)))
}

func TestCalculateAllResults(t *testing.T) {
	t.Parallel()
	_, err := CalculateAllResults(context.Background(), Settings{}, nil, nil, nil)
	assert.ErrorIs(t, err, errReceivedNoData)

	var points []ledger.EquityPoint
	for i, v := range []int64{10000, 10100, 9900, 10200, 10300} {
		points = append(points, ledger.EquityPoint{
			Time:        start.Add(time.Duration(i) * time.Hour),
			Theoretical: decimal.NewFromInt(v),
			Realistic:   decimal.NewFromInt(v - 10*int64(i)),
		})
	}
	p := ruinParams(t, 500)
	s, err := CalculateAllResults(context.Background(), Settings{BarsPerYear: 8760, DivergenceThresholdBPS: 20}, points, nil, &p)
	require.NoError(t, err)
	require.NotNil(t, s.TrackingError)
	assert.Equal(t, 5, s.TrackingError.Points)
	assert.Positive(t, s.TrackingError.RMSE)
	assert.True(t, s.RealisticDrawdown.DrawdownPercent.LessThan(s.TheoreticalDrawdown.DrawdownPercent))
	assert.NotZero(t, s.Ratios.SharpeRatio)
	assert.Positive(t, s.Ratios.CompoundAnnualGrowthRate)
	require.NotNil(t, s.Ruin)
	assert.Equal(t, 500, s.Ruin.Params.Trials)

	s, err = CalculateAllResults(context.Background(), Settings{BarsPerYear: 8760}, points[:1], nil, nil)
	require.NoError(t, err)
	assert.Nil(t, s.TrackingError)
	assert.Nil(t, s.Ruin)
}
