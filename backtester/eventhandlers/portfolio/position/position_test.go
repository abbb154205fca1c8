package position

import (
	"testing"
	"time"

	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/common"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventtypes/event"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventtypes/fill"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventtypes/kline"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventtypes/order"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func testFill(t *testing.T, offset int64, side order.Side, amount, price, ideal, fee string) *fill.Fill {
	t.Helper()
	return &fill.Fill{
		Base:         event.Base{Offset: offset, Time: start.Add(time.Duration(offset) * time.Hour)},
		Side:         side,
		Status:       order.StatusFilled,
		FilledAmount: d(amount),
		Price:        d(price),
		IdealPrice:   d(ideal),
		Fee:          d(fee),
		Purpose:      order.PurposeExit,
	}
}

func TestOpen(t *testing.T) {
	t.Parallel()
	_, err := Open(nil)
	assert.ErrorIs(t, err, common.ErrNilEvent)
	_, err = Open(&fill.Fill{})
	assert.ErrorIs(t, err, errNotExecuted)

	p, err := Open(testFill(t, 2, order.Buy, "0.2", "50025", "50000", "10.005"))
	require.NoError(t, err)
	assert.True(t, p.IsLong())
	assert.Equal(t, int64(2), p.OpenOffset)
	assert.True(t, p.EntryPrice.Equal(d("50025")))
	assert.True(t, p.IdealEntryPrice.Equal(d("50000")))
	assert.False(t, p.IsClosed())
}

func TestIncrease(t *testing.T) {
	t.Parallel()
	p, err := Open(testFill(t, 0, order.Buy, "1", "100", "100", "0.1"))
	require.NoError(t, err)
	assert.ErrorIs(t, p.Increase(testFill(t, 1, order.Sell, "1", "110", "110", "0")), errSideMismatch)
	assert.ErrorIs(t, p.Increase(nil), common.ErrNilEvent)

	require.NoError(t, p.Increase(testFill(t, 1, order.Buy, "1", "110", "108", "0.11")))
	assert.True(t, p.Amount.Equal(d("2")))
	assert.True(t, p.EntryPrice.Equal(d("105")))
	assert.True(t, p.IdealEntryPrice.Equal(d("104")))
	assert.True(t, p.EntryFees.Equal(d("0.21")))
}

func TestReduceScenario(t *testing.T) {
	t.Parallel()
	p, err := Open(testFill(t, 0, order.Buy, "0.2", "50000", "50000", "0"))
	require.NoError(t, err)
	tr, err := p.Reduce(testFill(t, 5, order.Sell, "0.2", "51000", "51000", "0"))
	require.NoError(t, err)
	notional := d("0.2").Mul(d("50000"))
	assert.True(t, tr.TheoreticalPNL.Equal(notional.Mul(d("1000")).Div(d("50000"))), tr.TheoreticalPNL.String())
	assert.True(t, tr.PNL.Equal(d("200")))
	assert.True(t, tr.ReturnPercentage.Equal(d("2")))
	assert.Equal(t, int64(5), tr.BarsHeld)
	assert.True(t, p.IsClosed())
}

func TestReducePartialFees(t *testing.T) {
	t.Parallel()
	p, err := Open(testFill(t, 0, order.Sell, "4", "100", "100", "0.4"))
	require.NoError(t, err)
	_, err = p.Reduce(testFill(t, 1, order.Sell, "1", "90", "90", "0"))
	assert.ErrorIs(t, err, errSideMismatch)
	_, err = p.Reduce(testFill(t, 1, order.Buy, "5", "90", "90", "0"))
	assert.ErrorIs(t, err, errReduceTooMuch)

	tr, err := p.Reduce(testFill(t, 1, order.Buy, "1", "90", "89", "0.09"))
	require.NoError(t, err)
	assert.True(t, tr.Fees.Equal(d("0.19")), tr.Fees.String())
	assert.True(t, tr.PNL.Equal(d("9.81")), tr.PNL.String())
	assert.True(t, tr.TheoreticalPNL.Equal(d("11")))
	assert.True(t, p.Amount.Equal(d("3")))
	assert.True(t, p.EntryFees.Equal(d("0.3")))
}

func TestUnrealisedPNL(t *testing.T) {
	t.Parallel()
	p, err := Open(testFill(t, 0, order.Sell, "2", "100", "101", "0"))
	require.NoError(t, err)
	r, th := p.UnrealisedPNL(d("95"))
	assert.True(t, r.Equal(d("10")))
	assert.True(t, th.Equal(d("12")))
}

func TestTrailingLong(t *testing.T) {
	t.Parallel()
	p, err := Open(testFill(t, 0, order.Buy, "1", "100", "100", "0"))
	require.NoError(t, err)
	p.StopLoss = d("90")
	p.SetTrailing(d("5"), decimal.Zero)
	assert.True(t, p.TrailingStopPrice.Equal(d("95")))
	assert.True(t, p.EffectiveStop().Equal(d("95")))
	assert.Equal(t, order.PurposeTrailingStop, p.StopPurpose())

	moved := p.UpdateTrailing(&kline.Kline{High: d("110"), Low: d("99")})
	assert.True(t, moved)
	assert.True(t, p.TrailingStopPrice.Equal(d("105")))

	moved = p.UpdateTrailing(&kline.Kline{High: d("104"), Low: d("96")})
	assert.False(t, moved, "trailing stops never loosen")
	assert.True(t, p.TrailingStopPrice.Equal(d("105")))
}

func TestTrailingShortPct(t *testing.T) {
	t.Parallel()
	p, err := Open(testFill(t, 0, order.Sell, "1", "100", "100", "0"))
	require.NoError(t, err)
	p.SetTrailing(decimal.Zero, d("0.1"))
	assert.True(t, p.TrailingStopPrice.Equal(d("110")))
	assert.True(t, p.UpdateTrailing(&kline.Kline{High: d("101"), Low: d("90")}))
	assert.True(t, p.TrailingStopPrice.Equal(d("99")))
	assert.False(t, p.UpdateTrailing(&kline.Kline{High: d("120"), Low: d("95")}))
	assert.True(t, p.EffectiveStop().Equal(d("99")))

	p.StopLoss = d("98")
	assert.True(t, p.EffectiveStop().Equal(d("98")))
	assert.Equal(t, order.PurposeStopLoss, p.StopPurpose())
}

func TestUpdateTrailingWithoutTrail(t *testing.T) {
	t.Parallel()
	p, err := Open(testFill(t, 0, order.Buy, "1", "100", "100", "0"))
	require.NoError(t, err)
	assert.False(t, p.UpdateTrailing(&kline.Kline{High: d("120"), Low: d("95")}))
	assert.True(t, p.HighWaterMark.Equal(d("120")))
	assert.True(t, p.LowWaterMark.Equal(d("95")))
	assert.True(t, p.EffectiveStop().IsZero())
}
