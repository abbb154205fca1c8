package holdings

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

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestCreate(t *testing.T) {
	t.Parallel()
	_, err := Create(decimal.Zero)
	assert.ErrorIs(t, err, ErrInitialFundsZero)
	h, err := Create(d("10000"))
	require.NoError(t, err)
	assert.True(t, h.TotalValue.Equal(d("10000")))
	assert.True(t, h.TheoreticalValue.Equal(d("10000")))
}

func TestUpdateRoundTrip(t *testing.T) {
	t.Parallel()
	h, err := Create(d("10000"))
	require.NoError(t, err)
	assert.ErrorIs(t, h.Update(nil), common.ErrNilEvent)
	require.NoError(t, h.Update(&fill.Fill{}), "unexecuted fills change nothing")
	assert.True(t, h.TotalValue.Equal(d("10000")))

	buy := &fill.Fill{
		Base:         event.Base{Offset: 1, Time: time.Now()},
		Side:         order.Buy,
		FilledAmount: d("0.2"),
		Price:        d("50025"),
		IdealPrice:   d("50000"),
		Fee:          d("10.005"),
	}
	require.NoError(t, h.Update(buy))
	assert.True(t, h.RemainingFunds.Equal(d("-15.005")), h.RemainingFunds.String())
	assert.True(t, h.TheoreticalFunds.Equal(d("0")))
	assert.True(t, h.TotalValueLostToSlippage.Equal(d("5")))

	require.NoError(t, h.UpdateValue(&kline.Kline{Base: event.Base{Offset: 2}, Close: d("51000")}))
	assert.True(t, h.TheoreticalValue.Equal(d("10200")))
	assert.True(t, h.TotalValue.Equal(d("10184.995")), h.TotalValue.String())

	sell := &fill.Fill{
		Side:         order.Sell,
		FilledAmount: d("0.2"),
		Price:        d("50974.5"),
		IdealPrice:   d("51000"),
		Fee:          d("10.1949"),
	}
	require.NoError(t, h.Update(sell))
	assert.True(t, h.PositionsSize.IsZero())
	assert.True(t, h.TheoreticalValue.Equal(d("10200")))
	assert.True(t, h.TotalValue.LessThan(h.TheoreticalValue))
	assert.True(t, h.TotalFees.Equal(d("20.1999")))
	assert.True(t, h.TotalValueLostToSlippage.Equal(d("10.1")))
	assert.ErrorIs(t, h.UpdateValue(nil), common.ErrNilEvent)
}
