package dollarcostaverage

import (
	"testing"
	"time"

	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/common"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventhandlers/portfolio/position"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventhandlers/strategies/base"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventtypes/event"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventtypes/kline"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventtypes/order"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventtypes/signal"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contextWithBars(t *testing.T, n int) *base.Context {
	t.Helper()
	history := make([]*kline.Kline, n)
	for i := range n {
		history[i] = &kline.Kline{
			Base:  event.Base{Offset: int64(i + 1), Time: time.Unix(int64(i)*60, 0)},
			Close: decimal.NewFromInt(1337),
		}
	}
	return &base.Context{Bar: history[n-1], History: history}
}

func TestName(t *testing.T) {
	t.Parallel()
	s := Strategy{}
	assert.Equal(t, Name, s.Name())
	assert.NotEmpty(t, s.Description())
}

func TestSetCustomSettings(t *testing.T) {
	t.Parallel()
	s := Strategy{}
	s.SetDefaults()
	assert.NoError(t, s.SetCustomSettings(map[string]any{amountKey: float64(0.5), everyBarsKey: float64(3)}))
	assert.True(t, s.amount.Equal(decimal.NewFromFloat(0.5)))
	assert.Equal(t, int64(3), s.everyBars)

	assert.ErrorIs(t, s.SetCustomSettings(map[string]any{everyBarsKey: float64(1.5)}), base.ErrInvalidCustomSettings)
	assert.ErrorIs(t, s.SetCustomSettings(map[string]any{amountKey: float64(-1)}), base.ErrInvalidCustomSettings)
	assert.ErrorIs(t, s.SetCustomSettings(map[string]any{"bogus": float64(1)}), base.ErrInvalidCustomSettings)
}

func TestOnBar(t *testing.T) {
	t.Parallel()
	s := Strategy{}
	s.SetDefaults()
	require.NoError(t, s.SetCustomSettings(map[string]any{everyBarsKey: float64(2)}))

	_, err := s.OnBar(nil)
	assert.ErrorIs(t, err, common.ErrNilEvent)

	sig, err := s.OnBar(contextWithBars(t, 1))
	require.NoError(t, err)
	require.Equal(t, signal.ActionEnter, sig.Action())
	assert.True(t, sig.(signal.Enter).Amount.Equal(decimal.NewFromInt(1)))
	assert.Equal(t, order.Buy, sig.(signal.Enter).Side)

	sig, err = s.OnBar(contextWithBars(t, 2))
	require.NoError(t, err)
	assert.Equal(t, signal.ActionHold, sig.Action())

	c := contextWithBars(t, 3)
	c.Position = &position.Position{Side: order.Buy, Amount: decimal.NewFromInt(1)}
	sig, err = s.OnBar(c)
	require.NoError(t, err)
	require.Equal(t, signal.ActionAdjust, sig.Action())
	assert.True(t, sig.(signal.Adjust).Amount.Equal(decimal.NewFromInt(2)))
}
