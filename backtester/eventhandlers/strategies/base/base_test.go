package base

import (
	"testing"
	"time"

	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/common"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventhandlers/portfolio/position"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventtypes/event"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventtypes/kline"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContext(t *testing.T) {
	t.Parallel()
	var c *Context
	assert.ErrorIs(t, c.Validate(), common.ErrNilEvent)
	assert.ErrorIs(t, (&Context{}).Validate(), common.ErrNilEvent)

	k := &kline.Kline{Base: event.Base{Offset: 1, Time: time.Unix(1, 0)}, Close: decimal.NewFromFloat(1.5)}
	c = &Context{Bar: k, History: []*kline.Kline{k}}
	assert.NoError(t, c.Validate())
	assert.True(t, c.IsFlat())
	assert.Equal(t, []float64{1.5}, c.Closes())

	c.Position = &position.Position{Amount: decimal.NewFromInt(1)}
	assert.False(t, c.IsFlat())
}

func TestPositiveDecimal(t *testing.T) {
	t.Parallel()
	d, err := PositiveDecimal("k", float64(2.5))
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.NewFromFloat(2.5)))

	d, err = PositiveDecimal("k", "3")
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.NewFromInt(3)))

	d, err = PositiveDecimal("k", 4)
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.NewFromInt(4)))

	for _, v := range []any{"nope", float64(0), float64(-1), true} {
		_, err = PositiveDecimal("k", v)
		assert.ErrorIs(t, err, ErrInvalidCustomSettings)
	}
}
