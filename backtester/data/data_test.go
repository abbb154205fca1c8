package data

import (
	"testing"
	"time"

	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventtypes/event"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventtypes/kline"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bars(t *testing.T, closes ...int64) []*kline.Kline {
	t.Helper()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	resp := make([]*kline.Kline, len(closes))
	for i := range closes {
		c := decimal.NewFromInt(closes[i])
		resp[i] = &kline.Kline{
			Base:  event.Base{Time: start.Add(time.Duration(i) * time.Hour)},
			Open:  c,
			High:  c.Add(decimal.NewFromInt(1)),
			Low:   c.Sub(decimal.NewFromInt(1)),
			Close: c,
		}
	}
	return resp
}

func TestNewStream(t *testing.T) {
	t.Parallel()
	_, err := NewStream()
	assert.ErrorIs(t, err, errNoData)
	_, err = NewStream(nil, nil)
	assert.ErrorIs(t, err, errNoData)

	s, err := NewStream(bars(t, 10, 11, 12)...)
	require.NoError(t, err)
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, int64(0), s.Offset())
	assert.Nil(t, s.Latest())
	assert.Empty(t, s.History())
}

func TestStreamIsCausal(t *testing.T) {
	t.Parallel()
	s, err := NewStream(bars(t, 10, 11, 12)...)
	require.NoError(t, err)

	k, ok := s.Next()
	require.True(t, ok)
	assert.Equal(t, int64(1), k.GetOffset())
	assert.Len(t, s.History(), 1)
	assert.Equal(t, k, s.Latest())
	assert.False(t, s.IsLastEvent())

	s.Next()
	k, ok = s.Next()
	require.True(t, ok)
	assert.Equal(t, int64(3), k.GetOffset())
	assert.True(t, s.IsLastEvent())
	closes := StreamClose(s)
	require.Len(t, closes, 3)
	assert.True(t, closes[2].Equal(decimal.NewFromInt(12)))
	assert.True(t, StreamHigh(s)[0].Equal(decimal.NewFromInt(11)))
	assert.True(t, StreamLow(s)[0].Equal(decimal.NewFromInt(9)))
	assert.Equal(t, []float64{10, 11, 12}, StreamFloat(closes))

	_, ok = s.Next()
	assert.False(t, ok)

	s.Reset()
	assert.Empty(t, s.History())
	assert.Nil(t, s.Latest())
	k, ok = s.Next()
	require.True(t, ok)
	assert.True(t, k.Close.Equal(decimal.NewFromInt(10)))
}

func TestStreamKeepsOrder(t *testing.T) {
	t.Parallel()
	b := bars(t, 10, 11)
	b[0].Time, b[1].Time = b[1].Time, b[0].Time
	s, err := NewStream(b...)
	require.NoError(t, err)
	first, _ := s.Next()
	second, _ := s.Next()
	assert.True(t, first.Time.After(second.Time), "streams never reorder bars")
	assert.Nil(t, StreamClose(nil))
}
