package database

import (
	"context"
	"fmt"
	"time"

	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/common"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventtypes/event"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventtypes/kline"
	ostdatabase "github.com/LautaroIbanez/One-Smart-Trade-sub000/database"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/database/repository/candle"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/log"
	"github.com/shopspring/decimal"
)

// LoadData retrieves bars for a symbol between start and end inclusive
func LoadData(ctx context.Context, inst *ostdatabase.Instance, symbol string, interval time.Duration, start, end time.Time) ([]*kline.Kline, error) {
	if inst == nil {
		return nil, common.ErrNilArguments
	}
	item, err := candle.Series(ctx, inst, symbol, int64(interval.Seconds()), start, end)
	if err != nil {
		return nil, err
	}
	resp := make([]*kline.Kline, 0, len(item.Candles))
	for i := range item.Candles {
		k, err := toKline(&item.Candles[i])
		if err != nil {
			return nil, fmt.Errorf("%v %v: %w", symbol, item.Candles[i].Timestamp, err)
		}
		k.SetOffset(int64(i + 1))
		resp = append(resp, k)
	}
	log.Infof(common.Data, "loaded %v %v bars from database", len(resp), symbol)
	return resp, nil
}

// Save stores bars in the candle table
func Save(ctx context.Context, inst *ostdatabase.Instance, symbol string, interval time.Duration, bars []*kline.Kline) (uint64, error) {
	if inst == nil {
		return 0, common.ErrNilArguments
	}
	item := &candle.Item{
		Symbol:   symbol,
		Interval: int64(interval.Seconds()),
		Candles:  make([]candle.Candle, 0, len(bars)),
	}
	for i := range bars {
		if bars[i] == nil {
			continue
		}
		item.Candles = append(item.Candles, fromKline(bars[i]))
	}
	return candle.Insert(ctx, inst, item)
}

func toKline(c *candle.Candle) (*kline.Kline, error) {
	k := &kline.Kline{
		Base:   event.Base{Time: c.Timestamp},
		Open:   decimal.NewFromFloat(c.Open),
		High:   decimal.NewFromFloat(c.High),
		Low:    decimal.NewFromFloat(c.Low),
		Close:  decimal.NewFromFloat(c.Close),
		Volume: decimal.NewFromFloat(c.Volume),
	}
	if c.Volatility != nil {
		v := decimal.NewFromFloat(*c.Volatility)
		k.Volatility = &v
	}
	if c.Bids != "" || c.Asks != "" {
		book := &kline.Book{Time: c.Timestamp}
		var err error
		if book.Bids, err = kline.ParseLevels(c.Bids); err != nil {
			return nil, err
		}
		if book.Asks, err = kline.ParseLevels(c.Asks); err != nil {
			return nil, err
		}
		if c.BookTimestamp != nil {
			book.Time = *c.BookTimestamp
		}
		book.Sort()
		k.Book = book
	}
	return k, k.Validate()
}

func fromKline(k *kline.Kline) candle.Candle {
	c := candle.Candle{
		Timestamp: k.Time,
		Open:      k.Open.InexactFloat64(),
		High:      k.High.InexactFloat64(),
		Low:       k.Low.InexactFloat64(),
		Close:     k.Close.InexactFloat64(),
		Volume:    k.Volume.InexactFloat64(),
	}
	if k.Volatility != nil {
		v := k.Volatility.InexactFloat64()
		c.Volatility = &v
	}
	if k.Book != nil {
		c.Bids = kline.FormatLevels(k.Book.Bids)
		c.Asks = kline.FormatLevels(k.Book.Asks)
		bt := k.Book.Time
		c.BookTimestamp = &bt
	}
	return c
}
