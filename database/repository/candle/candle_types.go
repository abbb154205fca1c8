package candle

import (
	"errors"
	"time"
)

var (
	errInvalidInput = errors.New("symbol, interval, start & end cannot be empty")
	errNoCandleData = errors.New("no candle data provided")
	// ErrNoCandleDataFound returns when no candle data is found
	ErrNoCandleDataFound = errors.New("no candle data found")
)

// Item is a series of candles for one symbol and interval in seconds
type Item struct {
	Symbol   string
	Interval int64
	Candles  []Candle
}

// Candle holds each interval. Bids and asks use the book level encoding
// "price:amount;price:amount" and are empty when no snapshot was recorded
type Candle struct {
	Timestamp     time.Time
	Open          float64
	High          float64
	Low           float64
	Close         float64
	Volume        float64
	Volatility    *float64
	Bids          string
	Asks          string
	BookTimestamp *time.Time
}
