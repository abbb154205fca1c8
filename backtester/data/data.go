package data

import (
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventtypes/kline"
	"github.com/shopspring/decimal"
)

// NewStream loads bars into a stream. Offsets are assigned from one in load
// order when unset. Nil bars are dropped
func NewStream(bars ...*kline.Kline) (*Stream, error) {
	s := &Stream{}
	s.AppendStream(bars...)
	if len(s.stream) == 0 {
		return nil, errNoData
	}
	return s, nil
}

// AppendStream adds bars to the end of the stream
func (s *Stream) AppendStream(bars ...*kline.Kline) {
	for i := range bars {
		if bars[i] == nil {
			continue
		}
		s.stream = append(s.stream, bars[i])
		if bars[i].GetOffset() == 0 {
			bars[i].SetOffset(int64(len(s.stream)))
		}
	}
}

// Next returns the next bar and moves the offset forward
func (s *Stream) Next() (*kline.Kline, bool) {
	if s == nil || int64(len(s.stream)) <= s.offset {
		return nil, false
	}
	ret := s.stream[s.offset]
	s.offset++
	s.latest = ret
	return ret, true
}

// History returns every bar emitted so far. Appending to the result never
// reaches bars which have not been emitted
func (s *Stream) History() []*kline.Kline {
	return s.stream[:s.offset:s.offset]
}

// Latest returns the most recently emitted bar
func (s *Stream) Latest() *kline.Kline {
	return s.latest
}

// Offset returns how many bars have been emitted
func (s *Stream) Offset() int64 {
	return s.offset
}

// Len returns the total number of bars
func (s *Stream) Len() int {
	return len(s.stream)
}

// IsLastEvent returns whether the latest bar is the final one
func (s *Stream) IsLastEvent() bool {
	return s.latest != nil && s.offset == int64(len(s.stream))
}

// Reset rewinds the stream without dropping bars
func (s *Stream) Reset() {
	s.latest = nil
	s.offset = 0
}

// StreamHigh returns the high of every emitted bar
func StreamHigh(s Streamer) []decimal.Decimal {
	return collect(s, func(k *kline.Kline) decimal.Decimal { return k.High })
}

// StreamLow returns the low of every emitted bar
func StreamLow(s Streamer) []decimal.Decimal {
	return collect(s, func(k *kline.Kline) decimal.Decimal { return k.Low })
}

// StreamClose returns the close of every emitted bar
func StreamClose(s Streamer) []decimal.Decimal {
	return collect(s, func(k *kline.Kline) decimal.Decimal { return k.Close })
}

// StreamFloat converts decimals for indicator libraries
func StreamFloat(values []decimal.Decimal) []float64 {
	resp := make([]float64, len(values))
	for i := range values {
		resp[i] = values[i].InexactFloat64()
	}
	return resp
}

func collect(s Streamer, fn func(*kline.Kline) decimal.Decimal) []decimal.Decimal {
	if s == nil {
		return nil
	}
	h := s.History()
	resp := make([]decimal.Decimal, len(h))
	for i := range h {
		resp[i] = fn(h[i])
	}
	return resp
}
