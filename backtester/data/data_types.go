package data

import (
	"errors"

	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventtypes/kline"
)

var errNoData = errors.New("no data loaded")

// Streamer hands bars to a run one at a time. History only ever contains
// bars that have already been emitted by Next
type Streamer interface {
	Next() (*kline.Kline, bool)
	History() []*kline.Kline
	Latest() *kline.Kline
	Offset() int64
	Len() int
	Reset()
}

// Stream is an in memory Streamer. Bars are emitted in the order given and
// never sorted, so out of order input reaches the consumer unchanged
type Stream struct {
	latest *kline.Kline
	stream []*kline.Kline
	offset int64
}
