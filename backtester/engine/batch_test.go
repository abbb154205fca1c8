package engine

import (
	"context"
	"testing"

	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventtypes/kline"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventtypes/order"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventtypes/signal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunBatch(t *testing.T) {
	t.Parallel()
	_, err := RunBatch(context.Background(), nil, 2)
	assert.ErrorIs(t, err, errNoJobs)

	_, err = RunBatch(context.Background(), []Job{{Stream: newStream(t, flatBars(t, 2, "100")...)}}, 2)
	assert.ErrorIs(t, err, errNilStrategy)

	newJob := func(bars ...*kline.Kline) Job {
		script := &scripted{signals: map[int64]signal.Signal{
			1: signal.Enter{Side: order.Buy, EntryPrice: d("100"), Amount: d("1")},
		}}
		bt, err := New(testSettings(t), script, nil)
		require.NoError(t, err)
		return Job{BackTest: bt, Stream: newStream(t, bars...)}
	}
	_, err = RunBatch(context.Background(), []Job{{BackTest: newJob(flatBars(t, 2, "100")...).BackTest}}, 2)
	assert.ErrorIs(t, err, errNilStream)

	outOfOrder := flatBars(t, 3, "100")
	outOfOrder[1], outOfOrder[2] = outOfOrder[2], outOfOrder[1]
	jobs := []Job{
		newJob(flatBars(t, 5, "100")...),
		newJob(outOfOrder...),
		newJob(flatBars(t, 3, "100")...),
	}
	results, err := RunBatch(context.Background(), jobs, 2)
	require.ErrorIs(t, err, ErrTemporalOrder)
	require.Len(t, results, 3)
	assert.Equal(t, StatusCompleted, results[0].Status)
	assert.Len(t, results[0].EquityCurve, 5)
	assert.Equal(t, StatusFailedTemporalOrder, results[1].Status)
	assert.Equal(t, StatusCompleted, results[2].Status)
	assert.Len(t, results[2].EquityCurve, 3)

	// independent runs sharing a run ID produce identical order IDs
	assert.Equal(t, results[0].Fills[0].OrderID, results[2].Fills[0].OrderID)
}
