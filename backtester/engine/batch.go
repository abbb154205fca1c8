package engine

import (
	"context"
	"fmt"

	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/common"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/log"
	"golang.org/x/sync/errgroup"
)

// RunBatch runs independent jobs in parallel, at most workers at a time when
// workers is positive. Results are returned in job order. A failing run does
// not stop the others, its partial result is kept and the first failure is
// returned
func RunBatch(ctx context.Context, jobs []Job, workers int) ([]*Result, error) {
	if len(jobs) == 0 {
		return nil, errNoJobs
	}
	for i := range jobs {
		if jobs[i].BackTest == nil {
			return nil, fmt.Errorf("job %v %w", i, errNilStrategy)
		}
		if jobs[i].Stream == nil {
			return nil, fmt.Errorf("job %v %w", i, errNilStream)
		}
	}
	results := make([]*Result, len(jobs))
	var g errgroup.Group
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i := range jobs {
		g.Go(func() error {
			res, err := jobs[i].BackTest.Run(ctx, jobs[i].Stream)
			results[i] = res
			if err != nil {
				return fmt.Errorf("job %v: %w", i, err)
			}
			return nil
		})
	}
	err := g.Wait()
	log.Infof(common.Backtester, "batch of %v runs complete", len(jobs))
	return results, err
}
