package statistics

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"runtime"

	"golang.org/x/sync/errgroup"
)

const confidenceZ = 1.96

// Validate checks the parameters describe a playable bet
func (p *RuinParams) Validate() error {
	switch {
	case p.WinRate < 0 || p.WinRate > 1:
		return fmt.Errorf("%w win rate %v outside [0,1]", errInvalidRuinParams, p.WinRate)
	case p.PayoffRatio <= 0:
		return fmt.Errorf("%w payoff ratio %v must be positive", errInvalidRuinParams, p.PayoffRatio)
	case p.RiskFraction <= 0 || p.RiskFraction >= 1:
		return fmt.Errorf("%w risk fraction %v outside (0,1)", errInvalidRuinParams, p.RiskFraction)
	case p.HorizonTrades <= 0:
		return fmt.Errorf("%w horizon %v must be positive", errInvalidRuinParams, p.HorizonTrades)
	case p.Threshold <= 0 || p.Threshold >= 1:
		return fmt.Errorf("%w threshold %v outside (0,1)", errInvalidRuinParams, p.Threshold)
	case p.Trials <= 0:
		return fmt.Errorf("%w trials %v must be positive", errInvalidRuinParams, p.Trials)
	}
	return nil
}

// logSteps returns the log equity change of a win and of a loss
func (p *RuinParams) logSteps() (win, loss float64) {
	return math.Log1p(p.RiskFraction * p.PayoffRatio), math.Log1p(-p.RiskFraction)
}

// ruined is shared by the simulation and the exact reference so both apply
// the same boundary
func ruined(wins, losses int, logWin, logLoss, logThreshold float64) bool {
	return float64(wins)*logWin+float64(losses)*logLoss <= logThreshold
}

// SimulateRuin estimates the probability that a path of HorizonTrades bets
// touches the ruin threshold. Every trial draws from its own generator seeded
// by (Seed, trial index), so adding trials never changes earlier trials and
// the worker count never changes the result
func SimulateRuin(ctx context.Context, p RuinParams) (*RuinEstimate, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	workers := p.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, p.Trials)
	logWin, logLoss := p.logSteps()
	logThreshold := math.Log(p.Threshold)

	counts := make([]int, workers)
	chunk := (p.Trials + workers - 1) / workers
	g, ctx := errgroup.WithContext(ctx)
	for w := range workers {
		from, to := w*chunk, min((w+1)*chunk, p.Trials)
		g.Go(func() error {
			for trial := from; trial < to; trial++ {
				if trial%1024 == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				if simulatePath(&p, uint64(trial), logWin, logLoss, logThreshold) {
					counts[w]++
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resp := &RuinEstimate{Params: p}
	for i := range counts {
		resp.Ruined += counts[i]
	}
	n := float64(p.Trials)
	resp.Probability = float64(resp.Ruined) / n
	resp.StandardError = math.Sqrt(resp.Probability * (1 - resp.Probability) / n)
	resp.ConfidenceLow = max(0, resp.Probability-confidenceZ*resp.StandardError)
	resp.ConfidenceHigh = min(1, resp.Probability+confidenceZ*resp.StandardError)
	return resp, nil
}

func simulatePath(p *RuinParams, trial uint64, logWin, logLoss, logThreshold float64) bool {
	rng := rand.New(rand.NewPCG(p.Seed, trial))
	var wins, losses int
	for range p.HorizonTrades {
		if rng.Float64() < p.WinRate {
			wins++
		} else {
			losses++
		}
		if ruined(wins, losses, logWin, logLoss, logThreshold) {
			return true
		}
	}
	return false
}

// ExactRuinProbability walks the binomial lattice of (trade, wins) states and
// returns the probability that a path reaches the ruin threshold within the
// horizon. Ruined states are absorbing. Trials, Seed and Workers are ignored
func ExactRuinProbability(p RuinParams) (float64, error) {
	p.Trials = 1
	if err := p.Validate(); err != nil {
		return 0, err
	}
	logWin, logLoss := p.logSteps()
	logThreshold := math.Log(p.Threshold)

	// alive[w] is the probability of having w wins without ruin
	alive := []float64{1}
	var ruin float64
	for step := range p.HorizonTrades {
		next := make([]float64, step+2)
		for w, mass := range alive {
			if mass == 0 {
				continue
			}
			losses := step - w
			if ruined(w+1, losses, logWin, logLoss, logThreshold) {
				ruin += mass * p.WinRate
			} else {
				next[w+1] += mass * p.WinRate
			}
			if ruined(w, losses+1, logWin, logLoss, logThreshold) {
				ruin += mass * (1 - p.WinRate)
			} else {
				next[w] += mass * (1 - p.WinRate)
			}
		}
		alive = next
	}
	return ruin, nil
}
