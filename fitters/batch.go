// Package fitters evaluates many parameter proposals concurrently. Every
// worker owns a deep copy of the model, so no mutable state crosses
// goroutines.
package fitters

import (
	"context"

	"github.com/go-logr/logr"
	"github.com/lucasmaystre/lcfit/logging"
	"github.com/lucasmaystre/lcfit/models"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

var ErrShape = errors.New("proposal length does not match parameter names")

// Scorer is a self-cloning log-likelihood, such as a lightcurve.Fit.
type Scorer[S any] interface {
	Clone() S
	LogLikelihood(values []float64) (float64, error)
}

type Batch struct {
	// Workers bounds the number of goroutines. Zero means one.
	Workers int
	Logger  logr.Logger
}

func (b Batch) workers(n int) int {
	w := b.Workers
	if w < 1 {
		w = 1
	}
	if w > n {
		w = n
	}
	return w
}

func (b Batch) logger() logr.Logger {
	if b.Logger.GetSink() == nil {
		return logr.Discard()
	}
	return b.Logger
}

// run feeds the indices 0..n-1 to the workers. Each worker calls newState
// once and fn for every index it receives. The first error cancels the rest.
func run[S any](ctx context.Context, b Batch, n int, newState func() S, fn func(s S, i int) error) error {
	if n == 0 {
		return nil
	}
	workers := b.workers(n)
	errGrp, dCtx := errgroup.WithContext(ctx)
	errGrp.SetLimit(workers + 1)

	jobs := make(chan int)
	errGrp.Go(func() error {
		defer close(jobs)
		for i := 0; i < n; i++ {
			if err := dCtx.Err(); err != nil {
				return err
			}
			select {
			case <-dCtx.Done():
				return dCtx.Err()
			case jobs <- i:
			}
		}
		return nil
	})
	for goIdx := 0; goIdx < workers; goIdx++ {
		localGoIdx := goIdx
		errGrp.Go(func() error {
			s := newState()
			for i := range jobs {
				if err := fn(s, i); err != nil {
					return errors.Wrapf(err, "go routine %d: proposal %d", localGoIdx, i)
				}
			}
			return nil
		})
	}
	err := errGrp.Wait()
	b.logger().V(logging.DEBUG).Info("Evaluated batch", "proposals", n, "workers", workers, "error", err)
	return err
}

// Eval updates a private clone of m with each proposal over names and
// returns the model flux at time, in proposal order.
func (b Batch) Eval(ctx context.Context, m models.Model, names []string, proposals [][]float64, time []float64) ([][]float64, error) {
	if err := checkProposals(names, proposals); err != nil {
		return nil, err
	}
	out := make([][]float64, len(proposals))
	err := run(ctx, b, len(proposals), m.Clone, func(c models.Model, i int) error {
		if err := c.Update(proposals[i], names); err != nil {
			return err
		}
		flux, err := c.Eval(time)
		if err != nil {
			return err
		}
		out[i] = flux
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// LogLikelihoods scores every proposal on a private clone of s, in proposal
// order.
func LogLikelihoods[S Scorer[S]](ctx context.Context, b Batch, s S, proposals [][]float64) ([]float64, error) {
	out := make([]float64, len(proposals))
	err := run(ctx, b, len(proposals), s.Clone, func(c S, i int) error {
		ll, err := c.LogLikelihood(proposals[i])
		if err != nil {
			return err
		}
		out[i] = ll
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func checkProposals(names []string, proposals [][]float64) error {
	for i, p := range proposals {
		if len(p) != len(names) {
			return errors.Wrapf(ErrShape, "proposal %d has %d values for %d names", i, len(p), len(names))
		}
	}
	return nil
}
