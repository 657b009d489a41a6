// Package refine implements a bounded resample-and-select loop: draw up to N
// candidates from a nondeterministic generator, score each with a
// deterministic reward, and keep the best one.
package refine

import (
	"context"
	"errors"
	"fmt"
)

// Policy selects the stopping rule for a loop.
type Policy int

const (
	// FirstAcceptable stops at the first candidate whose score meets the
	// threshold.
	FirstAcceptable Policy = iota
	// BestOfBudget always draws the full sample budget and returns the best.
	BestOfBudget
)

type Config struct {
	Samples   int
	Threshold float64
	Policy    Policy
}

// Generator produces one candidate per invocation. Repeated calls with
// identical inputs may return different candidates.
type Generator[I, C any] func(ctx context.Context, inputs I) (C, error)

// Reward scores a candidate. It must be pure: no side effects, and identical
// (inputs, candidate) pairs always yield identical scores.
type Reward[I, C any] func(inputs I, candidate C) float64

// Selection is the outcome of one loop invocation.
type Selection[C any] struct {
	Candidate C
	Score     float64
	// Attempt is the 1-based index of the sample that won.
	Attempt int
	// Attempts is the number of samples actually drawn.
	Attempts int
	// Failures counts generation attempts that errored and were skipped.
	Failures int
	// Degraded reports that the best score stayed below the threshold and the
	// candidate was accepted anyway.
	Degraded bool
}

var (
	ErrInvalidConfiguration = errors.New("refine: invalid configuration")
	ErrGenerationExhausted  = errors.New("refine: all generation attempts failed")
)

// Run draws up to cfg.Samples candidates and returns the best-scoring one.
// Failed generations are skipped and never selected; if every attempt fails
// the loop returns ErrGenerationExhausted. When every drawn candidate scores
// below the threshold the best one is still returned, flagged Degraded. Ties
// resolve to the earliest-produced candidate.
func Run[I, C any](ctx context.Context, cfg Config, generate Generator[I, C], reward Reward[I, C], inputs I) (Selection[C], error) {
	if cfg.Samples <= 0 {
		return Selection[C]{}, fmt.Errorf("%w: samples must be positive, got %d", ErrInvalidConfiguration, cfg.Samples)
	}
	if generate == nil {
		return Selection[C]{}, fmt.Errorf("%w: generator is required", ErrInvalidConfiguration)
	}
	if reward == nil {
		return Selection[C]{}, fmt.Errorf("%w: reward is required", ErrInvalidConfiguration)
	}

	var (
		best        Selection[C]
		haveBest    bool
		attemptErrs []error
	)
	for attempt := 1; attempt <= cfg.Samples; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Selection[C]{}, ctxErr
		}

		candidate, generateErr := generate(ctx, inputs)
		if generateErr != nil {
			attemptErrs = append(attemptErrs, fmt.Errorf("attempt %d: %w", attempt, generateErr))
			continue
		}

		score := reward(inputs, candidate)
		if !haveBest || score > best.Score {
			best = Selection[C]{Candidate: candidate, Score: score, Attempt: attempt}
			haveBest = true
		}
		if cfg.Policy == FirstAcceptable && score >= cfg.Threshold {
			best.Attempts = attempt
			best.Failures = len(attemptErrs)
			return best, nil
		}
	}

	if !haveBest {
		return Selection[C]{}, fmt.Errorf("%w: %w", ErrGenerationExhausted, errors.Join(attemptErrs...))
	}

	best.Attempts = cfg.Samples
	best.Failures = len(attemptErrs)
	best.Degraded = best.Score < cfg.Threshold
	return best, nil
}
