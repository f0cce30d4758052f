// Package chain runs an ordered list of fallback tiers until one succeeds.
//
// Both the game statistics lookups and contact delivery are priority-ordered
// fallbacks: every tier is tried in turn, a failure is recorded and the next
// tier is attempted, and the first success ends the run.
package chain

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Sentinel kinds for chain errors.
var (
	ErrExhausted = errors.New("all tiers failed")
	ErrNoTiers   = errors.New("no tiers configured")
)

// Tier is one candidate provider in a fallback chain.
type Tier[In, Out any] interface {
	Name() string
	Attempt(ctx context.Context, in In) (Out, error)
}

type funcTier[In, Out any] struct {
	name string
	fn   func(ctx context.Context, in In) (Out, error)
}

func (t funcTier[In, Out]) Name() string { return t.name }

func (t funcTier[In, Out]) Attempt(ctx context.Context, in In) (Out, error) {
	return t.fn(ctx, in)
}

// Func adapts a function into a named Tier.
func Func[In, Out any](name string, fn func(ctx context.Context, in In) (Out, error)) Tier[In, Out] {
	return funcTier[In, Out]{name: name, fn: fn}
}

// Attempt records a single tier invocation.
type Attempt struct {
	Tier     string
	Err      error
	Duration time.Duration
}

// OK reports whether the attempt succeeded.
func (a Attempt) OK() bool { return a.Err == nil }

// Observer is notified after every attempt.
type Observer func(ctx context.Context, a Attempt)

// Outcome is the result of a successful run.
type Outcome[Out any] struct {
	Value    Out
	Tier     string
	Attempts []Attempt
}

// TierError ties a failure to the tier that produced it.
type TierError struct {
	Tier string
	Err  error
}

func (e *TierError) Error() string { return fmt.Sprintf("%s: %v", e.Tier, e.Err) }
func (e *TierError) Unwrap() error { return e.Err }

// Run tries tiers in order and returns the first success. Tiers run strictly
// sequentially. When every tier fails the error wraps ErrExhausted and each
// tier's TierError. A cancelled context stops the run before the next tier.
func Run[In, Out any](ctx context.Context, tiers []Tier[In, Out], in In, observers ...Observer) (Outcome[Out], error) {
	var out Outcome[Out]
	if len(tiers) == 0 {
		return out, ErrNoTiers
	}

	errs := make([]error, 0, len(tiers))
	for _, tier := range tiers {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		start := time.Now()
		value, err := tier.Attempt(ctx, in)
		a := Attempt{Tier: tier.Name(), Err: err, Duration: time.Since(start)}
		out.Attempts = append(out.Attempts, a)
		for _, obs := range observers {
			obs(ctx, a)
		}

		if err == nil {
			out.Value = value
			out.Tier = tier.Name()
			return out, nil
		}
		errs = append(errs, &TierError{Tier: tier.Name(), Err: err})
	}

	return out, fmt.Errorf("%w: %w", ErrExhausted, errors.Join(errs...))
}
