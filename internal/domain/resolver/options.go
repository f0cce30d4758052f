package resolver

import (
	"time"

	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/pkg/logger"
)

// Option applies a configuration option to the Resolver.
type Option func(*Resolver)

// WithUniverseTiers sets the universe id tiers in priority order.
func WithUniverseTiers(tiers ...UniverseTier) Option {
	return func(r *Resolver) {
		r.universe = tiers
	}
}

// WithStatsTiers sets the statistics tiers in priority order.
func WithStatsTiers(tiers ...StatsTier) Option {
	return func(r *Resolver) {
		r.stats = tiers
	}
}

// WithLogger sets the logger used for tier failures.
func WithLogger(l logger.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		if now != nil {
			r.now = now
		}
	}
}

// WithConcurrency bounds how many references resolve at once. Zero or less
// means every reference at once.
func WithConcurrency(n int) Option {
	return func(r *Resolver) {
		r.concurrency = n
	}
}

// WithLiveBudget bounds the time spent on live tiers per call. Zero or less
// keeps DefaultLiveBudget.
func WithLiveBudget(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.liveBudget = d
		}
	}
}
