package notify

import (
	"time"

	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/pkg/logger"
)

// Option applies a configuration option to the Dispatcher.
type Option func(*Dispatcher)

// WithTiers sets the real delivery tiers in priority order. Callers pass only
// the tiers whose credentials are configured.
func WithTiers(tiers ...Tier) Option {
	return func(d *Dispatcher) {
		d.tiers = tiers
	}
}

// WithSandbox sets the last-resort tier. Envelopes reaching it are rewritten
// with the test mode banner first.
func WithSandbox(t Tier) Option {
	return func(d *Dispatcher) {
		d.sandbox = t
	}
}

// WithRecipients sets who receives every submission.
func WithRecipients(to ...string) Option {
	return func(d *Dispatcher) {
		d.recipients = append([]string(nil), to...)
	}
}

// WithSender sets the From address of outbound mail.
func WithSender(from Address) Option {
	return func(d *Dispatcher) {
		d.from = from
	}
}

// WithTestModeIsSuccess controls whether a sandbox delivery counts as success.
func WithTestModeIsSuccess(ok bool) Option {
	return func(d *Dispatcher) {
		d.testModeIsSuccess = ok
	}
}

// WithLogger sets the dispatcher logger.
func WithLogger(l logger.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		if now != nil {
			d.now = now
		}
	}
}

// WithIDGenerator replaces the submission id generator.
func WithIDGenerator(gen func(time.Time) string) Option {
	return func(d *Dispatcher) {
		if gen != nil {
			d.newID = gen
		}
	}
}
