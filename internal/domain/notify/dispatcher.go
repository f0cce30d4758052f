// Package notify persists contact submissions and delivers them through an
// ordered chain of mail providers.
package notify

import (
	"context"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/internal/domain/chain"
	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/internal/domain/model"
	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/pkg/logger"
	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/pkg/metrics"
	"github.com/google/uuid"
)

// Store is the append-only log submissions are written to.
type Store interface {
	Append(ctx context.Context, sub model.ContactSubmission) error
}

// Dispatcher handles contact submissions. Tier availability is fixed at
// construction.
type Dispatcher struct {
	store             Store
	tiers             []Tier
	sandbox           Tier
	chain             []Tier
	recipients        []string
	from              Address
	testModeIsSuccess bool
	logger            logger.Logger
	now               func() time.Time
	newID             func(time.Time) string
}

// NewDispatcher creates a Dispatcher writing to store.
func NewDispatcher(store Store, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		store:             store,
		testModeIsSuccess: true,
		logger:            logger.Nop(),
		now:               time.Now,
		newID:             NewSubmissionID,
	}
	for _, opt := range opts {
		opt(d)
	}

	d.chain = append(d.chain, d.tiers...)
	if d.sandbox != nil {
		d.chain = append(d.chain, d.sandboxed(d.sandbox))
	}
	return d
}

// Methods lists the delivery methods in the order they are attempted.
func (d *Dispatcher) Methods() []string {
	out := make([]string, 0, len(d.chain))
	for _, t := range d.chain {
		out = append(out, t.Name())
	}
	return out
}

// Recipients returns the configured recipients.
func (d *Dispatcher) Recipients() []string {
	return append([]string(nil), d.recipients...)
}

// Validate reports the required fields that are blank.
func Validate(in model.ContactInput) error {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"name", in.Name},
		{"email", in.Email},
		{"serviceType", in.ServiceType},
		{"subject", in.Subject},
		{"message", in.Message},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingFields, strings.Join(missing, ", "))
	}
	return nil
}

// Submit validates, persists and delivers one submission. Only validation
// errors are returned; persistence and delivery failures are reported in the
// Receipt.
func (d *Dispatcher) Submit(ctx context.Context, in model.ContactInput) (Receipt, error) {
	if err := Validate(in); err != nil {
		return Receipt{}, err
	}

	now := d.now()
	sub := model.NewContactSubmission(d.newID(now), in, now)
	metrics.RecordContactSubmission()
	log := d.logger.With(logger.String("submissionId", sub.ID))

	rec := Receipt{Submission: sub, Recipients: d.Recipients()}

	// A client that hangs up must not cost us the submission.
	if err := d.store.Append(context.WithoutCancel(ctx), sub); err != nil {
		metrics.RecordPersistError()
		log.Error(ctx, "failed to persist contact submission", logger.Error(err))
	} else {
		rec.Persisted = true
	}

	rec.Result = d.deliver(ctx, log, sub, now)
	method := rec.Result.Method
	if method == "" {
		method = "none"
	}
	metrics.RecordDelivery(method, rec.Result.Success)
	return rec, nil
}

func (d *Dispatcher) deliver(ctx context.Context, log logger.Logger, sub model.ContactSubmission, now time.Time) Result {
	content, err := Render(sub, now)
	if err != nil {
		log.Error(ctx, "failed to render contact mail", logger.Error(err))
		return Result{Error: err.Error(), Warning: WarningFailed}
	}

	env := Envelope{
		SubmissionID: sub.ID,
		From:         d.from,
		ReplyTo:      Address{Name: sub.Name, Email: sub.Email},
		To:           d.Recipients(),
		Content:      content,
	}

	out, err := chain.Run(ctx, d.chain, env, func(ctx context.Context, a chain.Attempt) {
		metrics.RecordTierAttempt(metrics.PipelineDelivery, a.Tier, a.OK(), float64(a.Duration.Milliseconds()))
		if !a.OK() {
			log.Warn(ctx, "delivery tier failed", logger.String("method", a.Tier), logger.Error(a.Err))
		}
	})
	if err != nil {
		last := err
		if n := len(out.Attempts); n > 0 {
			last = out.Attempts[n-1].Err
		}
		log.Error(ctx, "all delivery methods failed", logger.Error(err))
		return Result{
			Error:   "All email services failed. Last error: " + last.Error(),
			Warning: WarningFailed,
		}
	}

	if out.Value.Sandbox {
		log.Warn(ctx, "contact mail delivered in test mode", logger.String("previewUrl", out.Value.PreviewURL))
		return Result{
			Success:    d.testModeIsSuccess,
			Method:     out.Tier,
			Warning:    WarningTestMode,
			PreviewURL: out.Value.PreviewURL,
			TestMode:   true,
		}
	}

	log.Info(ctx, "contact mail delivered",
		logger.String("method", out.Tier),
		logger.String("messageId", out.Value.MessageID),
		logger.Int("recipients", len(env.To)),
	)
	return Result{Success: true, Method: out.Tier}
}

// sandboxed swaps the envelope content for the test mode rendering before
// handing it to t.
func (d *Dispatcher) sandboxed(t Tier) Tier {
	return chain.Func(t.Name(), func(ctx context.Context, env Envelope) (Delivery, error) {
		env.Content = TestModeContent(env.Content, env.To)
		del, err := t.Attempt(ctx, env)
		if err != nil {
			return Delivery{}, err
		}
		del.Sandbox = true
		return del, nil
	})
}

// idSpace is 36^9, the number of nine digit base36 suffixes.
const idSpace = 101559956668416

// NewSubmissionID returns contact_<unix ms>_<9 base36 chars>.
func NewSubmissionID(now time.Time) string {
	u := uuid.New()
	n := binary.BigEndian.Uint64(u[:8]) % idSpace
	suffix := strconv.FormatUint(n, 36)
	if len(suffix) < 9 {
		suffix = strings.Repeat("0", 9-len(suffix)) + suffix
	}
	return "contact_" + strconv.FormatInt(now.UnixMilli(), 10) + "_" + suffix
}
