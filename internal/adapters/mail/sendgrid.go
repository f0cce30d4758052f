// Package mail implements the contact delivery tiers: the SendGrid API, SMTP
// with an application password, and a disposable Ethereal test account.
package mail

import (
	"context"
	"errors"
	"fmt"

	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/internal/domain/notify"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Sentinel kinds for delivery errors.
var (
	ErrRejected   = errors.New("provider rejected message")
	ErrNoAccount  = errors.New("test account unavailable")
	ErrNoReceiver = errors.New("no recipients")
)

// DefaultSendGridHost is the public SendGrid API.
const DefaultSendGridHost = "https://api.sendgrid.com"

// SendGrid delivers through the SendGrid v3 mail API.
type SendGrid struct {
	apiKey string
	host   string
}

var _ notify.Tier = (*SendGrid)(nil)

// NewSendGrid returns a SendGrid tier. An empty host means the public API.
func NewSendGrid(apiKey, host string) *SendGrid {
	if host == "" {
		host = DefaultSendGridHost
	}
	return &SendGrid{apiKey: apiKey, host: host}
}

// Name implements notify.Tier.
func (s *SendGrid) Name() string { return notify.MethodSendGrid }

// Attempt implements notify.Tier.
func (s *SendGrid) Attempt(ctx context.Context, env notify.Envelope) (notify.Delivery, error) {
	if len(env.To) == 0 {
		return notify.Delivery{}, ErrNoReceiver
	}

	m := sgmail.NewV3Mail()
	m.SetFrom(sgmail.NewEmail(env.From.Name, env.From.Email))
	m.Subject = env.Content.Subject
	if env.ReplyTo.Email != "" {
		m.SetReplyTo(sgmail.NewEmail(env.ReplyTo.Name, env.ReplyTo.Email))
	}

	p := sgmail.NewPersonalization()
	for _, to := range env.To {
		p.AddTos(sgmail.NewEmail("", to))
	}
	p.SetCustomArg("submissionId", env.SubmissionID)
	m.AddPersonalizations(p)
	m.AddContent(
		sgmail.NewContent("text/plain", env.Content.Text),
		sgmail.NewContent("text/html", env.Content.HTML),
	)

	req := sendgrid.GetRequest(s.apiKey, "/v3/mail/send", s.host)
	req.Method = rest.Post
	req.Body = sgmail.GetRequestBody(m)

	resp, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return notify.Delivery{}, fmt.Errorf("sendgrid: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return notify.Delivery{}, fmt.Errorf("%w: sendgrid status %d: %s", ErrRejected, resp.StatusCode, truncate(resp.Body, 200))
	}

	var id string
	if ids := resp.Headers["X-Message-Id"]; len(ids) > 0 {
		id = ids[0]
	}
	return notify.Delivery{MessageID: id}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
