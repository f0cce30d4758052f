package mail

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/internal/domain/notify"
	"github.com/google/uuid"
	gomail "github.com/wneessen/go-mail"
)

// Defaults for the SMTP tier.
const (
	DefaultSMTPHost    = "smtp.gmail.com"
	DefaultSMTPPort    = 587
	DefaultSMTPTimeout = 15 * time.Second
	messageIDDomain    = "swansapeacefulplay.com"
)

// SMTPConfig configures the SMTP tier.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Timeout  time.Duration
	// TLSPolicy defaults to mandatory STARTTLS.
	TLSPolicy gomail.TLSPolicy
	// SSL connects with implicit TLS instead of STARTTLS.
	SSL bool
}

// SMTP delivers through an authenticated SMTP submission server. The
// connection is established and authenticated before the message is sent, so
// bad credentials fail without a partial send.
type SMTP struct {
	cfg  SMTPConfig
	name string
}

var _ notify.Tier = (*SMTP)(nil)

// NewSMTP returns an SMTP tier reported as the Gmail SMTP method.
func NewSMTP(cfg SMTPConfig) *SMTP {
	if cfg.Host == "" {
		cfg.Host = DefaultSMTPHost
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultSMTPPort
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultSMTPTimeout
	}
	return &SMTP{cfg: cfg, name: notify.MethodSMTP}
}

// Name implements notify.Tier.
func (s *SMTP) Name() string { return s.name }

// Attempt implements notify.Tier.
func (s *SMTP) Attempt(ctx context.Context, env notify.Envelope) (notify.Delivery, error) {
	if len(env.To) == 0 {
		return notify.Delivery{}, ErrNoReceiver
	}
	msg, id, err := buildMessage(env)
	if err != nil {
		return notify.Delivery{}, err
	}
	if err := send(ctx, s.cfg, msg); err != nil {
		return notify.Delivery{}, err
	}
	return notify.Delivery{MessageID: id}, nil
}

// send dials, authenticates and sends msg over one connection.
func send(ctx context.Context, cfg SMTPConfig, msg *gomail.Msg) error {
	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(cfg.Username),
		gomail.WithPassword(cfg.Password),
		gomail.WithTimeout(cfg.Timeout),
	}
	if cfg.SSL {
		opts = append(opts, gomail.WithSSLPort(false))
	} else {
		opts = append(opts, gomail.WithTLSPortPolicy(cfg.TLSPolicy))
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialWithContext(ctx); err != nil {
		return fmt.Errorf("smtp verify %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	defer func() { _ = client.Close() }()

	if err := client.Send(msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// buildMessage converts an envelope into a multipart text and HTML message.
func buildMessage(env notify.Envelope) (*gomail.Msg, string, error) {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(env.From.Name, env.From.Email); err != nil {
		return nil, "", fmt.Errorf("from address: %w", err)
	}
	if err := msg.To(env.To...); err != nil {
		return nil, "", fmt.Errorf("to address: %w", err)
	}
	if env.ReplyTo.Email != "" {
		if err := msg.ReplyToFormat(env.ReplyTo.Name, env.ReplyTo.Email); err != nil {
			return nil, "", fmt.Errorf("reply-to address: %w", err)
		}
	}

	id := newMessageID(env.SubmissionID)
	msg.SetMessageIDWithValue(id)
	msg.SetGenHeader(gomail.Header("X-Submission-Id"), env.SubmissionID)
	msg.Subject(env.Content.Subject)
	msg.SetBodyString(gomail.TypeTextPlain, env.Content.Text)
	msg.AddAlternativeString(gomail.TypeTextHTML, env.Content.HTML)
	return msg, id, nil
}

// newMessageID derives a unique Message-ID local part from the submission.
func newMessageID(submissionID string) string {
	local := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	if submissionID != "" {
		local = submissionID + "." + local
	}
	return local + "@" + messageIDDomain
}
