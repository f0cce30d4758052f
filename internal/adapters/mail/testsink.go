package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/internal/domain/notify"
	gomail "github.com/wneessen/go-mail"
	"github.com/wneessen/go-mail/smtp"
)

// DefaultTestSinkAPI creates Ethereal accounts.
const DefaultTestSinkAPI = "https://api.nodemailer.com"

const defaultTestSinkWeb = "https://ethereal.email"

var (
	errNoStartTLS = errors.New("server does not offer STARTTLS")

	// The sandbox acknowledges DATA with "250 Accepted [STATUS=new MSGID=...]".
	msgIDToken = regexp.MustCompile(`MSGID=([^\s\]]+)`)
)

// Account is a disposable mailbox returned by the account API.
type Account struct {
	User string `json:"user"`
	Pass string `json:"pass"`
	SMTP struct {
		Host   string `json:"host"`
		Port   int    `json:"port"`
		Secure bool   `json:"secure"`
	} `json:"smtp"`
	Web string `json:"web"`
}

// TestSink delivers to a fresh disposable account and reports a preview URL
// instead of reaching the real recipients.
type TestSink struct {
	api      string
	http     *http.Client
	fromName string
	timeout  time.Duration
	policy   gomail.TLSPolicy
}

// TestSinkOption configures a TestSink.
type TestSinkOption func(*TestSink)

// WithTestSinkHTTPClient replaces the client used for the account API.
func WithTestSinkHTTPClient(c *http.Client) TestSinkOption {
	return func(t *TestSink) {
		if c != nil {
			t.http = c
		}
	}
}

// WithTestSinkTLSPolicy sets the STARTTLS policy for non-SSL accounts.
func WithTestSinkTLSPolicy(p gomail.TLSPolicy) TestSinkOption {
	return func(t *TestSink) {
		t.policy = p
	}
}

// WithTestSinkFromName sets the display name of the sandbox sender.
func WithTestSinkFromName(name string) TestSinkOption {
	return func(t *TestSink) {
		if name != "" {
			t.fromName = name
		}
	}
}

var _ notify.Tier = (*TestSink)(nil)

// NewTestSink returns a sandbox tier using the account API at api.
func NewTestSink(api string, opts ...TestSinkOption) *TestSink {
	if api == "" {
		api = DefaultTestSinkAPI
	}
	t := &TestSink{
		api:      strings.TrimRight(api, "/"),
		http:     &http.Client{Timeout: DefaultSMTPTimeout},
		fromName: notify.StudioName + " [TEST]",
		timeout:  DefaultSMTPTimeout,
		policy:   gomail.TLSOpportunistic,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Name implements notify.Tier.
func (t *TestSink) Name() string { return notify.MethodTestMode }

// Attempt implements notify.Tier. The envelope is sent to the disposable
// account itself; env.To only appears in the rendered banner.
func (t *TestSink) Attempt(ctx context.Context, env notify.Envelope) (notify.Delivery, error) {
	acct, err := t.CreateAccount(ctx)
	if err != nil {
		return notify.Delivery{}, err
	}

	env.From = notify.Address{Name: t.fromName, Email: acct.User}
	env.To = []string{acct.User}
	msg, id, err := buildMessage(env)
	if err != nil {
		return notify.Delivery{}, err
	}

	reply, err := t.deliver(ctx, acct, msg)
	if err != nil {
		return notify.Delivery{}, err
	}
	return notify.Delivery{MessageID: id, PreviewURL: previewURL(acct.Web, reply)}, nil
}

// deliver sends msg over a bare go-mail SMTP session and returns the text of
// the server's DATA acknowledgement, which carries the preview token.
func (t *TestSink) deliver(ctx context.Context, acct Account, msg *gomail.Msg) (string, error) {
	host := acct.SMTP.Host
	addr := net.JoinHostPort(host, strconv.Itoa(acct.SMTP.Port))
	tlsCfg := &tls.Config{ServerName: host, MinVersion: tls.VersionTLS12}

	dialer := &net.Dialer{Timeout: t.timeout}
	var (
		conn net.Conn
		err  error
	)
	if acct.SMTP.Secure {
		conn, err = (&tls.Dialer{NetDialer: dialer, Config: tlsCfg}).DialContext(ctx, "tcp", addr)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return "", fmt.Errorf("smtp dial %s: %w", addr, err)
	}
	deadline := time.Now().Add(t.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetDeadline(deadline)

	c, err := smtp.NewClient(conn, host)
	if err != nil {
		_ = conn.Close()
		return "", fmt.Errorf("smtp greeting %s: %w", addr, err)
	}
	defer func() { _ = c.Close() }()

	if !acct.SMTP.Secure && t.policy != gomail.NoTLS {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(tlsCfg); err != nil {
				return "", fmt.Errorf("smtp starttls: %w", err)
			}
		} else if t.policy == gomail.TLSMandatory {
			return "", fmt.Errorf("smtp starttls: %w", errNoStartTLS)
		}
	}
	if err := c.Auth(smtp.PlainAuth("", acct.User, acct.Pass, host, false)); err != nil {
		return "", fmt.Errorf("smtp auth: %w", err)
	}

	from, err := msg.GetSender(false)
	if err != nil {
		return "", fmt.Errorf("smtp sender: %w", err)
	}
	rcpts, err := msg.GetRecipients()
	if err != nil {
		return "", fmt.Errorf("smtp recipients: %w", err)
	}
	if err := c.Mail(from); err != nil {
		return "", fmt.Errorf("smtp mail from: %w", err)
	}
	for _, rcpt := range rcpts {
		if err := c.Rcpt(rcpt); err != nil {
			return "", fmt.Errorf("smtp rcpt %s: %w", rcpt, err)
		}
	}

	reply, err := writeData(c, msg)
	if err != nil {
		return "", err
	}
	_ = c.Quit()
	return reply, nil
}

// writeData runs the DATA exchange by hand; smtp.Client.Data discards the
// final reply.
func writeData(c *smtp.Client, msg *gomail.Msg) (string, error) {
	id, err := c.Text.Cmd("DATA")
	if err != nil {
		return "", fmt.Errorf("smtp data: %w", err)
	}
	c.Text.StartResponse(id)
	_, _, err = c.Text.ReadResponse(354)
	c.Text.EndResponse(id)
	if err != nil {
		return "", fmt.Errorf("smtp data: %w", err)
	}

	w := c.Text.DotWriter()
	if _, err := msg.WriteTo(w); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("smtp write: %w", err)
	}
	_, reply, err := c.Text.ReadResponse(250)
	if err != nil {
		return "", fmt.Errorf("smtp send: %w", err)
	}
	return reply, nil
}

// CreateAccount asks the account API for a new disposable mailbox.
func (t *TestSink) CreateAccount(ctx context.Context) (Account, error) {
	body, _ := json.Marshal(map[string]string{
		"requestor": "swansa-peacefulplay",
		"version":   "1.0",
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.api+"/user", bytes.NewReader(body))
	if err != nil {
		return Account{}, fmt.Errorf("build account request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := t.http.Do(req)
	if err != nil {
		return Account{}, fmt.Errorf("%w: %w", ErrNoAccount, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return Account{}, fmt.Errorf("%w: status %d", ErrNoAccount, resp.StatusCode)
	}
	var acct Account
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&acct); err != nil {
		return Account{}, fmt.Errorf("%w: %w", ErrNoAccount, err)
	}
	if acct.User == "" || acct.Pass == "" || acct.SMTP.Host == "" || acct.SMTP.Port == 0 {
		return Account{}, fmt.Errorf("%w: incomplete account", ErrNoAccount)
	}
	return acct, nil
}

// previewURL links the sandbox web UI to the message named in the DATA
// reply, or to the mailbox listing when the reply carries no token.
func previewURL(web, reply string) string {
	if web == "" {
		web = defaultTestSinkWeb
	}
	web = strings.TrimRight(web, "/")
	m := msgIDToken.FindStringSubmatch(reply)
	if m == nil {
		return web + "/messages"
	}
	return web + "/message/" + url.PathEscape(m[1])
}
