// Package config defines service configuration and its loader.
//
// Conventions:
//   - New() returns a Config populated with defaults.
//   - Load(ctx) layers defaults, an optional YAML file and the environment.
//   - Derived availability (which delivery tiers are usable) is computed here
//     once, not read ad hoc from the environment by callers.
package config

import (
	"path/filepath"
	"strings"
)

// Placeholder values shipped in example env files. They mean "not configured".
var (
	sendGridPlaceholders = []string{"your-sendgrid-api-key"}
	smtpPlaceholders     = []string{"your-16-character-app-password", "your-app-password-here"}
)

// MinAppPasswordLength is the shortest application password the SMTP tier accepts.
const MinAppPasswordLength = 16

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat is "text" or "json".
	LogFormat string `koanf:"log_format"`
	// Addr configures the HTTP listen address, e.g. ":3000".
	Addr string `koanf:"addr"`

	// DataDir holds the flat-file stores.
	DataDir string `koanf:"data_dir"`
	// GamesFile is the admin games list, relative to DataDir unless absolute.
	GamesFile string `koanf:"games_file"`
	// ContactsFile is the append-only contact submission log, relative to
	// DataDir unless absolute.
	ContactsFile string `koanf:"contacts_file"`

	// HTTPTimeoutMS bounds every outbound platform request.
	HTTPTimeoutMS int `koanf:"http_timeout_ms"`
	// LiveBudgetMS bounds all live lookups of one resolve; references still
	// pending afterwards use the fallback table. Keep it under the server's
	// write timeout.
	LiveBudgetMS int `koanf:"live_budget_ms"`
	// UserAgent is sent on platform requests.
	UserAgent string `koanf:"user_agent"`
	// UniverseEndpoints overrides the base URLs of the universe tiers, in order:
	// official, roproxy, multiget.
	UniverseEndpoints []string `koanf:"universe_endpoints"`
	// StatsEndpoints overrides the base URLs of the statistics tiers, in order:
	// official, rommonitor, roproxy.
	StatsEndpoints []string `koanf:"stats_endpoints"`

	// SendGridAPIKey enables the transactional email tier.
	SendGridAPIKey string `koanf:"sendgrid_api_key"`
	// SendGridHost is the API host, overridable for tests.
	SendGridHost string `koanf:"sendgrid_host"`
	// GmailUser and GmailAppPassword enable the SMTP tier.
	GmailUser        string `koanf:"gmail_user"`
	GmailAppPassword string `koanf:"gmail_app_password"`
	SMTPHost         string `koanf:"smtp_host"`
	SMTPPort         int    `koanf:"smtp_port"`
	// TestSinkAPI creates disposable mail accounts for the last-resort tier.
	TestSinkAPI string `koanf:"test_sink_api"`
	// TestModeIsSuccess reports a sandboxed delivery as success.
	TestModeIsSuccess bool `koanf:"test_mode_is_success"`
	// MailFrom and MailFromName form the sender of outbound mail.
	MailFrom     string `koanf:"mail_from"`
	MailFromName string `koanf:"mail_from_name"`
	// Recipients receive every contact submission.
	Recipients []string `koanf:"recipients"`

	// AdminPasswordHash is a bcrypt hash checked on admin login.
	AdminPasswordHash string `koanf:"admin_password_hash"`
	// AdminTokenSecret signs admin session tokens.
	AdminTokenSecret string `koanf:"admin_token_secret"`
	// AdminSessionTTLMinutes bounds an admin session.
	AdminSessionTTLMinutes int `koanf:"admin_session_ttl_minutes"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:      "info",
		LogFormat:     "text",
		Addr:          ":3000",
		DataDir:       ".",
		GamesFile:     "games.json",
		ContactsFile:  "contact-submissions.json",
		HTTPTimeoutMS: 8000,
		LiveBudgetMS:  20000,
		UserAgent:     "SwansaPeacefulPlay/1.0",
		SendGridHost:  "https://api.sendgrid.com",
		SMTPHost:      "smtp.gmail.com",
		SMTPPort:      587,
		TestSinkAPI:   "https://api.nodemailer.com",
		// A sandboxed delivery has always been reported as success.
		TestModeIsSuccess: true,
		MailFrom:          "noreply@swansapeacefulplay.com",
		MailFromName:      "Swansa x PeacefulPlay Studio",
		Recipients: []string{
			"slashingsimulator@gmail.com",
			"greatarchon999@gmail.com",
			"abhibagga29@gmail.com",
		},
		AdminSessionTTLMinutes: 12 * 60,
	}
}

// SendGridConfigured reports whether the transactional tier has a usable key.
func (c *Config) SendGridConfigured() bool {
	key := strings.TrimSpace(c.SendGridAPIKey)
	return key != "" && !contains(sendGridPlaceholders, key)
}

// SMTPConfigured reports whether the SMTP tier has usable credentials.
func (c *Config) SMTPConfigured() bool {
	user := strings.TrimSpace(c.GmailUser)
	pass := c.GmailAppPassword
	if user == "" || pass == "" {
		return false
	}
	if contains(smtpPlaceholders, pass) {
		return false
	}
	return len(pass) >= MinAppPasswordLength
}

// AdminEnabled reports whether admin login can succeed at all.
func (c *Config) AdminEnabled() bool {
	return c.AdminPasswordHash != "" && c.AdminTokenSecret != ""
}

// GamesPath is the resolved location of the games list.
func (c *Config) GamesPath() string { return c.dataPath(c.GamesFile) }

// ContactsPath is the resolved location of the contact log.
func (c *Config) ContactsPath() string { return c.dataPath(c.ContactsFile) }

func (c *Config) dataPath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.DataDir, name)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
