package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every service-specific environment variable.
const EnvPrefix = "STUDIO_"

// conventionalEnv maps provider-conventional variable names onto config keys.
var conventionalEnv = map[string]string{
	"SENDGRID_API_KEY":   "sendgrid_api_key",
	"GMAIL_USER":         "gmail_user",
	"GMAIL_APP_PASSWORD": "gmail_app_password",
	"ADMIN_TOKEN_SECRET": "admin_token_secret",
}

// listKeys are split on commas when they come from the environment.
var listKeys = map[string]bool{
	"recipients":         true,
	"universe_endpoints": true,
	"stats_endpoints":    true,
}

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if STUDIO_CONFIG is set
//  3. conventional names (SENDGRID_API_KEY, GMAIL_USER, ...)
//  4. env (prefix STUDIO_)
func Load(_ context.Context) (*Config, error) {
	base := New()
	k := koanf.New(".")

	if path := os.Getenv(EnvPrefix + "CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	conventional := env.Provider("", ".", func(s string) string {
		return conventionalEnv[s]
	})
	if err := k.Load(conventional, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// STUDIO_DATA_DIR -> data_dir; underscores are kept to match the koanf tags.
	prefixed := env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, interface{}) {
		key = strings.TrimPrefix(strings.ToLower(key), strings.ToLower(EnvPrefix))
		if key == "config" {
			return "", nil
		}
		if listKeys[key] {
			return key, splitList(value)
		}
		return key, value
	})
	if err := k.Load(prefixed, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Slices are decoded element-wise into existing backing arrays, so start
	// them empty and restore defaults only where nothing was loaded.
	cfg := *base
	cfg.Recipients, cfg.UniverseEndpoints, cfg.StatsEndpoints = nil, nil, nil
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	if !k.Exists("recipients") {
		cfg.Recipients = base.Recipients
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the fields the service cannot run without.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case len(c.Recipients) == 0:
		return fmt.Errorf("%w: at least one recipient is required", ErrInvalidConfig)
	case c.HTTPTimeoutMS <= 0:
		return fmt.Errorf("%w: http_timeout_ms must be positive", ErrInvalidConfig)
	case c.LiveBudgetMS <= 0:
		return fmt.Errorf("%w: live_budget_ms must be positive", ErrInvalidConfig)
	case c.SMTPPort <= 0:
		return fmt.Errorf("%w: smtp_port must be positive", ErrInvalidConfig)
	}
	return nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
