package app

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"apnode/internal/crypto"
	"apnode/internal/domain"
	"apnode/internal/store"
)

// Config holds runtime options for building the node.
type Config struct {
	Home       string           `yaml:"home"`    // data directory, e.g. $HOME/.apnode
	BaseURL    string           `yaml:"baseURL"` // authority of actor URIs
	Listen     string           `yaml:"listen"`
	Keys       KeysConfig       `yaml:"keys"`
	Mailbox    MailboxConfig    `yaml:"mailbox"`
	Cache      CacheConfig      `yaml:"cache"`
	Federation FederationConfig `yaml:"federation"`
	Inbox      InboxConfig      `yaml:"inbox"`
	Log        LogConfig        `yaml:"log"`

	LogWriter io.Writer `yaml:"-"` // defaults to stderr
}

type KeysConfig struct {
	Bits       int    `yaml:"bits"`
	Passphrase string `yaml:"passphrase"` // seals private keys at rest when set
}

type MailboxConfig struct {
	FollowPolicy string `yaml:"followPolicy"` // set|log
	SyncWrites   bool   `yaml:"syncWrites"`
}

type CacheConfig struct {
	OutboxSize int `yaml:"outboxSize"`
}

type FederationConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Timeout       time.Duration `yaml:"timeout"`
	InboxBaseURL  string        `yaml:"inboxBaseURL"` // defaults to BaseURL
	VerifyInbound bool          `yaml:"verifyInbound"`
}

type InboxConfig struct {
	RateLimit RateLimitConfig `yaml:"rateLimit"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	home := ".apnode"
	if dir, err := os.UserHomeDir(); err == nil {
		home = filepath.Join(dir, ".apnode")
	}
	return Config{
		Home:    home,
		BaseURL: "http://localhost:3000",
		Listen:  ":3000",
		Keys:    KeysConfig{Bits: crypto.MinRSABits},
		Mailbox: MailboxConfig{FollowPolicy: string(store.FollowSet)},
		Cache:   CacheConfig{OutboxSize: store.DefaultOutboxCacheSize},
		Federation: FederationConfig{
			Enabled: true,
			Timeout: 10 * time.Second,
		},
		Inbox: InboxConfig{RateLimit: RateLimitConfig{RPS: 20, Burst: 40}},
		Log:   LogConfig{Level: "info", Format: "text"},
	}
}

// LoadConfig layers defaults, the YAML file at path (optional) and APNODE_*
// environment variables, then validates the result.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := ApplyEnvOverrides(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnvOverrides copies APNODE_* variables onto cfg.
func ApplyEnvOverrides(cfg *Config) error {
	str := func(name string, dst *string) {
		if v, ok := os.LookupEnv(name); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	var errs []error
	boolean := func(name string, dst *bool) {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				return
			}
			*dst = b
		}
	}
	integer := func(name string, dst *int) {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				return
			}
			*dst = n
		}
	}

	str("APNODE_HOME", &cfg.Home)
	str("APNODE_BASE_URL", &cfg.BaseURL)
	str("APNODE_LISTEN", &cfg.Listen)
	integer("APNODE_KEY_BITS", &cfg.Keys.Bits)
	str("APNODE_PASSPHRASE", &cfg.Keys.Passphrase)
	str("APNODE_FOLLOW_POLICY", &cfg.Mailbox.FollowPolicy)
	integer("APNODE_OUTBOX_CACHE_SIZE", &cfg.Cache.OutboxSize)
	boolean("APNODE_FEDERATION_ENABLED", &cfg.Federation.Enabled)
	str("APNODE_INBOX_BASE_URL", &cfg.Federation.InboxBaseURL)
	boolean("APNODE_VERIFY_INBOUND", &cfg.Federation.VerifyInbound)
	str("APNODE_LOG_LEVEL", &cfg.Log.Level)
	str("APNODE_LOG_FORMAT", &cfg.Log.Format)
	if v := strings.TrimSpace(os.Getenv("APNODE_FEDERATION_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("APNODE_FEDERATION_TIMEOUT: %w", err))
		} else {
			cfg.Federation.Timeout = d
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}
	return nil
}

// Validate rejects unusable settings with domain.ErrValidation.
func (c Config) Validate() error {
	const op = "config"
	if strings.TrimSpace(c.Home) == "" {
		return domain.Validation(op, "home is required")
	}
	if err := checkBaseURL("baseURL", c.BaseURL); err != nil {
		return err
	}
	if c.Federation.InboxBaseURL != "" {
		if err := checkBaseURL("federation.inboxBaseURL", c.Federation.InboxBaseURL); err != nil {
			return err
		}
	}
	if c.Keys.Bits < crypto.MinRSABits {
		return domain.Validation(op, "keys.bits must be at least %d", crypto.MinRSABits)
	}
	if _, err := store.ParseFollowPolicy(c.Mailbox.FollowPolicy); err != nil {
		return domain.Validation(op, "mailbox.followPolicy: %v", err)
	}
	if c.Federation.Timeout <= 0 {
		return domain.Validation(op, "federation.timeout must be positive")
	}
	if c.Inbox.RateLimit.RPS < 0 || c.Inbox.RateLimit.Burst < 0 {
		return domain.Validation(op, "inbox.rateLimit values must not be negative")
	}
	return nil
}

func checkBaseURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return domain.Validation("config", "%s must be an absolute http(s) URL, got %q", field, raw)
	}
	if u.Path != "" && u.Path != "/" {
		return domain.Validation("config", "%s must not carry a path, got %q", field, raw)
	}
	return nil
}
