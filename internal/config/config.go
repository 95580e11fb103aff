// ABOUTME: Configuration loading and parsing for contact-inbox
// ABOUTME: Supports YAML or TOML files with .env loading, env var expansion, and duration parsing

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Defaults applied when a field is left empty.
const (
	DefaultDriver     = "sqlite"
	DefaultSessionTTL = 24 * time.Hour
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "text"
)

// AdminSecretEnv is consulted when admin.secret is empty.
const AdminSecretEnv = "ADMIN"

// ConfigPathEnv overrides the default config location.
const ConfigPathEnv = "CONTACT_INBOX_CONFIG"

// DefaultEnvFiles are loaded, in order, before a config file is parsed.
// Variables already present in the environment are never overwritten.
var DefaultEnvFiles = []string{".env.local", ".env"}

// Config represents the complete contact-inbox configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" toml:"server"`
	Tailscale TailscaleConfig `yaml:"tailscale" toml:"tailscale"`
	Database  DatabaseConfig  `yaml:"database" toml:"database"`
	Admin     AdminConfig     `yaml:"admin" toml:"admin"`
	Notify    NotifyConfig    `yaml:"notify" toml:"notify"`
	Logging   LoggingConfig   `yaml:"logging" toml:"logging"`
}

// ServerConfig holds the HTTP listen address
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr" toml:"http_addr"`
}

// TailscaleConfig holds Tailscale tsnet configuration
type TailscaleConfig struct {
	Enabled   bool   `yaml:"enabled" toml:"enabled"`
	Hostname  string `yaml:"hostname" toml:"hostname"`
	AuthKey   string `yaml:"auth_key" toml:"auth_key"`
	StateDir  string `yaml:"state_dir" toml:"state_dir"`
	Ephemeral bool   `yaml:"ephemeral" toml:"ephemeral"`
	HTTPS     bool   `yaml:"https" toml:"https"` // serve on :443 with a tailnet certificate
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path   string `yaml:"path" toml:"path"`
	Driver string `yaml:"driver" toml:"driver"` // "sqlite" (pure Go) or "sqlite3" (cgo)
}

// AdminConfig holds the admin secret and session settings
type AdminConfig struct {
	Secret        string        `yaml:"secret" toml:"secret"`
	SessionTTL    time.Duration `yaml:"-" toml:"-"`
	SessionTTLRaw string        `yaml:"session_ttl" toml:"session_ttl"`
	SecureCookies bool          `yaml:"secure_cookies" toml:"secure_cookies"`
}

// NotifyConfig holds notification targets for new messages
type NotifyConfig struct {
	Matrix MatrixConfig `yaml:"matrix" toml:"matrix"`
}

// MatrixConfig holds Matrix notification configuration
type MatrixConfig struct {
	Enabled     bool   `yaml:"enabled" toml:"enabled"`
	Homeserver  string `yaml:"homeserver" toml:"homeserver"`
	UserID      string `yaml:"user_id" toml:"user_id"`
	AccessToken string `yaml:"access_token" toml:"access_token"`
	RoomID      string `yaml:"room_id" toml:"room_id"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// Load reads a configuration file from the given path and returns a parsed Config.
// .env files are loaded first, then ${VAR_NAME} patterns are expanded. Files
// ending in .toml are parsed as TOML, anything else as YAML.
func Load(path string) (*Config, error) {
	if err := LoadEnvFiles(DefaultEnvFiles...); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg, err := Parse(path, data)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Parse decodes raw config content, choosing the format from name's
// extension, and applies env expansion, durations and defaults. It does not
// validate.
func Parse(name string, data []byte) (*Config, error) {
	expanded := expandEnvVars(string(data))

	var cfg Config
	if strings.EqualFold(filepath.Ext(name), ".toml") {
		if _, err := toml.Decode(expanded, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	} else {
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}
	applyDefaults(&cfg)

	return &cfg, nil
}

// LoadEnvFiles loads each existing file into the process environment.
// Missing files are skipped; earlier files and the real environment win.
func LoadEnvFiles(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// DefaultPath returns the config file location: $CONTACT_INBOX_CONFIG, else
// $XDG_CONFIG_HOME/contact-inbox/config.yaml (falling back to ~/.config).
func DefaultPath() string {
	if p := os.Getenv(ConfigPathEnv); p != "" {
		return p
	}

	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "config.yaml"
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "contact-inbox", "config.yaml")
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(envVarPattern.FindStringSubmatch(match)[1])
	})
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	if cfg.Admin.SessionTTLRaw != "" {
		ttl, err := time.ParseDuration(cfg.Admin.SessionTTLRaw)
		if err != nil {
			return fmt.Errorf("parsing session_ttl %q: %w", cfg.Admin.SessionTTLRaw, err)
		}
		cfg.Admin.SessionTTL = ttl
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = DefaultDriver
	}
	if cfg.Admin.Secret == "" {
		cfg.Admin.Secret = os.Getenv(AdminSecretEnv)
	}
	cfg.Admin.Secret = strings.TrimSpace(cfg.Admin.Secret)
	if cfg.Admin.SessionTTL == 0 {
		cfg.Admin.SessionTTL = DefaultSessionTTL
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLogFormat
	}
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
// A missing admin secret is allowed; logins fail until one is set.
func (c *Config) Validate() error {
	if !c.Tailscale.Enabled && c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required (or enable tailscale)")
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	switch c.Database.Driver {
	case "sqlite", "sqlite3":
	default:
		return fmt.Errorf("database.driver must be \"sqlite\" or \"sqlite3\", got %q", c.Database.Driver)
	}

	if c.Admin.SessionTTL < 0 {
		return fmt.Errorf("admin.session_ttl must be positive")
	}

	if err := c.Notify.Matrix.validate(); err != nil {
		return err
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}

	return nil
}

func (m MatrixConfig) validate() error {
	if !m.Enabled {
		return nil
	}
	if m.Homeserver == "" {
		return fmt.Errorf("notify.matrix.homeserver is required when matrix is enabled")
	}
	u, err := url.Parse(m.Homeserver)
	if err != nil {
		return fmt.Errorf("notify.matrix.homeserver is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("notify.matrix.homeserver must use http or https scheme")
	}
	if m.UserID == "" {
		return fmt.Errorf("notify.matrix.user_id is required when matrix is enabled")
	}
	if m.AccessToken == "" {
		return fmt.Errorf("notify.matrix.access_token is required when matrix is enabled")
	}
	if m.RoomID == "" {
		return fmt.Errorf("notify.matrix.room_id is required when matrix is enabled")
	}
	return nil
}
