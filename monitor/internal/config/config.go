// Package config handles monitor configuration: a YAML file for everything
// declarative (sites, tunables, notifier targets) plus environment
// variables for SMTP credentials, which never live in a file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrConfig marks a fatal pre-run configuration error. Nothing is retried;
// the process must refuse to start.
var ErrConfig = errors.New("config: invalid configuration")

// Environment variables consulted at load time.
const (
	EnvSMTPUser     = "SENTINELA_SMTP_USER"
	EnvSMTPPassword = "SENTINELA_SMTP_PASSWORD"
	EnvRecipients   = "SENTINELA_RECIPIENTS"
)

// Config is the top-level monitor configuration.
type Config struct {
	DataDir  string        `yaml:"data_dir"`
	Timezone string        `yaml:"timezone"`
	Sites    []SiteConfig  `yaml:"sites"`
	Extract  ExtractConfig `yaml:"extract"`
	Browser  BrowserConfig `yaml:"browser"`
	// SitePause is the pause between sites, easing load on the shared
	// engine and the target servers.
	SitePause time.Duration `yaml:"site_pause"`
	Notify    NotifyConfig  `yaml:"notify"`
}

// SiteConfig declares one monitored page.
type SiteConfig struct {
	URL  string `yaml:"url"`
	Name string `yaml:"name"`
	// Mode overrides the global extraction mode for this site.
	Mode string `yaml:"mode"`
}

// ExtractConfig selects the normalization policy.
type ExtractConfig struct {
	Mode string `yaml:"mode"` // full | headings
}

// BrowserConfig tunes rendering and the retry policy.
type BrowserConfig struct {
	Remote           string        `yaml:"remote"`
	NavTimeout       time.Duration `yaml:"nav_timeout"`
	BodyWait         time.Duration `yaml:"body_wait"`
	Settle           time.Duration `yaml:"settle"`
	MinHTMLBytes     int           `yaml:"min_html_bytes"`
	Attempts         int           `yaml:"attempts"`
	Backoff          time.Duration `yaml:"backoff"`
	ResourceBlocking []string      `yaml:"resource_blocking"`
}

// NotifyConfig declares notification targets.
type NotifyConfig struct {
	Email   EmailConfig   `yaml:"email"`
	Webhook WebhookConfig `yaml:"webhook"`
	Stdout  bool          `yaml:"stdout"`
}

// EmailConfig declares SMTP submission. User and Password are filled from
// the environment, never parsed from YAML.
type EmailConfig struct {
	Enabled    bool     `yaml:"enabled"`
	Host       string   `yaml:"host"`
	Port       int      `yaml:"port"`
	From       string   `yaml:"from"`
	Recipients []string `yaml:"recipients"`

	User     string `yaml:"-"`
	Password string `yaml:"-"`
}

// WebhookConfig declares a webhook notification target.
type WebhookConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
}

// LoadFile reads a YAML configuration file, applies defaults, and merges
// credential environment variables.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrConfig, path, err)
	}

	cfg.applyDefaults()
	cfg.mergeEnv()
	return &cfg, nil
}

// Default returns a configuration with every tunable at its default,
// credentials merged from the environment, and no sites.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	cfg.mergeEnv()
	return &cfg
}

func (c *Config) applyDefaults() {
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.Timezone == "" {
		c.Timezone = "America/Sao_Paulo"
	}
	if c.Extract.Mode == "" {
		c.Extract.Mode = "full"
	}
	if c.Browser.NavTimeout <= 0 {
		c.Browser.NavTimeout = 30 * time.Second
	}
	if c.Browser.BodyWait <= 0 {
		c.Browser.BodyWait = 15 * time.Second
	}
	if c.Browser.Settle <= 0 {
		c.Browser.Settle = 8 * time.Second
	}
	if c.Browser.MinHTMLBytes <= 0 {
		c.Browser.MinHTMLBytes = 5000
	}
	if c.Browser.Attempts <= 0 {
		c.Browser.Attempts = 3
	}
	if c.Browser.Backoff <= 0 {
		c.Browser.Backoff = 5 * time.Second
	}
	if c.Browser.ResourceBlocking == nil {
		c.Browser.ResourceBlocking = []string{"images", "stylesheets", "fonts", "media"}
	}
	if c.SitePause <= 0 {
		c.SitePause = 2 * time.Second
	}
	if c.Notify.Email.Port <= 0 {
		c.Notify.Email.Port = 587
	}
}

func (c *Config) mergeEnv() {
	c.Notify.Email.User = os.Getenv(EnvSMTPUser)
	c.Notify.Email.Password = os.Getenv(EnvSMTPPassword)
	if len(c.Notify.Email.Recipients) == 0 {
		if env := os.Getenv(EnvRecipients); env != "" {
			for _, r := range strings.Split(env, ",") {
				if r = strings.TrimSpace(r); r != "" {
					c.Notify.Email.Recipients = append(c.Notify.Email.Recipients, r)
				}
			}
		}
	}
	if c.Notify.Email.From == "" {
		c.Notify.Email.From = c.Notify.Email.User
	}
}

// Validate checks for fatal misconfiguration. Any error here aborts the
// process before the run starts — there is no partial operation.
func (c *Config) Validate() error {
	if len(c.Sites) == 0 {
		return fmt.Errorf("%w: no sites configured", ErrConfig)
	}
	for i, s := range c.Sites {
		if s.URL == "" {
			return fmt.Errorf("%w: site %d has no url", ErrConfig, i)
		}
		switch s.Mode {
		case "", "full", "headings":
		default:
			return fmt.Errorf("%w: site %d: unknown extract mode %q", ErrConfig, i, s.Mode)
		}
	}
	switch c.Extract.Mode {
	case "full", "headings":
	default:
		return fmt.Errorf("%w: unknown extract mode %q", ErrConfig, c.Extract.Mode)
	}

	if c.Notify.Email.Enabled {
		e := c.Notify.Email
		if e.Host == "" {
			return fmt.Errorf("%w: email enabled but host missing", ErrConfig)
		}
		if e.User == "" || e.Password == "" {
			return fmt.Errorf("%w: email enabled but %s/%s not set",
				ErrConfig, EnvSMTPUser, EnvSMTPPassword)
		}
		if len(e.Recipients) == 0 {
			return fmt.Errorf("%w: email enabled but no recipients (config or %s)",
				ErrConfig, EnvRecipients)
		}
	}
	if c.Notify.Webhook.Enabled && c.Notify.Webhook.URL == "" {
		return fmt.Errorf("%w: webhook enabled but url missing", ErrConfig)
	}

	if _, err := c.Location(); err != nil {
		return fmt.Errorf("%w: timezone %q: %v", ErrConfig, c.Timezone, err)
	}
	return nil
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}
