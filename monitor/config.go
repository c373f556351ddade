package monitor

import (
	"github.com/vpacheco/sentinela/monitor/internal/config"
)

// Config is the top-level monitor configuration. Re-exported from internal.
type Config = config.Config

// SiteConfig declares one monitored page.
type SiteConfig = config.SiteConfig

// ExtractConfig selects the normalization policy.
type ExtractConfig = config.ExtractConfig

// BrowserConfig tunes rendering and the retry policy.
type BrowserConfig = config.BrowserConfig

// NotifyConfig declares notification targets.
type NotifyConfig = config.NotifyConfig

// ErrConfig marks a fatal pre-run configuration error.
var ErrConfig = config.ErrConfig

// LoadConfigFile reads a YAML configuration file, applying defaults and
// merging credential environment variables.
func LoadConfigFile(path string) (*Config, error) {
	return config.LoadFile(path)
}

// DefaultConfig returns a configuration with all tunables at their
// defaults and no sites.
func DefaultConfig() *Config {
	return config.Default()
}
