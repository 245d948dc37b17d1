// Package config loads netrecon's operator-tunable configuration:
// application metadata, logging, the default scan profile, and the
// tunnel/evasion parameters spec.md §6 exposes as CLI flags. Adapted
// from the teacher's viper-backed Config/ConfigLoader, trimmed to the
// sections this engine actually has (no Database/Master/Middleware/
// Security — those belonged to the teacher's agent-fleet control
// plane, which this tool has no equivalent of).
package config

import (
	"fmt"
	"time"
)

// Config is the top-level configuration tree, unmarshaled from YAML
// by viper and overridable by NETRECON_-prefixed environment
// variables (see loader.go).
type Config struct {
	App    AppConfig    `yaml:"app" mapstructure:"app"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
	Scan   ScanConfig   `yaml:"scan" mapstructure:"scan"`
	Tunnel TunnelConfig `yaml:"tunnel" mapstructure:"tunnel"`
}

// AppConfig is application identity/environment metadata, kept for
// parity with the teacher's config shape even though this tool has no
// server mode of its own.
type AppConfig struct {
	Name        string `yaml:"name" mapstructure:"name"`
	Version     string `yaml:"version" mapstructure:"version"`
	Environment string `yaml:"environment" mapstructure:"environment"`
	Debug       bool   `yaml:"debug" mapstructure:"debug"`
}

// LogConfig is the same shape internal/adapters.LogConfig copies
// values into, kept here as the serializable form.
type LogConfig struct {
	Level      string `yaml:"level" mapstructure:"level"`
	Format     string `yaml:"format" mapstructure:"format"`
	Output     string `yaml:"output" mapstructure:"output"`
	FilePath   string `yaml:"file_path" mapstructure:"file_path"`
	MaxSize    int    `yaml:"max_size" mapstructure:"max_size"`
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAge     int    `yaml:"max_age" mapstructure:"max_age"`
	Compress   bool   `yaml:"compress" mapstructure:"compress"`
	Caller     bool   `yaml:"caller" mapstructure:"caller"`
}

// ScanConfig is the default scan profile: concurrency/rate, timeouts,
// and which techniques run when the CLI isn't told otherwise.
type ScanConfig struct {
	Concurrency int           `yaml:"concurrency" mapstructure:"concurrency"`
	Rate        int           `yaml:"rate" mapstructure:"rate"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
	TimeoutConnect time.Duration `yaml:"timeout_connect" mapstructure:"timeout_connect"`
	TimeoutBanner  time.Duration `yaml:"timeout_banner" mapstructure:"timeout_banner"`
	Techniques  []string      `yaml:"techniques" mapstructure:"techniques"`
	RandomDelay bool          `yaml:"random_delay" mapstructure:"random_delay"`
	MaxDelay    time.Duration `yaml:"max_delay" mapstructure:"max_delay"`
	Evasion     bool          `yaml:"evasion" mapstructure:"evasion"`
	BaseTTL     int           `yaml:"base_ttl" mapstructure:"base_ttl"`
	TTLJitter   int           `yaml:"ttl_jitter" mapstructure:"ttl_jitter"`
}

// TunnelConfig configures the DNS-tunnel/ICMP-tunnel covert probes
// and the fragmentation probe's packet-shaping parameters.
type TunnelConfig struct {
	DNSServer    string `yaml:"dns_server" mapstructure:"dns_server"`
	LookupDomain string `yaml:"lookup_domain" mapstructure:"lookup_domain"`

	FragMinSize  int           `yaml:"frag_min_size" mapstructure:"frag_min_size"`
	FragMaxSize  int           `yaml:"frag_max_size" mapstructure:"frag_max_size"`
	FragFirstMin int           `yaml:"frag_first_min" mapstructure:"frag_first_min"`
	FragTwoOnly  bool          `yaml:"frag_two_only" mapstructure:"frag_two_only"`
	FragMinDelay time.Duration `yaml:"frag_min_delay" mapstructure:"frag_min_delay"`
	FragMaxDelay time.Duration `yaml:"frag_max_delay" mapstructure:"frag_max_delay"`
	FragTimeout  time.Duration `yaml:"frag_timeout" mapstructure:"frag_timeout"`

	MimicProtocol string `yaml:"mimic_protocol" mapstructure:"mimic_protocol"`
	MimicVariant  string `yaml:"mimic_variant" mapstructure:"mimic_variant"`
}

// Validate checks the invariants a malformed config file or bad
// environment override could otherwise silently break at scan time.
func (c *Config) Validate() error {
	if c.Scan.Concurrency < 0 {
		return fmt.Errorf("scan.concurrency must not be negative: %d", c.Scan.Concurrency)
	}
	if c.Scan.Rate < 0 {
		return fmt.Errorf("scan.rate must not be negative: %d", c.Scan.Rate)
	}
	if c.Log.Output == "file" && c.Log.FilePath == "" {
		return fmt.Errorf("log.file_path is required when log.output is \"file\"")
	}
	return nil
}

// LoadConfig loads configPath (or the default search path if empty)
// through a ConfigLoader, applying defaults and environment overrides.
func LoadConfig(configPath string) (*Config, error) {
	loader := NewConfigLoader(configPath, "NETRECON")
	cfg, err := loader.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}
