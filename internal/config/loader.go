package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// ConfigLoader wraps a *viper.Viper with netrecon's search path,
// defaults and env-var bindings. Adapted from the teacher's
// ConfigLoader — same viper-driven shape, fewer sections to bind.
type ConfigLoader struct {
	configPath string
	envPrefix  string
	viper      *viper.Viper
}

// NewConfigLoader creates a loader. An empty configPath falls back to
// the default search path (current directory, then ./configs, then
// /etc/netrecon).
func NewConfigLoader(configPath, envPrefix string) *ConfigLoader {
	if envPrefix == "" {
		envPrefix = "NETRECON"
	}
	return &ConfigLoader{
		configPath: configPath,
		envPrefix:  envPrefix,
		viper:      viper.New(),
	}
}

// Load reads the config file (if any), applies defaults, and binds
// NETRECON_-prefixed environment overrides, returning the unmarshaled
// Config.
func (cl *ConfigLoader) Load() (*Config, error) {
	cl.viper.SetConfigType("yaml")
	cl.viper.SetEnvPrefix(cl.envPrefix)
	cl.viper.AutomaticEnv()
	cl.viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cl.setDefaults()
	cl.bindEnvVars()

	if err := cl.readConfigFile(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := cl.viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func (cl *ConfigLoader) readConfigFile() error {
	if cl.configPath != "" {
		cl.viper.SetConfigFile(cl.configPath)
		if err := cl.viper.ReadInConfig(); err != nil {
			return fmt.Errorf("read config file %s: %w", cl.configPath, err)
		}
		return nil
	}

	cl.viper.SetConfigName("config")
	cl.viper.AddConfigPath(".")
	cl.viper.AddConfigPath("./configs")
	cl.viper.AddConfigPath("/etc/netrecon")

	if err := cl.viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// No config file anywhere on the search path is fine —
			// defaults plus environment overrides still produce a
			// usable Config.
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}
	return nil
}

func (cl *ConfigLoader) bindEnvVars() {
	_ = cl.viper.BindEnv("log.level", "NETRECON_LOG_LEVEL")
	_ = cl.viper.BindEnv("log.file_path", "NETRECON_LOG_FILE_PATH")
	_ = cl.viper.BindEnv("scan.concurrency", "NETRECON_SCAN_CONCURRENCY")
	_ = cl.viper.BindEnv("scan.rate", "NETRECON_SCAN_RATE")
	_ = cl.viper.BindEnv("tunnel.dns_server", "NETRECON_TUNNEL_DNS_SERVER")
}

func (cl *ConfigLoader) setDefaults() {
	cl.viper.SetDefault("app.name", "netrecon")
	cl.viper.SetDefault("app.version", "1.0.0")
	cl.viper.SetDefault("app.environment", "development")

	cl.viper.SetDefault("log.level", "info")
	cl.viper.SetDefault("log.format", "text")
	cl.viper.SetDefault("log.output", "stderr")
	cl.viper.SetDefault("log.max_size", 100)
	cl.viper.SetDefault("log.max_backups", 5)
	cl.viper.SetDefault("log.max_age", 30)

	cl.viper.SetDefault("scan.concurrency", 0) // 0 => sized from CPU count
	cl.viper.SetDefault("scan.rate", 0)        // 0 => random evasive burst
	cl.viper.SetDefault("scan.timeout", "3s")
	cl.viper.SetDefault("scan.timeout_connect", "2s")
	cl.viper.SetDefault("scan.timeout_banner", "2s")
	cl.viper.SetDefault("scan.techniques", []string{"syn"})
	cl.viper.SetDefault("scan.base_ttl", 64)
	cl.viper.SetDefault("scan.ttl_jitter", 0)

	cl.viper.SetDefault("tunnel.lookup_domain", "")
	cl.viper.SetDefault("tunnel.frag_min_size", 8)
	cl.viper.SetDefault("tunnel.frag_max_size", 24)
	cl.viper.SetDefault("tunnel.frag_first_min", 16)
	cl.viper.SetDefault("tunnel.frag_two_only", false)
	cl.viper.SetDefault("tunnel.frag_min_delay", "5ms")
	cl.viper.SetDefault("tunnel.frag_max_delay", "20ms")
	cl.viper.SetDefault("tunnel.frag_timeout", "3s")
}

// GetConfigPath reports the file viper actually read, or "" if none.
func (cl *ConfigLoader) GetConfigPath() string {
	return cl.viper.ConfigFileUsed()
}

// configFileExists is a small helper used by the watcher to avoid
// arming fsnotify against a path that was never loaded.
func configFileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
