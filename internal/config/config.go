// Package config loads the monitor configuration from an optional TOML
// file plus CWM_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// API configures the authoritative usage endpoint. An empty token leaves
// the engine running on observed traffic alone.
type API struct {
	BaseURL  string        `mapstructure:"base_url"`
	OrgID    string        `mapstructure:"org_id"`
	Token    string        `mapstructure:"token"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type Config struct {
	StatePath     string        `mapstructure:"state_path"`
	PlansPath     string        `mapstructure:"plans_path"`
	WatchInterval time.Duration `mapstructure:"watch_interval"`
	Notifications bool          `mapstructure:"notifications"`
	Debug         bool          `mapstructure:"debug"`
	API           API           `mapstructure:"api"`
}

const minCacheTTL = 30 * time.Second

// CWM_API_BASE_URL maps onto api.base_url, and so on.
var envKeyReplacer = strings.NewReplacer(".", "_")

// Load reads configuration into v and decodes it. A missing config file
// is not an error; every setting has a default.
func Load(v *viper.Viper) (Config, error) {
	if v == nil {
		v = viper.New()
	}

	dataDir, err := defaultDataDir()
	if err != nil {
		return Config{}, err
	}

	v.SetDefault("state_path", filepath.Join(dataDir, "state.json"))
	v.SetDefault("plans_path", filepath.Join(dataDir, "plans.toml"))
	v.SetDefault("watch_interval", time.Second)
	v.SetDefault("notifications", true)
	v.SetDefault("debug", false)
	v.SetDefault("api.base_url", "https://claude.ai/api")
	v.SetDefault("api.org_id", "")
	v.SetDefault("api.token", "")
	v.SetDefault("api.cache_ttl", minCacheTTL)

	v.SetEnvPrefix("CWM")
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()

	if path := os.Getenv("CWM_CONFIG"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(dataDir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if cfg.WatchInterval < time.Second {
		cfg.WatchInterval = time.Second
	}
	if cfg.API.CacheTTL < minCacheTTL {
		cfg.API.CacheTTL = minCacheTTL
	}

	return cfg, nil
}

func defaultDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".cwm"), nil
}
