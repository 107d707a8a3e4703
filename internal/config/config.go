package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type WalletConfig struct {
	Address string `yaml:"address"` // Seeds the stored mining address when none is saved yet
}

type EndpointsConfig struct {
	PoolURL      string        `yaml:"pool_url"`     // solo.ckpool.org; users are at {pool_url}/users/{address}
	PriceURL     string        `yaml:"price_url"`    // BTC-USD spot price
	ExplorerURL  string        `yaml:"explorer_url"` // mempool.space-style API root
	PoolSlug     string        `yaml:"pool_slug"`    // explorer's identifier for the monitored pool
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
	UserAgent    string        `yaml:"user_agent"`
}

type RefreshConfig struct {
	Interval time.Duration `yaml:"interval"` // 0 disables the loop (host drives refreshes)
	OnBoot   bool          `yaml:"on_boot"`
}

type StoreConfig struct {
	Backend       string `yaml:"backend"` // "sqlite", "redis" or "memory"
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
}

type APIConfig struct {
	Enabled bool   `yaml:"enabled"`
	Port    int    `yaml:"port"`
	Bind    string `yaml:"bind"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type Config struct {
	DataDir   string          `yaml:"data_dir"`
	Wallet    WalletConfig    `yaml:"wallet"`
	Endpoints EndpointsConfig `yaml:"endpoints"`
	Refresh   RefreshConfig   `yaml:"refresh"`
	Store     StoreConfig     `yaml:"store"`
	API       APIConfig       `yaml:"api"`
	Log       LogConfig       `yaml:"log"`
}

func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		DataDir: filepath.Join(home, ".ckwidget"),
		Endpoints: EndpointsConfig{
			PoolURL:      "https://solo.ckpool.org",
			PriceURL:     "https://api.coinbase.com/v2/prices/BTC-USD/spot",
			ExplorerURL:  "https://mempool.space/api",
			PoolSlug:     "solock",
			FetchTimeout: 15 * time.Second,
			UserAgent:    "ckwidget/0.1",
		},
		Refresh: RefreshConfig{
			Interval: 30 * time.Minute, // Android's minimum widget update period
			OnBoot:   true,
		},
		Store: StoreConfig{
			Backend:   "sqlite",
			RedisAddr: "127.0.0.1:6379",
		},
		API: APIConfig{
			Enabled: true,
			Port:    8412,
			Bind:    "127.0.0.1",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML config file and merges it with defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// No config file — use defaults + env overlay
			cfg.applyEnv()
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	// Expand ~ in data_dir
	if len(cfg.DataDir) > 0 && cfg.DataDir[0] == '~' {
		home, _ := os.UserHomeDir()
		cfg.DataDir = filepath.Join(home, cfg.DataDir[1:])
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overlays environment variables on top of config values.
func (c *Config) applyEnv() {
	if v := os.Getenv("CKWIDGET_ADDRESS"); v != "" {
		c.Wallet.Address = v
	}
	if v := os.Getenv("CKWIDGET_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("CKWIDGET_POOL_URL"); v != "" {
		c.Endpoints.PoolURL = v
	}
	if v := os.Getenv("CKWIDGET_PRICE_URL"); v != "" {
		c.Endpoints.PriceURL = v
	}
	if v := os.Getenv("CKWIDGET_EXPLORER_URL"); v != "" {
		c.Endpoints.ExplorerURL = v
	}
	if v := os.Getenv("CKWIDGET_REDIS_ADDR"); v != "" {
		c.Store.RedisAddr = v
	}
}

// LoadFromBytes parses YAML config from bytes and merges with defaults.
// Used by the mobile package where there's no config file on disk.
func LoadFromBytes(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

// DBPath returns the full path to the SQLite database file.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "ckwidget.db")
}

// Debug reports whether per-fetch debug logging is enabled.
func (c *Config) Debug() bool {
	return c.Log.Level == "debug"
}
