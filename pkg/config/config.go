package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides, e.g. FUNDLENS_TUSHARE_TOKEN.
// Unprefixed names such as TUSHARE_TOKEN are accepted as a fallback.
const EnvPrefix = "FUNDLENS"

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		RateLimit       struct {
			Capacity     float64 `yaml:"capacity"`
			RefillPerSec float64 `yaml:"refill_per_sec"`
		} `yaml:"rate_limit"`
	} `yaml:"server"`
	Metrics struct {
		Enabled       bool          `yaml:"enabled"`
		Path          string        `yaml:"path"`
		SlowThreshold time.Duration `yaml:"slow_threshold"`
	} `yaml:"metrics"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
	Tushare struct {
		Token         string        `yaml:"token"`
		BaseURL       string        `yaml:"base_url"`
		Timeout       time.Duration `yaml:"timeout"`
		RatePerMinute int           `yaml:"rate_per_minute"`
		Burst         int           `yaml:"burst"`
		Retries       int           `yaml:"retries"`
	} `yaml:"tushare"`
	Cache struct {
		Backend       string        `yaml:"backend"`
		SeriesTTL     time.Duration `yaml:"series_ttl"`
		StaticTTL     time.Duration `yaml:"static_ttl"`
		MemoryMaxSize int           `yaml:"memory_max_size"`
		Redis         struct {
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Analysis struct {
		ShortWindow      int               `yaml:"short_window"`
		LongWindow       int               `yaml:"long_window"`
		RSIWindow        int               `yaml:"rsi_window"`
		RollingWindow    int               `yaml:"rolling_window"`
		DefaultBenchmark string            `yaml:"default_benchmark"`
		Indicators       []string          `yaml:"indicators"`
		Benchmarks       map[string]string `yaml:"benchmarks"`
	} `yaml:"analysis"`
}

type envOverrides struct {
	Environment   string `envconfig:"APP_ENV"`
	Port          int    `envconfig:"PORT"`
	LogLevel      string `envconfig:"LOG_LEVEL"`
	TushareToken  string `envconfig:"TUSHARE_TOKEN"`
	TushareURL    string `envconfig:"TUSHARE_URL"`
	CacheBackend  string `envconfig:"CACHE_BACKEND"`
	RedisHost     string `envconfig:"REDIS_HOST"`
	RedisPort     int    `envconfig:"REDIS_PORT"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
}

// Load reads, defaults and validates a YAML configuration file.
func Load(path string) (*Config, error) {
	c, err := read(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables before validating.
func LoadWithEnv(path string) (*Config, error) {
	c, err := read(path)
	if err != nil {
		return nil, err
	}

	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	c.applyEnv(env)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func read(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.ApplyDefaults()
	return &c, nil
}

func (c *Config) applyEnv(env envOverrides) {
	if env.Environment != "" {
		c.Environment = env.Environment
	}
	if env.Port != 0 {
		c.Server.Port = env.Port
	}
	if env.LogLevel != "" {
		c.Log.Level = env.LogLevel
	}
	if env.TushareToken != "" {
		c.Tushare.Token = env.TushareToken
	}
	if env.TushareURL != "" {
		c.Tushare.BaseURL = env.TushareURL
	}
	if env.CacheBackend != "" {
		c.Cache.Backend = env.CacheBackend
	}
	if env.RedisHost != "" {
		c.Cache.Redis.Host = env.RedisHost
	}
	if env.RedisPort != 0 {
		c.Cache.Redis.Port = env.RedisPort
	}
	if env.RedisPassword != "" {
		c.Cache.Redis.Password = env.RedisPassword
	}
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.RateLimit.Capacity == 0 {
		c.Server.RateLimit.Capacity = 20
	}
	if c.Server.RateLimit.RefillPerSec == 0 {
		c.Server.RateLimit.RefillPerSec = 2
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Log.Output == "" {
		c.Log.Output = "stdout"
	}
	if c.Tushare.BaseURL == "" {
		c.Tushare.BaseURL = "http://api.tushare.pro"
	}
	if c.Tushare.Timeout == 0 {
		c.Tushare.Timeout = 15 * time.Second
	}
	if c.Tushare.RatePerMinute == 0 {
		c.Tushare.RatePerMinute = 200
	}
	if c.Tushare.Burst == 0 {
		c.Tushare.Burst = 5
	}
	if c.Tushare.Retries == 0 {
		c.Tushare.Retries = 3
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = "memory"
	}
	if c.Cache.SeriesTTL == 0 {
		c.Cache.SeriesTTL = time.Hour
	}
	if c.Cache.StaticTTL == 0 {
		c.Cache.StaticTTL = 24 * time.Hour
	}
	if c.Cache.MemoryMaxSize == 0 {
		c.Cache.MemoryMaxSize = 500
	}
	if c.Cache.Redis.Port == 0 {
		c.Cache.Redis.Port = 6379
	}
	if c.Cache.Redis.Prefix == "" {
		c.Cache.Redis.Prefix = "fundlens"
	}
	if c.Analysis.ShortWindow == 0 {
		c.Analysis.ShortWindow = 20
	}
	if c.Analysis.LongWindow == 0 {
		c.Analysis.LongWindow = 60
	}
	if c.Analysis.RSIWindow == 0 {
		c.Analysis.RSIWindow = 14
	}
	if c.Analysis.RollingWindow == 0 {
		c.Analysis.RollingWindow = 60
	}
	if c.Analysis.DefaultBenchmark == "" {
		c.Analysis.DefaultBenchmark = "000300.SH"
	}
	if len(c.Analysis.Benchmarks) == 0 {
		c.Analysis.Benchmarks = map[string]string{
			"沪深300": "000300.SH",
			"中证500": "000905.SH",
			"上证50":  "000016.SH",
			"创业板指":  "399006.SZ",
		}
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Tushare.Token == "" {
		return fmt.Errorf("tushare.token is required (or set %s_TUSHARE_TOKEN)", EnvPrefix)
	}
	switch c.Cache.Backend {
	case "memory", "redis", "layered":
	default:
		return fmt.Errorf("cache.backend must be 'memory', 'redis' or 'layered', got '%s'", c.Cache.Backend)
	}
	if (c.Cache.Backend == "redis" || c.Cache.Backend == "layered") && c.Cache.Redis.Host == "" {
		return fmt.Errorf("cache.redis.host is required for backend %s", c.Cache.Backend)
	}
	a := c.Analysis
	if a.ShortWindow < 2 || a.ShortWindow >= a.LongWindow {
		return fmt.Errorf("analysis windows must satisfy 2 <= short_window < long_window, got %d/%d", a.ShortWindow, a.LongWindow)
	}
	if a.RSIWindow < 2 {
		return fmt.Errorf("analysis.rsi_window must be at least 2")
	}
	if a.RollingWindow < 2 {
		return fmt.Errorf("analysis.rolling_window must be at least 2")
	}
	return nil
}
