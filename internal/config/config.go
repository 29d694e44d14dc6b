package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Environment string `toml:"-"`

	Host string `toml:"host"`
	Port int    `toml:"port"`

	AllowedOrigins []string `toml:"allowed_origins"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// metrics
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`

	// redis
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`

	// agent api
	AgentApiURL           string `toml:"agent_api_url"`
	AgentAppName          string `toml:"agent_app_name"`
	AgentTimeoutSeconds   int    `toml:"agent_timeout_seconds"`
	AgentTokenStreaming   bool   `toml:"agent_token_streaming"`
	PlanRateLimitPerMin   int    `toml:"plan_rate_limit_per_min"`
	PlanCacheTTLMinutes   int    `toml:"plan_cache_ttl_minutes"`
	VideosDir             string `toml:"videos_dir"`
	PlanStatusIntervalSec int    `toml:"plan_status_interval_sec"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
	case "prod", "production":
		cfg = t.Production
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
	if cfg == nil {
		return nil, fmt.Errorf("no config section for env: %s", env)
	}
	cfg.Environment = strings.ToLower(env)
	cfg.setDefaults()
	return cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "dev" || c.Environment == "development"
}

func (c *Config) setDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 9000
	}
	if c.AgentApiURL == "" {
		c.AgentApiURL = "http://localhost:8000"
	}
	if c.AgentAppName == "" {
		c.AgentAppName = "root_agent"
	}
	if c.AgentTimeoutSeconds <= 0 {
		c.AgentTimeoutSeconds = 300
	}
	if c.PlanRateLimitPerMin <= 0 {
		c.PlanRateLimitPerMin = 10
	}
	if c.PlanCacheTTLMinutes <= 0 {
		c.PlanCacheTTLMinutes = 60
	}
	if c.PlanStatusIntervalSec <= 0 {
		c.PlanStatusIntervalSec = 1
	}
}

// Load reads the TOML file and returns the section for the given env.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config file %s: %w", path, err)
	}
	return t.Get(env)
}

// Env holds secrets and toggles that never go into the config file.
type Env struct {
	SentryDSN        string `env:"SENTRY_DSN"`
	RedisPassword    string `env:"WELLNESS_REDIS_PASS"`
	HoneycombEnabled bool   `env:"HONEYCOMB_ENABLED, default=false"`
	HoneycombApiKey  string `env:"HONEYCOMB_API_KEY"`
	OtelServiceName  string `env:"OTEL_SERVICE_NAME"`
	// overrides agent_api_url from the config file
	AgentApiURL    string `env:"AGENT_API_URL"`
	SkipOnboarding bool   `env:"WELLNESS_SKIP_ONBOARDING, default=false"`
}

func LoadEnv(ctx context.Context) (*Env, error) {
	return loadEnv(ctx, envconfig.OsLookuper())
}

func loadEnv(ctx context.Context, lookuper envconfig.Lookuper) (*Env, error) {
	var e Env
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &e,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	return &e, nil
}
