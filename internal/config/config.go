package config

import (
	"errors"
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"

	"github.com/careloop/emr-gateway/internal/rules"
)

type ServerConfig struct {
	Port       int    `mapstructure:"port"`
	LogLevel   string `mapstructure:"log_level"`
	PrettyLogs bool   `mapstructure:"pretty_logs"`
}

type EMRConfig struct {
	BaseURL         string `mapstructure:"base_url"`
	Token           string `mapstructure:"token"`
	MockMode        bool   `mapstructure:"mock_mode"`
	TimeoutSeconds  int    `mapstructure:"timeout_seconds"`
	CacheTTLSeconds int    `mapstructure:"cache_ttl_seconds"`
}

type RedisConfig struct {
	URL     string `mapstructure:"url"`
	Channel string `mapstructure:"channel"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	To       string `mapstructure:"to"`
}

type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	EMR       EMRConfig       `mapstructure:"emr"`
	Redis     RedisConfig     `mapstructure:"redis"`
	SMTP      SMTPConfig      `mapstructure:"smtp"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Rules     rules.Table     `mapstructure:"rules"`
}

// envOverrides are the environment variables the deployment surface
// documents. Pointer fields distinguish "unset" from a zero value so the
// environment only overrides what it actually sets.
type envOverrides struct {
	Port       *int    `envconfig:"PORT"`
	EMRBaseURL *string `envconfig:"EMR_BASE_URL"`
	EMRToken   *string `envconfig:"EMR_API_TOKEN"`
	MockMode   *bool   `envconfig:"MOCK_MODE"`
	RedisURL   *string `envconfig:"REDIS_URL"`
	SMTPHost   *string `envconfig:"SMTP_HOST"`
	SMTPPort   *int    `envconfig:"SMTP_PORT"`
	SMTPUser   *string `envconfig:"SMTP_USERNAME"`
	SMTPPass   *string `envconfig:"SMTP_PASSWORD"`
	LogLevel   *string `envconfig:"LOG_LEVEL"`
}

// Load reads config.yaml when present, overlays environment variables and
// fills in the built-in rule table when none is configured.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	var env envOverrides
	if err := envconfig.Process("", &env); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	applyOverrides(&cfg, env)

	if len(cfg.Rules.Interactions) == 0 && len(cfg.Rules.Watchlist) == 0 {
		cfg.Rules = rules.DefaultTable()
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("emr.timeout_seconds", 5)
	v.SetDefault("emr.cache_ttl_seconds", 30)
	v.SetDefault("rate_limit.rps", 50)
	v.SetDefault("rate_limit.burst", 100)
	v.SetDefault("redis.channel", "emr-gateway.events")
}

func applyOverrides(cfg *Config, env envOverrides) {
	if env.Port != nil {
		cfg.Server.Port = *env.Port
	}
	if env.LogLevel != nil {
		cfg.Server.LogLevel = *env.LogLevel
	}
	if env.EMRBaseURL != nil {
		cfg.EMR.BaseURL = *env.EMRBaseURL
	}
	if env.EMRToken != nil {
		cfg.EMR.Token = *env.EMRToken
	}
	if env.MockMode != nil {
		cfg.EMR.MockMode = *env.MockMode
	}
	if env.RedisURL != nil {
		cfg.Redis.URL = *env.RedisURL
	}
	if env.SMTPHost != nil {
		cfg.SMTP.Host = *env.SMTPHost
	}
	if env.SMTPPort != nil {
		cfg.SMTP.Port = *env.SMTPPort
	}
	if env.SMTPUser != nil {
		cfg.SMTP.Username = *env.SMTPUser
	}
	if env.SMTPPass != nil {
		cfg.SMTP.Password = *env.SMTPPass
	}
}
