package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const defaultCallbackTokenHeader = "x-callback-token"

type Config struct {
	AppPort  string `mapstructure:"APP_PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	DatabaseURL string `mapstructure:"DATABASE_URL"`

	XenditSecretKey     string        `mapstructure:"XENDIT_SECRET_KEY"`
	XenditBaseURL       string        `mapstructure:"XENDIT_BASE_URL"`
	XenditCallbackToken string        `mapstructure:"XENDIT_CALLBACK_TOKEN"`
	PaymentCurrency     string        `mapstructure:"PAYMENT_CURRENCY"`
	ProviderTimeout     time.Duration `mapstructure:"PROVIDER_TIMEOUT"`

	FrontendURL        string `mapstructure:"FRONTEND_URL"`
	CORSAllowedOrigins string `mapstructure:"CORS_ALLOWED_ORIGINS"`
	RateLimitPerMinute int    `mapstructure:"RATE_LIMIT_PER_MINUTE"`
}

// Load reads .env (when present), an optional config.yaml and the process environment,
// in increasing order of precedence.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()

	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DATABASE_URL", "bookings.db")
	v.SetDefault("XENDIT_SECRET_KEY", "")
	v.SetDefault("XENDIT_BASE_URL", "https://api.xendit.co")
	v.SetDefault("XENDIT_CALLBACK_TOKEN", "")
	v.SetDefault("PAYMENT_CURRENCY", "PHP")
	v.SetDefault("PROVIDER_TIMEOUT", "15s")
	v.SetDefault("FRONTEND_URL", "http://localhost:5173")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "")
	v.SetDefault("RATE_LIMIT_PER_MINUTE", 60)
	// hosting platforms usually inject PORT
	_ = v.BindEnv("APP_PORT", "APP_PORT", "PORT")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	normalize(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return isProdLike(c.Env)
}

// CallbackTokenHeader is the header the provider uses to authenticate webhook deliveries.
func (c *Config) CallbackTokenHeader() string {
	return defaultCallbackTokenHeader
}

// AllowedOrigins returns the frontend origin plus any extra CORS origins, deduplicated.
func (c *Config) AllowedOrigins() []string {
	seen := map[string]bool{}
	var out []string
	add := func(o string) {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "" || seen[o] {
			return
		}
		seen[o] = true
		out = append(out, o)
	}
	add(c.FrontendURL)
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		add(o)
	}
	return out
}

func normalize(cfg *Config) {
	cfg.Env = strings.ToLower(strings.TrimSpace(cfg.Env))
	cfg.AppPort = strings.TrimPrefix(strings.TrimSpace(cfg.AppPort), ":")
	cfg.XenditSecretKey = strings.TrimSpace(cfg.XenditSecretKey)
	cfg.XenditCallbackToken = strings.TrimSpace(cfg.XenditCallbackToken)
	cfg.PaymentCurrency = strings.ToUpper(strings.TrimSpace(cfg.PaymentCurrency))
	cfg.FrontendURL = strings.TrimRight(strings.TrimSpace(cfg.FrontendURL), "/")
	cfg.XenditBaseURL = strings.TrimRight(strings.TrimSpace(cfg.XenditBaseURL), "/")
}

func validateConfig(cfg *Config) error {
	if cfg.XenditSecretKey == "" {
		return fmt.Errorf("XENDIT_SECRET_KEY must be set")
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.AppPort == "" {
		return fmt.Errorf("APP_PORT must not be empty")
	}
	if err := validateAbsURL("XENDIT_BASE_URL", cfg.XenditBaseURL); err != nil {
		return err
	}
	if err := validateAbsURL("FRONTEND_URL", cfg.FrontendURL); err != nil {
		return err
	}
	if len(cfg.PaymentCurrency) != 3 {
		return fmt.Errorf("PAYMENT_CURRENCY must be a 3-letter code, got %q", cfg.PaymentCurrency)
	}
	if cfg.ProviderTimeout <= 0 {
		return fmt.Errorf("PROVIDER_TIMEOUT must be > 0")
	}
	if cfg.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be > 0")
	}
	if isProdLike(cfg.Env) && cfg.XenditCallbackToken == "" {
		return fmt.Errorf("in production XENDIT_CALLBACK_TOKEN must be set")
	}
	return nil
}

func validateAbsURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s must be an absolute URL, got %q", name, raw)
	}
	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}
