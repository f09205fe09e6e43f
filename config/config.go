package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	Messaging MessagingConfig
}

type AppConfig struct {
	Port       string
	Env        string
	CORSOrigin string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	TimeZone string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret       string
	AccessExpiry time.Duration
}

type RateLimitConfig struct {
	RPS        float64
	Burst      int
	// TrustProxy keys buckets on X-Forwarded-For; only set behind a proxy that appends it
	TrustProxy bool
}

type MessagingConfig struct {
	DefaultCountryCode string
}

// ClientConfig configures the catalog/booking client used by vowsctl.
type ClientConfig struct {
	BackendURL               string
	RequestTimeout           time.Duration
	SearchDebounce           time.Duration
	AvailabilityRefreshDelay time.Duration
	SessionFile              string
	BookingMode              string
	DefaultCountryCode       string
}

// ErrMissingJWTSecret is returned when the server is started without a signing secret.
var ErrMissingJWTSecret = errors.New("JWT_SECRET must be set")

func newViper() (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	setDefaults(v)

	// A missing .env is fine, the environment alone is enough.
	if err := v.ReadInConfig(); err != nil {
		var pathErr *fs.PathError
		if !errors.As(err, &pathErr) {
			return nil, err
		}
	}

	return v, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8000")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("CORS_ALLOW_ORIGIN", "*")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_TIMEZONE", "UTC")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("RATE_LIMIT_RPS", 5)
	v.SetDefault("RATE_LIMIT_BURST", 10)
	v.SetDefault("RATE_LIMIT_TRUST_PROXY", false)
	v.SetDefault("DEFAULT_COUNTRY_CODE", "91")

	v.SetDefault("BACKEND_URL", "http://127.0.0.1:8000")
	v.SetDefault("REQUEST_TIMEOUT", "10s")
	v.SetDefault("SEARCH_DEBOUNCE", "500ms")
	v.SetDefault("AVAILABILITY_REFRESH_DELAY", "1s")
	v.SetDefault("BOOKING_MODE", "day")
}

func LoadConfig() (*Config, error) {
	v, err := newViper()
	if err != nil {
		return nil, err
	}

	accessExpiry, err := time.ParseDuration(v.GetString("JWT_ACCESS_EXPIRY"))
	if err != nil {
		accessExpiry = 24 * time.Hour
	}

	config := &Config{
		App: AppConfig{
			Port:       v.GetString("APP_PORT"),
			Env:        v.GetString("APP_ENV"),
			CORSOrigin: v.GetString("CORS_ALLOW_ORIGIN"),
		},
		DB: DBConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Name:     v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
			TimeZone: v.GetString("DB_TIMEZONE"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:       v.GetString("JWT_SECRET"),
			AccessExpiry: accessExpiry,
		},
		RateLimit: RateLimitConfig{
			RPS:        v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:      v.GetInt("RATE_LIMIT_BURST"),
			TrustProxy: v.GetBool("RATE_LIMIT_TRUST_PROXY"),
		},
		Messaging: MessagingConfig{
			DefaultCountryCode: v.GetString("DEFAULT_COUNTRY_CODE"),
		},
	}

	if config.JWT.Secret == "" {
		return nil, ErrMissingJWTSecret
	}

	return config, nil
}

func LoadClientConfig() (*ClientConfig, error) {
	v, err := newViper()
	if err != nil {
		return nil, err
	}

	return &ClientConfig{
		BackendURL:               strings.TrimRight(v.GetString("BACKEND_URL"), "/"),
		RequestTimeout:           v.GetDuration("REQUEST_TIMEOUT"),
		SearchDebounce:           v.GetDuration("SEARCH_DEBOUNCE"),
		AvailabilityRefreshDelay: v.GetDuration("AVAILABILITY_REFRESH_DELAY"),
		SessionFile:              v.GetString("SESSION_FILE"),
		BookingMode:              strings.ToLower(v.GetString("BOOKING_MODE")),
		DefaultCountryCode:       v.GetString("DEFAULT_COUNTRY_CODE"),
	}, nil
}
