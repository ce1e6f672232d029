package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App       AppConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Logger    LoggerConfig
	Auth      AuthConfig
	Telephony TelephonyConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// TelephonyConfig holds messaging provider credentials and webhook
// wiring for provisioned relay numbers.
type TelephonyConfig struct {
	AccountSID              string
	AuthToken               string
	FromNumber              string
	APIBaseURL              string
	CountryCode             string
	SMSWebhookURL           string
	VoiceWebhookURL         string
	VoiceAnnouncementURL    string
	ProvisionTimeoutSeconds int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "rental-relay-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		Telephony: TelephonyConfig{
			AccountSID:              os.Getenv("TWILIO_ACCOUNT_SID"),
			AuthToken:               os.Getenv("TWILIO_AUTH_TOKEN"),
			FromNumber:              os.Getenv("TWILIO_NUMBER"),
			APIBaseURL:              getEnv("TWILIO_API_BASE_URL", "https://api.twilio.com"),
			CountryCode:             getEnv("TWILIO_NUMBER_COUNTRY", "US"),
			SMSWebhookURL:           os.Getenv("RELAY_SMS_WEBHOOK_URL"),
			VoiceWebhookURL:         os.Getenv("RELAY_VOICE_WEBHOOK_URL"),
			VoiceAnnouncementURL:    getEnv("RELAY_VOICE_ANNOUNCEMENT_URL", "http://howtodocs.s3.amazonaws.com/howdy-tng.mp3"),
			ProvisionTimeoutSeconds: getEnvAsInt("TELEPHONY_PROVISION_TIMEOUT_SECONDS", 10),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// ProvisionTimeout bounds the blocking number purchase call.
func (t TelephonyConfig) ProvisionTimeout() time.Duration {
	if t.ProvisionTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(t.ProvisionTimeoutSeconds) * time.Second
}

// Validate reports fatal misconfiguration. Missing provider
// credentials are unrecoverable at startup rather than per-request.
func (t TelephonyConfig) Validate() error {
	if t.AccountSID == "" || t.AuthToken == "" {
		return fmt.Errorf("telephony credentials missing: set TWILIO_ACCOUNT_SID and TWILIO_AUTH_TOKEN")
	}
	if t.FromNumber == "" {
		return fmt.Errorf("TWILIO_NUMBER missing")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
