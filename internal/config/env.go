package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	devSessionSecret = "dev-only-session-secret-change-me-please"
)

type DBConfig struct {
	DSN             string
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	MaxOpenConns    int `validate:"gte=1"`
	MaxIdleConns    int `validate:"gte=0"`
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	// AutoMigrate applies pending migrations when the server starts.
	AutoMigrate     bool
}

type SessionConfig struct {
	Secret       string        `validate:"required"`
	TTL          time.Duration `validate:"gt=0"`
	CookieName   string        `validate:"required"`
	CookieSecure bool
	CookieDomain string
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	Currency      string `validate:"len=3"`
	SuccessURL    string
	CancelURL     string
}

type CacheConfig struct {
	TTL  time.Duration `validate:"gt=0"`
	Size int           `validate:"gte=1"`
}

// RatePolicy is one named counting window.
type RatePolicy struct {
	Limit  int           `validate:"gte=1"`
	Window time.Duration `validate:"gt=0"`
}

type RateLimitConfig struct {
	Enabled  bool
	Capacity int `validate:"gte=1"`
	Public   RatePolicy
	Forms    RatePolicy
	Login    RatePolicy
}

type StorageConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	UseSSL        bool
	PublicBaseURL string
}

type UploadConfig struct {
	MaxBytes int64 `validate:"gte=1024"`
}

type MailConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	From        string
	NotifyEmail string
}

type I18nConfig struct {
	Dir           string
	DefaultLocale string `validate:"required"`
}

type LogConfig struct {
	Level      string `validate:"oneof=debug info warning error"`
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

type Env struct {
	AppEnv         string `validate:"oneof=development production test"`
	AppAddr        string `validate:"required"`
	GinMode        string
	PublicBaseURL  string
	CORSOrigins    []string
	TrustedProxies []string

	DB        DBConfig
	Session   SessionConfig
	Stripe    StripeConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	Storage   StorageConfig
	Upload    UploadConfig
	Mail      MailConfig
	I18n      I18nConfig
	Log       LogConfig
}

func LoadEnv() Env {
	publicURL := strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:3000"), "/")

	return Env{
		AppEnv:         strings.ToLower(getEnv("APP_ENV", EnvDevelopment)),
		AppAddr:        getEnv("APP_ADDR", ":8080"),
		GinMode:        getEnv("GIN_MODE", ""),
		PublicBaseURL:  publicURL,
		CORSOrigins:    getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://127.0.0.1:3000"}),
		TrustedProxies: getEnvList("TRUSTED_PROXIES", nil),
		DB: DBConfig{
			DSN:             getEnv("DB_DSN", ""),
			Host:            getEnv("DB_HOST", "127.0.0.1"),
			Port:            getEnv("DB_PORT", "3306"),
			User:            getEnv("DB_USER", "root"),
			Password:        getEnv("DB_PASSWORD", ""),
			Name:            getEnv("DB_NAME", "travel_agency"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 25),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 10*time.Minute),
			ConnMaxIdleTime: getEnvDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
			AutoMigrate:     getEnvBool("DB_AUTO_MIGRATE", false),
		},
		Session: SessionConfig{
			Secret:       getEnv("SESSION_SECRET", devSessionSecret),
			TTL:          getEnvDuration("SESSION_TTL", 12*time.Hour),
			CookieName:   getEnv("SESSION_COOKIE_NAME", "admin_session"),
			CookieSecure: getEnvBool("SESSION_COOKIE_SECURE", false),
			CookieDomain: getEnv("SESSION_COOKIE_DOMAIN", ""),
		},
		Stripe: StripeConfig{
			SecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
			Currency:      strings.ToLower(getEnv("STRIPE_CURRENCY", "usd")),
			SuccessURL:    getEnv("CHECKOUT_SUCCESS_URL", publicURL+"/booking/success?session_id={CHECKOUT_SESSION_ID}"),
			CancelURL:     getEnv("CHECKOUT_CANCEL_URL", publicURL+"/booking/cancelled"),
		},
		Cache: CacheConfig{
			TTL:  getEnvDuration("CACHE_TTL", 5*time.Minute),
			Size: getEnvInt("CACHE_SIZE", 512),
		},
		RateLimit: RateLimitConfig{
			Enabled:  getEnvBool("RATE_LIMIT_ENABLED", true),
			Capacity: getEnvInt("RATE_LIMIT_CAPACITY", 10000),
			Public: RatePolicy{
				Limit:  getEnvInt("RATE_LIMIT_PUBLIC", 60),
				Window: getEnvDuration("RATE_LIMIT_PUBLIC_WINDOW", time.Minute),
			},
			Forms: RatePolicy{
				Limit:  getEnvInt("RATE_LIMIT_FORMS", 10),
				Window: getEnvDuration("RATE_LIMIT_FORMS_WINDOW", 10*time.Minute),
			},
			Login: RatePolicy{
				Limit:  getEnvInt("RATE_LIMIT_LOGIN", 5),
				Window: getEnvDuration("RATE_LIMIT_LOGIN_WINDOW", time.Minute),
			},
		},
		Storage: StorageConfig{
			Endpoint:      getEnv("MINIO_ENDPOINT", ""),
			AccessKey:     getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey:     getEnv("MINIO_SECRET_KEY", ""),
			Bucket:        getEnv("MINIO_BUCKET", "travel-media"),
			UseSSL:        getEnvBool("MINIO_USE_SSL", false),
			PublicBaseURL: strings.TrimRight(getEnv("STORAGE_PUBLIC_BASE_URL", ""), "/"),
		},
		Upload: UploadConfig{
			MaxBytes: int64(getEnvInt("UPLOAD_MAX_BYTES", 5<<20)),
		},
		Mail: MailConfig{
			Host:        getEnv("SMTP_HOST", ""),
			Port:        getEnvInt("SMTP_PORT", 587),
			Username:    getEnv("SMTP_USERNAME", ""),
			Password:    getEnv("SMTP_PASSWORD", ""),
			From:        getEnv("SMTP_FROM", "no-reply@localhost"),
			NotifyEmail: getEnv("NOTIFY_EMAIL", ""),
		},
		I18n: I18nConfig{
			Dir:           getEnv("I18N_DIR", ""),
			DefaultLocale: strings.ToLower(getEnv("DEFAULT_LOCALE", "en")),
		},
		Log: LogConfig{
			Level:      strings.ToLower(getEnv("LOG_LEVEL", "info")),
			File:       getEnv("LOG_FILE", ""),
			MaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 50),
			MaxBackups: getEnvInt("LOG_MAX_BACKUPS", 5),
			MaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 28),
		},
	}
}

// Validate checks struct constraints plus the rules that only apply in production.
func (e Env) Validate() error {
	if err := validator.New().Struct(e); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if e.IsProduction() {
		if len(e.Session.Secret) < 32 || e.Session.Secret == devSessionSecret {
			return fmt.Errorf("SESSION_SECRET must be at least 32 bytes in production")
		}
		if e.Stripe.SecretKey == "" || e.Stripe.WebhookSecret == "" {
			return fmt.Errorf("STRIPE_SECRET_KEY and STRIPE_WEBHOOK_SECRET are required in production")
		}
		if !e.Session.CookieSecure {
			return fmt.Errorf("SESSION_COOKIE_SECURE must be enabled in production")
		}
	}
	return nil
}

func (e Env) IsProduction() bool {
	return e.AppEnv == EnvProduction
}

// MySQLDSN returns DB_DSN when set, otherwise builds one from the parts.
func (c DBConfig) MySQLDSN() string {
	if strings.TrimSpace(c.DSN) != "" {
		return c.DSN
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&loc=UTC&charset=utf8mb4&multiStatements=true&clientFoundRows=true&timeout=5s&readTimeout=30s&writeTimeout=30s",
		c.User, c.Password, c.Host, c.Port, c.Name)
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getEnvList(key string, def []string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	out := []string{}
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
