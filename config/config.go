// File: /config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"info"`
	// Calendar days for streaks and the leaderboard month are computed here.
	AppTimezone string `envconfig:"APP_TIMEZONE" default:"Local"`

	DBDriver     string `envconfig:"DB_DRIVER" default:"mysql"`
	DatabaseURL  string `envconfig:"DATABASE_URL" default:"user:password@tcp(localhost:3306)/bragforgood?charset=utf8mb4&parseTime=True&loc=Local"`
	SeedExamples bool   `envconfig:"SEED_EXAMPLES" default:"false"`

	JWTSecret     string `envconfig:"JWT_SECRET" default:"your-secret-key"`
	SessionSecret string `envconfig:"SESSION_SECRET" default:"your-session-secret"`
	CORSOrigin    string `envconfig:"CORS_ORIGIN" default:"*"`

	// Rate limiting
	RateLimitBackend     string `envconfig:"RATE_LIMIT_BACKEND" default:"memory"`
	RedisAddr            string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword        string `envconfig:"REDIS_PASSWORD"`
	RedisDB              int    `envconfig:"REDIS_DB" default:"0"`
	RateLimitSweep       string `envconfig:"RATE_LIMIT_SWEEP" default:"@every 5m"`
	APIRequestsPerMinute int    `envconfig:"API_REQUESTS_PER_MINUTE" default:"300"`
	APIBurst             int    `envconfig:"API_BURST" default:"60"`

	SignupLimit     int           `envconfig:"LIMIT_SIGNUP" default:"5"`
	SignupWindow    time.Duration `envconfig:"LIMIT_SIGNUP_WINDOW" default:"1h"`
	DeedLimit       int           `envconfig:"LIMIT_DEED" default:"10"`
	DeedWindow      time.Duration `envconfig:"LIMIT_DEED_WINDOW" default:"1h"`
	CommentLimit    int           `envconfig:"LIMIT_COMMENT" default:"20"`
	CommentWindow   time.Duration `envconfig:"LIMIT_COMMENT_WINDOW" default:"10m"`
	JoinLimit       int           `envconfig:"LIMIT_JOIN" default:"20"`
	JoinWindow      time.Duration `envconfig:"LIMIT_JOIN_WINDOW" default:"1h"`
	ReportLimit     int           `envconfig:"LIMIT_REPORT" default:"10"`
	ReportWindow    time.Duration `envconfig:"LIMIT_REPORT_WINDOW" default:"1h"`
	TranslateLimit  int           `envconfig:"LIMIT_TRANSLATE" default:"30"`
	TranslateWindow time.Duration `envconfig:"LIMIT_TRANSLATE_WINDOW" default:"1h"`
	AdminLimit      int           `envconfig:"LIMIT_ADMIN" default:"60"`
	AdminWindow     time.Duration `envconfig:"LIMIT_ADMIN_WINDOW" default:"1m"`

	// LLM used for moderation and translation
	LLMAPIKey  string        `envconfig:"LLM_API_KEY"`
	LLMBaseURL string        `envconfig:"LLM_BASE_URL" default:"https://generativelanguage.googleapis.com/v1beta"`
	LLMModel   string        `envconfig:"LLM_MODEL" default:"gemini-1.5-flash"`
	LLMTimeout time.Duration `envconfig:"LLM_TIMEOUT" default:"15s"`

	// Email Configuration
	SMTPHost     string `envconfig:"SMTP_HOST" default:"sandbox.smtp.mailtrap.io"`
	SMTPPort     int    `envconfig:"SMTP_PORT" default:"2525"`
	SMTPUsername string `envconfig:"SMTP_USERNAME"`
	SMTPPassword string `envconfig:"SMTP_PASSWORD"`
	FromEmail    string `envconfig:"FROM_EMAIL" default:"noreply@bragforgood.app"`
	FromName     string `envconfig:"FROM_NAME" default:"bragforgood"`
	AppBaseURL   string `envconfig:"APP_BASE_URL" default:"http://localhost:3000"`

	// S3 compatible photo storage (Cloudflare R2 in production)
	StorageEndpoint     string        `envconfig:"STORAGE_ENDPOINT"`
	StorageRegion       string        `envconfig:"STORAGE_REGION" default:"auto"`
	StorageBucket       string        `envconfig:"STORAGE_BUCKET" default:"bragforgood"`
	StorageAccessKey    string        `envconfig:"STORAGE_ACCESS_KEY_ID"`
	StorageSecretKey    string        `envconfig:"STORAGE_SECRET_ACCESS_KEY"`
	StoragePublicURL    string        `envconfig:"STORAGE_PUBLIC_URL"`
	StoragePresignTTL   time.Duration `envconfig:"STORAGE_PRESIGN_TTL" default:"15m"`
	StorageMaxPhotoSize int64         `envconfig:"STORAGE_MAX_PHOTO_BYTES" default:"10485760"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.DBDriver {
	case "mysql", "postgres":
	default:
		return fmt.Errorf("DB_DRIVER must be mysql or postgres, got %q", c.DBDriver)
	}
	switch c.RateLimitBackend {
	case "memory", "redis":
	default:
		return fmt.Errorf("RATE_LIMIT_BACKEND must be memory or redis, got %q", c.RateLimitBackend)
	}
	if c.IsProduction() && (c.JWTSecret == "your-secret-key" || c.SessionSecret == "your-session-secret") {
		return errors.New("JWT_SECRET and SESSION_SECRET must be set in production")
	}
	if c.APIRequestsPerMinute <= 0 || c.APIBurst <= 0 {
		return errors.New("API_REQUESTS_PER_MINUTE and API_BURST must be > 0")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("APP_TIMEZONE: %w", err)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Location resolves APP_TIMEZONE.
func (c *Config) Location() (*time.Location, error) {
	if c.AppTimezone == "" || c.AppTimezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.AppTimezone)
}

// StorageEnabled reports whether presigned uploads can be issued.
func (c *Config) StorageEnabled() bool {
	return c.StorageEndpoint != "" && c.StorageAccessKey != "" && c.StorageSecretKey != ""
}
