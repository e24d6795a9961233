package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Media     MediaConfig
	Upload    UploadConfig
	Cookie    CookieConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Debug       bool
	Timeout     time.Duration
	Port        string
	CORSOrigin  string
}

type DatabaseConfig struct {
	URL             string
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// JWTConfig holds the two independent signing secrets. Access tokens are
// short lived, refresh tokens live for days.
type JWTConfig struct {
	AccessSecret  string
	AccessExpiry  time.Duration
	RefreshSecret string
	RefreshExpiry time.Duration
	Issuer        string
}

type RedisConfig struct {
	Enabled      bool
	Host         string
	Port         int
	Password     string
	Database     int
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolTimeout  time.Duration
	VideoTTL     time.Duration
}

type MediaConfig struct {
	Driver        string // minio or s3
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	Region        string
	UseSSL        bool
	PublicBaseURL string
	FFProbePath   string
	Timeout       time.Duration

	BreakerThreshold int
	BreakerTimeout   time.Duration
}

type UploadConfig struct {
	TempDir  string
	MaxBytes int64
	// Timeout bounds multipart requests, which carry a media upload.
	Timeout time.Duration
}

type CookieConfig struct {
	Secure bool
	Domain string
}

type RateLimitConfig struct {
	RPS   int
	Burst int
}

func LoadConfig() (*Config, error) {
	// Missing .env is fine, the process environment wins anyway.
	_ = godotenv.Load()

	config := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "vidtube"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("PORT", getEnv("APP_PORT", "8000")),
			Debug:       getEnvAsBool("APP_DEBUG", true),
			Timeout:     getEnvAsDuration("APP_TIMEOUT", 2*time.Minute),
			CORSOrigin:  getEnv("CORS_ORIGIN", "*"),
		},
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			Name:            getEnv("DB_NAME", "vidtube"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 50),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", time.Hour),
			ConnMaxIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", 10*time.Minute),
		},
		Redis: RedisConfig{
			Enabled:      getEnvAsBool("REDIS_ENABLED", false),
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnvAsInt("REDIS_PORT", 6379),
			Password:     getEnv("REDIS_PASSWORD", ""),
			Database:     getEnvAsInt("REDIS_DB", 0),
			PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvAsInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getEnvAsDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getEnvAsDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getEnvAsDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
			PoolTimeout:  getEnvAsDuration("REDIS_POOL_TIMEOUT", 4*time.Second),
			VideoTTL:     getEnvAsDuration("VIDEO_CACHE_TTL", 5*time.Minute),
		},
		JWT: JWTConfig{
			AccessSecret:  getEnv("ACCESS_TOKEN_SECRET", "change_me_access_secret"),
			AccessExpiry:  getEnvAsDuration("ACCESS_TOKEN_EXPIRY", 15*time.Minute),
			RefreshSecret: getEnv("REFRESH_TOKEN_SECRET", "change_me_refresh_secret"),
			RefreshExpiry: getEnvAsDuration("REFRESH_TOKEN_EXPIRY", 10*24*time.Hour),
			Issuer:        getEnv("JWT_ISSUER", "vidtube"),
		},
		Media: MediaConfig{
			Driver:           strings.ToLower(getEnv("MEDIA_DRIVER", "minio")),
			Endpoint:         getEnv("MEDIA_ENDPOINT", "localhost:9000"),
			AccessKey:        getEnv("MEDIA_ACCESS_KEY", "minioadmin"),
			SecretKey:        getEnv("MEDIA_SECRET_KEY", "minioadmin"),
			Bucket:           getEnv("MEDIA_BUCKET", "vidtube"),
			Region:           getEnv("MEDIA_REGION", "us-east-1"),
			UseSSL:           getEnvAsBool("MEDIA_USE_SSL", false),
			PublicBaseURL:    getEnv("MEDIA_PUBLIC_BASE_URL", ""),
			FFProbePath:      getEnv("FFPROBE_PATH", "ffprobe"),
			Timeout:          getEnvAsDuration("MEDIA_TIMEOUT", 5*time.Minute),
			BreakerThreshold: getEnvAsInt("MEDIA_BREAKER_THRESHOLD", 5),
			BreakerTimeout:   getEnvAsDuration("MEDIA_BREAKER_TIMEOUT", 30*time.Second),
		},
		Upload: UploadConfig{
			TempDir:  getEnv("UPLOAD_TEMP_DIR", "./public/temp"),
			MaxBytes: int64(getEnvAsInt("UPLOAD_MAX_BYTES", 512<<20)),
			Timeout:  getEnvAsDuration("UPLOAD_TIMEOUT", 15*time.Minute),
		},
		Cookie: CookieConfig{
			Secure: getEnvAsBool("COOKIE_SECURE", true),
			Domain: getEnv("COOKIE_DOMAIN", ""),
		},
		RateLimit: RateLimitConfig{
			RPS:   getEnvAsInt("RATE_LIMIT_RPS", 20),
			Burst: getEnvAsInt("RATE_LIMIT_BURST", 40),
		},
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.JWT.AccessSecret == c.JWT.RefreshSecret {
		return fmt.Errorf("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
	}
	switch c.Media.Driver {
	case "minio", "s3":
	default:
		return fmt.Errorf("unsupported MEDIA_DRIVER %q", c.Media.Driver)
	}
	if c.Upload.Timeout > 0 && c.Upload.Timeout < c.Media.Timeout {
		return fmt.Errorf("UPLOAD_TIMEOUT (%s) must not be shorter than MEDIA_TIMEOUT (%s)", c.Upload.Timeout, c.Media.Timeout)
	}
	return nil
}

func (c *Config) DatabaseConnectionString() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func (c *Config) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		boolValue, err := strconv.ParseBool(value)
		if err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := parseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// parseDuration extends time.ParseDuration with a whole-day suffix, e.g. "10d".
func parseDuration(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if days, ok := strings.CutSuffix(value, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("invalid day duration %q: %w", value, err)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(value)
}
