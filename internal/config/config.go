// Package config собирает конфигурацию сервера из значений по умолчанию,
// .env файла, переменных окружения и флагов командной строки.
// Более поздний источник в этом списке перекрывает более ранний.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Значения по умолчанию
const (
	DefaultAddr          = ":8080"
	DefaultDatabasePath  = "imagesight.db"
	DefaultUploadDir     = "uploads"
	DefaultTokenTTL      = 7 * 24 * time.Hour
	DefaultMaxUploadSize = 10 << 20 // 10 MB
	DefaultVisionTimeout = 30 * time.Second
	DefaultRateLimit     = 100
	DefaultRateWindow    = time.Minute
)

// Config содержит конфигурацию сервера
type Config struct {
	Addr         string
	DatabasePath string
	UploadDir    string

	// JWTSecret обязателен: дефолтного секрета нет
	JWTSecret string
	TokenTTL  time.Duration

	MaxUploadSize int64

	VisionEndpoint string
	VisionKey      string
	VisionTimeout  time.Duration

	// FileStore выбирает бэкенд хранения файлов: local или s3
	FileStore         string
	S3Bucket          string
	S3Region          string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3Endpoint        string
	S3PublicBaseURL   string

	RateLimit  int
	RateWindow time.Duration
}

// Load собирает конфигурацию из всех источников и валидирует ее
func Load(args []string) (*Config, error) {
	// .env подгружается в окружение, существующие переменные не трогаем.
	// Отсутствие файла не ошибка.
	_ = godotenv.Load()

	cfg := &Config{
		Addr:          DefaultAddr,
		DatabasePath:  DefaultDatabasePath,
		UploadDir:     DefaultUploadDir,
		TokenTTL:      DefaultTokenTTL,
		MaxUploadSize: DefaultMaxUploadSize,
		VisionTimeout: DefaultVisionTimeout,
		FileStore:     "local",
		RateLimit:     DefaultRateLimit,
		RateWindow:    DefaultRateWindow,
	}

	cfg.applyEnv()

	if err := cfg.applyFlags(args); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.Addr, "ADDR")
	setString(&c.DatabasePath, "DATABASE_PATH")
	setString(&c.UploadDir, "UPLOAD_DIR")
	setString(&c.JWTSecret, "JWT_SECRET")
	setDuration(&c.TokenTTL, "TOKEN_TTL")
	setInt64(&c.MaxUploadSize, "MAX_UPLOAD_SIZE")
	setString(&c.VisionEndpoint, "AZURE_VISION_ENDPOINT")
	setString(&c.VisionKey, "AZURE_VISION_KEY")
	setDuration(&c.VisionTimeout, "VISION_TIMEOUT")
	setString(&c.FileStore, "FILE_STORE")
	setString(&c.S3Bucket, "S3_BUCKET")
	setString(&c.S3Region, "S3_REGION")
	setString(&c.S3AccessKeyID, "S3_ACCESS_KEY_ID")
	setString(&c.S3SecretAccessKey, "S3_SECRET_ACCESS_KEY")
	setString(&c.S3Endpoint, "S3_ENDPOINT")
	setString(&c.S3PublicBaseURL, "S3_PUBLIC_BASE_URL")
	setInt(&c.RateLimit, "RATE_LIMIT")
	setDuration(&c.RateWindow, "RATE_WINDOW")
}

func (c *Config) applyFlags(args []string) error {
	fs := flag.NewFlagSet("imagesight-server", flag.ContinueOnError)

	fs.StringVar(&c.Addr, "addr", c.Addr, "HTTP listen address")
	fs.StringVar(&c.DatabasePath, "db", c.DatabasePath, "Path to sqlite database")
	fs.StringVar(&c.UploadDir, "uploads", c.UploadDir, "Upload directory (local file store)")
	fs.StringVar(&c.JWTSecret, "jwt-secret", c.JWTSecret, "JWT signing secret (required)")
	fs.DurationVar(&c.TokenTTL, "token-ttl", c.TokenTTL, "Access token lifetime")
	fs.Int64Var(&c.MaxUploadSize, "max-upload", c.MaxUploadSize, "Maximum upload size in bytes")
	fs.StringVar(&c.VisionEndpoint, "vision-endpoint", c.VisionEndpoint, "Vision service endpoint")
	fs.StringVar(&c.VisionKey, "vision-key", c.VisionKey, "Vision service API key")
	fs.DurationVar(&c.VisionTimeout, "vision-timeout", c.VisionTimeout, "Vision request timeout")
	fs.StringVar(&c.FileStore, "file-store", c.FileStore, "File store backend: local or s3")
	fs.IntVar(&c.RateLimit, "rate-limit", c.RateLimit, "Requests allowed per rate window per IP")
	fs.DurationVar(&c.RateWindow, "rate-window", c.RateWindow, "Rate limit window")

	return fs.Parse(args)
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT secret is required: set JWT_SECRET or -jwt-secret")
	}

	switch c.FileStore {
	case "local":
	case "s3":
		if c.S3Bucket == "" || c.S3Region == "" {
			return errors.New("s3 file store requires S3_BUCKET and S3_REGION")
		}
	default:
		return fmt.Errorf("unknown file store backend: %q", c.FileStore)
	}

	if c.MaxUploadSize <= 0 {
		return errors.New("max upload size must be positive")
	}

	return nil
}

func setString(dst *string, name string) {
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}

func setInt(dst *int, name string) {
	if v := os.Getenv(name); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			*dst = parsed
		}
	}
}

func setInt64(dst *int64, name string) {
	if v := os.Getenv(name); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = parsed
		}
	}
}

func setDuration(dst *time.Duration, name string) {
	if v := os.Getenv(name); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			*dst = parsed
		}
	}
}
