// Package config resolves service settings from the environment, an optional .env file
// and an optional config file.
package config

import (
	"fmt"
	"strings"
	"time"

	"meal-coupon/registration"
	"meal-coupon/web/email"

	"github.com/spf13/viper"
)

type Config struct {
	Addr string

	DBDriver       string
	DBDSN          string
	DBMaxOpenConns int

	SMTP email.Config

	StorageDriver string
	StorageDir    string
	StorageURL    string
	StorageBucket string
	StorageAPIKey string
	PublicUploads string

	QRSecret        string
	QRImageEndpoint string

	TelegramToken  string
	TelegramChatID int64

	Menu registration.Menu

	RateLimit       int
	RateLimitWindow time.Duration

	CORSOrigins []string

	NotifyTimeout time.Duration

	LogLevel string
	LogDev   bool
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("GIN_PORT", "8080")
	v.SetDefault("HTTP_ADDR", "")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DB_DSN", "coupons.db")
	v.SetDefault("DB_MAX_OPEN_CONNS", 20)
	v.SetDefault("STORAGE_DRIVER", "disk")
	v.SetDefault("STORAGE_DIR", "uploads")
	v.SetDefault("STORAGE_BUCKET", "payment_screenshots")
	v.SetDefault("PUBLIC_UPLOADS_PATH", "/uploads")
	v.SetDefault("QR_IMAGE_URL", "https://api.qrserver.com/v1/create-qr-code/")
	v.SetDefault("PRICE_VEG", 50)
	v.SetDefault("PRICE_NON_VEG", 80)
	v.SetDefault("RATE_LIMIT", 30)
	v.SetDefault("RATE_LIMIT_WINDOW", "1m")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("NOTIFY_TIMEOUT", "30s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_DEV", false)
}

// Load reads settings from the environment. A non-empty file is read first and
// environment variables override it.
func Load(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	cfg := &Config{
		Addr:           v.GetString("HTTP_ADDR"),
		DBDriver:       strings.ToLower(v.GetString("DB_DRIVER")),
		DBDSN:          v.GetString("DB_DSN"),
		DBMaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		SMTP: email.Config{
			Server:   v.GetString("SMTP_SERVER"),
			Port:     v.GetString("SMTP_PORT"),
			User:     v.GetString("SMTP_USER"),
			Pass:     v.GetString("SMTP_PASS"),
			FromAddr: v.GetString("FROM_ADDR"),
			FromName: v.GetString("FROM_NAME"),
		},
		StorageDriver:   strings.ToLower(v.GetString("STORAGE_DRIVER")),
		StorageDir:      v.GetString("STORAGE_DIR"),
		StorageURL:      v.GetString("STORAGE_URL"),
		StorageBucket:   v.GetString("STORAGE_BUCKET"),
		StorageAPIKey:   v.GetString("STORAGE_API_KEY"),
		PublicUploads:   v.GetString("PUBLIC_UPLOADS_PATH"),
		QRSecret:        v.GetString("QR_SECRET"),
		QRImageEndpoint: v.GetString("QR_IMAGE_URL"),
		TelegramToken:   v.GetString("TELEGRAM_TOKEN"),
		TelegramChatID:  v.GetInt64("TELEGRAM_CHAT_ID"),
		Menu: registration.Menu{
			registration.Veg:    v.GetInt64("PRICE_VEG"),
			registration.NonVeg: v.GetInt64("PRICE_NON_VEG"),
		},
		RateLimit:       v.GetInt("RATE_LIMIT"),
		RateLimitWindow: v.GetDuration("RATE_LIMIT_WINDOW"),
		NotifyTimeout:   v.GetDuration("NOTIFY_TIMEOUT"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		LogDev:          v.GetBool("LOG_DEV"),
	}
	if cfg.Addr == "" {
		cfg.Addr = ":" + v.GetString("GIN_PORT")
	}
	for _, o := range strings.Split(v.GetString("CORS_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case "mysql", "postgres", "sqlite", "memory":
	default:
		return fmt.Errorf("DB_DRIVER must be mysql, postgres, sqlite or memory, got %q", c.DBDriver)
	}
	switch c.StorageDriver {
	case "disk":
	case "http":
		if c.StorageURL == "" || c.StorageAPIKey == "" {
			return fmt.Errorf("STORAGE_URL and STORAGE_API_KEY are required for http storage")
		}
	default:
		return fmt.Errorf("STORAGE_DRIVER must be disk or http, got %q", c.StorageDriver)
	}
	for cat, price := range c.Menu {
		if price < 0 {
			return fmt.Errorf("price for %s cannot be negative", cat)
		}
	}
	if c.TelegramToken != "" && c.TelegramChatID == 0 {
		return fmt.Errorf("TELEGRAM_CHAT_ID is required when TELEGRAM_TOKEN is set")
	}
	if c.RateLimit < 1 || c.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT and RATE_LIMIT_WINDOW must be positive")
	}
	if c.NotifyTimeout <= 0 {
		c.NotifyTimeout = registration.DefaultNotifyTimeout
	}
	return nil
}
