package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"
	_ "time/tzdata" // TIMEZONE должен работать и в distroless-образе

	"github.com/joho/godotenv"
)

type Config struct {
	DBDSN       string `mapstructure:"DB_DSN"`
	Environment string `mapstructure:"ENV"`
	HTTPPort    int    `mapstructure:"PORT"`

	// Политика бронирования; 0 отключает ограничение
	MaxDailyBookingMinutes int `mapstructure:"POLICY_MAX_DAILY_BOOKING_MINUTES"`
	CancelLockMinutes      int `mapstructure:"POLICY_CANCEL_LOCK_MINUTES"`
	Location               *time.Location

	TelegramToken string `mapstructure:"TELEGRAM_TOKEN"`
	NATSURL       string `mapstructure:"NATS_URL"`

	ReconcileInterval time.Duration `mapstructure:"AGGREGATE_RECONCILE_INTERVAL"`
}

const (
	defaultPort                   = 3001
	defaultMaxDailyBookingMinutes = 360     // 6 часов
	defaultCancelLockMinutes      = 24 * 60 // сутки
	defaultReconcileInterval      = 24 * time.Hour
)

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	return FromEnv()
}

// FromEnv читает конфигурацию из переменных окружения без .env
func FromEnv() (*Config, error) {
	cfg := &Config{
		DBDSN:         os.Getenv("DB_DSN"),
		Environment:   os.Getenv("ENV"),
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
		NATSURL:       os.Getenv("NATS_URL"),
	}

	// Устанавливаем дефолтные значения
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	var err error
	if cfg.HTTPPort, err = intFromEnv("PORT", defaultPort); err != nil {
		return nil, err
	}
	if cfg.MaxDailyBookingMinutes, err = intFromEnv("POLICY_MAX_DAILY_BOOKING_MINUTES", defaultMaxDailyBookingMinutes); err != nil {
		return nil, err
	}
	if cfg.CancelLockMinutes, err = intFromEnv("POLICY_CANCEL_LOCK_MINUTES", defaultCancelLockMinutes); err != nil {
		return nil, err
	}

	cfg.ReconcileInterval = defaultReconcileInterval
	if v := os.Getenv("AGGREGATE_RECONCILE_INTERVAL"); v != "" {
		if v == "0" {
			cfg.ReconcileInterval = 0
		} else if cfg.ReconcileInterval, err = time.ParseDuration(v); err != nil {
			return nil, fmt.Errorf("AGGREGATE_RECONCILE_INTERVAL: %w", err)
		}
	}

	tz := os.Getenv("TIMEZONE")
	if tz == "" {
		tz = "UTC"
	}
	if cfg.Location, err = time.LoadLocation(tz); err != nil {
		return nil, fmt.Errorf("TIMEZONE: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Printf("Config loaded\n")

	return cfg, nil
}

// Validate проверяет обязательные поля и диапазоны
func (c *Config) Validate() error {
	if c.DBDSN == "" {
		return fmt.Errorf("DB_DSN is required but not set")
	}
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.HTTPPort)
	}
	if c.MaxDailyBookingMinutes < 0 {
		return fmt.Errorf("POLICY_MAX_DAILY_BOOKING_MINUTES must not be negative")
	}
	if c.CancelLockMinutes < 0 {
		return fmt.Errorf("POLICY_CANCEL_LOCK_MINUTES must not be negative")
	}
	if c.ReconcileInterval < 0 {
		return fmt.Errorf("AGGREGATE_RECONCILE_INTERVAL must not be negative")
	}
	return nil
}

func (c *Config) GetDBDSN() string {
	return c.DBDSN
}

func intFromEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: expected integer, got %q", key, v)
	}
	return n, nil
}
