package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Checker  CheckerConfig
	Email    EmailConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Schema   string
}

// RedisConfig configures the rate-limit backend. An empty Addr disables
// rate limiting.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// CheckerConfig controls the price-check cycle: how often it runs, how long a
// single fetch may take, how long to wait between products, and how long an
// alert stays quiet after firing.
type CheckerConfig struct {
	Schedule     string        // cron spec, empty disables scheduled runs
	FetchTimeout time.Duration
	ItemDelay    time.Duration
	Cooldown     time.Duration
	UserAgent    string
}

type EmailConfig struct {
	ResendAPIKey string
	FromAddress  string
}

func Load() *Config {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SCHEMA", "public")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("CHECK_SCHEDULE", "0 * * * *")
	viper.SetDefault("CHECK_FETCH_TIMEOUT", "10s")
	viper.SetDefault("CHECK_ITEM_DELAY", "2s")
	viper.SetDefault("CHECK_COOLDOWN", "24h")
	viper.SetDefault("CHECK_USER_AGENT",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	viper.SetDefault("EMAIL_FROM", "Price Alert <onboarding@resend.dev>")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	return &Config{
		Server: ServerConfig{
			Port: viper.GetString("SERVER_PORT"),
			Env:  viper.GetString("SERVER_ENV"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Database: viper.GetString("DB_DATABASE"),
			Schema:   viper.GetString("DB_SCHEMA"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("REDIS_ADDR"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Checker: CheckerConfig{
			Schedule:     viper.GetString("CHECK_SCHEDULE"),
			FetchTimeout: viper.GetDuration("CHECK_FETCH_TIMEOUT"),
			ItemDelay:    viper.GetDuration("CHECK_ITEM_DELAY"),
			Cooldown:     viper.GetDuration("CHECK_COOLDOWN"),
			UserAgent:    viper.GetString("CHECK_USER_AGENT"),
		},
		Email: EmailConfig{
			ResendAPIKey: viper.GetString("RESEND_API_KEY"),
			FromAddress:  viper.GetString("EMAIL_FROM"),
		},
	}
}
