package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string
	FrontendURL string

	SupabaseURL       string
	SupabaseAnonKey   string
	SupabaseJWTSecret string
	DatabaseURL       string

	MongoDBURI      string
	MongoDBPassword string
	RedisAddr       string
	RabbitMQURL     string

	StripeSecretKey       string
	StripePlatformAccount string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string

	EventBucket         string
	AlbumBucket         string
	StorageSignedURLTTL int

	ScraperTargetURL   string
	ScraperWaitTimeout time.Duration

	CronSecret string
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:        getEnvWithDefault("PORT", "8080"),
		Environment: getEnvWithDefault("ENVIRONMENT", "development"),
		LogLevel:    getEnvWithDefault("LOG_LEVEL", "info"),
		FrontendURL: getEnvWithDefault("FRONTEND_URL", "http://localhost:3000"),

		SupabaseURL:       os.Getenv("SUPABASE_URL"),
		SupabaseAnonKey:   os.Getenv("SUPABASE_URL_ANON_KEY"),
		SupabaseJWTSecret: os.Getenv("SUPABASE_JWT_SECRET"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),

		MongoDBURI:      os.Getenv("MONGODB_URI"),
		MongoDBPassword: os.Getenv("MONGODB_PASSWORD"),
		RedisAddr:       getEnvWithDefault("REDIS_ADDR", "localhost:6379"),
		RabbitMQURL:     os.Getenv("RABBITMQ_URL"),

		StripeSecretKey:       os.Getenv("STRIPE_SECRET_KEY"),
		StripePlatformAccount: os.Getenv("STRIPE_PLATFORM_ACCOUNT"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		MailFrom:     getEnvWithDefault("MAIL_FROM", "Gatherly <no-reply@gatherly.app>"),

		EventBucket: getEnvWithDefault("STORAGE_EVENT_BUCKET", "event-images"),
		AlbumBucket: getEnvWithDefault("STORAGE_ALBUM_BUCKET", "albums"),

		ScraperTargetURL: os.Getenv("SCRAPER_TARGET_URL"),
		CronSecret:       os.Getenv("CRON_SECRET"),
	}

	var err error
	if cfg.SMTPPort, err = getEnvAsInt("SMTP_PORT", 587); err != nil {
		return nil, err
	}
	if cfg.StorageSignedURLTTL, err = getEnvAsInt("STORAGE_SIGNED_URL_TTL", 0); err != nil {
		return nil, err
	}
	waitSeconds, err := getEnvAsInt("SCRAPER_WAIT_TIMEOUT", 20)
	if err != nil {
		return nil, err
	}
	cfg.ScraperWaitTimeout = time.Duration(waitSeconds) * time.Second

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	required := []struct {
		key   string
		value string
	}{
		{"SUPABASE_URL", c.SupabaseURL},
		{"SUPABASE_URL_ANON_KEY", c.SupabaseAnonKey},
		{"DATABASE_URL", c.DatabaseURL},
		{"MONGODB_URI", c.MongoDBURI},
		{"MONGODB_PASSWORD", c.MongoDBPassword},
		{"STRIPE_SECRET_KEY", c.StripeSecretKey},
		{"STRIPE_PLATFORM_ACCOUNT", c.StripePlatformAccount},
		{"SMTP_HOST", c.SMTPHost},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%s is required", r.key)
		}
	}
	return nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %v", key, err)
	}
	return n, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
