package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for our application
type Config struct {
	// Server configuration
	Port           string
	GinMode        string
	APIVersion     string
	APIPrefix      string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int

	// Database configuration
	Database DatabaseConfig

	// Redis configuration
	Redis RedisConfig

	// Identity provider token verification
	JWT JWTConfig

	// Identity provider webhook (user sync)
	Identity IdentityConfig

	// Payment gateway
	Payments PaymentsConfig

	// External movie catalog
	Catalog CatalogConfig

	// Kafka notification pipeline
	Kafka KafkaConfig

	// Outbound email
	Email EmailConfig

	// Booking policy
	Booking BookingConfig

	// Logging
	LogLevel string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	DSN      string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Addr     string
}

// JWTConfig holds verification settings for identity provider access tokens.
// Tokens are issued by the external identity provider; this service only
// verifies them with the shared secret and trusts the embedded claims.
type JWTConfig struct {
	Secret string
}

// IdentityConfig holds settings for the identity provider's user-sync webhook
type IdentityConfig struct {
	WebhookSecret string
}

// PaymentsConfig holds payment gateway configuration
type PaymentsConfig struct {
	SecretKey     string
	WebhookSecret string
	Currency      string
	FrontendURL   string
	SessionExpiry time.Duration
}

// CatalogConfig holds external movie catalog (TMDB) configuration
type CatalogConfig struct {
	BaseURL  string
	APIToken string
	Timeout  time.Duration
}

// KafkaConfig holds Kafka configuration for the notification pipeline
type KafkaConfig struct {
	Brokers           []string
	NotificationTopic string
	ConsumerGroup     string
}

// EmailConfig holds SMTP configuration
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
	FromName     string
}

// BookingConfig holds reservation lifecycle policy
type BookingConfig struct {
	// PaymentDeadline is how long a pending booking may hold its seats
	// before the expiry reaper releases them.
	PaymentDeadline time.Duration
	// ReminderLead is how long before a show starts that reminder
	// notifications go out to paid bookings.
	ReminderLead time.Duration
	// SchedulerPollInterval is how often the durable scheduler checks
	// for due tasks.
	SchedulerPollInterval time.Duration
}

// Load loads configuration from environment variables
func Load() *Config {
	cfg := &Config{
		// Server configuration
		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		APIVersion:     getEnv("API_VERSION", "v1"),
		APIPrefix:      getEnv("API_PREFIX", "/api"),
		ReadTimeout:    getDurationEnv("READ_TIMEOUT", 15*time.Second),
		WriteTimeout:   getDurationEnv("WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:    getDurationEnv("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes: getIntEnv("MAX_HEADER_BYTES", 1<<20), // 1 MB

		// Database configuration
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			Name:     getEnv("DB_NAME", "showtix_db"),
			User:     getEnv("DB_USER", "showtix_user"),
			Password: getEnv("DB_PASSWORD", "showtix_password"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},

		// Redis configuration
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},

		// Identity token verification
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "your-super-secret-jwt-key"),
		},

		Identity: IdentityConfig{
			WebhookSecret: getEnv("IDENTITY_WEBHOOK_SECRET", ""),
		},

		// Payment gateway
		Payments: PaymentsConfig{
			SecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
			Currency:      getEnv("PAYMENT_CURRENCY", "usd"),
			FrontendURL:   getEnv("FRONTEND_URL", "http://localhost:5173"),
			SessionExpiry: getDurationEnv("PAYMENT_SESSION_EXPIRY", 30*time.Minute),
		},

		// External movie catalog
		Catalog: CatalogConfig{
			BaseURL:  getEnv("TMDB_BASE_URL", "https://api.themoviedb.org/3"),
			APIToken: getEnv("TMDB_API_KEY", ""),
			Timeout:  getDurationEnv("TMDB_TIMEOUT", 10*time.Second),
		},

		// Kafka notification pipeline
		Kafka: KafkaConfig{
			Brokers:           getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
			NotificationTopic: getEnv("KAFKA_NOTIFICATION_TOPIC", "notifications"),
			ConsumerGroup:     getEnv("KAFKA_CONSUMER_GROUP", "showtix-notifications"),
		},

		// Email configuration
		Email: EmailConfig{
			SMTPHost:     getEnv("SMTP_HOST", ""),
			SMTPPort:     getIntEnv("SMTP_PORT", 587),
			SMTPUsername: getEnv("SMTP_USERNAME", ""),
			SMTPPassword: getEnv("SMTP_PASSWORD", ""),
			FromEmail:    getEnv("FROM_EMAIL", "noreply@showtix.app"),
			FromName:     getEnv("FROM_NAME", "ShowTix"),
		},

		// Booking policy
		Booking: BookingConfig{
			PaymentDeadline:       getDurationEnv("BOOKING_PAYMENT_DEADLINE", 10*time.Minute),
			ReminderLead:          getDurationEnv("BOOKING_REMINDER_LEAD", 8*time.Hour),
			SchedulerPollInterval: getDurationEnv("SCHEDULER_POLL_INTERVAL", 5*time.Second),
		},

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "debug"),
	}

	// Build composite values
	cfg.Database.DSN = buildDatabaseDSN(cfg.Database)
	cfg.Redis.Addr = cfg.Redis.Host + ":" + cfg.Redis.Port

	return cfg
}

// buildDatabaseDSN builds the database connection string
func buildDatabaseDSN(db DatabaseConfig) string {
	return "host=" + db.Host +
		" port=" + db.Port +
		" user=" + db.User +
		" password=" + db.Password +
		" dbname=" + db.Name +
		" sslmode=" + db.SSLMode
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getIntEnv gets an integer environment variable with a fallback value
func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return fallback
}

// getDurationEnv gets a duration environment variable with a fallback value
func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return fallback
}

// getStringSliceEnv gets a comma-separated string environment variable as a slice
func getStringSliceEnv(key string, fallback []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		var result []string
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GinMode == "debug"
}

// GetServerAddress returns the full server address
func (c *Config) GetServerAddress() string {
	return ":" + c.Port
}

// GetAPIBasePath returns the API base path
func (c *Config) GetAPIBasePath() string {
	return c.APIPrefix + "/" + c.APIVersion
}
