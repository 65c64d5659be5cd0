package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// Config carries everything read from the environment once at boot.
type Config struct {
	Port           string
	RestaurantName string

	// Outbound webhook relay. An empty URL disables outbound delivery
	// (calls are skipped and logged, never an error).
	WebhookURL         string
	WebhookMaxAttempts int
	WebhookBackoff     time.Duration

	// Reservation reminder job.
	ReminderHour  int
	ReminderForce bool

	MessagesFile string
}

func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8080"),
		RestaurantName:     getEnv("RESTAURANT_NAME", "Restaurante"),
		WebhookURL:         os.Getenv("WEBHOOK_URL"),
		WebhookMaxAttempts: getEnvInt("WEBHOOK_MAX_ATTEMPTS", 3),
		WebhookBackoff:     getEnvDuration("WEBHOOK_BACKOFF", 2*time.Second),
		ReminderHour:       getEnvInt("REMINDER_HOUR", 18),
		ReminderForce:      getEnv("REMINDER_FORCE", "") == "true",
		MessagesFile:       getEnv("MESSAGES_FILE", "config/messages.yaml"),
	}
}

// InitDB opens the MySQL connection from the DB_* environment
// variables. TranslateError is on so duplicate-key races surface as
// gorm.ErrDuplicatedKey and can be retried.
func InitDB() (*gorm.DB, error) {
	user := getEnv("DB_USER", "root")
	pass := os.Getenv("DB_PASSWORD")
	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "3306")
	name := getEnv("DB_NAME", "restaurante")

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, pass, host, port, name)

	return gorm.Open(mysql.Open(dsn), &gorm.Config{TranslateError: true})
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
