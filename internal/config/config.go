package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Port           string
	AllowedOrigins []string
	WSReadTimeout  time.Duration
	WSWriteTimeout time.Duration
	LogLevel       string
	PingPeriod     time.Duration
	PongWait       time.Duration
	WriteWait      time.Duration
	MaxMessageSize int64

	// Telephony provider credentials and addressing
	AccountSid string
	AuthToken  string
	AppSid     string
	QueueName  string
	CallerID   string
	// DequeueURL is the publicly reachable URL the provider fetches
	// when a queued call is handed to an agent.
	DequeueURL      string
	ProviderTimeout time.Duration

	// Drain loop cadence
	PollInterval time.Duration
	ErrorBackoff time.Duration

	// When true, agents stuck in DeQueuing are eligible for inbound
	// calls so a lost dequeue callback cannot strand them.
	RouteDeQueuing bool

	// When true, agents may dial out with any caller ID they set,
	// not only the account's verified number.
	AnyCallerID bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:5173"), ","),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AccountSid:     os.Getenv("TWILIO_ACCOUNT_SID"),
		AuthToken:      os.Getenv("TWILIO_AUTH_TOKEN"),
		AppSid:         os.Getenv("TWILIO_APP_SID"),
		QueueName:      getEnv("TWILIO_QUEUE_NAME", "acdqueue"),
		CallerID:       os.Getenv("TWILIO_CALLER_ID"),
		DequeueURL:     os.Getenv("TWILIO_DEQUEUE_URL"),
	}

	if config.AccountSid == "" {
		return nil, fmt.Errorf("TWILIO_ACCOUNT_SID is required")
	}
	if config.AuthToken == "" {
		return nil, fmt.Errorf("TWILIO_AUTH_TOKEN is required")
	}
	if config.AppSid == "" {
		return nil, fmt.Errorf("TWILIO_APP_SID is required")
	}
	// An empty dequeue URL would make the drain loop hand off every
	// queued call with nowhere to send it.
	if config.DequeueURL == "" {
		return nil, fmt.Errorf("TWILIO_DEQUEUE_URL is required")
	}

	// Parse WebSocket timeouts
	wsReadTimeout, err := strconv.Atoi(getEnv("WS_READ_TIMEOUT", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid WS_READ_TIMEOUT: %w", err)
	}
	config.WSReadTimeout = time.Duration(wsReadTimeout) * time.Second

	wsWriteTimeout, err := strconv.Atoi(getEnv("WS_WRITE_TIMEOUT", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid WS_WRITE_TIMEOUT: %w", err)
	}
	config.WSWriteTimeout = time.Duration(wsWriteTimeout) * time.Second

	// Calculate WebSocket constants
	config.PongWait = config.WSReadTimeout
	config.PingPeriod = (config.PongWait * 9) / 10 // Must be less than pongWait
	config.WriteWait = config.WSWriteTimeout
	config.MaxMessageSize = 512

	pollMs, err := strconv.Atoi(getEnv("POLL_INTERVAL_MS", "1000"))
	if err != nil {
		return nil, fmt.Errorf("invalid POLL_INTERVAL_MS: %w", err)
	}
	config.PollInterval = time.Duration(pollMs) * time.Millisecond

	backoffSec, err := strconv.Atoi(getEnv("ERROR_BACKOFF_SECONDS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid ERROR_BACKOFF_SECONDS: %w", err)
	}
	config.ErrorBackoff = time.Duration(backoffSec) * time.Second

	providerTimeoutSec, err := strconv.Atoi(getEnv("PROVIDER_TIMEOUT_SECONDS", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid PROVIDER_TIMEOUT_SECONDS: %w", err)
	}
	config.ProviderTimeout = time.Duration(providerTimeoutSec) * time.Second

	config.RouteDeQueuing, err = getEnvBool("ROUTE_DEQUEUING_AGENTS", true)
	if err != nil {
		return nil, err
	}

	config.AnyCallerID, err = getEnvBool("ANY_CALLER_ID", false)
	if err != nil {
		return nil, err
	}

	// Trim spaces from allowed origins
	for i, origin := range config.AllowedOrigins {
		config.AllowedOrigins[i] = strings.TrimSpace(origin)
	}

	return config, nil
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}
