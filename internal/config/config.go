package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Jira connection
	Jira JiraConfig

	// Which people the dashboard offers
	Directory DirectoryConfig

	// Server configuration
	Server ServerConfig

	// Rate limiting configuration
	RateLimit RateLimitConfig

	// CORS for the JSON API
	CORS CORSConfig

	// WebSocket configuration
	WebSocket WebSocketConfig

	// Logging configuration
	Logging LoggingConfig

	// Application metadata
	App AppConfig
}

// JiraConfig holds the tracker connection settings
type JiraConfig struct {
	URL            string
	Email          string
	APIToken       string
	GroupPageSize  int
	SearchPageSize int
	MaxSearchPages int
	RequestTimeout time.Duration
	RPS            float64 // Outbound throttle, 0 disables
	Burst          int
}

// DirectoryConfig controls group resolution
type DirectoryConfig struct {
	GroupNames          []string
	DomainFilterEnabled bool
	DomainFilter        string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	BurstSize         int
}

// CORSConfig holds allowed origins for /api/v1
type CORSConfig struct {
	AllowedOrigins []string
	MaxAge         int
}

// WebSocketConfig holds WebSocket configuration
type WebSocketConfig struct {
	AllowedOrigins  []string
	ReadBufferSize  int
	WriteBufferSize int
	PingInterval    time.Duration
	PongWait        time.Duration
	MaxMessageSize  int64
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}

// AppConfig holds application metadata
type AppConfig struct {
	Name        string
	Version     string
	Environment string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := &Config{
		Jira: JiraConfig{
			URL:            strings.TrimRight(os.Getenv("JIRA_URL"), "/"),
			Email:          os.Getenv("JIRA_USER_EMAIL"),
			APIToken:       os.Getenv("JIRA_API_TOKEN"),
			GroupPageSize:  getIntOrDefault("JIRA_GROUP_PAGE_SIZE", 100),
			SearchPageSize: getIntOrDefault("JIRA_SEARCH_PAGE_SIZE", 1000),
			MaxSearchPages: getIntOrDefault("JIRA_MAX_SEARCH_PAGES", 50),
			RequestTimeout: getDurationOrDefault("JIRA_REQUEST_TIMEOUT", 30*time.Second),
			RPS:            getFloatOrDefault("JIRA_RPS", 10),
			Burst:          getIntOrDefault("JIRA_BURST", 10),
		},
		Directory: DirectoryConfig{
			GroupNames:          getStringSliceOrDefault("JIRA_GROUP_NAMES", []string{}),
			DomainFilterEnabled: getBoolOrDefault("DOMAIN_FILTER_ENABLED", false),
			DomainFilter:        getEnvOrDefault("DOMAIN_FILTER", ""),
		},
		Server: ServerConfig{
			Port:            getEnvOrDefault("SERVER_PORT", ":8080"),
			ReadTimeout:     getDurationOrDefault("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDurationOrDefault("SERVER_WRITE_TIMEOUT", 60*time.Second),
			IdleTimeout:     getDurationOrDefault("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getDurationOrDefault("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		RateLimit: RateLimitConfig{
			Enabled:           getBoolOrDefault("RATE_LIMIT_ENABLED", true),
			RequestsPerSecond: getFloatOrDefault("RATE_LIMIT_RPS", 5),
			BurstSize:         getIntOrDefault("RATE_LIMIT_BURST", 10),
		},
		CORS: CORSConfig{
			AllowedOrigins: getStringSliceOrDefault("CORS_ALLOWED_ORIGINS", []string{}),
			MaxAge:         getIntOrDefault("CORS_MAX_AGE", 300),
		},
		WebSocket: WebSocketConfig{
			AllowedOrigins:  getStringSliceOrDefault("WS_ALLOWED_ORIGINS", []string{}),
			ReadBufferSize:  getIntOrDefault("WS_READ_BUFFER_SIZE", 1024),
			WriteBufferSize: getIntOrDefault("WS_WRITE_BUFFER_SIZE", 1024),
			PingInterval:    getDurationOrDefault("WS_PING_INTERVAL", 54*time.Second),
			PongWait:        getDurationOrDefault("WS_PONG_WAIT", 60*time.Second),
			MaxMessageSize:  int64(getIntOrDefault("WS_MAX_MESSAGE_SIZE", 4096)),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
		},
		App: AppConfig{
			Name:        getEnvOrDefault("APP_NAME", "workload-dashboard"),
			Version:     getEnvOrDefault("APP_VERSION", "dev"),
			Environment: getEnvOrDefault("APP_ENV", "development"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	var errs []string

	// Required fields
	if c.Jira.URL == "" {
		errs = append(errs, "JIRA_URL is required")
	} else if u, err := url.Parse(c.Jira.URL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, "JIRA_URL must be an absolute URL")
	}

	if c.Jira.Email == "" {
		errs = append(errs, "JIRA_USER_EMAIL is required")
	}

	if c.Jira.APIToken == "" {
		errs = append(errs, "JIRA_API_TOKEN is required")
	}

	if c.Directory.DomainFilterEnabled && c.Directory.DomainFilter == "" {
		errs = append(errs, "DOMAIN_FILTER is required when DOMAIN_FILTER_ENABLED is true")
	}

	// Security validations
	if c.App.Environment == "production" {
		if len(c.WebSocket.AllowedOrigins) == 0 {
			errs = append(errs, "WS_ALLOWED_ORIGINS must be set in production")
		}
	}

	// Logical validations
	if c.Jira.SearchPageSize <= 0 || c.Jira.GroupPageSize <= 0 {
		errs = append(errs, "JIRA page sizes must be positive")
	}

	if c.Jira.MaxSearchPages <= 0 {
		errs = append(errs, "JIRA_MAX_SEARCH_PAGES must be positive")
	}

	if len(errs) > 0 {
		return errors.New("configuration errors:\n  - " + strings.Join(errs, "\n  - "))
	}

	return nil
}

// DomainFilter returns the active e-mail domain filter, or "" when disabled.
func (c *Config) DomainFilter() string {
	if !c.Directory.DomainFilterEnabled {
		return ""
	}
	return c.Directory.DomainFilter
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// Helper functions

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getStringSliceOrDefault(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		result := make([]string, 0, len(parts))
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}

// String returns a redacted string representation of the config (safe for logging)
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Server: %s, Jira: %s as %s, Token: %s, Groups: %v, DomainFilter: %q, RateLimit: %v, Environment: %s}",
		c.Server.Port,
		c.Jira.URL,
		c.Jira.Email,
		redactSecret(c.Jira.APIToken),
		c.Directory.GroupNames,
		c.DomainFilter(),
		c.RateLimit.Enabled,
		c.App.Environment,
	)
}

func redactSecret(s string) string {
	if s == "" {
		return ""
	}
	return "[REDACTED]"
}
