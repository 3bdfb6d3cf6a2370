// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App     AppConfig
	Logger  LoggerConfig
	Data    DataConfig
	Server  ServerConfig
	Auth    AuthConfig
	Catalog CatalogConfig
	Duties  DutiesConfig
	Storage StorageConfig
	Billing BillingConfig
	Mail    MailConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DataConfig holds local data storage configuration.
type DataConfig struct {
	// BasePath is the directory holding the key-value store and the
	// calculation history database.
	BasePath string
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Name         string
	Port         string        // Server port (default: 8080)
	ReadTimeout  time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration // HTTP write timeout (default: 15s)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	// PASETO v4 symmetric key for access tokens (32 bytes)
	AccessTokenKey []byte
	// Access token lifetime
	AccessTokenDuration time.Duration // e.g., 24h
}

// CatalogConfig holds remote catalog (Shopify Admin API) configuration.
type CatalogConfig struct {
	// APIVersion is the Admin API version segment, e.g. "2024-10".
	APIVersion string
	// PaginationStyle selects the client implementation.
	// Valid values: cursor (GraphQL), offset (REST since_id).
	PaginationStyle string
	// PageSize is the per-page item count requested during synchronization.
	// The Admin API caps this at 250.
	PageSize int
	// MaxPages is the safety bound on fetches per synchronization call.
	MaxPages int
	// RequestsPerSecond limits outbound calls per shop domain.
	RequestsPerSecond float64
}

// DutiesConfig holds the HS-code lookup provider configuration.
type DutiesConfig struct {
	BaseURL string
	APIKey  string
}

// StorageConfig holds object storage configuration for PDF documents.
type StorageConfig struct {
	Bucket    string
	Region    string
	KeyPrefix string        // default: invoices/
	URLTTL    time.Duration // presigned URL lifetime (default: 15m)
}

// BillingConfig holds payment provider configuration.
type BillingConfig struct {
	StripeSecretKey  string
	StripeSuccessURL string
	StripeCancelURL  string
	// ShopifyTest marks app subscriptions as test charges.
	ShopifyTest bool
	// ReturnURL is where Shopify redirects after subscription approval.
	ReturnURL string
}

// MailConfig holds outbound SMTP configuration. All fields empty disables mail.
type MailConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	// Define command-line flags.
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := flag.String("data-path", "", "Base path for local data storage")
	serverName := flag.String("server-name", "", "Name for the server")

	// Auth flags
	accessTokenDuration := flag.String("access-token-duration", "", "Access token lifetime (e.g., 24h)")

	// Server flags
	serverPort := flag.String("port", "", "Server port (default: 8080)")
	readTimeout := flag.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := flag.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := flag.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")

	// Catalog flags
	catalogVersion := flag.String("catalog-api-version", "", "Admin API version (default: 2024-10)")
	paginationStyle := flag.String("pagination-style", "", "Catalog pagination style: cursor or offset (default: cursor)")
	pageSize := flag.String("page-size", "", "Catalog page size, max 250 (default: 250)")
	maxPages := flag.String("max-pages", "", "Safety bound on pages per sync (default: 500)")

	envFile := flag.String("env-file", ".env", "Path to .env file")

	// Parse flags but don't exit on error - we want to handle it gracefully.
	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	// Build config with proper precedence.
	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Data: DataConfig{
			BasePath: getConfigValue(*dataPath, "DATA_PATH", ""),
		},

		Server: ServerConfig{
			Name: getConfigValue(*serverName, "SERVER_NAME", "Tariffly Server"),
			Port: getConfigValue(*serverPort, "SERVER_PORT", "8080"),
		},

		Auth: AuthConfig{
			AccessTokenKey: nil, // Will be set by auth.LoadOrGenerateKey in main
		},

		Catalog: CatalogConfig{
			APIVersion:        getConfigValue(*catalogVersion, "CATALOG_API_VERSION", "2024-10"),
			PaginationStyle:   getConfigValue(*paginationStyle, "CATALOG_PAGINATION_STYLE", "cursor"),
			PageSize:          getIntConfigValue(*pageSize, "CATALOG_PAGE_SIZE", 250),
			MaxPages:          getIntConfigValue(*maxPages, "CATALOG_MAX_PAGES", 500),
			RequestsPerSecond: getFloatConfigValue("", "CATALOG_RPS", 2),
		},

		Duties: DutiesConfig{
			BaseURL: getConfigValue("", "DUTIES_BASE_URL", "https://api.dutify.com/v1"),
			APIKey:  getConfigValue("", "DUTIES_API_KEY", ""),
		},

		Storage: StorageConfig{
			Bucket:    getConfigValue("", "S3_BUCKET", ""),
			Region:    getConfigValue("", "AWS_REGION", "us-east-1"),
			KeyPrefix: getConfigValue("", "S3_KEY_PREFIX", "invoices/"),
		},

		Billing: BillingConfig{
			StripeSecretKey:  getConfigValue("", "STRIPE_SECRET_KEY", ""),
			StripeSuccessURL: getConfigValue("", "STRIPE_SUCCESS_URL", ""),
			StripeCancelURL:  getConfigValue("", "STRIPE_CANCEL_URL", ""),
			ShopifyTest:      getBoolConfigValue("", "SHOPIFY_BILLING_TEST", true),
			ReturnURL:        getConfigValue("", "BILLING_RETURN_URL", ""),
		},

		Mail: MailConfig{
			Host:     getConfigValue("", "SMTP_HOST", ""),
			Port:     getConfigValue("", "SMTP_PORT", "587"),
			Username: getConfigValue("", "SMTP_USERNAME", ""),
			Password: getConfigValue("", "SMTP_PASSWORD", ""),
			From:     getConfigValue("", "SMTP_FROM", ""),
		},
	}

	// Parse auth durations.
	accessDurationStr := getConfigValue(*accessTokenDuration, "ACCESS_TOKEN_DURATION", "24h")
	accessDuration, err := time.ParseDuration(accessDurationStr)
	if err != nil {
		return nil, fmt.Errorf("invalid access token duration %q: %w", accessDurationStr, err)
	}
	cfg.Auth.AccessTokenDuration = accessDuration

	// Parse server timeouts.
	readTimeoutStr := getConfigValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s")
	readTimeoutDuration, err := time.ParseDuration(readTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid read timeout %q: %w", readTimeoutStr, err)
	}
	cfg.Server.ReadTimeout = readTimeoutDuration

	writeTimeoutStr := getConfigValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s")
	writeTimeoutDuration, err := time.ParseDuration(writeTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid write timeout %q: %w", writeTimeoutStr, err)
	}
	cfg.Server.WriteTimeout = writeTimeoutDuration

	idleTimeoutStr := getConfigValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s")
	idleTimeoutDuration, err := time.ParseDuration(idleTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid idle timeout %q: %w", idleTimeoutStr, err)
	}
	cfg.Server.IdleTimeout = idleTimeoutDuration

	// Parse presigned URL lifetime.
	urlTTLStr := getConfigValue("", "S3_URL_TTL", "15m")
	urlTTL, err := time.ParseDuration(urlTTLStr)
	if err != nil {
		return nil, fmt.Errorf("invalid S3 URL TTL %q: %w", urlTTLStr, err)
	}
	cfg.Storage.URLTTL = urlTTL

	// Expand and validate data path.
	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	// Validate configuration.
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Data.BasePath == "" {
		return errors.New("data base path cannot be empty after expansion")
	}

	validStyles := map[string]bool{
		"cursor": true,
		"offset": true,
	}
	if !validStyles[c.Catalog.PaginationStyle] {
		return fmt.Errorf("invalid pagination style: %s (must be cursor or offset)", c.Catalog.PaginationStyle)
	}

	if c.Catalog.PageSize < 1 || c.Catalog.PageSize > 250 {
		return fmt.Errorf("invalid page size: %d (must be 1-250)", c.Catalog.PageSize)
	}

	if c.Catalog.MaxPages < 1 {
		return fmt.Errorf("invalid max pages: %d (must be >= 1)", c.Catalog.MaxPages)
	}

	// Duties, storage, billing and mail credentials are optional at startup;
	// the endpoints that need them fail with a validation error when absent.

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	// Expand tilde.
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	// Make absolute if needed.
	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandDataPath expands ~ and makes the path absolute.
func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, "Tariffly", "data")

	expanded, err := expandPath(c.Data.BasePath, defaultPath)
	if err != nil {
		return err
	}
	c.Data.BasePath = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	// Priority 1: Command-line flag.
	if flagValue != "" {
		return flagValue
	}

	// Priority 2: Environment variable.
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}

	// Priority 3: Default value.
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// getFloatConfigValue returns a float64 from flag, env var, or default.
func getFloatConfigValue(flagValue, envKey string, defaultValue float64) float64 {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result float64
	if _, err := fmt.Sscanf(strValue, "%g", &result); err != nil {
		return defaultValue
	}
	return result
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=value.
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Remove quotes if present.
		value = strings.Trim(value, `"'`)

		// Only set if not already set (env vars take precedence over .env file).
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
