// Package config loads guide server configuration from flags, environment variables and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Storage backends for device state.
const (
	BackendBadger = "badger"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config holds the application configuration.
type Config struct {
	App     AppConfig
	Logger  LoggerConfig
	Server  ServerConfig
	Catalog CatalogConfig
	Storage StorageConfig
	HTTP    HTTPConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// CatalogConfig describes where the static JSON datasets live.
// Exactly one of DataPath and BaseURL is set.
type CatalogConfig struct {
	DataPath     string
	BaseURL      string
	FetchTimeout time.Duration
	Watch        bool
	SettleDelay  time.Duration
}

// StorageConfig selects and configures the device key-value medium.
type StorageConfig struct {
	Backend       string
	MetadataPath  string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

// HTTPConfig holds edge concerns of the API.
type HTTPConfig struct {
	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int
}

// LoadConfig loads configuration from the process arguments.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load builds a Config with precedence:
// 1. Command-line flags.
// 2. Environment variables.
// 3. .env file.
// 4. Defaults.
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("guide-server", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	envFile := fs.String("env-file", ".env", "Path to .env file")

	port := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 0, streaming)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")

	dataPath := fs.String("data-path", "", "Directory holding the dataset JSON files")
	dataBaseURL := fs.String("data-base-url", "", "Origin serving /data/*.json (alternative to -data-path)")
	fetchTimeout := fs.String("fetch-timeout", "", "Dataset fetch timeout (default: 10s)")
	watch := fs.String("data-watch", "", "Reload on data directory changes (default: false)")

	backend := fs.String("store-backend", "", "Device storage backend: badger, redis or memory (default: badger)")
	metadataPath := fs.String("metadata-path", "", "Base path for badger storage")
	redisAddr := fs.String("redis-addr", "", "Redis address (default: localhost:6379)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// .env is optional.
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Port: getConfigValue(*port, "SERVER_PORT", "8080"),
		},
		Catalog: CatalogConfig{
			DataPath: getConfigValue(*dataPath, "DATA_PATH", ""),
			BaseURL:  strings.TrimRight(getConfigValue(*dataBaseURL, "DATA_BASE_URL", ""), "/"),
			Watch:    getBoolConfigValue(*watch, "DATA_WATCH", false),
		},
		Storage: StorageConfig{
			Backend:       strings.ToLower(getConfigValue(*backend, "STORE_BACKEND", BackendBadger)),
			MetadataPath:  getConfigValue(*metadataPath, "METADATA_PATH", ""),
			RedisAddr:     getConfigValue(*redisAddr, "REDIS_ADDR", "localhost:6379"),
			RedisPassword: getConfigValue("", "REDIS_PASSWORD", ""),
			RedisDB:       getIntConfigValue("", "REDIS_DB", 0),
			RedisPrefix:   getConfigValue("", "REDIS_PREFIX", "guide:"),
		},
		HTTP: HTTPConfig{
			CORSOrigins:    splitList(getConfigValue("", "CORS_ORIGINS", "*")),
			RateLimitRPS:   getFloatConfigValue("", "RATE_LIMIT_RPS", 5),
			RateLimitBurst: getIntConfigValue("", "RATE_LIMIT_BURST", 20),
		},
	}

	durations := []struct {
		dst      *time.Duration
		flagVal  string
		envKey   string
		fallback string
	}{
		{&cfg.Server.ReadTimeout, *readTimeout, "SERVER_READ_TIMEOUT", "15s"},
		{&cfg.Server.WriteTimeout, *writeTimeout, "SERVER_WRITE_TIMEOUT", "0s"},
		{&cfg.Server.IdleTimeout, *idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"},
		{&cfg.Catalog.FetchTimeout, *fetchTimeout, "CATALOG_FETCH_TIMEOUT", "10s"},
		{&cfg.Catalog.SettleDelay, "", "DATA_WATCH_SETTLE", "500ms"},
	}
	for _, d := range durations {
		raw := getConfigValue(d.flagVal, d.envKey, d.fallback)
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", d.envKey, raw, err)
		}
		*d.dst = parsed
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	switch c.App.Environment {
	case "development", "staging", "production":
	case "":
		return errors.New("ENV is required")
	default:
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	switch strings.ToLower(c.Logger.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	hasDir, hasURL := c.Catalog.DataPath != "", c.Catalog.BaseURL != ""
	if hasDir == hasURL {
		return errors.New("exactly one of DATA_PATH or DATA_BASE_URL must be set")
	}
	if hasURL && !strings.HasPrefix(c.Catalog.BaseURL, "http://") && !strings.HasPrefix(c.Catalog.BaseURL, "https://") {
		return fmt.Errorf("invalid DATA_BASE_URL: %s (must be http or https)", c.Catalog.BaseURL)
	}
	if c.Catalog.Watch && !hasDir {
		return errors.New("DATA_WATCH requires DATA_PATH")
	}
	if c.Catalog.FetchTimeout <= 0 {
		return errors.New("CATALOG_FETCH_TIMEOUT must be positive")
	}

	switch c.Storage.Backend {
	case BackendBadger:
		if c.Storage.MetadataPath == "" {
			return errors.New("metadata path cannot be empty for the badger backend")
		}
	case BackendRedis:
		if c.Storage.RedisAddr == "" {
			return errors.New("REDIS_ADDR is required for the redis backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("invalid store backend: %s (must be badger, redis, or memory)", c.Storage.Backend)
	}

	if c.HTTP.RateLimitRPS <= 0 || c.HTTP.RateLimitBurst <= 0 {
		return errors.New("rate limit rps and burst must be positive")
	}

	return nil
}

func (c *Config) expandPaths() error {
	if c.Catalog.DataPath != "" {
		expanded, err := expandPath(c.Catalog.DataPath, "")
		if err != nil {
			return fmt.Errorf("invalid data path: %w", err)
		}
		c.Catalog.DataPath = expanded
	}

	if c.Storage.Backend != BackendBadger {
		return nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	expanded, err := expandPath(c.Storage.MetadataPath, filepath.Join(homeDir, ".gevgelija-guide", "metadata"))
	if err != nil {
		return fmt.Errorf("invalid metadata path: %w", err)
	}
	c.Storage.MetadataPath = expanded
	return nil
}

// expandPath expands ~ and makes the path absolute.
// An empty path yields defaultPath unchanged.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envKey != "" {
		if envValue := os.Getenv(envKey); envValue != "" {
			return envValue
		}
	}
	return defaultValue
}

// getBoolConfigValue accepts "true", "1" and "yes" (any case) as true.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	switch strings.ToLower(strValue) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}

func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(strValue)
	if err != nil {
		return defaultValue
	}
	return n
}

func getFloatConfigValue(flagValue, envKey string, defaultValue float64) float64 {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(strValue, 64)
	if err != nil {
		return defaultValue
	}
	return f
}

func splitList(raw string) []string {
	var out []string
	for part := range strings.SplitSeq(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// loadEnvFile loads KEY=value lines from a .env file. Variables already set
// in the environment are left alone.
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- path comes from the operator
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
