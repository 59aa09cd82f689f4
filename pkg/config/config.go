package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the gate
// ⭐ SSOT: every environment variable is read here only
type Config struct {
	Env string // development, staging, production

	// Validation
	Validation ValidationConfig

	// Scheduled runs and API
	Schedule string
	Port     string

	// Run history (optional)
	Database DatabaseConfig
	Redis    RedisConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// ValidationConfig holds the batch thresholds. A rules file, when set,
// replaces the thresholds below.
type ValidationConfig struct {
	InputDir        string
	ExpectedFiles   int
	ExpectedColumns int
	DriftTolerance  int
	TimestampColumn string
	PartitionPolicy string // defect, abort, skip
	RulesFile       string
	Workers         int
}

// DatabaseConfig holds PostgreSQL configuration for run history
type DatabaseConfig struct {
	URL string // empty disables persistence

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Enabled reports whether run history is persisted
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// RedisConfig holds Redis configuration for the latest-run cache
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
	TTL      time.Duration
}

// Load reads configuration from environment variables. envFiles, when
// given, replace the default .env lookup.
// ⭐ SSOT: the only caller of os.Getenv
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) > 0 {
		if err := godotenv.Load(envFiles...); err != nil {
			return nil, fmt.Errorf("load env file: %w", err)
		}
	} else {
		loadEnvFile()
	}

	env := &envReader{}
	cfg := &Config{
		Env: getEnv("ENV", "development"),

		Validation: ValidationConfig{
			InputDir:        getEnv("GATE_INPUT_DIR", "data/staging/monthly"),
			ExpectedFiles:   env.getInt("GATE_EXPECTED_FILES", 131),
			ExpectedColumns: env.getInt("GATE_EXPECTED_COLUMNS", 107),
			DriftTolerance:  env.getInt("GATE_DRIFT_TOLERANCE", 2),
			TimestampColumn: getEnv("GATE_TIMESTAMP_COLUMN", "timestamp"),
			PartitionPolicy: getEnv("GATE_PARTITION_POLICY", "defect"),
			RulesFile:       getEnv("GATE_RULES_FILE", ""),
			Workers:         env.getInt("GATE_WORKERS", 1),
		},

		Schedule: getEnv("GATE_SCHEDULE", "0 0 6 * * *"),
		Port:     getEnv("PORT", "8090"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        env.getInt("DB_MAX_CONNS", 5),
			MinConns:        env.getInt("DB_MIN_CONNS", 1),
			MaxConnLifetime: env.getDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: env.getDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       env.getInt("REDIS_DB", 0),
			Enabled:  env.getBool("REDIS_ENABLED", false),
			TTL:      env.getDuration("REDIS_TTL", "24h"),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := errors.Join(env.errs...); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks the values that would make every run meaningless
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	v := c.Validation
	if v.InputDir == "" {
		return fmt.Errorf("GATE_INPUT_DIR is required")
	}
	if v.ExpectedFiles < 0 || v.ExpectedColumns < 0 || v.DriftTolerance < 0 {
		return fmt.Errorf("GATE_EXPECTED_FILES, GATE_EXPECTED_COLUMNS and GATE_DRIFT_TOLERANCE must be >= 0")
	}
	switch v.PartitionPolicy {
	case "defect", "abort", "skip":
	default:
		return fmt.Errorf("GATE_PARTITION_POLICY must be one of: defect, abort, skip")
	}
	if v.Workers < 1 {
		return fmt.Errorf("GATE_WORKERS must be >= 1")
	}

	return nil
}

// loadEnvFile tries to load .env from the working directory or next to the binary
func loadEnvFile() {
	paths := []string{".env"}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// envReader parses typed variables and collects malformed values for Load
type envReader struct {
	errs []error
}

func (e *envReader) getInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: invalid integer %q", key, valueStr))
		return defaultValue
	}

	return value
}

func (e *envReader) getBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: invalid boolean %q", key, valueStr))
		return defaultValue
	}

	return value
}

func (e *envReader) getDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: invalid duration %q", key, valueStr))
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
