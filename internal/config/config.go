// Package config provides configuration management functionality.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir         string // Directory holding the replica (always absolute)
	ReplicaFile     string // File name of the replica inside DataDir
	LogLevel        string
	LogPretty       bool
	Port            int
	DisplayLimit    int    // Number of labels kept before folding distributions into "Other"
	RefreshSchedule string // cron expression with seconds; empty disables scheduled refresh
	Replica         ReplicaSource
}

// ReplicaSource describes where a fresh replica is fetched from.
// At most one of URL or S3Bucket is set.
type ReplicaSource struct {
	URL               string
	S3Bucket          string
	S3Key             string
	S3Endpoint        string // S3-compatible endpoint (e.g. Cloudflare R2); empty uses AWS
	S3Region          string
	S3AccessKeyID     string
	S3SecretAccessKey string
}

// Configured reports whether any replica source is set.
func (r ReplicaSource) Configured() bool {
	return r.URL != "" || r.S3Bucket != ""
}

// ReplicaPath returns the absolute path of the replica file.
func (c *Config) ReplicaPath() string {
	return filepath.Join(c.DataDir, c.ReplicaFile)
}

// Load reads configuration from the environment, after loading an optional .env file.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	absDataDir, err := filepath.Abs(getEnv("WEALTHDESK_DATA_DIR", "./data"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:         absDataDir,
		ReplicaFile:     getEnv("WEALTHDESK_REPLICA_FILE", "Base.sqlite"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogPretty:       getEnvAsBool("LOG_PRETTY", false),
		Port:            getEnvAsInt("WEALTHDESK_PORT", 8080),
		DisplayLimit:    getEnvAsInt("WEALTHDESK_DISPLAY_LIMIT", 10),
		RefreshSchedule: getEnv("WEALTHDESK_REFRESH_SCHEDULE", ""),
		Replica: ReplicaSource{
			URL:               getEnv("WEALTHDESK_REPLICA_URL", ""),
			S3Bucket:          getEnv("WEALTHDESK_REPLICA_S3_BUCKET", ""),
			S3Key:             getEnv("WEALTHDESK_REPLICA_S3_KEY", "Base.sqlite"),
			S3Endpoint:        getEnv("WEALTHDESK_REPLICA_S3_ENDPOINT", ""),
			S3Region:          getEnv("WEALTHDESK_REPLICA_S3_REGION", "auto"),
			S3AccessKeyID:     getEnv("WEALTHDESK_REPLICA_S3_ACCESS_KEY_ID", ""),
			S3SecretAccessKey: getEnv("WEALTHDESK_REPLICA_S3_SECRET_ACCESS_KEY", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.DisplayLimit <= 0 {
		return fmt.Errorf("invalid display limit %d", c.DisplayLimit)
	}
	if c.ReplicaFile == "" || filepath.Base(c.ReplicaFile) != c.ReplicaFile {
		return fmt.Errorf("replica file must be a plain file name, got %q", c.ReplicaFile)
	}
	if c.Replica.URL != "" && c.Replica.S3Bucket != "" {
		return errors.New("replica source must be either a URL or an S3 bucket, not both")
	}
	if c.Replica.S3Bucket != "" && c.Replica.S3Key == "" {
		return errors.New("replica S3 key is required when a bucket is set")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
