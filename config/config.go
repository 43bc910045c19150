package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the pastebin-lite service.
type Config struct {
	Port            int           `json:"port"`
	BaseURL         string        `json:"base_url"`
	SlugLength      int           `json:"slug_length"`
	MaxContentBytes int64         `json:"max_content_bytes"`
	CleanupInterval time.Duration `json:"cleanup_interval"`
	TestMode        bool          `json:"test_mode"`
	LogLevel        string        `json:"log_level"`

	Backend       string `json:"backend"`
	PostgresDSN   string `json:"postgres_dsn"`
	MongoURI      string `json:"mongo_uri"`
	MongoDatabase string `json:"mongo_database"`
	DynamoTable   string `json:"dynamo_table"`
	AWSRegion     string `json:"aws_region"`
	RedisAddr     string `json:"redis_addr"`
	RedisPassword string `json:"redis_password"`
	RedisDB       int    `json:"redis_db"`

	Version    string `json:"version"`
	BuildTime  string `json:"build_time"`
	CommitHash string `json:"commit_hash"`
}

// LoadConfig loads configuration from CLI flags and PASTE_* environment
// variables; environment variables win.
func LoadConfig() *Config {
	config := &Config{
		Port:            8080,
		BaseURL:         "",
		SlugLength:      10,
		MaxContentBytes: 1 << 20, // 1MiB
		CleanupInterval: 10 * time.Minute,
		LogLevel:        "info",
		Backend:         "memory",
		MongoURI:        "mongodb://localhost:27017",
		MongoDatabase:   "pastebin",
		DynamoTable:     "pastes",
		AWSRegion:       "us-east-1",
		RedisAddr:       "localhost:6379",
	}

	flag.IntVar(&config.Port, "port", config.Port, "Port to listen on")
	flag.StringVar(&config.BaseURL, "url", config.BaseURL, "Base URL for paste links")
	flag.IntVar(&config.SlugLength, "slug-length", config.SlugLength, "Length of generated paste ids")
	flag.Int64Var(&config.MaxContentBytes, "max-content-bytes", config.MaxContentBytes, "Maximum paste content size in bytes")
	flag.DurationVar(&config.CleanupInterval, "cleanup-interval", config.CleanupInterval, "Interval between expired-paste sweeps (0 disables)")
	flag.BoolVar(&config.TestMode, "test-mode", config.TestMode, "Honor the X-Test-Now-Ms header as the current time")
	flag.StringVar(&config.LogLevel, "log-level", config.LogLevel, "Log level (debug, info, warn, error)")
	flag.StringVar(&config.Backend, "backend", config.Backend, "Storage backend (memory, postgres, mongodb, dynamodb, redis)")
	flag.StringVar(&config.PostgresDSN, "postgres-dsn", config.PostgresDSN, "PostgreSQL connection string")
	flag.StringVar(&config.MongoURI, "mongo-uri", config.MongoURI, "MongoDB connection URI")
	flag.StringVar(&config.MongoDatabase, "mongo-database", config.MongoDatabase, "MongoDB database name")
	flag.StringVar(&config.DynamoTable, "dynamo-table", config.DynamoTable, "DynamoDB table name")
	flag.StringVar(&config.AWSRegion, "aws-region", config.AWSRegion, "AWS region for DynamoDB")
	flag.StringVar(&config.RedisAddr, "redis-addr", config.RedisAddr, "Redis address")
	flag.StringVar(&config.RedisPassword, "redis-password", config.RedisPassword, "Redis password")
	flag.IntVar(&config.RedisDB, "redis-db", config.RedisDB, "Redis database number")
	flag.Parse()

	config.applyEnv()
	return config
}

// applyEnv overrides config fields from PASTE_* environment variables.
func (c *Config) applyEnv() {
	if val := os.Getenv("PASTE_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			c.Port = port
		}
	}
	if val := os.Getenv("PASTE_URL"); val != "" {
		c.BaseURL = val
	}
	if val := os.Getenv("PASTE_SLUG_LENGTH"); val != "" {
		if length, err := strconv.Atoi(val); err == nil {
			c.SlugLength = length
		}
	}
	if val := os.Getenv("PASTE_MAX_CONTENT_BYTES"); val != "" {
		if size, err := strconv.ParseInt(val, 10, 64); err == nil {
			c.MaxContentBytes = size
		}
	}
	if val := os.Getenv("PASTE_CLEANUP_INTERVAL"); val != "" {
		if interval, err := time.ParseDuration(val); err == nil {
			c.CleanupInterval = interval
		}
	}
	if val := os.Getenv("PASTE_TEST_MODE"); val != "" {
		c.TestMode = val == "1" || val == "true"
	}
	if val := os.Getenv("PASTE_LOG_LEVEL"); val != "" {
		c.LogLevel = val
	}
	if val := os.Getenv("PASTE_BACKEND"); val != "" {
		c.Backend = val
	}
	if val := os.Getenv("PASTE_POSTGRES_DSN"); val != "" {
		c.PostgresDSN = val
	}
	if val := os.Getenv("PASTE_MONGO_URI"); val != "" {
		c.MongoURI = val
	}
	if val := os.Getenv("PASTE_MONGO_DATABASE"); val != "" {
		c.MongoDatabase = val
	}
	if val := os.Getenv("PASTE_DYNAMO_TABLE"); val != "" {
		c.DynamoTable = val
	}
	if val := os.Getenv("PASTE_AWS_REGION"); val != "" {
		c.AWSRegion = val
	}
	if val := os.Getenv("PASTE_REDIS_ADDR"); val != "" {
		c.RedisAddr = val
	}
	if val := os.Getenv("PASTE_REDIS_PASSWORD"); val != "" {
		c.RedisPassword = val
	}
	if val := os.Getenv("PASTE_REDIS_DB"); val != "" {
		if db, err := strconv.Atoi(val); err == nil {
			c.RedisDB = db
		}
	}
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.SlugLength < 4 || c.SlugLength > 21 {
		return fmt.Errorf("slug length must be between 4 and 21, got %d", c.SlugLength)
	}
	if c.MaxContentBytes < 1 {
		return fmt.Errorf("max content bytes must be positive, got %d", c.MaxContentBytes)
	}
	switch c.Backend {
	case "memory", "postgres", "mongodb", "dynamodb", "redis":
	default:
		return fmt.Errorf("unsupported backend: %s (supported: memory, postgres, mongodb, dynamodb, redis)", c.Backend)
	}
	if c.Backend == "postgres" && c.PostgresDSN == "" {
		return fmt.Errorf("postgres backend requires -postgres-dsn")
	}
	return nil
}
