package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server ServerConfig
	DB     DBConfig
	S3     S3Config
	Azure  AzureConfig
	LLM    LLMConfig
	Batch  BatchConfig
	CORS   CORSConfig
	Log    LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// AzureConfig holds Document Intelligence analysis settings.
type AzureConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	APIKey          string `mapstructure:"api_key"`
	Locale          string `mapstructure:"locale"`
	TimeoutSecs     int    `mapstructure:"timeout_secs"`
	PollIntervalMS  int    `mapstructure:"poll_interval_ms"`
	MaxPollAttempts int    `mapstructure:"max_poll_attempts"`
	MaxRetries      int    `mapstructure:"max_retries"`
}

// PollInterval returns the poll interval as a duration.
func (a *AzureConfig) PollInterval() time.Duration {
	return time.Duration(a.PollIntervalMS) * time.Millisecond
}

// LLMConfig holds settings for the secondary LLM field extractor.
type LLMConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
	TimeoutSecs int     `mapstructure:"timeout_secs"`
}

// BatchConfig holds batch pipeline settings.
type BatchConfig struct {
	WindowSize   int    `mapstructure:"window_size"`
	ProcessedDir string `mapstructure:"processed_dir"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the INVODEX_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("INVODEX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "invodex")
	v.SetDefault("db.password", "invodex_secret")
	v.SetDefault("db.name", "invodex_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.presign_expiry", 3600)

	// Azure Document Intelligence defaults
	v.SetDefault("azure.endpoint", "")
	v.SetDefault("azure.api_key", "")
	v.SetDefault("azure.locale", "he-IL")
	v.SetDefault("azure.timeout_secs", 30)
	v.SetDefault("azure.poll_interval_ms", 1000)
	v.SetDefault("azure.max_poll_attempts", 60)
	v.SetDefault("azure.max_retries", 3)

	// LLM defaults
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "gpt-4o")
	v.SetDefault("llm.temperature", 0.1)
	v.SetDefault("llm.timeout_secs", 120)

	// Batch defaults
	v.SetDefault("batch.window_size", 10)
	v.SetDefault("batch.processed_dir", "processed")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:5173,http://localhost:3000")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":             "INVODEX_SERVER_PORT",
		"server.read_timeout":     "INVODEX_SERVER_READ_TIMEOUT",
		"server.write_timeout":    "INVODEX_SERVER_WRITE_TIMEOUT",
		"server.environment":      "INVODEX_SERVER_ENVIRONMENT",
		"db.host":                 "INVODEX_DB_HOST",
		"db.port":                 "INVODEX_DB_PORT",
		"db.user":                 "INVODEX_DB_USER",
		"db.password":             "INVODEX_DB_PASSWORD",
		"db.name":                 "INVODEX_DB_NAME",
		"db.sslmode":              "INVODEX_DB_SSLMODE",
		"db.max_open":             "INVODEX_DB_MAX_OPEN",
		"db.max_idle":             "INVODEX_DB_MAX_IDLE",
		"s3.region":               "INVODEX_S3_REGION",
		"s3.bucket":               "INVODEX_S3_BUCKET",
		"s3.endpoint":             "INVODEX_S3_ENDPOINT",
		"s3.access_key":           "INVODEX_S3_ACCESS_KEY",
		"s3.secret_key":           "INVODEX_S3_SECRET_KEY",
		"s3.presign_expiry":       "INVODEX_S3_PRESIGN_EXPIRY",
		"azure.endpoint":          "INVODEX_AZURE_ENDPOINT",
		"azure.api_key":           "INVODEX_AZURE_API_KEY",
		"azure.locale":            "INVODEX_AZURE_LOCALE",
		"azure.timeout_secs":      "INVODEX_AZURE_TIMEOUT_SECS",
		"azure.poll_interval_ms":  "INVODEX_AZURE_POLL_INTERVAL_MS",
		"azure.max_poll_attempts": "INVODEX_AZURE_MAX_POLL_ATTEMPTS",
		"azure.max_retries":       "INVODEX_AZURE_MAX_RETRIES",
		"llm.api_key":             "INVODEX_LLM_API_KEY",
		"llm.model":               "INVODEX_LLM_MODEL",
		"llm.temperature":         "INVODEX_LLM_TEMPERATURE",
		"llm.timeout_secs":        "INVODEX_LLM_TIMEOUT_SECS",
		"batch.window_size":       "INVODEX_BATCH_WINDOW_SIZE",
		"batch.processed_dir":     "INVODEX_BATCH_PROCESSED_DIR",
		"log.level":               "INVODEX_LOG_LEVEL",
		"log.format":              "INVODEX_LOG_FORMAT",
		"cors.allowed_origins":    "INVODEX_CORS_ALLOWED_ORIGINS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if INVODEX_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("INVODEX_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Azure = AzureConfig{
		Endpoint:        v.GetString("azure.endpoint"),
		APIKey:          v.GetString("azure.api_key"),
		Locale:          v.GetString("azure.locale"),
		TimeoutSecs:     v.GetInt("azure.timeout_secs"),
		PollIntervalMS:  v.GetInt("azure.poll_interval_ms"),
		MaxPollAttempts: v.GetInt("azure.max_poll_attempts"),
		MaxRetries:      v.GetInt("azure.max_retries"),
	}
	cfg.LLM = LLMConfig{
		APIKey:      v.GetString("llm.api_key"),
		Model:       v.GetString("llm.model"),
		Temperature: v.GetFloat64("llm.temperature"),
		TimeoutSecs: v.GetInt("llm.timeout_secs"),
	}
	cfg.Batch = BatchConfig{
		WindowSize:   v.GetInt("batch.window_size"),
		ProcessedDir: v.GetString("batch.processed_dir"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	return cfg, nil
}
