package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	DatabasePath      string        `mapstructure:"database_path" yaml:"database_path"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`

	Table            string `mapstructure:"table" yaml:"table"`
	MaxContentLength int    `mapstructure:"max_content_length" yaml:"max_content_length"`
	MaxBatchSize     int    `mapstructure:"max_batch_size" yaml:"max_batch_size"`
	// InsertRateLimit is the number of insert requests one client may make
	// per minute. Zero disables the limit.
	InsertRateLimit int `mapstructure:"insert_rate_limit" yaml:"insert_rate_limit"`

	// APIKeySecret signs project API keys. Empty disables the key check.
	APIKeySecret string `mapstructure:"api_key_secret" yaml:"api_key_secret"`
	APIKeyIssuer string `mapstructure:"api_key_issuer" yaml:"api_key_issuer"`

	// RedisURL enables the cross-instance insert relay when set.
	RedisURL     string `mapstructure:"redis_url" yaml:"redis_url"`
	RedisChannel string `mapstructure:"redis_channel" yaml:"redis_channel"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		DatabasePath:      "data/wireboard.db",
		LogLevel:          "info",
		Table:             "messages",
		MaxContentLength:  2000,
		MaxBatchSize:      100,
		InsertRateLimit:   120,
		APIKeyIssuer:      "wireboard",
		RedisChannel:      "wireboard:inserts",
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.DatabasePath != "" {
		c.DatabasePath = other.DatabasePath
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.Table != "" {
		c.Table = other.Table
	}
	if other.MaxContentLength != 0 {
		c.MaxContentLength = other.MaxContentLength
	}
	if other.MaxBatchSize != 0 {
		c.MaxBatchSize = other.MaxBatchSize
	}
	if other.InsertRateLimit != 0 {
		c.InsertRateLimit = other.InsertRateLimit
	}
	if other.APIKeySecret != "" {
		c.APIKeySecret = other.APIKeySecret
	}
	if other.APIKeyIssuer != "" {
		c.APIKeyIssuer = other.APIKeyIssuer
	}
	if other.RedisURL != "" {
		c.RedisURL = other.RedisURL
	}
	if other.RedisChannel != "" {
		c.RedisChannel = other.RedisChannel
	}
}

// Queue backends for the client's pending queue.
const (
	QueueBackendSQLite = "sqlite"
	QueueBackendRedis  = "redis"
	QueueBackendMemory = "memory"
)

// ClientConfig holds configuration of the board client.
type ClientConfig struct {
	ServerURL    string        `mapstructure:"server_url" yaml:"server_url"`
	APIKey       string        `mapstructure:"api_key" yaml:"api_key"`
	Table        string        `mapstructure:"table" yaml:"table"`
	QueueBackend string        `mapstructure:"queue_backend" yaml:"queue_backend"`
	QueuePath    string        `mapstructure:"queue_path" yaml:"queue_path"`
	QueueKey     string        `mapstructure:"queue_key" yaml:"queue_key"`
	RedisURL     string        `mapstructure:"redis_url" yaml:"redis_url"`
	FlushTimeout time.Duration `mapstructure:"flush_timeout" yaml:"flush_timeout"`
	LogLevel     string        `mapstructure:"log_level" yaml:"log_level"`
}

// DefaultClient returns client configuration defaults.
func DefaultClient() ClientConfig {
	return ClientConfig{
		ServerURL:    "http://localhost:8080",
		Table:        "messages",
		QueueBackend: QueueBackendSQLite,
		QueuePath:    "data/board-queue.db",
		QueueKey:     "pending_messages",
		FlushTimeout: 10 * time.Second,
		LogLevel:     "warn",
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *ClientConfig) UpdateFrom(other ClientConfig) {
	if other.ServerURL != "" {
		c.ServerURL = other.ServerURL
	}
	if other.APIKey != "" {
		c.APIKey = other.APIKey
	}
	if other.Table != "" {
		c.Table = other.Table
	}
	if other.QueueBackend != "" {
		c.QueueBackend = other.QueueBackend
	}
	if other.QueuePath != "" {
		c.QueuePath = other.QueuePath
	}
	if other.QueueKey != "" {
		c.QueueKey = other.QueueKey
	}
	if other.RedisURL != "" {
		c.RedisURL = other.RedisURL
	}
	if other.FlushTimeout != 0 {
		c.FlushTimeout = other.FlushTimeout
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
}
