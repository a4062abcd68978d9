package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	envConfigDefaultPath    = "WIREBOARD_CONFIG_DEFAULT_PATH"
	defaultConfigName       = "config.yaml"
	defaultClientConfigName = "board.yaml"
)

// Load builds server configuration from defaults, optional config file, env
// vars, and returns the resolved path.
// Precedence: defaults < config file < env vars < caller overrides.
func Load(logger *zerolog.Logger, explicitPath string) (Config, string, error) {
	cfg := Default()

	v := viper.New()
	setDefaults(v, map[string]any{
		"addr":                cfg.Addr,
		"read_header_timeout": cfg.ReadHeaderTimeout,
		"shutdown_timeout":    cfg.ShutdownTimeout,
		"database_path":       cfg.DatabasePath,
		"log_level":           cfg.LogLevel,
		"table":               cfg.Table,
		"max_content_length":  cfg.MaxContentLength,
		"max_batch_size":      cfg.MaxBatchSize,
		"insert_rate_limit":   cfg.InsertRateLimit,
		"api_key_secret":      cfg.APIKeySecret,
		"api_key_issuer":      cfg.APIKeyIssuer,
		"redis_url":           cfg.RedisURL,
		"redis_channel":       cfg.RedisChannel,
	})
	v.SetEnvPrefix("WIREBOARD")

	configPath := resolveConfigPath(explicitPath, defaultConfigName)
	if err := read(v, logger, configPath, cfg); err != nil {
		return cfg, configPath, err
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, configPath, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, configPath, nil
}

// LoadClient is Load for the board client, reading board.yaml and BOARD_*
// env vars.
func LoadClient(logger *zerolog.Logger, explicitPath string) (ClientConfig, string, error) {
	cfg := DefaultClient()

	v := viper.New()
	setDefaults(v, map[string]any{
		"server_url":    cfg.ServerURL,
		"api_key":       cfg.APIKey,
		"table":         cfg.Table,
		"queue_backend": cfg.QueueBackend,
		"queue_path":    cfg.QueuePath,
		"queue_key":     cfg.QueueKey,
		"redis_url":     cfg.RedisURL,
		"flush_timeout": cfg.FlushTimeout,
		"log_level":     cfg.LogLevel,
	})
	v.SetEnvPrefix("BOARD")

	configPath := resolveConfigPath(explicitPath, defaultClientConfigName)
	if err := read(v, logger, configPath, cfg); err != nil {
		return cfg, configPath, err
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, configPath, fmt.Errorf("unmarshal config: %w", err)
	}

	switch cfg.QueueBackend {
	case QueueBackendSQLite, QueueBackendRedis, QueueBackendMemory:
	default:
		return cfg, configPath, fmt.Errorf("unknown queue backend %q", cfg.QueueBackend)
	}

	return cfg, configPath, nil
}

// setDefaults registers every key so env vars bind even without a file.
func setDefaults(v *viper.Viper, defaults map[string]any) {
	v.SetConfigType("yaml")
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

func read(v *viper.Viper, logger *zerolog.Logger, configPath string, defaults any) error {
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			if writeErr := writeDefaultConfig(configPath, defaults); writeErr != nil && logger != nil {
				logger.Warn().Err(writeErr).Str("path", configPath).Msg("failed to write default config")
			} else if logger != nil {
				logger.Info().Str("path", configPath).Msg("created default config")
			}
			// try reading again in case it was just written
			if readErr := v.ReadInConfig(); readErr != nil && logger != nil {
				logger.Warn().Err(readErr).Str("path", configPath).Msg("failed to read config after writing default")
			}
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func resolveConfigPath(explicitPath, name string) string {
	if explicitPath != "" {
		return explicitPath
	}

	if base := os.Getenv(envConfigDefaultPath); base != "" {
		if err := os.MkdirAll(base, 0o755); err == nil {
			return filepath.Join(base, name)
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return name
	}
	return filepath.Join(cwd, name)
}

func writeDefaultConfig(path string, cfg any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
