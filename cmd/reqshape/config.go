package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/reoring/reqshape"
	"github.com/reoring/reqshape/internal/server"
)

// =============================================================================
// Config Types
// =============================================================================

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	Validation ValidationConfig `mapstructure:"validation"`
	Decode     DecodeConfig     `mapstructure:"decode"`
	Shapes     ShapesConfig     `mapstructure:"shapes"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Address returns the server address in host:port format.
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Timeouts converts the durations for the HTTP server.
func (c ServerConfig) Timeouts() server.Timeouts {
	return server.Timeouts{Read: c.ReadTimeout, Write: c.WriteTimeout, Shutdown: c.ShutdownTimeout}
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn warning error"`
	Format string `mapstructure:"format" validate:"oneof=json text"`
}

// ValidationConfig mirrors reqshape.Config.
type ValidationConfig struct {
	Whitelist            bool `mapstructure:"whitelist"`
	ForbidNonWhitelisted bool `mapstructure:"forbid_non_whitelisted"`
	ForbidUnknownValues  bool `mapstructure:"forbid_unknown_values"`
	MaxDepth             int  `mapstructure:"max_depth" validate:"min=0"`
}

// DecodeConfig bounds the JSON decoder.
type DecodeConfig struct {
	MaxBytes            int64 `mapstructure:"max_bytes" validate:"min=0"`
	MaxDepth            int   `mapstructure:"max_depth" validate:"min=0"`
	RejectDuplicateKeys bool  `mapstructure:"reject_duplicate_keys"`
}

// ShapesConfig points at an optional YAML shape file loaded next to the
// built-in procurement shapes.
type ShapesConfig struct {
	File string `mapstructure:"file"`
}

// Validator returns the validation switches with logger attached.
func (c *Config) Validator(logger *slog.Logger) reqshape.Config {
	return reqshape.Config{
		Whitelist:            c.Validation.Whitelist,
		ForbidNonWhitelisted: c.Validation.ForbidNonWhitelisted,
		ForbidUnknownValues:  c.Validation.ForbidUnknownValues,
		MaxDepth:             c.Validation.MaxDepth,
		Logger:               logger,
	}
}

// DecodeOpt returns the decoder limits.
func (c *Config) DecodeOpt() reqshape.DecodeOpt {
	return reqshape.DecodeOpt{
		MaxBytes:            c.Decode.MaxBytes,
		MaxDepth:            c.Decode.MaxDepth,
		RejectDuplicateKeys: c.Decode.RejectDuplicateKeys,
	}
}

// =============================================================================
// Config Loading
// =============================================================================

// LoadConfig loads configuration from file and environment.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	def := reqshape.DefaultConfig()
	dec := reqshape.DefaultDecodeOpt()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("validation.whitelist", def.Whitelist)
	v.SetDefault("validation.forbid_non_whitelisted", def.ForbidNonWhitelisted)
	v.SetDefault("validation.forbid_unknown_values", def.ForbidUnknownValues)
	v.SetDefault("validation.max_depth", def.MaxDepth)
	v.SetDefault("decode.max_bytes", dec.MaxBytes)
	v.SetDefault("decode.max_depth", dec.MaxDepth)
	v.SetDefault("decode.reject_duplicate_keys", dec.RejectDuplicateKeys)
	v.SetDefault("shapes.file", "")

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			// A missing file falls back to defaults.
			if _, ok := err.(viper.ConfigParseError); ok {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	v.SetEnvPrefix("REQSHAPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	cfg.Log.Format = strings.ToLower(strings.TrimSpace(cfg.Log.Format))
	if err := validateStruct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

var structValidator = validator.New()

func validateStruct(c *Config) error { return structValidator.Struct(c) }

// =============================================================================
// Logger Setup
// =============================================================================

// SetupLogger creates a logger with the configured level and format.
func SetupLogger(cfg *Config, w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.ToLower(cfg.Log.Format) == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler)
}
