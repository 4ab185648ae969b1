package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/oicur0t/gelfwd/pkg/gelf"
)

// LogSource selects where raw records come from.
type LogSource string

const (
	SourceStdin   LogSource = "stdin"
	SourceJournal LogSource = "journal"
	SourceFile    LogSource = "file"
)

// ParseLogSource maps a source name to a LogSource.
func ParseLogSource(name string) (LogSource, error) {
	switch LogSource(name) {
	case SourceStdin, SourceJournal, SourceFile:
		return LogSource(name), nil
	default:
		return "", fmt.Errorf("unknown log source %q", name)
	}
}

// Global is the part of the configuration read once at startup and never
// mutated afterwards.
type Global struct {
	LogSource  LogSource
	LogFile    string
	SenderPort int
}

// Watched is the part of the configuration eligible for runtime hot-reload.
// The watcher replaces it wholesale; the processing loop merges it
// field-by-field into its private working copy.
type Watched struct {
	GraylogAddr     string
	GraylogAddrTTL  time.Duration
	Compression     gelf.Compression
	Team            string
	Service         string
	LogLevelSystem  gelf.SystemLevel
	LogLevelMessage *gelf.MessageLevel
}

// Logging configures the process's own logger.
type Logging struct {
	Level  string
	Format string
}

// Config is the complete configuration document.
type Config struct {
	Global  Global
	Watched Watched
	Logging Logging
}

// fileConfig mirrors the on-disk document before validation.
type fileConfig struct {
	Global struct {
		LogSource  string `mapstructure:"log_source"`
		LogFile    string `mapstructure:"log_file"`
		SenderPort int    `mapstructure:"sender_port"`
	} `mapstructure:"global"`
	Logging struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"logging"`
	GraylogAddr     string        `mapstructure:"graylog_addr"`
	GraylogAddrTTL  time.Duration `mapstructure:"graylog_addr_ttl"`
	Compression     string        `mapstructure:"compression"`
	Team            string        `mapstructure:"team"`
	Service         string        `mapstructure:"service"`
	LogLevelSystem  string        `mapstructure:"log_level_system"`
	LogLevelMessage string        `mapstructure:"log_level_message"`
}

// Load reads and validates the configuration file.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)

	// Set defaults
	v.SetDefault("global.sender_port", 5000)
	v.SetDefault("graylog_addr", "localhost:9000")
	v.SetDefault("graylog_addr_ttl", "60s")
	v.SetDefault("compression", gelf.DefaultCompression.String())
	v.SetDefault("log_level_system", "informational")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var raw fileConfig
	if err := v.Unmarshal(&raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return validate(&raw)
}

// validate converts the raw document into typed configuration and rejects
// anything the process could not safely run with.
func validate(raw *fileConfig) (*Config, error) {
	source, err := ParseLogSource(raw.Global.LogSource)
	if err != nil {
		return nil, fmt.Errorf("global.log_source: %w", err)
	}
	if source == SourceFile && raw.Global.LogFile == "" {
		return nil, fmt.Errorf("global.log_file is required for the file log source")
	}
	if raw.Global.SenderPort < 0 || raw.Global.SenderPort > 65535 {
		return nil, fmt.Errorf("global.sender_port %d out of range", raw.Global.SenderPort)
	}

	if raw.GraylogAddr == "" {
		return nil, fmt.Errorf("graylog_addr is required")
	}

	switch raw.Compression {
	case "none", "gzip", "zlib":
	default:
		return nil, fmt.Errorf("unknown compression algorithm %q", raw.Compression)
	}

	systemLevel, err := gelf.ParseSystemLevel(raw.LogLevelSystem)
	if err != nil {
		return nil, fmt.Errorf("log_level_system: %w", err)
	}

	var msgLevel *gelf.MessageLevel
	if raw.LogLevelMessage != "" {
		switch raw.LogLevelMessage {
		case "fatal", "panic", "error", "warning", "info", "debug":
		default:
			return nil, fmt.Errorf("unknown message log level %q", raw.LogLevelMessage)
		}
		level := gelf.ParseMessageLevel(raw.LogLevelMessage)
		msgLevel = &level
	}

	ttl := raw.GraylogAddrTTL
	if ttl <= 0 {
		ttl = 60 * time.Second
	}

	return &Config{
		Global: Global{
			LogSource:  source,
			LogFile:    raw.Global.LogFile,
			SenderPort: raw.Global.SenderPort,
		},
		Watched: Watched{
			GraylogAddr:     raw.GraylogAddr,
			GraylogAddrTTL:  ttl,
			Compression:     gelf.ParseCompression(raw.Compression),
			Team:            raw.Team,
			Service:         raw.Service,
			LogLevelSystem:  systemLevel,
			LogLevelMessage: msgLevel,
		},
		Logging: Logging{
			Level:  raw.Logging.Level,
			Format: raw.Logging.Format,
		},
	}, nil
}

// LoadWatched re-reads the configuration file and returns only the watched
// part. The watcher uses it so a reload goes through the exact same parsing
// and validation as startup.
func LoadWatched(configPath string) (Watched, error) {
	cfg, err := Load(configPath)
	if err != nil {
		return Watched{}, err
	}
	return cfg.Watched, nil
}
