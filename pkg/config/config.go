package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Supported output formats
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// Config carries environment-driven settings shared by the CLI and the API server.
type Config struct {
	DataFile     string
	LogFile      string
	HTTPAddr     string
	LogLevel     slog.Level
	OutputFormat string
}

// Load reads an optional .env file from the working directory, then the
// environment, applies defaults and validates the values.
func Load() (Config, error) {
	return LoadFile(".env")
}

// LoadFile is Load with an explicit dotenv path. A missing file is not an
// error; variables already set in the environment win over the file.
func LoadFile(path string) (Config, error) {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("reading %s: %w", path, err)
	}

	cfg := Config{
		DataFile: envDefault("PANTRY_DATA_FILE", "data.txt"),
		LogFile:  envDefault("PANTRY_LOG_FILE", "log.txt"),
		HTTPAddr: envDefault("PANTRY_HTTP_ADDR", ":8080"),
	}

	level, err := ParseLogLevel(envDefault("PANTRY_LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, fmt.Errorf("PANTRY_LOG_LEVEL: %w", err)
	}
	cfg.LogLevel = level

	format := envDefault("PANTRY_OUTPUT_FORMAT", FormatText)
	if err := ValidateFormat(format); err != nil {
		return Config{}, fmt.Errorf("PANTRY_OUTPUT_FORMAT: %w", err)
	}
	cfg.OutputFormat = format

	return cfg, nil
}

// ParseLogLevel accepts debug, info, warn or error in any case
func ParseLogLevel(value string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", value)
	}
}

// ValidateFormat checks an output format name
func ValidateFormat(format string) error {
	switch format {
	case FormatText, FormatJSON, FormatCSV:
		return nil
	default:
		return fmt.Errorf("unsupported output format %q (want text, json or csv)", format)
	}
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}
