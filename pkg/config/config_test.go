package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pantryVars = []string{
	"PANTRY_DATA_FILE",
	"PANTRY_LOG_FILE",
	"PANTRY_HTTP_ADDR",
	"PANTRY_LOG_LEVEL",
	"PANTRY_OUTPUT_FORMAT",
}

// unsetPantryEnv clears every PANTRY_ variable for the test and restores them afterwards
func unsetPantryEnv(t *testing.T) {
	t.Helper()
	for _, key := range pantryVars {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadFile_Defaults(t *testing.T) {
	unsetPantryEnv(t)

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, Config{
		DataFile:     "data.txt",
		LogFile:      "log.txt",
		HTTPAddr:     ":8080",
		LogLevel:     slog.LevelInfo,
		OutputFormat: FormatText,
	}, cfg)
}

func TestLoadFile_Environment(t *testing.T) {
	unsetPantryEnv(t)
	t.Setenv("PANTRY_DATA_FILE", "/var/lib/pantry/data.txt")
	t.Setenv("PANTRY_LOG_FILE", " /var/log/pantry.txt ")
	t.Setenv("PANTRY_HTTP_ADDR", "127.0.0.1:9000")
	t.Setenv("PANTRY_LOG_LEVEL", "DEBUG")
	t.Setenv("PANTRY_OUTPUT_FORMAT", "json")

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/pantry/data.txt", cfg.DataFile)
	assert.Equal(t, "/var/log/pantry.txt", cfg.LogFile)
	assert.Equal(t, "127.0.0.1:9000", cfg.HTTPAddr)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, FormatJSON, cfg.OutputFormat)
}

func TestLoadFile_DotEnv(t *testing.T) {
	unsetPantryEnv(t)
	t.Setenv("PANTRY_LOG_FILE", "from-env.txt")

	path := filepath.Join(t.TempDir(), ".env")
	content := "PANTRY_DATA_FILE=from-file.txt\nPANTRY_LOG_FILE=ignored.txt\nPANTRY_OUTPUT_FORMAT=csv\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "from-file.txt", cfg.DataFile)
	assert.Equal(t, "from-env.txt", cfg.LogFile, "the environment wins over the dotenv file")
	assert.Equal(t, FormatCSV, cfg.OutputFormat)
}

func TestLoadFile_InvalidValues(t *testing.T) {
	testCases := []struct {
		name string
		key  string
		val  string
		want string
	}{
		{"level", "PANTRY_LOG_LEVEL", "verbose", "PANTRY_LOG_LEVEL"},
		{"format", "PANTRY_OUTPUT_FORMAT", "xml", "PANTRY_OUTPUT_FORMAT"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			unsetPantryEnv(t)
			t.Setenv(tc.key, tc.val)

			_, err := LoadFile(filepath.Join(t.TempDir(), "missing.env"))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	testCases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"Info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		" error ": slog.LevelError,
	}
	for input, expected := range testCases {
		level, err := ParseLogLevel(input)
		require.NoError(t, err, input)
		assert.Equal(t, expected, level, input)
	}

	_, err := ParseLogLevel("trace")
	assert.Error(t, err)
}
