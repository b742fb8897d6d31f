package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `{
		"port": 9090,
		"database_url": "postgres://localhost/compass",
		"api_key": "test-key",
		"history_limit": 20,
		"turn_timeout_secs": 30
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "postgres://localhost/compass", cfg.DatabaseURL)
	assert.Equal(t, 20, cfg.HistoryLimit)
	assert.Equal(t, 30, cfg.TurnTimeoutSecs)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	path := writeConfig(t, `{not json`)
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = LoadConfig("")
	assert.Error(t, err)
}

func TestMergeWithEnv_ExplicitValuesWin(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env/db")
	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("PORT", "7777")

	cfg := Config{DatabaseURL: "postgres://file/db", Port: 9000}
	merged := cfg.MergeWithEnv()

	assert.Equal(t, "postgres://file/db", merged.DatabaseURL)
	assert.Equal(t, "env-key", merged.APIKey)
	assert.Equal(t, 9000, merged.Port)
}

func TestMergeWithEnv_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("PORT", "")

	merged := (&Config{}).MergeWithEnv()
	assert.Equal(t, 8080, merged.Port)
}

func TestValidate(t *testing.T) {
	cfg := Config{Port: 8080, DatabaseURL: "postgres://x", APIKey: "k"}
	assert.NoError(t, cfg.Validate())

	missing := Config{Port: 8080, APIKey: "k"}
	assert.Error(t, missing.Validate())

	badPort := Config{Port: 70000, DatabaseURL: "postgres://x", APIKey: "k"}
	assert.Error(t, badPort.Validate())

	negative := Config{Port: 8080, DatabaseURL: "postgres://x", APIKey: "k", HistoryLimit: -1}
	assert.Error(t, negative.Validate())
}
