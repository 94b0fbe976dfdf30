package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/expense-queue/internal/common"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	s, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, s.API.BaseURL)
	assert.Equal(t, 30*time.Second, s.API.Timeout)
	assert.Equal(t, 300*time.Millisecond, s.TUI.Debounce)
	assert.True(t, s.TUI.Filter)
	assert.True(t, s.TUI.DuplicatesPage)
	assert.Equal(t, ":memory:", s.Emulator.Database)
	assert.NotContains(t, s.Logging.File, "~")
}

func TestLoad_FromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api:
  base_url: https://ledger.example.com
  timeout: 5s
tui:
  debounce: 150ms
  features:
    duplicates_page: false
`), 0o600))

	v := viper.New()
	SetDefaults(v)
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	s, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "https://ledger.example.com", s.API.BaseURL)
	assert.Equal(t, 5*time.Second, s.API.Timeout)
	assert.Equal(t, 150*time.Millisecond, s.TUI.Debounce)
	assert.False(t, s.TUI.DuplicatesPage)
	assert.True(t, s.TUI.Filter)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		wantErr error
	}{
		{"empty", "", common.ErrMissingConfig},
		{"relative", "localhost", common.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			SetDefaults(v)
			v.Set("api.base_url", tt.baseURL)

			_, err := Load(v)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("XQ_TEST_DIR", "/tmp/xq")

	assert.Equal(t, "", ExpandPath(""))
	assert.Equal(t, home, ExpandPath("~"))
	assert.Equal(t, filepath.Join(home, "a/b"), ExpandPath("~/a/b"))
	assert.Equal(t, "/tmp/xq/db", ExpandPath("$XQ_TEST_DIR/db"))
}
