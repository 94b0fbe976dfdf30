package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/Veraticus/expense-queue/internal/common"
	"github.com/spf13/viper"
)

// Default values for settings that are not configured.
const (
	DefaultBaseURL      = "http://localhost:8000"
	DefaultTimeout      = 30 * time.Second
	DefaultDebounce     = 300 * time.Millisecond
	DefaultTheme        = "default"
	DefaultLogFile      = "~/.local/share/xq/xq.log"
	DefaultEmulatorAddr = "127.0.0.1:8000"
	DefaultEmulatorDB   = ":memory:"
)

// Settings is the typed view of the xq configuration.
type Settings struct {
	API      APISettings
	TUI      TUISettings
	Logging  LoggingSettings
	Emulator EmulatorSettings
}

// APISettings configures the expense API client.
type APISettings struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// TUISettings configures the interactive queue.
type TUISettings struct {
	Theme          string
	Debounce       time.Duration
	Filter         bool
	DuplicatesPage bool
}

// LoggingSettings configures slog output.
type LoggingSettings struct {
	Level  string
	Format string
	File   string
}

// EmulatorSettings configures the local API emulator.
type EmulatorSettings struct {
	Addr     string
	Database string
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", DefaultBaseURL)
	v.SetDefault("api.timeout", DefaultTimeout)
	v.SetDefault("tui.theme", DefaultTheme)
	v.SetDefault("tui.debounce", DefaultDebounce)
	v.SetDefault("tui.features.filter", true)
	v.SetDefault("tui.features.duplicates_page", true)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.file", DefaultLogFile)
	v.SetDefault("emulator.addr", DefaultEmulatorAddr)
	v.SetDefault("emulator.database", DefaultEmulatorDB)
}

// Load reads settings from v and validates them.
func Load(v *viper.Viper) (Settings, error) {
	s := Settings{
		API: APISettings{
			BaseURL: v.GetString("api.base_url"),
			Token:   v.GetString("api.token"),
			Timeout: v.GetDuration("api.timeout"),
		},
		TUI: TUISettings{
			Theme:          v.GetString("tui.theme"),
			Debounce:       v.GetDuration("tui.debounce"),
			Filter:         v.GetBool("tui.features.filter"),
			DuplicatesPage: v.GetBool("tui.features.duplicates_page"),
		},
		Logging: LoggingSettings{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
			File:   ExpandPath(v.GetString("logging.file")),
		},
		Emulator: EmulatorSettings{
			Addr:     v.GetString("emulator.addr"),
			Database: v.GetString("emulator.database"),
		},
	}

	if s.Emulator.Database != DefaultEmulatorDB {
		s.Emulator.Database = ExpandPath(s.Emulator.Database)
	}

	if s.API.BaseURL == "" {
		return s, fmt.Errorf("%w: api.base_url", common.ErrMissingConfig)
	}
	u, err := url.Parse(s.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return s, fmt.Errorf("%w: api.base_url %q is not an absolute URL", common.ErrInvalidConfig, s.API.BaseURL)
	}
	if s.API.Timeout <= 0 {
		s.API.Timeout = DefaultTimeout
	}
	if s.TUI.Debounce < 0 {
		return s, fmt.Errorf("%w: tui.debounce must not be negative", common.ErrInvalidConfig)
	}

	return s, nil
}
