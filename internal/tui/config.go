package tui

import (
	"time"

	"github.com/Veraticus/expense-queue/internal/service"
	"github.com/Veraticus/expense-queue/internal/tui/components"
	"github.com/Veraticus/expense-queue/internal/tui/themes"
)

// Config holds TUI configuration.
type Config struct {
	Theme     themes.Theme
	Catalog   service.CatalogAPI
	Now       func() time.Time
	Debounce  time.Duration
	Width     int
	Height    int
	AltScreen bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Theme:     themes.Default,
		Now:       time.Now,
		Debounce:  components.DefaultDebounce,
		Width:     100,
		Height:    30,
		AltScreen: true,
	}
}

// WithCatalog sets the API used by the merchant and tag autocompletes.
func WithCatalog(catalog service.CatalogAPI) Option {
	return func(c *Config) {
		c.Catalog = catalog
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithDebounce sets the autocomplete quiet period.
func WithDebounce(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.Debounce = d
		}
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithClock replaces the clock used for toast expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Config) {
		c.Now = now
	}
}

// WithoutAltScreen keeps the program in the normal terminal buffer.
func WithoutAltScreen() Option {
	return func(c *Config) {
		c.AltScreen = false
	}
}
