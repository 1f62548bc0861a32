package tui

import (
	"context"
	"log/slog"

	"github.com/Veraticus/budgets/internal/tui/themes"
)

// DefaultBreakpoint is the narrowest terminal width that shows the table
// layout. Narrower terminals get stacked cards.
const DefaultBreakpoint = 80

// Config holds TUI configuration.
type Config struct {
	Theme      themes.Theme
	Context    context.Context
	Logger     *slog.Logger
	Width      int
	Height     int
	Breakpoint int
	ShowHelp   bool
	AltScreen  bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Theme:      themes.Default,
		Context:    context.Background(),
		Logger:     slog.Default(),
		Width:      100,
		Height:     30,
		Breakpoint: DefaultBreakpoint,
		ShowHelp:   true,
		AltScreen:  true,
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithBreakpoint sets the width at which the table layout replaces cards.
func WithBreakpoint(width int) Option {
	return func(c *Config) {
		if width > 0 {
			c.Breakpoint = width
		}
	}
}

// WithContext sets the context passed to store calls.
func WithContext(ctx context.Context) Option {
	return func(c *Config) {
		if ctx != nil {
			c.Context = ctx
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// WithHelp toggles the help line under the grid.
func WithHelp(show bool) Option {
	return func(c *Config) {
		c.ShowHelp = show
	}
}

// WithAltScreen toggles the alternate screen buffer.
func WithAltScreen(enabled bool) Option {
	return func(c *Config) {
		c.AltScreen = enabled
	}
}
