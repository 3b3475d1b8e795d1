// Package config holds the YAML configuration for gabtab dialogue
// boxes: typing cadence, list window behavior, theme colors, and
// logging.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/gabtab/gabtab/internal/interactor"
	"github.com/gabtab/gabtab/internal/message"
	"github.com/gabtab/gabtab/internal/paging"
)

// Config is the gabtab configuration.
type Config struct {
	Typing TypingConfig `yaml:"typing"`
	List   ListConfig   `yaml:"list"`
	Theme  ThemeConfig  `yaml:"theme"`
	Log    LogConfig    `yaml:"log"`
}

// TypingConfig controls the message box typewriter.
type TypingConfig struct {
	CharDelayMs int `yaml:"char_delay_ms"` // Per-character delay; 0 = default
}

// Cadence returns the per-character typing delay.
func (t TypingConfig) Cadence() time.Duration {
	if t.CharDelayMs <= 0 {
		return message.DefaultCadence
	}
	return time.Duration(t.CharDelayMs) * time.Millisecond
}

// ListConfig controls list interactor defaults.
type ListConfig struct {
	Slots       int    `yaml:"slots"`        // Visible display slots
	Paging      string `yaml:"paging"`       // snapped, clamped or looping
	MultiSelect bool   `yaml:"multi_select"` // Allow multiple selections
	Cancellable bool   `yaml:"cancellable"`  // Esc cancels the selection
}

// Mode parses the configured paging mode.
func (l ListConfig) Mode() (paging.Mode, error) {
	return paging.ParseMode(l.Paging)
}

// ThemeConfig holds ANSI color numbers or hex colors for the UI.
type ThemeConfig struct {
	Text     string `yaml:"text"`     // Message and item text
	Accent   string `yaml:"accent"`   // Cursor and input prompt
	Focused  string `yaml:"focused"`  // Focused control foreground
	Surface  string `yaml:"surface"`  // Focused control background
	Selected string `yaml:"selected"` // Selected item foreground
	Muted    string `yaml:"muted"`    // Disabled controls and help text
}

// LogConfig controls the demo binary's logging.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // Log file path; empty = stderr
}

// SlogLevel maps the configured level onto slog. Unknown levels fall
// back to info.
func (l LogConfig) SlogLevel() slog.Level {
	switch l.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Typing: TypingConfig{CharDelayMs: 30},
		List: ListConfig{
			Slots:       3,
			Paging:      "clamped",
			Cancellable: true,
		},
		Theme: ThemeConfig{
			Text:     "252",
			Accent:   "214",
			Focused:  "15",
			Surface:  "62",
			Selected: "15",
			Muted:    "241",
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads a YAML config file, overlaying the defaults. A missing
// file is not an error: the defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values that would make the UI unusable.
func (c Config) Validate() error {
	if c.List.Slots < 1 {
		return fmt.Errorf("list.slots must be positive, got %d", c.List.Slots)
	}
	if _, err := c.List.Mode(); err != nil {
		return fmt.Errorf("list.paging: %w", err)
	}
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	return nil
}

// MessageStyles derives message box styling from the theme.
func (t ThemeConfig) MessageStyles() message.Styles {
	return message.Styles{
		Text: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Text)),
	}
}

// ListStyles derives list styling from the theme.
func (t ThemeConfig) ListStyles() interactor.ListStyles {
	return interactor.ListStyles{
		Cursor:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(t.Accent)),
		Active:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(t.Focused)).Background(lipgloss.Color(t.Surface)),
		Selected:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(t.Selected)),
		Normal:     lipgloss.NewStyle().Foreground(lipgloss.Color(t.Text)),
		Unpickable: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Muted)).Strikethrough(true),
		Help:       lipgloss.NewStyle().Foreground(lipgloss.Color(t.Muted)),
	}
}

// ButtonStyles derives button styling from the theme.
func (t ThemeConfig) ButtonStyles() interactor.ButtonStyles {
	return interactor.ButtonStyles{
		Focused:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(t.Focused)).Background(lipgloss.Color(t.Surface)),
		Blurred:  lipgloss.NewStyle().Foreground(lipgloss.Color(t.Text)),
		Disabled: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Muted)),
	}
}

// InputStyles derives input styling from the theme.
func (t ThemeConfig) InputStyles() interactor.InputStyles {
	return interactor.InputStyles{
		Prompt: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Accent)),
	}
}
