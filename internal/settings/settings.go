// Package settings loads the configuration of the multipartd service from
// the environment.
package settings

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/tomasbasham/multipartenc"
)

// Log output formats.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// Settings holds the service configuration. The decoder configuration is
// read from the MULTIPART_ prefixed variables understood by
// [multipartenc.LoadConfig].
type Settings struct {
	ListenAddr      string        `env:"LISTEN_ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"text"`
	LogLevel        slog.Level    `env:"LOG_LEVEL" envDefault:"info"`

	Multipart multipartenc.Config `envPrefix:"MULTIPART_"`
}

// Load parses the settings from the environment and validates them.
func Load() (Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return Settings{}, fmt.Errorf("settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate reports whether the settings are usable.
func (s Settings) Validate() error {
	var errs []error
	if s.ListenAddr == "" {
		errs = append(errs, errors.New("settings: empty listen address"))
	}
	if s.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("settings: shutdown timeout must be positive"))
	}
	switch s.LogFormat {
	case FormatJSON, FormatText:
	default:
		errs = append(errs, fmt.Errorf("settings: invalid log format %q: must be %q or %q", s.LogFormat, FormatJSON, FormatText))
	}
	if err := s.Multipart.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Logger builds the service logger writing to w.
func (s Settings) Logger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: s.LogLevel}
	if s.LogFormat == FormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
