package multipartenc

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
)

const (
	// DefaultPartLimit is the default maximum size of a single part (10MB).
	DefaultPartLimit = 10 << 20

	// DefaultTotalLimit is the default maximum size of a whole request body
	// (32MB).
	DefaultTotalLimit = 32 << 20
)

// Policy decides what happens to parts whose name matches no field.
type Policy int

const (
	// Strict records an unknown field failure for every unknown part.
	Strict Policy = iota

	// Lenient discards unknown parts.
	Lenient
)

func (p Policy) String() string {
	switch p {
	case Strict:
		return "strict"
	case Lenient:
		return "lenient"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

func (p Policy) MarshalText() ([]byte, error) {
	switch p {
	case Strict, Lenient:
		return []byte(p.String()), nil
	}
	return nil, fmt.Errorf("multipart: invalid policy %d", int(p))
}

func (p *Policy) UnmarshalText(text []byte) error {
	switch string(text) {
	case "strict":
		*p = Strict
	case "lenient":
		*p = Lenient
	default:
		return fmt.Errorf("multipart: invalid policy %q: must be %q or %q", text, "strict", "lenient")
	}
	return nil
}

// Config holds the recognised decoder options. A zero limit disables the
// corresponding check.
type Config struct {
	UnknownFields Policy `env:"UNKNOWN_FIELDS" envDefault:"strict"`
	PartLimit     int64  `env:"PART_LIMIT" envDefault:"10485760"`
	TotalLimit    int64  `env:"TOTAL_LIMIT" envDefault:"33554432"`
}

// DefaultConfig returns the configuration used when no option is given:
// strict unknown field handling with the default limits.
func DefaultConfig() Config {
	return Config{
		UnknownFields: Strict,
		PartLimit:     DefaultPartLimit,
		TotalLimit:    DefaultTotalLimit,
	}
}

// Validate reports whether the configuration is usable.
func (c Config) Validate() error {
	var errs []error
	if c.UnknownFields != Strict && c.UnknownFields != Lenient {
		errs = append(errs, fmt.Errorf("multipart: invalid policy %d", int(c.UnknownFields)))
	}
	if c.PartLimit < 0 {
		errs = append(errs, errors.New("multipart: negative part limit"))
	}
	if c.TotalLimit < 0 {
		errs = append(errs, errors.New("multipart: negative total limit"))
	}
	return errors.Join(errs...)
}

// LoadConfig reads the configuration from MULTIPART_UNKNOWN_FIELDS,
// MULTIPART_PART_LIMIT and MULTIPART_TOTAL_LIMIT, using the defaults for
// unset variables.
func LoadConfig() (Config, error) {
	return LoadConfigWithPrefix("MULTIPART_")
}

// LoadConfigWithPrefix is like [LoadConfig] with a custom variable prefix.
func LoadConfigWithPrefix(prefix string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: prefix}); err != nil {
		return Config{}, fmt.Errorf("multipart: load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Option configures a [Decoder].
type Option func(*options)

type options struct {
	Config
	logger *slog.Logger
}

func newOptions(opts []Option) options {
	o := options{
		Config: DefaultConfig(),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithConfig replaces the whole configuration.
// Panics for an invalid configuration; misconfiguration should prevent
// startup rather than surface on the first request.
func WithConfig(c Config) Option {
	return func(o *options) {
		if err := c.Validate(); err != nil {
			panic(err)
		}
		o.Config = c
	}
}

// WithPolicy sets the unknown field policy.
func WithPolicy(p Policy) Option {
	return func(o *options) {
		if p != Strict && p != Lenient {
			panic(fmt.Errorf("multipart: invalid policy %d", int(p)))
		}
		o.UnknownFields = p
	}
}

// WithPartLimit sets the maximum size of a single part in bytes.
func WithPartLimit(n int64) Option {
	return func(o *options) {
		if n < 0 {
			panic("multipart: negative part limit")
		}
		o.PartLimit = n
	}
}

// WithTotalLimit sets the maximum size of the whole body in bytes.
func WithTotalLimit(n int64) Option {
	return func(o *options) {
		if n < 0 {
			panic("multipart: negative total limit")
		}
		o.TotalLimit = n
	}
}

// WithLogger sets the logger for per part diagnostics. Nil loggers are
// ignored.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
