// Package config fills env-tagged structs from the process environment and
// optional dotenv files.
package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Validator is implemented by config structs that check their own
// invariants once parsing succeeds.
type Validator interface {
	Validate() error
}

type options struct {
	env env.Options
}

// Option adjusts how Load reads variables.
type Option func(*options)

// WithPrefix only reads variables starting with prefix; tags are written
// without it.
func WithPrefix(prefix string) Option {
	return func(o *options) { o.env.Prefix = prefix }
}

// WithEnvironment reads from vars instead of the process environment.
func WithEnvironment(vars map[string]string) Option {
	return func(o *options) { o.env.Environment = vars }
}

// Load parses variables into cfg using its `env` and `envDefault` tags, then
// calls cfg.Validate when cfg implements Validator.
func Load(cfg any, opts ...Option) error {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if err := env.ParseWithOptions(cfg, o.env); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	if v, ok := cfg.(Validator); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("validate config: %w", err)
		}
	}
	return nil
}

// LoadDotEnv copies variables from the given dotenv files (default ".env")
// into the process environment. Variables that are already set win and
// missing files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		err := godotenv.Load(p)
		if err == nil || errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return fmt.Errorf("load %s: %w", p, err)
	}
	return nil
}
