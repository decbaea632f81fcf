package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DefaultGroup is the entry-point group plugins publish their modules under.
const DefaultGroup = "goboot.modules"

// Config is the central typed configuration struct.
// Embed or extend it in your app's own configuration.
type Config struct {
	App  AppConfig
	Boot BootConfig
	Log  LogConfig
}

// AppConfig identifies the running application.
type AppConfig struct {
	Name  string `env:"APP_NAME" envDefault:"GoBoot"`
	Env   string `env:"APP_ENV" envDefault:"local"` // local | production | testing
	Debug bool   `env:"APP_DEBUG" envDefault:"true"`
	Port  string `env:"APP_PORT" envDefault:"8000"`
}

// BootConfig holds the knobs read by the bootstrap layer on every Init call.
type BootConfig struct {
	// AutoPlugins gates plugin discovery.
	AutoPlugins Toggle `env:"GOBOOT_AUTO_PLUGINS" envDefault:"true"`

	// Manifest is an optional YAML file listing extra plugin entry points.
	Manifest string `env:"GOBOOT_PLUGIN_MANIFEST"`

	// Group is the entry-point group queried during discovery.
	Group string `env:"GOBOOT_PLUGIN_GROUP" envDefault:"goboot.modules"`
}

// LogConfig selects the level and handler format of the application logger.
type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`  // debug | info | warn | error
	Format string `env:"LOG_FORMAT" envDefault:"text"` // text | json
}

// Toggle is an on/off switch parsed from an environment value.
//
// Only "0", "false" and "no" (any case) switch it off; every other value,
// including an empty one, leaves it on.
type Toggle bool

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Toggle) UnmarshalText(text []byte) error {
	*t = Toggle(!IsDisabled(string(text)))
	return nil
}

// Enabled reports whether the toggle is on.
func (t Toggle) Enabled() bool { return bool(t) }

// IsDisabled reports whether v is one of the recognised "off" values.
func IsDisabled(v string) bool {
	switch strings.ToLower(v) {
	case "0", "false", "no":
		return true
	}
	return false
}

// Load reads .env files (if present) and populates a Config from environment
// variables. Call once at application start: cfg, err := config.Load()
func Load(envFiles ...string) (*Config, error) {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		// .env may not exist in production
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: load %s: %w", f, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}
	return cfg, nil
}

// ParseBoot parses a BootConfig from environ. A nil map means the process
// environment.
func ParseBoot(environ map[string]string) (BootConfig, error) {
	var bc BootConfig
	if err := env.ParseWithOptions(&bc, env.Options{Environment: environ}); err != nil {
		return BootConfig{}, fmt.Errorf("config: parse boot env: %w", err)
	}
	return bc, nil
}

// Environ converts KEY=VALUE pairs (as returned by os.Environ) into a map.
func Environ(pairs []string) map[string]string {
	return env.ToMap(pairs)
}
