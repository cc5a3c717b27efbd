// Package config loads sqltpl CLI configuration.
//
// Sources are layered lowest to highest: built-in defaults, sqltpl.yaml,
// SQLTPL_* environment variables, then command-line flags.
package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/Konsultn-Engineering/sqltpl/connector"
	"github.com/Konsultn-Engineering/sqltpl/dialect"
	"github.com/Konsultn-Engineering/sqltpl/engine"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const (
	EnvPrefix        = "SQLTPL_"
	DefaultSkipToken = "#skip#"
	DefaultCacheSize = 128
)

var configFiles = []string{"sqltpl.yaml", "sqltpl.yml"}

// flagKeys maps flag names onto config keys where they differ.
var flagKeys = map[string]string{
	"driver":     "connection.driver",
	"path":       "connection.path",
	"host":       "connection.host",
	"port":       "connection.port",
	"database":   "connection.database",
	"user":       "connection.username",
	"password":   "connection.password",
	"ssl-mode":   "connection.ssl_mode",
	"skip-token": "skip_token",
	"cache-size": "cache_size",
}

// Config holds all CLI configuration options.
type Config struct {
	Dialect    string           `koanf:"dialect"`
	Strict     bool             `koanf:"strict"`
	Escape     bool             `koanf:"escape"`
	SkipToken  string           `koanf:"skip_token"`
	CacheSize  int              `koanf:"cache_size"`
	Verbose    bool             `koanf:"verbose"`
	Connection connector.Config `koanf:"connection"`

	// FileUsed is the config file that was read, if any.
	FileUsed string `koanf:"-"`
}

func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range configFiles {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load reads configuration from every source. Only flags that were set on
// the command line override lower layers.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"skip_token": DefaultSkipToken,
		"cache_size": DefaultCacheSize,
		"verbose":    false,
		"strict":     false,
		"escape":     false,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	used := findConfigFile(cfgFile)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// 3. Environment: SQLTPL_CONNECTION__HOST -> connection.host
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				key = strings.ReplaceAll(f.Name, "-", "_")
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.FileUsed = used

	if cfg.Dialect != "" {
		if _, err := dialect.ByName(cfg.Dialect); err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
	}
	return &cfg, nil
}

// EngineOptions translates the configuration into engine options. An empty
// dialect leaves the engine default in place.
func (c *Config) EngineOptions(logger *slog.Logger) ([]engine.Option, error) {
	opts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithParseCache(c.CacheSize),
	}
	if c.Dialect != "" {
		d, err := dialect.ByName(c.Dialect)
		if err != nil {
			return nil, err
		}
		opts = append(opts, engine.WithDialect(d))
	}
	if c.Strict {
		opts = append(opts, engine.WithStrictArguments())
	}
	if c.Escape {
		opts = append(opts, engine.WithStringEscaping())
	}
	return opts, nil
}

// NewLogger returns a text logger on w. Verbose enables debug output.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

type configKey struct{}

type loggerKey struct{}

// WithContext stores cfg and logger in ctx.
func WithContext(ctx context.Context, cfg *Config, logger *slog.Logger) context.Context {
	ctx = context.WithValue(ctx, configKey{}, cfg)
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the loaded config, or the defaults when none was stored.
func FromContext(ctx context.Context) *Config {
	if ctx != nil {
		if c, ok := ctx.Value(configKey{}).(*Config); ok {
			return c
		}
	}
	return &Config{SkipToken: DefaultSkipToken, CacheSize: DefaultCacheSize}
}

// GetLogger retrieves the logger from ctx.
func GetLogger(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
			return l
		}
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}
