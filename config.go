package restrouter

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the service configuration for a Dispatcher deployment.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Serialization SerializationConfig `yaml:"serialization"`
	RateLimit     RateLimitSettings   `yaml:"rate_limit"`
	Log           LogConfig           `yaml:"log"`
}

// ServerConfig holds listener settings.
type ServerConfig struct {
	Addr        string `yaml:"addr"`
	MetricsPath string `yaml:"metrics_path"`
}

// SerializationConfig lists the media types to register and the default.
type SerializationConfig struct {
	Default    string   `yaml:"default"`
	MediaTypes []string `yaml:"media_types"`
}

// RateLimitSettings configures per-client rate limiting. A zero Rate disables it.
type RateLimitSettings struct {
	Rate  float64 `yaml:"rate"`
	Burst int     `yaml:"burst"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// serializerFactories maps configurable media types to their serializers.
var serializerFactories = map[string]func() (Serializer, error){
	"application/json": func() (Serializer, error) { return JSON(), nil },
	"application/xml":  func() (Serializer, error) { return XML(), nil },
	"text/xml":         func() (Serializer, error) { return XMLFor("text/xml"), nil },
	"application/yaml": func() (Serializer, error) { return YAML(), nil },
	"application/cbor": CBOR,
	"text/plain":       func() (Serializer, error) { return Text(), nil },
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:        ":8080",
			MetricsPath: "/metrics",
		},
		Serialization: SerializationConfig{
			Default:    "application/json",
			MediaTypes: []string{"application/json", "application/xml"},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig builds the configuration from defaults, then a YAML file
// (path, $RESTROUTER_CONFIG or ./restrouter.yaml), then RESTROUTER_*
// environment variables, and validates the result.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if file := discoverConfigFile(path); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", file, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", file, err)
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return &cfg, nil
}

func discoverConfigFile(path string) string {
	if path != "" {
		return path
	}
	if env := os.Getenv("RESTROUTER_CONFIG"); env != "" {
		return env
	}
	if _, err := os.Stat("restrouter.yaml"); err == nil {
		return "restrouter.yaml"
	}
	return ""
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("RESTROUTER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("RESTROUTER_METRICS_PATH"); v != "" {
		cfg.Server.MetricsPath = v
	}
	if v := os.Getenv("RESTROUTER_DEFAULT_TYPE"); v != "" {
		cfg.Serialization.Default = v
	}
	if v := os.Getenv("RESTROUTER_MEDIA_TYPES"); v != "" {
		cfg.Serialization.MediaTypes = nil
		for t := range strings.SplitSeq(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				cfg.Serialization.MediaTypes = append(cfg.Serialization.MediaTypes, t)
			}
		}
	}
	if v := os.Getenv("RESTROUTER_RATE_LIMIT"); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("RESTROUTER_RATE_LIMIT: %w", err)
		}
		cfg.RateLimit.Rate = r
	}
	if v := os.Getenv("RESTROUTER_RATE_BURST"); v != "" {
		b, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RESTROUTER_RATE_BURST: %w", err)
		}
		cfg.RateLimit.Burst = b
	}
	if v := os.Getenv("RESTROUTER_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("RESTROUTER_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	return nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if len(c.Serialization.MediaTypes) == 0 {
		errs = append(errs, errors.New("serialization.media_types must not be empty"))
	}
	for _, t := range c.Serialization.MediaTypes {
		if _, ok := serializerFactories[normalizeMediaType(t)]; !ok {
			errs = append(errs, fmt.Errorf("serialization.media_types: unsupported media type %q", t))
		}
	}
	def := normalizeMediaType(c.Serialization.Default)
	if !slices.ContainsFunc(c.Serialization.MediaTypes, func(t string) bool { return normalizeMediaType(t) == def }) {
		errs = append(errs, fmt.Errorf("serialization.default %q is not in media_types", c.Serialization.Default))
	}
	if c.RateLimit.Rate < 0 {
		errs = append(errs, errors.New("rate_limit.rate must not be negative"))
	}
	if c.RateLimit.Rate > 0 && c.RateLimit.Burst < 1 {
		errs = append(errs, errors.New("rate_limit.burst must be at least 1 when rate limiting is enabled"))
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}

	return errors.Join(errs...)
}

// Registry builds a Registry holding exactly the configured media types.
func (c *Config) Registry() (*Registry, error) {
	opts := []RegistryOption{WithoutBuiltins()}
	for _, t := range c.Serialization.MediaTypes {
		factory, ok := serializerFactories[normalizeMediaType(t)]
		if !ok {
			return nil, fmt.Errorf("unsupported media type %q", t)
		}
		s, err := factory()
		if err != nil {
			return nil, fmt.Errorf("serializer for %s: %w", t, err)
		}
		opts = append(opts, WithSerializer(s))
	}
	opts = append(opts, WithDefault(c.Serialization.Default))
	return NewRegistry(opts...)
}

// NewLogger returns a slog.Logger writing to w with the configured level and format.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	var lvl slog.Level
	//nolint:errcheck // validated; falls back to info
	lvl.UnmarshalText([]byte(c.Log.Level))

	opts := &slog.HandlerOptions{Level: lvl}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
