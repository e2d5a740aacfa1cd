package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	dochttp "github.com/sagarc03/docroot/http"
)

// configKey is the context key for storing the loaded configuration.
type configKey struct{}

// WithContext returns a new context with the config stored.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from context.
// Returns an error if config is not found.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

// Config is the root configuration struct for docroot.
type Config struct {
	Env     string             `mapstructure:"env" yaml:"env" validate:"required,oneof=dev prod"`
	Root    RootConfig         `mapstructure:"root" yaml:"root"`
	Server  ServerConfig       `mapstructure:"server" yaml:"server"`
	HTTP    HTTPConfig         `mapstructure:"http" yaml:"http"`
	CORS    dochttp.CORSConfig `mapstructure:"cors" yaml:"cors"`
	Mime    MimeConfig         `mapstructure:"mime" yaml:"mime"`
	Metrics MetricsConfig      `mapstructure:"metrics" yaml:"metrics"`
	Log     LogConfig          `mapstructure:"log" yaml:"log"`
}

// RootConfig names the served directory. Whether the path exists and is a
// directory is checked at serve time, not here; load-time validation only
// rejects an empty value.
type RootConfig struct {
	Path string `mapstructure:"path" yaml:"path" validate:"required"`
}

// ServerConfig holds the HTTP bind surface. Port 0 asks the kernel for an
// ephemeral port; an empty Addr binds all interfaces.
type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
	Port int    `mapstructure:"port" yaml:"port" validate:"min=0,max=65535"`
}

// HTTPConfig holds request-handling knobs.
type HTTPConfig struct {
	// RateLimit caps requests per second per client IP; 0 disables limiting.
	RateLimit int `mapstructure:"rate_limit" yaml:"rate_limit" validate:"min=0"`
}

// MimeConfig carries extension to content-type entries merged into the
// registry on top of the built-in table.
type MimeConfig struct {
	Types map[string]string `mapstructure:"types" yaml:"types,omitempty"`
}

// MetricsConfig holds the scrape listener address; empty disables metrics.
// The endpoint gets its own listener so it never shadows a served path.
type MetricsConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr,omitempty"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level" validate:"required,oneof=debug info warn error"`
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"root": "root.path",
	"port": "server.port",
	"addr": "server.addr",
}

// bindFlags binds CLI flags to viper keys with custom name mapping.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		// Use custom mapping if it exists, otherwise use flag name as-is
		viperKey := f.Name
		if mapped, ok := flagToViperKey[viperKey]; ok {
			viperKey = mapped
		}

		// Only bind if the flag was explicitly set
		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

// setDefaults configures default values on the viper instance.
func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")

	v.SetDefault("root.path", "./public")

	v.SetDefault("server.addr", "")
	v.SetDefault("server.port", 8080)

	v.SetDefault("http.rate_limit", 0) // 0 means no limit

	v.SetDefault("metrics.addr", "") // empty means disabled

	v.SetDefault("log.level", "info")
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > config files > defaults
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones)
//   - flags: cobra flag set for flag binding (can be nil)
func Load(configFiles []string, flags *pflag.FlagSet) (*Config, error) {
	_, cfg, err := load(configFiles, flags)
	return cfg, err
}

// LoadWatched loads configuration like Load and additionally watches the
// config file for changes. Each change that parses and validates is handed to
// onChange; a reload that fails is logged and skipped, leaving the previous
// configuration in effect.
func LoadWatched(configFiles []string, flags *pflag.FlagSet, onChange func(*Config)) (*Config, error) {
	v, cfg, err := load(configFiles, flags)
	if err != nil {
		return nil, err
	}

	v.OnConfigChange(func(fsnotify.Event) {
		next, err := unmarshal(v)
		if err != nil {
			slog.Warn("config reload skipped", "err", err)
			return
		}
		onChange(next)
	})
	v.WatchConfig()

	return cfg, nil
}

func load(configFiles []string, flags *pflag.FlagSet) (*viper.Viper, *Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Read config files
	if len(configFiles) > 0 {
		v.SetConfigFile(configFiles[0])
		if err := v.ReadInConfig(); err != nil {
			slog.Warn("error reading config file", "file", configFiles[0], "err", err)
		}

		for _, cf := range configFiles[1:] {
			v.SetConfigFile(cf)
			if err := v.MergeInConfig(); err != nil {
				slog.Warn("error merging config file", "file", cf, "err", err)
			}
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				slog.Warn("error reading config file", "err", err)
			}
		}
	}

	// 3. Bind environment variables
	v.SetEnvPrefix("DOCROOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. Bind flags (if provided)
	if flags != nil {
		bindFlags(v, flags)
	}

	// 5. Unmarshal and validate
	cfg, err := unmarshal(v)
	if err != nil {
		return nil, nil, err
	}

	return v, cfg, nil
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// WriteFile renders cfg as YAML at path, creating parent directories as
// needed.
func WriteFile(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
