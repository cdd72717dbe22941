// Package config loads the formdesigner settings from defaults, an optional
// config file, FORMDESIGNER_* environment variables and bound command flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides, e.g.
// FORMDESIGNER_SERVER_ADDR.
const EnvPrefix = "FORMDESIGNER"

// Auth modes.
const (
	AuthNone  = "none"
	AuthToken = "token"
)

// Config is the resolved application configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Session SessionConfig `mapstructure:"session"`
	Theme   ThemeConfig   `mapstructure:"theme"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Log     LogConfig     `mapstructure:"log"`
	Design  DesignConfig  `mapstructure:"design"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	BasePath        string        `mapstructure:"basePath"`
	ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout"`
}

type SessionConfig struct {
	TTL           time.Duration `mapstructure:"ttl"`
	SweepInterval time.Duration `mapstructure:"sweepInterval"`
	Cookie        string        `mapstructure:"cookie"`
}

type ThemeConfig struct {
	Default string `mapstructure:"default"`
	Variant string `mapstructure:"variant"`
}

type AuthConfig struct {
	Mode string `mapstructure:"mode"`
	// TokenHash is the bcrypt hash of the shared designer token.
	TokenHash string `mapstructure:"tokenHash"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type DesignConfig struct {
	// Seed is a design document loaded into every new session.
	Seed  string `mapstructure:"seed"`
	// Watch reloads Seed when the file changes.
	Watch bool   `mapstructure:"watch"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			BasePath:        "/",
			ShutdownTimeout: 10 * time.Second,
		},
		Session: SessionConfig{
			TTL:           2 * time.Hour,
			SweepInterval: time.Minute,
			Cookie:        "formdesigner_session",
		},
		Theme: ThemeConfig{
			Default: "formdesigner",
			Variant: "system",
		},
		Auth: AuthConfig{Mode: AuthNone},
		Log:  LogConfig{Level: "info", Format: "json"},
	}
}

// Options tune Load.
type Options struct {
	// File is an explicit config file. When empty, formdesigner.{yaml,toml,json}
	// is looked up in the working directory and is optional.
	File string
	// Flags are bound by key; a flag named "addr" overrides "server.addr"
	// through FlagKeys.
	Flags *pflag.FlagSet
	// FlagKeys maps flag names onto config keys.
	FlagKeys map[string]string
}

// FlagKeys lists the flag names the CLI binds onto config keys.
var FlagKeys = map[string]string{
	"addr":       "server.addr",
	"base-path":  "server.basePath",
	"log-level":  "log.level",
	"log-format": "log.format",
	"seed":       "design.seed",
	"watch":      "design.watch",
	"theme":      "theme.default",
	"variant":    "theme.variant",
}

// Load resolves the configuration.
func Load(opts Options) (Config, error) {
	v := viper.New()
	setDefaults(v, Defaults())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.File != "" {
		v.SetConfigFile(opts.File)
	} else {
		v.SetConfigName("formdesigner")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.File != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("config: read: %w", err)
		}
	}

	if opts.Flags != nil {
		keys := opts.FlagKeys
		if keys == nil {
			keys = FlagKeys
		}
		for name, key := range keys {
			flag := opts.Flags.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return Config{}, fmt.Errorf("config: bind flag %s: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.basePath", d.Server.BasePath)
	v.SetDefault("server.shutdownTimeout", d.Server.ShutdownTimeout)
	v.SetDefault("session.ttl", d.Session.TTL)
	v.SetDefault("session.sweepInterval", d.Session.SweepInterval)
	v.SetDefault("session.cookie", d.Session.Cookie)
	v.SetDefault("theme.default", d.Theme.Default)
	v.SetDefault("theme.variant", d.Theme.Variant)
	v.SetDefault("auth.mode", d.Auth.Mode)
	v.SetDefault("auth.tokenHash", d.Auth.TokenHash)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("design.seed", d.Design.Seed)
	v.SetDefault("design.watch", d.Design.Watch)
}

// Validate rejects settings the server cannot start with.
func (c Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Server.Addr) == "":
		return errors.New("config: server.addr is required")
	case c.Session.TTL <= 0:
		return errors.New("config: session.ttl must be positive")
	case c.Session.SweepInterval <= 0:
		return errors.New("config: session.sweepInterval must be positive")
	case c.Design.Watch && strings.TrimSpace(c.Design.Seed) == "":
		return errors.New("config: design.watch needs design.seed")
	}
	switch c.Auth.Mode {
	case AuthNone:
	case AuthToken:
		if strings.TrimSpace(c.Auth.TokenHash) == "" {
			return errors.New("config: auth.tokenHash is required in token mode")
		}
	default:
		return fmt.Errorf("config: unknown auth.mode %q", c.Auth.Mode)
	}
	return nil
}
