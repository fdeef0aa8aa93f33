// Package config loads client configuration.
//
// Values are layered, later layers winning:
//   - built-in defaults
//   - the YAML file named by --config or EVENTMASTER_CONFIG
//   - a .env file in the working directory (never overrides the real environment)
//   - EVENTMASTER_* environment variables
//   - command-line flags
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/Shivanand-hulikatti/eventmaster/internal/session"
)

const (
	DefaultEndpoint = "http://localhost:8080"
	DefaultTimeout  = 30 * time.Second
	DefaultStubAddr = ":8080"
	DefaultEnvFile  = ".env"
)

// Config is the complete client configuration.
type Config struct {
	API  APIConfig  `yaml:"api"`
	Auth AuthConfig `yaml:"auth"`
	Log  LogConfig  `yaml:"log"`
	Stub StubConfig `yaml:"stub"`
}

// APIConfig locates the API Gateway stage.
type APIConfig struct {
	// Endpoint is the base URL, e.g. https://xxxx.execute-api.us-east-1.amazonaws.com/dev
	Endpoint string `yaml:"endpoint"`

	// Timeout bounds a single HTTP exchange. Zero disables it.
	Timeout time.Duration `yaml:"timeout"`
}

// AuthConfig names where the identity token comes from. Token wins over
// TokenFile when both are set.
type AuthConfig struct {
	Token     string `yaml:"token"`
	TokenFile string `yaml:"token_file"`
}

// LogConfig configures the structured logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
}

// StubConfig configures the local API stub.
type StubConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		API:  APIConfig{Endpoint: DefaultEndpoint, Timeout: DefaultTimeout},
		Log:  LogConfig{Level: "info"},
		Stub: StubConfig{Addr: DefaultStubAddr},
	}
}

// Flags carries command-line overrides. Empty fields leave the loaded
// value untouched.
type Flags struct {
	ConfigPath string
	Endpoint   string
	Token      string
	TokenFile  string
	LogLevel   string
}

// AddFlags registers the global flags on fs.
func (f *Flags) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.ConfigPath, "config", "", "path to YAML config file (env EVENTMASTER_CONFIG)")
	fs.StringVar(&f.Endpoint, "endpoint", "", "API base URL (env EVENTMASTER_API_ENDPOINT)")
	fs.StringVar(&f.Token, "token", "", "identity token (env EVENTMASTER_TOKEN)")
	fs.StringVar(&f.TokenFile, "token-file", "", "file holding the identity token (env EVENTMASTER_TOKEN_FILE)")
	fs.StringVar(&f.LogLevel, "log-level", "", "debug, info, warn or error (env EVENTMASTER_LOG_LEVEL)")
}

// Load builds the configuration from every layer.
func Load(flags Flags) (Config, error) {
	if err := loadEnvFile(DefaultEnvFile); err != nil {
		return Config{}, err
	}

	cfg := Default()

	path := flags.ConfigPath
	if path == "" {
		path = os.Getenv("EVENTMASTER_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := Parse(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	applyFlags(&cfg, flags)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes YAML onto cfg, rejecting unknown keys.
func Parse(data []byte, cfg *Config) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate checks the loaded configuration.
func (c Config) Validate() error {
	u, err := url.Parse(c.API.Endpoint)
	if err != nil {
		return fmt.Errorf("api.endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api.endpoint %q: scheme must be http or https", c.API.Endpoint)
	}
	if u.Host == "" {
		return fmt.Errorf("api.endpoint %q: missing host", c.API.Endpoint)
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must not be negative")
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// TokenSource returns where sign-in reads the identity token from, or nil
// when no credential is configured.
func (c Config) TokenSource() session.TokenSource {
	switch {
	case c.Auth.Token != "":
		return session.StaticToken(c.Auth.Token)
	case c.Auth.TokenFile != "":
		return session.FileToken(c.Auth.TokenFile)
	}
	return nil
}

// ParseLevel maps a level name onto slog.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("log.level %q: must be debug, info, warn or error", level)
}

func loadEnvFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	cfg.API.Endpoint = getEnv("EVENTMASTER_API_ENDPOINT", cfg.API.Endpoint)
	cfg.Auth.Token = getEnv("EVENTMASTER_TOKEN", cfg.Auth.Token)
	cfg.Auth.TokenFile = getEnv("EVENTMASTER_TOKEN_FILE", cfg.Auth.TokenFile)
	cfg.Log.Level = getEnv("EVENTMASTER_LOG_LEVEL", cfg.Log.Level)
	cfg.Stub.Addr = getEnv("EVENTMASTER_STUB_ADDR", cfg.Stub.Addr)

	if v := os.Getenv("EVENTMASTER_API_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("EVENTMASTER_API_TIMEOUT: %w", err)
		}
		cfg.API.Timeout = d
	}
	return nil
}

func applyFlags(cfg *Config, flags Flags) {
	if flags.Endpoint != "" {
		cfg.API.Endpoint = flags.Endpoint
	}
	if flags.Token != "" {
		cfg.Auth.Token = flags.Token
	}
	if flags.TokenFile != "" {
		cfg.Auth.TokenFile = flags.TokenFile
	}
	if flags.LogLevel != "" {
		cfg.Log.Level = flags.LogLevel
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
