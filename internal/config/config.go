// Package config loads service configuration: built-in defaults, then an
// optional YAML file, then .env files, then KRISHI_* environment variables.
// The result is validated before use.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultResourceURL is the data.gov.in scheme resource.
const DefaultResourceURL = "https://api.data.gov.in/resource/90a30a19-e05d-46c5-94ad-81f34caa7814"

// Config is the complete service configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Listing ListingConfig `yaml:"listing"`
	Fetch   FetchConfig   `yaml:"fetch"`
	Cache   CacheConfig   `yaml:"cache"`
	Proxy   ProxyConfig   `yaml:"proxy"`
	Weather WeatherConfig `yaml:"weather"`
	Jobs    JobsConfig    `yaml:"jobs"`
	Log     LogConfig     `yaml:"log"`
}

type ServerConfig struct {
	Port            int           `yaml:"port" validate:"min=1,max=65535"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gt=0"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
}

type ListingConfig struct {
	// URL defaults to the proxy resource with its API key.
	URL      string        `yaml:"url" validate:"required,url"`
	PageSize int           `yaml:"page_size" validate:"min=1,max=100"`
	Debounce time.Duration `yaml:"debounce" validate:"gte=0"`
}

type FetchConfig struct {
	UserAgent         string        `yaml:"user_agent" validate:"required"`
	Attempts          int           `yaml:"attempts" validate:"min=1,max=10"`
	BaseDelay         time.Duration `yaml:"base_delay" validate:"gte=0"`
	Timeout           time.Duration `yaml:"timeout" validate:"gt=0"`
	RequestsPerSecond float64       `yaml:"requests_per_second" validate:"gt=0"`
	Burst             int           `yaml:"burst" validate:"min=1"`
}

type CacheConfig struct {
	Backend       string `yaml:"backend" validate:"oneof=memory redis sqlite"`
	RedisAddr     string `yaml:"redis_addr" validate:"required_if=Backend redis"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db" validate:"min=0,max=15"`
	SQLiteDir     string `yaml:"sqlite_dir" validate:"required_if=Backend sqlite"`
}

type ProxyConfig struct {
	ResourceURL     string `yaml:"resource_url" validate:"required,url"`
	APIKey          string `yaml:"api_key"`
	DefaultPageSize int    `yaml:"default_page_size" validate:"min=1,max=100"`
}

type WeatherConfig struct {
	BaseURL string `yaml:"base_url" validate:"required,url"`
	APIKey  string `yaml:"api_key"`
}

type JobsConfig struct {
	URL string        `yaml:"url" validate:"required,url"`
	TTL time.Duration `yaml:"ttl" validate:"gte=0"`
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn warning error"`
	Pretty bool   `yaml:"pretty"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ShutdownTimeout: 10 * time.Second,
			AllowedOrigins:  []string{"*"},
		},
		Listing: ListingConfig{
			PageSize: 10,
			Debounce: 350 * time.Millisecond,
		},
		Fetch: FetchConfig{
			UserAgent:         "krishi-connect/0.1.0",
			Attempts:          2,
			BaseDelay:         400 * time.Millisecond,
			Timeout:           15 * time.Second,
			RequestsPerSecond: 5,
			Burst:             5,
		},
		Cache: CacheConfig{
			Backend:   "memory",
			RedisAddr: "localhost:6379",
			SQLiteDir: "data",
		},
		Proxy: ProxyConfig{
			ResourceURL:     DefaultResourceURL,
			DefaultPageSize: 9,
		},
		Weather: WeatherConfig{
			BaseURL: "https://api.openweathermap.org/data/2.5/weather",
		},
		Jobs: JobsConfig{
			URL: "https://dummyjson.com/c/9b1a-cb64-428c-af6a",
			TTL: 5 * time.Minute,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Options controls where Load reads from.
type Options struct {
	// File is an optional YAML file. Empty skips it.
	File string

	// EnvFiles are .env files. Missing files are skipped.
	EnvFiles []string

	// LookupEnv reads the process environment. Defaults to os.LookupEnv.
	LookupEnv func(key string) (string, bool)
}

// Load builds and validates the configuration.
func Load(opts Options) (Config, error) {
	cfg := Default()

	if opts.File != "" {
		if err := loadFile(opts.File, &cfg); err != nil {
			return Config{}, err
		}
	}

	lookup := opts.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	dotenv, err := readEnvFiles(opts.EnvFiles)
	if err != nil {
		return Config{}, err
	}
	env := func(key string) (string, bool) {
		if v, ok := lookup(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}

	if err := applyEnv(&cfg, env); err != nil {
		return Config{}, err
	}

	if cfg.Listing.URL == "" {
		cfg.Listing.URL = cfg.Proxy.UpstreamURL()
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

var validate = validator.New()

// Validate checks every field constraint.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("invalid config: %s failed %q", verrs[0].Namespace(), verrs[0].Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// UpstreamURL returns the resource URL with the API key and JSON format
// applied.
func (p ProxyConfig) UpstreamURL() string {
	u, err := url.Parse(p.ResourceURL)
	if err != nil {
		return p.ResourceURL
	}
	q := u.Query()
	if p.APIKey != "" {
		q.Set("api-key", p.APIKey)
	}
	q.Set("format", "json")
	u.RawQuery = q.Encode()
	return u.String()
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}
