// Package config resolves client settings from defaults, a YAML file, the
// environment and command line overrides, in that order.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultEndpoint = "http://localhost:8080/lint/"
	DefaultTimeout  = 2 * time.Minute
	DefaultOutput   = "human"
)

// Output formats understood by the formatter.
var Formats = []string{"human", "json", "yaml", "markdown"}

// Environment variables consulted by Load.
const (
	EnvEndpoint = "CODELINTER_ENDPOINT"
	EnvTimeout  = "CODELINTER_TIMEOUT"
	EnvOutput   = "CODELINTER_OUTPUT"
)

// Config is the effective client configuration. A zero Timeout disables
// the transport timeout.
type Config struct {
	Endpoint string
	Timeout  time.Duration
	Output   string
	Verbose  bool
}

// Overrides are explicit values from flags. Empty strings and nil pointers
// leave the lower layers untouched.
type Overrides struct {
	Endpoint string
	Timeout  *time.Duration
	Output   string
	Verbose  bool
}

func Default() Config {
	return Config{
		Endpoint: DefaultEndpoint,
		Timeout:  DefaultTimeout,
		Output:   DefaultOutput,
	}
}

// DefaultPath returns ~/.config/codelinter/config.yaml, or "" when the user
// config directory cannot be determined.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "codelinter", "config.yaml")
}

// Load builds the effective configuration. A missing file at path is not an
// error; an unreadable or invalid one is.
func Load(path string, o Overrides) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.mergeEnv(); err != nil {
		return Config{}, err
	}
	cfg.apply(o)
	cfg.Output = strings.ToLower(cfg.Output)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var file struct {
		Endpoint string `yaml:"endpoint"`
		Timeout  string `yaml:"timeout"`
		Output   string `yaml:"output"`
		Verbose  *bool  `yaml:"verbose"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	if file.Endpoint != "" {
		c.Endpoint = file.Endpoint
	}
	if file.Timeout != "" {
		d, err := time.ParseDuration(file.Timeout)
		if err != nil {
			return fmt.Errorf("config: %s: invalid timeout %q: %w", path, file.Timeout, err)
		}
		c.Timeout = d
	}
	if file.Output != "" {
		c.Output = file.Output
	}
	if file.Verbose != nil {
		c.Verbose = *file.Verbose
	}
	return nil
}

func (c *Config) mergeEnv() error {
	if v := os.Getenv(EnvEndpoint); v != "" {
		c.Endpoint = v
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: %s: invalid duration %q: %w", EnvTimeout, v, err)
		}
		c.Timeout = d
	}
	if v := os.Getenv(EnvOutput); v != "" {
		c.Output = v
	}
	return nil
}

func (c *Config) apply(o Overrides) {
	if o.Endpoint != "" {
		c.Endpoint = o.Endpoint
	}
	if o.Timeout != nil {
		c.Timeout = *o.Timeout
	}
	if o.Output != "" {
		c.Output = o.Output
	}
	if o.Verbose {
		c.Verbose = true
	}
}

// Validate checks the endpoint, output format and timeout.
func (c Config) Validate() error {
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return fmt.Errorf("config: invalid endpoint %q: %w", c.Endpoint, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("config: endpoint %q must be an absolute http(s) URL", c.Endpoint)
	}

	if !validFormat(c.Output) {
		return fmt.Errorf("config: unsupported output format %q (supported: %s)", c.Output, strings.Join(Formats, ", "))
	}

	if c.Timeout < 0 {
		return fmt.Errorf("config: timeout must not be negative, got %s", c.Timeout)
	}
	return nil
}

func validFormat(f string) bool {
	for _, known := range Formats {
		if f == known {
			return true
		}
	}
	return false
}
