package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/hydrostack/hydro-go/internal/errors"
)

const (
	// DefaultBindDebounce is the bind debounce window.
	DefaultBindDebounce = "10ms"

	// DefaultPendingDelay is the grace delay before the pending class is shown.
	DefaultPendingDelay = "100ms"

	// DefaultUserAgent is sent when no user agent is configured.
	DefaultUserAgent = "hydro-go"

	// DefaultNamespace is the metrics namespace.
	DefaultNamespace = "hydro"
)

// FileNames lists the config files Load looks for, in order.
var FileNames = []string{"hydro.json", "hydro.jsonc", "hydro.yaml", "hydro.yml"}

// Config is the client configuration file.
type Config struct {
	// BaseURL resolves relative URLs given on the command line.
	BaseURL string `json:"baseURL,omitempty" yaml:"baseURL,omitempty"`

	// BindDebounce is the bind debounce window.
	BindDebounce string `json:"bindDebounce,omitempty" yaml:"bindDebounce,omitempty"`

	// PendingDelay is how long a request runs before its element gets
	// the pending class.
	PendingDelay string `json:"pendingDelay,omitempty" yaml:"pendingDelay,omitempty"`

	// RequestTimeout bounds every HTTP request. Empty means no timeout.
	RequestTimeout string `json:"requestTimeout,omitempty" yaml:"requestTimeout,omitempty"`

	// UserAgent is sent with every request.
	UserAgent string `json:"userAgent,omitempty" yaml:"userAgent,omitempty"`

	// Metrics configures the Prometheus collectors.
	Metrics MetricsConfig `json:"metrics,omitempty" yaml:"metrics,omitempty"`

	// Snapshot configures where rendered documents are stored.
	Snapshot SnapshotConfig `json:"snapshot,omitempty" yaml:"snapshot,omitempty"`

	path string
}

// MetricsConfig configures metrics.
type MetricsConfig struct {
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
}

// SnapshotConfig selects a snapshot store. S3 wins when a bucket is set.
type SnapshotConfig struct {
	Dir string   `json:"dir,omitempty" yaml:"dir,omitempty"`
	S3  S3Config `json:"s3,omitempty" yaml:"s3,omitempty"`
}

// S3Config configures the S3 snapshot store.
type S3Config struct {
	Bucket   string `json:"bucket,omitempty" yaml:"bucket,omitempty"`
	Prefix   string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Region   string `json:"region,omitempty" yaml:"region,omitempty"`
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
}

// New returns a configuration with defaults applied.
func New() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load loads the first config file found in dir. A directory without
// any config file yields the defaults.
func Load(dir string) (*Config, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return New(), nil
}

// LoadFile loads a config file. The format follows the extension:
// .yaml and .yml are YAML, .jsonc is JSON with comments, anything else
// is JSON.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("H031").
				WithDetail("No config file at " + path).
				WithSuggestion("Create hydro.json or pass --config")
		}
		return nil, errors.New("H031").Wrap(err)
	}

	cfg := &Config{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".jsonc":
		err = json.Unmarshal(jsonc.ToJSON(data), cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.New("H031").
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			WithSuggestion("Check the file syntax")
	}

	cfg.path = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Path returns the file the configuration was loaded from, if any.
func (c *Config) Path() string {
	return c.path
}

func (c *Config) applyDefaults() {
	if c.BindDebounce == "" {
		c.BindDebounce = DefaultBindDebounce
	}
	if c.PendingDelay == "" {
		c.PendingDelay = DefaultPendingDelay
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	for _, f := range []struct {
		name, value string
	}{
		{"bindDebounce", c.BindDebounce},
		{"pendingDelay", c.PendingDelay},
		{"requestTimeout", c.RequestTimeout},
	} {
		if f.value == "" {
			continue
		}
		d, err := time.ParseDuration(f.value)
		if err != nil {
			return errors.New("H032").
				WithDetail(f.name + " is not a duration: " + f.value).
				WithSuggestion(`Use Go duration syntax such as "10ms" or "30s"`)
		}
		if d < 0 {
			return errors.New("H032").WithDetail(f.name + " must not be negative")
		}
	}
	if c.BaseURL != "" && !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return errors.New("H032").
			WithDetail("baseURL must be an absolute http(s) URL: " + c.BaseURL)
	}
	return nil
}

// BindDebounceDuration returns the parsed bind debounce window.
func (c *Config) BindDebounceDuration() time.Duration {
	return parseDuration(c.BindDebounce)
}

// PendingDelayDuration returns the parsed pending delay.
func (c *Config) PendingDelayDuration() time.Duration {
	return parseDuration(c.PendingDelay)
}

// RequestTimeoutDuration returns the parsed request timeout, 0 for none.
func (c *Config) RequestTimeoutDuration() time.Duration {
	return parseDuration(c.RequestTimeout)
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}

// Exists reports whether dir holds a config file.
func Exists(dir string) bool {
	for _, name := range FileNames {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}
