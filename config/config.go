package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/randalmurphal/visualflow/napkin"
	"github.com/randalmurphal/visualflow/storage"
)

// Environment variable names.
const (
	// EnvAPIKey is the well-known API key variable.
	EnvAPIKey = "NAPKIN_API_KEY"

	// EnvBaseURL overrides the API base URL.
	EnvBaseURL = "VISUALFLOW_BASE_URL"

	// EnvPollIntervalMS overrides the polling interval in milliseconds.
	EnvPollIntervalMS = "VISUALFLOW_POLL_INTERVAL_MS"

	// EnvMaxWaitMS overrides the maximum wait in milliseconds.
	EnvMaxWaitMS = "VISUALFLOW_MAX_WAIT_MS"
)

// Polling bounds enforced by Validate.
const (
	MinPollInterval = 500 * time.Millisecond
	MaxPollInterval = 30 * time.Second
	MinMaxWait      = 10 * time.Second
	MaxMaxWait      = 10 * time.Minute
)

// Defaults applied by Default.
const (
	DefaultPollInterval = 2 * time.Second
	DefaultMaxWait      = 3 * time.Minute
)

// GenerationDefaults supplies per-field defaults applied to generation
// requests that leave the field empty.
type GenerationDefaults struct {
	Format          napkin.Format      `yaml:"format,omitempty"`
	Language        string             `yaml:"language,omitempty"`
	StyleID         string             `yaml:"style_id,omitempty"`
	NumberOfVisuals int                `yaml:"number_of_visuals,omitempty"`
	ColorMode       napkin.ColorMode   `yaml:"color_mode,omitempty"`
	Orientation     napkin.Orientation `yaml:"orientation,omitempty"`
}

// Config is the fully-resolved configuration for the tool surface.
type Config struct {
	// APIKey authenticates all generation API calls. Required.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the production API endpoint.
	BaseURL string `yaml:"base_url,omitempty"`

	// PollInterval is the suspension between status polls.
	PollInterval time.Duration `yaml:"poll_interval,omitempty"`

	// MaxWait bounds the total time a wait operation may poll.
	MaxWait time.Duration `yaml:"max_wait,omitempty"`

	// Defaults fills empty generation request fields.
	Defaults GenerationDefaults `yaml:"defaults,omitempty"`

	// Storage selects the optional storage destination used by save
	// operations. Nil means saving is not configured.
	Storage *storage.Destination `yaml:"storage,omitempty"`
}

// Default returns a Config with built-in defaults and no credentials.
func Default() *Config {
	return &Config{
		BaseURL:      napkin.DefaultBaseURL,
		PollInterval: DefaultPollInterval,
		MaxWait:      DefaultMaxWait,
		Defaults: GenerationDefaults{
			Format:          napkin.FormatSVG,
			NumberOfVisuals: 1,
		},
	}
}

// Load resolves configuration from defaults, then an optional YAML file,
// then the environment. An empty path skips the file layer.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	cfg.applyEnv(os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays environment variables onto the config.
func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvAPIKey); ok && v != "" {
		c.APIKey = v
	}
	if v, ok := lookup(EnvBaseURL); ok && v != "" {
		c.BaseURL = v
	}
	if v, ok := lookup(EnvPollIntervalMS); ok && v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			c.PollInterval = time.Duration(ms) * time.Millisecond
		}
	}
	if v, ok := lookup(EnvMaxWaitMS); ok && v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			c.MaxWait = time.Duration(ms) * time.Millisecond
		}
	}
}

// Validate checks credentials and polling bounds.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("config: api_key is required (set %s)", EnvAPIKey)
	}
	if c.PollInterval < MinPollInterval || c.PollInterval > MaxPollInterval {
		return fmt.Errorf("config: poll_interval %s out of range [%s, %s]", c.PollInterval, MinPollInterval, MaxPollInterval)
	}
	if c.MaxWait < MinMaxWait || c.MaxWait > MaxMaxWait {
		return fmt.Errorf("config: max_wait %s out of range [%s, %s]", c.MaxWait, MinMaxWait, MaxMaxWait)
	}
	if n := c.Defaults.NumberOfVisuals; n != 0 && (n < napkin.MinVisuals || n > napkin.MaxVisuals) {
		return fmt.Errorf("config: defaults.number_of_visuals %d out of range [%d, %d]", n, napkin.MinVisuals, napkin.MaxVisuals)
	}
	return nil
}

// ClampPollInterval bounds a per-call override to the valid range.
// Zero returns the configured interval.
func (c *Config) ClampPollInterval(d time.Duration) time.Duration {
	if d == 0 {
		return c.PollInterval
	}
	return clamp(d, MinPollInterval, MaxPollInterval)
}

// ClampMaxWait bounds a per-call override to the valid range.
// Zero returns the configured maximum.
func (c *Config) ClampMaxWait(d time.Duration) time.Duration {
	if d == 0 {
		return c.MaxWait
	}
	return clamp(d, MinMaxWait, MaxMaxWait)
}

func clamp(d, lo, hi time.Duration) time.Duration {
	if d < lo {
		return lo
	}
	if d > hi {
		return hi
	}
	return d
}

// String renders the config for logs with the API key redacted.
func (c *Config) String() string {
	key := "(unset)"
	if c.APIKey != "" {
		key = "(redacted)"
	}
	dest := "none"
	if c.Storage != nil {
		dest = string(c.Storage.Kind)
	}
	return fmt.Sprintf("api_key=%s base_url=%s poll_interval=%s max_wait=%s storage=%s",
		key, c.BaseURL, c.PollInterval, c.MaxWait, dest)
}
