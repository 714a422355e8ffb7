package config

import (
	"fmt"
	"time"
)

// DefaultFile is the config file looked up when --config is not given.
const DefaultFile = "snapclone.yaml"

// Config represents a snapclone.yaml configuration file.
// All values are optional and act as defaults for command flags.
// CLI flags always override config values.
type Config struct {
	TargetURL  string           `yaml:"target_url"`
	Workdir    string           `yaml:"workdir"`
	Settle     Duration         `yaml:"settle"`
	Browser    BrowserConfig    `yaml:"browser"`
	Desktop    DesktopConfig    `yaml:"desktop"`
	Generation GenerationConfig `yaml:"generation"`
	Archive    ArchiveConfig    `yaml:"archive"`
	Adapter    AdapterConfig    `yaml:"adapter"`

	// Unresolved lists ${VAR} references without a value or default.
	Unresolved []string `yaml:"-"`
}

// BrowserConfig selects and configures the capture provider.
type BrowserConfig struct {
	// Provider is one of "browser", "desktop" or "none".
	Provider   string `yaml:"provider"`
	Executable string `yaml:"executable"`
	RemoteURL  string `yaml:"remote_url"`
	Headless   *bool  `yaml:"headless,omitempty"`
	Stealth    *bool  `yaml:"stealth,omitempty"`
}

// DesktopConfig configures the desktop automation server client.
type DesktopConfig struct {
	URL string `yaml:"url"`
}

// GenerationConfig holds chat-completion endpoint defaults.
type GenerationConfig struct {
	BaseURL   string   `yaml:"base_url"`
	Model     string   `yaml:"model"`
	MaxTokens int      `yaml:"max_tokens"`
	APIKeyEnv string   `yaml:"api_key_env"`
	Timeout   Duration `yaml:"timeout"`
	Retries   int      `yaml:"retries"`
}

// ArchiveConfig holds run archive defaults.
type ArchiveConfig struct {
	Dataset     string `yaml:"dataset"`
	Backend     string `yaml:"backend"`
	Path        string `yaml:"path"`
	Region      string `yaml:"region"`
	Endpoint    string `yaml:"endpoint"`
	S3PathStyle bool   `yaml:"s3_path_style"`
}

// AdapterConfig holds notification adapter defaults.
type AdapterConfig struct {
	Type    string            `yaml:"type"`
	URL     string            `yaml:"url"`
	Channel string            `yaml:"channel,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`
	Timeout Duration          `yaml:"timeout,omitempty"`
	Retries *int              `yaml:"retries,omitempty"`
}

// Duration wraps time.Duration for YAML string parsing (e.g. "10s", "5m").
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a duration string like "10s" or "5m30s".
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	if parsed < 0 {
		return fmt.Errorf("invalid duration %q: must not be negative", s)
	}
	d.Duration = parsed
	return nil
}

// Validate checks enumerated fields. Empty values mean "use the default".
func (c *Config) Validate() error {
	switch c.Browser.Provider {
	case "", "browser", "desktop", "none":
	default:
		return fmt.Errorf("browser.provider must be browser, desktop or none, got %q", c.Browser.Provider)
	}
	switch c.Archive.Backend {
	case "", "fs", "s3":
	default:
		return fmt.Errorf("archive.backend must be fs or s3, got %q", c.Archive.Backend)
	}
	switch c.Adapter.Type {
	case "", "webhook", "redis":
	default:
		return fmt.Errorf("adapter.type must be webhook or redis, got %q", c.Adapter.Type)
	}
	if c.Generation.MaxTokens < 0 {
		return fmt.Errorf("generation.max_tokens must be >= 0, got %d", c.Generation.MaxTokens)
	}
	if c.Generation.Retries < 0 {
		return fmt.Errorf("generation.retries must be >= 0, got %d", c.Generation.Retries)
	}
	return nil
}
