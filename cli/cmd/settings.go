package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/snapclone/capture"
	"github.com/pithecene-io/snapclone/cli/config"
	snaplode "github.com/pithecene-io/snapclone/lode"
)

// DefaultTargetURL is captured when neither --url nor target_url is set.
const DefaultTargetURL = "https://dribbble.com/shots/popular"

// settings are the resolved values for one command: flags win over the
// config file, which wins over built-in defaults.
type settings struct {
	targetURL string
	workdir   string
	settle    time.Duration

	provider   string
	executable string
	remoteURL  string
	headless   bool
	stealth    bool
	desktopURL string

	baseURL   string
	model     string
	maxTokens int
	apiKeyEnv string
	envFile   string
	timeout   time.Duration
	retries   int

	archive archiveSettings
	adapter adapterSettings
}

type archiveSettings struct {
	dataset   string
	backend   string
	path      string
	region    string
	endpoint  string
	pathStyle bool
}

type adapterSettings struct {
	kind    string
	url     string
	channel string
	headers map[string]string
	timeout time.Duration
	retries *int
}

// loadSettings loads the config file named by --config and overlays the
// flags that are defined and set on c.
func loadSettings(c *cli.Context) (*settings, error) {
	cfg, err := config.LoadOptional(c.String("config"))
	if err != nil {
		return nil, err
	}
	for _, name := range cfg.Unresolved {
		fmt.Fprintf(os.Stderr, "Warning: config references unset variable ${%s}\n", name)
	}

	s := &settings{
		targetURL:  pickString(c, "url", cfg.TargetURL, DefaultTargetURL),
		workdir:    pickString(c, "workdir", cfg.Workdir, "."),
		settle:     pickDuration(c, "settle", cfg.Settle.Duration, capture.DefaultSettleDelay),
		provider:   pickString(c, "provider", cfg.Browser.Provider, "browser"),
		executable: pickString(c, "executable", cfg.Browser.Executable, ""),
		remoteURL:  pickString(c, "remote-url", cfg.Browser.RemoteURL, ""),
		headless:   pickBool(c, "headless", cfg.Browser.Headless, true),
		stealth:    pickBool(c, "stealth", cfg.Browser.Stealth, true),
		desktopURL: pickString(c, "desktop-url", cfg.Desktop.URL, ""),

		baseURL:   pickString(c, "base-url", cfg.Generation.BaseURL, ""),
		model:     pickString(c, "model", cfg.Generation.Model, ""),
		maxTokens: pickInt(c, "max-tokens", cfg.Generation.MaxTokens, 0),
		apiKeyEnv: pickString(c, "api-key-env", cfg.Generation.APIKeyEnv, config.DefaultAPIKeyEnv),
		envFile:   pickString(c, "env-file", "", config.DefaultDotEnv),
		timeout:   pickDuration(c, "timeout", cfg.Generation.Timeout.Duration, 0),
		retries:   pickInt(c, "retries", cfg.Generation.Retries, 0),

		archive: archiveSettings{
			dataset:   pickString(c, "", cfg.Archive.Dataset, snaplode.DefaultDataset),
			backend:   pickString(c, "archive-backend", cfg.Archive.Backend, "fs"),
			path:      pickString(c, "archive-path", cfg.Archive.Path, ""),
			region:    pickString(c, "archive-region", cfg.Archive.Region, ""),
			endpoint:  pickString(c, "archive-endpoint", cfg.Archive.Endpoint, ""),
			pathStyle: pickBool(c, "archive-s3-path-style", &cfg.Archive.S3PathStyle, false),
		},
		adapter: adapterSettings{
			kind:    pickString(c, "adapter", cfg.Adapter.Type, ""),
			url:     pickString(c, "adapter-url", cfg.Adapter.URL, ""),
			channel: pickString(c, "adapter-channel", cfg.Adapter.Channel, ""),
			headers: cfg.Adapter.Headers,
			timeout: pickDuration(c, "adapter-timeout", cfg.Adapter.Timeout.Duration, 0),
			retries: cfg.Adapter.Retries,
		},
	}

	if c.IsSet("adapter-retries") {
		n := c.Int("adapter-retries")
		s.adapter.retries = &n
	}
	if c.IsSet("adapter-header") {
		headers, err := parseHeaders(c.StringSlice("adapter-header"))
		if err != nil {
			return nil, err
		}
		s.adapter.headers = headers
	}

	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *settings) validate() error {
	switch s.provider {
	case "browser", "desktop", "none":
	default:
		return fmt.Errorf("--provider must be browser, desktop or none, got %q", s.provider)
	}
	switch s.archive.backend {
	case "fs", "s3":
	default:
		return fmt.Errorf("--archive-backend must be fs or s3, got %q", s.archive.backend)
	}
	switch s.adapter.kind {
	case "":
	case "webhook", "redis":
		if s.adapter.url == "" {
			return fmt.Errorf("--adapter-url is required for the %s adapter", s.adapter.kind)
		}
	default:
		return fmt.Errorf("--adapter must be webhook or redis, got %q", s.adapter.kind)
	}
	if s.maxTokens < 0 || s.retries < 0 {
		return fmt.Errorf("--max-tokens and --retries must be >= 0")
	}
	return nil
}

// parseHeaders parses Key=Value pairs.
func parseHeaders(pairs []string) (map[string]string, error) {
	headers := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --adapter-header %q (want Key=Value)", p)
		}
		headers[k] = strings.TrimSpace(v)
	}
	return headers, nil
}

// isSet reports whether flag name is set. An empty name is never set.
func isSet(c *cli.Context, name string) bool {
	return name != "" && c.IsSet(name)
}

func pickString(c *cli.Context, flag, fromFile, def string) string {
	if isSet(c, flag) {
		return c.String(flag)
	}
	if fromFile != "" {
		return fromFile
	}
	return def
}

func pickInt(c *cli.Context, flag string, fromFile, def int) int {
	if isSet(c, flag) {
		return c.Int(flag)
	}
	if fromFile != 0 {
		return fromFile
	}
	return def
}

func pickDuration(c *cli.Context, flag string, fromFile, def time.Duration) time.Duration {
	if isSet(c, flag) {
		return c.Duration(flag)
	}
	if fromFile != 0 {
		return fromFile
	}
	return def
}

func pickBool(c *cli.Context, flag string, fromFile *bool, def bool) bool {
	if isSet(c, flag) {
		return c.Bool(flag)
	}
	if fromFile != nil {
		return *fromFile
	}
	return def
}
