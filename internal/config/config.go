// Package config manages application configuration.
//
// Settings are layered: defaults, then a YAML or TOML file, then
// environment variables. A .env file in the working directory is loaded
// into the environment first, and ${VAR} references in the config file are
// expanded before parsing.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Extraction sources.
const (
	SourceYtdlp = "ytdlp"
	SourceAPI   = "api"
)

// ErrNoConfigFile is returned by Discover when no default config file exists.
var ErrNoConfigFile = errors.New("config: no configuration file found")

// Config holds all application configuration.
type Config struct {
	Channels  []Channel       `yaml:"channels" toml:"channels"`
	Output    OutputConfig    `yaml:"output" toml:"output"`
	Extractor ExtractorConfig `yaml:"extractor" toml:"extractor"`
	LogLevel  string          `yaml:"log_level" toml:"log_level"`
	LogFormat string          `yaml:"log_format" toml:"log_format"`
}

// Channel is one configured YouTube channel.
type Channel struct {
	Name    string `yaml:"name" toml:"name"`
	URL     string `yaml:"url" toml:"url"`
	Enabled *bool  `yaml:"enabled,omitempty" toml:"enabled,omitempty"`

	// DefaultName is set when Name was generated ("Channel N") rather than
	// configured, so the extracted channel name may replace it.
	DefaultName bool `yaml:"-" toml:"-"`
}

// IsEnabled reports whether the channel should be processed. Channels are
// enabled unless explicitly disabled.
func (c Channel) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// OutputConfig controls where and how spreadsheets are written.
type OutputConfig struct {
	// Directory receives the spreadsheets (default "outputs").
	Directory string `yaml:"directory" toml:"directory"`
	// FilenameFormat supports {channel_name} and {date}.
	FilenameFormat string `yaml:"filename_format" toml:"filename_format"`
	// SkipEmpty suppresses the header-only sheet for channels without videos.
	SkipEmpty bool `yaml:"skip_empty" toml:"skip_empty"`
}

// ExtractorConfig selects and tunes the extraction capability.
type ExtractorConfig struct {
	Source       string   `yaml:"source" toml:"source"`
	Content      string   `yaml:"content" toml:"content"`
	YtdlpPath    string   `yaml:"ytdlp_path" toml:"ytdlp_path"`
	YtdlpTimeout Duration `yaml:"ytdlp_timeout" toml:"ytdlp_timeout"`
	ExtraArgs    []string `yaml:"extra_args" toml:"extra_args"`
	FetchDetails bool     `yaml:"fetch_details" toml:"fetch_details"`
	APIKey       string   `yaml:"api_key" toml:"api_key"`
}

// Duration is a time.Duration read from strings like "10m" in both YAML and TOML.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// DefaultConfig returns configuration with safe defaults.
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Directory:      "outputs",
			FilenameFormat: "{channel_name}_videos.xlsx",
		},
		Extractor: ExtractorConfig{
			Source:       SourceYtdlp,
			Content:      "all",
			YtdlpPath:    "yt-dlp",
			YtdlpTimeout: Duration(10 * time.Minute),
		},
		LogLevel:  "info",
		LogFormat: "console",
	}
}

// Override adjusts a loaded configuration before it is validated, such as
// command-line flags layered over the file and environment.
type Override func(*Config)

// Load reads a configuration file that must define at least one channel.
// Priority: overrides > env vars > config file > defaults.
func Load(path string, overrides ...Override) (*Config, error) {
	cfg, err := load(path, overrides)
	if err != nil {
		return nil, err
	}
	if err := cfg.validateChannels(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadSettings reads output, extractor and logging settings for single
// channel runs. An empty path uses defaults and environment only; channels
// defined in the file are ignored.
func LoadSettings(path string, overrides ...Override) (*Config, error) {
	cfg, err := load(path, overrides)
	if err != nil {
		return nil, err
	}
	cfg.Channels = nil
	return cfg, nil
}

func load(path string, overrides []Override) (*Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()
	if path != "" {
		if err := cfg.loadFromFile(path); err != nil {
			return nil, err
		}
	}

	cfg.loadFromEnv()
	for _, override := range overrides {
		override(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Discover returns the first default config file that exists:
// ytextract.yaml, ytextract.yml or ytextract.toml in the working directory,
// then the same names under ~/.config/ytextract/.
func Discover() (string, error) {
	dirs := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".config", "ytextract"))
	}
	for _, dir := range dirs {
		for _, name := range []string{"ytextract.yaml", "ytextract.yml", "ytextract.toml"} {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}
	}
	return "", ErrNoConfigFile
}

// loadFromFile decodes path over the current values, by file extension.
func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("configuration file not found: %s", path)
		}
		return fmt.Errorf("read config file: %w", err)
	}

	expanded := expandBracedEnv(data)

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if err := toml.Unmarshal(expanded, c); err != nil {
			return fmt.Errorf("invalid TOML configuration %s: %w", path, err)
		}
	case ".yaml", ".yml", "":
		if err := yaml.Unmarshal(expanded, c); err != nil {
			return fmt.Errorf("invalid YAML configuration %s: %w", path, err)
		}
	default:
		return fmt.Errorf("unsupported config format %q (use .yaml, .yml or .toml)", ext)
	}
	return nil
}

// bracedEnvRef matches ${NAME}. Bare $NAME is left alone so names, URLs and
// templates may contain a literal dollar sign.
var bracedEnvRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandBracedEnv substitutes ${NAME} with the environment value, or the
// empty string when NAME is unset.
func expandBracedEnv(data []byte) []byte {
	return bracedEnvRef.ReplaceAllFunc(data, func(ref []byte) []byte {
		name := bracedEnvRef.FindSubmatch(ref)[1]
		return []byte(os.Getenv(string(name)))
	})
}

// loadFromEnv overrides config with environment variables.
func (c *Config) loadFromEnv() {
	if v := os.Getenv("YTEXTRACT_YTDLP_PATH"); v != "" {
		c.Extractor.YtdlpPath = v
	}
	if v := os.Getenv("YTEXTRACT_YTDLP_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Extractor.YtdlpTimeout = Duration(d)
		}
	}
	if v := os.Getenv("YTEXTRACT_SOURCE"); v != "" {
		c.Extractor.Source = v
	}
	if v := os.Getenv("YTEXTRACT_OUTPUT_DIR"); v != "" {
		c.Output.Directory = v
	}
	if v := os.Getenv("YTEXTRACT_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("YOUTUBE_API_KEY"); v != "" && c.Extractor.APIKey == "" {
		c.Extractor.APIKey = v
	}
}

// Validate checks setting validity and fills per-channel defaults.
func (c *Config) Validate() error {
	c.Extractor.Source = strings.ToLower(strings.TrimSpace(c.Extractor.Source))
	switch c.Extractor.Source {
	case SourceYtdlp:
		if strings.TrimSpace(c.Extractor.YtdlpPath) == "" {
			return errors.New("extractor.ytdlp_path must not be empty")
		}
		if c.Extractor.YtdlpTimeout <= 0 {
			return errors.New("extractor.ytdlp_timeout must be positive")
		}
	case SourceAPI:
		if strings.TrimSpace(c.Extractor.APIKey) == "" {
			return errors.New("extractor.api_key (or YOUTUBE_API_KEY) is required for the api source")
		}
	default:
		return fmt.Errorf("extractor.source must be %q or %q, got %q", SourceYtdlp, SourceAPI, c.Extractor.Source)
	}

	switch strings.ToLower(strings.TrimSpace(c.Extractor.Content)) {
	case "", "all", "videos", "shorts", "streams", "live":
	default:
		return fmt.Errorf("extractor.content must be all, videos, shorts or streams, got %q", c.Extractor.Content)
	}

	switch strings.ToLower(strings.TrimSpace(c.LogFormat)) {
	case "", "console", "json":
	default:
		return fmt.Errorf("log_format must be console or json, got %q", c.LogFormat)
	}

	if strings.TrimSpace(c.Output.Directory) == "" {
		c.Output.Directory = "outputs"
	}
	if strings.TrimSpace(c.Output.FilenameFormat) == "" {
		c.Output.FilenameFormat = "{channel_name}_videos.xlsx"
	}

	for i := range c.Channels {
		ch := &c.Channels[i]
		ch.URL = strings.TrimSpace(ch.URL)
		if strings.TrimSpace(ch.Name) == "" {
			ch.Name = fmt.Sprintf("Channel %d", i+1)
			ch.DefaultName = true
		}
	}
	return nil
}

func (c *Config) validateChannels() error {
	if c.Channels == nil {
		return errors.New("configuration must contain 'channels' key")
	}
	if len(c.Channels) == 0 {
		return errors.New("at least one channel must be defined")
	}
	for i, ch := range c.Channels {
		if ch.URL == "" {
			return fmt.Errorf("channel %d missing required 'url' field", i)
		}
	}
	return nil
}

// EnabledChannels returns the channels that should be processed, in order.
func (c *Config) EnabledChannels() []Channel {
	enabled := make([]Channel, 0, len(c.Channels))
	for _, ch := range c.Channels {
		if ch.IsEnabled() {
			enabled = append(enabled, ch)
		}
	}
	return enabled
}

// YtdlpTimeout returns the configured yt-dlp timeout.
func (c *Config) YtdlpTimeout() time.Duration {
	return time.Duration(c.Extractor.YtdlpTimeout)
}
