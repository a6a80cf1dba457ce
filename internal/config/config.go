package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/gerunddev/blockmark/internal/convert"
)

// Config represents the blockmark configuration
type Config struct {
	SourceDir         string        `json:"source_dir"`
	OutputDir         string        `json:"output_dir"`
	LogFile           string        `json:"log_file"`
	LogLevel          string        `json:"log_level,omitempty"`
	Interval          time.Duration `json:"-"` // Custom JSON handling below
	ExcludePatterns   []string      `json:"exclude_patterns,omitempty"`
	DefaultLanguage   string        `json:"default_language,omitempty"`
	UnterminatedFence string        `json:"unterminated_fence,omitempty"`
	FrontMatter       bool          `json:"front_matter"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		SourceDir:         filepath.Join(home, "Documents", "posts"),
		OutputDir:         filepath.Join(home, "Documents", "posts-blocks"),
		LogFile:           "/tmp/blockmark.log",
		LogLevel:          "info",
		Interval:          30 * time.Second,
		ExcludePatterns:   []string{}, // No exclusions by default
		DefaultLanguage:   convert.DefaultLanguage,
		UnterminatedFence: string(convert.FenceDrop),
		FrontMatter:       true,
	}
}

// ConfigPath returns the path to the config file
// Uses ~/.config on all platforms for consistency
// Can be overridden for testing
var ConfigPath = func() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to XDG if home dir unavailable
		return filepath.Join(xdg.ConfigHome, "blockmark", "config.json")
	}
	return filepath.Join(home, ".config", "blockmark", "config.json")
}

// StateFilePath returns the path to the batch state file
// Uses platform-specific XDG data directory
// Can be overridden for testing
var StateFilePath = func() string {
	return filepath.Join(xdg.DataHome, "blockmark", "state.json")
}

// rawConfig is the on-disk shape; durations are strings and booleans
// may be absent
type rawConfig struct {
	SourceDir         string   `json:"source_dir"`
	OutputDir         string   `json:"output_dir"`
	LogFile           string   `json:"log_file"`
	LogLevel          string   `json:"log_level,omitempty"`
	Interval          string   `json:"interval"`
	ExcludePatterns   []string `json:"exclude_patterns,omitempty"`
	DefaultLanguage   string   `json:"default_language,omitempty"`
	UnterminatedFence string   `json:"unterminated_fence,omitempty"`
	FrontMatter       *bool    `json:"front_matter,omitempty"`
}

// Load reads configuration from the config path
func Load() (*Config, error) {
	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		// Return default config if file doesn't exist
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	var raw rawConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	interval, err := time.ParseDuration(raw.Interval)
	if err != nil {
		return nil, fmt.Errorf("invalid interval format '%s': %w", raw.Interval, err)
	}

	defaults := DefaultConfig()
	cfg := &Config{
		SourceDir:         raw.SourceDir,
		OutputDir:         raw.OutputDir,
		LogFile:           raw.LogFile,
		LogLevel:          orDefault(raw.LogLevel, defaults.LogLevel),
		Interval:          interval,
		ExcludePatterns:   raw.ExcludePatterns,
		DefaultLanguage:   orDefault(raw.DefaultLanguage, defaults.DefaultLanguage),
		UnterminatedFence: orDefault(raw.UnterminatedFence, defaults.UnterminatedFence),
		FrontMatter:       true,
	}
	if raw.FrontMatter != nil {
		cfg.FrontMatter = *raw.FrontMatter
	}
	if cfg.ExcludePatterns == nil {
		cfg.ExcludePatterns = []string{}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := cfg.ExpandPaths(); err != nil {
		return nil, fmt.Errorf("failed to expand paths: %w", err)
	}

	return cfg, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// Save writes configuration to the config path
func (c *Config) Save() error {
	configPath := ConfigPath()

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	frontMatter := c.FrontMatter
	raw := rawConfig{
		SourceDir:         c.SourceDir,
		OutputDir:         c.OutputDir,
		LogFile:           c.LogFile,
		LogLevel:          c.LogLevel,
		Interval:          c.Interval.String(),
		ExcludePatterns:   c.ExcludePatterns,
		DefaultLanguage:   c.DefaultLanguage,
		UnterminatedFence: c.UnterminatedFence,
		FrontMatter:       &frontMatter,
	}

	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.SourceDir, validation.Required),
		validation.Field(&c.OutputDir, validation.Required),
		validation.Field(&c.LogFile, validation.Required),
		validation.Field(&c.Interval, validation.By(func(value any) error {
			if d, _ := value.(time.Duration); d <= 0 {
				return validation.NewError("config.interval.positive", "interval must be positive")
			}
			return nil
		})),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.UnterminatedFence, validation.In(string(convert.FenceDrop), string(convert.FenceFlush))),
		validation.Field(&c.ExcludePatterns, validation.Each(validation.By(validPattern))),
	)
}

func validPattern(value any) error {
	pattern, _ := value.(string)
	if _, err := filepath.Match(pattern, ""); err != nil {
		return validation.NewError("config.exclude_patterns.syntax", fmt.Sprintf("invalid pattern %q", pattern))
	}
	return nil
}

// ConvertOptions returns converter options derived from the configuration
func (c *Config) ConvertOptions() convert.Options {
	opts := convert.DefaultOptions()
	opts.DefaultLanguage = c.DefaultLanguage
	opts.UnterminatedFence = convert.FencePolicy(c.UnterminatedFence)
	opts.FrontMatter = c.FrontMatter
	return opts
}

// ExpandPaths expands any ~ or relative paths to absolute paths
func (c *Config) ExpandPaths() error {
	var err error

	c.SourceDir, err = expandPath(c.SourceDir)
	if err != nil {
		return fmt.Errorf("failed to expand source_dir: %w", err)
	}

	c.OutputDir, err = expandPath(c.OutputDir)
	if err != nil {
		return fmt.Errorf("failed to expand output_dir: %w", err)
	}

	c.LogFile, err = expandPath(c.LogFile)
	if err != nil {
		return fmt.Errorf("failed to expand log_file: %w", err)
	}

	return nil
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) (string, error) {
	if path == "" {
		return path, nil
	}

	if path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		if len(path) == 1 {
			return homeDir, nil
		}
		path = filepath.Join(homeDir, path[1:])
	}

	return filepath.Abs(path)
}
