// Package config handles configuration loading and management for arbor.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// ProjectConfigName is the per-project override file, searched upwards
// from the working directory.
const ProjectConfigName = ".arbor.yaml"

// Config holds all configuration for arbor.
type Config struct {
	Provider   string           `mapstructure:"provider"`
	Anthropic  AnthropicConfig  `mapstructure:"anthropic"`
	Bedrock    BedrockConfig    `mapstructure:"bedrock"`
	Generation GenerationConfig `mapstructure:"generation"`
	Storage    StorageConfig    `mapstructure:"storage"`
	State      StateConfig      `mapstructure:"state"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

// AnthropicConfig holds direct API settings.
type AnthropicConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// BedrockConfig holds AWS Bedrock settings. Credentials come from the
// standard AWS chain.
type BedrockConfig struct {
	Region  string `mapstructure:"region"`
	Profile string `mapstructure:"profile"`
	Model   string `mapstructure:"model"`
}

// GenerationConfig tunes the orchestrator.
type GenerationConfig struct {
	MaxAttempts int    `mapstructure:"max_attempts"`
	MaxTokens   int64  `mapstructure:"max_tokens"`
	Interactive bool   `mapstructure:"interactive"`
	Reviewer    string `mapstructure:"reviewer"`
	// Guidance maps a level name to extra instructions for that level.
	Guidance map[string]string `mapstructure:"guidance"`
}

// StorageConfig locates persisted roadmaps.
type StorageConfig struct {
	Dir string `mapstructure:"dir"`
}

// StateConfig locates the run ledger.
type StateConfig struct {
	DBPath string `mapstructure:"db_path"`
	Driver string `mapstructure:"driver"`
}

// LoggingConfig holds the debug log location. Empty disables it.
type LoggingConfig struct {
	DebugLog string `mapstructure:"debug_log"`
}

// MetricsConfig holds the Prometheus textfile target. Empty disables it.
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

// defaults is the single source for built-in values; the keys double as
// the set of settable keys.
var defaults = map[string]any{
	"provider":                "anthropic",
	"anthropic.api_key":       "",
	"anthropic.model":         "claude-sonnet-4-20250514",
	"anthropic.base_url":      "",
	"bedrock.region":          "us-east-1",
	"bedrock.profile":         "",
	"bedrock.model":           "claude-sonnet-4-20250514",
	"generation.max_attempts": 3,
	"generation.max_tokens":   8192,
	"generation.interactive":  false,
	"generation.reviewer":     "terminal",
	"storage.dir":             "roadmaps",
	"state.db_path":           ".arbor/state.db",
	"state.driver":            "sqlite",
	"logging.debug_log":       ".arbor/logs/arbor-debug.log",
	"metrics.textfile":        "",
}

// Keys returns every settable configuration key, sorted.
func Keys() []string {
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsKey reports whether key is a known configuration key. Guidance entries
// (generation.guidance.<level>) are accepted too.
func IsKey(key string) bool {
	if _, ok := defaults[key]; ok {
		return true
	}
	return strings.HasPrefix(key, "generation.guidance.") && len(key) > len("generation.guidance.")
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (ANTHROPIC_API_KEY, ARBOR_<SECTION>_<KEY>)
// 2. Project config (.arbor.yaml in current directory or parent)
// 3. User config (~/.config/arbor/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v, err := Viper()
	if err != nil {
		return nil, err
	}
	return unmarshal(v)
}

// Viper returns the merged settings Load unmarshals, for key lookups.
func Viper() (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(getUserConfigDir())
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	if projectConfig := findProjectConfig(); projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading project config %s: %w", projectConfig, err)
		}
		if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}

	v.SetEnvPrefix("ARBOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")

	return v, nil
}

// LoadFromPath loads configuration from a single file over the defaults.
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return unmarshal(v)
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated and numeric settings.
func (c *Config) Validate() error {
	switch c.Provider {
	case "anthropic", "bedrock":
	default:
		return fmt.Errorf("config: provider %q must be anthropic or bedrock", c.Provider)
	}
	if c.Generation.MaxAttempts < 1 {
		return fmt.Errorf("config: generation.max_attempts must be at least 1, got %d", c.Generation.MaxAttempts)
	}
	if c.Generation.MaxTokens < 1 {
		return fmt.Errorf("config: generation.max_tokens must be positive, got %d", c.Generation.MaxTokens)
	}
	switch c.Generation.Reviewer {
	case "terminal", "tui":
	default:
		return fmt.Errorf("config: generation.reviewer %q must be terminal or tui", c.Generation.Reviewer)
	}
	switch c.State.Driver {
	case "sqlite", "sqlite3":
	default:
		return fmt.Errorf("config: state.driver %q must be sqlite or sqlite3", c.State.Driver)
	}
	for level := range c.Generation.Guidance {
		switch level {
		case "milestone", "epic", "story", "task":
		default:
			return fmt.Errorf("config: generation.guidance has unknown level %q", level)
		}
	}
	return nil
}

// Model returns the model name for the selected provider.
func (c *Config) Model() string {
	if c.Provider == "bedrock" {
		return c.Bedrock.Model
	}
	return c.Anthropic.Model
}

// SetValue writes key=value into the YAML file at path, creating it if
// needed. The value is parsed according to the key's default type.
func SetValue(path, key, value string) error {
	if !IsKey(key) {
		return fmt.Errorf("unknown config key %q", key)
	}
	parsed, err := parseValue(key, value)
	if err != nil {
		return err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
	}
	v.Set(key, parsed)

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func parseValue(key, value string) (any, error) {
	switch defaults[key].(type) {
	case bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("%s expects true or false, got %q", key, value)
		}
		return b, nil
	case int:
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("%s expects an integer, got %q", key, value)
		}
		return n, nil
	default:
		return value, nil
	}
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

func setDefaults(v *viper.Viper) {
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
}

// getUserConfigDir returns the XDG config directory for arbor.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "arbor")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "arbor")
	}
	return filepath.Join(home, ".config", "arbor")
}

func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return findProjectConfigFrom(cwd)
}

// findProjectConfigFrom searches for .arbor.yaml in dir and its parents.
func findProjectConfigFrom(dir string) string {
	for {
		configPath := filepath.Join(dir, ProjectConfigName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// expandEnv expands ${VAR} references in a string.
func expandEnv(s string) string {
	return os.ExpandEnv(s)
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Provider: "anthropic",
		Anthropic: AnthropicConfig{
			Model: "claude-sonnet-4-20250514",
		},
		Bedrock: BedrockConfig{
			Region: "us-east-1",
			Model:  "claude-sonnet-4-20250514",
		},
		Generation: GenerationConfig{
			MaxAttempts: 3,
			MaxTokens:   8192,
			Reviewer:    "terminal",
		},
		Storage: StorageConfig{Dir: "roadmaps"},
		State: StateConfig{
			DBPath: ".arbor/state.db",
			Driver: "sqlite",
		},
		Logging: LoggingConfig{DebugLog: ".arbor/logs/arbor-debug.log"},
	}
}

// ProjectTemplate is written by `arbor init` as .arbor.yaml.
const ProjectTemplate = `# arbor project configuration. Values here override ~/.config/arbor/config.yaml.
provider: anthropic

anthropic:
  # api_key: ${ANTHROPIC_API_KEY}
  model: claude-sonnet-4-20250514

bedrock:
  region: us-east-1
  # profile: default

generation:
  max_attempts: 3
  interactive: false
  reviewer: terminal
  # guidance:
  #   task: Keep tasks under one day of work.

storage:
  dir: roadmaps

state:
  driver: sqlite

# metrics:
#   textfile: .arbor/metrics/arbor.prom
`
