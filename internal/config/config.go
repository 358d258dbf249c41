// Package config handles configuration loading and management for heavy.
// It supports XDG config paths, project-level overrides, a .env file and
// environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/ShayCichocki/heavy/internal/agent"
	"github.com/ShayCichocki/heavy/internal/orchestrator"
	"github.com/ShayCichocki/heavy/internal/tools"
	"github.com/ShayCichocki/heavy/internal/version"
)

// Provider types.
const (
	ProviderOpenRouter = "openrouter"
	ProviderOpenAI     = "openai"
	ProviderAnthropic  = "anthropic"
	ProviderBedrock    = "bedrock"
)

// DefaultModel is the model used when none is configured.
const DefaultModel = "moonshotai/kimi-k2:free"

// envPrefix namespaces environment overrides, e.g. HEAVY_PROVIDER_MODEL.
const envPrefix = "HEAVY"

// projectConfigName is looked up from the working directory upwards.
const projectConfigName = ".heavy.yaml"

// Config holds all configuration for heavy.
type Config struct {
	Provider     ProviderConfig     `mapstructure:"provider" yaml:"provider"`
	Agent        AgentConfig        `mapstructure:"agent" yaml:"agent"`
	Orchestrator OrchestratorConfig `mapstructure:"orchestrator" yaml:"orchestrator"`
	Tools        ToolsConfig        `mapstructure:"tools" yaml:"tools"`
	Logging      LoggingConfig      `mapstructure:"logging" yaml:"logging"`
	Metrics      MetricsConfig      `mapstructure:"metrics" yaml:"metrics"`
	History      HistoryConfig      `mapstructure:"history" yaml:"history"`
	TUI          TUIConfig          `mapstructure:"tui" yaml:"tui"`
}

// ProviderConfig selects and tunes the model backend.
type ProviderConfig struct {
	Type       string        `mapstructure:"type" yaml:"type"`
	APIKey     string        `mapstructure:"api_key" yaml:"api_key"`
	BaseURL    string        `mapstructure:"base_url" yaml:"base_url"`
	Model      string        `mapstructure:"model" yaml:"model"`
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout"`
	MaxRetries int           `mapstructure:"max_retries" yaml:"max_retries"`
	RetryDelay time.Duration `mapstructure:"retry_delay" yaml:"retry_delay"`
	MaxTokens  int           `mapstructure:"max_tokens" yaml:"max_tokens"`
	// AWSRegion and AWSProfile apply to the bedrock provider only.
	AWSRegion  string `mapstructure:"aws_region" yaml:"aws_region"`
	AWSProfile string `mapstructure:"aws_profile" yaml:"aws_profile"`
}

// AgentConfig holds single-agent settings.
type AgentConfig struct {
	MaxIterations int    `mapstructure:"max_iterations" yaml:"max_iterations"`
	SystemPrompt  string `mapstructure:"system_prompt" yaml:"system_prompt"`
}

// OrchestratorConfig holds multi-agent settings.
type OrchestratorConfig struct {
	ParallelAgents             int           `mapstructure:"parallel_agents" yaml:"parallel_agents"`
	MaxConcurrency             int           `mapstructure:"max_concurrency" yaml:"max_concurrency"`
	TaskTimeout                time.Duration `mapstructure:"task_timeout" yaml:"task_timeout"`
	SynthesizePartialOnTimeout bool          `mapstructure:"synthesize_partial_on_timeout" yaml:"synthesize_partial_on_timeout"`
	QuestionGenerationPrompt   string        `mapstructure:"question_generation_prompt" yaml:"question_generation_prompt"`
	SynthesisPrompt            string        `mapstructure:"synthesis_prompt" yaml:"synthesis_prompt"`
}

// ToolsConfig holds built-in tool settings.
type ToolsConfig struct {
	WorkDir  string       `mapstructure:"workdir" yaml:"workdir"`
	Disabled []string     `mapstructure:"disabled" yaml:"disabled"`
	Search   SearchConfig `mapstructure:"search" yaml:"search"`
}

// SearchConfig holds search_web settings.
type SearchConfig struct {
	Endpoint          string        `mapstructure:"endpoint" yaml:"endpoint"`
	MaxResults        int           `mapstructure:"max_results" yaml:"max_results"`
	Timeout           time.Duration `mapstructure:"timeout" yaml:"timeout"`
	ContentTruncation int           `mapstructure:"content_truncation" yaml:"content_truncation"`
	UserAgent         string        `mapstructure:"user_agent" yaml:"user_agent"`
	FetchContent      bool          `mapstructure:"fetch_content" yaml:"fetch_content"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Pretty bool   `mapstructure:"pretty" yaml:"pretty"`
	File   string `mapstructure:"file" yaml:"file"`
}

// MetricsConfig holds metrics export settings.
type MetricsConfig struct {
	// Textfile is where Prometheus metrics are written after each run.
	// Empty disables the export.
	Textfile string `mapstructure:"textfile" yaml:"textfile"`
}

// HistoryConfig holds run history settings.
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" yaml:"path"`
}

// TUIConfig holds TUI display settings.
type TUIConfig struct {
	RefreshRate time.Duration `mapstructure:"refresh_rate" yaml:"refresh_rate"`
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (HEAVY_* and the provider API key variables)
// 2. Project config (.heavy.yaml in current directory or parent)
// 3. User config (~/.config/heavy/config.yaml)
// 4. Built-in defaults
//
// A .env file in the working directory is loaded into the environment first.
func Load() (*Config, error) {
	v, err := loadViper()
	if err != nil {
		return nil, err
	}
	return decode(v)
}

// LoadFromPath loads configuration from a specific file on top of the
// defaults, without project or user config.
func LoadFromPath(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, &ConfigurationError{Message: fmt.Sprintf("reading config from %s", path), Err: err}
	}
	return decode(v)
}

// Lookup returns the effective value of one dotted key, e.g. "provider.model".
func Lookup(key string) (any, error) {
	if !IsKnownKey(key) {
		return nil, &ConfigurationError{Key: key, Message: "unknown configuration key"}
	}
	v, err := loadViper()
	if err != nil {
		return nil, err
	}
	return v.Get(key), nil
}

func loadViper() (*viper.Viper, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, &ConfigurationError{Message: "loading .env", Err: err}
	}

	v := newViper()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(getUserConfigDir())
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, &ConfigurationError{Message: "reading user config", Err: err}
		}
	}

	if projectConfig := findProjectConfig(); projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err != nil {
			return nil, &ConfigurationError{Message: fmt.Sprintf("reading project config %s", projectConfig), Err: err}
		}
		if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
			return nil, &ConfigurationError{Message: "merging project config", Err: err}
		}
	}
	return v, nil
}

// newViper returns a viper instance with defaults and env bindings.
func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(keyReplacer)
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, &ConfigurationError{Message: "decoding config", Err: err}
	}
	cfg.Provider.APIKey = expandEnv(cfg.Provider.APIKey)
	if cfg.Provider.BaseURL == "" {
		cfg.Provider.BaseURL = DefaultBaseURL(cfg.Provider.Type)
	}
	return cfg, nil
}

// Save writes cfg to the user config file.
func Save(cfg *Config) error {
	return SaveTo(GetUserConfigPath(), cfg)
}

// SaveTo writes cfg as YAML to path.
func SaveTo(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	for key, value := range flatten(cfg) {
		v.Set(key, value)
	}
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return os.Chmod(path, 0600)
}

// SetValue updates one key in the config file at path, creating the file
// if needed. Values are stored as int or bool when they parse as one.
func SetValue(path, key, value string) error {
	if !IsKnownKey(key) {
		return &ConfigurationError{Key: key, Message: "unknown configuration key"}
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &ConfigurationError{Message: fmt.Sprintf("reading %s", path), Err: err}
	}
	v.Set(key, coerce(value))

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

// DefaultBaseURL returns the API base URL implied by a provider type.
func DefaultBaseURL(providerType string) string {
	if providerType == ProviderOpenRouter {
		return "https://openrouter.ai/api/v1"
	}
	return ""
}

// DefaultHistoryPath returns the XDG data location of the history database.
func DefaultHistoryPath() string {
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return filepath.Join(xdgData, "heavy", "history.db")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".local", "share", "heavy", "history.db")
	}
	return filepath.Join(home, ".local", "share", "heavy", "history.db")
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	for key, value := range flatten(Default()) {
		v.SetDefault(key, value)
	}
}

// getUserConfigDir returns the XDG config directory for heavy.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "heavy")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "heavy")
	}
	return filepath.Join(home, ".config", "heavy")
}

// findProjectConfig searches for .heavy.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, projectConfigName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// expandEnv expands ${VAR} references in a string.
func expandEnv(s string) string {
	return os.ExpandEnv(s)
}

// Default returns a Config with default values.
func Default() *Config {
	search := tools.DefaultSearchConfig()
	return &Config{
		Provider: ProviderConfig{
			Type:       ProviderOpenRouter,
			Model:      DefaultModel,
			Timeout:    30 * time.Second,
			MaxRetries: 3,
			RetryDelay: time.Second,
			MaxTokens:  8192,
		},
		Agent: AgentConfig{
			MaxIterations: agent.DefaultMaxIterations,
			SystemPrompt:  agent.DefaultSystemPrompt,
		},
		Orchestrator: OrchestratorConfig{
			ParallelAgents:           orchestrator.DefaultAgents,
			TaskTimeout:              orchestrator.DefaultTaskTimeout,
			QuestionGenerationPrompt: orchestrator.DefaultQuestionPrompt,
			SynthesisPrompt:          orchestrator.DefaultSynthesisPrompt,
		},
		Tools: ToolsConfig{
			Search: SearchConfig{
				Endpoint:          search.Endpoint,
				MaxResults:        search.MaxResults,
				Timeout:           search.Timeout,
				ContentTruncation: search.Truncation,
				UserAgent:         version.UserAgent(),
				FetchContent:      search.FetchContent,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Pretty: true,
		},
		History: HistoryConfig{
			Path: DefaultHistoryPath(),
		},
		TUI: TUIConfig{
			RefreshRate: 250 * time.Millisecond,
		},
	}
}
