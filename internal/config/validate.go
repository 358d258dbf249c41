package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog"
)

// Validate checks a loaded configuration and returns the first problem found.
func (c *Config) Validate() error {
	providers := []string{ProviderOpenRouter, ProviderOpenAI, ProviderAnthropic, ProviderBedrock}
	if !slices.Contains(providers, c.Provider.Type) {
		return &ConfigurationError{
			Key:     "provider.type",
			Message: fmt.Sprintf("unsupported provider %q (want one of %s)", c.Provider.Type, strings.Join(providers, ", ")),
		}
	}

	if c.Provider.Type != ProviderBedrock {
		key, err := GetAPIKey(c)
		if err != nil {
			return &ConfigurationError{
				Key:     "provider.api_key",
				Message: fmt.Sprintf("set %s or provider.api_key", APIKeyEnv(c.Provider.Type)),
				Err:     err,
			}
		}
		if err := ValidateAPIKey(c.Provider.Type, key); err != nil {
			return &ConfigurationError{Key: "provider.api_key", Message: "invalid key", Err: err}
		}
	}

	if strings.TrimSpace(c.Provider.Model) == "" {
		return &ConfigurationError{Key: "provider.model", Message: "must not be empty"}
	}

	checks := []struct {
		key string
		ok  bool
		msg string
	}{
		{"provider.timeout", c.Provider.Timeout > 0, "must be positive"},
		{"provider.max_retries", c.Provider.MaxRetries >= 0, "must not be negative"},
		{"provider.retry_delay", c.Provider.RetryDelay >= 0, "must not be negative"},
		{"provider.max_tokens", c.Provider.MaxTokens > 0, "must be positive"},
		{"agent.max_iterations", c.Agent.MaxIterations > 0, "must be positive"},
		{"orchestrator.parallel_agents", c.Orchestrator.ParallelAgents >= 1, "must be at least 1"},
		{"orchestrator.max_concurrency", c.Orchestrator.MaxConcurrency >= 0, "must not be negative"},
		{"orchestrator.task_timeout", c.Orchestrator.TaskTimeout > 0, "must be positive"},
		{"tools.search.max_results", c.Tools.Search.MaxResults > 0, "must be positive"},
		{"tools.search.timeout", c.Tools.Search.Timeout > 0, "must be positive"},
		{"tui.refresh_rate", c.TUI.RefreshRate > 0, "must be positive"},
	}
	for _, check := range checks {
		if !check.ok {
			return &ConfigurationError{Key: check.key, Message: check.msg}
		}
	}

	if !strings.Contains(c.Orchestrator.QuestionGenerationPrompt, "{user_input}") {
		return &ConfigurationError{Key: "orchestrator.question_generation_prompt", Message: "missing {user_input} placeholder"}
	}
	if !strings.Contains(c.Orchestrator.SynthesisPrompt, "{agent_responses}") {
		return &ConfigurationError{Key: "orchestrator.synthesis_prompt", Message: "missing {agent_responses} placeholder"}
	}

	if _, err := zerolog.ParseLevel(c.Logging.Level); err != nil {
		return &ConfigurationError{Key: "logging.level", Message: "unknown level", Err: err}
	}

	if c.History.Enabled && c.History.Path == "" {
		return &ConfigurationError{Key: "history.path", Message: "required when history is enabled"}
	}

	return nil
}
