package config

import (
	"sort"
	"strconv"
	"strings"
)

// keyReplacer maps dotted keys to env names: provider.model -> HEAVY_PROVIDER_MODEL.
var keyReplacer = strings.NewReplacer(".", "_")

// flatten returns cfg as dotted keys. Durations are written in their
// string form so saved files stay readable.
func flatten(cfg *Config) map[string]any {
	disabled := cfg.Tools.Disabled
	if disabled == nil {
		disabled = []string{}
	}
	return map[string]any{
		"provider.type":        cfg.Provider.Type,
		"provider.api_key":     cfg.Provider.APIKey,
		"provider.base_url":    cfg.Provider.BaseURL,
		"provider.model":       cfg.Provider.Model,
		"provider.timeout":     cfg.Provider.Timeout.String(),
		"provider.max_retries": cfg.Provider.MaxRetries,
		"provider.retry_delay": cfg.Provider.RetryDelay.String(),
		"provider.max_tokens":  cfg.Provider.MaxTokens,
		"provider.aws_region":  cfg.Provider.AWSRegion,
		"provider.aws_profile": cfg.Provider.AWSProfile,

		"agent.max_iterations": cfg.Agent.MaxIterations,
		"agent.system_prompt":  cfg.Agent.SystemPrompt,

		"orchestrator.parallel_agents":               cfg.Orchestrator.ParallelAgents,
		"orchestrator.max_concurrency":               cfg.Orchestrator.MaxConcurrency,
		"orchestrator.task_timeout":                  cfg.Orchestrator.TaskTimeout.String(),
		"orchestrator.synthesize_partial_on_timeout": cfg.Orchestrator.SynthesizePartialOnTimeout,
		"orchestrator.question_generation_prompt":    cfg.Orchestrator.QuestionGenerationPrompt,
		"orchestrator.synthesis_prompt":              cfg.Orchestrator.SynthesisPrompt,

		"tools.workdir":                   cfg.Tools.WorkDir,
		"tools.disabled":                  disabled,
		"tools.search.endpoint":           cfg.Tools.Search.Endpoint,
		"tools.search.max_results":        cfg.Tools.Search.MaxResults,
		"tools.search.timeout":            cfg.Tools.Search.Timeout.String(),
		"tools.search.content_truncation": cfg.Tools.Search.ContentTruncation,
		"tools.search.user_agent":         cfg.Tools.Search.UserAgent,
		"tools.search.fetch_content":      cfg.Tools.Search.FetchContent,

		"logging.level":  cfg.Logging.Level,
		"logging.pretty": cfg.Logging.Pretty,
		"logging.file":   cfg.Logging.File,

		"metrics.textfile": cfg.Metrics.Textfile,

		"history.enabled": cfg.History.Enabled,
		"history.path":    cfg.History.Path,

		"tui.refresh_rate": cfg.TUI.RefreshRate.String(),
	}
}

// Keys returns every known dotted configuration key, sorted.
func Keys() []string {
	flat := flatten(Default())
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsKnownKey reports whether key names a configuration setting.
func IsKnownKey(key string) bool {
	_, ok := flatten(Default())[strings.ToLower(key)]
	return ok
}

// coerce turns command-line text into the YAML scalar it most likely means.
func coerce(value string) any {
	if n, err := strconv.Atoi(value); err == nil {
		return n
	}
	switch strings.ToLower(value) {
	case "true":
		return true
	case "false":
		return false
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}
	return value
}
