package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Provider.Type != ProviderOpenRouter {
		t.Errorf("expected default provider %q, got %q", ProviderOpenRouter, cfg.Provider.Type)
	}
	if cfg.Provider.Model != DefaultModel {
		t.Errorf("expected default model %q, got %q", DefaultModel, cfg.Provider.Model)
	}
	if cfg.Provider.Timeout != 30*time.Second {
		t.Errorf("expected provider timeout 30s, got %v", cfg.Provider.Timeout)
	}
	if cfg.Provider.MaxRetries != 3 {
		t.Errorf("expected 3 retries, got %d", cfg.Provider.MaxRetries)
	}
	if cfg.Agent.MaxIterations != 10 {
		t.Errorf("expected 10 iterations, got %d", cfg.Agent.MaxIterations)
	}
	if cfg.Orchestrator.ParallelAgents != 4 {
		t.Errorf("expected 4 agents, got %d", cfg.Orchestrator.ParallelAgents)
	}
	if cfg.Orchestrator.TaskTimeout != 300*time.Second {
		t.Errorf("expected task timeout 300s, got %v", cfg.Orchestrator.TaskTimeout)
	}
	if cfg.TUI.RefreshRate != 250*time.Millisecond {
		t.Errorf("expected refresh rate 250ms, got %v", cfg.TUI.RefreshRate)
	}
	if !cfg.Tools.Search.FetchContent {
		t.Error("expected search content fetching on by default")
	}
}

func TestLoadFromPath(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
provider:
  type: anthropic
  api_key: sk-ant-test-key-0123456789
  model: claude-sonnet-4-5
  timeout: 45s
orchestrator:
  parallel_agents: 6
  synthesize_partial_on_timeout: true
tools:
  disabled: [write_file]
  search:
    max_results: 3
tui:
  refresh_rate: 100ms
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}

	if cfg.Provider.Type != ProviderAnthropic {
		t.Errorf("expected provider anthropic, got %q", cfg.Provider.Type)
	}
	if cfg.Provider.BaseURL != "" {
		t.Errorf("expected no base URL for anthropic, got %q", cfg.Provider.BaseURL)
	}
	if cfg.Provider.Model != "claude-sonnet-4-5" {
		t.Errorf("expected model override, got %q", cfg.Provider.Model)
	}
	if cfg.Provider.Timeout != 45*time.Second {
		t.Errorf("expected timeout 45s, got %v", cfg.Provider.Timeout)
	}
	if cfg.Orchestrator.ParallelAgents != 6 {
		t.Errorf("expected 6 agents, got %d", cfg.Orchestrator.ParallelAgents)
	}
	if !cfg.Orchestrator.SynthesizePartialOnTimeout {
		t.Error("expected partial synthesis enabled")
	}
	if len(cfg.Tools.Disabled) != 1 || cfg.Tools.Disabled[0] != "write_file" {
		t.Errorf("expected [write_file] disabled, got %v", cfg.Tools.Disabled)
	}
	if cfg.Tools.Search.MaxResults != 3 {
		t.Errorf("expected 3 search results, got %d", cfg.Tools.Search.MaxResults)
	}
	if cfg.TUI.RefreshRate != 100*time.Millisecond {
		t.Errorf("expected refresh rate 100ms, got %v", cfg.TUI.RefreshRate)
	}

	// Untouched keys keep their defaults.
	if cfg.Agent.MaxIterations != 10 {
		t.Errorf("expected default iterations, got %d", cfg.Agent.MaxIterations)
	}
	if cfg.Orchestrator.SynthesisPrompt == "" {
		t.Error("expected default synthesis prompt")
	}
}

func TestLoadFromPath_Missing(t *testing.T) {
	_, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if _, ok := err.(*ConfigurationError); !ok {
		t.Errorf("expected *ConfigurationError, got %T", err)
	}
}

func TestLoadFromPath_EnvOverride(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("provider:\n  model: from-file\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HEAVY_PROVIDER_MODEL", "from-env")
	t.Setenv("HEAVY_ORCHESTRATOR_PARALLEL_AGENTS", "7")

	cfg, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if cfg.Provider.Model != "from-env" {
		t.Errorf("expected env to win, got %q", cfg.Provider.Model)
	}
	if cfg.Orchestrator.ParallelAgents != 7 {
		t.Errorf("expected 7 agents from env, got %d", cfg.Orchestrator.ParallelAgents)
	}
}

func TestLoad_Precedence(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	userDir := filepath.Join(xdg, "heavy")
	if err := os.MkdirAll(userDir, 0755); err != nil {
		t.Fatal(err)
	}
	userConfig := "provider:\n  model: user-model\n  api_key: ${HEAVY_TEST_DOTENV_KEY}\nagent:\n  max_iterations: 5\n"
	if err := os.WriteFile(filepath.Join(userDir, "config.yaml"), []byte(userConfig), 0644); err != nil {
		t.Fatal(err)
	}

	project := t.TempDir()
	nested := filepath.Join(project, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(project, projectConfigName), []byte("provider:\n  model: project-model\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(nested, ".env"), []byte("HEAVY_TEST_DOTENV_KEY=sk-or-from-dotenv-0123456789\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("HEAVY_TEST_DOTENV_KEY") })
	t.Chdir(nested)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Provider.Model != "project-model" {
		t.Errorf("expected project config to win, got %q", cfg.Provider.Model)
	}
	if cfg.Agent.MaxIterations != 5 {
		t.Errorf("expected user config iterations 5, got %d", cfg.Agent.MaxIterations)
	}
	if cfg.Provider.APIKey != "sk-or-from-dotenv-0123456789" {
		t.Errorf("expected key expanded from .env, got %q", cfg.Provider.APIKey)
	}
	if cfg.Provider.BaseURL != DefaultBaseURL(ProviderOpenRouter) {
		t.Errorf("expected openrouter base URL, got %q", cfg.Provider.BaseURL)
	}
	if got := GetProjectConfigPath(); got != filepath.Join(project, projectConfigName) {
		t.Errorf("expected project config %q, got %q", filepath.Join(project, projectConfigName), got)
	}

	value, err := Lookup("agent.max_iterations")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if value != 5 {
		t.Errorf("expected lookup 5, got %v (%T)", value, value)
	}
}

func TestSaveTo_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Provider.Model = "saved-model"
	cfg.Orchestrator.TaskTimeout = 90 * time.Second
	cfg.Tools.Disabled = []string{"search_web"}
	if err := SaveTo(path, cfg); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("expected 0600 permissions, got %v", info.Mode().Perm())
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if loaded.Provider.Model != "saved-model" {
		t.Errorf("expected saved model, got %q", loaded.Provider.Model)
	}
	if loaded.Orchestrator.TaskTimeout != 90*time.Second {
		t.Errorf("expected 90s timeout, got %v", loaded.Orchestrator.TaskTimeout)
	}
	if len(loaded.Tools.Disabled) != 1 || loaded.Tools.Disabled[0] != "search_web" {
		t.Errorf("expected [search_web], got %v", loaded.Tools.Disabled)
	}
}

func TestSetValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	if err := SetValue(path, "orchestrator.parallel_agents", "6"); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
	if err := SetValue(path, "tools.search.fetch_content", "false"); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
	if err := SetValue(path, "provider.model", "openai/gpt-4o"); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if cfg.Orchestrator.ParallelAgents != 6 {
		t.Errorf("expected 6 agents, got %d", cfg.Orchestrator.ParallelAgents)
	}
	if cfg.Tools.Search.FetchContent {
		t.Error("expected fetch_content false")
	}
	if cfg.Provider.Model != "openai/gpt-4o" {
		t.Errorf("expected model set, got %q", cfg.Provider.Model)
	}

	err = SetValue(path, "provider.colour", "blue")
	if err == nil || !strings.Contains(err.Error(), "unknown configuration key") {
		t.Errorf("expected unknown key error, got %v", err)
	}
}

func TestCoerce(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"6", 6},
		{"1", 1},
		{"true", true},
		{"False", false},
		{"0.5", 0.5},
		{"30s", "30s"},
		{"moonshotai/kimi-k2:free", "moonshotai/kimi-k2:free"},
	}
	for _, tt := range tests {
		if got := coerce(tt.in); got != tt.want {
			t.Errorf("coerce(%q) = %v (%T), want %v (%T)", tt.in, got, got, tt.want, tt.want)
		}
	}
}

func TestKeys(t *testing.T) {
	keys := Keys()
	for _, want := range []string{"provider.model", "orchestrator.parallel_agents", "tools.search.max_results", "tui.refresh_rate"} {
		if !IsKnownKey(want) {
			t.Errorf("expected %q to be known", want)
		}
		found := false
		for _, k := range keys {
			if k == want {
				found = true
			}
		}
		if !found {
			t.Errorf("Keys() missing %q", want)
		}
	}
	if IsKnownKey("provider") {
		t.Error("section names are not keys")
	}
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("TEST_VAR", "expanded-value")

	if result := expandEnv("${TEST_VAR}"); result != "expanded-value" {
		t.Errorf("expected 'expanded-value', got %q", result)
	}
	if result := expandEnv("prefix-${TEST_VAR}-suffix"); result != "prefix-expanded-value-suffix" {
		t.Errorf("expected 'prefix-expanded-value-suffix', got %q", result)
	}
}

func TestGetUserConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")

	if dir := getUserConfigDir(); dir != "/custom/config/heavy" {
		t.Errorf("expected %q, got %q", "/custom/config/heavy", dir)
	}
	if path := GetUserConfigPath(); path != "/custom/config/heavy/config.yaml" {
		t.Errorf("unexpected user config path %q", path)
	}
}

func TestDefaultHistoryPath(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/custom/data")

	if path := DefaultHistoryPath(); path != "/custom/data/heavy/history.db" {
		t.Errorf("unexpected history path %q", path)
	}
}
