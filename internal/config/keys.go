package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNoAPIKey is returned when no API key is configured.
var ErrNoAPIKey = errors.New("no API key configured")

// placeholderKeys are values shipped in sample configs that were never replaced.
var placeholderKeys = []string{"YOUR KEY", "YOUR_KEY", "REPLACE_ME"}

// APIKeyEnv returns the environment variable consulted for a provider's key.
func APIKeyEnv(providerType string) string {
	switch providerType {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	case ProviderBedrock:
		return ""
	default:
		return "OPENROUTER_API_KEY"
	}
}

// GetAPIKey returns the API key for the configured provider.
// It checks in order: provider environment variable, config file.
func GetAPIKey(cfg *Config) (string, error) {
	providerType := ProviderOpenRouter
	if cfg != nil {
		providerType = cfg.Provider.Type
	}
	if env := APIKeyEnv(providerType); env != "" {
		if key := os.Getenv(env); key != "" {
			return key, nil
		}
	}

	if cfg != nil && cfg.Provider.APIKey != "" {
		key := os.ExpandEnv(cfg.Provider.APIKey)
		if key != "" && !strings.HasPrefix(key, "${") {
			return key, nil
		}
	}

	return "", ErrNoAPIKey
}

// ValidateAPIKey performs basic format checks on a key for a provider.
// It does not verify the key with the provider.
func ValidateAPIKey(providerType, key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrNoAPIKey
	}
	for _, placeholder := range placeholderKeys {
		if strings.EqualFold(key, placeholder) {
			return fmt.Errorf("invalid API key: %q is a placeholder", key)
		}
	}

	prefix := "sk-"
	if providerType == ProviderAnthropic {
		prefix = "sk-ant-"
	}
	if !strings.HasPrefix(key, prefix) {
		return fmt.Errorf("invalid API key format: expected '%s' prefix", prefix)
	}

	if len(key) < 20 {
		return errors.New("invalid API key format: key too short")
	}

	return nil
}

// MaskAPIKey returns a masked version of the API key for display.
// Shows the first 7 characters and last 4 characters.
func MaskAPIKey(key string) string {
	if key == "" {
		return "(not set)"
	}

	if len(key) <= 15 {
		return "***"
	}

	return key[:7] + "..." + key[len(key)-4:]
}

// KeySource represents where an API key was loaded from.
type KeySource string

const (
	KeySourceEnv    KeySource = "environment"
	KeySourceConfig KeySource = "config_file"
	KeySourceNone   KeySource = "none"
)

// GetAPIKeySource returns where the API key was sourced from.
func GetAPIKeySource(cfg *Config) KeySource {
	providerType := ProviderOpenRouter
	if cfg != nil {
		providerType = cfg.Provider.Type
	}
	if env := APIKeyEnv(providerType); env != "" && os.Getenv(env) != "" {
		return KeySourceEnv
	}

	if cfg != nil && cfg.Provider.APIKey != "" {
		key := os.ExpandEnv(cfg.Provider.APIKey)
		if key != "" && !strings.HasPrefix(key, "${") {
			return KeySourceConfig
		}
	}

	return KeySourceNone
}
