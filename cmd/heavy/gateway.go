package main

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ShayCichocki/heavy/internal/config"
	"github.com/ShayCichocki/heavy/internal/llm"
)

// newGateway builds the provider client named by cfg, counted by tokens and
// wrapped with the configured retry policy.
func newGateway(cfg *config.Config, tokens *llm.TokenTracker, log zerolog.Logger) (llm.Gateway, error) {
	p := cfg.Provider

	var base llm.Gateway
	switch p.Type {
	case config.ProviderOpenRouter, config.ProviderOpenAI:
		key, err := config.GetAPIKey(cfg)
		if err != nil {
			return nil, err
		}
		g, err := llm.NewOpenAIGateway(llm.OpenAIConfig{
			Model:   p.Model,
			APIKey:  key,
			BaseURL: p.BaseURL,
			Timeout: p.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("create %s client: %w", p.Type, err)
		}
		base = g

	case config.ProviderAnthropic, config.ProviderBedrock:
		ac := llm.AnthropicConfig{
			Model:   p.Model,
			BaseURL: p.BaseURL,
			Timeout: p.Timeout,
		}
		if p.Type == config.ProviderBedrock {
			ac.UseBedrock = true
			ac.AWSRegion = p.AWSRegion
			ac.AWSProfile = p.AWSProfile
		} else {
			key, err := config.GetAPIKey(cfg)
			if err != nil {
				return nil, err
			}
			ac.APIKey = key
		}
		g, err := llm.NewAnthropicGateway(ac)
		if err != nil {
			return nil, fmt.Errorf("create %s client: %w", p.Type, err)
		}
		base = g

	default:
		return nil, &config.ConfigurationError{Key: "provider.type", Message: fmt.Sprintf("unsupported provider %q", p.Type)}
	}

	policy := llm.RetryPolicy{
		MaxRetries:   p.MaxRetries,
		InitialDelay: p.RetryDelay,
		Multiplier:   2,
		MaxDelay:     30 * time.Second,
	}
	return llm.NewRetryGateway(llm.Tracked(base, tokens), policy, log), nil
}
