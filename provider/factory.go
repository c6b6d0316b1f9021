// Package provider implements the chat-completion backends behind the
// model.Provider interface.
//
// Four implementations cover the supported backends:
//   - IntervisedProvider: the first-party relay with per-user spending limits
//   - AnthropicProvider: the native function-calling branch
//   - MultiProvider: the bring-your-own-key adapter (OpenAI-compatible,
//     Azure deployments, Anthropic-compatible); no tool calling
//   - OllamaProvider: a local Ollama server
//
// The orchestrator never branches on provider names; it consults
// Capabilities() and acts on the *Error taxonomy in errors.go.
package provider

import (
	"fmt"

	"concierge/model"
)

// ProviderType identifies the provider implementation.
type ProviderType string

const (
	ProviderTypeIntervised ProviderType = "intervised"
	ProviderTypeAnthropic  ProviderType = "anthropic"
	ProviderTypeMulti      ProviderType = "multi"
	ProviderTypeOllama     ProviderType = "ollama"
)

// Config holds everything the factory needs to construct any provider.
// Fields beyond Type, BaseURL and Model apply only to specific types.
type Config struct {
	Type    ProviderType
	BaseURL string
	Model   string

	// APIKey is required for anthropic and multi.
	APIKey string

	// Identity is required for intervised.
	Identity model.Identity

	// Multi-provider adapter fields.
	Vendor          Vendor
	AzureEndpoint   string
	AzureDeployment string
}

// NewProvider is the single factory for all provider types.
func NewProvider(cfg Config) (model.Provider, error) {
	switch cfg.Type {
	case ProviderTypeIntervised:
		return NewIntervisedProvider(cfg.BaseURL, cfg.Model, cfg.Identity)
	case ProviderTypeAnthropic:
		return NewAnthropicProvider(cfg.BaseURL, cfg.APIKey, cfg.Model)
	case ProviderTypeMulti:
		return NewMultiProvider(MultiConfig{
			Vendor:          cfg.Vendor,
			BaseURL:         cfg.BaseURL,
			APIKey:          cfg.APIKey,
			Model:           cfg.Model,
			AzureEndpoint:   cfg.AzureEndpoint,
			AzureDeployment: cfg.AzureDeployment,
		})
	case ProviderTypeOllama:
		return NewOllamaProvider(cfg.BaseURL, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown provider type: %s", cfg.Type)
	}
}

// MapProviderIDToType converts a settings provider ID to a factory type.
// The multi adapter's vendor shapes all map to ProviderTypeMulti; the
// vendor itself is carried separately in Config.Vendor.
func MapProviderIDToType(id string) ProviderType {
	switch id {
	case "intervised":
		return ProviderTypeIntervised
	case "anthropic":
		return ProviderTypeAnthropic
	case "openai", "azure", "anthropic-compat", "multi":
		return ProviderTypeMulti
	case "ollama":
		return ProviderTypeOllama
	default:
		return ProviderType(id)
	}
}
