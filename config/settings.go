package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ChatSettings is everything the user can tune about a conversation.
// Loaded explicitly at session start and saved explicitly when changed;
// nothing reads the file ambiently mid-session.
type ChatSettings struct {
	// Provider selects the backend: intervised, anthropic, openai, azure,
	// anthropic-compat (Anthropic wire shape at a custom endpoint, through
	// the multi-vendor adapter) or ollama.
	Provider string `toml:"provider"`

	// Model overrides the provider's default model when non-empty.
	Model string `toml:"model,omitempty"`

	Temperature float64 `toml:"temperature"`
	MaxTokens   int     `toml:"max_tokens"`

	// SystemPrompt is the persona prepended to every exchange.
	SystemPrompt string `toml:"system_prompt,omitempty"`

	// APIKeyRef names the credential-store entry holding the user's own
	// key for the anthropic and multi-vendor providers. The key itself
	// never lives in this file.
	APIKeyRef string `toml:"api_key_ref,omitempty"`

	// Azure deployment routing, used when Provider is "azure".
	AzureEndpoint   string `toml:"azure_endpoint,omitempty"`
	AzureDeployment string `toml:"azure_deployment,omitempty"`

	RelayURL   string `toml:"relay_url,omitempty"`
	OllamaHost string `toml:"ollama_host,omitempty"`

	// EnableHistory turns on transcript persistence.
	EnableHistory bool `toml:"enable_history"`
}

// DefaultSettings returns the out-of-the-box settings.
func DefaultSettings() ChatSettings {
	return ChatSettings{
		Provider:      "intervised",
		Temperature:   0.7,
		MaxTokens:     1024,
		OllamaHost:    "http://localhost:11434",
		EnableHistory: true,
	}
}

// LoadSettings reads settings from path. A missing file is not an error;
// it returns nil so the caller falls back to defaults.
func LoadSettings(path string) (*ChatSettings, error) {
	if !FileExists(path) {
		return nil, nil
	}

	settings := DefaultSettings()
	if _, err := toml.DecodeFile(path, &settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings file: %w", err)
	}
	return &settings, nil
}

// SaveSettings writes settings to path, creating the directory if needed.
func SaveSettings(path string, settings ChatSettings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	// 0600: may name credential refs and endpoints.
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create settings file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(settings); err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	return nil
}
