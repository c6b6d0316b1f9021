// Package config handles settings files, paths and credential storage.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Config is the resolved application configuration: defaults, then the
// settings file, then CONCIERGE_* environment overrides.
type Config struct {
	DataDirectory string
	Settings      ChatSettings
}

// DataDir returns the expanded data directory path.
func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

func (c *Config) applyEnvOverrides() {
	if dataDir := os.Getenv("CONCIERGE_DATA_DIR"); dataDir != "" {
		c.DataDirectory = dataDir
	}
	if providerID := os.Getenv("CONCIERGE_PROVIDER"); providerID != "" {
		c.Settings.Provider = providerID
	}
	if modelName := os.Getenv("CONCIERGE_MODEL"); modelName != "" {
		c.Settings.Model = modelName
	}
	if relayURL := os.Getenv("CONCIERGE_RELAY_URL"); relayURL != "" {
		c.Settings.RelayURL = relayURL
	}
	if host := os.Getenv("CONCIERGE_OLLAMA_HOST"); host != "" {
		c.Settings.OllamaHost = host
	}
}

// CheckDebug reports whether verbose logging was requested.
func CheckDebug() bool {
	debug := os.Getenv("CONCIERGE_DEBUG")
	return debug == "true" || debug == "1"
}

// Load resolves the configuration and ensures the data directory exists.
func Load() (*Config, error) {
	cfg := &Config{
		DataDirectory: defaultDataDir(),
		Settings:      DefaultSettings(),
	}

	settings, err := LoadSettings(GetSettingsFilePath())
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	if settings != nil {
		cfg.Settings = *settings
	}

	cfg.applyEnvOverrides()

	dataDir := cfg.DataDir()
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return cfg, nil
}

// GetConfigDir returns the platform-specific configuration directory.
func GetConfigDir() string {
	if runtime.GOOS == "windows" {
		userProfile := os.Getenv("USERPROFILE")
		return filepath.Join(userProfile, ".config", "concierge")
	}
	home := os.Getenv("HOME")
	return filepath.Join(home, ".config", "concierge")
}

// GetSettingsFilePath returns the path to settings.toml.
func GetSettingsFilePath() string {
	return filepath.Join(GetConfigDir(), "settings.toml")
}

func defaultDataDir() string {
	if runtime.GOOS == "windows" {
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			localAppData = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Local")
		}
		return filepath.Join(localAppData, "concierge")
	}
	return "~/.local/share/concierge"
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		home := os.Getenv("HOME")
		if runtime.GOOS == "windows" {
			home = os.Getenv("USERPROFILE")
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}

// FileExists reports whether path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
