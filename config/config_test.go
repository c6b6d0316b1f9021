package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestSettingsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.toml")

	settings := DefaultSettings()
	settings.Provider = "anthropic"
	settings.Model = "claude-sonnet-4-5-20250929"
	settings.Temperature = 0.3
	settings.APIKeyRef = "anthropic-personal"
	settings.EnableHistory = false

	if err := SaveSettings(path, settings); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}

	loaded, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if loaded == nil {
		t.Fatal("LoadSettings returned nil for existing file")
	}
	if loaded.Provider != "anthropic" || loaded.Temperature != 0.3 {
		t.Errorf("loaded = %+v", loaded)
	}
	if loaded.APIKeyRef != "anthropic-personal" {
		t.Errorf("APIKeyRef = %q", loaded.APIKeyRef)
	}
	if loaded.EnableHistory {
		t.Error("EnableHistory should survive as false")
	}
}

func TestLoadSettingsMissingFileIsNotAnError(t *testing.T) {
	loaded, err := LoadSettings(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded != nil {
		t.Error("missing file should yield nil settings")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CONCIERGE_PROVIDER", "ollama")
	t.Setenv("CONCIERGE_MODEL", "llama3.1:8b")
	t.Setenv("CONCIERGE_DATA_DIR", t.TempDir())

	cfg := &Config{DataDirectory: "~/ignored", Settings: DefaultSettings()}
	cfg.applyEnvOverrides()

	if cfg.Settings.Provider != "ollama" {
		t.Errorf("Provider = %q", cfg.Settings.Provider)
	}
	if cfg.Settings.Model != "llama3.1:8b" {
		t.Errorf("Model = %q", cfg.Settings.Model)
	}
	if cfg.DataDirectory == "~/ignored" {
		t.Error("data dir override not applied")
	}
}

func TestExpandPath(t *testing.T) {
	home := os.Getenv("HOME")
	if got := ExpandPath("~/x/y"); got != filepath.Join(home, "x", "y") {
		t.Errorf("ExpandPath = %q", got)
	}
	if got := ExpandPath("/abs/path"); got != "/abs/path" {
		t.Errorf("absolute path changed: %q", got)
	}
}

func TestPlainTextCredentialsRoundTrip(t *testing.T) {
	dir := t.TempDir()

	store := NewCredentialStore(SecurityPlainText, "")
	store.Set("anthropic-personal", "sk-test-123")
	store.Set("azure-work", "az-456")
	if err := store.Save(dir); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Credentials land with owner-only permissions.
	info, err := os.Stat(credentialsPath(dir))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("credentials file mode = %v, want 0600", info.Mode().Perm())
	}

	reloaded := NewCredentialStore(SecurityPlainText, "")
	if err := reloaded.Load(dir); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if reloaded.Get("anthropic-personal") != "sk-test-123" {
		t.Errorf("Get = %q", reloaded.Get("anthropic-personal"))
	}

	reloaded.Delete("azure-work")
	if reloaded.Get("azure-work") != "" {
		t.Error("Delete did not remove the key")
	}
}

func TestCredentialsLoadEmptyWhenMissing(t *testing.T) {
	store := NewCredentialStore(SecurityPlainText, "")
	if err := store.Load(t.TempDir()); err != nil {
		t.Fatalf("Load on empty dir: %v", err)
	}
	if store.Get("anything") != "" {
		t.Error("empty store should return empty strings")
	}
}

func TestAESGCMRoundTrip(t *testing.T) {
	key := bytes.Repeat([]byte{0x42}, 32)
	plaintext := []byte(`{"anthropic-personal":"sk-test"}`)

	ciphertext, err := encryptAESGCM(plaintext, key)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if bytes.Contains(ciphertext, []byte("sk-test")) {
		t.Error("ciphertext leaks plaintext")
	}

	decrypted, err := decryptAESGCM(ciphertext, key)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if !bytes.Equal(decrypted, plaintext) {
		t.Error("round trip mismatch")
	}

	// Tampering must fail authentication.
	ciphertext[len(ciphertext)-1] ^= 0xff
	if _, err := decryptAESGCM(ciphertext, key); err == nil {
		t.Error("tampered ciphertext decrypted without error")
	}

	// Truncated input must not panic.
	if _, err := decryptAESGCM(ciphertext[:4], key); err == nil {
		t.Error("short ciphertext should error")
	}
}
