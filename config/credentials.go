package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// SecurityMethod defines how API keys are stored on disk.
type SecurityMethod string

const (
	SecurityPlainText SecurityMethod = "plaintext"
	SecuritySSHKey    SecurityMethod = "ssh_key"
)

// CredentialStore holds user-supplied API keys, keyed by the ref name the
// settings file points at.
type CredentialStore struct {
	method      SecurityMethod
	credentials map[string]string
	sshKeyPath  string
	passphrase  string
	encManager  *EncryptionManager
}

// NewCredentialStore creates an empty store for the given method.
func NewCredentialStore(method SecurityMethod, sshKeyPath string) *CredentialStore {
	return &CredentialStore{
		method:      method,
		credentials: make(map[string]string),
		sshKeyPath:  sshKeyPath,
	}
}

// SetPassphrase supplies the passphrase for an encrypted SSH key.
func (c *CredentialStore) SetPassphrase(passphrase string) {
	c.passphrase = passphrase
	if c.encManager != nil {
		c.encManager.SetPassphrase(passphrase)
	}
}

// Load reads credentials from the data directory. A missing file leaves
// the store empty.
func (c *CredentialStore) Load(dataDir string) error {
	switch c.method {
	case SecurityPlainText:
		creds, err := loadPlainText(dataDir)
		if err != nil {
			return err
		}
		c.credentials = creds
		return nil
	case SecuritySSHKey:
		creds, err := c.loadSSHEncrypted(dataDir)
		if err != nil {
			return err
		}
		c.credentials = creds
		return nil
	default:
		return fmt.Errorf("unknown security method: %s", c.method)
	}
}

// Save writes credentials to the data directory.
func (c *CredentialStore) Save(dataDir string) error {
	switch c.method {
	case SecurityPlainText:
		return savePlainText(dataDir, c.credentials)
	case SecuritySSHKey:
		return c.saveSSHEncrypted(dataDir)
	default:
		return fmt.Errorf("unknown security method: %s", c.method)
	}
}

// Get retrieves a stored key; empty when absent.
func (c *CredentialStore) Get(ref string) string {
	return c.credentials[ref]
}

// Set stores a key under ref.
func (c *CredentialStore) Set(ref, apiKey string) {
	c.credentials[ref] = apiKey
}

// Delete removes the key stored under ref.
func (c *CredentialStore) Delete(ref string) {
	delete(c.credentials, ref)
}

// Method returns the configured storage method.
func (c *CredentialStore) Method() SecurityMethod {
	return c.method
}

func credentialsPath(dataDir string) string {
	return filepath.Join(dataDir, "credentials.toml")
}

func encryptedCredentialsPath(dataDir string) string {
	return filepath.Join(dataDir, "credentials.enc")
}

type credentialsFile struct {
	Credentials map[string]string `toml:"credentials"`
}

func loadPlainText(dataDir string) (map[string]string, error) {
	path := credentialsPath(dataDir)
	if !FileExists(path) {
		return make(map[string]string), nil
	}

	var cf credentialsFile
	if _, err := toml.DecodeFile(path, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse credentials file: %w", err)
	}
	if cf.Credentials == nil {
		cf.Credentials = make(map[string]string)
	}
	return cf.Credentials, nil
}

func savePlainText(dataDir string, creds map[string]string) error {
	f, err := os.OpenFile(credentialsPath(dataDir), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create credentials file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(credentialsFile{Credentials: creds}); err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}
	return nil
}

func (c *CredentialStore) ensureEncManager() error {
	if c.encManager != nil && c.passphrase == "" {
		return nil
	}
	c.encManager = NewEncryptionManager(EncryptionSSHKey, c.sshKeyPath)
	c.encManager.SetPassphrase(c.passphrase)
	if err := c.encManager.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize encryption: %w", err)
	}
	return nil
}

func (c *CredentialStore) loadSSHEncrypted(dataDir string) (map[string]string, error) {
	path := encryptedCredentialsPath(dataDir)
	if !FileExists(path) {
		return make(map[string]string), nil
	}
	if err := c.ensureEncManager(); err != nil {
		return nil, err
	}

	encryptedData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read encrypted credentials: %w", err)
	}
	decryptedData, err := c.encManager.Decrypt(encryptedData)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt credentials: %w", err)
	}

	var creds map[string]string
	if err := json.Unmarshal(decryptedData, &creds); err != nil {
		return nil, fmt.Errorf("failed to parse decrypted credentials: %w", err)
	}
	return creds, nil
}

func (c *CredentialStore) saveSSHEncrypted(dataDir string) error {
	if err := c.ensureEncManager(); err != nil {
		return err
	}

	jsonData, err := json.MarshalIndent(c.credentials, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize credentials: %w", err)
	}
	encryptedData, err := c.encManager.Encrypt(jsonData)
	if err != nil {
		return fmt.Errorf("failed to encrypt credentials: %w", err)
	}
	if err := os.WriteFile(encryptedCredentialsPath(dataDir), encryptedData, 0600); err != nil {
		return fmt.Errorf("failed to write encrypted credentials: %w", err)
	}
	return nil
}
