package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/ssh"
)

// LoadSSHPrivateKey loads an unencrypted SSH private key.
func LoadSSHPrivateKey(keyPath string) (ssh.Signer, error) {
	keyData, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read SSH key: %w", err)
	}

	signer, err := ssh.ParsePrivateKey(keyData)
	if err != nil {
		return nil, fmt.Errorf("failed to parse SSH key: %w", err)
	}
	return signer, nil
}

// IsSSHKeyEncrypted checks whether a private key needs a passphrase,
// without attempting to decrypt it.
func IsSSHKeyEncrypted(keyPath string) (bool, error) {
	keyData, err := os.ReadFile(keyPath)
	if err != nil {
		return false, fmt.Errorf("failed to read SSH key: %w", err)
	}

	_, err = ssh.ParsePrivateKey(keyData)
	if err == nil {
		return false, nil
	}
	if strings.Contains(err.Error(), "encrypted") ||
		strings.Contains(err.Error(), "passphrase") {
		return true, nil
	}
	return false, fmt.Errorf("invalid SSH key: %w", err)
}

// LoadSSHPrivateKeyWithPassphrase loads an encrypted private key.
func LoadSSHPrivateKeyWithPassphrase(keyPath, passphrase string) (ssh.Signer, error) {
	keyData, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read SSH key: %w", err)
	}

	signer, err := ssh.ParsePrivateKeyWithPassphrase(keyData, []byte(passphrase))
	if err != nil {
		return nil, fmt.Errorf("failed to parse SSH key (wrong passphrase?): %w", err)
	}
	return signer, nil
}

// FindSSHKeys scans ~/.ssh for usable private keys, most preferred first.
func FindSSHKeys() ([]string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	sshDir := filepath.Join(homeDir, ".ssh")
	if _, err := os.Stat(sshDir); os.IsNotExist(err) {
		return []string{}, nil
	}

	keyNames := []string{"id_ed25519", "id_rsa", "id_ecdsa"}
	var foundKeys []string
	for _, name := range keyNames {
		keyPath := filepath.Join(sshDir, name)
		if _, err := os.Stat(keyPath); err == nil && isPrivateKey(keyPath) {
			foundKeys = append(foundKeys, keyPath)
		}
	}
	return foundKeys, nil
}

func isPrivateKey(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	content := string(data)
	return strings.Contains(content, "BEGIN") &&
		strings.Contains(content, "PRIVATE KEY")
}
