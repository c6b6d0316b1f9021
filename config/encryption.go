package config

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/ssh"
)

// EncryptionMethod defines how credential data is protected at rest.
type EncryptionMethod string

const (
	EncryptionNone   EncryptionMethod = "none"
	EncryptionSSHKey EncryptionMethod = "ssh_key"
)

// EncryptionManager wraps at-rest encryption for credential data. With the
// ssh_key method, an AES-256 key is derived deterministically from a
// signature made with the user's SSH key, so the same key always unlocks
// the same data.
type EncryptionManager struct {
	method     EncryptionMethod
	sshKeyPath string
	passphrase string
	signer     ssh.Signer
	aesKey     []byte
}

// NewEncryptionManager creates an encryption manager for one method.
func NewEncryptionManager(method EncryptionMethod, sshKeyPath string) *EncryptionManager {
	return &EncryptionManager{method: method, sshKeyPath: sshKeyPath}
}

// SetPassphrase supplies the passphrase for an encrypted SSH key.
func (e *EncryptionManager) SetPassphrase(passphrase string) {
	e.passphrase = passphrase
}

// Initialize loads the SSH key and derives the AES key. A no-op for the
// none method.
func (e *EncryptionManager) Initialize() error {
	switch e.method {
	case EncryptionNone:
		return nil

	case EncryptionSSHKey:
		encrypted, err := IsSSHKeyEncrypted(e.sshKeyPath)
		if err != nil {
			return fmt.Errorf("failed to check SSH key: %w", err)
		}
		if encrypted && e.passphrase == "" {
			return fmt.Errorf("SSH key is encrypted - passphrase required")
		}

		var signer ssh.Signer
		if encrypted {
			signer, err = LoadSSHPrivateKeyWithPassphrase(e.sshKeyPath, e.passphrase)
		} else {
			signer, err = LoadSSHPrivateKey(e.sshKeyPath)
		}
		if err != nil {
			return fmt.Errorf("failed to load SSH key: %w", err)
		}
		e.signer = signer

		aesKey, err := deriveAESKeyFromSSH(signer)
		if err != nil {
			return fmt.Errorf("failed to derive encryption key: %w", err)
		}
		e.aesKey = aesKey
		return nil

	default:
		return fmt.Errorf("unknown encryption method: %s", e.method)
	}
}

// Encrypt protects plaintext with the configured method. Passthrough for
// the none method.
func (e *EncryptionManager) Encrypt(plaintext []byte) ([]byte, error) {
	switch e.method {
	case EncryptionNone:
		return plaintext, nil
	case EncryptionSSHKey:
		if e.aesKey == nil {
			return nil, fmt.Errorf("encryption manager not initialized")
		}
		return encryptAESGCM(plaintext, e.aesKey)
	default:
		return nil, fmt.Errorf("unknown encryption method: %s", e.method)
	}
}

// Decrypt reverses Encrypt.
func (e *EncryptionManager) Decrypt(ciphertext []byte) ([]byte, error) {
	switch e.method {
	case EncryptionNone:
		return ciphertext, nil
	case EncryptionSSHKey:
		if e.aesKey == nil {
			return nil, fmt.Errorf("encryption manager not initialized")
		}
		return decryptAESGCM(ciphertext, e.aesKey)
	default:
		return nil, fmt.Errorf("unknown encryption method: %s", e.method)
	}
}

// Method returns the configured encryption method.
func (e *EncryptionManager) Method() EncryptionMethod {
	return e.method
}

// encryptAESGCM encrypts with AES-256-GCM.
// Format: [nonce (12 bytes)][ciphertext + tag]
func encryptAESGCM(plaintext, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// decryptAESGCM expects the format produced by encryptAESGCM.
func decryptAESGCM(ciphertext, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonceSize := gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return nil, fmt.Errorf("ciphertext too short")
	}
	plaintext, err := gcm.Open(nil, ciphertext[:nonceSize], ciphertext[nonceSize:], nil)
	if err != nil {
		return nil, fmt.Errorf("decryption failed: %w", err)
	}
	return plaintext, nil
}

// deriveAESKeyFromSSH signs a fixed message and hashes the signature into
// a 32-byte AES key. Deterministic per SSH key.
func deriveAESKeyFromSSH(signer ssh.Signer) ([]byte, error) {
	message := []byte("concierge-encryption-key-derivation-v1")
	signature, err := signer.Sign(rand.Reader, message)
	if err != nil {
		return nil, fmt.Errorf("failed to sign message: %w", err)
	}
	hash := sha256.Sum256(signature.Blob)
	return hash[:], nil
}
