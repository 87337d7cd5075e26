// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/pbkdf2"

	"github.com/jeranaias/parley-tui/internal/util"
)

// =============================================================================
// CONSTANTS
// =============================================================================

// SealedPrefix marks a stored value as encrypted (format: ENC:base64(nonce|ciphertext|tag)).
const SealedPrefix = "ENC:"

// nonceSize is the AES-GCM nonce size (96 bits).
const nonceSize = 12

// keySize is the AES-256 key size.
const keySize = 32

// saltSize is the key derivation salt size.
const saltSize = 32

// pbkdf2Iterations is the PBKDF2-SHA-256 iteration count.
const pbkdf2Iterations = 600000

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrSealFailed indicates a value could not be encrypted
	ErrSealFailed = errors.New("failed to seal value")
	// ErrOpenFailed indicates decryption failed (wrong key or tampered data)
	ErrOpenFailed = errors.New("failed to open sealed value: authentication mismatch")
	// ErrBadSealFormat indicates the sealed value format is invalid
	ErrBadSealFormat = errors.New("invalid sealed value format")
)

// =============================================================================
// VAULT
// =============================================================================

// Vault seals and opens short string values with AES-256-GCM. The key is
// derived from machine-local secret material, so a copied database file is
// useless without the key file beside it.
type Vault struct {
	aead cipher.AEAD
}

// zeroBytes wipes key material to limit exposure in crash dumps.
func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// NewVault opens the vault for the given directory, creating the secret and
// salt files on first use.
func NewVault(dir string) (*Vault, error) {
	secret, err := loadOrCreateSecret(filepath.Join(dir, "session.key"))
	if err != nil {
		return nil, err
	}
	defer zeroBytes(secret)

	salt, err := loadOrCreateSecret(filepath.Join(dir, "session.salt"))
	if err != nil {
		return nil, err
	}

	key := pbkdf2.Key(secret, salt, pbkdf2Iterations, keySize, sha256.New)
	defer zeroBytes(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM cipher: %w", err)
	}

	return &Vault{aead: aead}, nil
}

// loadOrCreateSecret reads random secret material from path, generating it
// atomically on first use.
func loadOrCreateSecret(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		if len(data) != saltSize {
			return nil, fmt.Errorf("secret file %s has unexpected size %d", path, len(data))
		}
		return data, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read secret file: %w", err)
	}

	data = make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, data); err != nil {
		return nil, fmt.Errorf("failed to generate secret: %w", err)
	}
	if err := util.AtomicWriteFileWithDir(path, data, 0600, 0700); err != nil {
		return nil, fmt.Errorf("failed to save secret file: %w", err)
	}
	return data, nil
}

// Seal encrypts a value and returns it with the ENC: prefix.
func (v *Vault) Seal(plaintext string) (string, error) {
	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("%w: %v", ErrSealFailed, err)
	}

	sealed := v.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return SealedPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// Open decrypts a value produced by Seal. Values without the ENC: prefix are
// returned unchanged so plaintext rows from older versions keep working.
func (v *Vault) Open(value string) (string, error) {
	if !strings.HasPrefix(value, SealedPrefix) {
		return value, nil
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, SealedPrefix))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadSealFormat, err)
	}
	if len(data) < nonceSize {
		return "", ErrBadSealFormat
	}

	plaintext, err := v.aead.Open(nil, data[:nonceSize], data[nonceSize:], nil)
	if err != nil {
		return "", ErrOpenFailed
	}
	return string(plaintext), nil
}
