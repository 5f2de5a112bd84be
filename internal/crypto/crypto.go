// Package crypto seals and opens the SMTP password so it can be stored in
// deployment configuration without appearing in clear text.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltSize   = 16
	iterations = 100000
	keySize    = 32 // AES-256

	// SealedPrefix marks a value produced by Seal.
	SealedPrefix = "enc:"
)

var (
	// ErrNoKey is returned when a sealed value is opened without a passphrase.
	ErrNoKey = errors.New("secret is sealed but no key was provided")
	// ErrCiphertextTooShort is returned for payloads shorter than a nonce.
	ErrCiphertextTooShort = errors.New("ciphertext too short")
)

// Encryptor handles encryption and decryption of the mail secret
type Encryptor struct {
	key []byte
}

// NewEncryptor creates a new encryptor with the given passphrase.
// Returns nil for an empty passphrase.
func NewEncryptor(passphrase string) *Encryptor {
	if passphrase == "" {
		return nil
	}

	// Fixed salt derived from the passphrase, so the same key opens values
	// sealed on another machine.
	salt := sha256.Sum256([]byte(passphrase + "sz-deals-salt"))

	key := pbkdf2.Key([]byte(passphrase), salt[:saltSize], iterations, keySize, sha256.New)

	return &Encryptor{key: key}
}

// Encrypt encrypts plaintext using AES-GCM and returns base64 text
func (e *Encryptor) Encrypt(plaintext string) (string, error) {
	if e == nil || e.key == nil {
		return "", ErrNoKey
	}

	gcm, err := e.gcm()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}

	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Decrypt reverses Encrypt. Unlike a plain-text fallback, any malformed or
// tampered input is an error.
func (e *Encryptor) Decrypt(ciphertext string) (string, error) {
	if e == nil || e.key == nil {
		return "", ErrNoKey
	}

	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("decoding ciphertext: %w", err)
	}

	gcm, err := e.gcm()
	if err != nil {
		return "", err
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", ErrCiphertextTooShort
	}

	nonce, cipherData := data[:nonceSize], data[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, cipherData, nil)
	if err != nil {
		return "", fmt.Errorf("opening ciphertext: %w", err)
	}

	return string(plaintext), nil
}

func (e *Encryptor) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(e.key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Seal encrypts secret and adds SealedPrefix.
func Seal(passphrase, secret string) (string, error) {
	ciphertext, err := NewEncryptor(passphrase).Encrypt(secret)
	if err != nil {
		return "", err
	}
	return SealedPrefix + ciphertext, nil
}

// IsSealed reports whether value carries SealedPrefix.
func IsSealed(value string) bool {
	return strings.HasPrefix(value, SealedPrefix)
}

// Open returns value unchanged unless it is sealed, in which case it is
// decrypted with passphrase.
func Open(passphrase, value string) (string, error) {
	if !IsSealed(value) {
		return value, nil
	}
	return NewEncryptor(passphrase).Decrypt(strings.TrimPrefix(value, SealedPrefix))
}
