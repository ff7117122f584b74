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

	"golang.org/x/crypto/pbkdf2"
)

const (
	// KeySize is the size of the encryption key in bytes (32 bytes = 256 bits)
	KeySize = 32
	// NonceSize is the size of the nonce for GCM mode
	NonceSize = 12
	// Iterations is the number of iterations for PBKDF2
	Iterations = 100000
	// MinSecretLength is the shortest accepted sealing secret
	MinSecretLength = 16
)

// keySalt domain-separates session keys from anything else derived from the
// same secret.
var keySalt = []byte("storefront/session/v1")

// ErrInvalidToken is returned when a sealed value cannot be opened
var ErrInvalidToken = errors.New("invalid sealed token")

// Sealer encrypts small values such as session cookies with AES-256-GCM.
// The key is derived once from the secret so sealing stays cheap per request.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer derives a key from secret and returns a ready Sealer
func NewSealer(secret string) (*Sealer, error) {
	if err := ValidateSecret(secret); err != nil {
		return nil, err
	}

	key := pbkdf2.Key([]byte(secret), keySalt, Iterations, KeySize, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &Sealer{aead: gcm}, nil
}

// Seal encrypts plaintext and binds it to aad. The result is URL-safe base64
// of nonce + ciphertext.
func (s *Sealer) Seal(plaintext, aad []byte) (string, error) {
	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := s.aead.Seal(nonce, nonce, plaintext, aad)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Open reverses Seal. Any tampering, a wrong aad or a different secret
// yields ErrInvalidToken.
func (s *Sealer) Open(token string, aad []byte) ([]byte, error) {
	combined, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if len(combined) < NonceSize+s.aead.Overhead() {
		return nil, fmt.Errorf("%w: too short", ErrInvalidToken)
	}

	nonce, ciphertext := combined[:NonceSize], combined[NonceSize:]
	plaintext, err := s.aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return plaintext, nil
}

// GenerateSecret returns a random URL-safe secret of the given length
func GenerateSecret(length int) (string, error) {
	if length < MinSecretLength {
		return "", fmt.Errorf("secret length must be at least %d characters", MinSecretLength)
	}

	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	return base64.URLEncoding.EncodeToString(bytes)[:length], nil
}

// ValidateSecret checks a sealing secret meets minimum requirements
func ValidateSecret(secret string) error {
	if len(secret) < MinSecretLength {
		return fmt.Errorf("secret must be at least %d characters long", MinSecretLength)
	}
	return nil
}
