package helper

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

// ErrSealedTokenInvalid reports a ciphertext that cannot be opened. Callers
// treat this as a cache miss, not a hard failure.
var ErrSealedTokenInvalid = errors.New("sealed token invalid")

// SealToken encrypts a bearer token with AES-GCM keyed by the client secret.
// A fresh random nonce is generated per call and prefixed to the ciphertext.
// Confidentiality is only as good as the secrecy of the client secret itself;
// this keeps the token opaque in the session store, nothing more.
func SealToken(token, clientSecret string) (string, error) {
	block, err := aes.NewCipher(deriveKey(clientSecret))
	if err != nil {
		return "", fmt.Errorf("failed to init cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("failed to init gcm: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := gcm.Seal(nonce, nonce, []byte(token), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// OpenToken reverses SealToken. Any tampering or a wrong secret yields
// ErrSealedTokenInvalid.
func OpenToken(sealed, clientSecret string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", ErrSealedTokenInvalid
	}

	block, err := aes.NewCipher(deriveKey(clientSecret))
	if err != nil {
		return "", fmt.Errorf("failed to init cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("failed to init gcm: %w", err)
	}

	if len(raw) < gcm.NonceSize() {
		return "", ErrSealedTokenInvalid
	}

	nonce, ciphertext := raw[:gcm.NonceSize()], raw[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrSealedTokenInvalid
	}

	return string(plaintext), nil
}

func deriveKey(clientSecret string) []byte {
	key := sha256.Sum256([]byte(clientSecret))
	return key[:]
}
