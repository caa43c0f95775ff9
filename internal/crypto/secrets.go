package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/nacl/secretbox"
)

const (
	keySize   = 32
	nonceSize = 24
)

// GenerateKey returns a new random 32-byte key for Encrypt/Decrypt.
func GenerateKey() ([]byte, error) {
	key := make([]byte, keySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return key, nil
}

// KeyFromHex decodes a hex-encoded 32-byte key, as stored in SECRETS_KEY.
func KeyFromHex(s string) ([]byte, error) {
	key, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode secrets key: %w", err)
	}
	if len(key) != keySize {
		return nil, fmt.Errorf("secrets key must be %d bytes, got %d", keySize, len(key))
	}
	return key, nil
}

// Encrypt seals plaintext with NaCl secretbox under a random nonce and
// returns base64(nonce || ciphertext).
func Encrypt(plaintext, key []byte) (string, error) {
	if len(key) != keySize {
		return "", fmt.Errorf("key must be %d bytes, got %d", keySize, len(key))
	}

	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	var k [keySize]byte
	copy(k[:], key)

	sealed := secretbox.Seal(nonce[:], plaintext, &nonce, &k)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. It fails if the key is wrong or the
// ciphertext was tampered with.
func Decrypt(encrypted string, key []byte) ([]byte, error) {
	if len(key) != keySize {
		return nil, fmt.Errorf("key must be %d bytes, got %d", keySize, len(key))
	}

	data, err := base64.StdEncoding.DecodeString(encrypted)
	if err != nil {
		return nil, fmt.Errorf("decode ciphertext: %w", err)
	}
	if len(data) < nonceSize {
		return nil, fmt.Errorf("ciphertext too short")
	}

	var nonce [nonceSize]byte
	copy(nonce[:], data[:nonceSize])

	var k [keySize]byte
	copy(k[:], key)

	plaintext, ok := secretbox.Open(nil, data[nonceSize:], &nonce, &k)
	if !ok {
		return nil, fmt.Errorf("decrypt: authentication failed")
	}
	return plaintext, nil
}
