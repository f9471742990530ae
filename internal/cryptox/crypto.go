// Package cryptox seals résumé data at rest: whole documents for the local
// slot and single contact fields for the service database.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// SealedPrefix marks a field value produced by SealString.
const SealedPrefix = "ENC:"

const (
	SaltSize  = 16
	nonceSize = 12
)

var ErrMalformed = errors.New("cryptox: malformed sealed value")

// DeriveMasterKey stretches a passphrase into a 32 byte AES key with Argon2id.
func DeriveMasterKey(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}

// KeyFromSecret turns a configured secret into an AES-256 key. It is meant
// for high-entropy secrets from the environment, not user passwords.
func KeyFromSecret(secret string) []byte {
	sum := sha256.Sum256([]byte(secret))
	return sum[:]
}

// NewSalt returns SaltSize random bytes.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	return salt, nil
}

// EncryptEntry serializes entry to JSON and encrypts it with AES-GCM under
// key. A fresh 12 byte nonce is generated for every call and returned
// alongside the ciphertext.
func EncryptEntry(entry any, key []byte) (ciphertext, nonce []byte, err error) {
	plaintext, err := json.Marshal(entry)
	if err != nil {
		return nil, nil, err
	}
	return seal(plaintext, key)
}

// DecryptEntry opens ciphertext produced by EncryptEntry and unmarshals the
// JSON into v.
func DecryptEntry(ciphertext, nonce, key []byte, v any) error {
	aesgcm, err := newGCM(key)
	if err != nil {
		return err
	}
	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return err
	}
	return json.Unmarshal(plaintext, v)
}

// SealString encrypts a single field into "ENC:" + base64(nonce||ciphertext).
// Empty values and values that are already sealed are returned as is.
func SealString(plain string, key []byte) (string, error) {
	if plain == "" || IsSealed(plain) {
		return plain, nil
	}
	ct, nonce, err := seal([]byte(plain), key)
	if err != nil {
		return "", err
	}
	return SealedPrefix + base64.StdEncoding.EncodeToString(append(nonce, ct...)), nil
}

// OpenString reverses SealString. Values without the prefix are plaintext
// written before encryption was enabled and pass through unchanged.
func OpenString(value string, key []byte) (string, error) {
	if !IsSealed(value) {
		return value, nil
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, SealedPrefix))
	if err != nil || len(raw) <= nonceSize {
		return "", ErrMalformed
	}
	aesgcm, err := newGCM(key)
	if err != nil {
		return "", err
	}
	plain, err := aesgcm.Open(nil, raw[:nonceSize], raw[nonceSize:], nil)
	if err != nil {
		return "", fmt.Errorf("open sealed field: %w", err)
	}
	return string(plain), nil
}

func IsSealed(value string) bool {
	return strings.HasPrefix(value, SealedPrefix)
}

func seal(plaintext, key []byte) (ciphertext, nonce []byte, err error) {
	nonce = make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, err
	}
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, nil, err
	}
	return aesgcm.Seal(nil, nonce, plaintext, nil), nonce, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
