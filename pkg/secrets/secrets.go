package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

// KeySize is the length of application and scope keys in bytes.
const KeySize = 32

var hkdfInfo = []byte("sessionkit/secrets/v1")

// GenerateKey returns a new random 32-byte key.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, err
	}
	return key, nil
}

// ScopeKey derives a deterministic 32-byte scope key from labels.
func ScopeKey(labels ...string) []byte {
	sum := sha256.Sum256([]byte(strings.Join(labels, "\x00")))
	return sum[:]
}

// EncryptBytes seals plaintext with a key derived from appKey and scopeKey.
func EncryptBytes(appKey, scopeKey, plaintext []byte) ([]byte, error) {
	gcm, err := newGCM(appKey, scopeKey)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, errors.Join(ErrEncryptionFailed, err)
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// DecryptBytes opens data produced by EncryptBytes.
func DecryptBytes(appKey, scopeKey, ciphertext []byte) ([]byte, error) {
	gcm, err := newGCM(appKey, scopeKey)
	if err != nil {
		return nil, err
	}

	ns := gcm.NonceSize()
	if len(ciphertext) < ns+gcm.Overhead() {
		return nil, ErrInvalidCiphertext
	}

	plain, err := gcm.Open(nil, ciphertext[:ns], ciphertext[ns:], nil)
	if err != nil {
		return nil, errors.Join(ErrDecryptionFailed, err)
	}
	return plain, nil
}

// EncryptString encrypts a string and returns it base64url encoded.
func EncryptString(appKey, scopeKey []byte, plaintext string) (string, error) {
	sealed, err := EncryptBytes(appKey, scopeKey, []byte(plaintext))
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// DecryptString reverses EncryptString.
func DecryptString(appKey, scopeKey []byte, ciphertext string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", errors.Join(ErrInvalidCiphertext, err)
	}
	plain, err := DecryptBytes(appKey, scopeKey, raw)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

func newGCM(appKey, scopeKey []byte) (cipher.AEAD, error) {
	if len(appKey) != KeySize {
		return nil, ErrInvalidAppKey
	}
	if len(scopeKey) != KeySize {
		return nil, ErrInvalidScopeKey
	}

	key := make([]byte, KeySize)
	defer clear(key)

	if _, err := io.ReadFull(hkdf.New(sha256.New, appKey, scopeKey, hkdfInfo), key); err != nil {
		return nil, errors.Join(ErrKeyDerivationFailed, err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Join(ErrEncryptionFailed, err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.Join(ErrEncryptionFailed, err)
	}
	return gcm, nil
}
