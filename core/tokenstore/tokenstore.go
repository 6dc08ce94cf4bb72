package tokenstore

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
)

// Field names used by every backend.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyTokenType    = "token_type"
)

// Pair is an access/refresh token pair as issued by the auth API.
type Pair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// Valid reports whether both tokens are present.
func (p Pair) Valid() bool {
	return p.AccessToken != "" && p.RefreshToken != ""
}

// Store persists a single token pair. Implementations are safe for concurrent use.
type Store interface {
	// Save replaces any stored pair.
	Save(ctx context.Context, pair Pair) error
	// Load returns the stored pair. ok is false when nothing usable is stored.
	Load(ctx context.Context) (pair Pair, ok bool, err error)
	// Clear removes the stored pair. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}

// Driver names accepted by Config.Driver.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// Config selects and configures a backend.
type Config struct {
	Driver         string `env:"SESSIONKIT_TOKEN_STORE" envDefault:"file"`
	FilePath       string `env:"SESSIONKIT_TOKEN_FILE"`
	EncryptionKey  string `env:"SESSIONKIT_TOKEN_KEY"`
	Namespace      string `env:"SESSIONKIT_TOKEN_NAMESPACE" envDefault:"default"`
	RedisKeyPrefix string `env:"SESSIONKIT_TOKEN_REDIS_PREFIX" envDefault:"sessionkit:tokens:"`
}

// Key decodes EncryptionKey (standard base64). A blank key yields nil.
func (c Config) Key() ([]byte, error) {
	if c.EncryptionKey == "" {
		return nil, nil
	}
	key, err := base64.StdEncoding.DecodeString(c.EncryptionKey)
	if err != nil {
		return nil, errors.Join(ErrInvalidKey, err)
	}
	return key, nil
}

// Path returns FilePath or the default location under the user config dir.
func (c Config) Path() (string, error) {
	if c.FilePath != "" {
		return c.FilePath, nil
	}
	return DefaultFilePath()
}

// DefaultFilePath returns <user config dir>/sessionkit/tokens.json.
func DefaultFilePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "sessionkit", "tokens.json"), nil
}

func pairFromFields(fields map[string]string) (Pair, bool) {
	p := Pair{
		AccessToken:  fields[KeyAccessToken],
		RefreshToken: fields[KeyRefreshToken],
		TokenType:    fields[KeyTokenType],
	}
	if !p.Valid() {
		return Pair{}, false
	}
	return p, true
}
