package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/jonasv2/sessionkit/pkg/secrets"
)

// FileStore keeps the pair in a JSON file, replaced with an atomic rename.
type FileStore struct {
	mu        sync.Mutex
	path      string
	key       []byte
	namespace string
}

// FileOption configures a FileStore.
type FileOption func(*FileStore)

// WithEncryptionKey encrypts the file contents with key (see secrets.KeySize).
func WithEncryptionKey(key []byte) FileOption {
	return func(s *FileStore) {
		if len(key) > 0 {
			s.key = append([]byte(nil), key...)
		}
	}
}

// WithNamespace scopes the encryption key. Files written under one namespace
// cannot be read under another.
func WithNamespace(ns string) FileOption {
	return func(s *FileStore) {
		if ns != "" {
			s.namespace = ns
		}
	}
}

// NewFileStore returns a store backed by path. The file is created on first Save.
func NewFileStore(path string, opts ...FileOption) (*FileStore, error) {
	s := &FileStore{path: path, namespace: "default"}
	for _, opt := range opts {
		opt(s)
	}
	if s.key != nil && len(s.key) != secrets.KeySize {
		return nil, ErrInvalidKey
	}
	return s, nil
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Save(_ context.Context, pair Pair) error {
	if !pair.Valid() {
		return ErrIncompletePair
	}

	data, err := json.Marshal(pair)
	if err != nil {
		return errors.Join(ErrSaveFailed, err)
	}
	if s.key != nil {
		data, err = secrets.EncryptBytes(s.key, s.scope(), data)
		if err != nil {
			return errors.Join(ErrSaveFailed, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeFileAtomic(s.path, data); err != nil {
		return errors.Join(ErrSaveFailed, err)
	}
	return nil
}

func (s *FileStore) Load(_ context.Context) (Pair, bool, error) {
	s.mu.Lock()
	data, err := os.ReadFile(s.path)
	s.mu.Unlock()

	if errors.Is(err, fs.ErrNotExist) {
		return Pair{}, false, nil
	}
	if err != nil {
		return Pair{}, false, errors.Join(ErrLoadFailed, err)
	}

	if s.key != nil {
		data, err = secrets.DecryptBytes(s.key, s.scope(), data)
		if err != nil {
			return Pair{}, false, nil
		}
	}

	var fields map[string]string
	if err := json.Unmarshal(data, &fields); err != nil {
		return Pair{}, false, nil
	}
	pair, ok := pairFromFields(fields)
	return pair, ok, nil
}

func (s *FileStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.Join(ErrClearFailed, err)
	}
	return nil
}

func (s *FileStore) scope() []byte {
	return secrets.ScopeKey("tokenstore", s.namespace)
}

// writeFileAtomic writes data to a temp file in the target directory, syncs
// it and renames it over path.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".tokens-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
