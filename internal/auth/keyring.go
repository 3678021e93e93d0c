package auth

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	crypto2 "sorta/internal/crypto"
)

// ErrNoSession is returned by a Keyring holding no token.
var ErrNoSession = errors.New("not signed in")

// Keyring stores the bearer token of the current sign-in.
type Keyring interface {
	Get() (string, error)
	Set(token string) error
	Delete() error
}

// FileKeyring keeps the token in a file encrypted with AES-GCM. The key is
// derived from a seed so the file is useless on its own.
type FileKeyring struct {
	path string
	key  []byte
}

func NewFileKeyring(path, seed string) (*FileKeyring, error) {
	key, err := crypto2.DeriveKey([]byte(seed))
	if err != nil {
		return nil, err
	}
	return &FileKeyring{path: path, key: key}, nil
}

func (k *FileKeyring) Get() (string, error) {
	data, err := os.ReadFile(k.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNoSession
	}
	if err != nil {
		return "", err
	}
	token, err := crypto2.DecryptGCM(data, k.key)
	if err != nil {
		log.Warnf("FileKeyring.Get: unreadable session file %s: %v", k.path, err)
		return "", ErrNoSession
	}
	return string(token), nil
}

func (k *FileKeyring) Set(token string) error {
	data, err := crypto2.EncryptGCM([]byte(token), k.key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(k.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(k.path, data, 0o600)
}

func (k *FileKeyring) Delete() error {
	if err := os.Remove(k.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// MemoryKeyring holds the token in memory.
type MemoryKeyring struct {
	mu    sync.Mutex
	token string
}

func (k *MemoryKeyring) Get() (string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.token == "" {
		return "", ErrNoSession
	}
	return k.token, nil
}

func (k *MemoryKeyring) Set(token string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.token = token
	return nil
}

func (k *MemoryKeyring) Delete() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.token = ""
	return nil
}

var (
	_ Keyring = (*FileKeyring)(nil)
	_ Keyring = (*MemoryKeyring)(nil)
)
