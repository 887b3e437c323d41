package client

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// ErrCacheEmpty is returned by Load when nothing was saved yet.
var ErrCacheEmpty = errors.New("cache is empty")

// Cache persists profile snapshots between runs. Save overwrites.
type Cache interface {
	Load(ctx context.Context) (Profile, error)
	Save(ctx context.Context, p Profile) error
	Clear(ctx context.Context) error
}

// MemoryCache keeps the snapshot in process memory.
type MemoryCache struct {
	mu   sync.Mutex
	data []byte
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{}
}

func (c *MemoryCache) Load(_ context.Context) (Profile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data == nil {
		return Profile{}, ErrCacheEmpty
	}
	var p Profile
	if err := json.Unmarshal(c.data, &p); err != nil {
		return Profile{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return p, nil
}

func (c *MemoryCache) Save(_ context.Context, p Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	c.mu.Lock()
	c.data = data
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	c.data = nil
	c.mu.Unlock()
	return nil
}

// FileCache stores the snapshot as a JSON file.
type FileCache struct {
	path string
	mu   sync.Mutex
}

func NewFileCache(path string) *FileCache {
	return &FileCache{path: path}
}

func (c *FileCache) Load(_ context.Context) (Profile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return Profile{}, ErrCacheEmpty
	}
	if err != nil {
		return Profile{}, err
	}
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return p, nil
}

// Save writes to a temp file and renames it over the previous snapshot.
func (c *FileCache) Save(_ context.Context, p Profile) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return err
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, c.path)
}

func (c *FileCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := os.Remove(c.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

const (
	profileKey = "profile"
	tokenKey   = "token"
)

// BadgerCache stores the snapshot and the session token in a Badger
// database.
type BadgerCache struct {
	db *badger.DB
}

// OpenBadgerCache opens (or creates) a Badger database in dir.
func OpenBadgerCache(dir string) (*BadgerCache, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &BadgerCache{db: db}, nil
}

func NewBadgerCache(db *badger.DB) *BadgerCache {
	return &BadgerCache{db: db}
}

func (c *BadgerCache) Close() error {
	return c.db.Close()
}

func (c *BadgerCache) get(key string) ([]byte, error) {
	var out []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrCacheEmpty
		}
		if err != nil {
			return fmt.Errorf("get %s: %w", key, err)
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	return out, err
}

func (c *BadgerCache) set(key string, value []byte) error {
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
}

func (c *BadgerCache) del(key string) error {
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

func (c *BadgerCache) Load(_ context.Context) (Profile, error) {
	data, err := c.get(profileKey)
	if err != nil {
		return Profile{}, err
	}
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return p, nil
}

func (c *BadgerCache) Save(_ context.Context, p Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return c.set(profileKey, data)
}

// Clear removes the snapshot and the token.
func (c *BadgerCache) Clear(_ context.Context) error {
	if err := c.del(profileKey); err != nil {
		return err
	}
	return c.del(tokenKey)
}

func (c *BadgerCache) SaveToken(token string) error {
	return c.set(tokenKey, []byte(token))
}

// LoadToken returns "" when no token is stored.
func (c *BadgerCache) LoadToken() (string, error) {
	data, err := c.get(tokenKey)
	if errors.Is(err, ErrCacheEmpty) {
		return "", nil
	}
	return string(data), err
}
