package draft

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"vehiclereg/pkg/platform/sentinel"
)

// Backend hands out one snapshot slot per key (a wizard session id).
type Backend interface {
	Slot(key string) SnapshotStore
}

// MemoryBackend keeps snapshots in process memory.
type MemoryBackend struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{slots: make(map[string][]byte)}
}

func (b *MemoryBackend) Slot(key string) SnapshotStore {
	return &memorySlot{backend: b, key: key}
}

type memorySlot struct {
	backend *MemoryBackend
	key     string
}

func (m *memorySlot) Read(_ context.Context) ([]byte, error) {
	m.backend.mu.RLock()
	defer m.backend.mu.RUnlock()
	data, ok := m.backend.slots[m.key]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (m *memorySlot) Write(_ context.Context, data []byte) error {
	m.backend.mu.Lock()
	defer m.backend.mu.Unlock()
	m.backend.slots[m.key] = append([]byte(nil), data...)
	return nil
}

func (m *memorySlot) Delete(_ context.Context) error {
	m.backend.mu.Lock()
	defer m.backend.mu.Unlock()
	delete(m.backend.slots, m.key)
	return nil
}

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// FileBackend stores each snapshot as <dir>/<key>.json. Writes go through a
// temporary file and a rename so a reader never sees a torn snapshot.
type FileBackend struct {
	dir string
}

// NewFileBackend creates a file backend rooted at dir.
func NewFileBackend(dir string) *FileBackend {
	return &FileBackend{dir: dir}
}

func (b *FileBackend) Slot(key string) SnapshotStore {
	name := unsafeKeyChars.ReplaceAllString(key, "_")
	return &fileSlot{dir: b.dir, path: filepath.Join(b.dir, name+".json")}
}

type fileSlot struct {
	dir  string
	path string
}

func (f *fileSlot) Read(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return data, nil
}

func (f *fileSlot) Write(_ context.Context, data []byte) error {
	if err := os.MkdirAll(f.dir, 0o750); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	tmp, err := os.CreateTemp(f.dir, ".draft-*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("rename snapshot: %w", err)
	}
	return nil
}

func (f *fileSlot) Delete(_ context.Context) error {
	err := os.Remove(f.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}

// Redis key prefix for draft snapshots
const draftKeyPrefix = "wizard:draft:"

// RedisBackend stores snapshots as Redis strings that expire after ttl.
// Every write refreshes the expiry.
type RedisBackend struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisBackend creates a Redis backend. A zero ttl keeps keys forever.
func NewRedisBackend(client *redis.Client, ttl time.Duration) *RedisBackend {
	return &RedisBackend{client: client, ttl: ttl}
}

func (b *RedisBackend) Slot(key string) SnapshotStore {
	return &redisSlot{client: b.client, key: draftKeyPrefix + key, ttl: b.ttl}
}

type redisSlot struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func (r *redisSlot) Read(ctx context.Context) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, errors.Join(sentinel.ErrUnavailable, err)
	}
	return data, nil
}

func (r *redisSlot) Write(ctx context.Context, data []byte) error {
	if err := r.client.Set(ctx, r.key, data, r.ttl).Err(); err != nil {
		return errors.Join(sentinel.ErrUnavailable, err)
	}
	return nil
}

func (r *redisSlot) Delete(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return errors.Join(sentinel.ErrUnavailable, err)
	}
	return nil
}
