package session

import (
	"context"
	"os"
	"sync"

	"github.com/go-redis/redis/v8"
)

// SnapshotStore persists the serialized session blob. Load returns nil bytes
// when no snapshot exists; a corrupt blob is the controller's problem, not
// the store's.
type SnapshotStore interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, raw []byte) error
	Clear(ctx context.Context) error
}

// MemoryStore keeps the snapshot in process memory. Used in tests and as the
// default when no durable backend is configured.
type MemoryStore struct {
	mu  sync.Mutex
	raw []byte
}

// NewMemoryStore constructs an empty in-memory snapshot store.
func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

// Load implements SnapshotStore.
func (m *MemoryStore) Load(context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.raw == nil {
		return nil, nil
	}
	out := make([]byte, len(m.raw))
	copy(out, m.raw)
	return out, nil
}

// Save implements SnapshotStore.
func (m *MemoryStore) Save(_ context.Context, raw []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.raw = make([]byte, len(raw))
	copy(m.raw, raw)
	return nil
}

// Clear implements SnapshotStore.
func (m *MemoryStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.raw = nil
	return nil
}

// FileStore persists the snapshot as a single JSON file on disk.
type FileStore struct {
	path string
}

// NewFileStore constructs a file-backed snapshot store at path.
func NewFileStore(path string) *FileStore { return &FileStore{path: path} }

// Load implements SnapshotStore.
func (f *FileStore) Load(context.Context) ([]byte, error) {
	raw, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// Save implements SnapshotStore.
func (f *FileStore) Save(_ context.Context, raw []byte) error {
	return os.WriteFile(f.path, raw, 0o600)
}

// Clear implements SnapshotStore.
func (f *FileStore) Clear(context.Context) error {
	err := os.Remove(f.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

const redisSnapshotKey = "studio:session:snapshot"

// RedisStore persists the snapshot in redis so sessions survive restarts of
// a single server process.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore constructs a redis-backed snapshot store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, key: redisSnapshotKey}
}

// Load implements SnapshotStore.
func (r *RedisStore) Load(ctx context.Context) ([]byte, error) {
	raw, err := r.client.Get(ctx, r.key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// Save implements SnapshotStore.
func (r *RedisStore) Save(ctx context.Context, raw []byte) error {
	return r.client.Set(ctx, r.key, raw, 0).Err()
}

// Clear implements SnapshotStore.
func (r *RedisStore) Clear(ctx context.Context) error {
	return r.client.Del(ctx, r.key).Err()
}

var (
	_ SnapshotStore = (*MemoryStore)(nil)
	_ SnapshotStore = (*FileStore)(nil)
	_ SnapshotStore = (*RedisStore)(nil)
)
