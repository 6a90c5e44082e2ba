package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/Vivek145899/GymBuddy/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// FileStore keeps all documents in a single JSON file, read fully at
// startup and rewritten fully on every mutation. The in-memory map is
// the source of truth; disk writes are best effort.
type FileStore struct {
	path  string
	docs  map[string]json.RawMessage
	mutex sync.RWMutex
}

func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("store file path cannot be empty")
	}

	fs := &FileStore{
		path: path,
		docs: make(map[string]json.RawMessage),
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return fs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read store file: %w", err)
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &fs.docs); err != nil {
			// corrupted content: fail closed to an empty store, only log
			log.Errorf("store file [%s] corrupted, starting empty: %s", path, err)
			fs.docs = make(map[string]json.RawMessage)
		}
	}

	return fs, nil
}

func (fs *FileStore) Get(ctx context.Context, key string, dst any) bool {
	_, span := tracing.GlobalTracer.Start(ctx, "store.get")
	defer span.End()
	span.SetAttributes(attribute.String("store.key", key))

	fs.mutex.RLock()
	raw, ok := fs.docs[key]
	fs.mutex.RUnlock()
	if !ok {
		return false
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		log.Errorf("store: corrupted document under key [%s]: %s", key, err)
		return false
	}
	return true
}

func (fs *FileStore) Set(ctx context.Context, key string, value any) {
	_, span := tracing.GlobalTracer.Start(ctx, "store.set")
	defer span.End()
	span.SetAttributes(attribute.String("store.key", key))

	raw, err := json.Marshal(value)
	if err != nil {
		log.Errorf("store: failed to marshal value for key [%s]: %s", key, err)
		return
	}

	fs.mutex.Lock()
	defer fs.mutex.Unlock()

	fs.docs[key] = raw
	fs.flush()
}

func (fs *FileStore) Remove(ctx context.Context, key string) {
	_, span := tracing.GlobalTracer.Start(ctx, "store.remove")
	defer span.End()
	span.SetAttributes(attribute.String("store.key", key))

	fs.mutex.Lock()
	defer fs.mutex.Unlock()

	delete(fs.docs, key)
	fs.flush()
}

// flush rewrites the whole store file. Callers hold the write lock.
// Write failures are logged and swallowed, the in-memory state stays
// authoritative for the rest of the session.
func (fs *FileStore) flush() {
	data, err := json.MarshalIndent(fs.docs, "", "  ")
	if err != nil {
		log.Errorf("store: failed to marshal documents: %s", err)
		return
	}

	tmpPath := fs.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		log.Errorf("store: failed to write [%s]: %s", tmpPath, err)
		return
	}
	if err := os.Rename(tmpPath, fs.path); err != nil {
		log.Errorf("store: failed to replace [%s]: %s", fs.path, err)
	}
}
