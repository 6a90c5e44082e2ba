package store

import (
	"context"
	"encoding/json"
	"sync"

	log "github.com/sirupsen/logrus"
)

// TestStore is the in-memory Store double used in unit and dev testing.
type TestStore struct {
	docs  map[string]json.RawMessage
	mutex sync.RWMutex
}

func NewTestStore() *TestStore {
	return &TestStore{
		docs: make(map[string]json.RawMessage),
	}
}

func (ts *TestStore) Get(_ context.Context, key string, dst any) bool {
	ts.mutex.RLock()
	raw, ok := ts.docs[key]
	ts.mutex.RUnlock()
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		log.Errorf("test store: corrupted document under key [%s]: %s", key, err)
		return false
	}
	return true
}

func (ts *TestStore) Set(_ context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		log.Errorf("test store: failed to marshal value for key [%s]: %s", key, err)
		return
	}
	ts.mutex.Lock()
	defer ts.mutex.Unlock()
	ts.docs[key] = raw
}

func (ts *TestStore) Remove(_ context.Context, key string) {
	ts.mutex.Lock()
	defer ts.mutex.Unlock()
	delete(ts.docs, key)
}

// Corrupt stores raw non-JSON content under key, to exercise the
// fail-closed read path.
func (ts *TestStore) Corrupt(key string) {
	ts.mutex.Lock()
	defer ts.mutex.Unlock()
	ts.docs[key] = json.RawMessage("{not-valid-json")
}
