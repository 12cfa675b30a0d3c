package contentstore

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type memoryEntry struct {
	text  string
	token string
}

// MemoryStore keeps files in process. Tokens are random UUIDs so stale
// tokens never match by accident.
type MemoryStore struct {
	mu    sync.Mutex
	files map[string]memoryEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{files: make(map[string]memoryEntry)}
}

// Put stores text unconditionally and returns its token.
func (s *MemoryStore) Put(path, text string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	token := uuid.NewString()
	s.files[path] = memoryEntry{text: text, token: token}
	return token
}

func (s *MemoryStore) Load(ctx context.Context, path string) (string, string, error) {
	if err := ctx.Err(); err != nil {
		return "", "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.files[path]
	if !ok {
		return "", "", ErrNotFound
	}
	return entry.text, entry.token, nil
}

func (s *MemoryStore) Save(ctx context.Context, path, text, token string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.files[path]
	if ok != (token != "") || entry.token != token {
		return "", ErrConflict
	}
	next := uuid.NewString()
	s.files[path] = memoryEntry{text: text, token: next}
	return next, nil
}
