package store

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tgienger/taskpilot/internal/storage"
)

// countingStore records every write per slot so tests can observe what the
// debounced saver actually persisted.
type countingStore struct {
	mu     sync.Mutex
	writes map[string][][]byte
}

func newCountingStore() *countingStore {
	return &countingStore{writes: make(map[string][][]byte)}
}

func (s *countingStore) Write(slot string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	s.writes[slot] = append(s.writes[slot], cp)
	return nil
}

func (s *countingStore) Read(slot string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs := s.writes[slot]
	if len(docs) == 0 {
		return nil, storage.ErrNotFound
	}
	return docs[len(docs)-1], nil
}

func (s *countingStore) Close() error { return nil }

func (s *countingStore) count(slot string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.writes[slot])
}

func (s *countingStore) last(slot string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs := s.writes[slot]
	if len(docs) == 0 {
		return nil
	}
	return docs[len(docs)-1]
}

// failingStore rejects every write so tests can drive the swallow-and-log
// save path.
type failingStore struct {
	mu       sync.Mutex
	attempts int
}

func (s *failingStore) Write(slot string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts++
	return errors.New("disk full")
}

func (s *failingStore) Read(slot string) ([]byte, error) { return nil, storage.ErrNotFound }

func (s *failingStore) Close() error { return nil }

func (s *failingStore) writeAttempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts
}

func newTestGateway(t *testing.T) (*storage.Gateway, *countingStore) {
	t.Helper()
	backend := newCountingStore()
	return storage.NewGateway(backend, zap.NewNop()), backend
}

func newFileGateway(t *testing.T) *storage.Gateway {
	t.Helper()
	backend, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	return storage.NewGateway(backend, zap.NewNop())
}
