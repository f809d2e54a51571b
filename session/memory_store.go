package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps the credential in process memory. Nothing survives a
// restart; it exists for tests and throwaway clients.
type MemoryStore struct {
	mu   sync.RWMutex
	data []byte
	now  func() time.Time
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

func (s *MemoryStore) Load(context.Context) (*Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.data) == 0 {
		return nil, ErrNotFound
	}
	cred, _, err := decodeStored(s.data)
	return cred, err
}

func (s *MemoryStore) Save(_ context.Context, cred *Credential) error {
	stamped := stamp(cred, s.now)
	data, err := Encode(stamped)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.data = data
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Clear(context.Context) error {
	s.mu.Lock()
	s.data = nil
	s.mu.Unlock()
	return nil
}

func stamp(cred *Credential, now func() time.Time) *Credential {
	if cred == nil {
		return nil
	}
	out := *cred
	out.SchemaVersion = CurrentSchemaVersion
	if out.SavedAt == 0 {
		out.SavedAt = now().Unix()
	}
	return &out
}
