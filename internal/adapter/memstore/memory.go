package memstore

import (
	"fmt"
	"sort"
	"sync"

	"crashsig/internal/domain"
	"crashsig/internal/port"
)

var _ port.LibraryStore = (*MemoryStore)(nil)

// MemoryStore is a LibraryStore that lives only for the process lifetime.
type MemoryStore struct {
	mu         sync.RWMutex
	signatures map[string]domain.SignatureFile
	stats      domain.LibraryStats
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		signatures: make(map[string]domain.SignatureFile),
	}
}

func (s *MemoryStore) PutSignature(sig domain.SignatureFile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signatures[sig.ID] = sig
	return nil
}

func (s *MemoryStore) GetSignature(id string) (domain.SignatureFile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sig, ok := s.signatures[id]
	if !ok {
		return domain.SignatureFile{}, fmt.Errorf("signature not found: %s", id)
	}
	return sig, nil
}

func (s *MemoryStore) DeleteSignature(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.signatures, id)
	return nil
}

// ListSignatures returns all signatures ordered by ID, like the bolt store.
func (s *MemoryStore) ListSignatures() ([]domain.SignatureFile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sigs := make([]domain.SignatureFile, 0, len(s.signatures))
	for _, sig := range s.signatures {
		sigs = append(sigs, sig)
	}
	sort.Slice(sigs, func(i, j int) bool { return sigs[i].ID < sigs[j].ID })
	return sigs, nil
}

func (s *MemoryStore) GetStats() (domain.LibraryStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats, nil
}

func (s *MemoryStore) UpdateStats(stats domain.LibraryStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats = stats
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
