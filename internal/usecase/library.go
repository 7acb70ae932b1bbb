package usecase

import (
	"fmt"

	"crashsig/internal/adapter/cache"
	"crashsig/internal/domain"
	"crashsig/internal/port"
	"crashsig/internal/signature"
)

// LibraryEntry is an indexed signature together with its parsed form.
type LibraryEntry struct {
	File      domain.SignatureFile
	Signature *signature.Signature
}

// LoadLibrary parses every signature in the store. The index only holds
// definitions that parsed when they were indexed, so a failure here means the
// index is corrupt.
func LoadLibrary(store port.LibraryStore, c *cache.SignatureCache) ([]LibraryEntry, error) {
	files, err := store.ListSignatures()
	if err != nil {
		return nil, fmt.Errorf("failed to list signatures: %w", err)
	}

	entries := make([]LibraryEntry, 0, len(files))
	for _, f := range files {
		sig, err := c.Parse(f.Raw)
		if err != nil {
			return nil, fmt.Errorf("indexed signature %s no longer parses: %w", f.Path, err)
		}
		entries = append(entries, LibraryEntry{File: f, Signature: sig})
	}
	return entries, nil
}

func requiresTestcase(lib []LibraryEntry) bool {
	for _, e := range lib {
		if e.Signature.MatchRequiresTestcase() {
			return true
		}
	}
	return false
}
