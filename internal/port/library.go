package port

import "crashsig/internal/domain"

// LibraryStore persists the indexed signature library.
type LibraryStore interface {
	PutSignature(sig domain.SignatureFile) error

	GetSignature(id string) (domain.SignatureFile, error)

	DeleteSignature(id string) error

	ListSignatures() ([]domain.SignatureFile, error)

	GetStats() (domain.LibraryStats, error)

	UpdateStats(stats domain.LibraryStats) error

	Close() error
}
