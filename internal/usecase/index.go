package usecase

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"crashsig/internal/adapter/cache"
	"crashsig/internal/adapter/fs"
	"crashsig/internal/domain"
	"crashsig/internal/port"
)

// IndexUseCase keeps the library index in sync with a directory of signature files.
type IndexUseCase struct {
	store  port.LibraryStore
	walker port.FileWalker
	cache  *cache.SignatureCache
	logger *slog.Logger
}

// NewIndexUseCase creates a new index use case.
func NewIndexUseCase(
	store port.LibraryStore,
	walker port.FileWalker,
	cache *cache.SignatureCache,
	logger *slog.Logger,
) *IndexUseCase {
	return &IndexUseCase{
		store:  store,
		walker: walker,
		cache:  cache,
		logger: logger,
	}
}

// IndexResult contains the results of an indexing operation.
type IndexResult struct {
	FilesIndexed int
	FilesSkipped int
	FilesDeleted int
	FilesInvalid int
	Errors       []string
}

// ProgressFunc is called after each file is processed.
type ProgressFunc func(processed, total int, current string)

// Index indexes the signature files under root. Files that fail to parse are
// reported in the result and left out of the index.
func (u *IndexUseCase) Index(root string, progress ProgressFunc) (*IndexResult, error) {
	result := &IndexResult{}

	files, err := u.walker.Walk(root)
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	existingSigs, err := u.store.ListSignatures()
	if err != nil {
		return nil, fmt.Errorf("failed to list existing signatures: %w", err)
	}

	existingMap := make(map[string]domain.SignatureFile)
	for _, sig := range existingSigs {
		existingMap[sig.Path] = sig
	}

	seenPaths := make(map[string]bool)
	requireTestcase := 0

	for i, file := range files {
		seenPaths[file.Path] = true

		if existing, ok := existingMap[file.Path]; ok && existing.ModTime.UnixNano() >= file.ModTime {
			result.FilesSkipped++
			if existing.RequiresTestcase {
				requireTestcase++
			}
			u.report(progress, i+1, len(files), file.Path)
			continue
		}

		sig, err := u.indexFile(file)
		if err != nil {
			result.FilesInvalid++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", file.Path, err))
			u.logger.Warn("skipping signature", "path", file.Path, "error", err)
			// a stale entry must not outlive a broken edit
			if existing, ok := existingMap[file.Path]; ok {
				if err := u.store.DeleteSignature(existing.ID); err != nil {
					result.Errors = append(result.Errors, fmt.Sprintf("failed to delete %s: %v", file.Path, err))
				}
			}
			u.report(progress, i+1, len(files), file.Path)
			continue
		}

		if sig.RequiresTestcase {
			requireTestcase++
		}
		result.FilesIndexed++
		u.logger.Debug("indexed signature", "path", file.Path, "symptoms", sig.SymptomCount)
		u.report(progress, i+1, len(files), file.Path)
	}

	for path, sig := range existingMap {
		if seenPaths[path] {
			continue
		}
		if err := u.store.DeleteSignature(sig.ID); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to delete %s: %v", path, err))
			continue
		}
		result.FilesDeleted++
	}

	stats := domain.LibraryStats{
		TotalSignatures: result.FilesIndexed + result.FilesSkipped,
		RequireTestcase: requireTestcase,
		InvalidSkipped:  result.FilesInvalid,
	}
	if err := u.store.UpdateStats(stats); err != nil {
		return nil, fmt.Errorf("failed to update stats: %w", err)
	}

	return result, nil
}

func (u *IndexUseCase) indexFile(file port.FileInfo) (domain.SignatureFile, error) {
	raw, err := fs.ReadFile(file.Path)
	if err != nil {
		return domain.SignatureFile{}, fmt.Errorf("failed to read file: %w", err)
	}

	parsed, err := u.cache.Parse(raw)
	if err != nil {
		return domain.SignatureFile{}, err
	}

	sig := domain.SignatureFile{
		ID:               generateSignatureID(file.Path),
		Path:             file.Path,
		ModTime:          time.Unix(0, file.ModTime),
		Raw:              raw,
		SymptomCount:     len(parsed.Symptoms()),
		RequiresTestcase: parsed.MatchRequiresTestcase(),
	}
	if err := u.store.PutSignature(sig); err != nil {
		return domain.SignatureFile{}, fmt.Errorf("failed to store signature: %w", err)
	}
	return sig, nil
}

func (u *IndexUseCase) report(progress ProgressFunc, processed, total int, path string) {
	if progress != nil {
		progress(processed, total, path)
	}
}

// generateSignatureID creates a stable ID for a signature based on its path.
func generateSignatureID(path string) string {
	hash := sha256.Sum256([]byte(path))
	return hex.EncodeToString(hash[:8])
}
