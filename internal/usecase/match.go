package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"crashsig/internal/adapter/fs"
	"crashsig/internal/domain"
	"golang.org/x/sync/errgroup"
)

// MatchUseCase searches a signature library for the signatures a crash
// belongs to.
type MatchUseCase struct {
	library       []LibraryEntry
	needsTestcase bool
	workers       int
	logger        *slog.Logger
}

// NewMatchUseCase creates a new match use case. workers bounds the number of
// crashes evaluated at once.
func NewMatchUseCase(library []LibraryEntry, workers int, logger *slog.Logger) *MatchUseCase {
	if workers <= 0 {
		workers = 1
	}
	return &MatchUseCase{
		library:       library,
		needsTestcase: requiresTestcase(library),
		workers:       workers,
		logger:        logger,
	}
}

// MatchResult lists the library signatures matching one crash.
type MatchResult struct {
	CrashPath string   `json:"crash"`
	Matches   []string `json:"matches"`
	Error     string   `json:"error,omitempty"`
}

// Match returns the paths of every signature matching the crash, in library
// order. The testcase is only read when some signature needs it.
func (u *MatchUseCase) Match(crash *fs.Crash) ([]string, error) {
	rec, err := u.record(crash)
	if err != nil {
		return nil, err
	}

	matches := []string{}
	for _, e := range u.library {
		if e.Signature.Matches(rec) {
			matches = append(matches, e.File.Path)
		}
	}
	u.logger.Debug("matched crash", "crash", crash.Path, "signatures", len(u.library), "matches", len(matches))
	return matches, nil
}

// MatchAll matches every crash file concurrently. A crash that fails to load
// is reported in its result instead of failing the batch. Results keep the
// order of paths.
func (u *MatchUseCase) MatchAll(ctx context.Context, paths []string, progress ProgressFunc) ([]MatchResult, error) {
	results := make([]MatchResult, len(paths))

	var mu sync.Mutex
	done := 0

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(u.workers)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			results[i] = u.matchPath(path)

			mu.Lock()
			done++
			if progress != nil {
				progress(done, len(paths), path)
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (u *MatchUseCase) matchPath(path string) MatchResult {
	res := MatchResult{CrashPath: path}

	crash, err := fs.LoadCrash(path)
	if err != nil {
		u.logger.Warn("failed to load crash", "path", path, "error", err)
		res.Error = err.Error()
		return res
	}

	matches, err := u.Match(crash)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Matches = matches
	return res
}

func (u *MatchUseCase) record(crash *fs.Crash) (*domain.CrashRecord, error) {
	if !u.needsTestcase {
		return crash.Record, nil
	}
	rec, err := crash.WithTestcase()
	if err != nil {
		return nil, fmt.Errorf("crash %s: %w", crash.Path, err)
	}
	return rec, nil
}
