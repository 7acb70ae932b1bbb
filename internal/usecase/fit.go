package usecase

import (
	"fmt"
	"log/slog"

	"crashsig/internal/adapter/fs"
	"crashsig/internal/signature"
)

// FitUseCase adjusts a signature so that it matches a given crash.
type FitUseCase struct {
	opts   []signature.Option
	logger *slog.Logger
}

func NewFitUseCase(logger *slog.Logger, opts ...signature.Option) *FitUseCase {
	return &FitUseCase{opts: opts, logger: logger}
}

// FitResult holds the fitted signature and the per-symptom diff it was built
// from.
type FitResult struct {
	Original *signature.Signature
	Fitted   *signature.Signature
	Diffs    []DiffView
}

// Fit loads the signature file and the crash and fits one to the other.
func (u *FitUseCase) Fit(signaturePath string, crash *fs.Crash) (*FitResult, error) {
	sig, err := signature.ParseFile(signaturePath, u.opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load signature %s: %w", signaturePath, err)
	}

	rec := crash.Record
	if sig.MatchRequiresTestcase() {
		if rec, err = crash.WithTestcase(); err != nil {
			return nil, err
		}
	}

	diffs := sig.Diff(rec)
	fitted, err := sig.Fit(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to fit %s: %w", signaturePath, err)
	}

	u.logger.Debug("fitted signature", "signature", signaturePath, "crash", crash.Path,
		"before", len(sig.Symptoms()), "after", len(fitted.Symptoms()))

	return &FitResult{
		Original: sig,
		Fitted:   fitted,
		Diffs:    diffViews(diffs),
	}, nil
}
