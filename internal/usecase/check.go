package usecase

import (
	"errors"
	"fmt"
	"log/slog"

	"crashsig/internal/adapter/fs"
	"crashsig/internal/port"
	"crashsig/internal/signature"
)

// CheckUseCase validates every signature file of a library without indexing it.
type CheckUseCase struct {
	walker port.FileWalker
	opts   []signature.Option
	logger *slog.Logger
}

func NewCheckUseCase(walker port.FileWalker, logger *slog.Logger, opts ...signature.Option) *CheckUseCase {
	return &CheckUseCase{walker: walker, opts: opts, logger: logger}
}

// Problem is a signature file that failed to parse.
type Problem struct {
	Path  string `json:"path"`
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

// CheckResult summarizes a library check.
type CheckResult struct {
	Checked  int       `json:"checked"`
	Problems []Problem `json:"problems"`
}

// Check parses every signature under root.
func (u *CheckUseCase) Check(root string) (*CheckResult, error) {
	files, err := u.walker.Walk(root)
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	result := &CheckResult{Problems: []Problem{}}
	for _, file := range files {
		result.Checked++

		raw, err := fs.ReadFile(file.Path)
		if err != nil {
			result.Problems = append(result.Problems, Problem{Path: file.Path, Kind: "io", Error: err.Error()})
			continue
		}
		if _, err := signature.Parse(raw, u.opts...); err != nil {
			result.Problems = append(result.Problems, Problem{Path: file.Path, Kind: problemKind(err), Error: err.Error()})
			u.logger.Debug("invalid signature", "path", file.Path, "error", err)
		}
	}
	return result, nil
}

func problemKind(err error) string {
	var malformed *signature.MalformedInputError
	var schema *signature.SchemaError
	switch {
	case errors.As(err, &malformed):
		return "malformed"
	case errors.As(err, &schema):
		return "schema"
	default:
		return "unknown"
	}
}
