package usecase

import (
	"cmp"
	"encoding/json"
	"log/slog"
	"slices"

	"crashsig/internal/domain"
	"crashsig/internal/signature"
)

// ClosestUseCase ranks library signatures that do not match a crash by how
// little they would need to change to match it.
type ClosestUseCase struct {
	library          []LibraryEntry
	topK             int
	maxDistanceRatio float64
	logger           *slog.Logger
}

func NewClosestUseCase(library []LibraryEntry, topK int, maxDistanceRatio float64, logger *slog.Logger) *ClosestUseCase {
	return &ClosestUseCase{
		library:          library,
		topK:             topK,
		maxDistanceRatio: maxDistanceRatio,
		logger:           logger,
	}
}

// Candidate is a near-miss signature with the changes it would need.
type Candidate struct {
	Path     string       `json:"path"`
	Distance int          `json:"distance"`
	Total    int          `json:"total"`
	Ratio    float64      `json:"ratio"`
	Diffs    []DiffView   `json:"diffs"`
	Entry    LibraryEntry `json:"-"`
}

// DiffView is the serializable form of a signature.SymptomDiff.
type DiffView struct {
	Symptom   json.RawMessage `json:"symptom"`
	Offending bool            `json:"offending"`
	Proposed  json.RawMessage `json:"proposed,omitempty"`
}

// Closest returns up to topK in-scope signatures that do not match rec,
// best first. Ties are broken by absolute distance and then by path.
func (u *ClosestUseCase) Closest(rec *domain.CrashRecord) []Candidate {
	var candidates []Candidate
	for _, e := range u.library {
		if !e.Signature.InScope(rec) || e.Signature.Matches(rec) {
			continue
		}

		distance, total := e.Signature.Distance(rec)
		ratio := float64(distance) / float64(total)
		if u.maxDistanceRatio > 0 && ratio > u.maxDistanceRatio {
			continue
		}

		candidates = append(candidates, Candidate{
			Path:     e.File.Path,
			Distance: distance,
			Total:    total,
			Ratio:    ratio,
			Entry:    e,
		})
	}

	slices.SortFunc(candidates, func(a, b Candidate) int {
		if c := cmp.Compare(a.Ratio, b.Ratio); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
			return c
		}
		return cmp.Compare(a.Path, b.Path)
	})

	if u.topK > 0 && len(candidates) > u.topK {
		candidates = candidates[:u.topK]
	}

	// only the survivors get a full diff
	for i := range candidates {
		candidates[i].Diffs = diffViews(candidates[i].Entry.Signature.Diff(rec))
	}

	u.logger.Debug("ranked closest signatures", "candidates", len(candidates))
	return candidates
}

func diffViews(diffs []signature.SymptomDiff) []DiffView {
	views := make([]DiffView, len(diffs))
	for i, d := range diffs {
		views[i] = DiffView{Symptom: d.Symptom.JSON(), Offending: d.Offending}
		if d.Proposed != nil {
			views[i].Proposed = d.Proposed.JSON()
		}
	}
	return views
}
