package signature

import (
	"encoding/json"
	"slices"

	"crashsig/internal/domain"
)

// Signature is a scoped conjunction of symptoms. It is immutable once parsed
// and safe for concurrent use.
type Signature struct {
	raw      string
	symptoms []Symptom

	// nil means unconstrained
	platforms        []string
	operatingSystems []string
	products         []string

	opts options
}

// String returns the definition text exactly as it was parsed.
func (s *Signature) String() string {
	return s.raw
}

// Symptoms returns the symptoms in definition order.
func (s *Signature) Symptoms() []Symptom {
	return slices.Clone(s.symptoms)
}

func (s *Signature) Platforms() []string        { return slices.Clone(s.platforms) }
func (s *Signature) OperatingSystems() []string { return slices.Clone(s.operatingSystems) }
func (s *Signature) Products() []string         { return slices.Clone(s.products) }

// Matches reports whether the crash falls in the signature's scope and
// satisfies every symptom.
func (s *Signature) Matches(rec *domain.CrashRecord) bool {
	if !s.InScope(rec) {
		return false
	}
	for _, sym := range s.symptoms {
		if !sym.Matches(rec) {
			return false
		}
	}
	return true
}

// InScope reports whether the crash passes the platform, OS and product filters.
func (s *Signature) InScope(rec *domain.CrashRecord) bool {
	if s.platforms != nil && !slices.Contains(s.platforms, rec.Platform) {
		return false
	}
	if s.operatingSystems != nil && !slices.Contains(s.operatingSystems, rec.OS) {
		return false
	}
	if s.products != nil && !slices.Contains(s.products, rec.Product) {
		return false
	}
	return true
}

// MatchRequiresTestcase reports whether matching may need testcase content.
// Callers can skip loading testcases for signatures where this is false.
func (s *Signature) MatchRequiresTestcase() bool {
	for _, sym := range s.symptoms {
		if _, ok := sym.(*TestcaseSymptom); ok {
			return true
		}
	}
	return false
}

// Distance scores how far the crash is from matching. Stack frame symptoms
// weigh one unit per frame pattern; all others weigh one unit. The result is
// only meaningful for ranking signatures against each other. Scope filters
// are not part of the score.
func (s *Signature) Distance(rec *domain.CrashRecord) (distance, total int) {
	total = len(s.symptoms)
	for _, sym := range s.symptoms {
		switch sym := sym.(type) {
		case *StackFramesSymptom:
			if d, _ := sym.Diff(rec); d != nil {
				distance += *d
			} else {
				// no stack to compare against: every frame counts as wrong
				distance += sym.Len()
			}
			total += sym.Len() - 1
		default:
			if !sym.Matches(rec) {
				distance++
			}
		}
	}
	return distance, total
}

// SymptomDiff describes how one symptom relates to a crash. Proposed is only
// set for offending stack frame symptoms that could be repaired.
type SymptomDiff struct {
	Symptom   Symptom
	Offending bool
	Proposed  Symptom
}

// Diff evaluates every symptom against the crash, in definition order.
func (s *Signature) Diff(rec *domain.CrashRecord) []SymptomDiff {
	diffs := make([]SymptomDiff, 0, len(s.symptoms))
	for _, sym := range s.symptoms {
		d := SymptomDiff{Symptom: sym}
		if !sym.Matches(rec) {
			d.Offending = true
			if sf, ok := sym.(*StackFramesSymptom); ok {
				if _, proposed := sf.Diff(rec); proposed != nil {
					d.Proposed = proposed
				}
			}
		}
		diffs = append(diffs, d)
	}
	return diffs
}

type definition struct {
	Symptoms         []json.RawMessage `json:"symptoms"`
	Platforms        []string          `json:"platforms,omitempty"`
	OperatingSystems []string          `json:"operatingSystems,omitempty"`
	Products         []string          `json:"products,omitempty"`
}

// Fit returns a new signature adjusted to match the crash. Matching symptoms
// are kept as is, offending stack frame symptoms are replaced by their
// proposal and every other offending symptom is dropped. The result goes
// through Parse, so a fit that leaves no symptoms fails with *SchemaError.
func (s *Signature) Fit(rec *domain.CrashRecord) (*Signature, error) {
	def := definition{
		Symptoms:         []json.RawMessage{},
		Platforms:        s.platforms,
		OperatingSystems: s.operatingSystems,
		Products:         s.products,
	}
	for _, d := range s.Diff(rec) {
		switch {
		case !d.Offending:
			def.Symptoms = append(def.Symptoms, d.Symptom.JSON())
		case d.Proposed != nil:
			def.Symptoms = append(def.Symptoms, d.Proposed.JSON())
		}
	}

	data, err := json.MarshalIndent(def, "", "  ")
	if err != nil {
		return nil, err
	}
	return Parse(string(data), func(o *options) { *o = s.opts })
}
