package usecase

import (
	"testing"

	"crashsig/internal/adapter/fs"
	"github.com/google/go-cmp/cmp"
)

func TestClosestRanking(t *testing.T) {
	libDir := t.TempDir()
	writeFile(t, libDir, "match.signature", `{"symptoms":[{"type":"stackFrames","functionNames":["foo","baz"]}]}`)
	near := writeFile(t, libDir, "near.signature", `{"symptoms":[{"type":"stackFrames","functionNames":["foo","bar"]}]}`)
	far := writeFile(t, libDir, "far.signature", `{"symptoms":[{"type":"stackFrames","functionNames":["a","b","c"]}]}`)
	writeFile(t, libDir, "scoped.signature", `{"symptoms":[{"type":"stackFrames","functionNames":["foo","bar"]}],"products":["thunderbird"]}`)

	crash, err := fs.LoadCrash(writeFile(t, t.TempDir(), "crash.json", crashFooBar))
	if err != nil {
		t.Fatal(err)
	}

	uc := NewClosestUseCase(indexLibrary(t, libDir), 5, 0, discardLogger())
	candidates := uc.Closest(crash.Record)

	var paths []string
	for _, c := range candidates {
		paths = append(paths, c.Path)
	}
	if diff := cmp.Diff([]string{near, far}, paths); diff != "" {
		t.Fatalf("ranking mismatch (-want +got):\n%s", diff)
	}

	best := candidates[0]
	if best.Distance != 1 || best.Total != 2 {
		t.Errorf("expected distance 1/2, got %d/%d", best.Distance, best.Total)
	}
	if len(best.Diffs) != 1 || !best.Diffs[0].Offending || best.Diffs[0].Proposed == nil {
		t.Errorf("expected an offending diff with a proposal, got %+v", best.Diffs)
	}
}

func TestClosestTopKAndRatio(t *testing.T) {
	libDir := t.TempDir()
	writeFile(t, libDir, "a.signature", `{"symptoms":[{"type":"stackFrames","functionNames":["foo","bar"]}]}`)
	writeFile(t, libDir, "b.signature", `{"symptoms":[{"type":"stackFrames","functionNames":["foo","qux"]}]}`)
	writeFile(t, libDir, "c.signature", `{"symptoms":[{"type":"stackFrames","functionNames":["x","y","z"]}]}`)

	crash, err := fs.LoadCrash(writeFile(t, t.TempDir(), "crash.json", crashFooBar))
	if err != nil {
		t.Fatal(err)
	}
	lib := indexLibrary(t, libDir)

	if got := NewClosestUseCase(lib, 1, 0, discardLogger()).Closest(crash.Record); len(got) != 1 {
		t.Errorf("expected topK to cap results at 1, got %d", len(got))
	}

	got := NewClosestUseCase(lib, 0, 0.5, discardLogger()).Closest(crash.Record)
	for _, c := range got {
		if c.Ratio > 0.5 {
			t.Errorf("candidate %s exceeds max ratio: %f", c.Path, c.Ratio)
		}
	}
	if len(got) != 2 {
		t.Errorf("expected 2 candidates within ratio, got %d", len(got))
	}
}
