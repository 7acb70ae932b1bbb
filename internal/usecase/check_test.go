package usecase

import (
	"testing"

	"crashsig/internal/adapter/fs"
)

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.signature", `{"symptoms":[{"type":"stackFrames","functionNames":["foo"]}]}`)
	malformed := writeFile(t, dir, "malformed.signature", `{"symptoms": [`)
	schema := writeFile(t, dir, "schema.signature", `{"symptoms":[{"type":"stackSize"}]}`)

	uc := NewCheckUseCase(fs.NewWalker(nil, nil), discardLogger())
	result, err := uc.Check(dir)
	if err != nil {
		t.Fatal(err)
	}

	if result.Checked != 3 {
		t.Errorf("expected 3 files checked, got %d", result.Checked)
	}

	kinds := make(map[string]string)
	for _, p := range result.Problems {
		kinds[p.Path] = p.Kind
	}
	if len(kinds) != 2 {
		t.Fatalf("expected 2 problems, got %+v", result.Problems)
	}
	if kinds[malformed] != "malformed" {
		t.Errorf("expected malformed, got %q", kinds[malformed])
	}
	if kinds[schema] != "schema" {
		t.Errorf("expected schema, got %q", kinds[schema])
	}
}
