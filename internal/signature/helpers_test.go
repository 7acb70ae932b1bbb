package signature

import (
	"os"
	"path/filepath"
	"testing"

	"crashsig/internal/domain"
)

func mustParse(t *testing.T, text string, opts ...Option) *Signature {
	t.Helper()
	sig, err := Parse(text, opts...)
	if err != nil {
		t.Fatalf("Parse(%s): %v", text, err)
	}
	return sig
}

func crashWithFrames(names ...string) *domain.CrashRecord {
	rec := &domain.CrashRecord{
		Platform: "x86_64",
		OS:       "linux",
		Product:  "firefox",
	}
	for _, n := range names {
		rec.Frames = append(rec.Frames, domain.Frame{Function: n})
	}
	return rec
}

func writeSignatureFile(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.signature")
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func stackNames(s *StackFramesSymptom) []string {
	var names []string
	for _, m := range s.FunctionNames() {
		names = append(names, m.String())
	}
	return names
}
