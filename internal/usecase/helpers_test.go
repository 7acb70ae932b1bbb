package usecase

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"crashsig/internal/adapter/cache"
	"crashsig/internal/adapter/fs"
	"crashsig/internal/adapter/memstore"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newSignatureCache(t *testing.T) *cache.SignatureCache {
	t.Helper()
	c, err := cache.NewSignatureCache(64)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

// indexLibrary indexes dir into a fresh memory store and loads it back.
func indexLibrary(t *testing.T, dir string) []LibraryEntry {
	t.Helper()
	st := memstore.NewMemoryStore()
	c := newSignatureCache(t)
	uc := NewIndexUseCase(st, fs.NewWalker(nil, nil), c, discardLogger())
	if _, err := uc.Index(dir, nil); err != nil {
		t.Fatal(err)
	}
	lib, err := LoadLibrary(st, c)
	if err != nil {
		t.Fatal(err)
	}
	return lib
}

const crashFooBar = `{
  "platform": "x86_64",
  "os": "linux",
  "product": "firefox",
  "backtrace": ["foo", "baz", "bar"],
  "stderr": ["==1==ERROR: AddressSanitizer: heap-use-after-free"]
}`
