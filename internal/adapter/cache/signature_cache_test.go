package cache

import (
	"errors"
	"sync"
	"testing"

	"crashsig/internal/signature"
)

const testSig = `{"symptoms": [{"type": "stackFrames", "functionNames": ["foo", "bar"]}]}`

func TestSignatureCache_ParsesOnce(t *testing.T) {
	c, err := NewSignatureCache(10)
	if err != nil {
		t.Fatal(err)
	}

	first, err := c.Parse(testSig)
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.Parse(testSig)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("expected the cached instance on the second parse")
	}

	hits, misses := c.Stats()
	if hits != 1 || misses != 1 {
		t.Errorf("expected 1 hit and 1 miss, got %d and %d", hits, misses)
	}
}

func TestSignatureCache_ErrorsNotCached(t *testing.T) {
	c, err := NewSignatureCache(10)
	if err != nil {
		t.Fatal(err)
	}

	_, err = c.Parse(`{"symptoms": []}`)
	var schemaErr *signature.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	if c.Size() != 0 {
		t.Errorf("expected empty cache, got %d entries", c.Size())
	}
}

func TestSignatureCache_Eviction(t *testing.T) {
	c, err := NewSignatureCache(1)
	if err != nil {
		t.Fatal(err)
	}
	other := `{"symptoms": [{"type": "output", "value": "boom"}]}`

	if _, err := c.Parse(testSig); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Parse(other); err != nil {
		t.Fatal(err)
	}
	if c.Size() != 1 {
		t.Errorf("expected size 1, got %d", c.Size())
	}

	c.Invalidate()
	if c.Size() != 0 {
		t.Errorf("expected empty cache after invalidate, got %d", c.Size())
	}
}

func TestSignatureCache_Concurrent(t *testing.T) {
	c, err := NewSignatureCache(10)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Parse(testSig); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	hits, misses := c.Stats()
	if hits+misses != 16 {
		t.Errorf("expected 16 lookups, got %d", hits+misses)
	}
}
