package store

import (
	"path/filepath"
	"testing"
	"time"

	"crashsig/config"
	"crashsig/internal/domain"
	"github.com/google/go-cmp/cmp"
)

func openTestStore(t *testing.T) *BoltStore {
	t.Helper()
	st, err := NewBoltStore(filepath.Join(t.TempDir(), "library.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestBoltStore_SignatureRoundTrip(t *testing.T) {
	st := openTestStore(t)

	sig := domain.SignatureFile{
		ID:               "abc",
		Path:             "/lib/js/gc.signature",
		ModTime:          time.Unix(0, 1700000000123456789),
		Raw:              `{"symptoms": [{"type": "testcase", "value": "gc"}]}`,
		SymptomCount:     1,
		RequiresTestcase: true,
	}
	if err := st.PutSignature(sig); err != nil {
		t.Fatal(err)
	}

	got, err := st.GetSignature("abc")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(sig, got); diff != "" {
		t.Errorf("signature mismatch (-want +got):\n%s", diff)
	}

	if _, err := st.GetSignature("missing"); err == nil {
		t.Error("expected error for missing signature")
	}

	if err := st.DeleteSignature("abc"); err != nil {
		t.Fatal(err)
	}
	sigs, err := st.ListSignatures()
	if err != nil {
		t.Fatal(err)
	}
	if len(sigs) != 0 {
		t.Errorf("expected empty library after delete, got %d", len(sigs))
	}
}

func TestBoltStore_ListSignaturesOrdered(t *testing.T) {
	st := openTestStore(t)
	for _, id := range []string{"c", "a", "b"} {
		if err := st.PutSignature(domain.SignatureFile{ID: id, Path: id + ".signature", Raw: "{}"}); err != nil {
			t.Fatal(err)
		}
	}

	sigs, err := st.ListSignatures()
	if err != nil {
		t.Fatal(err)
	}
	var ids []string
	for _, s := range sigs {
		ids = append(ids, s.ID)
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, ids); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestBoltStore_Stats(t *testing.T) {
	st := openTestStore(t)

	empty, err := st.GetStats()
	if err != nil {
		t.Fatal(err)
	}
	if empty.TotalSignatures != 0 {
		t.Errorf("expected zero stats, got %+v", empty)
	}

	want := domain.LibraryStats{TotalSignatures: 10, RequireTestcase: 2, InvalidSkipped: 1}
	if err := st.UpdateStats(want); err != nil {
		t.Fatal(err)
	}
	got, err := st.GetStats()
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestBoltStore_Migrations(t *testing.T) {
	st := openTestStore(t)
	cfg := config.DefaultConfig()

	result, err := st.CheckMigration(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !result.NeedsMigration || result.NeedsRebuild {
		t.Errorf("fresh store: expected migration only, got %+v", result)
	}

	if err := st.Migrate(cfg); err != nil {
		t.Fatal(err)
	}
	result, err = st.CheckMigration(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if result.NeedsMigration || result.NeedsRebuild {
		t.Errorf("migrated store: expected nothing to do, got %+v", result)
	}

	cfg.Library.Includes = []string{"**/*.json"}
	result, err = st.CheckMigration(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !result.NeedsRebuild {
		t.Error("expected rebuild after include patterns changed")
	}
}

func TestBoltStore_Clear(t *testing.T) {
	st := openTestStore(t)
	cfg := config.DefaultConfig()
	if err := st.Migrate(cfg); err != nil {
		t.Fatal(err)
	}
	if err := st.PutSignature(domain.SignatureFile{ID: "a", Raw: "{}"}); err != nil {
		t.Fatal(err)
	}
	if err := st.UpdateStats(domain.LibraryStats{TotalSignatures: 1}); err != nil {
		t.Fatal(err)
	}

	if err := st.Clear(); err != nil {
		t.Fatal(err)
	}

	sigs, _ := st.ListSignatures()
	if len(sigs) != 0 {
		t.Errorf("expected no signatures after clear, got %d", len(sigs))
	}
	info, err := st.GetSchemaInfo()
	if err != nil {
		t.Fatal(err)
	}
	if info.Version != CurrentSchemaVersion {
		t.Errorf("expected schema info to survive clear, got %+v", info)
	}
}
