package usecase

import (
	"errors"
	"testing"

	"crashsig/internal/adapter/fs"
	"crashsig/internal/signature"
)

func TestFitUseCase(t *testing.T) {
	sigPath := writeFile(t, t.TempDir(), "a.signature", `{
  "symptoms": [
    {"type": "stackFrames", "functionNames": ["foo", "bar"]},
    {"type": "crashAddress", "address": "< 0x100"}
  ],
  "platforms": ["x86_64"]
}`)
	crash, err := fs.LoadCrash(writeFile(t, t.TempDir(), "crash.json", crashFooBar))
	if err != nil {
		t.Fatal(err)
	}

	uc := NewFitUseCase(discardLogger())
	result, err := uc.Fit(sigPath, crash)
	if err != nil {
		t.Fatal(err)
	}

	if result.Original.Matches(crash.Record) {
		t.Fatal("expected the original signature not to match")
	}
	if !result.Fitted.Matches(crash.Record) {
		t.Errorf("expected the fitted signature to match, got:\n%s", result.Fitted)
	}
	if got := len(result.Fitted.Symptoms()); got != 1 {
		t.Errorf("expected crashAddress to be dropped, got %d symptoms", got)
	}
	if len(result.Diffs) != 2 {
		t.Errorf("expected 2 diffs, got %d", len(result.Diffs))
	}
}

func TestFitUseCaseNothingLeft(t *testing.T) {
	sigPath := writeFile(t, t.TempDir(), "a.signature", `{"symptoms":[{"type":"stackSize","size":"> 10"}]}`)
	crash, err := fs.LoadCrash(writeFile(t, t.TempDir(), "crash.json", crashFooBar))
	if err != nil {
		t.Fatal(err)
	}

	_, err = NewFitUseCase(discardLogger()).Fit(sigPath, crash)
	var schemaErr *signature.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Errorf("expected *SchemaError, got %v", err)
	}
}

func TestFitUseCaseMissingSignature(t *testing.T) {
	crash, err := fs.LoadCrash(writeFile(t, t.TempDir(), "crash.json", crashFooBar))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewFitUseCase(discardLogger()).Fit("/nonexistent.signature", crash); err == nil {
		t.Error("expected an error for a missing signature file")
	}
}
