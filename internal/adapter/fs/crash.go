package fs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"crashsig/internal/domain"
)

// crashFile is the on-disk form of a normalized crash. Frames may be given
// either as objects or, for convenience, as a plain "backtrace" of names.
type crashFile struct {
	Platform     string          `json:"platform"`
	OS           string          `json:"os"`
	Product      string          `json:"product"`
	Frames       []domain.Frame  `json:"frames"`
	Backtrace    []string        `json:"backtrace"`
	Stdout       []string        `json:"stdout"`
	Stderr       []string        `json:"stderr"`
	CrashData    []string        `json:"crashData"`
	CrashAddress json.RawMessage `json:"crashAddress"`
	Instruction  string          `json:"instruction"`
	Testcase     *string         `json:"testcase"`
	TestcasePath string          `json:"testcasePath"`
}

// Crash is a loaded crash record whose testcase may still be on disk.
type Crash struct {
	Path         string
	Record       *domain.CrashRecord
	TestcasePath string
}

// LoadCrash reads a crash file. A testcase referenced by path is not read
// until WithTestcase is called.
func LoadCrash(path string) (*Crash, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cf crashFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("invalid crash file %s: %w", path, err)
	}

	rec := &domain.CrashRecord{
		Platform:    cf.Platform,
		OS:          cf.OS,
		Product:     cf.Product,
		Frames:      cf.Frames,
		Stdout:      cf.Stdout,
		Stderr:      cf.Stderr,
		CrashData:   cf.CrashData,
		Instruction: cf.Instruction,
		Testcase:    cf.Testcase,
	}
	if len(rec.Frames) == 0 {
		for _, name := range cf.Backtrace {
			rec.Frames = append(rec.Frames, domain.Frame{Function: name})
		}
	}
	rec.CrashAddress, err = parseAddress(cf.CrashAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid crash file %s: %w", path, err)
	}

	crash := &Crash{Path: path, Record: rec}
	if cf.TestcasePath != "" && rec.Testcase == nil {
		crash.TestcasePath = cf.TestcasePath
		if !filepath.IsAbs(crash.TestcasePath) {
			crash.TestcasePath = filepath.Join(filepath.Dir(path), crash.TestcasePath)
		}
	}
	return crash, nil
}

// WithTestcase returns the record with its testcase attached, reading it from
// disk if needed. The loaded record is not modified.
func (c *Crash) WithTestcase() (*domain.CrashRecord, error) {
	if c.Record.Testcase != nil || c.TestcasePath == "" {
		return c.Record, nil
	}
	content, err := ReadFile(c.TestcasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read testcase: %w", err)
	}
	rec := *c.Record
	rec.Testcase = &content
	return &rec, nil
}

// parseAddress accepts a JSON number or a string such as "0x7fff1234".
func parseAddress(raw json.RawMessage) (*uint64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	var s string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
	} else {
		s = string(raw)
	}
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid crash address %q", s)
	}
	return &v, nil
}
