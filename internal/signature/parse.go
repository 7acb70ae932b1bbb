package signature

import (
	"encoding/json"
	"fmt"
	"os"
)

type options struct {
	diffWindow int
}

// Option configures parsing.
type Option func(*options)

// WithDiffWindow sets how many frames beyond a stack pattern's length are
// considered when diffing it against a crash.
func WithDiffWindow(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.diffWindow = n
		}
	}
}

// Parse decodes a JSON signature definition. It returns either a complete
// signature or a *MalformedInputError / *SchemaError, never a partial result.
func Parse(text string, opts ...Option) (*Signature, error) {
	o := options{diffWindow: DefaultDiffWindow}
	for _, opt := range opts {
		opt(&o)
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &top); err != nil {
		return nil, &MalformedInputError{Err: err}
	}
	if top == nil {
		return nil, &MalformedInputError{Err: fmt.Errorf("top-level value must be an object")}
	}

	rawSymptoms, ok := top["symptoms"]
	if !ok {
		return nil, schemaErrorf("", "missing mandatory top-level key \"symptoms\"")
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(rawSymptoms, &entries); err != nil {
		return nil, schemaErrorf("symptoms", "must be an array")
	}
	if len(entries) == 0 {
		return nil, schemaErrorf("symptoms", "signature must have at least one symptom")
	}

	sig := &Signature{
		raw:      text,
		symptoms: make([]Symptom, 0, len(entries)),
		opts:     o,
	}
	for i, entry := range entries {
		s, err := parseSymptom(entry, fmt.Sprintf("symptoms[%d]", i), o)
		if err != nil {
			return nil, err
		}
		sig.symptoms = append(sig.symptoms, s)
	}

	var err error
	if sig.platforms, err = parseScope(top, "platforms"); err != nil {
		return nil, err
	}
	if sig.operatingSystems, err = parseScope(top, "operatingSystems"); err != nil {
		return nil, err
	}
	if sig.products, err = parseScope(top, "products"); err != nil {
		return nil, err
	}

	return sig, nil
}

// ParseFile reads and parses a signature file.
func ParseFile(path string, opts ...Option) (*Signature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(string(data), opts...)
}

// parseScope returns nil when key is absent, which means "no constraint".
func parseScope(top map[string]json.RawMessage, key string) ([]string, error) {
	raw, ok := top[key]
	if !ok {
		return nil, nil
	}
	var values []string
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, schemaErrorf(key, "must be an array of strings")
	}
	if len(values) == 0 {
		return nil, schemaErrorf(key, "must not be empty when present")
	}
	return values, nil
}
