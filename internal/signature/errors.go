package signature

import "fmt"

// MalformedInputError is returned when a signature definition is not a JSON object.
type MalformedInputError struct {
	Err error
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed signature: %v", e.Err)
}

func (e *MalformedInputError) Unwrap() error {
	return e.Err
}

// SchemaError is returned when a definition is valid JSON but not a valid signature.
// Path locates the offending element, e.g. "symptoms[1].functionNames".
type SchemaError struct {
	Path string
	Msg  string
}

func (e *SchemaError) Error() string {
	if e.Path == "" {
		return "invalid signature: " + e.Msg
	}
	return fmt.Sprintf("invalid signature: %s: %s", e.Path, e.Msg)
}

func schemaErrorf(path, format string, args ...any) *SchemaError {
	return &SchemaError{Path: path, Msg: fmt.Sprintf(format, args...)}
}
