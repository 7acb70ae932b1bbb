package domain

// Frame is a single entry of a normalized backtrace.
type Frame struct {
	Function string `json:"function"`
	Module   string `json:"module,omitempty"`
	File     string `json:"file,omitempty"`
	Offset   uint64 `json:"offset,omitempty"`
}

// CrashRecord is the normalized description of one observed crash.
// Signatures only read it; nothing in this module mutates a record once built.
type CrashRecord struct {
	Platform string  `json:"platform"`
	OS       string  `json:"os"`
	Product  string  `json:"product"`
	Frames   []Frame `json:"frames"`

	Stdout    []string `json:"stdout,omitempty"`
	Stderr    []string `json:"stderr,omitempty"`
	CrashData []string `json:"crashData,omitempty"`

	CrashAddress *uint64 `json:"crashAddress,omitempty"`
	Instruction  string  `json:"instruction,omitempty"`

	// Testcase is nil when no testcase content is attached.
	Testcase *string `json:"testcase,omitempty"`
}

// Backtrace returns the function names of all frames, top frame first.
func (r *CrashRecord) Backtrace() []string {
	names := make([]string, len(r.Frames))
	for i, f := range r.Frames {
		names[i] = f.Function
	}
	return names
}

// HasTestcase reports whether testcase content is attached.
func (r *CrashRecord) HasTestcase() bool {
	return r.Testcase != nil
}
