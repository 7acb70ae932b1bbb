package signature

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"unicode"

	"crashsig/internal/domain"
)

// Kind is the "type" discriminator of a symptom definition.
type Kind string

const (
	KindStackFrames  Kind = "stackFrames"
	KindStackFrame   Kind = "stackFrame"
	KindStackSize    Kind = "stackSize"
	KindOutput       Kind = "output"
	KindCrashAddress Kind = "crashAddress"
	KindInstruction  Kind = "instruction"
	KindTestcase     Kind = "testcase"
)

// Symptom is one predicate of a signature. The set of implementations is closed:
// every variant lives in this package.
type Symptom interface {
	Kind() Kind
	Matches(rec *domain.CrashRecord) bool
	// JSON returns the definition of the symptom as it appears in signature text.
	JSON() json.RawMessage
	symptom()
}

type base struct {
	raw json.RawMessage
}

func (b base) JSON() json.RawMessage { return bytes.Clone(b.raw) }
func (base) symptom()                 {}

// StackFramesSymptom requires the top of the stack to follow a sequence of
// function name patterns. "?" stands for exactly one frame and "???" for any
// number of frames, including none.
type StackFramesSymptom struct {
	base
	patterns []framePattern
	window   int
}

type frameKind int

const (
	frameLiteral frameKind = iota
	frameAny
	frameSkip
)

type framePattern struct {
	match StringMatch
	kind  frameKind
}

func newFramePattern(m StringMatch) framePattern {
	p := framePattern{match: m}
	if !m.IsRegexp() {
		switch m.value {
		case "?":
			p.kind = frameAny
		case "???":
			p.kind = frameSkip
		}
	}
	return p
}

// matchesFrame reports whether the pattern accepts a single frame.
func (p framePattern) matchesFrame(name string) bool {
	return p.kind != frameLiteral || p.match.Matches(name)
}

func (p framePattern) isWildcard() bool {
	return p.kind != frameLiteral
}

func (*StackFramesSymptom) Kind() Kind { return KindStackFrames }

func (s *StackFramesSymptom) Matches(rec *domain.CrashRecord) bool {
	return matchFrames(s.patterns, rec.Backtrace())
}

// FunctionNames returns the frame patterns in order.
func (s *StackFramesSymptom) FunctionNames() []StringMatch {
	names := make([]StringMatch, len(s.patterns))
	for i, p := range s.patterns {
		names[i] = p.match
	}
	return names
}

// Len returns the number of frame patterns.
func (s *StackFramesSymptom) Len() int {
	return len(s.patterns)
}

func matchFrames(pats []framePattern, stack []string) bool {
	for len(pats) > 0 {
		p := pats[0]
		if p.kind == frameSkip {
			for k := 0; k <= len(stack); k++ {
				if matchFrames(pats[1:], stack[k:]) {
					return true
				}
			}
			return false
		}
		if len(stack) == 0 || !p.matchesFrame(stack[0]) {
			return false
		}
		pats, stack = pats[1:], stack[1:]
	}
	return true
}

func newStackFramesSymptom(patterns []framePattern, window int) *StackFramesSymptom {
	names := make([]json.RawMessage, len(patterns))
	for i, p := range patterns {
		names[i], _ = p.match.MarshalJSON()
	}
	raw, _ := json.Marshal(struct {
		Type          Kind              `json:"type"`
		FunctionNames []json.RawMessage `json:"functionNames"`
	}{KindStackFrames, names})
	return &StackFramesSymptom{base: base{raw: raw}, patterns: patterns, window: window}
}

// StackFrameSymptom requires a function at a frame index accepted by FrameNumber.
// Without an explicit frameNumber only the top frame is considered.
type StackFrameSymptom struct {
	base
	functionName StringMatch
	frameNumber  NumberMatch
}

func (*StackFrameSymptom) Kind() Kind { return KindStackFrame }

func (s *StackFrameSymptom) FunctionName() StringMatch { return s.functionName }
func (s *StackFrameSymptom) FrameNumber() NumberMatch  { return s.frameNumber }

func (s *StackFrameSymptom) Matches(rec *domain.CrashRecord) bool {
	for i, f := range rec.Frames {
		if s.frameNumber.Matches(uint64(i)) && s.functionName.Matches(f.Function) {
			return true
		}
	}
	return false
}

// StackSizeSymptom constrains the number of frames.
type StackSizeSymptom struct {
	base
	size NumberMatch
}

func (*StackSizeSymptom) Kind() Kind { return KindStackSize }

func (s *StackSizeSymptom) Size() NumberMatch { return s.size }

func (s *StackSizeSymptom) Matches(rec *domain.CrashRecord) bool {
	return s.size.Matches(uint64(len(rec.Frames)))
}

// Output sources accepted by OutputSymptom.
const (
	SourceStdout    = "stdout"
	SourceStderr    = "stderr"
	SourceCrashData = "crashdata"
)

// OutputSymptom searches the process output for a line. An empty source means
// every stream is searched.
type OutputSymptom struct {
	base
	value  StringMatch
	source string
}

func (*OutputSymptom) Kind() Kind { return KindOutput }

func (s *OutputSymptom) Value() StringMatch { return s.value }
func (s *OutputSymptom) Source() string     { return s.source }

func (s *OutputSymptom) Matches(rec *domain.CrashRecord) bool {
	var streams [][]string
	switch s.source {
	case SourceStdout:
		streams = [][]string{rec.Stdout}
	case SourceStderr:
		streams = [][]string{rec.Stderr}
	case SourceCrashData:
		streams = [][]string{rec.CrashData}
	default:
		streams = [][]string{rec.Stderr, rec.CrashData, rec.Stdout}
	}
	for _, lines := range streams {
		if anyLineMatches(s.value, lines) {
			return true
		}
	}
	return false
}

// CrashAddressSymptom constrains the faulting address. Records without an
// address never match.
type CrashAddressSymptom struct {
	base
	address NumberMatch
}

func (*CrashAddressSymptom) Kind() Kind { return KindCrashAddress }

func (s *CrashAddressSymptom) Address() NumberMatch { return s.address }

func (s *CrashAddressSymptom) Matches(rec *domain.CrashRecord) bool {
	return rec.CrashAddress != nil && s.address.Matches(*rec.CrashAddress)
}

// InstructionSymptom constrains the crashing instruction by mnemonic and/or
// the registers it uses.
type InstructionSymptom struct {
	base
	instructionName *StringMatch
	registerNames   []string
}

func (*InstructionSymptom) Kind() Kind { return KindInstruction }

// InstructionName returns the mnemonic match, if one was defined.
func (s *InstructionSymptom) InstructionName() (StringMatch, bool) {
	if s.instructionName == nil {
		return StringMatch{}, false
	}
	return *s.instructionName, true
}

func (s *InstructionSymptom) RegisterNames() []string {
	return slices.Clone(s.registerNames)
}

func (s *InstructionSymptom) Matches(rec *domain.CrashRecord) bool {
	if rec.Instruction == "" {
		return false
	}
	if s.instructionName != nil && !s.instructionName.Matches(rec.Instruction) {
		return false
	}
	if len(s.registerNames) == 0 {
		return true
	}

	tokens := make(map[string]bool)
	for _, t := range strings.FieldsFunc(rec.Instruction, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		tokens[t] = true
	}
	for _, reg := range s.registerNames {
		if !tokens[reg] {
			return false
		}
	}
	return true
}

// TestcaseSymptom searches the attached testcase line by line. A record
// without testcase content never matches.
type TestcaseSymptom struct {
	base
	value StringMatch
}

func (*TestcaseSymptom) Kind() Kind { return KindTestcase }

func (s *TestcaseSymptom) Value() StringMatch { return s.value }

func (s *TestcaseSymptom) Matches(rec *domain.CrashRecord) bool {
	if rec.Testcase == nil {
		return false
	}
	return anyLineMatches(s.value, strings.Split(*rec.Testcase, "\n"))
}

func anyLineMatches(m StringMatch, lines []string) bool {
	for _, line := range lines {
		if m.Matches(line) {
			return true
		}
	}
	return false
}

// parseSymptom decodes one entry of the "symptoms" array.
func parseSymptom(raw json.RawMessage, path string, o options) (Symptom, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return nil, schemaErrorf(path, "symptom must be an object")
	}

	var kind string
	if err := json.Unmarshal(obj["type"], &kind); err != nil || kind == "" {
		return nil, schemaErrorf(path, "missing or invalid symptom type")
	}

	f := fields{obj: obj, path: path}
	b := base{raw: raw}

	switch Kind(kind) {
	case KindStackFrames:
		var elems []json.RawMessage
		if err := f.required("functionNames", &elems); err != nil {
			return nil, err
		}
		if len(elems) == 0 {
			return nil, schemaErrorf(path+".functionNames", "must not be empty")
		}
		patterns := make([]framePattern, len(elems))
		for i, e := range elems {
			m, err := parseStringMatch(e, fmt.Sprintf("%s.functionNames[%d]", path, i))
			if err != nil {
				return nil, err
			}
			patterns[i] = newFramePattern(m)
		}
		return &StackFramesSymptom{base: b, patterns: patterns, window: o.diffWindow}, nil

	case KindStackFrame:
		s := &StackFrameSymptom{base: b}
		var err error
		if s.functionName, err = f.stringMatch("functionName"); err != nil {
			return nil, err
		}
		if _, ok := obj["frameNumber"]; ok {
			if s.frameNumber, err = f.numberMatch("frameNumber"); err != nil {
				return nil, err
			}
		} else {
			s.frameNumber = NumberMatch{op: opEQ, raw: json.RawMessage("0")}
		}
		return s, nil

	case KindStackSize:
		size, err := f.numberMatch("size")
		if err != nil {
			return nil, err
		}
		return &StackSizeSymptom{base: b, size: size}, nil

	case KindOutput:
		value, err := f.stringMatch("value")
		if err != nil {
			return nil, err
		}
		var src string
		if err := f.optional("src", &src); err != nil {
			return nil, err
		}
		switch src {
		case "", SourceStdout, SourceStderr, SourceCrashData:
		default:
			return nil, schemaErrorf(path+".src", "unknown output source %q", src)
		}
		return &OutputSymptom{base: b, value: value, source: src}, nil

	case KindCrashAddress:
		addr, err := f.numberMatch("address")
		if err != nil {
			return nil, err
		}
		return &CrashAddressSymptom{base: b, address: addr}, nil

	case KindInstruction:
		s := &InstructionSymptom{base: b}
		if err := f.optional("registerNames", &s.registerNames); err != nil {
			return nil, err
		}
		if _, ok := obj["instructionName"]; ok {
			m, err := f.stringMatch("instructionName")
			if err != nil {
				return nil, err
			}
			s.instructionName = &m
		}
		if s.instructionName == nil && len(s.registerNames) == 0 {
			return nil, schemaErrorf(path, "instruction symptom needs instructionName or registerNames")
		}
		return s, nil

	case KindTestcase:
		value, err := f.stringMatch("value")
		if err != nil {
			return nil, err
		}
		return &TestcaseSymptom{base: b, value: value}, nil

	default:
		return nil, schemaErrorf(path, "unknown symptom type %q", kind)
	}
}

// fields reads typed members of a symptom object.
type fields struct {
	obj  map[string]json.RawMessage
	path string
}

func (f fields) required(key string, v any) error {
	raw, ok := f.obj[key]
	if !ok {
		return schemaErrorf(f.path, "missing required field %q", key)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return schemaErrorf(f.path+"."+key, "wrong type: %v", err)
	}
	return nil
}

func (f fields) optional(key string, v any) error {
	if _, ok := f.obj[key]; !ok {
		return nil
	}
	return f.required(key, v)
}

func (f fields) stringMatch(key string) (StringMatch, error) {
	raw, ok := f.obj[key]
	if !ok {
		return StringMatch{}, schemaErrorf(f.path, "missing required field %q", key)
	}
	return parseStringMatch(raw, f.path+"."+key)
}

func (f fields) numberMatch(key string) (NumberMatch, error) {
	raw, ok := f.obj[key]
	if !ok {
		return NumberMatch{}, schemaErrorf(f.path, "missing required field %q", key)
	}
	return parseNumberMatch(raw, f.path+"."+key)
}
