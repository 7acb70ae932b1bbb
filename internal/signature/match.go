package signature

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"
)

// StringMatch matches a string either by substring or by regular expression.
// Regular expressions use Perl syntax, lookaround and backreferences included.
type StringMatch struct {
	value string
	re    *regexp2.Regexp
	raw   json.RawMessage
}

type stringMatchObject struct {
	Value     *string `json:"value"`
	MatchType string  `json:"matchType,omitempty"`
}

func parseStringMatch(raw json.RawMessage, path string) (StringMatch, error) {
	raw = bytes.TrimSpace(raw)
	m := StringMatch{raw: raw}

	if len(raw) > 0 && raw[0] == '"' {
		if err := json.Unmarshal(raw, &m.value); err != nil {
			return StringMatch{}, schemaErrorf(path, "expected string: %v", err)
		}
		// "/.../" is the short form of a regular expression
		if len(m.value) > 2 && strings.HasPrefix(m.value, "/") && strings.HasSuffix(m.value, "/") {
			m.value = m.value[1 : len(m.value)-1]
			return m.compile(path)
		}
		return m, nil
	}

	var obj stringMatchObject
	if err := json.Unmarshal(raw, &obj); err != nil {
		return StringMatch{}, schemaErrorf(path, "expected string or match object")
	}
	if obj.Value == nil {
		return StringMatch{}, schemaErrorf(path, "missing required field \"value\"")
	}
	m.value = *obj.Value

	switch strings.ToLower(obj.MatchType) {
	case "", "contains":
		return m, nil
	case "pcre":
		return m.compile(path)
	default:
		return StringMatch{}, schemaErrorf(path, "unknown matchType %q", obj.MatchType)
	}
}

func (m StringMatch) compile(path string) (StringMatch, error) {
	re, err := regexp2.Compile(m.value, regexp2.None)
	if err != nil {
		return StringMatch{}, schemaErrorf(path, "invalid regular expression: %v", err)
	}
	m.re = re
	return m, nil
}

// literalMatch builds a substring match for s that survives a JSON round trip.
func literalMatch(s string) StringMatch {
	var raw []byte
	if len(s) > 2 && strings.HasPrefix(s, "/") && strings.HasSuffix(s, "/") {
		raw, _ = json.Marshal(stringMatchObject{Value: &s, MatchType: "contains"})
	} else {
		raw, _ = json.Marshal(s)
	}
	return StringMatch{value: s, raw: raw}
}

// Matches reports whether s satisfies the match.
func (m StringMatch) Matches(s string) bool {
	if m.re != nil {
		ok, err := m.re.MatchString(s)
		return err == nil && ok
	}
	return strings.Contains(s, m.value)
}

// IsRegexp reports whether the match is a regular expression.
func (m StringMatch) IsRegexp() bool {
	return m.re != nil
}

func (m StringMatch) String() string {
	if m.re != nil {
		return "/" + m.value + "/"
	}
	return m.value
}

// MarshalJSON returns the form the match was defined with.
func (m StringMatch) MarshalJSON() ([]byte, error) {
	if len(m.raw) == 0 {
		return json.Marshal(m.String())
	}
	return bytes.Clone(m.raw), nil
}

type numberOp int

const (
	opEQ numberOp = iota
	opLT
	opLE
	opGT
	opGE
)

var numberOps = []struct {
	token string
	op    numberOp
}{
	// two-character operators first so "<=" is not read as "<"
	{"==", opEQ},
	{"<=", opLE},
	{">=", opGE},
	{"<", opLT},
	{">", opGT},
}

// NumberMatch compares an unsigned value such as an address or a frame index.
type NumberMatch struct {
	op    numberOp
	value uint64
	raw   json.RawMessage
}

func parseNumberMatch(raw json.RawMessage, path string) (NumberMatch, error) {
	raw = bytes.TrimSpace(raw)
	m := NumberMatch{raw: raw}

	var expr string
	if len(raw) > 0 && raw[0] == '"' {
		if err := json.Unmarshal(raw, &expr); err != nil {
			return NumberMatch{}, schemaErrorf(path, "expected string: %v", err)
		}
	} else {
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return NumberMatch{}, schemaErrorf(path, "expected number or comparison string")
		}
		expr = n.String()
	}

	expr = strings.TrimSpace(expr)
	for _, o := range numberOps {
		if strings.HasPrefix(expr, o.token) {
			m.op = o.op
			expr = strings.TrimSpace(expr[len(o.token):])
			break
		}
	}

	v, err := strconv.ParseUint(expr, 0, 64)
	if err != nil {
		return NumberMatch{}, schemaErrorf(path, "invalid number %q", expr)
	}
	m.value = v
	return m, nil
}

// Matches reports whether v satisfies the comparison.
func (m NumberMatch) Matches(v uint64) bool {
	switch m.op {
	case opLT:
		return v < m.value
	case opLE:
		return v <= m.value
	case opGT:
		return v > m.value
	case opGE:
		return v >= m.value
	default:
		return v == m.value
	}
}

// MarshalJSON returns the form the match was defined with.
func (m NumberMatch) MarshalJSON() ([]byte, error) {
	return bytes.Clone(m.raw), nil
}
