package transform

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

const maxRenderedValue = 120

// Error reports a value that cannot be transformed into a target type. It
// names both the offending type and value.
type Error struct {
	Type   string
	Value  string
	Path   string
	Reason string
}

// Error implements the error interface.
func (e *Error) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "cannot transform %s into %s", e.Value, e.Type)
	if e.Path != "" {
		fmt.Fprintf(&sb, " at '%s'", e.Path)
	}
	if e.Reason != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Reason)
	}
	return sb.String()
}

func newError(d *Descriptor, v cty.Value, path []string, format string, args ...any) *Error {
	return &Error{
		Type:   d.Name(),
		Value:  renderValue(v),
		Path:   joinPath(path),
		Reason: fmt.Sprintf(format, args...),
	}
}

// renderValue returns a short JSON rendering of v for error messages.
func renderValue(v cty.Value) string {
	if v.IsNull() {
		return "null"
	}
	if !v.IsWhollyKnown() {
		return "(unknown)"
	}
	buf, err := ctyjson.Marshal(v, v.Type())
	if err != nil {
		return v.GoString()
	}
	s := string(buf)
	if len(s) > maxRenderedValue {
		cut := maxRenderedValue
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut] + "..."
	}
	return s
}

func joinPath(path []string) string {
	var sb strings.Builder
	for i, p := range path {
		if i > 0 && !strings.HasPrefix(p, "[") {
			sb.WriteRune('.')
		}
		sb.WriteString(p)
	}
	return sb.String()
}

func appendPath(path []string, segment string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, segment)
}
