package refpath

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

const identPattern = `[a-zA-Z_][a-zA-Z0-9_-]*`

// referenceRegex matches a whole string that is exactly one reference.
var referenceRegex = regexp.MustCompile(`^\$\{(` + identPattern + `(?:\.` + identPattern + `|\[[0-9]+\])*)\}$`)

// stepRegex consumes one step of a path after the root identifier.
var stepRegex = regexp.MustCompile(`^(?:\.(` + identPattern + `)|\[([0-9]+)\])`)

var rootRegex = regexp.MustCompile(`^` + identPattern)

// Segment represents a single step of a reference path: either an attribute
// name or a list index.
type Segment struct {
	Name  string
	Index int // -1 indicates an attribute segment.
}

// NewAttrSegment creates a segment that selects an attribute by name.
func NewAttrSegment(name string) Segment {
	return Segment{Name: name, Index: -1}
}

// NewIndexSegment creates a segment that selects a list element.
func NewIndexSegment(index int) Segment {
	return Segment{Index: index}
}

// IsIndex returns true if the segment selects a list element.
func (s Segment) IsIndex() bool {
	return s.Index != -1
}

// Path is the parsed form of a reference path.
type Path []Segment

// Match reports whether s is exactly one `${...}` reference and returns the
// path between the braces.
func Match(s string) (string, bool) {
	m := referenceRegex.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Parse creates a Path from its canonical string form, e.g. `var.a[0].b`.
func Parse(raw string) (Path, error) {
	if raw == "" {
		return nil, fmt.Errorf("reference path cannot be empty")
	}

	root := rootRegex.FindString(raw)
	if root == "" {
		return nil, fmt.Errorf("invalid reference path %q: must start with an identifier", raw)
	}
	path := Path{NewAttrSegment(root)}
	rest := raw[len(root):]

	for rest != "" {
		m := stepRegex.FindStringSubmatch(rest)
		if m == nil {
			return nil, fmt.Errorf("invalid reference path %q: unexpected %q", raw, rest)
		}
		if m[1] != "" {
			path = append(path, NewAttrSegment(m[1]))
		} else {
			index, err := strconv.Atoi(m[2])
			if err != nil {
				return nil, fmt.Errorf("invalid index in reference path %q: %w", raw, err)
			}
			path = append(path, NewIndexSegment(index))
		}
		rest = rest[len(m[0]):]
	}

	return path, nil
}

// String serializes the Path into its canonical string representation.
func (p Path) String() string {
	var sb strings.Builder
	for i, segment := range p {
		if segment.IsIndex() {
			fmt.Fprintf(&sb, "[%d]", segment.Index)
			continue
		}
		if i > 0 {
			sb.WriteRune('.')
		}
		sb.WriteString(segment.Name)
	}
	return sb.String()
}

// Equal checks two paths segment by segment.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// Traversal converts the path into a relative HCL traversal, so that it can
// be applied to a cty value with hcl.Traversal.TraverseRel.
func (p Path) Traversal() hcl.Traversal {
	traversal := make(hcl.Traversal, 0, len(p))
	for _, segment := range p {
		if segment.IsIndex() {
			traversal = append(traversal, hcl.TraverseIndex{Key: cty.NumberIntVal(int64(segment.Index))})
			continue
		}
		traversal = append(traversal, hcl.TraverseAttr{Name: segment.Name})
	}
	return traversal
}
