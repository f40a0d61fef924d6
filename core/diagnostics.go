// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package core

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/bundlefn/internal/guard"
)

// Severity of a Diagnostic.
type Severity int

const (
	SeverityError Severity = iota + 1
	SeverityWarning
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	}
	return "unknown"
}

// Diagnostic is one reportable error or warning.
type Diagnostic struct {
	Severity Severity
	Summary  string
	Detail   string
	// Path points at the configuration value the diagnostic is about, e.g.
	// ["resources", "jobs", "my_job"].
	Path     []string
	Location *Location
}

// Diagnostics is an immutable, ordered list of Diagnostic. Every method that
// adds entries returns a new value and leaves the receiver untouched.
type Diagnostics struct {
	items []Diagnostic
}

// Extend returns the concatenation of d and other.
func (d Diagnostics) Extend(other Diagnostics) Diagnostics {
	if len(other.items) == 0 {
		return d
	}
	if len(d.items) == 0 {
		return other
	}
	return Diagnostics{items: slices.Concat(d.items, other.items)}
}

// ExtendTuple threads a (value, Diagnostics) pair through accumulation:
//
//	job, diags = core.ExtendTuple[*jobs.Job](diags)(loadJob(raw))
func ExtendTuple[T any](d Diagnostics) func(T, Diagnostics) (T, Diagnostics) {
	return func(v T, other Diagnostics) (T, Diagnostics) {
		return v, d.Extend(other)
	}
}

// HasError reports whether any entry has error severity.
func (d Diagnostics) HasError() bool {
	for _, item := range d.items {
		if item.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Len returns the number of entries.
func (d Diagnostics) Len() int {
	return len(d.items)
}

// Items returns a copy of the entries.
func (d Diagnostics) Items() []Diagnostic {
	return slices.Clone(d.items)
}

// DiagnosticOption customises a diagnostic created by CreateError,
// CreateWarning or FromError.
type DiagnosticOption func(*Diagnostic, *string)

// WithLocation attaches a source location.
func WithLocation(loc Location) DiagnosticOption {
	return func(d *Diagnostic, _ *string) {
		d.Location = &loc
	}
}

// WithPath attaches a configuration path.
func WithPath(path ...string) DiagnosticOption {
	return func(d *Diagnostic, _ *string) {
		d.Path = slices.Clone(path)
	}
}

// WithDetail sets the detail text.
func WithDetail(detail string) DiagnosticOption {
	return func(d *Diagnostic, _ *string) {
		d.Detail = detail
	}
}

// WithExplanation appends a human-readable explanation to the detail of a
// diagnostic created from an error.
func WithExplanation(explanation string) DiagnosticOption {
	return func(_ *Diagnostic, e *string) {
		*e = explanation
	}
}

func newDiagnostic(severity Severity, summary string, opts []DiagnosticOption) (Diagnostic, string) {
	d := Diagnostic{Severity: severity, Summary: summary}
	var explanation string
	for _, opt := range opts {
		opt(&d, &explanation)
	}
	return d, explanation
}

// CreateError returns Diagnostics with a single error.
func CreateError(summary string, opts ...DiagnosticOption) Diagnostics {
	d, explanation := newDiagnostic(SeverityError, summary, opts)
	d.Detail = appendExplanation(d.Detail, explanation)
	return Diagnostics{items: []Diagnostic{d}}
}

// CreateWarning returns Diagnostics with a single warning.
func CreateWarning(summary string, opts ...DiagnosticOption) Diagnostics {
	d, explanation := newDiagnostic(SeverityWarning, summary, opts)
	d.Detail = appendExplanation(d.Detail, explanation)
	return Diagnostics{items: []Diagnostic{d}}
}

// FromError returns Diagnostics with a single error describing err. The
// detail holds the error text, the goroutine stack when err comes from a
// recovered panic, and the optional explanation.
func FromError(err error, summary string, opts ...DiagnosticOption) Diagnostics {
	d, explanation := newDiagnostic(SeverityError, summary, opts)

	var sb strings.Builder
	sb.WriteString(err.Error())
	var pe *guard.PanicError
	if errors.As(err, &pe) && len(pe.Stack) > 0 {
		sb.WriteString("\n\n")
		sb.Write(pe.Stack)
	}
	if d.Detail != "" {
		sb.WriteString("\n\n")
		sb.WriteString(d.Detail)
	}
	d.Detail = appendExplanation(strings.TrimRight(sb.String(), "\n"), explanation)
	return Diagnostics{items: []Diagnostic{d}}
}

func appendExplanation(detail, explanation string) string {
	switch {
	case explanation == "":
		return detail
	case detail == "":
		return explanation
	}
	return detail + "\n\nExplanation: " + explanation
}

// ToHCL converts the diagnostics to hcl.Diagnostics, so they can be rendered
// with the HCL diagnostic writers.
func (d Diagnostics) ToHCL() hcl.Diagnostics {
	out := make(hcl.Diagnostics, 0, len(d.items))
	for _, item := range d.items {
		hd := &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  item.Summary,
			Detail:   item.Detail,
		}
		if item.Severity == SeverityWarning {
			hd.Severity = hcl.DiagWarning
		}
		if len(item.Path) > 0 {
			hd.Summary = fmt.Sprintf("%s (at %s)", item.Summary, strings.Join(item.Path, "."))
		}
		if item.Location != nil && item.Location.File != "" {
			pos := hcl.Pos{Line: max(item.Location.Line, 1), Column: max(item.Location.Column, 1)}
			hd.Subject = &hcl.Range{Filename: item.Location.File, Start: pos, End: pos}
		}
		out = append(out, hd)
	}
	return out
}
