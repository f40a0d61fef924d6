// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package core

import (
	"fmt"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
)

// Location is a position in a source file. Zero Line or Column means unknown.
type Location struct {
	File   string
	Line   int
	Column int
}

func (l Location) String() string {
	switch {
	case l.Line > 0 && l.Column > 0:
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	case l.Line > 0:
		return fmt.Sprintf("%s:%d", l.File, l.Line)
	}
	return l.File
}

// IsZero reports whether the location carries no information.
func (l Location) IsZero() bool {
	return l.File == "" && l.Line == 0 && l.Column == 0
}

// Relativize rewrites an absolute file path that lies under base into a path
// relative to base. Other locations are returned unchanged.
func (l Location) Relativize(base string) Location {
	if !filepath.IsAbs(l.File) || base == "" {
		return l
	}
	rel, err := filepath.Rel(base, l.File)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return l
	}
	l.File = rel
	return l
}

// LocationFromFunc returns the declaration site of a Go function value.
func LocationFromFunc(fn any) (Location, bool) {
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func || rv.IsNil() {
		return Location{}, false
	}
	f := runtime.FuncForPC(rv.Pointer())
	if f == nil {
		return Location{}, false
	}
	file, line := f.FileLine(f.Entry())
	// Method values resolve to a compiler-generated wrapper.
	if file == "" || file == "<autogenerated>" {
		return Location{}, false
	}
	return Location{File: file, Line: line, Column: 1}, true
}

// FuncName returns the short name of a Go function value, e.g. "addTags" for
// "example.com/project/mutators.addTags".
func FuncName(fn any) string {
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func || rv.IsNil() {
		return ""
	}
	f := runtime.FuncForPC(rv.Pointer())
	if f == nil {
		return ""
	}
	name := f.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.Index(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimSuffix(name, "-fm")
}
