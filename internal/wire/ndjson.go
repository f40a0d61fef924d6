package wire

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/specialistvlad/bundlefn/core"
)

// DiagnosticRecord is one line of the diagnostics file.
type DiagnosticRecord struct {
	Severity string          `json:"severity"`
	Summary  string          `json:"summary"`
	Detail   string          `json:"detail,omitempty"`
	Path     string          `json:"path,omitempty"`
	Location *LocationRecord `json:"location,omitempty"`
}

// LocationRecord is a source position. Within the locations file Path is the
// dot-joined configuration path it belongs to.
type LocationRecord struct {
	Path   string `json:"path,omitempty"`
	File   string `json:"file"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
}

func locationRecord(path string, loc core.Location) *LocationRecord {
	return &LocationRecord{Path: path, File: loc.File, Line: loc.Line, Column: loc.Column}
}

// EncodeDiagnostics writes one JSON object per diagnostic. File paths under
// base are made relative to it.
func EncodeDiagnostics(w io.Writer, diags core.Diagnostics, base string) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, d := range diags.Items() {
		rec := DiagnosticRecord{
			Severity: d.Severity.String(),
			Summary:  d.Summary,
			Detail:   d.Detail,
			Path:     strings.Join(d.Path, "."),
		}
		if d.Location != nil {
			rec.Location = locationRecord("", d.Location.Relativize(base))
		}
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}
	return nil
}

// EncodeLocations writes one JSON object per location, sorted by path. File
// paths under base are made relative to it.
func EncodeLocations(w io.Writer, locations map[string]core.Location, base string) error {
	paths := make([]string, 0, len(locations))
	for path := range locations {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, path := range paths {
		if err := enc.Encode(locationRecord(path, locations[path].Relativize(base))); err != nil {
			return err
		}
	}
	return nil
}

// WriteDiagnostics writes the diagnostics file.
func WriteDiagnostics(path string, diags core.Diagnostics, base string) error {
	var buf bytes.Buffer
	if err := EncodeDiagnostics(&buf, diags, base); err != nil {
		return fmt.Errorf("failed to encode diagnostics: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write diagnostics: %w", err)
	}
	return nil
}

// WriteLocations writes the locations file.
func WriteLocations(path string, locations map[string]core.Location, base string) error {
	var buf bytes.Buffer
	if err := EncodeLocations(&buf, locations, base); err != nil {
		return fmt.Errorf("failed to encode locations: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write locations: %w", err)
	}
	return nil
}

// ReadDiagnostics parses a diagnostics file. Blank lines are skipped.
func ReadDiagnostics(r io.Reader) ([]DiagnosticRecord, error) {
	return readLines[DiagnosticRecord](r)
}

// ReadLocations parses a locations file. Blank lines are skipped.
func ReadLocations(r io.Reader) ([]LocationRecord, error) {
	return readLines[LocationRecord](r)
}

func readLines[T any](r io.Reader) ([]T, error) {
	var out []T
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for line := 1; scanner.Scan(); line++ {
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		var rec T
		if err := json.Unmarshal(text, &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, rec)
	}
	return out, scanner.Err()
}
