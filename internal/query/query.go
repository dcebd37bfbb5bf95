package query

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/shinji-kodama/gaussclass/internal/model"
)

// DefaultPrior is used when neither the query nor the file sets a prior.
const DefaultPrior = 0.5

// Format identifies the encoding of a query file.
type Format string

const (
	// FormatYAML is a YAML document.
	FormatYAML Format = "yaml"

	// FormatJSON is a JSON document, optionally with comments.
	FormatJSON Format = "json"
)

// String returns the string representation of Format.
func (f Format) String() string {
	return string(f)
}

// DetectFormat selects the encoding from a file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json", ".jsonc":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported query file extension %q (valid: .yaml, .yml, .json, .jsonc)", filepath.Ext(path))
	}
}

// Query is one point to score.
type Query struct {
	// Name labels the query in output. Defaults to "query-<n>" (1-based).
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Point is the observation to score.
	Point model.Point `json:"point" yaml:"point"`

	// Prior overrides the file-level prior for this query.
	Prior *float64 `json:"prior,omitempty" yaml:"prior,omitempty"`

	// Classes restricts scoring to these ids. Empty means every class.
	Classes []model.ClassID `json:"classes,omitempty" yaml:"classes,omitempty"`
}

// File is the top-level document of a query file.
type File struct {
	// Prior is the default prior for queries that do not set one.
	Prior *float64 `json:"prior,omitempty" yaml:"prior,omitempty"`

	// Queries are evaluated in order.
	Queries []Query `json:"queries" yaml:"queries"`
}

// Resolved is a validated query with every default applied.
type Resolved struct {
	Name    string
	Point   model.Point
	Prior   float64
	Classes []model.ClassID
}

// Load reads and decodes a query file, choosing the encoding from its
// extension, and resolves defaults.
func Load(path string) ([]Resolved, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read query file: %w", err)
	}

	f, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("failed to parse query file %s: %w", path, err)
	}
	return f.Resolve()
}

// Decode parses data in the given format.
func Decode(data []byte, format Format) (*File, error) {
	var f File
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown query file format %q", format)
	}
	return &f, nil
}

// Resolve validates every query and applies the default name and prior.
func (f *File) Resolve() ([]Resolved, error) {
	if len(f.Queries) == 0 {
		return nil, errors.New("query file contains no queries")
	}

	filePrior := DefaultPrior
	if f.Prior != nil {
		if err := ValidatePrior(*f.Prior); err != nil {
			return nil, fmt.Errorf("file prior: %w", err)
		}
		filePrior = *f.Prior
	}

	out := make([]Resolved, 0, len(f.Queries))
	for i, q := range f.Queries {
		r := Resolved{
			Name:    q.Name,
			Point:   q.Point,
			Prior:   filePrior,
			Classes: q.Classes,
		}
		if r.Name == "" {
			r.Name = fmt.Sprintf("query-%d", i+1)
		}
		if q.Prior != nil {
			r.Prior = *q.Prior
		}
		if err := ValidatePrior(r.Prior); err != nil {
			return nil, fmt.Errorf("%s: %w", r.Name, err)
		}
		if !r.Point.IsFinite() {
			return nil, fmt.Errorf("%s: point %s is not finite", r.Name, r.Point)
		}
		out = append(out, r)
	}
	return out, nil
}

// ValidatePrior checks that p is a probability in (0, 1].
func ValidatePrior(p float64) error {
	if !(p > 0 && p <= 1) {
		return fmt.Errorf("prior %v out of range (0, 1]", p)
	}
	return nil
}
