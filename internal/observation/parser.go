package observation

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/shinji-kodama/gaussclass/internal/classmodel"
	"github.com/shinji-kodama/gaussclass/internal/model"
)

// maxLineSize bounds the length of a single input line.
const maxLineSize = 1 << 20

// ShortLinePolicy decides what happens to a line with fewer than three tokens.
type ShortLinePolicy string

const (
	// StopOnShortLine ends parsing at the first short line. Lines after it
	// are never read.
	StopOnShortLine ShortLinePolicy = "stop"

	// SkipShortLine ignores the short line and continues with the next one.
	SkipShortLine ShortLinePolicy = "skip"
)

// String returns the string representation of ShortLinePolicy.
func (p ShortLinePolicy) String() string {
	return string(p)
}

// IsValid checks whether the policy is one of the predefined values.
func (p ShortLinePolicy) IsValid() bool {
	switch p {
	case StopOnShortLine, SkipShortLine:
		return true
	default:
		return false
	}
}

// ParseShortLinePolicy converts a string to a ShortLinePolicy.
func ParseShortLinePolicy(s string) (ShortLinePolicy, error) {
	policy := ShortLinePolicy(strings.ToLower(s))
	if !policy.IsValid() {
		return "", fmt.Errorf("invalid short line policy: %q (valid: stop, skip)", s)
	}
	return policy, nil
}

// Parser reads observation streams. The zero value uses StopOnShortLine.
type Parser struct {
	// ShortLines selects the policy for lines with fewer than three tokens.
	ShortLines ShortLinePolicy
}

// Result is the outcome of a parse pass.
type Result struct {
	// Classes maps each observed id to a model holding its points in
	// input order. Models are not fit.
	Classes map[model.ClassID]*classmodel.ClassModel

	// Lines is the number of lines that contributed a point.
	Lines int

	// Skipped is the number of short lines ignored under SkipShortLine.
	Skipped int

	// StoppedAt is the 1-based line number of the short line that ended
	// parsing, or 0 when the whole stream was consumed.
	StoppedAt int
}

// Parse is shorthand for (&Parser{}).Parse(r).
func Parse(r io.Reader) (*Result, error) {
	return (&Parser{}).Parse(r)
}

// Parse consumes r line by line and groups the observations by class id.
//
// Any token that is not a valid literal aborts the parse with a
// *model.ParseError; no partial result is returned. Read errors from r are
// returned wrapped.
func (p *Parser) Parse(r io.Reader) (*Result, error) {
	res := &Result{Classes: make(map[model.ClassID]*classmodel.ClassModel)}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++

		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			if p.ShortLines == SkipShortLine {
				res.Skipped++
				continue
			}
			res.StoppedAt = lineNo
			break
		}

		id, point, err := parseFields(lineNo, fields)
		if err != nil {
			return nil, err
		}

		if c, ok := res.Classes[id]; ok {
			c.Add(point)
		} else {
			res.Classes[id] = classmodel.New(id, point)
		}
		res.Lines++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read observations at line %d: %w", lineNo+1, err)
	}

	return res, nil
}

// parseFields converts the first three tokens of a line.
func parseFields(lineNo int, fields []string) (model.ClassID, model.Point, error) {
	id, err := model.ParseClassID(fields[0])
	if err != nil {
		return 0, model.Point{}, &model.ParseError{Line: lineNo, Field: "id", Token: fields[0], Err: err}
	}

	x, err := parseCoordinate(lineNo, "x", fields[1])
	if err != nil {
		return 0, model.Point{}, err
	}
	y, err := parseCoordinate(lineNo, "y", fields[2])
	if err != nil {
		return 0, model.Point{}, err
	}

	return id, model.Point{X: x, Y: y}, nil
}

// ErrNotFinite is wrapped by ParseError for NaN and infinity literals.
var ErrNotFinite = errors.New("value is not finite")

func parseCoordinate(lineNo int, field, token string) (float64, error) {
	v, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, &model.ParseError{Line: lineNo, Field: field, Token: token, Err: err}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &model.ParseError{Line: lineNo, Field: field, Token: token, Err: ErrNotFinite}
	}
	return v, nil
}
