package catalog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/litescript/ls-skyplan/internal/astro"
)

// ErrNoHeader is returned when the catalog has no header row naming a
// Name column.
var ErrNoHeader = errors.New("catalog has no header row")

// Catalog column labels.
const (
	colName               = "Name"
	colNGC                = "NGC"
	colObjectType         = "Object type"
	colSeason             = "Season"
	colMagnitude          = "Magnitude"
	colConstellationEN    = "Constellation (EN)"
	colConstellationFR    = "Constellation (FR)"
	colConstellationLatin = "Constellation (Latin)"
	colRA                 = "RA"
	colDec                = "DEC"
	colDistance           = "Distance"
	colSize               = "Size"
	colImage              = "Image"
	colImageSky           = "Image ciel"
	colLocation           = "Location"
	colType               = "Type"
)

// dynamicType marks rows whose position is computed from an ephemeris.
const dynamicType = "1"

// ParseIssue records a cell that could not be read. The entry is still
// produced with the field's zero value.
type ParseIssue struct {
	Row    int // 1-based data row, header excluded
	Column string
	Value  string
	Reason string
}

func (p ParseIssue) String() string {
	return fmt.Sprintf("row %d, %s=%q: %s", p.Row, p.Column, p.Value, p.Reason)
}

// ParseResult holds parsed entries and the problems met along the way.
type ParseResult struct {
	Entries []Entry
	Issues  []ParseIssue
}

// Parse reads a semicolon separated catalog. Malformed cells degrade to
// zero values; use ParseDetailed to see them.
func Parse(r io.Reader) ([]Entry, error) {
	res, err := ParseDetailed(r)
	if err != nil {
		return nil, err
	}
	return res.Entries, nil
}

// ParseString parses a catalog held in memory.
func ParseString(s string) ([]Entry, error) {
	return Parse(strings.NewReader(s))
}

// ParseDetailed reads a catalog and reports every cell that fell back to a
// zero value. Indices follow file order, starting at 0. Fields are split on
// every semicolon; quotes carry no meaning and stay in the cell text.
func ParseDetailed(r io.Reader) (*ParseResult, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("read catalog header: %w", err)
		}
		return nil, ErrNoHeader
	}

	header := splitRow(sc.Text())
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	if _, ok := cols[colName]; !ok {
		return nil, ErrNoHeader
	}

	res := &ParseResult{}
	row := 0
	for sc.Scan() {
		rec := splitRow(sc.Text())
		if blank(rec) {
			continue
		}
		row++

		p := rowParser{rec: rec, cols: cols, row: row, res: res}
		e := Entry{
			Index:              len(res.Entries),
			Name:               p.str(colName),
			NGC:                p.str(colNGC),
			ObjectType:         p.str(colObjectType),
			Season:             p.str(colSeason),
			Magnitude:          p.number(colMagnitude),
			ConstellationEN:    p.str(colConstellationEN),
			ConstellationFR:    p.str(colConstellationFR),
			ConstellationLatin: p.str(colConstellationLatin),
			RAHours:            p.sexagesimal(colRA),
			DecDeg:             p.sexagesimal(colDec),
			Distance:           p.number(colDistance),
			Size:               p.number(colSize),
			Image:              p.str(colImage),
			ImageSky:           p.str(colImageSky),
			Location:           p.str(colLocation),
			Dynamic:            p.str(colType) == dynamicType,
		}

		if e.Dynamic {
			body, ok := astro.ParseBody(e.Name)
			if !ok {
				p.issue(colName, e.Name, "unknown solar system body")
			}
			e.Body = body
		}

		res.Entries = append(res.Entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read catalog row %d: %w", row+1, err)
	}

	return res, nil
}

// maxLineBytes bounds a single catalog line.
const maxLineBytes = 1 << 20

func splitRow(line string) []string {
	return strings.Split(strings.TrimSuffix(line, "\r"), ";")
}

type rowParser struct {
	rec  []string
	cols map[string]int
	row  int
	res  *ParseResult
}

func (p rowParser) str(col string) string {
	i, ok := p.cols[col]
	if !ok || i >= len(p.rec) {
		return ""
	}
	return strings.TrimSpace(p.rec[i])
}

func (p rowParser) issue(col, value, reason string) {
	p.res.Issues = append(p.res.Issues, ParseIssue{Row: p.row, Column: col, Value: value, Reason: reason})
}

// number parses the leading decimal of a cell, accepting a comma as
// decimal separator. Trailing text such as a unit is ignored.
func (p rowParser) number(col string) float64 {
	s := p.str(col)
	if s == "" {
		return 0
	}
	v, ok := leadingNumber(strings.Replace(s, ",", ".", 1))
	if !ok {
		p.issue(col, s, "not a number")
		return 0
	}
	return v
}

// leadingNumber parses the longest prefix of s that forms a decimal number
// with an optional sign, fraction and exponent.
func leadingNumber(s string) (float64, bool) {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for ; i < len(s) && isDigit(s[i]); i++ {
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for ; i < len(s) && isDigit(s[i]); i++ {
			digits++
		}
	}
	if digits == 0 {
		return 0, false
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if j < len(s) && isDigit(s[j]) {
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			i = j
		}
	}
	v, err := strconv.ParseFloat(s[:i], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func (p rowParser) sexagesimal(col string) float64 {
	s := p.str(col)
	if s == "" {
		return 0
	}
	v, err := astro.ParseSexagesimal(s)
	if err != nil {
		p.issue(col, s, err.Error())
		return 0
	}
	return v
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
