// Package candlefile detects the shape of delimited candle files, validates
// and counts their rows, and writes candles back out as CSV.
package candlefile

import (
	"bytes"
	"strings"
)

const (
	minColumns         = 5
	minDelimiterCount  = 4
	minSpaceDelimiters = 7
)

// Format is the detected shape of a candle file.
type Format struct {
	Delimiter rune
	Header    []string
}

// delimiters in priority order with the occurrences each needs on the first line.
var delimiters = []struct {
	r   rune
	min int
}{
	{'\t', minDelimiterCount},
	{',', minDelimiterCount},
	{';', minDelimiterCount},
	{' ', minSpaceDelimiters},
}

// FirstLine returns the first line of content without BOM or line terminator.
func FirstLine(content []byte) string {
	content = bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))
	if i := bytes.IndexByte(content, '\n'); i >= 0 {
		content = content[:i]
	}
	return strings.TrimRight(string(content), "\r")
}

// Detect picks the delimiter from the header line and parses the header.
func Detect(firstLine string) (*Format, error) {
	firstLine = strings.TrimRight(strings.TrimPrefix(firstLine, "\ufeff"), "\r\n")

	var delim rune
	for _, d := range delimiters {
		if strings.Count(firstLine, string(d.r)) >= d.min {
			delim = d.r
			break
		}
	}
	if delim == 0 {
		// A recognised delimiter below its threshold means a narrow header.
		for _, d := range delimiters {
			if !strings.ContainsRune(firstLine, d.r) {
				continue
			}
			if n := len(splitLine(firstLine, d.r)); n < minColumns {
				return nil, &FormatError{Kind: InsufficientColumns, Row: 1, Found: n}
			}
			break
		}
		return nil, &FormatError{Kind: DelimiterUndetectable}
	}

	header := splitLine(firstLine, delim)
	if len(header) < minColumns {
		return nil, &FormatError{Kind: InsufficientColumns, Row: 1, Found: len(header)}
	}

	return &Format{Delimiter: delim, Header: header}, nil
}

// splitLine splits a single line the way the row reader would.
func splitLine(line string, delim rune) []string {
	var fields []string
	if delim == ' ' {
		fields = strings.Fields(line)
	} else {
		fields = strings.Split(line, string(delim))
	}
	for i, f := range fields {
		fields[i] = strings.Trim(strings.TrimSpace(f), `"`)
	}
	return fields
}
