package candlefile

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const maxLineSize = 1024 * 1024

// Inspect detects the format of content and validates its data rows.
func Inspect(content []byte, layout Layout) (*Format, int, error) {
	format, err := Detect(FirstLine(content))
	if err != nil {
		return nil, 0, err
	}
	n, err := Validate(content, format, layout)
	if err != nil {
		return nil, 0, err
	}
	return format, n, nil
}

// Validate counts the data rows of content, skipping the header line and
// blank rows. The first data row is checked for a timestamp and numeric
// prices; every data row needs at least five fields.
func Validate(content []byte, format *Format, layout Layout) (int, error) {
	cols := layout.PriceColumns(format.Header)

	sc := bufio.NewScanner(bytes.NewReader(content))
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	count := 0
	index := -1
	for sc.Scan() {
		index++
		if index == 0 {
			continue
		}
		fields := splitLine(strings.TrimRight(sc.Text(), "\r"), format.Delimiter)
		if blank(fields) {
			continue
		}

		row := index + 1
		if len(fields) < minColumns {
			return 0, &FormatError{Kind: InsufficientColumns, Row: row, Found: len(fields)}
		}
		if count == 0 {
			if err := checkFirstRow(fields, cols, row); err != nil {
				return 0, err
			}
		}
		count++
	}
	if err := sc.Err(); err != nil {
		return 0, fmt.Errorf("read rows: %w", err)
	}

	if count == 0 {
		return 0, &FormatError{Kind: EmptyFile}
	}
	return count, nil
}

func checkFirstRow(fields []string, cols [4]int, row int) error {
	if !validTimestamp(fields[0]) {
		return &FormatError{Kind: InvalidTimestamp, Row: row, Value: fields[0]}
	}
	for _, c := range cols {
		var v string
		if c < len(fields) {
			v = fields[c]
		}
		if _, err := decimal.NewFromString(v); err != nil {
			return &FormatError{Kind: InvalidPrice, Row: row, Column: c + 1, Value: v}
		}
	}
	return nil
}

// validTimestamp accepts a dotted date such as 2024.01.02 or a signed epoch.
func validTimestamp(s string) bool {
	if strings.Contains(s, ".") && len(s) >= 10 {
		return true
	}
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

func blank(fields []string) bool {
	for _, f := range fields {
		if f != "" {
			return false
		}
	}
	return true
}

// CountLines counts non-blank lines minus the header. Content fetched from
// a repository is counted this way without numeric validation.
func CountLines(content []byte) int {
	n := 0
	for _, line := range bytes.Split(content, []byte("\n")) {
		if len(bytes.TrimSpace(line)) > 0 {
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return n - 1
}
