package candlefile

import "fmt"

// Kind classifies a FormatError.
type Kind int

const (
	DelimiterUndetectable Kind = iota + 1
	InsufficientColumns
	InvalidTimestamp
	InvalidPrice
	EmptyFile
)

func (k Kind) String() string {
	switch k {
	case DelimiterUndetectable:
		return "delimiter undetectable"
	case InsufficientColumns:
		return "insufficient columns"
	case InvalidTimestamp:
		return "invalid timestamp"
	case InvalidPrice:
		return "invalid price"
	case EmptyFile:
		return "empty file"
	default:
		return "format error"
	}
}

// FormatError reports a malformed candle file. Row is the 1-based line of the
// record (the header is row 1), Column is 1-based.
type FormatError struct {
	Kind   Kind
	Row    int
	Column int
	Found  int
	Value  string
}

// Sentinels for errors.Is; only the Kind is compared.
var (
	ErrDelimiterUndetectable = &FormatError{Kind: DelimiterUndetectable}
	ErrInsufficientColumns   = &FormatError{Kind: InsufficientColumns}
	ErrInvalidTimestamp      = &FormatError{Kind: InvalidTimestamp}
	ErrInvalidPrice          = &FormatError{Kind: InvalidPrice}
	ErrEmptyFile             = &FormatError{Kind: EmptyFile}
)

func (e *FormatError) Error() string {
	switch e.Kind {
	case DelimiterUndetectable:
		return "could not detect delimiter (expected tab, comma, semicolon or space separated header)"
	case InsufficientColumns:
		return fmt.Sprintf("row %d: expected at least %d columns, found %d", e.Row, minColumns, e.Found)
	case InvalidTimestamp:
		return fmt.Sprintf("row %d: invalid timestamp format %q", e.Row, e.Value)
	case InvalidPrice:
		return fmt.Sprintf("row %d: invalid number format in column %d (%q)", e.Row, e.Column, e.Value)
	case EmptyFile:
		return "file contains no data rows"
	default:
		return e.Kind.String()
	}
}

// Is matches any FormatError of the same Kind.
func (e *FormatError) Is(target error) bool {
	t, ok := target.(*FormatError)
	return ok && t.Kind == e.Kind
}
