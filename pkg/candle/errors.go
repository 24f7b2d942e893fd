package candle

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by the acquirers and the stores. Callers wrap these
// with context and inspect them with errors.Is.
var (
	ErrIO                = errors.New("io error")
	ErrNetwork           = errors.New("network error")
	ErrAlreadyExists     = errors.New("already exists")
	ErrNotFound          = errors.New("not found")
	ErrNoData            = errors.New("no data")
	ErrNoValidTimeframes = errors.New("no valid timeframes")
	ErrNoCandles         = errors.New("no candles")
	ErrInvalidInput      = errors.New("invalid input")

	// ErrUnsupportedTimeframe is also an ErrInvalidInput.
	ErrUnsupportedTimeframe = fmt.Errorf("%w: unsupported timeframe", ErrInvalidInput)
)

// AlreadyExists reports that symbol is already persisted.
func AlreadyExists(symbol string) error {
	return fmt.Errorf("symbol '%s' %w, delete it first or choose a different name", symbol, ErrAlreadyExists)
}

// NotFound reports that symbol is not persisted.
func NotFound(symbol string) error {
	return fmt.Errorf("symbol '%s' %w", symbol, ErrNotFound)
}

// InvalidInput wraps a validation message in ErrInvalidInput.
func InvalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
