// Package progress carries per-timeframe and per-symbol outcomes of an
// import to whoever is watching.
package progress

import "time"

type Kind string

const (
	Started         Kind = "started"
	TimeframeDone   Kind = "timeframe_done"
	TimeframeFailed Kind = "timeframe_failed"
	TimeframeSkip   Kind = "timeframe_skipped"
	SymbolDone      Kind = "symbol_done"
	SymbolSkipped   Kind = "symbol_skipped"
	SymbolFailed    Kind = "symbol_failed"
	Finished        Kind = "finished"
)

// Event is one outcome within an import operation.
type Event struct {
	Operation string    `json:"operation"`
	Kind      Kind      `json:"kind"`
	Symbol    string    `json:"symbol,omitempty"`
	Timeframe string    `json:"timeframe,omitempty"`
	Candles   int       `json:"candles,omitempty"`
	Message   string    `json:"message,omitempty"`
	Time      time.Time `json:"time"`
}

type Reporter interface {
	Report(Event)
}

// Nop discards events.
type Nop struct{}

func (Nop) Report(Event) {}

// Func adapts a function to Reporter.
type Func func(Event)

func (f Func) Report(e Event) { f(e) }
