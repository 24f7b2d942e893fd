package candle

import (
	"fmt"
	"strings"
	"time"

	"candlestore/pkg/timeframe"
)

// Assemble builds the SymbolRecord for symbol from the collected timeframes.
// Timeframes are ordered by canonical rank (unknown codes last, insertion
// order kept among equals) and the total is recomputed from the parts.
func Assemble(symbol string, timeframes []TimeframeRecord, now time.Time) (*SymbolRecord, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if len(timeframes) == 0 {
		return nil, fmt.Errorf("symbol '%s': %w", symbol, ErrNoValidTimeframes)
	}

	ordered := make([]TimeframeRecord, len(timeframes))
	copy(ordered, timeframes)
	timeframe.SortFunc(ordered, func(tf TimeframeRecord) timeframe.Code { return tf.Code })

	total := 0
	for _, tf := range ordered {
		total += tf.CandleCount
	}

	return &SymbolRecord{
		Symbol:       symbol,
		Timeframes:   ordered,
		TotalCandles: total,
		UploadedAt:   now.UTC(),
	}, nil
}
