package candle

import (
	"time"

	"candlestore/pkg/timeframe"
)

// Candle is a single OHLCV observation.
type Candle struct {
	Time   int64   `json:"time"`   // open time in seconds since epoch
	Open   float64 `json:"open"`   // opening price
	High   float64 `json:"high"`   // highest price during the interval
	Low    float64 `json:"low"`    // lowest price during the interval
	Close  float64 `json:"close"`  // closing price
	Volume float64 `json:"volume"` // traded volume
}

// TimeframeRecord describes the rows persisted for one timeframe of a symbol.
type TimeframeRecord struct {
	Code            timeframe.Code `json:"code"`             // canonical token, or the raw token when unrecognized
	DisplayLabel    string         `json:"display_label"`    // human label, e.g. "4 hours"
	CandleCount     int            `json:"candle_count"`     // number of data rows
	StorageLocation string         `json:"storage_location"` // opaque reference returned by the store
}

// SymbolRecord is the persisted document of one instrument.
type SymbolRecord struct {
	Symbol       string            `json:"symbol"`
	Timeframes   []TimeframeRecord `json:"timeframes"`
	TotalCandles int               `json:"total_candles"`
	UploadedAt   time.Time         `json:"uploaded_at"`
}

// NewTimeframe canonicalizes a raw token and builds its record.
func NewTimeframe(token string, count int, location string) TimeframeRecord {
	code, label := timeframe.Canonicalize(token)
	return TimeframeRecord{
		Code:            code,
		DisplayLabel:    label,
		CandleCount:     count,
		StorageLocation: location,
	}
}

// Codes returns the record's timeframe codes in stored order.
func (r *SymbolRecord) Codes() []string {
	out := make([]string, 0, len(r.Timeframes))
	for _, tf := range r.Timeframes {
		out = append(out, string(tf.Code))
	}
	return out
}

// Timeframe returns the record for code, if present.
func (r *SymbolRecord) Timeframe(code timeframe.Code) (TimeframeRecord, bool) {
	for _, tf := range r.Timeframes {
		if tf.Code == code {
			return tf, true
		}
	}
	return TimeframeRecord{}, false
}
