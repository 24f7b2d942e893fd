// Package storage defines the symbol repository shared by every backend.
package storage

import (
	"context"
	"strings"

	"candlestore/pkg/candle"
)

// Store persists one SymbolRecord per upper-cased symbol plus the raw candle
// rows of each of its timeframes.
type Store interface {
	Exists(ctx context.Context, symbol string) (bool, error)
	Get(ctx context.Context, symbol string) (*candle.SymbolRecord, error)
	// List returns every readable record sorted by symbol.
	List(ctx context.Context) ([]candle.SymbolRecord, error)
	// Put replaces the record wholesale.
	Put(ctx context.Context, rec *candle.SymbolRecord) error
	// Delete removes the record and its candle rows.
	Delete(ctx context.Context, symbol string) error
	// Rename moves the record and its candle rows to a new key. The old key is
	// removed only after the new one is written.
	Rename(ctx context.Context, from, to string) error

	// PutCandles stores raw rows for one timeframe and returns the storage
	// location recorded in the TimeframeRecord.
	PutCandles(ctx context.Context, symbol, code string, content []byte) (string, error)
	Candles(ctx context.Context, symbol, code string) ([]byte, error)

	Close() error
}

// Key upper-cases and validates a symbol or timeframe code for use as a key.
func Key(s string) (string, error) {
	k := strings.ToUpper(strings.TrimSpace(s))
	switch {
	case k == "":
		return "", candle.InvalidInput("empty key")
	case strings.ContainsAny(k, `/\:`+"\x00"), strings.Contains(k, ".."):
		return "", candle.InvalidInput("invalid key %q", s)
	}
	return k, nil
}

// Keys validates two keys at once.
func Keys(a, b string) (string, string, error) {
	ka, err := Key(a)
	if err != nil {
		return "", "", err
	}
	kb, err := Key(b)
	if err != nil {
		return "", "", err
	}
	return ka, kb, nil
}
