package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"candlestore/config"
	"candlestore/internal/progress"
	"candlestore/pkg/storage/file"
	"candlestore/pkg/storage/memory"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// go test -v --run TestSplitList
func TestSplitList(t *testing.T) {
	require.Equal(t, []string{"M1", "H1", "D1"}, splitList(" M1, H1,,D1 "))
	require.Nil(t, splitList(""))
}

// go test -v --run TestOpenStore
func TestOpenStore(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{Backend: "file", Dir: filepath.Join(t.TempDir(), "data")}}
	s, err := openStore(t.Context(), cfg, zap.NewNop())
	require.NoError(t, err)
	require.IsType(t, &file.Store{}, s)

	cfg.Store.Backend = "memory"
	s, err = openStore(t.Context(), cfg, zap.NewNop())
	require.NoError(t, err)
	require.IsType(t, &memory.Store{}, s)

	cfg.Store.Backend = "sqlite"
	_, err = openStore(t.Context(), cfg, zap.NewNop())
	require.Error(t, err)
}

// go test -v --run TestConsoleReporter
func TestConsoleReporter(t *testing.T) {
	var buf bytes.Buffer
	r := consoleReporter(&buf)
	r.Report(progress.Event{Kind: progress.Started, Symbol: "EURUSD"})
	r.Report(progress.Event{Kind: progress.TimeframeDone, Symbol: "EURUSD", Timeframe: "M1", Candles: 100})
	r.Report(progress.Event{Kind: progress.TimeframeFailed, Symbol: "EURUSD", Timeframe: "W1", Message: "no candles"})
	require.Equal(t, "✓ EURUSD M1 - 100 candles\n✗ EURUSD W1 - Failed: no candles\n", buf.String())
}
