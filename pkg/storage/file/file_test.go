package file

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"candlestore/pkg/candle"
	"candlestore/pkg/storage"
	"candlestore/pkg/storage/storagetest"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// go test -v --run TestFileStore
func TestFileStore(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Store {
		s, err := New(t.TempDir(), zap.NewNop())
		require.NoError(t, err)
		return s
	})
}

// go test -v --run TestDocumentLayout
func TestDocumentLayout(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, nil)
	require.NoError(t, err)

	loc, err := s.PutCandles(t.Context(), "eurusd", "m1", []byte("x"))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "candles", "EURUSD", "M1.csv"), loc)

	rec, err := candle.Assemble("eurusd", []candle.TimeframeRecord{candle.NewTimeframe("M1", 100, loc)},
		time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC))
	require.NoError(t, err)
	require.NoError(t, s.Put(t.Context(), rec))

	b, err := os.ReadFile(filepath.Join(dir, "symbols", "EURUSD.json"))
	require.NoError(t, err)
	require.JSONEq(t, `{
		"symbol": "EURUSD",
		"timeframes": [{"code": "M1", "display_label": "1 min", "candle_count": 100, "storage_location": "`+loc+`"}],
		"total_candles": 100,
		"uploaded_at": "2025-01-02T03:04:05Z"
	}`, string(b))
	require.Contains(t, string(b), "\n  \"symbol\"")

	// no temp files are left behind
	entries, err := os.ReadDir(filepath.Join(dir, "symbols"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

// go test -v --run TestListSkipsCorrupt
func TestListSkipsCorrupt(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, nil)
	require.NoError(t, err)

	rec, err := candle.Assemble("AAA", []candle.TimeframeRecord{candle.NewTimeframe("D1", 1, "")}, time.Now())
	require.NoError(t, err)
	require.NoError(t, s.Put(t.Context(), rec))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "symbols", "BROKEN.json"), []byte("{"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "symbols", "README.txt"), []byte("hi"), 0o644))

	list, err := s.List(t.Context())
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "AAA", list[0].Symbol)

	_, err = s.Get(t.Context(), "BROKEN")
	require.ErrorIs(t, err, candle.ErrNotFound)
}

// go test -v --run TestRenameRewritesLocations
func TestRenameRewritesLocations(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, nil)
	require.NoError(t, err)

	loc, err := s.PutCandles(t.Context(), "EURUSD", "H1", []byte("rows"))
	require.NoError(t, err)
	rec, err := candle.Assemble("EURUSD", []candle.TimeframeRecord{candle.NewTimeframe("H1", 1, loc)}, time.Now())
	require.NoError(t, err)
	require.NoError(t, s.Put(t.Context(), rec))

	require.NoError(t, s.Rename(t.Context(), "EURUSD", "FX1"))

	got, err := s.Get(t.Context(), "FX1")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "candles", "FX1", "H1.csv"), got.Timeframes[0].StorageLocation)

	_, err = os.Stat(filepath.Join(dir, "candles", "EURUSD"))
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, "symbols", "EURUSD.json"))
	require.True(t, os.IsNotExist(err))
}

// go test -v --run TestWriteFileAtomicReplaces
func TestWriteFileAtomicReplaces(t *testing.T) {
	p := filepath.Join(t.TempDir(), "doc.json")
	require.NoError(t, writeFileAtomic(p, []byte("one")))
	require.NoError(t, writeFileAtomic(p, []byte("two")))

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	require.Equal(t, "two", string(b))
}

// go test -v --run TestRenameKeepsOldKeyOnWriteFailure
func TestRenameKeepsOldKeyOnWriteFailure(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	s, err := New(dir, nil)
	require.NoError(t, err)

	loc, err := s.PutCandles(t.Context(), "EURUSD", "H1", []byte("1700000000,1,1,1,1\n"))
	require.NoError(t, err)
	rec, err := candle.Assemble("EURUSD", []candle.TimeframeRecord{candle.NewTimeframe("H1", 1, loc)}, time.Now())
	require.NoError(t, err)
	require.NoError(t, s.Put(t.Context(), rec))

	docBefore, err := os.ReadFile(filepath.Join(dir, "symbols", "EURUSD.json"))
	require.NoError(t, err)
	rowsBefore, err := os.ReadFile(loc)
	require.NoError(t, err)

	newDoc := filepath.Join(dir, "symbols", "FX1.json")
	s.writeFile = func(path string, data []byte) error {
		if path == newDoc {
			return errors.New("disk full")
		}
		return writeFileAtomic(path, data)
	}

	// Act
	err = s.Rename(t.Context(), "EURUSD", "FX1")

	// Assert
	require.ErrorIs(t, err, candle.ErrIO)

	docAfter, err := os.ReadFile(filepath.Join(dir, "symbols", "EURUSD.json"))
	require.NoError(t, err)
	require.Equal(t, docBefore, docAfter)
	rowsAfter, err := s.Candles(t.Context(), "EURUSD", "H1")
	require.NoError(t, err)
	require.Equal(t, rowsBefore, rowsAfter)

	exists, err := s.Exists(t.Context(), "FX1")
	require.NoError(t, err)
	require.False(t, exists)
	_, err = os.Stat(filepath.Join(dir, "candles", "FX1"))
	require.True(t, os.IsNotExist(err))
}

// go test -v --run TestGetUnreadableIsNotFound
func TestGetUnreadableIsNotFound(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, nil)
	require.NoError(t, err)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "symbols", "BROKEN.json"), 0o755))

	_, err = s.Get(t.Context(), "BROKEN")
	require.ErrorIs(t, err, candle.ErrNotFound)
}
