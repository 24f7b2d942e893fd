// Package storagetest runs the behaviour every storage.Store backend must share.
package storagetest

import (
	"context"
	"testing"
	"time"

	"candlestore/pkg/candle"
	"candlestore/pkg/storage"

	"github.com/stretchr/testify/require"
)

// Factory returns an empty store; it is called once per subtest.
type Factory func(t *testing.T) storage.Store

func record(t *testing.T, symbol string, tfs ...candle.TimeframeRecord) *candle.SymbolRecord {
	t.Helper()
	rec, err := candle.Assemble(symbol, tfs, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC))
	require.NoError(t, err)
	return rec
}

func put(t *testing.T, ctx context.Context, s storage.Store, symbol string, codes ...string) *candle.SymbolRecord {
	t.Helper()
	var tfs []candle.TimeframeRecord
	for i, code := range codes {
		loc, err := s.PutCandles(ctx, symbol, code, []byte("timestamp,open,high,low,close,volume\n1,1,1,1,1,1\n"))
		require.NoError(t, err)
		require.NotEmpty(t, loc)
		tfs = append(tfs, candle.NewTimeframe(code, 10*(i+1), loc))
	}
	rec := record(t, symbol, tfs...)
	require.NoError(t, s.Put(ctx, rec))
	return rec
}

// Run exercises newStore against the shared Store contract.
func Run(t *testing.T, newStore Factory) {
	t.Run("PutGet", func(t *testing.T) {
		ctx := t.Context()
		s := newStore(t)

		want := put(t, ctx, s, "eurusd", "H1", "M1")

		ok, err := s.Exists(ctx, "EURUSD")
		require.NoError(t, err)
		require.True(t, ok)

		got, err := s.Get(ctx, "eurusd")
		require.NoError(t, err)
		require.Equal(t, "EURUSD", got.Symbol)
		require.Equal(t, []string{"M1", "H1"}, got.Codes())
		require.Equal(t, want.TotalCandles, got.TotalCandles)
		require.True(t, want.UploadedAt.Equal(got.UploadedAt))
		require.Equal(t, want.Timeframes, got.Timeframes)
	})

	t.Run("Missing", func(t *testing.T) {
		ctx := t.Context()
		s := newStore(t)

		ok, err := s.Exists(ctx, "NOPE")
		require.NoError(t, err)
		require.False(t, ok)

		_, err = s.Get(ctx, "NOPE")
		require.ErrorIs(t, err, candle.ErrNotFound)

		require.ErrorIs(t, s.Delete(ctx, "NOPE"), candle.ErrNotFound)
		require.ErrorIs(t, s.Rename(ctx, "NOPE", "OTHER"), candle.ErrNotFound)

		_, err = s.Candles(ctx, "NOPE", "M1")
		require.ErrorIs(t, err, candle.ErrNotFound)

		list, err := s.List(ctx)
		require.NoError(t, err)
		require.Empty(t, list)
	})

	t.Run("InvalidKey", func(t *testing.T) {
		ctx := t.Context()
		s := newStore(t)

		_, err := s.Exists(ctx, "../etc")
		require.ErrorIs(t, err, candle.ErrInvalidInput)
		_, err = s.PutCandles(ctx, "EURUSD", "a/b", nil)
		require.ErrorIs(t, err, candle.ErrInvalidInput)
	})

	t.Run("ListSorted", func(t *testing.T) {
		ctx := t.Context()
		s := newStore(t)

		put(t, ctx, s, "BBB", "D1")
		put(t, ctx, s, "AAA", "M1")
		put(t, ctx, s, "CCC", "W1")

		list, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 3)
		require.Equal(t, "AAA", list[0].Symbol)
		require.Equal(t, "BBB", list[1].Symbol)
		require.Equal(t, "CCC", list[2].Symbol)
	})

	t.Run("PutReplaces", func(t *testing.T) {
		ctx := t.Context()
		s := newStore(t)

		put(t, ctx, s, "EURUSD", "M1", "H1")
		put(t, ctx, s, "EURUSD", "D1")

		got, err := s.Get(ctx, "EURUSD")
		require.NoError(t, err)
		require.Equal(t, []string{"D1"}, got.Codes())
		require.Equal(t, 10, got.TotalCandles)

		_, err = s.Candles(ctx, "EURUSD", "M1")
		require.ErrorIs(t, err, candle.ErrNotFound)
	})

	t.Run("Candles", func(t *testing.T) {
		ctx := t.Context()
		s := newStore(t)

		content := []byte("time\topen\thigh\tlow\tclose\n1\t1\t2\t0.5\t1.5\n")
		_, err := s.PutCandles(ctx, "eurusd", "m1", content)
		require.NoError(t, err)

		got, err := s.Candles(ctx, "EURUSD", "M1")
		require.NoError(t, err)
		require.Equal(t, content, got)

		// rows without a record are not a symbol yet
		ok, err := s.Exists(ctx, "EURUSD")
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("Delete", func(t *testing.T) {
		ctx := t.Context()
		s := newStore(t)

		put(t, ctx, s, "EURUSD", "M1")
		require.NoError(t, s.Delete(ctx, "eurusd"))

		ok, err := s.Exists(ctx, "EURUSD")
		require.NoError(t, err)
		require.False(t, ok)

		_, err = s.Candles(ctx, "EURUSD", "M1")
		require.ErrorIs(t, err, candle.ErrNotFound)
	})

	t.Run("Rename", func(t *testing.T) {
		ctx := t.Context()
		s := newStore(t)

		put(t, ctx, s, "EURUSD", "M1", "H1")
		require.NoError(t, s.Rename(ctx, "eurusd", "eurusd_old"))

		ok, err := s.Exists(ctx, "EURUSD")
		require.NoError(t, err)
		require.False(t, ok)

		got, err := s.Get(ctx, "EURUSD_OLD")
		require.NoError(t, err)
		require.Equal(t, "EURUSD_OLD", got.Symbol)
		require.Equal(t, []string{"M1", "H1"}, got.Codes())

		_, err = s.Candles(ctx, "EURUSD_OLD", "H1")
		require.NoError(t, err)
	})

	t.Run("RenameOntoExisting", func(t *testing.T) {
		ctx := t.Context()
		s := newStore(t)

		put(t, ctx, s, "AAA", "M1")
		put(t, ctx, s, "BBB", "H1", "D1")

		require.ErrorIs(t, s.Rename(ctx, "AAA", "BBB"), candle.ErrAlreadyExists)

		a, err := s.Get(ctx, "AAA")
		require.NoError(t, err)
		require.Equal(t, []string{"M1"}, a.Codes())
		b, err := s.Get(ctx, "BBB")
		require.NoError(t, err)
		require.Equal(t, []string{"H1", "D1"}, b.Codes())
	})
}
