// Package file stores symbols as pretty-printed JSON documents on disk:
//
//	<dir>/symbols/<SYMBOL>.json
//	<dir>/candles/<SYMBOL>/<CODE>.csv
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"candlestore/pkg/candle"
	"candlestore/pkg/storage"
	"candlestore/pkg/timeframe"

	"go.uber.org/zap"
)

const (
	symbolsDir = "symbols"
	candlesDir = "candles"
	docExt     = ".json"
	candleExt  = ".csv"
)

type Store struct {
	dir       string
	logger    *zap.Logger
	writeFile func(path string, data []byte) error
}

var _ storage.Store = (*Store)(nil)

// New creates the directory layout under dir.
func New(dir string, logger *zap.Logger) (*Store, error) {
	for _, sub := range []string{symbolsDir, candlesDir} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("%w: create %s directory: %v", candle.ErrIO, sub, err)
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{dir: dir, logger: logger, writeFile: writeFileAtomic}, nil
}

func (s *Store) docPath(key string) string {
	return filepath.Join(s.dir, symbolsDir, key+docExt)
}

func (s *Store) candleDir(key string) string {
	return filepath.Join(s.dir, candlesDir, key)
}

func (s *Store) candlePath(key, code string) string {
	return filepath.Join(s.candleDir(key), code+candleExt)
}

func (s *Store) Exists(_ context.Context, symbol string) (bool, error) {
	key, err := storage.Key(symbol)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(s.docPath(key))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", candle.ErrIO, err)
	}
}

func (s *Store) Get(_ context.Context, symbol string) (*candle.SymbolRecord, error) {
	key, err := storage.Key(symbol)
	if err != nil {
		return nil, err
	}
	return s.read(key)
}

func (s *Store) read(key string) (*candle.SymbolRecord, error) {
	b, err := os.ReadFile(s.docPath(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, candle.NotFound(key)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: unreadable document: %v", candle.NotFound(key), err)
	}
	var rec candle.SymbolRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("%w: unreadable document: %v", candle.NotFound(key), err)
	}
	return &rec, nil
}

func (s *Store) List(_ context.Context) ([]candle.SymbolRecord, error) {
	entries, err := os.ReadDir(filepath.Join(s.dir, symbolsDir))
	if errors.Is(err, fs.ErrNotExist) {
		return []candle.SymbolRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: list symbols: %v", candle.ErrIO, err)
	}

	out := make([]candle.SymbolRecord, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, docExt) {
			continue
		}
		rec, err := s.read(strings.TrimSuffix(name, docExt))
		if err != nil {
			s.logger.Warn("Skipping unreadable symbol document", zap.String("file", name), zap.Error(err))
			continue
		}
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}

func (s *Store) Put(_ context.Context, rec *candle.SymbolRecord) error {
	key, err := storage.Key(rec.Symbol)
	if err != nil {
		return err
	}
	doc := *rec
	doc.Symbol = key
	if err := s.write(key, &doc); err != nil {
		return err
	}
	s.pruneCandles(key, &doc)
	return nil
}

func (s *Store) write(key string, rec *candle.SymbolRecord) error {
	b, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize %s: %w", key, err)
	}
	if err := s.writeFile(s.docPath(key), b); err != nil {
		return fmt.Errorf("%w: write %s: %v", candle.ErrIO, key, err)
	}
	return nil
}

// pruneCandles removes candle files of timeframes the record no longer lists.
func (s *Store) pruneCandles(key string, rec *candle.SymbolRecord) {
	entries, err := os.ReadDir(s.candleDir(key))
	if err != nil {
		return
	}
	for _, e := range entries {
		code := strings.TrimSuffix(e.Name(), candleExt)
		if _, ok := rec.Timeframe(timeframe.Code(code)); ok || e.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(s.candleDir(key), e.Name())); err != nil {
			s.logger.Warn("Failed to prune candle file", zap.String("symbol", key), zap.String("file", e.Name()), zap.Error(err))
		}
	}
}

func (s *Store) Delete(_ context.Context, symbol string) error {
	key, err := storage.Key(symbol)
	if err != nil {
		return err
	}

	docErr := os.Remove(s.docPath(key))
	_, dirErr := os.Stat(s.candleDir(key))
	if errors.Is(docErr, fs.ErrNotExist) && errors.Is(dirErr, fs.ErrNotExist) {
		return candle.NotFound(key)
	}
	if docErr != nil && !errors.Is(docErr, fs.ErrNotExist) {
		return fmt.Errorf("%w: delete %s: %v", candle.ErrIO, key, docErr)
	}
	if err := os.RemoveAll(s.candleDir(key)); err != nil {
		return fmt.Errorf("%w: delete candles of %s: %v", candle.ErrIO, key, err)
	}
	return nil
}

func (s *Store) Rename(_ context.Context, from, to string) error {
	from, to, err := storage.Keys(from, to)
	if err != nil {
		return err
	}
	rec, err := s.read(from)
	if err != nil {
		return err
	}
	if from == to {
		return nil
	}
	if _, err := os.Stat(s.docPath(to)); err == nil {
		return candle.AlreadyExists(to)
	}

	// Stage the candle directory and document under the new key first.
	if err := os.RemoveAll(s.candleDir(to)); err != nil {
		return fmt.Errorf("%w: clear %s: %v", candle.ErrIO, to, err)
	}
	if err := copyDir(s.candleDir(from), s.candleDir(to)); err != nil {
		_ = os.RemoveAll(s.candleDir(to))
		return fmt.Errorf("%w: copy candles to %s: %v", candle.ErrIO, to, err)
	}
	rec.Symbol = to
	for i := range rec.Timeframes {
		tf := &rec.Timeframes[i]
		if tf.StorageLocation == s.candlePath(from, string(tf.Code)) {
			tf.StorageLocation = s.candlePath(to, string(tf.Code))
		}
	}
	if err := s.write(to, rec); err != nil {
		_ = os.RemoveAll(s.candleDir(to))
		return err
	}

	if err := os.Remove(s.docPath(from)); err != nil {
		return fmt.Errorf("%w: remove old document %s: %v", candle.ErrIO, from, err)
	}
	if err := os.RemoveAll(s.candleDir(from)); err != nil {
		s.logger.Warn("Failed to remove old candle directory", zap.String("symbol", from), zap.Error(err))
	}
	return nil
}

func (s *Store) PutCandles(_ context.Context, symbol, code string, content []byte) (string, error) {
	key, tf, err := storage.Keys(symbol, code)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.candleDir(key), 0o755); err != nil {
		return "", fmt.Errorf("%w: %v", candle.ErrIO, err)
	}
	p := s.candlePath(key, tf)
	if err := s.writeFile(p, content); err != nil {
		return "", fmt.Errorf("%w: write %s/%s: %v", candle.ErrIO, key, tf, err)
	}
	return p, nil
}

func (s *Store) Candles(_ context.Context, symbol, code string) ([]byte, error) {
	key, tf, err := storage.Keys(symbol, code)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(s.candlePath(key, tf))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("timeframe %s of %w", tf, candle.NotFound(key))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", candle.ErrIO, err)
	}
	return b, nil
}

func (s *Store) Close() error { return nil }
