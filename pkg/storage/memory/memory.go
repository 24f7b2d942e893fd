// Package memory is an in-process Store, used by tests and dry runs.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"candlestore/pkg/candle"
	"candlestore/pkg/storage"
	"candlestore/pkg/timeframe"
)

type Store struct {
	globalMu sync.RWMutex
	data     map[string]*symbolStore
}

type symbolStore struct {
	record  candle.SymbolRecord
	candles map[string][]byte
}

var _ storage.Store = (*Store)(nil)

func New() *Store {
	return &Store{data: make(map[string]*symbolStore)}
}

func (s *Store) Exists(_ context.Context, symbol string) (bool, error) {
	key, err := storage.Key(symbol)
	if err != nil {
		return false, err
	}
	s.globalMu.RLock()
	defer s.globalMu.RUnlock()
	st, ok := s.data[key]
	return ok && st.hasRecord(), nil
}

func (s *Store) Get(_ context.Context, symbol string) (*candle.SymbolRecord, error) {
	key, err := storage.Key(symbol)
	if err != nil {
		return nil, err
	}
	s.globalMu.RLock()
	defer s.globalMu.RUnlock()
	st, ok := s.data[key]
	if !ok || !st.hasRecord() {
		return nil, candle.NotFound(key)
	}
	rec := clone(st.record)
	return &rec, nil
}

func (s *Store) List(_ context.Context) ([]candle.SymbolRecord, error) {
	s.globalMu.RLock()
	defer s.globalMu.RUnlock()

	out := make([]candle.SymbolRecord, 0, len(s.data))
	for _, st := range s.data {
		if st.hasRecord() {
			out = append(out, clone(st.record))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}

func (s *Store) Put(_ context.Context, rec *candle.SymbolRecord) error {
	key, err := storage.Key(rec.Symbol)
	if err != nil {
		return err
	}
	s.globalMu.Lock()
	defer s.globalMu.Unlock()

	st, ok := s.data[key]
	if !ok {
		st = &symbolStore{candles: map[string][]byte{}}
		s.data[key] = st
	}
	st.record = clone(*rec)
	st.record.Symbol = key
	for code := range st.candles {
		if _, ok := rec.Timeframe(timeframe.Code(code)); !ok {
			delete(st.candles, code)
		}
	}
	return nil
}

func (s *Store) Delete(_ context.Context, symbol string) error {
	key, err := storage.Key(symbol)
	if err != nil {
		return err
	}
	s.globalMu.Lock()
	defer s.globalMu.Unlock()
	if _, ok := s.data[key]; !ok {
		return candle.NotFound(key)
	}
	delete(s.data, key)
	return nil
}

func (s *Store) Rename(_ context.Context, from, to string) error {
	from, to, err := storage.Keys(from, to)
	if err != nil {
		return err
	}
	s.globalMu.Lock()
	defer s.globalMu.Unlock()

	st, ok := s.data[from]
	if !ok || !st.hasRecord() {
		return candle.NotFound(from)
	}
	if from == to {
		return nil
	}
	if dst, ok := s.data[to]; ok && dst.hasRecord() {
		return candle.AlreadyExists(to)
	}
	st.record.Symbol = to
	for i, tf := range st.record.Timeframes {
		if tf.StorageLocation == location(from, string(tf.Code)) {
			st.record.Timeframes[i].StorageLocation = location(to, string(tf.Code))
		}
	}
	s.data[to] = st
	delete(s.data, from)
	return nil
}

func (s *Store) PutCandles(_ context.Context, symbol, code string, content []byte) (string, error) {
	key, tf, err := storage.Keys(symbol, code)
	if err != nil {
		return "", err
	}
	s.globalMu.Lock()
	defer s.globalMu.Unlock()

	st, ok := s.data[key]
	if !ok {
		st = &symbolStore{candles: map[string][]byte{}}
		s.data[key] = st
	}
	st.candles[tf] = append([]byte(nil), content...)
	return location(key, tf), nil
}

func (s *Store) Candles(_ context.Context, symbol, code string) ([]byte, error) {
	key, tf, err := storage.Keys(symbol, code)
	if err != nil {
		return nil, err
	}
	s.globalMu.RLock()
	defer s.globalMu.RUnlock()

	st, ok := s.data[key]
	if !ok {
		return nil, candle.NotFound(key)
	}
	b, ok := st.candles[tf]
	if !ok {
		return nil, fmt.Errorf("timeframe %s of %w", tf, candle.NotFound(key))
	}
	return append([]byte(nil), b...), nil
}

func (s *Store) Close() error { return nil }

func location(symbol, code string) string {
	return fmt.Sprintf("memory:%s/%s", symbol, code)
}

// hasRecord is false while only candle rows have been staged for a symbol.
func (st *symbolStore) hasRecord() bool {
	return st.record.Symbol != ""
}

func clone(r candle.SymbolRecord) candle.SymbolRecord {
	r.Timeframes = append([]candle.TimeframeRecord(nil), r.Timeframes...)
	return r
}
