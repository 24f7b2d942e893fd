// Package redis stores symbols in Redis:
//
//	<prefix>:symbols                  set of symbols
//	<prefix>:symbol:<SYMBOL>          JSON document
//	<prefix>:codes:<SYMBOL>           set of timeframe codes with rows
//	<prefix>:candles:<SYMBOL>:<CODE>  raw rows
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"candlestore/config"
	"candlestore/pkg/candle"
	"candlestore/pkg/storage"
	"candlestore/pkg/timeframe"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const maxTxRetries = 5

type Store struct {
	rdb    *redis.Client
	prefix string
	logger *zap.Logger
}

var _ storage.Store = (*Store)(nil)

// New connects to cfg.Addr and pings it.
func New(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("%w: redis ping %s: %v", candle.ErrIO, cfg.Addr, err)
	}
	return NewWithClient(rdb, cfg.Prefix, logger), nil
}

func NewWithClient(rdb *redis.Client, prefix string, logger *zap.Logger) *Store {
	if prefix == "" {
		prefix = "candlestore"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{rdb: rdb, prefix: prefix, logger: logger}
}

func (s *Store) indexKey() string          { return s.prefix + ":symbols" }
func (s *Store) docKey(sym string) string   { return s.prefix + ":symbol:" + sym }
func (s *Store) codesKey(sym string) string { return s.prefix + ":codes:" + sym }
func (s *Store) candleKey(sym, code string) string {
	return s.prefix + ":candles:" + sym + ":" + code
}

func redisError(err error) error {
	return fmt.Errorf("%w: redis: %w", candle.ErrIO, err)
}

func (s *Store) Exists(ctx context.Context, symbol string) (bool, error) {
	key, err := storage.Key(symbol)
	if err != nil {
		return false, err
	}
	n, err := s.rdb.Exists(ctx, s.docKey(key)).Result()
	if err != nil {
		return false, redisError(err)
	}
	return n > 0, nil
}

func (s *Store) Get(ctx context.Context, symbol string) (*candle.SymbolRecord, error) {
	key, err := storage.Key(symbol)
	if err != nil {
		return nil, err
	}
	return s.get(ctx, s.rdb, key)
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (s *Store) get(ctx context.Context, c getter, key string) (*candle.SymbolRecord, error) {
	b, err := c.Get(ctx, s.docKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, candle.NotFound(key)
	}
	if err != nil {
		return nil, redisError(err)
	}
	var rec candle.SymbolRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("%w: unreadable document: %v", candle.NotFound(key), err)
	}
	return &rec, nil
}

func (s *Store) List(ctx context.Context) ([]candle.SymbolRecord, error) {
	symbols, err := s.rdb.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, redisError(err)
	}
	sort.Strings(symbols)

	out := make([]candle.SymbolRecord, 0, len(symbols))
	for _, sym := range symbols {
		rec, err := s.get(ctx, s.rdb, sym)
		if err != nil {
			s.logger.Warn("Skipping unreadable symbol document", zap.String("symbol", sym), zap.Error(err))
			continue
		}
		out = append(out, *rec)
	}
	return out, nil
}

func (s *Store) Put(ctx context.Context, rec *candle.SymbolRecord) error {
	key, err := storage.Key(rec.Symbol)
	if err != nil {
		return err
	}
	r := *rec
	r.Symbol = key
	b, err := json.Marshal(&r)
	if err != nil {
		return fmt.Errorf("serialize %s: %w", key, err)
	}

	codes, err := s.rdb.SMembers(ctx, s.codesKey(key)).Result()
	if err != nil {
		return redisError(err)
	}

	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.docKey(key), b, 0)
		pipe.SAdd(ctx, s.indexKey(), key)
		for _, code := range codes {
			if _, ok := r.Timeframe(timeframe.Code(code)); !ok {
				pipe.Del(ctx, s.candleKey(key, code))
				pipe.SRem(ctx, s.codesKey(key), code)
			}
		}
		return nil
	})
	if err != nil {
		return redisError(err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, symbol string) error {
	key, err := storage.Key(symbol)
	if err != nil {
		return err
	}
	codes, err := s.rdb.SMembers(ctx, s.codesKey(key)).Result()
	if err != nil {
		return redisError(err)
	}

	var del *redis.IntCmd
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		keys := []string{s.docKey(key), s.codesKey(key)}
		for _, code := range codes {
			keys = append(keys, s.candleKey(key, code))
		}
		del = pipe.Del(ctx, keys...)
		pipe.SRem(ctx, s.indexKey(), key)
		return nil
	})
	if err != nil {
		return redisError(err)
	}
	if del.Val() == 0 {
		return candle.NotFound(key)
	}
	return nil
}

// Rename copies the document and rows to the new key and removes the old
// keys in one MULTI block, retried while the watched keys change.
func (s *Store) Rename(ctx context.Context, from, to string) error {
	from, to, err := storage.Keys(from, to)
	if err != nil {
		return err
	}

	txf := func(tx *redis.Tx) error {
		rec, err := s.get(ctx, tx, from)
		if err != nil {
			return err
		}
		if from == to {
			return nil
		}
		n, err := tx.Exists(ctx, s.docKey(to)).Result()
		if err != nil {
			return redisError(err)
		}
		if n > 0 {
			return candle.AlreadyExists(to)
		}

		codes, err := tx.SMembers(ctx, s.codesKey(from)).Result()
		if err != nil {
			return redisError(err)
		}
		rows := make(map[string][]byte, len(codes))
		for _, code := range codes {
			b, err := tx.Get(ctx, s.candleKey(from, code)).Bytes()
			if err != nil && !errors.Is(err, redis.Nil) {
				return redisError(err)
			}
			rows[code] = b
		}
		oldCodes, err := tx.SMembers(ctx, s.codesKey(to)).Result()
		if err != nil {
			return redisError(err)
		}

		rec.Symbol = to
		for i := range rec.Timeframes {
			tf := &rec.Timeframes[i]
			if tf.StorageLocation == s.location(from, string(tf.Code)) {
				tf.StorageLocation = s.location(to, string(tf.Code))
			}
		}
		doc, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("serialize %s: %w", to, err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, code := range oldCodes {
				pipe.Del(ctx, s.candleKey(to, code))
			}
			pipe.Del(ctx, s.codesKey(to))
			pipe.Set(ctx, s.docKey(to), doc, 0)
			pipe.SAdd(ctx, s.indexKey(), to)
			for code, b := range rows {
				pipe.Set(ctx, s.candleKey(to, code), b, 0)
				pipe.SAdd(ctx, s.codesKey(to), code)
				pipe.Del(ctx, s.candleKey(from, code))
			}
			pipe.Del(ctx, s.docKey(from), s.codesKey(from))
			pipe.SRem(ctx, s.indexKey(), from)
			return nil
		})
		if err != nil {
			return redisError(err)
		}
		return nil
	}

	watched := []string{s.docKey(from), s.docKey(to), s.codesKey(from), s.codesKey(to)}
	for i := 0; i < maxTxRetries; i++ {
		err := s.rdb.Watch(ctx, txf, watched...)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("%w: rename %s: too many concurrent modifications", candle.ErrIO, from)
}

func (s *Store) location(symbol, code string) string {
	return "redis:" + s.candleKey(symbol, code)
}

func (s *Store) PutCandles(ctx context.Context, symbol, code string, content []byte) (string, error) {
	key, tf, err := storage.Keys(symbol, code)
	if err != nil {
		return "", err
	}
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.candleKey(key, tf), content, 0)
		pipe.SAdd(ctx, s.codesKey(key), tf)
		return nil
	})
	if err != nil {
		return "", redisError(err)
	}
	return s.location(key, tf), nil
}

func (s *Store) Candles(ctx context.Context, symbol, code string) ([]byte, error) {
	key, tf, err := storage.Keys(symbol, code)
	if err != nil {
		return nil, err
	}
	b, err := s.rdb.Get(ctx, s.candleKey(key, tf)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("timeframe %s of %w", tf, candle.NotFound(key))
	}
	if err != nil {
		return nil, redisError(err)
	}
	return b, nil
}

func (s *Store) Close() error {
	return s.rdb.Close()
}
