package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"candlestore/pkg/candle"
	"candlestore/pkg/storage"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the storage.Store backed by the symbol_document and candle_file tables.
type Store struct {
	client *PostgresClient
}

var _ storage.Store = (*Store)(nil)

func NewStore(client *PostgresClient) *Store {
	return &Store{client: client}
}

func location(symbol, code string) string {
	return fmt.Sprintf("postgres:candle_file/%s/%s", symbol, code)
}

func dbError(err error) error {
	return fmt.Errorf("%w: postgres: %w", candle.ErrIO, err)
}

func (s *Store) Exists(ctx context.Context, symbol string) (bool, error) {
	key, err := storage.Key(symbol)
	if err != nil {
		return false, err
	}
	var n int64
	if err := s.client.DB.WithContext(ctx).Model(&SymbolDocument{}).Where("symbol = ?", key).Count(&n).Error; err != nil {
		return false, dbError(err)
	}
	return n > 0, nil
}

func (s *Store) Get(ctx context.Context, symbol string) (*candle.SymbolRecord, error) {
	key, err := storage.Key(symbol)
	if err != nil {
		return nil, err
	}
	return get(s.client.DB.WithContext(ctx), key)
}

func get(db *gorm.DB, key string) (*candle.SymbolRecord, error) {
	var doc SymbolDocument
	err := db.Where("symbol = ?", key).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, candle.NotFound(key)
	}
	if err != nil {
		return nil, dbError(err)
	}
	return decode(&doc)
}

func decode(doc *SymbolDocument) (*candle.SymbolRecord, error) {
	var rec candle.SymbolRecord
	if err := json.Unmarshal(doc.Document, &rec); err != nil {
		return nil, fmt.Errorf("%w: unreadable document: %v", candle.NotFound(doc.Symbol), err)
	}
	return &rec, nil
}

func encode(rec *candle.SymbolRecord) (*SymbolDocument, error) {
	b, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("serialize %s: %w", rec.Symbol, err)
	}
	return &SymbolDocument{
		Symbol:         rec.Symbol,
		Document:       b,
		TotalCandles:   rec.TotalCandles,
		TimeframeCount: len(rec.Timeframes),
		UploadedAt:     rec.UploadedAt,
	}, nil
}

func (s *Store) List(ctx context.Context) ([]candle.SymbolRecord, error) {
	var docs []SymbolDocument
	if err := s.client.DB.WithContext(ctx).Order("symbol").Find(&docs).Error; err != nil {
		return nil, dbError(err)
	}
	out := make([]candle.SymbolRecord, 0, len(docs))
	for i := range docs {
		rec, err := decode(&docs[i])
		if err != nil {
			continue
		}
		out = append(out, *rec)
	}
	return out, nil
}

func upsert(db *gorm.DB, doc *SymbolDocument) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}},
		UpdateAll: true,
	}).Create(doc).Error
}

func (s *Store) Put(ctx context.Context, rec *candle.SymbolRecord) error {
	key, err := storage.Key(rec.Symbol)
	if err != nil {
		return err
	}
	r := *rec
	r.Symbol = key
	doc, err := encode(&r)
	if err != nil {
		return err
	}

	err = s.client.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := upsert(tx, doc); err != nil {
			return err
		}
		// drop rows of timeframes the new record no longer lists
		return tx.Where("symbol = ? AND code NOT IN ?", key, r.Codes()).Delete(&CandleFile{}).Error
	})
	if err != nil {
		return dbError(err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, symbol string) error {
	key, err := storage.Key(symbol)
	if err != nil {
		return err
	}

	var removed int64
	err = s.client.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("symbol = ?", key).Delete(&SymbolDocument{})
		if res.Error != nil {
			return res.Error
		}
		removed += res.RowsAffected
		res = tx.Where("symbol = ?", key).Delete(&CandleFile{})
		removed += res.RowsAffected
		return res.Error
	})
	if err != nil {
		return dbError(err)
	}
	if removed == 0 {
		return candle.NotFound(key)
	}
	return nil
}

// Rename rewrites the document and moves the candle rows in one transaction.
func (s *Store) Rename(ctx context.Context, from, to string) error {
	from, to, err := storage.Keys(from, to)
	if err != nil {
		return err
	}

	return s.client.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := get(tx.Clauses(clause.Locking{Strength: "UPDATE"}), from)
		if err != nil {
			return err
		}
		if from == to {
			return nil
		}

		var n int64
		if err := tx.Model(&SymbolDocument{}).Where("symbol = ?", to).Count(&n).Error; err != nil {
			return dbError(err)
		}
		if n > 0 {
			return candle.AlreadyExists(to)
		}

		rec.Symbol = to
		for i := range rec.Timeframes {
			tf := &rec.Timeframes[i]
			if tf.StorageLocation == location(from, string(tf.Code)) {
				tf.StorageLocation = location(to, string(tf.Code))
			}
		}
		doc, err := encode(rec)
		if err != nil {
			return err
		}
		if err := tx.Create(doc).Error; err != nil {
			return dbError(err)
		}
		if err := tx.Where("symbol = ?", to).Delete(&CandleFile{}).Error; err != nil {
			return dbError(err)
		}
		if err := tx.Model(&CandleFile{}).Where("symbol = ?", from).Update("symbol", to).Error; err != nil {
			return dbError(err)
		}
		if err := tx.Where("symbol = ?", from).Delete(&SymbolDocument{}).Error; err != nil {
			return dbError(err)
		}
		return nil
	})
}

func (s *Store) PutCandles(ctx context.Context, symbol, code string, content []byte) (string, error) {
	key, tf, err := storage.Keys(symbol, code)
	if err != nil {
		return "", err
	}
	if content == nil {
		content = []byte{}
	}
	row := &CandleFile{Symbol: key, Code: tf, Content: content}
	err = s.client.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}, {Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"content", "recorded_at"}),
	}).Create(row).Error
	if err != nil {
		return "", dbError(err)
	}
	return location(key, tf), nil
}

func (s *Store) Candles(ctx context.Context, symbol, code string) ([]byte, error) {
	key, tf, err := storage.Keys(symbol, code)
	if err != nil {
		return nil, err
	}
	var row CandleFile
	err = s.client.DB.WithContext(ctx).Where("symbol = ? AND code = ?", key, tf).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("timeframe %s of %w", tf, candle.NotFound(key))
	}
	if err != nil {
		return nil, dbError(err)
	}
	return row.Content, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
