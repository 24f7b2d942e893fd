package postgres

import "time"

// SymbolDocument holds one SymbolRecord as JSON, keyed by symbol.
type SymbolDocument struct {
	Symbol string `gorm:"primaryKey;type:text"`

	Document []byte `gorm:"type:jsonb;not null"`

	TotalCandles   int       `gorm:"not null"`
	TimeframeCount int       `gorm:"not null"`
	UploadedAt     time.Time `gorm:"not null;index:idx_symbol_uploaded_at"`

	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName overrides the default table name for GORM.
func (SymbolDocument) TableName() string {
	return "symbol_document"
}

// CandleFile holds the raw rows of one timeframe of a symbol.
type CandleFile struct {
	Symbol string `gorm:"primaryKey;type:text"`
	Code   string `gorm:"primaryKey;type:varchar(16)"`

	Content []byte `gorm:"type:bytea;not null"`

	RecordedAt time.Time `gorm:"autoCreateTime"`
}

// TableName overrides the default table name for GORM.
func (CandleFile) TableName() string {
	return "candle_file"
}
