package candlefile

import (
	"bytes"
	"encoding/csv"
	"io"
	"strconv"

	"candlestore/pkg/candle"

	"github.com/shopspring/decimal"
)

// Header is the header synthesized for candles fetched from a quote API.
var Header = []string{"timestamp", "open", "high", "low", "close", "volume"}

// WriteCandles writes candles as comma separated rows under Header.
func WriteCandles(w io.Writer, candles []candle.Candle) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, c := range candles {
		rec := []string{
			strconv.FormatInt(c.Time, 10),
			formatFloat(c.Open),
			formatFloat(c.High),
			formatFloat(c.Low),
			formatFloat(c.Close),
			formatFloat(c.Volume),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// EncodeCandles is WriteCandles into a byte slice.
func EncodeCandles(candles []candle.Candle) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCandles(&buf, candles); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatFloat(f float64) string {
	return decimal.NewFromFloat(f).String()
}
