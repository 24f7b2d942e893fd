package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"candlestore/internal/progress"
	"candlestore/pkg/candle"
	"candlestore/pkg/candlefile"
	"candlestore/pkg/storage"
	"candlestore/pkg/timeframe"

	"go.uber.org/zap"
)

// candleExts are the file extensions picked up from a local folder.
var candleExts = map[string]bool{".csv": true, ".tsv": true}

// ImportLocal imports every candle file directly inside dir as the symbol
// named after dir. Each file becomes the timeframe named after its base name.
// The first invalid file aborts the import and nothing is stored.
func (s *Service) ImportLocal(ctx context.Context, dir string) (*Summary, error) {
	const op = "local"

	info, err := os.Stat(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("folder %q does not exist: %w", dir, candle.ErrNotFound)
	case err != nil:
		return nil, fmt.Errorf("%w: %w", candle.ErrIO, err)
	case !info.IsDir():
		return nil, fmt.Errorf("path %q is not a directory: %w", dir, candle.ErrNotFound)
	}

	symbol, err := storage.Key(filepath.Base(filepath.Clean(dir)))
	if err != nil {
		return nil, err
	}

	unlock, err := s.claim(ctx, symbol)
	if err != nil {
		return nil, err
	}
	defer unlock()

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read directory: %w", candle.ErrIO, err)
	}

	opID := newOperationID()
	s.report(opID, progress.Started, symbol, "", 0, dir)

	var files []staged
	seen := make(map[timeframe.Code]string)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		stem := strings.TrimSuffix(e.Name(), ext)
		if !candleExts[strings.ToLower(ext)] || stem == "" {
			continue
		}
		token := strings.ToUpper(stem)
		code, _ := timeframe.Canonicalize(token)
		if prev, ok := seen[code]; ok {
			return nil, candle.InvalidInput("files %s and %s both map to timeframe %s", prev, e.Name(), code)
		}
		seen[code] = e.Name()
		path := filepath.Join(dir, e.Name())

		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: error in %s: %w", candle.ErrIO, e.Name(), err)
		}
		_, n, err := candlefile.Inspect(content, s.layout)
		if err != nil {
			s.report(opID, progress.TimeframeFailed, symbol, token, 0, err.Error())
			return nil, fmt.Errorf("error in %s: %w", e.Name(), err)
		}

		s.logger.Info("validated candle file",
			zap.String("symbol", symbol), zap.String("timeframe", token), zap.Int("candles", n))
		s.report(opID, progress.TimeframeDone, symbol, token, n, "")
		files = append(files, staged{token: token, path: path, count: n})
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no valid CSV files found in the folder %s", candle.ErrNoData, dir)
	}

	rec, err := s.commit(ctx, symbol, files)
	if err != nil {
		s.report(opID, progress.SymbolFailed, symbol, "", 0, err.Error())
		return nil, err
	}

	sum := newSummary(op)
	sum.add(rec)
	sum.Message = fmt.Sprintf("Successfully processed %s with %d total candles",
		plural(sum.TotalTimeframes, "timeframe"), sum.TotalCandles)

	s.report(opID, progress.SymbolDone, symbol, "", rec.TotalCandles, "")
	s.report(opID, progress.Finished, "", "", sum.TotalCandles, sum.Message)
	s.logger.Info("imported local folder", zap.String("symbol", symbol), zap.Int("candles", rec.TotalCandles))
	return sum, nil
}
