package ingest

import (
	"fmt"
	"os"
	"path/filepath"

	"candlestore/pkg/candle"

	"github.com/google/uuid"
)

// staging is a scratch directory owned by one operation.
type staging struct {
	dir string
}

func (s *Service) newStaging() (*staging, error) {
	dir := filepath.Join(s.stagingDir, "candlestore-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create staging directory: %w", candle.ErrIO, err)
	}
	return &staging{dir: dir}, nil
}

// write stores content as <dir>/<symbol>/<token>.csv and returns the path.
func (st *staging) write(symbol, token string, content []byte) (string, error) {
	dir := filepath.Join(st.dir, symbol)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create staging directory: %w", candle.ErrIO, err)
	}
	path := filepath.Join(dir, token+".csv")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("%w: write %s: %w", candle.ErrIO, path, err)
	}
	return path, nil
}

func (st *staging) remove() error {
	return os.RemoveAll(st.dir)
}
