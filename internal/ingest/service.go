// Package ingest acquires candle files from a local folder, a GitHub
// repository or the Yahoo chart API and persists them as symbols.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"

	"candlestore/internal/progress"
	"candlestore/pkg/candle"
	"candlestore/pkg/candlefile"
	"candlestore/pkg/github"
	"candlestore/pkg/storage"
	"candlestore/pkg/timeframe"
	"candlestore/pkg/yahoo"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// symbolName restricts names chosen by the caller (quote save-as, rename target).
var symbolName = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// ValidSymbolName reports whether s may be used as a new symbol name.
func ValidSymbolName(s string) bool { return symbolName.MatchString(s) }

// RepoClient lists and downloads repository files.
type RepoClient interface {
	ListContents(ctx context.Context, owner, repo, path, branch string) ([]github.Content, error)
	Download(ctx context.Context, url string) ([]byte, error)
}

// ChartClient returns the candles of one timeframe of a ticker.
type ChartClient interface {
	Candles(ctx context.Context, ticker string, code timeframe.Code, start, end time.Time) ([]candle.Candle, error)
}

// Service runs the import and symbol management operations.
type Service struct {
	store    storage.Store
	repos    RepoClient
	charts   ChartClient
	locks    *storage.KeyLocker
	reporter progress.Reporter
	logger   *zap.Logger

	stagingDir    string
	layout        candlefile.Layout
	defaultBranch string
	now           func() time.Time
}

type Option func(*Service)

func WithRepoClient(c RepoClient) Option {
	return func(s *Service) { s.repos = c }
}

func WithChartClient(c ChartClient) Option {
	return func(s *Service) { s.charts = c }
}

func WithReporter(r progress.Reporter) Option {
	return func(s *Service) { s.reporter = r }
}

// WithStagingDir sets the parent of per-operation staging directories.
func WithStagingDir(dir string) Option {
	return func(s *Service) { s.stagingDir = dir }
}

func WithLayout(l candlefile.Layout) Option {
	return func(s *Service) { s.layout = l }
}

func WithDefaultBranch(branch string) Option {
	return func(s *Service) { s.defaultBranch = branch }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a service over store. Clients default to the public
// GitHub and Yahoo endpoints.
func NewService(store storage.Store, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		store:         store,
		repos:         github.NewClient(),
		charts:        yahoo.NewClient(),
		locks:         storage.NewKeyLocker(),
		reporter:      progress.Nop{},
		logger:        logger,
		stagingDir:    os.TempDir(),
		layout:        candlefile.LayoutAuto,
		defaultBranch: github.DefaultBranch,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// Summary is the outcome of an import.
type Summary struct {
	Operation           string   `json:"operation"`
	SymbolsProcessed    []string `json:"symbols_processed"`
	SymbolsSkipped      []string `json:"symbols_skipped"`
	TimeframesProcessed []string `json:"timeframes_processed"`
	TotalTimeframes     int      `json:"total_timeframes"`
	TotalCandles        int      `json:"total_candles"`
	Message             string   `json:"message"`
}

func newSummary(op string) *Summary {
	return &Summary{
		Operation:           op,
		SymbolsProcessed:    []string{},
		SymbolsSkipped:      []string{},
		TimeframesProcessed: []string{},
	}
}

func (sum *Summary) add(rec *candle.SymbolRecord) {
	sum.SymbolsProcessed = append(sum.SymbolsProcessed, rec.Symbol)
	sum.TimeframesProcessed = append(sum.TimeframesProcessed, rec.Codes()...)
	sum.TotalTimeframes += len(rec.Timeframes)
	sum.TotalCandles += rec.TotalCandles
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// staged is one timeframe file ready to be committed.
type staged struct {
	token string
	path  string
	count int
}

// commit persists the staged rows and the assembled record. The caller holds
// the symbol lock and has checked that the symbol does not exist; on failure
// whatever was written is removed again.
func (s *Service) commit(ctx context.Context, symbol string, files []staged) (rec *candle.SymbolRecord, err error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("symbol '%s': %w", symbol, candle.ErrNoValidTimeframes)
	}

	written := false
	defer func() {
		if err != nil && written {
			if derr := s.store.Delete(context.WithoutCancel(ctx), symbol); derr != nil && !errors.Is(derr, candle.ErrNotFound) {
				s.logger.Warn("failed to clean up partial import", zap.String("symbol", symbol), zap.Error(derr))
			}
		}
	}()

	tfs := make([]candle.TimeframeRecord, 0, len(files))
	for _, f := range files {
		content, err := os.ReadFile(f.path)
		if err != nil {
			return nil, fmt.Errorf("%w: read staged %s: %w", candle.ErrIO, f.path, err)
		}
		code, _ := timeframe.Canonicalize(f.token)
		written = true
		loc, err := s.store.PutCandles(ctx, symbol, string(code), content)
		if err != nil {
			return nil, fmt.Errorf("store %s %s: %w", symbol, code, err)
		}
		tfs = append(tfs, candle.NewTimeframe(f.token, f.count, loc))
	}

	rec, err = candle.Assemble(symbol, tfs, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.store.Put(ctx, rec); err != nil {
		return nil, fmt.Errorf("save %s: %w", symbol, err)
	}
	return rec, nil
}

// claim locks symbol and fails when it is already stored. The returned func
// releases the lock.
func (s *Service) claim(ctx context.Context, symbol string) (func(), error) {
	unlock := s.locks.Lock(symbol)
	exists, err := s.store.Exists(ctx, symbol)
	if err != nil {
		unlock()
		return nil, err
	}
	if exists {
		unlock()
		return nil, candle.AlreadyExists(symbol)
	}
	return unlock, nil
}

func (s *Service) report(op string, kind progress.Kind, symbol, tf string, candles int, msg string) {
	s.reporter.Report(progress.Event{
		Operation: op,
		Kind:      kind,
		Symbol:    symbol,
		Timeframe: tf,
		Candles:   candles,
		Message:   msg,
		Time:      s.now().UTC(),
	})
}

func newOperationID() string { return uuid.NewString() }

// ListSymbols returns every stored symbol sorted by name.
func (s *Service) ListSymbols(ctx context.Context) ([]candle.SymbolRecord, error) {
	return s.store.List(ctx)
}

func (s *Service) GetSymbol(ctx context.Context, symbol string) (*candle.SymbolRecord, error) {
	return s.store.Get(ctx, symbol)
}

// Candles returns the stored rows of one timeframe.
func (s *Service) Candles(ctx context.Context, symbol, code string) ([]byte, error) {
	c, _ := timeframe.Canonicalize(code)
	return s.store.Candles(ctx, symbol, string(c))
}

func (s *Service) DeleteSymbol(ctx context.Context, symbol string) error {
	key, err := storage.Key(symbol)
	if err != nil {
		return err
	}
	defer s.locks.Lock(key)()

	if err := s.store.Delete(ctx, key); err != nil {
		return err
	}
	s.logger.Info("deleted symbol", zap.String("symbol", key))
	return nil
}

// RenameSymbol moves a symbol to a new name matching [A-Za-z0-9_]+.
func (s *Service) RenameSymbol(ctx context.Context, from, to string) (*candle.SymbolRecord, error) {
	if !ValidSymbolName(to) {
		return nil, candle.InvalidInput("symbol name can only contain letters, numbers, and underscores: %q", to)
	}
	src, dst, err := storage.Keys(from, to)
	if err != nil {
		return nil, err
	}
	defer s.locks.Lock(src, dst)()

	if err := s.store.Rename(ctx, src, dst); err != nil {
		return nil, err
	}
	s.logger.Info("renamed symbol", zap.String("from", src), zap.String("to", dst))
	return s.store.Get(ctx, dst)
}
