package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"candlestore/internal/progress"
	"candlestore/pkg/candle"
	"candlestore/pkg/candlefile"
	"candlestore/pkg/github"
	"candlestore/pkg/storage"
	"candlestore/pkg/storage/file"
	"candlestore/pkg/storage/memory"
	"candlestore/pkg/timeframe"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func rows(delim string, header []string, n int) []byte {
	var b strings.Builder
	b.WriteString(strings.Join(header, delim) + "\n")
	for i := 0; i < n; i++ {
		fields := []string{fmt.Sprint(1700000000 + i*60), "1.1000", "1.1010", "1.0990", "1.1005"}
		for len(fields) < len(header) {
			fields = append(fields, "42")
		}
		b.WriteString(strings.Join(fields, delim) + "\n")
	}
	return []byte(b.String())
}

var (
	tabHeader   = []string{"time", "open", "high", "low", "close", "volume"}
	commaHeader = []string{"time", "open", "high", "low", "close"}
)

// fakeRepo serves listings by path and file bodies by download url.
type fakeRepo struct {
	listings map[string][]github.Content
	files    map[string][]byte
	listed   []string
}

func (f *fakeRepo) ListContents(_ context.Context, _, _, path, _ string) ([]github.Content, error) {
	f.listed = append(f.listed, path)
	c, ok := f.listings[path]
	if !ok {
		return nil, fmt.Errorf("%w: GitHub API error: 404 Not Found", candle.ErrNetwork)
	}
	return c, nil
}

func (f *fakeRepo) Download(_ context.Context, url string) ([]byte, error) {
	b, ok := f.files[url]
	if !ok {
		return nil, fmt.Errorf("%w: failed to download file: 404 Not Found", candle.ErrNetwork)
	}
	return b, nil
}

func csvEntry(dir, name string) github.Content {
	p := strings.TrimPrefix(dir+"/"+name, "/")
	return github.Content{Name: name, Path: p, Type: "file", DownloadURL: "https://raw.test/" + p}
}

// fakeCharts returns canned candles per timeframe.
type fakeCharts struct {
	candles   map[timeframe.Code][]candle.Candle
	calls     int
	requested []timeframe.Code
}

func (f *fakeCharts) Candles(_ context.Context, _ string, code timeframe.Code, _, _ time.Time) ([]candle.Candle, error) {
	f.calls++
	f.requested = append(f.requested, code)
	c, ok := f.candles[code]
	if !ok || len(c) == 0 {
		return nil, fmt.Errorf("%w: no valid data points", candle.ErrNoCandles)
	}
	return c, nil
}

func newTestService(t *testing.T, store storage.Store, opts ...Option) *Service {
	t.Helper()
	opts = append([]Option{WithStagingDir(t.TempDir()), WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewService(store, zap.NewNop(), opts...)
}

func writeSymbolDir(t *testing.T, name string, files map[string][]byte) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for n, b := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), b, 0o644))
	}
	return dir
}

func seed(t *testing.T, store storage.Store, symbol string) {
	t.Helper()
	rec, err := candle.Assemble(symbol, []candle.TimeframeRecord{candle.NewTimeframe("D1", 5, "seed")}, fixedNow)
	require.NoError(t, err)
	require.NoError(t, store.Put(t.Context(), rec))
}

// go test -v --run TestImportLocal
func TestImportLocal(t *testing.T) {
	// Arrange
	store := memory.New()
	svc := newTestService(t, store)
	m1 := rows("\t", tabHeader, 100)
	dir := writeSymbolDir(t, "eurusd", map[string][]byte{
		"M1.csv":    m1,
		"H1.csv":    rows(",", commaHeader, 10),
		"notes.txt": []byte("ignored"),
	})
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))

	// Act
	sum, err := svc.ImportLocal(t.Context(), dir)

	// Assert
	require.NoError(t, err)
	require.Equal(t, []string{"EURUSD"}, sum.SymbolsProcessed)
	require.Equal(t, []string{"M1", "H1"}, sum.TimeframesProcessed)
	require.Equal(t, 110, sum.TotalCandles)
	require.Equal(t, "Successfully processed 2 timeframes with 110 total candles", sum.Message)

	rec, err := svc.GetSymbol(t.Context(), "eurusd")
	require.NoError(t, err)
	require.Equal(t, 110, rec.TotalCandles)
	require.Equal(t, []string{"M1", "H1"}, rec.Codes())
	require.Equal(t, "1 hour", rec.Timeframes[1].DisplayLabel)
	require.Equal(t, fixedNow, rec.UploadedAt)

	got, err := svc.Candles(t.Context(), "EURUSD", "m1")
	require.NoError(t, err)
	require.Equal(t, m1, got)
}

// go test -v --run TestImportLocalUnknownTimeframeKept
func TestImportLocalUnknownTimeframeKept(t *testing.T) {
	svc := newTestService(t, memory.New())
	dir := writeSymbolDir(t, "GOLD", map[string][]byte{
		"custom.TSV": rows("\t", tabHeader, 3),
		"d1.csv":     rows(",", commaHeader, 2),
	})

	sum, err := svc.ImportLocal(t.Context(), dir)
	require.NoError(t, err)
	require.Equal(t, []string{"D1", "CUSTOM"}, sum.TimeframesProcessed)
	require.Equal(t, "Successfully processed 2 timeframes with 5 total candles", sum.Message)
}

// go test -v --run TestImportLocalExistingUnchanged
func TestImportLocalExistingUnchanged(t *testing.T) {
	// Arrange
	root := t.TempDir()
	store, err := file.New(root, zap.NewNop())
	require.NoError(t, err)
	svc := newTestService(t, store)
	dir := writeSymbolDir(t, "EURUSD", map[string][]byte{"M1.csv": rows(",", commaHeader, 4)})

	_, err = svc.ImportLocal(t.Context(), dir)
	require.NoError(t, err)
	docPath := filepath.Join(root, "symbols", "EURUSD.json")
	before, err := os.ReadFile(docPath)
	require.NoError(t, err)

	// Act
	require.NoError(t, os.WriteFile(filepath.Join(dir, "H1.csv"), rows(",", commaHeader, 9), 0o644))
	_, err = svc.ImportLocal(t.Context(), dir)

	// Assert
	require.ErrorIs(t, err, candle.ErrAlreadyExists)
	after, err := os.ReadFile(docPath)
	require.NoError(t, err)
	require.Equal(t, before, after)
}

// go test -v --run TestImportLocalErrors
func TestImportLocalErrors(t *testing.T) {
	store := memory.New()
	svc := newTestService(t, store)

	_, err := svc.ImportLocal(t.Context(), filepath.Join(t.TempDir(), "missing"))
	require.ErrorIs(t, err, candle.ErrNotFound)

	notDir := filepath.Join(t.TempDir(), "file.csv")
	require.NoError(t, os.WriteFile(notDir, []byte("x"), 0o644))
	_, err = svc.ImportLocal(t.Context(), notDir)
	require.ErrorIs(t, err, candle.ErrNotFound)

	empty := writeSymbolDir(t, "EMPTY", map[string][]byte{"readme.md": []byte("hi")})
	_, err = svc.ImportLocal(t.Context(), empty)
	require.ErrorIs(t, err, candle.ErrNoData)

	bad := writeSymbolDir(t, "BAD", map[string][]byte{
		"M1.csv": rows(",", commaHeader, 3),
		"H1.csv": []byte("time,open,high,low,close\n1700000000,abc,1,1,1\n"),
	})
	_, err = svc.ImportLocal(t.Context(), bad)
	require.ErrorIs(t, err, candlefile.ErrInvalidPrice)
	require.Contains(t, err.Error(), "H1.csv")

	var fe *candlefile.FormatError
	require.True(t, errors.As(err, &fe))
	require.Equal(t, 2, fe.Row)
	require.Equal(t, 2, fe.Column)

	exists, err := store.Exists(t.Context(), "BAD")
	require.NoError(t, err)
	require.False(t, exists)
	_, err = store.Candles(t.Context(), "BAD", "M1")
	require.ErrorIs(t, err, candle.ErrNotFound)
}

func multiRepo() *fakeRepo {
	return &fakeRepo{
		listings: map[string][]github.Content{
			"": {
				{Name: "AAA", Path: "AAA", Type: "dir"},
				{Name: "BBB", Path: "BBB", Type: "dir"},
				{Name: "README.md", Path: "README.md", Type: "file"},
			},
			"AAA": {csvEntry("AAA", "M1.csv")},
			"BBB": {
				csvEntry("BBB", "m1.csv"),
				csvEntry("BBB", "H4.CSV"),
				csvEntry("BBB", "X9.csv"),
				{Name: "notes.txt", Path: "BBB/notes.txt", Type: "file"},
			},
		},
		files: map[string][]byte{
			"https://raw.test/AAA/M1.csv": rows(",", commaHeader, 1),
			"https://raw.test/BBB/m1.csv": rows(",", commaHeader, 20),
			"https://raw.test/BBB/H4.CSV": append(rows(",", commaHeader, 5), '\n', '\n'),
			"https://raw.test/BBB/X9.csv": rows(",", commaHeader, 7),
		},
	}
}

// go test -v --run TestImportRepositoryMultiSkipsExisting
func TestImportRepositoryMultiSkipsExisting(t *testing.T) {
	// Arrange
	store := memory.New()
	seed(t, store, "AAA")
	repo := multiRepo()
	svc := newTestService(t, store, WithRepoClient(repo))

	// Act
	sum, err := svc.ImportRepository(t.Context(), RepositoryRequest{
		URL:       "https://github.com/owner/candles",
		Structure: StructureMulti,
	})

	// Assert
	require.NoError(t, err)
	require.Equal(t, []string{"BBB"}, sum.SymbolsProcessed)
	require.Equal(t, []string{"AAA"}, sum.SymbolsSkipped)
	require.Equal(t, []string{"M1", "H4"}, sum.TimeframesProcessed)
	require.Equal(t, 25, sum.TotalCandles)
	require.Equal(t, "Successfully downloaded 1 symbol with 2 total timeframes", sum.Message)
	require.NotContains(t, repo.listed, "AAA")

	aaa, err := store.Get(t.Context(), "AAA")
	require.NoError(t, err)
	require.Equal(t, []string{"D1"}, aaa.Codes())
}

// go test -v --run TestImportRepositoryMultiContinuesPastFailure
func TestImportRepositoryMultiContinuesPastFailure(t *testing.T) {
	repo := multiRepo()
	repo.listings[""] = append(repo.listings[""], github.Content{Name: "CCC", Path: "CCC", Type: "dir"})
	svc := newTestService(t, memory.New(), WithRepoClient(repo))

	sum, err := svc.ImportRepository(t.Context(), RepositoryRequest{URL: "owner/candles", Structure: StructureMulti})
	require.NoError(t, err)
	require.Equal(t, []string{"AAA", "BBB"}, sum.SymbolsProcessed)
	require.Empty(t, sum.SymbolsSkipped)
	require.Equal(t, 3, sum.TotalTimeframes)
}

// go test -v --run TestImportRepositoryMultiNothingImported
func TestImportRepositoryMultiNothingImported(t *testing.T) {
	store := memory.New()
	seed(t, store, "AAA")
	seed(t, store, "BBB")
	svc := newTestService(t, store, WithRepoClient(multiRepo()))

	_, err := svc.ImportRepository(t.Context(), RepositoryRequest{URL: "owner/candles", Structure: StructureMulti})
	require.ErrorIs(t, err, candle.ErrNoData)
}

// go test -v --run TestImportRepositorySingle
func TestImportRepositorySingle(t *testing.T) {
	repo := &fakeRepo{
		listings: map[string][]github.Content{"": {csvEntry("", "D1.csv"), csvEntry("", "W1.csv")}},
		files: map[string][]byte{
			"https://raw.test/D1.csv": rows(",", commaHeader, 30),
			"https://raw.test/W1.csv": rows(",", commaHeader, 4),
		},
	}
	store := memory.New()
	svc := newTestService(t, store, WithRepoClient(repo))

	sum, err := svc.ImportRepository(t.Context(), RepositoryRequest{
		URL:       "github.com/owner/btcusd.git/",
		Structure: StructureSingle,
	})
	require.NoError(t, err)
	require.Equal(t, []string{"BTCUSD"}, sum.SymbolsProcessed)
	require.Equal(t, 34, sum.TotalCandles)

	rec, err := store.Get(t.Context(), "BTCUSD")
	require.NoError(t, err)
	require.Equal(t, []string{"D1", "W1"}, rec.Codes())
}

// go test -v --run TestImportRepositoryFailsFastWhenExisting
func TestImportRepositoryFailsFastWhenExisting(t *testing.T) {
	store := memory.New()
	seed(t, store, "AAA")
	repo := multiRepo()
	svc := newTestService(t, store, WithRepoClient(repo))

	_, err := svc.ImportRepository(t.Context(), RepositoryRequest{URL: "owner/candles", Structure: StructureSingle, Symbol: "aaa"})
	require.ErrorIs(t, err, candle.ErrAlreadyExists)

	_, err = svc.ImportRepository(t.Context(), RepositoryRequest{URL: "owner/candles", Structure: StructureMulti, Symbol: "AAA"})
	require.ErrorIs(t, err, candle.ErrAlreadyExists)
	require.Empty(t, repo.listed)
}

// go test -v --run TestImportRepositoryInvalidRequest
func TestImportRepositoryInvalidRequest(t *testing.T) {
	svc := newTestService(t, memory.New(), WithRepoClient(multiRepo()))

	_, err := svc.ImportRepository(t.Context(), RepositoryRequest{URL: "owner/candles", Structure: "flat"})
	require.ErrorIs(t, err, candle.ErrInvalidInput)

	_, err = svc.ImportRepository(t.Context(), RepositoryRequest{URL: "https://github.com/", Structure: StructureSingle})
	require.ErrorIs(t, err, candle.ErrInvalidInput)
}

// go test -v --run TestImportRepositoryNoValidTimeframes
func TestImportRepositoryNoValidTimeframes(t *testing.T) {
	repo := &fakeRepo{
		listings: map[string][]github.Content{"": {csvEntry("", "daily.csv"), csvEntry("", "M5.csv")}},
		files:    map[string][]byte{},
	}
	store := memory.New()
	svc := newTestService(t, store, WithRepoClient(repo))

	_, err := svc.ImportRepository(t.Context(), RepositoryRequest{URL: "owner/x", Structure: StructureSingle})
	require.ErrorIs(t, err, candle.ErrNoValidTimeframes)

	repo.listings[""] = []github.Content{{Name: "README.md", Path: "README.md", Type: "file"}}
	_, err = svc.ImportRepository(t.Context(), RepositoryRequest{URL: "owner/x", Structure: StructureSingle})
	require.ErrorIs(t, err, candle.ErrNoData)

	exists, err := store.Exists(t.Context(), "X")
	require.NoError(t, err)
	require.False(t, exists)
}

// go test -v --run TestImportRepositoryRemovesStaging
func TestImportRepositoryRemovesStaging(t *testing.T) {
	staging := t.TempDir()
	svc := newTestService(t, memory.New(), WithRepoClient(multiRepo()), WithStagingDir(staging))

	_, err := svc.ImportRepository(t.Context(), RepositoryRequest{URL: "owner/candles", Structure: StructureMulti})
	require.NoError(t, err)

	entries, err := os.ReadDir(staging)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func quoteCandles(n int) []candle.Candle {
	out := make([]candle.Candle, n)
	for i := range out {
		out[i] = candle.Candle{Time: 1704067200 + int64(i)*60, Open: 1.1, High: 1.2, Low: 1.0, Close: 1.15, Volume: 10}
	}
	return out
}

// go test -v --run TestImportQuotes
func TestImportQuotes(t *testing.T) {
	// Arrange
	store := memory.New()
	charts := &fakeCharts{candles: map[timeframe.Code][]candle.Candle{timeframe.M1: quoteCandles(3)}}
	svc := newTestService(t, store, WithChartClient(charts))

	// Act
	sum, err := svc.ImportQuotes(t.Context(), QuoteRequest{
		Ticker:     "EURUSD=X",
		SaveAs:     "eur_usd",
		Start:      "2024-01-01",
		End:        "2024-01-02",
		Timeframes: []string{"m1", "W1"},
	})

	// Assert
	require.NoError(t, err)
	require.Equal(t, []string{"EUR_USD"}, sum.SymbolsProcessed)
	require.Equal(t, []string{"M1"}, sum.TimeframesProcessed)
	require.Equal(t, 3, sum.TotalCandles)
	require.Equal(t, "Successfully downloaded 1 timeframe with 3 total candles", sum.Message)
	require.Equal(t, 2, charts.calls)

	b, err := store.Candles(t.Context(), "EUR_USD", "M1")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(b), "timestamp,open,high,low,close,volume\n"))
	require.Equal(t, 3, candlefile.CountLines(b))
}

// go test -v --run TestImportQuotesValidation
func TestImportQuotesValidation(t *testing.T) {
	store := memory.New()
	seed(t, store, "TAKEN")
	charts := &fakeCharts{}
	svc := newTestService(t, store, WithChartClient(charts))

	base := QuoteRequest{Ticker: "AAPL", SaveAs: "AAPL", Start: "2024-01-01", End: "2024-02-01", Timeframes: []string{"D1"}}
	tests := []struct {
		name   string
		mutate func(r *QuoteRequest)
		want   error
	}{
		{"empty save-as", func(r *QuoteRequest) { r.SaveAs = "" }, candle.ErrInvalidInput},
		{"bad save-as", func(r *QuoteRequest) { r.SaveAs = "EUR/USD" }, candle.ErrInvalidInput},
		{"bad date", func(r *QuoteRequest) { r.Start = "01/01/2024" }, candle.ErrInvalidInput},
		{"end before start", func(r *QuoteRequest) { r.End = "2023-12-31" }, candle.ErrInvalidInput},
		{"no timeframes", func(r *QuoteRequest) { r.Timeframes = nil }, candle.ErrInvalidInput},
		{"existing", func(r *QuoteRequest) { r.SaveAs = "taken" }, candle.ErrAlreadyExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base
			tt.mutate(&req)
			_, err := svc.ImportQuotes(t.Context(), req)
			require.ErrorIs(t, err, tt.want)
		})
	}
	require.Zero(t, charts.calls)
}

// go test -v --run TestImportQuotesNoneSucceed
func TestImportQuotesNoneSucceed(t *testing.T) {
	store := memory.New()
	svc := newTestService(t, store, WithChartClient(&fakeCharts{}))

	_, err := svc.ImportQuotes(t.Context(), QuoteRequest{
		Ticker: "AAPL", SaveAs: "AAPL", Start: "2024-01-01", End: "2024-01-05", Timeframes: []string{"D1", "H2"},
	})
	require.ErrorIs(t, err, candle.ErrNoValidTimeframes)

	exists, err := store.Exists(t.Context(), "AAPL")
	require.NoError(t, err)
	require.False(t, exists)
}

// go test -v --run TestProgressEvents
func TestProgressEvents(t *testing.T) {
	var events []progress.Event
	svc := newTestService(t, memory.New(),
		WithRepoClient(multiRepo()),
		WithReporter(progress.Func(func(e progress.Event) { events = append(events, e) })))

	_, err := svc.ImportRepository(t.Context(), RepositoryRequest{URL: "owner/candles", Structure: StructureMulti, Symbol: "BBB"})
	require.NoError(t, err)

	require.NotEmpty(t, events)
	require.Equal(t, progress.Started, events[0].Kind)
	require.Equal(t, progress.Finished, events[len(events)-1].Kind)

	kinds := map[progress.Kind]int{}
	for _, e := range events {
		kinds[e.Kind]++
		require.Equal(t, events[0].Operation, e.Operation)
	}
	require.Equal(t, 2, kinds[progress.TimeframeDone])
	require.Equal(t, 1, kinds[progress.TimeframeSkip])
	require.Equal(t, 1, kinds[progress.SymbolDone])
}

// go test -v --run TestRenameAndDelete
func TestRenameAndDelete(t *testing.T) {
	store := memory.New()
	svc := newTestService(t, store)
	seed(t, store, "OLD")
	seed(t, store, "OTHER")

	_, err := svc.RenameSymbol(t.Context(), "OLD", "bad name")
	require.ErrorIs(t, err, candle.ErrInvalidInput)

	_, err = svc.RenameSymbol(t.Context(), "OLD", "other")
	require.ErrorIs(t, err, candle.ErrAlreadyExists)

	rec, err := svc.RenameSymbol(t.Context(), "old", "new_1")
	require.NoError(t, err)
	require.Equal(t, "NEW_1", rec.Symbol)

	_, err = svc.GetSymbol(t.Context(), "OLD")
	require.ErrorIs(t, err, candle.ErrNotFound)

	require.NoError(t, svc.DeleteSymbol(t.Context(), "new_1"))
	require.ErrorIs(t, svc.DeleteSymbol(t.Context(), "NEW_1"), candle.ErrNotFound)

	list, err := svc.ListSymbols(t.Context())
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "OTHER", list[0].Symbol)
}

// go test -v --run TestImportLocalDuplicateTimeframe
func TestImportLocalDuplicateTimeframe(t *testing.T) {
	// Arrange
	store := memory.New()
	svc := newTestService(t, store)
	dir := writeSymbolDir(t, "DUP", map[string][]byte{
		"M1.csv": rows(",", commaHeader, 100),
		"m1.tsv": rows("\t", tabHeader, 10),
	})

	// Act
	_, err := svc.ImportLocal(t.Context(), dir)

	// Assert
	require.ErrorIs(t, err, candle.ErrInvalidInput)
	require.Contains(t, err.Error(), "M1.csv")
	require.Contains(t, err.Error(), "m1.tsv")

	exists, err := store.Exists(t.Context(), "DUP")
	require.NoError(t, err)
	require.False(t, exists)
	_, err = store.Candles(t.Context(), "DUP", "M1")
	require.ErrorIs(t, err, candle.ErrNotFound)
}

// go test -v --run TestImportLocalSkipsEmptyStem
func TestImportLocalSkipsEmptyStem(t *testing.T) {
	store := memory.New()
	svc := newTestService(t, store)
	dir := writeSymbolDir(t, "DOT", map[string][]byte{
		"M1.csv": rows(",", commaHeader, 3),
		".csv":   []byte("not candles"),
	})

	sum, err := svc.ImportLocal(t.Context(), dir)
	require.NoError(t, err)
	require.Equal(t, []string{"M1"}, sum.TimeframesProcessed)
	require.Equal(t, 3, sum.TotalCandles)
}

// go test -v --run TestImportRepositorySkipsDuplicateTimeframe
func TestImportRepositorySkipsDuplicateTimeframe(t *testing.T) {
	repo := &fakeRepo{
		listings: map[string][]github.Content{"": {csvEntry("", "M1.csv"), csvEntry("", "m1.csv")}},
		files: map[string][]byte{
			"https://raw.test/M1.csv": rows(",", commaHeader, 8),
			"https://raw.test/m1.csv": rows(",", commaHeader, 2),
		},
	}
	store := memory.New()
	svc := newTestService(t, store, WithRepoClient(repo))

	sum, err := svc.ImportRepository(t.Context(), RepositoryRequest{URL: "owner/gbpusd", Structure: StructureSingle})
	require.NoError(t, err)
	require.Equal(t, []string{"M1"}, sum.TimeframesProcessed)
	require.Equal(t, 8, sum.TotalCandles)

	b, err := store.Candles(t.Context(), "GBPUSD", "M1")
	require.NoError(t, err)
	require.Equal(t, rows(",", commaHeader, 8), b)
}

// go test -v --run TestImportQuotesFetchesInCanonicalOrder
func TestImportQuotesFetchesInCanonicalOrder(t *testing.T) {
	charts := &fakeCharts{candles: map[timeframe.Code][]candle.Candle{
		timeframe.M1: {{Time: 1704067200}},
		timeframe.D1: {{Time: 1704067200}},
	}}
	svc := newTestService(t, memory.New(), WithChartClient(charts))

	sum, err := svc.ImportQuotes(t.Context(), QuoteRequest{
		Ticker: "EURUSD=X", SaveAs: "EURUSD", Start: "2024-01-01", End: "2024-01-31",
		Timeframes: []string{"D1", "Q7", "m1", "M1"},
	})
	require.NoError(t, err)
	require.Equal(t, []timeframe.Code{timeframe.M1, timeframe.D1, "Q7"}, charts.requested)
	require.Equal(t, []string{"M1", "D1"}, sum.TimeframesProcessed)
}
