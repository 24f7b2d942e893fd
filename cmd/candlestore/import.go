package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"candlestore/internal/ingest"

	"github.com/google/subcommands"
)

type localCmd struct{}

func (*localCmd) Name() string     { return "local" }
func (*localCmd) Synopsis() string { return "imports a folder of candle files as one symbol" }
func (*localCmd) Usage() string {
	return `candlestore local <folder>

Imports every .csv or .tsv file directly inside <folder>. The folder name is
the symbol and each file name (without extension) is the timeframe, e.g.
EURUSD/M1.csv. Every file is validated; the first invalid file aborts the
import and nothing is stored.
`
}

func (*localCmd) SetFlags(*flag.FlagSet) {}

func (*localCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: local takes exactly one folder")
		return subcommands.ExitUsageError
	}
	return run(ctx, consoleReporter(os.Stderr), func(a *app) (any, error) {
		return a.svc.ImportLocal(ctx, f.Arg(0))
	})
}

type repoCmd struct {
	branch    string
	structure string
	symbol    string
}

func (*repoCmd) Name() string     { return "repo" }
func (*repoCmd) Synopsis() string { return "imports candle files from a public GitHub repository" }
func (*repoCmd) Usage() string {
	return `candlestore repo [-branch main] [-structure single|multi] [-symbol NAME] <repo-url>

Downloads <TIMEFRAME>.csv files from a public GitHub repository.

  single: the files sit at the repository root; the symbol is -symbol or the
          repository name.
  multi:  one folder per symbol. With -symbol only that folder is imported,
          otherwise every folder is; existing symbols are skipped.

Files whose name is not a known timeframe (M1 ... MN1) are skipped.
`
}

func (c *repoCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.branch, "branch", "", "Branch to read (default from config, usually main)")
	f.StringVar(&c.structure, "structure", ingest.StructureSingle, "Repository structure: single or multi")
	f.StringVar(&c.symbol, "symbol", "", "Symbol name (single) or folder to import (multi)")
}

func (c *repoCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: repo takes exactly one repository URL")
		return subcommands.ExitUsageError
	}
	return run(ctx, consoleReporter(os.Stderr), func(a *app) (any, error) {
		return a.svc.ImportRepository(ctx, ingest.RepositoryRequest{
			URL:       f.Arg(0),
			Branch:    c.branch,
			Structure: c.structure,
			Symbol:    c.symbol,
		})
	})
}

type quoteCmd struct {
	saveAs     string
	start      string
	end        string
	timeframes string
}

func (*quoteCmd) Name() string     { return "quote" }
func (*quoteCmd) Synopsis() string { return "downloads candles from the Yahoo chart API" }
func (*quoteCmd) Usage() string {
	return `candlestore quote -save-as NAME -start YYYY-MM-DD -end YYYY-MM-DD [-timeframes M1,H1,D1] <ticker>

Downloads each timeframe of <ticker> (e.g. EURUSD=X, AAPL) and stores the
ones that returned candles under NAME. Supported timeframes: M1 M2 M5 M15
M30 H1 H4 D1 W1 MN1.
`
}

func (c *quoteCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.saveAs, "save-as", "", "Symbol name to store the candles under (letters, digits, underscore)")
	f.StringVar(&c.start, "start", "", "First day, YYYY-MM-DD (UTC)")
	f.StringVar(&c.end, "end", "", "Last day, YYYY-MM-DD (UTC)")
	f.StringVar(&c.timeframes, "timeframes", "D1", "Comma separated timeframes")
}

func (c *quoteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: quote takes exactly one ticker")
		return subcommands.ExitUsageError
	}
	return run(ctx, consoleReporter(os.Stderr), func(a *app) (any, error) {
		return a.svc.ImportQuotes(ctx, ingest.QuoteRequest{
			Ticker:     f.Arg(0),
			SaveAs:     c.saveAs,
			Start:      c.start,
			End:        c.end,
			Timeframes: splitList(c.timeframes),
		})
	})
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
