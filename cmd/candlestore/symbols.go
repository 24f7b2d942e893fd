package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"candlestore/internal/progress"

	"github.com/google/subcommands"
)

type listCmd struct{}

func (*listCmd) Name() string           { return "list" }
func (*listCmd) Synopsis() string       { return "lists stored symbols" }
func (*listCmd) Usage() string          { return "candlestore list\n" }
func (*listCmd) SetFlags(*flag.FlagSet) {}
func (*listCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, progress.Nop{}, func(a *app) (any, error) {
		return a.svc.ListSymbols(ctx)
	})
}

type showCmd struct{}

func (*showCmd) Name() string           { return "show" }
func (*showCmd) Synopsis() string       { return "prints the document of one symbol" }
func (*showCmd) Usage() string          { return "candlestore show <symbol>\n" }
func (*showCmd) SetFlags(*flag.FlagSet) {}
func (*showCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: show takes exactly one symbol")
		return subcommands.ExitUsageError
	}
	return run(ctx, progress.Nop{}, func(a *app) (any, error) {
		return a.svc.GetSymbol(ctx, f.Arg(0))
	})
}

type candlesCmd struct{}

func (*candlesCmd) Name() string           { return "candles" }
func (*candlesCmd) Synopsis() string       { return "prints the stored rows of one timeframe" }
func (*candlesCmd) Usage() string          { return "candlestore candles <symbol> <timeframe>\n" }
func (*candlesCmd) SetFlags(*flag.FlagSet) {}
func (*candlesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "Error: candles takes a symbol and a timeframe")
		return subcommands.ExitUsageError
	}
	return run(ctx, progress.Nop{}, func(a *app) (any, error) {
		b, err := a.svc.Candles(ctx, f.Arg(0), f.Arg(1))
		if err != nil {
			return nil, err
		}
		_, err = os.Stdout.Write(b)
		return nil, err
	})
}

type deleteCmd struct{}

func (*deleteCmd) Name() string           { return "delete" }
func (*deleteCmd) Synopsis() string       { return "deletes a symbol and its candles" }
func (*deleteCmd) Usage() string          { return "candlestore delete <symbol>\n" }
func (*deleteCmd) SetFlags(*flag.FlagSet) {}
func (*deleteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: delete takes exactly one symbol")
		return subcommands.ExitUsageError
	}
	return run(ctx, progress.Nop{}, func(a *app) (any, error) {
		return nil, a.svc.DeleteSymbol(ctx, f.Arg(0))
	})
}

type renameCmd struct{}

func (*renameCmd) Name() string           { return "rename" }
func (*renameCmd) Synopsis() string       { return "renames a symbol" }
func (*renameCmd) Usage() string          { return "candlestore rename <symbol> <new-name>\n" }
func (*renameCmd) SetFlags(*flag.FlagSet) {}
func (*renameCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "Error: rename takes the current and the new symbol name")
		return subcommands.ExitUsageError
	}
	return run(ctx, progress.Nop{}, func(a *app) (any, error) {
		return a.svc.RenameSymbol(ctx, f.Arg(0), f.Arg(1))
	})
}
