// Command candlestore imports OHLC candle files from local folders, GitHub
// repositories and the Yahoo chart API, and manages the stored symbols.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

var configPath = flag.String("config", "", "Path to the config file (default: config/config.yaml if present)")

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	commander.Register(&localCmd{}, "import")
	commander.Register(&repoCmd{}, "import")
	commander.Register(&quoteCmd{}, "import")

	commander.Register(&listCmd{}, "symbols")
	commander.Register(&showCmd{}, "symbols")
	commander.Register(&candlesCmd{}, "symbols")
	commander.Register(&deleteCmd{}, "symbols")
	commander.Register(&renameCmd{}, "symbols")

	commander.Register(&serveCmd{}, "server")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
