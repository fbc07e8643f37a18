// Command stockline tracks a MOEX watchlist: it ingests daily bars, derives
// indicators, scores each ticker, and renders ranked markdown reports.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/bobmcallan/stockline/internal/app"
	"github.com/bobmcallan/stockline/internal/common"
)

const usage = `Usage: stockline [-config path] <command> [args]

Commands:
  update [ticker]           fetch new bars for the watchlist or one ticker
  analyze [ticker]          score the watchlist (writes a report) or one ticker
  add <ticker>              start tracking a ticker and fetch its history
  remove <ticker>           stop tracking a ticker and drop its series
  levels <ticker> [flags]   set manual support/resistance levels
  list                      print the watchlist
  info <ticker>             print stored series statistics
  status                    print data path, series inventory, and versions
  watch                     run scheduled update cycles until interrupted
  version                   print version
`

func main() {
	// .env is optional; real environment always wins
	_ = godotenv.Load()

	configPath := flag.String("config", "", "path to stockline.toml")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	command, rest := args[0], args[1:]

	if command == "version" {
		fmt.Printf("stockline %s (%s)\n", common.GetVersion(), common.GetGitCommit())
		return
	}

	a, err := app.NewApp(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, a, command, rest); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, a *app.App, command string, args []string) error {
	switch command {
	case "update":
		return runUpdate(ctx, a, args)
	case "analyze":
		return runAnalyze(ctx, a, args)
	case "add":
		return runAdd(ctx, a, args)
	case "remove":
		return runRemove(ctx, a, args)
	case "levels":
		return runLevels(ctx, a, args)
	case "list":
		return runList(ctx, a)
	case "info":
		return runInfo(ctx, a, args)
	case "status":
		return runStatus(ctx, a)
	case "watch":
		return a.RunScheduler(ctx)
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", command)
	}
}
