package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/contre95/id3shim/src/features/config"
	"github.com/contre95/id3shim/src/features/logging"
	"github.com/contre95/id3shim/src/features/metrics"
	"github.com/contre95/id3shim/src/features/tagging"
	"github.com/contre95/id3shim/src/infra/artwork"
	"github.com/contre95/id3shim/src/infra/database"
	"github.com/contre95/id3shim/src/infra/tag"
)

const usage = `usage: id3shim [-config path] <command> [flags] [file]

commands:
  show <file>                                   print the tag as read back from disk
  save [-v 3|4] <file>                          rewrite the tag as ID3v2.3 or ID3v2.4
  rewrite [-frame ID] [-charset NAME] [-v 3|4] <file>
                                                re-decode a text frame with a fixed charset
  cover -image <img> <file>                     embed a front cover image
  history <file>                                list journaled changes of a file
  watch                                         normalize files dropped in the watch directory
  serve                                         run the HTTP API
`

// app holds what every command needs.
type app struct {
	cfg     *config.Manager
	tagging *tagging.Service
	metrics *metrics.Metrics
}

func main() {
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	flag.Parse()
	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	// Load configuration
	cfgManager, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Setup default logger with slog
	logger := logging.SetupLogger(cfgManager)
	slog.SetDefault(logger)

	// Create the change journal
	journal, err := database.NewSqliteJournal(cfgManager.Get().Journal.Path)
	if err != nil {
		log.Fatalf("failed to open journal: %v", err)
	}
	defer journal.Close()

	m := metrics.New()
	tagService := tagging.NewService(tag.NewTagReader(), journal, artwork.NewService(), m, cfgManager)
	a := &app{cfg: cfgManager, tagging: tagService, metrics: m}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.run(ctx, flag.Arg(0), flag.Args()[1:]); err != nil {
		slog.Error("Command failed", "command", flag.Arg(0), "error", err)
		stop()
		journal.Close()
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "show":
		return a.show(ctx, args)
	case "save":
		return a.save(ctx, args)
	case "rewrite":
		return a.rewrite(ctx, args)
	case "cover":
		return a.cover(ctx, args)
	case "history":
		return a.history(ctx, args)
	case "watch":
		return a.watch(ctx)
	case "serve":
		return a.serve(ctx)
	}
	flag.Usage()
	return fmt.Errorf("unknown command %q", command)
}
