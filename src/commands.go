package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/contre95/id3shim/src/features/hosting"
	"github.com/contre95/id3shim/src/features/tagging"
	"github.com/contre95/id3shim/src/features/watching"
	"github.com/contre95/id3shim/src/id3"
	"github.com/contre95/id3shim/src/infra/queue"
	"github.com/contre95/id3shim/src/infra/watcher"
)

var errUsage = errors.New("invalid arguments")

// parseFile parses a command's flags and returns its single file argument.
func parseFile(fs *flag.FlagSet, args []string) (string, error) {
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return "", fmt.Errorf("%s expects one file: %w", fs.Name(), errUsage)
	}
	return fs.Arg(0), nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) show(ctx context.Context, args []string) error {
	path, err := parseFile(flag.NewFlagSet("show", flag.ContinueOnError), args)
	if err != nil {
		return err
	}
	info, err := a.tagging.Inspect(ctx, path)
	if err != nil {
		return err
	}
	return printJSON(info)
}

func (a *app) save(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("save", flag.ContinueOnError)
	v := fs.Int("v", a.cfg.Get().Tagging.Version, "ID3v2 version to write (3 or 4)")
	path, err := parseFile(fs, args)
	if err != nil {
		return err
	}
	version, err := id3.ParseVersion(*v)
	if err != nil {
		return err
	}
	info, err := a.tagging.Normalize(ctx, path, version)
	if err != nil {
		return err
	}
	return printJSON(info)
}

func (a *app) rewrite(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("rewrite", flag.ContinueOnError)
	frame := fs.String("frame", "", "text frame to re-decode (default from config)")
	charset := fs.String("charset", "", "charset the frame bytes are really in (default from config)")
	v := fs.Int("v", 0, "ID3v2 version to write (default from config)")
	path, err := parseFile(fs, args)
	if err != nil {
		return err
	}
	text, err := a.tagging.Rewrite(ctx, path, tagging.RewriteOptions{Frame: *frame, Charset: *charset, Version: *v})
	if err != nil {
		return err
	}
	fmt.Println(text)
	return nil
}

func (a *app) cover(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("cover", flag.ContinueOnError)
	image := fs.String("image", "", "image file to embed")
	path, err := parseFile(fs, args)
	if err != nil {
		return err
	}
	if *image == "" {
		return fmt.Errorf("cover needs -image: %w", errUsage)
	}
	data, err := os.ReadFile(*image)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}
	return a.tagging.SetCover(ctx, path, data)
}

func (a *app) history(ctx context.Context, args []string) error {
	path, err := parseFile(flag.NewFlagSet("history", flag.ContinueOnError), args)
	if err != nil {
		return err
	}
	entries, err := a.tagging.History(ctx, path)
	if err != nil {
		return err
	}
	return printJSON(entries)
}

// startWatching runs the watch pipeline until ctx is done. The returned
// function stops it and waits for the worker.
func (a *app) startWatching(ctx context.Context) (func(), error) {
	cfg := a.cfg.Get()
	version, err := id3.ParseVersion(cfg.Tagging.Version)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.Watch.Path, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create watch directory: %w", err)
	}

	debounce := time.Duration(cfg.Watch.DebounceSecs) * time.Second
	events := make(chan watching.FileEvent, 64)
	w, err := watcher.NewWatcher(events, debounce)
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Start(ctx, cfg.Watch.Path); err != nil {
		return nil, fmt.Errorf("failed to watch %s: %w", cfg.Watch.Path, err)
	}

	svc := watching.NewService(queue.NewInMemoryQueue(), a.tagging, a.metrics, version, debounce+time.Second)
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		svc.Run(ctx, events)
	}()
	return func() {
		w.Stop()
		cancel()
		<-done
	}, nil
}

func (a *app) watch(ctx context.Context) error {
	stop, err := a.startWatching(ctx)
	if err != nil {
		return err
	}
	slog.Info("Watching for new files. Press Ctrl+C to stop.", "path", a.cfg.Get().Watch.Path)
	<-ctx.Done()
	stop()
	slog.Info("Watcher stopped")
	return nil
}

func (a *app) serve(ctx context.Context) error {
	if a.cfg.Get().Watch.Enabled {
		stop, err := a.startWatching(ctx)
		if err != nil {
			return err
		}
		defer stop()
	}

	server := hosting.NewServer(a.cfg, a.tagging, a.metrics)
	errc := make(chan error, 1)
	go func() {
		errc <- server.Start()
	}()
	slog.Info("Server started. Press Ctrl+C to shut down.", "port", a.cfg.Get().Server.Port)

	select {
	case err := <-errc:
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
	}
	slog.Info("Shutting down server...")
	if err := server.Shutdown(); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	slog.Info("Server gracefully shut down.")
	return nil
}
