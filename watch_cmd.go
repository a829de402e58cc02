package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/dgnsrekt/stylecache/pkg/stylecache"
)

var (
	watchInterval time.Duration

	watchCmd = &cobra.Command{
		Use:   "watch FILE",
		Short: "Re-resolve a style document whenever it changes",
		Long: paragraph(fmt.Sprintf("\n%s a style document and resolve it on every write. Unchanged styles "+
			"are answered from memory.", keyword("Watch"))),
		Example: paragraph("stylecache watch button.json --platform ios"),
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			path, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("unable to get absolute path: %w", err)
			}

			c, err := openCache()
			if err != nil {
				return err
			}
			defer c.Close() //nolint:errcheck

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			limiter := rate.NewLimiter(rate.Every(watchInterval), 1)
			return watchDocument(ctx, c, path, limiter, os.Stdout, isTerminal())
		},
	}
)

// watchDocument resolves path once, then again on every write or create
// event until ctx is done. Editors often emit several events per save;
// limiter spaces out the re-resolves.
func watchDocument(ctx context.Context, c *stylecache.Cache, path string, limiter *rate.Limiter, w io.Writer, styled bool) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("error creating fsnotify watcher: %w", err)
	}
	defer watcher.Close() //nolint:errcheck

	// Watch the directory so editors that replace the file are seen
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("error adding dir to fsnotify watcher: %w", err)
	}
	log.Info("fsnotify watching dir", "dir", dir)

	resolveOnce(c, path, w, styled)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			log.Debug("fsnotify event", "file", event.Name, "event", event.Op)
			if err := limiter.Wait(ctx); err != nil {
				return nil
			}
			fmt.Fprintln(w)
			resolveOnce(c, path, w, styled)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Debug("fsnotify error", "dir", dir, "error", err)
		}
	}
}

// resolveOnce logs failures instead of returning them; a half-written file
// should not end the watch.
func resolveOnce(c *stylecache.Cache, path string, w io.Writer, styled bool) {
	doc, err := readDocument(path)
	if err != nil {
		log.Error("unable to read style document", "file", path, "error", err)
		return
	}
	if err := resolveDocument(c, doc, w, styled); err != nil {
		log.Error("unable to resolve style document", "file", path, "error", err)
	}
}

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 250*time.Millisecond, "minimum time between re-resolves")
}
