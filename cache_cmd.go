package main

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/dgnsrekt/stylecache/internal/cache"
	"github.com/dgnsrekt/stylecache/internal/config"
)

var (
	listEntries bool

	clearCmd = &cobra.Command{
		Use:   "clear",
		Short: "Remove every persisted style",
		Long: paragraph(fmt.Sprintf("\n%s the durable tier of the configured namespace. Other namespaces "+
			"in the same location are left alone.", keyword("Clear"))),
		Args: cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			c, err := openCache()
			if err != nil {
				return err
			}
			defer c.Close() //nolint:errcheck

			if err := c.ClearStyleCache(); err != nil {
				return fmt.Errorf("unable to clear cache: %w", err)
			}
			fmt.Println("Cleared style cache", keyword(cfg.Durable.Namespace))
			return nil
		},
	}

	statsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Show what the durable tier holds",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			store, err := cfg.OpenStore()
			if err != nil {
				return err //nolint:wrapcheck
			}
			if store == nil {
				fmt.Println("Durable tier disabled (backend: none)")
				return nil
			}
			defer store.Close() //nolint:errcheck

			path, _ := cfg.DurablePath()
			printStoreStats(isTerminal(), path, store)
			return nil
		},
	}
)

func printStoreStats(styled bool, path string, store cache.Store) {
	fmt.Println(field(styled, "backend", cfg.Durable.Backend))
	fmt.Println(field(styled, "namespace", cfg.Durable.Namespace))
	fmt.Println(field(styled, "location", path))

	sp, ok := store.(cache.StatsProvider)
	if !ok {
		return
	}
	stats := sp.Stats()
	fmt.Println(field(styled, "entries", humanize.Comma(int64(stats.ItemCount))))
	fmt.Println(field(styled, "size", humanize.Bytes(uint64(stats.Size)))) //nolint:gosec

	ds, ok := store.(*cache.DiskStore)
	if !listEntries || !ok {
		return
	}

	entries := ds.GetEntries()
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].LastAccess.After(entries[j].LastAccess)
	})
	fmt.Fprintln(os.Stdout)
	for _, e := range entries {
		fmt.Printf("%s  %8s  %s\n", entryKey(e.Key), humanize.Bytes(uint64(e.Size)), lastUsed(e.LastAccess)) //nolint:gosec
	}
}

func entryKey(k string) string {
	if len(k) > 16 {
		return k[:16]
	}
	return k
}

func lastUsed(t time.Time) string {
	if t.IsZero() {
		return "never read"
	}
	return humanize.Time(t)
}

func init() {
	statsCmd.Flags().BoolVarP(&listEntries, "entries", "e", false, "list entries ("+config.BackendDisk+" backend only)")
}
