package main

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/dgnsrekt/stylecache/internal/style"
)

var prewarmCmd = &cobra.Command{
	Use:   "prewarm FILE...",
	Short: "Populate the cache with every style in the given documents",
	Long: paragraph(fmt.Sprintf("\n%s the cache: every style in each document (a list or a map of styles) "+
		"is resolved and persisted, so later runs start warm.", keyword("Prewarm"))),
	Example: paragraph("stylecache prewarm styles/*.json\nstylecache prewarm theme.yml --path components --theme dark"),
	Args:    cobra.MinimumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		c, err := openCache()
		if err != nil {
			return err
		}
		defer c.Close() //nolint:errcheck

		total := 0
		for _, arg := range args {
			doc, err := readDocument(arg)
			if err != nil {
				return err
			}
			inputs, err := doc.Inputs(selectPath)
			if err != nil {
				return err
			}

			if err := c.PrewarmStyles(orderedInputs(inputs), cfg.Theme); err != nil {
				return fmt.Errorf("unable to prewarm %s: %w", arg, err)
			}
			log.Debug("prewarmed document", "file", arg, "styles", len(inputs))
			total += len(inputs)
		}

		stats := c.Stats()
		fmt.Printf("Prewarmed %d styles (%d registered, %d already durable)\n",
			total, stats.Misses, stats.DurableHits)
		return nil
	},
}

// orderedInputs flattens named inputs in name order, dropping zero ones.
func orderedInputs(inputs map[string]style.Input) []style.Input {
	names := make([]string, 0, len(inputs))
	for name := range inputs {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]style.Input, 0, len(names))
	for _, name := range names {
		if in := inputs[name]; !in.IsZero() {
			out = append(out, in)
		}
	}
	return out
}

func init() {
	prewarmCmd.Flags().StringVar(&selectPath, "path", "", "gjson path selecting the styles inside each document")
}
