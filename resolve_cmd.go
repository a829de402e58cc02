package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/dgnsrekt/stylecache/internal/cache"
	"github.com/dgnsrekt/stylecache/internal/registry"
	"github.com/dgnsrekt/stylecache/internal/style"
	"github.com/dgnsrekt/stylecache/pkg/stylecache"
)

var (
	selectPath string
	sheetMode  bool
	copyResult bool

	resolveCmd = &cobra.Command{
		Use:   "resolve FILE",
		Short: "Resolve a style document through the cache",
		Long: paragraph(fmt.Sprintf("\n%s a JSON or YAML style document: flatten it, resolve platform conditionals, "+
			"fingerprint it and register it through the cache. Use - to read stdin.", keyword("Resolve"))),
		Example: paragraph("stylecache resolve button.json\n" +
			"stylecache resolve theme.yml --path styles.header --platform android\n" +
			"stylecache resolve screen.json --sheet --theme dark"),
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			doc, err := readDocument(args[0])
			if err != nil {
				return err
			}

			c, err := openCache()
			if err != nil {
				return err
			}
			defer c.Close() //nolint:errcheck

			return resolveDocument(c, doc, os.Stdout, isTerminal())
		},
	}
)

// resolveDocument resolves doc (or the selected collection with --sheet)
// and prints one block per style.
func resolveDocument(c *stylecache.Cache, doc *document, w io.Writer, styled bool) error {
	if !sheetMode {
		in, err := doc.Input(selectPath)
		if err != nil {
			return err
		}
		res, err := c.GetStyle(in, cfg.Theme)
		if err != nil {
			return fmt.Errorf("unable to resolve %s: %w", doc.Name, err)
		}
		if err := printResult(w, styled, "", res); err != nil {
			return err
		}
		return copyFingerprint(res)
	}

	inputs, err := doc.Inputs(selectPath)
	if err != nil {
		return err
	}
	results, err := c.GetStyles(inputs, cfg.Theme)
	if err != nil {
		return fmt.Errorf("unable to resolve %s: %w", doc.Name, err)
	}

	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	for i, name := range names {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if err := printResult(w, styled, name, results[name]); err != nil {
			return err
		}
	}
	return nil
}

func printResult(w io.Writer, styled bool, name string, res stylecache.Result) error {
	if name != "" {
		fmt.Fprintln(w, field(styled, "style", name))
	}
	fmt.Fprintln(w, field(styled, "tier", tier(styled, tierName(res))))

	switch res.Kind {
	case style.KindRef:
		fmt.Fprintln(w, field(styled, "ref", strconv.FormatInt(res.Ref, 10)))
		return nil
	case style.KindHandle:
		fmt.Fprintln(w, field(styled, "handle", strconv.FormatInt(res.Handle.HandleID(), 10)))
		return nil
	}

	fmt.Fprintln(w, field(styled, "fingerprint", res.Fingerprint.String()))
	fmt.Fprintln(w, field(styled, "handle", strconv.FormatInt(res.Handle.HandleID(), 10)))

	h, ok := res.Handle.(*registry.Handle)
	if !ok {
		return nil
	}
	b, err := json.MarshalIndent(h.Style(), "", "  ")
	if err != nil {
		return fmt.Errorf("unable to print style: %w", err)
	}
	_, err = fmt.Fprintln(w, string(b))
	return err //nolint:wrapcheck
}

func tierName(res stylecache.Result) string {
	if res.Kind == style.KindRef || res.Kind == style.KindHandle {
		return "passthrough"
	}
	switch res.Level {
	case cache.CacheLevelVolatile:
		return "volatile"
	case cache.CacheLevelDurable:
		return "durable"
	default:
		return "registered"
	}
}

func copyFingerprint(res stylecache.Result) error {
	if !copyResult || res.Fingerprint == "" {
		return nil
	}
	if err := clipboard.WriteAll(res.Fingerprint.String()); err != nil {
		return fmt.Errorf("unable to copy fingerprint: %w", err)
	}
	log.Debug("copied fingerprint to clipboard", "fingerprint", res.Fingerprint.Short())
	return nil
}

func init() {
	resolveCmd.Flags().StringVar(&selectPath, "path", "", "gjson path selecting the style inside the document")
	resolveCmd.Flags().BoolVarP(&sheetMode, "sheet", "s", false, "treat the selection as a list or map of named styles")
	resolveCmd.Flags().BoolVarP(&copyResult, "copy", "c", false, "copy the fingerprint to the clipboard")
}
