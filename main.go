// Package main provides the entry point for the stylecache CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/term"

	"github.com/dgnsrekt/stylecache/internal/config"
	"github.com/dgnsrekt/stylecache/internal/registry"
	"github.com/dgnsrekt/stylecache/pkg/stylecache"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	debug      bool
	platform   string
	theme      string
	backend    string
	metrics    string

	// cfg is loaded before any subcommand runs.
	cfg config.Config

	meter metric.Meter

	rootCmd = &cobra.Command{
		Use:   "stylecache",
		Short: "Normalize, fingerprint and memoize style documents",
		Long: paragraph(
			fmt.Sprintf("\nNormalize, fingerprint and %s style documents across runs.", keyword("memoize")),
		),
		SilenceErrors:     false,
		SilenceUsage:      true,
		TraverseChildren:  true,
		PersistentPreRunE: loadConfig,
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return shutdownMetrics(cmd.Context())
		},
	}
)

func loadConfig(cmd *cobra.Command, _ []string) error {
	if cmd.Flags().Changed("config") {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("unable to read config file: %w", err)
		}
	}

	var err error
	cfg, err = config.Load(viper.GetViper())
	if err != nil {
		return err //nolint:wrapcheck
	}

	// Flags win over the config file and the environment
	flags := cmd.Flags()
	if flags.Changed("platform") {
		cfg.Platform = platform
	}
	if flags.Changed("theme") {
		cfg.Theme = theme
	}
	if flags.Changed("backend") {
		cfg.Durable.Backend = backend
	}
	if flags.Changed("debug") {
		cfg.Debug = debug
	}
	if err := cfg.Validate(); err != nil {
		return err //nolint:wrapcheck
	}

	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}

	meter, err = setupMetrics(metrics, os.Stderr)
	if err != nil {
		return err
	}
	log.Debug("loaded configuration",
		"platform", cfg.StylePlatform().Name(),
		"backend", cfg.Durable.Backend,
		"capacity", cfg.Capacity,
	)
	return nil
}

// openCache builds a cache over the configured durable tier, registering
// with an in-process sheet.
func openCache() (*stylecache.Cache, error) {
	store, err := cfg.OpenStore()
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	c, err := stylecache.New(registry.NewSheet(),
		stylecache.WithCapacity(cfg.Capacity),
		stylecache.WithStore(store),
		stylecache.WithPlatform(cfg.StylePlatform()),
		stylecache.WithLogger(log.Default()),
		stylecache.WithMeter(meter),
	)
	if err != nil {
		if store != nil {
			_ = store.Close()
		}
		return nil, fmt.Errorf("unable to create cache: %w", err)
	}
	return c, nil
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd())) //nolint:gosec
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	pf.BoolVar(&debug, "debug", false, "log debug output")
	pf.StringVarP(&platform, "platform", "p", "", "platform to resolve conditionals for (default: host)")
	pf.StringVarP(&theme, "theme", "t", "", "theme the style is cached under")
	pf.StringVar(&backend, "backend", "", "durable backend: disk, sqlite or none")
	pf.StringVar(&metrics, "metrics", "none", "metrics exporter: stdout or none")

	rootCmd.AddCommand(resolveCmd, prewarmCmd, watchCmd, clearCmd, statsCmd, configCmd, manCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, config.AppName)
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, config.AppName)}, dirs...)
	}

	if c := os.Getenv("STYLECACHE_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName(config.AppName)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	configFile = filepath.Join(dirs[0], config.AppName+".yml")
}
