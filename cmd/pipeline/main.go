package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"go-linerecord-pipeline/internal/config"
	"go-linerecord-pipeline/internal/logging"
)

// cli holds the global flags and what PersistentPreRunE builds from them.
type cli struct {
	configPath string
	verbose    bool
	delimiter  string
	arity      int

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "pipeline",
		Short: "Parse delimited text lines into records and process them",
		Long: `pipeline reads text lines, splits each into fields on a delimiter, keeps
only lines with the expected number of fields, and counts, filters, maps or
summarizes the resulting records.

Run "pipeline serve" to accept jobs over HTTP, or use the one-shot commands
on a local file or http(s) URL.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "Path to YAML config file")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable verbose logging")
	root.PersistentFlags().StringVarP(&c.delimiter, "delimiter", "d", "", "Field delimiter (overrides config)")
	root.PersistentFlags().IntVarP(&c.arity, "arity", "a", 0, "Expected number of fields (overrides config)")

	root.AddCommand(
		newServeCmd(c),
		newCountCmd(c),
		newFilterCmd(c),
		newMapCmd(c),
		newStatsCmd(c),
	)
	return root
}

// init loads the config, applies flag overrides and builds the logger.
func (c *cli) init(cmd *cobra.Command) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("delimiter") {
		cfg.Processor.Delimiter = c.delimiter
	}
	if flags.Changed("arity") {
		cfg.Processor.ExpectedArity = c.arity
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging, c.verbose)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.logger = logger
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
