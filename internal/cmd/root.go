// Package cmd provides the CLI commands for modulemd.
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/modulemd/internal/config"
	"github.com/cameronsjo/modulemd/internal/logging"
	"github.com/cameronsjo/modulemd/internal/trace"
	"github.com/cameronsjo/modulemd/internal/ui"
)

const version = "0.1.0"

var (
	cfgFile    string
	logLevel   string
	logFormat  string
	permissive bool
	colorMode  string
)

// Set up by the persistent pre-run of every command.
var (
	appConfig = config.Default()
	logger    = trace.Discard()
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "modulemd",
	Short: "Parse, validate, merge and emit module metadata",
	Long: `modulemd - module metadata toolkit

Reads YAML streams of modulemd, modulemd-defaults and modulemd-translations
documents, validates them, merges them into a module index and writes them
back out in canonical form.

DOCUMENT COMMANDS
  validate FILE...           Parse and validate, report every failure
  dump FILE...               Merge files into one index and emit it
  merge FILE[:PRIO]...       Merge repositories by priority
  defaults FILE...           Show the default stream of every module
  upgrade FILE...            Convert version 1 module streams to version 2
    --write, -w              Rewrite the files in place

CATALOG COMMANDS
  store import FILE...       Save an index as a new batch
  store export [BATCH]       Emit a stored batch (latest by default)
  store batches              List stored batches
  store delete BATCH         Remove a batch

SERVICE COMMANDS
  watch DIR                  Rebuild the index whenever DIR changes
    --metrics-addr ADDR      Serve prometheus metrics on ADDR

Configuration is read from .modulemd.yaml in the working directory or any
parent, then MODULEMD_* environment variables, then flags.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// setup loads configuration and builds the logger for a command run.
func setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	l, err := logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Writer: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	if err := ui.ConfigureColor(colorMode, cmd.OutOrStdout()); err != nil {
		return err
	}

	appConfig, logger = cfg, l
	if cfg.File != "" {
		logger.Debug("using config file", "path", cfg.File)
	}
	return nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Config file (default: .modulemd.yaml in this or a parent directory)")
	flags.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.StringVar(&logFormat, "log-format", "", "Log format: console or json")
	flags.BoolVar(&permissive, "permissive", false, "Ignore unknown keys instead of rejecting the document")
	flags.StringVar(&colorMode, "color", ui.ColorAuto, "Color output: auto, always, never")

	rootCmd.SetVersionTemplate("modulemd version {{.Version}}\n")
}
