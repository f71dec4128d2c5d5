// Package cmd provides the CLI commands for viewdata.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/goliatone/go-viewdata/internal/config"
	"github.com/goliatone/go-viewdata/internal/logging"
)

// options carries the state shared by the subcommands of one invocation.
type options struct {
	cfgFile string
	viper   *viper.Viper
	config  *config.Config
	logger  *slog.Logger
}

// NewRootCmd builds the command tree. Each call returns independent flags and
// configuration so commands can be executed more than once in a process.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "viewdata",
		Short: "viewdata - template data preparation",
		Long: `viewdata resolves context rules for template identifiers and normalizes
data into render ready trees.

Configuration:
  Config is loaded from viewdata.yaml in the current directory unless
  --config is given. Environment variables override config values with the
  VIEWDATA_ prefix, e.g. VIEWDATA_LOG_LEVEL=debug.

Commands:
  resolve     Print the merged context for a template identifier
  normalize   Normalize a JSON or YAML document from stdin
  escape      HTML-escape text
  unescape    Reverse HTML escaping
  render      Render a template with resolved context
  version     Print version information`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.cfgFile, "config", "", "config file (default: ./viewdata.yaml)")
	flags.StringSlice("rules", nil, "context rule files or directories, loaded in order")
	flags.Bool("escape", false, "HTML-escape normalized strings")
	flags.Bool("stringify", false, "convert normalized scalars to text")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(
		newResolveCmd(opts),
		newNormalizeCmd(opts),
		newEscapeCmd(),
		newUnescapeCmd(),
		newRenderCmd(opts),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (o *options) load(cmd *cobra.Command) error {
	o.viper = config.NewViper(o.cfgFile)
	bindings := map[string]string{
		"rules":     "rules",
		"escape":    "escape",
		"stringify": "stringify",
		"log_level": "log-level",
		"templates": "templates",
		"extension": "extension",
	}
	for key, name := range bindings {
		if flag := cmd.Flags().Lookup(name); flag != nil {
			if err := o.viper.BindPFlag(key, flag); err != nil {
				return fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	cfg, err := config.Load(o.viper)
	if err != nil {
		return err
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}

	o.config = cfg
	o.logger = logging.NewWithWriter(cmd.ErrOrStderr(), level)
	o.logger.Debug("configuration loaded", "config_file", o.viper.ConfigFileUsed(), "rules", len(cfg.Rules))
	return nil
}
