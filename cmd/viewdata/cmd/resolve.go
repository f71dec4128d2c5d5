package cmd

import (
	"github.com/spf13/cobra"
)

func newResolveCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <identifier>",
		Short: "Print the merged context for a template identifier",
		Long: `Load the configured rule files and print, as JSON, the payload merged from
every rule matching the identifier in registration order.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := opts.newEngine()
			if err != nil {
				return err
			}
			identifier := args[0]
			resolved := engine.Normalize(engine.Context(identifier))
			opts.logger.Debug("context resolved",
				"template", identifier,
				"rules", len(engine.Registry().Matching(identifier)),
			)
			return writeJSON(cmd.OutOrStdout(), resolved)
		},
	}
}
