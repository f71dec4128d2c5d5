package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newNormalizeCmd(opts *options) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Normalize a JSON or YAML document from stdin",
		Long: `Read a document from stdin, normalize it with the configured escape and
stringify switches and print the result as JSON.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}
			doc, err := decodeDocument(data, format)
			if err != nil {
				return err
			}
			engine, err := opts.newEngine()
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), engine.Normalize(doc))
		},
	}
	cmd.Flags().StringVar(&format, "input", "json", "input format (json, yaml)")
	return cmd
}
