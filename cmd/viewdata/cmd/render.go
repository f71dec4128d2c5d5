package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	viewdata "github.com/goliatone/go-viewdata"
	"github.com/goliatone/go-viewdata/pkg/render/template/pongo"
)

func newRenderCmd(opts *options) *cobra.Command {
	var dataFile string

	cmd := &cobra.Command{
		Use:   "render <identifier>",
		Short: "Render a template with resolved context",
		Long: `Resolve the context for the identifier, overlay the data file on top of it
and render the template of the same name from the templates directory.
Templates can call view_context("other/identifier") to read another
identifier's context.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.config.Templates == "" {
				return errors.New("render: templates directory is required (--templates)")
			}
			renderer, err := pongo.New(
				pongo.WithBaseDir(opts.config.Templates),
				pongo.WithExtension(opts.config.Extension),
			)
			if err != nil {
				return err
			}
			engine, err := opts.newEngine(viewdata.WithRenderer(renderer))
			if err != nil {
				return err
			}
			data, err := readDataFile(dataFile)
			if err != nil {
				return err
			}

			rendered, err := engine.Render(args[0], data)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write([]byte(rendered))
			return err
		},
	}
	cmd.Flags().String("templates", "", "template base directory")
	cmd.Flags().String("extension", ".tpl", "template file extension")
	cmd.Flags().StringVar(&dataFile, "data", "", "JSON or YAML file with render data")
	return cmd
}
