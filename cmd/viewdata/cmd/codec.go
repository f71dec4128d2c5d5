package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-viewdata/pkg/textcodec"
)

func newEscapeCmd() *cobra.Command {
	return newCodecCmd("escape", "HTML-escape text", textcodec.Escape)
}

func newUnescapeCmd() *cobra.Command {
	return newCodecCmd("unescape", "Reverse HTML escaping", textcodec.Unescape)
}

// newCodecCmd transforms each argument on its own line, or stdin as a whole
// when no arguments are given.
func newCodecCmd(use, short string, fn func(string) string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [text...]",
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) > 0 {
				for _, arg := range args {
					if _, err := fmt.Fprintln(out, fn(arg)); err != nil {
						return err
					}
				}
				return nil
			}

			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}
			_, err = io.WriteString(out, fn(strings.TrimRight(string(data), "\n"))+"\n")
			return err
		},
	}
}
