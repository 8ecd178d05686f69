package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"termaid/parser"
)

func (c *CLI) familiesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "families",
		Short: "List the supported diagram families and their headers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			for _, f := range parser.Families {
				fmt.Fprintf(w, "%s %s\n", heading.Sprintf("%-10s", f.Family), subtle.Sprint(strings.Join(f.Headers, ", ")))
			}
			return nil
		},
	}
}
