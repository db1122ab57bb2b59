package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/harrison/fuzz/internal/rule"
	"github.com/spf13/cobra"
)

// NewListCommand creates the 'fuzz list' command
func NewListCommand(reg *rule.Registry) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the registered rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			header := color.New(color.FgCyan, color.Bold)

			w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
			fmt.Fprintf(w, "%s\t%s\n", header.Sprint("RULE"), header.Sprint("DESCRIPTION"))
			for _, r := range reg.Rules() {
				fmt.Fprintf(w, "%s\t%s\n", r.ID(), r.Description())
			}
			if err := w.Flush(); err != nil {
				return err
			}

			fmt.Fprintf(out, "\n%d rules registered\n", reg.Len())
			return nil
		},
	}
}
