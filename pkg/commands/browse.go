package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/timebox/pkg/runner/browse"
)

func addBrowse(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Page through saved days in the terminal.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, err := load(cmd.Context())
			if err != nil {
				return oo.HandleError(err)
			}
			b := browse.Browse{Service: e.Service}
			return oo.HandleError(b.Do(cmd.Context()))
		},
	}

	topLevel.AddCommand(cmd)
}
