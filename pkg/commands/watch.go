package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/timebox/pkg/runner/watch"
)

func addWatch(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print changes to the local store as they happen.",
		Long: `Print a line for every change to saved days, drafts, settings and
the session, including changes made by other timebox processes. Stops on
interrupt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, err := load(cmd.Context())
			if err != nil {
				return oo.HandleError(err)
			}
			w := watch.Watch{Service: e.Service, JSON: oo.JSON, Out: cmd.OutOrStdout()}
			return oo.HandleError(w.Do(cmd.Context()))
		},
	}

	topLevel.AddCommand(cmd)
}
