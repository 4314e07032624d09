package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/timebox/pkg/runner/info"
)

func addInfo(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Details about saved days and where they are stored.",
		Example: `
timebox info
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, err := load(cmd.Context())
			if err != nil {
				return oo.HandleError(err)
			}
			s := info.Info{
				Config:  e.Config,
				Service: e.Service,
				Out:     cmd.OutOrStdout(),
			}
			err = s.Do(cmd.Context())
			return oo.HandleError(err)
		},
	}

	topLevel.AddCommand(cmd)
}
