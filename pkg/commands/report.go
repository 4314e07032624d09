package commands

import (
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/timebox/pkg/commands/options"
	"tableflip.dev/timebox/pkg/runner/report"
)

func addReport(topLevel *cobra.Command) {
	ro := &options.RangeOptions{}
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Sum the labelled time of saved days.",
		Example: `
timebox report
timebox report --since 2024-02-01 --until 2024-02-29 --json
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			since, until, err := ro.Resolve(time.Now())
			if err != nil {
				return oo.HandleError(err)
			}
			e, err := load(cmd.Context())
			if err != nil {
				return oo.HandleError(err)
			}
			r := report.Report{
				Service: e.Service,
				Since:   since,
				Until:   until,
				JSON:    oo.JSON,
				ShowID:  io.ShowID,
				Out:     cmd.OutOrStdout(),
			}
			return oo.HandleError(r.Do(cmd.Context()))
		},
	}

	options.AddRangeArgs(cmd, ro)
	options.AddShowIDArgs(cmd, io)
	topLevel.AddCommand(cmd)
}
