package commands

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/timebox/pkg/commands/options"
	"tableflip.dev/timebox/pkg/runner/day"
)

type doer interface {
	Do(ctx context.Context) error
}

// dayCommand loads the environment, builds a runner for the selected day
// and runs it.
func dayCommand(showID *options.IDOptions, build func(cmd *cobra.Command, e *env, d day.Day, args []string) (doer, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		e, err := load(cmd.Context())
		if err != nil {
			return oo.HandleError(err)
		}
		d, err := e.day(cmd, showID != nil && showID.ShowID)
		if err != nil {
			return oo.HandleError(err)
		}
		r, err := build(cmd, e, d, args)
		if err != nil {
			return oo.HandleError(err)
		}
		return oo.HandleError(r.Do(cmd.Context()))
	}
}

func addShow(topLevel *cobra.Command) {
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the timeboxes of a day.",
		Example: `
timebox show
timebox show --date tomorrow
timebox show --date 2024-02-28 --json
`,
		Args: cobra.NoArgs,
		RunE: dayCommand(io, func(_ *cobra.Command, _ *env, d day.Day, _ []string) (doer, error) {
			return &day.Show{Day: d}, nil
		}),
	}

	options.AddShowIDArgs(cmd, io)
	topLevel.AddCommand(cmd)
}

func addSet(topLevel *cobra.Command) {
	bo := &options.BlockOptions{}
	i := &options.InteractiveOptions{}

	cmd := &cobra.Command{
		Use:   "set <n> <label>",
		Short: "Label a block, and optionally move it.",
		Long: `Label block n. Labelling the last block of the day adds the next one.
An empty label clears the block.`,
		Example: `
timebox set 0 write the report
timebox set 2 lunch --start 12:00 --end 12:45
timebox set -i review
`,
		RunE: dayCommand(nil, func(cmd *cobra.Command, e *env, d day.Day, args []string) (doer, error) {
			index, rest, err := e.blockIndex(cmd, d, args, i.Interactive)
			if err != nil {
				return nil, err
			}
			return &day.Set{
				Day:   d,
				Index: index,
				Label: strings.Join(rest, " "),
				Start: bo.Start,
				End:   bo.End,
			}, nil
		}),
	}

	options.AddBlockArgs(cmd, bo)
	options.InteractiveArgs(cmd, i)
	topLevel.AddCommand(cmd)
}

func addAdd(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a timebox at the end of the day.",
		Long: `Add a timebox after the last one. When the day has fallen behind the
clock the new timebox starts now, rounded up to five minutes.`,
		Args: cobra.NoArgs,
		RunE: dayCommand(nil, func(_ *cobra.Command, _ *env, d day.Day, _ []string) (doer, error) {
			return &day.Add{Day: d}, nil
		}),
	}

	topLevel.AddCommand(cmd)
}

func addDelete(topLevel *cobra.Command) {
	i := &options.InteractiveOptions{}

	cmd := &cobra.Command{
		Use:     "delete <n>",
		Aliases: []string{"rm"},
		Short:   "Delete a block. The only block of a day is kept.",
		Example: `
timebox delete 3
timebox delete -i
`,
		RunE: dayCommand(nil, func(cmd *cobra.Command, e *env, d day.Day, args []string) (doer, error) {
			index, _, err := e.blockIndex(cmd, d, args, i.Interactive)
			if err != nil {
				return nil, err
			}
			return &day.Delete{Day: d, Index: index}, nil
		}),
	}

	options.InteractiveArgs(cmd, i)
	topLevel.AddCommand(cmd)
}

func addAdjust(topLevel *cobra.Command) {
	i := &options.InteractiveOptions{}

	cmd := &cobra.Command{
		Use:   "adjust <n> <minutes>",
		Short: "Insert a block between block n and the next one.",
		Long: `Make room for a new block between block n and block n+1. Each of
the two gives up half of the time, so both must be longer than the new
block.`,
		Example: `
timebox adjust 1 30
timebox adjust 1 1h
timebox adjust -i 45m
`,
		RunE: dayCommand(nil, func(cmd *cobra.Command, e *env, d day.Day, args []string) (doer, error) {
			index, rest, err := e.blockIndex(cmd, d, args, i.Interactive)
			if err != nil {
				return nil, err
			}
			return &day.Adjust{Day: d, Index: index, Minutes: strings.Join(rest, "")}, nil
		}),
	}

	options.InteractiveArgs(cmd, i)
	topLevel.AddCommand(cmd)
}

func addSave(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save the labelled blocks of a day and sync them.",
		Long: `Save the labelled blocks of the day locally, export them as JSON
and iCalendar, and send them to the service. When the service can not be
reached the day is queued for "timebox sync".`,
		Args: cobra.NoArgs,
		RunE: dayCommand(nil, func(_ *cobra.Command, _ *env, d day.Day, _ []string) (doer, error) {
			return &day.Save{Day: d}, nil
		}),
	}

	topLevel.AddCommand(cmd)
}

func addReload(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "reload",
		Short: "Drop unsaved edits and load the day again.",
		Args:  cobra.NoArgs,
		RunE: dayCommand(nil, func(_ *cobra.Command, _ *env, d day.Day, _ []string) (doer, error) {
			return &day.Reload{Day: d}, nil
		}),
	}

	topLevel.AddCommand(cmd)
}

func addSync(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Send days saved while offline to the service.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, err := load(cmd.Context())
			if err != nil {
				return oo.HandleError(err)
			}
			s := day.Sync{Service: e.Service, JSON: oo.JSON, Out: cmd.OutOrStdout()}
			return oo.HandleError(s.Do(cmd.Context()))
		},
	}

	topLevel.AddCommand(cmd)
}

func addCarry(topLevel *cobra.Command) {
	from := &options.DateOptions{}

	cmd := &cobra.Command{
		Use:   "carry",
		Short: "Start a day with the labelled blocks of another day.",
		Long: `Copy the labelled blocks of --from into the selected day at the same times.
Unsaved edits of the selected day are replaced. Nothing is saved until "timebox save".`,
		Example: `
timebox carry
timebox carry --from 2024-02-26 --date tomorrow
`,
		Args: cobra.NoArgs,
		RunE: dayCommand(nil, func(_ *cobra.Command, _ *env, d day.Day, _ []string) (doer, error) {
			src, err := from.Resolve(time.Now())
			if err != nil {
				return nil, err
			}
			return &day.CarryOver{Day: d, From: src}, nil
		}),
	}

	cmd.Flags().StringVar(&from.Date, "from", "yesterday", "Day to copy blocks from.")
	topLevel.AddCommand(cmd)
}
