package options

import (
	"github.com/spf13/cobra"
)

// BlockOptions move a block while labelling it.
type BlockOptions struct {
	Start string
	End   string
}

func AddBlockArgs(cmd *cobra.Command, o *BlockOptions) {
	cmd.Flags().StringVar(&o.Start, "start", "",
		`New start time, example: --start=9:30.`)
	cmd.Flags().StringVar(&o.End, "end", "",
		`New end time, example: --end=10:15. Use 24:00 for the end of the day.`)
}

// InteractiveOptions pick the block from a list.
type InteractiveOptions struct {
	Interactive bool
}

func InteractiveArgs(cmd *cobra.Command, o *InteractiveOptions) {
	cmd.Flags().BoolVarP(&o.Interactive, "interactive", "i", false,
		`Pick the block from a list instead of giving its number.`)
}

// IDOptions add block ids to the printed table. Ids are what the service
// knows a block by; the numbers shown are positions and change as blocks
// are added or removed.
type IDOptions struct {
	ShowID bool
}

func AddShowIDArgs(cmd *cobra.Command, o *IDOptions) {
	cmd.Flags().BoolVarP(&o.ShowID, "show-id", "k", false,
		"Show the ID of each block.")
}
