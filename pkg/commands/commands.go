package commands

import (
	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"tableflip.dev/timebox/pkg/commands/options"
)

var (
	oo = &options.OutputOptions{}
	do = &options.DateOptions{}
)

func New() *cobra.Command {

	cmd := &cobra.Command{
		Use:   "timebox",
		Short: base.Wrap80("Plan your day in timeboxes on the command line."),
		Long: base.Wrap80("Plan your day in timeboxes on the command line. " +
			"Each day is a list of numbered blocks; edits are kept locally until " +
			"you save, and saved days sync to the timebox service."),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	options.AddOutputArg(cmd, oo)
	options.AddDateArg(cmd, do)

	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addLogin(topLevel)
	addSignup(topLevel)
	addLogout(topLevel)
	addStatus(topLevel)

	addShow(topLevel)
	addSet(topLevel)
	addAdd(topLevel)
	addDelete(topLevel)
	addAdjust(topLevel)
	addSave(topLevel)
	addReload(topLevel)
	addSync(topLevel)
	addCarry(topLevel)
	addReport(topLevel)
	addBrowse(topLevel)

	addSettings(topLevel)
	addTelegram(topLevel)

	addInfo(topLevel)
	addWatch(topLevel)
	addMCP(topLevel)
	addCompletions(topLevel)
	addVersion(topLevel)
}
