package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func addCompletions(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generates shell completion scripts",
		Long: `To load completion in bash run

. <(timebox completion)

To configure your bash shell to load completions for each session add to your bashrc

# ~/.bashrc or ~/.profile
. <(timebox completion)

For zsh, fish and powershell pass the shell name and source the output the
way your shell expects.
`,
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.MaximumNArgs(1)(cmd, args); err != nil {
				return err
			}
			return cobra.OnlyValidArgs(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			shell := "bash"
			if len(args) == 1 {
				shell = args[0]
			}
			out := cmd.OutOrStdout()
			switch shell {
			case "zsh":
				return topLevel.GenZshCompletion(out)
			case "fish":
				return topLevel.GenFishCompletion(out, true)
			case "powershell":
				return topLevel.GenPowerShellCompletionWithDesc(out)
			case "bash":
				return topLevel.GenBashCompletion(out)
			}
			return fmt.Errorf("unsupported shell %q", shell)
		},
	}

	_ = topLevel.RegisterFlagCompletionFunc("date", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return dateCompletions(), cobra.ShellCompDirectiveNoFileComp
	})

	topLevel.AddCommand(cmd)
}

// dateCompletions offers the relative day names and every saved day.
func dateCompletions() []string {
	out := []string{"today", "tomorrow", "yesterday"}
	e, err := load(context.Background())
	if err != nil {
		return out
	}
	dates, err := e.Service.Dates(context.Background())
	if err != nil {
		return out
	}
	return append(out, dates...)
}
