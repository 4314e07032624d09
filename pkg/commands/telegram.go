package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/timebox/pkg/runner/telegram"
)

func addTelegram(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "telegram",
		Short: "Link the Telegram reminder bot to your account.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	link := &cobra.Command{
		Use:   "link",
		Short: "Get a code to send to the bot.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, err := load(cmd.Context())
			if err != nil {
				return oo.HandleError(err)
			}
			l := telegram.Link{Service: e.Service, JSON: oo.JSON, Out: cmd.OutOrStdout()}
			return oo.HandleError(l.Do(cmd.Context()))
		},
	}

	unlink := &cobra.Command{
		Use:   "unlink",
		Short: "Stop Telegram reminders.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, err := load(cmd.Context())
			if err != nil {
				return oo.HandleError(err)
			}
			u := telegram.Unlink{Service: e.Service, JSON: oo.JSON, Out: cmd.OutOrStdout()}
			return oo.HandleError(u.Do(cmd.Context()))
		},
	}

	cmd.AddCommand(link, unlink)
	topLevel.AddCommand(cmd)
}
