package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/timebox/pkg/app"
	"tableflip.dev/timebox/pkg/runner/settings"
)

func addSettings(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change your preferences.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	addSettingsGet(cmd)
	addSettingsSet(cmd)

	topLevel.AddCommand(cmd)
}

func addSettingsGet(parent *cobra.Command) {
	var fromServer bool

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Show your preferences.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, err := load(cmd.Context())
			if err != nil {
				return oo.HandleError(err)
			}
			g := settings.Get{Service: e.Service, Remote: fromServer, JSON: oo.JSON, Out: cmd.OutOrStdout()}
			return oo.HandleError(g.Do(cmd.Context()))
		},
	}

	cmd.Flags().BoolVar(&fromServer, "refresh", false, "Refresh the Telegram link state from the service first.")
	parent.AddCommand(cmd)
}

func addSettingsSet(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one preference.",
		Long: "Change one preference. Keys: " + strings.Join(app.SettingKeys(), ", ") + `.
Switches take on or off; slot takes one of 15m, 30m, 45m, 1h, 1h30m or 2h.`,
		Example: `
timebox settings set slot 45m
timebox settings set nudge on
timebox settings set name Ada Lovelace
`,
		Args:      cobra.MinimumNArgs(2),
		ValidArgs: app.SettingKeys(),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			e, err := load(cmd.Context())
			if err != nil {
				return oo.HandleError(err)
			}
			s := settings.Set{
				Service: e.Service,
				Key:     args[0],
				Value:   strings.Join(args[1:], " "),
				JSON:    oo.JSON,
				Out:     cmd.OutOrStdout(),
			}
			return oo.HandleError(s.Do(cmd.Context()))
		},
	}

	parent.AddCommand(cmd)
}
