package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/timebox/pkg/commands/options"
	"tableflip.dev/timebox/pkg/runner/account"
)

func addLogin(topLevel *cobra.Command) {
	topLevel.AddCommand(credentialCommand("login", "Sign in to the timebox service.", false))
}

func addSignup(topLevel *cobra.Command) {
	topLevel.AddCommand(credentialCommand("signup", "Create an account and sign in.", true))
}

func credentialCommand(use, short string, signup bool) *cobra.Command {
	co := &options.CredentialOptions{}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Example: `
timebox ` + use + `
timebox ` + use + ` --username ada
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, err := load(cmd.Context())
			if err != nil {
				return oo.HandleError(err)
			}
			l := account.Login{
				Service:  e.Service,
				Signup:   signup,
				Username: co.Username,
				Password: co.GetPassword(),
				Prompter: e.prompter(cmd),
				JSON:     oo.JSON,
				Out:      cmd.OutOrStdout(),
			}
			return oo.HandleError(l.Do(cmd.Context()))
		},
	}

	options.AddCredentialArgs(cmd, co)
	return cmd
}

func addLogout(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Sign out and reset local settings and unsaved edits.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, err := load(cmd.Context())
			if err != nil {
				return oo.HandleError(err)
			}
			l := account.Logout{Service: e.Service, JSON: oo.JSON, Out: cmd.OutOrStdout()}
			return oo.HandleError(l.Do(cmd.Context()))
		},
	}

	topLevel.AddCommand(cmd)
}

func addStatus(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the session and the days waiting to sync.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, err := load(cmd.Context())
			if err != nil {
				return oo.HandleError(err)
			}
			s := account.Status{Service: e.Service, Config: e.Config, JSON: oo.JSON, Out: cmd.OutOrStdout()}
			return oo.HandleError(s.Do(cmd.Context()))
		},
	}

	topLevel.AddCommand(cmd)
}
