package options

import (
	"os"

	"github.com/spf13/cobra"
)

// CredentialOptions
type CredentialOptions struct {
	Username string
	Password string
}

func AddCredentialArgs(cmd *cobra.Command, o *CredentialOptions) {
	cmd.Flags().StringVarP(&o.Username, "username", "u", "",
		"Account name. Prompted for when missing.")
	cmd.Flags().StringVar(&o.Password, "password", "",
		"Account password. Prompted for when missing; TIMEBOX_PASSWORD is also read.")
}

// GetPassword prefers the flag, then TIMEBOX_PASSWORD.
func (o *CredentialOptions) GetPassword() string {
	if o.Password != "" {
		return o.Password
	}
	return os.Getenv("TIMEBOX_PASSWORD")
}
