package cli

import (
	"github.com/spf13/cobra"
)

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored player identity",
		RunE: withApp(func(cmd *cobra.Command, out *Output) error {
			if err := app.Session.Logout(cmd.Context()); err != nil {
				return err
			}
			out.PrintMessage("Logged out")
			return nil
		}),
	}
}
