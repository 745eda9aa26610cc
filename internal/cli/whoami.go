package cli

import (
	"github.com/spf13/cobra"

	"github.com/mcoot/roomlobby/internal/services/session"
)

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the identity the server acknowledged",
		RunE: withApp(func(cmd *cobra.Command, out *Output) error {
			ls, err := startSession(cmd, out, true)
			if err != nil {
				return err
			}
			defer ls.stop()

			st, err := ls.wait(func(st session.Status) bool { return st.Player != nil })
			if err != nil || st.Player == nil {
				return err
			}

			out.Print(NewPlayer(*st.Player))
			return nil
		}),
	}
}
