package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/roomlobby/internal/model"
	"github.com/mcoot/roomlobby/internal/services/session"
)

func newCreateCmd() *cobra.Command {
	var (
		black     bool
		timeLimit int
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new game and wait to be seated",
		RunE: withApp(func(cmd *cobra.Command, out *Output) error {
			stakes := model.Stakes{PlayWhite: !black, TimeLimit: timeLimit}
			if err := stakes.Validate(); err != nil {
				return err
			}

			ls, err := startSession(cmd, out, true)
			if err != nil {
				return err
			}
			defer ls.stop()

			st, err := ls.wait(func(st session.Status) bool {
				return st.State == session.StateIdle || st.State == session.StateGameAssigned
			})
			if err != nil || ls.interrupted() {
				return err
			}
			if st.State == session.StateGameAssigned {
				return fmt.Errorf("already playing in game %s", st.Assignment.GameID)
			}

			if err := app.Session.CreateGame(ls.ctx, stakes); err != nil {
				return err
			}

			select {
			case link := <-navigated:
				out.Print(link)
				return nil
			case <-ls.ctx.Done():
				return ls.err()
			}
		}),
	}

	cmd.Flags().BoolVar(&black, "black", false, "Take the black seat instead of white")
	cmd.Flags().IntVar(&timeLimit, "time", model.DefaultTimeLimit, "Time limit in seconds")

	return cmd
}
