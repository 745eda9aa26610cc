package cli

import (
	"github.com/spf13/cobra"

	"github.com/mcoot/roomlobby/internal/services/view"
)

func newWatchCmd() *cobra.Command {
	var flags viewFlags

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow the room list until a game is assigned",
		Long: `Print the room list every time the server sends an update. The command
exits with a link to the game once this player is seated in one.`,
		RunE: withApp(func(cmd *cobra.Command, out *Output) error {
			updates, unsubscribe := app.Rooms.Subscribe()
			defer unsubscribe()

			ls, err := startSession(cmd, out, false)
			if err != nil {
				return err
			}
			defer ls.stop()

			criteria := flags.criteria()
			for {
				select {
				case snap := <-updates:
					out.Print(NewRoomList(view.Build(snap, criteria), app.Session.PlayerInfo()))
				case link := <-navigated:
					out.Print(link)
					return nil
				case <-ls.ctx.Done():
					return ls.err()
				}
			}
		}),
	}

	flags.register(cmd)

	return cmd
}
