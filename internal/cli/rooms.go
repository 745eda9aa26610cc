package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/roomlobby/internal/services/roomlist"
	"github.com/mcoot/roomlobby/internal/services/view"
)

// viewFlags are the filter and sort options shared by rooms and watch
type viewFlags struct {
	status  string
	sortKey string
	order   string
}

func (f *viewFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.status, "status", string(view.StatusAll), fmt.Sprintf("Filter rooms: %v", view.Statuses()))
	cmd.Flags().StringVar(&f.sortKey, "sort", string(view.SortGameID), fmt.Sprintf("Sort rooms by: %v", view.SortKeys()))
	cmd.Flags().StringVar(&f.order, "order", string(view.OrderAsc), "Sort order: asc, desc")
}

func (f *viewFlags) criteria() view.Criteria {
	return view.Criteria{
		Status:  view.ParseStatus(f.status),
		SortKey: view.ParseSortKey(f.sortKey),
		Order:   view.ParseOrder(f.order),
	}
}

func newRoomsCmd() *cobra.Command {
	var flags viewFlags

	cmd := &cobra.Command{
		Use:   "rooms",
		Short: "Print the current room list",
		RunE: withApp(func(cmd *cobra.Command, out *Output) error {
			updates, unsubscribe := app.Rooms.Subscribe()
			defer unsubscribe()

			ls, err := startSession(cmd, out, true)
			if err != nil {
				return err
			}
			defer ls.stop()

			snap, err := nextSnapshot(ls, updates)
			if err != nil {
				return err
			}
			if snap == nil {
				return nil
			}

			out.Print(NewRoomList(view.Build(snap, flags.criteria()), app.Session.PlayerInfo()))
			return nil
		}),
	}

	flags.register(cmd)

	return cmd
}

// nextSnapshot waits for the next room list from the server. A nil snapshot
// with a nil error means the user interrupted.
func nextSnapshot(ls *liveSession, updates <-chan *roomlist.Snapshot) (*roomlist.Snapshot, error) {
	select {
	case snap := <-updates:
		return snap, nil
	case <-ls.ctx.Done():
		return nil, ls.err()
	}
}
