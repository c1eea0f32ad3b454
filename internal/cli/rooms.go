package cli

import (
	"net/url"

	"github.com/spf13/cobra"
)

func newRoomsCmd(cfg *Config, client func() *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "rooms [roomId]",
		Short: "List active rooms, or show one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output, cmd.OutOrStdout())

			if len(args) == 1 {
				var room Room
				if err := client().Get(cmd.Context(), "/rooms/"+url.PathEscape(args[0]), &room); err != nil {
					return err
				}
				if cfg.Output == "json" {
					return out.printJSON(room)
				}
				return out.Rooms([]Room{room})
			}

			var rooms []Room
			if err := client().Get(cmd.Context(), "/rooms", &rooms); err != nil {
				return err
			}
			return out.Rooms(rooms)
		},
	}
}
