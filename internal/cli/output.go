package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/pterm/pterm"
)

type errInvalidOutput string

func (e errInvalidOutput) Error() string {
	return fmt.Sprintf("invalid output format %q: want text or json", string(e))
}

// Health mirrors the server's /health body.
type Health struct {
	Status      string `json:"status"`
	Rooms       int    `json:"rooms"`
	Connections int    `json:"connections"`
}

// Room mirrors one entry of /rooms.
type Room struct {
	RoomID      string `json:"roomId"`
	PlayerCount int    `json:"playerCount"`
	MaxSeats    int    `json:"maxSeats"`
	Phase       string `json:"phase"`
	HandNumber  int    `json:"handNumber"`
	Pot         int    `json:"pot"`
}

// Output renders results as JSON or as pterm tables.
type Output struct {
	format string
	w      io.Writer
}

func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

func (o *Output) printJSON(data any) error {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(o.w, string(b))
	return err
}

func (o *Output) Health(h Health) error {
	if o.format == "json" {
		return o.printJSON(h)
	}
	status := pterm.Green(h.Status)
	if h.Status != "ok" {
		status = pterm.Red(h.Status)
	}
	_, err := fmt.Fprintf(o.w, "Status:      %s\nRooms:       %d\nConnections: %d\n", status, h.Rooms, h.Connections)
	return err
}

func (o *Output) Rooms(rooms []Room) error {
	if o.format == "json" {
		return o.printJSON(rooms)
	}
	if len(rooms) == 0 {
		_, err := fmt.Fprintln(o.w, "No active rooms")
		return err
	}

	data := pterm.TableData{{"ROOM", "PLAYERS", "PHASE", "HAND", "POT"}}
	for _, r := range rooms {
		data = append(data, []string{
			r.RoomID,
			fmt.Sprintf("%d/%d", r.PlayerCount, r.MaxSeats),
			r.Phase,
			strconv.Itoa(r.HandNumber),
			strconv.Itoa(r.Pot),
		})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(o.w, table)
	return err
}
