package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(Health{Status: "ok", Rooms: 1, Connections: 2})
	})
	mux.HandleFunc("/rooms", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]Room{{RoomID: "alpha", PlayerCount: 2, MaxSeats: 8, Phase: "flop", HandNumber: 3, Pot: 120}})
	})
	mux.HandleFunc("/rooms/alpha", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(Room{RoomID: "alpha", PlayerCount: 2, MaxSeats: 8, Phase: "flop"})
	})
	mux.HandleFunc("/rooms/ghost", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "room not found"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	pterm.DisableStyling()
	t.Cleanup(pterm.EnableStyling)

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestHealthText(t *testing.T) {
	srv := fakeServer(t)
	out, err := runCLI(t, "--server", srv.URL, "health")
	require.NoError(t, err)
	assert.Contains(t, out, "Status:      ok")
	assert.Contains(t, out, "Connections: 2")
}

func TestHealthJSON(t *testing.T) {
	srv := fakeServer(t)
	out, err := runCLI(t, "--server", srv.URL+"/", "-o", "json", "health")
	require.NoError(t, err)

	var h Health
	require.NoError(t, json.Unmarshal([]byte(out), &h))
	assert.Equal(t, Health{Status: "ok", Rooms: 1, Connections: 2}, h)
}

func TestRoomsTable(t *testing.T) {
	srv := fakeServer(t)
	out, err := runCLI(t, "--server", srv.URL, "rooms")
	require.NoError(t, err)
	assert.Contains(t, out, "ROOM")
	assert.Contains(t, out, "alpha")
	assert.Contains(t, out, "2/8")
	assert.Contains(t, out, "flop")
}

func TestSingleRoom(t *testing.T) {
	srv := fakeServer(t)
	out, err := runCLI(t, "--server", srv.URL, "-o", "json", "rooms", "alpha")
	require.NoError(t, err)

	var r Room
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.Equal(t, "alpha", r.RoomID)

	_, err = runCLI(t, "--server", srv.URL, "rooms", "ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "room not found")
}

func TestRejectsUnknownOutput(t *testing.T) {
	srv := fakeServer(t)
	_, err := runCLI(t, "--server", srv.URL, "-o", "yaml", "health")
	assert.EqualError(t, err, `invalid output format "yaml": want text or json`)
}

func TestEmptyRoomList(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewOutput("text", &buf).Rooms(nil))
	assert.Equal(t, "No active rooms\n", buf.String())
}
