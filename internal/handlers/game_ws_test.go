package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/jason-s-yu/holdem/internal/dispatch"
	"github.com/jason-s-yu/holdem/internal/game"
	"github.com/jason-s-yu/holdem/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startServer(t *testing.T, dealDelay time.Duration) (*GameServer, *httptest.Server) {
	t.Helper()
	gs := newTestServer(t, dealDelay)
	srv := httptest.NewServer(NewRouter(quietLogger(), gs))
	t.Cleanup(srv.Close)
	return gs, srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	c, _, err := websocket.Dial(ctx, url, &websocket.DialOptions{Subprotocols: []string{Subprotocol}})
	require.NoError(t, err)
	t.Cleanup(func() { c.CloseNow() })
	return c
}

func send(t *testing.T, c *websocket.Conn, msg GameMessage) {
	t.Helper()
	data, err := json.Marshal(msg)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, c.Write(ctx, websocket.MessageText, data))
}

// expect reads until a message of the given type arrives.
func expect(t *testing.T, c *websocket.Conn, typ string) dispatch.Message {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for {
		_, data, err := c.Read(ctx)
		require.NoError(t, err, "waiting for %s", typ)
		var msg dispatch.Message
		require.NoError(t, json.Unmarshal(data, &msg))
		if msg.Type == typ {
			return msg
		}
	}
}

// expectPhase reads state updates until one reaches phase.
func expectPhase(t *testing.T, c *websocket.Conn, phase models.Phase) *dispatch.Message {
	t.Helper()
	for {
		msg := expect(t, c, dispatch.TypeState)
		if msg.State.Phase == phase {
			return &msg
		}
	}
}

func TestWebSocketHandFlow(t *testing.T) {
	gs, srv := startServer(t, 10*time.Millisecond)
	a := dial(t, srv)
	b := dial(t, srv)

	send(t, a, GameMessage{Type: TypeJoin, RoomID: "table", PlayerID: "A", PlayerName: "Alice"})
	expect(t, a, dispatch.TypeState)
	send(t, b, GameMessage{Type: TypeJoin, RoomID: "table", PlayerID: "B", PlayerName: "Bob"})
	joined := expect(t, a, dispatch.TypePlayerJoined)
	assert.Equal(t, "B", joined.ID)

	stA := expectPhase(t, a, models.PhasePreflop).State
	stB := expectPhase(t, b, models.PhasePreflop).State
	assert.NotContains(t, stA.Players[0].Cards, models.HiddenCard)
	assert.Equal(t, []string{models.HiddenCard, models.HiddenCard}, stA.Players[1].Cards)
	assert.Equal(t, []string{models.HiddenCard, models.HiddenCard}, stB.Players[0].Cards)
	assert.Equal(t, 0, stB.CurrentPlayerIndex)

	// B acting out of turn is rejected with an error to B only.
	send(t, b, GameMessage{Type: TypeAction, Action: "call"})
	errMsg := expect(t, b, dispatch.TypeError)
	assert.Contains(t, errMsg.Message, "turn")

	send(t, a, GameMessage{Type: TypeAction, Action: "raise", Amount: 40})
	st := expect(t, b, dispatch.TypeState).State
	assert.Equal(t, 40, st.Pot)
	assert.Equal(t, 1, st.CurrentPlayerIndex)

	send(t, b, GameMessage{Type: TypeAction, Action: "fold"})
	var last *game.HandResult
	for last == nil {
		last = expect(t, a, dispatch.TypeState).State.LastHand
	}
	assert.Equal(t, []string{"A"}, last.Winners)
	assert.Equal(t, 40, last.Amount)
	assert.True(t, last.Uncontested)

	assert.Equal(t, 1, gs.Rooms.Count())
}

func TestWebSocketProtocolErrors(t *testing.T) {
	_, srv := startServer(t, time.Hour)
	c := dial(t, srv)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, c.Write(ctx, websocket.MessageText, []byte("{not json")))
	assert.Equal(t, "invalid JSON format", expect(t, c, dispatch.TypeError).Message)

	send(t, c, GameMessage{Type: "bogus"})
	assert.Contains(t, expect(t, c, dispatch.TypeError).Message, "unknown message type")

	send(t, c, GameMessage{Type: TypeAction, Action: "call"})
	assert.Equal(t, ErrNotSeated.Error(), expect(t, c, dispatch.TypeError).Message)

	send(t, c, GameMessage{Type: TypePing})
	expect(t, c, dispatch.TypePong)

	send(t, c, GameMessage{Type: TypeJoin, RoomID: "r", PlayerID: "A"})
	expect(t, c, dispatch.TypeState)
	send(t, c, GameMessage{Type: TypeJoin, RoomID: "r2", PlayerID: "A2"})
	assert.Contains(t, expect(t, c, dispatch.TypeError).Message, "already seated")
}

func TestWebSocketDisconnectRemovesPlayer(t *testing.T) {
	gs, srv := startServer(t, time.Hour)
	a := dial(t, srv)
	b := dial(t, srv)

	send(t, a, GameMessage{Type: TypeJoin, RoomID: "r", PlayerID: "A"})
	expect(t, a, dispatch.TypeState)
	send(t, b, GameMessage{Type: TypeJoin, RoomID: "r", PlayerID: "B"})
	expect(t, a, dispatch.TypePlayerJoined)

	require.NoError(t, b.Close(websocket.StatusNormalClosure, "bye"))
	left := expect(t, a, dispatch.TypePlayerLeft)
	assert.Equal(t, "B", left.ID)

	require.NoError(t, a.Close(websocket.StatusNormalClosure, "bye"))
	require.Eventually(t, func() bool { return gs.Rooms.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, gs.Sessions.Len())
}

func TestWebSocketRequiresSubprotocol(t *testing.T) {
	_, srv := startServer(t, time.Hour)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	c, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer c.CloseNow()

	_, _, err = c.Read(ctx)
	assert.Equal(t, BadSubprotocolError, websocket.CloseStatus(err))
}
