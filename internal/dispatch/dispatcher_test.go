package dispatch

import (
	"io"
	"sync"
	"testing"
	"time"

	"github.com/jason-s-yu/holdem/internal/game"
	"github.com/jason-s-yu/holdem/internal/models"
	"github.com/jason-s-yu/holdem/internal/session"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingHandle collects messages instead of writing them to a socket.
type recordingHandle struct {
	id     string
	mu     sync.Mutex
	msgs   []Message
	reject bool
}

func (h *recordingHandle) ID() string { return h.id }

func (h *recordingHandle) Send(msg any) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.reject {
		return false
	}
	h.msgs = append(h.msgs, msg.(Message))
	return true
}

func (h *recordingHandle) last() Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.msgs[len(h.msgs)-1]
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func setup(t *testing.T, ids ...string) (*game.Room, *session.Directory, *Dispatcher) {
	t.Helper()
	r := game.NewRoom("r1", game.Options{DealDelay: time.Hour, Logger: quietLogger()})
	for _, id := range ids {
		require.NoError(t, r.Join(id, id))
	}
	dir := session.NewDirectory()
	return r, dir, New(dir, quietLogger())
}

func TestBroadcastStateRedactsPerRecipient(t *testing.T) {
	r, dir, d := setup(t, "A", "B", "C")
	require.NoError(t, r.StartHand())

	handles := map[string]*recordingHandle{}
	for _, id := range []string{"A", "B"} {
		h := &recordingHandle{id: "conn-" + id}
		handles[id] = h
		dir.Register(id, h)
	}

	// C has no handle and is skipped.
	assert.Equal(t, 2, d.BroadcastState(r))

	for id, h := range handles {
		msg := h.last()
		require.Equal(t, TypeState, msg.Type)
		require.NotNil(t, msg.State)
		require.Len(t, msg.State.Players, 3)
		for _, p := range msg.State.Players {
			require.Len(t, p.Cards, 2)
			if p.ID == id {
				assert.NotContains(t, p.Cards, models.HiddenCard)
			} else {
				assert.Equal(t, []string{models.HiddenCard, models.HiddenCard}, p.Cards)
			}
		}
	}
}

func TestBroadcastSkipsFailingHandle(t *testing.T) {
	r, dir, d := setup(t, "A", "B")
	bad := &recordingHandle{id: "bad", reject: true}
	good := &recordingHandle{id: "good"}
	dir.Register("A", bad)
	dir.Register("B", good)

	assert.Equal(t, 1, d.BroadcastState(r))
	assert.Empty(t, bad.msgs)
	assert.Len(t, good.msgs, 1)
}

func TestNotifyAndSendError(t *testing.T) {
	r, dir, d := setup(t, "A", "B")
	a := &recordingHandle{id: "a"}
	b := &recordingHandle{id: "b"}
	dir.Register("A", a)
	dir.Register("B", b)

	d.Notify(r, Message{Type: TypePlayerJoined, ID: "B", Name: "B"})
	assert.Equal(t, TypePlayerJoined, a.last().Type)
	assert.Equal(t, "B", b.last().ID)

	d.SendError(a, "not your turn")
	assert.Equal(t, Message{Type: TypeError, Message: "not your turn"}, a.last())
	assert.Len(t, b.msgs, 1)

	d.SendError(nil, "ignored")
}
