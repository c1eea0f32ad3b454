// Package dispatch pushes room state and notifications to connected players.
package dispatch

import (
	"github.com/jason-s-yu/holdem/internal/game"
	"github.com/jason-s-yu/holdem/internal/session"
	"github.com/sirupsen/logrus"
)

// Outbound message types.
const (
	TypeState        = "game:state"
	TypePlayerJoined = "player:joined"
	TypePlayerLeft   = "player:left"
	TypeError        = "error"
	TypePong         = "pong"
)

// Message is the outbound wire envelope. Only the fields relevant to Type are set.
type Message struct {
	Type    string      `json:"type"`
	State   *game.State `json:"state,omitempty"`
	ID      string      `json:"id,omitempty"`
	Name    string      `json:"name,omitempty"`
	Message string      `json:"message,omitempty"`
}

// Dispatcher fans room updates out through the session directory. Sends are
// non-blocking, so a slow client never holds up the room.
type Dispatcher struct {
	dir *session.Directory
	log *logrus.Entry
}

func New(dir *session.Directory, logger *logrus.Logger) *Dispatcher {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Dispatcher{dir: dir, log: logger.WithField("component", "dispatch")}
}

// BroadcastState sends every seated player their own redacted view of the
// room. Players without a registered handle are skipped. Returns how many
// views were queued.
func (d *Dispatcher) BroadcastState(r *game.Room) int {
	sent := 0
	r.EachView(func(playerID string, s game.State) {
		h, ok := d.dir.Lookup(playerID)
		if !ok {
			return
		}
		view := s
		if h.Send(Message{Type: TypeState, State: &view}) {
			sent++
			return
		}
		d.log.WithFields(logrus.Fields{"room": r.ID, "player": playerID, "conn": h.ID()}).Warn("state push dropped")
	})
	return sent
}

// Notify sends msg to every player seated in the room.
func (d *Dispatcher) Notify(r *game.Room, msg Message) {
	for _, playerID := range r.PlayerIDs() {
		h, ok := d.dir.Lookup(playerID)
		if !ok {
			continue
		}
		if !h.Send(msg) {
			d.log.WithFields(logrus.Fields{"room": r.ID, "player": playerID, "type": msg.Type}).Warn("notification dropped")
		}
	}
}

// SendError reports a rejected request to one connection only.
func (d *Dispatcher) SendError(h session.Handle, text string) {
	if h == nil {
		return
	}
	if !h.Send(Message{Type: TypeError, Message: text}) {
		d.log.WithField("conn", h.ID()).Warn("error push dropped")
	}
}
