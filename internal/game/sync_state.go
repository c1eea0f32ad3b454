package game

import (
	"github.com/jason-s-yu/holdem/internal/models"
)

// PlayerState is one seat as seen by a particular viewer. Cards hold real
// values only for the viewer's own seat; everyone else's are HiddenCard.
type PlayerState struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Chips  int      `json:"chips"`
	Cards  []string `json:"cards"`
	Bet    int      `json:"bet"`
	Folded bool     `json:"folded"`
}

// State is the full room snapshot sent in game:state messages.
type State struct {
	RoomID             string        `json:"roomId"`
	Players            []PlayerState `json:"players"`
	CommunityCards     []models.Card `json:"communityCards"`
	Pot                int           `json:"pot"`
	CurrentPlayerIndex int           `json:"currentPlayerIndex"`
	Phase              models.Phase  `json:"phase"`
	HandNumber         int           `json:"handNumber"`
	LastHand           *HandResult   `json:"lastHand,omitempty"`
}

// Summary is the public listing entry for a room.
type Summary struct {
	RoomID      string       `json:"roomId"`
	PlayerCount int          `json:"playerCount"`
	MaxSeats    int          `json:"maxSeats"`
	Phase       models.Phase `json:"phase"`
	HandNumber  int          `json:"handNumber"`
	Pot         int          `json:"pot"`
}

// StateFor returns the room as the given player may see it. An empty or
// unknown viewer sees every hole card hidden.
func (r *Room) StateFor(viewerID string) State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stateFor(viewerID)
}

// EachView builds a redacted snapshot for every seated player and hands it to
// fn while the room lock is held, so all viewers see the same version of the
// room. fn must not block or call back into the room.
func (r *Room) EachView(fn func(playerID string, s State)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.players {
		fn(p.ID, r.stateFor(p.ID))
	}
}

// Summary returns the public listing entry.
func (r *Room) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Summary{
		RoomID:      r.ID,
		PlayerCount: len(r.players),
		MaxSeats:    r.opts.MaxSeats,
		Phase:       r.phase,
		HandNumber:  r.handNumber,
		Pot:         r.pot,
	}
}

func (r *Room) stateFor(viewerID string) State {
	s := State{
		RoomID:             r.ID,
		Players:            make([]PlayerState, 0, len(r.players)),
		CommunityCards:     append([]models.Card{}, r.community...),
		Pot:                r.pot,
		CurrentPlayerIndex: -1,
		Phase:              r.phase,
		HandNumber:         r.handNumber,
	}
	if r.phase.Betting() {
		s.CurrentPlayerIndex = r.turn
	}
	if r.lastResult != nil {
		res := *r.lastResult
		res.Winners = append([]string{}, r.lastResult.Winners...)
		s.LastHand = &res
	}

	for _, p := range r.players {
		ps := PlayerState{
			ID:     p.ID,
			Name:   p.Name,
			Chips:  p.Chips,
			Cards:  make([]string, len(p.Cards)),
			Bet:    p.Bet,
			Folded: p.Folded,
		}
		for i, c := range p.Cards {
			if p.ID == viewerID && viewerID != "" {
				ps.Cards[i] = c.String()
			} else {
				ps.Cards[i] = models.HiddenCard
			}
		}
		s.Players = append(s.Players, ps)
	}
	return s
}
