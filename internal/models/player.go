package models

// Player is one seat at a room. Players are owned by their room and only
// mutated under the room lock.
type Player struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Chips int    `json:"chips"`
	Cards []Card `json:"cards"`

	// Bet is the amount put in during the current betting round.
	Bet    int  `json:"bet"`
	Folded bool `json:"folded"`

	// Committed is the hand-cumulative contribution to the pot. Only used to
	// refund chips when a hand is aborted.
	Committed int `json:"-"`

	// AllIn is set when the player's chips hit zero inside a hand.
	AllIn bool `json:"-"`

	// SittingOut players had no chips at the deal and hold no cards.
	SittingOut bool `json:"-"`
}

// CanAct reports whether the player can still put chips in this hand.
func (p *Player) CanAct() bool {
	return !p.Folded && !p.AllIn && !p.SittingOut
}

// ResetForHand clears per-hand state before a deal.
func (p *Player) ResetForHand() {
	p.Cards = nil
	p.Bet = 0
	p.Committed = 0
	p.Folded = false
	p.AllIn = false
	p.SittingOut = false
}

// Commit moves up to amount chips from the stack into the current bet and
// returns what was actually moved. Hitting zero marks the player all-in.
func (p *Player) Commit(amount int) int {
	if amount > p.Chips {
		amount = p.Chips
	}
	if amount < 0 {
		amount = 0
	}
	p.Chips -= amount
	p.Bet += amount
	p.Committed += amount
	if p.Chips == 0 {
		p.AllIn = true
	}
	return amount
}
