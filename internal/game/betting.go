package game

import (
	"github.com/jason-s-yu/holdem/internal/models"
	"github.com/sirupsen/logrus"
)

// PerformAction applies a betting action for the player whose turn it is.
// A rejected action returns an error and changes nothing.
func (r *Room) PerformAction(playerID string, action models.Action) (Outcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.phase.Betting() {
		return Outcome{}, ErrNoHandInProgress
	}
	idx := r.indexOf(playerID)
	if idx < 0 {
		return Outcome{}, ErrPlayerNotFound
	}
	if idx != r.turn {
		return Outcome{}, ErrNotYourTurn
	}
	p := r.players[idx]
	if !p.CanAct() {
		return Outcome{}, ErrNotYourTurn
	}

	switch a := action.(type) {
	case models.Fold:
		p.Folded = true
	case models.Call:
		// Short stacks call all-in.
		r.pot += p.Commit(r.maxBet() - p.Bet)
	case models.Raise:
		if a.Amount <= 0 {
			return Outcome{}, ErrInvalidAmount
		}
		if a.Amount > p.Chips {
			return Outcome{}, ErrInsufficientChips
		}
		r.pot += p.Commit(a.Amount)
	default:
		return Outcome{}, ErrUnknownAction
	}

	r.log.WithFields(logrus.Fields{
		"player": playerID,
		"action": action.Kind(),
		"bet":    p.Bet,
		"pot":    r.pot,
		"phase":  r.phase,
	}).Debug("action applied")

	out := Outcome{HandID: r.handID, HandNumber: r.handNumber}
	out.Result = r.afterAction()
	out.Phase = r.phase
	return out, nil
}

// afterAction moves the turn on and settles the round if it is closed.
func (r *Room) afterAction() *HandResult {
	if r.contenderCount() == 1 {
		return r.finishHand()
	}
	r.turn = r.nextActor(r.turn)
	if r.roundClosed() {
		return r.closeRound()
	}
	if r.turn < 0 {
		return r.abortHand(errTurnUnresolved)
	}
	return nil
}

// roundClosed reports whether betting for the current phase is over: one
// contender is left, or everyone still able to act has matched the highest
// bet. All-in players have nothing left to match with and do not hold the
// round open.
func (r *Room) roundClosed() bool {
	if r.contenderCount() <= 1 {
		return true
	}
	high := r.maxBet()
	for _, p := range r.players {
		if p.CanAct() && p.Bet != high {
			return false
		}
	}
	return true
}

// closeRound clears round bets and advances the phase, revealing community
// cards. With fewer than two players able to bet, the remaining board is run
// out straight to showdown.
func (r *Room) closeRound() *HandResult {
	if r.contenderCount() <= 1 {
		return r.finishHand()
	}
	for _, p := range r.players {
		p.Bet = 0
	}

	for {
		next := r.phase.Next()
		if next == models.PhaseShowdown {
			return r.finishHand()
		}
		if err := r.reveal(next.Reveals()); err != nil {
			return r.abortHand(err)
		}
		r.phase = next
		r.log.WithFields(logrus.Fields{"phase": r.phase, "board": r.community}).Debug("phase advanced")

		if r.actorCount() >= 2 {
			r.turn = r.firstActorFrom(0)
			return nil
		}
	}
}

func (r *Room) reveal(n int) error {
	for i := 0; i < n; i++ {
		c, err := r.deck.Draw()
		if err != nil {
			return err
		}
		r.community = append(r.community, c)
	}
	return nil
}

// finishHand settles the pot and schedules the next deal.
func (r *Room) finishHand() *HandResult {
	r.phase = models.PhaseShowdown
	r.turn = -1
	res := r.settle()
	for _, p := range r.players {
		p.Bet = 0
	}
	r.pot = 0
	r.lastResult = res
	r.log.WithFields(logrus.Fields{
		"hand":    r.handNumber,
		"winners": res.Winners,
		"amount":  res.Amount,
		"desc":    res.Hand,
	}).Info("hand settled")

	r.maybeScheduleDeal()
	if !r.dealPending {
		r.phase = models.PhaseWaiting
	}
	return res
}

// firstActorFrom returns the first seat at or after start that can act, or -1.
func (r *Room) firstActorFrom(start int) int {
	n := len(r.players)
	for i := 0; i < n; i++ {
		idx := (start + i) % n
		if r.players[idx].CanAct() {
			return idx
		}
	}
	return -1
}

// nextActor returns the next seat after from that can act. The scan wraps all
// the way round, so a lone actor gets the turn back. Returns -1 if nobody can act.
func (r *Room) nextActor(from int) int {
	n := len(r.players)
	if n == 0 {
		return -1
	}
	return r.firstActorFrom((from + 1) % n)
}

// contenderCount counts players still holding live cards.
func (r *Room) contenderCount() int {
	n := 0
	for _, p := range r.players {
		if !p.Folded && !p.SittingOut {
			n++
		}
	}
	return n
}

func (r *Room) actorCount() int {
	n := 0
	for _, p := range r.players {
		if p.CanAct() {
			n++
		}
	}
	return n
}

func (r *Room) maxBet() int {
	high := 0
	for _, p := range r.players {
		if !p.Folded && !p.SittingOut && p.Bet > high {
			high = p.Bet
		}
	}
	return high
}
