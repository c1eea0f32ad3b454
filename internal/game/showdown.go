package game

import (
	"fmt"

	"github.com/jason-s-yu/holdem/internal/models"
	"github.com/paulhankin/poker"
)

// settle pays out the pot to the best hand among contenders. Ties split the
// pot evenly; odd chips go to the earliest seat among the winners. An
// uncontested pot or an incomplete board pays the first contender in seat order.
func (r *Room) settle() *HandResult {
	res := &HandResult{HandID: r.handID, HandNumber: r.handNumber, Amount: r.pot, Winners: []string{}}

	var contenders []*models.Player
	for _, p := range r.players {
		if !p.Folded && !p.SittingOut {
			contenders = append(contenders, p)
		}
	}
	if len(contenders) == 0 {
		return res
	}
	if len(contenders) == 1 || len(r.community) < 5 {
		w := contenders[0]
		w.Chips += r.pot
		res.Winners = append(res.Winners, w.ID)
		res.Uncontested = len(contenders) == 1
		return res
	}

	var (
		best    int16 = -1
		winners []*models.Player
	)
	for _, p := range contenders {
		score, err := Evaluate(p.Cards, r.community)
		if err != nil {
			r.log.WithError(err).WithField("player", p.ID).Error("hand evaluation failed")
			continue
		}
		switch {
		case score > best:
			best = score
			winners = []*models.Player{p}
		case score == best:
			winners = append(winners, p)
		}
	}
	if len(winners) == 0 {
		winners = contenders[:1]
	}

	share := r.pot / len(winners)
	odd := r.pot % len(winners)
	for i, w := range winners {
		w.Chips += share
		if i == 0 {
			w.Chips += odd
		}
		res.Winners = append(res.Winners, w.ID)
	}
	if desc, err := Describe(winners[0].Cards, r.community); err == nil {
		res.Hand = desc
	}
	return res
}

// Evaluate scores the best five-card hand from two hole cards and a full
// board. Higher scores are better.
func Evaluate(hole, board []models.Card) (int16, error) {
	cards, err := sevenCards(hole, board)
	if err != nil {
		return 0, err
	}
	return poker.Eval7(&cards), nil
}

// Describe names the best hand, e.g. "two pair, kings and nines".
func Describe(hole, board []models.Card) (string, error) {
	cards, err := sevenCards(hole, board)
	if err != nil {
		return "", err
	}
	return poker.Describe(cards[:])
}

func sevenCards(hole, board []models.Card) ([7]poker.Card, error) {
	var out [7]poker.Card
	if len(hole) != 2 || len(board) != 5 {
		return out, fmt.Errorf("need 2 hole and 5 board cards, got %d and %d", len(hole), len(board))
	}
	for i, c := range append(append([]models.Card{}, board...), hole...) {
		pc, err := toPokerCard(c)
		if err != nil {
			return out, fmt.Errorf("card %d: %w", i, err)
		}
		out[i] = pc
	}
	return out, nil
}

func toPokerCard(c models.Card) (poker.Card, error) {
	var s poker.Suit
	switch c.Suit() {
	case models.Club:
		s = poker.Club
	case models.Diamond:
		s = poker.Diamond
	case models.Heart:
		s = poker.Heart
	case models.Spade:
		s = poker.Spade
	default:
		var zero poker.Card
		return zero, fmt.Errorf("invalid suit %d", c.Suit())
	}
	return poker.MakeCard(s, poker.Rank(c.Rank()))
}
