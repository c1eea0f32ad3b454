package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCardRejectsOutOfRange(t *testing.T) {
	_, err := NewCard(4, 2)
	assert.Error(t, err)
	_, err = NewCard(Club, 0)
	assert.Error(t, err)
	_, err = NewCard(Club, 14)
	assert.Error(t, err)
}

func TestCardStringAndParse(t *testing.T) {
	assert.Equal(t, "A♠", MustCard(Spade, Ace).String())
	assert.Equal(t, "10♥", MustCard(Heart, 10).String())
	assert.Equal(t, HiddenCard, Card{}.String())

	for suit := Club; suit <= Spade; suit++ {
		for rank := Ace; rank <= King; rank++ {
			c := MustCard(suit, rank)
			parsed, err := ParseCard(c.String())
			require.NoError(t, err)
			assert.Equal(t, c, parsed)
		}
	}

	_, err := ParseCard("1♠")
	assert.Error(t, err)
	_, err = ParseCard("AX")
	assert.Error(t, err)
}

func TestCardJSON(t *testing.T) {
	data, err := json.Marshal([]Card{MustCard(Diamond, Queen)})
	require.NoError(t, err)
	assert.JSONEq(t, `["Q♦"]`, string(data))

	var out []Card
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, []Card{MustCard(Diamond, Queen)}, out)
}

func TestPlayerCommitClampsToStack(t *testing.T) {
	p := &Player{ID: "a", Chips: 50}

	moved := p.Commit(30)
	assert.Equal(t, 30, moved)
	assert.Equal(t, 20, p.Chips)
	assert.False(t, p.AllIn)

	moved = p.Commit(100)
	assert.Equal(t, 20, moved)
	assert.Equal(t, 0, p.Chips)
	assert.Equal(t, 50, p.Bet)
	assert.Equal(t, 50, p.Committed)
	assert.True(t, p.AllIn)
	assert.False(t, p.CanAct())
}

func TestParseAction(t *testing.T) {
	a, err := ParseAction("raise", 40)
	require.NoError(t, err)
	assert.Equal(t, Raise{Amount: 40}, a)

	a, err = ParseAction("fold", 0)
	require.NoError(t, err)
	assert.Equal(t, ActionFold, a.Kind())

	_, err = ParseAction("check", 0)
	assert.Error(t, err)
}

func TestPhaseProgression(t *testing.T) {
	p := PhasePreflop
	var seen []Phase
	for p != PhaseShowdown {
		p = p.Next()
		seen = append(seen, p)
	}
	assert.Equal(t, []Phase{PhaseFlop, PhaseTurn, PhaseRiver, PhaseShowdown}, seen)
	assert.Equal(t, 3, PhaseFlop.Reveals())
	assert.False(t, PhaseWaiting.Betting())
	assert.True(t, PhaseRiver.Betting())
}
