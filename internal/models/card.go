package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Suit order follows club, diamond, heart, spade.
const (
	Club    uint8 = 0
	Diamond uint8 = 1
	Heart   uint8 = 2
	Spade   uint8 = 3
)

// Face card and ace ranks. Ace is low in the numbering but high in evaluation.
const (
	Ace   uint8 = 1
	Jack  uint8 = 11
	Queen uint8 = 12
	King  uint8 = 13
)

// HiddenCard is what other players see in place of a private card.
const HiddenCard = "?"

var suitSymbols = [4]string{"♣", "♦", "♥", "♠"}

// Card is an immutable playing card. The zero value is not a valid card.
type Card struct {
	suit uint8
	rank uint8
}

// NewCard validates suit (0-3) and rank (1-13) and returns the card.
func NewCard(suit, rank uint8) (Card, error) {
	if suit > Spade || rank < Ace || rank > King {
		return Card{}, fmt.Errorf("invalid card suit=%d rank=%d", suit, rank)
	}
	return Card{suit: suit, rank: rank}, nil
}

// MustCard is NewCard for literals known to be valid.
func MustCard(suit, rank uint8) Card {
	c, err := NewCard(suit, rank)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Card) Suit() uint8 { return c.suit }
func (c Card) Rank() uint8 { return c.rank }

// Valid reports whether c was built through NewCard.
func (c Card) Valid() bool { return c.rank >= Ace && c.rank <= King && c.suit <= Spade }

func (c Card) String() string {
	if !c.Valid() {
		return HiddenCard
	}
	var rank string
	switch c.rank {
	case Ace:
		rank = "A"
	case Jack:
		rank = "J"
	case Queen:
		rank = "Q"
	case King:
		rank = "K"
	default:
		rank = strconv.Itoa(int(c.rank))
	}
	return rank + suitSymbols[c.suit]
}

// ParseCard reads the String form back, e.g. "10♥" or "A♠".
func ParseCard(s string) (Card, error) {
	for i, sym := range suitSymbols {
		if !strings.HasSuffix(s, sym) {
			continue
		}
		rs := strings.TrimSuffix(s, sym)
		var rank uint8
		switch rs {
		case "A":
			rank = Ace
		case "J":
			rank = Jack
		case "Q":
			rank = Queen
		case "K":
			rank = King
		default:
			n, err := strconv.Atoi(rs)
			if err != nil || n < 2 || n > 10 {
				return Card{}, fmt.Errorf("invalid card rank %q", rs)
			}
			rank = uint8(n)
		}
		return NewCard(uint8(i), rank)
	}
	return Card{}, fmt.Errorf("invalid card %q", s)
}

func (c Card) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Card) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseCard(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
