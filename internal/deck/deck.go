// Package deck produces shuffled 52-card decks for a single hand.
package deck

import (
	"crypto/rand"
	"errors"
	"math/big"

	"github.com/jason-s-yu/holdem/internal/models"
)

// Size is the number of cards in a fresh deck.
const Size = 52

// ErrEmptyDeck is returned by Draw on an exhausted deck. Under correct phase
// sequencing at most 21 cards are drawn per hand, so seeing it is a defect.
var ErrEmptyDeck = errors.New("deck is empty")

// Random provides uniform integers so shuffles can be made deterministic in tests.
type Random interface {
	// Intn returns a random int in [0, n).
	Intn(n int) int
}

// CryptoRandom implements Random using crypto/rand.
type CryptoRandom struct{}

func (CryptoRandom) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

// Deck is the ordered set of cards remaining in one hand. Draws come off the end.
type Deck struct {
	cards []models.Card
}

// Ordered returns all 52 cards, suit-major, unshuffled.
func Ordered() []models.Card {
	cards := make([]models.Card, 0, Size)
	for suit := models.Club; suit <= models.Spade; suit++ {
		for rank := models.Ace; rank <= models.King; rank++ {
			cards = append(cards, models.MustCard(suit, rank))
		}
	}
	return cards
}

// NewShuffled returns a fresh deck in uniformly random order (Fisher-Yates).
// A nil rng uses CryptoRandom.
func NewShuffled(rng Random) *Deck {
	if rng == nil {
		rng = CryptoRandom{}
	}
	cards := Ordered()
	for i := len(cards) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}
	return &Deck{cards: cards}
}

// FromCards builds a deck that draws cards in reverse slice order. Used to
// stack hands in tests.
func FromCards(cards []models.Card) *Deck {
	c := make([]models.Card, len(cards))
	copy(c, cards)
	return &Deck{cards: c}
}

// Draw removes and returns the last card.
func (d *Deck) Draw() (models.Card, error) {
	if d == nil || len(d.cards) == 0 {
		return models.Card{}, ErrEmptyDeck
	}
	last := len(d.cards) - 1
	c := d.cards[last]
	d.cards = d.cards[:last]
	return c, nil
}

// Len is the number of cards left.
func (d *Deck) Len() int {
	if d == nil {
		return 0
	}
	return len(d.cards)
}
