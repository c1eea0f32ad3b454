package deck

import (
	"testing"

	"github.com/jason-s-yu/holdem/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedRandom always picks index 0, which makes the shuffle a pure rotation.
type fixedRandom struct{ calls []int }

func (f *fixedRandom) Intn(n int) int {
	f.calls = append(f.calls, n)
	return 0
}

func TestNewShuffledHasAllCardsOnce(t *testing.T) {
	d := NewShuffled(nil)
	require.Equal(t, Size, d.Len())

	seen := make(map[models.Card]bool, Size)
	for d.Len() > 0 {
		c, err := d.Draw()
		require.NoError(t, err)
		require.True(t, c.Valid())
		require.False(t, seen[c], "duplicate card %s", c)
		seen[c] = true
	}
	assert.Len(t, seen, Size)
}

func TestFisherYatesBounds(t *testing.T) {
	rng := &fixedRandom{}
	NewShuffled(rng)

	// i runs from 51 down to 1, each call chooses from [0, i].
	require.Len(t, rng.calls, Size-1)
	assert.Equal(t, Size, rng.calls[0])
	assert.Equal(t, 2, rng.calls[len(rng.calls)-1])
}

func TestDrawTakesFromTheEnd(t *testing.T) {
	a := models.MustCard(models.Spade, models.Ace)
	b := models.MustCard(models.Heart, models.King)
	d := FromCards([]models.Card{a, b})

	c, err := d.Draw()
	require.NoError(t, err)
	assert.Equal(t, b, c)

	c, err = d.Draw()
	require.NoError(t, err)
	assert.Equal(t, a, c)

	_, err = d.Draw()
	assert.ErrorIs(t, err, ErrEmptyDeck)
}

func TestCryptoRandomRange(t *testing.T) {
	var r CryptoRandom
	for i := 0; i < 100; i++ {
		v := r.Intn(7)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 7)
	}
	assert.Equal(t, 0, r.Intn(0))
}
