package engine

import (
	"errors"
	"math/rand/v2"
	"sort"
)

// DefaultRarityScale turns a template's fractional rarity into an integer weight.
const DefaultRarityScale = 100

// Deck samples card templates with replacement, weighted by rarity.
type Deck struct {
	templates  []Card
	cumulative []int
	total      int
	rng        *rand.Rand
}

// NewDeck builds a weighted deck. A template whose scaled weight rounds to
// zero can never be drawn.
func NewDeck(templates []Card, scale int, rng *rand.Rand) (*Deck, error) {
	if scale <= 0 {
		scale = DefaultRarityScale
	}
	d := &Deck{rng: rng}
	for _, t := range templates {
		w := int(t.Rarity * float64(scale))
		if w <= 0 {
			continue
		}
		d.total += w
		d.templates = append(d.templates, t)
		d.cumulative = append(d.cumulative, d.total)
	}
	if d.total == 0 {
		return nil, errors.New("deck: no drawable card templates")
	}
	return d, nil
}

// Draw returns a fresh value copy of a weighted random template.
func (d *Deck) Draw() Card {
	n := d.rng.IntN(d.total)
	i := sort.SearchInts(d.cumulative, n+1)
	return d.templates[i]
}

// DrawUpTo appends draws to hand until it holds capacity cards.
func (d *Deck) DrawUpTo(hand []Card, capacity int) []Card {
	for len(hand) < capacity {
		hand = append(hand, d.Draw())
	}
	return hand
}
