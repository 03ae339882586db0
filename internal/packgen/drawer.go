package packgen

import (
	"math/rand"

	"boosterdraft/internal/catalog"
)

// bucketDrawer draws cards from a fixed pool, either with replacement
// (repeated drafts may reuse the full draft) or without replacement for
// the lifetime of the draft (unique_cards mode, spec §4.2).
type bucketDrawer struct {
	cards     []catalog.Card
	remaining []int // shuffled indices into cards, consumed from the front
	replace   bool
	rng       *rand.Rand
}

func newBucketDrawer(cards []catalog.Card, replace bool, rng *rand.Rand) *bucketDrawer {
	d := &bucketDrawer{cards: cards, replace: replace, rng: rng}
	if !replace {
		d.remaining = rng.Perm(len(cards))
	}
	return d
}

// draw returns the next card, or ok=false if the bucket (or its remaining
// unique pool) is empty.
func (d *bucketDrawer) draw() (catalog.Card, bool) {
	if len(d.cards) == 0 {
		return catalog.Card{}, false
	}
	if d.replace {
		idx := d.rng.Intn(len(d.cards))
		return d.cards[idx], true
	}
	if len(d.remaining) == 0 {
		return catalog.Card{}, false
	}
	idx := d.remaining[0]
	d.remaining = d.remaining[1:]
	return d.cards[idx], true
}
