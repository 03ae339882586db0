package draftmodel

import "boosterdraft/internal/catalog"

// Pack is an ordered sequence of cards dealt to a seat in one round. Its
// length shrinks by one each time a card is picked and it rotates to the
// neighbor seat.
type Pack []catalog.Card

// Clone returns a copy so callers can hand out a Pack without the
// recipient being able to mutate the Engine's own copy.
func (p Pack) Clone() Pack {
	out := make(Pack, len(p))
	copy(out, p)
	return out
}

// RemoveAt returns the card at index and the remainder pack with that
// card removed, preserving order. Panics if index is out of range; callers
// must bounds-check first (see draftengine.Engine.Pick).
func (p Pack) RemoveAt(index int) (catalog.Card, Pack) {
	card := p[index]
	rest := make(Pack, 0, len(p)-1)
	rest = append(rest, p[:index]...)
	rest = append(rest, p[index+1:]...)
	return card, rest
}
