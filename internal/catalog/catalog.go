// Package catalog builds the immutable universe of cards eligible for packs
// in a given draft, from an uploaded card list plus an optional custom card
// database.
package catalog

import "fmt"

// Rarity buckets a card for pack-composition purposes.
type Rarity string

const (
	Mythic   Rarity = "Mythic"
	Rare     Rarity = "Rare"
	Uncommon Rarity = "Uncommon"
	Common   Rarity = "Common"
	Special  Rarity = "Special"
	Bonus    Rarity = "Bonus"
)

func validRarity(r Rarity) bool {
	switch r {
	case Mythic, Rare, Uncommon, Common, Special, Bonus:
		return true
	default:
		return false
	}
}

// Card is immutable once the Catalog that owns it is built.
type Card struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
	Set      string `json:"set"`
	Rarity   Rarity `json:"rarity"`
	Text     string `json:"text"`
}

// UnknownCardError reports a card list entry with no database match.
type UnknownCardError struct {
	Name string
}

func (e *UnknownCardError) Error() string {
	return fmt.Sprintf("unknown card: %q", e.Name)
}

// MalformedDatabaseError reports a card database that could not be parsed.
type MalformedDatabaseError struct {
	Reason string
}

func (e *MalformedDatabaseError) Error() string {
	return fmt.Sprintf("malformed card database: %s", e.Reason)
}

// Catalog is the immutable, ordered set of cards eligible for this draft.
// It is built once from the uploaded list and database and never mutated.
type Catalog struct {
	all      []Card
	byRarity map[Rarity][]int // rarity -> indices into all
}

// Build constructs a Catalog from an ordered list of card names and a
// lookup of known cards by name (built-in database overridden by any
// custom database entries of the same name). Fails with UnknownCardError
// if a listed name has no entry in db.
func Build(names []string, db map[string]Card) (*Catalog, error) {
	c := &Catalog{
		byRarity: make(map[Rarity][]int),
	}
	for _, name := range names {
		card, ok := db[name]
		if !ok {
			return nil, &UnknownCardError{Name: name}
		}
		if !validRarity(card.Rarity) {
			return nil, &MalformedDatabaseError{Reason: fmt.Sprintf("card %q has unknown rarity %q", name, card.Rarity)}
		}
		card.ID = len(c.all)
		idx := len(c.all)
		c.all = append(c.all, card)
		c.byRarity[card.Rarity] = append(c.byRarity[card.Rarity], idx)
	}
	return c, nil
}

// Lookup finds a card by name. Returns false if no such card is in the
// catalog (distinct from an unknown card at upload time; this is used for
// post-construction lookups such as re-hydrating a snapshot).
func (c *Catalog) Lookup(name string) (Card, bool) {
	for _, card := range c.all {
		if card.Name == name {
			return card, true
		}
	}
	return Card{}, false
}

// ByRarity returns the cards in the given rarity bucket, in catalog order.
func (c *Catalog) ByRarity(r Rarity) []Card {
	idxs := c.byRarity[r]
	out := make([]Card, len(idxs))
	for i, idx := range idxs {
		out[i] = c.all[idx]
	}
	return out
}

// RarityCount returns the number of cards in a rarity bucket, without
// allocating a copy — used by validation that only needs counts.
func (c *Catalog) RarityCount(r Rarity) int {
	return len(c.byRarity[r])
}

// All returns every card in the catalog, in construction order.
func (c *Catalog) All() []Card {
	return c.all
}

// Len returns the number of cards in the catalog.
func (c *Catalog) Len() int {
	return len(c.all)
}
