package catalog

// Builtin returns the default card database bundled with the server.
// It is intentionally small: real deployments are expected to upload a
// custom card_database (see ParseDatabase); this set exists so a draft
// can be started from a bare card list with no database upload at all.
func Builtin() map[string]Card {
	cards := []Card{
		{Name: "Consuming Aberration", Set: "BUILTIN", Rarity: Mythic},
		{Name: "Verdant Colossus", Set: "BUILTIN", Rarity: Mythic},
		{Name: "Ashen Dragonlord", Set: "BUILTIN", Rarity: Rare},
		{Name: "Tidecaller Sphinx", Set: "BUILTIN", Rarity: Rare},
		{Name: "Gilded Automaton", Set: "BUILTIN", Rarity: Rare},
		{Name: "Bramblethorn Druid", Set: "BUILTIN", Rarity: Uncommon},
		{Name: "Harbor Skirmisher", Set: "BUILTIN", Rarity: Uncommon},
		{Name: "Emberflow Adept", Set: "BUILTIN", Rarity: Uncommon},
		{Name: "Watchful Sentinel", Set: "BUILTIN", Rarity: Common},
		{Name: "Scrapyard Mule", Set: "BUILTIN", Rarity: Common},
		{Name: "Riverside Scout", Set: "BUILTIN", Rarity: Common},
		{Name: "Moorland Gravedigger", Set: "BUILTIN", Rarity: Common},
		{Name: "Blessed Wayfarer", Set: "BUILTIN", Rarity: Common},
		{Name: "Basic Landmark", Set: "BUILTIN", Rarity: Special},
		{Name: "Prize Token", Set: "BUILTIN", Rarity: Bonus},
	}
	out := make(map[string]Card, len(cards))
	for _, c := range cards {
		out[c.Name] = c
	}
	return out
}
