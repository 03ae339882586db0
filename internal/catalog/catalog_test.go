package catalog

import (
	"strings"
	"testing"
)

func TestBuildLooksUpByNameAndRarity(t *testing.T) {
	db := map[string]Card{
		"A": {Name: "A", Rarity: Rare},
		"B": {Name: "B", Rarity: Common},
		"C": {Name: "C", Rarity: Common},
	}
	cat, err := Build([]string{"A", "B", "C"}, db)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if cat.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", cat.Len())
	}
	if got := cat.RarityCount(Common); got != 2 {
		t.Errorf("RarityCount(Common) = %d, want 2", got)
	}
	card, ok := cat.Lookup("A")
	if !ok || card.Rarity != Rare {
		t.Errorf("Lookup(A) = %+v, %v", card, ok)
	}
	if _, ok := cat.Lookup("nope"); ok {
		t.Error("Lookup(nope) should not be found")
	}
}

func TestBuildUnknownCard(t *testing.T) {
	_, err := Build([]string{"Ghost"}, map[string]Card{})
	var unknown *UnknownCardError
	if err == nil || !errorsAs(err, &unknown) {
		t.Fatalf("expected UnknownCardError, got %v", err)
	}
}

func errorsAs(err error, target **UnknownCardError) bool {
	if e, ok := err.(*UnknownCardError); ok {
		*target = e
		return true
	}
	return false
}

func TestParseListIgnoresCommentsAndBlanks(t *testing.T) {
	input := "Card One\n# a comment\n\n  Card Two  \nCard Three # trailing comment\n"
	names, err := ParseList(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseList: %v", err)
	}
	want := []string{"Card One", "Card Two", "Card Three"}
	if len(names) != len(want) {
		t.Fatalf("got %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestParseDatabaseCockatriceShape(t *testing.T) {
	xmlDoc := `<?xml version="1.0"?>
<cockatrice_carddatabase version="3">
  <cards>
    <card>
      <name>Lightning Strike</name>
      <set rarity="common">ABC</set>
      <text>Deal 3 damage.</text>
      <picURL>http://example.com/a.jpg</picURL>
    </card>
    <card>
      <name>World Ender</name>
      <set rarity="mythic">ABC</set>
      <rarity>rare</rarity>
    </card>
  </cards>
</cockatrice_carddatabase>`
	db, err := ParseDatabase(strings.NewReader(xmlDoc))
	if err != nil {
		t.Fatalf("ParseDatabase: %v", err)
	}
	if db["Lightning Strike"].Rarity != Common {
		t.Errorf("Lightning Strike rarity = %v, want Common", db["Lightning Strike"].Rarity)
	}
	// set attribute rarity takes precedence over bare <rarity> element.
	if db["World Ender"].Rarity != Mythic {
		t.Errorf("World Ender rarity = %v, want Mythic", db["World Ender"].Rarity)
	}
}

func TestMergeDatabasesCustomOverridesBuiltin(t *testing.T) {
	builtin := map[string]Card{"X": {Name: "X", Rarity: Common}}
	custom := map[string]Card{"X": {Name: "X", Rarity: Mythic}}
	merged := MergeDatabases(builtin, custom)
	if merged["X"].Rarity != Mythic {
		t.Errorf("merged[X].Rarity = %v, want Mythic", merged["X"].Rarity)
	}
}
