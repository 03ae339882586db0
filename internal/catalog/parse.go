package catalog

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// ParseList reads a card list: one name per line, '#' begins a comment,
// blank lines are ignored, trailing whitespace is trimmed.
func ParseList(r io.Reader) ([]string, error) {
	var names []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		names = append(names, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read card list: %w", err)
	}
	return names, nil
}

// cockatriceDatabase mirrors the Cockatrice card-database XML shape:
// <cockatrice_carddatabase><cards><card><name/><set/><rarity/><picURL/><text/></card>...
type cockatriceDatabase struct {
	XMLName xml.Name           `xml:"cockatrice_carddatabase"`
	Cards   []cockatriceCard   `xml:"cards>card"`
}

type cockatriceCard struct {
	Name    string `xml:"name"`
	Text    string `xml:"text"`
	PicURL  string `xml:"picURL"`
	Sets    []cockatriceSet `xml:"set"`
	Rarity  string `xml:"rarity"`
}

// cockatriceSet handles the common Cockatrice variant where <set> carries
// a rarity attribute per-printing; when present it takes precedence over
// the bare <rarity> element (which some exports omit entirely).
type cockatriceSet struct {
	Value  string `xml:",chardata"`
	Rarity string `xml:"rarity,attr"`
}

// ParseDatabase decodes a Cockatrice-shaped XML card database into a
// name-keyed lookup. Later entries for the same name overwrite earlier
// ones, matching Cockatrice's own "last definition wins" behavior for
// duplicate card names across sets.
func ParseDatabase(r io.Reader) (map[string]Card, error) {
	var doc cockatriceDatabase
	dec := xml.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, &MalformedDatabaseError{Reason: err.Error()}
	}

	out := make(map[string]Card, len(doc.Cards))
	for _, xc := range doc.Cards {
		if xc.Name == "" {
			return nil, &MalformedDatabaseError{Reason: "card element missing name"}
		}
		rarity := normalizeRarity(xc.Rarity)
		set := ""
		if len(xc.Sets) > 0 {
			set = xc.Sets[0].Value
			if xc.Sets[0].Rarity != "" {
				rarity = normalizeRarity(xc.Sets[0].Rarity)
			}
		}
		if !validRarity(rarity) {
			return nil, &MalformedDatabaseError{Reason: fmt.Sprintf("card %q has unknown rarity %q", xc.Name, xc.Rarity)}
		}
		out[xc.Name] = Card{
			Name:     xc.Name,
			ImageURL: xc.PicURL,
			Set:      set,
			Rarity:   rarity,
			Text:     xc.Text,
		}
	}
	return out, nil
}

func normalizeRarity(s string) Rarity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mythic", "mythic rare":
		return Mythic
	case "rare":
		return Rare
	case "uncommon":
		return Uncommon
	case "common":
		return Common
	case "special":
		return Special
	case "bonus":
		return Bonus
	default:
		return Rarity(s)
	}
}

// MergeDatabases layers a custom database over a builtin one: entries in
// custom override entries in builtin by name, matching spec §4.1 ("custom
// database overrides by name").
func MergeDatabases(builtin, custom map[string]Card) map[string]Card {
	merged := make(map[string]Card, len(builtin)+len(custom))
	for name, c := range builtin {
		merged[name] = c
	}
	for name, c := range custom {
		merged[name] = c
	}
	return merged
}
