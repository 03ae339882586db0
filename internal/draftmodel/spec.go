package draftmodel

import "fmt"

// DefaultMaxSeats is the lobby capacity cap when PackSpec.MaxSeats is
// unset. Spec §9 notes the source has no explicit cap; this value is the
// resolution of that open question.
const DefaultMaxSeats = 8

// PackSpec is the draft configuration: how many packs, how big, and
// whether/how rarity slots are composed.
type PackSpec struct {
	PacksPerSeat  int `json:"packs_per_seat"`
	CardsPerPack  int `json:"cards_per_pack"`
	UniqueCards   bool `json:"unique_cards"`
	UseRarities   bool `json:"use_rarities"`
	RaresPerPack     int     `json:"rares_per_pack"`
	UncommonsPerPack int     `json:"uncommons_per_pack"`
	CommonsPerPack   int     `json:"commons_per_pack"`
	MythicIncidence  float64 `json:"mythic_incidence"`
	MaxSeats         int     `json:"max_seats"`
}

// Validate checks the invariants spec §3 requires of a PackSpec, in
// isolation from any particular catalog or seat count.
func (p *PackSpec) Validate() error {
	if p.PacksPerSeat <= 0 {
		return fmt.Errorf("packs_per_seat must be positive, got %d", p.PacksPerSeat)
	}
	if p.CardsPerPack <= 0 {
		return fmt.Errorf("cards_per_pack must be positive, got %d", p.CardsPerPack)
	}
	if p.MaxSeats <= 0 {
		p.MaxSeats = DefaultMaxSeats
	}
	if p.UseRarities {
		if p.RaresPerPack < 0 || p.UncommonsPerPack < 0 || p.CommonsPerPack < 0 {
			return fmt.Errorf("rarity slot counts must be non-negative")
		}
		if sum := p.RaresPerPack + p.UncommonsPerPack + p.CommonsPerPack; sum != p.CardsPerPack {
			return fmt.Errorf("rarity slot counts (%d) must sum to cards_per_pack (%d)", sum, p.CardsPerPack)
		}
		if p.MythicIncidence < 0 || p.MythicIncidence > 1 {
			return fmt.Errorf("mythic_incidence must be in [0,1], got %v", p.MythicIncidence)
		}
	}
	return nil
}

// Phase is the Draft's lifecycle state. Transitions are monotonic: no
// phase ever goes backwards except *->Terminated.
type Phase string

const (
	PhaseSetup      Phase = "Setup"
	PhaseLobby      Phase = "Lobby"
	PhaseInProgress Phase = "InProgress"
	PhaseFinished   Phase = "Finished"
	PhaseTerminated Phase = "Terminated"
)
