// Package packgen implements the pack-generation algorithm: deterministic
// given an RNG, producing a sequence of packs from a catalog under a
// pack-composition policy (spec §4.2).
package packgen

import (
	"fmt"
	"math/rand"

	"boosterdraft/internal/catalog"
	"boosterdraft/internal/draftmodel"
)

// CatalogExhaustedError reports a rarity bucket running dry mid-generation
// under unique_cards. Validate (below) is meant to make this unreachable
// in practice by rejecting an insufficient catalog at upload time; this
// error exists for the residual case (e.g. a custom non-rarity catalog
// smaller than its declared demand).
type CatalogExhaustedError struct {
	Bucket catalog.Rarity
}

func (e *CatalogExhaustedError) Error() string {
	return fmt.Sprintf("catalog exhausted: bucket %s ran out of cards", e.Bucket)
}

// CatalogTooSmallError reports a catalog that cannot possibly satisfy the
// configured demand for the draft's maximum seat count; returned at
// upload time (spec §7 Input errors), before any Draft is created.
type CatalogTooSmallError struct {
	Bucket catalog.Rarity
	Have   int
	Need   int
}

func (e *CatalogTooSmallError) Error() string {
	return fmt.Sprintf("catalog too small: bucket %s has %d cards, need at least %d", e.Bucket, e.Have, e.Need)
}

// Validate checks, against the worst case of the draft filling to
// spec.MaxSeats, that the catalog has enough cards to satisfy the
// configured pack composition without exhausting a bucket. It must be run
// at upload time (before generation, which happens later once the actual
// seat count is known at Lobby -> InProgress).
func Validate(cat *catalog.Catalog, spec draftmodel.PackSpec) error {
	maxSeats := spec.MaxSeats
	if maxSeats <= 0 {
		maxSeats = draftmodel.DefaultMaxSeats
	}
	totalPacks := maxSeats * spec.PacksPerSeat

	if !spec.UseRarities {
		need := totalPacks * spec.CardsPerPack
		if spec.UniqueCards && cat.Len() < need {
			return &CatalogTooSmallError{Bucket: "", Have: cat.Len(), Need: need}
		}
		if cat.Len() == 0 {
			return &CatalogTooSmallError{Bucket: "", Have: 0, Need: 1}
		}
		return nil
	}

	if spec.UniqueCards {
		// Mythic has no precheck: an empty Mythic bucket is handled by
		// fallback-to-Rare (spec §4.2), never an error.
		if need := totalPacks * spec.RaresPerPack; cat.RarityCount(catalog.Rare) < need {
			return &CatalogTooSmallError{Bucket: catalog.Rare, Have: cat.RarityCount(catalog.Rare), Need: need}
		}
		if need := totalPacks * spec.UncommonsPerPack; cat.RarityCount(catalog.Uncommon) < need {
			return &CatalogTooSmallError{Bucket: catalog.Uncommon, Have: cat.RarityCount(catalog.Uncommon), Need: need}
		}
		if need := totalPacks * spec.CommonsPerPack; cat.RarityCount(catalog.Common) < need {
			return &CatalogTooSmallError{Bucket: catalog.Common, Have: cat.RarityCount(catalog.Common), Need: need}
		}
		return nil
	}

	// With replacement, any nonempty bucket a slot draws from suffices. A
	// rare slot draws from Rare unless promoted, so an empty Rare bucket is
	// only enough when every slot is promoted to a nonempty Mythic bucket.
	if spec.RaresPerPack > 0 && cat.RarityCount(catalog.Rare) == 0 &&
		(spec.MythicIncidence < 1 || cat.RarityCount(catalog.Mythic) == 0) {
		return &CatalogTooSmallError{Bucket: catalog.Rare, Have: 0, Need: 1}
	}
	if spec.UncommonsPerPack > 0 && cat.RarityCount(catalog.Uncommon) == 0 {
		return &CatalogTooSmallError{Bucket: catalog.Uncommon, Have: 0, Need: 1}
	}
	if spec.CommonsPerPack > 0 && cat.RarityCount(catalog.Common) == 0 {
		return &CatalogTooSmallError{Bucket: catalog.Common, Have: 0, Need: 1}
	}
	return nil
}

// Generate produces seatCount*spec.PacksPerSeat packs from the catalog,
// per the algorithm in spec §4.2. The RNG is the draft's seeded RNG (see
// DeriveSeed); calling Generate again with the same RNG state is never
// expected — the Engine calls this exactly once, at Lobby -> InProgress.
func Generate(cat *catalog.Catalog, spec draftmodel.PackSpec, seatCount int, rng *rand.Rand) ([]draftmodel.Pack, error) {
	total := seatCount * spec.PacksPerSeat
	packs := make([]draftmodel.Pack, total)

	if !spec.UseRarities {
		drawer := newBucketDrawer(cat.All(), !spec.UniqueCards, rng)
		for i := 0; i < total; i++ {
			pack := make(draftmodel.Pack, 0, spec.CardsPerPack)
			for j := 0; j < spec.CardsPerPack; j++ {
				card, ok := drawer.draw()
				if !ok {
					return nil, &CatalogExhaustedError{}
				}
				pack = append(pack, card)
			}
			packs[i] = pack
		}
		return packs, nil
	}

	mythicDrawer := newBucketDrawer(cat.ByRarity(catalog.Mythic), !spec.UniqueCards, rng)
	rareDrawer := newBucketDrawer(cat.ByRarity(catalog.Rare), !spec.UniqueCards, rng)
	uncommonDrawer := newBucketDrawer(cat.ByRarity(catalog.Uncommon), !spec.UniqueCards, rng)
	commonDrawer := newBucketDrawer(cat.ByRarity(catalog.Common), !spec.UniqueCards, rng)

	for i := 0; i < total; i++ {
		pack := make(draftmodel.Pack, 0, spec.CardsPerPack)

		for r := 0; r < spec.RaresPerPack; r++ {
			var card catalog.Card
			var ok bool
			if rng.Float64() < spec.MythicIncidence {
				card, ok = mythicDrawer.draw()
				if !ok {
					// Mythic bucket empty: fall back to Rare, not an error.
					card, ok = rareDrawer.draw()
				}
			} else {
				card, ok = rareDrawer.draw()
			}
			if !ok {
				return nil, &CatalogExhaustedError{Bucket: catalog.Rare}
			}
			pack = append(pack, card)
		}

		for u := 0; u < spec.UncommonsPerPack; u++ {
			card, ok := uncommonDrawer.draw()
			if !ok {
				return nil, &CatalogExhaustedError{Bucket: catalog.Uncommon}
			}
			pack = append(pack, card)
		}

		for c := 0; c < spec.CommonsPerPack; c++ {
			card, ok := commonDrawer.draw()
			if !ok {
				return nil, &CatalogExhaustedError{Bucket: catalog.Common}
			}
			pack = append(pack, card)
		}

		packs[i] = pack
	}

	return packs, nil
}
