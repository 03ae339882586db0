package packgen

import (
	"crypto/sha256"
	"encoding/binary"
	"math/rand"

	"boosterdraft/internal/draftmodel"
)

// DeriveSeed turns a DraftID into a deterministic 64-bit seed so pack
// generation is reproducible for a given draft (spec §4.2, P6). The
// derivation follows the sub-seed-by-hash idiom used elsewhere in the
// corpus for deterministic, stage-scoped RNGs: hash the identifying
// material and take the first 8 bytes (read big-endian), rather than trusting the ID's raw
// bytes (a UUID's hyphen layout is not a good Rand seed on its own).
func DeriveSeed(id draftmodel.DraftID) uint64 {
	sum := sha256.Sum256([]byte(id))
	return binary.BigEndian.Uint64(sum[:8])
}

// NewRNG returns a fresh, seeded math/rand source. Draft engines keep one
// of these per draft, created once at construction from DeriveSeed(id) (or
// restored from a snapshot's saved seed, see internal/registry).
func NewRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewSource(int64(seed)))
}
