// Package draftmodel holds the data model shared by the pack generator and
// the draft engine: identifiers, pack composition, seats, packs, and the
// draft itself.
package draftmodel

import "github.com/google/uuid"

// DraftID is an opaque 128-bit random token, rendered as a 36-char
// hyphenated hex (UUID) string. Possession is not required for access —
// DraftIDs are shared via URL — but SeatIDs are.
type DraftID string

// SeatID is a player's sole authentication for a seat: possession implies
// access.
type SeatID string

// NewDraftID generates a fresh random DraftID.
func NewDraftID() DraftID {
	return DraftID(uuid.New().String())
}

// NewSeatID generates a fresh random SeatID.
func NewSeatID() SeatID {
	return SeatID(uuid.New().String())
}

// ShortForm returns the first 8 hex characters, used as a seat's default
// display name per spec §3.
func (s SeatID) ShortForm() string {
	str := string(s)
	if len(str) < 8 {
		return str
	}
	return str[:8]
}
