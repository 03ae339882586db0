package draftmodel

import (
	"time"

	"boosterdraft/internal/catalog"
)

// Draft is the whole session: configuration, catalog, seats, and the
// state-machine fields the Engine mutates.
type Draft struct {
	ID      DraftID
	Config  PackSpec
	Catalog *catalog.Catalog
	Seats   []*Seat
	Phase   Phase

	Round           int // 0..PacksPerSeat
	PacksRemaining  int // total un-picked packs across the whole draft

	// Rounds holds the pre-generated packs for each round, one per seat,
	// assigned as each round begins (spec §4.4 Initiation).
	Rounds [][]Pack

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SeatByID returns the seat with the given ID, or nil if none.
func (d *Draft) SeatByID(id SeatID) *Seat {
	for _, s := range d.Seats {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// AllSeatsReady reports whether every seat's Ready flag is set. Spec §4.4
// requires this alongside a 2-seat minimum and a loaded catalog before
// Lobby -> InProgress.
func (d *Draft) AllSeatsReady() bool {
	if len(d.Seats) == 0 {
		return false
	}
	for _, s := range d.Seats {
		if !s.Ready {
			return false
		}
	}
	return true
}

// AllSeatsIdle reports whether every seat has an empty Current and Queue,
// used by round-advancement and the Finished transition.
func (d *Draft) AllSeatsIdle() bool {
	for _, s := range d.Seats {
		if !s.Idle() {
			return false
		}
	}
	return true
}
