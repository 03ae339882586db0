package draftmodel

import (
	"time"

	"boosterdraft/internal/catalog"
)

// ConnectionStatus reflects how recently a seat's session has sent a
// heartbeat. It never blocks draft progress (spec §4.5).
type ConnectionStatus string

const (
	StatusOk      ConnectionStatus = "Ok"
	StatusWarning ConnectionStatus = "Warning"
	StatusError   ConnectionStatus = "Error"
)

// Seat is one participant's slot in a draft.
type Seat struct {
	ID       SeatID
	Index    int
	Name     string
	Ready    bool
	Pool     []catalog.Card
	Queue    []Pack // FIFO of packs waiting to become Current
	Current  Pack   // nil when no pack is in front of this seat
	Status   ConnectionStatus
	LastHeartbeat time.Time
	JoinedAt time.Time
}

// NewSeat creates a Seat at the given index with defaults per spec §4.4.
func NewSeat(id SeatID, index int, joinedAt time.Time) *Seat {
	return &Seat{
		ID:            id,
		Index:         index,
		Name:          id.ShortForm(),
		Ready:         false,
		Status:        StatusOk,
		LastHeartbeat: joinedAt,
		JoinedAt:      joinedAt,
	}
}

// HasCurrent reports whether the seat has a pack awaiting a pick.
func (s *Seat) HasCurrent() bool {
	return len(s.Current) > 0
}

// Enqueue appends a pack to the seat's queue. If the seat has no current
// pack, the new pack (or the existing head of queue, if one was already
// waiting) is immediately promoted. Returns the pack that was promoted to
// Current, or nil if none was (the seat already had a Current pack).
func (s *Seat) Enqueue(p Pack) Pack {
	s.Queue = append(s.Queue, p)
	return s.promote()
}

// promote moves the head of Queue into Current if Current is empty.
func (s *Seat) promote() Pack {
	if s.HasCurrent() || len(s.Queue) == 0 {
		return nil
	}
	s.Current = s.Queue[0]
	s.Queue = s.Queue[1:]
	return s.Current
}

// PickResult is returned by Pick: the card taken, the remainder pack to be
// rotated to a neighbor (possibly empty), and the pack newly promoted to
// Current from the seat's own queue (nil if none).
type PickResult struct {
	Card      catalog.Card
	Remainder Pack
	Promoted  Pack
}

// Pick removes the card at index from the seat's Current pack, appends it
// to the pool, clears Current, and promotes the next queued pack if any.
// Requires Current to be present and index in range; callers (the Engine)
// must check this first — see spec §4.4's Pick -> rotate protocol.
func (s *Seat) Pick(index int) PickResult {
	card, rest := s.Current.RemoveAt(index)
	s.Pool = append(s.Pool, card)
	s.Current = nil
	promoted := s.promote()
	return PickResult{Card: card, Remainder: rest, Promoted: promoted}
}

// Idle reports whether the seat has nothing in flight: no Current pack and
// an empty queue. Used by round-advancement (spec §4.4 step 6).
func (s *Seat) Idle() bool {
	return !s.HasCurrent() && len(s.Queue) == 0
}
