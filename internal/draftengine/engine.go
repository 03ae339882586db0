// Package draftengine implements the per-draft state machine: phase
// transitions, seat bookkeeping, and the pick -> rotate protocol that
// moves packs between seats each round (spec §4.4).
package draftengine

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"
	"unicode/utf8"

	"boosterdraft/internal/catalog"
	"boosterdraft/internal/draftmodel"
	"boosterdraft/internal/packgen"
)

var (
	// ErrNotJoinable is returned by Join when the draft's phase is not
	// Lobby (spec §4.5: routed to a Started or Ended rejection message
	// by the caller, depending on which non-Lobby phase this is).
	ErrNotJoinable = errors.New("draft is not joinable")
	// ErrLobbyFull is returned by Join when the seat cap has been reached.
	ErrLobbyFull = errors.New("lobby is full")
	// ErrUnknownSeat is returned by any seat-addressed operation given a
	// SeatID the draft has no record of.
	ErrUnknownSeat = errors.New("unknown seat")
)

// Engine owns one Draft's full lifecycle and is the sole mutator of its
// state. Every exported method takes the Engine's mutex for its duration,
// which is the draft's serialization point (spec §5), used instead of a
// dedicated actor goroutine reading off a channel. The Session Hub calls
// into a draft's Engine from each connected session's own read goroutine,
// so calls for the same draft can arrive concurrently; the mutex is what
// serializes them.
type Engine struct {
	mu    sync.Mutex
	draft *draftmodel.Draft
	cat   *catalog.Catalog
	rng   *rand.Rand
	seed  uint64
}

// New constructs an Engine for a brand-new draft in PhaseLobby. now is
// threaded through rather than read from time.Now so callers (and tests)
// control timestamps precisely.
func New(id draftmodel.DraftID, spec draftmodel.PackSpec, cat *catalog.Catalog, now time.Time) *Engine {
	seed := packgen.DeriveSeed(id)
	return &Engine{
		draft: &draftmodel.Draft{
			ID:        id,
			Config:    spec,
			Catalog:   cat,
			Phase:     draftmodel.PhaseLobby,
			CreatedAt: now,
			UpdatedAt: now,
		},
		cat:  cat,
		rng:  packgen.NewRNG(seed),
		seed: seed,
	}
}

// Restore rebuilds an Engine around a Draft already reconstructed from a
// snapshot (internal/registry), re-seeding the RNG from the saved seed so
// any pack generation still pending (there is none once InProgress has
// begun, since Generate runs once) remains reproducible.
func Restore(draft *draftmodel.Draft, seed uint64) *Engine {
	return &Engine{draft: draft, cat: draft.Catalog, rng: packgen.NewRNG(seed), seed: seed}
}

// Seed returns the draft's RNG seed, for snapshotting.
func (e *Engine) Seed() uint64 { return e.seed }

// Draft returns the live Draft state. Callers must treat it as read-only;
// internal/registry snapshots it, internal/httpapi renders summaries from
// it. Mutation must go through Engine's own methods.
func (e *Engine) Draft() *draftmodel.Draft {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft
}

// Phase reports the draft's current phase.
func (e *Engine) Phase() draftmodel.Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft.Phase
}

// Join allocates a new seat in a Lobby-phase draft.
func (e *Engine) Join(now time.Time) (draftmodel.SeatID, []Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.draft.Phase != draftmodel.PhaseLobby {
		return "", nil, ErrNotJoinable
	}
	maxSeats := e.draft.Config.MaxSeats
	if maxSeats <= 0 {
		maxSeats = draftmodel.DefaultMaxSeats
	}
	if len(e.draft.Seats) >= maxSeats {
		return "", nil, ErrLobbyFull
	}

	seat := draftmodel.NewSeat(draftmodel.NewSeatID(), len(e.draft.Seats), now)
	e.draft.Seats = append(e.draft.Seats, seat)
	e.draft.UpdatedAt = now

	events := []Event{
		{Type: EventConnected, Target: SeatTarget(seat.ID), Value: ConnectedValue{Draft: e.draft.ID, Seat: seat.ID}},
		{Type: EventPlayerList, Target: BroadcastTo(), Value: e.playerList()},
	}
	return seat.ID, events, nil
}

// Rejoin re-attaches a previously allocated seat, for reconnect (spec
// §4.5): the caller is responsible for binding the returned seat's
// session; Rejoin only produces the Reconnected event describing current
// state (in-progress pool, and pending pack if one awaits a pick).
func (e *Engine) Rejoin(seat draftmodel.SeatID) ([]Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.draft.SeatByID(seat)
	if s == nil {
		return nil, ErrUnknownSeat
	}

	val := ReconnectedValue{
		Draft:      e.draft.ID,
		Seat:       s.ID,
		InProgress: e.draft.Phase == draftmodel.PhaseInProgress,
		Pool:       append([]catalog.Card(nil), s.Pool...),
	}
	if s.HasCurrent() {
		val.Pack = append([]catalog.Card(nil), s.Current...)
	}
	return []Event{{Type: EventReconnected, Target: SeatTarget(s.ID), Value: val}}, nil
}

// SetReady toggles a seat's ready flag and, if this is the last seat to
// become ready, triggers Lobby -> InProgress (spec §4.4 Initiation).
func (e *Engine) SetReady(seat draftmodel.SeatID, ready bool, now time.Time) ([]Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.draft.Phase != draftmodel.PhaseLobby {
		return nil, nil
	}
	s := e.draft.SeatByID(seat)
	if s == nil {
		return nil, ErrUnknownSeat
	}
	s.Ready = ready
	e.draft.UpdatedAt = now

	events := []Event{{Type: EventPlayerUpdate, Target: BroadcastTo(), Value: playerDetails(s)}}
	if ready && len(e.draft.Seats) >= 2 && e.draft.AllSeatsReady() {
		started, err := e.start(now)
		if err != nil {
			return nil, err
		}
		events = append(events, started...)
	}
	return events, nil
}

// SetName renames a seat, valid in any phase. A name outside spec §3's
// 1..32 char bound is a protocol violation (spec §7.3): silently ignored
// rather than surfaced as an Engine error.
func (e *Engine) SetName(seat draftmodel.SeatID, name string, now time.Time) ([]Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.draft.SeatByID(seat)
	if s == nil {
		return nil, ErrUnknownSeat
	}
	if n := utf8.RuneCountInString(name); n < 1 || n > 32 {
		return nil, nil
	}
	s.Name = name
	e.draft.UpdatedAt = now
	return []Event{{Type: EventPlayerUpdate, Target: BroadcastTo(), Value: playerDetails(s)}}, nil
}

// start runs Initiation: generates every pack for the draft's lifetime in
// one deterministic pass, partitions it into PacksPerSeat rounds of
// seatCount packs each, and deals round 0 to every seat's queue.
func (e *Engine) start(now time.Time) ([]Event, error) {
	seatCount := len(e.draft.Seats)
	packs, err := packgen.Generate(e.cat, e.draft.Config, seatCount, e.rng)
	if err != nil {
		return e.terminate(fmt.Sprintf("pack generation failed: %v", err), now), err
	}

	rounds := make([][]draftmodel.Pack, e.draft.Config.PacksPerSeat)
	for r := 0; r < e.draft.Config.PacksPerSeat; r++ {
		rounds[r] = packs[r*seatCount : (r+1)*seatCount]
	}
	e.draft.Rounds = rounds
	e.draft.Phase = draftmodel.PhaseInProgress
	e.draft.Round = 0
	e.draft.PacksRemaining = len(packs)
	e.draft.UpdatedAt = now

	var events []Event
	for i, seat := range e.draft.Seats {
		dealt := rounds[0][i]
		promoted := seat.Enqueue(dealt)
		if len(promoted) > 0 {
			events = append(events, Event{
				Type:   EventPack,
				Target: SeatTarget(seat.ID),
				Value:  append([]catalog.Card(nil), promoted...),
			})
		}
	}
	return events, nil
}

// Pick applies a pick at the given index in the seat's current pack,
// rotating the remainder to the appropriate neighbor and advancing the
// round once every seat goes idle (spec §4.4 steps 1-6).
func (e *Engine) Pick(seat draftmodel.SeatID, index int, now time.Time) ([]Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.draft.Phase != draftmodel.PhaseInProgress {
		return nil, nil
	}
	s := e.draft.SeatByID(seat)
	if s == nil {
		return nil, ErrUnknownSeat
	}
	if !s.HasCurrent() || index < 0 || index >= len(s.Current) {
		return []Event{{Type: EventPickRejected, Target: SeatTarget(seat)}}, nil
	}

	result := s.Pick(index)
	e.draft.UpdatedAt = now

	events := []Event{{Type: EventPickSuccessful, Target: SeatTarget(seat), Value: result.Card}}
	if len(result.Promoted) > 0 {
		events = append(events, Event{Type: EventPack, Target: SeatTarget(seat), Value: append([]catalog.Card(nil), result.Promoted...)})
	}

	if len(result.Remainder) > 0 {
		neighbor := e.neighborSeat(s.Index)
		promoted := neighbor.Enqueue(result.Remainder)
		if len(promoted) > 0 {
			events = append(events, Event{Type: EventPack, Target: SeatTarget(neighbor.ID), Value: append([]catalog.Card(nil), promoted...)})
		}
	} else {
		// The last card of this pack was just taken.
		e.draft.PacksRemaining--
	}

	if e.draft.AllSeatsIdle() {
		advance, err := e.advanceRound(now)
		if err != nil {
			return nil, err
		}
		events = append(events, advance...)
	}

	return events, nil
}

// neighborSeat resolves the pick -> rotate target: in even-numbered
// rounds (0-indexed) the remainder passes to seat (i+1) mod N; in odd
// rounds to seat (i-1+N) mod N (spec §4.4, P4).
func (e *Engine) neighborSeat(seatIndex int) *draftmodel.Seat {
	n := len(e.draft.Seats)
	var next int
	if e.draft.Round%2 == 0 {
		next = (seatIndex + 1) % n
	} else {
		next = (seatIndex - 1 + n) % n
	}
	return e.draft.Seats[next]
}

// advanceRound deals the next round's packs once every seat has gone
// idle, or transitions to Finished if none remain.
func (e *Engine) advanceRound(now time.Time) ([]Event, error) {
	e.draft.Round++
	if e.draft.Round >= e.draft.Config.PacksPerSeat {
		return e.finish(now), nil
	}

	var events []Event
	round := e.draft.Rounds[e.draft.Round]
	for i, seat := range e.draft.Seats {
		promoted := seat.Enqueue(round[i])
		if len(promoted) > 0 {
			events = append(events, Event{Type: EventPack, Target: SeatTarget(seat.ID), Value: append([]catalog.Card(nil), promoted...)})
		}
	}
	return events, nil
}

// finish transitions InProgress -> Finished, sending each seat its final
// pool individually (spec §4.4 step 6, §6 Finished).
func (e *Engine) finish(now time.Time) []Event {
	e.draft.Phase = draftmodel.PhaseFinished
	e.draft.UpdatedAt = now

	events := make([]Event, 0, len(e.draft.Seats))
	for _, seat := range e.draft.Seats {
		events = append(events, Event{
			Type:   EventFinished,
			Target: SeatTarget(seat.ID),
			Value:  append([]catalog.Card(nil), seat.Pool...),
		})
	}
	return events
}

// Terminate forces the draft into PhaseTerminated and broadcasts
// FatalError, used when an invariant is violated (e.g. pack generation
// failing mid-draft, which Validate at upload time is meant to prevent).
func (e *Engine) Terminate(reason string, now time.Time) []Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.terminate(reason, now)
}

func (e *Engine) terminate(reason string, now time.Time) []Event {
	e.draft.Phase = draftmodel.PhaseTerminated
	e.draft.UpdatedAt = now
	return []Event{{Type: EventFatalError, Target: BroadcastTo(), Value: reason}}
}

// CheckHeartbeats updates every seat's ConnectionStatus based on how long
// ago its last heartbeat arrived, returning a PlayerUpdate for each seat
// whose status changed (spec §4.5: Warning past warnAfter, Error past
// errAfter; never blocks draft progress).
func (e *Engine) CheckHeartbeats(now time.Time, warnAfter, errAfter time.Duration) []Event {
	e.mu.Lock()
	defer e.mu.Unlock()

	var events []Event
	for _, s := range e.draft.Seats {
		age := now.Sub(s.LastHeartbeat)
		next := draftmodel.StatusOk
		switch {
		case age >= errAfter:
			next = draftmodel.StatusError
		case age >= warnAfter:
			next = draftmodel.StatusWarning
		}
		if next != s.Status {
			s.Status = next
			events = append(events, Event{Type: EventPlayerUpdate, Target: BroadcastTo(), Value: playerDetails(s)})
		}
	}
	return events
}

// Heartbeat records that a seat's session is alive, restoring StatusOk if
// it had degraded.
func (e *Engine) Heartbeat(seat draftmodel.SeatID, now time.Time) ([]Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.draft.SeatByID(seat)
	if s == nil {
		return nil, ErrUnknownSeat
	}
	s.LastHeartbeat = now
	if s.Status != draftmodel.StatusOk {
		s.Status = draftmodel.StatusOk
		return []Event{{Type: EventPlayerUpdate, Target: BroadcastTo(), Value: playerDetails(s)}}, nil
	}
	return nil, nil
}

func (e *Engine) playerList() []PlayerDetails {
	out := make([]PlayerDetails, len(e.draft.Seats))
	for i, s := range e.draft.Seats {
		out[i] = playerDetails(s)
	}
	return out
}
