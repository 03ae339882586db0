package draftengine

import (
	"testing"
	"time"

	"boosterdraft/internal/catalog"
	"boosterdraft/internal/draftmodel"
)

func smallCatalog(t *testing.T, n int) *catalog.Catalog {
	t.Helper()
	names := make([]string, n)
	db := make(map[string]catalog.Card, n)
	for i := 0; i < n; i++ {
		name := string(rune('A' + i))
		names[i] = name
		db[name] = catalog.Card{Name: name, Rarity: catalog.Common}
	}
	cat, err := catalog.Build(names, db)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return cat
}

func eventsOfType(events []Event, t EventType) []Event {
	var out []Event
	for _, e := range events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// Two seats, one pack each of two cards: the whole lifecycle from Lobby
// through Finished (spec §8 scenario 1 shape, engine-level).
func TestTwoSeatMiniDraftEndToEnd(t *testing.T) {
	now := time.Unix(0, 0)
	cat := smallCatalog(t, 4)
	spec := draftmodel.PackSpec{PacksPerSeat: 1, CardsPerPack: 2, UniqueCards: true}
	eng := New(draftmodel.NewDraftID(), spec, cat, now)

	seat1, _, err := eng.Join(now)
	if err != nil {
		t.Fatalf("Join seat1: %v", err)
	}
	seat2, _, err := eng.Join(now)
	if err != nil {
		t.Fatalf("Join seat2: %v", err)
	}

	if _, err := eng.SetReady(seat1, true, now); err != nil {
		t.Fatalf("SetReady seat1: %v", err)
	}
	events, err := eng.SetReady(seat2, true, now)
	if err != nil {
		t.Fatalf("SetReady seat2: %v", err)
	}
	if eng.Phase() != draftmodel.PhaseInProgress {
		t.Fatalf("phase = %v, want InProgress", eng.Phase())
	}
	packEvents := eventsOfType(events, EventPack)
	if len(packEvents) != 2 {
		t.Fatalf("expected 2 Pack events on start, got %d", len(packEvents))
	}

	draft := eng.Draft()
	s1, s2 := draft.SeatByID(seat1), draft.SeatByID(seat2)
	if !s1.HasCurrent() || !s2.HasCurrent() {
		t.Fatal("both seats should have a current pack after start")
	}

	// Round 0 is even: seat1's remainder rotates to seat2, and vice versa.
	if _, err := eng.Pick(seat1, 0, now); err != nil {
		t.Fatalf("Pick seat1: %v", err)
	}
	events, err = eng.Pick(seat2, 0, now)
	if err != nil {
		t.Fatalf("Pick seat2: %v", err)
	}

	draft = eng.Draft()
	if !draft.SeatByID(seat1).HasCurrent() || !draft.SeatByID(seat2).HasCurrent() {
		t.Fatal("both seats should have received the rotated remainder")
	}

	if _, err := eng.Pick(seat1, 0, now); err != nil {
		t.Fatalf("Pick seat1 second pick: %v", err)
	}
	events, err = eng.Pick(seat2, 0, now)
	if err != nil {
		t.Fatalf("Pick seat2 second pick: %v", err)
	}

	if eng.Phase() != draftmodel.PhaseFinished {
		t.Fatalf("phase = %v, want Finished", eng.Phase())
	}
	finished := eventsOfType(events, EventFinished)
	if len(finished) != 2 {
		t.Fatalf("expected 2 Finished events, got %d", len(finished))
	}

	draft = eng.Draft()
	for _, s := range draft.Seats {
		if len(s.Pool) != 2 {
			t.Errorf("seat %s pool = %d cards, want 2", s.ID, len(s.Pool))
		}
	}
}

// P4: rotation direction alternates by round parity.
func TestRotationDirectionAlternatesByRound(t *testing.T) {
	now := time.Unix(0, 0)
	cat := smallCatalog(t, 12)
	spec := draftmodel.PackSpec{PacksPerSeat: 2, CardsPerPack: 2, UniqueCards: true}
	eng := New(draftmodel.NewDraftID(), spec, cat, now)

	var seats []draftmodel.SeatID
	for i := 0; i < 3; i++ {
		id, _, err := eng.Join(now)
		if err != nil {
			t.Fatalf("Join: %v", err)
		}
		seats = append(seats, id)
	}
	for _, s := range seats {
		if _, err := eng.SetReady(s, true, now); err != nil {
			t.Fatalf("SetReady: %v", err)
		}
	}

	// holds reports whether a card is in a seat's Current pack or queued
	// behind it (a passed pack waits in Queue while Current is occupied).
	holds := func(id draftmodel.SeatID, name string) bool {
		s := eng.Draft().SeatByID(id)
		for _, p := range append([]draftmodel.Pack{s.Current}, s.Queue...) {
			for _, c := range p {
				if c.Name == name {
					return true
				}
			}
		}
		return false
	}

	// Round 0 (even): seat0's remainder should land at seat1.
	draft := eng.Draft()
	seat0Current := draft.SeatByID(seats[0]).Current[0]
	if _, err := eng.Pick(seats[0], 1, now); err != nil { // pick the *other* card, remainder is seat0Current
		t.Fatalf("Pick: %v", err)
	}
	if !holds(seats[1], seat0Current.Name) {
		t.Fatalf("round 0 (even) remainder from seat0 should rotate to seat1")
	}

	// Finish round 0: seat1 and seat2 pick from their own packs, then every
	// seat picks the single card passed to it.
	for _, id := range []draftmodel.SeatID{seats[1], seats[2], seats[0], seats[1], seats[2]} {
		if _, err := eng.Pick(id, 0, now); err != nil {
			t.Fatalf("Pick: %v", err)
		}
	}
	if got := eng.Draft().Round; got != 1 {
		t.Fatalf("round = %d, want 1", got)
	}

	// Round 1 (odd): seat0's remainder should land at seat2.
	seat0Current = eng.Draft().SeatByID(seats[0]).Current[0]
	if _, err := eng.Pick(seats[0], 1, now); err != nil {
		t.Fatalf("Pick: %v", err)
	}
	if !holds(seats[2], seat0Current.Name) {
		t.Fatalf("round 1 (odd) remainder from seat0 should rotate to seat2")
	}
}

// P5: a duplicate/stale Pick (index no longer valid, or no Current pack)
// is rejected without mutating state.
func TestDuplicatePickIsRejectedIdempotently(t *testing.T) {
	now := time.Unix(0, 0)
	cat := smallCatalog(t, 4)
	spec := draftmodel.PackSpec{PacksPerSeat: 1, CardsPerPack: 2, UniqueCards: true}
	eng := New(draftmodel.NewDraftID(), spec, cat, now)

	seat1, _, _ := eng.Join(now)
	seat2, _, _ := eng.Join(now)
	eng.SetReady(seat1, true, now)
	eng.SetReady(seat2, true, now)

	if _, err := eng.Pick(seat1, 0, now); err != nil {
		t.Fatalf("Pick: %v", err)
	}
	before := len(eng.Draft().SeatByID(seat1).Pool)

	events, err := eng.Pick(seat1, 0, now)
	if err != nil {
		t.Fatalf("duplicate Pick should not error: %v", err)
	}
	rejected := eventsOfType(events, EventPickRejected)
	if len(rejected) != 1 {
		t.Fatalf("expected a PickRejected event, got %v", events)
	}
	after := len(eng.Draft().SeatByID(seat1).Pool)
	if before != after {
		t.Fatalf("pool size changed on a rejected pick: %d -> %d", before, after)
	}
}

// A seat joining after InProgress has begun is rejected by Join, leaving
// routing of Started/Ended to the caller (spec §4.5).
func TestJoinRejectedAfterDraftStarted(t *testing.T) {
	now := time.Unix(0, 0)
	cat := smallCatalog(t, 4)
	spec := draftmodel.PackSpec{PacksPerSeat: 1, CardsPerPack: 2, UniqueCards: true}
	eng := New(draftmodel.NewDraftID(), spec, cat, now)

	seat1, _, _ := eng.Join(now)
	seat2, _, _ := eng.Join(now)
	eng.SetReady(seat1, true, now)
	eng.SetReady(seat2, true, now)

	if _, _, err := eng.Join(now); err != ErrNotJoinable {
		t.Fatalf("Join after start: err = %v, want ErrNotJoinable", err)
	}
}

// Rejoin reports in-progress pool and current pack state for reconnect.
func TestRejoinReportsCurrentState(t *testing.T) {
	now := time.Unix(0, 0)
	cat := smallCatalog(t, 4)
	spec := draftmodel.PackSpec{PacksPerSeat: 1, CardsPerPack: 2, UniqueCards: true}
	eng := New(draftmodel.NewDraftID(), spec, cat, now)

	seat1, _, _ := eng.Join(now)
	seat2, _, _ := eng.Join(now)
	eng.SetReady(seat1, true, now)
	eng.SetReady(seat2, true, now)
	eng.Pick(seat1, 0, now)

	events, err := eng.Rejoin(seat1)
	if err != nil {
		t.Fatalf("Rejoin: %v", err)
	}
	if len(events) != 1 || events[0].Type != EventReconnected {
		t.Fatalf("expected one Reconnected event, got %v", events)
	}
	val := events[0].Value.(ReconnectedValue)
	if !val.InProgress {
		t.Error("InProgress should be true")
	}
	if len(val.Pool) != 1 {
		t.Errorf("pool length = %d, want 1", len(val.Pool))
	}
}

// Heartbeat status degrades to Warning/Error with age and never changes
// the draft's phase or seat queues.
func TestCheckHeartbeatsDegradesStatus(t *testing.T) {
	start := time.Unix(0, 0)
	cat := smallCatalog(t, 4)
	spec := draftmodel.PackSpec{PacksPerSeat: 1, CardsPerPack: 2, UniqueCards: true}
	eng := New(draftmodel.NewDraftID(), spec, cat, start)

	seat1, _, _ := eng.Join(start)
	eng.Join(start)

	later := start.Add(20 * time.Second)
	events := eng.CheckHeartbeats(later, 15*time.Second, 60*time.Second)
	if len(eventsOfType(events, EventPlayerUpdate)) == 0 {
		t.Fatal("expected a PlayerUpdate for the degraded seat")
	}
	if eng.Draft().SeatByID(seat1).Status != draftmodel.StatusWarning {
		t.Errorf("status = %v, want Warning", eng.Draft().SeatByID(seat1).Status)
	}

	muchLater := start.Add(90 * time.Second)
	eng.CheckHeartbeats(muchLater, 15*time.Second, 60*time.Second)
	if eng.Draft().SeatByID(seat1).Status != draftmodel.StatusError {
		t.Errorf("status = %v, want Error", eng.Draft().SeatByID(seat1).Status)
	}

	events, err := eng.Heartbeat(seat1, muchLater)
	if err != nil {
		t.Fatalf("Heartbeat: %v", err)
	}
	if len(eventsOfType(events, EventPlayerUpdate)) != 1 {
		t.Fatal("expected a PlayerUpdate restoring status to Ok")
	}
	if eng.Draft().SeatByID(seat1).Status != draftmodel.StatusOk {
		t.Errorf("status = %v, want Ok after heartbeat", eng.Draft().SeatByID(seat1).Status)
	}
}
