package draftengine

import (
	"boosterdraft/internal/catalog"
	"boosterdraft/internal/draftmodel"
)

// EventType names one of the server->client message shapes in spec §6.
type EventType string

const (
	EventConnected       EventType = "Connected"
	EventReconnected     EventType = "Reconnected"
	EventStarted         EventType = "Started"
	EventEnded           EventType = "Ended"
	EventFatalError      EventType = "FatalError"
	EventPack            EventType = "Pack"
	EventPickSuccessful  EventType = "PickSuccessful"
	EventPickRejected    EventType = "PickRejected"
	EventFinished        EventType = "Finished"
	EventPlayerUpdate    EventType = "PlayerUpdate"
	EventPlayerList      EventType = "PlayerList"
	EventRefresh         EventType = "Refresh"
)

// Target describes who an Event is addressed to: every currently
// connected session of the draft, or one specific seat (spec §4.5's
// broadcast discipline).
type Target struct {
	Broadcast bool
	Seat      draftmodel.SeatID
}

// BroadcastTo returns a Target addressed to every session of the draft.
func BroadcastTo() Target { return Target{Broadcast: true} }

// SeatTarget returns a Target addressed to one seat only.
func SeatTarget(id draftmodel.SeatID) Target { return Target{Seat: id} }

// Event is an Engine-emitted outbound message, to be dispatched by the
// Session Hub per its Target. The Engine never holds a reference to the
// Hub; it only returns slices of these from its (mutex-guarded) methods,
// which the Hub fans out after the mutation has been durably snapshotted
// (spec §5: "the Engine does not acknowledge the mutation to the client
// until the snapshot is durable"). The exception is the connection-status
// PlayerUpdates from CheckHeartbeats, which the Hub's periodic check
// delivers without a snapshot. This is the concrete realization of
// the output-event-channel design note in spec §9: a channel would force
// the caller to drain it exactly as fast as the Engine writes to avoid
// deadlock on an unbuffered channel, or need an arbitrary buffer size on
// a buffered one; returning the accumulated events from each call gives
// the same "Engine has no pointer to Hub" guarantee without either.
type Event struct {
	Type   EventType
	Target Target
	Value  interface{}
}

// --- wire value shapes (spec §6) ---

// ConnectedValue is the value of a Connected event.
type ConnectedValue struct {
	Draft draftmodel.DraftID `json:"draft"`
	Seat  draftmodel.SeatID  `json:"seat"`
}

// ReconnectedValue is the value of a Reconnected event.
type ReconnectedValue struct {
	Draft      draftmodel.DraftID `json:"draft"`
	Seat       draftmodel.SeatID  `json:"seat"`
	InProgress bool               `json:"in_progress"`
	Pool       []catalog.Card     `json:"pool"`
	Pack       []catalog.Card     `json:"pack,omitempty"`
}

// PlayerDetails is the per-seat summary sent in PlayerUpdate/PlayerList.
type PlayerDetails struct {
	Seat   draftmodel.SeatID         `json:"seat"`
	Name   string                    `json:"name"`
	Ready  bool                      `json:"ready"`
	Status draftmodel.ConnectionStatus `json:"status"`
}

func playerDetails(s *draftmodel.Seat) PlayerDetails {
	return PlayerDetails{Seat: s.ID, Name: s.Name, Ready: s.Ready, Status: s.Status}
}
