package wshub

import (
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"boosterdraft/internal/draftengine"
	"boosterdraft/internal/draftmodel"
)

// EngineStore resolves a draft's live Engine and durably persists its
// state. internal/registry.Registry satisfies this; Hub depends only on
// the interface so it never imports the registry package (registry
// already depends on draftengine, and httpapi wires both together).
type EngineStore interface {
	Engine(id draftmodel.DraftID) (*draftengine.Engine, bool)
	Persist(id draftmodel.DraftID) error
}

// Hub owns every draft's connected sessions and is the single place
// inbound WebSocket messages are turned into Engine calls and Engine
// events are turned into outbound frames (spec §4.5).
type Hub struct {
	store EngineStore

	warnAfter time.Duration
	errAfter  time.Duration

	mu       sync.RWMutex
	sessions map[draftmodel.DraftID]map[draftmodel.SeatID]*session

	register   chan *session
	unregister chan *session

	done chan struct{}
}

// NewHub constructs a Hub bound to an EngineStore, with the connection
// status thresholds from spec §4.5 (warnAfter, e.g. 15s; errAfter, e.g.
// 60s, both since the seat's last heartbeat).
func NewHub(store EngineStore, warnAfter, errAfter time.Duration) *Hub {
	return &Hub{
		store:      store,
		warnAfter:  warnAfter,
		errAfter:   errAfter,
		sessions:   make(map[draftmodel.DraftID]map[draftmodel.SeatID]*session),
		register:   make(chan *session),
		unregister: make(chan *session),
		done:       make(chan struct{}),
	}
}

// Run drives registration/unregistration and periodic heartbeat checks.
// Call it in its own goroutine for the server's lifetime.
func (h *Hub) Run() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-h.done:
			return

		case s := <-h.register:
			h.mu.Lock()
			bucket := h.sessions[draftIDOf(s)]
			if bucket == nil {
				bucket = make(map[draftmodel.SeatID]*session)
				h.sessions[draftIDOf(s)] = bucket
			}
			bucket[s.seat] = s
			h.mu.Unlock()

		case s := <-h.unregister:
			h.mu.Lock()
			if bucket, ok := h.sessions[draftIDOf(s)]; ok {
				if bucket[s.seat] == s {
					delete(bucket, s.seat)
				}
				if len(bucket) == 0 {
					delete(h.sessions, draftIDOf(s))
				}
			}
			h.mu.Unlock()
			close(s.send)

		case <-ticker.C:
			h.checkAllHeartbeats()
		}
	}
}

// Stop ends Run's loop. Existing sessions keep running to completion.
func (h *Hub) Stop() { close(h.done) }

func draftIDOf(s *session) draftmodel.DraftID { return s.draft }

func (h *Hub) checkAllHeartbeats() {
	h.mu.RLock()
	drafts := make([]draftmodel.DraftID, 0, len(h.sessions))
	for id := range h.sessions {
		drafts = append(drafts, id)
	}
	h.mu.RUnlock()

	now := time.Now()
	for _, id := range drafts {
		eng, ok := h.store.Engine(id)
		if !ok {
			continue
		}
		events := eng.CheckHeartbeats(now, h.warnAfter, h.errAfter)
		if len(events) > 0 {
			h.deliver(id, events)
		}
	}
}

// ServeWs upgrades an HTTP request to a WebSocket session for a draft,
// routing per spec §4.5: a first-time arrival (no seatID) joins the
// lobby or, if the draft is no longer joinable, is rejected with Started
// or Ended; a returning seat (seatID present) reconnects.
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request, draftID draftmodel.DraftID, seatID draftmodel.SeatID) {
	eng, ok := h.store.Engine(draftID)
	if !ok {
		http.NotFound(w, r)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("wshub: upgrade error: %v", err)
		return
	}

	var events []draftengine.Event
	var seat draftmodel.SeatID

	if seatID == "" {
		if eng.Phase() != draftmodel.PhaseLobby {
			h.rejectAndClose(conn, eng.Phase())
			return
		}
		seat, events, err = eng.Join(time.Now())
		if err != nil {
			h.rejectAndClose(conn, eng.Phase())
			return
		}
	} else {
		events, err = eng.Rejoin(seatID)
		if err != nil {
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "unknown seat"))
			_ = conn.Close()
			return
		}
		seat = seatID
	}

	if perr := h.store.Persist(draftID); perr != nil {
		log.Printf("wshub: persist after join: %v", perr)
		events = h.terminateOnPersistFailure(eng, perr)
	}

	s := &session{
		hub:     h,
		conn:    conn,
		send:    make(chan []byte, 64),
		seat:    seat,
		draft:   draftID,
		limiter: rate.NewLimiter(rate.Limit(inboundRateLimit), inboundBurst),
	}
	h.register <- s
	go s.writePump()
	go s.readPump()

	h.deliver(draftID, events)
}

// rejectAndClose sends the terminal Started or Ended message to a
// connection that cannot join, then closes without registering a
// session.
func (h *Hub) rejectAndClose(conn *websocket.Conn, phase draftmodel.Phase) {
	evType := string(draftengine.EventStarted)
	if phase == draftmodel.PhaseFinished || phase == draftmodel.PhaseTerminated {
		evType = string(draftengine.EventEnded)
	}
	data, _ := marshalOutbound(evType, nil)
	_ = conn.WriteMessage(websocket.TextMessage, data)
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = conn.Close()
}

// dispatch applies one decoded inbound message to the seat's draft
// engine and fans out whatever events result.
func (h *Hub) dispatch(s *session, msg inbound) {
	eng, ok := h.store.Engine(s.draft)
	if !ok {
		return
	}

	var events []draftengine.Event
	var err error
	now := time.Now()

	switch msg.Type {
	case "HeartBeat":
		events, err = eng.Heartbeat(s.seat, now)
	case "ReadyState":
		var d readyStateData
		if jerr := unmarshalData(msg.Value, &d); jerr != nil {
			return
		}
		events, err = eng.SetReady(s.seat, d.Ready, now)
	case "SetName":
		var d setNameData
		if jerr := unmarshalData(msg.Value, &d); jerr != nil {
			return
		}
		events, err = eng.SetName(s.seat, d.Name, now)
	case "Pick":
		var d pickData
		if jerr := unmarshalData(msg.Value, &d); jerr != nil {
			return
		}
		events, err = eng.Pick(s.seat, d.Index, now)
	case "Disconnected":
		return
	default:
		log.Printf("wshub: unknown inbound message type %q", msg.Type)
		return
	}

	if err != nil {
		log.Printf("wshub: dispatch %s: %v", msg.Type, err)
		return
	}
	if len(events) == 0 {
		return
	}
	if perr := h.store.Persist(s.draft); perr != nil {
		log.Printf("wshub: persist after %s: %v", msg.Type, perr)
		events = h.terminateOnPersistFailure(eng, perr)
	}
	h.deliver(s.draft, events)
}

// terminateOnPersistFailure forces the draft to Terminated when its
// snapshot failed to write durably (spec §7.5), so the mutation that
// triggered the write is never delivered as if it had taken effect (spec
// §5: "the Engine does not acknowledge the mutation to the client until
// the snapshot is durable"). The caller must deliver the returned events
// in place of whatever the failed mutation produced.
func (h *Hub) terminateOnPersistFailure(eng *draftengine.Engine, persistErr error) []draftengine.Event {
	return eng.Terminate(fmt.Sprintf("persist failed: %v", persistErr), time.Now())
}

// BroadcastRefresh notifies every session currently connected to a draft
// that its on-disk state changed underneath it (SPEC_FULL.md §4.9's
// Content Watcher reconciliation), so clients know to re-fetch rather
// than trust what they last rendered.
func (h *Hub) BroadcastRefresh(draftID draftmodel.DraftID) {
	h.deliver(draftID, []draftengine.Event{{Type: draftengine.EventRefresh, Target: draftengine.BroadcastTo()}})
}

// deliver fans out Engine events to the draft's connected sessions per
// each event's Target.
func (h *Hub) deliver(draftID draftmodel.DraftID, events []draftengine.Event) {
	h.mu.RLock()
	bucket := h.sessions[draftID]
	targets := make([]*session, 0, len(bucket))
	for _, s := range bucket {
		targets = append(targets, s)
	}
	h.mu.RUnlock()

	for _, ev := range events {
		for _, s := range targets {
			if ev.Target.Broadcast || s.seat == ev.Target.Seat {
				s.writeEvent(ev)
			}
		}
	}
}
