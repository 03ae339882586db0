// Package wshub adapts a Hub/Client actor pattern into a bidirectional,
// per-draft Session Hub: inbound client messages are decoded and applied
// to a draftengine.Engine, and the Engine's resulting outbound events are
// fanned out to one seat or broadcast to every connected session (spec
// §4.5).
package wshub

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"boosterdraft/internal/draftengine"
	"boosterdraft/internal/draftmodel"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096

	// inboundRateLimit bounds how often one session's messages reach the
	// Engine, independent of the heartbeat/ping traffic above — a stuck or
	// hostile client retrying Pick in a loop should not get more than a
	// few dispatches per second.
	inboundRateLimit = 10
	inboundBurst     = 20
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// inbound is the wire shape of a client->server message (spec §6):
// HeartBeat, ReadyState, SetName, Pick, Disconnected.
type inbound struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

type outbound struct {
	Type  string      `json:"type"`
	Value interface{} `json:"value"`
}

// readyStateData is the Value payload of a ReadyState message.
type readyStateData struct {
	Ready bool `json:"ready"`
}

// setNameData is the Value payload of a SetName message.
type setNameData struct {
	Name string `json:"name"`
}

// pickData is the Value payload of a Pick message.
type pickData struct {
	Index int `json:"index"`
}

// session is one WebSocket connection bound to a seat of a draft. ServeWs
// creates it only once the seat is known (after Join or Rejoin).
type session struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	seat    draftmodel.SeatID
	draft   draftmodel.DraftID
	limiter *rate.Limiter
}

// unmarshalData decodes an inbound message's Value payload into dst.
func unmarshalData(raw json.RawMessage, dst interface{}) error {
	return json.Unmarshal(raw, dst)
}

// marshalOutbound encodes a typed, valueless or valued outbound frame.
func marshalOutbound(eventType string, value interface{}) ([]byte, error) {
	return json.Marshal(outbound{Type: eventType, Value: value})
}

// writeEvent marshals and enqueues one outbound event for this session.
func (s *session) writeEvent(ev draftengine.Event) {
	data, err := json.Marshal(outbound{Type: string(ev.Type), Value: ev.Value})
	if err != nil {
		log.Printf("wshub: marshal event %s: %v", ev.Type, err)
		return
	}
	select {
	case s.send <- data:
	default:
		log.Printf("wshub: session %s send buffer full, dropping", s.seat)
	}
}

func (s *session) readPump() {
	defer func() {
		s.hub.unregister <- s
		if err := s.conn.Close(); err != nil {
			log.Printf("wshub: close error: %v", err)
		}
	}()

	s.conn.SetReadLimit(maxMessageSize)
	if err := s.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("wshub: read error: %v", err)
			}
			return
		}
		var msg inbound
		if err := json.Unmarshal(raw, &msg); err != nil {
			log.Printf("wshub: malformed inbound message: %v", err)
			continue
		}
		if !s.limiter.Allow() {
			continue
		}
		s.hub.dispatch(s, msg)
	}
}

func (s *session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		if err := s.conn.Close(); err != nil {
			log.Printf("wshub: close error: %v", err)
		}
	}()

	for {
		select {
		case message, ok := <-s.send:
			if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			w, err := s.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			if _, err := w.Write(message); err != nil {
				return
			}
			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
