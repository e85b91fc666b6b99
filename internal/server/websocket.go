package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Delivery is at-most-once, unordered, best-effort: no acknowledgement,
// no replay, and a write that misses its deadline drops that connection
// rather than blocking the rest of the room.
type roomHub struct {
	mu           sync.Mutex
	rooms        map[string]map[*websocket.Conn]*roomMember
	writeTimeout time.Duration
	log          *zap.SugaredLogger
}

// roomMember serializes writes to one connection. gorilla/websocket
// allows at most one concurrent writer per conn, so every outbound
// frame must go through write.
type roomMember struct {
	id      string
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (m *roomMember) write(timeout time.Duration, payload []byte) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	_ = m.conn.SetWriteDeadline(time.Now().Add(timeout))
	return m.conn.WriteMessage(websocket.TextMessage, payload)
}

type wsEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Events relayed between room members.
const (
	eventAvatarUpdated = "avatar-updated"
	eventPlayerUpdated = "player-updated"
	eventTeamUpdated   = "team-updated"
	eventGameUpdated   = "game-updated"
)

func newRoomHub(writeTimeout time.Duration, log *zap.SugaredLogger) *roomHub {
	return &roomHub{
		rooms:        make(map[string]map[*websocket.Conn]*roomMember),
		writeTimeout: writeTimeout,
		log:          log,
	}
}

// Add is idempotent: re-adding a live connection just refreshes its id
// and returns the existing member.
func (h *roomHub) Add(gameID string, conn *websocket.Conn, connectionID string) *roomMember {
	h.mu.Lock()
	defer h.mu.Unlock()
	room := h.rooms[gameID]
	if room == nil {
		room = make(map[*websocket.Conn]*roomMember)
		h.rooms[gameID] = room
	}
	member := room[conn]
	if member == nil {
		member = &roomMember{conn: conn}
		room[conn] = member
	}
	member.id = connectionID
	return member
}

// Remove is idempotent and prunes the room once it empties.
func (h *roomHub) Remove(gameID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room := h.rooms[gameID]
	if room == nil {
		return
	}
	delete(room, conn)
	_ = conn.Close()
	if len(room) == 0 {
		delete(h.rooms, gameID)
	}
}

func (h *roomHub) Send(member *roomMember, event string, data any) {
	payload, err := marshalEnvelope(event, data)
	if err != nil {
		return
	}
	_ = member.write(h.writeTimeout, payload)
}

// Broadcast relays an event to every live member of the room except the
// originator. An empty room is a silent no-op.
func (h *roomHub) Broadcast(gameID, event string, data any, exclude *websocket.Conn) {
	h.mu.Lock()
	room := h.rooms[gameID]
	members := make([]*roomMember, 0, len(room))
	for conn, member := range room {
		if conn == exclude {
			continue
		}
		members = append(members, member)
	}
	h.mu.Unlock()

	if len(members) == 0 {
		return
	}
	payload, err := marshalEnvelope(event, data)
	if err != nil {
		return
	}
	for _, member := range members {
		if err := member.write(h.writeTimeout, payload); err != nil {
			h.log.Warnw("dropping stalled room connection", "game_id", gameID, "error", err)
			h.Remove(gameID, member.conn)
		}
	}
}

func marshalEnvelope(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wsEnvelope{Event: event, Data: raw})
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (s *Server) handleWebsocket(c *gin.Context) {
	gameID := c.Param("id")
	if _, ok := s.store.GetGame(gameID); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
		return
	}
	connectionID := c.Query("connection_id")
	if connectionID == "" {
		connectionID = newConnectionID()
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warnw("websocket upgrade failed", "game_id", gameID, "error", err)
		return
	}
	s.log.Infow("websocket connected", "game_id", gameID, "connection_id", connectionID, "remote", c.Request.RemoteAddr)

	member := s.hub.Add(gameID, conn, connectionID)
	if err := s.registry.Join(c.Request.Context(), gameID, connectionID); err != nil {
		s.log.Warnw("presence join failed", "game_id", gameID, "error", err)
	}
	if game, ok := s.store.GetGame(gameID); ok {
		s.hub.Send(member, eventGameUpdated, s.gamePayload(game))
	}
	go s.readRoom(gameID, connectionID, conn)
}

// readRoom is the per-connection read pump. Client-emitted
// avatar-updated / player-updated / team-updated envelopes are relayed
// verbatim to the other room members under the same event name.
func (s *Server) readRoom(gameID, connectionID string, conn *websocket.Conn) {
	defer func() {
		s.hub.Remove(gameID, conn)
		ctx, cancel := context.WithTimeout(context.Background(), s.hub.writeTimeout)
		defer cancel()
		if err := s.registry.Leave(ctx, gameID, connectionID); err != nil {
			s.log.Warnw("presence leave failed", "game_id", gameID, "error", err)
		}
	}()
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			s.log.Infow("websocket disconnected", "game_id", gameID, "connection_id", connectionID, "error", err)
			return
		}
		var envelope wsEnvelope
		if err := json.Unmarshal(raw, &envelope); err != nil {
			s.log.Debugw("discarding malformed websocket message", "game_id", gameID, "error", err)
			continue
		}
		switch envelope.Event {
		case "join-game":
			// Membership is established by the upgrade; a repeat
			// join is harmless.
			s.hub.Add(gameID, conn, connectionID)
		case "leave-game":
			s.hub.Remove(gameID, conn)
			return
		case eventAvatarUpdated, eventPlayerUpdated, eventTeamUpdated:
			s.hub.Broadcast(gameID, envelope.Event, envelope.Data, conn)
		default:
			s.log.Debugw("ignoring unknown websocket event", "game_id", gameID, "event", envelope.Event)
		}
	}
}
