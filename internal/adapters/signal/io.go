package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/Yash-Kunal/scriptly-deploy/internal/domain"
)

type eventHandler func(ctx context.Context, c *WsConn, data []byte)

// buildDispatch is the scope-resolution table: every inbound event
// type maps to exactly one handler, and the pure room relays share a
// single implementation so the sender-room lookup lives in one place.
func (ctl *Controller) buildDispatch() map[string]eventHandler {
	return map[string]eventHandler{
		EventJoinRequest: ctl.handleJoin,
		EventLeave:       ctl.handleLeave,

		// Structural mutations: relayed verbatim to the sender's room.
		EventDirectoryCreated: ctl.relayToSenderRoom,
		EventDirectoryUpdated: ctl.relayToSenderRoom,
		EventDirectoryRenamed: ctl.relayToSenderRoom,
		EventDirectoryDeleted: ctl.relayToSenderRoom,
		EventFileCreated:      ctl.relayToSenderRoom,
		EventFileUpdated:      ctl.relayToSenderRoom,
		EventFileRenamed:      ctl.relayToSenderRoom,
		EventFileDeleted:      ctl.relayToSenderRoom,

		EventSyncFileStructure: ctl.handleSyncFileStructure,
		EventSaveRoomFiles:     ctl.handleSaveRoomFiles,

		EventTypingStart: ctl.handleTypingStart,
		EventTypingPause: ctl.handleTypingPause,
		EventUserOnline:  ctl.handleUserOnline,
		EventUserOffline: ctl.handleUserOffline,
		EventSendMessage: ctl.handleSendMessage,

		EventRequestDrawing: ctl.handleRequestDrawing,
		EventSyncDrawing:    ctl.handleSyncDrawing,
		EventDrawingUpdate:  ctl.relayToSenderRoom,
	}
}

func (ctl *Controller) writePump(ctx context.Context, c *WsConn) {
	ticker := time.NewTicker(ctl.pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump processes frames strictly in arrival order, so events from
// one connection relay FIFO and nothing for this connection runs until
// its join handling finished.
func (ctl *Controller) readPump(ctx context.Context, c *WsConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("conn", string(c.id)).Msg("readPump closing")
	}()

	pongWait := ctl.pingPeriod + 10*time.Second
	c.conn.SetReadLimit(ctl.readLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Warn().Err(err).Str("module", "signal").Str("conn", string(c.id)).Msg("readPump read error")
				}
				return
			}
			ctl.handleEvent(ctx, c, data)
		}
	}
}

// handleEvent decodes the envelope and dispatches. A malformed or
// unknown event is logged and dropped; it must never take the
// connection down.
func (ctl *Controller) handleEvent(ctx context.Context, c *WsConn, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("conn", string(c.id)).Msg("bad json")
		return
	}
	h, ok := ctl.dispatch[env.Type]
	if !ok {
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown event")
		return
	}
	h(ctx, c, data)
}

// relayToSenderRoom forwards the inbound frame unmodified to everyone
// in the sender's room except the sender. Unresolvable senders (event
// arrived after removal) drop silently.
func (ctl *Controller) relayToSenderRoom(_ context.Context, c *WsConn, data []byte) {
	room, ok := ctl.roomOf(c)
	if !ok {
		return
	}
	ctl.broadcastRaw(room, c.id, data)
}

func (ctl *Controller) roomOf(c *WsConn) (domain.RoomID, bool) {
	m, ok := ctl.Orch.Registry.MemberByConn(c.id)
	if !ok {
		log.Debug().Str("module", "signal").
			Str("conn", string(c.id)).
			Msg("sender not in a room, event dropped")
		return "", false
	}
	return m.RoomID, true
}
