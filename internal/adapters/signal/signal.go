// Package signal is the websocket adapter: one controller handling
// connection lifecycle and the relay of room events between peers.
package signal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/Yash-Kunal/scriptly-deploy/internal/app/orch"
	"github.com/Yash-Kunal/scriptly-deploy/internal/core"
	"github.com/Yash-Kunal/scriptly-deploy/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

// WsConn wraps one websocket with a buffered outbound channel. The
// write pump is the only goroutine touching the socket for writes.
type WsConn struct {
	id       domain.ConnectionID
	identity string
	conn     *websocket.Conn
	send     chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func newWsConn(ws *websocket.Conn, id domain.ConnectionID, identity string) *WsConn {
	return &WsConn{
		id:       id,
		identity: identity,
		conn:     ws,
		send:     make(chan core.Frame, 32),
	}
}

func (c *WsConn) ID() domain.ConnectionID { return c.id }

func (c *WsConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

func (c *WsConn) Closed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// Controller owns the relay: it decodes inbound envelopes, resolves
// the sender through the registry and fans payloads out to the scope
// each event type demands.
type Controller struct {
	Orch    *orch.Orchestrator
	Tracker *RoomTracker

	limiter    *JoinRateLimiter
	dispatch   map[string]eventHandler
	readLimit  int64
	pingPeriod time.Duration
}

func NewController(o *orch.Orchestrator, tracker *RoomTracker, readLimit int64, pingPeriod time.Duration) *Controller {
	ctl := &Controller{
		Orch:       o,
		Tracker:    tracker,
		limiter:    NewJoinRateLimiter(8, 10*time.Second),
		readLimit:  readLimit,
		pingPeriod: pingPeriod,
	}
	ctl.dispatch = ctl.buildDispatch()
	return ctl
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignal upgrades the request and runs the connection until the
// socket dies. The opaque user id comes from the connection params;
// the client-token cookie is the fallback.
func (ctl *Controller) HandleSignal(ctx context.Context, c *gin.Context) {
	identity := c.Query("userId")
	if identity == "" {
		identity = c.GetString("client_token")
	}
	if err := domain.ValidateIdentity(identity); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	connID := domain.ConnectionID(uuid.NewString())
	conn := newWsConn(ws, connID, identity)
	ctl.Tracker.Register(conn)
	log.Info().Str("module", "signal").
		Str("conn", string(connID)).
		Str("user", identity).
		Msg("new WS connection")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go ctl.writePump(ctx, conn)
	ctl.readPump(ctx, conn)

	// The read pump returned: the transport is going away. Notify the
	// room before the registry entry disappears.
	ctl.handleDisconnecting(conn)
	ctl.Tracker.Unregister(connID)
	conn.Close()
}

// handleDisconnecting is the single removal path shared by explicit
// leave and transport teardown. Idempotent: a second run resolves no
// member and does nothing.
func (ctl *Controller) handleDisconnecting(c *WsConn) {
	m, ok := ctl.Orch.Disconnect(c.id)
	if !ok {
		return
	}
	ctl.broadcastRoom(m.RoomID, c.id, userEvent{Type: EventUserDisconnected, User: m})
	log.Info().Str("module", "signal").
		Str("conn", string(c.id)).
		Str("room", string(m.RoomID)).
		Msg("disconnected from room")
}

// sendEvent encodes v and queues it on one connection.
func (ctl *Controller) sendEvent(c core.Conn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendEvent marshal")
		return
	}
	if err := c.TrySend(b); err != nil {
		log.Warn().Err(err).Str("module", "signal").
			Str("conn", string(c.ID())).
			Msg("send dropped")
	}
}

// sendTo queues v on the connection with the given id, if it exists.
func (ctl *Controller) sendTo(target domain.ConnectionID, v any) {
	peer, ok := ctl.Tracker.Conn(target)
	if !ok {
		log.Warn().Str("module", "signal").
			Str("target", string(target)).
			Msg("target connection not found, event dropped")
		return
	}
	ctl.sendEvent(peer, v)
}

// broadcastRoom encodes v once and fans it out to every connection in
// the room except the sender.
func (ctl *Controller) broadcastRoom(room domain.RoomID, except domain.ConnectionID, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("broadcast marshal")
		return
	}
	ctl.broadcastRaw(room, except, b)
}

func (ctl *Controller) broadcastRaw(room domain.RoomID, except domain.ConnectionID, frame core.Frame) {
	for _, peer := range ctl.Tracker.Peers(room, except) {
		if err := peer.TrySend(frame); err != nil {
			log.Warn().Err(err).Str("module", "signal").
				Str("conn", string(peer.ID())).
				Str("room", string(room)).
				Msg("peer send dropped")
		}
	}
}
