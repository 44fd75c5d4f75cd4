package signal

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/Yash-Kunal/scriptly-deploy/internal/domain"
)

// Drawing payloads are opaque here: the server relays them without
// interpreting the canvas format.

// handleRequestDrawing asks the rest of the room for the current
// canvas; peers answer with sync-drawing aimed back at the requester.
func (ctl *Controller) handleRequestDrawing(_ context.Context, c *WsConn, _ []byte) {
	room, ok := ctl.roomOf(c)
	if !ok {
		return
	}
	ctl.broadcastRoom(room, c.id, struct {
		Type     string              `json:"type"`
		SocketID domain.ConnectionID `json:"socketId"`
	}{EventRequestDrawing, c.id})
}

// handleSyncDrawing is a direct reply: the payload goes to exactly the
// requester named in the event, never the whole room.
func (ctl *Controller) handleSyncDrawing(_ context.Context, c *WsConn, data []byte) {
	var p struct {
		DrawingData json.RawMessage     `json:"drawingData"`
		Target      domain.ConnectionID `json:"socketId"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.Target == "" {
		log.Warn().Str("module", "signal").Str("conn", string(c.id)).Msg("bad sync-drawing payload")
		return
	}
	ctl.sendTo(p.Target, struct {
		Type        string          `json:"type"`
		DrawingData json.RawMessage `json:"drawingData"`
	}{EventSyncDrawing, p.DrawingData})
}
