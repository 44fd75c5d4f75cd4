package signal

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/Yash-Kunal/scriptly-deploy/internal/domain"
)

// handleTypingStart marks the sender as typing and broadcasts the
// post-mutation member, not just the delta, so late peers still render
// a consistent caret.
func (ctl *Controller) handleTypingStart(_ context.Context, c *WsConn, data []byte) {
	var p struct {
		CursorPosition int `json:"cursorPosition"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Str("module", "signal").Str("conn", string(c.id)).Msg("bad typing-start payload")
		return
	}
	m, ok := ctl.Orch.Registry.StartTyping(c.id, p.CursorPosition)
	if !ok {
		return
	}
	ctl.broadcastRoom(m.RoomID, c.id, userEvent{Type: EventTypingStart, User: m})
}

func (ctl *Controller) handleTypingPause(_ context.Context, c *WsConn, _ []byte) {
	m, ok := ctl.Orch.Registry.PauseTyping(c.id)
	if !ok {
		return
	}
	ctl.broadcastRoom(m.RoomID, c.id, userEvent{Type: EventTypingPause, User: m})
}

// handleUserOnline / handleUserOffline track the client's visibility
// signal. The payload names the affected connection (clients report
// their own), and the broadcast carries just that id.
func (ctl *Controller) handleUserOnline(_ context.Context, c *WsConn, data []byte) {
	ctl.setStatus(c, data, domain.StatusOnline, EventUserOnline)
}

func (ctl *Controller) handleUserOffline(_ context.Context, c *WsConn, data []byte) {
	ctl.setStatus(c, data, domain.StatusOffline, EventUserOffline)
}

func (ctl *Controller) setStatus(c *WsConn, data []byte, status domain.ConnectionStatus, event string) {
	var p struct {
		SocketID domain.ConnectionID `json:"socketId"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Str("module", "signal").Str("conn", string(c.id)).Msg("bad status payload")
		return
	}
	target := p.SocketID
	if target == "" {
		target = c.id
	}
	m, ok := ctl.Orch.Registry.SetStatus(target, status)
	if !ok {
		return
	}
	ctl.broadcastRoom(m.RoomID, c.id, struct {
		Type     string              `json:"type"`
		SocketID domain.ConnectionID `json:"socketId"`
	}{event, target})
}

// handleSendMessage relays chat to the rest of the room. Sender
// identity is injected server-side when the client omitted it, so a
// message can never impersonate or arrive anonymous.
func (ctl *Controller) handleSendMessage(_ context.Context, c *WsConn, data []byte) {
	var p struct {
		Message map[string]any `json:"message"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.Message == nil {
		log.Warn().Str("module", "signal").Str("conn", string(c.id)).Msg("bad chat payload")
		return
	}
	m, ok := ctl.Orch.Registry.MemberByConn(c.id)
	if !ok {
		return
	}
	if username, _ := p.Message["username"].(string); username == "" {
		p.Message["username"] = m.Username
	}
	if _, present := p.Message["userId"]; !present {
		p.Message["userId"] = m.Identity
	}
	p.Message["socketId"] = string(c.id)

	ctl.broadcastRoom(m.RoomID, c.id, struct {
		Type    string         `json:"type"`
		Message map[string]any `json:"message"`
	}{EventReceiveMessage, p.Message})
}
