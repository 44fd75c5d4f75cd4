package signal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/Yash-Kunal/scriptly-deploy/internal/app"
	"github.com/Yash-Kunal/scriptly-deploy/internal/domain"
)

type joinAcceptedEvent struct {
	Type  string          `json:"type"`
	User  domain.Member   `json:"user"`
	Users []domain.Member `json:"users"`
}

type roomFullEvent struct {
	Type    string        `json:"type"`
	RoomID  domain.RoomID `json:"roomId"`
	Message string        `json:"message"`
}

type roomFilesEvent struct {
	Type  string            `json:"type"`
	Files []domain.RoomFile `json:"files"`
}

// handleJoin runs the admission sequence for one join request. The
// decision is made without touching storage; the file push to the
// joiner is fired off separately so a slow snapshot load never blocks
// the accept.
func (ctl *Controller) handleJoin(ctx context.Context, c *WsConn, data []byte) {
	var p struct {
		Type     string        `json:"type"`
		RoomID   domain.RoomID `json:"roomId"`
		Username string        `json:"username"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" {
		log.Warn().Str("module", "signal").Str("conn", string(c.id)).Msg("bad join payload")
		ctl.sendEvent(c, errEvent("bad_payload"))
		return
	}
	if err := domain.ValidateUsername(p.Username); err != nil {
		ctl.sendEvent(c, errEvent(err.Error()))
		return
	}
	if !ctl.limiter.Allow(c.identity) {
		log.Warn().Str("module", "signal").Str("user", c.identity).Msg("join rate limited")
		ctl.sendEvent(c, errEvent("too many join attempts"))
		return
	}

	member := domain.NewMember(c.id, c.identity, p.Username, p.RoomID)
	switch err := ctl.Orch.Join(member); {
	case errors.Is(err, app.ErrRoomFull):
		ctl.sendEvent(c, roomFullEvent{
			Type:   EventRoomFull,
			RoomID: p.RoomID,
			Message: fmt.Sprintf("Room %s is full. Maximum allowed users: %d",
				p.RoomID, ctl.Orch.Admission.Capacity()),
		})
		return
	case errors.Is(err, app.ErrDuplicateIdentity):
		ctl.sendEvent(c, struct {
			Type string `json:"type"`
		}{EventUsernameExists})
		return
	case err != nil:
		log.Error().Err(err).Str("module", "signal").Str("conn", string(c.id)).Msg("join failed")
		ctl.sendEvent(c, errEvent("join failed"))
		return
	}

	log.Info().Str("module", "signal").
		Str("conn", string(c.id)).
		Str("room", string(p.RoomID)).
		Str("username", p.Username).
		Msg("join accepted")

	ctl.broadcastRoom(p.RoomID, c.id, userEvent{Type: EventUserJoined, User: *member})
	ctl.sendEvent(c, joinAcceptedEvent{
		Type:  EventJoinAccepted,
		User:  *member,
		Users: ctl.Orch.Registry.MembersOf(p.RoomID),
	})

	// Presence is not gated on storage: the snapshot load runs after
	// the accept and its failure only costs the joiner the file push.
	go ctl.pushRoomFiles(ctx, c, p.RoomID)
}

// handleLeave runs the removal path synchronously on an explicit
// leave, so peers hear about it before any transport-level timeout.
// The socket itself stays open; the client may join another room.
func (ctl *Controller) handleLeave(_ context.Context, c *WsConn, _ []byte) {
	ctl.handleDisconnecting(c)
}

func (ctl *Controller) pushRoomFiles(ctx context.Context, c *WsConn, room domain.RoomID) {
	files, err := ctl.Orch.LoadFiles(ctx, room)
	if err != nil {
		return
	}
	ctl.sendEvent(c, roomFilesEvent{Type: EventRoomFiles, Files: files})
}
