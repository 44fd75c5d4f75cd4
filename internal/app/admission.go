package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/Yash-Kunal/scriptly-deploy/internal/core"
	"github.com/Yash-Kunal/scriptly-deploy/internal/domain"
)

const DefaultRoomCapacity = 5

// AdmissionController decides whether a join request is accepted,
// rejected as RoomFull, or rejected as DuplicateIdentity.
//
// Capacity is checked against the transport's live connection count
// for the room, not the registry, so registry entries that outlive a
// torn-down socket cannot hold a seat. The size check, registry insert
// and transport join run under one mutex: two boundary joins can never
// both see a free seat.
type AdmissionController struct {
	mu        sync.Mutex
	registry  *RoomRegistry
	transport core.RoomTransport
	capacity  int
}

func NewAdmissionController(registry *RoomRegistry, transport core.RoomTransport, capacity int) *AdmissionController {
	if capacity <= 0 {
		capacity = DefaultRoomCapacity
	}
	return &AdmissionController{registry: registry, transport: transport, capacity: capacity}
}

func (a *AdmissionController) Capacity() int { return a.capacity }

// Admit runs the full admission sequence for one join attempt. On
// success the member is registered and its connection has joined the
// transport room; on ErrRoomFull / ErrDuplicateIdentity nothing was
// mutated.
func (a *AdmissionController) Admit(m *domain.Member) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	size, err := a.transport.RoomSize(m.RoomID)
	if err != nil {
		// Fail open: an introspection failure must not lock everyone
		// out of the room.
		log.Warn().Err(err).Str("module", "app.admission").
			Str("room", string(m.RoomID)).
			Msg("room size check failed, admitting without capacity check")
		size = 0
	}
	if size >= a.capacity {
		log.Info().Str("module", "app.admission").
			Str("room", string(m.RoomID)).
			Int("size", size).
			Msg("join rejected: room full")
		return ErrRoomFull
	}

	if err := a.registry.AddMember(m); err != nil {
		log.Info().Str("module", "app.admission").
			Str("room", string(m.RoomID)).
			Str("user", m.Identity).
			Msg("join rejected: identity already present")
		return err
	}
	a.transport.Join(m.RoomID, m.ConnectionID)
	return nil
}
