package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/Yash-Kunal/scriptly-deploy/internal/domain"
)

// RoomRegistry is the single source of truth for "who is connected
// where". It maps room -> member set and keeps a reverse index from
// connection id to member so relay handlers resolve senders in O(1).
//
// All mutators run under one lock, so the duplicate-identity
// check-then-act in AddMember is atomic. Accessors hand out copies;
// a returned Member never stays live.
type RoomRegistry struct {
	mu     sync.RWMutex
	rooms  map[domain.RoomID]map[domain.ConnectionID]*domain.Member
	byConn map[domain.ConnectionID]*domain.Member
}

func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{
		rooms:  make(map[domain.RoomID]map[domain.ConnectionID]*domain.Member),
		byConn: make(map[domain.ConnectionID]*domain.Member),
	}
}

// AddMember registers a member in its room. It fails with
// ErrDuplicateIdentity if the same identity is already present in the
// room; offline members still own their identity, so a hidden tab
// blocks a same-identity rejoin until it disconnects for real.
func (r *RoomRegistry) AddMember(m *domain.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	members := r.rooms[m.RoomID]
	for _, existing := range members {
		if existing.Identity == m.Identity {
			return ErrDuplicateIdentity
		}
	}
	if members == nil {
		members = make(map[domain.ConnectionID]*domain.Member)
		r.rooms[m.RoomID] = members
	}
	cp := *m
	members[m.ConnectionID] = &cp
	r.byConn[m.ConnectionID] = &cp
	log.Info().Str("module", "app.registry").
		Str("conn", string(m.ConnectionID)).
		Str("user", m.Identity).
		Str("room", string(m.RoomID)).
		Msg("member added")
	return nil
}

// RemoveMember drops the member owning connID and returns it.
// Idempotent: a second call for the same connection reports
// ErrMemberNotFound and mutates nothing, so an explicit leave racing a
// transport teardown is harmless.
func (r *RoomRegistry) RemoveMember(connID domain.ConnectionID) (domain.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.byConn[connID]
	if !ok {
		return domain.Member{}, ErrMemberNotFound
	}
	delete(r.byConn, connID)
	if members, ok := r.rooms[m.RoomID]; ok {
		delete(members, connID)
		if len(members) == 0 {
			delete(r.rooms, m.RoomID)
		}
	}
	log.Info().Str("module", "app.registry").
		Str("conn", string(connID)).
		Str("room", string(m.RoomID)).
		Msg("member removed")
	return *m, nil
}

// MemberByConn resolves the member owning a connection.
func (r *RoomRegistry) MemberByConn(connID domain.ConnectionID) (domain.Member, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.byConn[connID]
	if !ok {
		return domain.Member{}, false
	}
	return *m, true
}

// MembersOf returns a snapshot of the room's membership.
func (r *RoomRegistry) MembersOf(room domain.RoomID) []domain.Member {
	r.mu.RLock()
	defer r.mu.RUnlock()
	members := r.rooms[room]
	out := make([]domain.Member, 0, len(members))
	for _, m := range members {
		out = append(out, *m)
	}
	return out
}

// RoomSize reports the registry's own member count for a room. Note
// that admission does not use this; it asks the transport layer.
func (r *RoomRegistry) RoomSize(room domain.RoomID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[room])
}

// StartTyping marks the sender as typing at the given caret offset and
// returns the post-mutation member for broadcasting.
func (r *RoomRegistry) StartTyping(connID domain.ConnectionID, cursorPosition int) (domain.Member, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.byConn[connID]
	if !ok {
		return domain.Member{}, false
	}
	m.Typing = true
	if cursorPosition >= 0 {
		m.CursorPosition = cursorPosition
	}
	return *m, true
}

// PauseTyping clears the typing flag and returns the updated member.
func (r *RoomRegistry) PauseTyping(connID domain.ConnectionID) (domain.Member, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.byConn[connID]
	if !ok {
		return domain.Member{}, false
	}
	m.Typing = false
	return *m, true
}

// SetStatus records a client visibility change (online/offline).
// Independent of the transport state; the socket stays registered.
func (r *RoomRegistry) SetStatus(connID domain.ConnectionID, status domain.ConnectionStatus) (domain.Member, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.byConn[connID]
	if !ok {
		return domain.Member{}, false
	}
	m.Status = status
	return *m, true
}
