package signal

import (
	"sync"

	"github.com/Yash-Kunal/scriptly-deploy/internal/core"
	"github.com/Yash-Kunal/scriptly-deploy/internal/domain"
)

// RoomTracker is the transport layer's own room bookkeeping: which
// open connections exist and which room each has joined. Admission
// reads capacity from here (core.RoomTransport), so a registry entry
// lagging a socket teardown never counts toward a room's size.
type RoomTracker struct {
	mu    sync.RWMutex
	conns map[domain.ConnectionID]core.Conn
	rooms map[domain.RoomID]map[domain.ConnectionID]struct{}
}

func NewRoomTracker() *RoomTracker {
	return &RoomTracker{
		conns: make(map[domain.ConnectionID]core.Conn),
		rooms: make(map[domain.RoomID]map[domain.ConnectionID]struct{}),
	}
}

// Register makes a freshly accepted connection addressable.
func (t *RoomTracker) Register(c core.Conn) {
	t.mu.Lock()
	t.conns[c.ID()] = c
	t.mu.Unlock()
}

// Unregister forgets a connection and any room membership it held.
func (t *RoomTracker) Unregister(id domain.ConnectionID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.conns, id)
	for room, set := range t.rooms {
		if _, ok := set[id]; ok {
			delete(set, id)
			if len(set) == 0 {
				delete(t.rooms, room)
			}
		}
	}
}

func (t *RoomTracker) Join(room domain.RoomID, id domain.ConnectionID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	set := t.rooms[room]
	if set == nil {
		set = make(map[domain.ConnectionID]struct{})
		t.rooms[room] = set
	}
	set[id] = struct{}{}
}

func (t *RoomTracker) Leave(room domain.RoomID, id domain.ConnectionID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if set, ok := t.rooms[room]; ok {
		delete(set, id)
		if len(set) == 0 {
			delete(t.rooms, room)
		}
	}
}

// RoomSize counts connections joined to the room whose socket is still
// open. Closed-but-not-yet-unregistered conns are excluded.
func (t *RoomTracker) RoomSize(room domain.RoomID) (int, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n := 0
	for id := range t.rooms[room] {
		if c, ok := t.conns[id]; ok && !c.Closed() {
			n++
		}
	}
	return n, nil
}

// Conn resolves a live connection by id.
func (t *RoomTracker) Conn(id domain.ConnectionID) (core.Conn, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	c, ok := t.conns[id]
	return c, ok
}

// Peers returns the room's connections excluding one sender.
func (t *RoomTracker) Peers(room domain.RoomID, except domain.ConnectionID) []core.Conn {
	t.mu.RLock()
	defer t.mu.RUnlock()
	set := t.rooms[room]
	out := make([]core.Conn, 0, len(set))
	for id := range set {
		if id == except {
			continue
		}
		if c, ok := t.conns[id]; ok {
			out = append(out, c)
		}
	}
	return out
}
