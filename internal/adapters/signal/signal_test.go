package signal

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Yash-Kunal/scriptly-deploy/internal/app"
	"github.com/Yash-Kunal/scriptly-deploy/internal/app/orch"
	"github.com/Yash-Kunal/scriptly-deploy/internal/domain"
)

// fakeStore is an in-memory persistence bridge with switchable
// failures.
type fakeStore struct {
	mu      sync.Mutex
	sets    map[domain.RoomID][]domain.RoomFile
	loadErr error
	saveErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{sets: make(map[domain.RoomID][]domain.RoomFile)}
}

func (s *fakeStore) LoadOrCreate(_ context.Context, room domain.RoomID) ([]domain.RoomFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	files, ok := s.sets[room]
	if !ok {
		files = domain.DefaultFileSet(time.Now())
		s.sets[room] = files
	}
	out := make([]domain.RoomFile, len(files))
	copy(out, files)
	return out, nil
}

func (s *fakeStore) Upsert(_ context.Context, room domain.RoomID, files []domain.RoomFile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	cp := make([]domain.RoomFile, len(files))
	copy(cp, files)
	s.sets[room] = cp
	return nil
}

type fixture struct {
	ctl   *Controller
	store *fakeStore
}

func newFixture(capacity int) *fixture {
	registry := app.NewRoomRegistry()
	tracker := NewRoomTracker()
	store := newFakeStore()
	o := &orch.Orchestrator{
		Registry:  registry,
		Admission: app.NewAdmissionController(registry, tracker, capacity),
		Transport: tracker,
		Store:     store,
	}
	return &fixture{
		ctl:   NewController(o, tracker, 1<<20, time.Minute),
		store: store,
	}
}

// connect registers a connection the way HandleSignal would, without a
// real websocket underneath. TrySend only touches the send channel, so
// tests read outbound frames straight from it.
func (f *fixture) connect(id, identity string) *WsConn {
	c := newWsConn(nil, domain.ConnectionID(id), identity)
	f.ctl.Tracker.Register(c)
	return c
}

func (f *fixture) send(c *WsConn, event string, fields map[string]any) {
	payload := map[string]any{"type": event}
	for k, v := range fields {
		payload[k] = v
	}
	b, _ := json.Marshal(payload)
	f.ctl.handleEvent(context.Background(), c, b)
}

// join issues a join-request and consumes the join-accepted and the
// asynchronous room-files push, leaving the channel clean.
func (f *fixture) join(t *testing.T, c *WsConn, room, username string) {
	t.Helper()
	f.send(c, EventJoinRequest, map[string]any{"roomId": room, "username": username})
	ev := recvEvent(t, c)
	require.Equal(t, EventJoinAccepted, ev["type"])
	ev = recvEvent(t, c)
	require.Equal(t, EventRoomFiles, ev["type"])
}

func recvEvent(t *testing.T, c *WsConn) map[string]any {
	t.Helper()
	select {
	case b, ok := <-c.send:
		require.True(t, ok, "send channel closed")
		var m map[string]any
		require.NoError(t, json.Unmarshal(b, &m))
		return m
	case <-time.After(2 * time.Second):
		t.Fatalf("no event received on %s", c.id)
		return nil
	}
}

func recvNone(t *testing.T, c *WsConn) {
	t.Helper()
	select {
	case b := <-c.send:
		t.Fatalf("unexpected event on %s: %s", c.id, b)
	case <-time.After(50 * time.Millisecond):
	}
}

func roomFullMessage(room string, capacity int) string {
	return fmt.Sprintf("Room %s is full. Maximum allowed users: %d", room, capacity)
}
