// Package orch glues the registry, admission control and the
// persistence bridge behind the operations the transport adapter needs.
package orch

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/Yash-Kunal/scriptly-deploy/internal/app"
	"github.com/Yash-Kunal/scriptly-deploy/internal/core"
	"github.com/Yash-Kunal/scriptly-deploy/internal/domain"
)

type Orchestrator struct {
	Registry  *app.RoomRegistry
	Admission *app.AdmissionController
	Transport core.RoomTransport
	Store     core.FileStore
}

// Join admits the member or returns app.ErrRoomFull /
// app.ErrDuplicateIdentity. It never touches the file store; the file
// push after an accepted join is a separate, non-blocking concern.
func (o *Orchestrator) Join(m *domain.Member) error {
	// One membership per connection: a stale entry from this socket is
	// dropped before the new admission runs.
	if _, ok := o.Registry.MemberByConn(m.ConnectionID); ok {
		o.Disconnect(m.ConnectionID)
	}
	return o.Admission.Admit(m)
}

// Disconnect removes the member owning connID from the registry and
// the transport room. Safe to call more than once for the same
// connection; only the first call reports the removed member.
func (o *Orchestrator) Disconnect(connID domain.ConnectionID) (domain.Member, bool) {
	m, err := o.Registry.RemoveMember(connID)
	if err != nil {
		return domain.Member{}, false
	}
	o.Transport.Leave(m.RoomID, connID)
	return m, true
}

// LoadFiles fetches the room's file set, creating a seeded one on
// first contact. A storage failure is reported as absence of data.
func (o *Orchestrator) LoadFiles(ctx context.Context, room domain.RoomID) ([]domain.RoomFile, error) {
	files, err := o.Store.LoadOrCreate(ctx, room)
	if err != nil {
		log.Error().Err(err).Str("module", "app.orch").
			Str("room", string(room)).
			Msg("load room files failed")
		return nil, err
	}
	return files, nil
}

// SaveFiles overwrites the room's file set. Replace-all semantics:
// whatever the last writer sent becomes the snapshot.
func (o *Orchestrator) SaveFiles(ctx context.Context, room domain.RoomID, files []domain.RoomFile) error {
	if err := o.Store.Upsert(ctx, room, files); err != nil {
		log.Error().Err(err).Str("module", "app.orch").
			Str("room", string(room)).
			Msg("save room files failed")
		return err
	}
	return nil
}
