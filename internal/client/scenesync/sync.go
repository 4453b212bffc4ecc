// Package scenesync keeps a client's scene in step with its room: remote
// edits are reconciled into the scene, settled local edits are sent out, and
// edits are never echoed back to where they came from.
package scenesync

import (
	"github.com/dkeye/Sketch/internal/client/history"
	"github.com/dkeye/Sketch/internal/client/scene"
	"github.com/dkeye/Sketch/internal/client/ui"
	"github.com/dkeye/Sketch/internal/domain"
	"github.com/rs/zerolog/log"
)

// Origin tags where a scene mutation comes from.
type Origin int

const (
	Local Origin = iota
	Remote
	Replay
)

func (o Origin) String() string {
	switch o {
	case Remote:
		return "remote"
	case Replay:
		return "replay"
	}
	return "local"
}

// Relay is the outbound half of the relay link.
type Relay interface {
	Upsert(room domain.RoomID, obj domain.Object) error
	Delete(room domain.RoomID, id domain.ObjectID) error
}

type Synchronizer struct {
	room    domain.RoomID
	scene   scene.Scene
	history *history.Engine
	relay   Relay
	ui      ui.State

	// origin of the mutation in progress; Local when none is.
	origin Origin
	// emitted counts edits sent to the relay.
	emitted int
}

func New(room domain.RoomID, sc scene.Scene, h *history.Engine, relay Relay, st ui.State) *Synchronizer {
	return &Synchronizer{room: room, scene: sc, history: h, relay: relay, ui: st}
}

// Origin reports the origin of the mutation being applied, Replay while the
// history engine restores a snapshot.
func (s *Synchronizer) Origin() Origin {
	if s.history.Replaying() {
		return Replay
	}
	return s.origin
}

func (s *Synchronizer) Emitted() int { return s.emitted }

// enter marks the scene as being mutated on behalf of o until the returned
// exit is called. Nested entries keep the outer origin.
func (s *Synchronizer) enter(o Origin) (exit func()) {
	prev := s.origin
	if prev == Local {
		s.origin = o
	}
	return func() { s.origin = prev }
}

func (s *Synchronizer) flags() ui.Flags { return ui.FlagsFor(s.ui.Tool()) }

// OnRemoteUpsert merges obj into the matching local object or materializes
// it, then records a snapshot.
func (s *Synchronizer) OnRemoteUpsert(obj domain.Object) {
	if obj.Validate() != nil {
		return
	}
	exit := s.enter(Remote)
	defer exit()
	s.upsert(obj)
	s.history.RecordSnapshot()
}

// OnRemoteBatch reconciles a catch-up set with a single snapshot.
func (s *Synchronizer) OnRemoteBatch(objs []domain.Object) {
	exit := s.enter(Remote)
	n := 0
	for _, obj := range objs {
		if obj.Validate() != nil {
			continue
		}
		s.upsert(obj)
		n++
	}
	if n > 0 {
		s.history.RecordSnapshot()
	}
	exit()
}

func (s *Synchronizer) upsert(obj domain.Object) {
	id := obj.ID()
	patch := obj.Without(domain.FieldRoomID)
	s.flags().Apply(patch)
	if s.scene.Merge(id, patch) {
		return
	}
	s.scene.Add(patch)
}

// OnRemoteDelete removes the local object if present.
func (s *Synchronizer) OnRemoteDelete(id domain.ObjectID) {
	exit := s.enter(Remote)
	defer exit()
	if s.scene.Remove(id) {
		s.history.RecordSnapshot()
	}
}

// OnLocalEditSettled sends the full record of a finished local edit and
// records a snapshot. Edits surfacing while a remote edit or a restore is
// applied are not sent.
func (s *Synchronizer) OnLocalEditSettled(obj domain.Object) {
	if obj.Validate() != nil {
		return
	}
	if s.Origin() != Local {
		log.Debug().Str("module", "client.sync").Str("id", string(obj.ID())).Stringer("origin", s.Origin()).Msg("suppressed echo")
		return
	}
	s.emitUpsert(obj)
	s.history.RecordSnapshot()
}

// OnLocalDelete removes the object and sends the delete. The caller records
// the snapshot, so a batch of deletes yields one.
func (s *Synchronizer) OnLocalDelete(id domain.ObjectID) {
	if s.Origin() != Local {
		return
	}
	s.scene.Remove(id)
	if err := s.relay.Delete(s.room, id); err != nil {
		log.Warn().Err(err).Str("module", "client.sync").Str("id", string(id)).Msg("delete not sent")
		return
	}
	s.emitted++
}

func (s *Synchronizer) emitUpsert(obj domain.Object) {
	rec := obj.Without(domain.FieldSelectable, domain.FieldEvented, domain.FieldRoomID)
	if err := s.relay.Upsert(s.room, rec); err != nil {
		log.Warn().Err(err).Str("module", "client.sync").Str("id", string(obj.ID())).Msg("edit not sent")
		return
	}
	s.emitted++
}

// ApplyFlags re-derives interaction flags on every object after a tool change.
func (s *Synchronizer) ApplyFlags() {
	exit := s.enter(Replay)
	defer exit()
	f := s.flags()
	for _, o := range s.scene.Objects() {
		patch := domain.Object{}
		f.Apply(patch)
		s.scene.Merge(o.ID(), patch)
	}
}
