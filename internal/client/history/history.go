// Package history implements linear snapshot-based undo/redo over a scene.
package history

import (
	"encoding/json"

	"github.com/dkeye/Sketch/internal/client/scene"
	"github.com/dkeye/Sketch/internal/client/ui"
	"github.com/dkeye/Sketch/internal/domain"
	"github.com/rs/zerolog/log"
)

const DefaultCapacity = 50

type State int

const (
	Idle State = iota
	Replaying
)

func (s State) String() string {
	if s == Replaying {
		return "replaying"
	}
	return "idle"
}

// Snapshot is the serialized scene, interaction flags excluded.
type Snapshot []byte

type request int

const (
	undo request = iota
	redo
)

// Engine owns the snapshot sequence. step indexes the displayed snapshot;
// it is -1 before the first RecordSnapshot.
type Engine struct {
	scene    scene.Scene
	flags    func() ui.Flags
	capacity int

	snaps   []Snapshot
	step    int
	state   State
	pending []request
}

// New binds the engine to sc. flags supplies the interaction flags restored
// objects get; nil means none.
func New(sc scene.Scene, flags func() ui.Flags, capacity int) *Engine {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if flags == nil {
		flags = func() ui.Flags { return ui.Flags{} }
	}
	return &Engine{scene: sc, flags: flags, capacity: capacity, step: -1}
}

func (e *Engine) State() State    { return e.state }
func (e *Engine) Replaying() bool { return e.state == Replaying }
func (e *Engine) Step() int       { return e.step }
func (e *Engine) Len() int        { return len(e.snaps) }
func (e *Engine) CanUndo() bool   { return e.step > 0 }
func (e *Engine) CanRedo() bool   { return e.step < len(e.snaps)-1 }

// RecordSnapshot appends the current scene, dropping any redo tail. It does
// nothing while a snapshot is being restored.
func (e *Engine) RecordSnapshot() {
	if e.state == Replaying {
		return
	}
	snap, err := capture(e.scene)
	if err != nil {
		log.Error().Err(err).Str("module", "client.history").Msg("snapshot failed")
		return
	}
	e.snaps = append(e.snaps[:e.step+1], snap)
	e.step = len(e.snaps) - 1
	if len(e.snaps) > e.capacity {
		e.snaps = e.snaps[1:]
		e.step--
	}
}

// Undo restores the previous snapshot. Requests made during a restore run
// after it, in order.
func (e *Engine) Undo() { e.request(undo) }

func (e *Engine) Redo() { e.request(redo) }

func (e *Engine) request(r request) {
	if e.state == Replaying {
		e.pending = append(e.pending, r)
		return
	}
	e.apply(r)
	for len(e.pending) > 0 {
		next := e.pending[0]
		e.pending = e.pending[1:]
		e.apply(next)
	}
}

func (e *Engine) apply(r request) {
	switch r {
	case undo:
		if !e.CanUndo() {
			return
		}
		e.step--
	case redo:
		if !e.CanRedo() {
			return
		}
		e.step++
	}
	e.state = Replaying
	defer func() { e.state = Idle }()
	if err := restore(e.scene, e.snaps[e.step], e.flags()); err != nil {
		log.Error().Err(err).Str("module", "client.history").Int("step", e.step).Msg("restore failed")
	}
}

func capture(sc scene.Scene) (Snapshot, error) {
	objs := sc.Objects()
	out := make([]domain.Object, len(objs))
	for i, o := range objs {
		out[i] = o.Without(domain.FieldSelectable, domain.FieldEvented)
	}
	return json.Marshal(out)
}

// restore replaces the whole scene with snap.
func restore(sc scene.Scene, snap Snapshot, flags ui.Flags) error {
	var objs []domain.Object
	if err := json.Unmarshal(snap, &objs); err != nil {
		return err
	}
	sc.Clear()
	for _, o := range objs {
		flags.Apply(o)
		sc.Add(o)
	}
	return nil
}
