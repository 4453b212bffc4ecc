package scenesync

import (
	"testing"

	"github.com/dkeye/Sketch/internal/client/history"
	"github.com/dkeye/Sketch/internal/client/scene"
	"github.com/dkeye/Sketch/internal/client/ui"
	"github.com/dkeye/Sketch/internal/domain"
)

type fakeRelay struct {
	upserts []domain.Object
	deletes []domain.ObjectID
}

func (f *fakeRelay) Upsert(room domain.RoomID, obj domain.Object) error {
	f.upserts = append(f.upserts, obj)
	return nil
}

func (f *fakeRelay) Delete(room domain.RoomID, id domain.ObjectID) error {
	f.deletes = append(f.deletes, id)
	return nil
}

type fixture struct {
	scene   *scene.Memory
	history *history.Engine
	relay   *fakeRelay
	ui      *ui.Static
	sync    *Synchronizer
}

func newFixture() *fixture {
	f := &fixture{scene: scene.NewMemory(), relay: &fakeRelay{}, ui: ui.NewStatic()}
	f.history = history.New(f.scene, func() ui.Flags { return ui.FlagsFor(f.ui.Tool()) }, 0)
	f.sync = New("R", f.scene, f.history, f.relay, f.ui)
	f.history.RecordSnapshot()
	return f
}

func TestRemoteUpsertIsIdempotent(t *testing.T) {
	f := newFixture()
	obj := domain.Object{"id": "r1", "kind": "rect", "left": 0.0, "top": 0.0, "width": 10.0, "height": 10.0}
	f.sync.OnRemoteUpsert(obj)
	first := f.scene.Objects()
	f.sync.OnRemoteUpsert(obj)
	second := f.scene.Objects()

	if len(second) != 1 || len(first) != 1 {
		t.Fatalf("objects = %v", second)
	}
	for k, v := range first[0] {
		if second[0][k] != v {
			t.Fatalf("field %s changed: %v -> %v", k, v, second[0][k])
		}
	}
	if len(f.relay.upserts) != 0 {
		t.Fatalf("remote edit echoed")
	}
}

func TestRemoteUpsertMerges(t *testing.T) {
	f := newFixture()
	f.sync.OnRemoteUpsert(domain.Object{"id": "r1", "kind": "rect", "width": 10.0, "stroke": "#f00"})
	f.sync.OnRemoteUpsert(domain.Object{"id": "r1", "width": 20.0, "roomId": "R"})

	got, ok := f.scene.Get("r1")
	if !ok {
		t.Fatalf("object missing")
	}
	if got.FloatOr("width", 0) != 20 || got.Str("stroke") != "#f00" || got.Kind() != "rect" {
		t.Fatalf("merged = %v", got)
	}
	if _, has := got["roomId"]; has {
		t.Fatalf("roomId leaked into scene")
	}
}

func TestRemoteUpsertAppliesToolFlags(t *testing.T) {
	f := newFixture()
	f.ui.SetTool(ui.ToolPencil)
	f.sync.OnRemoteUpsert(domain.Object{"id": "a", "selectable": true})
	a, _ := f.scene.Get("a")
	if a["selectable"] != false || a["evented"] != false {
		t.Fatalf("flags = %v", a)
	}
}

func TestRemoteDeleteOfAbsentIsNoOp(t *testing.T) {
	f := newFixture()
	f.sync.OnRemoteUpsert(domain.Object{"id": "a"})
	steps := f.history.Len()

	f.sync.OnRemoteDelete("missing")
	if f.scene.Len() != 1 || f.history.Len() != steps {
		t.Fatalf("absent delete changed state: len=%d snapshots=%d", f.scene.Len(), f.history.Len())
	}

	f.sync.OnRemoteDelete("a")
	if f.scene.Len() != 0 || f.history.Len() != steps+1 {
		t.Fatalf("delete: len=%d snapshots=%d", f.scene.Len(), f.history.Len())
	}
	if len(f.relay.deletes) != 0 {
		t.Fatalf("remote delete echoed")
	}
}

func TestRemoteEditsRecordSnapshots(t *testing.T) {
	f := newFixture()
	f.sync.OnRemoteUpsert(domain.Object{"id": "a"})
	f.sync.OnRemoteUpsert(domain.Object{"id": "b"})
	if f.history.Len() != 3 {
		t.Fatalf("snapshots = %d", f.history.Len())
	}
	f.history.Undo()
	if _, ok := f.scene.Get("b"); ok {
		t.Fatalf("undo did not drop b")
	}
	if len(f.relay.upserts)+len(f.relay.deletes) != 0 {
		t.Fatalf("undo emitted edits")
	}
}

// A renderer that reports every change as a settled local edit must not make
// remote edits or restores travel back to the relay.
func TestNoFeedbackLoopWithReentrantScene(t *testing.T) {
	f := newFixture()
	f.scene.SetHooks(scene.Hooks{
		Added:    func(o domain.Object) { f.sync.OnLocalEditSettled(o) },
		Modified: func(o domain.Object) { f.sync.OnLocalEditSettled(o) },
		Removed:  func(id domain.ObjectID) { f.sync.OnLocalDelete(id) },
	})

	f.sync.OnRemoteUpsert(domain.Object{"id": "a", "kind": "rect"})
	f.sync.OnRemoteUpsert(domain.Object{"id": "a", "width": 3.0})
	f.sync.OnRemoteBatch([]domain.Object{{"id": "b"}, {"id": "c"}})
	f.sync.OnRemoteDelete("b")
	f.history.Undo()
	f.history.Redo()

	if len(f.relay.upserts) != 0 || len(f.relay.deletes) != 0 {
		t.Fatalf("echoed upserts=%d deletes=%d", len(f.relay.upserts), len(f.relay.deletes))
	}
	if f.sync.Origin() != Local {
		t.Fatalf("origin left at %v", f.sync.Origin())
	}
}

func TestLocalEditEmitsFullRecordOnce(t *testing.T) {
	f := newFixture()
	obj := domain.Object{"id": "a", "kind": "rect", "width": 4.0, "selectable": true, "evented": true}
	f.scene.Add(obj)
	f.sync.OnLocalEditSettled(obj)

	if len(f.relay.upserts) != 1 {
		t.Fatalf("upserts = %d", len(f.relay.upserts))
	}
	sent := f.relay.upserts[0]
	if _, has := sent["selectable"]; has {
		t.Fatalf("interaction flags sent: %v", sent)
	}
	if sent.FloatOr("width", 0) != 4 || sent.Kind() != "rect" {
		t.Fatalf("sent = %v", sent)
	}
	if f.history.Len() != 2 {
		t.Fatalf("snapshots = %d", f.history.Len())
	}
}

func TestLocalDeleteDoesNotSnapshot(t *testing.T) {
	f := newFixture()
	f.sync.OnRemoteUpsert(domain.Object{"id": "a"})
	steps := f.history.Len()
	f.sync.OnLocalDelete("a")
	if f.scene.Len() != 0 || len(f.relay.deletes) != 1 || f.history.Len() != steps {
		t.Fatalf("len=%d deletes=%v snapshots=%d", f.scene.Len(), f.relay.deletes, f.history.Len())
	}
}

func TestBatchRecordsOneSnapshot(t *testing.T) {
	f := newFixture()
	f.sync.OnRemoteBatch([]domain.Object{{"id": "a"}, {"id": "b"}, {}, {"id": "c"}})
	if f.scene.Len() != 3 || f.history.Len() != 2 {
		t.Fatalf("len=%d snapshots=%d", f.scene.Len(), f.history.Len())
	}
	f.sync.OnRemoteBatch(nil)
	if f.history.Len() != 2 {
		t.Fatalf("empty batch recorded a snapshot")
	}
}

func TestApplyFlagsFollowsTool(t *testing.T) {
	f := newFixture()
	f.ui.SetTool(ui.ToolRectangle)
	f.sync.OnRemoteUpsert(domain.Object{"id": "a"})
	f.ui.SetTool(ui.ToolSelection)
	f.sync.ApplyFlags()
	a, _ := f.scene.Get("a")
	if a["selectable"] != true || a["evented"] != true {
		t.Fatalf("flags = %v", a)
	}
}
