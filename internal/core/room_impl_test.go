package core

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"testing"

	"github.com/dkeye/Sketch/internal/domain"
)

type fakeConn struct {
	mu     sync.Mutex
	frames []Frame
	full   bool
}

func (c *fakeConn) TrySend(f Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.full {
		return ErrBackpressure
	}
	c.frames = append(c.frames, f)
	return nil
}

func (c *fakeConn) Close() {}

func (c *fakeConn) received() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.frames))
	for i, f := range c.frames {
		out[i] = string(f)
	}
	return out
}

func newTestRoom(t *testing.T) RoomService {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return NewRoomService(ctx, &domain.Room{ID: "R"}, 8)
}

func join(r RoomService, conn domain.ConnID) *fakeConn {
	fc := &fakeConn{}
	r.Join(conn, NewMemberSession(domain.NewMember(conn, ""), fc), nil)
	return fc
}

func byID(objs []domain.Object) map[domain.ObjectID]domain.Object {
	out := make(map[domain.ObjectID]domain.Object, len(objs))
	for _, o := range objs {
		out[o.ID()] = o
	}
	return out
}

func TestUpsertIsIdempotent(t *testing.T) {
	r := newTestRoom(t)
	obj := domain.Object{"id": "x", "kind": "rect", "width": 10.0}

	r.Upsert("a", obj, Frame("f"))
	once := byID(r.Snapshot())
	r.Upsert("a", obj, Frame("f"))
	twice := byID(r.Snapshot())

	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("second upsert changed state: %v vs %v", once, twice)
	}
	if r.ObjectCount() != 1 {
		t.Fatalf("ObjectCount = %d", r.ObjectCount())
	}
}

func TestUpsertMergesFields(t *testing.T) {
	r := newTestRoom(t)
	r.Upsert("a", domain.Object{"id": "x", "kind": "rect", "stroke": "#000000", "strokeWidth": 2.0}, Frame("1"))
	r.Upsert("b", domain.Object{"id": "x", "strokeWidth": 5.0}, Frame("2"))

	got := byID(r.Snapshot())["x"]
	want := domain.Object{"id": "x", "kind": "rect", "stroke": "#000000", "strokeWidth": 5.0}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestUpsertStoresCopy(t *testing.T) {
	r := newTestRoom(t)
	obj := domain.Object{"id": "x", "left": 1.0}
	r.Upsert("a", obj, Frame("f"))
	obj["left"] = 99.0
	if got := byID(r.Snapshot())["x"].FloatOr("left", 0); got != 1 {
		t.Fatalf("stored record aliased caller map: left=%v", got)
	}
}

func TestDeleteAbsentIsNoop(t *testing.T) {
	r := newTestRoom(t)
	r.Upsert("a", domain.Object{"id": "x"}, Frame("f"))
	r.Delete("a", "missing", Frame("d"))
	if r.ObjectCount() != 1 {
		t.Fatalf("ObjectCount = %d, want 1", r.ObjectCount())
	}
	r.Delete("a", "x", Frame("d"))
	if r.ObjectCount() != 0 {
		t.Fatalf("ObjectCount = %d, want 0", r.ObjectCount())
	}
}

func TestBroadcastSkipsSender(t *testing.T) {
	r := newTestRoom(t)
	a := join(r, "a")
	b := join(r, "b")
	c := join(r, "c")

	res := r.Upsert("a", domain.Object{"id": "x"}, Frame("up"))
	if res.SendTo != 2 {
		t.Fatalf("SendTo = %d, want 2", res.SendTo)
	}
	if len(a.received()) != 0 {
		t.Fatalf("sender received its own edit")
	}
	for _, fc := range []*fakeConn{b, c} {
		if got := fc.received(); !reflect.DeepEqual(got, []string{"up"}) {
			t.Fatalf("peer got %v", got)
		}
	}
}

func TestJoinReturnsObjectsAtAdmission(t *testing.T) {
	r := newTestRoom(t)
	r.Upsert("a", domain.Object{"id": "x"}, Frame("f"))
	r.Upsert("a", domain.Object{"id": "y"}, Frame("f"))

	objs, ok := r.Join("late", NewMemberSession(domain.NewMember("late", ""), &fakeConn{}), nil)
	if !ok {
		t.Fatalf("join refused by a running room")
	}
	ids := make([]string, 0, len(objs))
	for _, o := range objs {
		ids = append(ids, string(o.ID()))
	}
	sort.Strings(ids)
	if !reflect.DeepEqual(ids, []string{"x", "y"}) {
		t.Fatalf("catch-up ids = %v", ids)
	}
}

func TestLeaveKeepsRoomState(t *testing.T) {
	r := newTestRoom(t)
	join(r, "a")
	r.Upsert("a", domain.Object{"id": "x"}, Frame("f"))
	r.Leave("a")
	if r.MemberCount() != 0 || r.ObjectCount() != 1 {
		t.Fatalf("members=%d objects=%d", r.MemberCount(), r.ObjectCount())
	}
}

func TestDroppedMembersAreReported(t *testing.T) {
	r := newTestRoom(t)
	slow := &fakeConn{full: true}
	r.Join("slow", NewMemberSession(domain.NewMember("slow", ""), slow), nil)
	join(r, "ok")

	res := r.Relay("src", Frame("cursor"))
	if res.SendTo != 1 || len(res.Dropped) != 1 {
		t.Fatalf("res = %+v", res)
	}
	if res.Dropped[0].Meta().Conn != "slow" {
		t.Fatalf("dropped %q", res.Dropped[0].Meta().Conn)
	}
}

func TestConcurrentUpsertsOnOneRoomAreSerialised(t *testing.T) {
	r := newTestRoom(t)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r.Upsert(domain.ConnID(fmt.Sprint(i)), domain.Object{"id": fmt.Sprintf("o%d", i%10), "n": float64(i)}, Frame("f"))
		}(i)
	}
	wg.Wait()
	if r.ObjectCount() != 10 {
		t.Fatalf("ObjectCount = %d, want 10", r.ObjectCount())
	}
}

func TestStoppedRoomDegradesToNoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := NewRoomService(ctx, &domain.Room{ID: "R"}, 1)
	cancel()
	if res := r.Upsert("a", domain.Object{"id": "x"}, Frame("f")); res.SendTo != 0 {
		t.Fatalf("res = %+v", res)
	}
	if r.Snapshot() != nil {
		t.Fatalf("snapshot from stopped room")
	}
	if _, ok := r.Join("b", NewMemberSession(domain.NewMember("b", ""), &fakeConn{}), nil); ok {
		t.Fatalf("stopped room admitted a member")
	}
}

func TestJoinGreetsBeforeBroadcasts(t *testing.T) {
	r := newTestRoom(t)
	join(r, "a")
	r.Upsert("a", domain.Object{"id": "x"}, Frame("up"))

	late := &fakeConn{}
	r.Join("late", NewMemberSession(domain.NewMember("late", ""), late), func(objs []domain.Object) Frame {
		return Frame(fmt.Sprintf("state:%d", len(objs)))
	})
	r.Upsert("a", domain.Object{"id": "y"}, Frame("up2"))

	if got := late.received(); !reflect.DeepEqual(got, []string{"state:1", "up2"}) {
		t.Fatalf("late joiner got %v", got)
	}
}
