package core

import (
	"context"

	"github.com/dkeye/Sketch/internal/domain"
	"github.com/rs/zerolog/log"
)

const defaultQueueSize = 64

// roomImpl is an in-memory room driven by a single goroutine: every call is
// queued onto ops and applied in arrival order, so the object map and the
// broadcast group never see interleaved edits.
// It never closes adapter-owned resources.
type roomImpl struct {
	room *domain.Room
	ops  chan func()
	done <-chan struct{}

	// Owned by the loop goroutine.
	members map[domain.ConnID]MemberSession
	objects map[domain.ObjectID]domain.Object
}

// NewRoomService starts the room loop; it stops when ctx is cancelled.
func NewRoomService(ctx context.Context, room *domain.Room, queue int) RoomService {
	if queue <= 0 {
		queue = defaultQueueSize
	}
	r := &roomImpl{
		room:    room,
		ops:     make(chan func(), queue),
		done:    ctx.Done(),
		members: make(map[domain.ConnID]MemberSession),
		objects: make(map[domain.ObjectID]domain.Object),
	}
	go r.run()
	return r
}

func (r *roomImpl) run() {
	for {
		select {
		case <-r.done:
			log.Debug().Str("module", "core.room").Str("room", string(r.room.ID)).Msg("room loop stopped")
			return
		case op := <-r.ops:
			op()
		}
	}
}

// do runs fn on the room loop and waits for it. It reports false when the
// room stopped before fn completed; results written by fn must then be ignored.
func (r *roomImpl) do(fn func()) bool {
	select {
	case <-r.done:
		return false
	default:
	}
	finished := make(chan struct{})
	select {
	case r.ops <- func() { fn(); close(finished) }:
	case <-r.done:
		return false
	}
	select {
	case <-finished:
		return true
	case <-r.done:
		return false
	}
}

func (r *roomImpl) Room() *domain.Room { return r.room }

func (r *roomImpl) MemberCount() int {
	var n int
	if !r.do(func() { n = len(r.members) }) {
		return 0
	}
	return n
}

func (r *roomImpl) ObjectCount() int {
	var n int
	if !r.do(func() { n = len(r.objects) }) {
		return 0
	}
	return n
}

func (r *roomImpl) MembersSnapshot() []MemberDTO {
	var out []MemberDTO
	ok := r.do(func() {
		out = make([]MemberDTO, 0, len(r.members))
		for conn, ms := range r.members {
			out = append(out, MemberDTO{Conn: conn, Client: ms.Meta().Client})
		}
	})
	if !ok {
		return nil
	}
	return out
}

func (r *roomImpl) Snapshot() []domain.Object {
	var out []domain.Object
	if !r.do(func() { out = r.snapshot() }) {
		return nil
	}
	return out
}

func (r *roomImpl) snapshot() []domain.Object {
	out := make([]domain.Object, 0, len(r.objects))
	for _, obj := range r.objects {
		out = append(out, obj.Clone())
	}
	return out
}

func (r *roomImpl) Join(conn domain.ConnID, ms MemberSession, greet Greeter) ([]domain.Object, bool) {
	var objs []domain.Object
	ok := r.do(func() {
		objs = r.snapshot()
		if greet != nil {
			if err := ms.Signal().TrySend(greet(objs)); err != nil {
				log.Warn().Err(err).Str("module", "core.room").Str("room", string(r.room.ID)).Str("conn", string(conn)).Msg("catch-up not delivered")
			}
		}
		r.members[conn] = ms
	})
	if !ok {
		return nil, false
	}
	log.Info().Str("module", "core.room").Str("room", string(r.room.ID)).Str("conn", string(conn)).Int("objects", len(objs)).Msg("member joined")
	return objs, true
}

func (r *roomImpl) Leave(conn domain.ConnID) {
	r.do(func() { delete(r.members, conn) })
	log.Info().Str("module", "core.room").Str("room", string(r.room.ID)).Str("conn", string(conn)).Msg("member left")
}

func (r *roomImpl) Upsert(from domain.ConnID, obj domain.Object, frame Frame) PublishResult {
	var res PublishResult
	ok := r.do(func() {
		id := obj.ID()
		if existing, found := r.objects[id]; found {
			existing.Merge(obj)
		} else {
			r.objects[id] = obj.Clone()
		}
		res = r.broadcast(from, frame)
	})
	if !ok {
		return PublishResult{}
	}
	return res
}

func (r *roomImpl) Delete(from domain.ConnID, id domain.ObjectID, frame Frame) PublishResult {
	var res PublishResult
	ok := r.do(func() {
		delete(r.objects, id)
		res = r.broadcast(from, frame)
	})
	if !ok {
		return PublishResult{}
	}
	return res
}

func (r *roomImpl) Relay(from domain.ConnID, frame Frame) PublishResult {
	var res PublishResult
	if !r.do(func() { res = r.broadcast(from, frame) }) {
		return PublishResult{}
	}
	return res
}

// broadcast runs on the room loop. Sends are fire-and-forget.
func (r *roomImpl) broadcast(from domain.ConnID, frame Frame) PublishResult {
	res := PublishResult{}
	for conn, m := range r.members {
		if conn == from {
			continue
		}
		if err := m.Signal().TrySend(frame); err != nil {
			res.Dropped = append(res.Dropped, m)
			continue
		}
		res.SendTo++
	}
	log.Debug().Str("module", "core.room").Str("room", string(r.room.ID)).Str("from", string(from)).Int("sent_to", res.SendTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}
