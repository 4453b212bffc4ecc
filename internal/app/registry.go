package app

import (
	"context"
	"sort"
	"sync"

	"github.com/dkeye/Sketch/internal/core"
	"github.com/dkeye/Sketch/internal/domain"
	"github.com/rs/zerolog/log"
)

type sessionEntry struct {
	Rooms   map[domain.RoomID]struct{}
	Session core.MemberSession
	Cancel  context.CancelFunc
}

// Registry tracks live connections and the rooms each of them joined.
type Registry struct {
	mu       sync.RWMutex
	sessions map[domain.ConnID]*sessionEntry
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[domain.ConnID]*sessionEntry),
	}
}

func (r *Registry) BindSignal(conn domain.ConnID, sess core.MemberSession, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[conn] = &sessionEntry{
		Rooms:   make(map[domain.RoomID]struct{}),
		Session: sess,
		Cancel:  cancel,
	}
	log.Info().Str("module", "app.registry").Str("conn", string(conn)).Msg("bound signal")
}

func (r *Registry) GetSession(conn domain.ConnID) (core.MemberSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.sessions[conn]; ok {
		return e.Session, true
	}
	return nil, false
}

// Unbind forgets the connection and returns the rooms it was still in.
func (r *Registry) Unbind(conn domain.ConnID) []domain.RoomID {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[conn]
	if !ok {
		return nil
	}
	delete(r.sessions, conn)
	log.Info().Str("module", "app.registry").Str("conn", string(conn)).Msg("unbind session")
	return sortedRooms(e.Rooms)
}

func (r *Registry) AddRoom(conn domain.ConnID, room domain.RoomID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[conn]
	if !ok {
		return false
	}
	e.Rooms[room] = struct{}{}
	log.Info().Str("module", "app.registry").Str("conn", string(conn)).Str("room", string(room)).Msg("added room")
	return true
}

func (r *Registry) RemoveRoom(conn domain.ConnID, room domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.sessions[conn]; ok {
		delete(e.Rooms, room)
	}
	log.Info().Str("module", "app.registry").Str("conn", string(conn)).Str("room", string(room)).Msg("removed room association")
}

func (r *Registry) RoomsOf(conn domain.ConnID) []domain.RoomID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[conn]
	if !ok {
		return nil
	}
	return sortedRooms(e.Rooms)
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Cancel stops the connection's pumps; the read loop then unbinds it.
func (r *Registry) Cancel(conn domain.ConnID) bool {
	r.mu.RLock()
	e, ok := r.sessions[conn]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("conn", string(conn)).Msg("canceled session")
	return true
}

func sortedRooms(set map[domain.RoomID]struct{}) []domain.RoomID {
	out := make([]domain.RoomID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
