// Package client assembles a drawing client: a scene, its history, the
// synchronizer and the input pipeline, all driven from one event loop fed by
// the relay link and by UI calls.
package client

import (
	"context"
	"errors"

	"github.com/dkeye/Sketch/internal/adapters/wsclient"
	"github.com/dkeye/Sketch/internal/client/history"
	"github.com/dkeye/Sketch/internal/client/pipeline"
	"github.com/dkeye/Sketch/internal/client/scene"
	"github.com/dkeye/Sketch/internal/client/scenesync"
	"github.com/dkeye/Sketch/internal/client/ui"
	"github.com/dkeye/Sketch/internal/domain"
	"github.com/dkeye/Sketch/internal/geom"
	"github.com/dkeye/Sketch/internal/protocol"
	"github.com/rs/zerolog/log"
)

var ErrStopped = errors.New("client: session stopped")

// Link is the relay connection a session drives.
type Link interface {
	scenesync.Relay
	JoinRoom(room domain.RoomID) error
	LeaveRoom(room domain.RoomID) error
	Cursor(room domain.RoomID, x, y float64) error
	Events() <-chan wsclient.Event
}

// Session owns one client's engine. Scene, History and Sync belong to the
// loop goroutine: read or mutate them only inside Do.
type Session struct {
	Room    domain.RoomID
	Scene   scene.Scene
	History *history.Engine
	Sync    *scenesync.Synchronizer
	UI      ui.State

	// OnCursor receives relayed peer cursors on the loop goroutine.
	OnCursor func(c domain.Cursor)

	pipe *pipeline.Pipeline
	link Link
	ops  chan func()
	done chan struct{}
}

func NewSession(room domain.RoomID, link Link, sc scene.Scene, st ui.State) *Session {
	h := history.New(sc, func() ui.Flags { return ui.FlagsFor(st.Tool()) }, history.DefaultCapacity)
	sync := scenesync.New(room, sc, h, link, st)
	return &Session{
		Room:    room,
		Scene:   sc,
		History: h,
		Sync:    sync,
		UI:      st,
		pipe:    pipeline.New(sc, sync, h, st),
		link:    link,
		ops:     make(chan func()),
		done:    make(chan struct{}),
	}
}

// Run joins the room and processes relay events and UI calls until ctx ends
// or the link closes.
func (s *Session) Run(ctx context.Context) error {
	defer close(s.done)
	s.History.RecordSnapshot()
	if err := s.link.JoinRoom(s.Room); err != nil {
		return err
	}
	log.Info().Str("module", "client").Str("room", string(s.Room)).Msg("joined")
	events := s.link.Events()
	for {
		select {
		case <-ctx.Done():
			_ = s.link.LeaveRoom(s.Room)
			return ctx.Err()
		case op := <-s.ops:
			op()
		case ev, ok := <-events:
			if !ok {
				return ErrStopped
			}
			s.handle(ev)
		}
	}
}

func (s *Session) handle(ev wsclient.Event) {
	switch ev.Type {
	case protocol.TypeDrawingData:
		if ev.Room != "" && ev.Room != s.Room {
			return
		}
		s.Sync.OnRemoteUpsert(ev.Object)
	case protocol.TypeDeleteObject:
		s.Sync.OnRemoteDelete(ev.Deleted)
	case protocol.TypeRoomState:
		if ev.Room != s.Room {
			return
		}
		s.Sync.OnRemoteBatch(ev.Objects)
	case protocol.TypeCursorMove:
		if s.OnCursor != nil && ev.Room == s.Room {
			s.OnCursor(ev.Cursor)
		}
	}
}

// Do runs fn on the loop goroutine and waits for it.
func (s *Session) Do(fn func()) error {
	finished := make(chan struct{})
	select {
	case s.ops <- func() { fn(); close(finished) }:
	case <-s.done:
		return ErrStopped
	}
	select {
	case <-finished:
		return nil
	case <-s.done:
		return ErrStopped
	}
}

func (s *Session) PointerDown(at geom.Point) error {
	return s.Do(func() { s.pipe.PointerDown(at) })
}

func (s *Session) PointerMove(at geom.Point) error {
	return s.Do(func() {
		s.pipe.PointerMove(at)
		if err := s.link.Cursor(s.Room, at.X, at.Y); err != nil {
			log.Debug().Err(err).Str("module", "client").Msg("cursor not sent")
		}
	})
}

func (s *Session) PointerUp() error {
	return s.Do(s.pipe.PointerUp)
}

// CommitText settles the edited body of a text object.
func (s *Session) CommitText(id domain.ObjectID, body string) error {
	return s.Do(func() { s.pipe.CommitText(id, body) })
}

// PathCreated adopts a freehand stroke the renderer finished and returns its id.
func (s *Session) PathCreated(path []any) (domain.ObjectID, error) {
	var id domain.ObjectID
	err := s.Do(func() { id = s.pipe.PathCreated(path) })
	return id, err
}

// ObjectModified settles an object the user moved, scaled or restyled.
func (s *Session) ObjectModified(id domain.ObjectID) error {
	return s.Do(func() { s.pipe.ObjectModified(id) })
}

func (s *Session) Undo() error { return s.Do(s.History.Undo) }
func (s *Session) Redo() error { return s.Do(s.History.Redo) }

// SetTool switches the tool on a settable UI state and re-derives flags.
func (s *Session) SetTool(st *ui.Static, t ui.Tool) error {
	return s.Do(func() {
		st.SetTool(t)
		s.Sync.ApplyFlags()
	})
}

// SetZoom changes the zoom the eraser brush is scaled by.
func (s *Session) SetZoom(st *ui.Static, z float64) error {
	return s.Do(func() { st.SetZoom(z) })
}

// Objects returns a copy of the scene, bottom first.
func (s *Session) Objects() ([]domain.Object, error) {
	var out []domain.Object
	err := s.Do(func() { out = s.Scene.Objects() })
	return out, err
}
