package orch

import (
	"encoding/json"

	"github.com/dkeye/Sketch/internal/core"
	"github.com/dkeye/Sketch/internal/domain"
	"github.com/dkeye/Sketch/internal/protocol"
	"github.com/rs/zerolog/log"
)

// Join admits conn to the room, creating the room on first reference. With
// CatchUp on, conn first receives room-state holding the objects present at
// admission, and those objects are returned. It reports false when conn is
// not bound or the room no longer runs.
func (o *Orchestrator) Join(conn domain.ConnID, id domain.RoomID) ([]domain.Object, bool) {
	sess, ok := o.Registry.GetSession(conn)
	if !ok {
		return nil, false
	}
	var greet core.Greeter
	if o.CatchUp {
		greet = func(objs []domain.Object) core.Frame {
			return roomStateFrame(id, objs)
		}
	}
	room := o.Rooms.GetOrCreate(id)
	objs, ok := room.Join(conn, sess, greet)
	if !ok {
		log.Warn().Str("module", "app.orch").Str("conn", string(conn)).Str("room", string(id)).Msg("room stopped, join refused")
		return nil, false
	}
	// The connection may have gone between the lookup and admission; its
	// disconnect then missed this room, so take the member back out.
	if !o.Registry.AddRoom(conn, id) {
		room.Leave(conn)
		return nil, false
	}
	log.Info().Str("module", "app.orch").Str("conn", string(conn)).Str("room", string(id)).Msg("added to room")
	if !o.CatchUp {
		return nil, true
	}
	return objs, true
}

func roomStateFrame(id domain.RoomID, objs []domain.Object) core.Frame {
	frame, err := protocol.Encode(protocol.TypeRoomState, protocol.RoomState{RoomID: id, Objects: objs})
	if err != nil {
		log.Error().Err(err).Str("module", "app.orch").Msg("encode room-state")
		return nil
	}
	return core.Frame(frame)
}

func (o *Orchestrator) Leave(conn domain.ConnID, id domain.RoomID) {
	if room, ok := o.Rooms.GetRoom(id); ok {
		room.Leave(conn)
	}
	o.Registry.RemoveRoom(conn, id)
}

// Upsert stores obj in the room and forwards data, the edit as the client
// sent it, to the other members.
func (o *Orchestrator) Upsert(conn domain.ConnID, id domain.RoomID, obj domain.Object, data json.RawMessage) {
	frame, err := protocol.Encode(protocol.TypeDrawingData, data)
	if err != nil {
		log.Error().Err(err).Str("module", "app.orch").Msg("encode drawing-data")
		return
	}
	room := o.Rooms.GetOrCreate(id)
	res := room.Upsert(conn, obj, core.Frame(frame))
	o.applyPolicy(room, res)
}

func (o *Orchestrator) Delete(conn domain.ConnID, id domain.RoomID, obj domain.ObjectID) {
	frame, err := protocol.Encode(protocol.TypeDeleteObject, obj)
	if err != nil {
		log.Error().Err(err).Str("module", "app.orch").Msg("encode delete-object")
		return
	}
	room := o.Rooms.GetOrCreate(id)
	res := room.Delete(conn, obj, core.Frame(frame))
	o.applyPolicy(room, res)
}

// Cursor relays the position to the room tagged with the sender's id.
func (o *Orchestrator) Cursor(conn domain.ConnID, c domain.Cursor) {
	room, ok := o.Rooms.GetRoom(c.RoomID)
	if !ok {
		return
	}
	c.UserID = conn
	frame, err := protocol.Encode(protocol.TypeCursorMove, c)
	if err != nil {
		log.Error().Err(err).Str("module", "app.orch").Msg("encode cursor-move")
		return
	}
	res := room.Relay(conn, core.Frame(frame))
	o.applyPolicy(room, res)
}
