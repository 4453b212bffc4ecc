// Package protocol defines the JSON frames exchanged between canvas clients
// and the relay. Every frame is an envelope {"type": ..., "data": ...}.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dkeye/Sketch/internal/domain"
)

const (
	TypeJoinRoom     = "join-room"
	TypeLeaveRoom    = "leave-room"
	TypeDrawingData  = "drawing-data"
	TypeDeleteObject = "delete-object"
	TypeCursorMove   = "cursor-move"
	TypeRoomState    = "room-state"
	TypePing         = "ping"
	TypePong         = "pong"
)

var (
	ErrBadPayload  = errors.New("bad payload")
	ErrUnknownType = errors.New("unknown message type")
)

type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Encode marshals a frame of the given type around data.
func Encode(typ string, data any) ([]byte, error) {
	env := struct {
		Type string `json:"type"`
		Data any    `json:"data,omitempty"`
	}{Type: typ, Data: data}
	return json.Marshal(env)
}

func Decode(frame []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if env.Type == "" {
		return Envelope{}, fmt.Errorf("%w: missing type", ErrBadPayload)
	}
	return env, nil
}

// RoomRef is the payload of join-room / leave-room. Clients may send either a
// bare room id string or {"roomId": "..."}.
func DecodeRoomRef(data json.RawMessage) (domain.RoomID, error) {
	var id string
	if err := json.Unmarshal(data, &id); err != nil {
		var obj struct {
			RoomID string `json:"roomId"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return "", fmt.Errorf("%w: %v", ErrBadPayload, err)
		}
		id = obj.RoomID
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return "", domain.ErrMissingRoom
	}
	return domain.RoomID(id), nil
}

// DecodeDrawing splits a client drawing-data payload into its room and the
// object record, which no longer carries roomId.
func DecodeDrawing(data json.RawMessage) (domain.RoomID, domain.Object, error) {
	var obj domain.Object
	if err := json.Unmarshal(data, &obj); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	room := domain.RoomID(obj.Str(domain.FieldRoomID))
	if room == "" {
		return "", nil, domain.ErrMissingRoom
	}
	delete(obj, domain.FieldRoomID)
	if err := obj.Validate(); err != nil {
		return "", nil, err
	}
	return room, obj, nil
}

// DrawingPayload is what a client sends: the record plus its room.
func DrawingPayload(room domain.RoomID, obj domain.Object) domain.Object {
	out := obj.Clone()
	out[domain.FieldRoomID] = string(room)
	return out
}

type DeletePayload struct {
	RoomID domain.RoomID   `json:"roomId"`
	ID     domain.ObjectID `json:"id"`
}

func DecodeDelete(data json.RawMessage) (DeletePayload, error) {
	var p DeletePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if p.RoomID == "" {
		return p, domain.ErrMissingRoom
	}
	if p.ID == "" {
		return p, domain.ErrMissingID
	}
	return p, nil
}

// DecodeDeletedID reads the bare object id peers receive in delete-object.
func DecodeDeletedID(data json.RawMessage) (domain.ObjectID, error) {
	var id string
	if err := json.Unmarshal(data, &id); err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if id == "" {
		return "", domain.ErrMissingID
	}
	return domain.ObjectID(id), nil
}

func DecodeCursor(data json.RawMessage) (domain.Cursor, error) {
	var c domain.Cursor
	if err := json.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if c.RoomID == "" {
		return c, domain.ErrMissingRoom
	}
	return c, nil
}

// RoomState is the catch-up frame sent to a connection right after it joins.
type RoomState struct {
	RoomID  domain.RoomID   `json:"roomId"`
	Objects []domain.Object `json:"objects"`
}

func DecodeRoomState(data json.RawMessage) (RoomState, error) {
	var s RoomState
	if err := json.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return s, nil
}

func DecodeObject(data json.RawMessage) (domain.Object, error) {
	var obj domain.Object
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if err := obj.Validate(); err != nil {
		return nil, err
	}
	return obj, nil
}
