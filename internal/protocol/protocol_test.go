package protocol

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/dkeye/Sketch/internal/domain"
)

func TestDecodeDrawingStripsRoom(t *testing.T) {
	frame := []byte(`{"type":"drawing-data","data":{"roomId":"R","id":"r1","kind":"rect","left":0,"top":0,"width":10,"height":10}}`)
	env, err := Decode(frame)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if env.Type != TypeDrawingData {
		t.Fatalf("type = %q", env.Type)
	}
	room, obj, err := DecodeDrawing(env.Data)
	if err != nil {
		t.Fatalf("DecodeDrawing: %v", err)
	}
	if room != "R" || obj.ID() != "r1" {
		t.Fatalf("room=%q id=%q", room, obj.ID())
	}
	if _, ok := obj[domain.FieldRoomID]; ok {
		t.Fatalf("roomId leaked into record")
	}
}

func TestDecodeDrawingMalformed(t *testing.T) {
	cases := []struct {
		name string
		data string
		want error
	}{
		{"no room", `{"id":"a"}`, domain.ErrMissingRoom},
		{"no id", `{"roomId":"R","kind":"rect"}`, domain.ErrMissingID},
		{"not an object", `"oops"`, ErrBadPayload},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := DecodeDrawing(json.RawMessage(tc.data))
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestDecodeRoomRefAcceptsBothShapes(t *testing.T) {
	for _, data := range []string{`"R"`, `{"roomId":"R"}`} {
		id, err := DecodeRoomRef(json.RawMessage(data))
		if err != nil || id != "R" {
			t.Fatalf("DecodeRoomRef(%s) = %q, %v", data, id, err)
		}
	}
	if _, err := DecodeRoomRef(json.RawMessage(`"  "`)); !errors.Is(err, domain.ErrMissingRoom) {
		t.Fatalf("blank room accepted: %v", err)
	}
}

func TestEncodeDeletedIDIsBare(t *testing.T) {
	frame, err := Encode(TypeDeleteObject, domain.ObjectID("r1"))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if string(frame) != `{"type":"delete-object","data":"r1"}` {
		t.Fatalf("frame = %s", frame)
	}
	env, _ := Decode(frame)
	id, err := DecodeDeletedID(env.Data)
	if err != nil || id != "r1" {
		t.Fatalf("DecodeDeletedID = %q, %v", id, err)
	}
}

func TestDecodeRejectsMissingType(t *testing.T) {
	if _, err := Decode([]byte(`{"data":1}`)); !errors.Is(err, ErrBadPayload) {
		t.Fatalf("err = %v", err)
	}
}
