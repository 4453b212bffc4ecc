package wsclient

import (
	"testing"

	"github.com/dkeye/Sketch/internal/protocol"
)

func TestDecodeEvent(t *testing.T) {
	ev, ok := decodeEvent([]byte(`{"type":"drawing-data","data":{"roomId":"R","id":"r1","kind":"rect"}}`))
	if !ok || ev.Room != "R" || ev.Object.ID() != "r1" {
		t.Fatalf("drawing-data = %+v, %v", ev, ok)
	}
	if _, has := ev.Object["roomId"]; has {
		t.Fatalf("roomId left on object")
	}

	ev, ok = decodeEvent([]byte(`{"type":"delete-object","data":"r1"}`))
	if !ok || ev.Deleted != "r1" {
		t.Fatalf("delete-object = %+v, %v", ev, ok)
	}

	ev, ok = decodeEvent([]byte(`{"type":"cursor-move","data":{"roomId":"R","x":1,"y":2,"userId":"u"}}`))
	if !ok || ev.Cursor.UserID != "u" || ev.Cursor.Y != 2 {
		t.Fatalf("cursor-move = %+v, %v", ev, ok)
	}

	ev, ok = decodeEvent([]byte(`{"type":"room-state","data":{"roomId":"R","objects":[{"id":"a"},{"id":"b"}]}}`))
	if !ok || ev.Room != "R" || len(ev.Objects) != 2 {
		t.Fatalf("room-state = %+v, %v", ev, ok)
	}

	if ev, ok = decodeEvent([]byte(`{"type":"pong"}`)); !ok || ev.Type != protocol.TypePong {
		t.Fatalf("pong = %+v, %v", ev, ok)
	}
}

func TestDecodeEventDropsMalformed(t *testing.T) {
	for _, frame := range []string{
		`not json`,
		`{"data":{}}`,
		`{"type":"drawing-data","data":{"id":"r1"}}`,
		`{"type":"drawing-data","data":{"roomId":"R"}}`,
		`{"type":"delete-object","data":""}`,
		`{"type":"mystery"}`,
	} {
		if _, ok := decodeEvent([]byte(frame)); ok {
			t.Fatalf("frame %s accepted", frame)
		}
	}
}
