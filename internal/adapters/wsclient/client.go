// Package wsclient is the client side of the relay protocol: one websocket,
// typed outbound calls and a channel of decoded inbound events.
package wsclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/dkeye/Sketch/internal/domain"
	"github.com/dkeye/Sketch/internal/protocol"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var ErrClosed = errors.New("wsclient: link closed")

const writeWait = 5 * time.Second

// Event is one decoded relay frame. Only the fields matching Type are set.
type Event struct {
	Type    string
	Room    domain.RoomID
	Object  domain.Object
	Deleted domain.ObjectID
	Cursor  domain.Cursor
	Objects []domain.Object
}

type Link struct {
	conn   *websocket.Conn
	events chan Event

	writeMu sync.Mutex
	once    sync.Once
	done    chan struct{}
}

// Dial connects to a relay websocket endpoint such as ws://host:8080/api/ws.
func Dial(ctx context.Context, url string, header http.Header) (*Link, error) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	l := &Link{
		conn:   conn,
		events: make(chan Event, 64),
		done:   make(chan struct{}),
	}
	go l.readLoop()
	return l, nil
}

// Events is closed when the connection ends.
func (l *Link) Events() <-chan Event { return l.events }

func (l *Link) Done() <-chan struct{} { return l.done }

func (l *Link) Close() error {
	var err error
	l.once.Do(func() {
		close(l.done)
		l.writeMu.Lock()
		_ = l.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
		l.writeMu.Unlock()
		err = l.conn.Close()
	})
	return err
}

func (l *Link) write(typ string, data any) error {
	select {
	case <-l.done:
		return ErrClosed
	default:
	}
	b, err := protocol.Encode(typ, data)
	if err != nil {
		return err
	}
	l.writeMu.Lock()
	defer l.writeMu.Unlock()
	if err := l.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return l.conn.WriteMessage(websocket.TextMessage, b)
}

func (l *Link) JoinRoom(room domain.RoomID) error {
	return l.write(protocol.TypeJoinRoom, room)
}

func (l *Link) LeaveRoom(room domain.RoomID) error {
	return l.write(protocol.TypeLeaveRoom, room)
}

// Upsert sends obj to room as drawing-data.
func (l *Link) Upsert(room domain.RoomID, obj domain.Object) error {
	return l.write(protocol.TypeDrawingData, protocol.DrawingPayload(room, obj))
}

func (l *Link) Delete(room domain.RoomID, id domain.ObjectID) error {
	return l.write(protocol.TypeDeleteObject, protocol.DeletePayload{RoomID: room, ID: id})
}

func (l *Link) Cursor(room domain.RoomID, x, y float64) error {
	return l.write(protocol.TypeCursorMove, domain.Cursor{RoomID: room, X: x, Y: y})
}

func (l *Link) Ping() error {
	return l.write(protocol.TypePing, nil)
}

func (l *Link) readLoop() {
	defer close(l.events)
	defer l.Close()
	for {
		_, data, err := l.conn.ReadMessage()
		if err != nil {
			select {
			case <-l.done:
			default:
				log.Debug().Err(err).Str("module", "wsclient").Msg("read loop ended")
			}
			return
		}
		ev, ok := decodeEvent(data)
		if !ok {
			continue
		}
		select {
		case l.events <- ev:
		case <-l.done:
			return
		}
	}
}

// decodeEvent turns a relay frame into an Event; malformed frames are dropped.
func decodeEvent(data []byte) (Event, bool) {
	env, err := protocol.Decode(data)
	if err != nil {
		log.Debug().Err(err).Str("module", "wsclient").Msg("bad frame dropped")
		return Event{}, false
	}
	ev := Event{Type: env.Type}
	switch env.Type {
	case protocol.TypeDrawingData:
		room, obj, err := protocol.DecodeDrawing(env.Data)
		if err != nil {
			log.Debug().Err(err).Str("module", "wsclient").Msg("bad drawing-data dropped")
			return Event{}, false
		}
		ev.Room, ev.Object = room, obj
	case protocol.TypeDeleteObject:
		id, err := protocol.DecodeDeletedID(env.Data)
		if err != nil {
			log.Debug().Err(err).Str("module", "wsclient").Msg("bad delete-object dropped")
			return Event{}, false
		}
		ev.Deleted = id
	case protocol.TypeCursorMove:
		c, err := protocol.DecodeCursor(env.Data)
		if err != nil {
			return Event{}, false
		}
		ev.Room, ev.Cursor = c.RoomID, c
	case protocol.TypeRoomState:
		st, err := protocol.DecodeRoomState(env.Data)
		if err != nil {
			return Event{}, false
		}
		ev.Room, ev.Objects = st.RoomID, st.Objects
	case protocol.TypePong:
	default:
		log.Debug().Err(protocol.ErrUnknownType).Str("module", "wsclient").Str("type", env.Type).Msg("ignored frame")
		return Event{}, false
	}
	return ev, true
}
