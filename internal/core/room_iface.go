package core

import (
	"github.com/dkeye/Sketch/internal/domain"
)

// PublishResult reports delivery stats/backpressure to orchestrator.
type PublishResult struct {
	SendTo  int
	Dropped []MemberSession
}

// MemberDTO is a read-only view for APIs (no transport fields).
type MemberDTO struct {
	Conn   domain.ConnID `json:"conn"`
	Client string        `json:"client,omitempty"`
}

// RoomService is the core-facing API of a room. All calls for one room are
// applied in a single serial order; calls for different rooms are independent.
// It owns the object set and the broadcast group but never touches transport
// resources beyond TrySend.
type RoomService interface {
	Room() *domain.Room
	MemberCount() int
	MembersSnapshot() []MemberDTO
	ObjectCount() int
	// Snapshot returns copies of the stored records.
	Snapshot() []domain.Object

	// Join admits the connection to the broadcast group and returns the
	// object set as it was at the moment of admission. A non-nil greet builds
	// a frame from that set which reaches ms ahead of any broadcast. It
	// reports false when the room has stopped.
	Join(conn domain.ConnID, ms MemberSession, greet Greeter) ([]domain.Object, bool)
	Leave(conn domain.ConnID)
	// Upsert inserts obj or merges it into the stored record with the same
	// id, then sends frame to every member except from.
	Upsert(from domain.ConnID, obj domain.Object, frame Frame) PublishResult
	// Delete removes the record if present and sends frame to every member
	// except from.
	Delete(from domain.ConnID, id domain.ObjectID, frame Frame) PublishResult
	// Relay forwards frame to every member except from without touching state.
	Relay(from domain.ConnID, frame Frame) PublishResult
}

// Greeter renders the catch-up frame for a joining member.
type Greeter func(objs []domain.Object) Frame

type RoomInfo struct {
	ID          domain.RoomID `json:"id"`
	MemberCount int           `json:"members"`
	ObjectCount int           `json:"objects"`
}

type RoomManager interface {
	GetOrCreate(id domain.RoomID) RoomService
	GetRoom(id domain.RoomID) (RoomService, bool)
	List() []RoomInfo
}
