package domain

type (
	RoomID string
	ConnID string
)

type Room struct {
	ID RoomID
}
