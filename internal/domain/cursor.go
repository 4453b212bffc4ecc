package domain

// Cursor is a participant's pointer position. It is relayed, never stored.
type Cursor struct {
	RoomID RoomID  `json:"roomId"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	UserID ConnID  `json:"userId,omitempty"`
}
