package domain

// Member represents a connection's participation meta for a room.
// No transport or lifecycle logic here.
type Member struct {
	Conn   ConnID
	Client string // browser-level client token, shared by tabs
}

// NewMember avoids raw literals in adapters and keeps construction obvious.
func NewMember(conn ConnID, client string) *Member {
	return &Member{Conn: conn, Client: client}
}
