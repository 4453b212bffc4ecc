package orch

import (
	"github.com/dkeye/Sketch/internal/app"
	"github.com/dkeye/Sketch/internal/core"
	"github.com/dkeye/Sketch/internal/domain"
	"github.com/rs/zerolog/log"
)

type Orchestrator struct {
	Registry *app.Registry
	Rooms    core.RoomManager
	Policy   app.Policy
	// CatchUp makes Join hand the room's current objects to the joiner.
	CatchUp bool
}

func (o *Orchestrator) applyPolicy(room core.RoomService, res core.PublishResult) {
	if o.Policy == nil {
		return
	}
	for _, slow := range res.Dropped {
		switch o.Policy.OnBackPressure(room, slow) {
		case app.KickMember:
			conn := slow.Meta().Conn
			log.Warn().Str("module", "app.orch").Str("room", string(room.Room().ID)).Str("conn", string(conn)).Msg("kicking slow member")
			o.Kick(conn)
		case app.DropFrame, app.NoAction:
			log.Debug().Str("module", "app.orch").Str("room", string(room.Room().ID)).Str("conn", string(slow.Meta().Conn)).Msg("frame dropped")
		}
	}
}

// Kick abandons the connection: it leaves every room and its pumps stop.
func (o *Orchestrator) Kick(conn domain.ConnID) {
	o.leaveAll(conn)
	if !o.Registry.Cancel(conn) {
		return
	}
	if sess, ok := o.Registry.GetSession(conn); ok {
		sess.Signal().Close()
	}
}

// OnDisconnect is called once by the transport when the connection is gone.
func (o *Orchestrator) OnDisconnect(conn domain.ConnID) {
	for _, id := range o.Registry.Unbind(conn) {
		if room, ok := o.Rooms.GetRoom(id); ok {
			room.Leave(conn)
		}
	}
	log.Info().Str("module", "app.orch").Str("conn", string(conn)).Msg("disconnected")
}

func (o *Orchestrator) leaveAll(conn domain.ConnID) {
	for _, id := range o.Registry.RoomsOf(conn) {
		o.Leave(conn, id)
	}
}
