package signal

import (
	"github.com/dkeye/Sketch/internal/domain"
	"github.com/dkeye/Sketch/internal/protocol"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) handleJoin(id domain.ConnID, env protocol.Envelope) {
	room, err := protocol.DecodeRoomRef(env.Data)
	if err != nil {
		log.Debug().Err(err).Str("module", "signal").Str("conn", string(id)).Msg("bad join payload")
		return
	}
	objs, ok := ctl.Orch.Join(id, room)
	if !ok {
		return
	}
	log.Info().Str("module", "signal").Str("conn", string(id)).Str("room", string(room)).Int("catch_up", len(objs)).Msg("join")
}

// handleLeave takes the connection out of one room; the socket stays open.
func (ctl *SignalWSController) handleLeave(id domain.ConnID, env protocol.Envelope) {
	room, err := protocol.DecodeRoomRef(env.Data)
	if err != nil {
		log.Debug().Err(err).Str("module", "signal").Str("conn", string(id)).Msg("bad leave payload")
		return
	}
	log.Info().Str("module", "signal").Str("conn", string(id)).Str("room", string(room)).Msg("leave")
	ctl.Orch.Leave(id, room)
}

func (ctl *SignalWSController) handleDrawing(id domain.ConnID, env protocol.Envelope) {
	room, obj, err := protocol.DecodeDrawing(env.Data)
	if err != nil {
		log.Debug().Err(err).Str("module", "signal").Str("conn", string(id)).Msg("malformed edit dropped")
		return
	}
	ctl.Orch.Upsert(id, room, obj, env.Data)
}

func (ctl *SignalWSController) handleDelete(id domain.ConnID, env protocol.Envelope) {
	p, err := protocol.DecodeDelete(env.Data)
	if err != nil {
		log.Debug().Err(err).Str("module", "signal").Str("conn", string(id)).Msg("malformed delete dropped")
		return
	}
	ctl.Orch.Delete(id, p.RoomID, p.ID)
}

func (ctl *SignalWSController) handleCursor(id domain.ConnID, env protocol.Envelope) {
	if ctl.Cursors != nil && !ctl.Cursors.Allow(id) {
		return
	}
	c, err := protocol.DecodeCursor(env.Data)
	if err != nil {
		log.Debug().Err(err).Str("module", "signal").Str("conn", string(id)).Msg("bad cursor dropped")
		return
	}
	ctl.Orch.Cursor(id, c)
}
