package signal

import "github.com/dkeye/Sketch/internal/protocol"

func (ctl *SignalWSController) handlePing(conn *WsSignalConn) {
	ctl.send(conn, protocol.TypePong, nil)
}
