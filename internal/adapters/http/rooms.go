package http

import (
	"bytes"
	"io"
	"net/http"

	"github.com/dkeye/Sketch/internal/app/orch"
	"github.com/dkeye/Sketch/internal/core"
	"github.com/dkeye/Sketch/internal/domain"
	"github.com/dkeye/Sketch/internal/export"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// roomsHandler is the read-only REST view of the relay.
type roomsHandler struct {
	orch         *orch.Orchestrator
	exportWidth  int
	exportHeight int
}

func (h *roomsHandler) room(c *gin.Context) (core.RoomService, bool) {
	room, ok := h.orch.Rooms.GetRoom(domain.RoomID(c.Param("id")))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return nil, false
	}
	return room, true
}

func (h *roomsHandler) list(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rooms": h.orch.Rooms.List()})
}

func (h *roomsHandler) get(c *gin.Context) {
	room, ok := h.room(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":      room.Room().ID,
		"members": room.MembersSnapshot(),
		"objects": room.ObjectCount(),
	})
}

func (h *roomsHandler) objects(c *gin.Context) {
	room, ok := h.room(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"roomId": room.Room().ID, "objects": room.Snapshot()})
}

func (h *roomsHandler) exportPNG(c *gin.Context) {
	h.export(c, "image/png", export.PNG)
}

func (h *roomsHandler) exportPDF(c *gin.Context) {
	h.export(c, "application/pdf", export.PDF)
}

func (h *roomsHandler) export(c *gin.Context, contentType string, render func(w io.Writer, objs []domain.Object, width, height int) error) {
	room, ok := h.room(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := render(&buf, room.Snapshot(), h.exportWidth, h.exportHeight); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Str("room", string(room.Room().ID)).Msg("export failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}
	c.Data(http.StatusOK, contentType, buf.Bytes())
}
