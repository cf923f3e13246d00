package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wireboard/internal/board"
	"github.com/vovakirdan/wireboard/internal/core"
)

// RoomHandlers provides HTTP handlers for room endpoints.
type RoomHandlers struct {
	hub    *core.Hub
	boards *board.Store
	log    *zerolog.Logger
}

// NewRoomHandlers creates a new room handlers instance.
func NewRoomHandlers(hub *core.Hub, boards *board.Store, logger *zerolog.Logger) *RoomHandlers {
	return &RoomHandlers{
		hub:    hub,
		boards: boards,
		log:    logger,
	}
}

// CreateRoomRequest represents the create room request body.
type CreateRoomRequest struct {
	Password string `json:"password" binding:"max=256"`
}

// CreateRoomResponse is returned after a room code was generated.
type CreateRoomResponse struct {
	RoomID  string `json:"roomId"`
	Created bool   `json:"created"`
}

// RoomResponse describes a room.
type RoomResponse struct {
	RoomID    string `json:"roomId"`
	Protected bool   `json:"protected"`
	Segments  int    `json:"segments"`
	Members   int    `json:"members"`
}

// CreateRoom generates a room code and creates the room with the optional
// password.
// POST /api/rooms
func (h *RoomHandlers) CreateRoom(c *gin.Context) {
	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.log.Debug().Err(err).Msg("invalid create room request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	code, err := board.NewRoomCode()
	if err != nil {
		h.log.Error().Err(err).Msg("failed to generate room code")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	allowed, created := h.boards.TryEnterRoom(code, req.Password)
	if !allowed {
		// the generated code landed on an existing protected room
		h.log.Warn().Str("room_id", code).Msg("room code collision")
		c.JSON(http.StatusConflict, ErrorResponse{Error: "room code collision, retry"})
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	h.log.Info().Str("room_id", code).Bool("created", created).Bool("protected", req.Password != "").Msg("room created")
	c.JSON(status, CreateRoomResponse{RoomID: code, Created: created})
}

// GetRoom describes an existing room without creating it.
// GET /api/rooms/:id
func (h *RoomHandlers) GetRoom(c *gin.Context) {
	info, ok := h.boards.Stat(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "room not found"})
		return
	}

	c.JSON(http.StatusOK, RoomResponse{
		RoomID:    info.ID,
		Protected: info.Protected,
		Segments:  info.Segments,
		Members:   h.hub.Members(info.ID),
	})
}
