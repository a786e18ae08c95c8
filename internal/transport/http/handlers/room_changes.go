package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/trannguyensonthanh/ttcs-event-service/internal/transport/http/middleware"
	"github.com/trannguyensonthanh/ttcs-event-service/internal/usecase"
)

// RoomChangeHandler serves room change requests against assigned items.
type RoomChangeHandler struct {
	changes *usecase.RoomChangeService
}

// NewRoomChangeHandler builds the handler.
func NewRoomChangeHandler(changes *usecase.RoomChangeService) *RoomChangeHandler {
	return &RoomChangeHandler{changes: changes}
}

// RegisterRoutes wires the room-change endpoints onto the group.
func (h *RoomChangeHandler) RegisterRoutes(r *gin.RouterGroup, mutate ...gin.HandlerFunc) {
	r.GET("/:id", h.GetRequest)

	post := func(path string, handler gin.HandlerFunc) {
		chain := append([]gin.HandlerFunc{}, mutate...)
		chain = append(chain, handler)
		r.POST(path, chain...)
	}

	post("", h.CreateRequest)
	post("/:id/approve", h.ApproveRequest)
	post("/:id/reject", h.RejectRequest)
	post("/:id/cancel", h.CancelRequest)
}

// RoomChangeCreateRequest defines the payload for a new change request.
type RoomChangeCreateRequest struct {
	LineItemID string `json:"line_item_id" binding:"required"`
	Reason     string `json:"reason" binding:"required"`
	RoomTypeID string `json:"room_type_id"`
	Capacity   int    `json:"capacity"`
}

// RoomChangeApproveRequest carries the replacement room for an approval.
type RoomChangeApproveRequest struct {
	NewRoomID string `json:"new_room_id" binding:"required"`
}

func (h *RoomChangeHandler) CreateRequest(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req RoomChangeCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid room change payload"))
		return
	}

	change, err := h.changes.CreateRoomChange(c.Request.Context(), actor, usecase.CreateRoomChangeInput{
		LineItemID: strings.TrimSpace(req.LineItemID),
		Reason:     strings.TrimSpace(req.Reason),
		RoomTypeID: strings.TrimSpace(req.RoomTypeID),
		Capacity:   req.Capacity,
	})
	if err != nil {
		respondWorkflowError(c, err, "failed to create room change request")
		return
	}

	c.JSON(http.StatusCreated, toRoomChangePayload(change))
}

func (h *RoomChangeHandler) GetRequest(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	change, err := h.changes.GetRoomChange(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondWorkflowError(c, err, "failed to load room change request")
		return
	}

	c.JSON(http.StatusOK, toRoomChangePayload(change))
}

func (h *RoomChangeHandler) ApproveRequest(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req RoomChangeApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "new_room_id is required"))
		return
	}

	change, err := h.changes.ApproveRoomChange(c.Request.Context(), actor, c.Param("id"), req.NewRoomID)
	if err != nil {
		respondWorkflowError(c, err, "failed to approve room change")
		return
	}

	c.JSON(http.StatusOK, toRoomChangePayload(change))
}

func (h *RoomChangeHandler) RejectRequest(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req reasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "reason is required"))
		return
	}

	change, err := h.changes.RejectRoomChange(c.Request.Context(), actor, c.Param("id"), req.Reason)
	if err != nil {
		respondWorkflowError(c, err, "failed to reject room change")
		return
	}

	c.JSON(http.StatusOK, toRoomChangePayload(change))
}

func (h *RoomChangeHandler) CancelRequest(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	change, err := h.changes.CancelRoomChange(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondWorkflowError(c, err, "failed to cancel room change")
		return
	}

	c.JSON(http.StatusOK, toRoomChangePayload(change))
}
