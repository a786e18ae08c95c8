package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/trannguyensonthanh/ttcs-event-service/internal/transport/http/middleware"
	"github.com/trannguyensonthanh/ttcs-event-service/internal/usecase"
)

// RoomRequestHandler serves the two-level room request lifecycle.
type RoomRequestHandler struct {
	requests *usecase.RoomRequestService
}

// NewRoomRequestHandler builds the handler.
func NewRoomRequestHandler(requests *usecase.RoomRequestService) *RoomRequestHandler {
	return &RoomRequestHandler{requests: requests}
}

// RegisterRoutes wires the room-request endpoints onto the group.
func (h *RoomRequestHandler) RegisterRoutes(r *gin.RouterGroup, mutate ...gin.HandlerFunc) {
	r.GET("/:id", h.GetRequest)

	post := func(path string, handler gin.HandlerFunc) {
		chain := append([]gin.HandlerFunc{}, mutate...)
		chain = append(chain, handler)
		r.POST(path, chain...)
	}

	post("", h.CreateRequest)
	post("/:id/cancel", h.CancelRequest)
	post("/:id/items/:itemID/assign", h.AssignRoom)
	post("/:id/items/:itemID/reject", h.RejectItem)
	post("/:id/items/:itemID/request-revision", h.RequestItemRevision)
	post("/:id/items/:itemID/resubmit", h.ResubmitItem)
	post("/:id/items/:itemID/cancel", h.CancelItem)
}

// RoomRequestItemRequest defines one requested room slot.
type RoomRequestItemRequest struct {
	RoomTypeID string `json:"room_type_id" binding:"required"`
	Capacity   int    `json:"capacity" binding:"required"`
	RoomCount  int    `json:"room_count"`
	StartsAt   string `json:"starts_at" binding:"required"`
	EndsAt     string `json:"ends_at" binding:"required"`
}

// RoomRequestCreateRequest defines the payload for a new request header.
type RoomRequestCreateRequest struct {
	EventID string                   `json:"event_id" binding:"required"`
	Items   []RoomRequestItemRequest `json:"items" binding:"required"`
}

// AssignRoomRequest defines the facility decision payload for one item.
type AssignRoomRequest struct {
	RoomID string `json:"room_id" binding:"required"`
	Note   string `json:"note"`
}

func (h *RoomRequestHandler) toItemInput(c *gin.Context, in RoomRequestItemRequest) (usecase.RoomRequestItemInput, bool) {
	startsAt, err := parseTimestamp(in.StartsAt)
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "item starts_at must be RFC 3339"))
		return usecase.RoomRequestItemInput{}, false
	}
	endsAt, err := parseTimestamp(in.EndsAt)
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "item ends_at must be RFC 3339"))
		return usecase.RoomRequestItemInput{}, false
	}

	return usecase.RoomRequestItemInput{
		RoomTypeID: strings.TrimSpace(in.RoomTypeID),
		Capacity:   in.Capacity,
		RoomCount:  in.RoomCount,
		StartsAt:   startsAt,
		EndsAt:     endsAt,
	}, true
}

func (h *RoomRequestHandler) CreateRequest(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req RoomRequestCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid room request payload"))
		return
	}

	input := usecase.CreateRoomRequestInput{EventID: strings.TrimSpace(req.EventID)}
	for _, item := range req.Items {
		in, ok := h.toItemInput(c, item)
		if !ok {
			return
		}
		input.Items = append(input.Items, in)
	}

	header, err := h.requests.CreateRoomRequest(c.Request.Context(), actor, input)
	if err != nil {
		respondWorkflowError(c, err, "failed to create room request")
		return
	}

	c.JSON(http.StatusCreated, toRoomRequestPayload(header))
}

func (h *RoomRequestHandler) GetRequest(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	header, err := h.requests.GetRoomRequest(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondWorkflowError(c, err, "failed to load room request")
		return
	}

	c.JSON(http.StatusOK, toRoomRequestPayload(header))
}

// ListByEvent serves room requests scoped to one event. Registered under
// the events group.
func (h *RoomRequestHandler) ListByEvent(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	headers, err := h.requests.ListRoomRequests(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondWorkflowError(c, err, "failed to list room requests")
		return
	}

	payloads := make([]RoomRequestPayload, 0, len(headers))
	for i := range headers {
		payloads = append(payloads, toRoomRequestPayload(&headers[i]))
	}

	c.JSON(http.StatusOK, gin.H{"room_requests": payloads})
}

func (h *RoomRequestHandler) AssignRoom(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req AssignRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "room_id is required"))
		return
	}

	header, err := h.requests.ApproveItem(c.Request.Context(), actor, c.Param("id"), c.Param("itemID"), req.RoomID, req.Note)
	if err != nil {
		respondWorkflowError(c, err, "failed to assign room")
		return
	}

	c.JSON(http.StatusOK, toRoomRequestPayload(header))
}

func (h *RoomRequestHandler) RejectItem(c *gin.Context) {
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

	header, err := h.requests.RejectItem(c.Request.Context(), actor, c.Param("id"), c.Param("itemID"), req.Reason)
	if err != nil {
		respondWorkflowError(c, err, "failed to reject room request item")
		return
	}

	c.JSON(http.StatusOK, toRoomRequestPayload(header))
}

func (h *RoomRequestHandler) RequestItemRevision(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req decisionRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Note) == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "note is required"))
		return
	}

	header, err := h.requests.RequestItemRevision(c.Request.Context(), actor, c.Param("id"), c.Param("itemID"), req.Note)
	if err != nil {
		respondWorkflowError(c, err, "failed to request item revision")
		return
	}

	c.JSON(http.StatusOK, toRoomRequestPayload(header))
}

func (h *RoomRequestHandler) ResubmitItem(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req RoomRequestItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid item payload"))
		return
	}

	in, ok := h.toItemInput(c, req)
	if !ok {
		return
	}

	header, err := h.requests.ResubmitItem(c.Request.Context(), actor, c.Param("id"), c.Param("itemID"), in)
	if err != nil {
		respondWorkflowError(c, err, "failed to resubmit item")
		return
	}

	c.JSON(http.StatusOK, toRoomRequestPayload(header))
}

func (h *RoomRequestHandler) CancelItem(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	header, err := h.requests.CancelItem(c.Request.Context(), actor, c.Param("id"), c.Param("itemID"))
	if err != nil {
		respondWorkflowError(c, err, "failed to cancel item")
		return
	}

	c.JSON(http.StatusOK, toRoomRequestPayload(header))
}

func (h *RoomRequestHandler) CancelRequest(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	header, err := h.requests.CancelRequest(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondWorkflowError(c, err, "failed to cancel room request")
		return
	}

	c.JSON(http.StatusOK, toRoomRequestPayload(header))
}
