package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/trannguyensonthanh/ttcs-event-service/internal/core/domain"
	"github.com/trannguyensonthanh/ttcs-event-service/internal/core/port"
	"github.com/trannguyensonthanh/ttcs-event-service/internal/transport/http/middleware"
	"github.com/trannguyensonthanh/ttcs-event-service/internal/usecase"
)

// EventHandler serves the event lifecycle endpoints.
type EventHandler struct {
	events *usecase.EventService
}

// NewEventHandler builds the handler.
func NewEventHandler(events *usecase.EventService) *EventHandler {
	return &EventHandler{events: events}
}

// RegisterRoutes wires the event endpoints onto the group. The mutate
// middlewares apply only to state-changing routes.
func (h *EventHandler) RegisterRoutes(r *gin.RouterGroup, mutate ...gin.HandlerFunc) {
	r.GET("", h.ListEvents)
	r.GET("/:id", h.GetEvent)

	post := func(path string, handler gin.HandlerFunc) {
		chain := append([]gin.HandlerFunc{}, mutate...)
		chain = append(chain, handler)
		r.POST(path, chain...)
	}

	post("", h.CreateEvent)
	post("/:id/approve", h.ApproveEvent)
	post("/:id/reject", h.RejectEvent)
	post("/:id/request-revision", h.RequestRevision)
	post("/:id/resubmit", h.ResubmitEvent)
	post("/:id/self-cancel", h.SelfCancelEvent)
	post("/:id/cancel-requests", h.RequestCancel)
}

// EventCreateRequest defines the payload for submitting a new event.
type EventCreateRequest struct {
	Name       string `json:"name" binding:"required"`
	HostUnitID string `json:"host_unit_id" binding:"required"`
	StartsAt   string `json:"starts_at" binding:"required"`
	EndsAt     string `json:"ends_at" binding:"required"`
}

// decisionRequest carries an optional note for approve-style actions.
type decisionRequest struct {
	Note string `json:"note"`
}

// reasonRequest carries the mandatory reason for reject-style actions.
type reasonRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func (h *EventHandler) CreateEvent(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req EventCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid event payload"))
		return
	}

	startsAt, err := parseTimestamp(req.StartsAt)
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "starts_at must be RFC 3339"))
		return
	}
	endsAt, err := parseTimestamp(req.EndsAt)
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "ends_at must be RFC 3339"))
		return
	}

	ev, err := h.events.CreateEvent(c.Request.Context(), actor, usecase.CreateEventInput{
		Name:       strings.TrimSpace(req.Name),
		HostUnitID: strings.TrimSpace(req.HostUnitID),
		StartsAt:   startsAt,
		EndsAt:     endsAt,
	})
	if err != nil {
		respondWorkflowError(c, err, "failed to create event")
		return
	}

	c.JSON(http.StatusCreated, toEventPayload(ev))
}

func (h *EventHandler) GetEvent(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	ev, err := h.events.GetEvent(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondWorkflowError(c, err, "failed to load event")
		return
	}

	c.JSON(http.StatusOK, toEventPayload(ev))
}

func (h *EventHandler) ListEvents(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	filter := port.EventFilter{
		Status:     domain.EventStatus(c.Query("status")),
		HostUnitID: c.Query("host_unit_id"),
		CreatorID:  c.Query("creator_id"),
	}
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			filter.Limit = v
		}
	}
	if raw := c.Query("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			filter.Offset = v
		}
	}

	events, err := h.events.ListEvents(c.Request.Context(), actor, filter)
	if err != nil {
		respondWorkflowError(c, err, "failed to list events")
		return
	}

	payloads := make([]EventPayload, 0, len(events))
	for i := range events {
		payloads = append(payloads, toEventPayload(&events[i]))
	}

	c.JSON(http.StatusOK, EventListResponse{Events: payloads})
}

func (h *EventHandler) ApproveEvent(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req decisionRequest
	_ = c.ShouldBindJSON(&req)

	ev, err := h.events.ApproveEvent(c.Request.Context(), actor, c.Param("id"), req.Note)
	if err != nil {
		respondWorkflowError(c, err, "failed to approve event")
		return
	}

	c.JSON(http.StatusOK, toEventPayload(ev))
}

func (h *EventHandler) RejectEvent(c *gin.Context) {
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

	ev, err := h.events.RejectEvent(c.Request.Context(), actor, c.Param("id"), req.Reason)
	if err != nil {
		respondWorkflowError(c, err, "failed to reject event")
		return
	}

	c.JSON(http.StatusOK, toEventPayload(ev))
}

func (h *EventHandler) RequestRevision(c *gin.Context) {
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

	ev, err := h.events.RequestEventRevision(c.Request.Context(), actor, c.Param("id"), req.Note)
	if err != nil {
		respondWorkflowError(c, err, "failed to request revision")
		return
	}

	c.JSON(http.StatusOK, toEventPayload(ev))
}

func (h *EventHandler) ResubmitEvent(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	ev, err := h.events.ResubmitEvent(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondWorkflowError(c, err, "failed to resubmit event")
		return
	}

	c.JSON(http.StatusOK, toEventPayload(ev))
}

func (h *EventHandler) SelfCancelEvent(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	ev, err := h.events.SelfCancelEvent(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondWorkflowError(c, err, "failed to cancel event")
		return
	}

	c.JSON(http.StatusOK, toEventPayload(ev))
}

func (h *EventHandler) RequestCancel(c *gin.Context) {
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

	cancelReq, err := h.events.RequestEventCancel(c.Request.Context(), actor, c.Param("id"), req.Reason)
	if err != nil {
		respondWorkflowError(c, err, "failed to request cancellation")
		return
	}

	c.JSON(http.StatusCreated, toCancelRequestPayload(cancelReq))
}

// CancelRequestHandler serves resolution of event cancellation requests and
// the scheduler-style completion endpoint.
type CancelRequestHandler struct {
	events *usecase.EventService
}

// NewCancelRequestHandler builds the handler.
func NewCancelRequestHandler(events *usecase.EventService) *CancelRequestHandler {
	return &CancelRequestHandler{events: events}
}

// RegisterRoutes wires the cancellation-request endpoints onto the group.
func (h *CancelRequestHandler) RegisterRoutes(r *gin.RouterGroup, mutate ...gin.HandlerFunc) {
	chain := append([]gin.HandlerFunc{}, mutate...)
	r.POST("/:id/resolve", append(chain, h.Resolve)...)
}

// ResolveCancelRequest defines the resolution decision payload.
type ResolveCancelRequest struct {
	Approved *bool `json:"approved" binding:"required"`
}

func (h *CancelRequestHandler) Resolve(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req ResolveCancelRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Approved == nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "approved is required"))
		return
	}

	resolved, err := h.events.ResolveEventCancel(c.Request.Context(), actor, c.Param("id"), *req.Approved)
	if err != nil {
		respondWorkflowError(c, err, "failed to resolve cancellation request")
		return
	}

	c.JSON(http.StatusOK, toCancelRequestPayload(resolved))
}

// Complete marks an approved event as completed. Exposed to the scheduler
// behind the admin guard, hence no actor-scoped permission check.
func (h *EventHandler) Complete(c *gin.Context) {
	ev, err := h.events.CompleteEvent(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWorkflowError(c, err, "failed to complete event")
		return
	}

	c.JSON(http.StatusOK, toEventPayload(ev))
}
