package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/trannguyensonthanh/ttcs-event-service/internal/transport/http/middleware"
	"github.com/trannguyensonthanh/ttcs-event-service/internal/usecase"
)

// InvitationHandler serves the invitation lifecycle.
type InvitationHandler struct {
	invitations *usecase.InvitationService
}

// NewInvitationHandler builds the handler.
func NewInvitationHandler(invitations *usecase.InvitationService) *InvitationHandler {
	return &InvitationHandler{invitations: invitations}
}

// RegisterRoutes wires invitation response and revocation endpoints.
func (h *InvitationHandler) RegisterRoutes(r *gin.RouterGroup, mutate ...gin.HandlerFunc) {
	post := func(path string, handler gin.HandlerFunc) {
		chain := append([]gin.HandlerFunc{}, mutate...)
		chain = append(chain, handler)
		r.POST(path, chain...)
	}

	post("/:id/respond", h.Respond)
	post("/:id/revoke", h.Revoke)
}

// InviteRequest defines the payload for inviting a participant.
type InviteRequest struct {
	InviteeID string `json:"invitee_id" binding:"required"`
}

// InvitationRespondRequest defines the accept/decline payload.
type InvitationRespondRequest struct {
	Accepted      *bool  `json:"accepted" binding:"required"`
	DeclineReason string `json:"decline_reason"`
}

// Invite creates an invitation for one event. Registered under the events
// group.
func (h *InvitationHandler) Invite(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invitee_id is required"))
		return
	}

	inv, err := h.invitations.Invite(c.Request.Context(), actor, c.Param("id"), strings.TrimSpace(req.InviteeID))
	if err != nil {
		respondWorkflowError(c, err, "failed to create invitation",
			ErrorCase{Err: usecase.ErrAlreadyInvited, Status: http.StatusConflict, Message: "user already invited"})
		return
	}

	c.JSON(http.StatusCreated, toInvitationPayload(inv))
}

// ListByEvent serves the invitations of one event. Registered under the
// events group.
func (h *InvitationHandler) ListByEvent(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	invitations, err := h.invitations.ListByEvent(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondWorkflowError(c, err, "failed to list invitations")
		return
	}

	payloads := make([]InvitationPayload, 0, len(invitations))
	for i := range invitations {
		payloads = append(payloads, toInvitationPayload(&invitations[i]))
	}

	c.JSON(http.StatusOK, gin.H{"invitations": payloads})
}

func (h *InvitationHandler) Respond(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req InvitationRespondRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Accepted == nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "accepted is required"))
		return
	}

	inv, err := h.invitations.Respond(c.Request.Context(), actor, c.Param("id"), *req.Accepted, req.DeclineReason)
	if err != nil {
		respondWorkflowError(c, err, "failed to respond to invitation")
		return
	}

	c.JSON(http.StatusOK, toInvitationPayload(inv))
}

func (h *InvitationHandler) Revoke(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	inv, err := h.invitations.Revoke(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondWorkflowError(c, err, "failed to revoke invitation")
		return
	}

	c.JSON(http.StatusOK, toInvitationPayload(inv))
}
