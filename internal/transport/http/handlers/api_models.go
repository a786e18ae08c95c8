package handlers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/trannguyensonthanh/ttcs-event-service/internal/core/domain"
	"github.com/trannguyensonthanh/ttcs-event-service/internal/transport/http/middleware"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	return ErrorResponse{
		Error:   errorMsg,
		TraceID: middleware.GetTraceID(c),
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// parseTimestamp accepts RFC 3339 timestamps from request payloads.
func parseTimestamp(raw string) (time.Time, error) {
	return time.Parse(time.RFC3339, strings.TrimSpace(raw))
}

// HealthResponse is returned by the liveness endpoint.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// ReadinessResponse reports per-dependency readiness.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// EventPayload is the API view of an event.
type EventPayload struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	CreatorID  string    `json:"creator_id"`
	HostUnitID string    `json:"host_unit_id"`
	Status     string    `json:"status"`
	StartsAt   time.Time `json:"starts_at"`
	EndsAt     time.Time `json:"ends_at"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toEventPayload(ev *domain.Event) EventPayload {
	return EventPayload{
		ID:         ev.ID,
		Name:       ev.Name,
		CreatorID:  ev.CreatorID,
		HostUnitID: ev.HostUnitID,
		Status:     string(ev.Status),
		StartsAt:   ev.StartsAt,
		EndsAt:     ev.EndsAt,
		CreatedAt:  ev.CreatedAt,
		UpdatedAt:  ev.UpdatedAt,
	}
}

// EventListResponse wraps a page of events.
type EventListResponse struct {
	Events []EventPayload `json:"events"`
}

// CancelRequestPayload is the API view of an event cancellation request.
type CancelRequestPayload struct {
	ID          string     `json:"id"`
	EventID     string     `json:"event_id"`
	RequesterID string     `json:"requester_id"`
	Reason      string     `json:"reason"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
}

func toCancelRequestPayload(req *domain.EventCancelRequest) CancelRequestPayload {
	return CancelRequestPayload{
		ID:          req.ID,
		EventID:     req.EventID,
		RequesterID: req.RequesterID,
		Reason:      req.Reason,
		Status:      string(req.Status),
		CreatedAt:   req.CreatedAt,
		ResolvedAt:  req.ResolvedAt,
	}
}

// RoomRequestItemPayload is the API view of one requested room slot.
type RoomRequestItemPayload struct {
	ID             string    `json:"id"`
	RoomTypeID     string    `json:"room_type_id"`
	Capacity       int       `json:"capacity"`
	RoomCount      int       `json:"room_count"`
	StartsAt       time.Time `json:"starts_at"`
	EndsAt         time.Time `json:"ends_at"`
	Status         string    `json:"status"`
	AssignedRoomID *string   `json:"assigned_room_id,omitempty"`
	Note           *string   `json:"note,omitempty"`
}

// RoomRequestPayload is the API view of a room request header with items.
type RoomRequestPayload struct {
	ID          string                   `json:"id"`
	EventID     string                   `json:"event_id"`
	RequesterID string                   `json:"requester_id"`
	Status      string                   `json:"status"`
	Items       []RoomRequestItemPayload `json:"items"`
	CreatedAt   time.Time                `json:"created_at"`
	UpdatedAt   time.Time                `json:"updated_at"`
}

func toRoomRequestPayload(header *domain.RoomRequestHeader) RoomRequestPayload {
	items := make([]RoomRequestItemPayload, 0, len(header.Items))
	for _, it := range header.Items {
		items = append(items, RoomRequestItemPayload{
			ID:             it.ID,
			RoomTypeID:     it.RoomTypeID,
			Capacity:       it.Capacity,
			RoomCount:      it.RoomCount,
			StartsAt:       it.StartsAt,
			EndsAt:         it.EndsAt,
			Status:         string(it.Status),
			AssignedRoomID: it.AssignedRoomID,
			Note:           it.Note,
		})
	}

	return RoomRequestPayload{
		ID:          header.ID,
		EventID:     header.EventID,
		RequesterID: header.RequesterID,
		Status:      string(header.Status),
		Items:       items,
		CreatedAt:   header.CreatedAt,
		UpdatedAt:   header.UpdatedAt,
	}
}

// RoomChangePayload is the API view of a room change request.
type RoomChangePayload struct {
	ID            string    `json:"id"`
	LineItemID    string    `json:"line_item_id"`
	RequesterID   string    `json:"requester_id"`
	CurrentRoomID string    `json:"current_room_id"`
	Reason        string    `json:"reason"`
	RoomTypeID    string    `json:"room_type_id,omitempty"`
	Capacity      int       `json:"capacity,omitempty"`
	NewRoomID     *string   `json:"new_room_id,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

func toRoomChangePayload(req *domain.RoomChangeRequest) RoomChangePayload {
	return RoomChangePayload{
		ID:            req.ID,
		LineItemID:    req.LineItemID,
		RequesterID:   req.RequesterID,
		CurrentRoomID: req.CurrentRoomID,
		Reason:        req.Reason,
		RoomTypeID:    req.RoomTypeID,
		Capacity:      req.Capacity,
		NewRoomID:     req.NewRoomID,
		Status:        string(req.Status),
		CreatedAt:     req.CreatedAt,
	}
}

// InvitationPayload is the API view of an invitation.
type InvitationPayload struct {
	ID            string     `json:"id"`
	EventID       string     `json:"event_id"`
	InviterID     string     `json:"inviter_id"`
	InviteeID     string     `json:"invitee_id"`
	Accepted      *bool      `json:"accepted,omitempty"`
	DeclineReason *string    `json:"decline_reason,omitempty"`
	RespondedAt   *time.Time `json:"responded_at,omitempty"`
	RevokedAt     *time.Time `json:"revoked_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func toInvitationPayload(inv *domain.Invitation) InvitationPayload {
	return InvitationPayload{
		ID:            inv.ID,
		EventID:       inv.EventID,
		InviterID:     inv.InviterID,
		InviteeID:     inv.InviteeID,
		Accepted:      inv.Accepted,
		DeclineReason: inv.DeclineReason,
		RespondedAt:   inv.RespondedAt,
		RevokedAt:     inv.RevokedAt,
		CreatedAt:     inv.CreatedAt,
	}
}

// RatingPayload is the API view of a rating.
type RatingPayload struct {
	ID           string    `json:"id"`
	EventID      string    `json:"event_id"`
	RaterID      string    `json:"rater_id"`
	Content      int       `json:"content"`
	Organization int       `json:"organization"`
	Venue        int       `json:"venue"`
	Comment      *string   `json:"comment,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toRatingPayload(r *domain.Rating) RatingPayload {
	return RatingPayload{
		ID:           r.ID,
		EventID:      r.EventID,
		RaterID:      r.RaterID,
		Content:      r.Scores.Content,
		Organization: r.Scores.Organization,
		Venue:        r.Scores.Venue,
		Comment:      r.Comment,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}
