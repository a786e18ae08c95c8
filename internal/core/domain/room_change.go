package domain

import (
	"strings"
	"time"
)

// RoomChangeStatus tracks a request to swap an already-assigned room.
type RoomChangeStatus string

const (
	RoomChangePending            RoomChangeStatus = "PENDING"
	RoomChangeApproved           RoomChangeStatus = "APPROVED"
	RoomChangeRejected           RoomChangeStatus = "REJECTED"
	RoomChangeCancelledByCreator RoomChangeStatus = "CANCELLED_BY_CREATOR"
)

// RoomChangeRequest asks the facility manager to swap the room held by an
// assigned room-request line item.
type RoomChangeRequest struct {
	ID            string
	LineItemID    string
	RequesterID   string
	CurrentRoomID string
	Reason        string
	// Requested constraints for the replacement room.
	RoomTypeID string
	Capacity   int
	// Set once approved.
	NewRoomID *string
	Status    RoomChangeStatus
	CreatedAt time.Time
}

// PermissionContext exposes room-change facts to permission rules. The
// request rides on the room-request resource's requester semantics.
func (r RoomChangeRequest) PermissionContext(actorID string) *ResourceContext {
	return &ResourceContext{
		ActorID:     actorID,
		RoomRequest: &RoomRequestContext{RequesterID: r.RequesterID},
	}
}

// Approve grants the swap. The outcome carries the old/new room pair; the
// persistence collaborator owns the atomic replacement on the originating
// line item.
func (r RoomChangeRequest) Approve(newRoomID string) (RoomChangeRequest, Outcome, error) {
	if strings.TrimSpace(newRoomID) == "" {
		return r, Outcome{}, validationErr("approval requires a replacement room")
	}
	if r.Status != RoomChangePending {
		return r, Outcome{}, invalidTransition(EntityRoomChangeRequest, string(r.Status), "approve")
	}

	next := r
	next.Status = RoomChangeApproved
	next.NewRoomID = &newRoomID

	var out Outcome
	out.invalidate(EntityRoomChangeRequest, r.ID)
	out.invalidate(EntityRoomRequest, r.LineItemID)
	out.RoomSwap = &RoomSwap{
		LineItemID: r.LineItemID,
		OldRoomID:  r.CurrentRoomID,
		NewRoomID:  newRoomID,
	}
	out.notify(r.RequesterID, NotifyRoomChangeApproved, map[string]string{
		"request_id":  r.ID,
		"old_room_id": r.CurrentRoomID,
		"new_room_id": newRoomID,
	})
	return next, out, nil
}

// Reject declines the swap with a mandatory reason.
func (r RoomChangeRequest) Reject(reason string) (RoomChangeRequest, Outcome, error) {
	if strings.TrimSpace(reason) == "" {
		return r, Outcome{}, validationErr("rejection requires a reason")
	}
	if r.Status != RoomChangePending {
		return r, Outcome{}, invalidTransition(EntityRoomChangeRequest, string(r.Status), "reject")
	}

	next := r
	next.Status = RoomChangeRejected

	var out Outcome
	out.invalidate(EntityRoomChangeRequest, r.ID)
	out.notify(r.RequesterID, NotifyRoomChangeRejected, map[string]string{
		"request_id": r.ID,
		"reason":     reason,
	})
	return next, out, nil
}

// Cancel withdraws a still-pending request. Only the original requester
// may do this; the permission layer enforces the ownership check.
func (r RoomChangeRequest) Cancel() (RoomChangeRequest, Outcome, error) {
	if r.Status != RoomChangePending {
		return r, Outcome{}, invalidTransition(EntityRoomChangeRequest, string(r.Status), "cancel")
	}

	next := r
	next.Status = RoomChangeCancelledByCreator

	var out Outcome
	out.invalidate(EntityRoomChangeRequest, r.ID)
	return next, out, nil
}
