package domain

import (
	"strings"
	"time"
)

// RoomRequestItemStatus tracks one line item of a room request.
type RoomRequestItemStatus string

const (
	RoomItemPending           RoomRequestItemStatus = "PENDING"
	RoomItemAssigned          RoomRequestItemStatus = "ASSIGNED"
	RoomItemRejected          RoomRequestItemStatus = "REJECTED"
	RoomItemRevisionRequested RoomRequestItemStatus = "REVISION_REQUESTED"
	RoomItemCancelled         RoomRequestItemStatus = "CANCELLED"
)

// IsTerminal reports whether the item admits no further transition within
// this lifecycle. Changing an assigned room goes through the separate
// room-change workflow.
func (s RoomRequestItemStatus) IsTerminal() bool {
	switch s {
	case RoomItemAssigned, RoomItemRejected, RoomItemCancelled:
		return true
	}
	return false
}

// RoomRequestStatus is the aggregate status of a request header, always
// derived from its items and never set directly.
type RoomRequestStatus string

const (
	RoomRequestPending            RoomRequestStatus = "PENDING"
	RoomRequestInProgress         RoomRequestStatus = "IN_PROGRESS"
	RoomRequestPartiallyProcessed RoomRequestStatus = "PARTIALLY_PROCESSED"
	RoomRequestFullyApproved      RoomRequestStatus = "FULLY_APPROVED"
	RoomRequestFullyRejected      RoomRequestStatus = "FULLY_REJECTED"
	RoomRequestCancelledByCreator RoomRequestStatus = "CANCELLED_BY_CREATOR"
)

// RoomRequestItem is one room requirement within a request header.
type RoomRequestItem struct {
	ID             string
	HeaderID       string
	RoomTypeID     string
	Capacity       int
	RoomCount      int
	StartsAt       time.Time
	EndsAt         time.Time
	Status         RoomRequestItemStatus
	AssignedRoomID *string
	Note           *string
}

// RoomRequestHeader aggregates 1..N line items for one event.
type RoomRequestHeader struct {
	ID          string
	EventID     string
	RequesterID string
	Status      RoomRequestStatus
	Items       []RoomRequestItem
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DeriveHeaderStatus computes the aggregate header status from the multiset
// of item statuses. Cancelled items are excluded from the approved/rejected
// accounting so that a request whose remaining items were all assigned
// still reads FULLY_APPROVED.
func DeriveHeaderStatus(items []RoomRequestItem) RoomRequestStatus {
	var pending, revision, assigned, rejected, cancelled int
	for _, it := range items {
		switch it.Status {
		case RoomItemPending:
			pending++
		case RoomItemRevisionRequested:
			revision++
		case RoomItemAssigned:
			assigned++
		case RoomItemRejected:
			rejected++
		case RoomItemCancelled:
			cancelled++
		}
	}

	total := len(items)
	if total == 0 || cancelled == total {
		return RoomRequestCancelledByCreator
	}

	if pending+revision == 0 {
		// All items terminal.
		switch {
		case assigned > 0 && rejected == 0:
			return RoomRequestFullyApproved
		case rejected > 0 && assigned == 0:
			return RoomRequestFullyRejected
		default:
			return RoomRequestPartiallyProcessed
		}
	}

	if pending == total {
		return RoomRequestPending
	}
	return RoomRequestInProgress
}

func (h RoomRequestHeader) itemIndex(itemID string) int {
	for i := range h.Items {
		if h.Items[i].ID == itemID {
			return i
		}
	}
	return -1
}

// Item returns the line item with the given id.
func (h RoomRequestHeader) Item(itemID string) (RoomRequestItem, bool) {
	if i := h.itemIndex(itemID); i >= 0 {
		return h.Items[i], true
	}
	return RoomRequestItem{}, false
}

// PermissionContext exposes header-level facts to permission rules.
func (h RoomRequestHeader) PermissionContext(actorID string) *ResourceContext {
	return &ResourceContext{
		ActorID:     actorID,
		RoomRequest: &RoomRequestContext{RequesterID: h.RequesterID},
	}
}

// ItemPermissionContext exposes the facts for one line item.
func (h RoomRequestHeader) ItemPermissionContext(actorID, itemID string) *ResourceContext {
	ctx := &ResourceContext{
		ActorID:     actorID,
		RoomRequest: &RoomRequestContext{RequesterID: h.RequesterID},
	}
	if it, ok := h.Item(itemID); ok {
		ctx.RoomRequest.HasItem = true
		ctx.RoomRequest.ItemStatus = it.Status
	}
	return ctx
}

// applyItem replaces one item, re-derives the header status, and collects
// the invalidations every item transition produces: the item's header and
// the parent event's detail view.
func (h RoomRequestHeader) applyItem(i int, item RoomRequestItem) (RoomRequestHeader, Outcome) {
	next := h
	next.Items = make([]RoomRequestItem, len(h.Items))
	copy(next.Items, h.Items)
	next.Items[i] = item
	next.Status = DeriveHeaderStatus(next.Items)

	var out Outcome
	out.invalidate(EntityRoomRequest, h.ID)
	out.invalidate(EntityEvent, h.EventID)
	return next, out
}

// AssignRoom approves one pending item by assigning it a concrete room.
// Feasibility of the room is the caller's concern; the core records the id
// it was given. One room per item: the observed flows never assign more.
func (h RoomRequestHeader) AssignRoom(itemID, roomID, note string) (RoomRequestHeader, Outcome, error) {
	if strings.TrimSpace(roomID) == "" {
		return h, Outcome{}, validationErr("approval requires an assigned room")
	}
	i := h.itemIndex(itemID)
	if i < 0 {
		return h, Outcome{}, validationErr("unknown line item %q", itemID)
	}
	item := h.Items[i]
	if item.Status != RoomItemPending {
		return h, Outcome{}, invalidTransition(EntityRoomRequest, string(item.Status), "assign")
	}

	item.Status = RoomItemAssigned
	item.AssignedRoomID = &roomID
	if trimmed := strings.TrimSpace(note); trimmed != "" {
		item.Note = &trimmed
	}

	next, out := h.applyItem(i, item)
	out.notify(h.RequesterID, NotifyRoomItemAssigned, map[string]string{
		"request_id": h.ID,
		"item_id":    itemID,
		"room_id":    roomID,
	})
	return next, out, nil
}

// RejectItem rejects one pending item with a mandatory reason.
func (h RoomRequestHeader) RejectItem(itemID, reason string) (RoomRequestHeader, Outcome, error) {
	if strings.TrimSpace(reason) == "" {
		return h, Outcome{}, validationErr("rejection requires a reason")
	}
	i := h.itemIndex(itemID)
	if i < 0 {
		return h, Outcome{}, validationErr("unknown line item %q", itemID)
	}
	item := h.Items[i]
	if item.Status != RoomItemPending {
		return h, Outcome{}, invalidTransition(EntityRoomRequest, string(item.Status), "reject")
	}

	item.Status = RoomItemRejected
	reasonCopy := reason
	item.Note = &reasonCopy

	next, out := h.applyItem(i, item)
	out.notify(h.RequesterID, NotifyRoomItemRejected, map[string]string{
		"request_id": h.ID,
		"item_id":    itemID,
		"reason":     reason,
	})
	return next, out, nil
}

// RequestItemRevision sends one pending item back to the requester.
func (h RoomRequestHeader) RequestItemRevision(itemID, note string) (RoomRequestHeader, Outcome, error) {
	if strings.TrimSpace(note) == "" {
		return h, Outcome{}, validationErr("revision request requires a note to the requester")
	}
	i := h.itemIndex(itemID)
	if i < 0 {
		return h, Outcome{}, validationErr("unknown line item %q", itemID)
	}
	item := h.Items[i]
	if item.Status != RoomItemPending {
		return h, Outcome{}, invalidTransition(EntityRoomRequest, string(item.Status), "request_revision")
	}

	item.Status = RoomItemRevisionRequested
	noteCopy := note
	item.Note = &noteCopy

	next, out := h.applyItem(i, item)
	out.notify(h.RequesterID, NotifyRoomItemRevision, map[string]string{
		"request_id": h.ID,
		"item_id":    itemID,
		"note":       note,
	})
	return next, out, nil
}

// ResubmitItem returns a revision-requested item to the pending queue with
// updated requirements. Items already processed are frozen.
func (h RoomRequestHeader) ResubmitItem(itemID string, updated RoomRequestItem) (RoomRequestHeader, Outcome, error) {
	i := h.itemIndex(itemID)
	if i < 0 {
		return h, Outcome{}, validationErr("unknown line item %q", itemID)
	}
	item := h.Items[i]
	if item.Status != RoomItemRevisionRequested {
		return h, Outcome{}, invalidTransition(EntityRoomRequest, string(item.Status), "resubmit")
	}
	if updated.Capacity <= 0 || updated.RoomCount <= 0 {
		return h, Outcome{}, validationErr("resubmission requires positive capacity and room count")
	}
	if !updated.EndsAt.After(updated.StartsAt) {
		return h, Outcome{}, validationErr("resubmission requires a valid time window")
	}

	item.RoomTypeID = updated.RoomTypeID
	item.Capacity = updated.Capacity
	item.RoomCount = updated.RoomCount
	item.StartsAt = updated.StartsAt
	item.EndsAt = updated.EndsAt
	item.Status = RoomItemPending
	item.Note = nil

	next, out := h.applyItem(i, item)
	return next, out, nil
}

// CancelItem withdraws one still-unprocessed item.
func (h RoomRequestHeader) CancelItem(itemID string) (RoomRequestHeader, Outcome, error) {
	i := h.itemIndex(itemID)
	if i < 0 {
		return h, Outcome{}, validationErr("unknown line item %q", itemID)
	}
	item := h.Items[i]
	switch item.Status {
	case RoomItemPending, RoomItemRevisionRequested:
	default:
		return h, Outcome{}, invalidTransition(EntityRoomRequest, string(item.Status), "cancel")
	}

	item.Status = RoomItemCancelled
	next, out := h.applyItem(i, item)
	return next, out, nil
}

// Cancel withdraws the whole request. Legal only while no item has been
// processed; once the facility manager acted on any item the remaining
// items must be cancelled individually.
func (h RoomRequestHeader) Cancel() (RoomRequestHeader, Outcome, error) {
	for _, it := range h.Items {
		switch it.Status {
		case RoomItemPending, RoomItemRevisionRequested, RoomItemCancelled:
		default:
			return h, Outcome{}, invalidTransition(EntityRoomRequest, string(h.Status), "cancel")
		}
	}

	next := h
	next.Items = make([]RoomRequestItem, len(h.Items))
	copy(next.Items, h.Items)
	for i := range next.Items {
		if next.Items[i].Status != RoomItemCancelled {
			next.Items[i].Status = RoomItemCancelled
		}
	}
	next.Status = DeriveHeaderStatus(next.Items)

	var out Outcome
	out.invalidate(EntityRoomRequest, h.ID)
	out.invalidate(EntityEvent, h.EventID)
	return next, out, nil
}
