package domain

import (
	"strings"
	"time"
)

// EventStatus is the basic-status enumeration of an event.
type EventStatus string

const (
	EventPendingBoard      EventStatus = "PENDING_BGH"
	EventApproved          EventStatus = "APPROVED"
	EventRejected          EventStatus = "REJECTED"
	EventRevisionRequested EventStatus = "REVISION_REQUESTED"
	EventCancelRequested   EventStatus = "CANCEL_REQUESTED"
	EventCancelled         EventStatus = "CANCELLED"
	EventCompleted         EventStatus = "COMPLETED"
)

// IsTerminal reports whether the status admits no outgoing transition.
func (s EventStatus) IsTerminal() bool {
	switch s {
	case EventRejected, EventCancelled, EventCompleted:
		return true
	}
	return false
}

// Event is the snapshot of one event aggregate. Transitions are value
// methods: they validate the current state, return the next snapshot and
// the side effects the caller must execute, and never mutate the receiver.
type Event struct {
	ID         string
	Name       string
	CreatorID  string
	HostUnitID string
	Status     EventStatus
	StartsAt   time.Time
	EndsAt     time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// PermissionContext exposes the event facts permission rules inspect.
func (e Event) PermissionContext(actorID string) *ResourceContext {
	return &ResourceContext{
		ActorID: actorID,
		Event: &EventContext{
			Status:     e.Status,
			CreatorID:  e.CreatorID,
			HostUnitID: e.HostUnitID,
		},
	}
}

// Approve moves a pending event to APPROVED by board decision.
func (e Event) Approve(note string) (Event, Outcome, error) {
	if e.Status != EventPendingBoard {
		return e, Outcome{}, invalidTransition(EntityEvent, string(e.Status), "approve")
	}
	next := e
	next.Status = EventApproved

	var out Outcome
	out.invalidate(EntityEvent, e.ID)
	out.notify(e.CreatorID, NotifyEventApproved, map[string]string{
		"event_id":   e.ID,
		"event_name": e.Name,
		"note":       note,
	})
	return next, out, nil
}

// Reject moves a pending event to the terminal REJECTED state. A reason is
// required; it is relayed to the creator verbatim.
func (e Event) Reject(reason string) (Event, Outcome, error) {
	if strings.TrimSpace(reason) == "" {
		return e, Outcome{}, validationErr("rejection requires a reason")
	}
	if e.Status != EventPendingBoard {
		return e, Outcome{}, invalidTransition(EntityEvent, string(e.Status), "reject")
	}
	next := e
	next.Status = EventRejected

	var out Outcome
	out.invalidate(EntityEvent, e.ID)
	out.notify(e.CreatorID, NotifyEventRejected, map[string]string{
		"event_id":   e.ID,
		"event_name": e.Name,
		"reason":     reason,
	})
	return next, out, nil
}

// RequestRevision sends a pending event back to its creator for changes.
func (e Event) RequestRevision(note string) (Event, Outcome, error) {
	if strings.TrimSpace(note) == "" {
		return e, Outcome{}, validationErr("revision request requires a note to the creator")
	}
	if e.Status != EventPendingBoard {
		return e, Outcome{}, invalidTransition(EntityEvent, string(e.Status), "request_revision")
	}
	next := e
	next.Status = EventRevisionRequested

	var out Outcome
	out.invalidate(EntityEvent, e.ID)
	out.notify(e.CreatorID, NotifyEventRevisionRequested, map[string]string{
		"event_id":   e.ID,
		"event_name": e.Name,
		"note":       note,
	})
	return next, out, nil
}

// Resubmit returns a revision-requested event to the board queue.
func (e Event) Resubmit() (Event, Outcome, error) {
	if e.Status != EventRevisionRequested {
		return e, Outcome{}, invalidTransition(EntityEvent, string(e.Status), "resubmit")
	}
	next := e
	next.Status = EventPendingBoard

	var out Outcome
	out.invalidate(EntityEvent, e.ID)
	return next, out, nil
}

// SelfCancel cancels the event directly. Legal only before board approval;
// an approved event must go through the cancel-request path.
func (e Event) SelfCancel() (Event, Outcome, error) {
	if e.Status != EventPendingBoard {
		return e, Outcome{}, invalidTransition(EntityEvent, string(e.Status), "self_cancel")
	}
	next := e
	next.Status = EventCancelled

	var out Outcome
	out.invalidate(EntityEvent, e.ID)
	return next, out, nil
}

// MarkCancelRequested records that a board-gated cancellation request is
// now pending against the approved event.
func (e Event) MarkCancelRequested() (Event, Outcome, error) {
	if e.Status != EventApproved {
		return e, Outcome{}, invalidTransition(EntityEvent, string(e.Status), "request_cancel")
	}
	next := e
	next.Status = EventCancelRequested

	var out Outcome
	out.invalidate(EntityEvent, e.ID)
	return next, out, nil
}

// ResolveCancelRequest settles a pending cancellation request: approval
// cancels the event, rejection restores APPROVED.
func (e Event) ResolveCancelRequest(approved bool) (Event, Outcome, error) {
	if e.Status != EventCancelRequested {
		return e, Outcome{}, invalidTransition(EntityEvent, string(e.Status), "resolve_cancel_request")
	}
	next := e
	var out Outcome
	out.invalidate(EntityEvent, e.ID)
	if approved {
		next.Status = EventCancelled
		out.notify(e.CreatorID, NotifyEventCancelled, map[string]string{
			"event_id":   e.ID,
			"event_name": e.Name,
		})
	} else {
		next.Status = EventApproved
		out.notify(e.CreatorID, NotifyEventCancelRejected, map[string]string{
			"event_id":   e.ID,
			"event_name": e.Name,
		})
	}
	return next, out, nil
}

// Complete records the externally signalled end of an approved event.
// Completion is time-driven, never user-driven.
func (e Event) Complete() (Event, Outcome, error) {
	if e.Status != EventApproved {
		return e, Outcome{}, invalidTransition(EntityEvent, string(e.Status), "complete")
	}
	next := e
	next.Status = EventCompleted

	var out Outcome
	out.invalidate(EntityEvent, e.ID)
	return next, out, nil
}

// EventCancelRequestStatus tracks a board-gated cancellation request.
type EventCancelRequestStatus string

const (
	CancelRequestPending  EventCancelRequestStatus = "PENDING"
	CancelRequestApproved EventCancelRequestStatus = "APPROVED"
	CancelRequestRejected EventCancelRequestStatus = "REJECTED"
)

// EventCancelRequest asks the board to cancel an already-approved event.
type EventCancelRequest struct {
	ID          string
	EventID     string
	RequesterID string
	Reason      string
	Status      EventCancelRequestStatus
	CreatedAt   time.Time
	ResolvedAt  *time.Time
}

// Resolve settles the request together with its event. The caller persists
// both snapshots under the same optimistic-concurrency guard.
func (r EventCancelRequest) Resolve(ev Event, approved bool, at time.Time) (EventCancelRequest, Event, Outcome, error) {
	if r.Status != CancelRequestPending {
		return r, ev, Outcome{}, invalidTransition(EntityEventCancelRequest, string(r.Status), "resolve")
	}
	nextEvent, out, err := ev.ResolveCancelRequest(approved)
	if err != nil {
		return r, ev, Outcome{}, err
	}

	next := r
	next.ResolvedAt = &at
	if approved {
		next.Status = CancelRequestApproved
	} else {
		next.Status = CancelRequestRejected
	}
	out.invalidate(EntityEventCancelRequest, r.ID)
	return next, nextEvent, out, nil
}
