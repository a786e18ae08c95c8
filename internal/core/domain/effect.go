package domain

// EntityKind tags the aggregate a reference or transition belongs to.
type EntityKind string

const (
	EntityEvent              EntityKind = "event"
	EntityRoomRequest        EntityKind = "room_request"
	EntityRoomChangeRequest  EntityKind = "room_change_request"
	EntityEventCancelRequest EntityKind = "event_cancel_request"
	EntityInvitation         EntityKind = "invitation"
	EntityRating             EntityKind = "rating"
)

// EntityRef identifies one entity whose cached views became stale after a
// transition.
type EntityRef struct {
	Kind EntityKind
	ID   string
}

// NotificationTemplate selects the message rendered for a recipient.
type NotificationTemplate string

const (
	NotifyEventApproved          NotificationTemplate = "event_approved"
	NotifyEventRejected          NotificationTemplate = "event_rejected"
	NotifyEventRevisionRequested NotificationTemplate = "event_revision_requested"
	NotifyEventCancelRequested   NotificationTemplate = "event_cancel_requested"
	NotifyEventCancelled         NotificationTemplate = "event_cancelled"
	NotifyEventCancelRejected    NotificationTemplate = "event_cancel_rejected"
	NotifyRoomItemAssigned       NotificationTemplate = "room_item_assigned"
	NotifyRoomItemRejected       NotificationTemplate = "room_item_rejected"
	NotifyRoomItemRevision       NotificationTemplate = "room_item_revision_requested"
	NotifyRoomChangeApproved     NotificationTemplate = "room_change_approved"
	NotifyRoomChangeRejected     NotificationTemplate = "room_change_rejected"
	NotifyInvitationCreated      NotificationTemplate = "invitation_created"
	NotifyInvitationResponded    NotificationTemplate = "invitation_responded"
	NotifyInvitationRevoked      NotificationTemplate = "invitation_revoked"
)

// Notification instructs the caller to tell one recipient about the outcome
// of a transition. Delivery is fire-and-forget and owned by the caller.
type Notification struct {
	RecipientID string
	Template    NotificationTemplate
	Context     map[string]string
}

// RoomSwap instructs the caller to atomically replace the room held by a
// room-request line item. The swap itself is owned by the persistence
// collaborator; the core only supplies the ids.
type RoomSwap struct {
	LineItemID string
	OldRoomID  string
	NewRoomID  string
}

// Outcome is the side-effect list produced by a transition: which cached
// views to refresh, who to notify, and whether a room swap must happen.
// Transitions never execute effects themselves.
type Outcome struct {
	Invalidations []EntityRef
	Notifications []Notification
	RoomSwap      *RoomSwap
}

func (o *Outcome) invalidate(kind EntityKind, id string) {
	o.Invalidations = append(o.Invalidations, EntityRef{Kind: kind, ID: id})
}

func (o *Outcome) notify(recipientID string, tpl NotificationTemplate, ctx map[string]string) {
	if recipientID == "" {
		return
	}
	o.Notifications = append(o.Notifications, Notification{RecipientID: recipientID, Template: tpl, Context: ctx})
}
