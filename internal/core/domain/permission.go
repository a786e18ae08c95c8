package domain

// Action is the closed set of operations the permission engine evaluates.
type Action string

const (
	ActionView               Action = "view"
	ActionCreate             Action = "create"
	ActionEdit               Action = "edit"
	ActionDelete             Action = "delete"
	ActionApprove            Action = "approve"
	ActionManageParticipants Action = "manage_participants"
	ActionRequestCancel      Action = "request_cancel"
	ActionRequestRoomChange  Action = "request_room_change"
	ActionSelfCancel         Action = "self_cancel"
)

// Resource is the closed set of resource kinds permissions apply to.
type Resource string

const (
	ResourceEvent              Resource = "event"
	ResourceRoomRequest        Resource = "room_request"
	ResourceEventCancelRequest Resource = "event_cancel_request"
	ResourceRoomChangeRequest  Resource = "room_change_request"
	ResourceRoom               Resource = "room"
	ResourceEquipment          Resource = "equipment"
	ResourceRoomType           Resource = "room_type"
	ResourceUser               Resource = "user"
	ResourceSystemRole         Resource = "system_role"
	ResourceRoleAssignment     Resource = "user_role_assignment"
	ResourceOrgUnit            Resource = "org_unit"
	ResourceMajor              Resource = "major"
	ResourceClass              Resource = "class"
	ResourceDocument           Resource = "document"
	ResourceInvitation         Resource = "invitation"
	ResourceRating             Resource = "rating"
)

// AllActions and AllResources enumerate the closed sets, used by callers
// that need to sweep the full permission space (admin override tests,
// capability listings for the UI).
func AllActions() []Action {
	return []Action{
		ActionView, ActionCreate, ActionEdit, ActionDelete, ActionApprove,
		ActionManageParticipants, ActionRequestCancel, ActionRequestRoomChange,
		ActionSelfCancel,
	}
}

func AllResources() []Resource {
	return []Resource{
		ResourceEvent, ResourceRoomRequest, ResourceEventCancelRequest,
		ResourceRoomChangeRequest, ResourceRoom, ResourceEquipment,
		ResourceRoomType, ResourceUser, ResourceSystemRole,
		ResourceRoleAssignment, ResourceOrgUnit, ResourceMajor, ResourceClass,
		ResourceDocument, ResourceInvitation, ResourceRating,
	}
}

// EventContext carries the facts fine-grained event rules inspect.
type EventContext struct {
	Status     EventStatus
	CreatorID  string
	HostUnitID string
}

// RoomRequestContext carries the facts fine-grained room-request rules
// inspect. ItemStatus is set when the check targets a single line item.
type RoomRequestContext struct {
	RequesterID string
	ItemStatus  RoomRequestItemStatus
	HasItem     bool
}

// InvitationContext carries the facts invitation rules inspect.
type InvitationContext struct {
	InviterID string
	InviteeID string
	Responded bool
	Revoked   bool
}

// RatingContext carries the facts rating rules inspect.
type RatingContext struct {
	RaterID string
}

// ResourceContext is the structured per-resource fact bundle passed to Can.
// Exactly the field matching the resource kind is set; a nil context means
// no facts are available and context-dependent rules deny.
type ResourceContext struct {
	ActorID     string
	Event       *EventContext
	RoomRequest *RoomRequestContext
	Invitation  *InvitationContext
	Rating      *RatingContext
}

func (c *ResourceContext) event() *EventContext {
	if c == nil {
		return nil
	}
	return c.Event
}

func (c *ResourceContext) roomRequest() *RoomRequestContext {
	if c == nil {
		return nil
	}
	return c.RoomRequest
}

func (c *ResourceContext) invitation() *InvitationContext {
	if c == nil {
		return nil
	}
	return c.Invitation
}
