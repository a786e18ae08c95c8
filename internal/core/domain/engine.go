package domain

// ruleKey pairs an action with the resource it targets.
type ruleKey struct {
	Action   Action
	Resource Resource
}

// rulePredicate inspects the resource context for checks a role code alone
// cannot answer (ownership, current state, unit scope). A nil predicate
// grants unconditionally.
type rulePredicate func(actor Actor, assignment RoleAssignment, ctx *ResourceContext) bool

// PermissionEngine answers whether an actor may perform an action on a
// resource. Rules are additive across the actor's role assignments: the
// first allow wins and there are no deny rules. Unknown inputs deny.
type PermissionEngine struct {
	rules    map[RoleCode]map[ruleKey]rulePredicate
	defaults map[ruleKey]rulePredicate
}

// NewPermissionEngine builds the engine with the static per-role rule
// tables.
func NewPermissionEngine() *PermissionEngine {
	return &PermissionEngine{
		rules:    buildRoleRules(),
		defaults: buildDefaultRules(),
	}
}

// Can reports whether the actor may perform action on the resource kind,
// given the caller-supplied context facts. It never panics; every
// unmatched or malformed input resolves to false.
func (e *PermissionEngine) Can(actor Actor, action Action, resource Resource, ctx *ResourceContext) bool {
	if actor.IsAdmin() {
		// Hard short-circuit: the system administrator bypasses all rule
		// evaluation, including context predicates.
		return true
	}

	key := ruleKey{Action: action, Resource: resource}
	for _, assignment := range actor.Assignments {
		table, ok := e.rules[assignment.Role]
		if !ok {
			continue
		}
		pred, ok := table[key]
		if !ok {
			continue
		}
		if pred == nil || pred(actor, assignment, ctx) {
			return true
		}
	}

	if pred, ok := e.defaults[key]; ok {
		if pred == nil || pred(actor, RoleAssignment{}, ctx) {
			return true
		}
	}

	return false
}

// GetManagedUnit returns the executing unit of the actor's first assignment
// matching the role code. Used by unit dashboards and by rules restricted
// to "my managed unit".
func (e *PermissionEngine) GetManagedUnit(actor Actor, code RoleCode) (string, bool) {
	return actor.ManagedUnit(code)
}

// isEventCreator holds while the caller supplied event facts and the actor
// created the event.
func isEventCreator(actor Actor, _ RoleAssignment, ctx *ResourceContext) bool {
	ev := ctx.event()
	return ev != nil && ev.CreatorID != "" && ev.CreatorID == actor.ID
}

// eventEditableByCreator restricts edits to the creator while the event is
// still awaiting (or resubmittable for) board review.
func eventEditableByCreator(actor Actor, as RoleAssignment, ctx *ResourceContext) bool {
	if !isEventCreator(actor, as, ctx) {
		return false
	}
	switch ctx.event().Status {
	case EventPendingBoard, EventRevisionRequested:
		return true
	}
	return false
}

// eventSelfCancellable holds only before board approval. Cancelling an
// approved event goes through the approval-gated cancel-request path.
func eventSelfCancellable(actor Actor, as RoleAssignment, ctx *ResourceContext) bool {
	return isEventCreator(actor, as, ctx) && ctx.event().Status == EventPendingBoard
}

// eventCancelRequestable holds for the creator of an already-approved
// event.
func eventCancelRequestable(actor Actor, as RoleAssignment, ctx *ResourceContext) bool {
	return isEventCreator(actor, as, ctx) && ctx.event().Status == EventApproved
}

// eventHostedByManagedUnit ties a unit-scoped assignment to the event's
// hosting unit.
func eventHostedByManagedUnit(_ Actor, as RoleAssignment, ctx *ResourceContext) bool {
	ev := ctx.event()
	if ev == nil || as.ExecutingUnitID == nil {
		return false
	}
	return ev.HostUnitID != "" && ev.HostUnitID == *as.ExecutingUnitID
}

// isRoomRequester holds while the caller supplied room-request facts and
// the actor created the request.
func isRoomRequester(actor Actor, _ RoleAssignment, ctx *ResourceContext) bool {
	rr := ctx.roomRequest()
	return rr != nil && rr.RequesterID != "" && rr.RequesterID == actor.ID
}

// roomItemEditable freezes line items once the facility manager has
// processed them; only pending or revision-requested items may be edited,
// and only by the original requester.
func roomItemEditable(actor Actor, as RoleAssignment, ctx *ResourceContext) bool {
	if !isRoomRequester(actor, as, ctx) {
		return false
	}
	rr := ctx.roomRequest()
	if !rr.HasItem {
		return false
	}
	switch rr.ItemStatus {
	case RoomItemPending, RoomItemRevisionRequested:
		return true
	}
	return false
}

// roomChangeRequestable holds for the requester of an item that already has
// a room assigned.
func roomChangeRequestable(actor Actor, as RoleAssignment, ctx *ResourceContext) bool {
	if !isRoomRequester(actor, as, ctx) {
		return false
	}
	rr := ctx.roomRequest()
	return rr.HasItem && rr.ItemStatus == RoomItemAssigned
}

// invitationRevocable holds for the inviter while no response exists.
func invitationRevocable(actor Actor, _ RoleAssignment, ctx *ResourceContext) bool {
	inv := ctx.invitation()
	if inv == nil || inv.Revoked || inv.Responded {
		return false
	}
	return inv.InviterID != "" && inv.InviterID == actor.ID
}

// invitationRespondable holds for the invitee while no response exists.
func invitationRespondable(actor Actor, _ RoleAssignment, ctx *ResourceContext) bool {
	inv := ctx.invitation()
	if inv == nil || inv.Revoked || inv.Responded {
		return false
	}
	return inv.InviteeID != "" && inv.InviteeID == actor.ID
}

func buildRoleRules() map[RoleCode]map[ruleKey]rulePredicate {
	organizer := map[ruleKey]rulePredicate{
		{ActionView, ResourceEvent}:                 nil,
		{ActionCreate, ResourceEvent}:               nil,
		{ActionEdit, ResourceEvent}:                 eventEditableByCreator,
		{ActionSelfCancel, ResourceEvent}:           eventSelfCancellable,
		{ActionRequestCancel, ResourceEvent}:        eventCancelRequestable,
		{ActionManageParticipants, ResourceEvent}:   isEventCreator,
		{ActionCreate, ResourceEventCancelRequest}:  eventCancelRequestable,
		{ActionView, ResourceEventCancelRequest}:    nil,
		{ActionCreate, ResourceRoomRequest}:         nil,
		{ActionView, ResourceRoomRequest}:           nil,
		{ActionEdit, ResourceRoomRequest}:           roomItemEditable,
		{ActionDelete, ResourceRoomRequest}:         isRoomRequester,
		{ActionRequestRoomChange, ResourceRoomRequest}: roomChangeRequestable,
		{ActionCreate, ResourceRoomChangeRequest}:   nil,
		{ActionView, ResourceRoomChangeRequest}:     nil,
		{ActionDelete, ResourceRoomChangeRequest}:   nil,
		{ActionCreate, ResourceInvitation}:          isEventCreator,
		{ActionDelete, ResourceInvitation}:          invitationRevocable,
		{ActionView, ResourceInvitation}:            nil,
		{ActionView, ResourceRoom}:                  nil,
		{ActionView, ResourceRoomType}:              nil,
		{ActionView, ResourceEquipment}:             nil,
	}

	board := map[ruleKey]rulePredicate{
		{ActionView, ResourceEvent}:                  nil,
		{ActionApprove, ResourceEvent}:               nil,
		{ActionView, ResourceEventCancelRequest}:     nil,
		{ActionApprove, ResourceEventCancelRequest}:  nil,
		{ActionView, ResourceRoomRequest}:            nil,
	}

	facility := map[ruleKey]rulePredicate{
		{ActionView, ResourceRoomRequest}:           nil,
		{ActionApprove, ResourceRoomRequest}:        nil,
		{ActionView, ResourceRoomChangeRequest}:     nil,
		{ActionApprove, ResourceRoomChangeRequest}:  nil,
		{ActionView, ResourceEvent}:                 nil,
		{ActionView, ResourceRoom}:                  nil,
		{ActionCreate, ResourceRoom}:                nil,
		{ActionEdit, ResourceRoom}:                  nil,
		{ActionDelete, ResourceRoom}:                nil,
		{ActionView, ResourceRoomType}:              nil,
		{ActionCreate, ResourceRoomType}:            nil,
		{ActionEdit, ResourceRoomType}:              nil,
		{ActionDelete, ResourceRoomType}:            nil,
		{ActionView, ResourceEquipment}:             nil,
		{ActionCreate, ResourceEquipment}:           nil,
		{ActionEdit, ResourceEquipment}:             nil,
		{ActionDelete, ResourceEquipment}:           nil,
	}

	unitHead := map[ruleKey]rulePredicate{
		{ActionView, ResourceEvent}:    eventHostedByManagedUnit,
		{ActionView, ResourceOrgUnit}:  nil,
		{ActionView, ResourceMajor}:    nil,
		{ActionView, ResourceClass}:    nil,
		{ActionView, ResourceUser}:     nil,
	}

	participant := map[ruleKey]rulePredicate{
		{ActionView, ResourceEvent}:      nil,
		{ActionView, ResourceInvitation}: nil,
		{ActionEdit, ResourceInvitation}: invitationRespondable,
	}

	return map[RoleCode]map[ruleKey]rulePredicate{
		RoleEventOrganizer:  organizer,
		RoleBoardApprover:   board,
		RoleFacilityManager: facility,
		RoleUnitHead:        unitHead,
		RoleLecturer:        participant,
		RoleStudent:         participant,
	}
}

// buildDefaultRules holds the universal fallbacks that apply to every
// authenticated actor regardless of role.
func buildDefaultRules() map[ruleKey]rulePredicate {
	return map[ruleKey]rulePredicate{
		{ActionView, ResourceDocument}: nil,
		{ActionCreate, ResourceRating}: nil,
		{ActionEdit, ResourceRating}: func(actor Actor, _ RoleAssignment, ctx *ResourceContext) bool {
			if ctx == nil || ctx.Rating == nil {
				return false
			}
			return ctx.Rating.RaterID != "" && ctx.Rating.RaterID == actor.ID
		},
		{ActionEdit, ResourceInvitation}: invitationRespondable,
	}
}
