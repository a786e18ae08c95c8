package domain

import "testing"

func strPtr(s string) *string { return &s }

func organizerActor(id string, unitID string) Actor {
	return Actor{
		ID: id,
		Assignments: []RoleAssignment{
			{Role: RoleEventOrganizer, ExecutingUnitID: strPtr(unitID)},
		},
	}
}

func TestAdminOverridesEveryActionResourcePair(t *testing.T) {
	engine := NewPermissionEngine()
	admin := Actor{ID: "admin-1", Assignments: []RoleAssignment{{Role: RoleAdmin}}}

	for _, action := range AllActions() {
		for _, resource := range AllResources() {
			if !engine.Can(admin, action, resource, nil) {
				t.Errorf("admin denied %s on %s", action, resource)
			}
		}
	}
}

func TestUnknownRoleAndUnknownPairsDeny(t *testing.T) {
	engine := NewPermissionEngine()

	ghost := Actor{ID: "u-1", Assignments: []RoleAssignment{{Role: RoleCode("MYSTERY_ROLE")}}}
	if engine.Can(ghost, ActionCreate, ResourceEvent, nil) {
		t.Error("unknown role should deny")
	}

	student := Actor{ID: "u-2", Assignments: []RoleAssignment{{Role: RoleStudent}}}
	if engine.Can(student, ActionApprove, ResourceEvent, nil) {
		t.Error("student may not approve events")
	}
	if engine.Can(student, ActionDelete, ResourceRoom, nil) {
		t.Error("student may not delete rooms")
	}

	nobody := Actor{ID: "u-3"}
	if engine.Can(nobody, ActionCreate, ResourceEvent, nil) {
		t.Error("actor without assignments should deny")
	}
}

func TestFirstAllowWinsAcrossAssignments(t *testing.T) {
	engine := NewPermissionEngine()

	// Student alone cannot create events; adding the organizer role grants
	// it because rules are additive.
	actor := Actor{
		ID: "u-1",
		Assignments: []RoleAssignment{
			{Role: RoleStudent},
			{Role: RoleEventOrganizer, ExecutingUnitID: strPtr("unit-9")},
		},
	}
	if !engine.Can(actor, ActionCreate, ResourceEvent, nil) {
		t.Error("organizer assignment should grant event creation")
	}
}

func TestEventEditRestrictedToCreatorAndState(t *testing.T) {
	engine := NewPermissionEngine()
	creator := organizerActor("creator-1", "unit-1")
	other := organizerActor("other-2", "unit-1")

	cases := []struct {
		name   string
		actor  Actor
		status EventStatus
		want   bool
	}{
		{"creator pending", creator, EventPendingBoard, true},
		{"creator revision requested", creator, EventRevisionRequested, true},
		{"creator approved", creator, EventApproved, false},
		{"creator rejected", creator, EventRejected, false},
		{"non-creator pending", other, EventPendingBoard, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ev := Event{ID: "ev-1", CreatorID: "creator-1", HostUnitID: "unit-1", Status: tc.status}
			got := engine.Can(tc.actor, ActionEdit, ResourceEvent, ev.PermissionContext(tc.actor.ID))
			if got != tc.want {
				t.Errorf("edit event in %s as %s: got %v want %v", tc.status, tc.actor.ID, got, tc.want)
			}
		})
	}
}

func TestSelfCancelOnlyBeforeApproval(t *testing.T) {
	engine := NewPermissionEngine()
	creator := organizerActor("creator-1", "unit-1")

	pending := Event{ID: "ev-1", CreatorID: "creator-1", Status: EventPendingBoard}
	if !engine.Can(creator, ActionSelfCancel, ResourceEvent, pending.PermissionContext(creator.ID)) {
		t.Error("creator should self-cancel a pending event")
	}

	approved := Event{ID: "ev-1", CreatorID: "creator-1", Status: EventApproved}
	if engine.Can(creator, ActionSelfCancel, ResourceEvent, approved.PermissionContext(creator.ID)) {
		t.Error("self-cancel of an approved event must be denied")
	}
	if !engine.Can(creator, ActionRequestCancel, ResourceEvent, approved.PermissionContext(creator.ID)) {
		t.Error("creator should be able to request cancellation of an approved event")
	}
}

func TestUnitHeadViewsOnlyManagedUnitEvents(t *testing.T) {
	engine := NewPermissionEngine()
	head := Actor{
		ID: "head-1",
		Assignments: []RoleAssignment{
			{Role: RoleUnitHead, ExecutingUnitID: strPtr("unit-7")},
		},
	}

	own := Event{ID: "ev-1", CreatorID: "x", HostUnitID: "unit-7", Status: EventApproved}
	if !engine.Can(head, ActionView, ResourceEvent, own.PermissionContext(head.ID)) {
		t.Error("unit head should view events hosted by the managed unit")
	}

	foreign := Event{ID: "ev-2", CreatorID: "x", HostUnitID: "unit-8", Status: EventApproved}
	if engine.Can(head, ActionView, ResourceEvent, foreign.PermissionContext(head.ID)) {
		t.Error("unit head must not view events of other units")
	}

	if engine.Can(head, ActionView, ResourceEvent, nil) {
		t.Error("unit head view without context facts must deny")
	}
}

func TestRoomItemEditFrozenOnceProcessed(t *testing.T) {
	engine := NewPermissionEngine()
	requester := organizerActor("req-1", "unit-1")

	header := RoomRequestHeader{
		ID:          "rr-1",
		EventID:     "ev-1",
		RequesterID: "req-1",
		Items: []RoomRequestItem{
			{ID: "item-1", Status: RoomItemPending},
			{ID: "item-2", Status: RoomItemAssigned, AssignedRoomID: strPtr("room-1")},
		},
	}

	if !engine.Can(requester, ActionEdit, ResourceRoomRequest, header.ItemPermissionContext(requester.ID, "item-1")) {
		t.Error("requester should edit a pending item")
	}
	if engine.Can(requester, ActionEdit, ResourceRoomRequest, header.ItemPermissionContext(requester.ID, "item-2")) {
		t.Error("assigned item must be frozen for edits")
	}
	if !engine.Can(requester, ActionRequestRoomChange, ResourceRoomRequest, header.ItemPermissionContext(requester.ID, "item-2")) {
		t.Error("assigned item should allow a room-change request")
	}
	if engine.Can(requester, ActionRequestRoomChange, ResourceRoomRequest, header.ItemPermissionContext(requester.ID, "item-1")) {
		t.Error("pending item must not allow a room-change request")
	}
}

func TestInvitationContextPredicates(t *testing.T) {
	engine := NewPermissionEngine()
	inviter := organizerActor("inviter-1", "unit-1")
	invitee := Actor{ID: "invitee-1", Assignments: []RoleAssignment{{Role: RoleStudent}}}

	pending := Invitation{ID: "inv-1", EventID: "ev-1", InviterID: "inviter-1", InviteeID: "invitee-1"}

	if !engine.Can(inviter, ActionDelete, ResourceInvitation, pending.PermissionContext(inviter.ID)) {
		t.Error("inviter should revoke a pending invitation")
	}
	if !engine.Can(invitee, ActionEdit, ResourceInvitation, pending.PermissionContext(invitee.ID)) {
		t.Error("invitee should respond to a pending invitation")
	}
	if engine.Can(invitee, ActionDelete, ResourceInvitation, pending.PermissionContext(invitee.ID)) {
		t.Error("invitee must not revoke")
	}

	accepted := true
	responded := pending
	responded.Accepted = &accepted
	if engine.Can(invitee, ActionEdit, ResourceInvitation, responded.PermissionContext(invitee.ID)) {
		t.Error("settled invitation must not be respondable")
	}
	if engine.Can(inviter, ActionDelete, ResourceInvitation, responded.PermissionContext(inviter.ID)) {
		t.Error("settled invitation must not be revocable")
	}
}

func TestDefaultRulesApplyToEveryAuthenticatedActor(t *testing.T) {
	engine := NewPermissionEngine()
	student := Actor{ID: "u-1", Assignments: []RoleAssignment{{Role: RoleStudent}}}

	if !engine.Can(student, ActionView, ResourceDocument, nil) {
		t.Error("every actor should view documents")
	}
	if !engine.Can(student, ActionCreate, ResourceRating, nil) {
		t.Error("every actor should be able to create ratings; the window check is separate")
	}

	own := &ResourceContext{ActorID: "u-1", Rating: &RatingContext{RaterID: "u-1"}}
	if !engine.Can(student, ActionEdit, ResourceRating, own) {
		t.Error("rater should edit the own rating")
	}
	foreign := &ResourceContext{ActorID: "u-1", Rating: &RatingContext{RaterID: "other"}}
	if engine.Can(student, ActionEdit, ResourceRating, foreign) {
		t.Error("editing a foreign rating must deny")
	}
}

func TestGetManagedUnit(t *testing.T) {
	engine := NewPermissionEngine()

	head := Actor{
		ID: "head-1",
		Assignments: []RoleAssignment{
			{Role: RoleStudent},
			{Role: RoleUnitHead, ExecutingUnitID: strPtr("unit-3")},
		},
	}

	unit, ok := engine.GetManagedUnit(head, RoleUnitHead)
	if !ok || unit != "unit-3" {
		t.Errorf("GetManagedUnit = %q, %v; want unit-3, true", unit, ok)
	}

	if _, ok := engine.GetManagedUnit(head, RoleEventOrganizer); ok {
		t.Error("no organizer assignment should yield no managed unit")
	}

	global := Actor{ID: "x", Assignments: []RoleAssignment{{Role: RoleUnitHead}}}
	if _, ok := engine.GetManagedUnit(global, RoleUnitHead); ok {
		t.Error("assignment without executing unit should yield no managed unit")
	}
}
