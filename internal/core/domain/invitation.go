package domain

import (
	"strings"
	"time"
)

// Invitation invites one person to an event. The response is a tri-state:
// nil while pending, then accepted or declined exactly once. Revocation by
// the inviter is kept as a distinct terminal outcome for audit instead of
// deleting the record.
type Invitation struct {
	ID            string
	EventID       string
	InviterID     string
	InviteeID     string
	Accepted      *bool
	DeclineReason *string
	RespondedAt   *time.Time
	RevokedAt     *time.Time
	CreatedAt     time.Time
}

// Pending reports whether the invitation still awaits a response.
func (i Invitation) Pending() bool {
	return i.Accepted == nil && i.RevokedAt == nil
}

// PermissionContext exposes invitation facts to permission rules.
func (i Invitation) PermissionContext(actorID string) *ResourceContext {
	return &ResourceContext{
		ActorID: actorID,
		Invitation: &InvitationContext{
			InviterID: i.InviterID,
			InviteeID: i.InviteeID,
			Responded: i.Accepted != nil,
			Revoked:   i.RevokedAt != nil,
		},
	}
}

// Respond records the invitee's answer. Responding twice, or responding to
// a revoked invitation, is an invalid transition. A decline may carry a
// reason; an acceptance may not.
func (i Invitation) Respond(accepted bool, declineReason string, at time.Time) (Invitation, Outcome, error) {
	if !i.Pending() {
		return i, Outcome{}, invalidTransition(EntityInvitation, i.state(), "respond")
	}
	reason := strings.TrimSpace(declineReason)
	if accepted && reason != "" {
		return i, Outcome{}, validationErr("acceptance cannot carry a decline reason")
	}

	next := i
	next.Accepted = &accepted
	next.RespondedAt = &at
	if !accepted && reason != "" {
		next.DeclineReason = &reason
	}

	var out Outcome
	out.invalidate(EntityInvitation, i.ID)
	out.invalidate(EntityEvent, i.EventID)
	out.notify(i.InviterID, NotifyInvitationResponded, map[string]string{
		"invitation_id": i.ID,
		"event_id":      i.EventID,
		"accepted":      boolString(accepted),
	})
	return next, out, nil
}

// Revoke withdraws a pending invitation. Forbidden once a response exists.
func (i Invitation) Revoke(at time.Time) (Invitation, Outcome, error) {
	if !i.Pending() {
		return i, Outcome{}, invalidTransition(EntityInvitation, i.state(), "revoke")
	}

	next := i
	next.RevokedAt = &at

	var out Outcome
	out.invalidate(EntityInvitation, i.ID)
	out.invalidate(EntityEvent, i.EventID)
	out.notify(i.InviteeID, NotifyInvitationRevoked, map[string]string{
		"invitation_id": i.ID,
		"event_id":      i.EventID,
	})
	return next, out, nil
}

func (i Invitation) state() string {
	switch {
	case i.RevokedAt != nil:
		return "revoked"
	case i.Accepted == nil:
		return "pending"
	case *i.Accepted:
		return "accepted"
	default:
		return "declined"
	}
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
