package domain

import (
	"errors"
	"testing"
	"time"
)

func pendingInvitation() Invitation {
	return Invitation{
		ID:        "inv-1",
		EventID:   "ev-1",
		InviterID: "organizer-1",
		InviteeID: "student-1",
	}
}

func TestInvitationAccept(t *testing.T) {
	inv := pendingInvitation()
	at := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	next, out, err := inv.Respond(true, "", at)
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if next.Accepted == nil || !*next.Accepted {
		t.Error("acceptance must be recorded")
	}
	if next.RespondedAt == nil || !next.RespondedAt.Equal(at) {
		t.Error("response time must be recorded")
	}
	if next.Pending() {
		t.Error("responded invitation is no longer pending")
	}
	if out.Notifications[0].RecipientID != "organizer-1" {
		t.Error("the inviter is notified of the response")
	}
	if out.Notifications[0].Context["accepted"] != "true" {
		t.Error("notification must carry the decision")
	}
}

func TestInvitationDeclineWithReason(t *testing.T) {
	inv := pendingInvitation()
	at := time.Now().UTC()

	next, _, err := inv.Respond(false, "time clash", at)
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if next.Accepted == nil || *next.Accepted {
		t.Error("decline must be recorded")
	}
	if next.DeclineReason == nil || *next.DeclineReason != "time clash" {
		t.Error("decline reason must be recorded")
	}
}

func TestInvitationAcceptCannotCarryDeclineReason(t *testing.T) {
	inv := pendingInvitation()
	if _, _, err := inv.Respond(true, "but actually", time.Now()); !errors.Is(err, ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

func TestInvitationRespondExactlyOnce(t *testing.T) {
	inv := pendingInvitation()
	at := time.Now().UTC()

	first, _, err := inv.Respond(true, "", at)
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if _, _, err := first.Respond(false, "changed my mind", at); !errors.Is(err, ErrInvalidTransition) {
		t.Error("second response must be an invalid transition")
	}
}

func TestInvitationRevoke(t *testing.T) {
	inv := pendingInvitation()
	at := time.Now().UTC()

	revoked, out, err := inv.Revoke(at)
	if err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if revoked.RevokedAt == nil {
		t.Error("revocation must be recorded, not deleted")
	}
	if revoked.Pending() {
		t.Error("revoked invitation is not pending")
	}
	if out.Notifications[0].RecipientID != "student-1" {
		t.Error("the invitee is notified of the revocation")
	}

	if _, _, err := revoked.Respond(true, "", at); !errors.Is(err, ErrInvalidTransition) {
		t.Error("responding to a revoked invitation must fail")
	}
	if _, _, err := revoked.Revoke(at); !errors.Is(err, ErrInvalidTransition) {
		t.Error("revoking twice must fail")
	}

	answered, _, _ := inv.Respond(true, "", at)
	if _, _, err := answered.Revoke(at); !errors.Is(err, ErrInvalidTransition) {
		t.Error("revoking an answered invitation must fail")
	}
}
