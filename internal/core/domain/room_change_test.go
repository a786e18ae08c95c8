package domain

import (
	"errors"
	"testing"
)

func pendingChange() RoomChangeRequest {
	return RoomChangeRequest{
		ID:            "rc-1",
		LineItemID:    "item-1",
		RequesterID:   "req-1",
		CurrentRoomID: "room-101",
		Reason:        "capacity grew",
		RoomTypeID:    "rt-1",
		Capacity:      120,
		Status:        RoomChangePending,
	}
}

func TestRoomChangeApprove(t *testing.T) {
	rc := pendingChange()

	next, out, err := rc.Approve("room-201")
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if next.Status != RoomChangeApproved {
		t.Errorf("status = %s", next.Status)
	}
	if next.NewRoomID == nil || *next.NewRoomID != "room-201" {
		t.Error("new room must be recorded")
	}
	if out.RoomSwap == nil {
		t.Fatal("approval must carry the room swap")
	}
	if out.RoomSwap.LineItemID != "item-1" || out.RoomSwap.OldRoomID != "room-101" || out.RoomSwap.NewRoomID != "room-201" {
		t.Errorf("unexpected swap: %+v", out.RoomSwap)
	}
	if len(out.Notifications) != 1 || out.Notifications[0].Template != NotifyRoomChangeApproved {
		t.Errorf("unexpected notifications: %+v", out.Notifications)
	}

	if _, _, err := rc.Approve("  "); !errors.Is(err, ErrValidation) {
		t.Error("approval without a replacement room must fail")
	}
	if _, _, err := next.Approve("room-301"); !errors.Is(err, ErrInvalidTransition) {
		t.Error("approving a settled request must fail")
	}
}

func TestRoomChangeReject(t *testing.T) {
	rc := pendingChange()

	if _, _, err := rc.Reject(""); !errors.Is(err, ErrValidation) {
		t.Error("rejection requires a reason")
	}

	next, out, err := rc.Reject("room reserved for exams")
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if next.Status != RoomChangeRejected {
		t.Errorf("status = %s", next.Status)
	}
	if out.RoomSwap != nil {
		t.Error("rejection must not carry a swap")
	}
	if next.NewRoomID != nil {
		t.Error("rejection must not set a new room")
	}
}

func TestRoomChangeCancel(t *testing.T) {
	rc := pendingChange()

	next, _, err := rc.Cancel()
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if next.Status != RoomChangeCancelledByCreator {
		t.Errorf("status = %s", next.Status)
	}

	if _, _, err := next.Cancel(); !errors.Is(err, ErrInvalidTransition) {
		t.Error("cancelling twice must fail")
	}

	approved, _, _ := rc.Approve("room-201")
	if _, _, err := approved.Cancel(); !errors.Is(err, ErrInvalidTransition) {
		t.Error("cancelling an approved request must fail")
	}
}
