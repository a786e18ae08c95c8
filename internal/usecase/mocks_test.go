package usecase

import (
	"context"

	"github.com/trannguyensonthanh/ttcs-event-service/internal/core/domain"
	"github.com/trannguyensonthanh/ttcs-event-service/internal/core/port"
	"github.com/trannguyensonthanh/ttcs-event-service/internal/repository"
)

// Hand-rolled in-memory repositories shared by the service tests.

type eventRepoMock struct {
	events    map[string]domain.Event
	createErr error
	updateErr error
}

func newEventRepoMock(events ...domain.Event) *eventRepoMock {
	m := &eventRepoMock{events: make(map[string]domain.Event)}
	for _, ev := range events {
		m.events[ev.ID] = ev
	}
	return m
}

func (m *eventRepoMock) Create(_ context.Context, ev domain.Event) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.events[ev.ID] = ev
	return nil
}

func (m *eventRepoMock) GetByID(_ context.Context, id string) (*domain.Event, error) {
	if ev, ok := m.events[id]; ok {
		return &ev, nil
	}
	return nil, repository.ErrNotFound
}

func (m *eventRepoMock) List(_ context.Context, filter port.EventFilter) ([]domain.Event, error) {
	out := make([]domain.Event, 0, len(m.events))
	for _, ev := range m.events {
		if filter.Status != "" && ev.Status != filter.Status {
			continue
		}
		if filter.HostUnitID != "" && ev.HostUnitID != filter.HostUnitID {
			continue
		}
		if filter.CreatorID != "" && ev.CreatorID != filter.CreatorID {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

func (m *eventRepoMock) UpdateStatus(_ context.Context, ev domain.Event, expected domain.EventStatus) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	stored, ok := m.events[ev.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.Status != expected {
		return repository.ErrConflict
	}
	m.events[ev.ID] = ev
	return nil
}

// cancelRepoMock writes the cancel request and its event through the
// shared event mock so both rows land together or not at all.
type cancelRepoMock struct {
	requests map[string]domain.EventCancelRequest
	events   *eventRepoMock
}

func newCancelRepoMock(events *eventRepoMock) *cancelRepoMock {
	return &cancelRepoMock{requests: make(map[string]domain.EventCancelRequest), events: events}
}

func (m *cancelRepoMock) GetByID(_ context.Context, id string) (*domain.EventCancelRequest, error) {
	if req, ok := m.requests[id]; ok {
		return &req, nil
	}
	return nil, repository.ErrNotFound
}

func (m *cancelRepoMock) GetPendingByEvent(_ context.Context, eventID string) (*domain.EventCancelRequest, error) {
	for _, req := range m.requests {
		if req.EventID == eventID && req.Status == domain.CancelRequestPending {
			r := req
			return &r, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *cancelRepoMock) OpenWithEvent(ctx context.Context, req domain.EventCancelRequest, ev domain.Event, expected domain.EventStatus) error {
	if err := m.events.UpdateStatus(ctx, ev, expected); err != nil {
		return err
	}
	m.requests[req.ID] = req
	return nil
}

func (m *cancelRepoMock) ResolveWithEvent(ctx context.Context, req domain.EventCancelRequest, expectedReq domain.EventCancelRequestStatus, ev domain.Event, expectedEv domain.EventStatus) error {
	stored, ok := m.requests[req.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.Status != expectedReq {
		return repository.ErrConflict
	}
	if err := m.events.UpdateStatus(ctx, ev, expectedEv); err != nil {
		return err
	}
	m.requests[req.ID] = req
	return nil
}

type roomRequestRepoMock struct {
	headers map[string]domain.RoomRequestHeader
	swapErr error
}

func newRoomRequestRepoMock(headers ...domain.RoomRequestHeader) *roomRequestRepoMock {
	m := &roomRequestRepoMock{headers: make(map[string]domain.RoomRequestHeader)}
	for _, h := range headers {
		m.headers[h.ID] = h
	}
	return m
}

func (m *roomRequestRepoMock) CreateHeader(_ context.Context, header domain.RoomRequestHeader) error {
	m.headers[header.ID] = header
	return nil
}

func (m *roomRequestRepoMock) GetHeader(_ context.Context, id string) (*domain.RoomRequestHeader, error) {
	if h, ok := m.headers[id]; ok {
		return &h, nil
	}
	return nil, repository.ErrNotFound
}

func (m *roomRequestRepoMock) GetHeaderByItem(_ context.Context, itemID string) (*domain.RoomRequestHeader, error) {
	for _, h := range m.headers {
		for _, it := range h.Items {
			if it.ID == itemID {
				header := h
				return &header, nil
			}
		}
	}
	return nil, repository.ErrNotFound
}

func (m *roomRequestRepoMock) ListByEvent(_ context.Context, eventID string) ([]domain.RoomRequestHeader, error) {
	out := make([]domain.RoomRequestHeader, 0)
	for _, h := range m.headers {
		if h.EventID == eventID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (m *roomRequestRepoMock) UpdateItem(_ context.Context, header domain.RoomRequestHeader, item domain.RoomRequestItem, expected domain.RoomRequestItemStatus) error {
	stored, ok := m.headers[header.ID]
	if !ok {
		return repository.ErrNotFound
	}
	for _, it := range stored.Items {
		if it.ID == item.ID {
			if it.Status != expected {
				return repository.ErrConflict
			}
			m.headers[header.ID] = header
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *roomRequestRepoMock) UpdateAllItems(_ context.Context, header domain.RoomRequestHeader, expected domain.RoomRequestStatus) error {
	stored, ok := m.headers[header.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.Status != expected {
		return repository.ErrConflict
	}
	m.headers[header.ID] = header
	return nil
}

func (m *roomRequestRepoMock) swapRoom(swap domain.RoomSwap) error {
	if m.swapErr != nil {
		return m.swapErr
	}
	for id, h := range m.headers {
		for i, it := range h.Items {
			if it.ID != swap.LineItemID {
				continue
			}
			if it.Status != domain.RoomItemAssigned || it.AssignedRoomID == nil || *it.AssignedRoomID != swap.OldRoomID {
				return repository.ErrConflict
			}
			room := swap.NewRoomID
			h.Items[i].AssignedRoomID = &room
			m.headers[id] = h
			return nil
		}
	}
	return repository.ErrNotFound
}

// roomChangeRepoMock swaps the line item through the shared room-request
// mock so the approval and the swap land together or not at all.
type roomChangeRepoMock struct {
	requests map[string]domain.RoomChangeRequest
	items    *roomRequestRepoMock
}

func newRoomChangeRepoMock(items *roomRequestRepoMock, requests ...domain.RoomChangeRequest) *roomChangeRepoMock {
	m := &roomChangeRepoMock{requests: make(map[string]domain.RoomChangeRequest), items: items}
	for _, r := range requests {
		m.requests[r.ID] = r
	}
	return m
}

func (m *roomChangeRepoMock) Create(_ context.Context, req domain.RoomChangeRequest) error {
	m.requests[req.ID] = req
	return nil
}

func (m *roomChangeRepoMock) GetByID(_ context.Context, id string) (*domain.RoomChangeRequest, error) {
	if r, ok := m.requests[id]; ok {
		return &r, nil
	}
	return nil, repository.ErrNotFound
}

func (m *roomChangeRepoMock) UpdateStatus(_ context.Context, req domain.RoomChangeRequest, expected domain.RoomChangeStatus) error {
	stored, ok := m.requests[req.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.Status != expected {
		return repository.ErrConflict
	}
	m.requests[req.ID] = req
	return nil
}

func (m *roomChangeRepoMock) Approve(_ context.Context, req domain.RoomChangeRequest, expected domain.RoomChangeStatus, swap domain.RoomSwap) error {
	stored, ok := m.requests[req.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.Status != expected {
		return repository.ErrConflict
	}
	if err := m.items.swapRoom(swap); err != nil {
		return err
	}
	m.requests[req.ID] = req
	return nil
}

type invitationRepoMock struct {
	invitations map[string]domain.Invitation
}

func newInvitationRepoMock(invitations ...domain.Invitation) *invitationRepoMock {
	m := &invitationRepoMock{invitations: make(map[string]domain.Invitation)}
	for _, inv := range invitations {
		m.invitations[inv.ID] = inv
	}
	return m
}

func (m *invitationRepoMock) Create(_ context.Context, inv domain.Invitation) error {
	m.invitations[inv.ID] = inv
	return nil
}

func (m *invitationRepoMock) GetByID(_ context.Context, id string) (*domain.Invitation, error) {
	if inv, ok := m.invitations[id]; ok {
		return &inv, nil
	}
	return nil, repository.ErrNotFound
}

func (m *invitationRepoMock) ListByEvent(_ context.Context, eventID string) ([]domain.Invitation, error) {
	out := make([]domain.Invitation, 0)
	for _, inv := range m.invitations {
		if inv.EventID == eventID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (m *invitationRepoMock) GetByEventAndInvitee(_ context.Context, eventID, inviteeID string) (*domain.Invitation, error) {
	for _, inv := range m.invitations {
		if inv.EventID == eventID && inv.InviteeID == inviteeID {
			i := inv
			return &i, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *invitationRepoMock) Update(_ context.Context, inv domain.Invitation) error {
	stored, ok := m.invitations[inv.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.Accepted != nil || stored.RevokedAt != nil {
		return repository.ErrConflict
	}
	m.invitations[inv.ID] = inv
	return nil
}

type ratingRepoMock struct {
	ratings map[string]domain.Rating
}

func newRatingRepoMock(ratings ...domain.Rating) *ratingRepoMock {
	m := &ratingRepoMock{ratings: make(map[string]domain.Rating)}
	for _, r := range ratings {
		m.ratings[r.ID] = r
	}
	return m
}

func (m *ratingRepoMock) Create(_ context.Context, r domain.Rating) error {
	m.ratings[r.ID] = r
	return nil
}

func (m *ratingRepoMock) GetByEventAndRater(_ context.Context, eventID, raterID string) (*domain.Rating, error) {
	for _, r := range m.ratings {
		if r.EventID == eventID && r.RaterID == raterID {
			rating := r
			return &rating, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *ratingRepoMock) ListByEvent(_ context.Context, eventID string) ([]domain.Rating, error) {
	out := make([]domain.Rating, 0)
	for _, r := range m.ratings {
		if r.EventID == eventID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *ratingRepoMock) Update(_ context.Context, r domain.Rating) error {
	if _, ok := m.ratings[r.ID]; !ok {
		return repository.ErrNotFound
	}
	m.ratings[r.ID] = r
	return nil
}

type publisherMock struct {
	notifications []domain.Notification
	err           error
}

func (m *publisherMock) Publish(_ context.Context, n domain.Notification) error {
	if m.err != nil {
		return m.err
	}
	m.notifications = append(m.notifications, n)
	return nil
}

type invalidatorMock struct {
	refs []domain.EntityRef
	err  error
}

func (m *invalidatorMock) MarkStale(_ context.Context, refs []domain.EntityRef) error {
	if m.err != nil {
		return m.err
	}
	m.refs = append(m.refs, refs...)
	return nil
}

func (m *invalidatorMock) ConsumeStale(_ context.Context, kind domain.EntityKind, id string) (bool, error) {
	for i, ref := range m.refs {
		if ref.Kind == kind && ref.ID == id {
			m.refs = append(m.refs[:i], m.refs[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// Test actors used across the service tests.

func unitPtr(s string) *string { return &s }

func testOrganizer(id string) domain.Actor {
	return domain.Actor{
		ID: id,
		Assignments: []domain.RoleAssignment{
			{Role: domain.RoleEventOrganizer, ExecutingUnitID: unitPtr("unit-1")},
		},
	}
}

func testBoard() domain.Actor {
	return domain.Actor{
		ID:          "board-1",
		Assignments: []domain.RoleAssignment{{Role: domain.RoleBoardApprover}},
	}
}

func testFacility() domain.Actor {
	return domain.Actor{
		ID:          "csvc-1",
		Assignments: []domain.RoleAssignment{{Role: domain.RoleFacilityManager}},
	}
}

func testStudent(id string) domain.Actor {
	return domain.Actor{
		ID:          id,
		Assignments: []domain.RoleAssignment{{Role: domain.RoleStudent}},
	}
}
