package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"relief-ops/internal/dto"
	"relief-ops/internal/model"
	pkgerrors "relief-ops/pkg/errors"
)

var fixedNow = time.Date(2026, 7, 15, 9, 0, 0, 0, time.UTC)

func setupTestCaseService() (*caseService, *mockRepos) {
	repo, m := newMockRepos()
	logger := zap.NewNop()
	svc := NewCaseService(repo, NewNotifier(repo, logger), NewAuditor(repo, logger), logger).(*caseService)
	svc.now = func() time.Time { return fixedNow }
	return svc, m
}

func seedCoordinator(m *mockRepos) *model.User {
	u := &model.User{UserID: "coord-1", Username: "coord", Role: model.RoleCoordinator}
	_ = m.users.Create(context.Background(), u)
	return u
}

func seedVolunteer(m *mockRepos, id, region, country, skills string) *model.User {
	u := &model.User{UserID: id, Username: id, Role: model.RoleVolunteer, Region: region, Country: country, Skills: skills}
	_ = m.users.Create(context.Background(), u)
	return u
}

func createCase(t *testing.T, svc CaseService, region string) *model.Case {
	t.Helper()
	c, err := svc.Create(context.Background(), &dto.CreateCaseRequest{VictimName: "Aye", Region: region, Country: "Myanmar"}, nil)
	if err != nil {
		t.Fatalf("Create should succeed: %v", err)
	}
	return c
}

// ── Create ──

func TestCreateCase_InitialState(t *testing.T) {
	svc, m := setupTestCaseService()
	coord := seedCoordinator(m)

	c := createCase(t, svc, "Yangon")

	if c.Status != model.CaseStatusNew {
		t.Errorf("expected status new, got %s", c.Status)
	}
	if len(c.Timeline) != 1 || c.Timeline[0].Action != "created" || c.Timeline[0].Actor != nil {
		t.Errorf("expected single created entry without actor, got %+v", c.Timeline)
	}
	msgs := m.notifications.messagesFor(coord.UserID)
	if len(msgs) != 1 || msgs[0] != "New emergency case submitted: "+c.CaseID {
		t.Errorf("coordinator notification mismatch: %v", msgs)
	}
	if m.audit.countKind(AuditEntityCase) != 1 {
		t.Errorf("expected one case audit row, got %d", m.audit.countKind(AuditEntityCase))
	}
}

func TestGetCase_NotFound(t *testing.T) {
	svc, _ := setupTestCaseService()
	_, err := svc.GetByID(context.Background(), "missing")
	if !errors.Is(err, ErrCaseNotFound) || !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Errorf("expected ErrCaseNotFound wrapping ErrNotFound, got %v", err)
	}
}

func TestListCases_FilterAndOrder(t *testing.T) {
	svc, _ := setupTestCaseService()
	first := createCase(t, svc, "Yangon")
	second := createCase(t, svc, "Mandalay")
	third := createCase(t, svc, "yangon")

	all, total, err := svc.List(context.Background(), &dto.CaseListRequest{})
	if err != nil {
		t.Fatalf("List should succeed: %v", err)
	}
	if total != 3 || all[0].CaseID != third.CaseID || all[2].CaseID != first.CaseID {
		t.Errorf("expected newest first, got %v", all)
	}

	byRegion, total, _ := svc.List(context.Background(), &dto.CaseListRequest{Region: "YANGON"})
	if total != 2 {
		t.Errorf("expected 2 Yangon cases, got %d", total)
	}
	for _, c := range byRegion {
		if c.CaseID == second.CaseID {
			t.Error("Mandalay case should be filtered out")
		}
	}
}

// ── Transition ──

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to model.CaseStatus
		want     bool
	}{
		{model.CaseStatusNew, model.CaseStatusAcknowledged, true},
		{model.CaseStatusAcknowledged, model.CaseStatusEnRoute, true},
		{model.CaseStatusEnRoute, model.CaseStatusArrived, true},
		{model.CaseStatusArrived, model.CaseStatusClosed, true},
		{model.CaseStatusNew, model.CaseStatusClosed, false},
		{model.CaseStatusNew, model.CaseStatusEnRoute, false},
		{model.CaseStatusArrived, model.CaseStatusAcknowledged, false},
		{model.CaseStatusNew, model.CaseStatusNew, false},
		{model.CaseStatusClosed, model.CaseStatusCancelled, false},
		{model.CaseStatusCancelled, model.CaseStatusNew, false},
		{model.CaseStatusNew, model.CaseStatus("lost"), false},
	}
	for _, open := range model.OpenCaseStatuses {
		tests = append(tests, struct {
			from, to model.CaseStatus
			want     bool
		}{open, model.CaseStatusCancelled, true})
	}
	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestTransition_FullLifecycle(t *testing.T) {
	svc, _ := setupTestCaseService()
	ctx := context.Background()
	c := createCase(t, svc, "Yangon")
	actor := strPtr("coord-1")

	for _, target := range []model.CaseStatus{
		model.CaseStatusAcknowledged, model.CaseStatusEnRoute, model.CaseStatusArrived, model.CaseStatusClosed,
	} {
		updated, err := svc.Transition(ctx, c.CaseID, target, actor)
		if err != nil {
			t.Fatalf("transition to %s should succeed: %v", target, err)
		}
		if updated.Status != target {
			t.Fatalf("expected %s, got %s", target, updated.Status)
		}
		last := updated.Timeline[len(updated.Timeline)-1]
		if last.Action != "status="+string(target) || last.Actor == nil || *last.Actor != "coord-1" {
			t.Errorf("unexpected timeline entry %+v", last)
		}
	}

	final, _ := svc.GetByID(ctx, c.CaseID)
	if final.AcknowledgedAt == nil || final.ArrivedAt == nil || final.ClosedAt == nil {
		t.Error("phase timestamps should all be stamped")
	}
	if len(final.Timeline) != 5 {
		t.Errorf("expected 5 timeline entries, got %d", len(final.Timeline))
	}
}

func TestTransition_CloseTwiceFails(t *testing.T) {
	svc, m := setupTestCaseService()
	ctx := context.Background()
	c := createCase(t, svc, "Yangon")
	for _, s := range []model.CaseStatus{
		model.CaseStatusAcknowledged, model.CaseStatusEnRoute, model.CaseStatusArrived, model.CaseStatusClosed,
	} {
		if _, err := svc.Transition(ctx, c.CaseID, s, nil); err != nil {
			t.Fatalf("transition to %s: %v", s, err)
		}
	}
	before := len(m.cases.cases[c.CaseID].Timeline)

	_, err := svc.Transition(ctx, c.CaseID, model.CaseStatusClosed, nil)
	if !errors.Is(err, pkgerrors.ErrInvalidTransition) {
		t.Fatalf("second close should fail with ErrInvalidTransition, got %v", err)
	}
	_, err = svc.Transition(ctx, c.CaseID, model.CaseStatusCancelled, nil)
	if !errors.Is(err, pkgerrors.ErrInvalidTransition) {
		t.Errorf("cancel after close should fail with ErrInvalidTransition, got %v", err)
	}
	if after := len(m.cases.cases[c.CaseID].Timeline); after != before {
		t.Errorf("failed transitions must not touch the timeline: %d -> %d", before, after)
	}
}

func TestTransition_CancelFromEveryOpenState(t *testing.T) {
	path := []model.CaseStatus{model.CaseStatusAcknowledged, model.CaseStatusEnRoute, model.CaseStatusArrived}
	for depth := 0; depth <= len(path); depth++ {
		svc, _ := setupTestCaseService()
		ctx := context.Background()
		c := createCase(t, svc, "Yangon")
		for _, s := range path[:depth] {
			if _, err := svc.Transition(ctx, c.CaseID, s, nil); err != nil {
				t.Fatalf("transition to %s: %v", s, err)
			}
		}
		updated, err := svc.Transition(ctx, c.CaseID, model.CaseStatusCancelled, nil)
		if err != nil {
			t.Fatalf("cancel after %d steps should succeed: %v", depth, err)
		}
		if updated.Status != model.CaseStatusCancelled {
			t.Errorf("expected cancelled, got %s", updated.Status)
		}
	}
}

func TestTransition_SkipForwardRejected(t *testing.T) {
	svc, _ := setupTestCaseService()
	c := createCase(t, svc, "Yangon")

	_, err := svc.Transition(context.Background(), c.CaseID, model.CaseStatusClosed, nil)
	if !errors.Is(err, pkgerrors.ErrInvalidTransition) {
		t.Errorf("new -> closed should fail with ErrInvalidTransition, got %v", err)
	}
}

func TestTransition_NotifiesAssigneeAndCoordinators(t *testing.T) {
	svc, m := setupTestCaseService()
	ctx := context.Background()
	coord := seedCoordinator(m)
	vol := seedVolunteer(m, "vol-1", "Yangon", "Myanmar", "")
	c := createCase(t, svc, "Yangon")
	if _, err := svc.Assign(ctx, c.CaseID, &dto.AssignCaseRequest{VolunteerID: &vol.UserID}, nil); err != nil {
		t.Fatalf("Assign: %v", err)
	}

	if _, err := svc.Transition(ctx, c.CaseID, model.CaseStatusAcknowledged, nil); err != nil {
		t.Fatalf("Transition: %v", err)
	}

	volMsgs := m.notifications.messagesFor(vol.UserID)
	want := "Status for case " + c.CaseID + " set to acknowledged."
	if len(volMsgs) == 0 || volMsgs[len(volMsgs)-1] != want {
		t.Errorf("volunteer should get %q, got %v", want, volMsgs)
	}
	coordMsgs := m.notifications.messagesFor(coord.UserID)
	want = "Case " + c.CaseID + " status changed to acknowledged."
	if coordMsgs[len(coordMsgs)-1] != want {
		t.Errorf("coordinator should get %q, got %v", want, coordMsgs)
	}
}

// ── Assign ──

func TestAssign_WithShelter(t *testing.T) {
	svc, m := setupTestCaseService()
	ctx := context.Background()
	vol := seedVolunteer(m, "vol-1", "Yangon", "Myanmar", "")
	m.shelters.seed(&model.Shelter{ShelterID: "sh-1", Name: "North", Capacity: 10, Available: 2})
	c := createCase(t, svc, "Yangon")

	resp, err := svc.Assign(ctx, c.CaseID, &dto.AssignCaseRequest{VolunteerID: &vol.UserID, ShelterID: strPtr("sh-1")}, strPtr("coord-1"))
	if err != nil {
		t.Fatalf("Assign should succeed: %v", err)
	}
	if !resp.ShelterLinked || len(resp.Warnings) != 0 {
		t.Errorf("expected linked shelter without warnings, got %+v", resp)
	}
	if resp.Case.ShelterID == nil || *resp.Case.ShelterID != "sh-1" {
		t.Error("shelter id should be set")
	}
	if m.shelters.shelters["sh-1"].Available != 1 {
		t.Errorf("available should drop to 1, got %d", m.shelters.shelters["sh-1"].Available)
	}
	tl := resp.Case.Timeline
	if tl[len(tl)-2].Action != "assigned_to=vol-1" || tl[len(tl)-1].Action != "shelter_assigned=sh-1" {
		t.Errorf("unexpected timeline tail %+v", tl[len(tl)-2:])
	}
}

func TestAssign_ShelterFull(t *testing.T) {
	svc, m := setupTestCaseService()
	ctx := context.Background()
	vol := seedVolunteer(m, "vol-1", "Yangon", "Myanmar", "")
	m.shelters.seed(&model.Shelter{ShelterID: "sh-1", Name: "North", Capacity: 10, Available: 0})
	c := createCase(t, svc, "Yangon")

	resp, err := svc.Assign(ctx, c.CaseID, &dto.AssignCaseRequest{VolunteerID: &vol.UserID, ShelterID: strPtr("sh-1")}, nil)
	if err != nil {
		t.Fatalf("a full shelter must not fail the assignment: %v", err)
	}
	if resp.ShelterLinked || len(resp.Warnings) != 1 {
		t.Errorf("expected unlinked shelter with one warning, got %+v", resp)
	}
	if resp.Case.ShelterID != nil {
		t.Error("shelter id must stay unset")
	}
	if resp.Case.AssignedTo == nil || *resp.Case.AssignedTo != "vol-1" {
		t.Error("volunteer should still be assigned")
	}
	if m.shelters.shelters["sh-1"].Available != 0 {
		t.Errorf("available must not go below zero, got %d", m.shelters.shelters["sh-1"].Available)
	}
}

func TestAssign_NotFound(t *testing.T) {
	svc, m := setupTestCaseService()
	ctx := context.Background()
	vol := seedVolunteer(m, "vol-1", "", "", "")
	c := createCase(t, svc, "Yangon")

	tests := []struct {
		name   string
		caseID string
		req    dto.AssignCaseRequest
		want   error
	}{
		{"missing case", "missing", dto.AssignCaseRequest{VolunteerID: &vol.UserID}, ErrCaseNotFound},
		{"missing volunteer", c.CaseID, dto.AssignCaseRequest{VolunteerID: strPtr("ghost")}, ErrVolunteerNotFound},
		{"coordinator is not a volunteer", c.CaseID, dto.AssignCaseRequest{VolunteerID: &seedCoordinator(m).UserID}, ErrVolunteerNotFound},
		{"missing shelter", c.CaseID, dto.AssignCaseRequest{VolunteerID: &vol.UserID, ShelterID: strPtr("ghost")}, ErrShelterNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Assign(ctx, tt.caseID, &tt.req, nil)
			if !errors.Is(err, tt.want) || !errors.Is(err, pkgerrors.ErrNotFound) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestAssign_Unassign(t *testing.T) {
	svc, m := setupTestCaseService()
	ctx := context.Background()
	vol := seedVolunteer(m, "vol-1", "", "", "")
	c := createCase(t, svc, "Yangon")
	if _, err := svc.Assign(ctx, c.CaseID, &dto.AssignCaseRequest{VolunteerID: &vol.UserID}, nil); err != nil {
		t.Fatalf("Assign: %v", err)
	}

	resp, err := svc.Assign(ctx, c.CaseID, &dto.AssignCaseRequest{}, nil)
	if err != nil {
		t.Fatalf("unassign should succeed: %v", err)
	}
	if resp.Case.AssignedTo != nil {
		t.Error("assignee should be cleared")
	}
	if last := resp.Case.Timeline[len(resp.Case.Timeline)-1]; last.Action != "assigned_to=" {
		t.Errorf("unexpected timeline entry %+v", last)
	}
}
