package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"relief-ops/internal/dto"
	"relief-ops/internal/model"
)

func setupTestUserService() (UserService, *mockRepos) {
	repo, m := newMockRepos()
	return NewUserService(repo, zap.NewNop()), m
}

func TestCreateUser_HashesPassword(t *testing.T) {
	svc, m := setupTestUserService()

	resp, err := svc.CreateUser(context.Background(), &dto.CreateUserRequest{
		Username: "thura", Password: "s3cret-pass", Role: model.RoleVolunteer,
		Region: "Yangon", Country: "Myanmar", Skills: "First Aid, Driving",
	}, "admin-1")
	if err != nil {
		t.Fatalf("CreateUser should succeed: %v", err)
	}
	if resp.Username != "thura" || resp.Skills != "First Aid, Driving" {
		t.Errorf("unexpected response %+v", resp)
	}

	stored := m.users.users[resp.ID]
	if stored.PasswordHash == "s3cret-pass" {
		t.Fatal("password must not be stored in clear text")
	}
	if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("s3cret-pass")) != nil {
		t.Error("stored hash should verify")
	}
	if stored.CreatedBy == nil || *stored.CreatedBy != "admin-1" {
		t.Error("created_by should record the caller")
	}
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	svc, m := setupTestUserService()
	_ = m.users.Create(context.Background(), &model.User{Username: "thura", Role: model.RoleVolunteer})

	_, err := svc.CreateUser(context.Background(), &dto.CreateUserRequest{
		Username: "thura", Password: "s3cret-pass", Role: model.RoleVolunteer,
	}, "")
	if !errors.Is(err, ErrUsernameExists) {
		t.Errorf("expected ErrUsernameExists, got %v", err)
	}
}

func TestListVolunteers_Workload(t *testing.T) {
	svc, m := setupTestUserService()
	ctx := context.Background()
	seedCoordinator(m)
	seedVolunteer(m, "vol-1", "Yangon", "Myanmar", "")
	seedVolunteer(m, "vol-2", "Bago", "Myanmar", "")

	assignee := "vol-1"
	_ = m.cases.Create(ctx, &model.Case{Status: model.CaseStatusEnRoute, AssignedTo: &assignee})
	_ = m.cases.Create(ctx, &model.Case{Status: model.CaseStatusNew, AssignedTo: &assignee})
	_ = m.cases.Create(ctx, &model.Case{Status: model.CaseStatusClosed, AssignedTo: &assignee})

	vols, err := svc.ListVolunteers(ctx)
	if err != nil {
		t.Fatalf("ListVolunteers: %v", err)
	}
	if len(vols) != 2 {
		t.Fatalf("coordinators must not be listed, got %d entries", len(vols))
	}
	// newest first
	if vols[0].ID != "vol-2" || vols[0].Workload != 0 {
		t.Errorf("expected idle newest volunteer first, got %+v", vols[0])
	}
	if vols[1].ID != "vol-1" || vols[1].Workload != 2 {
		t.Errorf("closed cases must not count toward workload, got %+v", vols[1])
	}
}
