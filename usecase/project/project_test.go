package project

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/Hesed2817/taskflow-app/domain"
	"github.com/Hesed2817/taskflow-app/repository/memstore"
	"github.com/Hesed2817/taskflow-app/usecase/cascade"
)

func newTestUseCase(t *testing.T) (*UseCase, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	casc := cascade.New(store, store.Users(), store.Projects(), store.Tasks(), nil)
	uc := New(store.Projects(), store.Tasks(), store.Users(), store, casc, nil)
	return uc, store
}

func seedUser(t *testing.T, store *memstore.Store, id string) {
	t.Helper()
	err := store.Users().Create(context.Background(), &domain.User{
		ID:           id,
		Username:     id,
		Email:        id + "@example.com",
		PasswordHash: "digest",
	})
	if err != nil {
		t.Fatalf("seed user %s: %v", id, err)
	}
}

func seedProject(t *testing.T, uc *UseCase, ownerID, name string) *domain.Project {
	t.Helper()
	p, err := uc.Create(context.Background(), ownerID, CreateInput{Name: name})
	if err != nil {
		t.Fatalf("seed project %s: %v", name, err)
	}
	return p
}

func TestCreateProject(t *testing.T) {
	t.Parallel()

	uc, store := newTestUseCase(t)
	seedUser(t, store, "owner")

	p := seedProject(t, uc, "owner", "Launch")

	if p.OwnerID != "owner" {
		t.Errorf("OwnerID = %q, want owner", p.OwnerID)
	}
	if len(p.Members) != 0 {
		t.Errorf("new project should have no members, got %v", p.Members)
	}
	if p.TeamSize() != 1 {
		t.Errorf("TeamSize() = %d, want 1", p.TeamSize())
	}
}

func TestCreateProjectValidatesName(t *testing.T) {
	t.Parallel()

	uc, store := newTestUseCase(t)
	seedUser(t, store, "owner")

	if _, err := uc.Create(context.Background(), "owner", CreateInput{Name: ""}); !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Fatalf("empty name err = %v, want INVALID", err)
	}

	long := make([]byte, 101)
	for i := range long {
		long[i] = 'x'
	}
	if _, err := uc.Create(context.Background(), "owner", CreateInput{Name: string(long)}); !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Fatalf("oversized name err = %v, want INVALID", err)
	}
}

func TestAddMember(t *testing.T) {
	t.Parallel()

	uc, store := newTestUseCase(t)
	ctx := context.Background()
	seedUser(t, store, "owner")
	seedUser(t, store, "member")
	p := seedProject(t, uc, "owner", "Launch")

	updated, err := uc.AddMember(ctx, "owner", p.ID, "member")
	if err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	if !updated.IsMember("member") {
		t.Error("member should appear in the members set")
	}
	if updated.IsMember("owner") {
		t.Error("owner must never appear in the members set")
	}

	// Adding the owner as a member is a conflict, not a duplicate entry.
	if _, err := uc.AddMember(ctx, "owner", p.ID, "owner"); err != domain.ErrAlreadyMember {
		t.Errorf("adding owner err = %v, want ErrAlreadyMember", err)
	}
	if _, err := uc.AddMember(ctx, "owner", p.ID, "member"); err != domain.ErrAlreadyMember {
		t.Errorf("re-adding member err = %v, want ErrAlreadyMember", err)
	}
	if _, err := uc.AddMember(ctx, "owner", p.ID, "ghost"); !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Errorf("unknown user err = %v, want NOT_FOUND", err)
	}
	if _, err := uc.AddMember(ctx, "member", p.ID, "ghost"); err != domain.ErrForbidden {
		t.Errorf("non-owner err = %v, want ErrForbidden", err)
	}
}

func TestAddMemberSeesFreshOwnershipAfterTransfer(t *testing.T) {
	t.Parallel()

	uc, store := newTestUseCase(t)
	ctx := context.Background()
	seedUser(t, store, "alice")
	seedUser(t, store, "bob")
	p := seedProject(t, uc, "alice", "Launch")

	if _, err := uc.AddMember(ctx, "alice", p.ID, "bob"); err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	if err := uc.TransferOwnership(ctx, "alice", p.ID, "bob"); err != nil {
		t.Fatalf("TransferOwnership: %v", err)
	}

	// The membership checks run against the project as it stands at insert
	// time, not as the caller last saw it: bob now owns the project, so
	// adding bob again is a conflict rather than a duplicate member row,
	// and alice lost the right to manage membership at all.
	if _, err := uc.AddMember(ctx, "bob", p.ID, "bob"); err != domain.ErrAlreadyMember {
		t.Errorf("adding the new owner err = %v, want ErrAlreadyMember", err)
	}
	if _, err := uc.AddMember(ctx, "alice", p.ID, "alice"); err != domain.ErrForbidden {
		t.Errorf("former owner err = %v, want ErrForbidden", err)
	}

	got, err := store.Projects().GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.IsMember("bob") {
		t.Error("owner must never appear in the members set")
	}
	if !got.IsMember("alice") {
		t.Error("former owner should remain a member after the transfer")
	}
}

func TestRemoveMember(t *testing.T) {
	t.Parallel()

	uc, store := newTestUseCase(t)
	ctx := context.Background()
	seedUser(t, store, "owner")
	seedUser(t, store, "member")
	p := seedProject(t, uc, "owner", "Launch")
	if _, err := uc.AddMember(ctx, "owner", p.ID, "member"); err != nil {
		t.Fatalf("AddMember: %v", err)
	}

	if err := uc.RemoveMember(ctx, "owner", p.ID, "owner"); !domain.IsDomainError(err, domain.ErrCodePrecondition) {
		t.Errorf("removing owner err = %v, want PRECONDITION", err)
	}
	if err := uc.RemoveMember(ctx, "member", p.ID, "member"); !domain.IsDomainError(err, domain.ErrCodeForbidden) {
		t.Errorf("non-owner err = %v, want FORBIDDEN", err)
	}
	if err := uc.RemoveMember(ctx, "owner", p.ID, "ghost"); !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Errorf("non-member err = %v, want NOT_FOUND", err)
	}

	if err := uc.RemoveMember(ctx, "owner", p.ID, "member"); err != nil {
		t.Fatalf("RemoveMember: %v", err)
	}
	got, err := uc.Get(ctx, "owner", p.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.IsMember("member") {
		t.Error("member should be gone after removal")
	}
}

func TestRemoveMemberBlockedByAssignedTasks(t *testing.T) {
	t.Parallel()

	uc, store := newTestUseCase(t)
	ctx := context.Background()
	seedUser(t, store, "owner")
	seedUser(t, store, "member")
	p := seedProject(t, uc, "owner", "Launch")
	if _, err := uc.AddMember(ctx, "owner", p.ID, "member"); err != nil {
		t.Fatalf("AddMember: %v", err)
	}

	task := &domain.Task{
		ProjectID:  p.ID,
		Title:      "Ship it",
		Status:     domain.StatusTodo,
		Priority:   domain.PriorityMedium,
		AssigneeID: "member",
		CreatorID:  "owner",
	}
	if err := store.Tasks().Create(ctx, task); err != nil {
		t.Fatalf("seed task: %v", err)
	}

	err := uc.RemoveMember(ctx, "owner", p.ID, "member")
	if !domain.IsDomainError(err, domain.ErrCodePrecondition) {
		t.Fatalf("err = %v, want PRECONDITION", err)
	}
	var derr *domain.Error
	if !errors.As(err, &derr) || derr.Details["assigned_tasks"] != 1 {
		t.Errorf("details = %v, want assigned_tasks=1", err)
	}

	// The failed removal must leave membership untouched.
	got, err := uc.Get(ctx, "owner", p.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.IsMember("member") {
		t.Error("blocked removal must not change the members set")
	}

	// Unassigning the task clears the obstacle.
	task.AssigneeID = ""
	if err := store.Tasks().Update(ctx, task); err != nil {
		t.Fatalf("unassign task: %v", err)
	}
	if err := uc.RemoveMember(ctx, "owner", p.ID, "member"); err != nil {
		t.Fatalf("RemoveMember after unassign: %v", err)
	}
}

func TestTransferOwnership(t *testing.T) {
	t.Parallel()

	uc, store := newTestUseCase(t)
	ctx := context.Background()
	seedUser(t, store, "owner")
	seedUser(t, store, "member")
	p := seedProject(t, uc, "owner", "Launch")
	if _, err := uc.AddMember(ctx, "owner", p.ID, "member"); err != nil {
		t.Fatalf("AddMember: %v", err)
	}

	if err := uc.TransferOwnership(ctx, "owner", p.ID, "member"); err != nil {
		t.Fatalf("TransferOwnership: %v", err)
	}

	got, err := uc.Get(ctx, "member", p.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.OwnerID != "member" {
		t.Errorf("OwnerID = %q, want member", got.OwnerID)
	}
	if got.IsMember("member") {
		t.Error("new owner must leave the members set")
	}
	if !got.IsMember("owner") {
		t.Error("old owner must join the members set")
	}
	if got.TeamSize() != 2 {
		t.Errorf("TeamSize() = %d, want 2", got.TeamSize())
	}
}

func TestTransferOwnershipFailures(t *testing.T) {
	t.Parallel()

	uc, store := newTestUseCase(t)
	ctx := context.Background()
	seedUser(t, store, "owner")
	seedUser(t, store, "member")
	seedUser(t, store, "outsider")
	p := seedProject(t, uc, "owner", "Launch")
	if _, err := uc.AddMember(ctx, "owner", p.ID, "member"); err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	before, err := uc.Get(ctx, "owner", p.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if err := uc.TransferOwnership(ctx, "member", p.ID, "member"); !domain.IsDomainError(err, domain.ErrCodeForbidden) {
		t.Errorf("non-owner err = %v, want FORBIDDEN", err)
	}
	if err := uc.TransferOwnership(ctx, "owner", p.ID, "owner"); !domain.IsDomainError(err, domain.ErrCodeConflict) {
		t.Errorf("self-transfer err = %v, want CONFLICT", err)
	}
	if err := uc.TransferOwnership(ctx, "owner", p.ID, "outsider"); !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Errorf("non-member target err = %v, want INVALID", err)
	}

	after, err := uc.Get(ctx, "owner", p.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if after.OwnerID != before.OwnerID || !reflect.DeepEqual(after.Members, before.Members) {
		t.Errorf("failed transfers must not change state: before=%+v after=%+v", before, after)
	}
}

func TestDeleteProjectCascadesTasks(t *testing.T) {
	t.Parallel()

	uc, store := newTestUseCase(t)
	ctx := context.Background()
	seedUser(t, store, "owner")
	seedUser(t, store, "member")
	p := seedProject(t, uc, "owner", "Launch")
	if _, err := uc.AddMember(ctx, "owner", p.ID, "member"); err != nil {
		t.Fatalf("AddMember: %v", err)
	}

	for i := 0; i < 3; i++ {
		task := &domain.Task{
			ProjectID: p.ID,
			Title:     "task",
			Status:    domain.StatusTodo,
			Priority:  domain.PriorityMedium,
			CreatorID: "owner",
		}
		if err := store.Tasks().Create(ctx, task); err != nil {
			t.Fatalf("seed task: %v", err)
		}
	}

	if err := uc.Delete(ctx, "member", p.ID); !domain.IsDomainError(err, domain.ErrCodeForbidden) {
		t.Fatalf("member delete err = %v, want FORBIDDEN", err)
	}
	if err := uc.Delete(ctx, "owner", p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := uc.Get(ctx, "owner", p.ID); !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Errorf("project err = %v, want NOT_FOUND", err)
	}
	tasks, err := store.Tasks().ListByProject(ctx, p.ID)
	if err != nil {
		t.Fatalf("ListByProject: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("len(tasks) = %d, want 0 after cascade", len(tasks))
	}
}

func TestListAccessible(t *testing.T) {
	t.Parallel()

	uc, store := newTestUseCase(t)
	ctx := context.Background()
	seedUser(t, store, "owner")
	seedUser(t, store, "member")
	owned := seedProject(t, uc, "owner", "Owned")
	joined := seedProject(t, uc, "member", "Joined")
	if _, err := uc.AddMember(ctx, "member", joined.ID, "owner"); err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	seedProject(t, uc, "member", "Private")

	projects, err := uc.List(ctx, "owner")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(projects) != 2 {
		t.Fatalf("len(projects) = %d, want 2", len(projects))
	}
	ids := map[string]bool{projects[0].ID: true, projects[1].ID: true}
	if !ids[owned.ID] || !ids[joined.ID] {
		t.Errorf("accessible projects = %v, want owned and joined", ids)
	}
}
