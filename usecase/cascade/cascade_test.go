package cascade

import (
	"context"
	"errors"
	"testing"

	"github.com/Hesed2817/taskflow-app/domain"
	"github.com/Hesed2817/taskflow-app/repository/memstore"
)

func newCoordinator(t *testing.T) (*Coordinator, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	return New(store, store.Users(), store.Projects(), store.Tasks(), nil), store
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

func seedProject(t *testing.T, store *memstore.Store, id, ownerID string, members ...string) {
	t.Helper()
	err := store.Projects().Create(context.Background(), &domain.Project{
		ID:      id,
		Name:    id,
		OwnerID: ownerID,
		Members: members,
	})
	if err != nil {
		t.Fatalf("seed project %s: %v", id, err)
	}
}

func seedTask(t *testing.T, store *memstore.Store, projectID, creatorID, assigneeID string) string {
	t.Helper()
	task := &domain.Task{
		ProjectID:  projectID,
		Title:      "task",
		Status:     domain.StatusTodo,
		Priority:   domain.PriorityMedium,
		CreatorID:  creatorID,
		AssigneeID: assigneeID,
	}
	if err := store.Tasks().Create(context.Background(), task); err != nil {
		t.Fatalf("seed task: %v", err)
	}
	return task.ID
}

func TestDeleteProjectRemovesAllTasks(t *testing.T) {
	t.Parallel()

	coord, store := newCoordinator(t)
	ctx := context.Background()
	seedUser(t, store, "owner")
	seedProject(t, store, "p1", "owner")
	seedProject(t, store, "p2", "owner")
	for i := 0; i < 5; i++ {
		seedTask(t, store, "p1", "owner", "")
	}
	surviving := seedTask(t, store, "p2", "owner", "")

	if err := coord.DeleteProject(ctx, "p1"); err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}

	if _, err := store.Projects().GetByID(ctx, "p1"); !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Errorf("project err = %v, want NOT_FOUND", err)
	}
	tasks, err := store.Tasks().ListByProject(ctx, "p1")
	if err != nil {
		t.Fatalf("ListByProject: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("len(tasks) = %d, want 0", len(tasks))
	}

	// Other projects are untouched.
	if _, err := store.Tasks().GetByID(ctx, surviving); err != nil {
		t.Errorf("unrelated task should survive, got %v", err)
	}
}

func TestDeleteUserFullCascade(t *testing.T) {
	t.Parallel()

	coord, store := newCoordinator(t)
	ctx := context.Background()
	seedUser(t, store, "victim")
	seedUser(t, store, "peer")

	// Two owned projects with eight tasks between them.
	seedProject(t, store, "owned1", "victim", "peer")
	seedProject(t, store, "owned2", "victim")
	for i := 0; i < 5; i++ {
		seedTask(t, store, "owned1", "victim", "")
	}
	for i := 0; i < 3; i++ {
		seedTask(t, store, "owned2", "victim", "")
	}

	// A peer-owned project where the victim is a member with two assignments.
	seedProject(t, store, "shared", "peer", "victim")
	assigned1 := seedTask(t, store, "shared", "peer", "victim")
	assigned2 := seedTask(t, store, "shared", "peer", "victim")

	if err := coord.DeleteUser(ctx, "victim"); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	if _, err := store.Users().GetByID(ctx, "victim"); !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Errorf("user err = %v, want NOT_FOUND", err)
	}
	for _, id := range []string{"owned1", "owned2"} {
		if _, err := store.Projects().GetByID(ctx, id); !domain.IsDomainError(err, domain.ErrCodeNotFound) {
			t.Errorf("project %s err = %v, want NOT_FOUND", id, err)
		}
		tasks, err := store.Tasks().ListByProject(ctx, id)
		if err != nil {
			t.Fatalf("ListByProject: %v", err)
		}
		if len(tasks) != 0 {
			t.Errorf("project %s has %d tasks left, want 0", id, len(tasks))
		}
	}

	shared, err := store.Projects().GetByID(ctx, "shared")
	if err != nil {
		t.Fatalf("shared project: %v", err)
	}
	if shared.IsMember("victim") {
		t.Error("victim should be removed from shared project membership")
	}
	for _, id := range []string{assigned1, assigned2} {
		task, err := store.Tasks().GetByID(ctx, id)
		if err != nil {
			t.Fatalf("assigned task %s: %v", id, err)
		}
		if task.AssigneeID != "" {
			t.Errorf("task %s assignee = %q, want unassigned", id, task.AssigneeID)
		}
	}
}

func TestDeleteUserDisownsCreatedTasks(t *testing.T) {
	t.Parallel()

	coord, store := newCoordinator(t)
	ctx := context.Background()
	seedUser(t, store, "victim")
	seedUser(t, store, "peer")

	// The victim created tasks in a peer-owned project. Those tasks belong to
	// the surviving project and must outlive their creator.
	seedProject(t, store, "shared", "peer", "victim")
	created := seedTask(t, store, "shared", "victim", "")
	both := seedTask(t, store, "shared", "victim", "victim")
	peers := seedTask(t, store, "shared", "peer", "")

	if err := coord.DeleteUser(ctx, "victim"); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	for _, id := range []string{created, both} {
		task, err := store.Tasks().GetByID(ctx, id)
		if err != nil {
			t.Fatalf("task %s should survive its creator, got %v", id, err)
		}
		if task.CreatorID != "" {
			t.Errorf("task %s creator = %q, want cleared", id, task.CreatorID)
		}
		if task.AssigneeID != "" {
			t.Errorf("task %s assignee = %q, want cleared", id, task.AssigneeID)
		}
	}

	task, err := store.Tasks().GetByID(ctx, peers)
	if err != nil {
		t.Fatalf("peer task: %v", err)
	}
	if task.CreatorID != "peer" {
		t.Errorf("peer task creator = %q, want peer", task.CreatorID)
	}
}

func TestDeleteUserAbortsWithoutPartialEffects(t *testing.T) {
	t.Parallel()

	coord, store := newCoordinator(t)
	ctx := context.Background()
	seedUser(t, store, "victim")
	seedUser(t, store, "peer")
	seedProject(t, store, "owned", "victim", "peer")
	seedTask(t, store, "owned", "victim", "")
	seedProject(t, store, "shared", "peer", "victim")
	assigned := seedTask(t, store, "shared", "peer", "victim")

	boom := errors.New("task purge failed")
	store.FailTaskPurge = boom

	err := coord.DeleteUser(ctx, "victim")
	if err == nil {
		t.Fatal("expected the cascade to fail")
	}
	if !domain.IsDomainError(err, domain.ErrCodeTxFailed) {
		t.Errorf("err = %v, want TX_FAILED", err)
	}
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped %v", err, boom)
	}

	// Every record must still be exactly as seeded.
	if _, err := store.Users().GetByID(ctx, "victim"); err != nil {
		t.Errorf("user should survive the aborted cascade, got %v", err)
	}
	owned, err := store.Projects().GetByID(ctx, "owned")
	if err != nil {
		t.Fatalf("owned project should survive, got %v", err)
	}
	if !owned.IsMember("peer") {
		t.Error("owned project membership changed during aborted cascade")
	}
	shared, err := store.Projects().GetByID(ctx, "shared")
	if err != nil {
		t.Fatalf("shared project should survive, got %v", err)
	}
	if !shared.IsMember("victim") {
		t.Error("shared project membership changed during aborted cascade")
	}
	task, err := store.Tasks().GetByID(ctx, assigned)
	if err != nil {
		t.Fatalf("assigned task should survive, got %v", err)
	}
	if task.AssigneeID != "victim" {
		t.Errorf("assignee = %q, want victim", task.AssigneeID)
	}
	tasks, err := store.Tasks().ListByProject(ctx, "owned")
	if err != nil {
		t.Fatalf("ListByProject: %v", err)
	}
	if len(tasks) != 1 {
		t.Errorf("owned project tasks = %d, want 1", len(tasks))
	}
}
