package task

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/Hesed2817/taskflow-app/domain"
	"github.com/Hesed2817/taskflow-app/repository/memstore"
)

func newTestUseCase(t *testing.T) (*UseCase, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	return New(store.Tasks(), store.Projects(), nil), store
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

func TestCreateTaskDefaults(t *testing.T) {
	t.Parallel()

	uc, store := newTestUseCase(t)
	ctx := context.Background()
	seedProject(t, store, "p1", "owner", "member")

	task, err := uc.Create(ctx, "member", "p1", CreateInput{Title: "Write docs"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if task.Status != domain.StatusTodo {
		t.Errorf("Status = %q, want todo", task.Status)
	}
	if task.Priority != domain.PriorityMedium {
		t.Errorf("Priority = %q, want medium", task.Priority)
	}
	if task.CreatorID != "member" {
		t.Errorf("CreatorID = %q, want member", task.CreatorID)
	}
	if task.AssigneeID != "" {
		t.Errorf("AssigneeID = %q, want unassigned", task.AssigneeID)
	}
}

func TestCreateTaskValidation(t *testing.T) {
	t.Parallel()

	uc, store := newTestUseCase(t)
	ctx := context.Background()
	seedProject(t, store, "p1", "owner")

	if _, err := uc.Create(ctx, "stranger", "p1", CreateInput{Title: "x"}); !domain.IsDomainError(err, domain.ErrCodeForbidden) {
		t.Errorf("outsider err = %v, want FORBIDDEN", err)
	}
	if _, err := uc.Create(ctx, "owner", "p1", CreateInput{Title: ""}); !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Errorf("empty title err = %v, want INVALID", err)
	}
	if _, err := uc.Create(ctx, "owner", "p1", CreateInput{Title: "x", Status: "archived"}); !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Errorf("bad status err = %v, want INVALID", err)
	}
	if _, err := uc.Create(ctx, "owner", "p1", CreateInput{Title: "x", Priority: "urgent"}); !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Errorf("bad priority err = %v, want INVALID", err)
	}
}

func TestAssignToNonMemberFails(t *testing.T) {
	t.Parallel()

	uc, store := newTestUseCase(t)
	ctx := context.Background()
	seedProject(t, store, "p1", "owner", "member")

	if _, err := uc.Create(ctx, "owner", "p1", CreateInput{Title: "x", AssigneeID: "stranger"}); err != domain.ErrNotAProjectMember {
		t.Fatalf("err = %v, want ErrNotAProjectMember", err)
	}

	// Owner counts as assignable even though they are not in Members.
	task, err := uc.Create(ctx, "member", "p1", CreateInput{Title: "x", AssigneeID: "owner"})
	if err != nil {
		t.Fatalf("assign to owner: %v", err)
	}

	// A rejected reassignment leaves the task as it was.
	stranger := "stranger"
	if _, err := uc.Update(ctx, "owner", task.ID, UpdateInput{AssigneeID: &stranger}); err != domain.ErrNotAProjectMember {
		t.Fatalf("reassign err = %v, want ErrNotAProjectMember", err)
	}
	got, err := store.Tasks().GetByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.AssigneeID != "owner" {
		t.Errorf("AssigneeID = %q, want owner after failed reassignment", got.AssigneeID)
	}
}

func TestUpdateUnassignsWithEmptyString(t *testing.T) {
	t.Parallel()

	uc, store := newTestUseCase(t)
	ctx := context.Background()
	seedProject(t, store, "p1", "owner", "member")

	task, err := uc.Create(ctx, "owner", "p1", CreateInput{Title: "x", AssigneeID: "member"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	empty := ""
	updated, err := uc.Update(ctx, "owner", task.ID, UpdateInput{AssigneeID: &empty})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.AssigneeID != "" {
		t.Errorf("AssigneeID = %q, want unassigned", updated.AssigneeID)
	}
}

func TestUpdatePermissions(t *testing.T) {
	t.Parallel()

	uc, store := newTestUseCase(t)
	ctx := context.Background()
	seedProject(t, store, "p1", "owner", "creator", "assignee", "bystander")

	task, err := uc.Create(ctx, "creator", "p1", CreateInput{Title: "x", AssigneeID: "assignee"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	done := domain.StatusDone
	for _, actor := range []string{"owner", "creator", "assignee"} {
		if _, err := uc.Update(ctx, actor, task.ID, UpdateInput{Status: &done}); err != nil {
			t.Errorf("%s should update the task, got %v", actor, err)
		}
	}
	if _, err := uc.Update(ctx, "bystander", task.ID, UpdateInput{Status: &done}); !domain.IsDomainError(err, domain.ErrCodeForbidden) {
		t.Errorf("bystander err = %v, want FORBIDDEN", err)
	}

	if err := uc.Delete(ctx, "assignee", task.ID); !domain.IsDomainError(err, domain.ErrCodeForbidden) {
		t.Errorf("assignee delete err = %v, want FORBIDDEN", err)
	}
	if err := uc.Delete(ctx, "creator", task.ID); err != nil {
		t.Errorf("creator delete: %v", err)
	}
}

func TestFilterScopedToAccessibleProjects(t *testing.T) {
	t.Parallel()

	uc, store := newTestUseCase(t)
	ctx := context.Background()
	seedProject(t, store, "mine", "me")
	seedProject(t, store, "joined", "other", "me")
	seedProject(t, store, "private", "other")

	if _, err := uc.Create(ctx, "me", "mine", CreateInput{Title: "visible one"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := uc.Create(ctx, "me", "joined", CreateInput{Title: "visible two"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := uc.Create(ctx, "other", "private", CreateInput{Title: "hidden"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	tasks, err := uc.Filter(ctx, "me", FilterInput{})
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("len(tasks) = %d, want 2", len(tasks))
	}
	for _, task := range tasks {
		if task.ProjectID == "private" {
			t.Error("filter leaked a task from an inaccessible project")
		}
	}

	// Scoping to an inaccessible project yields nothing rather than an error.
	tasks, err = uc.Filter(ctx, "me", FilterInput{ProjectID: "private"})
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("len(tasks) = %d, want 0 for inaccessible scope", len(tasks))
	}
}

func TestFilterIgnoresInvalidEnums(t *testing.T) {
	t.Parallel()

	uc, store := newTestUseCase(t)
	ctx := context.Background()
	seedProject(t, store, "p1", "me")
	if _, err := uc.Create(ctx, "me", "p1", CreateInput{Title: "only task"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	tasks, err := uc.Filter(ctx, "me", FilterInput{Status: "archived", Priority: "urgent"})
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if len(tasks) != 1 {
		t.Errorf("len(tasks) = %d, want 1 with invalid enums ignored", len(tasks))
	}
}

func TestFilterSearchAndCap(t *testing.T) {
	t.Parallel()

	uc, store := newTestUseCase(t)
	ctx := context.Background()
	seedProject(t, store, "p1", "me")

	for i := 0; i < 105; i++ {
		title := fmt.Sprintf("chore %d", i)
		if i%2 == 0 {
			title = fmt.Sprintf("Deploy step %d", i)
		}
		if _, err := uc.Create(ctx, "me", "p1", CreateInput{Title: title}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	all, err := uc.Filter(ctx, "me", FilterInput{})
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if len(all) != 100 {
		t.Errorf("len(all) = %d, want results capped at 100", len(all))
	}

	matches, err := uc.Filter(ctx, "me", FilterInput{Search: "deploy"})
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if len(matches) != 53 {
		t.Errorf("len(matches) = %d, want 53 case-insensitive matches", len(matches))
	}
	for _, task := range matches {
		if task.Status != domain.StatusTodo {
			t.Errorf("unexpected status %q", task.Status)
		}
	}
}

func TestFilterTruncatesSearchOnRuneBoundary(t *testing.T) {
	t.Parallel()

	uc, store := newTestUseCase(t)
	ctx := context.Background()
	seedProject(t, store, "p1", "me")

	title := strings.Repeat("日", 100)
	if _, err := uc.Create(ctx, "me", "p1", CreateInput{Title: title}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// An over-long multi-byte term must be cut between characters. Slicing
	// bytes instead would leave a partial rune at the end and match nothing.
	matches, err := uc.Filter(ctx, "me", FilterInput{Search: strings.Repeat("日", 120)})
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("len(matches) = %d, want 1", len(matches))
	}
	if matches[0].Title != title {
		t.Errorf("matched title = %q, want the seeded task", matches[0].Title)
	}
}

func TestListByProjectRequiresAccess(t *testing.T) {
	t.Parallel()

	uc, store := newTestUseCase(t)
	ctx := context.Background()
	seedProject(t, store, "p1", "owner")
	if _, err := uc.Create(ctx, "owner", "p1", CreateInput{Title: "x"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := uc.ListByProject(ctx, "stranger", "p1"); !domain.IsDomainError(err, domain.ErrCodeForbidden) {
		t.Errorf("err = %v, want FORBIDDEN", err)
	}
	tasks, err := uc.ListByProject(ctx, "owner", "p1")
	if err != nil {
		t.Fatalf("ListByProject: %v", err)
	}
	if len(tasks) != 1 {
		t.Errorf("len(tasks) = %d, want 1", len(tasks))
	}
}
