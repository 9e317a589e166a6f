package projects

import (
	"context"
	"testing"

	"github.com/atelierhq/studio-platform/internal/app/domain/project"
	"github.com/atelierhq/studio-platform/internal/app/storage"
	"github.com/atelierhq/studio-platform/internal/app/storage/memory"
	apperrors "github.com/atelierhq/studio-platform/internal/errors"
)

func newService() *Service {
	return New(memory.New(), nil)
}

func TestCreateRequiresTitle(t *testing.T) {
	s := newService()
	if _, err := s.Create(context.Background(), project.Project{Title: "   "}); !apperrors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateDefaultsOrderToEnd(t *testing.T) {
	s := newService()
	ctx := context.Background()

	first, err := s.Create(ctx, project.Project{Title: "first"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if first.Order != 1 {
		t.Fatalf("first project in an empty resource must get order 1, got %d", first.Order)
	}

	if _, err := s.Create(ctx, project.Project{Title: "pinned", Order: 10}); err != nil {
		t.Fatalf("create: %v", err)
	}

	appended, err := s.Create(ctx, project.Project{Title: "appended"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if appended.Order != 11 {
		t.Fatalf("default order must be max+1, got %d", appended.Order)
	}
}

func TestCreateActivatesAndDefaultsTags(t *testing.T) {
	s := newService()
	created, err := s.Create(context.Background(), project.Project{Title: "x"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !created.Active {
		t.Fatal("new projects must start active")
	}
	if created.Tags == nil {
		t.Fatal("tags must default to an empty slice")
	}
}

func TestUpdateTouchesOnlyPatchedFields(t *testing.T) {
	s := newService()
	ctx := context.Background()

	created, err := s.Create(ctx, project.Project{
		Title:       "orig",
		Description: "desc",
		Category:    "web",
		Tags:        []string{"go"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	newTitle := "patched"
	updated, err := s.Update(ctx, created.ID, project.Patch{Title: &newTitle})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated.Title != "patched" {
		t.Fatalf("expected patched title, got %q", updated.Title)
	}
	if updated.Description != "desc" || updated.Category != "web" || len(updated.Tags) != 1 {
		t.Fatalf("unpatched fields must survive: %+v", updated)
	}
}

func TestUpdateRejectsEmptyTitle(t *testing.T) {
	s := newService()
	ctx := context.Background()

	created, _ := s.Create(ctx, project.Project{Title: "orig"})
	empty := "  "
	if _, err := s.Update(ctx, created.ID, project.Patch{Title: &empty}); !apperrors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateMissingProjectIsNotFound(t *testing.T) {
	s := newService()
	title := "x"
	if _, err := s.Update(context.Background(), "ghost", project.Patch{Title: &title}); !apperrors.IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestReorderValidation(t *testing.T) {
	s := newService()
	ctx := context.Background()

	if err := s.Reorder(ctx, nil); !apperrors.IsValidation(err) {
		t.Fatalf("expected validation error for empty ids, got %v", err)
	}
	if err := s.Reorder(ctx, []string{"a", ""}); !apperrors.IsValidation(err) {
		t.Fatalf("expected validation error for blank id, got %v", err)
	}
	if err := s.Reorder(ctx, []string{"a", "a"}); !apperrors.IsValidation(err) {
		t.Fatalf("expected validation error for duplicate id, got %v", err)
	}
}

func TestReorderRewritesPositions(t *testing.T) {
	s := newService()
	ctx := context.Background()

	a, _ := s.Create(ctx, project.Project{Title: "a"})
	b, _ := s.Create(ctx, project.Project{Title: "b"})
	c, _ := s.Create(ctx, project.Project{Title: "c"})

	if err := s.Reorder(ctx, []string{b.ID, c.ID, a.ID}); err != nil {
		t.Fatalf("reorder: %v", err)
	}

	list, _ := s.List(ctx, storage.Filter{})
	wantIDs := []string{b.ID, c.ID, a.ID}
	for i, want := range wantIDs {
		if list[i].ID != want {
			t.Fatalf("position %d: want %s got %s", i, want, list[i].ID)
		}
	}
}

func TestDeleteIsPhysical(t *testing.T) {
	s := newService()
	ctx := context.Background()

	created, _ := s.Create(ctx, project.Project{Title: "x"})
	if err := s.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, created.ID); !apperrors.IsNotFound(err) {
		t.Fatalf("expected NotFound after delete, got %v", err)
	}
}
