package users

import (
	"context"
	"testing"

	"github.com/atelierhq/studio-platform/internal/app/domain/user"
	"github.com/atelierhq/studio-platform/internal/app/storage"
	"github.com/atelierhq/studio-platform/internal/app/storage/memory"
	apperrors "github.com/atelierhq/studio-platform/internal/errors"
)

func newService() *Service {
	return New(memory.New(), nil)
}

func TestCreateValidatesEmail(t *testing.T) {
	s := newService()
	ctx := context.Background()

	if _, err := s.Create(ctx, user.User{Name: "Ada", Email: "not-an-email"}); !apperrors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := s.Create(ctx, user.User{Email: "a@b.c"}); !apperrors.IsValidation(err) {
		t.Fatalf("expected validation error for missing name, got %v", err)
	}
}

func TestUpsertCreatesOnFirstSignIn(t *testing.T) {
	s := newService()
	ctx := context.Background()

	u, err := s.Upsert(ctx, "Ada", "ada@example.com", "https://img/a.png")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if u.ID == "" || u.Name != "Ada" {
		t.Fatalf("unexpected created user: %+v", u)
	}

	again, err := s.Upsert(ctx, "Ada L.", "ada@example.com", "https://img/b.png")
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if again.ID != u.ID {
		t.Fatal("upsert must reuse the existing record")
	}
	if again.Name != "Ada L." || again.PhotoURL != "https://img/b.png" {
		t.Fatalf("upsert must refresh name and photo: %+v", again)
	}

	list, _ := s.GetByEmail(ctx, "ada@example.com")
	if list.ID != u.ID {
		t.Fatal("lookup after upsert must find the same record")
	}
}

func TestGetByEmailRequiresEmail(t *testing.T) {
	s := newService()
	if _, err := s.GetByEmail(context.Background(), "  "); !apperrors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateAppendsToOrder(t *testing.T) {
	s := newService()
	ctx := context.Background()

	for i, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		created, err := s.Create(ctx, user.User{Name: "User", Email: email})
		if err != nil {
			t.Fatalf("create %s: %v", email, err)
		}
		if created.Order != i+1 {
			t.Fatalf("expected order %d for %s, got %d", i+1, email, created.Order)
		}
	}

	list, err := s.List(ctx, storage.Filter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	prev := 0
	for _, u := range list {
		if u.Order <= prev {
			t.Fatalf("expected strictly increasing order values, got %d after %d (user %s)", u.Order, prev, u.Email)
		}
		prev = u.Order
	}
}

func TestCreateKeepsCallerChosenOrder(t *testing.T) {
	s := newService()

	created, err := s.Create(context.Background(), user.User{Name: "Ada", Email: "ada@example.com", Order: 7})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Order != 7 {
		t.Fatalf("expected caller-chosen order 7, got %d", created.Order)
	}
}

func TestReorderRewritesPositions(t *testing.T) {
	s := newService()
	ctx := context.Background()

	a, _ := s.Create(ctx, user.User{Name: "Ada", Email: "ada@example.com"})
	b, _ := s.Create(ctx, user.User{Name: "Grace", Email: "grace@example.com"})

	if err := s.Reorder(ctx, []string{b.ID, a.ID}); err != nil {
		t.Fatalf("reorder: %v", err)
	}

	list, err := s.List(ctx, storage.Filter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list[0].ID != b.ID || list[1].ID != a.ID {
		t.Fatalf("unexpected order after reorder: %s, %s", list[0].ID, list[1].ID)
	}
}

func TestReorderValidation(t *testing.T) {
	s := newService()
	ctx := context.Background()

	if err := s.Reorder(ctx, nil); !apperrors.IsValidation(err) {
		t.Fatalf("expected validation error for empty ids, got %v", err)
	}
	if err := s.Reorder(ctx, []string{"a", " "}); !apperrors.IsValidation(err) {
		t.Fatalf("expected validation error for blank id, got %v", err)
	}
	if err := s.Reorder(ctx, []string{"a", "a"}); !apperrors.IsValidation(err) {
		t.Fatalf("expected validation error for duplicate ids, got %v", err)
	}
}
