// Package users manages admin-surface user records.
package users

import (
	"context"
	"strings"

	"github.com/atelierhq/studio-platform/internal/app/domain/user"
	"github.com/atelierhq/studio-platform/internal/app/storage"
	apperrors "github.com/atelierhq/studio-platform/internal/errors"
	"github.com/atelierhq/studio-platform/pkg/logger"
)

// Service wraps user CRUD over the document store.
type Service struct {
	store storage.UserStore
	log   *logger.Logger
}

// New constructs a user service.
func New(store storage.UserStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("users")
	}
	return &Service{store: store, log: log}
}

// List returns users ascending by display order.
func (s *Service) List(ctx context.Context, f storage.Filter) ([]user.User, error) {
	return s.store.ListUsers(ctx, f)
}

// Get retrieves a single user. A missing id is a normal NotFound outcome.
func (s *Service) Get(ctx context.Context, id string) (user.User, error) {
	return s.store.GetUser(ctx, id)
}

// GetByEmail looks a user up by email, case-insensitively.
func (s *Service) GetByEmail(ctx context.Context, email string) (user.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return user.User{}, apperrors.Validation("email is required")
	}
	return s.store.GetUserByEmail(ctx, email)
}

// Create validates required fields and registers the user, appending it at
// the end of the display order unless the caller chose a position.
func (s *Service) Create(ctx context.Context, u user.User) (user.User, error) {
	u.Name = strings.TrimSpace(u.Name)
	u.Email = strings.TrimSpace(u.Email)

	if u.Name == "" {
		return user.User{}, apperrors.Validation("name is required")
	}
	if u.Email == "" || !strings.Contains(u.Email, "@") {
		return user.User{}, apperrors.Validation("a valid email is required")
	}

	if u.Order == 0 {
		existing, err := s.store.ListUsers(ctx, storage.Filter{})
		if err != nil {
			return user.User{}, err
		}
		max := 0
		for _, eu := range existing {
			if eu.Order > max {
				max = eu.Order
			}
		}
		u.Order = max + 1
	}
	u.Active = true

	created, err := s.store.CreateUser(ctx, u)
	if err != nil {
		return user.User{}, err
	}
	s.log.WithField("user_id", created.ID).
		WithField("email", created.Email).
		Info("user created")
	return created, nil
}

// Upsert records the identity of a signed-in visitor, creating the user on
// first sign-in and refreshing name/photo on subsequent ones.
func (s *Service) Upsert(ctx context.Context, name, email, photoURL string) (user.User, error) {
	existing, err := s.store.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if apperrors.IsNotFound(err) {
			return s.Create(ctx, user.User{Name: name, Email: email, PhotoURL: photoURL})
		}
		return user.User{}, err
	}

	return s.Update(ctx, existing.ID, user.Patch{Name: &name, PhotoURL: &photoURL})
}

// Update merges only the provided fields onto the stored record.
func (s *Service) Update(ctx context.Context, id string, patch user.Patch) (user.User, error) {
	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		return user.User{}, err
	}

	if patch.Name != nil {
		if trimmed := strings.TrimSpace(*patch.Name); trimmed != "" {
			u.Name = trimmed
		} else {
			return user.User{}, apperrors.Validation("name cannot be empty")
		}
	}
	if patch.Email != nil {
		if trimmed := strings.TrimSpace(*patch.Email); trimmed != "" && strings.Contains(trimmed, "@") {
			u.Email = trimmed
		} else {
			return user.User{}, apperrors.Validation("a valid email is required")
		}
	}
	if patch.PhotoURL != nil {
		u.PhotoURL = *patch.PhotoURL
	}
	if patch.Role != nil {
		u.Role = *patch.Role
	}
	if patch.Order != nil {
		u.Order = *patch.Order
	}
	if patch.Active != nil {
		u.Active = *patch.Active
	}

	updated, err := s.store.UpdateUser(ctx, u)
	if err != nil {
		return user.User{}, err
	}
	s.log.WithField("user_id", updated.ID).Info("user updated")
	return updated, nil
}

// Delete removes the user permanently.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.log.WithField("user_id", id).Info("user deleted")
	return nil
}

// Reorder rewrites the display order of all listed users atomically.
func (s *Service) Reorder(ctx context.Context, ids []string) error {
	if err := validateReorderIDs(ids); err != nil {
		return err
	}
	if err := s.store.ReorderUsers(ctx, ids); err != nil {
		return err
	}
	s.log.WithField("count", len(ids)).Info("users reordered")
	return nil
}

func validateReorderIDs(ids []string) error {
	if len(ids) == 0 {
		return apperrors.Validation("ids are required")
	}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			return apperrors.Validation("ids cannot be empty")
		}
		if _, dup := seen[id]; dup {
			return apperrors.Validation("duplicate id " + id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
