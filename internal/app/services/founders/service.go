// Package founders manages founder profiles. Founders are soft-deleted:
// removal deactivates the record, it never leaves the store.
package founders

import (
	"context"
	"strings"

	"github.com/atelierhq/studio-platform/internal/app/domain/founder"
	"github.com/atelierhq/studio-platform/internal/app/storage"
	apperrors "github.com/atelierhq/studio-platform/internal/errors"
	"github.com/atelierhq/studio-platform/pkg/logger"
)

// Service wraps founder CRUD over the document store.
type Service struct {
	store storage.FounderStore
	log   *logger.Logger
}

// New constructs a founder service.
func New(store storage.FounderStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("founders")
	}
	return &Service{store: store, log: log}
}

// List returns founders ascending by display order.
func (s *Service) List(ctx context.Context, f storage.Filter) ([]founder.Founder, error) {
	return s.store.ListFounders(ctx, f)
}

// Get retrieves a single founder, including deactivated ones.
func (s *Service) Get(ctx context.Context, id string) (founder.Founder, error) {
	return s.store.GetFounder(ctx, id)
}

// Create validates required fields and appends the founder at the end of the
// display order unless the caller chose a position.
func (s *Service) Create(ctx context.Context, f founder.Founder) (founder.Founder, error) {
	f.Name = strings.TrimSpace(f.Name)
	f.Description = strings.TrimSpace(f.Description)
	f.ImageURL = strings.TrimSpace(f.ImageURL)

	if f.Name == "" {
		return founder.Founder{}, apperrors.Validation("name is required")
	}
	if f.ImageURL == "" {
		return founder.Founder{}, apperrors.Validation("image is required")
	}
	if f.Description == "" {
		return founder.Founder{}, apperrors.Validation("description is required")
	}

	if f.Order == 0 {
		existing, err := s.store.ListFounders(ctx, storage.Filter{})
		if err != nil {
			return founder.Founder{}, err
		}
		max := 0
		for _, fd := range existing {
			if fd.Order > max {
				max = fd.Order
			}
		}
		f.Order = max + 1
	}
	if f.Socials == nil {
		f.Socials = map[string]string{}
	}
	f.Active = true

	created, err := s.store.CreateFounder(ctx, f)
	if err != nil {
		return founder.Founder{}, err
	}
	s.log.WithField("founder_id", created.ID).
		WithField("name", created.Name).
		Info("founder created")
	return created, nil
}

// Update merges only the provided fields onto the stored record.
func (s *Service) Update(ctx context.Context, id string, patch founder.Patch) (founder.Founder, error) {
	f, err := s.store.GetFounder(ctx, id)
	if err != nil {
		return founder.Founder{}, err
	}

	if patch.Name != nil {
		if trimmed := strings.TrimSpace(*patch.Name); trimmed != "" {
			f.Name = trimmed
		} else {
			return founder.Founder{}, apperrors.Validation("name cannot be empty")
		}
	}
	if patch.Role != nil {
		f.Role = *patch.Role
	}
	if patch.Description != nil {
		f.Description = *patch.Description
	}
	if patch.ImageURL != nil {
		f.ImageURL = *patch.ImageURL
	}
	if patch.Socials != nil {
		f.Socials = *patch.Socials
	}
	if patch.Order != nil {
		f.Order = *patch.Order
	}
	if patch.Active != nil {
		f.Active = *patch.Active
	}

	updated, err := s.store.UpdateFounder(ctx, f)
	if err != nil {
		return founder.Founder{}, err
	}
	s.log.WithField("founder_id", updated.ID).Info("founder updated")
	return updated, nil
}

// Delete deactivates the founder. Admin views rely on deleted founders
// remaining queryable, so this must never become a physical removal.
func (s *Service) Delete(ctx context.Context, id string) error {
	inactive := false
	if _, err := s.Update(ctx, id, founder.Patch{Active: &inactive}); err != nil {
		return err
	}
	s.log.WithField("founder_id", id).Info("founder deactivated")
	return nil
}

// Reorder rewrites the display order of all listed founders atomically.
func (s *Service) Reorder(ctx context.Context, ids []string) error {
	if err := validateReorderIDs(ids); err != nil {
		return err
	}
	if err := s.store.ReorderFounders(ctx, ids); err != nil {
		return err
	}
	s.log.WithField("count", len(ids)).Info("founders reordered")
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
