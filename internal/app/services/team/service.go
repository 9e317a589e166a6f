// Package team manages developer (team member) profiles.
package team

import (
	"context"
	"strings"

	"github.com/atelierhq/studio-platform/internal/app/domain/developer"
	"github.com/atelierhq/studio-platform/internal/app/storage"
	apperrors "github.com/atelierhq/studio-platform/internal/errors"
	"github.com/atelierhq/studio-platform/pkg/logger"
)

// Service wraps developer CRUD over the document store.
type Service struct {
	store storage.DeveloperStore
	log   *logger.Logger
}

// New constructs a team service.
func New(store storage.DeveloperStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("team")
	}
	return &Service{store: store, log: log}
}

// List returns developers ascending by display order.
func (s *Service) List(ctx context.Context, f storage.Filter) ([]developer.Developer, error) {
	return s.store.ListDevelopers(ctx, f)
}

// Get retrieves a single developer. A missing id is a normal NotFound outcome.
func (s *Service) Get(ctx context.Context, id string) (developer.Developer, error) {
	return s.store.GetDeveloper(ctx, id)
}

// Create validates required fields and appends the developer at the end of
// the display order unless the caller chose a position.
func (s *Service) Create(ctx context.Context, d developer.Developer) (developer.Developer, error) {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return developer.Developer{}, apperrors.Validation("name is required")
	}

	if d.Order == 0 {
		existing, err := s.store.ListDevelopers(ctx, storage.Filter{})
		if err != nil {
			return developer.Developer{}, err
		}
		max := 0
		for _, dev := range existing {
			if dev.Order > max {
				max = dev.Order
			}
		}
		d.Order = max + 1
	}
	if d.Skills == nil {
		d.Skills = []string{}
	}
	if d.Socials == nil {
		d.Socials = map[string]string{}
	}
	d.Active = true

	created, err := s.store.CreateDeveloper(ctx, d)
	if err != nil {
		return developer.Developer{}, err
	}
	s.log.WithField("developer_id", created.ID).
		WithField("name", created.Name).
		Info("developer created")
	return created, nil
}

// Update merges only the provided fields onto the stored record.
func (s *Service) Update(ctx context.Context, id string, patch developer.Patch) (developer.Developer, error) {
	d, err := s.store.GetDeveloper(ctx, id)
	if err != nil {
		return developer.Developer{}, err
	}

	if patch.Name != nil {
		if trimmed := strings.TrimSpace(*patch.Name); trimmed != "" {
			d.Name = trimmed
		} else {
			return developer.Developer{}, apperrors.Validation("name cannot be empty")
		}
	}
	if patch.Role != nil {
		d.Role = *patch.Role
	}
	if patch.ImageURL != nil {
		d.ImageURL = *patch.ImageURL
	}
	if patch.Skills != nil {
		d.Skills = *patch.Skills
	}
	if patch.Socials != nil {
		d.Socials = *patch.Socials
	}
	if patch.Order != nil {
		d.Order = *patch.Order
	}
	if patch.Active != nil {
		d.Active = *patch.Active
	}

	updated, err := s.store.UpdateDeveloper(ctx, d)
	if err != nil {
		return developer.Developer{}, err
	}
	s.log.WithField("developer_id", updated.ID).Info("developer updated")
	return updated, nil
}

// Delete removes the developer permanently.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteDeveloper(ctx, id); err != nil {
		return err
	}
	s.log.WithField("developer_id", id).Info("developer deleted")
	return nil
}

// Reorder rewrites the display order of all listed developers atomically.
func (s *Service) Reorder(ctx context.Context, ids []string) error {
	if err := validateReorderIDs(ids); err != nil {
		return err
	}
	if err := s.store.ReorderDevelopers(ctx, ids); err != nil {
		return err
	}
	s.log.WithField("count", len(ids)).Info("developers reordered")
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
