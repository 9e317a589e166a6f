// Package projects manages portfolio project records.
package projects

import (
	"context"
	"strings"

	"github.com/atelierhq/studio-platform/internal/app/domain/project"
	"github.com/atelierhq/studio-platform/internal/app/storage"
	apperrors "github.com/atelierhq/studio-platform/internal/errors"
	"github.com/atelierhq/studio-platform/pkg/logger"
)

// Service wraps project CRUD over the document store.
type Service struct {
	store storage.ProjectStore
	log   *logger.Logger
}

// New constructs a project service.
func New(store storage.ProjectStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("projects")
	}
	return &Service{store: store, log: log}
}

// List returns projects ascending by display order.
func (s *Service) List(ctx context.Context, f storage.Filter) ([]project.Project, error) {
	return s.store.ListProjects(ctx, f)
}

// Get retrieves a single project. A missing id is a normal NotFound outcome.
func (s *Service) Get(ctx context.Context, id string) (project.Project, error) {
	return s.store.GetProject(ctx, id)
}

// Create validates required fields, appends the record at the end of the
// display order unless the caller chose a position, and activates it.
func (s *Service) Create(ctx context.Context, p project.Project) (project.Project, error) {
	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" {
		return project.Project{}, apperrors.Validation("title is required")
	}

	if p.Order == 0 {
		next, err := nextOrder(ctx, s.store)
		if err != nil {
			return project.Project{}, err
		}
		p.Order = next
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	p.Active = true

	created, err := s.store.CreateProject(ctx, p)
	if err != nil {
		return project.Project{}, err
	}
	s.log.WithField("project_id", created.ID).
		WithField("title", created.Title).
		Info("project created")
	return created, nil
}

// Update merges only the provided fields onto the stored record.
func (s *Service) Update(ctx context.Context, id string, patch project.Patch) (project.Project, error) {
	p, err := s.store.GetProject(ctx, id)
	if err != nil {
		return project.Project{}, err
	}

	if patch.Title != nil {
		if trimmed := strings.TrimSpace(*patch.Title); trimmed != "" {
			p.Title = trimmed
		} else {
			return project.Project{}, apperrors.Validation("title cannot be empty")
		}
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.ImageURL != nil {
		p.ImageURL = *patch.ImageURL
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Tags != nil {
		p.Tags = *patch.Tags
	}
	if patch.LiveURL != nil {
		p.LiveURL = *patch.LiveURL
	}
	if patch.RepoURL != nil {
		p.RepoURL = *patch.RepoURL
	}
	if patch.Order != nil {
		p.Order = *patch.Order
	}
	if patch.Active != nil {
		p.Active = *patch.Active
	}

	updated, err := s.store.UpdateProject(ctx, p)
	if err != nil {
		return project.Project{}, err
	}
	s.log.WithField("project_id", updated.ID).Info("project updated")
	return updated, nil
}

// Delete removes the project permanently.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteProject(ctx, id); err != nil {
		return err
	}
	s.log.WithField("project_id", id).Info("project deleted")
	return nil
}

// Reorder rewrites the display order of all listed projects atomically.
func (s *Service) Reorder(ctx context.Context, ids []string) error {
	if err := validateReorderIDs(ids); err != nil {
		return err
	}
	if err := s.store.ReorderProjects(ctx, ids); err != nil {
		return err
	}
	s.log.WithField("count", len(ids)).Info("projects reordered")
	return nil
}

// nextOrder appends after the current maximum; 1 when the resource is empty.
func nextOrder(ctx context.Context, store storage.ProjectStore) (int, error) {
	existing, err := store.ListProjects(ctx, storage.Filter{})
	if err != nil {
		return 0, err
	}
	max := 0
	for _, p := range existing {
		if p.Order > max {
			max = p.Order
		}
	}
	return max + 1, nil
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
