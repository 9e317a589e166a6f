package storage

import (
	"context"

	"github.com/atelierhq/studio-platform/internal/app/domain/developer"
	"github.com/atelierhq/studio-platform/internal/app/domain/founder"
	"github.com/atelierhq/studio-platform/internal/app/domain/project"
	"github.com/atelierhq/studio-platform/internal/app/domain/user"
)

// Filter narrows list queries. ActiveOnly is applied by the backend, not by
// callers filtering in memory.
type Filter struct {
	ActiveOnly bool
}

// ProjectStore persists portfolio projects.
type ProjectStore interface {
	CreateProject(ctx context.Context, p project.Project) (project.Project, error)
	UpdateProject(ctx context.Context, p project.Project) (project.Project, error)
	GetProject(ctx context.Context, id string) (project.Project, error)
	ListProjects(ctx context.Context, f Filter) ([]project.Project, error)
	DeleteProject(ctx context.Context, id string) error
	// ReorderProjects rewrites the order of every listed id as one atomic
	// batch. Order values are assigned 1..len(ids) by position.
	ReorderProjects(ctx context.Context, ids []string) error
}

// FounderStore persists founder profiles.
type FounderStore interface {
	CreateFounder(ctx context.Context, f founder.Founder) (founder.Founder, error)
	UpdateFounder(ctx context.Context, f founder.Founder) (founder.Founder, error)
	GetFounder(ctx context.Context, id string) (founder.Founder, error)
	ListFounders(ctx context.Context, f Filter) ([]founder.Founder, error)
	ReorderFounders(ctx context.Context, ids []string) error
}

// DeveloperStore persists team member profiles.
type DeveloperStore interface {
	CreateDeveloper(ctx context.Context, d developer.Developer) (developer.Developer, error)
	UpdateDeveloper(ctx context.Context, d developer.Developer) (developer.Developer, error)
	GetDeveloper(ctx context.Context, id string) (developer.Developer, error)
	ListDevelopers(ctx context.Context, f Filter) ([]developer.Developer, error)
	DeleteDeveloper(ctx context.Context, id string) error
	ReorderDevelopers(ctx context.Context, ids []string) error
}

// UserStore persists admin-surface users.
type UserStore interface {
	CreateUser(ctx context.Context, u user.User) (user.User, error)
	UpdateUser(ctx context.Context, u user.User) (user.User, error)
	GetUser(ctx context.Context, id string) (user.User, error)
	GetUserByEmail(ctx context.Context, email string) (user.User, error)
	ListUsers(ctx context.Context, f Filter) ([]user.User, error)
	DeleteUser(ctx context.Context, id string) error
	ReorderUsers(ctx context.Context, ids []string) error
}
