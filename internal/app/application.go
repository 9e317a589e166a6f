package app

import (
	"context"
	"fmt"

	"github.com/atelierhq/studio-platform/internal/app/services/founders"
	"github.com/atelierhq/studio-platform/internal/app/services/projects"
	"github.com/atelierhq/studio-platform/internal/app/services/team"
	"github.com/atelierhq/studio-platform/internal/app/services/users"
	"github.com/atelierhq/studio-platform/internal/app/session"
	"github.com/atelierhq/studio-platform/internal/app/storage"
	"github.com/atelierhq/studio-platform/internal/app/storage/memory"
	"github.com/atelierhq/studio-platform/internal/app/system"
	"github.com/atelierhq/studio-platform/pkg/logger"
)

// Stores encapsulates persistence dependencies. Nil stores default to the
// in-memory implementation.
type Stores struct {
	Projects   storage.ProjectStore
	Founders   storage.FounderStore
	Developers storage.DeveloperStore
	Users      storage.UserStore
}

// Options tunes optional application collaborators.
type Options struct {
	SnapshotStore session.SnapshotStore
	Verifier      session.IdentityVerifier
	SessionOpts   []session.Option
}

// Application ties domain services together and manages their lifecycle.
type Application struct {
	manager *system.Manager
	log     *logger.Logger

	Projects *projects.Service
	Founders *founders.Service
	Team     *team.Service
	Users    *users.Service
	Session  *session.Controller
}

// New builds a fully initialised application with the provided stores.
func New(stores Stores, opts Options, log *logger.Logger) (*Application, error) {
	if log == nil {
		log = logger.NewDefault("app")
	}

	mem := memory.New()
	if stores.Projects == nil {
		stores.Projects = mem
	}
	if stores.Founders == nil {
		stores.Founders = mem
	}
	if stores.Developers == nil {
		stores.Developers = mem
	}
	if stores.Users == nil {
		stores.Users = mem
	}

	manager := system.NewManager()

	projectService := projects.New(stores.Projects, log)
	founderService := founders.New(stores.Founders, log)
	teamService := team.New(stores.Developers, log)
	userService := users.New(stores.Users, log)
	sessionController := session.NewController(opts.SnapshotStore, opts.Verifier, log, opts.SessionOpts...)

	for _, name := range []string{"projects", "founders", "team", "users"} {
		if err := manager.Register(system.NoopService{ServiceName: name}); err != nil {
			return nil, fmt.Errorf("register %s service: %w", name, err)
		}
	}
	if err := manager.Register(sessionController); err != nil {
		return nil, fmt.Errorf("register session service: %w", err)
	}

	return &Application{
		manager:  manager,
		log:      log,
		Projects: projectService,
		Founders: founderService,
		Team:     teamService,
		Users:    userService,
		Session:  sessionController,
	}, nil
}

// Attach registers an additional lifecycle-managed service. Call before Start.
func (a *Application) Attach(service system.Service) error {
	return a.manager.Register(service)
}

// Start begins all registered services.
func (a *Application) Start(ctx context.Context) error {
	return a.manager.Start(ctx)
}

// Stop stops all services.
func (a *Application) Stop(ctx context.Context) error {
	return a.manager.Stop(ctx)
}
