package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/atelierhq/studio-platform/internal/app/domain/developer"
	"github.com/atelierhq/studio-platform/internal/app/domain/founder"
	"github.com/atelierhq/studio-platform/internal/app/domain/project"
	"github.com/atelierhq/studio-platform/internal/app/domain/user"
	"github.com/atelierhq/studio-platform/internal/app/storage"
	apperrors "github.com/atelierhq/studio-platform/internal/errors"
)

// Store is an in-memory implementation of the storage interfaces. It is safe
// for concurrent use and is primarily intended for tests and local development.
type Store struct {
	mu           sync.RWMutex
	nextID       int64
	projects     map[string]project.Project
	founders     map[string]founder.Founder
	developers   map[string]developer.Developer
	users        map[string]user.User
	usersByEmail map[string]string
}

var _ storage.ProjectStore = (*Store)(nil)
var _ storage.FounderStore = (*Store)(nil)
var _ storage.DeveloperStore = (*Store)(nil)
var _ storage.UserStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		nextID:       1,
		projects:     make(map[string]project.Project),
		founders:     make(map[string]founder.Founder),
		developers:   make(map[string]developer.Developer),
		users:        make(map[string]user.User),
		usersByEmail: make(map[string]string),
	}
}

func (s *Store) nextIDLocked() string {
	id := s.nextID
	s.nextID++
	return fmt.Sprintf("%d", id)
}

// ProjectStore implementation -------------------------------------------------

func (s *Store) CreateProject(_ context.Context, p project.Project) (project.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = s.nextIDLocked()
	} else if _, exists := s.projects[p.ID]; exists {
		return project.Project{}, apperrors.Validation(fmt.Sprintf("project %s already exists", p.ID))
	}

	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	s.projects[p.ID] = cloneProject(p)
	return cloneProject(p), nil
}

func (s *Store) UpdateProject(_ context.Context, p project.Project) (project.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.projects[p.ID]
	if !ok {
		return project.Project{}, apperrors.NotFound("project", p.ID)
	}

	p.CreatedAt = original.CreatedAt
	p.UpdatedAt = time.Now().UTC()

	s.projects[p.ID] = cloneProject(p)
	return cloneProject(p), nil
}

func (s *Store) GetProject(_ context.Context, id string) (project.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.projects[id]
	if !ok {
		return project.Project{}, apperrors.NotFound("project", id)
	}
	return cloneProject(p), nil
}

func (s *Store) ListProjects(_ context.Context, f storage.Filter) ([]project.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]project.Project, 0, len(s.projects))
	for _, p := range s.projects {
		if f.ActiveOnly && !p.Active {
			continue
		}
		result = append(result, cloneProject(p))
	}
	sort.Slice(result, func(i, j int) bool {
		return lessOrdered(result[i].Order, result[j].Order, result[i].CreatedAt, result[j].CreatedAt, result[i].ID, result[j].ID)
	})
	return result, nil
}

func (s *Store) DeleteProject(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[id]; !ok {
		return apperrors.NotFound("project", id)
	}
	delete(s.projects, id)
	return nil
}

func (s *Store) ReorderProjects(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		if _, ok := s.projects[id]; !ok {
			return apperrors.NotFound("project", id)
		}
	}
	now := time.Now().UTC()
	for i, id := range ids {
		p := s.projects[id]
		p.Order = i + 1
		p.UpdatedAt = now
		s.projects[id] = p
	}
	return nil
}

// FounderStore implementation -------------------------------------------------

func (s *Store) CreateFounder(_ context.Context, f founder.Founder) (founder.Founder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if f.ID == "" {
		f.ID = s.nextIDLocked()
	} else if _, exists := s.founders[f.ID]; exists {
		return founder.Founder{}, apperrors.Validation(fmt.Sprintf("founder %s already exists", f.ID))
	}

	now := time.Now().UTC()
	f.CreatedAt = now
	f.UpdatedAt = now

	s.founders[f.ID] = cloneFounder(f)
	return cloneFounder(f), nil
}

func (s *Store) UpdateFounder(_ context.Context, f founder.Founder) (founder.Founder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.founders[f.ID]
	if !ok {
		return founder.Founder{}, apperrors.NotFound("founder", f.ID)
	}

	f.CreatedAt = original.CreatedAt
	f.UpdatedAt = time.Now().UTC()

	s.founders[f.ID] = cloneFounder(f)
	return cloneFounder(f), nil
}

func (s *Store) GetFounder(_ context.Context, id string) (founder.Founder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.founders[id]
	if !ok {
		return founder.Founder{}, apperrors.NotFound("founder", id)
	}
	return cloneFounder(f), nil
}

func (s *Store) ListFounders(_ context.Context, f storage.Filter) ([]founder.Founder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]founder.Founder, 0, len(s.founders))
	for _, fd := range s.founders {
		if f.ActiveOnly && !fd.Active {
			continue
		}
		result = append(result, cloneFounder(fd))
	}
	sort.Slice(result, func(i, j int) bool {
		return lessOrdered(result[i].Order, result[j].Order, result[i].CreatedAt, result[j].CreatedAt, result[i].ID, result[j].ID)
	})
	return result, nil
}

func (s *Store) ReorderFounders(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		if _, ok := s.founders[id]; !ok {
			return apperrors.NotFound("founder", id)
		}
	}
	now := time.Now().UTC()
	for i, id := range ids {
		f := s.founders[id]
		f.Order = i + 1
		f.UpdatedAt = now
		s.founders[id] = f
	}
	return nil
}

// DeveloperStore implementation -----------------------------------------------

func (s *Store) CreateDeveloper(_ context.Context, d developer.Developer) (developer.Developer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d.ID == "" {
		d.ID = s.nextIDLocked()
	} else if _, exists := s.developers[d.ID]; exists {
		return developer.Developer{}, apperrors.Validation(fmt.Sprintf("developer %s already exists", d.ID))
	}

	now := time.Now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now

	s.developers[d.ID] = cloneDeveloper(d)
	return cloneDeveloper(d), nil
}

func (s *Store) UpdateDeveloper(_ context.Context, d developer.Developer) (developer.Developer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.developers[d.ID]
	if !ok {
		return developer.Developer{}, apperrors.NotFound("developer", d.ID)
	}

	d.CreatedAt = original.CreatedAt
	d.UpdatedAt = time.Now().UTC()

	s.developers[d.ID] = cloneDeveloper(d)
	return cloneDeveloper(d), nil
}

func (s *Store) GetDeveloper(_ context.Context, id string) (developer.Developer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.developers[id]
	if !ok {
		return developer.Developer{}, apperrors.NotFound("developer", id)
	}
	return cloneDeveloper(d), nil
}

func (s *Store) ListDevelopers(_ context.Context, f storage.Filter) ([]developer.Developer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]developer.Developer, 0, len(s.developers))
	for _, d := range s.developers {
		if f.ActiveOnly && !d.Active {
			continue
		}
		result = append(result, cloneDeveloper(d))
	}
	sort.Slice(result, func(i, j int) bool {
		return lessOrdered(result[i].Order, result[j].Order, result[i].CreatedAt, result[j].CreatedAt, result[i].ID, result[j].ID)
	})
	return result, nil
}

func (s *Store) DeleteDeveloper(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.developers[id]; !ok {
		return apperrors.NotFound("developer", id)
	}
	delete(s.developers, id)
	return nil
}

func (s *Store) ReorderDevelopers(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		if _, ok := s.developers[id]; !ok {
			return apperrors.NotFound("developer", id)
		}
	}
	now := time.Now().UTC()
	for i, id := range ids {
		d := s.developers[id]
		d.Order = i + 1
		d.UpdatedAt = now
		s.developers[id] = d
	}
	return nil
}

// UserStore implementation ----------------------------------------------------

func (s *Store) CreateUser(_ context.Context, u user.User) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.ID == "" {
		u.ID = s.nextIDLocked()
	} else if _, exists := s.users[u.ID]; exists {
		return user.User{}, apperrors.Validation(fmt.Sprintf("user %s already exists", u.ID))
	}

	emailKey := strings.ToLower(strings.TrimSpace(u.Email))
	if emailKey != "" {
		if existing, exists := s.usersByEmail[emailKey]; exists {
			return user.User{}, apperrors.Validation(fmt.Sprintf("email %s already registered to user %s", u.Email, existing))
		}
	}

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	s.users[u.ID] = u
	if emailKey != "" {
		s.usersByEmail[emailKey] = u.ID
	}
	return u, nil
}

func (s *Store) UpdateUser(_ context.Context, u user.User) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.users[u.ID]
	if !ok {
		return user.User{}, apperrors.NotFound("user", u.ID)
	}

	oldKey := strings.ToLower(strings.TrimSpace(original.Email))
	newKey := strings.ToLower(strings.TrimSpace(u.Email))
	if newKey != "" {
		if existing, exists := s.usersByEmail[newKey]; exists && existing != u.ID {
			return user.User{}, apperrors.Validation(fmt.Sprintf("email %s already registered to user %s", u.Email, existing))
		}
	}

	u.CreatedAt = original.CreatedAt
	u.UpdatedAt = time.Now().UTC()

	s.users[u.ID] = u
	if oldKey != "" && oldKey != newKey {
		delete(s.usersByEmail, oldKey)
	}
	if newKey != "" {
		s.usersByEmail[newKey] = u.ID
	}
	return u, nil
}

func (s *Store) GetUser(_ context.Context, id string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return user.User{}, apperrors.NotFound("user", id)
	}
	return u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if id, ok := s.usersByEmail[strings.ToLower(strings.TrimSpace(email))]; ok {
		return s.users[id], nil
	}
	return user.User{}, apperrors.NotFound("user", email)
}

func (s *Store) ListUsers(_ context.Context, f storage.Filter) ([]user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]user.User, 0, len(s.users))
	for _, u := range s.users {
		if f.ActiveOnly && !u.Active {
			continue
		}
		result = append(result, u)
	}
	sort.Slice(result, func(i, j int) bool {
		return lessOrdered(result[i].Order, result[j].Order, result[i].CreatedAt, result[j].CreatedAt, result[i].ID, result[j].ID)
	})
	return result, nil
}

func (s *Store) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return apperrors.NotFound("user", id)
	}
	delete(s.users, id)
	if key := strings.ToLower(strings.TrimSpace(u.Email)); key != "" {
		delete(s.usersByEmail, key)
	}
	return nil
}

func (s *Store) ReorderUsers(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		if _, ok := s.users[id]; !ok {
			return apperrors.NotFound("user", id)
		}
	}
	now := time.Now().UTC()
	for i, id := range ids {
		u := s.users[id]
		u.Order = i + 1
		u.UpdatedAt = now
		s.users[id] = u
	}
	return nil
}

// Helpers --------------------------------------------------------------------

func lessOrdered(orderA, orderB int, createdA, createdB time.Time, idA, idB string) bool {
	return storage.Less(orderA, orderB, createdA, createdB, idA, idB)
}

func cloneStrings(src []string) []string {
	dst := make([]string, len(src))
	copy(dst, src)
	return dst
}

func cloneMap(src map[string]string) map[string]string {
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func cloneProject(p project.Project) project.Project {
	p.Tags = cloneStrings(p.Tags)
	return p
}

func cloneFounder(f founder.Founder) founder.Founder {
	f.Socials = cloneMap(f.Socials)
	return f
}

func cloneDeveloper(d developer.Developer) developer.Developer {
	d.Skills = cloneStrings(d.Skills)
	d.Socials = cloneMap(d.Socials)
	return d
}
