// Package postgres implements the storage interfaces on PostgreSQL for
// self-hosted deployments that do not use the managed document store.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/atelierhq/studio-platform/internal/app/domain/developer"
	"github.com/atelierhq/studio-platform/internal/app/domain/founder"
	"github.com/atelierhq/studio-platform/internal/app/domain/project"
	"github.com/atelierhq/studio-platform/internal/app/domain/user"
	"github.com/atelierhq/studio-platform/internal/app/storage"
	apperrors "github.com/atelierhq/studio-platform/internal/errors"
)

// Store implements the storage interfaces backed by PostgreSQL.
type Store struct {
	db *sqlx.DB
}

var _ storage.ProjectStore = (*Store)(nil)
var _ storage.FounderStore = (*Store)(nil)
var _ storage.DeveloperStore = (*Store)(nil)
var _ storage.UserStore = (*Store)(nil)

// Open connects, pings, and applies pending migrations.
func Open(dsn string) (*Store, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, apperrors.StoreUnavailable(err)
	}

	if err := Migrate(db.DB); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// New wraps an existing handle without running migrations.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Close releases the underlying connection pool.
func (s *Store) Close() error { return s.db.Close() }

func mapSQLErr(err error, resource, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NotFound(resource, id)
	}
	return apperrors.StoreUnavailable(err)
}

const orderedSuffix = " ORDER BY sort_order ASC, created_at ASC, id ASC"

// --- ProjectStore -----------------------------------------------------------

type projectRow struct {
	ID          string    `db:"id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	ImageURL    string    `db:"image_url"`
	Category    string    `db:"category"`
	Tags        []byte    `db:"tags"`
	LiveURL     string    `db:"live_url"`
	RepoURL     string    `db:"repo_url"`
	SortOrder   int       `db:"sort_order"`
	Active      bool      `db:"active"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r projectRow) toDomain() project.Project {
	tags := []string{}
	if len(r.Tags) > 0 {
		_ = json.Unmarshal(r.Tags, &tags)
	}
	return project.Project{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		ImageURL:    r.ImageURL,
		Category:    r.Category,
		Tags:        tags,
		LiveURL:     r.LiveURL,
		RepoURL:     r.RepoURL,
		Order:       r.SortOrder,
		Active:      r.Active,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func (s *Store) CreateProject(ctx context.Context, p project.Project) (project.Project, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	tagsJSON, err := json.Marshal(p.Tags)
	if err != nil {
		return project.Project{}, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO site_projects (id, title, description, image_url, category, tags, live_url, repo_url, sort_order, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, p.ID, p.Title, p.Description, p.ImageURL, p.Category, tagsJSON, p.LiveURL, p.RepoURL, p.Order, p.Active, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return project.Project{}, apperrors.StoreUnavailable(err)
	}
	return p, nil
}

func (s *Store) UpdateProject(ctx context.Context, p project.Project) (project.Project, error) {
	existing, err := s.GetProject(ctx, p.ID)
	if err != nil {
		return project.Project{}, err
	}

	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now().UTC()

	tagsJSON, err := json.Marshal(p.Tags)
	if err != nil {
		return project.Project{}, err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE site_projects
		SET title = $2, description = $3, image_url = $4, category = $5, tags = $6,
		    live_url = $7, repo_url = $8, sort_order = $9, active = $10, updated_at = $11
		WHERE id = $1
	`, p.ID, p.Title, p.Description, p.ImageURL, p.Category, tagsJSON, p.LiveURL, p.RepoURL, p.Order, p.Active, p.UpdatedAt)
	if err != nil {
		return project.Project{}, apperrors.StoreUnavailable(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return project.Project{}, apperrors.NotFound("project", p.ID)
	}
	return p, nil
}

func (s *Store) GetProject(ctx context.Context, id string) (project.Project, error) {
	var row projectRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM site_projects WHERE id = $1`, id)
	if err != nil {
		return project.Project{}, mapSQLErr(err, "project", id)
	}
	return row.toDomain(), nil
}

func (s *Store) ListProjects(ctx context.Context, f storage.Filter) ([]project.Project, error) {
	query := `SELECT * FROM site_projects`
	if f.ActiveOnly {
		query += ` WHERE active = TRUE`
	}
	query += orderedSuffix

	var rows []projectRow
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, apperrors.StoreUnavailable(err)
	}
	result := make([]project.Project, len(rows))
	for i, r := range rows {
		result[i] = r.toDomain()
	}
	return result, nil
}

func (s *Store) DeleteProject(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM site_projects WHERE id = $1`, id)
	if err != nil {
		return apperrors.StoreUnavailable(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return apperrors.NotFound("project", id)
	}
	return nil
}

func (s *Store) ReorderProjects(ctx context.Context, ids []string) error {
	return s.reorder(ctx, "site_projects", ids)
}

// reorder rewrites sort_order inside one transaction so no partial state is
// observable.
func (s *Store) reorder(ctx context.Context, table string, ids []string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperrors.StoreUnavailable(err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for i, id := range ids {
		result, err := tx.ExecContext(ctx,
			fmt.Sprintf(`UPDATE %s SET sort_order = $2, updated_at = $3 WHERE id = $1`, table),
			id, i+1, now)
		if err != nil {
			return apperrors.StoreUnavailable(err)
		}
		if rows, _ := result.RowsAffected(); rows == 0 {
			return apperrors.NotFound(table, id)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.StoreUnavailable(err)
	}
	return nil
}

// --- FounderStore -----------------------------------------------------------

type founderRow struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Role        string    `db:"role"`
	Description string    `db:"description"`
	ImageURL    string    `db:"image_url"`
	Socials     []byte    `db:"socials"`
	SortOrder   int       `db:"sort_order"`
	Active      bool      `db:"active"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r founderRow) toDomain() founder.Founder {
	socials := map[string]string{}
	if len(r.Socials) > 0 {
		_ = json.Unmarshal(r.Socials, &socials)
	}
	return founder.Founder{
		ID:          r.ID,
		Name:        r.Name,
		Role:        r.Role,
		Description: r.Description,
		ImageURL:    r.ImageURL,
		Socials:     socials,
		Order:       r.SortOrder,
		Active:      r.Active,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func (s *Store) CreateFounder(ctx context.Context, f founder.Founder) (founder.Founder, error) {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	f.CreatedAt = now
	f.UpdatedAt = now

	socialsJSON, err := json.Marshal(f.Socials)
	if err != nil {
		return founder.Founder{}, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO site_founders (id, name, role, description, image_url, socials, sort_order, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, f.ID, f.Name, f.Role, f.Description, f.ImageURL, socialsJSON, f.Order, f.Active, f.CreatedAt, f.UpdatedAt)
	if err != nil {
		return founder.Founder{}, apperrors.StoreUnavailable(err)
	}
	return f, nil
}

func (s *Store) UpdateFounder(ctx context.Context, f founder.Founder) (founder.Founder, error) {
	existing, err := s.GetFounder(ctx, f.ID)
	if err != nil {
		return founder.Founder{}, err
	}

	f.CreatedAt = existing.CreatedAt
	f.UpdatedAt = time.Now().UTC()

	socialsJSON, err := json.Marshal(f.Socials)
	if err != nil {
		return founder.Founder{}, err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE site_founders
		SET name = $2, role = $3, description = $4, image_url = $5, socials = $6,
		    sort_order = $7, active = $8, updated_at = $9
		WHERE id = $1
	`, f.ID, f.Name, f.Role, f.Description, f.ImageURL, socialsJSON, f.Order, f.Active, f.UpdatedAt)
	if err != nil {
		return founder.Founder{}, apperrors.StoreUnavailable(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return founder.Founder{}, apperrors.NotFound("founder", f.ID)
	}
	return f, nil
}

func (s *Store) GetFounder(ctx context.Context, id string) (founder.Founder, error) {
	var row founderRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM site_founders WHERE id = $1`, id)
	if err != nil {
		return founder.Founder{}, mapSQLErr(err, "founder", id)
	}
	return row.toDomain(), nil
}

func (s *Store) ListFounders(ctx context.Context, f storage.Filter) ([]founder.Founder, error) {
	query := `SELECT * FROM site_founders`
	if f.ActiveOnly {
		query += ` WHERE active = TRUE`
	}
	query += orderedSuffix

	var rows []founderRow
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, apperrors.StoreUnavailable(err)
	}
	result := make([]founder.Founder, len(rows))
	for i, r := range rows {
		result[i] = r.toDomain()
	}
	return result, nil
}

func (s *Store) ReorderFounders(ctx context.Context, ids []string) error {
	return s.reorder(ctx, "site_founders", ids)
}

// --- DeveloperStore ---------------------------------------------------------

type developerRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Role      string    `db:"role"`
	ImageURL  string    `db:"image_url"`
	Skills    []byte    `db:"skills"`
	Socials   []byte    `db:"socials"`
	SortOrder int       `db:"sort_order"`
	Active    bool      `db:"active"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r developerRow) toDomain() developer.Developer {
	skills := []string{}
	if len(r.Skills) > 0 {
		_ = json.Unmarshal(r.Skills, &skills)
	}
	socials := map[string]string{}
	if len(r.Socials) > 0 {
		_ = json.Unmarshal(r.Socials, &socials)
	}
	return developer.Developer{
		ID:        r.ID,
		Name:      r.Name,
		Role:      r.Role,
		ImageURL:  r.ImageURL,
		Skills:    skills,
		Socials:   socials,
		Order:     r.SortOrder,
		Active:    r.Active,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func (s *Store) CreateDeveloper(ctx context.Context, d developer.Developer) (developer.Developer, error) {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now

	skillsJSON, err := json.Marshal(d.Skills)
	if err != nil {
		return developer.Developer{}, err
	}
	socialsJSON, err := json.Marshal(d.Socials)
	if err != nil {
		return developer.Developer{}, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO site_developers (id, name, role, image_url, skills, socials, sort_order, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, d.ID, d.Name, d.Role, d.ImageURL, skillsJSON, socialsJSON, d.Order, d.Active, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return developer.Developer{}, apperrors.StoreUnavailable(err)
	}
	return d, nil
}

func (s *Store) UpdateDeveloper(ctx context.Context, d developer.Developer) (developer.Developer, error) {
	existing, err := s.GetDeveloper(ctx, d.ID)
	if err != nil {
		return developer.Developer{}, err
	}

	d.CreatedAt = existing.CreatedAt
	d.UpdatedAt = time.Now().UTC()

	skillsJSON, err := json.Marshal(d.Skills)
	if err != nil {
		return developer.Developer{}, err
	}
	socialsJSON, err := json.Marshal(d.Socials)
	if err != nil {
		return developer.Developer{}, err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE site_developers
		SET name = $2, role = $3, image_url = $4, skills = $5, socials = $6,
		    sort_order = $7, active = $8, updated_at = $9
		WHERE id = $1
	`, d.ID, d.Name, d.Role, d.ImageURL, skillsJSON, socialsJSON, d.Order, d.Active, d.UpdatedAt)
	if err != nil {
		return developer.Developer{}, apperrors.StoreUnavailable(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return developer.Developer{}, apperrors.NotFound("developer", d.ID)
	}
	return d, nil
}

func (s *Store) GetDeveloper(ctx context.Context, id string) (developer.Developer, error) {
	var row developerRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM site_developers WHERE id = $1`, id)
	if err != nil {
		return developer.Developer{}, mapSQLErr(err, "developer", id)
	}
	return row.toDomain(), nil
}

func (s *Store) ListDevelopers(ctx context.Context, f storage.Filter) ([]developer.Developer, error) {
	query := `SELECT * FROM site_developers`
	if f.ActiveOnly {
		query += ` WHERE active = TRUE`
	}
	query += orderedSuffix

	var rows []developerRow
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, apperrors.StoreUnavailable(err)
	}
	result := make([]developer.Developer, len(rows))
	for i, r := range rows {
		result[i] = r.toDomain()
	}
	return result, nil
}

func (s *Store) DeleteDeveloper(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM site_developers WHERE id = $1`, id)
	if err != nil {
		return apperrors.StoreUnavailable(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return apperrors.NotFound("developer", id)
	}
	return nil
}

func (s *Store) ReorderDevelopers(ctx context.Context, ids []string) error {
	return s.reorder(ctx, "site_developers", ids)
}

// --- UserStore --------------------------------------------------------------

type userRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	PhotoURL  string    `db:"photo_url"`
	Role      string    `db:"role"`
	SortOrder int       `db:"sort_order"`
	Active    bool      `db:"active"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r userRow) toDomain() user.User {
	return user.User{
		ID:        r.ID,
		Name:      r.Name,
		Email:     r.Email,
		PhotoURL:  r.PhotoURL,
		Role:      r.Role,
		Order:     r.SortOrder,
		Active:    r.Active,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func (s *Store) CreateUser(ctx context.Context, u user.User) (user.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO site_users (id, name, email, photo_url, role, sort_order, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, u.ID, u.Name, u.Email, u.PhotoURL, u.Role, u.Order, u.Active, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return user.User{}, apperrors.StoreUnavailable(err)
	}
	return u, nil
}

func (s *Store) UpdateUser(ctx context.Context, u user.User) (user.User, error) {
	existing, err := s.GetUser(ctx, u.ID)
	if err != nil {
		return user.User{}, err
	}

	u.CreatedAt = existing.CreatedAt
	u.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE site_users
		SET name = $2, email = $3, photo_url = $4, role = $5, sort_order = $6, active = $7, updated_at = $8
		WHERE id = $1
	`, u.ID, u.Name, u.Email, u.PhotoURL, u.Role, u.Order, u.Active, u.UpdatedAt)
	if err != nil {
		return user.User{}, apperrors.StoreUnavailable(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return user.User{}, apperrors.NotFound("user", u.ID)
	}
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (user.User, error) {
	var row userRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM site_users WHERE id = $1`, id)
	if err != nil {
		return user.User{}, mapSQLErr(err, "user", id)
	}
	return row.toDomain(), nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	var row userRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM site_users WHERE LOWER(email) = LOWER($1)`, email)
	if err != nil {
		return user.User{}, mapSQLErr(err, "user", email)
	}
	return row.toDomain(), nil
}

func (s *Store) ListUsers(ctx context.Context, f storage.Filter) ([]user.User, error) {
	query := `SELECT * FROM site_users`
	if f.ActiveOnly {
		query += ` WHERE active = TRUE`
	}
	query += orderedSuffix

	var rows []userRow
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, apperrors.StoreUnavailable(err)
	}
	result := make([]user.User, len(rows))
	for i, r := range rows {
		result[i] = r.toDomain()
	}
	return result, nil
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM site_users WHERE id = $1`, id)
	if err != nil {
		return apperrors.StoreUnavailable(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return apperrors.NotFound("user", id)
	}
	return nil
}

func (s *Store) ReorderUsers(ctx context.Context, ids []string) error {
	return s.reorder(ctx, "site_users", ids)
}
