package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/atelierhq/studio-platform/internal/app/domain/developer"
	"github.com/atelierhq/studio-platform/internal/app/domain/founder"
	"github.com/atelierhq/studio-platform/internal/app/domain/project"
	"github.com/atelierhq/studio-platform/internal/app/domain/user"
	"github.com/atelierhq/studio-platform/internal/app/metrics"
	"github.com/atelierhq/studio-platform/internal/app/storage"
	apperrors "github.com/atelierhq/studio-platform/internal/errors"
	"github.com/atelierhq/studio-platform/pkg/logger"
)

const (
	tableProjects   = "projects"
	tableFounders   = "founders"
	tableDevelopers = "developers"
	tableUsers      = "users"

	orderedQuery = "order=sort_order.asc,created_at.asc,id.asc"
)

// Store implements the storage interfaces against the document store.
type Store struct {
	client *Client
	log    *logger.Logger
}

var _ storage.ProjectStore = (*Store)(nil)
var _ storage.FounderStore = (*Store)(nil)
var _ storage.DeveloperStore = (*Store)(nil)
var _ storage.UserStore = (*Store)(nil)

// New creates a store over the given client.
func New(client *Client, log *logger.Logger) *Store {
	if log == nil {
		log = logger.NewDefault("docstore")
	}
	return &Store{client: client, log: log}
}

// Row types mirror the table columns. The ordering column is named sort_order
// because "order" collides with the PostgREST query keyword.

type projectRow struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	Category    string    `json:"category"`
	Tags        []string  `json:"tags"`
	LiveURL     string    `json:"live_url"`
	RepoURL     string    `json:"repo_url"`
	SortOrder   int       `json:"sort_order"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type founderRow struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Role        string            `json:"role"`
	Description string            `json:"description"`
	ImageURL    string            `json:"image_url"`
	Socials     map[string]string `json:"socials"`
	SortOrder   int               `json:"sort_order"`
	Active      bool              `json:"active"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

type developerRow struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Role      string            `json:"role"`
	ImageURL  string            `json:"image_url"`
	Skills    []string          `json:"skills"`
	Socials   map[string]string `json:"socials"`
	SortOrder int               `json:"sort_order"`
	Active    bool              `json:"active"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

type userRow struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	PhotoURL  string    `json:"photo_url"`
	Role      string    `json:"role"`
	SortOrder int       `json:"sort_order"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// orderEntry is the payload for batched reorder upserts.
type orderEntry struct {
	ID        string    `json:"id"`
	SortOrder int       `json:"sort_order"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Generic row operations --------------------------------------------------

func (s *Store) insert(ctx context.Context, table string, row interface{}) ([]byte, error) {
	data, err := s.client.request(ctx, "POST", table, []interface{}{row}, "", nil)
	recordOutcome(table, err)
	if err != nil {
		return nil, wrapStoreErr(err, table, "insert")
	}
	return data, nil
}

func (s *Store) patch(ctx context.Context, table, id string, row interface{}) ([]byte, error) {
	query := "id=eq." + url.QueryEscape(id)
	data, err := s.client.request(ctx, "PATCH", table, row, query, nil)
	recordOutcome(table, err)
	if err != nil {
		return nil, wrapStoreErr(err, table, "update")
	}
	return data, nil
}

func (s *Store) fetchOne(ctx context.Context, table, id string) ([]byte, error) {
	query := "id=eq." + url.QueryEscape(id) + "&limit=1"
	data, err := s.client.request(ctx, "GET", table, nil, query, nil)
	recordOutcome(table, err)
	if err != nil {
		return nil, wrapStoreErr(err, table, "get")
	}
	return data, nil
}

// fallbackPageSize bounds each unordered fetch on the fallback path. Pages
// are fetched until a short one so the full table is read, not a truncated
// prefix.
var fallbackPageSize = 1000

// fetchList runs the indexed filter+order query and falls back to an
// unordered fetch when the store rejects the order clause. The caller sorts
// the fallback result so both paths return identical ordering.
func (s *Store) fetchList(ctx context.Context, table string, activeOnly bool) ([]byte, bool, error) {
	filter := ""
	if activeOnly {
		filter = "active=eq.true&"
	}

	data, err := s.client.request(ctx, "GET", table, nil, filter+orderedQuery, nil)
	if err == nil {
		recordOutcome(table, nil)
		return data, true, nil
	}
	if !isQueryRejected(err) {
		recordOutcome(table, err)
		return nil, false, wrapStoreErr(err, table, "list")
	}

	s.log.WithField("table", table).Warn("ordered query rejected, falling back to client-side sort")
	all := make([]json.RawMessage, 0, fallbackPageSize)
	for offset := 0; ; offset += fallbackPageSize {
		query := fmt.Sprintf("%slimit=%d&offset=%d", filter, fallbackPageSize, offset)
		data, err = s.client.request(ctx, "GET", table, nil, query, nil)
		recordOutcome(table, err)
		if err != nil {
			return nil, false, wrapStoreErr(err, table, "list")
		}
		var page []json.RawMessage
		if err := json.Unmarshal(data, &page); err != nil {
			return nil, false, apperrors.StoreUnavailable(fmt.Errorf("decode %s page: %w", table, err))
		}
		all = append(all, page...)
		if len(page) < fallbackPageSize {
			break
		}
	}
	combined, err := json.Marshal(all)
	if err != nil {
		return nil, false, apperrors.StoreUnavailable(fmt.Errorf("merge %s pages: %w", table, err))
	}
	return combined, false, nil
}

func (s *Store) deleteRow(ctx context.Context, table, id string) error {
	query := "id=eq." + url.QueryEscape(id)
	data, err := s.client.request(ctx, "DELETE", table, nil, query, nil)
	recordOutcome(table, err)
	if err != nil {
		return wrapStoreErr(err, table, "delete")
	}
	var deleted []json.RawMessage
	if err := json.Unmarshal(data, &deleted); err == nil && len(deleted) == 0 {
		return apperrors.NotFound(table, id)
	}
	return nil
}

// reorder rewrites sort_order for every id in one upsert statement. The store
// applies the batch atomically, so readers never observe a partial rewrite.
func (s *Store) reorder(ctx context.Context, table string, ids []string) error {
	now := time.Now().UTC()
	entries := make([]orderEntry, len(ids))
	for i, id := range ids {
		entries[i] = orderEntry{ID: id, SortOrder: i + 1, UpdatedAt: now}
	}

	headers := map[string]string{"Prefer": "resolution=merge-duplicates,return=representation"}
	data, err := s.client.request(ctx, "POST", table, entries, "on_conflict=id", headers)
	recordOutcome(table, err)
	if err != nil {
		return wrapStoreErr(err, table, "reorder")
	}
	var applied []json.RawMessage
	if err := json.Unmarshal(data, &applied); err == nil && len(applied) != len(ids) {
		return apperrors.Internal(fmt.Sprintf("reorder applied to %d of %d %s rows", len(applied), len(ids), table), nil)
	}
	return nil
}

func recordOutcome(table string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.RecordStoreRequest(table, outcome)
}

func wrapStoreErr(err error, table, op string) error {
	if apperrors.GetServiceError(err) != nil {
		return err
	}
	if isMissing(err) {
		return apperrors.NotFound(table, "")
	}
	return apperrors.StoreUnavailable(fmt.Errorf("%s %s: %w", op, table, err))
}

func decodeRows[T any](data []byte, table string) ([]T, error) {
	var rows []T
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, apperrors.StoreUnavailable(fmt.Errorf("decode %s response: %w", table, err))
	}
	return rows, nil
}

func decodeRow[T any](data []byte, table, id string) (T, error) {
	rows, err := decodeRows[T](data, table)
	if err != nil {
		var zero T
		return zero, err
	}
	if len(rows) == 0 {
		var zero T
		return zero, apperrors.NotFound(table, id)
	}
	return rows[0], nil
}

// ProjectStore implementation -------------------------------------------------

func projectToRow(p project.Project) projectRow {
	return projectRow{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		Category:    p.Category,
		Tags:        p.Tags,
		LiveURL:     p.LiveURL,
		RepoURL:     p.RepoURL,
		SortOrder:   p.Order,
		Active:      p.Active,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func rowToProject(r projectRow) project.Project {
	if r.Tags == nil {
		r.Tags = []string{}
	}
	return project.Project{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		ImageURL:    r.ImageURL,
		Category:    r.Category,
		Tags:        r.Tags,
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

	data, err := s.insert(ctx, tableProjects, projectToRow(p))
	if err != nil {
		return project.Project{}, err
	}
	row, err := decodeRow[projectRow](data, tableProjects, p.ID)
	if err != nil {
		return project.Project{}, err
	}
	return rowToProject(row), nil
}

func (s *Store) UpdateProject(ctx context.Context, p project.Project) (project.Project, error) {
	p.UpdatedAt = time.Now().UTC()
	data, err := s.patch(ctx, tableProjects, p.ID, projectToRow(p))
	if err != nil {
		return project.Project{}, err
	}
	row, err := decodeRow[projectRow](data, tableProjects, p.ID)
	if err != nil {
		return project.Project{}, err
	}
	return rowToProject(row), nil
}

func (s *Store) GetProject(ctx context.Context, id string) (project.Project, error) {
	data, err := s.fetchOne(ctx, tableProjects, id)
	if err != nil {
		return project.Project{}, err
	}
	row, err := decodeRow[projectRow](data, tableProjects, id)
	if err != nil {
		return project.Project{}, err
	}
	return rowToProject(row), nil
}

func (s *Store) ListProjects(ctx context.Context, f storage.Filter) ([]project.Project, error) {
	data, ordered, err := s.fetchList(ctx, tableProjects, f.ActiveOnly)
	if err != nil {
		return nil, err
	}
	rows, err := decodeRows[projectRow](data, tableProjects)
	if err != nil {
		return nil, err
	}
	result := make([]project.Project, len(rows))
	for i, r := range rows {
		result[i] = rowToProject(r)
	}
	if !ordered {
		sort.Slice(result, func(i, j int) bool {
			return storage.Less(result[i].Order, result[j].Order, result[i].CreatedAt, result[j].CreatedAt, result[i].ID, result[j].ID)
		})
	}
	return result, nil
}

func (s *Store) DeleteProject(ctx context.Context, id string) error {
	return s.deleteRow(ctx, tableProjects, id)
}

func (s *Store) ReorderProjects(ctx context.Context, ids []string) error {
	return s.reorder(ctx, tableProjects, ids)
}

// FounderStore implementation -------------------------------------------------

func founderToRow(f founder.Founder) founderRow {
	return founderRow{
		ID:          f.ID,
		Name:        f.Name,
		Role:        f.Role,
		Description: f.Description,
		ImageURL:    f.ImageURL,
		Socials:     f.Socials,
		SortOrder:   f.Order,
		Active:      f.Active,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

func rowToFounder(r founderRow) founder.Founder {
	if r.Socials == nil {
		r.Socials = map[string]string{}
	}
	return founder.Founder{
		ID:          r.ID,
		Name:        r.Name,
		Role:        r.Role,
		Description: r.Description,
		ImageURL:    r.ImageURL,
		Socials:     r.Socials,
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

	data, err := s.insert(ctx, tableFounders, founderToRow(f))
	if err != nil {
		return founder.Founder{}, err
	}
	row, err := decodeRow[founderRow](data, tableFounders, f.ID)
	if err != nil {
		return founder.Founder{}, err
	}
	return rowToFounder(row), nil
}

func (s *Store) UpdateFounder(ctx context.Context, f founder.Founder) (founder.Founder, error) {
	f.UpdatedAt = time.Now().UTC()
	data, err := s.patch(ctx, tableFounders, f.ID, founderToRow(f))
	if err != nil {
		return founder.Founder{}, err
	}
	row, err := decodeRow[founderRow](data, tableFounders, f.ID)
	if err != nil {
		return founder.Founder{}, err
	}
	return rowToFounder(row), nil
}

func (s *Store) GetFounder(ctx context.Context, id string) (founder.Founder, error) {
	data, err := s.fetchOne(ctx, tableFounders, id)
	if err != nil {
		return founder.Founder{}, err
	}
	row, err := decodeRow[founderRow](data, tableFounders, id)
	if err != nil {
		return founder.Founder{}, err
	}
	return rowToFounder(row), nil
}

func (s *Store) ListFounders(ctx context.Context, f storage.Filter) ([]founder.Founder, error) {
	data, ordered, err := s.fetchList(ctx, tableFounders, f.ActiveOnly)
	if err != nil {
		return nil, err
	}
	rows, err := decodeRows[founderRow](data, tableFounders)
	if err != nil {
		return nil, err
	}
	result := make([]founder.Founder, len(rows))
	for i, r := range rows {
		result[i] = rowToFounder(r)
	}
	if !ordered {
		sort.Slice(result, func(i, j int) bool {
			return storage.Less(result[i].Order, result[j].Order, result[i].CreatedAt, result[j].CreatedAt, result[i].ID, result[j].ID)
		})
	}
	return result, nil
}

func (s *Store) ReorderFounders(ctx context.Context, ids []string) error {
	return s.reorder(ctx, tableFounders, ids)
}

// DeveloperStore implementation -----------------------------------------------

func developerToRow(d developer.Developer) developerRow {
	return developerRow{
		ID:        d.ID,
		Name:      d.Name,
		Role:      d.Role,
		ImageURL:  d.ImageURL,
		Skills:    d.Skills,
		Socials:   d.Socials,
		SortOrder: d.Order,
		Active:    d.Active,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func rowToDeveloper(r developerRow) developer.Developer {
	if r.Skills == nil {
		r.Skills = []string{}
	}
	if r.Socials == nil {
		r.Socials = map[string]string{}
	}
	return developer.Developer{
		ID:        r.ID,
		Name:      r.Name,
		Role:      r.Role,
		ImageURL:  r.ImageURL,
		Skills:    r.Skills,
		Socials:   r.Socials,
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

	data, err := s.insert(ctx, tableDevelopers, developerToRow(d))
	if err != nil {
		return developer.Developer{}, err
	}
	row, err := decodeRow[developerRow](data, tableDevelopers, d.ID)
	if err != nil {
		return developer.Developer{}, err
	}
	return rowToDeveloper(row), nil
}

func (s *Store) UpdateDeveloper(ctx context.Context, d developer.Developer) (developer.Developer, error) {
	d.UpdatedAt = time.Now().UTC()
	data, err := s.patch(ctx, tableDevelopers, d.ID, developerToRow(d))
	if err != nil {
		return developer.Developer{}, err
	}
	row, err := decodeRow[developerRow](data, tableDevelopers, d.ID)
	if err != nil {
		return developer.Developer{}, err
	}
	return rowToDeveloper(row), nil
}

func (s *Store) GetDeveloper(ctx context.Context, id string) (developer.Developer, error) {
	data, err := s.fetchOne(ctx, tableDevelopers, id)
	if err != nil {
		return developer.Developer{}, err
	}
	row, err := decodeRow[developerRow](data, tableDevelopers, id)
	if err != nil {
		return developer.Developer{}, err
	}
	return rowToDeveloper(row), nil
}

func (s *Store) ListDevelopers(ctx context.Context, f storage.Filter) ([]developer.Developer, error) {
	data, ordered, err := s.fetchList(ctx, tableDevelopers, f.ActiveOnly)
	if err != nil {
		return nil, err
	}
	rows, err := decodeRows[developerRow](data, tableDevelopers)
	if err != nil {
		return nil, err
	}
	result := make([]developer.Developer, len(rows))
	for i, r := range rows {
		result[i] = rowToDeveloper(r)
	}
	if !ordered {
		sort.Slice(result, func(i, j int) bool {
			return storage.Less(result[i].Order, result[j].Order, result[i].CreatedAt, result[j].CreatedAt, result[i].ID, result[j].ID)
		})
	}
	return result, nil
}

func (s *Store) DeleteDeveloper(ctx context.Context, id string) error {
	return s.deleteRow(ctx, tableDevelopers, id)
}

func (s *Store) ReorderDevelopers(ctx context.Context, ids []string) error {
	return s.reorder(ctx, tableDevelopers, ids)
}

// UserStore implementation ----------------------------------------------------

func userToRow(u user.User) userRow {
	return userRow{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		PhotoURL:  u.PhotoURL,
		Role:      u.Role,
		SortOrder: u.Order,
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func rowToUser(r userRow) user.User {
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

	data, err := s.insert(ctx, tableUsers, userToRow(u))
	if err != nil {
		return user.User{}, err
	}
	row, err := decodeRow[userRow](data, tableUsers, u.ID)
	if err != nil {
		return user.User{}, err
	}
	return rowToUser(row), nil
}

func (s *Store) UpdateUser(ctx context.Context, u user.User) (user.User, error) {
	u.UpdatedAt = time.Now().UTC()
	data, err := s.patch(ctx, tableUsers, u.ID, userToRow(u))
	if err != nil {
		return user.User{}, err
	}
	row, err := decodeRow[userRow](data, tableUsers, u.ID)
	if err != nil {
		return user.User{}, err
	}
	return rowToUser(row), nil
}

func (s *Store) GetUser(ctx context.Context, id string) (user.User, error) {
	data, err := s.fetchOne(ctx, tableUsers, id)
	if err != nil {
		return user.User{}, err
	}
	row, err := decodeRow[userRow](data, tableUsers, id)
	if err != nil {
		return user.User{}, err
	}
	return rowToUser(row), nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	query := "email=eq." + url.QueryEscape(email) + "&limit=1"
	data, err := s.client.request(ctx, "GET", tableUsers, nil, query, nil)
	recordOutcome(tableUsers, err)
	if err != nil {
		return user.User{}, wrapStoreErr(err, tableUsers, "get")
	}
	row, err := decodeRow[userRow](data, tableUsers, email)
	if err != nil {
		return user.User{}, err
	}
	return rowToUser(row), nil
}

func (s *Store) ListUsers(ctx context.Context, f storage.Filter) ([]user.User, error) {
	data, ordered, err := s.fetchList(ctx, tableUsers, f.ActiveOnly)
	if err != nil {
		return nil, err
	}
	rows, err := decodeRows[userRow](data, tableUsers)
	if err != nil {
		return nil, err
	}
	result := make([]user.User, len(rows))
	for i, r := range rows {
		result[i] = rowToUser(r)
	}
	if !ordered {
		sort.Slice(result, func(i, j int) bool {
			return storage.Less(result[i].Order, result[j].Order, result[i].CreatedAt, result[j].CreatedAt, result[i].ID, result[j].ID)
		})
	}
	return result, nil
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	return s.deleteRow(ctx, tableUsers, id)
}

func (s *Store) ReorderUsers(ctx context.Context, ids []string) error {
	return s.reorder(ctx, tableUsers, ids)
}
