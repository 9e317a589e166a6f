package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app "github.com/atelierhq/studio-platform/internal/app"
	"github.com/atelierhq/studio-platform/internal/app/domain/project"
	"github.com/atelierhq/studio-platform/internal/middleware"
)

func newTestHandler(t *testing.T) (http.Handler, *app.Application, *middleware.TokenIssuer) {
	t.Helper()

	application, err := app.New(app.Stores{}, app.Options{}, nil)
	require.NoError(t, err)
	application.Session.Mount()

	issuer := middleware.NewTokenIssuer("test-secret", time.Hour)
	handler := NewHandler(Deps{App: application, Issuer: issuer})
	return handler, application, issuer
}

func authHeader(t *testing.T, issuer *middleware.TokenIssuer) string {
	t.Helper()
	token, err := issuer.Issue("Ada", "ada@example.com")
	require.NoError(t, err)
	return "Bearer " + token
}

func doJSON(t *testing.T, handler http.Handler, method, path, auth string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	handler, _, _ := newTestHandler(t)
	rec := doJSON(t, handler, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPublicListNeedsNoAuth(t *testing.T) {
	handler, _, _ := newTestHandler(t)
	rec := doJSON(t, handler, http.MethodGet, "/api/projects", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMutationRequiresAuth(t *testing.T) {
	handler, _, _ := newTestHandler(t)
	rec := doJSON(t, handler, http.MethodPost, "/api/projects", "", map[string]string{"title": "x"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProjectLifecycleOverHTTP(t *testing.T) {
	handler, _, issuer := newTestHandler(t)
	auth := authHeader(t, issuer)

	rec := doJSON(t, handler, http.MethodPost, "/api/projects", auth, map[string]any{
		"title": "Atlas",
		"tags":  []string{"go"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created project.Project
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, 1, created.Order)
	assert.True(t, created.Active)

	rec = doJSON(t, handler, http.MethodPatch, "/api/projects/"+created.ID, auth, map[string]string{
		"title": "Atlas v2",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, handler, http.MethodGet, "/api/projects/"+created.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var fetched project.Project
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fetched))
	assert.Equal(t, "Atlas v2", fetched.Title)
	assert.Equal(t, []string{"go"}, fetched.Tags)

	rec = doJSON(t, handler, http.MethodDelete, "/api/projects/"+created.ID, auth, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/api/projects/"+created.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReorderEndpoint(t *testing.T) {
	handler, application, issuer := newTestHandler(t)
	auth := authHeader(t, issuer)

	ctx := httptest.NewRequest(http.MethodGet, "/", nil).Context()
	a, err := application.Projects.Create(ctx, project.Project{Title: "A"})
	require.NoError(t, err)
	b, err := application.Projects.Create(ctx, project.Project{Title: "B"})
	require.NoError(t, err)

	rec := doJSON(t, handler, http.MethodPut, "/api/projects/reorder", auth, map[string]any{
		"ids": []string{b.ID, a.ID},
	})
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = doJSON(t, handler, http.MethodGet, "/api/projects", "", nil)
	var list []project.Project
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, b.ID, list[0].ID)
	assert.Equal(t, a.ID, list[1].ID)
}

func TestReorderValidationError(t *testing.T) {
	handler, _, issuer := newTestHandler(t)
	auth := authHeader(t, issuer)

	rec := doJSON(t, handler, http.MethodPut, "/api/projects/reorder", auth, map[string]any{
		"ids": []string{},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSignInIssuesTokenAndRecordsUser(t *testing.T) {
	handler, application, _ := newTestHandler(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/session/sign-in", "", map[string]string{
		"name":  "Ada",
		"email": "ada@example.com",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var payload struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.NotEmpty(t, payload.Token)

	snap := application.Session.Snapshot()
	assert.True(t, snap.Authenticated)

	ctx := httptest.NewRequest(http.MethodGet, "/", nil).Context()
	u, err := application.Users.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ada", u.Name)
}

func TestSignInRejectsBadIdentity(t *testing.T) {
	handler, application, _ := newTestHandler(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/session/sign-in", "", map[string]string{
		"name":  "",
		"email": "nope",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, application.Session.Snapshot().Authenticated)
}

func TestSignOutClearsSession(t *testing.T) {
	handler, application, issuer := newTestHandler(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/session/sign-in", "", map[string]string{
		"name":  "Ada",
		"email": "ada@example.com",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, handler, http.MethodPost, "/api/session/sign-out", authHeader(t, issuer), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.False(t, application.Session.Snapshot().Authenticated)
}

func TestSessionSnapshotEndpoint(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	rec := doJSON(t, handler, http.MethodGet, "/api/session", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var snap struct {
		Authenticated bool `json:"authenticated"`
		Mounted       bool `json:"mounted"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.False(t, snap.Authenticated)
	assert.True(t, snap.Mounted)
}

func TestContactWithoutRelayIsUnavailable(t *testing.T) {
	handler, _, _ := newTestHandler(t)
	rec := doJSON(t, handler, http.MethodPost, "/api/contact", "", map[string]string{
		"name": "Ada", "email": "a@b.c", "message": "hi",
	})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestUnknownFieldsRejected(t *testing.T) {
	handler, _, issuer := newTestHandler(t)
	rec := doJSON(t, handler, http.MethodPost, "/api/projects", authHeader(t, issuer), map[string]string{
		"title":  "x",
		"sneaky": "field",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
