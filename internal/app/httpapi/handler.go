// Package httpapi exposes the studio platform over REST. Public reads need no
// credentials; every mutation sits behind a session token.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	app "github.com/atelierhq/studio-platform/internal/app"
	"github.com/atelierhq/studio-platform/internal/app/metrics"
	"github.com/atelierhq/studio-platform/internal/app/session"
	"github.com/atelierhq/studio-platform/internal/app/storage"
	apperrors "github.com/atelierhq/studio-platform/internal/errors"
	"github.com/atelierhq/studio-platform/internal/middleware"
	"github.com/atelierhq/studio-platform/internal/relay"
	"github.com/atelierhq/studio-platform/pkg/logger"
)

// Deps collects the handler's collaborators. Relay clients may be nil; their
// endpoints then respond 503.
type Deps struct {
	App      *app.Application
	Issuer   *middleware.TokenIssuer
	Contact  *relay.ContactRelay
	Schedule *relay.ScheduleRelay
	Uploads  *relay.UploadClient
	Log      *logger.Logger

	CORS      *middleware.CORSMiddleware
	RateLimit *middleware.RateLimiter
}

type handler struct {
	deps Deps
}

// NewHandler builds the router with the full middleware stack applied.
func NewHandler(deps Deps) http.Handler {
	if deps.Log == nil {
		deps.Log = logger.NewDefault("httpapi")
	}
	h := &handler{deps: deps}

	r := chi.NewRouter()
	if deps.CORS != nil {
		r.Use(deps.CORS.Handler)
	}
	r.Use(middleware.NewTracingMiddleware(deps.Log).Handler)
	if deps.RateLimit != nil {
		r.Use(deps.RateLimit.Handler)
	}
	r.Use(metrics.InstrumentHandler)

	r.Get("/healthz", h.health)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		// Public reads.
		r.Get("/projects", h.listProjects)
		r.Get("/projects/{id}", h.getProject)
		r.Get("/founders", h.listFounders)
		r.Get("/founders/{id}", h.getFounder)
		r.Get("/team", h.listDevelopers)
		r.Get("/team/{id}", h.getDeveloper)

		// Public relays.
		r.Post("/contact", h.contact)
		r.Post("/schedule", h.schedule)

		// Session.
		r.Post("/session/sign-in", h.signIn)
		r.Get("/session", h.sessionSnapshot)

		// Everything mutating requires a session token.
		r.Group(func(r chi.Router) {
			r.Use(middleware.NewAuthMiddleware(deps.Issuer, deps.Log).Handler)

			r.Post("/session/sign-out", h.signOut)

			r.Post("/projects", h.createProject)
			r.Patch("/projects/{id}", h.updateProject)
			r.Delete("/projects/{id}", h.deleteProject)
			r.Put("/projects/reorder", h.reorderProjects)

			r.Post("/founders", h.createFounder)
			r.Patch("/founders/{id}", h.updateFounder)
			r.Delete("/founders/{id}", h.deleteFounder)
			r.Put("/founders/reorder", h.reorderFounders)

			r.Post("/team", h.createDeveloper)
			r.Patch("/team/{id}", h.updateDeveloper)
			r.Delete("/team/{id}", h.deleteDeveloper)
			r.Put("/team/reorder", h.reorderDevelopers)

			r.Get("/users", h.listUsers)
			r.Post("/users", h.createUser)
			r.Patch("/users/{id}", h.updateUser)
			r.Delete("/users/{id}", h.deleteUser)
			r.Put("/users/reorder", h.reorderUsers)

			r.Post("/uploads", h.upload)
		})
	})

	return r
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func listFilter(r *http.Request) storage.Filter {
	return storage.Filter{ActiveOnly: r.URL.Query().Get("active") == "1"}
}

// --- session -----------------------------------------------------------

func (h *handler) signIn(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		PhotoURL string `json:"photo_url"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, err)
		return
	}

	id := session.Identity{Name: payload.Name, Email: payload.Email, PhotoURL: payload.PhotoURL}
	if err := h.deps.App.Session.SignIn(r.Context(), id); err != nil {
		metrics.RecordSignIn("rejected")
		writeError(w, err)
		return
	}
	metrics.RecordSignIn("ok")

	// Sign-in also records the visitor on the admin surface. A store outage
	// here must not undo the session.
	u, err := h.deps.App.Users.Upsert(r.Context(), payload.Name, payload.Email, payload.PhotoURL)
	if err != nil {
		h.deps.Log.WithError(err).Warn("recording signed-in user failed")
	}

	token, err := h.deps.Issuer.Issue(payload.Name, payload.Email)
	if err != nil {
		writeError(w, apperrors.Internal("issue session token", err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  u,
	})
}

func (h *handler) signOut(w http.ResponseWriter, r *http.Request) {
	h.deps.App.Session.SignOut(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) sessionSnapshot(w http.ResponseWriter, r *http.Request) {
	snap := h.deps.App.Session.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"authenticated": snap.Authenticated,
		"mounted":       snap.Mounted,
		"prompt_open":   snap.PromptOpen,
		"toast_visible": snap.ToastVisible,
		"user":          snap.User,
	})
}

// --- relays ------------------------------------------------------------

func (h *handler) contact(w http.ResponseWriter, r *http.Request) {
	if h.deps.Contact == nil {
		writeError(w, apperrors.StoreUnavailable(nil))
		return
	}
	var msg relay.ContactMessage
	if err := decodeJSON(r.Body, &msg); err != nil {
		writeError(w, err)
		return
	}
	if err := h.deps.Contact.Send(r.Context(), msg); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *handler) schedule(w http.ResponseWriter, r *http.Request) {
	if h.deps.Schedule == nil {
		writeError(w, apperrors.StoreUnavailable(nil))
		return
	}
	var req relay.ScheduleRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeError(w, err)
		return
	}
	booking, err := h.deps.Schedule.Book(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

func (h *handler) upload(w http.ResponseWriter, r *http.Request) {
	if h.deps.Uploads == nil {
		writeError(w, apperrors.StoreUnavailable(nil))
		return
	}
	if err := r.ParseMultipartForm(12 << 20); err != nil {
		writeError(w, apperrors.Validation("invalid multipart body"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, apperrors.Validation("file field is required"))
		return
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	result, err := h.deps.Uploads.Upload(ctx, header.Filename, file)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}
