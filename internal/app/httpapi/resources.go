package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/atelierhq/studio-platform/internal/app/domain/developer"
	"github.com/atelierhq/studio-platform/internal/app/domain/founder"
	"github.com/atelierhq/studio-platform/internal/app/domain/project"
	"github.com/atelierhq/studio-platform/internal/app/domain/user"
)

type reorderRequest struct {
	IDs []string `json:"ids"`
}

// --- projects ----------------------------------------------------------

func (h *handler) listProjects(w http.ResponseWriter, r *http.Request) {
	list, err := h.deps.App.Projects.List(r.Context(), listFilter(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *handler) getProject(w http.ResponseWriter, r *http.Request) {
	p, err := h.deps.App.Projects.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handler) createProject(w http.ResponseWriter, r *http.Request) {
	var p project.Project
	if err := decodeJSON(r.Body, &p); err != nil {
		writeError(w, err)
		return
	}
	created, err := h.deps.App.Projects.Create(r.Context(), p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *handler) updateProject(w http.ResponseWriter, r *http.Request) {
	var patch project.Patch
	if err := decodeJSON(r.Body, &patch); err != nil {
		writeError(w, err)
		return
	}
	updated, err := h.deps.App.Projects.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *handler) deleteProject(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.App.Projects.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) reorderProjects(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.deps.App.Projects.Reorder(r.Context(), req.IDs); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- founders ----------------------------------------------------------

func (h *handler) listFounders(w http.ResponseWriter, r *http.Request) {
	list, err := h.deps.App.Founders.List(r.Context(), listFilter(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *handler) getFounder(w http.ResponseWriter, r *http.Request) {
	f, err := h.deps.App.Founders.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (h *handler) createFounder(w http.ResponseWriter, r *http.Request) {
	var f founder.Founder
	if err := decodeJSON(r.Body, &f); err != nil {
		writeError(w, err)
		return
	}
	created, err := h.deps.App.Founders.Create(r.Context(), f)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *handler) updateFounder(w http.ResponseWriter, r *http.Request) {
	var patch founder.Patch
	if err := decodeJSON(r.Body, &patch); err != nil {
		writeError(w, err)
		return
	}
	updated, err := h.deps.App.Founders.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// deleteFounder deactivates; the record stays queryable.
func (h *handler) deleteFounder(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.App.Founders.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) reorderFounders(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.deps.App.Founders.Reorder(r.Context(), req.IDs); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- team --------------------------------------------------------------

func (h *handler) listDevelopers(w http.ResponseWriter, r *http.Request) {
	list, err := h.deps.App.Team.List(r.Context(), listFilter(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *handler) getDeveloper(w http.ResponseWriter, r *http.Request) {
	d, err := h.deps.App.Team.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *handler) createDeveloper(w http.ResponseWriter, r *http.Request) {
	var d developer.Developer
	if err := decodeJSON(r.Body, &d); err != nil {
		writeError(w, err)
		return
	}
	created, err := h.deps.App.Team.Create(r.Context(), d)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *handler) updateDeveloper(w http.ResponseWriter, r *http.Request) {
	var patch developer.Patch
	if err := decodeJSON(r.Body, &patch); err != nil {
		writeError(w, err)
		return
	}
	updated, err := h.deps.App.Team.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *handler) deleteDeveloper(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.App.Team.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) reorderDevelopers(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.deps.App.Team.Reorder(r.Context(), req.IDs); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- users -------------------------------------------------------------

func (h *handler) listUsers(w http.ResponseWriter, r *http.Request) {
	list, err := h.deps.App.Users.List(r.Context(), listFilter(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *handler) createUser(w http.ResponseWriter, r *http.Request) {
	var u user.User
	if err := decodeJSON(r.Body, &u); err != nil {
		writeError(w, err)
		return
	}
	created, err := h.deps.App.Users.Create(r.Context(), u)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *handler) updateUser(w http.ResponseWriter, r *http.Request) {
	var patch user.Patch
	if err := decodeJSON(r.Body, &patch); err != nil {
		writeError(w, err)
		return
	}
	updated, err := h.deps.App.Users.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.App.Users.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) reorderUsers(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.deps.App.Users.Reorder(r.Context(), req.IDs); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
