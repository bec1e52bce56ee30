package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/emulab/applianced/lib/templates"
)

// ListTemplates lists all VM templates.
func (s *ApiService) ListTemplates(w http.ResponseWriter, r *http.Request) {
	tmpls, err := s.Templates.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, tmpls)
}

// CreateTemplate creates a VM template directly, without going through an
// appliance install.
func (s *ApiService) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var t templates.Template
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}

	created, err := s.Templates.Create(r.Context(), t)
	if err != nil {
		switch {
		case errors.Is(err, templates.ErrInvalid):
			writeError(w, http.StatusBadRequest, "invalid_template", err.Error())
		case errors.Is(err, templates.ErrAlreadyExists):
			writeError(w, http.StatusConflict, "already_exists", err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "error", err.Error())
		}
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// GetTemplate gets a single VM template by ID.
func (s *ApiService) GetTemplate(w http.ResponseWriter, r *http.Request) {
	t, err := s.Templates.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, templates.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// DeleteTemplate removes a VM template.
func (s *ApiService) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	if err := s.Templates.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, templates.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "error", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
