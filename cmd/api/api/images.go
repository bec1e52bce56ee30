package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/emulab/applianced/lib/images"
	"github.com/emulab/applianced/lib/logger"
)

// ListImages lists the contents of the managed image store.
func (s *ApiService) ListImages(w http.ResponseWriter, r *http.Request) {
	imgs, err := s.Store.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, imgs)
}

type importRequest struct {
	Path     string `json:"path"`
	Checksum string `json:"md5sum"`
	Filename string `json:"filename"`
}

// ImportImage verifies a local file against its declared checksum and copies
// it into the managed store. A checksum mismatch is a rejection, never a
// partial acceptance.
func (s *ApiService) ImportImage(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	if req.Path == "" || req.Checksum == "" || req.Filename == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "path, md5sum and filename are required")
		return
	}

	cand, err := s.Store.AcceptImport(r.Context(), req.Path, req.Checksum)
	if err != nil {
		var mismatch *images.ChecksumMismatchError
		if errors.As(err, &mismatch) {
			writeError(w, http.StatusUnprocessableEntity, "checksum_mismatch", mismatch.Error())
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	stored, err := s.Store.Install(r.Context(), cand, req.Filename)
	if err != nil {
		if errors.Is(err, images.ErrAlreadyExists) {
			writeError(w, http.StatusConflict, "already_exists", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "error", err.Error())
		return
	}

	log.InfoContext(r.Context(), "image imported", "filename", stored.Filename, "size_bytes", stored.SizeBytes)
	writeJSON(w, http.StatusCreated, stored)
}

// DeleteImage removes an image from the managed store.
func (s *ApiService) DeleteImage(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	if err := s.Store.Delete(r.Context(), filename); err != nil {
		if errors.Is(err, images.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "error", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
