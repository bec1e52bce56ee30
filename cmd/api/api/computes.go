package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/emulab/applianced/lib/compute"
)

// QemuBinaries proxies the QEMU binary list from a compute server.
func (s *ApiService) QemuBinaries(w http.ResponseWriter, r *http.Request) {
	computeID := chi.URLParam(r, "compute_id")
	archs := r.URL.Query()["archs"]

	binaries, err := s.Compute.QemuBinaries(r.Context(), computeID, archs)
	if err != nil {
		writeComputeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, binaries)
}

// QemuImgBinaries proxies the qemu-img binary list from a compute server.
func (s *ApiService) QemuImgBinaries(w http.ResponseWriter, r *http.Request) {
	binaries, err := s.Compute.QemuImgBinaries(r.Context(), chi.URLParam(r, "compute_id"))
	if err != nil {
		writeComputeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, binaries)
}

// QemuCapabilities proxies the QEMU capability report from a compute server.
func (s *ApiService) QemuCapabilities(w http.ResponseWriter, r *http.Request) {
	caps, err := s.Compute.QemuCapabilities(r.Context(), chi.URLParam(r, "compute_id"))
	if err != nil {
		writeComputeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, caps)
}

// CreateDiskImage asks a compute server to create a disk image.
func (s *ApiService) CreateDiskImage(w http.ResponseWriter, r *http.Request) {
	var opts compute.DiskImageOptions
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	if err := s.Compute.CreateDiskImage(r.Context(), chi.URLParam(r, "compute_id"), opts); err != nil {
		writeComputeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// UpdateDiskImage asks a compute server to update a disk image.
func (s *ApiService) UpdateDiskImage(w http.ResponseWriter, r *http.Request) {
	var opts compute.DiskImageOptions
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	if err := s.Compute.UpdateDiskImage(r.Context(), chi.URLParam(r, "compute_id"), opts); err != nil {
		writeComputeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// writeComputeError maps compute client failures onto the proxy response:
// upstream API errors keep their status, transport errors become 502.
func writeComputeError(w http.ResponseWriter, err error) {
	var apiErr *compute.APIError
	if errors.As(err, &apiErr) {
		writeError(w, apiErr.StatusCode, "compute_error", apiErr.Message)
		return
	}
	writeError(w, http.StatusBadGateway, "compute_unreachable", err.Error())
}
