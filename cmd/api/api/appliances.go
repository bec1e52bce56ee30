package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/emulab/applianced/lib/appliance"
	"github.com/emulab/applianced/lib/logger"
	"github.com/emulab/applianced/lib/templates"
)

// maxDefinitionBytes bounds how much of a request body is read as an
// appliance definition.
const maxDefinitionBytes = 8 << 20

// ReconcileAppliance parses the appliance definition in the request body,
// checks every declared image against the registry's search directories and
// returns the annotated appliance.
func (s *ApiService) ReconcileAppliance(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxDefinitionBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "failed to read request body")
		return
	}

	a, err := appliance.ParseDefinition(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_definition", err.Error())
		return
	}

	annotated, err := appliance.Reconcile(r.Context(), a, s.Registry)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, annotated)
}

type installRequest struct {
	Definition json.RawMessage `json:"definition"`
	Version    string          `json:"version"`
	Compute    string          `json:"compute"`
}

// InstallAppliance installs a named appliance version as a QEMU VM template
// on the given compute. Installation is refused while any required image is
// missing from the search directories.
func (s *ApiService) InstallAppliance(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req installRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxDefinitionBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	if req.Version == "" || req.Compute == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "version and compute are required")
		return
	}

	a, err := appliance.ParseDefinition(req.Definition)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_definition", err.Error())
		return
	}

	annotated, err := appliance.Reconcile(r.Context(), a, s.Registry)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "error", err.Error())
		return
	}

	installable, err := annotated.Installable(req.Version)
	if err != nil {
		writeError(w, http.StatusNotFound, "version_not_found", err.Error())
		return
	}
	if !installable {
		writeError(w, http.StatusConflict, "missing_images",
			fmt.Sprintf("version %s: %s", req.Version, appliance.ErrVersionNotReady))
		return
	}

	version, err := annotated.Version(req.Version)
	if err != nil {
		writeError(w, http.StatusNotFound, "version_not_found", err.Error())
		return
	}

	tmpl, err := templateFromVersion(annotated, version, req.Compute)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_definition", err.Error())
		return
	}

	created, err := s.Templates.Create(r.Context(), tmpl)
	if err != nil {
		if errors.Is(err, templates.ErrAlreadyExists) {
			writeError(w, http.StatusConflict, "already_exists", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "error", err.Error())
		return
	}

	log.InfoContext(r.Context(), "appliance installed",
		"appliance", annotated.Name, "version", version.Name, "compute", req.Compute, "template_id", created.ID)
	writeJSON(w, http.StatusCreated, created)
}

// templateFromVersion builds the VM template for an installable version:
// the appliance's qemu settings plus the version's disk images mapped to
// their drive roles.
func templateFromVersion(a *appliance.Appliance, v *appliance.Version, computeID string) (templates.Template, error) {
	var t templates.Template

	// The qemu settings block shares field names with the template model.
	if len(a.Qemu) > 0 {
		raw, err := json.Marshal(a.Qemu)
		if err != nil {
			return t, fmt.Errorf("marshal qemu settings: %w", err)
		}
		if err := json.Unmarshal(raw, &t); err != nil {
			return t, fmt.Errorf("decode qemu settings: %w", err)
		}
		if arch, ok := a.Qemu["arch"].(string); ok {
			t.Platform = arch
		}
	}

	t.ID = ""
	t.Name = fmt.Sprintf("%s %s", a.Name, v.Name)
	t.Compute = computeID
	t.Category = a.Category
	t.Usage = a.Usage
	t.Symbol = a.Symbol

	for _, img := range v.Images {
		switch img.Role {
		case "hda_disk_image":
			t.HdaDiskImage = img.Filename
		case "hdb_disk_image":
			t.HdbDiskImage = img.Filename
		case "hdc_disk_image":
			t.HdcDiskImage = img.Filename
		case "hdd_disk_image":
			t.HddDiskImage = img.Filename
		case "cdrom_image":
			t.CdromImage = img.Filename
		case "kernel_image":
			t.KernelImage = img.Filename
		case "initrd":
			t.InitrdImage = img.Filename
		}
	}

	return t, nil
}
