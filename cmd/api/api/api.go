package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/emulab/applianced/cmd/api/config"
	"github.com/emulab/applianced/lib/compute"
	"github.com/emulab/applianced/lib/images"
	"github.com/emulab/applianced/lib/registry"
	"github.com/emulab/applianced/lib/templates"
)

// ApiService holds the daemon's domain managers and exposes them over HTTP.
type ApiService struct {
	Config    *config.Config
	Store     *images.Store
	Registry  *registry.Registry
	Templates templates.Manager
	Compute   *compute.Client
}

// New creates a new ApiService
func New(
	config *config.Config,
	store *images.Store,
	reg *registry.Registry,
	templateManager templates.Manager,
	computeClient *compute.Client,
) *ApiService {
	return &ApiService{
		Config:    config,
		Store:     store,
		Registry:  reg,
		Templates: templateManager,
		Compute:   computeClient,
	}
}

// Routes mounts all API endpoints on the router.
func (s *ApiService) Routes(r chi.Router) {
	r.Post("/appliances/reconcile", s.ReconcileAppliance)
	r.Post("/appliances/install", s.InstallAppliance)

	r.Get("/images", s.ListImages)
	r.Post("/images/import", s.ImportImage)
	r.Delete("/images/{filename}", s.DeleteImage)

	r.Get("/templates", s.ListTemplates)
	r.Post("/templates", s.CreateTemplate)
	r.Get("/templates/{id}", s.GetTemplate)
	r.Delete("/templates/{id}", s.DeleteTemplate)

	r.Route("/computes/{compute_id}/qemu", func(r chi.Router) {
		r.Get("/binaries", s.QemuBinaries)
		r.Get("/img-binaries", s.QemuImgBinaries)
		r.Get("/capabilities", s.QemuCapabilities)
		r.Post("/img", s.CreateDiskImage)
		r.Put("/img", s.UpdateDiskImage)
	})
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}
