package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/emulab/applianced/lib/compute"
)

func TestQemuBinariesProxy(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v2/computes/local/qemu/binaries", r.URL.Path)
		require.Equal(t, []string{"x86_64"}, r.URL.Query()["archs"])
		json.NewEncoder(w).Encode([]compute.QemuBinary{
			{Path: "/usr/bin/qemu-system-x86_64", Version: "8.2.0"},
		})
	}))
	defer backend.Close()

	env := newTestEnv(t, backend.URL)

	rec := env.do(t, http.MethodGet, "/computes/local/qemu/binaries?archs=x86_64", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	binaries := decodeBody[[]compute.QemuBinary](t, rec)
	require.Len(t, binaries, 1)
	require.Equal(t, "/usr/bin/qemu-system-x86_64", binaries[0].Path)
}

func TestQemuCapabilitiesProxy(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v2/computes/local/qemu/capabilities", r.URL.Path)
		json.NewEncoder(w).Encode(compute.QemuCapabilities{KVM: []string{"x86_64"}})
	}))
	defer backend.Close()

	env := newTestEnv(t, backend.URL)

	rec := env.do(t, http.MethodGet, "/computes/local/qemu/capabilities", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []string{"x86_64"}, decodeBody[compute.QemuCapabilities](t, rec).KVM)
}

func TestCreateDiskImageProxy(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v2/computes/local/qemu/img", r.URL.Path)

		var opts compute.DiskImageOptions
		require.NoError(t, json.NewDecoder(r.Body).Decode(&opts))
		require.Equal(t, "disks/blank.qcow2", opts.Path)
		require.Equal(t, 1024, opts.SizeMB)

		w.WriteHeader(http.StatusCreated)
	}))
	defer backend.Close()

	env := newTestEnv(t, backend.URL)

	rec := env.do(t, http.MethodPost, "/computes/local/qemu/img", compute.DiskImageOptions{
		Path:   "disks/blank.qcow2",
		Format: "qcow2",
		SizeMB: 1024,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestComputeErrorIsForwarded(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"message": "compute not found"})
	}))
	defer backend.Close()

	env := newTestEnv(t, backend.URL)

	rec := env.do(t, http.MethodGet, "/computes/ghost/qemu/capabilities", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	out := decodeBody[errorResponse](t, rec)
	require.Equal(t, "compute_error", out.Code)
	require.Equal(t, "compute not found", out.Message)
}

func TestComputeUnreachable(t *testing.T) {
	env := newTestEnv(t, "http://127.0.0.1:1")

	rec := env.do(t, http.MethodGet, "/computes/local/qemu/capabilities", nil)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Equal(t, "compute_unreachable", decodeBody[errorResponse](t, rec).Code)
}
