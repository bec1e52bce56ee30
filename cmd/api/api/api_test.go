package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/emulab/applianced/cmd/api/config"
	"github.com/emulab/applianced/lib/compute"
	"github.com/emulab/applianced/lib/images"
	"github.com/emulab/applianced/lib/registry"
	"github.com/emulab/applianced/lib/templates"
)

type testEnv struct {
	svc      *ApiService
	router   chi.Router
	store    *images.Store
	imageDir string
}

// newTestEnv builds an ApiService over temp directories. computeURL is the
// backend the compute client talks to; pass "" when the test never touches
// the compute proxy.
func newTestEnv(t *testing.T, computeURL string) *testEnv {
	t.Helper()

	dataDir := t.TempDir()
	imageDir := t.TempDir()

	store := images.NewStore(dataDir, nil)
	reg := registry.New([]string{store.Dir(), imageDir}, nil, nil)

	mgr, err := templates.NewManager(filepath.Join(dataDir, "templates.json"), nil)
	require.NoError(t, err)

	cfg := &config.Config{
		DataDir:   dataDir,
		ImageDirs: []string{imageDir},
	}

	svc := New(cfg, store, reg, mgr, compute.NewClient(computeURL, "", nil, nil))

	r := chi.NewRouter()
	svc.Routes(r)

	return &testEnv{svc: svc, router: r, store: store, imageDir: imageDir}
}

// do runs a request through the router and returns the recorder.
func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

// writeImage drops a file into dir and returns its checksum and size.
func writeImage(t *testing.T, dir, filename, content string) (string, int64) {
	t.Helper()

	path := filepath.Join(dir, filename)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	checksum, err := images.ChecksumFile(path)
	require.NoError(t, err)
	return checksum, int64(len(content))
}

// definitionJSON renders a two-image appliance definition around the given
// image identities.
func definitionJSON(hdaChecksum string, hdaSize int64, hdbChecksum string, hdbSize int64) string {
	return fmt.Sprintf(`{
		"name": "ExampleOS",
		"category": "guest",
		"registry_version": 3,
		"symbol": ":/symbols/router.svg",
		"qemu": {
			"adapter_type": "e1000",
			"adapters": 4,
			"ram": 512,
			"arch": "x86_64",
			"console_type": "telnet"
		},
		"images": [
			{"filename": "disk.qcow2", "version": "1.0", "md5sum": %q, "filesize": %d},
			{"filename": "cfg.img", "version": "1.0", "md5sum": %q, "filesize": %d}
		],
		"versions": [
			{"name": "1.0", "images": {"hda_disk_image": "disk.qcow2", "hdb_disk_image": "cfg.img"}}
		]
	}`, hdaChecksum, hdaSize, hdbChecksum, hdbSize)
}
