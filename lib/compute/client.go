// Package compute is the HTTP client for remote compute servers. applianced
// does not run VMs itself; QEMU binary discovery, capability checks and disk
// image operations are proxied to the compute that will host the node.
package compute

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	otelx "github.com/emulab/applianced/lib/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// APIError is a non-2xx response from a compute server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("compute server returned %d: %s", e.StatusCode, e.Message)
}

// Client talks to a compute server's REST API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	log     *slog.Logger
	metrics *otelx.ComputeMetrics
}

// NewClient creates a compute client. token is optional; when set it is sent
// as a bearer token. log and metrics may be nil.
func NewClient(baseURL, token string, log *slog.Logger, metrics *otelx.ComputeMetrics) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
		log:     log,
		metrics: metrics,
	}
}

// QemuBinaries lists the QEMU binaries installed on a compute. archs
// optionally restricts results to the given architectures.
func (c *Client) QemuBinaries(ctx context.Context, computeID string, archs []string) ([]QemuBinary, error) {
	query := url.Values{}
	for _, arch := range archs {
		query.Add("archs", arch)
	}
	var out []QemuBinary
	if err := c.do(ctx, http.MethodGet, c.computePath(computeID, "/qemu/binaries"), query, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// QemuImgBinaries lists the qemu-img binaries installed on a compute.
func (c *Client) QemuImgBinaries(ctx context.Context, computeID string) ([]QemuBinary, error) {
	var out []QemuBinary
	if err := c.do(ctx, http.MethodGet, c.computePath(computeID, "/qemu/img-binaries"), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// QemuCapabilities fetches the QEMU capabilities of a compute.
func (c *Client) QemuCapabilities(ctx context.Context, computeID string) (*QemuCapabilities, error) {
	var out QemuCapabilities
	if err := c.do(ctx, http.MethodGet, c.computePath(computeID, "/qemu/capabilities"), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateDiskImage creates a disk image on a compute.
func (c *Client) CreateDiskImage(ctx context.Context, computeID string, opts DiskImageOptions) error {
	return c.do(ctx, http.MethodPost, c.computePath(computeID, "/qemu/img"), nil, opts, nil)
}

// UpdateDiskImage updates an existing disk image on a compute.
func (c *Client) UpdateDiskImage(ctx context.Context, computeID string, opts DiskImageOptions) error {
	return c.do(ctx, http.MethodPut, c.computePath(computeID, "/qemu/img"), nil, opts, nil)
}

func (c *Client) computePath(computeID, suffix string) string {
	return "/v2/computes/" + url.PathEscape(computeID) + suffix
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if c.metrics != nil {
		attrs := metric.WithAttributes(
			attribute.String("method", method),
			attribute.String("path", path),
		)
		c.metrics.RequestsTotal.Add(ctx, 1, attrs)
		c.metrics.RequestDuration.Record(ctx, time.Since(start).Seconds(), attrs)
	}
	if err != nil {
		if c.metrics != nil {
			c.metrics.ErrorsTotal.Add(ctx, 1)
		}
		return fmt.Errorf("compute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if c.metrics != nil {
			c.metrics.ErrorsTotal.Add(ctx, 1)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: readErrorMessage(resp.Body)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// readErrorMessage pulls a message out of an error response body, falling
// back to the raw body when it isn't the usual {"message": ...} document.
func readErrorMessage(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(data) == 0 {
		return "no error detail"
	}
	var doc struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &doc) == nil && doc.Message != "" {
		return doc.Message
	}
	return strings.TrimSpace(string(data))
}
