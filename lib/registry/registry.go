// Package registry answers whether an appliance image is already present in
// one of the configured search directories. A file only counts as a match
// when filename, MD5 checksum and byte size all agree with the appliance
// definition, so a stale or corrupt file under the right name is never
// accepted.
package registry

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/emulab/applianced/lib/images"
	otelx "github.com/emulab/applianced/lib/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Registry searches a fixed, ordered set of directories for image files.
// It performs read-only filesystem access and keeps no cache: every lookup
// reflects the directory contents at the time of the query.
type Registry struct {
	dirs    []string
	log     *slog.Logger
	metrics *otelx.ScanMetrics
}

// New creates a registry over the given search directories. The order is the
// order directories are searched in. log and metrics may be nil.
func New(dirs []string, log *slog.Logger, metrics *otelx.ScanMetrics) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{
		dirs:    dirs,
		log:     log,
		metrics: metrics,
	}
}

// Dirs returns the configured search directories.
func (r *Registry) Dirs() []string {
	return r.dirs
}

// CheckDirectories reports which configured search directories cannot be
// enumerated. The result is advisory: lookups skip unreadable directories
// rather than failing.
func (r *Registry) CheckDirectories() error {
	var result *multierror.Error
	for _, dir := range r.dirs {
		if _, err := os.ReadDir(dir); err != nil {
			result = multierror.Append(result, fmt.Errorf("search directory %s: %w", dir, err))
		}
	}
	return result.ErrorOrNil()
}

// Locate reports whether a file matching filename, checksum and size exists
// in at least one search directory. All three must match. Unreadable
// directories are logged and skipped. The walk checks ctx between entries,
// so a canceled context aborts the scan with ctx.Err().
func (r *Registry) Locate(ctx context.Context, filename, checksum string, size int64) (bool, error) {
	start := time.Now()
	found, err := r.locate(ctx, filename, checksum, size)
	if r.metrics != nil && err == nil {
		r.metrics.LookupsTotal.Add(ctx, 1, metric.WithAttributes(attribute.Bool("found", found)))
		r.metrics.LookupDuration.Record(ctx, time.Since(start).Seconds())
	}
	return found, err
}

func (r *Registry) locate(ctx context.Context, filename, checksum string, size int64) (bool, error) {
	for _, dir := range r.dirs {
		found, err := r.searchDir(ctx, dir, filename, checksum, size)
		if err != nil {
			return false, err
		}
		if found {
			return true, nil
		}
	}
	return false, nil
}

// searchDir walks a single directory tree looking for a full match. It only
// returns an error on context cancellation; filesystem problems degrade to a
// skipped directory or entry.
func (r *Registry) searchDir(ctx context.Context, dir, filename, checksum string, size int64) (bool, error) {
	var found bool
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if err != nil {
			r.log.Warn("skipping unreadable path", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || d.Name() != filename {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			r.log.Warn("skipping unreadable file", "path", path, "error", err)
			return nil
		}
		// Size is checked before hashing so mismatched files are
		// rejected without reading their contents.
		if info.Size() != size {
			return nil
		}

		sum, err := images.ChecksumFile(path)
		if r.metrics != nil {
			r.metrics.FilesHashed.Add(ctx, 1)
		}
		if err != nil {
			r.log.Warn("failed to checksum candidate", "path", path, "error", err)
			return nil
		}
		if sum != checksum {
			r.log.Debug("checksum mismatch", "path", path, "expected", checksum, "actual", sum)
			return nil
		}

		found = true
		return filepath.SkipAll
	})
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		// WalkDir only reports errors we chose to propagate; anything
		// else was already downgraded to a skip.
		return false, err
	}
	return found, nil
}
