package images

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	otelx "github.com/emulab/applianced/lib/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Store is the managed image store. Verified appliance images are copied into
// it and served back to the registry as a search directory.
type Store struct {
	dir     string
	metrics *otelx.ImportMetrics
}

// NewStore creates a store rooted at dataDir/images. metrics may be nil.
func NewStore(dataDir string, metrics *otelx.ImportMetrics) *Store {
	return &Store{
		dir:     filepath.Join(dataDir, "images"),
		metrics: metrics,
	}
}

// Dir returns the store directory. It is a valid registry search path.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the location a stored image has, or would have, in the store.
func (s *Store) Path(filename string) string {
	return filepath.Join(s.dir, filename)
}

// AcceptImport verifies a candidate file against the checksum declared by the
// appliance definition. A mismatch is always surfaced, never downgraded.
func (s *Store) AcceptImport(ctx context.Context, candidatePath, expectedChecksum string) (*ImportCandidate, error) {
	info, err := os.Stat(candidatePath)
	if err != nil {
		return nil, fmt.Errorf("stat candidate: %w", err)
	}

	checksum, err := ChecksumFile(candidatePath)
	if err != nil {
		return nil, err
	}

	if checksum != expectedChecksum {
		if s.metrics != nil {
			s.metrics.ChecksumFailures.Add(ctx, 1)
		}
		return nil, &ChecksumMismatchError{
			Path:     candidatePath,
			Expected: expectedChecksum,
			Actual:   checksum,
		}
	}

	return &ImportCandidate{
		SourcePath: candidatePath,
		Checksum:   checksum,
		SizeBytes:  info.Size(),
	}, nil
}

// Install copies a verified candidate into the store under filename. The copy
// goes through a temp file and an atomic rename so a failure never leaves a
// partial image behind.
func (s *Store) Install(ctx context.Context, cand *ImportCandidate, filename string) (*StoredImage, error) {
	if filename == "" || filename != filepath.Base(filename) {
		return nil, fmt.Errorf("invalid image filename %q", filename)
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	finalPath := s.Path(filename)
	if _, err := os.Stat(finalPath); err == nil {
		return nil, ErrAlreadyExists
	}

	src, err := os.Open(cand.SourcePath)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp(s.dir, ".import-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	written, err := io.Copy(tmp, src)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("copy image: %w", err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("finalize image: %w", err)
	}

	if s.metrics != nil {
		s.metrics.ImportsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("filename", filename)))
		s.metrics.ImportedBytes.Add(ctx, written)
	}

	info, err := os.Stat(finalPath)
	if err != nil {
		return nil, fmt.Errorf("stat stored image: %w", err)
	}

	return &StoredImage{
		Filename:   filename,
		SizeBytes:  info.Size(),
		ModifiedAt: info.ModTime(),
	}, nil
}

// List returns the images currently held in the store, sorted by filename.
func (s *Store) List(ctx context.Context) ([]StoredImage, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []StoredImage{}, nil
		}
		return nil, fmt.Errorf("read store directory: %w", err)
	}

	imgs := make([]StoredImage, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		imgs = append(imgs, StoredImage{
			Filename:   entry.Name(),
			SizeBytes:  info.Size(),
			ModifiedAt: info.ModTime(),
		})
	}

	sort.Slice(imgs, func(i, j int) bool { return imgs[i].Filename < imgs[j].Filename })
	return imgs, nil
}

// Delete removes a stored image.
func (s *Store) Delete(ctx context.Context, filename string) error {
	path := s.Path(filename)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("stat image: %w", err)
	}

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("remove image: %w", err)
	}
	return nil
}
