package templates

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Manager handles the template registry lifecycle.
type Manager interface {
	List(ctx context.Context) ([]Template, error)
	Get(ctx context.Context, id string) (*Template, error)
	Create(ctx context.Context, t Template) (*Template, error)
	Delete(ctx context.Context, id string) error
}

type manager struct {
	path string
	log  *slog.Logger

	mu        sync.Mutex
	templates []Template
}

// NewManager loads the template registry from the settings file at path.
// Records without a name or compute, and duplicates of an already loaded
// (compute, name) pair, are skipped the way the original settings loader
// tolerated hand-edited files.
func NewManager(path string, log *slog.Logger) (Manager, error) {
	if log == nil {
		log = slog.Default()
	}

	loaded, err := loadSettings(path)
	if err != nil {
		return nil, err
	}

	m := &manager{path: path, log: log}
	seen := make(map[string]bool, len(loaded))
	for _, t := range loaded {
		if t.Name == "" || t.Compute == "" {
			log.Warn("skipping template record without name or compute", "id", t.ID)
			continue
		}
		if seen[t.key()] {
			log.Warn("skipping duplicate template record", "compute", t.Compute, "name", t.Name)
			continue
		}
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		seen[t.key()] = true
		m.templates = append(m.templates, t)
	}

	return m, nil
}

func (m *manager) List(ctx context.Context) ([]Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Template(nil), m.templates...), nil
}

func (m *manager) Get(ctx context.Context, id string) (*Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.templates {
		if m.templates[i].ID == id {
			t := m.templates[i]
			return &t, nil
		}
	}
	return nil, ErrNotFound
}

func (m *manager) Create(ctx context.Context, t Template) (*Template, error) {
	if t.Name == "" || t.Compute == "" {
		return nil, fmt.Errorf("%w: name and compute are required", ErrInvalid)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.templates {
		if m.templates[i].key() == t.key() {
			return nil, ErrAlreadyExists
		}
	}

	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Symbol == "" {
		t.Symbol = DefaultSymbol
	}
	t.CreatedAt = time.Now().UTC()

	next := append(append([]Template(nil), m.templates...), t)
	if err := saveSettings(m.path, next); err != nil {
		return nil, err
	}
	m.templates = next

	m.log.Info("template created", "id", t.ID, "name", t.Name, "compute", t.Compute)
	return &t, nil
}

func (m *manager) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := -1
	for i := range m.templates {
		if m.templates[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNotFound
	}

	next := append([]Template(nil), m.templates[:idx]...)
	next = append(next, m.templates[idx+1:]...)
	if err := saveSettings(m.path, next); err != nil {
		return err
	}
	m.templates = next

	m.log.Info("template deleted", "id", id)
	return nil
}
