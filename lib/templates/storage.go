package templates

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// settingsDoc is the persisted shape of the template registry.
type settingsDoc struct {
	SchemaVersion int              `json:"schema_version"`
	Templates     []map[string]any `json:"templates"`
}

const schemaVersion = 2

// loadSettings reads the settings file and returns the migrated template
// records. A missing file is an empty registry, not an error.
func loadSettings(path string) ([]Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var doc settingsDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	out := make([]Template, 0, len(doc.Templates))
	for _, rec := range doc.Templates {
		rec = migrateRecord(rec)

		// Round-trip through JSON so migrated raw records decode into
		// the typed model.
		raw, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("remarshal template record: %w", err)
		}
		var t Template
		if err := json.Unmarshal(raw, &t); err != nil {
			return nil, fmt.Errorf("unmarshal template record: %w", err)
		}
		out = append(out, t)
	}
	return out, nil
}

// saveSettings writes the registry atomically using temp file + rename.
func saveSettings(path string, tmpls []Template) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}

	doc := settingsDoc{
		SchemaVersion: schemaVersion,
		Templates:     make([]map[string]any, 0, len(tmpls)),
	}
	for _, t := range tmpls {
		raw, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("marshal template: %w", err)
		}
		var rec map[string]any
		if err := json.Unmarshal(raw, &rec); err != nil {
			return fmt.Errorf("unmarshal template: %w", err)
		}
		doc.Templates = append(doc.Templates, rec)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("write temp settings: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("rename settings: %w", err)
	}

	return nil
}
