package appliance

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// maxRegistryVersion is the newest definition schema this build understands.
const maxRegistryVersion = 4

// definitionDoc mirrors the on-disk appliance definition: a flat image
// inventory plus versions that reference inventory entries by filename.
type definitionDoc struct {
	Name            string         `json:"name"`
	Category        string         `json:"category"`
	Description     string         `json:"description"`
	VendorName      string         `json:"vendor_name"`
	VendorURL       string         `json:"vendor_url"`
	ProductName     string         `json:"product_name"`
	Status          string         `json:"status"`
	Maintainer      string         `json:"maintainer"`
	MaintainerEmail string         `json:"maintainer_email"`
	Usage           string         `json:"usage"`
	Symbol          string         `json:"symbol"`
	RegistryVersion int            `json:"registry_version"`
	Qemu            map[string]any `json:"qemu"`
	Images          []Image        `json:"images"`
	Versions        []struct {
		Name   string            `json:"name"`
		Images map[string]string `json:"images"`
	} `json:"versions"`
}

// ParseDefinition parses an appliance definition document and resolves each
// version's image references against the inventory. Every reference becomes
// an independent Image record, so the same file listed by two versions is
// checked once per version.
func ParseDefinition(data []byte) (*Appliance, error) {
	var doc definitionDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}

	if doc.Name == "" {
		return nil, fmt.Errorf("%w: missing name", ErrInvalidDefinition)
	}
	if doc.RegistryVersion > maxRegistryVersion {
		return nil, fmt.Errorf("%w: registry version %d (newest supported is %d)",
			ErrUnsupportedVersion, doc.RegistryVersion, maxRegistryVersion)
	}
	if len(doc.Versions) == 0 {
		return nil, fmt.Errorf("%w: no versions declared", ErrInvalidDefinition)
	}

	inventory := make(map[string]Image, len(doc.Images))
	for _, img := range doc.Images {
		if img.Filename == "" || img.Checksum == "" {
			return nil, fmt.Errorf("%w: image inventory entry missing filename or md5sum", ErrInvalidDefinition)
		}
		inventory[img.Filename] = img
	}

	a := &Appliance{
		Name:            doc.Name,
		Category:        doc.Category,
		Description:     doc.Description,
		VendorName:      doc.VendorName,
		VendorURL:       doc.VendorURL,
		ProductName:     doc.ProductName,
		Status:          doc.Status,
		Maintainer:      doc.Maintainer,
		MaintainerEmail: doc.MaintainerEmail,
		Usage:           doc.Usage,
		Symbol:          doc.Symbol,
		RegistryVersion: doc.RegistryVersion,
		Qemu:            doc.Qemu,
		Versions:        make([]Version, 0, len(doc.Versions)),
	}

	for _, dv := range doc.Versions {
		if dv.Name == "" {
			return nil, fmt.Errorf("%w: version without a name", ErrInvalidDefinition)
		}

		v := Version{
			Name:   dv.Name,
			Images: make([]Image, 0, len(dv.Images)),
			Status: VersionStatusUnknown,
		}

		// Roles sorted so the resolved image order is stable.
		roles := make([]string, 0, len(dv.Images))
		for role := range dv.Images {
			roles = append(roles, role)
		}
		sort.Strings(roles)

		for _, role := range roles {
			filename := dv.Images[role]
			img, ok := inventory[filename]
			if !ok {
				return nil, fmt.Errorf("%w: version %s references unknown image %q",
					ErrInvalidDefinition, dv.Name, filename)
			}
			img.Role = role
			img.Status = ImageStatusUnknown
			v.Images = append(v.Images, img)
		}

		a.Versions = append(a.Versions, v)
	}

	return a, nil
}

// LoadFile reads and parses an appliance definition from disk.
func LoadFile(path string) (*Appliance, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read appliance definition: %w", err)
	}
	return ParseDefinition(data)
}
