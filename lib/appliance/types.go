// Package appliance models appliance definitions and reconciles their
// declared image requirements against the local image registry.
package appliance

import (
	"maps"

	"github.com/c2h5oh/datasize"
)

// ImageStatus is the derived availability of a single required image.
type ImageStatus string

const (
	ImageStatusUnknown   ImageStatus = "unknown"
	ImageStatusAvailable ImageStatus = "available"
	ImageStatusMissing   ImageStatus = "missing"
)

// VersionStatus is the derived availability of a whole appliance version.
type VersionStatus string

const (
	VersionStatusUnknown      VersionStatus = "unknown"
	VersionStatusAvailable    VersionStatus = "available"
	VersionStatusMissingFiles VersionStatus = "missing_files"
)

// Image is a single required file, identified by the
// (filename, checksum, size) triple. Status is derived by Reconcile and is
// never authoritative on its own.
type Image struct {
	Filename          string      `json:"filename"`
	Role              string      `json:"role,omitempty"`
	Version           string      `json:"version,omitempty"`
	Checksum          string      `json:"md5sum"`
	FilesizeBytes     int64       `json:"filesize"`
	DownloadURL       string      `json:"download_url,omitempty"`
	DirectDownloadURL string      `json:"direct_download_url,omitempty"`
	Status            ImageStatus `json:"status,omitempty"`
}

// ResolveDownloadURL returns the URL a user should fetch the image from.
// When both fields are set the direct URL wins.
func (i Image) ResolveDownloadURL() string {
	if i.DirectDownloadURL != "" {
		return i.DirectDownloadURL
	}
	return i.DownloadURL
}

// Version is a named, installable release bundling a fixed set of images.
// SizeBytes and Status are derived by Reconcile.
type Version struct {
	Name      string        `json:"name"`
	Images    []Image       `json:"images"`
	SizeBytes int64         `json:"size_bytes,omitempty"`
	Status    VersionStatus `json:"status,omitempty"`
}

// HumanSize renders the aggregate size for display.
func (v Version) HumanSize() string {
	return datasize.ByteSize(v.SizeBytes).HumanReadable()
}

// Appliance is a parsed appliance definition: product metadata plus the
// declared versions in declaration order.
type Appliance struct {
	Name            string         `json:"name"`
	Category        string         `json:"category"`
	Description     string         `json:"description,omitempty"`
	VendorName      string         `json:"vendor_name,omitempty"`
	VendorURL       string         `json:"vendor_url,omitempty"`
	ProductName     string         `json:"product_name,omitempty"`
	Status          string         `json:"status,omitempty"`
	Maintainer      string         `json:"maintainer,omitempty"`
	MaintainerEmail string         `json:"maintainer_email,omitempty"`
	Usage           string         `json:"usage,omitempty"`
	Symbol          string         `json:"symbol,omitempty"`
	RegistryVersion int            `json:"registry_version"`
	Qemu            map[string]any `json:"qemu,omitempty"`
	Versions        []Version      `json:"versions"`
}

// Clone returns a deep copy. Reconcile annotates a clone so callers holding
// the parsed definition never observe partially written statuses.
func (a *Appliance) Clone() *Appliance {
	out := *a
	out.Qemu = maps.Clone(a.Qemu)
	out.Versions = make([]Version, len(a.Versions))
	for i, v := range a.Versions {
		cv := v
		cv.Images = append([]Image(nil), v.Images...)
		out.Versions[i] = cv
	}
	return &out
}

// Version returns the named version.
func (a *Appliance) Version(name string) (*Version, error) {
	for i := range a.Versions {
		if a.Versions[i].Name == name {
			return &a.Versions[i], nil
		}
	}
	return nil, &VersionNotFoundError{Appliance: a.Name, Version: name}
}
