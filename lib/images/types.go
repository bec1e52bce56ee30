package images

import "time"

// StoredImage describes a file held in the managed image store.
type StoredImage struct {
	Filename   string    `json:"filename"`
	SizeBytes  int64     `json:"size_bytes"`
	ModifiedAt time.Time `json:"modified_at"`
}

// ImportCandidate is a verified file ready to be installed into the store.
// Only produced by AcceptImport after the checksum has been validated.
type ImportCandidate struct {
	SourcePath string
	Checksum   string
	SizeBytes  int64
}
