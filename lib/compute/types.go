package compute

// QemuBinary is an emulator binary available on a compute server.
type QemuBinary struct {
	Path    string `json:"path"`
	Version string `json:"version"`
}

// QemuCapabilities describes what a compute server's QEMU install supports.
type QemuCapabilities struct {
	KVM []string `json:"kvm"`
}

// DiskImageOptions are the parameters for creating or resizing a disk image
// on a compute server.
type DiskImageOptions struct {
	Path        string `json:"path"`
	Format      string `json:"format,omitempty"`
	SizeMB      int    `json:"size,omitempty"`
	Preallocate string `json:"preallocation,omitempty"`
	ClusterSize int    `json:"cluster_size,omitempty"`
	Extend      int    `json:"extend,omitempty"`
}
