package templates

import "time"

// DefaultSymbol is applied to templates that never declared one.
const DefaultSymbol = ":/symbols/qemu_guest.svg"

// Template is a QEMU VM template: the node settings a compute server needs
// to boot an installed appliance version.
type Template struct {
	ID                string    `json:"template_id"`
	Name              string    `json:"name"`
	Compute           string    `json:"compute"`
	Category          string    `json:"category,omitempty"`
	Symbol            string    `json:"symbol,omitempty"`
	Usage             string    `json:"usage,omitempty"`
	Platform          string    `json:"platform,omitempty"`
	RAM               int       `json:"ram,omitempty"`
	CPUs              int       `json:"cpus,omitempty"`
	Adapters          int       `json:"adapters,omitempty"`
	AdapterType       string    `json:"adapter_type,omitempty"`
	ConsoleType       string    `json:"console_type,omitempty"`
	BootPriority      string    `json:"boot_priority,omitempty"`
	HdaDiskImage      string    `json:"hda_disk_image,omitempty"`
	HdbDiskImage      string    `json:"hdb_disk_image,omitempty"`
	HdcDiskImage      string    `json:"hdc_disk_image,omitempty"`
	HddDiskImage      string    `json:"hdd_disk_image,omitempty"`
	CdromImage        string    `json:"cdrom_image,omitempty"`
	KernelImage       string    `json:"kernel_image,omitempty"`
	InitrdImage       string    `json:"initrd_image,omitempty"`
	KernelCommandLine string    `json:"kernel_command_line,omitempty"`
	Options           string    `json:"options,omitempty"`
	CreatedAt         time.Time `json:"created_at,omitempty"`
}

// key identifies a template within the settings file. A compute may not hold
// two templates with the same name.
func (t *Template) key() string {
	return t.Compute + ":" + t.Name
}
