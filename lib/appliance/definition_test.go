package appliance

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const testDefinition = `{
  "name": "ExampleOS",
  "category": "guest",
  "description": "A test operating system",
  "vendor_name": "Example Corp",
  "product_name": "ExampleOS Router",
  "status": "stable",
  "maintainer": "Example Maintainers",
  "registry_version": 3,
  "symbol": ":/symbols/router.svg",
  "qemu": {
    "adapter_type": "e1000",
    "adapters": 4,
    "ram": 512,
    "arch": "x86_64",
    "console_type": "telnet"
  },
  "images": [
    {
      "filename": "disk.qcow2",
      "version": "1.0",
      "md5sum": "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
      "filesize": 1000,
      "download_url": "https://example.com/downloads",
      "direct_download_url": "https://example.com/disk.qcow2"
    },
    {
      "filename": "cfg.img",
      "version": "1.0",
      "md5sum": "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb",
      "filesize": 50,
      "download_url": "https://example.com/downloads"
    }
  ],
  "versions": [
    {
      "name": "1.0",
      "images": {
        "hda_disk_image": "disk.qcow2",
        "hdb_disk_image": "cfg.img"
      }
    },
    {
      "name": "0.9",
      "images": {
        "hda_disk_image": "disk.qcow2"
      }
    }
  ]
}`

func TestParseDefinition(t *testing.T) {
	a, err := ParseDefinition([]byte(testDefinition))
	require.NoError(t, err)

	require.Equal(t, "ExampleOS", a.Name)
	require.Equal(t, "guest", a.Category)
	require.Equal(t, "ExampleOS Router", a.ProductName)
	require.Equal(t, 3, a.RegistryVersion)

	require.Len(t, a.Versions, 2)
	require.Equal(t, "1.0", a.Versions[0].Name)
	require.Equal(t, "0.9", a.Versions[1].Name)

	// Roles resolve in sorted order
	v := a.Versions[0]
	require.Len(t, v.Images, 2)
	require.Equal(t, "hda_disk_image", v.Images[0].Role)
	require.Equal(t, "disk.qcow2", v.Images[0].Filename)
	require.Equal(t, "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", v.Images[0].Checksum)
	require.Equal(t, int64(1000), v.Images[0].FilesizeBytes)
	require.Equal(t, "hdb_disk_image", v.Images[1].Role)
	require.Equal(t, "cfg.img", v.Images[1].Filename)

	// Statuses start out unknown until reconciliation runs
	require.Equal(t, ImageStatusUnknown, v.Images[0].Status)
	require.Equal(t, VersionStatusUnknown, v.Status)
}

func TestParseDefinitionSharedImageIsIndependent(t *testing.T) {
	a, err := ParseDefinition([]byte(testDefinition))
	require.NoError(t, err)

	// disk.qcow2 is referenced by both versions; each reference is its
	// own record.
	a.Versions[0].Images[0].Status = ImageStatusAvailable
	require.Equal(t, ImageStatusUnknown, a.Versions[1].Images[0].Status)
}

func TestParseDefinitionErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"not json", `{invalid`, ErrInvalidDefinition},
		{"missing name", `{"versions": [{"name": "1.0", "images": {}}]}`, ErrInvalidDefinition},
		{"no versions", `{"name": "X"}`, ErrInvalidDefinition},
		{"unknown image reference", `{
			"name": "X",
			"images": [{"filename": "a.img", "md5sum": "cc", "filesize": 1}],
			"versions": [{"name": "1.0", "images": {"hda_disk_image": "b.img"}}]
		}`, ErrInvalidDefinition},
		{"inventory entry without checksum", `{
			"name": "X",
			"images": [{"filename": "a.img", "filesize": 1}],
			"versions": [{"name": "1.0", "images": {"hda_disk_image": "a.img"}}]
		}`, ErrInvalidDefinition},
		{"future registry version", `{
			"name": "X",
			"registry_version": 99,
			"versions": [{"name": "1.0", "images": {}}]
		}`, ErrUnsupportedVersion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDefinition([]byte(tt.doc))
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestResolveDownloadURL(t *testing.T) {
	a, err := ParseDefinition([]byte(testDefinition))
	require.NoError(t, err)

	// Direct URL wins when both are declared
	require.Equal(t, "https://example.com/disk.qcow2", a.Versions[0].Images[0].ResolveDownloadURL())
	// Otherwise the indirect one is used
	require.Equal(t, "https://example.com/downloads", a.Versions[0].Images[1].ResolveDownloadURL())
}
