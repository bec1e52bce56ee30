package images

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChecksumFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disk.qcow2")
	require.NoError(t, os.WriteFile(path, []byte("hello world"), 0644))

	sum, err := ChecksumFile(path)
	require.NoError(t, err)
	require.Equal(t, "5eb63bbbe01eeed093cb22bb8f5acdc3", sum)
}

func TestChecksumFileMissing(t *testing.T) {
	_, err := ChecksumFile(filepath.Join(t.TempDir(), "nope.img"))
	require.Error(t, err)
}
