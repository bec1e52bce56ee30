package appliance

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeLocator is an in-memory Locator keyed on the full identity triple.
type fakeLocator struct {
	mu    sync.Mutex
	files map[string]bool
}

func newFakeLocator() *fakeLocator {
	return &fakeLocator{files: make(map[string]bool)}
}

func (l *fakeLocator) add(filename, checksum string, size int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.files[fmt.Sprintf("%s|%s|%d", filename, checksum, size)] = true
}

func (l *fakeLocator) Locate(ctx context.Context, filename, checksum string, size int64) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.files[fmt.Sprintf("%s|%s|%d", filename, checksum, size)], nil
}

func testAppliance(t *testing.T) *Appliance {
	t.Helper()
	a, err := ParseDefinition([]byte(testDefinition))
	require.NoError(t, err)
	return a
}

func TestReconcilePartialAvailability(t *testing.T) {
	a := testAppliance(t)

	// Only disk.qcow2 is on disk
	loc := newFakeLocator()
	loc.add("disk.qcow2", "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", 1000)

	out, err := Reconcile(context.Background(), a, loc)
	require.NoError(t, err)

	v10, err := out.Version("1.0")
	require.NoError(t, err)
	require.Equal(t, ImageStatusAvailable, v10.Images[0].Status)
	require.Equal(t, ImageStatusMissing, v10.Images[1].Status)
	require.Equal(t, VersionStatusMissingFiles, v10.Status)
	require.Equal(t, int64(1050), v10.SizeBytes)

	installable, err := out.Installable("1.0")
	require.NoError(t, err)
	require.False(t, installable)

	// 0.9 only needs the disk image
	installable, err = out.Installable("0.9")
	require.NoError(t, err)
	require.True(t, installable)
}

func TestReconcileBecomesInstallable(t *testing.T) {
	a := testAppliance(t)

	loc := newFakeLocator()
	loc.add("disk.qcow2", "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", 1000)

	out, err := Reconcile(context.Background(), a, loc)
	require.NoError(t, err)
	installable, err := out.Installable("1.0")
	require.NoError(t, err)
	require.False(t, installable)

	// The second image appears; a fresh reconcile picks it up
	loc.add("cfg.img", "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb", 50)

	out, err = Reconcile(context.Background(), a, loc)
	require.NoError(t, err)

	v10, err := out.Version("1.0")
	require.NoError(t, err)
	require.Equal(t, ImageStatusAvailable, v10.Images[0].Status)
	require.Equal(t, ImageStatusAvailable, v10.Images[1].Status)
	require.Equal(t, VersionStatusAvailable, v10.Status)

	installable, err = out.Installable("1.0")
	require.NoError(t, err)
	require.True(t, installable)
}

func TestReconcileIsIdempotent(t *testing.T) {
	a := testAppliance(t)

	loc := newFakeLocator()
	loc.add("disk.qcow2", "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", 1000)

	first, err := Reconcile(context.Background(), a, loc)
	require.NoError(t, err)
	second, err := Reconcile(context.Background(), a, loc)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestReconcileDoesNotMutateInput(t *testing.T) {
	a := testAppliance(t)

	loc := newFakeLocator()
	loc.add("disk.qcow2", "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", 1000)

	_, err := Reconcile(context.Background(), a, loc)
	require.NoError(t, err)

	for _, v := range a.Versions {
		require.Equal(t, VersionStatusUnknown, v.Status)
		require.Zero(t, v.SizeBytes)
		for _, img := range v.Images {
			require.Equal(t, ImageStatusUnknown, img.Status)
		}
	}
}

func TestReconcileEmptyVersionIsAvailable(t *testing.T) {
	a := &Appliance{
		Name:     "Empty",
		Versions: []Version{{Name: "1.0"}},
	}

	out, err := Reconcile(context.Background(), a, newFakeLocator())
	require.NoError(t, err)
	require.Equal(t, VersionStatusAvailable, out.Versions[0].Status)
	require.Zero(t, out.Versions[0].SizeBytes)

	installable, err := out.Installable("1.0")
	require.NoError(t, err)
	require.True(t, installable)
}

type failingLocator struct{}

func (failingLocator) Locate(ctx context.Context, filename, checksum string, size int64) (bool, error) {
	return false, errors.New("scan aborted")
}

func TestReconcileLocatorErrorPropagates(t *testing.T) {
	a := testAppliance(t)
	_, err := Reconcile(context.Background(), a, failingLocator{})
	require.ErrorContains(t, err, "scan aborted")
}

func TestInstallableBeforeReconcileFailsClosed(t *testing.T) {
	a := testAppliance(t)

	installable, err := a.Installable("1.0")
	require.NoError(t, err)
	require.False(t, installable)
}

func TestInstallableUnknownVersion(t *testing.T) {
	a := testAppliance(t)

	_, err := a.Installable("9.9")
	require.ErrorIs(t, err, ErrVersionNotFound)

	var notFound *VersionNotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, "ExampleOS", notFound.Appliance)
	require.Equal(t, "9.9", notFound.Version)
}
