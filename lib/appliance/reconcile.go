package appliance

import (
	"context"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// Locator answers whether a file matching the given identity triple exists
// locally. Satisfied by *registry.Registry.
type Locator interface {
	Locate(ctx context.Context, filename, checksum string, size int64) (bool, error)
}

// lookupConcurrency bounds parallel image lookups. Lookups are independent,
// but each one may hash large files, so the walk is kept narrow.
const lookupConcurrency = 4

// Reconcile checks every image of every version against the locator and
// returns an annotated copy of the appliance: per-image status, per-version
// aggregate status and aggregate size. The input is left untouched. The
// result is deterministic for a fixed filesystem state, and statuses are
// always recomputed, never trusted from a previous run.
func Reconcile(ctx context.Context, a *Appliance, loc Locator) (*Appliance, error) {
	out := a.Clone()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(lookupConcurrency)

	for vi := range out.Versions {
		for ii := range out.Versions[vi].Images {
			img := &out.Versions[vi].Images[ii]
			g.Go(func() error {
				found, err := loc.Locate(gctx, img.Filename, img.Checksum, img.FilesizeBytes)
				if err != nil {
					return err
				}
				if found {
					img.Status = ImageStatusAvailable
				} else {
					img.Status = ImageStatusMissing
				}
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for vi := range out.Versions {
		v := &out.Versions[vi]
		v.SizeBytes = lo.SumBy(v.Images, func(img Image) int64 { return img.FilesizeBytes })
		// A version with no images is vacuously available.
		if lo.EveryBy(v.Images, func(img Image) bool { return img.Status == ImageStatusAvailable }) {
			v.Status = VersionStatusAvailable
		} else {
			v.Status = VersionStatusMissingFiles
		}
	}

	return out, nil
}

// Installable reports whether the named version has every required image
// available. Statuses still at their zero value (reconcile not yet run)
// count as not installable. Unknown version names are a hard error.
func (a *Appliance) Installable(name string) (bool, error) {
	v, err := a.Version(name)
	if err != nil {
		return false, err
	}
	return v.Status == VersionStatusAvailable, nil
}
