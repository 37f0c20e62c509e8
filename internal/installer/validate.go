package installer

import (
	"context"
	"fmt"
	"sort"

	"github.com/parcelforge/parcel/internal/manifest"
	"github.com/parcelforge/parcel/internal/project"
	"github.com/parcelforge/parcel/internal/repopath"
	"github.com/parcelforge/parcel/internal/version"
)

// DefaultMaxPasses bounds the validation fixed-point loop. The manifest can
// only grow by discovered dependencies, so a well-formed project converges
// in a handful of passes; hitting the bound means declarations keep
// escalating against each other.
const DefaultMaxPasses = 64

// Validator drives the installer over every entry of the project's
// dependency manifest until the manifest and the installed packages reach a
// fixed point.
type Validator struct {
	proj *project.Project
	inst *Installer

	// MaxPasses bounds the number of full passes before giving up.
	MaxPasses int
}

// NewValidator returns a validator over the installer's project.
func NewValidator(inst *Installer) *Validator {
	return &Validator{
		proj:      inst.proj,
		inst:      inst,
		MaxPasses: DefaultMaxPasses,
	}
}

// ValidateAll repeatedly passes over the dependency manifest until a pass
// makes no change and finds nothing outdated. Each pass ensures every
// manifest entry is installed at a range-satisfying version and merges the
// dependencies newly declared by (re)installed packages back into the
// manifest, persisting it after every mutation.
//
// A failure on any entry aborts the pass after that entry's directory has
// been removed, and is returned to the caller; later entries are not
// attempted.
func (v *Validator) ValidateAll(ctx context.Context) error {
	for pass := 0; pass < v.MaxPasses; pass++ {
		again, err := v.runPass(ctx)
		if err != nil {
			return err
		}
		if !again {
			return nil
		}
	}
	return fmt.Errorf("%w after %d passes", ErrFixedPointNotReached, v.MaxPasses)
}

// runPass validates every manifest entry once. It reports whether another
// pass is needed.
func (v *Validator) runPass(ctx context.Context) (bool, error) {
	m, err := v.proj.LoadManifest()
	if err != nil {
		return false, err
	}

	again := false
	for _, entryPath := range sortedKeys(m.Packages) {
		entryAgain, err := v.validateEntry(ctx, m, entryPath, m.Packages[entryPath])
		if err != nil {
			v.inst.log.WithField("repo", entryPath).WithError(err).
				Error("dependency validation failed")
			return false, err
		}
		again = again || entryAgain
	}
	return again, nil
}

// validateEntry ensures one manifest entry is installed at a satisfying
// version and merges its declared dependencies into the manifest. It
// reports whether the manifest changed in a way that requires another pass.
func (v *Validator) validateEntry(ctx context.Context, m *project.Manifest, entryPath, rangeText string) (bool, error) {
	canonical, err := repopath.Normalize(entryPath)
	if err != nil {
		return false, err
	}
	rng, err := version.ParseRange(rangeText)
	if err != nil {
		return false, err
	}

	dir := v.inst.proj.PackageDir(repopath.DirName(canonical))
	state := v.inst.probe(ctx, dir)

	if state.Kind == StateCorrupt {
		// Directory exists but its version cannot be determined. Remove it
		// and fall through to a fresh install.
		v.inst.log.WithField("repo", canonical).WithError(ErrCorruptInstallation).
			Warn("removing corrupt package directory")
		v.inst.removeAllWithRetry(dir)
		state = State{Kind: StateNotInstalled}
	}

	if state.Installed() && rng.Check(state.Version) {
		return false, nil
	}

	pkg, err := v.inst.Install(ctx, canonical, rangeText)
	if err != nil {
		// The entry could not be brought to a valid state; make sure no
		// partial directory survives before aborting the pass.
		v.inst.removeAllWithRetry(dir)
		return false, err
	}

	changed, err := v.mergeDependencies(ctx, m, pkg)
	if err != nil {
		return false, err
	}
	if changed {
		if err := v.proj.SaveManifest(m); err != nil {
			return false, err
		}
	}
	return changed, nil
}

// mergeDependencies folds a freshly installed package's declared
// dependencies into the manifest. New repository paths are added with their
// declared range. For paths already present, the existing range is
// overwritten only when the currently installed version of that dependency
// is older than the new range's floor; the old and new ranges are never
// checked against each other for compatibility.
func (v *Validator) mergeDependencies(ctx context.Context, m *project.Manifest, pkg *manifest.Package) (bool, error) {
	changed := false
	for _, depRaw := range sortedKeys(pkg.Dependencies) {
		depRange := pkg.Dependencies[depRaw]

		depCanonical, err := repopath.Normalize(depRaw)
		if err != nil {
			return false, fmt.Errorf("package %s declares invalid dependency %q: %w",
				pkg.Name, depRaw, err)
		}

		existingKey, exists := findKey(m.Packages, depCanonical)
		if !exists {
			m.Packages[depCanonical] = depRange
			changed = true
			continue
		}

		floor, err := version.Floor(depRange)
		if err != nil {
			return false, fmt.Errorf("package %s declares unusable range %q for %s: %w",
				pkg.Name, depRange, depCanonical, err)
		}

		depState := v.inst.probe(ctx, v.inst.proj.PackageDir(repopath.DirName(depCanonical)))
		if depState.Installed() && depState.Version.LessThan(floor) {
			m.Packages[existingKey] = depRange
			changed = true
		}
	}
	return changed, nil
}

// findKey locates an existing manifest key case-insensitively.
func findKey(packages map[string]string, canonical string) (string, bool) {
	for k := range packages {
		if repopath.Equal(k, canonical) {
			return k, true
		}
	}
	return "", false
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
