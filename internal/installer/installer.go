package installer

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/sirupsen/logrus"

	"github.com/parcelforge/parcel/internal/gitvc"
	"github.com/parcelforge/parcel/internal/manifest"
	"github.com/parcelforge/parcel/internal/project"
	"github.com/parcelforge/parcel/internal/registry"
	"github.com/parcelforge/parcel/internal/repopath"
	"github.com/parcelforge/parcel/internal/version"
)

// Default knobs for the bounded directory-deletion retry.
const (
	DefaultDeleteAttempts = 10
	DefaultDeleteDelay    = 200 * time.Millisecond
)

// Installer installs and uninstalls packages under a project's packages
// root. A single mutex serializes all mutating operations for the
// installer's lifetime, including the external-process and filesystem work
// they perform.
type Installer struct {
	proj *project.Project
	git  gitvc.Client
	reg  *registry.Registry
	log  logrus.FieldLogger

	// Host is the remote host used to build clone/ls-remote URLs for
	// canonical paths. Empty means github.com.
	Host string

	// DeleteAttempts and DeleteDelay bound the uninstall retry loop.
	DeleteAttempts uint64
	DeleteDelay    time.Duration

	mu sync.Mutex
}

// New returns an installer for the given project, collaborator, and
// registry. A nil logger falls back to the logrus standard logger.
func New(proj *project.Project, git gitvc.Client, reg *registry.Registry, log logrus.FieldLogger) *Installer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Installer{
		proj:           proj,
		git:            git,
		reg:            reg,
		log:            log,
		DeleteAttempts: DefaultDeleteAttempts,
		DeleteDelay:    DefaultDeleteDelay,
	}
}

// Registry returns the registry this installer mutates.
func (i *Installer) Registry() *registry.Registry { return i.reg }

// Install resolves the best version of the repository satisfying the range,
// materializes it under the packages root, verifies its manifest, and
// registers it. Re-installing a package already at the resolved version is
// a no-op that returns the existing registry entry. On any failure after
// the package directory may have been created, the partial installation is
// removed before the error is returned.
func (i *Installer) Install(ctx context.Context, rawPath, rangeText string) (*manifest.Package, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.install(ctx, rawPath, rangeText)
}

// install is the lock-held body of Install.
func (i *Installer) install(ctx context.Context, rawPath, rangeText string) (*manifest.Package, error) {
	canonical, err := repopath.Normalize(rawPath)
	if err != nil {
		return nil, err
	}
	rng, err := version.ParseRange(rangeText)
	if err != nil {
		return nil, err
	}

	log := i.log.WithFields(logrus.Fields{"repo": canonical, "range": rangeText})

	remote := repopath.RemoteURL(i.Host, canonical)
	tags, err := i.git.ListRemoteTags(ctx, remote)
	if err != nil {
		return nil, fmt.Errorf("listing tags for %s: %w", canonical, err)
	}
	best := version.BestMatch(version.ParseTags(tags), rng)
	if best == nil {
		return nil, fmt.Errorf("%w: %s %s", ErrNoSatisfyingVersion, canonical, rangeText)
	}
	log = log.WithField("version", best.String())

	dir := i.proj.PackageDir(repopath.DirName(canonical))

	// No-op fast path: already installed at exactly the resolved version.
	if state := i.probe(ctx, dir); state.Installed() && state.Version.Equal(best) {
		if pkg := i.reg.Get(canonical); pkg != nil {
			log.Debug("already installed at resolved version")
			return pkg, nil
		}
	}

	pkg, err := i.materialize(ctx, remote, dir, best, canonical)
	if err != nil {
		// Roll back whatever was left behind so a failed install is
		// invisible to the caller.
		i.uninstall(canonical, dir)
		return nil, err
	}

	i.reg.Put(canonical, pkg)
	log.Info("installed")
	return pkg, nil
}

// materialize clones (if needed), fetches tags, force-checks-out the
// resolved tag, and schema-validates and parses the package manifest.
func (i *Installer) materialize(ctx context.Context, remote, dir string, best *semver.Version, canonical string) (*manifest.Package, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(i.proj.PackagesRoot, project.DirPermNormal); err != nil {
			return nil, fmt.Errorf("creating packages root: %w", err)
		}
		if err := i.git.Clone(ctx, remote, dir); err != nil {
			return nil, fmt.Errorf("cloning %s: %w", canonical, err)
		}
	}

	if err := i.git.FetchTags(ctx, dir); err != nil {
		return nil, fmt.Errorf("fetching tags for %s: %w", canonical, err)
	}
	if err := i.git.CheckoutTag(ctx, dir, best.Original()); err != nil {
		return nil, fmt.Errorf("checking out %s %s: %w", canonical, best.Original(), err)
	}

	pkg, err := manifest.LoadValidated(dir)
	if err != nil {
		return nil, err
	}

	declared, err := repopath.Normalize(pkg.Repository.URL)
	if err != nil {
		return nil, fmt.Errorf("manifest of %s declares invalid repository %q: %w",
			canonical, pkg.Repository.URL, err)
	}
	if !repopath.Equal(declared, canonical) {
		return nil, fmt.Errorf("%w: requested %s, manifest declares %s",
			ErrRepositoryMismatch, canonical, declared)
	}

	return pkg, nil
}

// Uninstall removes the package directory and registry entry for the
// repository. Uninstalling a package that is not installed is a no-op.
func (i *Installer) Uninstall(ctx context.Context, rawPath string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	canonical, err := repopath.Normalize(rawPath)
	if err != nil {
		return err
	}
	i.uninstall(canonical, i.proj.PackageDir(repopath.DirName(canonical)))
	return nil
}

// uninstall is the lock-held removal shared by Uninstall and install
// rollback. Deletion retry exhaustion is logged, not fatal.
func (i *Installer) uninstall(canonical, dir string) {
	i.removeAllWithRetry(dir)
	i.reg.Remove(canonical)
}
