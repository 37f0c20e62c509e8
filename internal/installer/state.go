package installer

import (
	"context"
	"os"

	"github.com/Masterminds/semver/v3"

	"github.com/parcelforge/parcel/internal/repopath"
	"github.com/parcelforge/parcel/internal/version"
)

// State describes what the engine found in a package directory. It models
// "not installed" and "corrupt" as explicit results rather than as failed
// collaborator calls.
type State struct {
	Kind    StateKind
	Version *semver.Version // set only for StateInstalled
}

// StateKind enumerates the probe outcomes.
type StateKind int

const (
	// StateNotInstalled means the package directory does not exist.
	StateNotInstalled StateKind = iota

	// StateInstalled means the directory exists and is checked out at a
	// determinable semantic version.
	StateInstalled

	// StateCorrupt means the directory exists but no version can be
	// determined for it.
	StateCorrupt
)

// Installed reports whether the probe found a usable installation.
func (s State) Installed() bool { return s.Kind == StateInstalled }

// Probe reports the installation state of the repository's package
// directory.
func (i *Installer) Probe(ctx context.Context, rawPath string) (State, error) {
	canonical, err := repopath.Normalize(rawPath)
	if err != nil {
		return State{}, err
	}
	return i.probe(ctx, i.proj.PackageDir(repopath.DirName(canonical))), nil
}

// probe inspects a package directory directly. Any failure to describe or
// parse the checked-out tag classifies the directory as corrupt.
func (i *Installer) probe(ctx context.Context, dir string) State {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return State{Kind: StateNotInstalled}
	}

	tag, err := i.git.DescribeTag(ctx, dir)
	if err != nil {
		return State{Kind: StateCorrupt}
	}
	v, err := version.Parse(tag)
	if err != nil {
		return State{Kind: StateCorrupt}
	}
	return State{Kind: StateInstalled, Version: v}
}
