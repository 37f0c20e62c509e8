// Package registry maintains the in-memory index of installed package
// metadata, keyed by canonical repository path. The index is rebuilt from
// the on-disk package directories on load; all other operations are pure
// map mutations, and keeping the disk in sync with them is the installer's
// job.
package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/parcelforge/parcel/internal/manifest"
	"github.com/parcelforge/parcel/internal/repopath"
)

// Registry indexes installed package metadata by canonical repository path.
// Lookups are case-insensitive. The zero value is not usable; call New.
type Registry struct {
	mu       sync.RWMutex
	packages map[string]*manifest.Package // key: repopath.Key(canonical)
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{packages: make(map[string]*manifest.Package)}
}

// Load rebuilds the index from the packages root, replacing any prior
// state. It scans immediate subdirectories and parses each one's metadata
// file; directories without one are silently skipped. A directory whose
// manifest declares a repository path that disagrees with the directory
// name is fatal: it means the on-disk state was corrupted outside the
// installer.
func (r *Registry) Load(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			// No packages root yet means no installed packages.
			r.mu.Lock()
			r.packages = make(map[string]*manifest.Package)
			r.mu.Unlock()
			return nil
		}
		return fmt.Errorf("reading packages root %s: %w", dir, err)
	}

	loaded := make(map[string]*manifest.Package)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		pkg, err := manifest.Load(filepath.Join(dir, entry.Name()))
		if err != nil {
			if errors.Is(err, manifest.ErrMissing) {
				continue // not a package directory
			}
			return fmt.Errorf("loading package %s: %w", entry.Name(), err)
		}

		declared, err := repopath.Normalize(pkg.Repository.URL)
		if err != nil {
			return fmt.Errorf("package %s declares invalid repository %q: %w",
				entry.Name(), pkg.Repository.URL, err)
		}
		if !repopath.Equal(declared, repopath.FromDirName(entry.Name())) {
			return fmt.Errorf("package directory %s declares repository %s: on-disk state is inconsistent",
				entry.Name(), declared)
		}

		loaded[repopath.Key(declared)] = pkg
	}

	r.mu.Lock()
	r.packages = loaded
	r.mu.Unlock()
	return nil
}

// Get returns the metadata registered under the canonical path, or nil.
func (r *Registry) Get(canonical string) *manifest.Package {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.packages[repopath.Key(canonical)]
}

// Put registers metadata under the canonical path, replacing any prior
// entry.
func (r *Registry) Put(canonical string, pkg *manifest.Package) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.packages[repopath.Key(canonical)] = pkg
}

// Remove drops the entry for the canonical path. Removing an absent entry
// is a no-op.
func (r *Registry) Remove(canonical string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.packages, repopath.Key(canonical))
}

// All returns the registered packages sorted by key for stable listings.
func (r *Registry) All() []*manifest.Package {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.packages))
	for k := range r.packages {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]*manifest.Package, 0, len(keys))
	for _, k := range keys {
		out = append(out, r.packages[k])
	}
	return out
}

// Len returns the number of registered packages.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.packages)
}
