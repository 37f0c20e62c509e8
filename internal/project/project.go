// Package project locates the active project and owns its dependency
// manifest: the top-level mapping from repository path to requested
// version-range string, persisted as parcel.yaml at the project root.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// Directory and file name constants for the project layout convention.
const (
	ManifestFile = "parcel.yaml"
	PackagesDir  = "parcel_packages"
)

// Permission constants.
const (
	DirPermNormal  os.FileMode = 0755
	FilePermNormal os.FileMode = 0644
)

// ErrNoProject indicates that no manifest file was found walking up from
// the starting directory.
var ErrNoProject = errors.New("no project manifest found")

// Project is the active project context: its root directory and the
// derived packages root.
type Project struct {
	Root         string // directory containing parcel.yaml
	ManifestPath string
	PackagesRoot string
}

// Manifest is the top-level dependency manifest. Packages maps a repository
// path to a requested version-range string; key order is irrelevant.
type Manifest struct {
	Packages map[string]string `yaml:"packages"`
}

// Find walks up from startDir looking for a manifest file and returns the
// project rooted at the first directory that has one.
func Find(startDir string) (*Project, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, fmt.Errorf("resolving start directory: %w", err)
	}
	for {
		p := filepath.Join(dir, ManifestFile)
		if _, err := os.Stat(p); err == nil {
			return At(dir), nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, fmt.Errorf("%w: searched up from %s", ErrNoProject, startDir)
		}
		dir = parent
	}
}

// At returns the project rooted at dir without checking for a manifest.
func At(dir string) *Project {
	return &Project{
		Root:         dir,
		ManifestPath: filepath.Join(dir, ManifestFile),
		PackagesRoot: filepath.Join(dir, PackagesDir),
	}
}

// UsePackagesDir re-derives the packages root from a custom directory
// name, for the packages_dir config override. An empty name keeps the
// default.
func (p *Project) UsePackagesDir(name string) {
	if name == "" {
		return
	}
	p.PackagesRoot = filepath.Join(p.Root, name)
}

// Init scaffolds a new project at dir: an empty manifest plus the packages
// directory. It refuses to overwrite an existing manifest.
func Init(dir string) (*Project, error) {
	proj := At(dir)
	if _, err := os.Stat(proj.ManifestPath); err == nil {
		return nil, fmt.Errorf("%s already exists", proj.ManifestPath)
	}
	if err := os.MkdirAll(proj.PackagesRoot, DirPermNormal); err != nil {
		return nil, fmt.Errorf("creating packages directory: %w", err)
	}
	if err := proj.SaveManifest(&Manifest{Packages: map[string]string{}}); err != nil {
		return nil, err
	}
	return proj, nil
}

// LoadManifest reads and parses the dependency manifest.
func (p *Project) LoadManifest() (*Manifest, error) {
	data, err := os.ReadFile(p.ManifestPath)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", p.ManifestPath, err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", p.ManifestPath, err)
	}
	if m.Packages == nil {
		m.Packages = map[string]string{}
	}
	return &m, nil
}

// SaveManifest rewrites the dependency manifest in place. The write goes
// through a temp file and rename so a crash never leaves a truncated
// manifest behind.
func (p *Project) SaveManifest(m *Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}

	tmp := p.ManifestPath + ".tmp"
	if err := os.WriteFile(tmp, data, FilePermNormal); err != nil {
		return fmt.Errorf("writing manifest %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, p.ManifestPath); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("finalizing manifest write: %w", err)
	}
	return nil
}

// PackageDir returns the on-disk directory for a package directory name
// under the packages root.
func (p *Project) PackageDir(dirName string) string {
	return filepath.Join(p.PackagesRoot, dirName)
}
