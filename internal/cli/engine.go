package cli

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/parcelforge/parcel/internal/config"
	"github.com/parcelforge/parcel/internal/gitvc"
	"github.com/parcelforge/parcel/internal/installer"
	"github.com/parcelforge/parcel/internal/project"
	"github.com/parcelforge/parcel/internal/registry"
)

// newEngine locates the active project, rebuilds the registry from its
// packages root, and returns an installer wired to the real git binary.
func newEngine() (*installer.Installer, *project.Project, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, nil, fmt.Errorf("resolving working directory: %w", err)
	}
	proj, err := project.Find(cwd)
	if err != nil {
		return nil, nil, err
	}
	proj.UsePackagesDir(config.Get(config.KeyPackagesDir))

	reg := registry.New()
	if err := reg.Load(proj.PackagesRoot); err != nil {
		return nil, nil, err
	}

	git := gitvc.NewCLI(config.Get(config.KeyGitBinary))
	inst := installer.New(proj, git, reg, logrus.StandardLogger())
	inst.Host = config.Get(config.KeyDefaultHost)
	return inst, proj, nil
}
