package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/parcelforge/parcel/internal/repopath"
)

var installNoSave bool

var installCmd = &cobra.Command{
	Use:   "install <repository> [range]",
	Short: "Install a package at the best version satisfying a range",
	Long: `Install a package from a git repository into the project's packages
directory. The repository may be given as owner/name, an SSH remote, or an
HTTPS URL. The range defaults to "*" (newest tagged version). The resolved
entry is recorded in parcel.yaml unless --no-save is set.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runInstall,
}

func init() {
	installCmd.Flags().BoolVar(&installNoSave, "no-save", false, "Do not record the dependency in parcel.yaml")
	rootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, args []string) error {
	rangeText := "*"
	if len(args) == 2 {
		rangeText = args[1]
	}

	inst, proj, err := newEngine()
	if err != nil {
		return err
	}

	pkg, err := inst.Install(cmd.Context(), args[0], rangeText)
	if err != nil {
		return err
	}

	canonical, err := repopath.Normalize(pkg.Repository.URL)
	if err != nil {
		return err
	}

	if !installNoSave {
		m, err := proj.LoadManifest()
		if err != nil {
			return err
		}
		m.Packages[canonical] = rangeText
		if err := proj.SaveManifest(m); err != nil {
			return err
		}
	}

	state, err := inst.Probe(cmd.Context(), canonical)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Installed %s %s (%s)\n", canonical, state.Version, pkg.Name)
	return nil
}
