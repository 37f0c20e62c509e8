package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/parcelforge/parcel/internal/repopath"
)

var uninstallCmd = &cobra.Command{
	Use:   "uninstall <repository>",
	Short: "Remove an installed package",
	Long: `Remove a package's directory and registry entry, and drop it from
parcel.yaml. Uninstalling a package that is not installed is not an error.`,
	Args: cobra.ExactArgs(1),
	RunE: runUninstall,
}

func init() {
	rootCmd.AddCommand(uninstallCmd)
}

func runUninstall(cmd *cobra.Command, args []string) error {
	inst, proj, err := newEngine()
	if err != nil {
		return err
	}

	canonical, err := repopath.Normalize(args[0])
	if err != nil {
		return err
	}

	if err := inst.Uninstall(cmd.Context(), canonical); err != nil {
		return err
	}

	m, err := proj.LoadManifest()
	if err != nil {
		return err
	}
	for k := range m.Packages {
		if repopath.Equal(k, canonical) {
			delete(m.Packages, k)
			if err := proj.SaveManifest(m); err != nil {
				return err
			}
			break
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", canonical)
	return nil
}
