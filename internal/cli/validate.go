package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/parcelforge/parcel/internal/installer"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Install or upgrade every dependency declared in parcel.yaml",
	Long: `Validate the project's dependency manifest: every entry is brought to
a version satisfying its range, dependencies declared by installed packages
are merged into the manifest, and the process repeats until nothing changes.
The first entry that cannot be validated aborts the run.`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	inst, _, err := newEngine()
	if err != nil {
		return err
	}

	if err := installer.NewValidator(inst).ValidateAll(cmd.Context()); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Dependencies are consistent (%d packages installed).\n",
		inst.Registry().Len())
	return nil
}
