package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/parcelforge/parcel/internal/project"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a parcel.yaml in the current directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("resolving working directory: %w", err)
		}

		proj, err := project.Init(cwd)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Initialized project at %s\n", proj.Root)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
