package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/parcelforge/parcel/internal/repopath"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed packages",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	inst, _, err := newEngine()
	if err != nil {
		return err
	}

	all := inst.Registry().All()
	if len(all) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No packages installed.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "REPOSITORY\tVERSION\tNAME")
	for _, pkg := range all {
		canonical, err := repopath.Normalize(pkg.Repository.URL)
		if err != nil {
			continue
		}

		versionText := "-"
		if state, err := inst.Probe(cmd.Context(), canonical); err == nil && state.Installed() {
			versionText = state.Version.String()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", canonical, versionText, pkg.Name)
	}
	return w.Flush()
}
