package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/parcelforge/parcel/internal/manifest"
	"github.com/parcelforge/parcel/internal/repopath"
)

var infoValidate bool

var infoCmd = &cobra.Command{
	Use:   "info <repository>",
	Short: "Show metadata for an installed package",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	infoCmd.Flags().BoolVar(&infoValidate, "validate", false, "Check the package's manifest against the schema")
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	inst, proj, err := newEngine()
	if err != nil {
		return err
	}

	canonical, err := repopath.Normalize(args[0])
	if err != nil {
		return err
	}

	pkg := inst.Registry().Get(canonical)
	if pkg == nil {
		return fmt.Errorf("package %s is not installed", canonical)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Name:        %s\n", pkg.Name)
	fmt.Fprintf(out, "Repository:  %s\n", canonical)
	if pkg.Description != "" {
		fmt.Fprintf(out, "Description: %s\n", pkg.Description)
	}
	if pkg.Author != "" {
		fmt.Fprintf(out, "Author:      %s\n", pkg.Author)
	}
	if pkg.License != "" {
		fmt.Fprintf(out, "License:     %s\n", pkg.License)
	}
	if pkg.Homepage != "" {
		fmt.Fprintf(out, "Homepage:    %s\n", pkg.Homepage)
	}
	if state, err := inst.Probe(cmd.Context(), canonical); err == nil && state.Installed() {
		fmt.Fprintf(out, "Version:     %s\n", state.Version)
	}

	if len(pkg.Dependencies) > 0 {
		fmt.Fprintln(out, "Dependencies:")
		deps := make([]string, 0, len(pkg.Dependencies))
		for dep := range pkg.Dependencies {
			deps = append(deps, dep)
		}
		sort.Strings(deps)
		for _, dep := range deps {
			fmt.Fprintf(out, "  %s %s\n", dep, pkg.Dependencies[dep])
		}
	}

	if infoValidate {
		path, err := manifest.Find(proj.PackageDir(repopath.DirName(canonical)))
		if err != nil {
			return err
		}
		res, err := manifest.ValidateFile(path)
		if err != nil {
			return err
		}
		if res.Valid {
			fmt.Fprintln(out, "Manifest:    valid")
		} else {
			fmt.Fprintln(out, "Manifest:    invalid")
			for _, issue := range res.Issues {
				fmt.Fprintf(out, "  %s: %s\n", issue.Path, issue.Message)
			}
		}
	}
	return nil
}
