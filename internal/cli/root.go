package cli

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/parcelforge/parcel/internal/config"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string

	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "parcel",
	Short: "Manage git-backed package dependencies for a project",
	Long: `Parcel installs packages published as git repositories and keeps a
project's declared dependencies (parcel.yaml) transitively consistent:
every entry installed at a version satisfying its range, and every
dependency declared by an installed package present in the manifest.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.Load()
		configureLogging()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	if err := rootCmd.Execute(); err != nil {
		logrus.StandardLogger().Error(err)
		return err
	}
	return nil
}

// configureLogging sets the standard logger up from config and flags.
// --verbose wins over the configured level.
func configureLogging() {
	log := logrus.StandardLogger()
	log.SetOutput(os.Stderr)

	name := config.Get(config.KeyLogLevel)
	if verbose {
		name = "debug"
	}
	if name == "" {
		name = "info"
	}
	if level, err := logrus.ParseLevel(name); err == nil {
		log.SetLevel(level)
	}
}
