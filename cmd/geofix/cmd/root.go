package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/atlasdatatech/geofix/cmd/internal/register"
	"github.com/atlasdatatech/geofix/config"
	"github.com/atlasdatatech/geofix/fixture"
	"github.com/atlasdatatech/geofix/internal/log"
)

var (
	logLevel string

	// RootCmd is the geofix command tree. A bare invocation writes the
	// default fixture into the working directory.
	RootCmd = &cobra.Command{
		Use:   "geofix",
		Short: "geofix generates small geospatial test fixtures",
		Long: `geofix generates small deterministic geospatial datasets meant to back
integration tests. Run without arguments it writes ` + fixture.DefaultPath + `
with three point layers of three features each into the working
directory.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			lvl, err := log.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			log.SetLevel(lvl)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return register.Datasets(".", config.Default().Datasets)
		},
	}
)

func init() {
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "INFO", "log level: TRACE, DEBUG, INFO, WARN or ERROR")

	RootCmd.AddCommand(generateCmd)
	RootCmd.AddCommand(batchCmd)
	RootCmd.AddCommand(infoCmd)
	RootCmd.AddCommand(svgCmd)
	RootCmd.AddCommand(versionCmd)
}

// Execute runs the command tree.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
