package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is set at build time via the linker.
var Version = "version not set"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of geofix",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(Version)
	},
}
