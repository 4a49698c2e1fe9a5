package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/atlasdatatech/geofix/cmd/internal/register"
	"github.com/atlasdatatech/geofix/config"
)

var (
	batchConfig string

	batchCmd = &cobra.Command{
		Use:   "batch",
		Short: "Generate every dataset in a TOML batch file",
		Long: `Batch reads a TOML file holding [[dataset]] blocks and generates each
one. Relative dataset names resolve against the directory of the batch
file.`,
		Args: cobra.NoArgs,
		RunE: batchCommand,
	}
)

func init() {
	batchCmd.Flags().StringVarP(&batchConfig, "config", "c", "geofix.toml", "path to the batch file")
}

func batchCommand(cmd *cobra.Command, args []string) error {
	conf, err := config.Load(batchConfig)
	if err != nil {
		return err
	}
	if err := conf.Validate(); err != nil {
		return err
	}

	return register.Datasets(filepath.Dir(conf.LocationName), conf.Datasets)
}
