package cmd

import (
	"github.com/spf13/cobra"

	"github.com/atlasdatatech/geofix/cmd/internal/register"
	"github.com/atlasdatatech/geofix/config"
	"github.com/atlasdatatech/geofix/fixture"
)

var (
	genLayers   int
	genFeatures int
	genDriver   string
	genSRID     int
	genOrigin   []float64
	genUnsetIDs bool

	generateCmd = &cobra.Command{
		Use:   "generate [path]",
		Short: "Generate a single fixture dataset",
		Long: `Generate writes one dataset. Every layer holds point features with a
single integer id field, each layer one degree northeast of the one
before it. The target is replaced if it already exists.`,
		Args: cobra.MaximumNArgs(1),
		RunE: generateCommand,
	}
)

func init() {
	generateCmd.Flags().IntVarP(&genLayers, "layers", "l", fixture.DefaultLayerCount, "number of layers")
	generateCmd.Flags().IntVarP(&genFeatures, "features", "f", fixture.DefaultFeatureCount, "number of features per layer")
	generateCmd.Flags().StringVar(&genDriver, "driver", fixture.DefaultDriver, "datasource driver")
	generateCmd.Flags().IntVar(&genSRID, "srid", fixture.DefaultSRID, "spatial reference id shared by all layers")
	generateCmd.Flags().Float64SliceVar(&genOrigin, "origin", []float64{fixture.DefaultOriginX, fixture.DefaultOriginY}, "first layer point, write as --origin=x,y")
	generateCmd.Flags().BoolVar(&genUnsetIDs, "unset-ids", false, "insert features before assigning ids, stored ids stay NULL")
}

func generateCommand(cmd *cobra.Command, args []string) error {
	path := fixture.DefaultPath
	if len(args) == 1 {
		path = args[0]
	}

	conf := config.Config{
		Datasets: []config.Dataset{
			{
				Name:     path,
				Layers:   genLayers,
				Features: genFeatures,
				Driver:   genDriver,
				SRID:     genSRID,
				Origin:   genOrigin,
				UnsetIDs: genUnsetIDs,
			},
		},
	}
	if err := conf.Validate(); err != nil {
		return err
	}

	return register.Datasets(".", conf.Datasets)
}
