package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/atlasdatatech/geofix/datasource"
	"github.com/atlasdatatech/geofix/fixture"
)

var (
	infoDriver string

	infoCmd = &cobra.Command{
		Use:   "info <path>",
		Short: "Describe the layers of a dataset",
		Args:  cobra.ExactArgs(1),
		RunE:  infoCommand,
	}
)

func init() {
	infoCmd.Flags().StringVar(&infoDriver, "driver", fixture.DefaultDriver, "datasource driver")
}

func infoCommand(cmd *cobra.Command, args []string) error {
	drv, err := datasource.DriverByName(infoDriver)
	if err != nil {
		return err
	}

	ds, err := drv.Open(args[0])
	if err != nil {
		return err
	}
	defer ds.Close()

	layers, err := ds.Layers()
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "dataset: %v\n", ds.Path())
	fmt.Fprintf(w, "layers:  %v\n", len(layers))

	for _, lyr := range layers {
		fields, err := lyr.Schema()
		if err != nil {
			return err
		}
		count, err := lyr.FeatureCount()
		if err != nil {
			return err
		}
		ext, err := lyr.Extent()
		if err != nil {
			return err
		}

		cols := make([]string, 0, len(fields))
		for _, fd := range fields {
			cols = append(cols, fmt.Sprintf("%v (%v)", fd.Name, fd.Type))
		}

		fmt.Fprintf(w, "\n%v\n", lyr.Name())
		fmt.Fprintf(w, "  geometry: %v\n", lyr.GeomType())
		fmt.Fprintf(w, "  srid:     %v\n", lyr.SRID())
		fmt.Fprintf(w, "  fields:   %v\n", strings.Join(cols, ", "))
		fmt.Fprintf(w, "  features: %v\n", count)
		fmt.Fprintf(w, "  extent:   %v\n", ext)
	}

	return nil
}
