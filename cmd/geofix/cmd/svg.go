package cmd

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/atlasdatatech/geofix/datasource"
	"github.com/atlasdatatech/geofix/fixture"
	"github.com/atlasdatatech/geofix/internal/log"
	"github.com/atlasdatatech/geofix/internal/svg"
)

var (
	svgOut    string
	svgSize   int
	svgFill   string
	svgDriver string

	svgCmd = &cobra.Command{
		Use:   "svg <path>",
		Short: "Render a dataset to an SVG file",
		Long: `Svg draws every point feature of a dataset as a circle, one group per
layer, and writes the drawing next to the dataset unless --out says
otherwise.`,
		Args: cobra.ExactArgs(1),
		RunE: svgCommand,
	}
)

func init() {
	svgCmd.Flags().StringVarP(&svgOut, "out", "o", "", "output file, defaults to the dataset name with a .svg extension")
	svgCmd.Flags().IntVar(&svgSize, "size", svg.DefaultSize, "canvas edge length in pixels")
	svgCmd.Flags().StringVar(&svgFill, "fill", "", "fill for every layer, hex or rgb(), defaults to a per layer palette")
	svgCmd.Flags().StringVar(&svgDriver, "driver", fixture.DefaultDriver, "datasource driver")
}

func svgCommand(cmd *cobra.Command, args []string) error {
	path := args[0]

	out := svgOut
	if out == "" {
		out = strings.TrimSuffix(path, filepath.Ext(path)) + ".svg"
	}

	drv, err := datasource.DriverByName(svgDriver)
	if err != nil {
		return err
	}

	ds, err := drv.Open(path)
	if err != nil {
		return err
	}
	defer ds.Close()

	f, err := os.Create(out)
	if err != nil {
		return err
	}

	d := svg.Drawing{Size: svgSize, Fill: svgFill}
	if err := d.Render(cmd.Context(), f, ds); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	log.Infof("rendered %v to %v", path, out)

	return nil
}
