// Package svg renders datasets as simple SVG documents, one circle per
// point feature. It exists for eyeballing generated fixtures.
package svg

import (
	"context"
	"fmt"
	"io"
	"math"

	svgo "github.com/ajstarks/svgo"
	"github.com/go-spatial/geom"
	"gopkg.in/go-playground/colors.v1"

	"github.com/atlasdatatech/geofix/datasource"
	"github.com/atlasdatatech/geofix/internal/log"
)

// DefaultSize is the canvas edge length used when a Drawing does not set
// one.
const DefaultSize = 512

// layer fills cycle through this palette unless a Drawing overrides
// them.
var palette = []string{
	"#e41a1c",
	"#377eb8",
	"#4daf4a",
	"#984ea3",
	"#ff7f00",
}

// Drawing describes how to render a dataset.
type Drawing struct {
	// Size is the canvas edge length in pixels. Zero or negative
	// selects DefaultSize.
	Size int
	// Fill overrides the per layer palette. Accepts hex, rgb() and
	// rgba() forms.
	Fill string
}

// Render writes a drawing of every layer in ds to w. Layers are drawn in
// dataset order, each inside a group carrying the layer name.
func (d Drawing) Render(ctx context.Context, w io.Writer, ds datasource.Datasource) error {
	size := d.Size
	if size <= 0 {
		size = DefaultSize
	}

	var fill string
	if d.Fill != "" {
		c, err := colors.Parse(d.Fill)
		if err != nil {
			return fmt.Errorf("svg: fill (%v): %v", d.Fill, err)
		}
		fill = c.ToHEX().String()
	}

	layers, err := ds.Layers()
	if err != nil {
		return err
	}

	// collect the points up front, the canvas needs the full extent
	// before the first circle is placed
	pts := make([][][2]float64, len(layers))
	var all [][2]float64
	for i, lyr := range layers {
		err = lyr.Features(ctx, func(f *datasource.Feature) error {
			if f.Geometry == nil {
				return nil
			}
			p, ok := f.Geometry.(geom.Point)
			if !ok {
				log.Debugf("layer (%v): skipping feature %v: not a point", lyr.Name(), f.ID)
				return nil
			}
			pts[i] = append(pts[i], [2]float64(p))
			all = append(all, [2]float64(p))
			return nil
		})
		if err != nil {
			return err
		}
	}

	canvas := svgo.New(w)
	canvas.Start(size, size)
	canvas.Title(ds.Path())
	canvas.Rect(0, 0, size, size, "fill:white")

	if len(all) > 0 {
		drawLayers(canvas, size, fill, layers, pts, geom.NewExtent(all...))
	}

	canvas.End()

	return nil
}

func drawLayers(canvas *svgo.SVG, size int, fill string, layers []datasource.Layer, pts [][][2]float64, ext *geom.Extent) {
	minX, minY, maxX, maxY := ext.MinX(), ext.MinY(), ext.MaxX(), ext.MaxY()

	// a single point still needs a nonzero span to scale against
	if maxX == minX {
		minX, maxX = minX-0.5, maxX+0.5
	}
	if maxY == minY {
		minY, maxY = minY-0.5, maxY+0.5
	}

	pad := size / 10
	span := float64(size - 2*pad)
	scale := math.Min(span/(maxX-minX), span/(maxY-minY))
	offX := (span - (maxX-minX)*scale) / 2
	offY := (span - (maxY-minY)*scale) / 2

	px := func(x float64) int {
		return int(math.Round(float64(pad) + offX + (x-minX)*scale))
	}
	// svg y grows downward
	py := func(y float64) int {
		return int(math.Round(float64(size-pad) - offY - (y-minY)*scale))
	}

	r := size / 128
	if r < 3 {
		r = 3
	}

	for i, lyr := range layers {
		canvas.Group(fmt.Sprintf(`id=%q`, lyr.Name()), fmt.Sprintf(`fill=%q`, layerFill(fill, i)))
		for _, p := range pts[i] {
			canvas.Circle(px(p[0]), py(p[1]), r)
		}
		canvas.Gend()
	}
}

func layerFill(override string, i int) string {
	if override != "" {
		return override
	}
	return palette[i%len(palette)]
}
