// Package fixture generates deterministic spatial datasets for tests. A
// dataset holds layers layer_0 .. layer_N-1, each with M point features
// and one integer id field; every feature of layer nl sits at
// (x0+nl, y0+nl), so content depends only on the layer index.
package fixture

import (
	"fmt"
	"os"

	"github.com/go-spatial/geom"

	"github.com/atlasdatatech/geofix/datasource"
	"github.com/atlasdatatech/geofix/internal/log"
)

// Defaults of the standard three-by-three dataset.
const (
	DefaultPath         = "three_layer_ds.s3db"
	DefaultLayerCount   = 3
	DefaultFeatureCount = 3
)

const (
	DefaultDriver  = "gpkg"
	DefaultSRID    = 4326
	DefaultOriginX = 47.0
	DefaultOriginY = -122.0

	// IDFieldName is the one attribute field every layer carries.
	IDFieldName = "id"
)

type options struct {
	driver   string
	srid     int
	originX  float64
	originY  float64
	unsetIDs bool
}

func defaults() options {
	return options{
		driver:  DefaultDriver,
		srid:    DefaultSRID,
		originX: DefaultOriginX,
		originY: DefaultOriginY,
	}
}

// Option adjusts how a dataset is generated.
type Option func(*options)

// Driver selects the datasource driver by name. The default is gpkg.
func Driver(name string) Option {
	return func(o *options) { o.driver = name }
}

// SRID sets the spatial reference of every layer. The default is 4326.
func SRID(code int) Option {
	return func(o *options) { o.srid = code }
}

// Origin moves the anchor the per-layer coordinates derive from. The
// default is (47, -122).
func Origin(x, y float64) Option {
	return func(o *options) {
		o.originX = x
		o.originY = y
	}
}

// UnsetIDs inserts each feature before assigning its id value, so the
// assignment never reaches storage and the stored rows keep id NULL.
// Useful for fixtures that exercise NULL attribute handling.
func UnsetIDs() Option {
	return func(o *options) { o.unsetIDs = true }
}

// Generate writes a dataset of layers x features points to path,
// replacing whatever was there. The dataset is built in a temporary
// file next to path and renamed over it once complete, so a failed run
// never leaves a half-written dataset at path.
func Generate(path string, layers, features int, opts ...Option) error {
	o := defaults()
	for _, opt := range opts {
		opt(&o)
	}

	if path == "" {
		return fmt.Errorf("fixture: empty path")
	}
	if err := validCounts(layers, features); err != nil {
		return err
	}

	drv, err := datasource.DriverByName(o.driver)
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	// a stale tmp from a crashed run would fail the create
	if err := os.Remove(tmp); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("fixture: removing stale %v: %w", tmp, err)
	}

	ds, err := drv.Create(tmp)
	if err != nil {
		return fmt.Errorf("fixture: creating dataset: %w", err)
	}

	if err := build(ds, layers, features, o); err != nil {
		ds.Close()
		os.Remove(tmp)
		return err
	}

	if err := ds.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("fixture: finalizing dataset: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("fixture: publishing dataset: %w", err)
	}

	log.Infof("generated %v: %v layers, %v features each", path, layers, features)
	return nil
}

// Build writes the layers and features into an already created
// datasource. It is the core of Generate, split out so generation can
// be driven against any datasource implementation. Build does not close
// ds.
func Build(ds datasource.Datasource, layers, features int, opts ...Option) error {
	o := defaults()
	for _, opt := range opts {
		opt(&o)
	}
	return build(ds, layers, features, o)
}

func build(ds datasource.Datasource, layers, features int, o options) error {
	if err := validCounts(layers, features); err != nil {
		return err
	}

	// one spatial reference shared by every layer
	srs := datasource.EPSG(o.srid)

	for nl := 0; nl < layers; nl++ {
		name := fmt.Sprintf("layer_%d", nl)

		layer, err := ds.CreateLayer(name, srs, datasource.GTPoint,
			datasource.FieldDefinition{Name: IDFieldName, Type: datasource.FTInteger})
		if err != nil {
			return fmt.Errorf("fixture: creating %v: %w", name, err)
		}

		point := geom.Point{o.originX + float64(nl), o.originY + float64(nl)}

		for ni := 0; ni < features; ni++ {
			feature := datasource.Feature{Geometry: point}

			if o.unsetIDs {
				// store first, assign after: the assignment only
				// reaches this in-memory feature, never the row
				if err := layer.CreateFeature(&feature); err != nil {
					return fmt.Errorf("fixture: inserting into %v: %w", name, err)
				}
				feature.SetValue(IDFieldName, int64(nl))
				continue
			}

			feature.SetValue(IDFieldName, int64(nl))
			if err := layer.CreateFeature(&feature); err != nil {
				return fmt.Errorf("fixture: inserting into %v: %w", name, err)
			}
		}

		log.Debugf("built %v: %v features at %v", name, features, point)
	}

	return nil
}

func validCounts(layers, features int) error {
	if layers < 0 || features < 0 {
		return fmt.Errorf("fixture: layer and feature counts must not be negative (%v, %v)", layers, features)
	}
	return nil
}
