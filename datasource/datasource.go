// Package datasource defines the narrow interface geofix uses to talk to
// spatial engines, and a registry of named drivers that implement it.
// Generators resolve a driver by name, create a datasource at a path, add
// layers and features through the interface and close it. Everything an
// engine must support lives here; everything engine specific lives in the
// driver packages.
package datasource

import (
	"fmt"
	"sort"

	"github.com/go-spatial/geom"
)

// Driver creates and opens datasources of one engine type.
type Driver interface {
	// Create makes a new datasource at path. It errors if path already
	// exists; overwriting is the caller's business.
	Create(path string) (Datasource, error)
	// Open opens an existing datasource at path for reading and updating.
	Open(path string) (Datasource, error)
}

// Datasource is an open dataset owned by the caller until Close.
type Datasource interface {
	// Path returns the path the datasource was created or opened with.
	Path() string
	// Layers returns all layers in creation order.
	Layers() ([]Layer, error)
	// LayerByName returns the named layer, or ErrLayerNotFound.
	LayerByName(name string) (Layer, error)
	// CreateLayer adds a layer with the given geometry type and fields.
	// The spatial reference is shared; drivers register it once.
	CreateLayer(name string, srs *SpatialRef, gt GeometryType, fields ...FieldDefinition) (Layer, error)
	// Close finalizes the datasource. Close is idempotent; all other
	// operations error with ErrDatasourceClosed afterwards.
	Close() error
}

var drivers map[string]Driver

// Register adds the driver under name. Driver packages call this from
// their init.
func Register(name string, drv Driver) error {
	if drivers == nil {
		drivers = map[string]Driver{}
	}
	if _, ok := drivers[name]; ok {
		return ErrDriverExists{Name: name}
	}
	drivers[name] = drv
	return nil
}

// Drivers returns the sorted names of all registered drivers.
func Drivers() []string {
	l := make([]string, 0, len(drivers))
	for name := range drivers {
		l = append(l, name)
	}
	sort.Strings(l)
	return l
}

// DriverByName returns the driver registered under name.
func DriverByName(name string) (Driver, error) {
	drv, ok := drivers[name]
	if !ok {
		return nil, ErrUnknownDriver{Name: name}
	}
	return drv, nil
}

// GeometryType identifies a layer's geometry type. The values mirror the
// OGR wkb geometry codes.
type GeometryType uint32

const (
	GTUnknown            GeometryType = 0
	GTPoint              GeometryType = 1
	GTLineString         GeometryType = 2
	GTPolygon            GeometryType = 3
	GTMultiPoint         GeometryType = 4
	GTMultiLineString    GeometryType = 5
	GTMultiPolygon       GeometryType = 6
	GTGeometryCollection GeometryType = 7
	GTNone               GeometryType = 100
)

// String returns the geometry type name as stored in dataset metadata
// ("POINT", "LINESTRING", ...).
func (gt GeometryType) String() string {
	switch gt {
	case GTPoint:
		return "POINT"
	case GTLineString:
		return "LINESTRING"
	case GTPolygon:
		return "POLYGON"
	case GTMultiPoint:
		return "MULTIPOINT"
	case GTMultiLineString:
		return "MULTILINESTRING"
	case GTMultiPolygon:
		return "MULTIPOLYGON"
	case GTGeometryCollection:
		return "GEOMETRYCOLLECTION"
	case GTNone:
		return "NONE"
	}
	return "GEOMETRY"
}

// ParseGeometryType maps a geometry type name back to its GeometryType.
func ParseGeometryType(name string) (GeometryType, error) {
	switch name {
	case "POINT":
		return GTPoint, nil
	case "LINESTRING":
		return GTLineString, nil
	case "POLYGON":
		return GTPolygon, nil
	case "MULTIPOINT":
		return GTMultiPoint, nil
	case "MULTILINESTRING":
		return GTMultiLineString, nil
	case "MULTIPOLYGON":
		return GTMultiPolygon, nil
	case "GEOMETRYCOLLECTION":
		return GTGeometryCollection, nil
	case "GEOMETRY":
		return GTUnknown, nil
	}
	return GTUnknown, fmt.Errorf("unsupported geometry type: %v", name)
}

// Geom returns the zero geometry value for the type, for callers that
// switch on concrete geom types.
func (gt GeometryType) Geom() (geom.Geometry, error) {
	switch gt {
	case GTPoint:
		return geom.Point{}, nil
	case GTLineString:
		return geom.LineString{}, nil
	case GTPolygon:
		return geom.Polygon{}, nil
	case GTMultiPoint:
		return geom.MultiPoint{}, nil
	case GTMultiLineString:
		return geom.MultiLineString{}, nil
	case GTMultiPolygon:
		return geom.MultiPolygon{}, nil
	}
	return nil, fmt.Errorf("unsupported geometry type: %v", gt)
}

// TypeOf returns the GeometryType of a concrete geometry value.
func TypeOf(g geom.Geometry) GeometryType {
	switch g.(type) {
	case geom.Point:
		return GTPoint
	case geom.LineString:
		return GTLineString
	case geom.Polygon:
		return GTPolygon
	case geom.MultiPoint:
		return GTMultiPoint
	case geom.MultiLineString:
		return GTMultiLineString
	case geom.MultiPolygon:
		return GTMultiPolygon
	}
	return GTUnknown
}
