package datasource

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-spatial/geom"
)

// FieldType identifies an attribute field's type. The values mirror the
// OGR field type codes.
type FieldType uint32

const (
	FTInteger   FieldType = 0
	FTReal      FieldType = 2
	FTString    FieldType = 4
	FTBinary    FieldType = 8
	FTInteger64 FieldType = 12
)

func (ft FieldType) String() string {
	switch ft {
	case FTInteger:
		return "Integer"
	case FTReal:
		return "Real"
	case FTString:
		return "String"
	case FTBinary:
		return "Binary"
	case FTInteger64:
		return "Integer64"
	}
	return fmt.Sprintf("FieldType(%d)", uint32(ft))
}

// ParseFieldType maps a field type name (case-insensitive) back to its
// FieldType.
func ParseFieldType(name string) (FieldType, error) {
	switch strings.ToLower(name) {
	case "integer", "int":
		return FTInteger, nil
	case "real", "float", "double":
		return FTReal, nil
	case "string", "text":
		return FTString, nil
	case "binary", "blob":
		return FTBinary, nil
	case "integer64", "int64":
		return FTInteger64, nil
	}
	return FTInteger, fmt.Errorf("unsupported field type: %v", name)
}

// FieldDefinition declares one attribute field of a layer.
type FieldDefinition struct {
	Name string
	Type FieldType
}

// Layer is one named collection of features sharing a schema and a
// geometry type.
type Layer interface {
	// Name is the name of the layer
	Name() string
	// GeomType is the geometry type of the layer
	GeomType() GeometryType
	// SRID is the srid of all the geometries in the layer
	SRID() int
	// Schema returns the attribute fields in declaration order.
	Schema() ([]FieldDefinition, error)
	// Extent returns the bounding box of the layer's features.
	Extent() (geom.Extent, error)

	// CreateField adds an attribute field. Drivers may refuse it once
	// the layer has features.
	CreateField(fd FieldDefinition) error
	// CreateFeature inserts a feature and assigns f.ID.
	CreateFeature(f *Feature) error
	// UpdateFeature rewrites the feature stored under f.ID.
	UpdateFeature(f *Feature) error
	// Feature returns the feature stored under fid, or
	// ErrFeatureNotFound.
	Feature(fid int64) (*Feature, error)
	// FeatureCount returns the number of features in the layer.
	FeatureCount() (int, error)
	// Features calls fn for every feature in fid order. Returning an
	// error from fn stops the iteration and is returned as is.
	Features(ctx context.Context, fn func(f *Feature) error) error
}
