package memory

import (
	"context"
	"fmt"

	"github.com/go-spatial/geom"

	"github.com/atlasdatatech/geofix/datasource"
)

// Layer is one in-memory feature collection.
type Layer struct {
	m        *Memory
	name     string
	geomType datasource.GeometryType
	srid     int
	fields   []datasource.FieldDefinition
	features []*datasource.Feature
	nextFID  int64
}

func (l *Layer) Name() string                      { return l.name }
func (l *Layer) GeomType() datasource.GeometryType { return l.geomType }
func (l *Layer) SRID() int                         { return l.srid }

// Schema returns the attribute fields in declaration order.
func (l *Layer) Schema() ([]datasource.FieldDefinition, error) {
	if l.m.closed {
		return nil, datasource.ErrDatasourceClosed
	}
	return append([]datasource.FieldDefinition(nil), l.fields...), nil
}

// Extent returns the bounding box over the layer's point features. A
// layer with no features returns the zero extent.
func (l *Layer) Extent() (geom.Extent, error) {
	if l.m.closed {
		return geom.Extent{}, datasource.ErrDatasourceClosed
	}

	var ext geom.Extent
	var has bool
	for _, f := range l.features {
		p, ok := f.Geometry.(geom.Point)
		if !ok {
			continue
		}
		if !has {
			ext = geom.Extent{p.X(), p.Y(), p.X(), p.Y()}
			has = true
			continue
		}
		if p.X() < ext[0] {
			ext[0] = p.X()
		}
		if p.Y() < ext[1] {
			ext[1] = p.Y()
		}
		if p.X() > ext[2] {
			ext[2] = p.X()
		}
		if p.Y() > ext[3] {
			ext[3] = p.Y()
		}
	}
	return ext, nil
}

// CreateField adds an attribute field. Fields can only be added while
// the layer is empty.
func (l *Layer) CreateField(fd datasource.FieldDefinition) error {
	if l.m.closed {
		return datasource.ErrDatasourceClosed
	}
	if fd.Name == "" {
		return fmt.Errorf("memory: field name: empty name")
	}
	if l.hasField(fd.Name) {
		return fmt.Errorf("memory: field %q: %w", fd.Name, datasource.ErrFieldExists)
	}
	if len(l.features) > 0 {
		return fmt.Errorf("memory: layer %q: %w", l.name, datasource.ErrLayerNotEmpty)
	}

	l.fields = append(l.fields, fd)
	return nil
}

// CreateFeature stores a copy of the feature and assigns its fid.
func (l *Layer) CreateFeature(f *datasource.Feature) error {
	if l.m.closed {
		return datasource.ErrDatasourceClosed
	}
	if err := l.validate(f); err != nil {
		return err
	}

	l.nextFID++
	f.ID = l.nextFID
	f.SRID = l.srid
	l.features = append(l.features, copyFeature(f))

	return nil
}

// UpdateFeature replaces the stored feature under f.ID.
func (l *Layer) UpdateFeature(f *datasource.Feature) error {
	if l.m.closed {
		return datasource.ErrDatasourceClosed
	}
	if err := l.validate(f); err != nil {
		return err
	}

	for i := range l.features {
		if l.features[i].ID == f.ID {
			l.features[i] = copyFeature(f)
			return nil
		}
	}
	return fmt.Errorf("memory: feature %v: %w", f.ID, datasource.ErrFeatureNotFound)
}

// Feature returns a copy of the feature stored under fid.
func (l *Layer) Feature(fid int64) (*datasource.Feature, error) {
	if l.m.closed {
		return nil, datasource.ErrDatasourceClosed
	}

	for _, f := range l.features {
		if f.ID == fid {
			return copyFeature(f), nil
		}
	}
	return nil, fmt.Errorf("memory: feature %v: %w", fid, datasource.ErrFeatureNotFound)
}

// FeatureCount returns the number of features in the layer.
func (l *Layer) FeatureCount() (int, error) {
	if l.m.closed {
		return 0, datasource.ErrDatasourceClosed
	}
	return len(l.features), nil
}

// Features calls fn for every feature in fid order.
func (l *Layer) Features(ctx context.Context, fn func(f *datasource.Feature) error) error {
	if l.m.closed {
		return datasource.ErrDatasourceClosed
	}

	for _, f := range l.features {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(copyFeature(f)); err != nil {
			return err
		}
	}
	return nil
}

func (l *Layer) hasField(name string) bool {
	for _, fd := range l.fields {
		if fd.Name == name {
			return true
		}
	}
	return false
}

func (l *Layer) validate(f *datasource.Feature) error {
	for name := range f.Values {
		if !l.hasField(name) {
			return fmt.Errorf("memory: no field %q in layer %q", name, l.name)
		}
	}
	if f.Geometry != nil && datasource.TypeOf(f.Geometry) != l.geomType {
		return fmt.Errorf("memory: %w: %T into %v layer", datasource.ErrInvalidGeometry, f.Geometry, l.geomType)
	}
	return nil
}

// copyFeature detaches stored state from the caller's feature.
func copyFeature(f *datasource.Feature) *datasource.Feature {
	c := &datasource.Feature{
		ID:       f.ID,
		Geometry: f.Geometry,
		SRID:     f.SRID,
	}
	if f.Values != nil {
		c.Values = make(map[string]interface{}, len(f.Values))
		for k, v := range f.Values {
			c.Values[k] = v
		}
	}
	return c
}
