package datasource

import "github.com/go-spatial/geom"

// Feature is one geometry with its attribute values. A field name absent
// from Values is unset and stored as NULL; a present key with a nil value
// is the same thing spelled out.
type Feature struct {
	// ID is the feature id assigned by the layer on insert.
	ID int64
	// Geometry of the feature, in the layer's spatial reference.
	Geometry geom.Geometry
	// SRID of the geometry.
	SRID int
	// Values holds the attribute values keyed by field name.
	Values map[string]interface{}
}

// SetValue sets an attribute value, allocating Values on first use.
func (f *Feature) SetValue(name string, v interface{}) {
	if f.Values == nil {
		f.Values = map[string]interface{}{}
	}
	f.Values[name] = v
}

// Value returns the attribute value and whether it is set.
func (f *Feature) Value(name string) (interface{}, bool) {
	if f.Values == nil {
		return nil, false
	}
	v, ok := f.Values[name]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}
