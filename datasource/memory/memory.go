// The memory driver keeps whole datasources in process memory. It backs
// tests that exercise generation logic without an engine or a filesystem
// underneath. Paths are labels: Create registers the datasource under
// its path for the life of the process so Open can find it again.
package memory

import (
	"fmt"
	"os"

	"github.com/atlasdatatech/geofix/datasource"
)

const Name = "memory"

func init() {
	datasource.Register(Name, Driver{})
}

var datasets = map[string]*Memory{}

// Reset drops every datasource the driver holds. Tests use it to start
// clean.
func Reset() {
	datasets = map[string]*Memory{}
}

// Driver creates and opens in-memory datasources.
type Driver struct{}

func (Driver) Create(path string) (datasource.Datasource, error) { return Create(path) }
func (Driver) Open(path string) (datasource.Datasource, error)   { return Open(path) }

// Memory is an in-memory datasource.
type Memory struct {
	path   string
	layers []*Layer
	closed bool
}

// Create registers a new datasource under path.
func Create(path string) (*Memory, error) {
	if path == "" {
		return nil, fmt.Errorf("memory: create: empty path")
	}
	if _, ok := datasets[path]; ok {
		return nil, fmt.Errorf("memory: create %v: %w", path, os.ErrExist)
	}

	m := &Memory{path: path}
	datasets[path] = m
	return m, nil
}

// Open returns the datasource registered under path.
func Open(path string) (*Memory, error) {
	m, ok := datasets[path]
	if !ok {
		return nil, fmt.Errorf("memory: open %v: %w", path, os.ErrNotExist)
	}
	m.closed = false
	return m, nil
}

// Path returns the label the datasource is registered under.
func (m *Memory) Path() string { return m.path }

// Layers returns the layers in creation order.
func (m *Memory) Layers() ([]datasource.Layer, error) {
	if m.closed {
		return nil, datasource.ErrDatasourceClosed
	}

	ls := make([]datasource.Layer, len(m.layers))
	for i := range m.layers {
		ls[i] = m.layers[i]
	}
	return ls, nil
}

// LayerByName returns the named layer.
func (m *Memory) LayerByName(name string) (datasource.Layer, error) {
	if m.closed {
		return nil, datasource.ErrDatasourceClosed
	}

	for _, l := range m.layers {
		if l.name == name {
			return l, nil
		}
	}
	return nil, fmt.Errorf("memory: layer %q: %w", name, datasource.ErrLayerNotFound)
}

// CreateLayer adds a layer. A nil srs stores the layer under srid 0.
func (m *Memory) CreateLayer(name string, srs *datasource.SpatialRef, gt datasource.GeometryType, fields ...datasource.FieldDefinition) (datasource.Layer, error) {
	if m.closed {
		return nil, datasource.ErrDatasourceClosed
	}
	if name == "" {
		return nil, fmt.Errorf("memory: layer name: empty name")
	}
	if l, _ := m.LayerByName(name); l != nil {
		return nil, fmt.Errorf("memory: layer %q: %w", name, datasource.ErrLayerExists)
	}

	for i, fd := range fields {
		if fd.Name == "" {
			return nil, fmt.Errorf("memory: field name: empty name")
		}
		for _, prev := range fields[:i] {
			if prev.Name == fd.Name {
				return nil, fmt.Errorf("memory: field %q: %w", fd.Name, datasource.ErrFieldExists)
			}
		}
	}

	srid := 0
	if srs != nil {
		srid = srs.SRID
	}

	layer := &Layer{
		m:        m,
		name:     name,
		geomType: gt,
		srid:     srid,
		fields:   append([]datasource.FieldDefinition(nil), fields...),
	}
	m.layers = append(m.layers, layer)

	return layer, nil
}

// Close marks the datasource closed. The data stays registered so Open
// can return to it.
func (m *Memory) Close() error {
	m.closed = true
	return nil
}
