package datasource

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDatasourceClosed is returned by operations on a closed
	// datasource.
	ErrDatasourceClosed = errors.New("datasource: closed")
	// ErrLayerExists is returned by CreateLayer for a taken name.
	ErrLayerExists = errors.New("datasource: layer already exists")
	// ErrLayerNotFound is returned by LayerByName.
	ErrLayerNotFound = errors.New("datasource: layer not found")
	// ErrFeatureNotFound is returned by Feature and UpdateFeature for
	// unknown fids.
	ErrFeatureNotFound = errors.New("datasource: feature not found")
	// ErrFieldExists is returned by CreateField for a taken name.
	ErrFieldExists = errors.New("datasource: field already exists")
	// ErrLayerNotEmpty is returned by CreateField once the layer has
	// features.
	ErrLayerNotEmpty = errors.New("datasource: layer already has features")
	// ErrInvalidGeometry is returned when a feature's geometry does not
	// match the layer's geometry type.
	ErrInvalidGeometry = errors.New("datasource: geometry does not match layer type")
	// ErrUnsupportedGeometry is returned for geometry types a driver
	// cannot store.
	ErrUnsupportedGeometry = errors.New("datasource: unsupported geometry type")
)

// ErrUnknownDriver is returned by DriverByName for a name with no
// registered driver.
type ErrUnknownDriver struct {
	Name string
}

func (e ErrUnknownDriver) Error() string {
	return fmt.Sprintf("datasource: no driver registered with name %q, registered drivers: %v", e.Name, strings.Join(Drivers(), ", "))
}

// ErrDriverExists is returned by Register for a taken name.
type ErrDriverExists struct {
	Name string
}

func (e ErrDriverExists) Error() string {
	return fmt.Sprintf("datasource: driver %q already registered", e.Name)
}
