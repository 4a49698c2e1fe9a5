package datasource_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-spatial/geom"
	"github.com/go-test/deep"

	"github.com/atlasdatatech/geofix/datasource"
)

type stubDriver struct{}

func (stubDriver) Create(path string) (datasource.Datasource, error) { return nil, nil }
func (stubDriver) Open(path string) (datasource.Datasource, error)   { return nil, nil }

func TestRegister(t *testing.T) {
	if err := datasource.Register("stub", stubDriver{}); err != nil {
		t.Fatalf("unexpected error registering driver: %v", err)
	}
	if err := datasource.Register("stub2", stubDriver{}); err != nil {
		t.Fatalf("unexpected error registering driver: %v", err)
	}

	// duplicate names are refused
	err := datasource.Register("stub", stubDriver{})
	var dup datasource.ErrDriverExists
	if !errors.As(err, &dup) {
		t.Fatalf("expected ErrDriverExists, got %v", err)
	}
	if dup.Name != "stub" {
		t.Errorf("expected name stub, got %v", dup.Name)
	}

	if diff := deep.Equal(datasource.Drivers(), []string{"stub", "stub2"}); diff != nil {
		t.Errorf("drivers list: %v", diff)
	}

	if _, err := datasource.DriverByName("stub"); err != nil {
		t.Errorf("unexpected error looking up driver: %v", err)
	}

	_, err = datasource.DriverByName("nope")
	var unknown datasource.ErrUnknownDriver
	if !errors.As(err, &unknown) {
		t.Fatalf("expected ErrUnknownDriver, got %v", err)
	}
	// the message names the registered drivers so config typos are
	// obvious
	if !strings.Contains(err.Error(), "stub") {
		t.Errorf("expected registered drivers in error, got %q", err.Error())
	}
}

func TestGeometryType(t *testing.T) {
	testcases := []struct {
		gt   datasource.GeometryType
		name string
		zero geom.Geometry
	}{
		{gt: datasource.GTPoint, name: "POINT", zero: geom.Point{}},
		{gt: datasource.GTLineString, name: "LINESTRING", zero: geom.LineString{}},
		{gt: datasource.GTPolygon, name: "POLYGON", zero: geom.Polygon{}},
		{gt: datasource.GTMultiPoint, name: "MULTIPOINT", zero: geom.MultiPoint{}},
		{gt: datasource.GTMultiLineString, name: "MULTILINESTRING", zero: geom.MultiLineString{}},
		{gt: datasource.GTMultiPolygon, name: "MULTIPOLYGON", zero: geom.MultiPolygon{}},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.gt.String() != tc.name {
				t.Errorf("expected name %v got %v", tc.name, tc.gt.String())
			}

			parsed, err := datasource.ParseGeometryType(tc.name)
			if err != nil {
				t.Fatalf("unexpected parse error: %v", err)
			}
			if parsed != tc.gt {
				t.Errorf("expected %v got %v", tc.gt, parsed)
			}

			g, err := tc.gt.Geom()
			if err != nil {
				t.Fatalf("unexpected geom error: %v", err)
			}
			if diff := deep.Equal(g, tc.zero); diff != nil {
				t.Errorf("zero geometry: %v", diff)
			}

			if got := datasource.TypeOf(tc.zero); got != tc.gt {
				t.Errorf("TypeOf: expected %v got %v", tc.gt, got)
			}
		})
	}

	if _, err := datasource.ParseGeometryType("CIRCLE"); err == nil {
		t.Error("expected error for unsupported geometry type name")
	}
	if _, err := datasource.GTNone.Geom(); err == nil {
		t.Error("expected error for GTNone zero geometry")
	}
}

func TestParseFieldType(t *testing.T) {
	testcases := []struct {
		in       string
		expected datasource.FieldType
		err      bool
	}{
		{in: "integer", expected: datasource.FTInteger},
		{in: "Integer", expected: datasource.FTInteger},
		{in: "int", expected: datasource.FTInteger},
		{in: "real", expected: datasource.FTReal},
		{in: "double", expected: datasource.FTReal},
		{in: "string", expected: datasource.FTString},
		{in: "text", expected: datasource.FTString},
		{in: "blob", expected: datasource.FTBinary},
		{in: "integer64", expected: datasource.FTInteger64},
		{in: "uuid", err: true},
	}

	for _, tc := range testcases {
		t.Run(tc.in, func(t *testing.T) {
			ft, err := datasource.ParseFieldType(tc.in)
			if tc.err {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ft != tc.expected {
				t.Errorf("expected %v got %v", tc.expected, ft)
			}
		})
	}
}

func TestFeatureValues(t *testing.T) {
	var f datasource.Feature

	if _, ok := f.Value("id"); ok {
		t.Error("expected unset value on zero feature")
	}

	f.SetValue("id", int64(7))
	v, ok := f.Value("id")
	if !ok {
		t.Fatal("expected value to be set")
	}
	if v.(int64) != 7 {
		t.Errorf("expected 7 got %v", v)
	}

	// a nil value is the spelled-out form of unset
	f.SetValue("name", nil)
	if _, ok := f.Value("name"); ok {
		t.Error("expected nil value to read as unset")
	}
}

func TestSpatialRef(t *testing.T) {
	wgs := datasource.WGS84()
	if wgs.SRID != 4326 || wgs.Code != 4326 || wgs.Authority != "EPSG" {
		t.Errorf("unexpected WGS84 ref: %+v", wgs)
	}
	if !strings.Contains(wgs.WKT, `GEOGCS["WGS 84"`) {
		t.Errorf("expected WGS84 WKT definition, got %q", wgs.WKT)
	}

	if diff := deep.Equal(datasource.EPSG(4326), wgs); diff != nil {
		t.Errorf("EPSG(4326) should equal WGS84(): %v", diff)
	}

	utm := datasource.EPSG(32610)
	if utm.SRID != 32610 || utm.Authority != "EPSG" {
		t.Errorf("unexpected EPSG ref: %+v", utm)
	}
	if utm.WKT != "undefined" {
		t.Errorf("expected undefined WKT for unbundled code, got %q", utm.WKT)
	}
}
