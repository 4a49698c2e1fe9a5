package memory_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/go-spatial/geom"
	"github.com/go-test/deep"

	"github.com/atlasdatatech/geofix/datasource"
	"github.com/atlasdatatech/geofix/datasource/memory"
)

func TestDriverRegistered(t *testing.T) {
	drv, err := datasource.DriverByName(memory.Name)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := drv.(memory.Driver); !ok {
		t.Fatalf("expected memory.Driver, got %T", drv)
	}
}

func TestCreateOpen(t *testing.T) {
	memory.Reset()

	ds, err := memory.Create("fixtures/a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ds.Path() != "fixtures/a" {
		t.Errorf("expected path fixtures/a got %v", ds.Path())
	}

	if _, err := memory.Create("fixtures/a"); !errors.Is(err, os.ErrExist) {
		t.Errorf("expected ErrExist for duplicate create, got %v", err)
	}
	if _, err := memory.Create(""); err == nil {
		t.Error("expected error for empty path")
	}
	if _, err := memory.Open("fixtures/b"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected ErrNotExist for unknown open, got %v", err)
	}

	if _, err := ds.CreateLayer("layer_0", datasource.WGS84(), datasource.GTPoint); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ds.Close(); err != nil {
		t.Fatalf("unexpected error on close: %v", err)
	}

	if _, err := ds.Layers(); !errors.Is(err, datasource.ErrDatasourceClosed) {
		t.Errorf("expected ErrDatasourceClosed, got %v", err)
	}

	// the data survives close and is there again on open
	ds2, err := memory.Open("fixtures/a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	layers, err := ds2.Layers()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(layers) != 1 || layers[0].Name() != "layer_0" {
		t.Errorf("expected layer_0 to survive reopen, got %v layers", len(layers))
	}
}

func TestLayerLifecycle(t *testing.T) {
	memory.Reset()

	ds, err := memory.Create("lifecycle")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer ds.Close()

	layer, err := ds.CreateLayer("pts", datasource.WGS84(), datasource.GTPoint,
		datasource.FieldDefinition{Name: "id", Type: datasource.FTInteger})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := ds.CreateLayer("pts", datasource.WGS84(), datasource.GTPoint); !errors.Is(err, datasource.ErrLayerExists) {
		t.Errorf("expected ErrLayerExists, got %v", err)
	}
	if _, err := ds.LayerByName("nope"); !errors.Is(err, datasource.ErrLayerNotFound) {
		t.Errorf("expected ErrLayerNotFound, got %v", err)
	}

	if layer.GeomType() != datasource.GTPoint {
		t.Errorf("expected point geometry type, got %v", layer.GeomType())
	}
	if layer.SRID() != 4326 {
		t.Errorf("expected srid 4326, got %v", layer.SRID())
	}

	// field rules
	if err := layer.CreateField(datasource.FieldDefinition{Name: "id", Type: datasource.FTInteger}); !errors.Is(err, datasource.ErrFieldExists) {
		t.Errorf("expected ErrFieldExists, got %v", err)
	}
	if err := layer.CreateField(datasource.FieldDefinition{Name: "name", Type: datasource.FTString}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// features
	f := &datasource.Feature{
		Geometry: geom.Point{47.0, -122.0},
		Values:   map[string]interface{}{"id": int64(0)},
	}
	if err := layer.CreateFeature(f); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.ID != 1 {
		t.Errorf("expected fid 1, got %v", f.ID)
	}
	if f.SRID != 4326 {
		t.Errorf("expected srid 4326, got %v", f.SRID)
	}

	if err := layer.CreateField(datasource.FieldDefinition{Name: "late", Type: datasource.FTString}); !errors.Is(err, datasource.ErrLayerNotEmpty) {
		t.Errorf("expected ErrLayerNotEmpty, got %v", err)
	}

	if err := layer.CreateFeature(&datasource.Feature{Geometry: geom.LineString{{0, 0}, {1, 1}}}); !errors.Is(err, datasource.ErrInvalidGeometry) {
		t.Errorf("expected ErrInvalidGeometry, got %v", err)
	}
	if err := layer.CreateFeature(&datasource.Feature{Values: map[string]interface{}{"nope": 1}}); err == nil {
		t.Error("expected error for undeclared field")
	}

	// unset values stay unset; stored features are detached from the
	// caller's copy
	g := &datasource.Feature{Geometry: geom.Point{48.0, -121.0}}
	if err := layer.CreateFeature(g); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	g.SetValue("id", int64(99))

	stored, err := layer.Feature(2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := stored.Value("id"); ok {
		t.Error("expected id to be unset on stored feature")
	}

	n, err := layer.FeatureCount()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 features, got %v", n)
	}

	// update
	stored.SetValue("id", int64(7))
	if err := layer.UpdateFeature(stored); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f2, err := layer.Feature(2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, ok := f2.Value("id")
	if !ok || v.(int64) != 7 {
		t.Errorf("expected updated id 7, got %v (set %v)", v, ok)
	}

	if err := layer.UpdateFeature(&datasource.Feature{ID: 99}); !errors.Is(err, datasource.ErrFeatureNotFound) {
		t.Errorf("expected ErrFeatureNotFound, got %v", err)
	}
	if _, err := layer.Feature(99); !errors.Is(err, datasource.ErrFeatureNotFound) {
		t.Errorf("expected ErrFeatureNotFound, got %v", err)
	}

	// schema
	schema, err := layer.Schema()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := []datasource.FieldDefinition{
		{Name: "id", Type: datasource.FTInteger},
		{Name: "name", Type: datasource.FTString},
	}
	if diff := deep.Equal(schema, expected); diff != nil {
		t.Errorf("schema: %v", diff)
	}

	// extent over the two points
	ext, err := layer.Extent()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := deep.Equal(ext, geom.Extent{47.0, -122.0, 48.0, -121.0}); diff != nil {
		t.Errorf("extent: %v", diff)
	}
}

func TestFeaturesIteration(t *testing.T) {
	memory.Reset()

	ds, err := memory.Create("iter")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer ds.Close()

	layer, err := ds.CreateLayer("pts", datasource.WGS84(), datasource.GTPoint,
		datasource.FieldDefinition{Name: "id", Type: datasource.FTInteger})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 0; i < 3; i++ {
		f := &datasource.Feature{
			Geometry: geom.Point{float64(i), float64(i)},
			Values:   map[string]interface{}{"id": int64(i)},
		}
		if err := layer.CreateFeature(f); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	var ids []int64
	err = layer.Features(context.Background(), func(f *datasource.Feature) error {
		ids = append(ids, f.ID)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := deep.Equal(ids, []int64{1, 2, 3}); diff != nil {
		t.Errorf("iteration order: %v", diff)
	}

	stop := errors.New("stop")
	err = layer.Features(context.Background(), func(f *datasource.Feature) error { return stop })
	if err != stop {
		t.Errorf("expected fn error to propagate, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = layer.Features(ctx, func(f *datasource.Feature) error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
