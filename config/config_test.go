package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-test/deep"

	"github.com/atlasdatatech/geofix/config"
)

func TestParse(t *testing.T) {
	in := `
[[dataset]]
name = "three_layer_ds.s3db"
layers = 3
features = 3

[[dataset]]
name = "nulls.gpkg"
layers = 1
features = 2
driver = "gpkg"
srid = 3857
origin = [10.0, 20.0]
unset_ids = true
`

	conf, err := config.Parse(strings.NewReader(in), "batch.toml")
	if err != nil {
		t.Fatalf("parse, expected nil got %v", err)
	}

	expected := config.Config{
		LocationName: "batch.toml",
		Datasets: []config.Dataset{
			{
				Name:     "three_layer_ds.s3db",
				Layers:   3,
				Features: 3,
				Driver:   "gpkg",
				SRID:     4326,
				Origin:   []float64{47.0, -122.0},
			},
			{
				Name:     "nulls.gpkg",
				Layers:   1,
				Features: 2,
				Driver:   "gpkg",
				SRID:     3857,
				Origin:   []float64{10.0, 20.0},
				UnsetIDs: true,
			},
		},
	}

	if diff := deep.Equal(conf, expected); diff != nil {
		t.Errorf("parsed config does not match, diff: %v", diff)
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := config.Parse(strings.NewReader("[[dataset]\nname"), "bad.toml"); err == nil {
		t.Errorf("malformed toml, expected err got nil")
	}
}

func TestParseUnrecognizedKeys(t *testing.T) {
	in := `
[[dataset]]
name = "a.gpkg"
colour = "red"
`

	conf, err := config.Parse(strings.NewReader(in), "batch.toml")
	if err != nil {
		t.Fatalf("parse, expected nil got %v", err)
	}
	if len(conf.Datasets) != 1 || conf.Datasets[0].Name != "a.gpkg" {
		t.Errorf("datasets, expected one block named a.gpkg got %+v", conf.Datasets)
	}
}

func TestValidate(t *testing.T) {
	type tcase struct {
		conf     config.Config
		expected error
	}

	origin := []float64{47.0, -122.0}

	fn := func(tc tcase) func(t *testing.T) {
		return func(t *testing.T) {
			err := tc.conf.Validate()
			if err != tc.expected {
				t.Errorf("validate, expected %v got %v", tc.expected, err)
			}
		}
	}

	tests := map[string]tcase{
		"default": {
			conf:     config.Default(),
			expected: nil,
		},
		"no datasets": {
			conf:     config.Config{},
			expected: config.ErrNoDatasets,
		},
		"missing name": {
			conf: config.Config{
				Datasets: []config.Dataset{{Layers: 1, Features: 1, Origin: origin}},
			},
			expected: config.ErrDatasetNameRequired{Index: 0},
		},
		"duplicated name": {
			conf: config.Config{
				Datasets: []config.Dataset{
					{Name: "a.gpkg", Origin: origin},
					{Name: "a.gpkg", Origin: origin},
				},
			},
			expected: config.ErrDatasetNameDuplicated{Name: "a.gpkg"},
		},
		"negative layers": {
			conf: config.Config{
				Datasets: []config.Dataset{{Name: "a.gpkg", Layers: -1, Origin: origin}},
			},
			expected: config.ErrInvalidCount{Dataset: "a.gpkg", Field: "layers", Value: -1},
		},
		"negative features": {
			conf: config.Config{
				Datasets: []config.Dataset{{Name: "a.gpkg", Features: -3, Origin: origin}},
			},
			expected: config.ErrInvalidCount{Dataset: "a.gpkg", Field: "features", Value: -3},
		},
		"short origin": {
			conf: config.Config{
				Datasets: []config.Dataset{{Name: "a.gpkg", Origin: []float64{47.0}}},
			},
			expected: config.ErrInvalidOrigin{Dataset: "a.gpkg", Length: 1},
		},
	}

	for name, tc := range tests {
		t.Run(name, fn(tc))
	}
}

func TestDataset(t *testing.T) {
	conf := config.Default()

	d, err := conf.Dataset("three_layer_ds.s3db")
	if err != nil {
		t.Fatalf("dataset, expected nil got %v", err)
	}
	if d.Layers != 3 || d.Features != 3 || d.Driver != "gpkg" {
		t.Errorf("dataset, unexpected block %+v", d)
	}

	_, err = conf.Dataset("nope")
	expected := config.ErrDatasetNotFound{Name: "nope"}
	if err != expected {
		t.Errorf("missing dataset, expected %v got %v", expected, err)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.toml")

	in := `
[[dataset]]
name = "a.gpkg"
layers = 2
features = 1
`
	if err := os.WriteFile(path, []byte(in), 0644); err != nil {
		t.Fatalf("write config, expected nil got %v", err)
	}

	conf, err := config.Load(path)
	if err != nil {
		t.Fatalf("load, expected nil got %v", err)
	}
	if conf.LocationName != path {
		t.Errorf("location, expected %v got %v", path, conf.LocationName)
	}
	if len(conf.Datasets) != 1 || conf.Datasets[0].Layers != 2 {
		t.Errorf("datasets, unexpected %+v", conf.Datasets)
	}

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file, expected ErrNotExist got %v", err)
	}
}
