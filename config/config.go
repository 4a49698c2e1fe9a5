// Package config parses the TOML batch descriptions consumed by the
// geofix command line tool. A batch file holds one [[dataset]] block per
// dataset to generate.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/atlasdatatech/geofix/fixture"
	"github.com/atlasdatatech/geofix/internal/log"
)

// ErrNoDatasets is returned by Validate when a config holds no
// [[dataset]] blocks.
var ErrNoDatasets = errors.New("config: no dataset blocks")

// Config is the root of a parsed batch description.
type Config struct {
	// LocationName is the file the config was read from, when known.
	LocationName string    `toml:"-"`
	Datasets     []Dataset `toml:"dataset"`
}

// Dataset describes one dataset to generate. Driver, SRID and Origin are
// optional in the TOML and default to the values the fixture package
// uses. A zero SRID selects the default. Layers and Features default to
// zero, which produces an empty dataset.
type Dataset struct {
	Name     string    `toml:"name"`
	Layers   int       `toml:"layers"`
	Features int       `toml:"features"`
	Driver   string    `toml:"driver"`
	SRID     int       `toml:"srid"`
	Origin   []float64 `toml:"origin"`
	UnsetIDs bool      `toml:"unset_ids"`
}

// Default returns the config equivalent to running the generator with no
// arguments: a single dataset with three point layers of three features
// each.
func Default() Config {
	return Config{
		Datasets: []Dataset{
			{
				Name:     fixture.DefaultPath,
				Layers:   fixture.DefaultLayerCount,
				Features: fixture.DefaultFeatureCount,
				Driver:   fixture.DefaultDriver,
				SRID:     fixture.DefaultSRID,
				Origin:   []float64{fixture.DefaultOriginX, fixture.DefaultOriginY},
			},
		},
	}
}

// Parse decodes a batch description from reader. location is recorded on
// the returned Config so callers can point error reports back at the
// source.
func Parse(reader io.Reader, location string) (Config, error) {
	var conf Config

	md, err := toml.DecodeReader(reader, &conf)
	if err != nil {
		return conf, err
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		log.Warnf("config file (%v) contains unrecognized keys: %v", location, keys)
	}

	conf.LocationName = location
	conf.setDefaults()

	return conf, nil
}

// Load reads and parses the batch description at path.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: opening %v: %w", path, err)
	}
	defer f.Close()

	log.Debugf("loading config file: %v", path)

	return Parse(f, path)
}

func (c *Config) setDefaults() {
	for i := range c.Datasets {
		d := &c.Datasets[i]
		if d.Driver == "" {
			d.Driver = fixture.DefaultDriver
		}
		if d.SRID == 0 {
			d.SRID = fixture.DefaultSRID
		}
		if len(d.Origin) == 0 {
			d.Origin = []float64{fixture.DefaultOriginX, fixture.DefaultOriginY}
		}
	}
}

// Validate checks the config for mistakes the TOML decoder cannot catch.
// It does not verify that drivers exist, registration does that.
func (c Config) Validate() error {
	if len(c.Datasets) == 0 {
		return ErrNoDatasets
	}

	seen := map[string]bool{}
	for i, d := range c.Datasets {
		if d.Name == "" {
			return ErrDatasetNameRequired{Index: i}
		}
		if seen[d.Name] {
			return ErrDatasetNameDuplicated{Name: d.Name}
		}
		seen[d.Name] = true

		if d.Layers < 0 {
			return ErrInvalidCount{Dataset: d.Name, Field: "layers", Value: d.Layers}
		}
		if d.Features < 0 {
			return ErrInvalidCount{Dataset: d.Name, Field: "features", Value: d.Features}
		}
		if len(d.Origin) != 2 {
			return ErrInvalidOrigin{Dataset: d.Name, Length: len(d.Origin)}
		}
	}

	return nil
}

// Dataset returns the dataset block named name.
func (c Config) Dataset(name string) (Dataset, error) {
	for _, d := range c.Datasets {
		if d.Name == name {
			return d, nil
		}
	}

	return Dataset{}, ErrDatasetNotFound{Name: name}
}
