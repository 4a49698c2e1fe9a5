package register

import (
	"fmt"
	"path/filepath"

	"github.com/atlasdatatech/geofix/config"
	"github.com/atlasdatatech/geofix/datasource"
	"github.com/atlasdatatech/geofix/fixture"
	"github.com/atlasdatatech/geofix/internal/log"
)

// ErrDriverNotRegistered is returned when a dataset block names a driver
// missing from the datasource registry.
type ErrDriverNotRegistered struct {
	Dataset string
	Driver  string
	Err     error
}

func (e ErrDriverNotRegistered) Error() string {
	return fmt.Sprintf("register: dataset (%v): driver (%v) not registered: %v", e.Dataset, e.Driver, e.Err)
}

func (e ErrDriverNotRegistered) Unwrap() error { return e.Err }

// ErrGeneratingDataset is returned when generation fails for a dataset
// block.
type ErrGeneratingDataset struct {
	Path string
	Err  error
}

func (e ErrGeneratingDataset) Error() string {
	return fmt.Sprintf("register: generating dataset (%v): %v", e.Path, e.Err)
}

func (e ErrGeneratingDataset) Unwrap() error { return e.Err }

// job is a dataset block resolved into a runnable generation task.
type job struct {
	path     string
	layers   int
	features int
	options  []fixture.Option
}

func jobFromConfigDataset(baseDir string, cfg config.Dataset) (newJob job) {
	newJob.path = cfg.Name
	if !filepath.IsAbs(newJob.path) {
		newJob.path = filepath.Join(baseDir, newJob.path)
	}

	newJob.layers = cfg.Layers
	newJob.features = cfg.Features

	if cfg.Driver != "" {
		newJob.options = append(newJob.options, fixture.Driver(cfg.Driver))
	}
	if cfg.SRID != 0 {
		newJob.options = append(newJob.options, fixture.SRID(cfg.SRID))
	}
	if len(cfg.Origin) == 2 {
		newJob.options = append(newJob.options, fixture.Origin(cfg.Origin[0], cfg.Origin[1]))
	}
	if cfg.UnsetIDs {
		newJob.options = append(newJob.options, fixture.UnsetIDs())
	}

	return newJob
}

// Datasets generates every dataset described by the config blocks.
// Relative dataset names resolve against baseDir. Driver names are
// checked up front so a batch naming an unknown driver fails before any
// dataset is touched.
func Datasets(baseDir string, datasets []config.Dataset) error {
	jobs := make([]job, 0, len(datasets))

	// resolve every block before running any of them
	for _, d := range datasets {
		driver := d.Driver
		if driver == "" {
			driver = fixture.DefaultDriver
		}

		if _, err := datasource.DriverByName(driver); err != nil {
			return ErrDriverNotRegistered{Dataset: d.Name, Driver: driver, Err: err}
		}

		jobs = append(jobs, jobFromConfigDataset(baseDir, d))
	}

	for _, j := range jobs {
		log.Debugf("dataset (%v): %v layers, %v features per layer", j.path, j.layers, j.features)

		if err := fixture.Generate(j.path, j.layers, j.features, j.options...); err != nil {
			return ErrGeneratingDataset{Path: j.path, Err: err}
		}
	}

	return nil
}
