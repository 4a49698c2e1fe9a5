// +build cgo

package register_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlasdatatech/geofix/cmd/internal/register"
	"github.com/atlasdatatech/geofix/config"
	"github.com/atlasdatatech/geofix/datasource/gpkg"
)

func TestDatasetsBatch(t *testing.T) {
	base := t.TempDir()

	blocks := []config.Dataset{
		{
			Name:     "a.gpkg",
			Layers:   2,
			Features: 1,
			Driver:   "gpkg",
			SRID:     4326,
			Origin:   []float64{47.0, -122.0},
		},
		{
			// absolute names resolve as given
			Name:     filepath.Join(base, "b.gpkg"),
			Layers:   1,
			Features: 2,
			UnsetIDs: true,
		},
	}

	require.NoError(t, register.Datasets(base, blocks))

	ds, err := gpkg.Open(filepath.Join(base, "a.gpkg"))
	require.NoError(t, err)
	layers, err := ds.Layers()
	require.NoError(t, err)
	assert.Len(t, layers, 2)
	require.NoError(t, ds.Close())

	ds, err = gpkg.Open(filepath.Join(base, "b.gpkg"))
	require.NoError(t, err)
	defer ds.Close()

	lyr, err := ds.LayerByName("layer_0")
	require.NoError(t, err)

	count, err := lyr.FeatureCount()
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	f, err := lyr.Feature(1)
	require.NoError(t, err)
	_, ok := f.Value("id")
	assert.False(t, ok, "id should be unset")
}
