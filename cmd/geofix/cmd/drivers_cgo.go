// +build cgo

package cmd

// the gpkg driver needs cgo for its sqlite3 dependency
import _ "github.com/atlasdatatech/geofix/datasource/gpkg"
