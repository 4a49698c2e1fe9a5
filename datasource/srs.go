package datasource

import "fmt"

// wgs84WKT is the EPSG:4326 definition written into dataset metadata.
const wgs84WKT = `GEOGCS["WGS 84",DATUM["WGS_1984",SPHEROID["WGS 84",6378137,298.257223563,AUTHORITY["EPSG","7030"]],AUTHORITY["EPSG","6326"]],PRIMEM["Greenwich",0,AUTHORITY["EPSG","8901"]],UNIT["degree",0.0174532925199433,AUTHORITY["EPSG","9122"]],AUTHORITY["EPSG","4326"]]`

// SpatialRef describes the coordinate reference system of a layer. One
// value is shared by all layers of a dataset; drivers register it in the
// dataset's metadata once.
type SpatialRef struct {
	// SRID is the id the dataset stores the reference under.
	SRID int
	// Authority and Code identify the reference ("EPSG", 4326).
	Authority string
	Code      int
	// Name of the reference.
	Name string
	// WKT is the Well-Known Text definition, when known.
	WKT string
}

// WGS84 returns the standard WGS84 reference (EPSG:4326).
func WGS84() *SpatialRef {
	return &SpatialRef{
		SRID:      4326,
		Authority: "EPSG",
		Code:      4326,
		Name:      "WGS 84",
		WKT:       wgs84WKT,
	}
}

// EPSG returns a reference for an EPSG code. Codes without a bundled
// definition carry an undefined WKT; 4326 is equivalent to WGS84().
func EPSG(code int) *SpatialRef {
	if code == 4326 {
		return WGS84()
	}
	return &SpatialRef{
		SRID:      code,
		Authority: "EPSG",
		Code:      code,
		Name:      fmt.Sprintf("EPSG:%d", code),
		WKT:       "undefined",
	}
}
