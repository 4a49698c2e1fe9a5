// +build cgo

// Package gpkg implements the geopackage datasource driver. Layers and
// features are stored in an SQLite database laid out per the GeoPackage
// encoding: gpkg_contents and gpkg_geometry_columns describe the layers,
// each layer is a feature table with an autoincrement fid and a geometry
// blob column.
package gpkg

import (
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/atlasdatatech/geofix/datasource"
	"github.com/atlasdatatech/geofix/internal/log"
)

const (
	Name                 = "gpkg"
	DefaultSRID          = 4326
	DefaultIDFieldName   = "fid"
	DefaultGeomFieldName = "geom"
)

// SQLite header values identifying a geopackage.
const (
	applicationID = 0x47504B47 // "GPKG"
	userVersion   = 10200
)

// lastChangeFormat is the timestamp format gpkg_contents requires.
const lastChangeFormat = "2006-01-02T15:04:05.000Z"

func init() {
	datasource.Register(Name, Driver{})
}

// Driver creates and opens geopackage files.
type Driver struct{}

func (Driver) Create(path string) (datasource.Datasource, error) { return Create(path) }
func (Driver) Open(path string) (datasource.Datasource, error)   { return Open(path) }

var initStatements = []string{
	fmt.Sprintf(`PRAGMA application_id = %d`, applicationID),
	fmt.Sprintf(`PRAGMA user_version = %d`, userVersion),
	`CREATE TABLE gpkg_spatial_ref_sys (
		srs_name TEXT NOT NULL,
		srs_id INTEGER NOT NULL PRIMARY KEY,
		organization TEXT NOT NULL,
		organization_coordsys_id INTEGER NOT NULL,
		definition TEXT NOT NULL,
		description TEXT
	)`,
	`CREATE TABLE gpkg_contents (
		table_name TEXT NOT NULL PRIMARY KEY,
		data_type TEXT NOT NULL,
		identifier TEXT UNIQUE,
		description TEXT DEFAULT '',
		last_change DATETIME NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now')),
		min_x DOUBLE,
		min_y DOUBLE,
		max_x DOUBLE,
		max_y DOUBLE,
		srs_id INTEGER,
		CONSTRAINT fk_gc_r_srs_id FOREIGN KEY (srs_id) REFERENCES gpkg_spatial_ref_sys(srs_id)
	)`,
	`CREATE TABLE gpkg_geometry_columns (
		table_name TEXT NOT NULL,
		column_name TEXT NOT NULL,
		geometry_type_name TEXT NOT NULL,
		srs_id INTEGER NOT NULL,
		z TINYINT NOT NULL,
		m TINYINT NOT NULL,
		CONSTRAINT pk_geom_cols PRIMARY KEY (table_name, column_name),
		CONSTRAINT fk_gc_tn FOREIGN KEY (table_name) REFERENCES gpkg_contents(table_name),
		CONSTRAINT fk_gc_srs FOREIGN KEY (srs_id) REFERENCES gpkg_spatial_ref_sys(srs_id)
	)`,
	`INSERT INTO gpkg_spatial_ref_sys (srs_name, srs_id, organization, organization_coordsys_id, definition, description)
		VALUES ('Undefined cartesian SRS', -1, 'NONE', -1, 'undefined', 'undefined cartesian coordinate reference system')`,
	`INSERT INTO gpkg_spatial_ref_sys (srs_name, srs_id, organization, organization_coordsys_id, definition, description)
		VALUES ('Undefined geographic SRS', 0, 'NONE', 0, 'undefined', 'undefined geographic coordinate reference system')`,
}

// GeoPackage is an open geopackage file.
type GeoPackage struct {
	// path to the geopackage file
	path string
	// reference to the database connection
	db *sql.DB
	// layers in creation order
	layers []*Layer
	closed bool
}

// Create makes a new geopackage at path, laying down the required system
// tables and the default spatial reference rows. It refuses an existing
// file; overwriting is the caller's business.
func Create(path string) (*GeoPackage, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("gpkg: create %v: %w", path, os.ErrExist)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("gpkg: create %v: %w", path, err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("gpkg: open database %v: %w", path, err)
	}

	p := &GeoPackage{path: path, db: db}
	if err := p.initSchema(); err != nil {
		db.Close()
		os.Remove(path)
		return nil, err
	}

	return p, nil
}

func (p *GeoPackage) initSchema() error {
	tx, err := p.db.Begin()
	if err != nil {
		return fmt.Errorf("gpkg: begin init: %w", err)
	}

	for _, qtext := range initStatements {
		if _, err := tx.Exec(qtext); err != nil {
			tx.Rollback()
			return fmt.Errorf("gpkg: init schema: %w", err)
		}
	}

	return tx.Commit()
}

// Open opens an existing geopackage and discovers its layers. The handle
// is read-write; features may be updated in place.
func Open(path string) (*GeoPackage, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("gpkg: open %v: %w", path, err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("gpkg: open database %v: %w", path, err)
	}

	p := &GeoPackage{path: path, db: db}
	if err := p.discoverLayers(); err != nil {
		db.Close()
		return nil, err
	}

	return p, nil
}

const layerDiscoverySQL = `
	SELECT
		c.table_name, c.min_x, c.min_y, c.max_x, c.max_y, c.srs_id, gc.column_name, gc.geometry_type_name
	FROM
		gpkg_contents c JOIN gpkg_geometry_columns gc ON c.table_name == gc.table_name JOIN sqlite_master sm ON c.table_name = sm.tbl_name
	WHERE
		c.data_type = 'features' AND sm.type = 'table'
	ORDER BY c.rowid;`

func (p *GeoPackage) discoverLayers() error {
	var n int
	if err := p.db.QueryRow(`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = 'gpkg_contents'`).Scan(&n); err != nil {
		return fmt.Errorf("gpkg: reading %v: %w", p.path, err)
	}
	if n == 0 {
		return fmt.Errorf("gpkg: %v is not a geopackage", p.path)
	}

	log.Debugf("qtext: %v", layerDiscoverySQL)

	rows, err := p.db.Query(layerDiscoverySQL)
	if err != nil {
		log.Errorf("err during query: %v - %v", layerDiscoverySQL, err)
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var tablename string
		var geomCol, geomTypeName sql.NullString
		var minX, minY, maxX, maxY sql.NullFloat64
		var srid sql.NullInt64

		if err = rows.Scan(&tablename, &minX, &minY, &maxX, &maxY, &srid, &geomCol, &geomTypeName); err != nil {
			return fmt.Errorf("gpkg: reading layer row: %w", err)
		}

		gt, err := datasource.ParseGeometryType(geomTypeName.String)
		if err != nil {
			log.Errorf("error mapping geom type (%v): %v", geomTypeName.String, err)
			return err
		}

		layer := &Layer{
			gpkg:          p,
			name:          tablename,
			geomFieldname: geomCol.String,
			idFieldname:   DefaultIDFieldName,
			geomType:      gt,
			srid:          int(srid.Int64),
		}
		if minX.Valid && minY.Valid && maxX.Valid && maxY.Valid {
			layer.setBBox(minX.Float64, minY.Float64)
			layer.setBBox(maxX.Float64, maxY.Float64)
		}

		p.layers = append(p.layers, layer)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("gpkg: reading layers: %w", err)
	}

	for _, l := range p.layers {
		if err := l.loadSchema(); err != nil {
			return err
		}
	}

	return nil
}

// Path returns the path the geopackage was created or opened with.
func (p *GeoPackage) Path() string { return p.path }

// Layers returns the layers in creation order.
func (p *GeoPackage) Layers() ([]datasource.Layer, error) {
	if p.closed {
		return nil, datasource.ErrDatasourceClosed
	}

	log.Debug("attempting gpkg.Layers()")

	ls := make([]datasource.Layer, len(p.layers))
	for i := range p.layers {
		ls[i] = p.layers[i]
	}

	return ls, nil
}

// LayerByName returns the named layer.
func (p *GeoPackage) LayerByName(name string) (datasource.Layer, error) {
	if p.closed {
		return nil, datasource.ErrDatasourceClosed
	}

	if l := p.layerByName(name); l != nil {
		return l, nil
	}
	return nil, fmt.Errorf("gpkg: layer %q: %w", name, datasource.ErrLayerNotFound)
}

func (p *GeoPackage) layerByName(name string) *Layer {
	for _, l := range p.layers {
		if l.name == name {
			return l
		}
	}
	return nil
}

// CreateLayer adds a feature table with the given geometry type and
// attribute fields, registering it in the geopackage metadata. A nil srs
// stores the layer under the undefined geographic reference (srs 0).
func (p *GeoPackage) CreateLayer(name string, srs *datasource.SpatialRef, gt datasource.GeometryType, fields ...datasource.FieldDefinition) (datasource.Layer, error) {
	if p.closed {
		return nil, datasource.ErrDatasourceClosed
	}

	if err := validIdent(name); err != nil {
		return nil, fmt.Errorf("gpkg: layer name: %w", err)
	}
	if p.layerByName(name) != nil {
		return nil, fmt.Errorf("gpkg: layer %q: %w", name, datasource.ErrLayerExists)
	}

	for i, fd := range fields {
		if err := validIdent(fd.Name); err != nil {
			return nil, fmt.Errorf("gpkg: field name: %w", err)
		}
		if fd.Name == DefaultIDFieldName || fd.Name == DefaultGeomFieldName {
			return nil, fmt.Errorf("gpkg: field name %q is reserved", fd.Name)
		}
		for _, prev := range fields[:i] {
			if prev.Name == fd.Name {
				return nil, fmt.Errorf("gpkg: field %q: %w", fd.Name, datasource.ErrFieldExists)
			}
		}
	}

	srid := 0
	if srs != nil {
		srid = srs.SRID
	}

	tx, err := p.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("gpkg: begin create layer: %w", err)
	}

	if srs != nil {
		qtext := `INSERT OR IGNORE INTO gpkg_spatial_ref_sys (srs_name, srs_id, organization, organization_coordsys_id, definition) VALUES (?, ?, ?, ?, ?)`
		if _, err := tx.Exec(qtext, srs.Name, srs.SRID, srs.Authority, srs.Code, srs.WKT); err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("gpkg: registering srs %v: %w", srs.SRID, err)
		}
	}

	cols := []string{
		fmt.Sprintf(`"%v" INTEGER PRIMARY KEY AUTOINCREMENT`, DefaultIDFieldName),
		fmt.Sprintf(`"%v" %v`, DefaultGeomFieldName, gt),
	}
	for _, fd := range fields {
		cols = append(cols, fmt.Sprintf(`"%v" %v`, fd.Name, sqlTypeForField(fd.Type)))
	}

	qtext := fmt.Sprintf(`CREATE TABLE "%v" (%v)`, name, strings.Join(cols, ", "))
	log.Debugf("qtext: %v", qtext)

	if _, err := tx.Exec(qtext); err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("gpkg: creating table %q: %w", name, err)
	}

	now := time.Now().UTC().Format(lastChangeFormat)
	qtext = `INSERT INTO gpkg_contents (table_name, data_type, identifier, description, last_change, srs_id) VALUES (?, 'features', ?, '', ?, ?)`
	if _, err := tx.Exec(qtext, name, name, now, srid); err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("gpkg: registering contents for %q: %w", name, err)
	}

	qtext = `INSERT INTO gpkg_geometry_columns (table_name, column_name, geometry_type_name, srs_id, z, m) VALUES (?, ?, ?, ?, 0, 0)`
	if _, err := tx.Exec(qtext, name, DefaultGeomFieldName, gt.String(), srid); err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("gpkg: registering geometry column for %q: %w", name, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("gpkg: create layer %q: %w", name, err)
	}

	layer := &Layer{
		gpkg:          p,
		name:          name,
		geomFieldname: DefaultGeomFieldName,
		idFieldname:   DefaultIDFieldName,
		geomType:      gt,
		srid:          srid,
		fields:        append([]datasource.FieldDefinition(nil), fields...),
	}
	p.layers = append(p.layers, layer)

	return layer, nil
}

// Close flushes layer metadata and closes the database connection. Close
// is idempotent.
func (p *GeoPackage) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true

	var ferr error
	for _, l := range p.layers {
		if err := l.finalize(); err != nil && ferr == nil {
			ferr = err
		}
	}
	if err := p.db.Close(); err != nil && ferr == nil {
		ferr = err
	}

	return ferr
}

// validIdent guards names interpolated into DDL.
func validIdent(name string) error {
	if name == "" {
		return fmt.Errorf("empty name")
	}
	if strings.ContainsAny(name, `"`) {
		return fmt.Errorf("invalid name %q", name)
	}
	return nil
}
