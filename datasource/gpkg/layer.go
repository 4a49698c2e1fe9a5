// +build cgo

package gpkg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-spatial/geom"

	"github.com/atlasdatatech/geofix/datasource"
	"github.com/atlasdatatech/geofix/internal/log"
)

// Layer is one feature table of a geopackage.
type Layer struct {
	gpkg          *GeoPackage
	name          string
	idFieldname   string
	geomFieldname string
	geomType      datasource.GeometryType
	srid          int
	fields        []datasource.FieldDefinition

	insertStmt *sql.Stmt

	// bounding box of the layer, mirrored into gpkg_contents on close
	hasBBox                bool
	bboxDirty              bool
	minX, minY, maxX, maxY float64
}

func (l *Layer) Name() string                      { return l.name }
func (l *Layer) GeomType() datasource.GeometryType { return l.geomType }
func (l *Layer) SRID() int                         { return l.srid }

// Schema returns the attribute fields in declaration order.
func (l *Layer) Schema() ([]datasource.FieldDefinition, error) {
	if l.gpkg.closed {
		return nil, datasource.ErrDatasourceClosed
	}
	return append([]datasource.FieldDefinition(nil), l.fields...), nil
}

// Extent returns the bounding box of the layer's features. A layer with
// no features returns the zero extent.
func (l *Layer) Extent() (geom.Extent, error) {
	if l.gpkg.closed {
		return geom.Extent{}, datasource.ErrDatasourceClosed
	}
	if !l.hasBBox {
		return geom.Extent{}, nil
	}
	return geom.Extent{l.minX, l.minY, l.maxX, l.maxY}, nil
}

// CreateField adds an attribute column. Fields can only be added while
// the layer is empty.
func (l *Layer) CreateField(fd datasource.FieldDefinition) error {
	if l.gpkg.closed {
		return datasource.ErrDatasourceClosed
	}
	if err := validIdent(fd.Name); err != nil {
		return fmt.Errorf("gpkg: field name: %w", err)
	}
	if fd.Name == l.idFieldname || fd.Name == l.geomFieldname {
		return fmt.Errorf("gpkg: field name %q is reserved", fd.Name)
	}
	if l.hasField(fd.Name) {
		return fmt.Errorf("gpkg: field %q: %w", fd.Name, datasource.ErrFieldExists)
	}

	n, err := l.FeatureCount()
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("gpkg: layer %q: %w", l.name, datasource.ErrLayerNotEmpty)
	}

	qtext := fmt.Sprintf(`ALTER TABLE "%v" ADD COLUMN "%v" %v`, l.name, fd.Name, sqlTypeForField(fd.Type))
	log.Debugf("qtext: %v", qtext)

	if _, err := l.gpkg.db.Exec(qtext); err != nil {
		return fmt.Errorf("gpkg: adding field %q to %q: %w", fd.Name, l.name, err)
	}

	l.fields = append(l.fields, fd)
	return nil
}

// CreateFeature inserts the feature and assigns its fid. Values without a
// declared field are an error; declared fields without a value are stored
// NULL.
func (l *Layer) CreateFeature(f *datasource.Feature) error {
	if l.gpkg.closed {
		return datasource.ErrDatasourceClosed
	}

	args, err := l.featureArgs(f)
	if err != nil {
		return err
	}

	stmt, err := l.insertStatement()
	if err != nil {
		return err
	}

	res, err := stmt.Exec(args...)
	if err != nil {
		return fmt.Errorf("gpkg: inserting into %q: %w", l.name, err)
	}

	fid, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("gpkg: reading feature id: %w", err)
	}
	f.ID = fid
	f.SRID = l.srid

	l.expandBBox(f.Geometry)
	return nil
}

// UpdateFeature rewrites the feature stored under f.ID. Every declared
// field is written; values absent from f become NULL.
func (l *Layer) UpdateFeature(f *datasource.Feature) error {
	if l.gpkg.closed {
		return datasource.ErrDatasourceClosed
	}

	args, err := l.featureArgs(f)
	if err != nil {
		return err
	}
	args = append(args, f.ID)

	sets := []string{fmt.Sprintf(`"%v" = ?`, l.geomFieldname)}
	for _, fd := range l.fields {
		sets = append(sets, fmt.Sprintf(`"%v" = ?`, fd.Name))
	}

	qtext := fmt.Sprintf(`UPDATE "%v" SET %v WHERE "%v" = ?`, l.name, strings.Join(sets, ", "), l.idFieldname)
	log.Debugf("qtext: %v", qtext)

	res, err := l.gpkg.db.Exec(qtext, args...)
	if err != nil {
		return fmt.Errorf("gpkg: updating %q: %w", l.name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("gpkg: updating %q: %w", l.name, err)
	}
	if n == 0 {
		return fmt.Errorf("gpkg: feature %v: %w", f.ID, datasource.ErrFeatureNotFound)
	}

	l.expandBBox(f.Geometry)
	return nil
}

// Feature returns the feature stored under fid.
func (l *Layer) Feature(fid int64) (*datasource.Feature, error) {
	if l.gpkg.closed {
		return nil, datasource.ErrDatasourceClosed
	}

	qtext := l.selectSQL() + fmt.Sprintf(` WHERE "%v" = ?`, l.idFieldname)

	rows, err := l.gpkg.db.Query(qtext, fid)
	if err != nil {
		return nil, fmt.Errorf("gpkg: reading feature %v: %w", fid, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("gpkg: feature %v: %w", fid, datasource.ErrFeatureNotFound)
	}

	vals := make([]interface{}, len(cols))
	valPtrs := make([]interface{}, len(cols))
	for i := 0; i < len(cols); i++ {
		valPtrs[i] = &vals[i]
	}
	if err := rows.Scan(valPtrs...); err != nil {
		return nil, err
	}

	return l.scanFeature(cols, vals)
}

// FeatureCount returns the number of features in the layer.
func (l *Layer) FeatureCount() (int, error) {
	if l.gpkg.closed {
		return 0, datasource.ErrDatasourceClosed
	}

	var n int
	qtext := fmt.Sprintf(`SELECT count(*) FROM "%v"`, l.name)
	if err := l.gpkg.db.QueryRow(qtext).Scan(&n); err != nil {
		return 0, fmt.Errorf("gpkg: counting features in %q: %w", l.name, err)
	}
	return n, nil
}

// Features calls fn for every feature in fid order.
func (l *Layer) Features(ctx context.Context, fn func(f *datasource.Feature) error) error {
	if l.gpkg.closed {
		return datasource.ErrDatasourceClosed
	}

	qtext := l.selectSQL() + fmt.Sprintf(` ORDER BY "%v"`, l.idFieldname)
	log.Debugf("qtext: %v", qtext)

	rows, err := l.gpkg.db.Query(qtext)
	if err != nil {
		log.Errorf("err during query: %v - %v", qtext, err)
		return err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return err
	}

	for rows.Next() {
		// check if the context cancelled or timed out
		if ctx.Err() != nil {
			return ctx.Err()
		}

		vals := make([]interface{}, len(cols))
		valPtrs := make([]interface{}, len(cols))
		for i := 0; i < len(cols); i++ {
			valPtrs[i] = &vals[i]
		}

		if err = rows.Scan(valPtrs...); err != nil {
			log.Errorf("err reading row values: %v", err)
			return err
		}

		feature, err := l.scanFeature(cols, vals)
		if err != nil {
			return err
		}

		if err = fn(feature); err != nil {
			return err
		}
	}

	return rows.Err()
}

func (l *Layer) hasField(name string) bool {
	for _, fd := range l.fields {
		if fd.Name == name {
			return true
		}
	}
	return false
}

// featureArgs lays out the insert/update arguments: geometry blob first,
// then every declared field in order.
func (l *Layer) featureArgs(f *datasource.Feature) ([]interface{}, error) {
	for name := range f.Values {
		if !l.hasField(name) {
			return nil, fmt.Errorf("gpkg: no field %q in layer %q", name, l.name)
		}
	}

	args := make([]interface{}, 0, len(l.fields)+1)

	if f.Geometry == nil {
		args = append(args, nil)
	} else {
		if datasource.TypeOf(f.Geometry) != l.geomType {
			return nil, fmt.Errorf("gpkg: %w: %T into %v layer", datasource.ErrInvalidGeometry, f.Geometry, l.geomType)
		}
		blob, err := encodeGeometry(f.Geometry, int32(l.srid))
		if err != nil {
			return nil, err
		}
		args = append(args, blob)
	}

	for _, fd := range l.fields {
		args = append(args, f.Values[fd.Name])
	}

	return args, nil
}

func (l *Layer) insertStatement() (*sql.Stmt, error) {
	if l.insertStmt != nil {
		return l.insertStmt, nil
	}

	cols := []string{fmt.Sprintf(`"%v"`, l.geomFieldname)}
	marks := []string{"?"}
	for _, fd := range l.fields {
		cols = append(cols, fmt.Sprintf(`"%v"`, fd.Name))
		marks = append(marks, "?")
	}

	qtext := fmt.Sprintf(`INSERT INTO "%v" (%v) VALUES (%v)`, l.name, strings.Join(cols, ", "), strings.Join(marks, ", "))
	log.Debugf("qtext: %v", qtext)

	stmt, err := l.gpkg.db.Prepare(qtext)
	if err != nil {
		return nil, fmt.Errorf("gpkg: preparing insert for %q: %w", l.name, err)
	}
	l.insertStmt = stmt
	return stmt, nil
}

func (l *Layer) selectSQL() string {
	cols := []string{fmt.Sprintf(`"%v"`, l.idFieldname), fmt.Sprintf(`"%v"`, l.geomFieldname)}
	for _, fd := range l.fields {
		cols = append(cols, fmt.Sprintf(`"%v"`, fd.Name))
	}
	return fmt.Sprintf(`SELECT %v FROM "%v"`, strings.Join(cols, ", "), l.name)
}

func (l *Layer) scanFeature(cols []string, vals []interface{}) (*datasource.Feature, error) {
	feature := datasource.Feature{
		SRID:   l.srid,
		Values: map[string]interface{}{},
	}

	for i := range cols {
		if vals[i] == nil {
			continue
		}

		switch cols[i] {
		case l.idFieldname:
			v, ok := vals[i].(int64)
			if !ok {
				return nil, fmt.Errorf("gpkg: unexpected type for fid column: %T", vals[i])
			}
			feature.ID = v

		case l.geomFieldname:
			geomData, ok := vals[i].([]byte)
			if !ok {
				log.Errorf("unexpected column type for geom field. got %t", vals[i])
				return nil, errors.New("unexpected column type for geom field. expected blob")
			}

			h, geo, err := decodeGeometry(geomData)
			if err != nil {
				return nil, err
			}

			feature.SRID = int(h.SRSId())
			feature.Geometry = geo

		default:
			switch v := vals[i].(type) {
			case []uint8:
				feature.Values[cols[i]] = string(v)
			case int64:
				feature.Values[cols[i]] = v
			case float64:
				feature.Values[cols[i]] = v
			case string:
				feature.Values[cols[i]] = v
			case bool:
				feature.Values[cols[i]] = v
			default:
				log.Errorf("unexpected type for sqlite column data: %v: %T", cols[i], v)
			}
		}
	}

	return &feature, nil
}

func (l *Layer) loadSchema() error {
	qtext := fmt.Sprintf(`PRAGMA table_info("%v")`, l.name)

	rows, err := l.gpkg.db.Query(qtext)
	if err != nil {
		return fmt.Errorf("gpkg: reading schema of %q: %w", l.name, err)
	}
	defer rows.Close()

	for rows.Next() {
		var cid, notnull, pk int
		var name, ctype string
		var dflt sql.NullString

		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return fmt.Errorf("gpkg: reading schema of %q: %w", l.name, err)
		}

		switch {
		case pk > 0:
			l.idFieldname = name
		case name == l.geomFieldname:
			// geometry column, not part of the attribute schema
		default:
			l.fields = append(l.fields, datasource.FieldDefinition{Name: name, Type: fieldTypeForSQL(ctype)})
		}
	}

	return rows.Err()
}

func (l *Layer) expandBBox(g geom.Geometry) {
	p, ok := g.(geom.Point)
	if !ok {
		return
	}
	l.setBBox(p.X(), p.Y())
	l.bboxDirty = true
}

func (l *Layer) setBBox(x, y float64) {
	if !l.hasBBox {
		l.minX, l.minY, l.maxX, l.maxY = x, y, x, y
		l.hasBBox = true
		return
	}
	if x < l.minX {
		l.minX = x
	}
	if y < l.minY {
		l.minY = y
	}
	if x > l.maxX {
		l.maxX = x
	}
	if y > l.maxY {
		l.maxY = y
	}
}

// finalize closes the prepared insert and mirrors the layer's bounding
// box into gpkg_contents.
func (l *Layer) finalize() error {
	if l.insertStmt != nil {
		l.insertStmt.Close()
		l.insertStmt = nil
	}

	if !l.bboxDirty {
		return nil
	}

	now := time.Now().UTC().Format(lastChangeFormat)
	qtext := `UPDATE gpkg_contents SET min_x = ?, min_y = ?, max_x = ?, max_y = ?, last_change = ? WHERE table_name = ?`
	if _, err := l.gpkg.db.Exec(qtext, l.minX, l.minY, l.maxX, l.maxY, now, l.name); err != nil {
		return fmt.Errorf("gpkg: updating contents for %q: %w", l.name, err)
	}
	l.bboxDirty = false

	return nil
}

// sqlTypeForField maps a field type to the column type written into the
// feature table, per the geopackage type names.
func sqlTypeForField(ft datasource.FieldType) string {
	switch ft {
	case datasource.FTInteger:
		return "MEDIUMINT"
	case datasource.FTReal:
		return "DOUBLE"
	case datasource.FTString:
		return "TEXT"
	case datasource.FTBinary:
		return "BLOB"
	case datasource.FTInteger64:
		return "INTEGER"
	}
	return "TEXT"
}

func fieldTypeForSQL(ctype string) datasource.FieldType {
	switch strings.ToUpper(ctype) {
	case "BOOLEAN", "TINYINT", "SMALLINT", "MEDIUMINT", "INT":
		return datasource.FTInteger
	case "INTEGER":
		return datasource.FTInteger64
	case "FLOAT", "DOUBLE", "REAL":
		return datasource.FTReal
	case "BLOB":
		return datasource.FTBinary
	}
	return datasource.FTString
}
