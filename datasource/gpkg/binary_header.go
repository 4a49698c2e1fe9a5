// +build cgo

package gpkg

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/go-spatial/geom"
	"github.com/go-spatial/geom/encoding/wkb"

	"github.com/atlasdatatech/geofix/datasource"
	"github.com/atlasdatatech/geofix/internal/log"
)

// EnvelopeType describes the envelope carried by a geometry blob header.
type EnvelopeType uint8

const (
	EnvelopeTypeNone    = EnvelopeType(0)
	EnvelopeTypeXY      = EnvelopeType(1)
	EnvelopeTypeXYZ     = EnvelopeType(2)
	EnvelopeTypeXYM     = EnvelopeType(3)
	EnvelopeTypeXYZM    = EnvelopeType(4)
	EnvelopeTypeInvalid = EnvelopeType(5)
)

// NumberOfElements returns the number of float64 values the envelope
// holds, or -1 for invalid indicators.
func (et EnvelopeType) NumberOfElements() int {
	switch et {
	case EnvelopeTypeNone:
		return 0
	case EnvelopeTypeXY:
		return 4
	case EnvelopeTypeXYZ, EnvelopeTypeXYM:
		return 6
	case EnvelopeTypeXYZM:
		return 8
	}
	return -1
}

const (
	magicLiteral = "GP"

	maskByteOrder    = 1 << 0
	maskEnvelopeType = 0x07 << 1
	maskEmptyGeom    = 1 << 4
	maskGeomType     = 1 << 5

	headerBaseSize = 8
)

var (
	ErrBinaryHeaderTooShort = errors.New("gpkg: binary header too short")
	ErrBinaryHeaderMagic    = errors.New("gpkg: invalid binary header magic")
	ErrBinaryHeaderEnvelope = errors.New("gpkg: invalid binary header envelope")
)

// BinaryHeader is the header in front of the WKB body of a stored
// geometry blob.
type BinaryHeader struct {
	magic    [2]byte
	version  uint8
	flags    uint8
	srsid    int32
	envelope []float64
}

// NewBinaryHeader decodes the header at the front of data.
func NewBinaryHeader(data []byte) (*BinaryHeader, error) {
	if len(data) < headerBaseSize {
		return nil, ErrBinaryHeaderTooShort
	}

	var h BinaryHeader
	h.magic[0] = data[0]
	h.magic[1] = data[1]
	h.version = data[2]
	h.flags = data[3]

	if string(h.magic[:]) != magicLiteral {
		return nil, ErrBinaryHeaderMagic
	}

	en := h.EnvelopeType().NumberOfElements()
	if en < 0 {
		return nil, ErrBinaryHeaderEnvelope
	}
	if len(data) < headerBaseSize+en*8 {
		return nil, ErrBinaryHeaderTooShort
	}

	bo := h.byteOrder()
	h.srsid = int32(bo.Uint32(data[4:8]))
	h.envelope = make([]float64, en)
	for i := 0; i < en; i++ {
		h.envelope[i] = math.Float64frombits(bo.Uint64(data[8+i*8:]))
	}

	return &h, nil
}

func (h *BinaryHeader) byteOrder() binary.ByteOrder {
	if h.flags&maskByteOrder == 0 {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// Magic returns the magic bytes of the header ("GP").
func (h *BinaryHeader) Magic() [2]byte { return h.magic }

// Version returns the header version.
func (h *BinaryHeader) Version() uint8 { return h.version }

// EnvelopeType returns the envelope indicator of the header.
func (h *BinaryHeader) EnvelopeType() EnvelopeType {
	et := EnvelopeType((h.flags & maskEnvelopeType) >> 1)
	if et > EnvelopeTypeXYZM {
		return EnvelopeTypeInvalid
	}
	return et
}

// SRSId returns the spatial reference id of the geometry.
func (h *BinaryHeader) SRSId() int32 { return h.srsid }

// Envelope returns the envelope values, if the header carries any.
func (h *BinaryHeader) Envelope() []float64 { return h.envelope }

// IsGeometryEmpty reports whether the blob marks its geometry empty.
func (h *BinaryHeader) IsGeometryEmpty() bool {
	return h.flags&maskEmptyGeom != 0
}

// IsStandardGeometry reports whether the WKB body is standard geometry
// rather than an extension type.
func (h *BinaryHeader) IsStandardGeometry() bool {
	return h.flags&maskGeomType == 0
}

// Size returns the byte size of the header within the blob. The WKB body
// starts at this offset.
func (h *BinaryHeader) Size() int {
	return headerBaseSize + len(h.envelope)*8
}

// encodeBinaryHeader returns a little-endian header with no envelope, the
// form written in front of every stored geometry.
func encodeBinaryHeader(srsid int32) []byte {
	b := make([]byte, headerBaseSize)
	b[0] = magicLiteral[0]
	b[1] = magicLiteral[1]
	b[2] = 0
	b[3] = maskByteOrder
	binary.LittleEndian.PutUint32(b[4:8], uint32(srsid))
	return b
}

const wkbPointSize = 21

// encodeWKBPoint lays out the little-endian WKB for a 2D point: byte
// order marker, geometry type 1, x, y.
func encodeWKBPoint(p geom.Point) []byte {
	b := make([]byte, wkbPointSize)
	b[0] = 1
	binary.LittleEndian.PutUint32(b[1:5], 1)
	binary.LittleEndian.PutUint64(b[5:13], math.Float64bits(p.X()))
	binary.LittleEndian.PutUint64(b[13:21], math.Float64bits(p.Y()))
	return b
}

// encodeGeometry builds the stored blob for a geometry: binary header
// followed by the WKB body. Geometry writing is limited to points.
func encodeGeometry(g geom.Geometry, srsid int32) ([]byte, error) {
	p, ok := g.(geom.Point)
	if !ok {
		return nil, fmt.Errorf("%w: %T", datasource.ErrUnsupportedGeometry, g)
	}
	return append(encodeBinaryHeader(srsid), encodeWKBPoint(p)...), nil
}

func decodeGeometry(bytes []byte) (*BinaryHeader, geom.Geometry, error) {
	h, err := NewBinaryHeader(bytes)
	if err != nil {
		log.Errorf("error decoding geometry header: %v", err)
		return h, nil, err
	}

	geo, err := wkb.DecodeBytes(bytes[h.Size():])
	if err != nil {
		log.Errorf("error decoding geometry: %v", err)
		return h, nil, err
	}

	return h, geo, nil
}
