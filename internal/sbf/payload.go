package sbf

import (
	"encoding/binary"
	"math"
)

// Binary payload layout. All multi-byte values are big-endian regardless of
// host byte order: this is CloudCompare's wire format, not a memory dump.
//
// Preamble (64 bytes):
//
//	0-1   flag bytes 0x2A 0x2A
//	2-9   point count Np (uint64)
//	10-11 scalar-field count Ns (uint16)
//	12-19 X local shift (float64)
//	20-27 Y local shift (float64)
//	28-35 Z local shift (float64)
//	36-63 reserved, zero-filled
//
// Followed by Np rows of (3+Ns) float32: x, y, z, sf1..sfNs.
const (
	preambleSize  = 64
	flagByte      = 0x2A
	bytesPerValue = 4
)

// payload is the decoded binary body: the embedded local shift and the raw
// float32 matrix exactly as stored (coordinates still shift-reduced).
type payload struct {
	pointCount uint64
	fieldCount uint16
	localShift [3]float64
	rows       []float32 // pointCount * (3+fieldCount) values, row-major
}

func (p *payload) rowWidth() int {
	return 3 + int(p.fieldCount)
}

// ExpectedPayloadSize returns the exact byte size of a payload holding
// pointCount rows of 3+fieldCount values. Useful for integrity checks that
// read only the preamble.
func ExpectedPayloadSize(pointCount uint64, fieldCount int) int64 {
	return preambleSize + int64(pointCount)*int64(3+fieldCount)*bytesPerValue
}

// declaredPayloadSize is the byte size a preamble demands, clamped to
// MaxInt64 so a corrupt point count cannot overflow the error report.
func declaredPayloadSize(pointCount, rowBytes uint64) int64 {
	if pointCount > (math.MaxInt64-preambleSize)/rowBytes {
		return math.MaxInt64
	}
	return preambleSize + int64(pointCount*rowBytes)
}

// decodePayload parses the preamble and matrix from raw payload bytes.
// Extra bytes past the declared matrix are ignored; the preamble declares
// exact sizes, so anything beyond them is not ours to interpret.
func decodePayload(data []byte) (*payload, error) {
	if len(data) < preambleSize {
		return nil, &ErrPayloadTruncated{Expected: preambleSize, Actual: int64(len(data))}
	}
	if data[0] != flagByte || data[1] != flagByte {
		return nil, &ErrPayloadMalformed{Reason: "bad flag bytes"}
	}

	p := &payload{
		pointCount: binary.BigEndian.Uint64(data[2:10]),
		fieldCount: binary.BigEndian.Uint16(data[10:12]),
	}
	p.localShift[0] = math.Float64frombits(binary.BigEndian.Uint64(data[12:20]))
	p.localShift[1] = math.Float64frombits(binary.BigEndian.Uint64(data[20:28]))
	p.localShift[2] = math.Float64frombits(binary.BigEndian.Uint64(data[28:36]))

	// The declared size check runs in uint64 math: a corrupt preamble can
	// declare counts whose byte size overflows int, and the comparison must
	// reject those instead of wrapping.
	rowBytes := uint64(p.rowWidth()) * bytesPerValue
	avail := uint64(len(data)-preambleSize) / rowBytes
	if p.pointCount > avail {
		return nil, &ErrPayloadTruncated{
			Expected: declaredPayloadSize(p.pointCount, rowBytes),
			Actual:   int64(len(data)),
		}
	}

	values := int(p.pointCount) * p.rowWidth()
	p.rows = make([]float32, values)
	body := data[preambleSize:]
	for i := range p.rows {
		bits := binary.BigEndian.Uint32(body[i*bytesPerValue:])
		p.rows[i] = math.Float32frombits(bits)
	}
	return p, nil
}

// encodePayload serializes the preamble and matrix to payload bytes.
func encodePayload(p *payload) []byte {
	out := make([]byte, preambleSize+len(p.rows)*bytesPerValue)
	out[0] = flagByte
	out[1] = flagByte
	binary.BigEndian.PutUint64(out[2:10], p.pointCount)
	binary.BigEndian.PutUint16(out[10:12], p.fieldCount)
	binary.BigEndian.PutUint64(out[12:20], math.Float64bits(p.localShift[0]))
	binary.BigEndian.PutUint64(out[20:28], math.Float64bits(p.localShift[1]))
	binary.BigEndian.PutUint64(out[28:36], math.Float64bits(p.localShift[2]))
	// bytes 36-63 stay zero

	body := out[preambleSize:]
	for i, v := range p.rows {
		binary.BigEndian.PutUint32(body[i*bytesPerValue:], math.Float32bits(v))
	}
	return out
}

// crossValidate checks the preamble counts against the header-declared ones.
// A header edited out of step with its .data companion is the main way SBF
// pairs go bad in the wild, so the mismatch is fatal to the open.
func (p *payload) crossValidate(h *Header) error {
	if p.pointCount != h.Points {
		return &ErrPayloadHeaderMismatch{Field: "Points", HeaderValue: h.Points, PayloadValue: p.pointCount}
	}
	if int(p.fieldCount) != len(h.FieldNames) {
		return &ErrPayloadHeaderMismatch{
			Field:        "SFCount",
			HeaderValue:  uint64(len(h.FieldNames)),
			PayloadValue: uint64(p.fieldCount),
		}
	}
	return nil
}
