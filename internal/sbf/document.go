package sbf

import (
	"fmt"
	"os"
)

// Document is a fully decoded SBF point cloud: true-coordinate points plus
// named scalar-field columns, paired with the header they round-trip
// through. A Document owns its header and arrays exclusively; nothing is
// shared between Documents, so independent goroutines may process separate
// Documents without coordination.
type Document struct {
	header *Header
	points [][3]float64 // true coordinates, double precision
	fields []ScalarField
}

// Open decodes a header/payload pair into a Document. The header and payload
// are cross-validated; on any failure no Document is returned.
func Open(headerText string, payloadBytes []byte) (*Document, error) {
	header, err := ParseHeader(headerText)
	if err != nil {
		return nil, err
	}
	p, err := decodePayload(payloadBytes)
	if err != nil {
		return nil, err
	}
	if err := p.crossValidate(header); err != nil {
		return nil, err
	}

	d := &Document{
		header: header,
		points: composeCoordinates(p, header.GlobalShift),
		fields: make([]ScalarField, p.fieldCount),
	}

	width := p.rowWidth()
	for c := range d.fields {
		col := make([]float32, p.pointCount)
		for i := range col {
			col[i] = p.rows[i*width+3+c]
		}
		d.fields[c] = ScalarField{Name: header.FieldNames[c], Data: col}
	}
	if err := validateFieldNames(header.FieldNames); err != nil {
		return nil, err
	}
	return d, nil
}

// New assembles a Document from in-memory arrays, e.g. the output of an
// analysis step. Field columns must match the point count and carry unique
// names. The global shift starts at zero.
func New(points [][3]float64, fields []ScalarField) (*Document, error) {
	if len(fields) > maxFieldCount {
		return nil, fmt.Errorf("%d scalar fields given, at most %d fit in a payload", len(fields), maxFieldCount)
	}
	names := make([]string, len(fields))
	for i, f := range fields {
		if len(f.Data) != len(points) {
			return nil, fmt.Errorf("field %q has %d values for %d points", f.Name, len(f.Data), len(points))
		}
		names[i] = f.Name
	}
	if err := validateFieldNames(names); err != nil {
		return nil, err
	}
	return &Document{
		header: &Header{Points: uint64(len(points)), FieldNames: names},
		points: points,
		fields: fields,
	}, nil
}

// Save serializes the Document back to a header/payload pair. Points and
// SFCount are recomputed from the current arrays, never trusted from the
// header, so the pair is consistent even after field add/remove. The local
// shift is re-chosen from the current centroid on every save.
func (d *Document) Save() (string, []byte) {
	d.header.Points = uint64(len(d.points))
	d.header.FieldNames = d.FieldNames()

	p := &payload{
		pointCount: uint64(len(d.points)),
		fieldCount: uint16(len(d.fields)),
		localShift: chooseLocalShift(d.points, d.header.GlobalShift),
	}
	width := p.rowWidth()
	p.rows = make([]float32, len(d.points)*width)
	reduceCoordinates(d.points, p.localShift, d.header.GlobalShift, p.rows, width)
	for c, f := range d.fields {
		for i, v := range f.Data {
			p.rows[i*width+3+c] = v
		}
	}

	return d.header.Serialize(), encodePayload(p)
}

// ReadFile opens the SBF pair at path: the text header at path itself and
// the binary payload at path + ".data".
func ReadFile(path string) (*Document, error) {
	headerText, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read SBF header: %w", err)
	}
	payloadBytes, err := os.ReadFile(path + ".data")
	if err != nil {
		return nil, fmt.Errorf("read SBF payload: %w", err)
	}
	return Open(string(headerText), payloadBytes)
}

// WriteFile saves the Document as an SBF pair at path and path + ".data".
func (d *Document) WriteFile(path string) error {
	headerText, payloadBytes := d.Save()
	if err := os.WriteFile(path, []byte(headerText), 0o644); err != nil {
		return fmt.Errorf("write SBF header: %w", err)
	}
	if err := os.WriteFile(path+".data", payloadBytes, 0o644); err != nil {
		return fmt.Errorf("write SBF payload: %w", err)
	}
	return nil
}

// Points returns the true-coordinate point matrix.
func (d *Document) Points() [][3]float64 { return d.points }

// PointCount returns the number of points.
func (d *Document) PointCount() int { return len(d.points) }

// FieldCount returns the number of scalar-field columns.
func (d *Document) FieldCount() int { return len(d.fields) }

// GlobalShift returns the header-declared global shift.
func (d *Document) GlobalShift() [3]float64 { return d.header.GlobalShift }

// SetGlobalShift declares a new global shift. True coordinates are
// unaffected; only the decomposition written on the next save changes.
func (d *Document) SetGlobalShift(shift [3]float64) {
	d.header.SetGlobalShift(shift)
}

func validateFieldNames(names []string) error {
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, dup := seen[name]; dup {
			return &ErrDuplicateFieldName{Name: name}
		}
		seen[name] = struct{}{}
	}
	return nil
}
