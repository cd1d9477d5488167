// Package sbf provides a clean public API for reading and writing SBF
// point-cloud files (CloudCompare's "simple binary format": a text header
// paired with a big-endian binary payload at <name>.sbf.data).
//
// Coordinates exposed by this package are always true, full-precision
// values; the float32 shift arithmetic the format uses internally is handled
// by the codec and never leaks into the API.
package sbf

import (
	"fmt"

	codec "github.com/Thomas-Brd/lidar-platform/internal/sbf"
)

// Field is a named per-point scalar attribute column.
type Field struct {
	Name string
	Data []float32
}

// Cloud is a point cloud loaded from (or destined for) an SBF file pair.
//
// A Cloud owns its arrays exclusively: separate Clouds can be processed by
// separate goroutines without locking. A single Cloud is not safe for
// concurrent mutation.
//
// All fields are private to maintain encapsulation; the header in particular
// is never exposed, only the narrow (points, field names, global shift) view
// collaborators need.
type Cloud struct {
	doc *codec.Document
}

// Read opens the SBF pair at path with default options.
//
// Example:
//
//	cloud, err := sbf.Read("survey_WITH_FEATURES.sbf")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%d points, fields %v\n", cloud.PointCount(), cloud.ScalarFieldNames())
func Read(path string) (*Cloud, error) {
	return ReadWithOptions(path, DefaultReadOptions())
}

// ReadWithOptions opens the SBF pair at path with custom options.
func ReadWithOptions(path string, opts ReadOptions) (*Cloud, error) {
	doc, err := codec.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := &Cloud{doc: doc}
	if len(opts.FieldFilter) > 0 {
		if err := c.keepOnly(opts.FieldFilter); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// New assembles a Cloud from in-memory arrays, e.g. the output of an
// analysis step. Every field column must have one value per point and field
// names must be unique.
func New(points [][3]float64, fields []Field) (*Cloud, error) {
	cols := make([]codec.ScalarField, len(fields))
	for i, f := range fields {
		cols[i] = codec.ScalarField{Name: f.Name, Data: f.Data}
	}
	doc, err := codec.New(points, cols)
	if err != nil {
		return nil, err
	}
	return &Cloud{doc: doc}, nil
}

// Write saves the cloud as an SBF pair at path and path + ".data".
func (c *Cloud) Write(path string) error {
	return c.WriteWithOptions(path, DefaultWriteOptions())
}

// WriteWithOptions saves the cloud with custom options. Derived columns
// requested by the options (row index, normals) are added to the cloud
// before writing and remain part of it afterwards. The options are
// validated as a whole first: a rejected write leaves the cloud unchanged.
func (c *Cloud) WriteWithOptions(path string, opts WriteOptions) error {
	if err := c.validateWriteOptions(opts); err != nil {
		return err
	}
	if opts.GlobalShift != nil {
		c.doc.SetGlobalShift(*opts.GlobalShift)
	}
	if opts.AddIndexField {
		index := make([]float32, c.PointCount())
		for i := range index {
			index[i] = float32(i)
		}
		if err := c.doc.AddField("index", index); err != nil {
			return err
		}
	}
	if opts.Normals != nil {
		if err := c.addNormals(opts.Normals); err != nil {
			return err
		}
	}
	return c.doc.WriteFile(path)
}

// validateWriteOptions rejects option sets whose derived columns cannot all
// be added, before any of them is.
func (c *Cloud) validateWriteOptions(opts WriteOptions) error {
	var derived []string
	if opts.AddIndexField {
		derived = append(derived, "index")
	}
	if opts.Normals != nil {
		if len(opts.Normals) != c.PointCount() {
			return fmt.Errorf("%d normals for %d points", len(opts.Normals), c.PointCount())
		}
		derived = append(derived, normalFieldNames[:]...)
	}
	for _, name := range derived {
		if _, err := c.doc.FieldIndex(name); err == nil {
			return fmt.Errorf("derived field %q already exists", name)
		}
	}
	return nil
}

// Points returns the true-coordinate point matrix (N rows of X, Y, Z).
func (c *Cloud) Points() [][3]float64 { return c.doc.Points() }

// PointCount returns the number of points.
func (c *Cloud) PointCount() int { return c.doc.PointCount() }

// FieldCount returns the number of scalar-field columns.
func (c *Cloud) FieldCount() int { return c.doc.FieldCount() }

// ScalarFieldNames returns the exact stored field names in column order.
// Names are stable across a round trip; callers doing case-insensitive
// matching (see SelectFeatures) key on these.
func (c *Cloud) ScalarFieldNames() []string { return c.doc.FieldNames() }

// ScalarField returns the data column for a named field.
func (c *Cloud) ScalarField(name string) ([]float32, error) {
	return c.doc.Field(name)
}

// FieldIndex returns the 0-based column index of a named field.
func (c *Cloud) FieldIndex(name string) (int, error) {
	return c.doc.FieldIndex(name)
}

// GlobalShift returns the header-declared global shift.
func (c *Cloud) GlobalShift() [3]float64 { return c.doc.GlobalShift() }

// SetGlobalShift declares a new global shift for subsequent writes. True
// coordinates are unaffected.
func (c *Cloud) SetGlobalShift(shift [3]float64) { c.doc.SetGlobalShift(shift) }

// AddScalarField appends a new column at the end of the field list.
func (c *Cloud) AddScalarField(name string, data []float32) error {
	return c.doc.AddField(name, data)
}

// RemoveScalarField deletes a column; later columns shift down by one.
func (c *Cloud) RemoveScalarField(name string) error {
	return c.doc.RemoveField(name)
}

// RenameScalarField changes a field's name without touching column order.
func (c *Cloud) RenameScalarField(name, newName string) error {
	return c.doc.RenameField(name, newName)
}

// Bounds returns the axis-aligned bounding box of the true coordinates.
func (c *Cloud) Bounds() Bounds {
	points := c.doc.Points()
	if len(points) == 0 {
		return Bounds{}
	}
	b := Bounds{
		MinX: points[0][0], MaxX: points[0][0],
		MinY: points[0][1], MaxY: points[0][1],
		MinZ: points[0][2], MaxZ: points[0][2],
	}
	for _, p := range points[1:] {
		if p[0] < b.MinX {
			b.MinX = p[0]
		}
		if p[0] > b.MaxX {
			b.MaxX = p[0]
		}
		if p[1] < b.MinY {
			b.MinY = p[1]
		}
		if p[1] > b.MaxY {
			b.MaxY = p[1]
		}
		if p[2] < b.MinZ {
			b.MinZ = p[2]
		}
		if p[2] > b.MaxZ {
			b.MaxZ = p[2]
		}
	}
	return b
}

// Bounds is an axis-aligned bounding box over true coordinates.
type Bounds struct {
	MinX, MaxX float64
	MinY, MaxY float64
	MinZ, MaxZ float64
}

// Intersects reports whether two boxes overlap in the XY plane. Elevation is
// ignored: region queries over survey tiles are planimetric.
func (b Bounds) Intersects(other Bounds) bool {
	return b.MinX <= other.MaxX && b.MaxX >= other.MinX &&
		b.MinY <= other.MaxY && b.MaxY >= other.MinY
}

// keepOnly drops every column not named in filter, preserving stored order.
func (c *Cloud) keepOnly(filter []string) error {
	keep := make(map[string]bool, len(filter))
	for _, name := range filter {
		if _, err := c.doc.FieldIndex(name); err != nil {
			return err
		}
		keep[name] = true
	}
	for _, name := range c.doc.FieldNames() {
		if !keep[name] {
			if err := c.doc.RemoveField(name); err != nil {
				return err
			}
		}
	}
	return nil
}

var normalFieldNames = [3]string{"Nx", "Ny", "Nz"}

// addNormals appends the Nx, Ny, Nz component columns.
func (c *Cloud) addNormals(normals [][3]float32) error {
	for comp, name := range normalFieldNames {
		col := make([]float32, len(normals))
		for i, n := range normals {
			col[i] = n[comp]
		}
		if err := c.doc.AddField(name, col); err != nil {
			return err
		}
	}
	return nil
}
