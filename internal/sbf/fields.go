package sbf

import (
	"fmt"
	"math"
)

// maxFieldCount is the most scalar fields a Document may carry: the payload
// preamble stores the count as a uint16.
const maxFieldCount = math.MaxUint16

// ScalarField is a named per-point attribute column, stored beyond the
// three coordinate columns. Column index 0 is the first scalar field, not X.
type ScalarField struct {
	Name string
	Data []float32
}

// The header never stores field indices explicitly: SF1..SFN keys are
// renumbered from the ordered field list on every serialize. Keeping the
// ordered list as the single source of truth means add/remove/rename never
// patch header keys imperatively, they just edit the list.

// FieldIndex returns the 0-based column index of a scalar field.
func (d *Document) FieldIndex(name string) (int, error) {
	for i, f := range d.fields {
		if f.Name == name {
			return i, nil
		}
	}
	return 0, &ErrFieldNotFound{Name: name}
}

// AddField appends a new scalar field column at index FieldCount().
// The column must have one value per point.
func (d *Document) AddField(name string, data []float32) error {
	if _, err := d.FieldIndex(name); err == nil {
		return &ErrDuplicateFieldName{Name: name}
	}
	if len(data) != len(d.points) {
		return fmt.Errorf("field %q has %d values for %d points", name, len(data), len(d.points))
	}
	if len(d.fields) >= maxFieldCount {
		return fmt.Errorf("cannot add field %q: at most %d scalar fields fit in a payload", name, maxFieldCount)
	}
	d.fields = append(d.fields, ScalarField{Name: name, Data: data})
	d.header.FieldNames = append(d.header.FieldNames, name)
	return nil
}

// RemoveField deletes a scalar field column; later columns shift down by one.
func (d *Document) RemoveField(name string) error {
	idx, err := d.FieldIndex(name)
	if err != nil {
		return err
	}
	d.fields = append(d.fields[:idx], d.fields[idx+1:]...)
	d.header.FieldNames = append(d.header.FieldNames[:idx], d.header.FieldNames[idx+1:]...)
	return nil
}

// RenameField changes a field's name without touching column order.
func (d *Document) RenameField(name, newName string) error {
	idx, err := d.FieldIndex(name)
	if err != nil {
		return err
	}
	if name == newName {
		return nil
	}
	if _, err := d.FieldIndex(newName); err == nil {
		return &ErrDuplicateFieldName{Name: newName}
	}
	d.fields[idx].Name = newName
	d.header.FieldNames[idx] = newName
	return nil
}

// FieldNames returns the field names in column order.
func (d *Document) FieldNames() []string {
	names := make([]string, len(d.fields))
	for i, f := range d.fields {
		names[i] = f.Name
	}
	return names
}

// Field returns the data column for a named scalar field.
func (d *Document) Field(name string) ([]float32, error) {
	idx, err := d.FieldIndex(name)
	if err != nil {
		return nil, err
	}
	return d.fields[idx].Data, nil
}
