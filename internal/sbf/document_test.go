package sbf

import (
	"encoding/binary"
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// TestOpenSaveRoundTrip verifies open(save(D)) == D up to float32 rounding
func TestOpenSaveRoundTrip(t *testing.T) {
	in, err := New(
		[][3]float64{
			{650000.125, 4710000.5, 12.25},
			{650001.75, 4710002.25, 13.5},
			{649999.5, 4709998.875, 11.75},
		},
		[]ScalarField{
			{Name: "intensity", Data: []float32{100, 200, 150}},
			{Name: "classification", Data: []float32{2, 2, 9}},
		},
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	in.SetGlobalShift([3]float64{-650000, -4710000, 0})

	headerText, payloadBytes := in.Save()
	out, err := Open(headerText, payloadBytes)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if diff := cmp.Diff(in.FieldNames(), out.FieldNames()); diff != "" {
		t.Errorf("field names differ (-want +got):\n%s", diff)
	}
	if out.GlobalShift() != in.GlobalShift() {
		t.Errorf("GlobalShift = %v, want %v", out.GlobalShift(), in.GlobalShift())
	}
	if diff := cmp.Diff(in.Points(), out.Points(), cmpopts.EquateApprox(1e-5, 1e-4)); diff != "" {
		t.Errorf("points differ (-want +got):\n%s", diff)
	}
	for _, name := range in.FieldNames() {
		want, _ := in.Field(name)
		got, _ := out.Field(name)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("field %s differs (-want +got):\n%s", name, diff)
		}
	}
}

// TestOpenSaveEmpty verifies the zero-point, zero-field round trip
func TestOpenSaveEmpty(t *testing.T) {
	in, err := New(nil, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	headerText, payloadBytes := in.Save()
	out, err := Open(headerText, payloadBytes)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if out.PointCount() != 0 || out.FieldCount() != 0 {
		t.Errorf("counts = %d/%d, want 0/0", out.PointCount(), out.FieldCount())
	}
}

// TestOpenMismatch verifies a header declaring more points than the payload
// encodes fails the open with no partial document
func TestOpenMismatch(t *testing.T) {
	d, err := New(make([][3]float64, 99), nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	headerText, payloadBytes := d.Save()
	headerText = strings.Replace(headerText, "Points = 99", "Points = 100", 1)

	doc, err := Open(headerText, payloadBytes)
	var mismatch *ErrPayloadHeaderMismatch
	if !errors.As(err, &mismatch) {
		t.Fatalf("Open() error = %v, want *ErrPayloadHeaderMismatch", err)
	}
	if doc != nil {
		t.Error("Open() returned a partial document alongside the error")
	}
}

// TestOpenDuplicateFieldNames verifies duplicate SF names are rejected
func TestOpenDuplicateFieldNames(t *testing.T) {
	d, err := New([][3]float64{{1, 2, 3}}, []ScalarField{
		{Name: "a", Data: []float32{1}},
		{Name: "b", Data: []float32{2}},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	headerText, payloadBytes := d.Save()
	headerText = strings.Replace(headerText, "SF2 = b", "SF2 = a", 1)

	_, err = Open(headerText, payloadBytes)
	var dup *ErrDuplicateFieldName
	if !errors.As(err, &dup) {
		t.Fatalf("Open() error = %v, want *ErrDuplicateFieldName", err)
	}
}

// TestNewValidation tests in-memory assembly validation
func TestNewValidation(t *testing.T) {
	points := [][3]float64{{1, 2, 3}}

	if _, err := New(points, []ScalarField{{Name: "a", Data: []float32{1, 2}}}); err == nil {
		t.Error("New() accepted a column longer than the point count")
	}
	_, err := New(points, []ScalarField{
		{Name: "a", Data: []float32{1}},
		{Name: "a", Data: []float32{2}},
	})
	var dup *ErrDuplicateFieldName
	if !errors.As(err, &dup) {
		t.Errorf("New() error = %v, want *ErrDuplicateFieldName", err)
	}
}

// TestSaveRecomputesCounts verifies Save never trusts stale header values
func TestSaveRecomputesCounts(t *testing.T) {
	d := mustDoc(t, [][3]float64{{1, 1, 1}, {2, 2, 2}}, []ScalarField{
		{Name: "a", Data: []float32{1, 2}},
	})
	// Desynchronize deliberately; Save must repair from the matrix shape.
	d.header.Points = 9999

	headerText, payloadBytes := d.Save()
	h, err := ParseHeader(headerText)
	if err != nil {
		t.Fatalf("ParseHeader() error = %v", err)
	}
	if h.Points != 2 || len(h.FieldNames) != 1 {
		t.Errorf("saved counts = %d/%d, want 2/1", h.Points, len(h.FieldNames))
	}
	if np := binary.BigEndian.Uint64(payloadBytes[2:10]); np != 2 {
		t.Errorf("preamble Np = %d, want 2", np)
	}
}

// TestSaveCentroidLocalShift verifies the written preamble carries the
// centroid-derived local shift
func TestSaveCentroidLocalShift(t *testing.T) {
	d := mustDoc(t, [][3]float64{{10, 100, 1000}, {20, 200, 2000}}, nil)
	_, payloadBytes := d.Save()

	x := math.Float64frombits(binary.BigEndian.Uint64(payloadBytes[12:20]))
	y := math.Float64frombits(binary.BigEndian.Uint64(payloadBytes[20:28]))
	z := math.Float64frombits(binary.BigEndian.Uint64(payloadBytes[28:36]))
	if x != 15 || y != 150 || z != 1500 {
		t.Errorf("local shift = (%v, %v, %v), want (15, 150, 1500)", x, y, z)
	}
}

// TestReadWriteFile tests the .sbf / .sbf.data pair on disk
func TestReadWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cloud.sbf")

	in := mustDoc(t, [][3]float64{{650000, 4710000, 50}}, []ScalarField{
		{Name: "intensity", Data: []float32{42}},
	})
	if err := in.WriteFile(path); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	out, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if out.PointCount() != 1 {
		t.Errorf("PointCount = %d, want 1", out.PointCount())
	}
	got, err := out.Field("intensity")
	if err != nil || got[0] != 42 {
		t.Errorf("Field(intensity) = %v, %v", got, err)
	}
}

// TestReadFileMissing tests the storage-boundary error path
func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "absent.sbf"))
	if err == nil {
		t.Fatal("ReadFile() succeeded on a missing file")
	}
}

func mustDoc(t *testing.T, points [][3]float64, fields []ScalarField) *Document {
	t.Helper()
	d, err := New(points, fields)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return d
}
