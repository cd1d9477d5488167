package sbf

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	codec "github.com/Thomas-Brd/lidar-platform/internal/sbf"
)

// fieldConvention maps lowercased names used by classification parameter
// files to the names actually stored in SBF scalar fields. The table is
// fixed: it mirrors how the external tool spells LAS attribute names when it
// exports features.
var fieldConvention = map[string]string{
	"gpstime":         "gps_time",
	"numberofreturns": "number_of_returns",
	"returnnumber":    "return_number",
	"scananglerank":   "scan_angle_rank",
	"pointsourceid":   "point_source_id",
}

// FeatureSet is a feature matrix extracted from a cloud for classification:
// one column per requested field, in the caller-requested order, converted
// to float64 for numeric work.
type FeatureSet struct {
	// Names holds the exact stored field name backing each column.
	Names []string
	// Data is the row-per-point, column-per-feature matrix.
	Data *mat.Dense
}

// SelectFeatures extracts named columns from a cloud.
//
// Lookup is case-insensitive and goes through the fixed name-normalization
// table, so a parameter file asking for "GPSTime" finds the stored
// "gps_time" column. Columns come back in the requested order; Names records
// the exact stored spelling of each, which is what later writes key on.
func SelectFeatures(c *Cloud, requested []string) (*FeatureSet, error) {
	if len(requested) == 0 {
		return nil, fmt.Errorf("no features requested")
	}
	if c.PointCount() == 0 {
		return nil, fmt.Errorf("cloud has no points")
	}
	stored := c.ScalarFieldNames()

	fs := &FeatureSet{
		Names: make([]string, len(requested)),
		Data:  mat.NewDense(c.PointCount(), len(requested), nil),
	}

	for j, want := range requested {
		name, ok := resolveFieldName(stored, want)
		if !ok {
			return nil, &codec.ErrFieldNotFound{Name: want}
		}
		fs.Names[j] = name
		col, err := c.ScalarField(name)
		if err != nil {
			return nil, err
		}
		for i, v := range col {
			fs.Data.Set(i, j, float64(v))
		}
	}
	return fs, nil
}

// Labels returns the "classification" column as float64 class labels, the
// column classification training reads ground truth from.
func Labels(c *Cloud) ([]float64, error) {
	col, err := c.ScalarField("classification")
	if err != nil {
		return nil, err
	}
	labels := make([]float64, len(col))
	for i, v := range col {
		labels[i] = float64(v)
	}
	return labels, nil
}

// MinMaxScale rescales every column to [0, 1] in place. Constant columns
// become all zeros.
func (fs *FeatureSet) MinMaxScale() {
	rows, cols := fs.Data.Dims()
	col := make([]float64, rows)
	for j := 0; j < cols; j++ {
		mat.Col(col, j, fs.Data)
		lo, hi := floats.Min(col), floats.Max(col)
		span := hi - lo
		for i := 0; i < rows; i++ {
			if span == 0 {
				fs.Data.Set(i, j, 0)
				continue
			}
			fs.Data.Set(i, j, (col[i]-lo)/span)
		}
	}
}

// CorrelationMatrix returns the pairwise Pearson correlation between feature
// columns, used to spot redundant features before training.
func (fs *FeatureSet) CorrelationMatrix() *mat.SymDense {
	_, cols := fs.Data.Dims()
	corr := mat.NewSymDense(cols, nil)
	stat.CorrelationMatrix(corr, fs.Data, nil)
	return corr
}

// HighlyCorrelated lists feature name pairs whose absolute correlation
// meets the threshold.
func (fs *FeatureSet) HighlyCorrelated(threshold float64) []string {
	corr := fs.CorrelationMatrix()
	var pairs []string
	for i := 0; i < len(fs.Names); i++ {
		for j := i + 1; j < len(fs.Names); j++ {
			r := corr.At(i, j)
			if r >= threshold || r <= -threshold {
				pairs = append(pairs, fmt.Sprintf("%s/%s (%.4f)", fs.Names[i], fs.Names[j], r))
			}
		}
	}
	return pairs
}

// resolveFieldName finds the stored field matching a requested name:
// exact match first, then the normalization table, then a case-insensitive
// scan.
func resolveFieldName(stored []string, want string) (string, bool) {
	for _, name := range stored {
		if name == want {
			return name, true
		}
	}
	lower := strings.ToLower(want)
	if mapped, ok := fieldConvention[lower]; ok {
		lower = mapped
	}
	for _, name := range stored {
		if strings.ToLower(name) == lower {
			return name, true
		}
	}
	return "", false
}
