package sbf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func featureCloud(t *testing.T) *Cloud {
	t.Helper()
	cloud, err := New(
		[][3]float64{{0, 0, 0}, {1, 1, 1}, {2, 2, 2}, {3, 3, 3}},
		[]Field{
			{Name: "gps_time", Data: []float32{10, 20, 30, 40}},
			{Name: "intensity", Data: []float32{5, 15, 25, 35}},
			{Name: "classification", Data: []float32{2, 2, 9, 9}},
			{Name: "Verticality", Data: []float32{0.1, 0.2, 0.3, 0.4}},
		},
	)
	require.NoError(t, err)
	return cloud
}

func TestSelectFeatures(t *testing.T) {
	cloud := featureCloud(t)

	fs, err := SelectFeatures(cloud, []string{"intensity", "gps_time"})
	require.NoError(t, err)

	// Columns come back in requested order, not stored order.
	assert.Equal(t, []string{"intensity", "gps_time"}, fs.Names)
	rows, cols := fs.Data.Dims()
	assert.Equal(t, 4, rows)
	assert.Equal(t, 2, cols)
	assert.Equal(t, 5.0, fs.Data.At(0, 0))
	assert.Equal(t, 10.0, fs.Data.At(0, 1))
}

func TestSelectFeaturesConvention(t *testing.T) {
	cloud := featureCloud(t)

	// "GPSTime" normalizes through the convention table to "gps_time".
	fs, err := SelectFeatures(cloud, []string{"GPSTime"})
	require.NoError(t, err)
	assert.Equal(t, []string{"gps_time"}, fs.Names)

	// Plain case-insensitive match for names outside the table.
	fs, err = SelectFeatures(cloud, []string{"verticality"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Verticality"}, fs.Names)

	_, err = SelectFeatures(cloud, []string{"NumberOfReturns"})
	require.Error(t, err, "convention-mapped name absent from cloud")
}

func TestSelectFeaturesErrors(t *testing.T) {
	cloud := featureCloud(t)

	_, err := SelectFeatures(cloud, nil)
	assert.Error(t, err)

	_, err = SelectFeatures(cloud, []string{"unknown_feature"})
	assert.Error(t, err)

	empty, err := New(nil, nil)
	require.NoError(t, err)
	_, err = SelectFeatures(empty, []string{"intensity"})
	assert.Error(t, err)
}

func TestLabels(t *testing.T) {
	cloud := featureCloud(t)

	labels, err := Labels(cloud)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 2, 9, 9}, labels)

	noLabels, err := New([][3]float64{{0, 0, 0}}, nil)
	require.NoError(t, err)
	_, err = Labels(noLabels)
	assert.Error(t, err)
}

func TestMinMaxScale(t *testing.T) {
	cloud := featureCloud(t)
	fs, err := SelectFeatures(cloud, []string{"gps_time", "intensity"})
	require.NoError(t, err)

	fs.MinMaxScale()
	rows, cols := fs.Data.Dims()
	for j := 0; j < cols; j++ {
		assert.Equal(t, 0.0, fs.Data.At(0, j))
		assert.Equal(t, 1.0, fs.Data.At(rows-1, j))
		for i := 0; i < rows; i++ {
			v := fs.Data.At(i, j)
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
		}
	}
}

func TestMinMaxScaleConstantColumn(t *testing.T) {
	cloud, err := New([][3]float64{{0, 0, 0}, {1, 1, 1}}, []Field{
		{Name: "flat", Data: []float32{7, 7}},
	})
	require.NoError(t, err)
	fs, err := SelectFeatures(cloud, []string{"flat"})
	require.NoError(t, err)

	fs.MinMaxScale()
	assert.Equal(t, 0.0, fs.Data.At(0, 0))
	assert.Equal(t, 0.0, fs.Data.At(1, 0))
}

func TestCorrelationMatrix(t *testing.T) {
	cloud := featureCloud(t)
	// gps_time and intensity are perfectly linearly related.
	fs, err := SelectFeatures(cloud, []string{"gps_time", "intensity"})
	require.NoError(t, err)

	corr := fs.CorrelationMatrix()
	assert.InDelta(t, 1.0, corr.At(0, 0), 1e-12)
	assert.InDelta(t, 1.0, corr.At(0, 1), 1e-12)

	pairs := fs.HighlyCorrelated(0.95)
	require.Len(t, pairs, 1)
	assert.Contains(t, pairs[0], "gps_time/intensity")
}
