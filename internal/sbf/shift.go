package sbf

import (
	"gonum.org/v1/gonum/stat"
)

// Coordinates are stored as float32 residuals relative to two shifts: the
// local shift embedded in the payload preamble and the optional global shift
// declared in the header. True coordinates are large-magnitude values (UTM
// meters, 6-7 digits before the decimal point) that a float32 cannot hold at
// sub-millimeter precision, so the residual must stay small.
//
//	true = stored(float32) + localShift + globalShift
//
// All composition and decomposition arithmetic happens in float64; only the
// final residual is narrowed to float32.

// composeCoordinates reconstructs true coordinates from the stored matrix.
func composeCoordinates(p *payload, globalShift [3]float64) [][3]float64 {
	width := p.rowWidth()
	points := make([][3]float64, p.pointCount)
	for i := range points {
		row := p.rows[i*width:]
		for c := 0; c < 3; c++ {
			points[i][c] = float64(row[c]) + p.localShift[c] + globalShift[c]
		}
	}
	return points
}

// chooseLocalShift picks the local shift written into the preamble:
// the component-wise centroid of the un-globalshifted coordinates. Centering
// the residuals near zero keeps them small, minimizing float32 rounding.
// Any local shift is format-legal on read; the centroid is a write-side
// heuristic kept for parity with files produced by external tools.
func chooseLocalShift(points [][3]float64, globalShift [3]float64) [3]float64 {
	if len(points) == 0 {
		return [3]float64{}
	}
	col := make([]float64, len(points))
	var shift [3]float64
	for c := 0; c < 3; c++ {
		for i, pt := range points {
			col[i] = pt[c]
		}
		shift[c] = stat.Mean(col, nil) - globalShift[c]
	}
	return shift
}

// reduceCoordinates writes float32 residuals for the leading three columns
// of each row. The subtraction runs fully in float64 before the narrowing
// cast so no error compounds ahead of the single unavoidable rounding.
func reduceCoordinates(points [][3]float64, localShift, globalShift [3]float64, rows []float32, width int) {
	for i, pt := range points {
		row := rows[i*width:]
		for c := 0; c < 3; c++ {
			row[c] = float32(pt[c] - globalShift[c] - localShift[c])
		}
	}
}
