package main

import (
	"fmt"
	"log"

	"github.com/Thomas-Brd/lidar-platform/pkg/sbf"
)

func main() {
	// Read an SBF pair (survey.sbf + survey.sbf.data)
	cloud, err := sbf.Read("survey.sbf")
	if err != nil {
		log.Fatal(err)
	}

	// Print cloud info
	fmt.Printf("Points: %d\n", cloud.PointCount())
	fmt.Printf("Scalar fields: %v\n", cloud.ScalarFieldNames())
	fmt.Printf("Global shift: %v\n", cloud.GlobalShift())

	// Coordinates come back at full precision, already un-shifted
	bounds := cloud.Bounds()
	fmt.Printf("Bounds: [%.3f,%.3f] to [%.3f,%.3f]\n",
		bounds.MinX, bounds.MinY,
		bounds.MaxX, bounds.MaxY)
}
