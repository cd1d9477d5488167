package main

import (
	"fmt"
	"log"

	"github.com/Thomas-Brd/lidar-platform/pkg/sbf"
)

func main() {
	cloud, err := sbf.Read("survey.sbf")
	if err != nil {
		log.Fatal(err)
	}

	// Derive a new per-point column (here: squared intensity)
	intensity, err := cloud.ScalarField("intensity")
	if err != nil {
		log.Fatal(err)
	}
	squared := make([]float32, len(intensity))
	for i, v := range intensity {
		squared[i] = v * v
	}

	// Mutations keep the header and the matrix in lockstep
	if err := cloud.AddScalarField("intensity_sq", squared); err != nil {
		log.Fatal(err)
	}
	if err := cloud.RenameScalarField("intensity", "amplitude"); err != nil {
		log.Fatal(err)
	}
	if err := cloud.RemoveScalarField("gps_time"); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Fields after edit: %v\n", cloud.ScalarFieldNames())

	// SF1..SFN keys are renumbered from the field list on write
	if err := cloud.Write("survey_edited.sbf"); err != nil {
		log.Fatal(err)
	}
}
