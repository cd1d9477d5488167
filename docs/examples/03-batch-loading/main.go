package main

import (
	"fmt"
	"log"
	"os"

	"github.com/Thomas-Brd/lidar-platform/pkg/sbf"
)

func main() {
	// Catalog a directory of survey tiles without decoding any matrix
	catalog, errs := sbf.ScanDir("tiles")
	for _, err := range errs {
		fmt.Fprintln(os.Stderr, err)
	}
	if catalog == nil {
		log.Fatal("no catalog")
	}
	fmt.Printf("%d tiles, %d points total\n", len(catalog.Entries), catalog.TotalPoints())

	// Load everything in parallel and build a spatial index
	idx, errs := sbf.BuildIndexFromPaths(catalog.Paths(), sbf.LoadOptions{
		Workers:    8,
		SkipErrors: true,
		Progress: func(loaded, total int) {
			fmt.Printf("\rloading %d/%d", loaded, total)
		},
		ErrorLog: os.Stderr,
	})
	fmt.Println()
	for _, err := range errs {
		fmt.Fprintln(os.Stderr, err)
	}

	// Which tiles cover this 1 km square?
	region := sbf.Bounds{
		MinX: 650000, MaxX: 651000,
		MinY: 4710000, MaxY: 4711000,
	}
	for _, entry := range idx.Query(region) {
		fmt.Printf("%s: %d points\n", entry.Path, entry.PointCount)
	}
}
