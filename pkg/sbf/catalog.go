package sbf

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	codec "github.com/Thomas-Brd/lidar-platform/internal/sbf"
)

// Catalog lists the SBF files found in a directory, with the metadata that
// can be read cheaply: the text header plus the size of the binary
// companion. The point matrix itself is never decoded, so cataloging a
// directory of multi-gigabyte clouds is fast.
type Catalog struct {
	Dir     string
	Entries []CatalogEntry
}

// CatalogEntry describes one SBF pair.
type CatalogEntry struct {
	// Path is the header file path; the payload lives at Path + ".data".
	Path        string
	Points      uint64
	FieldNames  []string
	GlobalShift [3]float64

	// Complete reports whether the companion .data file exists and is at
	// least as large as the header-declared matrix requires. An incomplete
	// pair usually means the header was copied without its .data file.
	Complete bool
}

// ScanDir catalogs every *.sbf file directly under dir, sorted by path.
// Files whose header does not parse are skipped with an error entry in the
// returned error slice; the scan itself only fails if the directory cannot
// be listed.
func ScanDir(dir string) (*Catalog, []error) {
	names, err := os.ReadDir(dir)
	if err != nil {
		return nil, []error{fmt.Errorf("scan %s: %w", dir, err)}
	}

	catalog := &Catalog{Dir: dir}
	var errs []error
	for _, de := range names {
		if de.IsDir() || !strings.HasSuffix(de.Name(), ".sbf") {
			continue
		}
		path := filepath.Join(dir, de.Name())
		entry, err := readCatalogEntry(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("catalog %s: %w", path, err))
			continue
		}
		catalog.Entries = append(catalog.Entries, entry)
	}
	sort.Slice(catalog.Entries, func(i, j int) bool {
		return catalog.Entries[i].Path < catalog.Entries[j].Path
	})
	return catalog, errs
}

// TotalPoints sums the declared point counts across all entries.
func (c *Catalog) TotalPoints() uint64 {
	var total uint64
	for _, e := range c.Entries {
		total += e.Points
	}
	return total
}

// Paths returns the header paths of all entries, in catalog order.
func (c *Catalog) Paths() []string {
	paths := make([]string, len(c.Entries))
	for i, e := range c.Entries {
		paths[i] = e.Path
	}
	return paths
}

// Incomplete returns entries whose .data companion is missing or short.
func (c *Catalog) Incomplete() []CatalogEntry {
	var out []CatalogEntry
	for _, e := range c.Entries {
		if !e.Complete {
			out = append(out, e)
		}
	}
	return out
}

func readCatalogEntry(path string) (CatalogEntry, error) {
	headerText, err := os.ReadFile(path)
	if err != nil {
		return CatalogEntry{}, err
	}
	header, err := codec.ParseHeader(string(headerText))
	if err != nil {
		return CatalogEntry{}, err
	}

	entry := CatalogEntry{
		Path:        path,
		Points:      header.Points,
		FieldNames:  header.FieldNames,
		GlobalShift: header.GlobalShift,
	}

	if info, err := os.Stat(path + ".data"); err == nil {
		need := codec.ExpectedPayloadSize(header.Points, len(header.FieldNames))
		entry.Complete = info.Size() >= need
	}
	return entry, nil
}
