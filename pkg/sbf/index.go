package sbf

import (
	"github.com/dhconnelly/rtreego"
)

// CloudIndex provides fast spatial queries over a collection of clouds.
//
// The index stores lightweight metadata per cloud (path, point count, XY
// bounds) in an R-tree, so finding the survey tiles that cover a region is
// O(log N) instead of a scan over every file's bounds.
//
// Example:
//
//	idx := sbf.NewCloudIndex()
//	for path, cloud := range loaded {
//	    idx.Add(path, cloud)
//	}
//	tiles := idx.Query(sbf.Bounds{MinX: 650000, MaxX: 651000, MinY: 4710000, MaxY: 4711000})
type CloudIndex struct {
	entries []CloudEntry
	rtree   *rtreego.Rtree
}

// CloudEntry is the indexed metadata for one cloud.
type CloudEntry struct {
	Path       string
	PointCount int
	Bounds     Bounds
}

// indexedCloud wraps an entry for R-tree storage.
type indexedCloud struct {
	entry CloudEntry
}

// Bounds implements rtreego.Spatial over the entry's XY extent.
func (ic *indexedCloud) Bounds() rtreego.Rect {
	b := ic.entry.Bounds
	point := rtreego.Point{b.MinX, b.MinY}

	// R-tree rectangles need non-zero extents; single-point clouds get a
	// centimeter-scale stand-in.
	const epsilon = 0.01
	lengths := []float64{b.MaxX - b.MinX, b.MaxY - b.MinY}
	for i, l := range lengths {
		if l < epsilon {
			lengths[i] = epsilon
		}
	}
	rect, _ := rtreego.NewRect(point, lengths)
	return rect
}

// NewCloudIndex creates an empty index.
func NewCloudIndex() *CloudIndex {
	return &CloudIndex{
		rtree: rtreego.NewTree(2, 25, 50),
	}
}

// Add indexes a loaded cloud under the given path.
func (idx *CloudIndex) Add(path string, c *Cloud) {
	entry := CloudEntry{
		Path:       path,
		PointCount: c.PointCount(),
		Bounds:     c.Bounds(),
	}
	idx.entries = append(idx.entries, entry)
	idx.rtree.Insert(&indexedCloud{entry: entry})
}

// Len returns the number of indexed clouds.
func (idx *CloudIndex) Len() int {
	return len(idx.entries)
}

// Entries returns all indexed entries in insertion order.
func (idx *CloudIndex) Entries() []CloudEntry {
	return idx.entries
}

// Query returns entries whose XY bounds intersect the given region.
func (idx *CloudIndex) Query(region Bounds) []CloudEntry {
	queryRect, err := rtreego.NewRect(
		rtreego.Point{region.MinX, region.MinY},
		[]float64{region.MaxX - region.MinX, region.MaxY - region.MinY},
	)
	if err != nil {
		// Degenerate query region, fall back to a linear scan.
		return idx.queryLinear(region)
	}

	spatials := idx.rtree.SearchIntersect(queryRect)
	result := make([]CloudEntry, 0, len(spatials))
	for _, spatial := range spatials {
		result = append(result, spatial.(*indexedCloud).entry)
	}
	return result
}

func (idx *CloudIndex) queryLinear(region Bounds) []CloudEntry {
	var result []CloudEntry
	for _, entry := range idx.entries {
		if entry.Bounds.Intersects(region) {
			result = append(result, entry)
		}
	}
	return result
}

// BuildIndexFromPaths loads the given SBF files (in parallel, per opts) and
// indexes every cloud that loads successfully. Load errors are reported the
// same way LoadCloudsParallel reports them.
func BuildIndexFromPaths(paths []string, opts LoadOptions) (*CloudIndex, []error) {
	clouds, errs := LoadCloudsParallel(paths, opts)
	idx := NewCloudIndex()
	for i, c := range clouds {
		if c != nil {
			idx.Add(paths[i], c)
		}
	}
	return idx, errs
}
