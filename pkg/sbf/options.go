package sbf

// ReadOptions configures cloud loading.
type ReadOptions struct {
	// FieldFilter, when non-empty, keeps only the named scalar fields after
	// loading. Every listed field must exist; loading fails otherwise.
	// Names are exact stored names (use SelectFeatures for the
	// case-insensitive convention lookup).
	FieldFilter []string
}

// DefaultReadOptions returns default read options.
func DefaultReadOptions() ReadOptions {
	return ReadOptions{}
}

// WriteOptions configures cloud saving.
type WriteOptions struct {
	// GlobalShift, when non-nil, overrides the cloud's global shift before
	// decomposition. True coordinates are unchanged; only how they split
	// between the header shift and the payload residuals changes.
	GlobalShift *[3]float64

	// AddIndexField appends an "index" scalar field holding the 0-based row
	// number of each point. External tools reorder points during
	// subsampling; the index column lets results be mapped back.
	AddIndexField bool

	// Normals, when non-nil, appends Nx, Ny, Nz scalar fields from the
	// given per-point normal vectors. Must match the point count.
	Normals [][3]float32
}

// DefaultWriteOptions returns default write options.
func DefaultWriteOptions() WriteOptions {
	return WriteOptions{}
}
