package sbf

import (
	"fmt"
)

// ErrHeaderMalformed indicates the text header cannot be interpreted as SBF
type ErrHeaderMalformed struct {
	Reason string
}

func (e *ErrHeaderMalformed) Error() string {
	return fmt.Sprintf("malformed SBF header: %s", e.Reason)
}

// ErrGlobalShiftMalformed indicates the GlobalShift value is not a literal
// "x, y, z" float triple. Malformed values are rejected, never defaulted.
type ErrGlobalShiftMalformed struct {
	Value string
}

func (e *ErrGlobalShiftMalformed) Error() string {
	return fmt.Sprintf("malformed GlobalShift %q: expected three comma-separated floats", e.Value)
}

// ErrPayloadMalformed indicates the binary payload preamble is invalid
type ErrPayloadMalformed struct {
	Reason string
}

func (e *ErrPayloadMalformed) Error() string {
	return fmt.Sprintf("malformed SBF payload: %s", e.Reason)
}

// ErrPayloadTruncated indicates fewer payload bytes than the preamble declares
type ErrPayloadTruncated struct {
	Expected int64
	Actual   int64
}

func (e *ErrPayloadTruncated) Error() string {
	return fmt.Sprintf("truncated SBF payload: need %d bytes, have %d", e.Expected, e.Actual)
}

// ErrPayloadHeaderMismatch indicates the text header and binary preamble
// disagree on point or scalar-field counts
type ErrPayloadHeaderMismatch struct {
	Field        string
	HeaderValue  uint64
	PayloadValue uint64
}

func (e *ErrPayloadHeaderMismatch) Error() string {
	return fmt.Sprintf("header/payload mismatch: header declares %s=%d, payload encodes %d",
		e.Field, e.HeaderValue, e.PayloadValue)
}

// ErrFieldNotFound indicates a scalar field name is not present in the document
type ErrFieldNotFound struct {
	Name string
}

func (e *ErrFieldNotFound) Error() string {
	return fmt.Sprintf("scalar field %q not found", e.Name)
}

// ErrDuplicateFieldName indicates a scalar field name is already in use
type ErrDuplicateFieldName struct {
	Name string
}

func (e *ErrDuplicateFieldName) Error() string {
	return fmt.Sprintf("scalar field %q already exists", e.Name)
}
