package sbf

import (
	"fmt"
	"strconv"
	"strings"
)

// Header is the parsed form of the SBF text header.
//
// The format is INI-shaped ([SBF] section, key = value lines) but is NOT
// general INI: keys are case-sensitive, comments are not supported, and the
// GlobalShift value follows a fixed float-triple grammar. A generic config
// parser would lowercase keys and accept arbitrary expressions, so the
// grammar is implemented directly here.
//
// Keys the codec does not know about (added by external point-cloud tools)
// are preserved verbatim and re-emitted on serialize, but never interpreted.
type Header struct {
	Points      uint64
	FieldNames  []string   // SF1..SFN values, slice order is column order
	GlobalShift [3]float64 // zero vector when the key is absent

	globalShiftRaw string           // original text, kept for byte-stable round trips
	extraKeys      []keyValue       // unrecognized [SBF] keys, in file order
	extraSections  []foreignSection // non-SBF sections, in file order
}

type keyValue struct {
	key   string
	value string
}

type foreignSection struct {
	name string
	keys []keyValue
}

// ParseHeader parses SBF header text.
//
// Validation per the format rules:
//   - an [SBF] section must be present
//   - Points and SFCount must be non-negative integers
//   - SF keys must form a contiguous SF1..SFCount sequence; numeric key
//     order is authoritative, not line order
//   - GlobalShift, when present, must be a literal "x, y, z" float triple
func ParseHeader(text string) (*Header, error) {
	sections, order, err := splitSections(text)
	if err != nil {
		return nil, err
	}

	sbfKeys, ok := sections["SBF"]
	if !ok {
		return nil, &ErrHeaderMalformed{Reason: "no [SBF] section"}
	}

	h := &Header{}
	sfByIndex := make(map[int]string)
	maxSF := 0

	for _, kv := range sbfKeys {
		switch {
		case kv.key == "Points":
			n, err := parseCount(kv.value)
			if err != nil {
				return nil, &ErrHeaderMalformed{Reason: fmt.Sprintf("Points=%q is not a non-negative integer", kv.value)}
			}
			h.Points = n
		case kv.key == "SFCount":
			n, err := parseCount(kv.value)
			if err != nil {
				return nil, &ErrHeaderMalformed{Reason: fmt.Sprintf("SFCount=%q is not a non-negative integer", kv.value)}
			}
			maxSF = int(n)
		case kv.key == "GlobalShift":
			shift, err := ParseGlobalShift(kv.value)
			if err != nil {
				return nil, err
			}
			h.GlobalShift = shift
			h.globalShiftRaw = kv.value
		case isSFKey(kv.key):
			idx, _ := strconv.Atoi(kv.key[2:])
			if _, dup := sfByIndex[idx]; dup {
				return nil, &ErrHeaderMalformed{Reason: fmt.Sprintf("duplicate key %s", kv.key)}
			}
			sfByIndex[idx] = kv.value
		default:
			h.extraKeys = append(h.extraKeys, kv)
		}
	}

	// SF keys must be exactly 1..SFCount, whatever order they appeared in.
	if len(sfByIndex) != maxSF {
		return nil, &ErrHeaderMalformed{
			Reason: fmt.Sprintf("SFCount=%d but %d SF keys present", maxSF, len(sfByIndex)),
		}
	}
	h.FieldNames = make([]string, maxSF)
	for i := 1; i <= maxSF; i++ {
		name, ok := sfByIndex[i]
		if !ok {
			return nil, &ErrHeaderMalformed{Reason: fmt.Sprintf("SF keys not contiguous: SF%d missing", i)}
		}
		h.FieldNames[i-1] = name
	}

	for _, name := range order {
		if name == "SBF" {
			continue
		}
		h.extraSections = append(h.extraSections, foreignSection{name: name, keys: sections[name]})
	}

	return h, nil
}

// Serialize renders the header as text, known keys first in canonical order
// (Points, SFCount, GlobalShift, SF1..SFN), then preserved foreign keys and
// sections. Ends with a trailing newline.
func (h *Header) Serialize() string {
	var b strings.Builder
	b.WriteString("[SBF]\n")
	fmt.Fprintf(&b, "Points = %d\n", h.Points)
	fmt.Fprintf(&b, "SFCount = %d\n", len(h.FieldNames))
	fmt.Fprintf(&b, "GlobalShift = %s\n", h.globalShiftText())
	for i, name := range h.FieldNames {
		fmt.Fprintf(&b, "SF%d = %s\n", i+1, name)
	}
	for _, kv := range h.extraKeys {
		fmt.Fprintf(&b, "%s = %s\n", kv.key, kv.value)
	}
	for _, sec := range h.extraSections {
		fmt.Fprintf(&b, "\n[%s]\n", sec.name)
		for _, kv := range sec.keys {
			fmt.Fprintf(&b, "%s = %s\n", kv.key, kv.value)
		}
	}
	return b.String()
}

// SetGlobalShift replaces the global shift, discarding any preserved source text.
func (h *Header) SetGlobalShift(shift [3]float64) {
	h.GlobalShift = shift
	h.globalShiftRaw = ""
}

func (h *Header) globalShiftText() string {
	if h.globalShiftRaw != "" {
		return h.globalShiftRaw
	}
	if h.GlobalShift == [3]float64{} {
		// Matches the form external tools write for the zero shift.
		return "0., 0., 0."
	}
	return FormatGlobalShift(h.GlobalShift)
}

// ParseGlobalShift parses a literal "x, y, z" float triple. Surrounding
// whitespace around each component is allowed; anything else is rejected.
func ParseGlobalShift(value string) ([3]float64, error) {
	parts := strings.Split(value, ",")
	if len(parts) != 3 {
		return [3]float64{}, &ErrGlobalShiftMalformed{Value: value}
	}
	var shift [3]float64
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return [3]float64{}, &ErrGlobalShiftMalformed{Value: value}
		}
		shift[i] = f
	}
	return shift, nil
}

// FormatGlobalShift renders a shift triple in the "x, y, z" header form.
func FormatGlobalShift(shift [3]float64) string {
	return fmt.Sprintf("%s, %s, %s",
		strconv.FormatFloat(shift[0], 'g', -1, 64),
		strconv.FormatFloat(shift[1], 'g', -1, 64),
		strconv.FormatFloat(shift[2], 'g', -1, 64))
}

// splitSections performs the line-level parse: section headers in brackets,
// key = value lines split on the first '='. Keys keep their exact casing.
func splitSections(text string) (map[string][]keyValue, []string, error) {
	sections := make(map[string][]keyValue)
	var order []string
	current := ""

	for lineNo, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "[") {
			if !strings.HasSuffix(line, "]") {
				return nil, nil, &ErrHeaderMalformed{Reason: fmt.Sprintf("line %d: unterminated section header", lineNo+1)}
			}
			current = line[1 : len(line)-1]
			if _, seen := sections[current]; !seen {
				sections[current] = nil
				order = append(order, current)
			}
			continue
		}
		eq := strings.Index(line, "=")
		if eq < 0 {
			return nil, nil, &ErrHeaderMalformed{Reason: fmt.Sprintf("line %d: expected key = value", lineNo+1)}
		}
		if current == "" {
			return nil, nil, &ErrHeaderMalformed{Reason: fmt.Sprintf("line %d: key outside any section", lineNo+1)}
		}
		key := strings.TrimSpace(line[:eq])
		value := strings.TrimSpace(line[eq+1:])
		if key == "" {
			return nil, nil, &ErrHeaderMalformed{Reason: fmt.Sprintf("line %d: empty key", lineNo+1)}
		}
		sections[current] = append(sections[current], keyValue{key: key, value: value})
	}

	return sections, order, nil
}

// parseCount parses a non-negative decimal integer.
func parseCount(value string) (uint64, error) {
	return strconv.ParseUint(strings.TrimSpace(value), 10, 64)
}

// isSFKey reports whether key is SF<k> with a positive decimal k.
func isSFKey(key string) bool {
	if len(key) < 3 || !strings.HasPrefix(key, "SF") {
		return false
	}
	n, err := strconv.Atoi(key[2:])
	return err == nil && n >= 1
}
