package step

import "fmt"

// Record is one entry of the entity index: an id mapped to its type tag and
// the byte range (into the original file) of its full record text,
// including the trailing ';'.
type Record struct {
	ID        int64
	TypeTag   string
	Start     int
	End       int
}

// Diagnostic describes a record the index scanner chose to skip rather than
// abort on. Skipping a single malformed record is parse-recoverable; the
// scan as a whole never aborts because of one bad record.
type Diagnostic struct {
	Offset  int
	Message string
}

// Index is an immutable, read-only-after-construction map from entity id to
// its byte range and type tag. Safe for concurrent reads from any number of
// workers once BuildIndex returns.
type Index struct {
	src         []byte
	records     map[int64]Record
	order       []int64 // ids in file order, for deterministic iteration
	diagnostics []Diagnostic
}

// Source returns the underlying byte slice the index was built over.
func (ix *Index) Source() []byte { return ix.src }

// Len returns the number of entities in the index.
func (ix *Index) Len() int { return len(ix.records) }

// Lookup returns the record for id, O(1).
func (ix *Index) Lookup(id int64) (Record, bool) {
	r, ok := ix.records[id]
	return r, ok
}

// IDs returns every entity id in file order.
func (ix *Index) IDs() []int64 { return ix.order }

// Diagnostics returns every record skipped during construction.
func (ix *Index) Diagnostics() []Diagnostic { return ix.diagnostics }

// BuildIndex performs a single linear scan of src's DATA section, locating
// the byte range of every "#id=TYPE(...);" record. It does not allocate
// structured copies of attribute data — only the id -> range map. Malformed
// records (unclosed paren, unterminated string, missing '=' or type tag)
// are skipped with a Diagnostic; the scan continues from the next '#'.
//
// Construction is O(n) in len(src).
func BuildIndex(src []byte) (*Index, error) {
	ix := &Index{
		src:     src,
		records: make(map[int64]Record, len(src)/64+16),
	}

	dataStart := findDataSection(src)
	pos := dataStart

	for pos < len(src) {
		// Skip whitespace/comments between records.
		pos = skipInterRecordNoise(src, pos)
		if pos >= len(src) {
			break
		}
		if src[pos] != '#' {
			// Not a record start (e.g. "ENDSEC;" or stray text); advance to
			// the next candidate record boundary.
			next := indexByteFrom(src, pos, '#')
			if next < 0 {
				break
			}
			pos = next
			continue
		}

		rec, newPos, err := scanRecord(src, pos)
		if err != nil {
			ix.diagnostics = append(ix.diagnostics, Diagnostic{Offset: pos, Message: err.Error()})
			// Resynchronize: look for the next plausible record start.
			next := indexByteFrom(src, pos+1, '#')
			if next < 0 {
				break
			}
			pos = next
			continue
		}

		if _, exists := ix.records[rec.ID]; exists {
			ix.diagnostics = append(ix.diagnostics, Diagnostic{Offset: pos, Message: fmt.Sprintf("duplicate entity id #%d", rec.ID)})
		} else {
			ix.records[rec.ID] = rec
			ix.order = append(ix.order, rec.ID)
		}
		pos = newPos
	}

	return ix, nil
}

// findDataSection returns the offset just after a "DATA;" section header,
// or 0 if none is found (so the scanner falls back to scanning the whole
// input, tolerant of headerless test fixtures).
func findDataSection(src []byte) int {
	idx := indexString(src, "DATA;")
	if idx < 0 {
		return 0
	}
	return idx + len("DATA;")
}

func indexString(src []byte, needle string) int {
	n := len(needle)
	for i := 0; i+n <= len(src); i++ {
		if string(src[i:i+n]) == needle {
			return i
		}
	}
	return -1
}

func indexByteFrom(src []byte, from int, b byte) int {
	for i := from; i < len(src); i++ {
		if src[i] == b {
			return i
		}
	}
	return -1
}

func skipInterRecordNoise(src []byte, pos int) int {
	for pos < len(src) {
		c := src[pos]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			pos++
		case c == '/' && pos+1 < len(src) && src[pos+1] == '*':
			end := indexString(src[pos:], "*/")
			if end < 0 {
				return len(src)
			}
			pos += end + 2
		default:
			return pos
		}
	}
	return pos
}

// scanRecord scans one "#id = TYPE ( ... ) ;" record starting at the '#'
// and returns its Record and the offset just past the trailing ';'.
func scanRecord(src []byte, start int) (Record, int, error) {
	pos := start + 1 // past '#'
	idStart := pos
	for pos < len(src) && isDigit(src[pos]) {
		pos++
	}
	if pos == idStart {
		return Record{}, 0, fmt.Errorf("expected digits after '#'")
	}
	id := parseIntFast(src[idStart:pos])

	pos = skipBlank(src, pos)
	if pos >= len(src) || src[pos] != '=' {
		return Record{}, 0, fmt.Errorf("expected '=' for entity #%d", id)
	}
	pos++
	pos = skipBlank(src, pos)

	tagStart := pos
	for pos < len(src) && isIdentCont(src[pos]) {
		pos++
	}
	if pos == tagStart {
		return Record{}, 0, fmt.Errorf("expected type tag for entity #%d", id)
	}
	typeTag := string(src[tagStart:pos])

	pos = skipBlank(src, pos)
	end, err := skipBalancedToSemicolon(src, pos)
	if err != nil {
		return Record{}, 0, err
	}

	return Record{ID: id, TypeTag: typeTag, Start: start, End: end}, end, nil
}

func skipBlank(src []byte, pos int) int {
	for pos < len(src) && (src[pos] == ' ' || src[pos] == '\t' || src[pos] == '\r' || src[pos] == '\n') {
		pos++
	}
	return pos
}

// skipBalancedToSemicolon walks from an expected '(' through the balanced
// attribute list, respecting string quoting, and returns the offset just
// past the terminating ';'.
func skipBalancedToSemicolon(src []byte, pos int) (int, error) {
	depth := 0
	started := false
	for pos < len(src) {
		c := src[pos]
		switch {
		case c == '\'':
			pos++
			for pos < len(src) {
				if src[pos] == '\'' {
					if pos+1 < len(src) && src[pos+1] == '\'' {
						pos += 2
						continue
					}
					pos++
					break
				}
				pos++
			}
			continue
		case c == '(':
			depth++
			started = true
			pos++
		case c == ')':
			depth--
			pos++
			if depth < 0 {
				return 0, fmt.Errorf("unbalanced ')' at offset %d", pos)
			}
		case c == ';' && depth == 0 && started:
			return pos + 1, nil
		default:
			pos++
		}
	}
	return 0, fmt.Errorf("unterminated record starting near offset %d", pos)
}

func parseIntFast(digits []byte) int64 {
	var v int64
	for _, c := range digits {
		v = v*10 + int64(c-'0')
	}
	return v
}
