package decode

import (
	"fmt"
	"strconv"
)

// FastFloatTriples extracts attribute attrIndex of entity id as a flat f32
// buffer, assuming the attribute has the shape "((x,y,z),(x,y,z),...)".
// This is the C4 fast path for coordinate lists: it locates the attribute's
// byte span with a direct scan (no Value tree is built for the outer
// record) and parses each number directly from its byte range. On
// well-formed input the result is byte-for-byte identical to decoding
// generally and calling AsFloat on every leaf of the corresponding List —
// this is purely a performance optimization and can be disabled without
// changing semantics.
func (d *Decoder) FastFloatTriples(id int64, attrIndex int) ([]float32, error) {
	raw, ok := d.GetRawBytes(id)
	if !ok {
		return nil, fmt.Errorf("fastpath: unknown entity #%d", id)
	}
	span, err := attributeSpan(raw, attrIndex)
	if err != nil {
		return nil, fmt.Errorf("fastpath: entity #%d: %w", id, err)
	}
	return ParseFloatTripleList(span)
}

// FastIndexTriples extracts attribute attrIndex of entity id as a flat u32
// buffer of 0-based indices, assuming the attribute has the 1-based shape
// "((i,j,k),...)" used by triangulated face sets.
func (d *Decoder) FastIndexTriples(id int64, attrIndex int) ([]uint32, error) {
	raw, ok := d.GetRawBytes(id)
	if !ok {
		return nil, fmt.Errorf("fastpath: unknown entity #%d", id)
	}
	span, err := attributeSpan(raw, attrIndex)
	if err != nil {
		return nil, fmt.Errorf("fastpath: entity #%d: %w", id, err)
	}
	return ParseIndexTripleList(span)
}

// attributeSpan scans the record's top-level attribute list (the
// parenthesized part after "#id=TYPE") and returns the byte span of the
// attrIndex-th top-level attribute (0-based), without building a Value
// tree. It respects nested parens and quoted strings.
func attributeSpan(raw []byte, attrIndex int) ([]byte, error) {
	open := indexByteTop(raw, '(')
	if open < 0 {
		return nil, fmt.Errorf("no '(' found in record")
	}
	pos := open + 1
	idx := 0
	for pos < len(raw) {
		itemStart := pos
		depth := 0
		for pos < len(raw) {
			c := raw[pos]
			switch {
			case c == '\'':
				pos++
				for pos < len(raw) {
					if raw[pos] == '\'' {
						if pos+1 < len(raw) && raw[pos+1] == '\'' {
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
				pos++
			case c == ')':
				if depth == 0 {
					goto itemDone
				}
				depth--
				pos++
			case c == ',' && depth == 0:
				goto itemDone
			default:
				pos++
			}
		}
	itemDone:
		if idx == attrIndex {
			return raw[itemStart:pos], nil
		}
		idx++
		if pos >= len(raw) || raw[pos] == ')' {
			break
		}
		pos++ // skip comma
	}
	return nil, fmt.Errorf("attribute index %d out of range (found %d attributes)", attrIndex, idx)
}

func indexByteTop(raw []byte, b byte) int {
	for i, c := range raw {
		if c == b {
			return i
		}
	}
	return -1
}

// ParseFloatTripleList parses "((x,y,z),(x,y,z),...)" directly into a flat
// f32 buffer, bypassing the general tokenizer.
func ParseFloatTripleList(span []byte) ([]float32, error) {
	groups, err := splitTopLevelGroups(span)
	if err != nil {
		return nil, err
	}
	out := make([]float32, 0, len(groups)*3)
	for _, g := range groups {
		nums, err := splitNumbers(g)
		if err != nil {
			return nil, err
		}
		if len(nums) != 3 {
			return nil, fmt.Errorf("expected 3 numbers per coordinate, got %d", len(nums))
		}
		for _, n := range nums {
			f, err := strconv.ParseFloat(normalizeFloatText(n), 64)
			if err != nil {
				return nil, fmt.Errorf("bad coordinate %q: %w", n, err)
			}
			out = append(out, float32(f))
		}
	}
	return out, nil
}

// ParseIndexTripleList parses "((i,j,k),...)" with 1-based indices directly
// into a flat u32 buffer, decrementing every index to 0-based.
func ParseIndexTripleList(span []byte) ([]uint32, error) {
	groups, err := splitTopLevelGroups(span)
	if err != nil {
		return nil, err
	}
	out := make([]uint32, 0, len(groups)*3)
	for _, g := range groups {
		nums, err := splitNumbers(g)
		if err != nil {
			return nil, err
		}
		if len(nums) != 3 {
			return nil, fmt.Errorf("expected 3 indices per triangle, got %d", len(nums))
		}
		for _, n := range nums {
			v, err := strconv.ParseInt(n, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("bad index %q: %w", n, err)
			}
			if v < 1 {
				return nil, fmt.Errorf("expected 1-based index, got %d", v)
			}
			out = append(out, uint32(v-1))
		}
	}
	return out, nil
}

// splitTopLevelGroups splits "((a),(b),(c))" into ["a", "b", "c"],
// stripping the outer parens and each inner group's own parens.
func splitTopLevelGroups(span []byte) ([][]byte, error) {
	if len(span) < 2 || span[0] != '(' || span[len(span)-1] != ')' {
		return nil, fmt.Errorf("expected parenthesized list")
	}
	inner := span[1 : len(span)-1]
	var groups [][]byte
	pos := 0
	for pos < len(inner) {
		for pos < len(inner) && (inner[pos] == ' ' || inner[pos] == ',') {
			pos++
		}
		if pos >= len(inner) {
			break
		}
		if inner[pos] != '(' {
			return nil, fmt.Errorf("expected nested group at offset %d", pos)
		}
		start := pos
		depth := 0
		for pos < len(inner) {
			switch inner[pos] {
			case '(':
				depth++
			case ')':
				depth--
			}
			pos++
			if depth == 0 {
				break
			}
		}
		groups = append(groups, inner[start+1:pos-1])
	}
	return groups, nil
}

func splitNumbers(group []byte) ([]string, error) {
	var nums []string
	start := 0
	for i := 0; i <= len(group); i++ {
		if i == len(group) || group[i] == ',' {
			if i > start {
				nums = append(nums, trimSpace(string(group[start:i])))
			}
			start = i + 1
		}
	}
	return nums, nil
}

func trimSpace(s string) string {
	i, j := 0, len(s)
	for i < j && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	for j > i && (s[j-1] == ' ' || s[j-1] == '\t') {
		j--
	}
	return s[i:j]
}
