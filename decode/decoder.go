package decode

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ifcgeom/corepipe/step"
)

// DecodedEntity is the positional attribute tuple for one STEP record.
// Attribute access is positional; the schema package defines the semantic
// name per index per type.
type DecodedEntity struct {
	ID      int64
	TypeTag string
	Attrs   []Value
}

// Attr returns the attribute at position i, or NullVal if out of range —
// STEP records frequently omit optional trailing attributes.
func (e DecodedEntity) Attr(i int) Value {
	if i < 0 || i >= len(e.Attrs) {
		return NullVal{}
	}
	return e.Attrs[i]
}

const defaultCacheSize = 256

// Decoder turns entity byte ranges into DecodedEntity values, on demand. It
// holds an internal cache of recently decoded entities to absorb repeated
// lookups of the same entity (e.g. a cartesian point referenced by many
// placements). A Decoder is not safe for concurrent use — callers running a
// parallel pipeline (stream.Scheduler) create one Decoder per worker over
// the shared, read-only Index and source bytes.
type Decoder struct {
	src   []byte
	index *step.Index

	cache      map[int64]DecodedEntity
	cacheOrder []int64
	cacheCap   int
}

// New creates a Decoder over src, mediated by index. src must be the same
// byte slice index was built from.
func New(src []byte, index *step.Index) *Decoder {
	return &Decoder{
		src:      src,
		index:    index,
		cache:    make(map[int64]DecodedEntity, defaultCacheSize),
		cacheCap: defaultCacheSize,
	}
}

// Index returns the decoder's backing entity index.
func (d *Decoder) Index() *step.Index { return d.index }

// GetRawBytes returns the raw record text for id, so a processor can opt
// into a fast path (FastFloatTriples, FastIndexTriples) when it knows the
// attribute layout, bypassing the general decode pipeline.
func (d *Decoder) GetRawBytes(id int64) ([]byte, bool) {
	rec, ok := d.index.Lookup(id)
	if !ok {
		return nil, false
	}
	return d.src[rec.Start:rec.End], true
}

// DecodeByID decodes the entity with the given id via the index.
func (d *Decoder) DecodeByID(id int64) (DecodedEntity, error) {
	if e, ok := d.cache[id]; ok {
		return e, nil
	}
	rec, ok := d.index.Lookup(id)
	if !ok {
		return DecodedEntity{}, fmt.Errorf("decode: unknown entity #%d", id)
	}
	e, err := d.DecodeAt(rec.Start, rec.End)
	if err != nil {
		return DecodedEntity{}, err
	}
	e.ID = id
	e.TypeTag = rec.TypeTag
	d.remember(id, e)
	return e, nil
}

// DecodeAt parses the positional attribute list of one record given its raw
// byte range [start, end). The range must include the leading "#id=TYPE("
// through the trailing ");".
func (d *Decoder) DecodeAt(start, end int) (DecodedEntity, error) {
	lex := step.NewLexer(d.src[start:end])
	toks := lex.Tokenize()
	p := &parser{src: d.src[start:end], toks: toks}

	if p.cur().Kind != step.TokenEntityRef {
		return DecodedEntity{}, fmt.Errorf("decode: record does not start with an entity ref")
	}
	idTok := p.cur()
	id, err := strconv.ParseInt(string(idTok.Span(p.src)[1:]), 10, 64)
	if err != nil {
		return DecodedEntity{}, fmt.Errorf("decode: bad entity id: %w", err)
	}
	p.advance()

	if p.cur().Kind != step.TokenEquals {
		return DecodedEntity{}, fmt.Errorf("decode: expected '=' in record #%d", id)
	}
	p.advance()

	if p.cur().Kind != step.TokenIdent {
		return DecodedEntity{}, fmt.Errorf("decode: expected type tag in record #%d", id)
	}
	typeTag := string(p.cur().Span(p.src))
	p.advance()

	if p.cur().Kind != step.TokenLeftParen {
		return DecodedEntity{}, fmt.Errorf("decode: expected '(' after type tag in record #%d", id)
	}
	p.advance()

	attrs, err := p.parseValueList(step.TokenRightParen)
	if err != nil {
		return DecodedEntity{}, fmt.Errorf("decode: record #%d: %w", id, err)
	}

	return DecodedEntity{ID: id, TypeTag: typeTag, Attrs: attrs}, nil
}

func (d *Decoder) remember(id int64, e DecodedEntity) {
	if _, exists := d.cache[id]; exists {
		return
	}
	if len(d.cacheOrder) >= d.cacheCap {
		oldest := d.cacheOrder[0]
		d.cacheOrder = d.cacheOrder[1:]
		delete(d.cache, oldest)
	}
	d.cache[id] = e
	d.cacheOrder = append(d.cacheOrder, id)
}

// ResolveRef follows an entity-ref attribute to its decoded record. Returns
// ok=false if v is not a Ref or the referenced id is unknown.
func (d *Decoder) ResolveRef(v Value) (DecodedEntity, bool) {
	ref, ok := v.(Ref)
	if !ok {
		return DecodedEntity{}, false
	}
	e, err := d.DecodeByID(ref.ID)
	if err != nil {
		return DecodedEntity{}, false
	}
	return e, true
}

// ResolveRefList follows a List of Ref attributes, skipping any entry that
// is not a resolvable reference.
func (d *Decoder) ResolveRefList(v Value) []DecodedEntity {
	items, ok := AsList(v)
	if !ok {
		return nil
	}
	out := make([]DecodedEntity, 0, len(items))
	for _, item := range items {
		if e, ok := d.ResolveRef(item); ok {
			out = append(out, e)
		}
	}
	return out
}

// parser is a small recursive-descent parser over a pre-scanned token
// stream for one record's attribute list.
type parser struct {
	src  []byte
	toks []step.Token
	pos  int
}

func (p *parser) cur() step.Token {
	if p.pos >= len(p.toks) {
		return step.Token{Kind: step.TokenEOF}
	}
	return p.toks[p.pos]
}

func (p *parser) advance() step.Token {
	t := p.cur()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

// parseValueList parses a comma-separated sequence of values up to and
// including the terminator token (TokenRightParen).
func (p *parser) parseValueList(terminator step.TokenKind) ([]Value, error) {
	var out []Value
	if p.cur().Kind == terminator {
		p.advance()
		return out, nil
	}
	for {
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
		switch p.cur().Kind {
		case step.TokenComma:
			p.advance()
			continue
		case terminator:
			p.advance()
			return out, nil
		default:
			return nil, fmt.Errorf("unexpected token %v at position %d", p.cur().Kind, p.pos)
		}
	}
}

func (p *parser) parseValue() (Value, error) {
	tok := p.cur()
	switch tok.Kind {
	case step.TokenEntityRef:
		p.advance()
		id, err := strconv.ParseInt(string(tok.Span(p.src)[1:]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad entity ref: %w", err)
		}
		return Ref{ID: id}, nil
	case step.TokenInt:
		p.advance()
		n, err := strconv.ParseInt(string(tok.Span(p.src)), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad integer literal: %w", err)
		}
		return IntVal{Value: n}, nil
	case step.TokenFloat:
		p.advance()
		f, err := strconv.ParseFloat(normalizeFloatText(string(tok.Span(p.src))), 64)
		if err != nil {
			return nil, fmt.Errorf("bad float literal: %w", err)
		}
		return FloatVal{Value: f}, nil
	case step.TokenString:
		p.advance()
		return StringVal{Value: unescapeSTEPString(tok.Span(p.src))}, nil
	case step.TokenEnum:
		p.advance()
		raw := string(tok.Span(p.src))
		return EnumVal{Symbol: strings.Trim(raw, ".")}, nil
	case step.TokenNull:
		p.advance()
		return NullVal{}, nil
	case step.TokenDerived:
		p.advance()
		return DerivedVal{}, nil
	case step.TokenLeftParen:
		p.advance()
		items, err := p.parseValueList(step.TokenRightParen)
		if err != nil {
			return nil, err
		}
		return List{Items: items}, nil
	case step.TokenIdent:
		name := string(tok.Span(p.src))
		p.advance()
		if p.cur().Kind == step.TokenLeftParen {
			p.advance()
			args, err := p.parseValueList(step.TokenRightParen)
			if err != nil {
				return nil, err
			}
			return Typed{Name: name, Args: args}, nil
		}
		return Typed{Name: name}, nil
	default:
		return nil, fmt.Errorf("unexpected token %v", tok.Kind)
	}
}

// normalizeFloatText turns STEP's permissive float forms ("0.", ".5",
// "1.5E10") into forms strconv.ParseFloat accepts unconditionally.
func normalizeFloatText(s string) string {
	if strings.HasSuffix(s, ".") {
		s += "0"
	}
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}
	if strings.HasPrefix(s, "-.") {
		s = "-0" + s[1:]
	}
	if strings.HasPrefix(s, "+.") {
		s = "+0" + s[1:]
	}
	return s
}

func unescapeSTEPString(span []byte) string {
	// span includes the surrounding quotes.
	inner := span[1 : len(span)-1]
	if !strings.Contains(string(inner), "''") {
		return string(inner)
	}
	return strings.ReplaceAll(string(inner), "''", "'")
}
