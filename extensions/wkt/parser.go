package wkt

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/geoattest/sdk-go/core/geometry"
	"github.com/geoattest/sdk-go/core/types"
)

// parse reads a WKT string into hub geometry. The parser is lenient about
// case and whitespace and about Z ordinates appearing without the Z
// keyword; the writer re-serializes strictly.
func parse(s string) (*geometry.Geometry, error) {
	p := &parser{s: s}
	g, err := p.parseGeometry()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if !p.done() {
		return nil, parseErr("trailing characters after geometry")
	}
	return g, nil
}

type parser struct {
	s   string
	pos int
}

func parseErr(format string, args ...any) error {
	return types.NewFormatError(types.KindValidation, FormatID, fmt.Sprintf(format, args...))
}

func (p *parser) done() bool {
	return p.pos >= len(p.s)
}

func (p *parser) peek() byte {
	if p.done() {
		return 0
	}
	return p.s[p.pos]
}

func (p *parser) skipSpace() {
	for !p.done() {
		switch p.s[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) expect(ch byte) error {
	p.skipSpace()
	if p.done() || p.s[p.pos] != ch {
		return parseErr("expected %q at offset %d", string(ch), p.pos)
	}
	p.pos++
	return nil
}

// accept consumes ch if it is next and reports whether it did.
func (p *parser) accept(ch byte) bool {
	p.skipSpace()
	if !p.done() && p.s[p.pos] == ch {
		p.pos++
		return true
	}
	return false
}

func (p *parser) readWord() string {
	p.skipSpace()
	start := p.pos
	for !p.done() {
		c := p.s[p.pos]
		if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') {
			p.pos++
			continue
		}
		break
	}
	return strings.ToUpper(p.s[start:p.pos])
}

func isNumberStart(c byte) bool {
	return (c >= '0' && c <= '9') || c == '-' || c == '+' || c == '.'
}

func (p *parser) readNumberToken() (string, error) {
	p.skipSpace()
	start := p.pos
	for !p.done() {
		c := p.s[p.pos]
		if (c >= '0' && c <= '9') || c == '-' || c == '+' || c == '.' || c == 'e' || c == 'E' {
			p.pos++
			continue
		}
		break
	}
	if p.pos == start {
		return "", parseErr("expected a number at offset %d", start)
	}
	return p.s[start:p.pos], nil
}

func (p *parser) parseNumber() (float64, error) {
	tok, err := p.readNumberToken()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, parseErr("invalid number %q", tok)
	}
	return v, nil
}

func (p *parser) parseGeometry() (*geometry.Geometry, error) {
	keyword := p.readWord()
	if keyword == "" {
		return nil, parseErr("expected a geometry keyword")
	}

	switch p.readDimension() {
	case "", "Z":
	case "M", "ZM":
		return nil, parseErr("measured ordinates are not supported")
	}

	p.skipSpace()
	if strings.HasPrefix(strings.ToUpper(p.s[p.pos:]), "EMPTY") {
		return nil, parseErr("empty geometries are not attestable")
	}

	switch keyword {
	case "POINT":
		if err := p.expect('('); err != nil {
			return nil, err
		}
		pos, err := p.parsePosition()
		if err != nil {
			return nil, err
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return geometry.NewPoint(pos), nil
	case "MULTIPOINT":
		ps, err := p.parseMultiPointBody()
		if err != nil {
			return nil, err
		}
		return geometry.NewMultiPoint(ps), nil
	case "LINESTRING":
		ps, err := p.parsePositionList()
		if err != nil {
			return nil, err
		}
		return geometry.NewLineString(ps), nil
	case "MULTILINESTRING":
		lines, err := p.parseListOfLists()
		if err != nil {
			return nil, err
		}
		return geometry.NewMultiLineString(lines), nil
	case "POLYGON":
		rings, err := p.parseListOfLists()
		if err != nil {
			return nil, err
		}
		return geometry.NewPolygon(rings), nil
	case "MULTIPOLYGON":
		if err := p.expect('('); err != nil {
			return nil, err
		}
		var polys [][][]geometry.Position
		for {
			rings, err := p.parseListOfLists()
			if err != nil {
				return nil, err
			}
			polys = append(polys, rings)
			if !p.accept(',') {
				break
			}
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return geometry.NewMultiPolygon(polys), nil
	default:
		return nil, parseErr("unsupported geometry keyword %q", keyword)
	}
}

// readDimension consumes a standalone Z/M/ZM token if present.
func (p *parser) readDimension() string {
	save := p.pos
	word := p.readWord()
	switch word {
	case "Z", "M", "ZM":
		return word
	case "":
		return ""
	default:
		p.pos = save
		return ""
	}
}

func (p *parser) parsePosition() (geometry.Position, error) {
	x, err := p.parseNumber()
	if err != nil {
		return nil, err
	}
	y, err := p.parseNumber()
	if err != nil {
		return nil, err
	}
	pos := geometry.Position{x, y}

	p.skipSpace()
	if !p.done() && isNumberStart(p.peek()) {
		z, err := p.parseNumber()
		if err != nil {
			return nil, err
		}
		pos = append(pos, z)
	}
	return pos, nil
}

func (p *parser) parsePositionList() ([]geometry.Position, error) {
	if err := p.expect('('); err != nil {
		return nil, err
	}
	var out []geometry.Position
	for {
		pos, err := p.parsePosition()
		if err != nil {
			return nil, err
		}
		out = append(out, pos)
		if !p.accept(',') {
			break
		}
	}
	if err := p.expect(')'); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *parser) parseListOfLists() ([][]geometry.Position, error) {
	if err := p.expect('('); err != nil {
		return nil, err
	}
	var out [][]geometry.Position
	for {
		ps, err := p.parsePositionList()
		if err != nil {
			return nil, err
		}
		out = append(out, ps)
		if !p.accept(',') {
			break
		}
	}
	if err := p.expect(')'); err != nil {
		return nil, err
	}
	return out, nil
}

// parseMultiPointBody accepts both parenthesized members
// "((1 2), (3 4))" and the bare form "(1 2, 3 4)".
func (p *parser) parseMultiPointBody() ([]geometry.Position, error) {
	if err := p.expect('('); err != nil {
		return nil, err
	}
	var out []geometry.Position
	for {
		var (
			pos geometry.Position
			err error
		)
		if p.accept('(') {
			pos, err = p.parsePosition()
			if err != nil {
				return nil, err
			}
			if err := p.expect(')'); err != nil {
				return nil, err
			}
		} else {
			pos, err = p.parsePosition()
			if err != nil {
				return nil, err
			}
		}
		out = append(out, pos)
		if !p.accept(',') {
			break
		}
	}
	if err := p.expect(')'); err != nil {
		return nil, err
	}
	return out, nil
}

// write serializes hub geometry in canonical WKT form.
func write(g *geometry.Geometry) (string, error) {
	var b strings.Builder
	b.WriteString(strings.ToUpper(string(g.Type)))
	if hasZ(g) {
		b.WriteString(" Z")
	}
	b.WriteByte(' ')

	switch c := g.Coordinates.(type) {
	case geometry.Position:
		b.WriteByte('(')
		writePosition(&b, c)
		b.WriteByte(')')
	case []geometry.Position:
		if g.Type == geometry.TypeMultiPoint {
			b.WriteByte('(')
			for i, pos := range c {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteByte('(')
				writePosition(&b, pos)
				b.WriteByte(')')
			}
			b.WriteByte(')')
		} else {
			writePositionList(&b, c)
		}
	case [][]geometry.Position:
		writeListOfLists(&b, c)
	case [][][]geometry.Position:
		b.WriteByte('(')
		for i, rings := range c {
			if i > 0 {
				b.WriteString(", ")
			}
			writeListOfLists(&b, rings)
		}
		b.WriteByte(')')
	default:
		return "", types.NewFormatError(types.KindInternal, FormatID,
			fmt.Sprintf("geometry %q has unexpected coordinate shape %T", g.Type, g.Coordinates))
	}
	return b.String(), nil
}

func hasZ(g *geometry.Geometry) bool {
	ps := g.Positions()
	return len(ps) > 0 && len(ps[0]) == 3
}

func writePosition(b *strings.Builder, pos geometry.Position) {
	for i, v := range pos {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(geometry.FormatOrdinate(v))
	}
}

func writePositionList(b *strings.Builder, ps []geometry.Position) {
	b.WriteByte('(')
	for i, pos := range ps {
		if i > 0 {
			b.WriteString(", ")
		}
		writePosition(b, pos)
	}
	b.WriteByte(')')
}

func writeListOfLists(b *strings.Builder, lists [][]geometry.Position) {
	b.WriteByte('(')
	for i, ps := range lists {
		if i > 0 {
			b.WriteString(", ")
		}
		writePositionList(b, ps)
	}
	b.WriteByte(')')
}
