package contentline

import (
	"fmt"
	"io"
	"iter"
	"runtime"
	"unicode/utf8"
)

// Parser drives a lineReader and, per logical line, a freshly constructed
// lexer, assembling items into a tree of Components. A Parser is not safe
// for concurrent use.
type Parser struct {
	lr *lineReader

	lex      *lexer // lexer for the logical line currently being consumed, nil between lines
	lineText string // text of the logical line the current lexer was built from
	lineNo   int    // 1-based line number of lineText
}

// Parse returns a Parser reading content-lines from r.
func Parse(r io.Reader) *Parser {
	return &Parser{lr: newLineReader(r)}
}

// Next returns the next top-level Component, or io.EOF once the stream is
// exhausted cleanly. Any other error leaves the Parser's further behavior
// unspecified; callers should stop calling Next after the first error other
// than io.EOF.
func (p *Parser) Next() (c *Component, err error) {
	defer p.recover(&err)

	it, ok := p.getNextItem()
	if !ok {
		return nil, io.EOF
	}
	switch it.typ {
	case itemBegin:
		return p.parseComponent(), nil
	default:
		panic(p.malformed("expected BEGIN", it))
	}
}

// ReadAll reads every top-level Component from the stream.
func (p *Parser) ReadAll() ([]*Component, error) {
	var out []*Component
	for {
		c, err := p.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
}

// All returns a streaming iterator over the Components in the source. The
// iterator yields (nil, err) for any error other than clean end of stream,
// and stops (without an error pair) once the stream is exhausted.
func (p *Parser) All() iter.Seq2[*Component, error] {
	return func(yield func(*Component, error) bool) {
		for {
			c, err := p.Next()
			if err == io.EOF {
				return
			}
			if !yield(c, err) {
				return
			}
			if err != nil {
				return
			}
		}
	}
}

// recover catches the internal panic(error) control flow used to unwind
// out of the parseComponent/parseProperty recursion on the first error, and
// binds it to *errp. It does not recover a runtime panic (an actual bug).
func (p *Parser) recover(errp *error) {
	e := recover()
	if e == nil {
		return
	}
	if _, ok := e.(runtime.Error); ok {
		panic(e)
	}
	*errp = e.(error)
}

// parseComponent parses the Component whose opening Begin item was already
// consumed.
func (p *Parser) parseComponent() *Component {
	it, ok := p.getNextItem()
	if !ok || it.typ != itemCompName {
		panic(fmt.Errorf("unexpected token stream state after BEGIN"))
	}
	comp := &Component{Name: it.val}

	for {
		it, ok := p.getNextItem()
		if !ok {
			panic(&UnexpectedEOFError{Component: comp.Name, Line: p.lineNo})
		}
		switch it.typ {
		case itemBegin:
			comp.SubComponents = append(comp.SubComponents, p.parseComponent())
		case itemID:
			comp.Properties = append(comp.Properties, p.parseProperty(it.val))
		case itemEnd:
			it, ok := p.getNextItem()
			if !ok || it.typ != itemCompName {
				panic(fmt.Errorf("unexpected token stream state after END"))
			}
			if it.val != comp.Name {
				panic(p.malformed(fmt.Sprintf("expected \"END:%s\"", comp.Name), it))
			}
			return comp
		default:
			panic(fmt.Errorf("unexpected item type in component body"))
		}
	}
}

// parseProperty parses the rest of a property line, having already consumed
// its name item.
func (p *Parser) parseProperty(name string) *Property {
	prop := &Property{
		Name:       name,
		Parameters: Parameters{},
		OldLine:    &LineRef{Text: p.lineText, Line: p.lineNo},
	}
	lastParamName := ""
	for {
		it, ok := p.getNextItem()
		if !ok {
			panic(fmt.Errorf("unexpected end of input while reading property %q", name))
		}
		switch it.typ {
		case itemID:
			lastParamName = it.val
		case itemParamValue:
			prop.Parameters[lastParamName] = append(prop.Parameters[lastParamName], it.val)
		case itemPropValue:
			prop.Value = it.val
			return prop
		default:
			panic(fmt.Errorf("unexpected item type in property body"))
		}
	}
}

// getNextItem returns the next normalized lexer item, reading (and
// unfolding) a fresh logical line whenever the current lexer is exhausted.
// It uppercases CompName/Id values, RFC 6868-unescapes ParamValue values,
// and turns a lexer Error item into a panic carrying a *MalformedError. The
// second return value is false only at clean end of stream.
func (p *Parser) getNextItem() (item, bool) {
	if p.lex == nil {
		raw, lineNo, err := p.lr.next()
		if err != nil {
			panic(err)
		}
		if raw == nil {
			return item{}, false
		}
		if !utf8.Valid(raw) {
			panic(&UTF8Error{Line: lineNo, Err: fmt.Errorf("invalid UTF-8 byte sequence at byte offset %d", firstInvalidUTF8Offset(raw))})
		}
		p.lineText = string(raw)
		p.lineNo = lineNo
		p.lex = newLexer(p.lineText, lineNo)
	}

	it := p.lex.nextItem()
	switch it.typ {
	case itemError:
		p.lex = nil
		panic(p.lexerError(it))
	case itemCompName:
		it.val = upperASCII(it.val)
		p.lex = nil
	case itemID:
		it.val = upperASCII(it.val)
	case itemPropValue:
		p.lex = nil
	case itemParamValue:
		it.val = Unescape(it.val)
	}
	return it, true
}

// malformed builds a *MalformedError attributing the full length of it.val
// to the offending region. Used for parser-synthesized diagnostics, where
// it is a genuine token (not a raw lexer error message).
func (p *Parser) malformed(msg string, it item) *MalformedError {
	return &MalformedError{Msg: msg, Ctx: p.lineText, Pos: it.pos, Len: len(it.val), LineNo: it.line}
}

// lexerError wraps a lexer-reported Error item. The lexer packs its message
// into it.val with a zero-width token position, so (matching the historical
// convention this format's error rendering descends from) the highlighted
// region is pinned to exactly one byte at it.pos.
func (p *Parser) lexerError(it item) *MalformedError {
	return &MalformedError{Msg: it.val, Ctx: p.lineText, Pos: it.pos, Len: 1, LineNo: it.line}
}

// firstInvalidUTF8Offset returns the byte offset of the first ill-formed
// rune in raw, which must itself fail utf8.Valid.
func firstInvalidUTF8Offset(raw []byte) int {
	for i := 0; i < len(raw); {
		r, size := utf8.DecodeRune(raw[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return len(raw)
}

func upperASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}
