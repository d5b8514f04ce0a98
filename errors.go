package contentline

import "fmt"

// errorContextRadius is the number of bytes of context shown on each side
// of the offending position in a rendered MalformedError/CRLFError.
const errorContextRadius = 20

// formatPositioned renders the shared "<HERE>" / ">S<" / ">S< rest"
// diagnostic convention: up to errorContextRadius bytes of ctx before pos,
// the ctx[pos:pos+length] substring marked off, and up to errorContextRadius
// bytes of trailing context, each side "..."-truncated when cut short.
func formatPositioned(lineNo int, msg, ctx string, pos, length int) string {
	pos1 := pos
	pos2 := pos1 + length

	var prefix string
	if pos1 > errorContextRadius {
		prefix = "..." + ctx[pos1-errorContextRadius:pos1]
	} else {
		p := pos1
		if p > len(ctx) {
			p = len(ctx)
		}
		prefix = ctx[:p]
	}

	var suffix string
	switch {
	case len(ctx) > errorContextRadius+pos2:
		suffix = ctx[pos1:pos2+errorContextRadius] + "..."
	case pos1 < len(ctx):
		suffix = ctx[pos1:]
	}

	switch len(suffix) {
	case 0:
		return fmt.Sprintf("%d: \t%s: %s<HERE>\n", lineNo, msg, prefix)
	case 1:
		return fmt.Sprintf("%d: \t%s: %s >%s<\n", lineNo, msg, prefix, suffix[:pos2-pos1])
	default:
		return fmt.Sprintf("%d: \t%s: %s >%s< %s\n", lineNo, msg, prefix, suffix[:pos2-pos1], suffix[pos2-pos1:])
	}
}

// MalformedError reports a lexer or parser syntax error pinned to a byte
// offset in the original logical-line text.
type MalformedError struct {
	Msg    string // the lexer's or parser's message
	Ctx    string // the original (un-normalized) logical-line text
	Pos    int    // byte offset into Ctx where the offending token starts
	Len    int    // byte length of the offending token
	LineNo int    // 1-based line the logical line started at
}

func (e *MalformedError) Error() string {
	return formatPositioned(e.LineNo, e.Msg, e.Ctx, e.Pos, e.Len)
}

// CRLFError reports a raw line that did not end with the mandatory CRLF
// sequence (or, equivalently, an empty raw line interleaved where none is
// allowed).
type CRLFError struct {
	Raw     []byte // the raw line as read, CR/LF already stripped where possible
	Line    int    // 1-based number of the offending raw line
	HasNext bool   // whether another raw line follows in the source
}

func (e *CRLFError) Error() string {
	const msg = "expected CR ('\\r') before LF"
	if len(e.Raw) == 0 {
		return fmt.Sprintf("%d: %s in empty line\n", e.Line, msg)
	}
	ctx := string(e.Raw)
	return formatPositioned(e.Line, msg, ctx, len(ctx), 0)
}

// UnexpectedEOFError reports that the input ended while a component begun
// by an earlier BEGIN line was still open.
type UnexpectedEOFError struct {
	Component string // the name on the still-open BEGIN line
	Line      int    // last 1-based line number read before EOF
}

func (e *UnexpectedEOFError) Error() string {
	return fmt.Sprintf("%d: unexpected end of file or stream, expected END:%s", e.Line, e.Component)
}

// UTF8Error reports that a logical line's bytes were not valid UTF-8.
type UTF8Error struct {
	Line int
	Err  error
}

func (e *UTF8Error) Error() string {
	return fmt.Sprintf("%d: %v", e.Line, e.Err)
}

func (e *UTF8Error) Unwrap() error {
	return e.Err
}
