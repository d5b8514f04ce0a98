package contentline

import (
	"bufio"
	"errors"
	"io"
)

// lineReader reads CRLF-terminated logical lines from an arbitrary byte
// source, unfolding continuation lines (RFC 5545 §3.1) along the way. It
// mirrors the *bufio.Reader-wrapping shape of knakk-rdf's lexer.rdr field,
// but never runs on a separate goroutine, unlike that lexer.
type lineReader struct {
	r    *bufio.Reader
	line int // 1-based number of the last raw line read
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{r: bufio.NewReader(r)}
}

// next reads and unfolds the next logical line. It returns a nil line and a
// nil error at clean EOF (no more lines). lineNo is the 1-based line at which the
// returned logical line started.
func (lr *lineReader) next() (line []byte, lineNo int, err error) {
	raw, err := lr.readRaw()
	if err != nil {
		return nil, 0, err
	}
	if raw == nil {
		return nil, 0, nil
	}
	lineNo = lr.line

	for {
		more, peekErr := lr.peekIsContinuation()
		if peekErr != nil {
			return nil, 0, peekErr
		}
		if !more {
			break
		}
		cont, err := lr.readRaw()
		if err != nil {
			return nil, 0, err
		}
		// cont is guaranteed non-nil: peekIsContinuation only reports true
		// when a further raw line is actually available.
		raw = append(raw, cont[1:]...)
	}

	return raw, lineNo, nil
}

// readRaw reads one CR-LF-terminated raw line, strips the terminator, and
// increments the line counter. It returns (nil, nil) at true EOF.
func (lr *lineReader) readRaw() ([]byte, error) {
	buf, err := lr.r.ReadBytes('\n')
	if err != nil && len(buf) == 0 {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	lr.line++

	if err != nil {
		// Got a non-empty tail with no trailing LF: that's the true-EOF
		// partial line. Every line of a content-line stream, the last one
		// included, ends in CRLF, so any such tail (even one ending in CR)
		// is malformed rather than a legal quirk.
		if !errors.Is(err, io.EOF) {
			return nil, err
		}
		return nil, &CRLFError{Raw: buf, Line: lr.line, HasNext: false}
	}

	// buf ends with '\n'; strip it and check for the mandatory CR.
	buf = buf[:len(buf)-1]
	if len(buf) == 0 {
		// A raw line that is just "\n" is only valid as the very last line
		// of the stream (the documented quirk: trailing "\n" is
		// indistinguishable from no trailing line at all).
		if lr.atEOF() {
			return nil, nil
		}
		return nil, &CRLFError{Raw: buf, Line: lr.line, HasNext: true}
	}
	if buf[len(buf)-1] != '\r' {
		return nil, &CRLFError{Raw: buf, Line: lr.line, HasNext: !lr.atEOF()}
	}
	return buf[:len(buf)-1], nil
}

// atEOF reports whether the underlying reader has no more bytes buffered or
// available without blocking further than a single byte peek.
func (lr *lineReader) atEOF() bool {
	_, err := lr.r.Peek(1)
	return errors.Is(err, io.EOF)
}

// peekIsContinuation reports whether the next raw line exists, is
// non-empty, and begins with SP or HTAB (i.e. should be unfolded into the
// line just read).
func (lr *lineReader) peekIsContinuation() (bool, error) {
	b, err := lr.r.Peek(1)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, err
	}
	return b[0] == ' ' || b[0] == '\t', nil
}
