package contentline

import (
	"strings"
	"unicode/utf8"

	"io"
)

// foldingLength is the maximum number of octets, CRLF excluded, the encoder
// will put on one physical line before folding.
const foldingLength = 75

// Encoder serializes a Component tree to folded, RFC 6868-escaped
// content-line bytes. An Encoder is not safe for concurrent use.
type Encoder struct {
	w   io.Writer
	buf []byte // the current, not-yet-flushed physical line
}

// NewEncoder returns an Encoder that writes to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode writes c, recursively, as BEGIN:<NAME>, its properties, its
// sub-components, then END:<NAME>, each folded to at most foldingLength
// octets per physical line.
func (e *Encoder) Encode(c *Component) error {
	if err := e.writeFolded(compBeginKeyword + ":" + strings.ToUpper(c.Name)); err != nil {
		return err
	}
	if err := e.endLine(); err != nil {
		return err
	}
	for _, p := range c.Properties {
		if err := e.encodeProperty(p); err != nil {
			return err
		}
	}
	for _, sub := range c.SubComponents {
		if err := e.Encode(sub); err != nil {
			return err
		}
	}
	if err := e.writeFolded(compEndKeyword + ":" + strings.ToUpper(c.Name)); err != nil {
		return err
	}
	return e.endLine()
}

// EncodeAll writes every Component in cs, in order.
func (e *Encoder) EncodeAll(cs []*Component) error {
	for _, c := range cs {
		if err := e.Encode(c); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) encodeProperty(p *Property) error {
	if err := e.writeFolded(strings.ToUpper(p.Name)); err != nil {
		return err
	}
	for name, values := range p.Parameters {
		if err := e.writeFolded(";" + strings.ToUpper(name) + "="); err != nil {
			return err
		}
		for i, v := range values {
			if i > 0 {
				if err := e.writeFolded(","); err != nil {
					return err
				}
			}
			escaped := Escape(v)
			if strings.ContainsAny(escaped, ",;:") {
				escaped = `"` + escaped + `"`
			}
			if err := e.writeFolded(escaped); err != nil {
				return err
			}
		}
	}
	if err := e.writeFolded(":" + p.Value); err != nil {
		return err
	}
	return e.endLine()
}

// endLine flushes the buffered physical line plus a trailing CRLF and
// starts a fresh, empty line.
func (e *Encoder) endLine() error {
	if _, err := e.w.Write(e.buf); err != nil {
		return err
	}
	if _, err := e.w.Write(crlf); err != nil {
		return err
	}
	e.buf = e.buf[:0]
	return nil
}

var crlf = []byte("\r\n")

// writeFolded appends data to the buffered physical line, flushing and
// starting new continuation lines (CRLF + a single leading SP) as needed to
// keep every physical line at or under foldingLength octets. Every fold
// point lands on a UTF-8 character boundary.
func (e *Encoder) writeFolded(data string) error {
	for len(e.buf)+len(data) > foldingLength {
		dlen := foldingLength - len(e.buf)
		for dlen > 0 && !utf8.RuneStart(data[dlen]) {
			dlen--
		}

		if _, err := e.w.Write(e.buf); err != nil {
			return err
		}
		if _, err := e.w.Write([]byte(data[:dlen])); err != nil {
			return err
		}
		if _, err := e.w.Write(crlf); err != nil {
			return err
		}

		e.buf = append(e.buf[:0], ' ')
		data = data[dlen:]
	}
	e.buf = append(e.buf, data...)
	return nil
}

// EncodeToString renders c to a string. It never returns an error: the sink
// is an in-memory buffer.
func EncodeToString(c *Component) string {
	var sb strings.Builder
	_ = NewEncoder(&sb).Encode(c)
	return sb.String()
}
