package contentline

import "github.com/alecthomas/repr"

// Dump renders c as a Go-expression-like tree for debugging, using
// alecthomas/repr with two-space indentation and empty fields omitted.
func (c *Component) Dump() string {
	return repr.String(c, repr.Indent("  "), repr.OmitEmpty(true))
}

// Dump renders p the same way Component.Dump does.
func (p *Property) Dump() string {
	return repr.String(p, repr.Indent("  "), repr.OmitEmpty(true))
}
