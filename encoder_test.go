package contentline

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeMinimal(t *testing.T) {
	comp := MustNewComponent("COMP")
	got := EncodeToString(comp)
	require.Equal(t, "BEGIN:COMP\r\nEND:COMP\r\n", got)
}

func TestEncodeSimpleProperty(t *testing.T) {
	comp := MustNewComponent("COMP")
	p := MustNewProperty("FN", "John Doe")
	comp.AddProperty(p)
	got := EncodeToString(comp)
	want := "BEGIN:COMP\r\nFN:John Doe\r\nEND:COMP\r\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestEncodeQuotesParamValueContainingDelimiters(t *testing.T) {
	p := MustNewProperty("ADR", "street")
	require.NoError(t, p.AddParam("LABEL", "one, two"))
	comp := MustNewComponent("COMP")
	comp.AddProperty(p)
	got := EncodeToString(comp)
	assert.Contains(t, got, `LABEL="one, two"`)
}

func TestEncodeEscapesRFC6868Sequences(t *testing.T) {
	p := MustNewProperty("FEATURE", "LoremIpsum")
	if err := p.AddParam("PAR1", "e\"\n"); err != nil {
		t.Fatalf("AddParam: %v", err)
	}
	comp := MustNewComponent("COMP")
	comp.AddProperty(p)
	got := EncodeToString(comp)
	if !strings.Contains(got, `e^'^n`) {
		t.Errorf("got %q, want escaped PAR1 value", got)
	}
}

func TestEncodeFoldsLongLines(t *testing.T) {
	comp := MustNewComponent("HOUSE")
	p := MustNewProperty("HEATING", "electric")
	longComment := "This is a very long comment,11 monkeys hat to paint 200 ❤s to write this thing."
	if err := p.AddParam("COMMENT", longComment); err != nil {
		t.Fatalf("AddParam: %v", err)
	}
	comp.AddProperty(p)
	got := EncodeToString(comp)

	for _, physical := range strings.Split(strings.TrimSuffix(got, "\r\n"), "\r\n") {
		if len(physical) > 75 {
			t.Errorf("physical line %q has length %d, want <= 75", physical, len(physical))
		}
	}
	if !utf8.ValidString(got) {
		t.Error("encoded output is not valid UTF-8 (fold split a multi-byte character)")
	}

	reparsed, err := Parse(strings.NewReader(got)).Next()
	if err != nil {
		t.Fatalf("reparse error: %v", err)
	}
	gotVals := reparsed.Properties[0].ParamValues("COMMENT")
	if len(gotVals) != 1 || gotVals[0] != longComment {
		t.Errorf("got COMMENT %v, want [%q]", gotVals, longComment)
	}
}

func TestEncodeNestedComponents(t *testing.T) {
	outer := MustNewComponent("OUTER")
	inner := MustNewComponent("INNER")
	inner.AddProperty(MustNewProperty("FN", "x"))
	outer.AddSubComponent(inner)

	got := EncodeToString(outer)
	want := "BEGIN:OUTER\r\nBEGIN:INNER\r\nFN:x\r\nEND:INNER\r\nEND:OUTER\r\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestEncodeAll(t *testing.T) {
	var sb strings.Builder
	a := MustNewComponent("A")
	b := MustNewComponent("B")
	if err := NewEncoder(&sb).EncodeAll([]*Component{a, b}); err != nil {
		t.Fatalf("EncodeAll: %v", err)
	}
	want := "BEGIN:A\r\nEND:A\r\nBEGIN:B\r\nEND:B\r\n"
	if sb.String() != want {
		t.Errorf("got %q, want %q", sb.String(), want)
	}
}
