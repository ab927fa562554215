// Package gen emits the generated source consumed by the code generator
// runtime: the deduplicated table of type sets, the operand constraint enum,
// and a summary of every type variable.
package gen

import (
	"fmt"
	"io"
	"strings"
)

const indentUnit = "    "

// Formatter accumulates indented source lines.
type Formatter struct {
	buf    strings.Builder
	indent int
}

// NewFormatter creates an empty formatter.
func NewFormatter() *Formatter {
	return &Formatter{}
}

// Line writes one line at the current indentation. An empty line is written
// without trailing whitespace.
func (f *Formatter) Line(s string) {
	if s != "" {
		for i := 0; i < f.indent; i++ {
			f.buf.WriteString(indentUnit)
		}
		f.buf.WriteString(s)
	}
	f.buf.WriteByte('\n')
}

// Linef writes a formatted line.
func (f *Formatter) Linef(format string, args ...any) {
	f.Line(fmt.Sprintf(format, args...))
}

// Comment writes a "//" comment line.
func (f *Formatter) Comment(s string) {
	f.Line("// " + s)
}

// Doc writes a "///" documentation line for the item that follows.
func (f *Formatter) Doc(s string) {
	f.Line("/// " + s)
}

// Indented writes open, then the lines produced by body one level deeper,
// then close.
func (f *Formatter) Indented(open, close string, body func()) {
	if open != "" {
		f.Line(open)
	}
	f.indent++
	body()
	f.indent--
	if close != "" {
		f.Line(close)
	}
}

// String returns everything written so far.
func (f *Formatter) String() string {
	return f.buf.String()
}

// WriteTo writes the accumulated text to w.
func (f *Formatter) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, f.buf.String())
	return int64(n), err
}
