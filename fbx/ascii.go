package fbx

import (
	"encoding/base64"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/go-kit/log/level"
)

// ASCIIEmitter writes the text variant of FBX.
//
// Whether a node needs braces is only known once its first child starts or
// it ends, so the opening brace of a parent is written by its first child.
type ASCIIEmitter struct {
	documentState
	w   *positionWriter
	buf []byte

	// lineOpen is set while a node line is waiting for " {" or a line break.
	// Comments arriving then are held until the line is terminated.
	lineOpen bool
	pending  []pendingComment
}

type pendingComment struct {
	depth int
	line  string
}

var stringEscaper = strings.NewReplacer(`"`, "&quot;", "\n", "&lf;", "\r", "&cr;")

func NewASCIIEmitter(w io.Writer) *ASCIIEmitter {
	return &ASCIIEmitter{documentState: newDocumentState(), w: &positionWriter{w: w}}
}

func (e *ASCIIEmitter) StartDocument(v Version) error {
	if err := e.begin(v); err != nil {
		return err
	}
	e.w.err = nil
	e.w.position = 0
	e.lineOpen = false
	e.pending = e.pending[:0]
	fmt.Fprintf(e.w, "; FBX %d.%d.%d project file\n", v.Major(), v.Minor(), v.Revision())
	return e.fail(e.w.err)
}

func (e *ASCIIEmitter) EndDocument() error {
	if err := e.check("EndDocument"); err != nil {
		return err
	}
	if err := e.finish(); err != nil {
		return err
	}
	if f, ok := e.w.w.(interface{ Flush() error }); ok {
		if err := f.Flush(); err != nil {
			return e.fail(ioError(e.w.position, err, "flush"))
		}
	}
	return nil
}

func (e *ASCIIEmitter) StartNode(name string, props ...Property) error {
	if err := e.check("StartNode"); err != nil {
		return err
	}
	if err := checkNodeName(name); err != nil {
		return e.fail(err)
	}
	if err := validateProperties(props); err != nil {
		return e.fail(err)
	}

	if e.stack.markChild() {
		// First child of the parent.
		e.w.WriteString(" {\n")
		e.endLine()
	}
	e.indent(len(e.stack))
	e.stack.push(nodeState{hasProps: len(props) > 0})
	e.w.WriteString(name)
	e.w.WriteString(":")

	depth := len(e.stack)
	for i, p := range props {
		if i == 0 {
			e.w.WriteString(" ")
		} else {
			e.w.WriteString(", ")
		}
		e.writeProperty(p, depth)
	}
	e.lineOpen = true
	return e.fail(e.w.err)
}

func (e *ASCIIEmitter) EndNode() error {
	if err := e.check("EndNode"); err != nil {
		return err
	}
	st, ok := e.stack.pop()
	if !ok {
		return e.fail(contractError("EndNode called without an open node"))
	}
	depth := len(e.stack)
	switch {
	case !st.hasProps && !st.hasChild:
		e.w.WriteString(" {\n")
		e.endLine()
		e.indent(depth)
		e.w.WriteString("}\n")
	case st.hasChild:
		e.indent(depth)
		e.w.WriteString("}\n")
	default:
		e.w.WriteString("\n")
		e.endLine()
	}
	return e.fail(e.w.err)
}

// Comment writes each line of text as a comment indented to the current depth.
// Lines are prefixed with "; " unless they already start with ';', and an
// empty line becomes a bare ";". It has no effect on the node structure.
func (e *ASCIIEmitter) Comment(text string) error {
	if err := e.check("Comment"); err != nil {
		return err
	}
	for _, line := range commentLines(text) {
		if e.lineOpen {
			e.pending = append(e.pending, pendingComment{len(e.stack), line})
			continue
		}
		e.writeComment(len(e.stack), line)
	}
	return e.fail(e.w.err)
}

func commentLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

func (e *ASCIIEmitter) writeComment(depth int, line string) {
	e.indent(depth)
	if line == "" {
		e.w.WriteString(";\n")
		return
	}
	if !strings.HasPrefix(line, ";") {
		e.w.WriteString("; ")
	}
	e.w.WriteString(line)
	e.w.WriteString("\n")
}

func (e *ASCIIEmitter) endLine() {
	e.lineOpen = false
	for _, c := range e.pending {
		e.writeComment(c.depth, c.line)
	}
	e.pending = e.pending[:0]
}

func (e *ASCIIEmitter) indent(depth int) {
	e.w.Write(appendIndent(e.buf[:0], depth))
}

func appendIndent(b []byte, depth int) []byte {
	for i := 0; i < depth; i++ {
		b = append(b, '\t')
	}
	return b
}

func appendBool(b []byte, v bool) []byte {
	if v {
		return append(b, 'Y')
	}
	return append(b, 'T')
}

// appendFloat writes the shortest fixed-point decimal that parses back to the same value.
func appendFloat(b []byte, v float64, bitSize int) []byte {
	switch {
	case math.IsNaN(v):
		return append(b, "NaN"...)
	case math.IsInf(v, 1):
		return append(b, "Inf"...)
	case math.IsInf(v, -1):
		return append(b, "-Inf"...)
	}
	return strconv.AppendFloat(b, v, 'f', -1, bitSize)
}

// writeProperty writes p on a node line at depth (the node's own depth + 1).
func (e *ASCIIEmitter) writeProperty(p Property, depth int) {
	b := e.buf[:0]
	switch v := p.Value.(type) {
	case bool:
		b = appendBool(b, v)
	case int16:
		b = strconv.AppendInt(b, int64(v), 10)
	case int32:
		b = strconv.AppendInt(b, int64(v), 10)
	case int64:
		b = strconv.AppendInt(b, v, 10)
	case float32:
		b = appendFloat(b, float64(v), 32)
	case float64:
		b = appendFloat(b, v, 64)
	case string:
		b = append(b, '"')
		b = append(b, stringEscaper.Replace(v)...)
		b = append(b, '"')
	case []byte:
		// TODO: fold long lines like the FBX SDK does.
		b = append(b, '"')
		b = append(b, base64.StdEncoding.EncodeToString(v)...)
		b = append(b, '"')
	default:
		b = e.appendArray(b, p, depth)
	}
	e.buf = b
	e.w.Write(b)
}

func (e *ASCIIEmitter) appendArray(b []byte, p Property, depth int) []byte {
	b = append(b, '*')
	b = strconv.AppendInt(b, int64(p.Len()), 10)
	b = append(b, " {\n"...)
	b = appendIndent(b, depth)
	b = append(b, "a: "...)
	switch v := p.Value.(type) {
	case []bool:
		level.Warn(e.logger).Log("msg", "bool array in ASCII FBX may not be readable by other tools", "count", len(v))
		for i, x := range v {
			if i > 0 {
				b = append(b, ',')
			}
			b = appendBool(b, x)
		}
	case []int32:
		for i, x := range v {
			if i > 0 {
				b = append(b, ',')
			}
			b = strconv.AppendInt(b, int64(x), 10)
		}
	case []int64:
		for i, x := range v {
			if i > 0 {
				b = append(b, ',')
			}
			b = strconv.AppendInt(b, x, 10)
		}
	case []float32:
		for i, x := range v {
			if i > 0 {
				b = append(b, ',')
			}
			b = appendFloat(b, float64(x), 32)
		}
	case []float64:
		for i, x := range v {
			if i > 0 {
				b = append(b, ',')
			}
			b = appendFloat(b, x, 64)
		}
	}
	b = append(b, '\n')
	b = appendIndent(b, depth-1)
	return append(b, '}')
}
