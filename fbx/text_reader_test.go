package fbx

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// textReader reads ASCII FBX back into nodes for tests. Numbers come back
// as int64 or float64, arrays as []int64 or []float64, Y/T as bool.

type tokenType int

const (
	tokIdent tokenType = iota
	tokNumber
	tokString
	tokOperator
	tokBlockStart
	tokBlockEnd
	tokEOL
	tokEOF
)

type textReader struct {
	r   io.Reader
	buf []byte
	err error
}

func (p *textReader) errorf(f string, a ...interface{}) error {
	if p.err == nil {
		p.err = fmt.Errorf(f, a...)
	}
	return p.err
}

func (p *textReader) read() byte {
	if len(p.buf) > 0 {
		b := p.buf[0]
		p.buf = p.buf[1:]
		return b
	}
	b := []byte{0}
	if p.err == nil {
		_, p.err = io.ReadFull(p.r, b)
	}
	return b[0]
}

func isIdentByte(c byte) bool {
	return c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '_' || c == '-'
}

func (p *textReader) token() (tokenType, string) {
	for p.err == nil {
		c := p.read()
		switch {
		case p.err != nil:
		case c == ';':
			for p.err == nil && c != '\n' {
				c = p.read()
			}
		case c == ' ' || c == '\t':
		case c == '{':
			return tokBlockStart, "{"
		case c == '}':
			return tokBlockEnd, "}"
		case c == '*' || c == ':' || c == ',':
			return tokOperator, string(c)
		case c == '\n':
			return tokEOL, ""
		case c >= '0' && c <= '9' || c == '.' || c == '-':
			buf := []byte{c}
			for c = p.read(); p.err == nil && (isIdentByte(c) || c == '.'); c = p.read() {
				buf = append(buf, c)
			}
			if p.err == nil {
				p.buf = append(p.buf, c)
			}
			return tokNumber, string(buf)
		case c == '"':
			var buf []byte
			for c = p.read(); c != '"' && p.err == nil; c = p.read() {
				buf = append(buf, c)
			}
			return tokString, string(buf)
		case isIdentByte(c):
			buf := []byte{c}
			for c = p.read(); p.err == nil && isIdentByte(c); c = p.read() {
				buf = append(buf, c)
			}
			if p.err == nil {
				p.buf = append(p.buf, c)
			}
			return tokIdent, string(buf)
		default:
			p.errorf("unexpected byte %q", c)
		}
	}
	return tokEOF, ""
}

func (p *textReader) expect(t tokenType, s string) {
	typ, v := p.token()
	if p.err == nil && (typ != t || v != s) {
		p.errorf("expected %q, got %q", s, v)
	}
}

func parseTextNumber(s string) interface{} {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

func (p *textReader) readArray() interface{} {
	_, s := p.token()
	size, err := strconv.Atoi(s)
	if err != nil {
		p.errorf("array size %q", s)
		return nil
	}
	p.expect(tokBlockStart, "{")
	p.expect(tokEOL, "")
	p.expect(tokIdent, "a")
	p.expect(tokOperator, ":")

	var values []interface{}
	floats := false
	for p.err == nil {
		typ, s := p.token()
		if typ == tokBlockEnd {
			break
		}
		switch typ {
		case tokNumber:
			v := parseTextNumber(s)
			_, isFloat := v.(float64)
			floats = floats || isFloat
			values = append(values, v)
		case tokIdent:
			values = append(values, s == "Y")
		}
	}
	if p.err == nil && len(values) != size {
		p.errorf("array size %d != %d", len(values), size)
	}
	if len(values) > 0 {
		if _, ok := values[0].(bool); ok {
			a := make([]bool, len(values))
			for i, v := range values {
				a[i] = v.(bool)
			}
			return a
		}
	}
	if floats {
		a := make([]float64, len(values))
		for i, v := range values {
			switch v := v.(type) {
			case int64:
				a[i] = float64(v)
			case float64:
				a[i] = v
			}
		}
		return a
	}
	a := make([]int64, len(values))
	for i, v := range values {
		a[i], _ = v.(int64)
	}
	return a
}

func (p *textReader) readNodes() []*Node {
	var nodes []*Node
	for p.err == nil {
		typ, s := p.token()
		if typ == tokEOL {
			continue
		} else if typ == tokEOF || typ == tokBlockEnd {
			break
		} else if typ != tokIdent {
			p.errorf("unexpected token %q", s)
			break
		}
		p.expect(tokOperator, ":")
		node := &Node{Name: s}
		nodes = append(nodes, node)
	line:
		for p.err == nil {
			typ, s := p.token()
			switch typ {
			case tokEOL:
				break line
			case tokBlockStart:
				node.Children = p.readNodes()
				break line
			case tokNumber:
				node.Properties = append(node.Properties, Property{Value: parseTextNumber(s)})
			case tokIdent:
				node.Properties = append(node.Properties, Property{Value: s == "Y"})
			case tokString:
				node.Properties = append(node.Properties, Property{Value: s})
			case tokOperator:
				if s == "*" {
					node.Properties = append(node.Properties, Property{Value: p.readArray()})
				}
			}
		}
	}
	return nodes
}

func decodeText(s string) ([]*Node, error) {
	p := &textReader{r: strings.NewReader(s)}
	nodes := p.readNodes()
	if p.err != nil && p.err != io.EOF {
		return nil, p.err
	}
	return nodes, nil
}
