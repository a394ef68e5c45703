package fbx

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// binaryReader decodes binary FBX back into nodes so tests can compare trees.

type positionReader struct {
	r        io.Reader
	position int64
}

func (r *positionReader) Read(p []byte) (n int, err error) {
	n, err = r.r.Read(p)
	r.position += int64(n)
	return n, err
}

type binaryReader struct {
	r       *positionReader
	version uint32
	err     error
}

func (p *binaryReader) read(v interface{}) error {
	if p.err == nil {
		p.err = binary.Read(p.r, binary.LittleEndian, v)
	}
	return p.err
}

func (p *binaryReader) readUint8() uint8 {
	var v uint8
	p.read(&v)
	return v
}

func (p *binaryReader) readUint32() uint32 {
	var v uint32
	p.read(&v)
	return v
}

func (p *binaryReader) readOffset() uint64 {
	if p.version >= 7500 {
		var v uint64
		p.read(&v)
		return v
	}
	return uint64(p.readUint32())
}

func (p *binaryReader) readString(n uint) string {
	b := make([]byte, n)
	p.read(b)
	return string(b)
}

func (p *binaryReader) readArray(typ PropertyType) (Property, uint32) {
	count := p.readUint32()
	encoding := p.readUint32()
	sz := p.readUint32()
	data := make([]byte, sz)
	p.read(data)
	if p.err != nil {
		return Property{}, encoding
	}
	var r io.Reader = bytes.NewReader(data)
	if encoding == 1 {
		zr, err := zlib.NewReader(r)
		if err != nil {
			p.err = err
			return Property{}, encoding
		}
		defer zr.Close()
		r = zr
	}
	var v interface{}
	switch typ {
	case TypeBoolArray:
		raw := make([]byte, count)
		p.err = binary.Read(r, binary.LittleEndian, raw)
		a := make([]bool, count)
		for i, b := range raw {
			a[i] = b != 0
		}
		v = a
	case TypeInt32Array:
		a := make([]int32, count)
		p.err = binary.Read(r, binary.LittleEndian, a)
		v = a
	case TypeInt64Array:
		a := make([]int64, count)
		p.err = binary.Read(r, binary.LittleEndian, a)
		v = a
	case TypeFloat32Array:
		a := make([]float32, count)
		p.err = binary.Read(r, binary.LittleEndian, a)
		v = a
	case TypeFloat64Array:
		a := make([]float64, count)
		p.err = binary.Read(r, binary.LittleEndian, a)
		v = a
	}
	return Property{typ, v}, encoding
}

func (p *binaryReader) readProp() Property {
	typ := PropertyType(p.readUint8())
	switch typ {
	case TypeBool:
		return Bool(p.readUint8() != 0)
	case TypeInt16:
		var v int16
		p.read(&v)
		return Int16(v)
	case TypeInt32:
		var v int32
		p.read(&v)
		return Int32(v)
	case TypeInt64:
		var v int64
		p.read(&v)
		return Int64(v)
	case TypeFloat32:
		var v float32
		p.read(&v)
		return Float32(v)
	case TypeFloat64:
		var v float64
		p.read(&v)
		return Float64(v)
	case TypeString:
		return String(p.readString(uint(p.readUint32())))
	case TypeBinary:
		buf := make([]byte, p.readUint32())
		p.read(buf)
		return Binary(buf)
	case TypeBoolArray, TypeInt32Array, TypeInt64Array, TypeFloat32Array, TypeFloat64Array:
		prop, _ := p.readArray(typ)
		return prop
	}
	if p.err == nil {
		p.err = fmt.Errorf("unknown prop type: %v", typ)
	}
	return Property{}
}

// readNode returns nil for a null record.
func (p *binaryReader) readNode() *Node {
	next := p.readOffset()
	nprop := p.readOffset()
	propsz := p.readOffset()
	name := p.readString(uint(p.readUint8()))
	if p.err != nil || next == 0 {
		return nil
	}
	n := &Node{Name: name}
	start := p.r.position
	for i := uint64(0); i < nprop && p.err == nil; i++ {
		n.Properties = append(n.Properties, p.readProp())
	}
	if p.err == nil && uint64(p.r.position-start) != propsz {
		p.err = fmt.Errorf("%s: property length %d != %d", name, p.r.position-start, propsz)
	}
	for p.err == nil && uint64(p.r.position) < next {
		child := p.readNode()
		if child != nil {
			n.Children = append(n.Children, child)
		}
	}
	if p.err == nil && uint64(p.r.position) != next {
		p.err = fmt.Errorf("%s: end offset %d != %d", name, next, p.r.position)
	}
	return n
}

// Parse reads a whole document and returns the top-level nodes.
// The stream must end right after the footer.
func (p *binaryReader) Parse() ([]*Node, error) {
	if p.readString(uint(len(binaryMagic))) != binaryMagic {
		return nil, fmt.Errorf("unknown fbx format")
	}
	p.version = p.readUint32()

	var nodes []*Node
	for p.err == nil {
		node := p.readNode()
		if node == nil {
			break
		}
		nodes = append(nodes, node)
	}
	if p.err != nil {
		return nil, p.err
	}

	footer := make([]byte, 16+4)
	p.read(footer)
	if p.err == nil && !bytes.Equal(footer[:16], binaryFooterID) {
		return nil, fmt.Errorf("bad footer id at %d", p.r.position-20)
	}
	rest, err := io.ReadAll(p.r)
	if err != nil {
		return nil, err
	}
	pad := len(rest) - 4 - 120 - 16
	aligned := p.r.position - int64(len(rest)) + int64(pad)
	if pad < 1 || pad > 16 || aligned%16 != 0 {
		return nil, fmt.Errorf("bad footer padding %d", pad)
	}
	if binary.LittleEndian.Uint32(rest[pad:]) != p.version {
		return nil, fmt.Errorf("footer version mismatch")
	}
	if !bytes.HasSuffix(rest, binaryFooterMagic) {
		return nil, fmt.Errorf("bad footer magic")
	}
	return nodes, p.err
}

func decodeBinary(data []byte) ([]*Node, uint32, error) {
	p := &binaryReader{r: &positionReader{r: bytes.NewReader(data)}}
	nodes, err := p.Parse()
	return nodes, p.version, err
}
