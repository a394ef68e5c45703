package fbx

import (
	"encoding/binary"
	"io"
)

const (
	binaryMagic = "Kaydara FBX Binary  \x00\x1a\x00"

	// DefaultCompressThreshold is the raw array size in bytes from which arrays are deflated.
	DefaultCompressThreshold = 128
)

var (
	binaryFooterID    = []byte{0xfa, 0xbc, 0xab, 0x09, 0xd0, 0xc8, 0xd4, 0x66, 0xb1, 0x76, 0xfb, 0x83, 0x1c, 0xf7, 0x26, 0x7e}
	binaryFooterMagic = []byte{0xf8, 0x5a, 0x8c, 0x6a, 0xde, 0xf5, 0xd9, 0x7e, 0xec, 0xe9, 0x0c, 0xe3, 0x75, 0x8f, 0x29, 0x0b}
)

// BinaryEmitter writes the binary variant of FBX.
//
// Each node record starts with the offset of its end, which is unknown until
// EndNode; a placeholder is written and patched by seeking back, so the sink
// must be seekable. Offsets are relative to the position of StartDocument.
type BinaryEmitter struct {
	documentState
	w    io.WriteSeeker
	pw   *positionWriter
	base int64
	buf  []byte

	// CompressThreshold is the raw array size in bytes from which arrays
	// are zlib compressed. Zero or negative disables compression.
	CompressThreshold int
}

func NewBinaryEmitter(w io.WriteSeeker) *BinaryEmitter {
	return &BinaryEmitter{
		documentState:     newDocumentState(),
		w:                 w,
		pw:                &positionWriter{w: w},
		CompressThreshold: DefaultCompressThreshold,
	}
}

func (e *BinaryEmitter) largeOffsets() bool {
	return e.version >= largeOffsetVersion
}

func (e *BinaryEmitter) nullRecordSize() int {
	if e.largeOffsets() {
		return 25
	}
	return 13
}

func (e *BinaryEmitter) StartDocument(v Version) error {
	if err := e.begin(v); err != nil {
		return err
	}
	base, err := e.w.Seek(0, io.SeekCurrent)
	if err != nil {
		return e.fail(ioError(-1, err, "seek"))
	}
	e.base = base
	e.pw.position = 0
	e.pw.err = nil

	b := append(e.buf[:0], binaryMagic...)
	b = binary.LittleEndian.AppendUint32(b, uint32(v))
	e.buf = b
	e.pw.Write(b)
	return e.fail(e.pw.err)
}

func (e *BinaryEmitter) EndDocument() error {
	if err := e.check("EndDocument"); err != nil {
		return err
	}
	if err := e.finish(); err != nil {
		return err
	}
	b := make([]byte, e.nullRecordSize(), e.nullRecordSize()+160)
	b = append(b, binaryFooterID...)
	b = append(b, 0, 0, 0, 0)
	end := e.pw.position + int64(len(b))
	pad := int((end+15)&^15 - end)
	if pad == 0 {
		pad = 16
	}
	b = append(b, make([]byte, pad)...)
	b = binary.LittleEndian.AppendUint32(b, uint32(e.version))
	b = append(b, make([]byte, 120)...)
	b = append(b, binaryFooterMagic...)
	e.pw.Write(b)
	return e.fail(e.pw.err)
}

func (e *BinaryEmitter) StartNode(name string, props ...Property) error {
	if err := e.check("StartNode"); err != nil {
		return err
	}
	if err := checkNodeName(name); err != nil {
		return e.fail(err)
	}
	if len(name) > 255 {
		return e.fail(contractError("node name %q is longer than 255 bytes", name[:32]+"..."))
	}
	if err := validateProperties(props); err != nil {
		return e.fail(err)
	}
	e.stack.markChild()

	// Properties are encoded first so that their length is known.
	pb := e.buf[:0]
	for _, p := range props {
		var err error
		if pb, err = e.appendProperty(pb, p); err != nil {
			return e.fail(err)
		}
	}

	st := nodeState{hasProps: len(props) > 0, endOffsetPos: e.pw.position}
	h := make([]byte, 0, 25+len(name))
	if e.largeOffsets() {
		h = binary.LittleEndian.AppendUint64(h, 0)
		h = binary.LittleEndian.AppendUint64(h, uint64(len(props)))
		h = binary.LittleEndian.AppendUint64(h, uint64(len(pb)))
	} else {
		if uint64(len(pb)) > 0xffffffff {
			return e.fail(contractError("properties of %q exceed 4GiB; use version %d or later", name, largeOffsetVersion))
		}
		h = binary.LittleEndian.AppendUint32(h, 0)
		h = binary.LittleEndian.AppendUint32(h, uint32(len(props)))
		h = binary.LittleEndian.AppendUint32(h, uint32(len(pb)))
	}
	h = append(h, byte(len(name)))
	h = append(h, name...)
	e.buf = pb

	e.stack.push(st)
	e.pw.Write(h)
	e.pw.Write(pb)
	return e.fail(e.pw.err)
}

func (e *BinaryEmitter) EndNode() error {
	if err := e.check("EndNode"); err != nil {
		return err
	}
	st, ok := e.stack.pop()
	if !ok {
		return e.fail(contractError("EndNode called without an open node"))
	}
	if st.hasChild || !st.hasProps {
		e.pw.Write(make([]byte, e.nullRecordSize()))
	}
	if e.pw.err != nil {
		return e.fail(e.pw.err)
	}
	return e.fail(e.patchOffset(st.endOffsetPos, e.pw.position))
}

// patchOffset writes value at pos and returns to the current end of output.
func (e *BinaryEmitter) patchOffset(pos, value int64) error {
	var b []byte
	if e.largeOffsets() {
		b = binary.LittleEndian.AppendUint64(nil, uint64(value))
	} else {
		if value > 0xffffffff {
			return contractError("document exceeds 4GiB; use version %d or later", largeOffsetVersion)
		}
		b = binary.LittleEndian.AppendUint32(nil, uint32(value))
	}
	if _, err := e.w.Seek(e.base+pos, io.SeekStart); err != nil {
		return ioError(pos, err, "seek")
	}
	if _, err := e.w.Write(b); err != nil {
		return ioError(pos, err, "patch end offset")
	}
	if _, err := e.w.Seek(e.base+value, io.SeekStart); err != nil {
		return ioError(value, err, "seek")
	}
	return nil
}

// Comment does nothing. Binary FBX has no comments.
func (e *BinaryEmitter) Comment(text string) error {
	return e.check("Comment")
}
