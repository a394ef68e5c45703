package fbx

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/go-kit/log/level"
	"github.com/klauspost/compress/zlib"
)

const (
	arrayEncodingRaw  = 0
	arrayEncodingZlib = 1
)

func (e *BinaryEmitter) appendProperty(b []byte, p Property) ([]byte, error) {
	b = append(b, byte(p.Type))
	switch v := p.Value.(type) {
	case bool:
		if v {
			b = append(b, 1)
		} else {
			b = append(b, 0)
		}
	case int16:
		b = binary.LittleEndian.AppendUint16(b, uint16(v))
	case int32:
		b = binary.LittleEndian.AppendUint32(b, uint32(v))
	case int64:
		b = binary.LittleEndian.AppendUint64(b, uint64(v))
	case float32:
		b = binary.LittleEndian.AppendUint32(b, math.Float32bits(v))
	case float64:
		b = binary.LittleEndian.AppendUint64(b, math.Float64bits(v))
	case string:
		b = binary.LittleEndian.AppendUint32(b, uint32(len(v)))
		b = append(b, v...)
	case []byte:
		b = binary.LittleEndian.AppendUint32(b, uint32(len(v)))
		b = append(b, v...)
	default:
		return e.appendArray(b, p)
	}
	return b, nil
}

func rawArray(p Property) []byte {
	var raw []byte
	switch v := p.Value.(type) {
	case []bool:
		raw = make([]byte, 0, len(v))
		for _, x := range v {
			if x {
				raw = append(raw, 1)
			} else {
				raw = append(raw, 0)
			}
		}
	case []int32:
		raw = make([]byte, 0, len(v)*4)
		for _, x := range v {
			raw = binary.LittleEndian.AppendUint32(raw, uint32(x))
		}
	case []int64:
		raw = make([]byte, 0, len(v)*8)
		for _, x := range v {
			raw = binary.LittleEndian.AppendUint64(raw, uint64(x))
		}
	case []float32:
		raw = make([]byte, 0, len(v)*4)
		for _, x := range v {
			raw = binary.LittleEndian.AppendUint32(raw, math.Float32bits(x))
		}
	case []float64:
		raw = make([]byte, 0, len(v)*8)
		for _, x := range v {
			raw = binary.LittleEndian.AppendUint64(raw, math.Float64bits(x))
		}
	}
	return raw
}

// appendArray writes count, encoding, byte length and the (possibly deflated) elements.
func (e *BinaryEmitter) appendArray(b []byte, p Property) ([]byte, error) {
	raw := rawArray(p)
	encoding := uint32(arrayEncodingRaw)
	if e.CompressThreshold > 0 && len(raw) >= e.CompressThreshold {
		var z bytes.Buffer
		zw := zlib.NewWriter(&z)
		if _, err := zw.Write(raw); err != nil {
			return nil, ioError(e.pw.position, err, "deflate array")
		}
		if err := zw.Close(); err != nil {
			return nil, ioError(e.pw.position, err, "deflate array")
		}
		level.Debug(e.logger).Log("msg", "compressed array", "type", p.Type, "raw", len(raw), "compressed", z.Len())
		raw = z.Bytes()
		encoding = arrayEncodingZlib
	}
	b = binary.LittleEndian.AppendUint32(b, uint32(p.Len()))
	b = binary.LittleEndian.AppendUint32(b, encoding)
	b = binary.LittleEndian.AppendUint32(b, uint32(len(raw)))
	return append(b, raw...), nil
}
