package fbx

import (
	"fmt"
	"math"
)

// PropertyType is the FBX type code of a property.
type PropertyType byte

const (
	TypeBool         PropertyType = 'C'
	TypeInt16        PropertyType = 'Y'
	TypeInt32        PropertyType = 'I'
	TypeInt64        PropertyType = 'L'
	TypeFloat32      PropertyType = 'F'
	TypeFloat64      PropertyType = 'D'
	TypeBoolArray    PropertyType = 'b'
	TypeInt32Array   PropertyType = 'i'
	TypeInt64Array   PropertyType = 'l'
	TypeFloat32Array PropertyType = 'f'
	TypeFloat64Array PropertyType = 'd'
	TypeString       PropertyType = 'S'
	TypeBinary       PropertyType = 'R'
)

func (t PropertyType) IsArray() bool {
	switch t {
	case TypeBoolArray, TypeInt32Array, TypeInt64Array, TypeFloat32Array, TypeFloat64Array:
		return true
	}
	return false
}

func (t PropertyType) String() string {
	if t == 0 {
		return "invalid"
	}
	return string(rune(t))
}

// Property is a typed value attached to a node.
// Value holds the Go type that matches Type (bool, int16, ..., []float64, string, []byte).
type Property struct {
	Type  PropertyType
	Value interface{}
}

func Bool(v bool) Property { return Property{TypeBool, v} }
func Int16(v int16) Property { return Property{TypeInt16, v} }
func Int32(v int32) Property { return Property{TypeInt32, v} }
func Int64(v int64) Property { return Property{TypeInt64, v} }
func Float32(v float32) Property { return Property{TypeFloat32, v} }
func Float64(v float64) Property { return Property{TypeFloat64, v} }
func BoolArray(v []bool) Property { return Property{TypeBoolArray, v} }
func Int32Array(v []int32) Property { return Property{TypeInt32Array, v} }
func Int64Array(v []int64) Property { return Property{TypeInt64Array, v} }
func String(v string) Property { return Property{TypeString, v} }
func Binary(v []byte) Property { return Property{TypeBinary, v} }
func Float32Array(v []float32) Property { return Property{TypeFloat32Array, v} }
func Float64Array(v []float64) Property { return Property{TypeFloat64Array, v} }

// NewProperty wraps a Go value. int and uint values become Int32 when they fit, Int64 otherwise.
func NewProperty(v interface{}) (Property, error) {
	switch v := v.(type) {
	case Property:
		return v, v.validate()
	case bool:
		return Bool(v), nil
	case int8:
		return Int16(int16(v)), nil
	case uint8:
		return Int16(int16(v)), nil
	case int16:
		return Int16(v), nil
	case int32:
		return Int32(v), nil
	case int64:
		return Int64(v), nil
	case int:
		return intProperty(int64(v)), nil
	case uint16:
		return Int32(int32(v)), nil
	case uint32:
		return Int64(int64(v)), nil
	case uint:
		if uint64(v) > math.MaxInt64 {
			return Property{}, contractError("value %d overflows int64", v)
		}
		return intProperty(int64(v)), nil
	case float32:
		return Float32(v), nil
	case float64:
		return Float64(v), nil
	case string:
		return String(v), nil
	case []byte:
		return Binary(v), nil
	case []bool:
		return BoolArray(v), nil
	case []int32:
		return Int32Array(v), nil
	case []int64:
		return Int64Array(v), nil
	case []float32:
		return Float32Array(v), nil
	case []float64:
		return Float64Array(v), nil
	case []int:
		a := make([]int32, len(v))
		for i, n := range v {
			if n < math.MinInt32 || n > math.MaxInt32 {
				return Int64Array(intsToInt64(v)), nil
			}
			a[i] = int32(n)
		}
		return Int32Array(a), nil
	}
	return Property{}, contractError("unsupported property value %T", v)
}

func intProperty(v int64) Property {
	if v < math.MinInt32 || v > math.MaxInt32 {
		return Int64(v)
	}
	return Int32(int32(v))
}

func intsToInt64(v []int) []int64 {
	a := make([]int64, len(v))
	for i, n := range v {
		a[i] = int64(n)
	}
	return a
}

func (p Property) IsArray() bool {
	return p.Type.IsArray()
}

// Len returns the element count of an array property, or 0.
func (p Property) Len() int {
	switch v := p.Value.(type) {
	case []bool:
		return len(v)
	case []int32:
		return len(v)
	case []int64:
		return len(v)
	case []float32:
		return len(v)
	case []float64:
		return len(v)
	}
	return 0
}

func (p Property) validate() error {
	ok := false
	switch p.Type {
	case TypeBool:
		_, ok = p.Value.(bool)
	case TypeInt16:
		_, ok = p.Value.(int16)
	case TypeInt32:
		_, ok = p.Value.(int32)
	case TypeInt64:
		_, ok = p.Value.(int64)
	case TypeFloat32:
		_, ok = p.Value.(float32)
	case TypeFloat64:
		_, ok = p.Value.(float64)
	case TypeBoolArray:
		_, ok = p.Value.([]bool)
	case TypeInt32Array:
		_, ok = p.Value.([]int32)
	case TypeInt64Array:
		_, ok = p.Value.([]int64)
	case TypeFloat32Array:
		_, ok = p.Value.([]float32)
	case TypeFloat64Array:
		_, ok = p.Value.([]float64)
	case TypeString:
		_, ok = p.Value.(string)
	case TypeBinary:
		_, ok = p.Value.([]byte)
	}
	if !ok {
		return contractError("property type %v does not match value %T", p.Type, p.Value)
	}
	return nil
}

func (p Property) String() string {
	switch v := p.Value.(type) {
	case string:
		return fmt.Sprintf("%q", v)
	case []byte:
		return fmt.Sprintf("\"%x\"", v)
	default:
		if p.IsArray() {
			return fmt.Sprintf("*%d %v", p.Len(), v)
		}
		return fmt.Sprint(v)
	}
}

func validateProperties(props []Property) error {
	for i, p := range props {
		if err := p.validate(); err != nil {
			err.(*Error).Msg = fmt.Sprintf("property %d: %s", i, err.(*Error).Msg)
			return err
		}
	}
	return nil
}
