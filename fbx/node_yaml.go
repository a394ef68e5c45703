package fbx

import (
	"encoding/base64"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

type yamlNode struct {
	Name     string        `yaml:"name"`
	Props    []interface{} `yaml:"props"`
	Children []*yamlNode   `yaml:"children"`
}

// ParseYAMLNodes reads a node tree written in YAML:
//
//	- name: Vertices
//	  props: [{d: [0, 0, 0, 1, 0, 0]}]
//	  children: [...]
//
// Plain scalars become Bool, Int32/Int64, Float64 or String properties.
// A single-key map selects the type code explicitly; R takes base64.
// Y must be quoted, YAML 1.1 reads a bare Y as true.
func ParseYAMLNodes(data []byte) ([]*Node, error) {
	if !utf8.Valid(data) {
		return nil, &Error{Pos: -1, Kind: KindTextEncoding, Msg: "yaml source is not valid UTF-8"}
	}
	var src []*yamlNode
	if err := yaml.UnmarshalStrict(data, &src); err != nil {
		return nil, errors.Wrap(err, "parse yaml nodes")
	}
	var nodes []*Node
	for i, y := range src {
		n, err := y.toNode(fmt.Sprint(i))
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func (y *yamlNode) toNode(path string) (*Node, error) {
	if y == nil || y.Name == "" {
		return nil, errors.Errorf("yaml node %s: missing name", path)
	}
	path += "/" + y.Name
	n := &Node{Name: y.Name}
	for i, v := range y.Props {
		p, err := yamlProperty(v)
		if err != nil {
			return nil, errors.Wrapf(err, "yaml node %s: property %d", path, i)
		}
		n.Properties = append(n.Properties, p)
	}
	for _, c := range y.Children {
		child, err := c.toNode(path)
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, child)
	}
	return n, nil
}

func yamlProperty(v interface{}) (Property, error) {
	switch v := v.(type) {
	case map[interface{}]interface{}:
		if len(v) != 1 {
			return Property{}, errors.New("typed property needs exactly one type code key")
		}
		for k, val := range v {
			code, ok := k.(string)
			if !ok || len(code) != 1 {
				return Property{}, errors.Errorf("invalid type code %v", k)
			}
			return typedYAMLProperty(PropertyType(code[0]), val)
		}
	case int:
		return intProperty(int64(v)), nil
	case int64:
		return intProperty(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return Property{}, errors.Errorf("%d overflows int64", v)
		}
		return Int64(int64(v)), nil
	case nil:
		return Property{}, errors.New("null property")
	}
	return NewProperty(v)
}

func typedYAMLProperty(t PropertyType, v interface{}) (Property, error) {
	switch t {
	case TypeBool:
		b, ok := v.(bool)
		if !ok {
			return Property{}, errors.Errorf("%v: expected bool, got %T", t, v)
		}
		return Bool(b), nil
	case TypeInt16, TypeInt32, TypeInt64:
		n, err := yamlInt(v)
		if err != nil {
			return Property{}, errors.Wrapf(err, "%v", t)
		}
		return intOfType(t, n)
	case TypeFloat32, TypeFloat64:
		f, err := yamlFloat(v)
		if err != nil {
			return Property{}, errors.Wrapf(err, "%v", t)
		}
		if t == TypeFloat32 {
			return Float32(float32(f)), nil
		}
		return Float64(f), nil
	case TypeString:
		s, ok := v.(string)
		if !ok {
			return Property{}, errors.Errorf("%v: expected string, got %T", t, v)
		}
		return String(s), nil
	case TypeBinary:
		s, ok := v.(string)
		if !ok {
			return Property{}, errors.Errorf("%v: expected base64 string, got %T", t, v)
		}
		b, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return Property{}, errors.Wrapf(err, "%v", t)
		}
		return Binary(b), nil
	}
	if !t.IsArray() {
		return Property{}, errors.Errorf("unknown type code %v", t)
	}
	list, ok := v.([]interface{})
	if !ok && v != nil {
		return Property{}, errors.Errorf("%v: expected list, got %T", t, v)
	}
	return yamlArray(t, list)
}

func yamlArray(t PropertyType, list []interface{}) (Property, error) {
	switch t {
	case TypeBoolArray:
		a := make([]bool, len(list))
		for i, v := range list {
			b, ok := v.(bool)
			if !ok {
				return Property{}, errors.Errorf("%v[%d]: expected bool, got %T", t, i, v)
			}
			a[i] = b
		}
		return BoolArray(a), nil
	case TypeInt32Array, TypeInt64Array:
		a := make([]int64, len(list))
		for i, v := range list {
			n, err := yamlInt(v)
			if err != nil {
				return Property{}, errors.Wrapf(err, "%v[%d]", t, i)
			}
			if t == TypeInt32Array && (n < math.MinInt32 || n > math.MaxInt32) {
				return Property{}, errors.Errorf("%v[%d]: %d overflows int32", t, i, n)
			}
			a[i] = n
		}
		if t == TypeInt64Array {
			return Int64Array(a), nil
		}
		a32 := make([]int32, len(a))
		for i, n := range a {
			a32[i] = int32(n)
		}
		return Int32Array(a32), nil
	default:
		a := make([]float64, len(list))
		for i, v := range list {
			f, err := yamlFloat(v)
			if err != nil {
				return Property{}, errors.Wrapf(err, "%v[%d]", t, i)
			}
			a[i] = f
		}
		if t == TypeFloat64Array {
			return Float64Array(a), nil
		}
		a32 := make([]float32, len(a))
		for i, f := range a {
			a32[i] = float32(f)
		}
		return Float32Array(a32), nil
	}
}

func yamlInt(v interface{}) (int64, error) {
	switch v := v.(type) {
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case uint64:
		if v <= math.MaxInt64 {
			return int64(v), nil
		}
	}
	return 0, errors.Errorf("expected integer, got %v", v)
}

func yamlFloat(v interface{}) (float64, error) {
	switch v := v.(type) {
	case float64:
		return v, nil
	case int, int64, uint64:
		n, err := yamlInt(v)
		return float64(n), err
	}
	return 0, errors.Errorf("expected number, got %v", v)
}

func intOfType(t PropertyType, n int64) (Property, error) {
	switch t {
	case TypeInt16:
		if n < math.MinInt16 || n > math.MaxInt16 {
			return Property{}, errors.Errorf("%d overflows int16", n)
		}
		return Int16(int16(n)), nil
	case TypeInt32:
		if n < math.MinInt32 || n > math.MaxInt32 {
			return Property{}, errors.Errorf("%d overflows int32", n)
		}
		return Int32(int32(n)), nil
	}
	return Int64(n), nil
}
