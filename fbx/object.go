package fbx

// Property70 is an entry of a Properties70 block: P: name, type, label, flags, values...
type Property70 struct {
	Type   string
	Label  string
	Flag   string
	Values []Property
}

type Connection struct {
	Type   string
	Child  int64
	Parent int64
	Prop   string
}

type Object interface {
	GetNode() *Node
	NodeName() string
	ID() int64
	Name() string
	Kind() string
	setID(id int64)
	objectName(f Format) string
}

// Obj is the common part of objects in the Objects section.
// The object node is built by Document from ID, Name and Kind; Node holds its children.
type Obj struct {
	*Node
	id    int64
	name  string
	class string
	kind  string
}

func newObj(typ, name, class, kind string, nodes ...*Node) *Obj {
	children := append(nodes, &Node{Name: "Properties70"})
	return &Obj{
		Node:  &Node{Name: typ, Children: children},
		name:  name,
		class: class,
		kind:  kind,
	}
}

func (o *Obj) GetNode() *Node {
	return o.Node
}
func (o *Obj) NodeName() string {
	return o.Node.Name
}
func (o *Obj) ID() int64 {
	return o.id
}
func (o *Obj) setID(id int64) {
	o.id = id
}
func (o *Obj) Name() string {
	return o.name
}
func (o *Obj) Kind() string {
	return o.kind
}

// objectName joins name and class the way each format expects ("Model::cube" or "cube\x00\x01Model").
func (o *Obj) objectName(f Format) string {
	if f == FormatBinary {
		return o.name + "\x00\x01" + o.class
	}
	return o.class + "::" + o.name
}

func (o *Obj) SetProperty(name string, prop *Property70) *Property70 {
	props := []Property{String(name), String(prop.Type), String(prop.Label), String(prop.Flag)}
	props = append(props, prop.Values...)
	properties70 := o.FindChild("Properties70")
	for _, node := range properties70.GetChildren() {
		if node.PropString(0) == name {
			node.Properties = props
			return prop
		}
	}
	properties70.AddChild(&Node{Name: "P", Properties: props})
	return prop
}

func (o *Obj) SetIntProperty(name string, v int) *Property70 {
	return o.SetProperty(name, &Property70{Type: "int", Label: "Integer", Values: []Property{Int32(int32(v))}})
}

func (o *Obj) SetFloatProperty(name string, v float64) *Property70 {
	return o.SetProperty(name, &Property70{Type: "double", Label: "Number", Values: []Property{Float64(v)}})
}

func (o *Obj) SetStringProperty(name string, v string) *Property70 {
	return o.SetProperty(name, &Property70{Type: "KString", Values: []Property{String(v)}})
}

func (o *Obj) SetColorProperty(name string, r, g, b float64) *Property70 {
	return o.SetProperty(name, &Property70{Type: "Color", Flag: "A", Values: []Property{Float64(r), Float64(g), Float64(b)}})
}

func (o *Obj) SetVector3Property(name, typ string, x, y, z float64) *Property70 {
	return o.SetProperty(name, &Property70{Type: typ, Flag: "A", Values: []Property{Float64(x), Float64(y), Float64(z)}})
}

func (o *Obj) AddOrReplaceChild(node *Node) bool {
	for i, c := range o.Children {
		if c.Name == node.Name {
			o.Children[i] = node
			return false
		}
	}
	o.Children = append(o.Children, node)
	return true
}
