package fbx

// Node is an in-memory FBX node. Emit replays it as emitter events.
type Node struct {
	Name       string
	Properties []Property
	Children   []*Node
}

// NewNode creates a node. Values are Property or plain Go values accepted by NewProperty.
// A value that cannot be converted is kept as an invalid property and makes Emit fail.
func NewNode(name string, values ...interface{}) *Node {
	n := &Node{Name: name}
	for _, v := range values {
		p, err := NewProperty(v)
		if err != nil {
			p = Property{Value: v}
		}
		n.Properties = append(n.Properties, p)
	}
	return n
}

func (n *Node) AddChild(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

func (n *Node) FindChild(name string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (n *Node) GetChildren() []*Node {
	if n == nil {
		return nil
	}
	return n.Children
}

func (n *Node) Prop(i int) *Property {
	if n == nil || i >= len(n.Properties) {
		return nil
	}
	return &n.Properties[i]
}

func (n *Node) PropValue(i int) interface{} {
	if p := n.Prop(i); p != nil {
		return p.Value
	}
	return nil
}

func (n *Node) PropString(i int) string {
	s, _ := n.PropValue(i).(string)
	return s
}

// Emit writes n and its descendants depth first.
func (n *Node) Emit(e Emitter) error {
	if err := e.StartNode(n.Name, n.Properties...); err != nil {
		return err
	}
	for _, c := range n.Children {
		if err := c.Emit(e); err != nil {
			return err
		}
	}
	return e.EndNode()
}
