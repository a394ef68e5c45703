package fbx

import (
	"fmt"
	"io"
	"time"
)

const firstObjectID = 1000000

// Document builds the standard FBX 7.x layout (header, settings, definitions,
// objects, connections) on top of Node. It does not check scene semantics.
type Document struct {
	Creator      string
	CreationTime time.Time

	GlobalSettings *Obj
	Scene          *Model // ID 0, the implicit root
	Objects        []Object
	Connections    []*Connection

	documentID int64
	lastID     int64
}

func NewDocument() *Document {
	doc := &Document{
		Creator: "fbxwriter",
		Scene:   NewModel("Scene", "Null"),
	}
	doc.documentID = doc.nextID()

	gs := newObj("GlobalSettings", "", "", "", NewNode("Version", 1000))
	gs.SetIntProperty("UpAxis", 1)
	gs.SetIntProperty("UpAxisSign", 1)
	gs.SetIntProperty("FrontAxis", 2)
	gs.SetIntProperty("FrontAxisSign", 1)
	gs.SetIntProperty("CoordAxis", 0)
	gs.SetIntProperty("CoordAxisSign", 1)
	gs.SetFloatProperty("UnitScaleFactor", 1)
	doc.GlobalSettings = gs
	return doc
}

func (d *Document) nextID() int64 {
	if d.lastID < firstObjectID {
		d.lastID = firstObjectID
	}
	d.lastID++
	return d.lastID
}

// SetUnitScaleFactor sets the size of one unit in centimeters.
func (d *Document) SetUnitScaleFactor(f float64) {
	d.GlobalSettings.SetFloatProperty("UnitScaleFactor", f)
}

func (d *Document) AddObject(o Object) Object {
	o.setID(d.nextID())
	d.Objects = append(d.Objects, o)
	return o
}

// AddConnection attaches child to parent (e.g. a geometry to its model).
func (d *Document) AddConnection(parent, child Object) {
	d.Connections = append(d.Connections, &Connection{Type: "OO", Child: child.ID(), Parent: parent.ID()})
}

// AddPropertyConnection attaches child to a property of parent (e.g. a texture to "DiffuseColor").
func (d *Document) AddPropertyConnection(parent, child Object, prop string) {
	d.Connections = append(d.Connections, &Connection{Type: "OP", Child: child.ID(), Parent: parent.ID(), Prop: prop})
}

// Nodes returns the top-level nodes of the document for format f and version v.
func (d *Document) Nodes(f Format, v Version) []*Node {
	nodes := d.headerNodes(v)
	nodes = append(nodes, &Node{Name: "GlobalSettings", Children: d.GlobalSettings.Children})
	nodes = append(nodes, d.documentsNode(), NewNode("References"), d.definitionsNode())

	objects := NewNode("Objects")
	for _, o := range d.Objects {
		objects.AddChild(&Node{
			Name:       o.NodeName(),
			Properties: []Property{Int64(o.ID()), String(o.objectName(f)), String(o.Kind())},
			Children:   o.GetNode().Children,
		})
	}

	connections := NewNode("Connections")
	for _, c := range d.Connections {
		n := NewNode("C", c.Type, Int64(c.Child), Int64(c.Parent))
		if c.Prop != "" {
			n.Properties = append(n.Properties, String(c.Prop))
		}
		connections.AddChild(n)
	}
	return append(nodes, objects, connections)
}

func (d *Document) headerNodes(v Version) []*Node {
	ext := NewNode("FBXHeaderExtension").AddChild(
		NewNode("FBXHeaderVersion", 1003),
		NewNode("FBXVersion", int32(v)),
	)
	t := d.CreationTime
	if !t.IsZero() {
		ext.AddChild(NewNode("CreationTimeStamp").AddChild(
			NewNode("Version", 1000),
			NewNode("Year", t.Year()),
			NewNode("Month", int(t.Month())),
			NewNode("Day", t.Day()),
			NewNode("Hour", t.Hour()),
			NewNode("Minute", t.Minute()),
			NewNode("Second", t.Second()),
			NewNode("Millisecond", t.Nanosecond()/int(time.Millisecond)),
		))
	}
	ext.AddChild(NewNode("Creator", d.Creator))

	nodes := []*Node{ext}
	if !t.IsZero() {
		stamp := fmt.Sprintf("%s:%03d", t.Format("2006-01-02 15:04:05"), t.Nanosecond()/int(time.Millisecond))
		nodes = append(nodes, NewNode("CreationTime", stamp))
	}
	return append(nodes, NewNode("Creator", d.Creator))
}

func (d *Document) documentsNode() *Node {
	doc := NewNode("Document", Int64(d.documentID), "Scene", "Scene").AddChild(
		NewNode("Properties70"),
		NewNode("RootNode", Int64(d.Scene.ID())),
	)
	return NewNode("Documents").AddChild(NewNode("Count", 1), doc)
}

func (d *Document) definitionsNode() *Node {
	var order []string
	counts := map[string]int{}
	for _, o := range d.Objects {
		if counts[o.NodeName()] == 0 {
			order = append(order, o.NodeName())
		}
		counts[o.NodeName()]++
	}

	defs := NewNode("Definitions").AddChild(
		NewNode("Version", 100),
		NewNode("Count", len(d.Objects)+1),
		NewNode("ObjectType", "GlobalSettings").AddChild(NewNode("Count", 1)),
	)
	for _, name := range order {
		defs.AddChild(NewNode("ObjectType", name).AddChild(NewNode("Count", counts[name])))
	}
	return defs
}

// Write writes the document with opts (nil for defaults).
func (d *Document) Write(w io.Writer, opts *WriterOptions) error {
	opts = d.options(opts)
	return Write(w, d.Nodes(opts.Format, opts.Version), opts)
}

func (d *Document) Save(path string, opts *WriterOptions) error {
	opts = d.options(opts)
	return Save(path, d.Nodes(opts.Format, opts.Version), opts)
}

func (d *Document) options(opts *WriterOptions) *WriterOptions {
	if opts == nil {
		opts = DefaultWriterOptions()
	}
	if opts.Version == 0 {
		o := *opts
		o.Version = DefaultVersion
		opts = &o
	}
	return opts
}
