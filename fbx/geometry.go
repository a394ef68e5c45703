package fbx

type Geometry struct {
	Obj
	layerElements []string
}

type MappingType string

const (
	AllSame         MappingType = "AllSame"
	ByPolygon       MappingType = "ByPolygon"
	ByVertice       MappingType = "ByVertice"
	ByPolygonVertex MappingType = "ByPolygonVertex"
	ByControlPoint  MappingType = "ByControlPoint"
)

// NewGeometry creates a mesh geometry. The last index of each face is stored
// bitwise negated, which is how FBX marks the end of a polygon.
func NewGeometry(name string, verts [][3]float32, faces [][]int) *Geometry {
	varray := make([]float64, 0, len(verts)*3)
	for _, v := range verts {
		varray = append(varray, float64(v[0]), float64(v[1]), float64(v[2]))
	}
	var indices []int32
	for _, f := range faces {
		for _, i := range f {
			indices = append(indices, int32(i))
		}
		if len(f) > 0 {
			indices[len(indices)-1] = ^indices[len(indices)-1]
		}
	}

	return &Geometry{
		Obj: *newObj("Geometry", name, "Geometry", "Mesh",
			NewNode("GeometryVersion", 124),
			NewNode("Vertices", Float64Array(varray)),
			NewNode("PolygonVertexIndex", Int32Array(indices)),
		),
	}
}

// setLayerElement adds or replaces a LayerElement* child and registers it in layer 0.
func (g *Geometry) setLayerElement(name string, version int, values ...*Node) {
	el := NewNode(name, 0)
	el.AddChild(NewNode("Version", version), NewNode("Name", ""))
	el.AddChild(values...)
	if g.AddOrReplaceChild(el) {
		g.layerElements = append(g.layerElements, name)
	}

	layer := NewNode("Layer", 0).AddChild(NewNode("Version", 100))
	for _, n := range g.layerElements {
		layer.AddChild(NewNode("LayerElement").AddChild(
			NewNode("Type", n),
			NewNode("TypedIndex", 0),
		))
	}
	g.AddOrReplaceChild(layer)
}

func (g *Geometry) SetLayerElementMaterialIndex(mat []int32, mappingType MappingType) {
	g.setLayerElement("LayerElementMaterial", 101,
		NewNode("MappingInformationType", string(mappingType)),
		NewNode("ReferenceInformationType", "IndexToDirect"),
		NewNode("Materials", Int32Array(mat)),
	)
}

// SetLayerElementUV sets texture coordinates. indices may be nil for direct mapping.
func (g *Geometry) SetLayerElementUV(uv [][2]float32, indices []int32, mappingType MappingType) {
	floatArray := make([]float64, 0, len(uv)*2)
	for _, v := range uv {
		floatArray = append(floatArray, float64(v[0]), float64(v[1]))
	}
	if indices == nil {
		g.setLayerElement("LayerElementUV", 101,
			NewNode("MappingInformationType", string(mappingType)),
			NewNode("ReferenceInformationType", "Direct"),
			NewNode("UV", Float64Array(floatArray)),
		)
		return
	}
	g.setLayerElement("LayerElementUV", 101,
		NewNode("MappingInformationType", string(mappingType)),
		NewNode("ReferenceInformationType", "IndexToDirect"),
		NewNode("UV", Float64Array(floatArray)),
		NewNode("UVIndex", Int32Array(indices)),
	)
}

func (g *Geometry) SetLayerElementNormal(normals [][3]float32, mappingType MappingType) {
	floatArray := make([]float64, 0, len(normals)*3)
	for _, v := range normals {
		floatArray = append(floatArray, float64(v[0]), float64(v[1]), float64(v[2]))
	}
	g.setLayerElement("LayerElementNormal", 101,
		NewNode("MappingInformationType", string(mappingType)),
		NewNode("ReferenceInformationType", "Direct"),
		NewNode("Normals", Float64Array(floatArray)),
	)
}
