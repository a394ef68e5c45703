package fbx

type Material struct {
	Obj
}

func NewMaterial(name string) *Material {
	mat := &Material{
		Obj: *newObj("Material", name, "Material", "",
			NewNode("Version", 102),
			NewNode("ShadingModel", "phong"),
			NewNode("MultiLayer", 0),
		),
	}
	return mat
}

func (m *Material) SetColor(name string, r, g, b float64) {
	m.SetColorProperty(name, r, g, b)
}

func (m *Material) SetFactor(name string, v float64) {
	m.SetFloatProperty(name, v)
}
