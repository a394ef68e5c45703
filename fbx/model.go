package fbx

type Model struct {
	Obj
}

// NewModel creates a Model object. kind is "Null", "Mesh", "LimbNode", ...
func NewModel(name, kind string) *Model {
	model := &Model{
		Obj: *newObj("Model", name, "Model", kind,
			NewNode("Version", 232),
			NewNode("Shading", true),
			NewNode("Culling", "CullingOff"),
		),
	}
	return model
}

func (m *Model) SetTranslation(x, y, z float64) {
	m.SetProperty("Lcl Translation", &Property70{Type: "Lcl Translation", Flag: "A", Values: []Property{Float64(x), Float64(y), Float64(z)}})
}

// SetRotation sets the local rotation as XYZ euler angles in degrees.
func (m *Model) SetRotation(x, y, z float64) {
	m.SetProperty("Lcl Rotation", &Property70{Type: "Lcl Rotation", Flag: "A", Values: []Property{Float64(x), Float64(y), Float64(z)}})
}

func (m *Model) SetScaling(x, y, z float64) {
	m.SetProperty("Lcl Scaling", &Property70{Type: "Lcl Scaling", Flag: "A", Values: []Property{Float64(x), Float64(y), Float64(z)}})
}
