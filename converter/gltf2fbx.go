package converter

import (
	"fmt"
	"math"

	"github.com/binzume/fbxwriter/fbx"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

type GLTFToFBXOption struct {
	Scale   float32 // Default: 1
	Creator string  // Default: "fbxwriter"
	Logger  log.Logger
}

type gltfToFbx struct {
	options *GLTFToFBXOption
	logger  log.Logger

	src *gltf.Document
	dst *fbx.Document

	materials       map[uint32]*fbx.Material
	defaultMaterial *fbx.Material
	geometries      map[uint32]*meshGeometry
}

// meshGeometry is a converted glTF mesh and the materials its polygons refer to.
type meshGeometry struct {
	geometry  *fbx.Geometry
	materials []*fbx.Material
}

func NewGLTFToFBXConverter(options *GLTFToFBXOption) *gltfToFbx {
	if options == nil {
		options = &GLTFToFBXOption{}
	}
	if options.Scale == 0 {
		options.Scale = 1
	}
	logger := options.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &gltfToFbx{options: options, logger: logger}
}

func (c *gltfToFbx) Convert(src *gltf.Document) (*fbx.Document, error) {
	c.src = src
	c.dst = fbx.NewDocument()
	c.materials = map[uint32]*fbx.Material{}
	c.defaultMaterial = nil
	c.geometries = map[uint32]*meshGeometry{}
	if c.options.Creator != "" {
		c.dst.Creator = c.options.Creator
	}
	// glTF is in meters, FBX units are centimeters.
	c.dst.SetUnitScaleFactor(100)

	visited := map[uint32]bool{}
	for _, n := range c.rootNodes() {
		if err := c.convertNode(n, c.dst.Scene, visited); err != nil {
			return nil, err
		}
	}
	level.Debug(c.logger).Log("msg", "converted gltf", "objects", len(c.dst.Objects), "connections", len(c.dst.Connections))
	return c.dst, nil
}

// rootNodes returns the nodes of the default scene, or every node without a parent.
func (c *gltfToFbx) rootNodes() []uint32 {
	if len(c.src.Scenes) > 0 {
		scene := uint32(0)
		if c.src.Scene != nil && int(*c.src.Scene) < len(c.src.Scenes) {
			scene = *c.src.Scene
		}
		return c.src.Scenes[scene].Nodes
	}
	isChild := map[uint32]bool{}
	for _, n := range c.src.Nodes {
		for _, child := range n.Children {
			isChild[child] = true
		}
	}
	var roots []uint32
	for i := range c.src.Nodes {
		if !isChild[uint32(i)] {
			roots = append(roots, uint32(i))
		}
	}
	return roots
}

func (c *gltfToFbx) convertNode(index uint32, parent fbx.Object, visited map[uint32]bool) error {
	if int(index) >= len(c.src.Nodes) {
		return errors.Errorf("node %d out of range", index)
	}
	if visited[index] {
		level.Warn(c.logger).Log("msg", "node visited twice, skipped", "node", index)
		return nil
	}
	visited[index] = true
	n := c.src.Nodes[index]

	name := n.Name
	if name == "" {
		name = fmt.Sprintf("node%d", index)
	}
	kind := "Null"
	if n.Mesh != nil {
		kind = "Mesh"
	}
	model := fbx.NewModel(name, kind)
	scale := float64(c.options.Scale)
	model.SetTranslation(float64(n.Translation[0])*scale, float64(n.Translation[1])*scale, float64(n.Translation[2])*scale)
	x, y, z := quaternionToEuler(float64(n.Rotation[0]), float64(n.Rotation[1]), float64(n.Rotation[2]), float64(n.Rotation[3]))
	model.SetRotation(x, y, z)
	sx, sy, sz := float64(n.Scale[0]), float64(n.Scale[1]), float64(n.Scale[2])
	if sx == 0 && sy == 0 && sz == 0 {
		sx, sy, sz = 1, 1, 1
	}
	model.SetScaling(sx, sy, sz)
	c.dst.AddObject(model)
	c.dst.AddConnection(parent, model)

	if n.Mesh != nil {
		g, err := c.convertMesh(*n.Mesh)
		if err != nil {
			return err
		}
		if g != nil {
			c.dst.AddConnection(model, g.geometry)
			for _, mat := range g.materials {
				c.dst.AddConnection(model, mat)
			}
		}
	}

	for _, child := range n.Children {
		if err := c.convertNode(child, model, visited); err != nil {
			return err
		}
	}
	return nil
}

// convertMesh merges the triangle primitives of a mesh into one geometry.
// Meshes shared by several nodes are converted once.
func (c *gltfToFbx) convertMesh(index uint32) (*meshGeometry, error) {
	if g, ok := c.geometries[index]; ok {
		return g, nil
	}
	if int(index) >= len(c.src.Meshes) {
		return nil, errors.Errorf("mesh %d out of range", index)
	}
	m := c.src.Meshes[index]

	var verts, normals [][3]float32
	var uvs [][2]float32
	var faces [][]int
	var faceMaterials []int32
	var uvIndices []int32
	hasNormals, hasUVs := true, true
	materialIndex := map[*fbx.Material]int32{}
	mg := &meshGeometry{}

	for pi, p := range m.Primitives {
		if p.Mode != gltf.PrimitiveTriangles {
			level.Warn(c.logger).Log("msg", "unsupported primitive mode, skipped", "mesh", m.Name, "primitive", pi, "mode", p.Mode)
			continue
		}
		posIndex, ok := p.Attributes["POSITION"]
		if !ok {
			continue
		}
		acc, err := c.accessor(posIndex)
		if err != nil {
			return nil, errors.Wrapf(err, "mesh %q: positions", m.Name)
		}
		pos, err := modeler.ReadPosition(c.src, acc, nil)
		if err != nil {
			return nil, errors.Wrapf(err, "mesh %q: read positions", m.Name)
		}
		var indices []uint32
		if p.Indices != nil {
			if acc, err = c.accessor(*p.Indices); err != nil {
				return nil, errors.Wrapf(err, "mesh %q: indices", m.Name)
			}
			indices, err = modeler.ReadIndices(c.src, acc, nil)
			if err != nil {
				return nil, errors.Wrapf(err, "mesh %q: read indices", m.Name)
			}
		} else {
			indices = make([]uint32, len(pos))
			for i := range indices {
				indices[i] = uint32(i)
			}
		}

		var primNormals [][3]float32
		if a, ok := p.Attributes["NORMAL"]; ok {
			if acc, err = c.accessor(a); err != nil {
				return nil, errors.Wrapf(err, "mesh %q: normals", m.Name)
			}
			if primNormals, err = modeler.ReadNormal(c.src, acc, nil); err != nil {
				return nil, errors.Wrapf(err, "mesh %q: read normals", m.Name)
			}
		}
		var primUVs [][2]float32
		if a, ok := p.Attributes["TEXCOORD_0"]; ok {
			if acc, err = c.accessor(a); err != nil {
				return nil, errors.Wrapf(err, "mesh %q: texcoords", m.Name)
			}
			if primUVs, err = modeler.ReadTextureCoord(c.src, acc, nil); err != nil {
				return nil, errors.Wrapf(err, "mesh %q: read texcoords", m.Name)
			}
		}
		hasNormals = hasNormals && len(primNormals) == len(pos)
		hasUVs = hasUVs && len(primUVs) == len(pos)

		mat := c.material(p.Material)
		local, ok := materialIndex[mat]
		if !ok {
			local = int32(len(mg.materials))
			materialIndex[mat] = local
			mg.materials = append(mg.materials, mat)
		}

		base := len(verts)
		s := c.options.Scale
		for _, v := range pos {
			verts = append(verts, [3]float32{v[0] * s, v[1] * s, v[2] * s})
		}
		normals = append(normals, primNormals...)
		for _, uv := range primUVs {
			uvs = append(uvs, [2]float32{uv[0], 1 - uv[1]})
		}
		for i := 0; i+2 < len(indices); i += 3 {
			f := []int{base + int(indices[i]), base + int(indices[i+1]), base + int(indices[i+2])}
			faces = append(faces, f)
			faceMaterials = append(faceMaterials, local)
			for _, vi := range f {
				uvIndices = append(uvIndices, int32(vi))
			}
		}
	}
	if len(faces) == 0 {
		level.Warn(c.logger).Log("msg", "mesh has no triangles", "mesh", m.Name)
		c.geometries[index] = nil
		return nil, nil
	}

	name := m.Name
	if name == "" {
		name = fmt.Sprintf("mesh%d", index)
	}
	g := fbx.NewGeometry(name, verts, faces)
	if hasNormals {
		g.SetLayerElementNormal(normals, fbx.ByVertice)
	}
	if hasUVs {
		g.SetLayerElementUV(uvs, uvIndices, fbx.ByPolygonVertex)
	}
	if len(mg.materials) == 1 {
		g.SetLayerElementMaterialIndex([]int32{0}, fbx.AllSame)
	} else {
		g.SetLayerElementMaterialIndex(faceMaterials, fbx.ByPolygon)
	}
	c.dst.AddObject(g)
	mg.geometry = g
	c.geometries[index] = mg
	return mg, nil
}

func (c *gltfToFbx) accessor(index uint32) (*gltf.Accessor, error) {
	if int(index) >= len(c.src.Accessors) {
		return nil, errors.Errorf("accessor %d out of range", index)
	}
	return c.src.Accessors[index], nil
}

func (c *gltfToFbx) material(index *uint32) *fbx.Material {
	if index == nil || int(*index) >= len(c.src.Materials) {
		if c.defaultMaterial == nil {
			c.defaultMaterial = fbx.NewMaterial("default")
			c.defaultMaterial.SetColor("DiffuseColor", 1, 1, 1)
			c.dst.AddObject(c.defaultMaterial)
		}
		return c.defaultMaterial
	}
	if mat, ok := c.materials[*index]; ok {
		return mat
	}
	m := c.src.Materials[*index]
	name := m.Name
	if name == "" {
		name = fmt.Sprintf("material%d", *index)
	}
	mat := fbx.NewMaterial(name)
	col := [4]float64{1, 1, 1, 1}
	if m.PBRMetallicRoughness != nil {
		f := m.PBRMetallicRoughness.BaseColorFactorOrDefault()
		col = [4]float64{float64(f[0]), float64(f[1]), float64(f[2]), float64(f[3])}
	}
	mat.SetColor("DiffuseColor", col[0], col[1], col[2])
	mat.SetFactor("DiffuseFactor", 1)
	mat.SetColor("EmissiveColor", float64(m.EmissiveFactor[0]), float64(m.EmissiveFactor[1]), float64(m.EmissiveFactor[2]))
	if col[3] < 1 {
		mat.SetFactor("TransparencyFactor", 1-col[3])
		mat.SetFactor("Opacity", col[3])
	}
	c.dst.AddObject(mat)
	c.materials[*index] = mat
	return mat
}

// quaternionToEuler returns the XYZ euler angles in degrees of a rotation quaternion.
// FBX applies X first, so the rotation matrix is Rz*Ry*Rx.
func quaternionToEuler(x, y, z, w float64) (float64, float64, float64) {
	if x == 0 && y == 0 && z == 0 && w == 0 {
		return 0, 0, 0
	}
	l := math.Sqrt(x*x + y*y + z*z + w*w)
	x, y, z, w = x/l, y/l, z/l, w/l

	m11 := 1 - 2*(y*y+z*z)
	m12 := 2 * (x*y - z*w)
	m21 := 2 * (x*y + z*w)
	m22 := 1 - 2*(x*x+z*z)
	m31 := 2 * (x*z - y*w)
	m32 := 2 * (y*z + x*w)
	m33 := 1 - 2*(x*x+y*y)

	const eps = 0.00000001
	var rx, ry, rz float64
	ry = math.Asin(-math.Max(-1, math.Min(m31, 1)))
	if math.Abs(m31) < 1-eps {
		rx = math.Atan2(m32, m33)
		rz = math.Atan2(m21, m11)
	} else {
		rz = math.Atan2(-m12, m22)
	}
	const deg = 180 / math.Pi
	return rx * deg, ry * deg, rz * deg
}
