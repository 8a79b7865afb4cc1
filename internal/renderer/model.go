package renderer

import (
	"image"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// FloatsPerVertex is the interleaved layout: position(3) uv(2) normal(3).
const FloatsPerVertex = 8

// DefaultMaterial is the material models fall back on.
var DefaultMaterial = &Material{
	Name:         "default",
	DiffuseColor: [3]float32{1.0, 1.0, 1.0},
	Metallic:     0.0,
	Roughness:    1.0,
	Exposure:     1.0,
	Alpha:        1.0,
	NormalScale:  1.0,
}

// Texture is a 2D image that lives on the CPU until the renderer uploads it.
type Texture struct {
	ID     uint32      // OpenGL texture ID, 0 until uploaded
	Name   string      // Cache key, usually the source path
	Image  image.Image // Pixels pending upload, released afterwards
	Linear bool        // Data texture (normals, roughness): no sRGB decode
}

// NewTexture wraps a decoded image for upload.
func NewTexture(name string, img image.Image, linear bool) *Texture {
	return &Texture{Name: name, Image: img, Linear: linear}
}

// Uploaded reports whether the texture has a GPU handle.
func (t *Texture) Uploaded() bool {
	return t != nil && t.ID != 0
}

type Material struct {
	// HOT DATA - read for every draw
	DiffuseColor [3]float32 // Base colour, multiplied with Map
	Metallic     float32    // 0 dielectric, 1 metal
	Roughness    float32    // 0 mirror, 1 fully rough; multiplied with RoughnessMap.g
	Exposure     float32
	Alpha        float32
	NormalScale  float32
	DoubleSided  bool

	Map          *Texture
	NormalMap    *Texture
	RoughnessMap *Texture

	// COLD DATA
	Name string
}

// Clone returns a copy sharing the textures.
func (m *Material) Clone() *Material {
	c := *m
	return &c
}

// Textures lists the non-nil texture slots.
func (m *Material) Textures() []*Texture {
	var out []*Texture
	for _, t := range []*Texture{m.Map, m.NormalMap, m.RoughnessMap} {
		if t != nil {
			out = append(out, t)
		}
	}
	return out
}

type Model struct {
	// HOT DATA - read every frame in the render loop
	ModelMatrix mgl32.Mat4
	Position    mgl32.Vec3
	Scale       mgl32.Vec3
	Rotation    mgl32.Quat
	LocalMatrix mgl32.Mat4 // Applied before TRS; node transform for imported meshes
	Material    *Material
	Parent      *Group
	VAO         uint32
	VBO         uint32
	EBO         uint32
	IsDirty     bool

	CastShadow    bool
	ReceiveShadow bool

	// MEDIUM DATA
	BoundingSphereCenter mgl32.Vec3 // Local space
	BoundingSphereRadius float32    // Local space

	// COLD DATA
	Name            string
	SourcePath      string
	InterleavedData []float32
	Faces           []int32
}

// NewModel builds a model from interleaved vertex data and triangle indices.
func NewModel(name string, interleaved []float32, faces []int32) *Model {
	m := &Model{
		Name:            name,
		Position:        mgl32.Vec3{0, 0, 0},
		Scale:           mgl32.Vec3{1, 1, 1},
		Rotation:        mgl32.QuatIdent(),
		LocalMatrix:     mgl32.Ident4(),
		InterleavedData: interleaved,
		Faces:           faces,
		Material:        DefaultMaterial.Clone(),
	}
	m.CalculateBoundingSphere()
	m.updateModelMatrix()
	return m
}

func (m *Model) VertexCount() int {
	return len(m.InterleavedData) / FloatsPerVertex
}

// SetPosition sets the position of the model
func (m *Model) SetPosition(x, y, z float32) {
	m.Position = mgl32.Vec3{x, y, z}
	m.updateModelMatrix()
}

func (m *Model) SetScale(x, y, z float32) {
	m.Scale = mgl32.Vec3{x, y, z}
	m.updateModelMatrix()
}

// Rotate applies Euler angles in degrees on top of the current rotation.
func (m *Model) Rotate(angleX, angleY, angleZ float32) {
	rotationX := mgl32.QuatRotate(mgl32.DegToRad(angleX), mgl32.Vec3{1, 0, 0})
	rotationY := mgl32.QuatRotate(mgl32.DegToRad(angleY), mgl32.Vec3{0, 1, 0})
	rotationZ := mgl32.QuatRotate(mgl32.DegToRad(angleZ), mgl32.Vec3{0, 0, 1})
	m.Rotation = m.Rotation.Mul(rotationX).Mul(rotationY).Mul(rotationZ)
	m.updateModelMatrix()
}

// SetRotationX replaces the rotation with one about the X axis, in radians.
func (m *Model) SetRotationX(rad float32) {
	m.Rotation = mgl32.QuatRotate(rad, mgl32.Vec3{1, 0, 0})
	m.updateModelMatrix()
}

func (m *Model) updateModelMatrix() {
	// T * R * S * Local: scale first, then rotate, then translate.
	scaleMatrix := mgl32.Scale3D(m.Scale[0], m.Scale[1], m.Scale[2])
	rotationMatrix := m.Rotation.Mat4()
	translationMatrix := mgl32.Translate3D(m.Position[0], m.Position[1], m.Position[2])
	local := m.LocalMatrix
	if local == (mgl32.Mat4{}) {
		local = mgl32.Ident4()
	}
	m.ModelMatrix = translationMatrix.Mul4(rotationMatrix).Mul4(scaleMatrix).Mul4(local)
	m.IsDirty = false
	MarkFrustumDirty()
}

// SetLocalMatrix sets the node transform applied before the model's TRS.
func (m *Model) SetLocalMatrix(local mgl32.Mat4) {
	m.LocalMatrix = local
	m.updateModelMatrix()
}

// WorldMatrix is the model matrix including the parent group transform.
func (m *Model) WorldMatrix() mgl32.Mat4 {
	if m.IsDirty {
		m.updateModelMatrix()
	}
	if m.Parent != nil {
		return m.Parent.Matrix().Mul4(m.ModelMatrix)
	}
	return m.ModelMatrix
}

// NormalMatrix is the inverse transpose of the world matrix's upper 3x3.
func (m *Model) NormalMatrix() mgl32.Mat3 {
	world := m.WorldMatrix().Mat3()
	if world.Det() == 0 {
		// Degenerate scale (a zero-height door); any normal matrix will do.
		return mgl32.Ident3()
	}
	return world.Inv().Transpose()
}

// CalculateBoundingSphere computes a local-space sphere around the vertices.
func (m *Model) CalculateBoundingSphere() {
	n := m.VertexCount()
	if n == 0 {
		m.BoundingSphereCenter = mgl32.Vec3{}
		m.BoundingSphereRadius = 0
		return
	}

	var center mgl32.Vec3
	for i := 0; i < n; i++ {
		o := i * FloatsPerVertex
		center = center.Add(mgl32.Vec3{m.InterleavedData[o], m.InterleavedData[o+1], m.InterleavedData[o+2]})
	}
	center = center.Mul(1.0 / float32(n))

	var maxDistanceSq float32
	for i := 0; i < n; i++ {
		o := i * FloatsPerVertex
		v := mgl32.Vec3{m.InterleavedData[o], m.InterleavedData[o+1], m.InterleavedData[o+2]}
		if d := v.Sub(center).LenSqr(); d > maxDistanceSq {
			maxDistanceSq = d
		}
	}

	m.BoundingSphereCenter = center
	m.BoundingSphereRadius = float32(math.Sqrt(float64(maxDistanceSq)))
}

// WorldBoundingSphere transforms the local sphere into world space. The
// radius is scaled by the largest axis scale so the sphere stays conservative.
func (m *Model) WorldBoundingSphere() (mgl32.Vec3, float32) {
	world := m.WorldMatrix()
	center := world.Mul4x1(m.BoundingSphereCenter.Vec4(1)).Vec3()
	sx := world.Col(0).Vec3().Len()
	sy := world.Col(1).Vec3().Len()
	sz := world.Col(2).Vec3().Len()
	maxScale := float32(math.Max(float64(sx), math.Max(float64(sy), float64(sz))))
	return center, m.BoundingSphereRadius * maxScale
}

// Group is a transform node over a set of meshes, like an imported scene.
type Group struct {
	Name     string
	Position mgl32.Vec3
	Scale    mgl32.Vec3
	Rotation mgl32.Quat
	Children []*Model

	matrix mgl32.Mat4
}

func NewGroup(name string) *Group {
	g := &Group{
		Name:     name,
		Scale:    mgl32.Vec3{1, 1, 1},
		Rotation: mgl32.QuatIdent(),
	}
	g.updateMatrix()
	return g
}

// Add parents model to the group.
func (g *Group) Add(model *Model) {
	model.Parent = g
	g.Children = append(g.Children, model)
}

// Traverse visits every mesh in the group.
func (g *Group) Traverse(fn func(*Model)) {
	for _, child := range g.Children {
		fn(child)
	}
}

func (g *Group) SetPosition(x, y, z float32) {
	g.Position = mgl32.Vec3{x, y, z}
	g.updateMatrix()
}

func (g *Group) SetScale(x, y, z float32) {
	g.Scale = mgl32.Vec3{x, y, z}
	g.updateMatrix()
}

func (g *Group) Matrix() mgl32.Mat4 {
	return g.matrix
}

func (g *Group) updateMatrix() {
	g.matrix = mgl32.Translate3D(g.Position[0], g.Position[1], g.Position[2]).
		Mul4(g.Rotation.Mat4()).
		Mul4(mgl32.Scale3D(g.Scale[0], g.Scale[1], g.Scale[2]))
	MarkFrustumDirty()
}
