package loader

import (
	"DoorScene/internal/logger"
	"DoorScene/internal/renderer"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"
)

var ErrNoMeshes = errors.New("no triangle meshes found")

var ErrBadReference = errors.New("reference out of range")

// gltfReader turns one glTF document into a renderer group. Materials and
// images are converted once and shared by every primitive using them.
type gltfReader struct {
	doc       *gltf.Document
	dir       string
	name      string
	materials map[int]*renderer.Material
	textures  map[string]*renderer.Texture
}

// LoadGLTF reads a .gltf or .glb file, flattening its node hierarchy into a
// group whose meshes carry their node transforms as local matrices.
func LoadGLTF(path string) (*renderer.Group, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf %s: %w", path, err)
	}
	r := &gltfReader{
		doc:       doc,
		dir:       filepath.Dir(path),
		name:      path,
		materials: make(map[int]*renderer.Material),
		textures:  make(map[string]*renderer.Texture),
	}
	group := renderer.NewGroup(filepath.Base(path))
	if err := r.walkScene(group); err != nil {
		return nil, fmt.Errorf("load gltf %s: %w", path, err)
	}
	if len(group.Children) == 0 {
		return nil, fmt.Errorf("load gltf %s: %w", path, ErrNoMeshes)
	}
	for _, m := range group.Children {
		m.SourcePath = path
	}

	logger.Log.Info("glTF loaded",
		zap.String("path", path),
		zap.Int("meshes", len(group.Children)),
		zap.Int("materials", len(r.materials)),
		zap.Int("textures", len(r.textures)))
	return group, nil
}

func (r *gltfReader) walkScene(group *renderer.Group) error {
	var roots []int
	switch {
	case r.doc.Scene != nil && int(*r.doc.Scene) < len(r.doc.Scenes):
		for _, n := range r.doc.Scenes[*r.doc.Scene].Nodes {
			roots = append(roots, int(n))
		}
	case len(r.doc.Scenes) > 0:
		for _, n := range r.doc.Scenes[0].Nodes {
			roots = append(roots, int(n))
		}
	default:
		// No scene: every node that is nobody's child is a root.
		child := make(map[int]bool)
		for _, n := range r.doc.Nodes {
			for _, c := range n.Children {
				child[int(c)] = true
			}
		}
		for i := range r.doc.Nodes {
			if !child[i] {
				roots = append(roots, i)
			}
		}
	}

	for _, root := range roots {
		if err := r.walkNode(group, root, mgl32.Ident4(), 0); err != nil {
			return err
		}
	}
	return nil
}

const maxNodeDepth = 64

func (r *gltfReader) walkNode(group *renderer.Group, index int, parent mgl32.Mat4, depth int) error {
	if index < 0 || index >= len(r.doc.Nodes) {
		return fmt.Errorf("node %d out of range", index)
	}
	if depth > maxNodeDepth {
		return fmt.Errorf("node hierarchy deeper than %d", maxNodeDepth)
	}
	node := r.doc.Nodes[index]
	world := parent.Mul4(nodeMatrix(node))

	if node.Mesh != nil {
		meshIndex := int(*node.Mesh)
		if meshIndex >= len(r.doc.Meshes) {
			return fmt.Errorf("node %d references missing mesh %d", index, meshIndex)
		}
		mesh := r.doc.Meshes[meshIndex]
		for pi, prim := range mesh.Primitives {
			if prim.Mode != gltf.PrimitiveTriangles {
				logger.Log.Debug("Skipping non-triangle primitive",
					zap.String("mesh", mesh.Name),
					zap.Int("primitive", pi))
				continue
			}
			model, err := r.readPrimitive(prim)
			if err != nil {
				return fmt.Errorf("mesh %q primitive %d: %w", mesh.Name, pi, err)
			}
			model.Name = meshName(mesh.Name, node.Name, pi)
			model.SetLocalMatrix(world)
			group.Add(model)
		}
	}

	for _, c := range node.Children {
		if err := r.walkNode(group, int(c), world, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func meshName(mesh, node string, primitive int) string {
	name := mesh
	if name == "" {
		name = node
	}
	if name == "" {
		name = "mesh"
	}
	return fmt.Sprintf("%s#%d", name, primitive)
}

// nodeMatrix is the node's local transform, from its matrix or its TRS.
func nodeMatrix(node *gltf.Node) mgl32.Mat4 {
	m := node.MatrixOrDefault()
	identity := [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}
	if m != identity {
		var out mgl32.Mat4
		for i := range m {
			out[i] = float32(m[i])
		}
		return out
	}
	t := node.TranslationOrDefault()
	q := node.RotationOrDefault()
	s := node.ScaleOrDefault()
	rotation := mgl32.Quat{W: float32(q[3]), V: mgl32.Vec3{float32(q[0]), float32(q[1]), float32(q[2])}}
	return mgl32.Translate3D(float32(t[0]), float32(t[1]), float32(t[2])).
		Mul4(rotation.Normalize().Mat4()).
		Mul4(mgl32.Scale3D(float32(s[0]), float32(s[1]), float32(s[2])))
}

func (r *gltfReader) readPrimitive(prim *gltf.Primitive) (*renderer.Model, error) {
	doc := r.doc
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, errors.New("no POSITION attribute")
	}
	posAccessor, err := r.accessor(posIdx)
	if err != nil {
		return nil, fmt.Errorf("read positions: %w", err)
	}
	positions, err := modeler.ReadPosition(doc, posAccessor, nil)
	if err != nil {
		return nil, fmt.Errorf("read positions: %w", err)
	}

	var normals [][3]float32
	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		acr, aerr := r.accessor(idx)
		if aerr != nil {
			return nil, fmt.Errorf("read normals: %w", aerr)
		}
		if normals, err = modeler.ReadNormal(doc, acr, nil); err != nil {
			logger.Log.Warn("Unreadable normals, recalculating", zap.String("path", r.name), zap.Error(err))
			normals = nil
		}
	}

	var uvs [][2]float32
	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		acr, aerr := r.accessor(idx)
		if aerr != nil {
			return nil, fmt.Errorf("read texture coordinates: %w", aerr)
		}
		if uvs, err = modeler.ReadTextureCoord(doc, acr, nil); err != nil {
			logger.Log.Warn("Unreadable texture coordinates", zap.String("path", r.name), zap.Error(err))
			uvs = nil
		}
	}

	var faces []int32
	if prim.Indices != nil {
		acr, err := r.accessor(*prim.Indices)
		if err != nil {
			return nil, fmt.Errorf("read indices: %w", err)
		}
		indices, err := modeler.ReadIndices(doc, acr, nil)
		if err != nil {
			return nil, fmt.Errorf("read indices: %w", err)
		}
		faces = make([]int32, len(indices))
		for i, idx := range indices {
			if int(idx) >= len(positions) {
				return nil, fmt.Errorf("index %d out of range (%d vertices)", idx, len(positions))
			}
			faces[i] = int32(idx)
		}
	} else {
		faces = make([]int32, len(positions))
		for i := range faces {
			faces[i] = int32(i)
		}
	}
	faces = faces[:len(faces)/3*3]

	flat := make([]float32, 0, len(positions)*3)
	for _, p := range positions {
		flat = append(flat, p[0], p[1], p[2])
	}
	var recalculated []float32
	if len(normals) < len(positions) {
		recalculated = RecalculateNormals(flat, faces)
	}

	data := make([]float32, 0, len(positions)*renderer.FloatsPerVertex)
	for i, p := range positions {
		data = append(data, p[0], p[1], p[2])
		if i < len(uvs) {
			data = append(data, uvs[i][0], uvs[i][1])
		} else {
			data = append(data, 0, 0)
		}
		switch {
		case i < len(normals):
			data = append(data, normals[i][0], normals[i][1], normals[i][2])
		case recalculated != nil:
			data = append(data, recalculated[i*3], recalculated[i*3+1], recalculated[i*3+2])
		default:
			data = append(data, 0, 1, 0)
		}
	}

	model := renderer.NewModel("", data, faces)
	if prim.Material != nil {
		material, err := r.material(int(*prim.Material))
		if err != nil {
			return nil, err
		}
		model.Material = material
	}
	return model, nil
}

// accessor resolves an accessor reference; gltf.Open leaves them unchecked.
func (r *gltfReader) accessor(index int) (*gltf.Accessor, error) {
	if index < 0 || index >= len(r.doc.Accessors) {
		return nil, fmt.Errorf("%w: accessor %d of %d", ErrBadReference, index, len(r.doc.Accessors))
	}
	return r.doc.Accessors[index], nil
}

func (r *gltfReader) material(index int) (*renderer.Material, error) {
	if m, ok := r.materials[index]; ok {
		return m, nil
	}
	if index < 0 || index >= len(r.doc.Materials) {
		return nil, fmt.Errorf("material %d out of range", index)
	}
	src := r.doc.Materials[index]
	m := renderer.DefaultMaterial.Clone()
	m.Name = src.Name
	m.DoubleSided = src.DoubleSided
	m.Metallic = 1
	m.Roughness = 1

	if pbr := src.PBRMetallicRoughness; pbr != nil {
		c := pbr.BaseColorFactorOrDefault()
		m.DiffuseColor = [3]float32{float32(c[0]), float32(c[1]), float32(c[2])}
		if src.AlphaMode == gltf.AlphaBlend {
			m.Alpha = float32(c[3])
		}
		m.Metallic = float32(pbr.MetallicFactorOrDefault())
		m.Roughness = float32(pbr.RoughnessFactorOrDefault())
		if pbr.BaseColorTexture != nil {
			m.Map = r.texture(int(pbr.BaseColorTexture.Index), false)
		}
		if pbr.MetallicRoughnessTexture != nil {
			m.RoughnessMap = r.texture(int(pbr.MetallicRoughnessTexture.Index), true)
		}
	}
	if nt := src.NormalTexture; nt != nil && nt.Index != nil {
		m.NormalMap = r.texture(int(*nt.Index), true)
		m.NormalScale = float32(nt.ScaleOrDefault())
	}

	r.materials[index] = m
	return m, nil
}

// texture decodes the image behind a texture reference. A broken image only
// costs the material that slot.
func (r *gltfReader) texture(index int, linear bool) *renderer.Texture {
	if index < 0 || index >= len(r.doc.Textures) || r.doc.Textures[index].Source == nil {
		return nil
	}
	imageIndex := int(*r.doc.Textures[index].Source)
	key := fmt.Sprintf("%s#image%d", r.name, imageIndex)
	if linear {
		key += "/linear"
	}
	if tex, ok := r.textures[key]; ok {
		return tex
	}

	data, err := r.imageData(imageIndex)
	if err == nil {
		var tex *renderer.Texture
		tex, err = decodeTextureBytes(key, data, TextureOptions{Linear: linear})
		if err == nil {
			r.textures[key] = tex
			return tex
		}
	}
	logger.Log.Error("glTF texture unavailable",
		zap.String("path", r.name),
		zap.Int("image", imageIndex),
		zap.Error(err))
	r.textures[key] = nil
	return nil
}

// imageData returns the encoded bytes of an image from a buffer view, a data
// URI or a file next to the document.
func (r *gltfReader) imageData(index int) ([]byte, error) {
	if index < 0 || index >= len(r.doc.Images) {
		return nil, fmt.Errorf("image %d out of range", index)
	}
	img := r.doc.Images[index]

	if img.BufferView != nil {
		bvIndex := int(*img.BufferView)
		if bvIndex >= len(r.doc.BufferViews) {
			return nil, fmt.Errorf("image %d: buffer view %d out of range", index, bvIndex)
		}
		bv := r.doc.BufferViews[bvIndex]
		if int(bv.Buffer) >= len(r.doc.Buffers) {
			return nil, fmt.Errorf("image %d: buffer %d out of range", index, bv.Buffer)
		}
		buf := r.doc.Buffers[bv.Buffer].Data
		start, end := int(bv.ByteOffset), int(bv.ByteOffset)+int(bv.ByteLength)
		if end > len(buf) {
			return nil, fmt.Errorf("image %d: buffer view exceeds buffer", index)
		}
		return buf[start:end], nil
	}

	if strings.HasPrefix(img.URI, "data:") {
		return decodeDataURI(img.URI)
	}
	if img.URI == "" {
		return nil, fmt.Errorf("image %d has no source", index)
	}
	rel, err := url.PathUnescape(img.URI)
	if err != nil {
		rel = img.URI
	}
	return os.ReadFile(filepath.Join(r.dir, filepath.FromSlash(rel)))
}

func decodeDataURI(uri string) ([]byte, error) {
	comma := strings.IndexByte(uri, ',')
	if comma < 0 {
		return nil, errors.New("malformed data URI")
	}
	header, payload := uri[:comma], uri[comma+1:]
	if strings.HasSuffix(header, ";base64") {
		return base64.StdEncoding.DecodeString(payload)
	}
	s, err := url.PathUnescape(payload)
	return []byte(s), err
}
