package loader

import (
	"DoorScene/internal/logger"
	"DoorScene/internal/renderer"
	"bufio"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

var ErrUnsupportedFormat = errors.New("unsupported model format")

// LoadScene loads a model file into a group, choosing the decoder by
// extension: glTF (.gltf, .glb) or Wavefront OBJ (.obj).
func LoadScene(path string) (*renderer.Group, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gltf", ".glb":
		return LoadGLTF(path)
	case ".obj":
		return LoadOBJ(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

type FaceVertex struct {
	VertexIdx   int32
	TexCoordIdx int32
	NormalIdx   int32
}

// objBuilder collects unified vertices for one usemtl section.
type objBuilder struct {
	material string
	data     []float32
	faces    []int32
	lookup   map[FaceVertex]int32
	missingN bool
}

// LoadOBJ reads a Wavefront OBJ file with its MTL library. Each usemtl
// section becomes one mesh of the group.
func LoadOBJ(filename string) (*renderer.Group, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open obj %s: %w", filename, err)
	}
	defer file.Close()

	var vertices, textureCoords, normals []float32
	materials := map[string]*renderer.Material{}
	var sections []*objBuilder
	current := func(name string) *objBuilder {
		if n := len(sections); n > 0 && sections[n-1].material == name {
			return sections[n-1]
		}
		b := &objBuilder{material: name, lookup: make(map[FaceVertex]int32)}
		sections = append(sections, b)
		return b
	}
	section := current("")

	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		switch parts[0] {
		case "v":
			vertex, err := parseVertex(parts[1:])
			if err != nil || len(vertex) < 3 {
				return nil, fmt.Errorf("%s:%d: bad vertex: %v", filename, lineNo, err)
			}
			vertices = append(vertices, vertex[:3]...)
		case "vn":
			normal, err := parseVertex(parts[1:])
			if err != nil || len(normal) < 3 {
				return nil, fmt.Errorf("%s:%d: bad normal: %v", filename, lineNo, err)
			}
			normals = append(normals, normal[:3]...)
		case "vt":
			texCoord, err := parseTextureCoordinate(parts[1:])
			if err != nil || len(texCoord) < 2 {
				return nil, fmt.Errorf("%s:%d: bad texture coordinate: %v", filename, lineNo, err)
			}
			textureCoords = append(textureCoords, texCoord[0], texCoord[1])
		case "f":
			faceVertices, err := parseFace(parts[1:])
			if err != nil {
				return nil, fmt.Errorf("%s:%d: %w", filename, lineNo, err)
			}
			for _, fv := range faceVertices {
				if err := section.add(fv, vertices, textureCoords, normals); err != nil {
					return nil, fmt.Errorf("%s:%d: %w", filename, lineNo, err)
				}
			}
		case "mtllib":
			if len(parts) >= 2 {
				mtlPath := filepath.Join(filepath.Dir(filename), strings.Join(parts[1:], " "))
				for name, m := range LoadMaterials(mtlPath) {
					materials[name] = m
				}
			}
		case "usemtl":
			if len(parts) >= 2 {
				section = current(parts[1])
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read obj %s: %w", filename, err)
	}

	group := renderer.NewGroup(filepath.Base(filename))
	for _, s := range sections {
		if len(s.faces) == 0 {
			continue
		}
		if s.missingN {
			s.fillNormals()
		}
		model := renderer.NewModel(s.material, s.data, s.faces)
		model.SourcePath = filename
		if m, ok := materials[s.material]; ok {
			model.Material = m
		} else if s.material != "" {
			logger.Log.Debug("Material not found", zap.String("material", s.material))
		}
		group.Add(model)
	}
	if len(group.Children) == 0 {
		return nil, fmt.Errorf("load obj %s: %w", filename, ErrNoMeshes)
	}

	logger.Log.Info("OBJ loaded",
		zap.String("path", filename),
		zap.Int("meshes", len(group.Children)),
		zap.Int("positions", len(vertices)/3))
	return group, nil
}

// add appends one face corner, reusing an existing vertex for a repeated
// v/vt/vn triplet.
func (b *objBuilder) add(fv FaceVertex, vertices, textureCoords, normals []float32) error {
	if idx, ok := b.lookup[fv]; ok {
		b.faces = append(b.faces, idx)
		return nil
	}
	if fv.VertexIdx < 0 || int(fv.VertexIdx)*3+2 >= len(vertices) {
		return fmt.Errorf("vertex index %d out of range", fv.VertexIdx+1)
	}
	idx := int32(len(b.data) / renderer.FloatsPerVertex)
	v := vertices[fv.VertexIdx*3 : fv.VertexIdx*3+3]
	b.data = append(b.data, v...)

	if fv.TexCoordIdx >= 0 && int(fv.TexCoordIdx)*2+1 < len(textureCoords) {
		b.data = append(b.data, textureCoords[fv.TexCoordIdx*2], textureCoords[fv.TexCoordIdx*2+1])
	} else {
		b.data = append(b.data, 0, 0)
	}

	if fv.NormalIdx >= 0 && int(fv.NormalIdx)*3+2 < len(normals) {
		b.data = append(b.data, normals[fv.NormalIdx*3:fv.NormalIdx*3+3]...)
	} else {
		b.data = append(b.data, 0, 0, 0)
		b.missingN = true
	}

	b.lookup[fv] = idx
	b.faces = append(b.faces, idx)
	return nil
}

// fillNormals computes smooth normals for vertices the file gave none.
func (b *objBuilder) fillNormals() {
	n := len(b.data) / renderer.FloatsPerVertex
	positions := make([]float32, 0, n*3)
	for i := 0; i < n; i++ {
		o := i * renderer.FloatsPerVertex
		positions = append(positions, b.data[o:o+3]...)
	}
	computed := RecalculateNormals(positions, b.faces)
	if computed == nil {
		return
	}
	for i := 0; i < n; i++ {
		o := i*renderer.FloatsPerVertex + 5
		if b.data[o] == 0 && b.data[o+1] == 0 && b.data[o+2] == 0 {
			copy(b.data[o:o+3], computed[i*3:i*3+3])
		}
	}
}

// LoadMaterials loads material properties from a .mtl file. A missing or
// unreadable library yields no materials; meshes keep the default.
func LoadMaterials(filename string) map[string]*renderer.Material {
	materials := make(map[string]*renderer.Material)
	file, err := os.Open(filename)
	if err != nil {
		logger.Log.Error("Error opening material file", zap.String("path", filename), zap.Error(err))
		return materials
	}
	defer file.Close()

	var currentMaterial *renderer.Material
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if fields[0] != "newmtl" && currentMaterial == nil {
			continue
		}

		switch fields[0] {
		case "newmtl":
			if len(fields) < 2 {
				logger.Log.Error("Malformed material line", zap.String("line", line))
				continue
			}
			currentMaterial = renderer.DefaultMaterial.Clone()
			currentMaterial.Name = fields[1]
			currentMaterial.Roughness = 0.5
			materials[fields[1]] = currentMaterial
		case "Kd": // Diffuse color
			if len(fields) == 4 {
				currentMaterial.DiffuseColor = parseColor(fields[1:])
			}
		case "Ns": // Phong exponent, mapped to roughness
			if len(fields) == 2 {
				currentMaterial.Roughness = shininessToRoughness(parseFloat(fields[1]))
			}
		case "Pr": // PBR extension
			if len(fields) == 2 {
				currentMaterial.Roughness = parseFloat(fields[1])
			}
		case "Pm":
			if len(fields) == 2 {
				currentMaterial.Metallic = parseFloat(fields[1])
			}
		case "d": // Dissolve (alpha/opacity)
			if len(fields) == 2 {
				currentMaterial.Alpha = parseFloat(fields[1])
			}
		case "map_Kd":
			currentMaterial.Map = mtlTexture(filename, fields, TextureOptions{FlipY: true})
		case "map_Bump", "map_bump", "bump", "norm":
			currentMaterial.NormalMap = mtlTexture(filename, fields, TextureOptions{FlipY: true, Linear: true})
		case "map_Pr":
			currentMaterial.RoughnessMap = mtlTexture(filename, fields, TextureOptions{FlipY: true, Linear: true})
		}
	}

	if err := scanner.Err(); err != nil {
		logger.Log.Error("Error reading material file", zap.String("path", filename), zap.Error(err))
	}
	return materials
}

// mtlTexture loads the texture named by the last field of a map statement;
// options such as -bm come before it. Paths are relative to the MTL file.
func mtlTexture(mtlPath string, fields []string, opts TextureOptions) *renderer.Texture {
	if len(fields) < 2 {
		return nil
	}
	texturePath := fields[len(fields)-1]
	if !filepath.IsAbs(texturePath) {
		texturePath = filepath.Join(filepath.Dir(mtlPath), texturePath)
	}
	tex, err := LoadTexture(texturePath, opts)
	if err != nil {
		logger.Log.Error("Material texture unavailable", zap.String("path", texturePath), zap.Error(err))
		return nil
	}
	return tex
}

func shininessToRoughness(ns float32) float32 {
	if ns < 0 {
		ns = 0
	}
	return mgl32.Clamp(float32(math.Sqrt(2/(float64(ns)+2))), 0, 1)
}

// parseColor parses RGB color components from a list of strings to an array of float32.
func parseColor(fields []string) [3]float32 {
	var color [3]float32
	for i, field := range fields {
		if val, err := strconv.ParseFloat(field, 32); err == nil {
			color[i] = float32(val)
		} else {
			logger.Log.Error("Error parsing color component", zap.Error(err))
		}
	}
	return color
}

// parseFloat parses a single string to a float32.
func parseFloat(s string) float32 {
	f, err := strconv.ParseFloat(s, 32)
	if err != nil {
		logger.Log.Error("Error parsing material value", zap.String("value", s), zap.Error(err))
		return 0
	}
	return float32(f)
}

func parseVertex(parts []string) ([]float32, error) {
	var vertex []float32
	for _, part := range parts {
		val, err := strconv.ParseFloat(part, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid vertex value %v: %w", part, err)
		}
		vertex = append(vertex, float32(val))
	}
	return vertex, nil
}

func parseFace(parts []string) ([]FaceVertex, error) {
	if len(parts) < 3 {
		return nil, fmt.Errorf("face needs at least 3 vertices, got %d", len(parts))
	}
	var face []FaceVertex
	for _, part := range parts {
		vals := strings.Split(part, "/")

		vertexIdx, err := strconv.ParseInt(vals[0], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid vertex index %v: %w", vals[0], err)
		}

		var texCoordIdx int32 = -1
		if len(vals) > 1 && vals[1] != "" {
			texIdx, err := strconv.ParseInt(vals[1], 10, 32)
			if err != nil {
				return nil, fmt.Errorf("invalid texture coordinate index %v: %w", vals[1], err)
			}
			texCoordIdx = int32(texIdx - 1) // .obj indices start at 1, not 0
		}

		var normalIdx int32 = -1
		if len(vals) > 2 && vals[2] != "" {
			normIdx, err := strconv.ParseInt(vals[2], 10, 32)
			if err != nil {
				return nil, fmt.Errorf("invalid normal index %v: %w", vals[2], err)
			}
			normalIdx = int32(normIdx - 1)
		}

		face = append(face, FaceVertex{
			VertexIdx:   int32(vertexIdx - 1),
			TexCoordIdx: texCoordIdx,
			NormalIdx:   normalIdx,
		})
	}

	if len(face) == 3 {
		return face, nil
	}
	// Polygons: triangulate as a fan from the first vertex.
	triangulated := make([]FaceVertex, 0, (len(face)-2)*3)
	for i := 1; i < len(face)-1; i++ {
		triangulated = append(triangulated, face[0], face[i], face[i+1])
	}
	return triangulated, nil
}

// for 2D textures
func parseTextureCoordinate(parts []string) ([]float32, error) {
	var texCoord []float32
	for _, part := range parts {
		val, err := strconv.ParseFloat(part, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid texture coordinate value %v: %w", part, err)
		}
		texCoord = append(texCoord, float32(val))
	}
	return texCoord, nil
}

// RecalculateNormals returns smooth per-vertex normals, area weighted, for
// flat xyz positions and triangle indices.
func RecalculateNormals(vertices []float32, faces []int32) []float32 {
	if len(vertices) == 0 || len(faces) == 0 {
		return nil
	}

	normals := make([]float32, len(vertices))
	for i := 0; i+2 < len(faces); i += 3 {
		idx0 := faces[i] * 3
		idx1 := faces[i+1] * 3
		idx2 := faces[i+2] * 3

		if idx0 < 0 || idx1 < 0 || idx2 < 0 ||
			idx0+2 >= int32(len(vertices)) || idx1+2 >= int32(len(vertices)) || idx2+2 >= int32(len(vertices)) {
			logger.Log.Debug("Skipping out of range triangle", zap.Int("face", i/3))
			continue
		}

		v0 := mgl32.Vec3{vertices[idx0], vertices[idx0+1], vertices[idx0+2]}
		v1 := mgl32.Vec3{vertices[idx1], vertices[idx1+1], vertices[idx1+2]}
		v2 := mgl32.Vec3{vertices[idx2], vertices[idx2+1], vertices[idx2+2]}

		// Unnormalized cross product weights by triangle area.
		normal := v1.Sub(v0).Cross(v2.Sub(v0))
		for j := int32(0); j < 3; j++ {
			normals[idx0+j] += normal[j]
			normals[idx1+j] += normal[j]
			normals[idx2+j] += normal[j]
		}
	}

	for i := 0; i+2 < len(normals); i += 3 {
		n := mgl32.Vec3{normals[i], normals[i+1], normals[i+2]}
		if n.Len() == 0 {
			n = mgl32.Vec3{0, 1, 0}
		} else {
			n = n.Normalize()
		}
		normals[i], normals[i+1], normals[i+2] = n[0], n[1], n[2]
	}
	return normals
}
