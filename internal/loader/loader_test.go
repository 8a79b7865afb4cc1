package loader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

const quadOBJ = `# door panel
mtllib panel.mtl
v -0.5 0 0
v 0.5 0 0
v 0.5 2 0
v -0.5 2 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
usemtl wood
f 1/1/1 2/2/1 3/3/1 4/4/1
`

const panelMTL = `newmtl wood
Kd 0.6 0.4 0.2
Ns 98
d 1
`

func TestLoadOBJ(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "panel.mtl", panelMTL)
	path := writeFile(t, dir, "panel.obj", quadOBJ)

	group, err := LoadOBJ(path)
	if err != nil {
		t.Fatalf("LoadOBJ: %v", err)
	}
	if len(group.Children) != 1 {
		t.Fatalf("Expected 1 mesh, got %d", len(group.Children))
	}
	model := group.Children[0]
	if model.VertexCount() != 4 {
		t.Errorf("shared corners should be unified: got %d vertices", model.VertexCount())
	}
	if len(model.Faces) != 6 {
		t.Errorf("quad should become 2 triangles, got %d indices", len(model.Faces))
	}
	if model.Material.Name != "wood" {
		t.Errorf("material = %q, want wood", model.Material.Name)
	}
	if model.Material.DiffuseColor != [3]float32{0.6, 0.4, 0.2} {
		t.Errorf("Kd = %v", model.Material.DiffuseColor)
	}
	if r := model.Material.Roughness; r <= 0.1 || r >= 0.2 {
		t.Errorf("Ns 98 should map to roughness ~0.14, got %v", r)
	}
	if model.SourcePath != path {
		t.Errorf("SourcePath = %q", model.SourcePath)
	}
}

func TestLoadOBJRecalculatesMissingNormals(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "tri.obj", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n")

	group, err := LoadOBJ(path)
	if err != nil {
		t.Fatalf("LoadOBJ: %v", err)
	}
	data := group.Children[0].InterleavedData
	if data[5] != 0 || data[6] != 0 || data[7] != 1 {
		t.Errorf("normal = %v, want +Z", data[5:8])
	}
}

func TestLoadOBJErrors(t *testing.T) {
	dir := t.TempDir()
	badIndex := writeFile(t, dir, "bad.obj", "v 0 0 0\nf 1 2 3\n")
	empty := writeFile(t, dir, "empty.obj", "v 0 0 0\n")

	if _, err := LoadOBJ(badIndex); err == nil {
		t.Error("out of range face index should fail")
	}
	if _, err := LoadOBJ(empty); !errors.Is(err, ErrNoMeshes) {
		t.Errorf("file without faces: err = %v, want ErrNoMeshes", err)
	}
	if _, err := LoadOBJ(filepath.Join(dir, "missing.obj")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file: err = %v, want not-exist", err)
	}
}

func TestLoadSceneDispatch(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "TRI.OBJ", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n")

	if _, err := LoadScene(path); err != nil {
		t.Errorf("LoadScene should pick the OBJ decoder case-insensitively: %v", err)
	}
	if _, err := LoadScene(filepath.Join(dir, "door.fbx")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestParseFace(t *testing.T) {
	tests := []struct {
		name  string
		parts []string
		want  int
	}{
		{"triangle", []string{"1", "2", "3"}, 3},
		{"quad", []string{"1/1", "2/2", "3/3", "4/4"}, 6},
		{"pentagon", []string{"1//1", "2//1", "3//1", "4//1", "5//1"}, 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			face, err := parseFace(tt.parts)
			if err != nil {
				t.Fatalf("parseFace: %v", err)
			}
			if len(face) != tt.want {
				t.Errorf("got %d corners, want %d", len(face), tt.want)
			}
		})
	}

	face, _ := parseFace([]string{"3//2", "1//2", "2//2"})
	if face[0].VertexIdx != 2 || face[0].TexCoordIdx != -1 || face[0].NormalIdx != 1 {
		t.Errorf("v//vn parsed as %+v", face[0])
	}
	if _, err := parseFace([]string{"1", "2"}); err == nil {
		t.Error("two-vertex face should fail")
	}
	if _, err := parseFace([]string{"a", "2", "3"}); err == nil {
		t.Error("non-numeric index should fail")
	}
}

func TestRecalculateNormals(t *testing.T) {
	vertices := []float32{0, 0, 0, 1, 0, 0, 0, 0, -1}
	normals := RecalculateNormals(vertices, []int32{0, 1, 2})

	if len(normals) != 9 {
		t.Fatalf("Expected 9 components, got %d", len(normals))
	}
	for i := 0; i < 3; i++ {
		if normals[i*3+1] != 1 {
			t.Errorf("vertex %d normal = %v, want +Y", i, normals[i*3:i*3+3])
		}
	}
	if RecalculateNormals(nil, nil) != nil {
		t.Error("empty input should return nil")
	}
}
