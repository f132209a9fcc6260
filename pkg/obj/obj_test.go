package obj

import (
	"errors"
	"strings"
	"testing"
)

func parseString(t *testing.T, src string) *Stream {
	t.Helper()
	stream, err := Parse(strings.NewReader(src), "test.obj")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return stream
}

func TestParse_GroupsAndMaterials(t *testing.T) {
	src := `
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
g quadGroup
usemtl redMat
f 1 2 3 4
g triGroup
f 1 2 3
`
	stream := parseString(t, src)

	if got := len(stream.Verts); got != 4 {
		t.Fatalf("got %d verts, want 4", got)
	}
	if got := len(stream.Groups); got != 2 {
		t.Fatalf("got %d groups, want 2", got)
	}

	quad := stream.FindGroup("quadGroup")
	if quad == nil {
		t.Fatal("quadGroup not found")
	}
	if len(quad.Faces) != 1 || quad.Faces[0].Size() != 4 {
		t.Errorf("quadGroup faces = %+v, want one quad", quad.Faces)
	}
	if got := stream.MaterialFor("quadGroup"); got != "redMat" {
		t.Errorf("MaterialFor(quadGroup) = %q, want redMat", got)
	}
	if got := stream.MaterialFor("triGroup"); got != DefaultMaterial {
		t.Errorf("MaterialFor(triGroup) = %q, want default", got)
	}

	tri := stream.FindGroup("triGroup")
	if len(tri.Faces) != 1 || tri.Faces[0].Size() != 3 {
		t.Errorf("triGroup faces = %+v, want one triangle", tri.Faces)
	}
}

func TestParse_FaceBeforeGroupOpensDefault(t *testing.T) {
	src := `
v 0 0 0
v 1 0 0
v 0 1 0
f 1 2 3
`
	stream := parseString(t, src)

	if got := len(stream.Groups); got != 1 {
		t.Fatalf("got %d groups, want 1", got)
	}
	if stream.Groups[0].Name != DefaultGroup {
		t.Errorf("group name = %q, want %q", stream.Groups[0].Name, DefaultGroup)
	}
	if got := stream.MaterialFor(DefaultGroup); got != DefaultMaterial {
		t.Errorf("MaterialFor(default) = %q, want %q", got, DefaultMaterial)
	}
}

func TestParse_BareGroupDirective(t *testing.T) {
	src := `
v 0 0 0
v 1 0 0
v 0 1 0
g
f 1 2 3
`
	stream := parseString(t, src)
	if stream.FindGroup(DefaultGroup) == nil {
		t.Fatal("bare g directive should open the default group")
	}
}

func TestParse_GroupReactivation(t *testing.T) {
	src := `
v 0 0 0
v 1 0 0
v 0 1 0
g a
f 1 2 3
g b
f 1 2 3
g a
f 1 2 3
`
	stream := parseString(t, src)
	if got := len(stream.Groups); got != 2 {
		t.Fatalf("got %d groups, want 2 (reactivation must not duplicate)", got)
	}
	a := stream.FindGroup("a")
	if got := len(a.Faces); got != 2 {
		t.Errorf("group a has %d faces, want 2", got)
	}
}

func TestParse_PointRefChannels(t *testing.T) {
	src := `
v 0 0 0
v 1 0 0
v 0 1 0
vt 0 0
vn 0 0 1
f 1/1/1 2//1 3
`
	stream := parseString(t, src)

	want := []PointRef{
		{Vert: 0, TexCoord: 0, Normal: 0},
		{Vert: 1, TexCoord: NoIndex, Normal: 0},
		{Vert: 2, TexCoord: NoIndex, Normal: NoIndex},
	}
	if len(stream.Points) != len(want) {
		t.Fatalf("got %d points, want %d", len(stream.Points), len(want))
	}
	for i, w := range want {
		if stream.Points[i] != w {
			t.Errorf("point %d = %+v, want %+v", i, stream.Points[i], w)
		}
	}
}

func TestParse_IgnoresUnknownDirectives(t *testing.T) {
	src := `
# comment line
mtllib island.mtl
o someObject
s off
v 0 0 0
v 1 0 0
v 0 1 0
f 1 2 3
`
	stream := parseString(t, src)
	if got := len(stream.Verts); got != 3 {
		t.Errorf("got %d verts, want 3", got)
	}
}

func TestParse_VertexExtraFieldsIgnored(t *testing.T) {
	stream := parseString(t, "v 1 2 3 1.0\n")
	if stream.Verts[0] != [3]float32{1, 2, 3} {
		t.Errorf("vert = %v, want [1 2 3]", stream.Verts[0])
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr error
	}{
		{"short vertex", "v 1 2\n", ErrShortDirective},
		{"bad coordinate", "v 1 2 x\n", ErrBadCoordinate},
		{"short face", "v 0 0 0\nf 1 1\n", ErrShortDirective},
		{"bad face ref", "v 0 0 0\nf a b c\n", ErrBadFaceReference},
		{"zero index", "v 0 0 0\nf 0 1 1\n", ErrBadFaceReference},
		{"negative index", "v 0 0 0\nf -1 1 1\n", ErrRelativeIndex},
		{"missing vertex index", "v 0 0 0\nf /1/1 1 1\n", ErrBadFaceReference},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.src), "bad.obj")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got error %v, want %v", err, tt.wantErr)
			}
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("error %v is not a *ParseError", err)
			}
			if parseErr.Path != "bad.obj" || parseErr.Line == 0 {
				t.Errorf("ParseError location = %s:%d, want bad.obj with a line number", parseErr.Path, parseErr.Line)
			}
		})
	}
}

func TestStream_IsEmpty(t *testing.T) {
	empty := parseString(t, "# nothing here\n")
	if !empty.IsEmpty() {
		t.Error("stream without vertices should be empty")
	}
	full := parseString(t, "v 0 0 0\n")
	if full.IsEmpty() {
		t.Error("stream with vertices should not be empty")
	}
}
