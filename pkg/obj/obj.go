// Package obj provides a streaming parser for Wavefront OBJ geometry
// files, covering the subset used by the Moana Island Scene dataset:
// vertices, texture coordinates, normals, faces, named groups and
// material-assignment directives.
package obj

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// OBJ parsing errors.
var (
	ErrShortDirective   = errors.New("directive has too few fields")
	ErrBadCoordinate    = errors.New("malformed coordinate")
	ErrBadFaceReference = errors.New("malformed face reference")
	ErrRelativeIndex    = errors.New("negative (relative) indices are not supported")
	ErrIndexOutOfRange  = errors.New("face reference out of range")
)

// ParseError describes a malformed line in an OBJ file.
type ParseError struct {
	Path string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error { return e.Err }

// NoIndex marks an absent texcoord or normal channel in a PointRef.
const NoIndex = -1

// DefaultGroup receives faces read before any explicit "g" directive.
const DefaultGroup = "default"

// DefaultMaterial is bound to groups without a "usemtl" directive.
const DefaultMaterial = "default"

// PointRef references the stream's vertex, texcoord and normal tables.
// Indices are 0-based; TexCoord and Normal are NoIndex when the
// channel is absent.
type PointRef struct {
	Vert     int
	TexCoord int
	Normal   int
}

// Face is a half-open range [Begin, End) into the stream's point table.
type Face struct {
	Begin int
	End   int
}

// Size returns the number of points in the face.
func (f Face) Size() int { return f.End - f.Begin }

// Group is a named, ordered partition of the stream's faces.
type Group struct {
	Name  string
	Faces []Face
}

// Stream is the parsed in-memory representation of one OBJ file. It is
// populated in a single pass by Parse and read-only afterwards.
type Stream struct {
	Verts   [][3]float32
	UVs     [][2]float32
	Normals [][3]float32
	Points  []PointRef
	Groups  []*Group

	materials map[string]string
	current   *Group
}

// IsEmpty reports whether the stream contains no vertices. Empty
// streams signal an empty asset and are skipped by the assembler.
func (s *Stream) IsEmpty() bool { return len(s.Verts) == 0 }

// MaterialFor returns the material bound to the named group, falling
// back to DefaultMaterial.
func (s *Stream) MaterialFor(groupName string) string {
	if m, ok := s.materials[groupName]; ok {
		return m
	}
	return DefaultMaterial
}

// FindGroup returns the group with the given name, or nil.
func (s *Stream) FindGroup(name string) *Group {
	for _, g := range s.Groups {
		if g.Name == name {
			return g
		}
	}
	return nil
}

// activateGroup makes the named group current, creating it on first
// mention.
func (s *Stream) activateGroup(name string) {
	if g := s.FindGroup(name); g != nil {
		s.current = g
		return
	}
	g := &Group{Name: name}
	s.Groups = append(s.Groups, g)
	s.current = g
}

// addFace appends a face to the current group, implicitly opening the
// default group on the first face of a groupless stream.
func (s *Stream) addFace(f Face) {
	if s.current == nil {
		s.activateGroup(DefaultGroup)
	}
	s.current.Faces = append(s.current.Faces, f)
}

// bindMaterial binds a material to the current group, overwriting any
// previous binding.
func (s *Stream) bindMaterial(materialName string) {
	if s.current == nil {
		s.activateGroup(DefaultGroup)
	}
	s.materials[s.current.Name] = materialName
}

// Parse reads OBJ directives from r. The name appears in error
// messages only. Unrecognized directives are skipped so that files
// using a larger OBJ feature set still parse.
func Parse(r io.Reader, name string) (*Stream, error) {
	stream := &Stream{
		materials: map[string]string{DefaultGroup: DefaultMaterial},
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		var err error
		switch fields[0] {
		case "v":
			err = stream.parseVertex(fields[1:])
		case "vn":
			err = stream.parseNormal(fields[1:])
		case "vt":
			err = stream.parseTexCoord(fields[1:])
		case "f":
			err = stream.parseFace(fields[1:])
		case "g":
			groupName := DefaultGroup
			if len(fields) > 1 {
				groupName = fields[1]
			}
			stream.activateGroup(groupName)
		case "usemtl":
			if len(fields) > 1 {
				stream.bindMaterial(fields[1])
			}
		}
		if err != nil {
			return nil, &ParseError{Path: name, Line: lineNo, Err: err}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}

	return stream, nil
}

// ParseFile parses an OBJ file from disk.
func ParseFile(path string) (*Stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening OBJ file: %w", err)
	}
	defer f.Close()
	return Parse(f, path)
}

func (s *Stream) parseVertex(fields []string) error {
	coords, err := parseFloats(fields, 3)
	if err != nil {
		return err
	}
	s.Verts = append(s.Verts, [3]float32{coords[0], coords[1], coords[2]})
	return nil
}

func (s *Stream) parseNormal(fields []string) error {
	coords, err := parseFloats(fields, 3)
	if err != nil {
		return err
	}
	s.Normals = append(s.Normals, [3]float32{coords[0], coords[1], coords[2]})
	return nil
}

func (s *Stream) parseTexCoord(fields []string) error {
	coords, err := parseFloats(fields, 2)
	if err != nil {
		return err
	}
	s.UVs = append(s.UVs, [2]float32{coords[0], coords[1]})
	return nil
}

func (s *Stream) parseFace(refs []string) error {
	if len(refs) < 3 {
		return fmt.Errorf("%w: face needs at least 3 references, got %d", ErrShortDirective, len(refs))
	}
	begin := len(s.Points)
	for _, ref := range refs {
		point, err := parsePointRef(ref)
		if err != nil {
			return err
		}
		s.Points = append(s.Points, point)
	}
	s.addFace(Face{Begin: begin, End: len(s.Points)})
	return nil
}

// parsePointRef parses one face reference of the form
// vert[/texcoord][/normal]. Indices are 1-based in the file; empty
// sub-fields leave the channel at NoIndex.
func parsePointRef(ref string) (PointRef, error) {
	point := PointRef{Vert: NoIndex, TexCoord: NoIndex, Normal: NoIndex}

	segments := strings.SplitN(ref, "/", 3)
	for i, seg := range segments {
		if seg == "" {
			continue
		}
		idx, err := strconv.Atoi(seg)
		if err != nil {
			return point, fmt.Errorf("%w: %q", ErrBadFaceReference, ref)
		}
		if idx < 0 {
			return point, fmt.Errorf("%w: %q", ErrRelativeIndex, ref)
		}
		if idx == 0 {
			return point, fmt.Errorf("%w: indices are 1-based in %q", ErrBadFaceReference, ref)
		}
		switch i {
		case 0:
			point.Vert = idx - 1
		case 1:
			point.TexCoord = idx - 1
		case 2:
			point.Normal = idx - 1
		}
	}
	if point.Vert == NoIndex {
		return point, fmt.Errorf("%w: missing vertex index in %q", ErrBadFaceReference, ref)
	}
	return point, nil
}

// parseFloats parses the first n fields as floats. Extra fields (such
// as an optional w coordinate) are ignored.
func parseFloats(fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("%w: want %d coordinates, got %d", ErrShortDirective, n, len(fields))
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		v, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrBadCoordinate, fields[i])
		}
		out[i] = float32(v)
	}
	return out, nil
}
