// Package mesh assembles parsed OBJ streams into per-group meshes with
// compacted vertex tables, ready for authoring as renderable geometry.
package mesh

import (
	"fmt"

	"github.com/philsawicki/moana-to-usd/internal/material"
	"github.com/philsawicki/moana-to-usd/pkg/obj"
)

// Extent is an axis-aligned bounding box.
type Extent struct {
	Min [3]float32
	Max [3]float32
}

// Union grows the extent to include p.
func (e *Extent) Union(p [3]float32) {
	for i := 0; i < 3; i++ {
		if p[i] < e.Min[i] {
			e.Min[i] = p[i]
		}
		if p[i] > e.Max[i] {
			e.Max[i] = p[i]
		}
	}
}

// Mesh is the assembled geometry of one OBJ group. Points holds only
// the vertices the group references, renumbered compactly;
// FaceVertexIndices index into Points and FaceVertexCounts gives the
// arity of each face in order.
type Mesh struct {
	Group             string
	Material          string
	Points            [][3]float32
	FaceVertexCounts  []int
	FaceVertexIndices []int
	Extent            Extent
	DisplayColor      *[3]float32
	DisplayOpacity    *float32
}

// Lookup resolves a material name to its parameters. A nil result means
// the material is unknown and the mesh carries no display attributes.
type Lookup func(name string) *material.Material

// Build assembles one mesh per non-empty group of the stream, in the
// stream's group order. An empty stream yields no meshes.
func Build(stream *obj.Stream, lookup Lookup) ([]*Mesh, error) {
	if stream.IsEmpty() {
		return nil, nil
	}

	var meshes []*Mesh
	for _, group := range stream.Groups {
		if len(group.Faces) == 0 {
			continue
		}
		m, err := buildGroup(stream, group, lookup)
		if err != nil {
			return nil, err
		}
		meshes = append(meshes, m)
	}
	return meshes, nil
}

// buildGroup compacts a group's vertex references. Stream indices are
// renumbered in first-encounter order so that shared vertices dedupe
// within the group.
func buildGroup(stream *obj.Stream, group *obj.Group, lookup Lookup) (*Mesh, error) {
	m := &Mesh{
		Group:    group.Name,
		Material: stream.MaterialFor(group.Name),
	}

	compact := make(map[int]int)
	for _, face := range group.Faces {
		m.FaceVertexCounts = append(m.FaceVertexCounts, face.Size())
		for p := face.Begin; p < face.End; p++ {
			objIndex := stream.Points[p].Vert
			if objIndex < 0 || objIndex >= len(stream.Verts) {
				return nil, fmt.Errorf("group %q: %w: vertex %d of %d",
					group.Name, obj.ErrIndexOutOfRange, objIndex, len(stream.Verts))
			}
			smallIndex, seen := compact[objIndex]
			if !seen {
				smallIndex = len(m.Points)
				compact[objIndex] = smallIndex
				m.Points = append(m.Points, stream.Verts[objIndex])
			}
			m.FaceVertexIndices = append(m.FaceVertexIndices, smallIndex)
		}
	}

	m.Extent = extentOf(m.Points)
	if lookup != nil {
		if mat := lookup(m.Material); mat != nil {
			if color, ok := mat.DisplayColor(); ok {
				m.DisplayColor = &color
			}
			if opacity, ok := mat.DisplayOpacity(); ok {
				m.DisplayOpacity = &opacity
			}
		}
	}
	return m, nil
}

func extentOf(points [][3]float32) Extent {
	e := Extent{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		e.Union(p)
	}
	return e
}
