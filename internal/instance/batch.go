package instance

// Batch holds the parallel per-instance arrays of one point instancer.
// All instances share prototype 0, so ProtoIndices is uniformly zero.
type Batch struct {
	Positions    [][3]float32
	Orientations [][4]float32 // scalar-first: w, x, y, z
	ProtoIndices []int
}

// Len returns the number of instances in the batch.
func (b *Batch) Len() int { return len(b.Positions) }

// BuildBatch decomposes each placement transform in order. The batch
// index of an instance equals its index in placements.
func BuildBatch(placements []Placement) *Batch {
	b := &Batch{
		Positions:    make([][3]float32, 0, len(placements)),
		Orientations: make([][4]float32, 0, len(placements)),
		ProtoIndices: make([]int, len(placements)),
	}
	for _, p := range placements {
		pos, rot := Decompose(p.Transform)
		b.Positions = append(b.Positions, [3]float32{
			float32(pos.X()), float32(pos.Y()), float32(pos.Z()),
		})
		b.Orientations = append(b.Orientations, [4]float32{
			float32(rot.W), float32(rot.V.X()), float32(rot.V.Y()), float32(rot.V.Z()),
		})
	}
	return b
}
