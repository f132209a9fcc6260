// Package material loads per-element material libraries from the
// dataset's json/<element>/materials.json files and resolves display
// colors for assembled meshes.
package material

import (
	"encoding/json"
	"fmt"
	"os"
)

// Material holds the shader parameters recorded for one named material.
// Fields absent from the source JSON stay nil and fall back to the
// renderer's defaults when authored.
type Material struct {
	BaseColor      []float64 `json:"baseColor"`
	Roughness      *float64  `json:"roughness"`
	Metallic       *float64  `json:"metallic"`
	Clearcoat      *float64  `json:"clearcoat"`
	IOR            *float64  `json:"ior"`
	ClearcoatGloss *float64  `json:"clearcoatGloss"`
	ColorMap       string    `json:"colorMap"` // non-empty marks a ptex-textured material
}

// sentinelColors are placeholder base colors in the dataset that mark
// "no authored color". A match suppresses the display color entirely.
var sentinelColors = [][]float64{
	{1, 0, 0},
	{1, 0, 1},
}

func isSentinel(c []float64) bool {
	for _, s := range sentinelColors {
		if len(c) != len(s) {
			continue
		}
		match := true
		for i := range s {
			if c[i] != s[i] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// DisplayColor returns the first three base color channels, or ok=false
// when the material has no usable color (missing, short, or sentinel).
func (m *Material) DisplayColor() (color [3]float32, ok bool) {
	if m == nil || len(m.BaseColor) < 3 || isSentinel(m.BaseColor) {
		return color, false
	}
	for i := 0; i < 3; i++ {
		color[i] = float32(m.BaseColor[i])
	}
	return color, true
}

// DisplayOpacity returns the fourth base color channel when present.
func (m *Material) DisplayOpacity() (opacity float32, ok bool) {
	if m == nil || len(m.BaseColor) < 4 {
		return 0, false
	}
	return float32(m.BaseColor[3]), true
}

// Library maps material names to their parameters for one element.
type Library map[string]*Material

// Load reads a materials.json file. A missing file is not an error: it
// yields an empty library, matching elements that ship no materials.
func Load(path string) (Library, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Library{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading material library: %w", err)
	}

	var lib Library
	if err := json.Unmarshal(data, &lib); err != nil {
		return nil, fmt.Errorf("parsing material library %s: %w", path, err)
	}
	return lib, nil
}

// Lookup returns the named material, or nil when unknown.
func (l Library) Lookup(name string) *Material {
	return l[name]
}
