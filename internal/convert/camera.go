package convert

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/philsawicki/moana-to-usd/pkg/usd"
)

// defaultHorizontalAperture is the film back width used when framing a
// camera from its field of view, in millimeters.
const defaultHorizontalAperture = 24.0

type cameraDef struct {
	Name        string     `json:"name"`
	FOV         *float64   `json:"fov"`
	Eye         [3]float64 `json:"eye"`
	Up          [3]float64 `json:"up"`
	Look        [3]float64 `json:"look"`
	FocalLength *float64   `json:"focalLength"`
	Ratio       *float64   `json:"ratio"`
}

// ConvertCameras translates the dataset's camera definitions into a
// single stage of USD cameras.
func (c *Converter) ConvertCameras() error {
	files, err := filepath.Glob(filepath.Join(c.opts.SourceDir, "json", "cameras", "*.json"))
	if err != nil {
		return err
	}
	sort.Strings(files)

	layer := usd.NewLayer("cameras")
	root := layer.AddPrim(&usd.Prim{Name: "cameras"})

	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("reading camera definition: %w", err)
		}
		var def cameraDef
		if err := json.Unmarshal(data, &def); err != nil {
			return fmt.Errorf("parsing camera definition %s: %w", file, err)
		}
		root.AddChild(buildCameraPrim(&def))
	}

	return layer.Export(c.cameraStagePath())
}

// buildCameraPrim authors one perspective camera, orienting it with a
// look-at basis derived from the definition's eye, look and up vectors.
func buildCameraPrim(def *cameraDef) *usd.Prim {
	up := mgl64.Vec3(def.Up).Normalize()
	look := mgl64.Vec3(def.Look).Normalize()
	forward := mgl64.Vec3(def.Eye).Sub(look).Normalize()
	side := up.Cross(forward)

	transform := usd.Matrix{
		side.X(), side.Y(), side.Z(), 0,
		up.X(), up.Y(), up.Z(), 0,
		forward.X(), forward.Y(), forward.Z(), 0,
		def.Eye[0], def.Eye[1], def.Eye[2], 1,
	}

	prim := &usd.Prim{Name: def.Name, Type: "Camera"}
	prim.SetAttr("xformOp:transform", "matrix4d", transform)
	prim.SetUniformAttr("xformOpOrder", "token[]", []string{"xformOp:transform"})
	prim.SetAttr("projection", "token", "perspective")

	// A horizontal fov pins the apertures to the default film back and
	// the focal length follows from it, overriding any recorded focal
	// length. Without a fov the recorded focal length stands alone.
	if def.FOV != nil && def.Ratio != nil {
		prim.SetAttr("horizontalAperture", "float", float32(defaultHorizontalAperture))
		prim.SetAttr("verticalAperture", "float", float32(defaultHorizontalAperture / *def.Ratio))
		focal := defaultHorizontalAperture / (2 * math.Tan(*def.FOV*math.Pi/360))
		prim.SetAttr("focalLength", "float", float32(focal))
	} else if def.FocalLength != nil {
		prim.SetAttr("focalLength", "float", float32(*def.FocalLength))
	}
	return prim
}
