package convert

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/philsawicki/moana-to-usd/pkg/usd"
)

type lightDef struct {
	Type              string      `json:"type"`
	Color             []float64   `json:"color"`
	Width             *float64    `json:"width"`
	Height            *float64    `json:"height"`
	Exposure          *float64    `json:"exposure"`
	TranslationMatrix [16]float64 `json:"translationMatrix"`
}

// ConvertLights translates the dataset's light definitions into a
// single stage of USD lights. Light types the converter does not know
// are logged and skipped.
func (c *Converter) ConvertLights() error {
	path := filepath.Join(c.opts.SourceDir, "json", "lights", "lights.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading light definitions: %w", err)
	}

	var lights map[string]*lightDef
	if err := json.Unmarshal(data, &lights); err != nil {
		return fmt.Errorf("parsing light definitions %s: %w", path, err)
	}

	names := make([]string, 0, len(lights))
	for name := range lights {
		names = append(names, name)
	}
	sort.Strings(names)

	layer := usd.NewLayer("lights")
	root := layer.AddPrim(&usd.Prim{Name: "lights"})

	for _, name := range names {
		prim := c.buildLightPrim(name, lights[name])
		if prim != nil {
			root.AddChild(prim)
		}
	}

	return layer.Export(c.lightStagePath())
}

func (c *Converter) buildLightPrim(name string, def *lightDef) *usd.Prim {
	var prim *usd.Prim
	switch def.Type {
	case "dome":
		prim = &usd.Prim{Name: name, Type: "DomeLight"}
	case "quad":
		prim = &usd.Prim{Name: name, Type: "RectLight"}
		prim.SetAttr("width", "float", float32(floatOr(def.Width, 100)))
		prim.SetAttr("height", "float", float32(floatOr(def.Height, 100)))
	default:
		c.log.Warn("unknown light type",
			zap.String("light", name),
			zap.String("type", def.Type))
		return nil
	}

	prim.SetAttr("xformOp:transform", "matrix4d", usd.Matrix(def.TranslationMatrix))
	prim.SetUniformAttr("xformOpOrder", "token[]", []string{"xformOp:transform"})
	prim.SetAttr("exposure", "float", float32(floatOr(def.Exposure, 1)))
	if len(def.Color) >= 3 {
		prim.SetAttr("color", "color3f", [3]float32{
			float32(def.Color[0]), float32(def.Color[1]), float32(def.Color[2]),
		})
	}
	return prim
}

func floatOr(v *float64, fallback float64) float64 {
	if v != nil {
		return *v
	}
	return fallback
}
