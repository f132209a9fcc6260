package convert

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/philsawicki/moana-to-usd/internal/material"
	"github.com/philsawicki/moana-to-usd/internal/mesh"
	"github.com/philsawicki/moana-to-usd/pkg/obj"
	"github.com/philsawicki/moana-to-usd/pkg/usd"
)

// ConvertAssets translates every OBJ asset under the dataset's obj/
// directory into a USD asset stage. Assets whose stage already exists
// (from a previous run) are skipped.
func (c *Converter) ConvertAssets() error {
	objFiles, err := c.discoverAssetFiles()
	if err != nil {
		return err
	}

	var units []unit
	for _, objPath := range objFiles {
		stagePath := c.assetStagePath(objPath)
		if _, err := os.Stat(stagePath); err == nil {
			c.log.Debug("asset already translated", zap.String("asset", objPath))
			continue
		}
		p := objPath
		units = append(units, unit{name: p, run: func() error { return c.convertAsset(p) }})
	}
	return c.runUnits("assets", units)
}

// discoverAssetFiles collects the dataset's OBJ files in lexical order.
func (c *Converter) discoverAssetFiles() ([]string, error) {
	objRoot := filepath.Join(c.opts.SourceDir, "obj")

	var objFiles []string
	err := filepath.WalkDir(objRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".obj") {
			objFiles = append(objFiles, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discovering OBJ assets: %w", err)
	}
	return objFiles, nil
}

func (c *Converter) convertAsset(objPath string) error {
	stream, err := obj.ParseFile(objPath)
	if err != nil {
		return err
	}
	if stream.IsEmpty() {
		c.log.Debug("empty OBJ stream", zap.String("asset", objPath))
		return nil
	}

	elementName := c.elementNameFor(objPath)
	lib, err := c.materialsFor(elementName)
	if err != nil {
		return err
	}
	meshes, err := mesh.Build(stream, lib.Lookup)
	if err != nil {
		return fmt.Errorf("assembling %s: %w", objPath, err)
	}

	layer := c.buildAssetLayer(elementName, meshes, lib)
	return layer.Export(c.assetStagePath(objPath))
}

// buildAssetLayer authors the asset stage: a component Xform holding
// the assembled meshes plus one material (with preview shader) per
// mesh group.
func (c *Converter) buildAssetLayer(elementName string, meshes []*mesh.Mesh, lib material.Library) *usd.Layer {
	layer := usd.NewLayer(elementName)
	root := layer.AddPrim(&usd.Prim{Name: elementName, Type: "Xform", Kind: "component"})
	geometry := root.AddChild(&usd.Prim{Name: "geometry"})
	materials := root.AddChild(&usd.Prim{Name: "materials"})

	for _, m := range meshes {
		materialName := strings.ReplaceAll(m.Group, "_geo", "_mat")
		materialPath := "/" + elementName + "/materials/" + materialName

		meshPrim := geometry.AddChild(&usd.Prim{
			Name:         m.Group,
			Type:         "Mesh",
			Instanceable: true,
		})
		meshPrim.SetUniformAttr("subdivisionScheme", "token", "catmullClark")
		meshPrim.SetAttr("faceVertexCounts", "int[]", m.FaceVertexCounts)
		meshPrim.SetAttr("faceVertexIndices", "int[]", m.FaceVertexIndices)
		meshPrim.SetAttr("points", "point3f[]", m.Points)
		meshPrim.SetAttr("extent", "float3[]", [][3]float32{m.Extent.Min, m.Extent.Max})
		if m.DisplayColor != nil {
			meshPrim.SetAttr("primvars:displayColor", "color3f[]", [][3]float32{*m.DisplayColor})
		}
		if m.DisplayOpacity != nil {
			meshPrim.SetAttr("primvars:displayOpacity", "float[]", []float32{*m.DisplayOpacity})
		}
		meshPrim.AddRel("material:binding", usd.Path(materialPath))

		materials.AddChild(c.buildMaterialPrim(elementName, m, materialName, materialPath, lib))
	}
	return layer
}

func (c *Converter) buildMaterialPrim(elementName string, m *mesh.Mesh, materialName, materialPath string, lib material.Library) *usd.Prim {
	materialPrim := &usd.Prim{Name: materialName, Type: "Material"}
	shaderPath := materialPath + "/previewSurfaceShader"

	shader := materialPrim.AddChild(&usd.Prim{Name: "previewSurfaceShader", Type: "Shader"})
	shader.SetUniformAttr("info:id", "token", "UsdPreviewSurface")

	if data := lib.Lookup(m.Material); data != nil {
		if color, ok := data.DisplayColor(); ok {
			shader.SetAttr("inputs:diffuseColor", "color3f", color)
			if elementName == "osOcean" {
				// The ocean ships with an opaque material; force a
				// see-through surface for preview renders.
				shader.SetAttr("inputs:opacity", "float", float32(0.2))
			} else if opacity, ok := data.DisplayOpacity(); ok {
				shader.SetAttr("inputs:opacity", "float", opacity)
			}
		} else {
			shader.SetAttr("inputs:diffuseColor", "color3f", [3]float32{1, 1, 1})
		}

		if data.Roughness != nil {
			shader.SetAttr("inputs:roughness", "float", float32(*data.Roughness))
		}
		if data.Metallic != nil {
			shader.SetAttr("inputs:metallic", "float", float32(*data.Metallic))
		}
		if data.Clearcoat != nil {
			shader.SetAttr("inputs:clearcoat", "float", float32(*data.Clearcoat))
		}
		if data.IOR != nil {
			shader.SetAttr("inputs:ior", "float", float32(*data.IOR))
		}
		if data.ClearcoatGloss != nil {
			clearcoatRoughness := 1 - *data.ClearcoatGloss
			if clearcoatRoughness < 0.01 {
				clearcoatRoughness = 0.01
			}
			shader.SetAttr("inputs:clearcoatRoughness", "float", float32(clearcoatRoughness))
		}

		if c.opts.LoadTextures && data.ColorMap != "" {
			// The JSON colorMap entry marks textured materials; the
			// ptex files themselves follow the dataset's naming
			// convention rather than the recorded path.
			colorMapPath := filepath.Join(c.opts.SourceDir, "textures", elementName, "Color", m.Group+".ptx")
			if _, err := os.Stat(colorMapPath); err == nil {
				colorMap := materialPrim.AddChild(&usd.Prim{Name: "colorMap", Type: "Shader"})
				colorMap.SetUniformAttr("info:id", "token", "HwPtexTexture_1")
				colorMap.SetAttr("inputs:file", "asset", usd.AssetRef(filepath.ToSlash(colorMapPath)))
				colorMap.SetAttr("outputs:rgb", "color3f", nil)

				shader.SetAttr("inputs:diffuseColor.connect", "color3f", usd.Path(materialPath+"/colorMap.outputs:rgb"))
			}
		}
	}

	shader.SetAttr("outputs:surface", "token", nil)
	materialPrim.SetAttr("outputs:surface.connect", "token", usd.Path(shaderPath+".outputs:surface"))
	return materialPrim
}
