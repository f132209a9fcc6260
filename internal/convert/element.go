package convert

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/philsawicki/moana-to-usd/internal/instance"
	"github.com/philsawicki/moana-to-usd/pkg/usd"
)

// ConvertElements builds one stage per scene element: the primary
// placement of its geometry, any instanced copies, and the point
// instancers for its sub-instances. Elements whose stage already
// exists (from a previous run) are skipped.
func (c *Converter) ConvertElements() error {
	elementFiles, err := c.discoverElementFiles()
	if err != nil {
		return err
	}

	var units []unit
	for _, path := range elementFiles {
		stagePath := c.elementStagePath(fileBase(path))
		if _, err := os.Stat(stagePath); err == nil {
			c.log.Debug("element already translated", zap.String("element", path))
			continue
		}
		p := path
		units = append(units, unit{name: p, run: func() error { return c.convertElement(p) }})
	}
	return c.runUnits("elements", units)
}

// discoverElementFiles collects json/<element>/<element>.json definition
// files, in lexical element order. The cameras and lights directories
// hold no element definitions and are handled by their own converters.
func (c *Converter) discoverElementFiles() ([]string, error) {
	jsonRoot := filepath.Join(c.opts.SourceDir, "json")
	entries, err := os.ReadDir(jsonRoot)
	if err != nil {
		return nil, fmt.Errorf("discovering elements: %w", err)
	}

	var elementFiles []string
	for _, entry := range entries {
		if !entry.IsDir() || entry.Name() == "cameras" || entry.Name() == "lights" {
			continue
		}
		candidate := filepath.Join(jsonRoot, entry.Name(), entry.Name()+".json")
		if _, err := os.Stat(candidate); err == nil {
			elementFiles = append(elementFiles, candidate)
		}
	}
	return elementFiles, nil
}

// elementNames returns the names of the discovered elements.
func (c *Converter) elementNames() ([]string, error) {
	files, err := c.discoverElementFiles()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = fileBase(f)
	}
	return names, nil
}

func (c *Converter) convertElement(path string) error {
	elem, err := instance.ReadElementFile(path)
	if err != nil {
		return err
	}

	layer := usd.NewLayer(elem.Name)
	root := layer.AddPrim(&usd.Prim{Name: elem.Name, Type: "Xform"})

	// Primary placement.
	if err := c.addPlacement(root, elem.Name, elem.TransformMatrix, elem.GeomOBJFile, elem.SubInstances); err != nil {
		return fmt.Errorf("element %s: %w", elem.Name, err)
	}

	// Instanced copies, in name order. Copies without their own
	// geometry or sub-instances inherit the element's.
	copyNames := make([]string, 0, len(elem.InstancedCopies))
	for name := range elem.InstancedCopies {
		copyNames = append(copyNames, name)
	}
	sort.Strings(copyNames)
	for _, name := range copyNames {
		cp := elem.InstancedCopies[name]
		geomFile := cp.GeomOBJFile
		if geomFile == "" {
			geomFile = elem.GeomOBJFile
		}
		subInstances := cp.SubInstances
		if subInstances == nil {
			subInstances = elem.SubInstances
		}
		if err := c.addPlacement(root, name, cp.TransformMatrix, geomFile, subInstances); err != nil {
			return fmt.Errorf("element %s, copy %s: %w", elem.Name, name, err)
		}
	}

	return layer.Export(c.elementStagePath(elem.Name))
}

// addPlacement authors one placed copy of the element's geometry under
// root, with its transform, asset reference and sub-instance stages.
func (c *Converter) addPlacement(root *usd.Prim, name string, transform [16]float64, geomFile string, subInstances map[string]instance.SubInstanceRef) error {
	prim := root.AddChild(&usd.Prim{Name: name, Type: "Xform"})
	prim.SetAttr("xformOp:transform", "matrix4d", usd.Matrix(transform))
	prim.SetUniformAttr("xformOpOrder", "token[]", []string{"xformOp:transform"})

	if geomFile != "" {
		prim.References = []string{"./" + fileBase(geomFile) + c.ext()}
	}

	subNames := make([]string, 0, len(subInstances))
	for subName := range subInstances {
		subNames = append(subNames, subName)
	}
	sort.Strings(subNames)
	for _, subName := range subNames {
		ref := subInstances[subName]
		if !ref.Archive() || c.skipSubInstance(subName) {
			continue
		}
		stagePath, err := c.materializeSubInstances(ref.JSONFile)
		if err != nil {
			return err
		}
		prim.AddChild(&usd.Prim{
			Name:       subName,
			References: []string{"./" + filepath.Base(stagePath)},
		})
	}
	return nil
}

// materializeSubInstances converts a placement file into its
// _instances_ stage, at most once per file. Stages present from a
// previous run are reused as-is.
func (c *Converter) materializeSubInstances(jsonFile string) (string, error) {
	stagePath := c.subInstanceStagePath(jsonFile)
	return c.cache.Materialize(stagePath, func() (string, error) {
		if _, err := os.Stat(stagePath); err == nil {
			return stagePath, nil
		}
		sourcePath := filepath.Join(c.opts.SourceDir, jsonFile)
		if err := c.convertSubInstances(sourcePath, stagePath); err != nil {
			return "", err
		}
		return stagePath, nil
	})
}

// convertSubInstances authors a stage of point instancers, one per
// prototype archive of the placement file, in document order.
func (c *Converter) convertSubInstances(sourcePath, stagePath string) error {
	groups, err := instance.ReadPlacementFile(sourcePath)
	if err != nil {
		return err
	}

	layer := usd.NewLayer("Instancers")
	root := layer.AddPrim(&usd.Prim{Name: "Instancers"})

	for _, group := range groups {
		protoName := fileBase(group.ProtoFile)
		instancerPath := "/Instancers/" + protoName

		batch := instance.BuildBatch(group.Placements)
		orientations := make([]usd.Quat, batch.Len())
		for i, q := range batch.Orientations {
			orientations[i] = usd.Quat{W: q[0], X: q[1], Y: q[2], Z: q[3]}
		}

		instancer := root.AddChild(&usd.Prim{Name: protoName, Type: "PointInstancer"})
		instancer.SetAttr("positions", "vector3f[]", batch.Positions)
		instancer.SetAttr("orientations", "quath[]", orientations)
		instancer.SetAttr("protoIndices", "int[]", batch.ProtoIndices)

		instancer.AddChild(&usd.Prim{
			Name:       "mesh",
			Type:       "Mesh",
			References: []string{"./" + fileBase(group.ProtoFile) + c.ext()},
		})
		instancer.AddRel("prototypes", usd.Path(instancerPath+"/mesh"))
	}

	return layer.Export(stagePath)
}
