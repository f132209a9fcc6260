package convert

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/multierr"

	"github.com/philsawicki/moana-to-usd/pkg/usd"
)

// Convert runs the full conversion: cameras, lights, assets, elements,
// then the top-level scene stage tying them together. Failures in one
// stage do not prevent the others from running; all errors are
// aggregated in the returned error.
func (c *Converter) Convert() error {
	if err := os.MkdirAll(c.PrimitivesDir(), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	var errs error
	errs = multierr.Append(errs, c.ConvertCameras())
	errs = multierr.Append(errs, c.ConvertLights())
	errs = multierr.Append(errs, c.ConvertAssets())
	errs = multierr.Append(errs, c.ConvertElements())
	errs = multierr.Append(errs, c.AssembleScene())
	return errs
}

// AssembleScene authors the top-level stage referencing the camera,
// light and element stages.
func (c *Converter) AssembleScene() error {
	names, err := c.elementNames()
	if err != nil {
		return err
	}

	layer := usd.NewLayer("MoanaIsland")
	root := layer.AddPrim(&usd.Prim{Name: "MoanaIsland"})

	stages := []struct {
		name string
		path string
	}{
		{"cameras", c.cameraStagePath()},
		{"lights", c.lightStagePath()},
	}
	for _, name := range names {
		stages = append(stages, struct {
			name string
			path string
		}{name, c.elementStagePath(name)})
	}

	for _, stage := range stages {
		rel, err := filepath.Rel(c.opts.DestDir, stage.path)
		if err != nil {
			return err
		}
		root.AddChild(&usd.Prim{
			Name:       stage.name,
			References: []string{filepath.ToSlash(rel)},
		})
	}

	return layer.Export(c.sceneStagePath())
}
