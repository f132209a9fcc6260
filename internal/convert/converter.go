// Package convert turns the Moana Island Scene dataset (OBJ geometry
// plus JSON placement, material, camera and light definitions) into a
// de-duplicated, instanced USD scene.
package convert

import (
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/philsawicki/moana-to-usd/internal/instance"
	"github.com/philsawicki/moana-to-usd/internal/material"
)

// Options configures a Converter.
type Options struct {
	SourceDir        string
	DestDir          string
	Format           string // output file extension, without the dot
	LoadTextures     bool
	SkipSubInstances []string
	Workers          int
}

// Converter drives the dataset conversion. One Converter serves a
// single source/destination pair; its methods are safe to call from
// the worker pool.
type Converter struct {
	opts  Options
	log   *zap.Logger
	cache *instance.Cache

	mu        sync.Mutex
	materials map[string]material.Library
}

// New returns a Converter for the given options.
func New(opts Options, log *zap.Logger) *Converter {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Converter{
		opts:      opts,
		log:       log,
		cache:     instance.NewCache(),
		materials: make(map[string]material.Library),
	}
}

// PrimitivesDir returns the directory converted primitives are
// written to.
func (c *Converter) PrimitivesDir() string {
	return filepath.Join(c.opts.DestDir, "primitives")
}

// ext returns the output file extension, including the leading dot.
func (c *Converter) ext() string {
	return "." + c.opts.Format
}

// fileBase returns the file name up to the first dot.
func fileBase(path string) string {
	base := filepath.Base(path)
	if i := strings.IndexByte(base, '.'); i >= 0 {
		return base[:i]
	}
	return base
}

// assetStagePath returns the output stage path for an OBJ asset.
func (c *Converter) assetStagePath(objPath string) string {
	return filepath.Join(c.PrimitivesDir(), fileBase(objPath)+c.ext())
}

// elementStagePath returns the output stage path for a scene element.
func (c *Converter) elementStagePath(elementName string) string {
	return filepath.Join(c.PrimitivesDir(), "_element_"+elementName+c.ext())
}

// subInstanceStagePath returns the output stage path for the
// sub-instances described by a placement file.
func (c *Converter) subInstanceStagePath(jsonFile string) string {
	return filepath.Join(c.PrimitivesDir(), "_instances_"+fileBase(jsonFile)+c.ext())
}

// cameraStagePath returns the output stage path for the cameras.
func (c *Converter) cameraStagePath() string {
	return filepath.Join(c.PrimitivesDir(), "_cameras"+c.ext())
}

// lightStagePath returns the output stage path for the lights.
func (c *Converter) lightStagePath() string {
	return filepath.Join(c.PrimitivesDir(), "_lights"+c.ext())
}

// sceneStagePath returns the path of the top-level scene stage.
func (c *Converter) sceneStagePath() string {
	return filepath.Join(c.opts.DestDir, "MoanaIsland"+c.ext())
}

// elementNameFor derives the element an asset belongs to from its path
// under the dataset's obj/ directory.
func (c *Converter) elementNameFor(objPath string) string {
	rel, err := filepath.Rel(c.opts.SourceDir, objPath)
	if err != nil {
		return fileBase(objPath)
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) < 2 {
		return fileBase(objPath)
	}
	return parts[1]
}

// materialsFor returns the element's material library, loading it once.
func (c *Converter) materialsFor(elementName string) (material.Library, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if lib, ok := c.materials[elementName]; ok {
		return lib, nil
	}
	path := filepath.Join(c.opts.SourceDir, "json", elementName, "materials.json")
	lib, err := material.Load(path)
	if err != nil {
		return nil, err
	}
	c.materials[elementName] = lib
	return lib, nil
}

// skipSubInstance reports whether a sub-instance category is excluded
// from instantiation.
func (c *Converter) skipSubInstance(name string) bool {
	for _, s := range c.opts.SkipSubInstances {
		if s == name {
			return true
		}
	}
	return false
}
