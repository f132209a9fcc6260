package instance

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrBadDefinition is returned when a JSON definition file does not
// have the expected shape.
var ErrBadDefinition = errors.New("malformed definition file")

// SubInstanceRef points at one family of sub-instances of an element.
// Only refs of type "archive" are instantiable geometry.
type SubInstanceRef struct {
	Type     string `json:"type"`
	JSONFile string `json:"jsonFile"`
}

// Archive reports whether the ref names instantiable OBJ archives.
func (r SubInstanceRef) Archive() bool { return r.Type == "archive" }

// Copy is an additional placement of an element's geometry. Fields left
// empty inherit from the parent element.
type Copy struct {
	TransformMatrix [16]float64               `json:"transformMatrix"`
	GeomOBJFile     string                    `json:"geomObjFile"`
	SubInstances    map[string]SubInstanceRef `json:"instancedPrimitiveJsonFiles"`
}

// Element is one top-level element definition from json/<name>/<name>.json.
type Element struct {
	Name            string                    `json:"name"`
	GeomOBJFile     string                    `json:"geomObjFile"`
	TransformMatrix [16]float64               `json:"transformMatrix"`
	SubInstances    map[string]SubInstanceRef `json:"instancedPrimitiveJsonFiles"`
	InstancedCopies map[string]*Copy          `json:"instancedCopies"`
}

// ReadElementFile parses a top-level element definition.
func ReadElementFile(path string) (*Element, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading element definition: %w", err)
	}
	var e Element
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("parsing element definition %s: %w", path, err)
	}
	return &e, nil
}

// Placement is one named instance transform.
type Placement struct {
	Name      string
	Transform [16]float64
}

// PlacementGroup is all placements of one prototype OBJ archive, in the
// order the source document lists them.
type PlacementGroup struct {
	ProtoFile  string
	Placements []Placement
}

// ReadPlacementFile parses a sub-instance placement file: an object
// mapping prototype OBJ paths to objects of named 16-float transforms.
// Document order is preserved for both levels so that re-runs produce
// identical output.
func ReadPlacementFile(path string) ([]PlacementGroup, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading placement file: %w", err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	if err := expectDelim(dec, '{'); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var groups []PlacementGroup
	for dec.More() {
		protoFile, err := stringToken(dec)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		group := PlacementGroup{ProtoFile: protoFile}

		if err := expectDelim(dec, '{'); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		for dec.More() {
			name, err := stringToken(dec)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			var m [16]float64
			if err := dec.Decode(&m); err != nil {
				return nil, fmt.Errorf("%s: instance %q: %w", path, name, err)
			}
			group.Placements = append(group.Placements, Placement{Name: name, Transform: m})
		}
		if err := expectDelim(dec, '}'); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		groups = append(groups, group)
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return groups, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadDefinition, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("%w: expected %q, got %v", ErrBadDefinition, want, tok)
	}
	return nil
}

func stringToken(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadDefinition, err)
	}
	s, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("%w: expected string key, got %v", ErrBadDefinition, tok)
	}
	return s, nil
}
