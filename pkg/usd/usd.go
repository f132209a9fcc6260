// Package usd provides minimal authoring of USDA (text) layers: prim
// hierarchies with typed attributes, references and relationships. It
// covers only what the island converters emit and is not a general USD
// implementation.
package usd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnsupportedValue is returned when an attribute value has a Go type
// the writer cannot format.
var ErrUnsupportedValue = errors.New("unsupported attribute value type")

// Path is a prim or property path, written as </a/b> without quoting.
type Path string

// AssetRef is an asset-resolved path, written as @path@.
type AssetRef string

// Quat is a rotation stored scalar-first, matching USD's quath/quatf
// text form (w, x, y, z).
type Quat struct {
	W, X, Y, Z float32
}

// Matrix is a 4x4 matrix in the linear order it appears in the dataset,
// written as four row tuples.
type Matrix [16]float64

// Layer is an in-memory USDA layer.
type Layer struct {
	DefaultPrim string
	Prims       []*Prim
}

// NewLayer returns an empty layer with the given default prim name.
func NewLayer(defaultPrim string) *Layer {
	return &Layer{DefaultPrim: defaultPrim}
}

// AddPrim appends a root prim and returns it.
func (l *Layer) AddPrim(p *Prim) *Prim {
	l.Prims = append(l.Prims, p)
	return p
}

// Prim is one prim spec in a layer.
type Prim struct {
	Name         string
	Type         string // optional schema type ("Xform", "Mesh", ...)
	Kind         string
	Instanceable bool
	Active       *bool
	References   []string
	Attrs        []Attr
	Rels         []Rel
	Children     []*Prim
}

// AddChild appends a child prim and returns it.
func (p *Prim) AddChild(c *Prim) *Prim {
	p.Children = append(p.Children, c)
	return c
}

// SetAttr appends a typed attribute.
func (p *Prim) SetAttr(name, usdType string, value any) {
	p.Attrs = append(p.Attrs, Attr{Name: name, Type: usdType, Value: value})
}

// SetUniformAttr appends a uniform-variability attribute.
func (p *Prim) SetUniformAttr(name, usdType string, value any) {
	p.Attrs = append(p.Attrs, Attr{Name: name, Type: usdType, Uniform: true, Value: value})
}

// AddRel appends a relationship.
func (p *Prim) AddRel(name string, targets ...Path) {
	p.Rels = append(p.Rels, Rel{Name: name, Targets: targets})
}

// Attr is a typed prim attribute. Value may be a string (token), bool,
// int, float32/float64, [3]float32, []int, []string, [][3]float32,
// []Quat, Path or Matrix.
type Attr struct {
	Name    string
	Type    string // USDA type name, e.g. "int[]", "point3f[]"
	Uniform bool
	Value   any
}

// Rel is a prim relationship.
type Rel struct {
	Name    string
	Targets []Path
}

// Encode renders the layer as USDA text. The output depends only on
// the layer's contents, so unchanged inputs produce identical bytes.
func (l *Layer) Encode() ([]byte, error) {
	var b strings.Builder
	b.WriteString("#usda 1.0\n")
	if l.DefaultPrim != "" {
		fmt.Fprintf(&b, "(\n    defaultPrim = %q\n)\n", l.DefaultPrim)
	}
	for _, prim := range l.Prims {
		b.WriteString("\n")
		if err := writePrim(&b, prim, 0); err != nil {
			return nil, err
		}
	}
	return []byte(b.String()), nil
}

func writePrim(b *strings.Builder, p *Prim, depth int) error {
	indent := strings.Repeat("    ", depth)

	b.WriteString(indent + "def")
	if p.Type != "" {
		b.WriteString(" " + p.Type)
	}
	fmt.Fprintf(b, " %q", p.Name)

	meta := primMetadata(p)
	if len(meta) > 0 {
		b.WriteString(" (\n")
		for _, m := range meta {
			b.WriteString(indent + "    " + m + "\n")
		}
		b.WriteString(indent + ")")
	}
	b.WriteString("\n" + indent + "{\n")

	inner := indent + "    "
	for _, a := range p.Attrs {
		if a.Uniform {
			b.WriteString(inner + "uniform ")
		} else {
			b.WriteString(inner)
		}
		if a.Value == nil {
			// Declaration only, e.g. a shader output.
			fmt.Fprintf(b, "%s %s\n", a.Type, a.Name)
			continue
		}
		value, err := formatValue(a.Value)
		if err != nil {
			return fmt.Errorf("attribute %s on %q: %w", a.Name, p.Name, err)
		}
		fmt.Fprintf(b, "%s %s = %s\n", a.Type, a.Name, value)
	}
	for _, r := range p.Rels {
		b.WriteString(inner + "rel " + r.Name + " = " + formatTargets(r.Targets) + "\n")
	}
	for _, c := range p.Children {
		b.WriteString("\n")
		if err := writePrim(b, c, depth+1); err != nil {
			return err
		}
	}

	b.WriteString(indent + "}\n")
	return nil
}

func primMetadata(p *Prim) []string {
	var meta []string
	if p.Active != nil {
		meta = append(meta, "active = "+strconv.FormatBool(*p.Active))
	}
	if p.Kind != "" {
		meta = append(meta, fmt.Sprintf("kind = %q", p.Kind))
	}
	if p.Instanceable {
		meta = append(meta, "instanceable = true")
	}
	if len(p.References) > 0 {
		refs := make([]string, len(p.References))
		for i, r := range p.References {
			refs[i] = "@" + r + "@"
		}
		if len(refs) == 1 {
			meta = append(meta, "prepend references = "+refs[0])
		} else {
			meta = append(meta, "prepend references = ["+strings.Join(refs, ", ")+"]")
		}
	}
	return meta
}

func formatTargets(targets []Path) string {
	if len(targets) == 1 {
		return "<" + string(targets[0]) + ">"
	}
	parts := make([]string, len(targets))
	for i, t := range targets {
		parts[i] = "<" + string(t) + ">"
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func formatValue(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return strconv.Quote(val), nil
	case bool:
		return strconv.FormatBool(val), nil
	case int:
		return strconv.Itoa(val), nil
	case float32:
		return formatFloat32(val), nil
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64), nil
	case Path:
		return "<" + string(val) + ">", nil
	case AssetRef:
		return "@" + string(val) + "@", nil
	case [3]float32:
		return formatTuple3(val), nil
	case Quat:
		return "(" + formatFloat32(val.W) + ", " + formatFloat32(val.X) + ", " +
			formatFloat32(val.Y) + ", " + formatFloat32(val.Z) + ")", nil
	case Matrix:
		rows := make([]string, 4)
		for r := 0; r < 4; r++ {
			cells := make([]string, 4)
			for c := 0; c < 4; c++ {
				cells[c] = strconv.FormatFloat(val[r*4+c], 'g', -1, 64)
			}
			rows[r] = "(" + strings.Join(cells, ", ") + ")"
		}
		return "( " + strings.Join(rows, ", ") + " )", nil
	case []int:
		parts := make([]string, len(val))
		for i, n := range val {
			parts[i] = strconv.Itoa(n)
		}
		return "[" + strings.Join(parts, ", ") + "]", nil
	case []string:
		parts := make([]string, len(val))
		for i, s := range val {
			parts[i] = strconv.Quote(s)
		}
		return "[" + strings.Join(parts, ", ") + "]", nil
	case []float32:
		parts := make([]string, len(val))
		for i, f := range val {
			parts[i] = formatFloat32(f)
		}
		return "[" + strings.Join(parts, ", ") + "]", nil
	case [][3]float32:
		parts := make([]string, len(val))
		for i, t := range val {
			parts[i] = formatTuple3(t)
		}
		return "[" + strings.Join(parts, ", ") + "]", nil
	case []Quat:
		parts := make([]string, len(val))
		for i, q := range val {
			s, _ := formatValue(q)
			parts[i] = s
		}
		return "[" + strings.Join(parts, ", ") + "]", nil
	default:
		return "", fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
	}
}

func formatTuple3(t [3]float32) string {
	return "(" + formatFloat32(t[0]) + ", " + formatFloat32(t[1]) + ", " + formatFloat32(t[2]) + ")"
}

func formatFloat32(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}
