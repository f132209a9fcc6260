package convert

import (
	"math"
	"testing"

	"github.com/philsawicki/moana-to-usd/pkg/usd"
)

func cameraAttr(t *testing.T, p *usd.Prim, name string) (float32, bool) {
	t.Helper()
	for _, a := range p.Attrs {
		if a.Name == name {
			f, ok := a.Value.(float32)
			return f, ok
		}
	}
	return 0, false
}

func TestBuildCameraPrim_FOVFramesApertures(t *testing.T) {
	fov, ratio, focal := 40.0, 1.85, 35.0
	def := &cameraDef{
		Name:        "cam",
		Eye:         [3]float64{10, 2, 10},
		Look:        [3]float64{0, 0.5, 0},
		Up:          [3]float64{0, 1, 0},
		FOV:         &fov,
		Ratio:       &ratio,
		FocalLength: &focal,
	}
	prim := buildCameraPrim(def)

	horizontal, ok := cameraAttr(t, prim, "horizontalAperture")
	if !ok || horizontal != 24 {
		t.Errorf("horizontalAperture = %v, want 24", horizontal)
	}
	vertical, ok := cameraAttr(t, prim, "verticalAperture")
	if !ok || math.Abs(float64(vertical)-24/ratio) > 1e-4 {
		t.Errorf("verticalAperture = %v, want %v", vertical, 24/ratio)
	}

	// The field of view wins over the recorded focal length.
	wantFocal := 24 / (2 * math.Tan(fov*math.Pi/360))
	got, ok := cameraAttr(t, prim, "focalLength")
	if !ok || math.Abs(float64(got)-wantFocal) > 1e-4 {
		t.Errorf("focalLength = %v, want %v", got, wantFocal)
	}
}

func TestBuildCameraPrim_FocalLengthWithoutFOV(t *testing.T) {
	focal := 35.0
	def := &cameraDef{
		Name:        "cam",
		Eye:         [3]float64{10, 2, 10},
		Look:        [3]float64{0, 0.5, 0},
		Up:          [3]float64{0, 1, 0},
		FocalLength: &focal,
	}
	prim := buildCameraPrim(def)

	got, ok := cameraAttr(t, prim, "focalLength")
	if !ok || got != 35 {
		t.Errorf("focalLength = %v, want 35", got)
	}
	if _, ok := cameraAttr(t, prim, "horizontalAperture"); ok {
		t.Error("apertures should not be authored without a field of view")
	}
}
