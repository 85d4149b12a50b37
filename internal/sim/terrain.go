package sim

import (
	"math"
	"math/rand"
)

// Material identifies what occupies one terrain cell. Any non-air material is solid.
type Material uint8

const (
	MaterialAir   Material = iota // carved or open sky
	MaterialDirt                  // body of the landscape
	MaterialGrass                 // band along the original surface line
)

const (
	surfaceBase       = 0.6  // fraction of field height where the mean surface sits
	grassHalfThick    = 10.0 // grass band extends this far above and below the surface
	hillAmpLarge      = 80.0
	hillAmpMedium     = 40.0
	hillAmpSmall      = 10.0
	hillFreqLarge     = 0.01
	hillFreqMedium    = 0.03
	hillFreqSmall     = 0.1
	defaultFieldW     = 1280
	defaultFieldH     = 720
	minFieldDimension = 16
)

// Terrain is the destructible solidity mask for one match. Cells are
// addressed by integer pixel coordinates, row-major. Material is only ever
// removed after Generate.
type Terrain struct {
	width    int
	height   int
	mask     []Material // row-major: index = row*width + col
	revision int        // bumped whenever the mask changes
	phases   [3]float64
}

// NewTerrain allocates an empty (all air) field. Call Generate to fill it.
func NewTerrain(width, height int) *Terrain {
	if width < minFieldDimension {
		width = minFieldDimension
	}
	if height < minFieldDimension {
		height = minFieldDimension
	}
	return &Terrain{
		width:  width,
		height: height,
		mask:   make([]Material, width*height),
	}
}

// Width returns the field width in pixels.
func (t *Terrain) Width() int { return t.width }

// Height returns the field height in pixels.
func (t *Terrain) Height() int { return t.height }

// Revision changes every time the mask is modified. Renderers cache imagery
// keyed on it.
func (t *Terrain) Revision() int { return t.revision }

// Generate rasterises a rolling heightmap built from three sine components.
// A zero seed produces the canonical landscape; any other seed shifts the
// phase of each component.
func (t *Terrain) Generate(seed int64) {
	t.phases = [3]float64{}
	if seed != 0 {
		rng := rand.New(rand.NewSource(seed)) // #nosec G404 -- terrain shape only
		for i := range t.phases {
			t.phases[i] = rng.Float64() * 2 * math.Pi
		}
	}

	for col := 0; col < t.width; col++ {
		surface := t.SurfaceY(float64(col))
		for row := 0; row < t.height; row++ {
			y := float64(row)
			m := MaterialAir
			switch {
			case y >= surface+grassHalfThick:
				m = MaterialDirt
			case y >= surface-grassHalfThick:
				m = MaterialGrass
			}
			t.mask[row*t.width+col] = m
		}
	}
	t.revision++
}

// SurfaceY returns the generated heightmap value at x. It describes the
// landscape before any carving.
func (t *Terrain) SurfaceY(x float64) float64 {
	h := float64(t.height) * surfaceBase
	return h +
		math.Sin(x*hillFreqLarge+t.phases[0])*hillAmpLarge +
		math.Sin(x*hillFreqMedium+t.phases[1])*hillAmpMedium +
		math.Sin(x*hillFreqSmall+t.phases[2])*hillAmpSmall
}

// inBounds returns true if (col, row) addresses a cell of the mask.
func (t *Terrain) inBounds(col, row int) bool {
	return col >= 0 && col < t.width && row >= 0 && row < t.height
}

// SolidCell reports whether the cell at (col, row) holds terrain.
func (t *Terrain) SolidCell(col, row int) bool {
	if !t.inBounds(col, row) {
		return false
	}
	return t.mask[row*t.width+col] != MaterialAir
}

// Solid reports whether the point (x, y) lies in terrain. Points outside the
// field are never solid.
func (t *Terrain) Solid(x, y float64) bool {
	if math.IsNaN(x) || math.IsNaN(y) {
		return false
	}
	fx := math.Floor(x)
	fy := math.Floor(y)
	if fx < 0 || fy < 0 || fx >= float64(t.width) || fy >= float64(t.height) {
		return false
	}
	return t.mask[int(fy)*t.width+int(fx)] != MaterialAir
}

// MaterialAt returns the material at (col, row), or MaterialAir out of bounds.
func (t *Terrain) MaterialAt(col, row int) Material {
	if !t.inBounds(col, row) {
		return MaterialAir
	}
	return t.mask[row*t.width+col]
}

// Explode clears every cell whose coordinate lies within r of (cx, cy) and
// returns how many cells changed. Clearing already-empty cells is a no-op.
func (t *Terrain) Explode(cx, cy, r float64) int {
	if r < 0 || !finite(cx) || !finite(cy) || !finite(r) {
		return 0
	}
	minCol := int(math.Max(0, math.Floor(cx-r)))
	maxCol := int(math.Min(float64(t.width-1), math.Ceil(cx+r)))
	minRow := int(math.Max(0, math.Floor(cy-r)))
	maxRow := int(math.Min(float64(t.height-1), math.Ceil(cy+r)))
	r2 := r * r

	cleared := 0
	for row := minRow; row <= maxRow; row++ {
		dy := float64(row) - cy
		for col := minCol; col <= maxCol; col++ {
			dx := float64(col) - cx
			if dx*dx+dy*dy > r2 {
				continue
			}
			idx := row*t.width + col
			if t.mask[idx] != MaterialAir {
				t.mask[idx] = MaterialAir
				cleared++
			}
		}
	}
	if cleared > 0 {
		t.revision++
	}
	return cleared
}

// SolidCount returns the number of solid cells.
func (t *Terrain) SolidCount() int {
	n := 0
	for _, m := range t.mask {
		if m != MaterialAir {
			n++
		}
	}
	return n
}
