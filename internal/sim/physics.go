package sim

import (
	"math"
	"math/rand"
)

const (
	terminalVelocity = 600.0 // max downward speed, px/s
	wallProbe        = 6.0   // horizontal reach of the wall probes
	embedProbe       = 5.0   // horizontal reach of the step-back probe
	bodyHalfHeight   = 5.0   // vertical offset of the head and waist probes
	feetOffset       = 10.0
	snapSearchRows   = 30
	slowRiseStep     = 1.0
	voidMargin       = 50.0 // below the field by this much is death
)

// resolveEntity corrects one entity against the terrain after it has
// integrated. It reports whether the entity fell into the void this tick.
func resolveEntity(e *Entity, t *Terrain, dt float64) bool {
	if e.dead {
		return false
	}
	if e.vy > terminalVelocity {
		e.vy = terminalVelocity
	}

	if e.vx != 0 {
		dir := math.Copysign(1, e.vx)
		probeX := e.x + dir*wallProbe
		switch {
		case t.Solid(probeX, e.y-bodyHalfHeight) || t.Solid(probeX, e.y+bodyHalfHeight):
			e.vx = 0
		case t.Solid(e.x+dir*embedProbe, e.y-bodyHalfHeight):
			e.x -= e.vx * dt
			e.vx = 0
		}
	}

	feetX := math.Floor(e.x)
	feetY := math.Floor(e.y + feetOffset)
	if t.Solid(feetX, feetY) {
		if e.vy >= 0 {
			e.vy = 0
			e.grounded = true
			offset := 0
			for offset < snapSearchRows && t.Solid(feetX, feetY-float64(offset)) {
				offset++
			}
			if offset < snapSearchRows {
				e.y -= float64(offset)
			} else {
				e.y -= slowRiseStep
			}
		}
	} else {
		e.grounded = false
	}

	if e.y > float64(t.Height())+voidMargin {
		e.kill()
		return true
	}
	if e.x < 0 {
		e.x = 0
		e.vx = 0
	}
	if w := float64(t.Width()); e.x > w {
		e.x = w
		e.vx = 0
	}
	return false
}

// Wind is the lateral acceleration applied to wind-affected projectiles.
type Wind struct {
	value float64
	max   float64
}

// NewWind returns a calm wind bounded by ±limit.
func NewWind(limit float64) Wind {
	return Wind{max: math.Abs(limit)}
}

// Value returns the current wind in px/s^2. Positive blows right.
func (w Wind) Value() float64 { return w.value }

// Max returns the bound used by Reroll.
func (w Wind) Max() float64 { return w.max }

// Reroll draws a fresh value uniformly from [-max, max].
func (w *Wind) Reroll(rng *rand.Rand) {
	w.value = (rng.Float64()*2 - 1) * w.max
}
