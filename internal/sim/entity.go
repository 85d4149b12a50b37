package sim

import "fmt"

const (
	entityRadius   = 10.0
	entityMaxHP    = 100
	walkSpeed      = 60.0   // px/s while a movement key is held
	jumpImpulse    = -300.0 // px/s applied to vy on jump
	entityGravity  = 980.0  // px/s^2
	airDragPerTick = 0.98   // horizontal damping applied each tick while airborne
)

// Team identifies a side. Any number of teams may take part in a match.
type Team int

const (
	TeamRed  Team = iota // default human side
	TeamBlue             // default scripted side
)

func (t Team) String() string {
	switch t {
	case TeamRed:
		return "red"
	case TeamBlue:
		return "blue"
	default:
		return fmt.Sprintf("team%d", int(t))
	}
}

// labelPrefix is the one-letter prefix used in entity labels ("R0", "B1").
func (t Team) labelPrefix() string {
	switch t {
	case TeamRed:
		return "R"
	case TeamBlue:
		return "B"
	default:
		return fmt.Sprintf("T%d.", int(t))
	}
}

// ControlMode says who drives an entity during its turn.
type ControlMode int

const (
	ControlHuman    ControlMode = iota // driven by the Input passed to Step
	ControlScripted                    // driven by the AI controller
)

func (c ControlMode) String() string {
	switch c {
	case ControlHuman:
		return "human"
	case ControlScripted:
		return "scripted"
	default:
		return "unknown"
	}
}

// Entity is one combatant on the field.
type Entity struct {
	id      int
	label   string
	team    Team
	control ControlMode

	x, y     float64
	vx, vy   float64
	radius   float64
	grounded bool
	facing   int // 1 = right, -1 = left

	health int
	dead   bool
}

// NewEntity creates a combatant at (x, y) with full health, facing right.
func NewEntity(id int, label string, x, y float64, team Team, control ControlMode) *Entity {
	return &Entity{
		id:      id,
		label:   label,
		team:    team,
		control: control,
		x:       x,
		y:       y,
		radius:  entityRadius,
		facing:  1,
		health:  entityMaxHP,
	}
}

func (e *Entity) ID() int                    { return e.id }
func (e *Entity) Label() string              { return e.label }
func (e *Entity) Team() Team                 { return e.team }
func (e *Entity) Control() ControlMode       { return e.control }
func (e *Entity) Position() (x, y float64)   { return e.x, e.y }
func (e *Entity) Velocity() (vx, vy float64) { return e.vx, e.vy }
func (e *Entity) Health() int                { return e.health }
func (e *Entity) Dead() bool                 { return e.dead }
func (e *Entity) Grounded() bool             { return e.grounded }
func (e *Entity) Facing() int                { return e.facing }

func (e *Entity) String() string {
	return fmt.Sprintf("%s(%s hp=%d pos=%.1f,%.1f)", e.label, e.team, e.health, e.x, e.y)
}

// takeDamage subtracts amount from health and reports whether this hit killed
// the entity.
func (e *Entity) takeDamage(amount int) bool {
	if e.dead || amount <= 0 {
		return false
	}
	e.health -= amount
	if e.health <= 0 {
		e.health = 0
		e.dead = true
		return true
	}
	return false
}

// kill marks the entity dead without a damage source (falling into the void).
func (e *Entity) kill() {
	e.health = 0
	e.dead = true
	e.vx = 0
	e.vy = 0
}

// applyForce adds an instantaneous velocity change and lifts the entity off
// the ground so the resolver settles it again.
func (e *Entity) applyForce(fx, fy float64) {
	e.vx += fx
	e.vy += fy
	e.grounded = false
}

// applyMovement translates walk/jump input into velocity. Returns true when a
// jump was performed.
func (e *Entity) applyMovement(in Input) bool {
	switch {
	case in.Left:
		e.vx = -walkSpeed
		e.facing = -1
	case in.Right:
		e.vx = walkSpeed
		e.facing = 1
	default:
		// Walking stops instantly on release; airborne momentum is left to drag.
		if e.grounded {
			e.vx = 0
		}
	}

	if in.Jump && e.grounded {
		e.vy = jumpImpulse
		e.grounded = false
		return true
	}
	return false
}

// integrate applies gravity and advances position by one tick. Grounded state
// is cleared here and re-established by the resolver.
func (e *Entity) integrate(dt float64) {
	if e.dead {
		return
	}
	e.vy += entityGravity * dt

	e.x += e.vx * dt
	e.y += e.vy * dt

	if !e.grounded {
		e.vx *= airDragPerTick
	}
	e.grounded = false
}

// moving reports whether either velocity component exceeds threshold.
func (e *Entity) moving(threshold float64) bool {
	return abs(e.vx) > threshold || abs(e.vy) > threshold
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
