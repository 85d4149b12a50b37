package sim

import "math"

// Input is the per-step control snapshot for the active combatant. The zero
// value means no input.
type Input struct {
	Left  bool
	Right bool
	Jump  bool
	Fire  bool // held: charge; released: launch

	Weapon WeaponKind // WeaponNone keeps the current selection

	// Pointer aiming: the aim angle is derived from the active entity to the
	// pointer. Ignored when HasAim is set.
	HasPointer bool
	PointerX   float64
	PointerY   float64

	// Direct aiming in radians, 0 = right, positive = clockwise (screen space).
	HasAim   bool
	AimAngle float64
}

// sanitized drops malformed fields: non-finite aim or pointer coordinates and
// weapon selections outside the known set.
func (in Input) sanitized() Input {
	if in.HasAim && !finite(in.AimAngle) {
		in.HasAim, in.AimAngle = false, 0
	}
	if in.HasPointer && (!finite(in.PointerX) || !finite(in.PointerY)) {
		in.HasPointer, in.PointerX, in.PointerY = false, 0, 0
	}
	if _, ok := weaponTable[in.Weapon]; !ok {
		in.Weapon = WeaponNone
	}
	return in
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// movementOnly strips firing and aiming from in. Used during RETREAT.
func (in Input) movementOnly() Input {
	return Input{Left: in.Left, Right: in.Right, Jump: in.Jump}
}
