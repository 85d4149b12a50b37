package sim

import "math"

// ProjectileKind is the closed set of projectile behaviours. Each kind owns a
// contact policy in projectilePolicies.
type ProjectileKind int

const (
	KindImpact   ProjectileKind = iota // explodes on first contact
	KindBouncing                       // bounces until its fuse runs out
)

func (k ProjectileKind) String() string {
	switch k {
	case KindImpact:
		return "impact"
	case KindBouncing:
		return "bouncing"
	default:
		return "unknown"
	}
}

// WeaponKind selects what the active combatant fires.
type WeaponKind int

const (
	WeaponNone WeaponKind = iota // keep current selection
	WeaponBazooka
	WeaponGrenade
)

func (w WeaponKind) String() string {
	switch w {
	case WeaponNone:
		return "none"
	case WeaponBazooka:
		return "bazooka"
	case WeaponGrenade:
		return "grenade"
	default:
		return "unknown"
	}
}

const (
	maxPower        = 800.0 // px/s launch speed at full charge
	humanChargeRate = 500.0 // power per second while Fire is held
	aiChargeRate    = 600.0
	muzzleOffset    = 20.0 // spawn distance from the entity centre along the aim
	defaultAim      = -math.Pi / 4
)

// WeaponSpec describes the projectile a weapon launches.
type WeaponSpec struct {
	Kind            ProjectileKind
	WindAffected    bool
	Damage          int
	ExplosionRadius float64
	Fuse            float64 // seconds; bouncing kinds only
	Restitution     float64
	Friction        float64 // horizontal factor applied on each terrain bounce
}

var weaponTable = map[WeaponKind]WeaponSpec{
	WeaponBazooka: {
		Kind:            KindImpact,
		WindAffected:    true,
		Damage:          25,
		ExplosionRadius: 40,
	},
	WeaponGrenade: {
		Kind:            KindBouncing,
		WindAffected:    false,
		Damage:          35,
		ExplosionRadius: 50,
		Fuse:            3.0,
		Restitution:     0.6,
		Friction:        0.95,
	},
}

// SpecFor returns the spec for w, falling back to the bazooka.
func SpecFor(w WeaponKind) WeaponSpec {
	if spec, ok := weaponTable[w]; ok {
		return spec
	}
	return weaponTable[WeaponBazooka]
}

// fireControl is the per-turn aiming and charging state.
type fireControl struct {
	weapon   WeaponKind
	aim      float64 // radians
	power    float64
	charging bool
}

func newFireControl() fireControl {
	return fireControl{weapon: WeaponBazooka, aim: defaultAim}
}

// resetCharge clears charge without touching the weapon or aim.
func (f *fireControl) resetCharge() {
	f.power = 0
	f.charging = false
}

// aimAt points the aim from (fromX, fromY) toward (toX, toY).
func (f *fireControl) aimAt(fromX, fromY, toX, toY float64) {
	f.aim = math.Atan2(toY-fromY, toX-fromX)
}

// chargeHuman applies one tick of human fire input. Power saturates at
// maxPower while held; it returns true on the release that should launch.
func (f *fireControl) chargeHuman(held bool, dt float64) bool {
	if held {
		if !f.charging {
			f.charging = true
			f.power = 0
		}
		f.power = math.Min(f.power+humanChargeRate*dt, maxPower)
		return false
	}
	return f.charging
}

// launch builds a projectile for the current weapon from an entity at (x, y).
func (f *fireControl) launch(x, y float64) *Projectile {
	spec := SpecFor(f.weapon)
	cos, sin := math.Cos(f.aim), math.Sin(f.aim)
	return newProjectile(
		x+cos*muzzleOffset,
		y+sin*muzzleOffset,
		cos*f.power,
		sin*f.power,
		f.weapon,
		spec,
	)
}
