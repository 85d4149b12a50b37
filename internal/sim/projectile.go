package sim

import "math"

const (
	projectileRadius  = 3.0
	projectileGravity = 500.0 // px/s^2
	armingDelay       = 0.1   // seconds before a projectile can touch an entity
	audibleSpeed      = 10.0  // bounces slower than this on both axes are silent
	entityBounceDamp  = 0.5
	entityBouncePush  = 2.0
	blastReachFactor  = 1.5   // damage/knockback reach as a multiple of the carve radius
	knockbackImpulse  = 500.0 // px/s at zero distance
	distanceEpsilon   = 1e-6
)

// Projectile is one in-flight shot. It is owned by a ProjectileSystem.
type Projectile struct {
	x, y         float64
	prevX, prevY float64
	vx, vy       float64
	radius       float64

	kind            ProjectileKind
	weapon          WeaponKind
	windAffected    bool
	damage          int
	explosionRadius float64
	fuse            float64
	restitution     float64
	friction        float64

	age         float64
	active      bool
	fuseExpired bool
}

func newProjectile(x, y, vx, vy float64, weapon WeaponKind, spec WeaponSpec) *Projectile {
	return &Projectile{
		x:               x,
		y:               y,
		prevX:           x,
		prevY:           y,
		vx:              vx,
		vy:              vy,
		radius:          projectileRadius,
		kind:            spec.Kind,
		weapon:          weapon,
		windAffected:    spec.WindAffected,
		damage:          spec.Damage,
		explosionRadius: spec.ExplosionRadius,
		fuse:            spec.Fuse,
		restitution:     spec.Restitution,
		friction:        spec.Friction,
		active:          true,
	}
}

func (p *Projectile) Position() (x, y float64)   { return p.x, p.y }
func (p *Projectile) Velocity() (vx, vy float64) { return p.vx, p.vy }
func (p *Projectile) Kind() ProjectileKind       { return p.kind }
func (p *Projectile) Weapon() WeaponKind         { return p.weapon }
func (p *Projectile) Fuse() float64              { return p.fuse }
func (p *Projectile) Active() bool               { return p.active }

func (p *Projectile) audible() bool {
	return abs(p.vx) > audibleSpeed || abs(p.vy) > audibleSpeed
}

// integrate advances one tick of ballistic flight.
func (p *Projectile) integrate(dt, wind float64) {
	p.prevX, p.prevY = p.x, p.y
	p.age += dt
	if p.kind == KindBouncing {
		p.fuse -= dt
		if p.fuse <= 0 {
			p.fuseExpired = true
		}
	}
	p.vy += projectileGravity * dt
	if p.windAffected {
		p.vx += wind * dt
	}
	p.x += p.vx * dt
	p.y += p.vy * dt
}

// contactResult is what a contact policy decided.
type contactResult int

const (
	contactNone contactResult = iota
	contactExplode
	contactBounce       // audible bounce
	contactSilentBounce // bounce below the audible threshold
)

// contactPolicy is the per-kind reaction to touching an entity or terrain.
// nx, ny is the unit normal pointing from the projectile toward the entity.
type contactPolicy struct {
	entity  func(p *Projectile, nx, ny float64) contactResult
	terrain func(p *Projectile, t *Terrain) contactResult
}

var projectilePolicies = [...]contactPolicy{
	KindImpact: {
		entity:  func(*Projectile, float64, float64) contactResult { return contactExplode },
		terrain: func(*Projectile, *Terrain) contactResult { return contactExplode },
	},
	KindBouncing: {
		entity:  bounceOffEntity,
		terrain: bounceOffTerrain,
	},
}

func policyFor(k ProjectileKind) contactPolicy {
	if int(k) >= 0 && int(k) < len(projectilePolicies) {
		return projectilePolicies[k]
	}
	return projectilePolicies[KindImpact]
}

// bounceOffEntity reflects velocity about the contact normal, damps it and
// pushes the projectile back out of the entity.
func bounceOffEntity(p *Projectile, nx, ny float64) contactResult {
	dot := p.vx*nx + p.vy*ny
	p.vx = (p.vx - 2*dot*nx) * entityBounceDamp
	p.vy = (p.vy - 2*dot*ny) * entityBounceDamp
	p.x -= nx * entityBouncePush
	p.y -= ny * entityBouncePush
	if p.audible() {
		return contactBounce
	}
	return contactSilentBounce
}

// bounceOffTerrain works out which axes hit, reflects them with restitution,
// applies rolling friction to the horizontal component and restores the
// pre-step position.
func bounceOffTerrain(p *Projectile, t *Terrain) contactResult {
	hitX := t.Solid(p.x, p.prevY)
	hitY := t.Solid(p.prevX, p.y)
	if !hitX && !hitY {
		hitX, hitY = true, true
	}
	if hitX {
		p.vx = -p.vx * p.restitution
	}
	if hitY {
		p.vy = -p.vy * p.restitution
	}
	p.vx *= p.friction
	p.x, p.y = p.prevX, p.prevY

	res := contactSilentBounce
	if p.audible() {
		res = contactBounce
	}
	if hitY && abs(p.vx) < audibleSpeed && abs(p.vy) < audibleSpeed {
		p.vx, p.vy = 0, 0
	}
	return res
}

// Hit records the effect of an explosion on one entity.
type Hit struct {
	Entity     int
	Label      string
	Damage     int
	Killed     bool
	KnockbackX float64
	KnockbackY float64
}

// Explosion is the effect record of one detonation.
type Explosion struct {
	X, Y    float64
	Radius  float64
	Weapon  WeaponKind
	Cleared int // terrain cells removed
	Hits    []Hit
}

// ProjectileEffects collects what happened during one ProjectileSystem update.
type ProjectileEffects struct {
	Explosions []Explosion
	Bounces    [][2]float64 // audible bounce positions
}

// ProjectileSystem owns every in-flight projectile.
type ProjectileSystem struct {
	projectiles []*Projectile
}

// NewProjectileSystem returns an empty system.
func NewProjectileSystem() *ProjectileSystem {
	return &ProjectileSystem{}
}

// Spawn adds p to the active set.
func (ps *ProjectileSystem) Spawn(p *Projectile) {
	ps.projectiles = append(ps.projectiles, p)
}

// Len returns the number of live projectiles.
func (ps *ProjectileSystem) Len() int { return len(ps.projectiles) }

// Projectiles returns the live projectiles. Callers must not retain the slice.
func (ps *ProjectileSystem) Projectiles() []*Projectile { return ps.projectiles }

// Update integrates each projectile and resolves entity contact, terrain
// contact and fuse expiry in that order. Detonated projectiles are removed.
func (ps *ProjectileSystem) Update(dt, wind float64, t *Terrain, entities []*Entity) ProjectileEffects {
	var fx ProjectileEffects
	live := ps.projectiles[:0]
	for _, p := range ps.projectiles {
		if !p.active {
			continue
		}
		p.integrate(dt, wind)
		policy := policyFor(p.kind)

		if p.age > armingDelay {
			for _, e := range entities {
				if e.dead {
					continue
				}
				dx := e.x - p.x
				dy := e.y - p.y
				dist := math.Hypot(dx, dy)
				if math.IsNaN(dist) || dist >= p.radius+e.radius {
					continue
				}
				nx, ny := 0.0, 1.0
				if dist > distanceEpsilon {
					nx, ny = dx/dist, dy/dist
				}
				res := policy.entity(p, nx, ny)
				if ps.react(p, res, t, entities, &fx) {
					break
				}
			}
		}

		if p.active && ps.outOfPlay(p, t) {
			ps.react(p, policy.terrain(p, t), t, entities, &fx)
		}

		if p.active && p.fuseExpired {
			ps.detonate(p, t, entities, &fx)
		}

		if p.active {
			live = append(live, p)
		}
	}
	for i := len(live); i < len(ps.projectiles); i++ {
		ps.projectiles[i] = nil
	}
	ps.projectiles = live
	return fx
}

// outOfPlay reports terrain contact or leaving the field through the sides or
// bottom. The sky is open.
func (ps *ProjectileSystem) outOfPlay(p *Projectile, t *Terrain) bool {
	return t.Solid(p.x, p.y) ||
		p.x < 0 || p.x > float64(t.Width()) || p.y > float64(t.Height())
}

// react applies a contact result and reports whether the projectile detonated.
func (ps *ProjectileSystem) react(p *Projectile, res contactResult, t *Terrain, entities []*Entity, fx *ProjectileEffects) bool {
	switch res {
	case contactExplode:
		ps.detonate(p, t, entities, fx)
		return true
	case contactBounce:
		fx.Bounces = append(fx.Bounces, [2]float64{p.x, p.y})
	}
	return false
}

func (ps *ProjectileSystem) detonate(p *Projectile, t *Terrain, entities []*Entity, fx *ProjectileEffects) {
	p.active = false
	ex := Explode(t, entities, p.x, p.y, p.explosionRadius, p.damage)
	ex.Weapon = p.weapon
	fx.Explosions = append(fx.Explosions, ex)
}

// Explode carves a circle of radius r out of t and applies linear-falloff
// damage and knockback to every living entity within 1.5r of the centre.
func Explode(t *Terrain, entities []*Entity, cx, cy, r float64, maxDamage int) Explosion {
	ex := Explosion{X: cx, Y: cy, Radius: r}
	ex.Cleared = t.Explode(cx, cy, r)

	reach := r * blastReachFactor
	if reach <= 0 {
		return ex
	}
	for _, e := range entities {
		if e.dead {
			continue
		}
		dx := e.x - cx
		dy := e.y - cy
		dist := math.Hypot(dx, dy)
		if math.IsNaN(dist) || dist >= reach {
			continue
		}
		falloff := math.Max(0, 1-dist/reach)
		damage := int(math.Floor(float64(maxDamage) * falloff))

		nx, ny := 0.0, -1.0
		if dist > distanceEpsilon {
			nx, ny = dx/dist, dy/dist
		}
		impulse := knockbackImpulse * falloff
		hit := Hit{
			Entity:     e.id,
			Label:      e.label,
			Damage:     damage,
			KnockbackX: nx * impulse,
			KnockbackY: ny * impulse,
		}
		if damage > 0 {
			hit.Killed = e.takeDamage(damage)
		}
		e.applyForce(hit.KnockbackX, hit.KnockbackY)
		ex.Hits = append(ex.Hits, hit)
	}
	return ex
}
