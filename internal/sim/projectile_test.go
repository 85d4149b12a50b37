package sim

import (
	"math"
	"testing"
)

// --- Explosion damage ---

func TestExplode_CenterHitDealsFullDamage(t *testing.T) {
	tr := NewTerrain(200, 200)
	e := NewEntity(0, "R0", 100, 100, TeamRed, ControlHuman)
	e.grounded = true

	ex := Explode(tr, []*Entity{e}, 100, 100, 40, 25)
	if e.Health() != 75 {
		t.Fatalf("expected health 75, got %d", e.Health())
	}
	if len(ex.Hits) != 1 || ex.Hits[0].Damage != 25 || ex.Hits[0].Killed {
		t.Fatalf("unexpected hits: %+v", ex.Hits)
	}
	vx, vy := e.Velocity()
	if vx != 0 || vy != -knockbackImpulse {
		t.Fatalf("centre knockback should be straight up at full impulse, got (%.1f, %.1f)", vx, vy)
	}
	if e.Grounded() {
		t.Fatal("knockback should lift the entity")
	}
}

func TestExplode_NoEffectAtReach(t *testing.T) {
	tr := NewTerrain(300, 200)
	at := NewEntity(0, "R0", 160, 100, TeamRed, ControlHuman)  // exactly 1.5r
	far := NewEntity(1, "R1", 250, 100, TeamRed, ControlHuman) // well beyond

	ex := Explode(tr, []*Entity{at, far}, 100, 100, 40, 25)
	if len(ex.Hits) != 0 {
		t.Fatalf("expected no hits, got %+v", ex.Hits)
	}
	for _, e := range []*Entity{at, far} {
		if e.Health() != entityMaxHP {
			t.Fatalf("%s took damage at or beyond reach: hp=%d", e.Label(), e.Health())
		}
		if vx, vy := e.Velocity(); vx != 0 || vy != 0 {
			t.Fatalf("%s was knocked back at or beyond reach", e.Label())
		}
	}
}

func TestExplode_LinearFalloff(t *testing.T) {
	tr := NewTerrain(300, 200)
	e := NewEntity(0, "R0", 130, 100, TeamRed, ControlHuman)
	// dist 30 of reach 60 → falloff 0.5 → floor(12.5) = 12, impulse 250 along +x.
	Explode(tr, []*Entity{e}, 100, 100, 40, 25)
	if e.Health() != 88 {
		t.Fatalf("expected health 88, got %d", e.Health())
	}
	vx, vy := e.Velocity()
	if math.Abs(vx-250) > 1e-9 || math.Abs(vy) > 1e-9 {
		t.Fatalf("expected knockback (250, 0), got (%.3f, %.3f)", vx, vy)
	}
}

func TestExplode_KillsAndSkipsDead(t *testing.T) {
	tr := NewTerrain(200, 200)
	weak := NewEntity(0, "R0", 100, 100, TeamRed, ControlHuman)
	weak.health = 10
	corpse := NewEntity(1, "R1", 101, 100, TeamRed, ControlHuman)
	corpse.kill()

	ex := Explode(tr, []*Entity{weak, corpse}, 100, 100, 40, 25)
	if !weak.Dead() || weak.Health() != 0 {
		t.Fatalf("weak entity should be dead with 0 hp, got hp=%d", weak.Health())
	}
	if len(ex.Hits) != 1 || !ex.Hits[0].Killed {
		t.Fatalf("expected one killing hit, got %+v", ex.Hits)
	}
	if vx, vy := corpse.Velocity(); vx != 0 || vy != 0 {
		t.Fatal("dead entities are not knocked back")
	}
}

func TestExplode_CarvesTerrain(t *testing.T) {
	tr := solidTerrain(200, 200)
	ex := Explode(tr, nil, 100, 100, 10, 25)
	if ex.Cleared == 0 || tr.Solid(100, 100) {
		t.Fatal("explosion should carve the terrain")
	}
	if !tr.Solid(100, 115) {
		t.Fatal("terrain beyond the radius must survive")
	}
}

func TestExplode_NaNCentreHitsNobody(t *testing.T) {
	tr := NewTerrain(200, 200)
	e := NewEntity(0, "R0", 100, 100, TeamRed, ControlHuman)

	ex := Explode(tr, []*Entity{e}, math.NaN(), math.NaN(), 40, 25)
	if len(ex.Hits) != 0 || e.Health() != 100 {
		t.Fatalf("a NaN blast must not touch anyone, hits=%+v health=%d", ex.Hits, e.Health())
	}
	if vx, vy := e.Velocity(); vx != 0 || vy != 0 {
		t.Fatalf("a NaN blast must not push anyone, got (%v, %v)", vx, vy)
	}
}

// --- Bounces ---

func grenadeAt(x, y, vx, vy float64) *Projectile {
	return newProjectile(x, y, vx, vy, WeaponGrenade, SpecFor(WeaponGrenade))
}

func TestBounceOffTerrain_RestitutionThenFriction(t *testing.T) {
	tr := flatTerrain(200, 200, 100)
	p := grenadeAt(50, 95, 100, 200)
	p.prevX, p.prevY = 50, 95
	p.x, p.y = 51.7, 100.5

	res := bounceOffTerrain(p, tr)
	if res != contactBounce {
		t.Fatalf("expected an audible bounce, got %d", res)
	}
	// Floor contact only: vy reflected with restitution, vx keeps direction
	// and loses rolling friction.
	if math.Abs(p.vy-(-200*0.6)) > 1e-9 {
		t.Fatalf("expected vy=-120, got %.4f", p.vy)
	}
	if math.Abs(p.vx-100*0.95) > 1e-9 {
		t.Fatalf("expected vx=95, got %.4f", p.vx)
	}
	if p.x != 50 || p.y != 95 {
		t.Fatalf("position should be restored to (50,95), got (%.2f,%.2f)", p.x, p.y)
	}
}

func TestBounceOffTerrain_WallContact(t *testing.T) {
	tr := NewTerrain(200, 200)
	for row := 0; row < 200; row++ {
		tr.mask[row*200+60] = MaterialDirt
	}
	p := grenadeAt(59, 50, 120, 30)
	p.prevX, p.prevY = 59, 50
	p.x, p.y = 60.5, 50.4

	bounceOffTerrain(p, tr)
	if math.Abs(p.vx-(-120*0.6*0.95)) > 1e-9 {
		t.Fatalf("expected vx=%.3f, got %.4f", -120*0.6*0.95, p.vx)
	}
	if p.vy != 30 {
		t.Fatalf("vy should be untouched by a wall, got %.4f", p.vy)
	}
}

func TestBounceOffTerrain_CornerReflectsBothAxes(t *testing.T) {
	tr := NewTerrain(200, 200)
	tr.mask[100*200+100] = MaterialDirt
	p := grenadeAt(99, 99, 50, 50)
	p.prevX, p.prevY = 99, 99
	p.x, p.y = 100.2, 100.2

	bounceOffTerrain(p, tr)
	if math.Abs(p.vx-(-50*0.6*0.95)) > 1e-9 || math.Abs(p.vy-(-50*0.6)) > 1e-9 {
		t.Fatalf("corner hit should reflect both axes, got (%.3f, %.3f)", p.vx, p.vy)
	}
}

func TestBounceOffTerrain_SlowFloorContactRests(t *testing.T) {
	tr := flatTerrain(200, 200, 100)
	p := grenadeAt(50, 99, 5, 10)
	p.prevX, p.prevY = 50, 99
	p.x, p.y = 50.1, 100.1

	if res := bounceOffTerrain(p, tr); res != contactSilentBounce {
		t.Fatalf("slow bounce should be silent, got %d", res)
	}
	if p.vx != 0 || p.vy != 0 {
		t.Fatalf("slow floor contact should come to rest, got (%.3f, %.3f)", p.vx, p.vy)
	}
}

func TestBounceOffEntity_ReflectsAndDamps(t *testing.T) {
	p := grenadeAt(100, 100, 80, 0)
	// Entity straight to the right: normal (1, 0).
	res := bounceOffEntity(p, 1, 0)
	if res != contactBounce {
		t.Fatalf("expected an audible bounce, got %d", res)
	}
	if math.Abs(p.vx-(-40)) > 1e-9 || p.vy != 0 {
		t.Fatalf("expected velocity (-40, 0), got (%.3f, %.3f)", p.vx, p.vy)
	}
	if p.x != 98 {
		t.Fatalf("expected a 2 px push-out to x=98, got %.2f", p.x)
	}
}

// --- ProjectileSystem ---

func TestProjectileSystem_ImpactDetonatesOnTerrain(t *testing.T) {
	tr := flatTerrain(200, 200, 100)
	ps := NewProjectileSystem()
	ps.Spawn(newProjectile(50, 98, 0, 100, WeaponBazooka, SpecFor(WeaponBazooka)))

	var explosions []Explosion
	for i := 0; i < 10 && ps.Len() > 0; i++ {
		fx := ps.Update(DefaultStep, 0, tr, nil)
		explosions = append(explosions, fx.Explosions...)
	}
	if len(explosions) != 1 {
		t.Fatalf("expected one explosion, got %d", len(explosions))
	}
	if ps.Len() != 0 {
		t.Fatal("detonated projectile should be removed")
	}
	ex := explosions[0]
	if ex.Weapon != WeaponBazooka || ex.Radius != 40 {
		t.Fatalf("unexpected explosion record %+v", ex)
	}
	if tr.Solid(ex.X, ex.Y) {
		t.Fatal("crater centre should be air")
	}
}

func TestProjectileSystem_ImpactDetonatesLeavingSides(t *testing.T) {
	tr := NewTerrain(100, 100)
	ps := NewProjectileSystem()
	ps.Spawn(newProjectile(99, 10, 300, 0, WeaponBazooka, SpecFor(WeaponBazooka)))
	fx := ps.Update(DefaultStep, 0, tr, nil)
	if len(fx.Explosions) != 1 {
		t.Fatalf("leaving through the side should detonate, got %d explosions", len(fx.Explosions))
	}
}

func TestProjectileSystem_OpenSky(t *testing.T) {
	tr := NewTerrain(100, 100)
	ps := NewProjectileSystem()
	ps.Spawn(newProjectile(50, 2, 0, -400, WeaponBazooka, SpecFor(WeaponBazooka)))
	fx := ps.Update(DefaultStep, 0, tr, nil)
	if len(fx.Explosions) != 0 || ps.Len() != 1 {
		t.Fatal("flying above the field is allowed")
	}
}

func TestProjectileSystem_ArmingDelay(t *testing.T) {
	tr := NewTerrain(200, 200)
	e := NewEntity(0, "R0", 100, 100, TeamRed, ControlHuman)
	ps := NewProjectileSystem()
	ps.Spawn(newProjectile(100, 100, 0, 0, WeaponBazooka, SpecFor(WeaponBazooka)))

	fx := ps.Update(DefaultStep, 0, tr, []*Entity{e})
	if len(fx.Explosions) != 0 {
		t.Fatal("projectile must not touch entities before it is armed")
	}

	// Once armed, a projectile inside the entity detonates.
	p := ps.Projectiles()[0]
	p.age = armingDelay
	p.x, p.y, p.vx, p.vy = 100, 100, 0, 0
	fx = ps.Update(DefaultStep, 0, tr, []*Entity{e})
	if len(fx.Explosions) != 1 {
		t.Fatalf("armed projectile should detonate on contact, got %d explosions", len(fx.Explosions))
	}
	if e.Health() >= entityMaxHP {
		t.Fatal("direct hit should damage the entity")
	}
}

func TestProjectileSystem_FuseExpires(t *testing.T) {
	tr := NewTerrain(400, 400)
	ps := NewProjectileSystem()
	p := grenadeAt(200, 50, 0, 0)
	p.fuse = 0.05
	ps.Spawn(p)

	exploded := -1
	for i := 0; i < 10; i++ {
		fx := ps.Update(DefaultStep, 0, tr, nil)
		if len(fx.Explosions) > 0 {
			exploded = i
			break
		}
	}
	if exploded < 2 || exploded > 3 {
		t.Fatalf("fuse of 0.05s should expire on update 3 or 4, got %d", exploded+1)
	}
}

func TestProjectileSystem_WindOnlyForWindAffected(t *testing.T) {
	tr := NewTerrain(400, 400)
	ps := NewProjectileSystem()
	rocket := newProjectile(100, 50, 0, 0, WeaponBazooka, SpecFor(WeaponBazooka))
	grenade := grenadeAt(300, 50, 0, 0)
	ps.Spawn(rocket)
	ps.Spawn(grenade)

	ps.Update(DefaultStep, 60, tr, nil)
	if math.Abs(rocket.vx-60*DefaultStep) > 1e-9 {
		t.Fatalf("bazooka should drift with the wind, vx=%.4f", rocket.vx)
	}
	if grenade.vx != 0 {
		t.Fatalf("grenade ignores wind, vx=%.4f", grenade.vx)
	}
}

// --- Weapons ---

func TestHumanCharge_SaturatesAndFiresOnRelease(t *testing.T) {
	f := newFireControl()
	for i := 0; i < 200; i++ {
		if f.chargeHuman(true, DefaultStep) {
			t.Fatal("holding fire must never launch")
		}
	}
	if f.power != maxPower {
		t.Fatalf("power should saturate at %.0f, got %.2f", maxPower, f.power)
	}
	if !f.chargeHuman(false, DefaultStep) {
		t.Fatal("release after charging should launch")
	}
	f.resetCharge()
	if f.chargeHuman(false, DefaultStep) {
		t.Fatal("release without charging should not launch")
	}
}

func TestLaunch_SpawnsAtMuzzle(t *testing.T) {
	f := newFireControl()
	f.weapon = WeaponGrenade
	f.aim = 0
	f.power = 400
	p := f.launch(100, 100)
	if p.x != 100+muzzleOffset || p.y != 100 {
		t.Fatalf("expected spawn at (%.0f,100), got (%.2f,%.2f)", 100+muzzleOffset, p.x, p.y)
	}
	if p.vx != 400 || p.vy != 0 {
		t.Fatalf("expected velocity (400,0), got (%.2f,%.2f)", p.vx, p.vy)
	}
	if p.kind != KindBouncing || p.fuse != 3 || p.windAffected {
		t.Fatalf("grenade spec not applied: %+v", p)
	}
}
