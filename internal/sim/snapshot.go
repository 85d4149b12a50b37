package sim

// EntityView is a read-only copy of one combatant for renderers.
type EntityView struct {
	ID       int
	Label    string
	Team     Team
	Control  ControlMode
	X, Y     float64
	Radius   float64
	Facing   int
	Health   int
	Dead     bool
	Grounded bool
	Active   bool
}

// ProjectileView is a read-only copy of one projectile.
type ProjectileView struct {
	X, Y   float64
	Radius float64
	Kind   ProjectileKind
	Weapon WeaponKind
	Fuse   float64
}

// Snapshot is everything a renderer or HUD needs for one frame. The terrain
// is shared, not copied; use TerrainRevision to decide when to rebuild
// cached imagery.
type Snapshot struct {
	Tick            int
	Terrain         *Terrain
	TerrainRevision int
	Entities        []EntityView
	Projectiles     []ProjectileView

	State        TurnState
	ActiveID     int
	ActiveTeam   Team
	ActiveHuman  bool
	TurnTimer    float64
	RetreatTimer float64
	Weapon       WeaponKind
	Aim          float64
	Power        float64
	MaxPower     float64
	Charging     bool
	Wind         float64
	MaxWind      float64

	Over      bool
	Winner    Team
	HasWinner bool
	Draw      bool
}

// Snapshot captures the current match state.
func (m *Match) Snapshot() Snapshot {
	snap := Snapshot{
		Tick:            m.tick,
		Terrain:         m.terrain,
		TerrainRevision: m.terrain.Revision(),
		Entities:        make([]EntityView, 0, len(m.entities)),
		Projectiles:     make([]ProjectileView, 0, m.projectiles.Len()),
		State:           m.state,
		ActiveID:        -1,
		TurnTimer:       m.turnTimer,
		RetreatTimer:    m.retreatTimer,
		Weapon:          m.fire.weapon,
		Aim:             m.fire.aim,
		Power:           m.fire.power,
		MaxPower:        maxPower,
		Charging:        m.fire.charging,
		Wind:            m.wind.Value(),
		MaxWind:         m.wind.Max(),
		Over:            m.state == StateGameOver,
		Winner:          m.winner,
		HasWinner:       m.hasWinner,
		Draw:            m.draw,
	}
	active := m.Active()
	if active != nil {
		snap.ActiveID = active.id
		snap.ActiveTeam = active.team
		snap.ActiveHuman = active.control == ControlHuman
	}
	for _, e := range m.entities {
		snap.Entities = append(snap.Entities, EntityView{
			ID:       e.id,
			Label:    e.label,
			Team:     e.team,
			Control:  e.control,
			X:        e.x,
			Y:        e.y,
			Radius:   e.radius,
			Facing:   e.facing,
			Health:   e.health,
			Dead:     e.dead,
			Grounded: e.grounded,
			Active:   e == active && !snap.Over,
		})
	}
	for _, p := range m.projectiles.Projectiles() {
		snap.Projectiles = append(snap.Projectiles, ProjectileView{
			X:      p.x,
			Y:      p.y,
			Radius: p.radius,
			Kind:   p.kind,
			Weapon: p.weapon,
			Fuse:   p.fuse,
		})
	}
	return snap
}
