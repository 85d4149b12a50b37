package sim

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/rs/zerolog"
)

// DefaultStep is the fixed timestep used by the headless runners.
const DefaultStep = 1.0 / 60

// TurnState is the tag of the turn state machine.
type TurnState int

const (
	StateInput    TurnState = iota // active combatant may move, aim and fire
	StateFiring                    // waiting for every projectile to resolve
	StateSettling                  // waiting for knocked-about entities to come to rest
	StateRetreat                   // short window to move after firing
	StateGameOver                  // terminal
)

func (s TurnState) String() string {
	switch s {
	case StateInput:
		return "INPUT"
	case StateFiring:
		return "FIRING"
	case StateSettling:
		return "SETTLING"
	case StateRetreat:
		return "RETREAT"
	case StateGameOver:
		return "GAMEOVER"
	default:
		return "UNKNOWN"
	}
}

// Tuning holds the turn machine's timing constants.
type Tuning struct {
	TurnSeconds     float64 // INPUT time limit
	RetreatSeconds  float64 // RETREAT window
	MaxWind         float64 // wind is drawn from [-MaxWind, MaxWind]
	SettleSilence   float64 // continuous stillness needed to leave SETTLING
	SettleTimeout   float64 // SETTLING is abandoned after this long regardless
	MotionThreshold float64 // px/s; slower entities count as still
}

// DefaultTuning returns the standard match timings.
func DefaultTuning() Tuning {
	return Tuning{
		TurnSeconds:     45,
		RetreatSeconds:  2,
		MaxWind:         100,
		SettleSilence:   0.5,
		SettleTimeout:   3.0,
		MotionThreshold: 5,
	}
}

// MatchStats accumulates counters over a whole match.
type MatchStats struct {
	Turns       int
	Shots       int
	Explosions  int
	Bounces     int
	Jumps       int
	Deaths      int
	DamageDealt map[Team]int // by the team whose turn it was
	DamageTaken map[Team]int
}

// Match is the whole simulation context: terrain, roster, projectiles, wind
// and the turn state machine. All state is owned here; nothing is global.
type Match struct {
	width, height int
	seed          int64
	rng           *rand.Rand

	terrain     *Terrain
	entities    []*Entity
	projectiles *ProjectileSystem
	wind        Wind
	tuning      Tuning

	state        TurnState
	active       int
	turnTimer    float64
	retreatTimer float64
	settleTimer  float64
	silenceTimer float64
	fire         fireControl
	ai           aiState

	winner    Team
	hasWinner bool
	draw      bool

	tick    int
	elapsed float64
	stats   MatchStats

	log       zerolog.Logger
	simLog    *SimLog
	listeners []Listener
	events    []Event

	spawns         []spawn
	defaultControl [2]ControlMode
}

type spawn struct {
	team    Team
	control ControlMode
	x, y    float64
}

// matchOptionKind controls the pass in which an option is applied.
type matchOptionKind int

const (
	matchOptInfra  matchOptionKind = iota // field, seed, tuning, logging - applied first
	matchOptRoster                        // combatants - applied after the terrain exists
)

// MatchOption configures a Match during construction.
type MatchOption struct {
	kind matchOptionKind
	fn   func(*Match)
}

// WithFieldSize sets the playfield dimensions in pixels.
func WithFieldSize(w, h int) MatchOption {
	return MatchOption{matchOptInfra, func(m *Match) {
		m.width = w
		m.height = h
	}}
}

// WithSeed seeds the match RNG and the terrain shape.
func WithSeed(seed int64) MatchOption {
	return MatchOption{matchOptInfra, func(m *Match) {
		m.seed = seed
		m.rng = rand.New(rand.NewSource(seed)) // #nosec G404 -- gameplay randomness
	}}
}

// WithTuning overrides the turn timings.
func WithTuning(t Tuning) MatchOption {
	return MatchOption{matchOptInfra, func(m *Match) {
		m.tuning = t
	}}
}

// WithLogger attaches a zerolog logger for diagnostics.
func WithLogger(l zerolog.Logger) MatchOption {
	return MatchOption{matchOptInfra, func(m *Match) {
		m.log = l
	}}
}

// WithSimLog enables structured tick logging. Verbose adds per-tick positions.
func WithSimLog(verbose bool) MatchOption {
	return MatchOption{matchOptInfra, func(m *Match) {
		m.simLog = NewSimLog(verbose)
	}}
}

// WithTerrain uses a prepared terrain instead of generating one. The field
// size follows the terrain.
func WithTerrain(t *Terrain) MatchOption {
	return MatchOption{matchOptInfra, func(m *Match) {
		m.terrain = t
	}}
}

// WithListener registers an event listener.
func WithListener(l Listener) MatchOption {
	return MatchOption{matchOptInfra, func(m *Match) {
		m.Subscribe(l)
	}}
}

// WithCombatant adds one combatant spawning at (x, y). When no combatant is
// given the default two-versus-two roster is used.
func WithCombatant(team Team, control ControlMode, x, y float64) MatchOption {
	return MatchOption{matchOptRoster, func(m *Match) {
		m.spawns = append(m.spawns, spawn{team: team, control: control, x: x, y: y})
	}}
}

// WithDefaultRoster keeps the default spawn layout but chooses who controls
// each side.
func WithDefaultRoster(red, blue ControlMode) MatchOption {
	return MatchOption{matchOptInfra, func(m *Match) {
		m.defaultControl = [2]ControlMode{red, blue}
	}}
}

// Field and spawn defaults shared with the config layer.
const (
	DefaultFieldWidth  = defaultFieldW
	DefaultFieldHeight = defaultFieldH
	SpawnY             = 50.0 // spawn height; combatants fall to the surface
)

const (
	spawnInset  = 200.0
	spawnSecond = 400.0
)

// NewMatch builds a match in two passes: infrastructure, then the roster.
// The first living combatant starts its turn immediately.
func NewMatch(opts ...MatchOption) *Match {
	m := &Match{
		width:          defaultFieldW,
		height:         defaultFieldH,
		rng:            rand.New(rand.NewSource(0)), // #nosec G404 -- gameplay randomness
		projectiles:    NewProjectileSystem(),
		tuning:         DefaultTuning(),
		log:            zerolog.Nop(),
		simLog:         NewSimLog(false),
		fire:           newFireControl(),
		defaultControl: [2]ControlMode{ControlHuman, ControlScripted},
	}
	for _, o := range opts {
		if o.kind == matchOptInfra {
			o.fn(m)
		}
	}
	if m.terrain == nil {
		m.terrain = NewTerrain(m.width, m.height)
		m.terrain.Generate(m.seed)
	}
	m.width = m.terrain.Width()
	m.height = m.terrain.Height()
	m.wind = NewWind(m.tuning.MaxWind)

	for _, o := range opts {
		if o.kind == matchOptRoster {
			o.fn(m)
		}
	}
	if len(m.spawns) == 0 {
		w := float64(m.width)
		red, blue := m.defaultControl[0], m.defaultControl[1]
		m.spawns = []spawn{
			{TeamRed, red, spawnInset, SpawnY},
			{TeamRed, red, spawnSecond, SpawnY},
			{TeamBlue, blue, w - spawnInset, SpawnY},
			{TeamBlue, blue, w - spawnSecond, SpawnY},
		}
	}
	perTeam := map[Team]int{}
	for i, s := range m.spawns {
		label := fmt.Sprintf("%s%d", s.team.labelPrefix(), perTeam[s.team])
		perTeam[s.team]++
		m.entities = append(m.entities, NewEntity(i, label, s.x, s.y, s.team, s.control))
	}

	m.log.Info().
		Int64("seed", m.seed).
		Int("width", m.width).
		Int("height", m.height).
		Int("combatants", len(m.entities)).
		Msg("match created")

	if len(m.livingTeams()) <= 1 {
		m.finish()
		return m
	}
	m.active = len(m.entities) - 1
	m.advanceTurn()
	return m
}

// Subscribe registers l to receive every event after each step.
func (m *Match) Subscribe(l Listener) {
	if l != nil {
		m.listeners = append(m.listeners, l)
	}
}

func (m *Match) Terrain() *Terrain              { return m.terrain }
func (m *Match) Entities() []*Entity            { return m.entities }
func (m *Match) Projectiles() *ProjectileSystem { return m.projectiles }
func (m *Match) State() TurnState               { return m.state }
func (m *Match) Wind() float64                  { return m.wind.Value() }
func (m *Match) Tick() int                      { return m.tick }
func (m *Match) Elapsed() float64               { return m.elapsed }
func (m *Match) Seed() int64                    { return m.seed }
func (m *Match) Tuning() Tuning                 { return m.tuning }
func (m *Match) TurnTimer() float64             { return m.turnTimer }
func (m *Match) RetreatTimer() float64          { return m.retreatTimer }
func (m *Match) Weapon() WeaponKind             { return m.fire.weapon }
func (m *Match) Power() float64                 { return m.fire.power }
func (m *Match) Charging() bool                 { return m.fire.charging }
func (m *Match) Aim() float64                   { return m.fire.aim }
func (m *Match) AIPhase() AIPhase               { return m.ai.phase }
func (m *Match) SimLog() *SimLog                { return m.simLog }
func (m *Match) Over() bool                     { return m.state == StateGameOver }
func (m *Match) Draw() bool                     { return m.draw }
func (m *Match) Winner() (team Team, ok bool)   { return m.winner, m.hasWinner }

// Stats returns a copy of the match counters.
func (m *Match) Stats() MatchStats {
	s := m.stats
	s.DamageDealt = copyTeamInts(m.stats.DamageDealt)
	s.DamageTaken = copyTeamInts(m.stats.DamageTaken)
	return s
}

func copyTeamInts(src map[Team]int) map[Team]int {
	out := make(map[Team]int, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// Active returns the combatant whose turn it is, or nil once the match is over
// with an empty roster.
func (m *Match) Active() *Entity {
	if m.active < 0 || m.active >= len(m.entities) {
		return nil
	}
	return m.entities[m.active]
}

// Entity returns the combatant with the given ID.
func (m *Match) Entity(id int) *Entity {
	if id < 0 || id >= len(m.entities) {
		return nil
	}
	return m.entities[id]
}

// Step advances the simulation by dt seconds using in as the active
// combatant's input. It returns the events produced during this step.
func (m *Match) Step(dt float64, in Input) []Event {
	if dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return m.flush()
	}
	if m.state == StateGameOver {
		return m.flush()
	}
	m.tick++
	m.elapsed += dt

	m.updateTurn(dt, in.sanitized())
	m.updateEntities(dt)
	m.updateProjectiles(dt)

	return m.flush()
}

// flush hands the pending events to listeners and returns them.
func (m *Match) flush() []Event {
	out := m.events
	m.events = nil
	for _, ev := range out {
		for _, l := range m.listeners {
			l.Handle(ev)
		}
	}
	return out
}

func (m *Match) emit(ev Event) {
	ev.Tick = m.tick
	m.events = append(m.events, ev)
}

func (m *Match) setState(s TurnState) {
	if s == m.state {
		return
	}
	m.log.Debug().Int("tick", m.tick).Str("from", m.state.String()).Str("to", s.String()).Msg("state change")
	label, team := "--", "--"
	if e := m.Active(); e != nil {
		label, team = e.label, e.team.String()
	}
	m.simLog.Add(m.tick, label, team, "state", "change", fmt.Sprintf("%s → %s", m.state, s), 0)
	m.state = s
}

func (m *Match) updateTurn(dt float64, in Input) {
	switch m.state {
	case StateInput:
		e := m.Active()
		if e == nil || e.dead {
			m.advanceTurn()
			return
		}
		m.turnTimer -= dt
		if m.turnTimer <= 0 {
			m.simLog.Add(m.tick, e.label, e.team.String(), "turn", "timeout", "turn timer expired", 0)
			m.advanceTurn()
			return
		}
		if e.control == ControlScripted {
			m.runAI(e, dt)
		} else {
			m.handleHuman(e, in, dt)
		}
		if m.state == StateInput && m.projectiles.Len() > 0 {
			m.setState(StateFiring)
		}

	case StateFiring:
		if m.projectiles.Len() == 0 {
			m.settleTimer = 0
			m.silenceTimer = 0
			m.setState(StateSettling)
		}

	case StateSettling:
		m.settleTimer += dt
		if m.anyMoving() {
			m.silenceTimer = 0
		} else {
			m.silenceTimer += dt
		}
		if m.silenceTimer > m.tuning.SettleSilence || m.settleTimer > m.tuning.SettleTimeout {
			m.setState(StateRetreat)
		}

	case StateRetreat:
		m.retreatTimer -= dt
		if e := m.Active(); e != nil && !e.dead && e.control == ControlHuman {
			m.move(e, in.movementOnly())
		}
		if m.retreatTimer <= 0 {
			m.advanceTurn()
		}
	}
}

// handleHuman routes one tick of player input: movement, weapon choice, aim
// and charge.
func (m *Match) handleHuman(e *Entity, in Input, dt float64) {
	m.move(e, in)
	if in.Weapon != WeaponNone {
		m.fire.weapon = in.Weapon
	}
	switch {
	case in.HasAim:
		m.fire.aim = in.AimAngle
		e.facing = facingFor(math.Cos(in.AimAngle))
	case in.HasPointer:
		m.fire.aimAt(e.x, e.y, in.PointerX, in.PointerY)
		e.facing = facingFor(in.PointerX - e.x)
	}
	if m.fire.chargeHuman(in.Fire, dt) {
		m.launch(e)
	}
}

func facingFor(dx float64) int {
	if dx >= 0 {
		return 1
	}
	return -1
}

func (m *Match) move(e *Entity, in Input) {
	if e.applyMovement(in) {
		m.jumped(e)
	}
}

func (m *Match) jumped(e *Entity) {
	m.stats.Jumps++
	m.emit(Event{Kind: EventJump, X: e.x, Y: e.y, Entity: e.id, Team: e.team})
}

// launch fires the current weapon from e and resets the charge.
func (m *Match) launch(e *Entity) {
	p := m.fire.launch(e.x, e.y)
	m.projectiles.Spawn(p)
	m.stats.Shots++
	m.simLog.Add(m.tick, e.label, e.team.String(), "fire", m.fire.weapon.String(),
		fmt.Sprintf("angle=%.2f power=%.0f", m.fire.aim, m.fire.power), m.fire.power)
	m.log.Debug().Int("tick", m.tick).Str("entity", e.label).Str("weapon", m.fire.weapon.String()).
		Float64("power", m.fire.power).Float64("aim", m.fire.aim).Msg("fire")
	m.emit(Event{Kind: EventFire, X: p.x, Y: p.y, Entity: e.id, Team: e.team, Weapon: m.fire.weapon})
	m.fire.resetCharge()
}

func (m *Match) anyMoving() bool {
	for _, e := range m.entities {
		if !e.dead && e.moving(m.tuning.MotionThreshold) {
			return true
		}
	}
	return false
}

func (m *Match) updateEntities(dt float64) {
	for _, e := range m.entities {
		e.integrate(dt)
	}
	for _, e := range m.entities {
		if resolveEntity(e, m.terrain, dt) {
			m.died(e, "void")
		}
	}
	for _, e := range m.entities {
		if e.dead {
			continue
		}
		m.simLog.AddVerbose(m.tick, e.label, e.team.String(), "move", "position",
			fmt.Sprintf("(%.1f,%.1f)", e.x, e.y), 0)
	}
}

func (m *Match) updateProjectiles(dt float64) {
	if m.projectiles.Len() == 0 {
		return
	}
	fx := m.projectiles.Update(dt, m.wind.Value(), m.terrain, m.entities)
	for _, b := range fx.Bounces {
		m.stats.Bounces++
		m.emit(Event{Kind: EventBounce, X: b[0], Y: b[1], Entity: -1})
	}
	for _, ex := range fx.Explosions {
		m.exploded(ex)
	}
}

func (m *Match) exploded(ex Explosion) {
	m.stats.Explosions++
	shooter := Team(-1)
	if e := m.Active(); e != nil {
		shooter = e.team
	}
	m.simLog.Add(m.tick, "--", "--", "explosion", ex.Weapon.String(),
		fmt.Sprintf("at (%.0f,%.0f) r=%.0f cleared=%d hits=%d", ex.X, ex.Y, ex.Radius, ex.Cleared, len(ex.Hits)), ex.Radius)
	m.emit(Event{Kind: EventExplosion, X: ex.X, Y: ex.Y, Radius: ex.Radius, Entity: -1, Team: shooter, Weapon: ex.Weapon})

	for _, h := range ex.Hits {
		e := m.Entity(h.Entity)
		if e == nil || h.Damage <= 0 {
			continue
		}
		if m.stats.DamageDealt == nil {
			m.stats.DamageDealt = map[Team]int{}
			m.stats.DamageTaken = map[Team]int{}
		}
		m.stats.DamageDealt[shooter] += h.Damage
		m.stats.DamageTaken[e.team] += h.Damage
		m.simLog.Add(m.tick, e.label, e.team.String(), "damage", "hit",
			fmt.Sprintf("-%d hp=%d", h.Damage, e.health), float64(h.Damage))
		m.emit(Event{Kind: EventDamage, X: e.x, Y: e.y, Entity: e.id, Team: e.team, Amount: h.Damage})
		if h.Killed {
			m.died(e, "blast")
		}
	}
}

func (m *Match) died(e *Entity, cause string) {
	m.stats.Deaths++
	m.simLog.Add(m.tick, e.label, e.team.String(), "death", cause, e.String(), 0)
	m.log.Info().Int("tick", m.tick).Str("entity", e.label).Str("team", e.team.String()).Str("cause", cause).Msg("combatant died")
	m.emit(Event{Kind: EventDeath, X: e.x, Y: e.y, Entity: e.id, Team: e.team})
}

// livingTeams returns the teams with at least one living member, in roster
// order.
func (m *Match) livingTeams() []Team {
	var teams []Team
	seen := map[Team]bool{}
	for _, e := range m.entities {
		if e.dead || seen[e.team] {
			continue
		}
		seen[e.team] = true
		teams = append(teams, e.team)
	}
	return teams
}

// advanceTurn ends the match when at most one team survives, otherwise hands
// the turn to the next living combatant in roster order.
func (m *Match) advanceTurn() {
	if len(m.livingTeams()) <= 1 {
		m.finish()
		return
	}
	n := len(m.entities)
	for i := 1; i <= n; i++ {
		idx := (m.active + i) % n
		if !m.entities[idx].dead {
			m.active = idx
			break
		}
	}
	m.beginTurn()
}

func (m *Match) beginTurn() {
	m.setState(StateInput)
	m.turnTimer = m.tuning.TurnSeconds
	m.retreatTimer = m.tuning.RetreatSeconds
	m.settleTimer = 0
	m.silenceTimer = 0
	m.wind.Reroll(m.rng)
	m.fire.resetCharge()
	m.ai.reset()
	m.stats.Turns++

	e := m.entities[m.active]
	m.simLog.Add(m.tick, e.label, e.team.String(), "turn", "start",
		fmt.Sprintf("%s %s wind=%.1f", e.label, e.control, m.wind.Value()), m.wind.Value())
	m.log.Info().Int("tick", m.tick).Int("turn", m.stats.Turns).Str("entity", e.label).
		Str("team", e.team.String()).Float64("wind", m.wind.Value()).Msg("turn start")
	m.emit(Event{Kind: EventTurnStart, X: e.x, Y: e.y, Entity: e.id, Team: e.team})
}

func (m *Match) finish() {
	teams := m.livingTeams()
	m.setState(StateGameOver)
	m.fire.resetCharge()
	ev := Event{Kind: EventGameOver, Entity: -1}
	if len(teams) == 1 {
		m.winner, m.hasWinner = teams[0], true
		ev.Team = teams[0]
		m.simLog.Add(m.tick, "--", teams[0].String(), "game", "over", "winner "+teams[0].String(), 0)
		m.log.Info().Int("tick", m.tick).Str("winner", teams[0].String()).Msg("game over")
	} else {
		m.draw = true
		ev.Draw = true
		m.simLog.Add(m.tick, "--", "--", "game", "over", "draw", 0)
		m.log.Info().Int("tick", m.tick).Msg("game over: draw")
	}
	m.emit(ev)
}
