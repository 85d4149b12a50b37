package sim

import (
	"fmt"
	"math"
)

// AIPhase is the scripted opponent's per-turn decision state.
type AIPhase int

const (
	AIPhaseThink  AIPhase = iota // pause, then choose between moving and aiming
	AIPhaseMove                  // walk toward the cached target x
	AIPhaseAim                   // lob angle toward the nearest opponent
	AIPhaseCharge                // build power until it matches the distance
	AIPhaseDone                  // shot fired; idle until the turn ends
)

func (p AIPhase) String() string {
	switch p {
	case AIPhaseThink:
		return "think"
	case AIPhaseMove:
		return "move"
	case AIPhaseAim:
		return "aim"
	case AIPhaseCharge:
		return "charge"
	case AIPhaseDone:
		return "done"
	default:
		return "unknown"
	}
}

const (
	aiThinkDelay     = 1.0   // seconds before the first decision
	aiPreferredRange = 300.0 // farther than this horizontally and the AI walks
	aiMoveBudget     = 2.0   // seconds of walking per turn
	aiArriveDistance = 50.0
	aiJumpChance     = 0.02 // per tick while walking on the ground
	aiArcFactor      = 0.5  // aim point sits this fraction of the distance above the target
	aiPowerPerPixel  = 2.2
)

type aiState struct {
	phase      AIPhase
	timer      float64
	targetX    float64
	moveBudget float64
}

func (a *aiState) reset() { *a = aiState{} }

// nearestOpponent returns the closest living combatant on another team.
func (m *Match) nearestOpponent(e *Entity) *Entity {
	var best *Entity
	bestDist := math.Inf(1)
	for _, o := range m.entities {
		if o.dead || o.team == e.team {
			continue
		}
		d := math.Hypot(o.x-e.x, o.y-e.y)
		if d < bestDist {
			best, bestDist = o, d
		}
	}
	return best
}

func (m *Match) setAIPhase(e *Entity, p AIPhase) {
	m.simLog.Add(m.tick, e.label, e.team.String(), "ai", "phase",
		fmt.Sprintf("%s → %s", m.ai.phase, p), 0)
	m.ai.phase = p
	m.ai.timer = 0
}

// runAI drives a scripted combatant for one tick of INPUT.
func (m *Match) runAI(e *Entity, dt float64) {
	m.ai.timer += dt

	switch m.ai.phase {
	case AIPhaseThink:
		if m.ai.timer <= aiThinkDelay {
			return
		}
		target := m.nearestOpponent(e)
		if target == nil {
			m.advanceTurn()
			return
		}
		if math.Abs(target.x-e.x) > aiPreferredRange {
			m.ai.moveBudget = aiMoveBudget
			m.ai.targetX = target.x
			m.setAIPhase(e, AIPhaseMove)
		} else {
			m.setAIPhase(e, AIPhaseAim)
		}

	case AIPhaseMove:
		if m.nearestOpponent(e) == nil {
			e.vx = 0
			m.advanceTurn()
			return
		}
		dx := m.ai.targetX - e.x
		if math.Abs(dx) > aiArriveDistance && m.ai.moveBudget > 0 {
			m.ai.moveBudget -= dt
			e.facing = facingFor(dx)
			e.vx = walkSpeed * float64(e.facing)
			if e.grounded && m.rng.Float64() < aiJumpChance {
				e.vy = jumpImpulse
				e.grounded = false
				m.jumped(e)
			}
			return
		}
		e.vx = 0
		m.setAIPhase(e, AIPhaseAim)

	case AIPhaseAim:
		target := m.nearestOpponent(e)
		if target == nil {
			m.advanceTurn()
			return
		}
		dist := math.Hypot(target.x-e.x, target.y-e.y)
		m.fire.aimAt(e.x, e.y, target.x, target.y-dist*aiArcFactor)
		e.facing = facingFor(target.x - e.x)
		m.setAIPhase(e, AIPhaseCharge)

	case AIPhaseCharge:
		target := m.nearestOpponent(e)
		if target == nil {
			m.fire.resetCharge()
			m.advanceTurn()
			return
		}
		dist := math.Hypot(target.x-e.x, target.y-e.y)
		required := math.Min(dist*aiPowerPerPixel, maxPower)
		m.fire.charging = true
		m.fire.power += aiChargeRate * dt
		if m.fire.power >= required {
			m.launch(e)
			m.setAIPhase(e, AIPhaseDone)
		}

	case AIPhaseDone:
	}
}
