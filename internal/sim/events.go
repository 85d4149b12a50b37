package sim

import "fmt"

// EventKind classifies a notification emitted by Step.
type EventKind int

const (
	EventJump      EventKind = iota // an entity left the ground under its own power
	EventFire                       // a projectile was launched
	EventExplosion                  // terrain carved, nearby entities hit
	EventBounce                     // a bouncing projectile struck something fast enough to hear
	EventDamage                     // an entity lost health
	EventDeath                      // an entity died (damage or void)
	EventTurnStart                  // a new entity became active
	EventGameOver                   // the match ended
)

func (k EventKind) String() string {
	switch k {
	case EventJump:
		return "jump"
	case EventFire:
		return "fire"
	case EventExplosion:
		return "explosion"
	case EventBounce:
		return "bounce"
	case EventDamage:
		return "damage"
	case EventDeath:
		return "death"
	case EventTurnStart:
		return "turn_start"
	case EventGameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// Event is a value notification. Fields not meaningful for a kind are zero.
type Event struct {
	Kind   EventKind
	Tick   int
	X, Y   float64
	Radius float64    // explosion radius
	Entity int        // entity ID for jump/damage/death/turn_start, -1 otherwise
	Amount int        // damage dealt
	Team   Team       // acting team, or the winner for game_over
	Weapon WeaponKind // fire/explosion
	Draw   bool       // game_over without a winner
}

func (e Event) String() string {
	switch e.Kind {
	case EventExplosion:
		return fmt.Sprintf("[T=%d] %s at (%.0f,%.0f) r=%.0f", e.Tick, e.Kind, e.X, e.Y, e.Radius)
	case EventDamage:
		return fmt.Sprintf("[T=%d] %s entity=%d amount=%d", e.Tick, e.Kind, e.Entity, e.Amount)
	case EventGameOver:
		if e.Draw {
			return fmt.Sprintf("[T=%d] %s draw", e.Tick, e.Kind)
		}
		return fmt.Sprintf("[T=%d] %s winner=%s", e.Tick, e.Kind, e.Team)
	default:
		return fmt.Sprintf("[T=%d] %s entity=%d at (%.0f,%.0f)", e.Tick, e.Kind, e.Entity, e.X, e.Y)
	}
}

// Listener receives every event after the step that produced it has finished.
type Listener interface {
	Handle(Event)
}

// ListenerFunc adapts a plain function to Listener.
type ListenerFunc func(Event)

func (f ListenerFunc) Handle(ev Event) { f(ev) }
