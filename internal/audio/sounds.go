package audio

import (
	"time"

	"github.com/Garsondee/Crater/internal/sim"
	"github.com/gopxl/beep"
)

// Sound identifies one synthesized effect.
type Sound int

const (
	SoundNone Sound = iota
	SoundJump
	SoundFire
	SoundExplosion
	SoundBounce
	SoundDeath
	SoundTurn
	SoundGameOver
)

func (s Sound) String() string {
	switch s {
	case SoundJump:
		return "jump"
	case SoundFire:
		return "fire"
	case SoundExplosion:
		return "explosion"
	case SoundBounce:
		return "bounce"
	case SoundDeath:
		return "death"
	case SoundTurn:
		return "turn"
	case SoundGameOver:
		return "game_over"
	default:
		return "none"
	}
}

const (
	jumpDuration      = 120 * time.Millisecond
	fireDuration      = 250 * time.Millisecond
	explosionDuration = 700 * time.Millisecond
	bounceDuration    = 60 * time.Millisecond
	deathDuration     = 500 * time.Millisecond
	turnDuration      = 150 * time.Millisecond
	chimeNoteDuration = 180 * time.Millisecond

	shortAttack  = 5 * time.Millisecond
	shortRelease = 40 * time.Millisecond

	referenceBlast = 40.0 // explosion radius that plays at full volume
)

// SoundFor maps a simulation event to the effect it triggers. Damage has no
// sound of its own; the explosion covers it.
func SoundFor(ev sim.Event) Sound {
	switch ev.Kind {
	case sim.EventJump:
		return SoundJump
	case sim.EventFire:
		return SoundFire
	case sim.EventExplosion:
		return SoundExplosion
	case sim.EventBounce:
		return SoundBounce
	case sim.EventDeath:
		return SoundDeath
	case sim.EventTurnStart:
		return SoundTurn
	case sim.EventGameOver:
		return SoundGameOver
	default:
		return SoundNone
	}
}

// gainFor scales an effect by event size. Bigger blasts are louder, capped
// at double the reference.
func gainFor(ev sim.Event) float64 {
	if ev.Kind != sim.EventExplosion || ev.Radius <= 0 {
		return 1
	}
	g := ev.Radius / referenceBlast
	if g > 2 {
		g = 2
	}
	return g
}

// Build synthesizes s at the given linear volume. SoundNone yields nil.
func Build(s Sound, volume float64, rate beep.SampleRate) beep.Streamer {
	var st beep.Streamer
	switch s {
	case SoundJump:
		osc := NewSweep(220, 440, jumpDuration, WaveSquare, rate)
		st = newVolume(NewEnvelope(osc, jumpDuration, shortAttack, shortRelease, rate), 0.3)

	case SoundFire:
		whoosh := NewEnvelope(NewOscillator(0, fireDuration, WaveNoise, rate),
			fireDuration, shortAttack, 200*time.Millisecond, rate)
		thump := NewEnvelope(NewSweep(180, 60, fireDuration, WaveSine, rate),
			fireDuration, shortAttack, 150*time.Millisecond, rate)
		st = beep.Mix(newVolume(whoosh, 0.4), newVolume(thump, 0.6))

	case SoundExplosion:
		noise := NewEnvelope(NewOscillator(0, explosionDuration, WaveNoise, rate),
			explosionDuration, shortAttack, 600*time.Millisecond, rate)
		rumble := NewEnvelope(NewSweep(90, 30, explosionDuration, WaveSine, rate),
			explosionDuration, shortAttack, 500*time.Millisecond, rate)
		st = beep.Mix(newVolume(noise, 0.5), newVolume(rumble, 0.7))

	case SoundBounce:
		osc := NewOscillator(330, bounceDuration, WaveSine, rate)
		st = newVolume(NewEnvelope(osc, bounceDuration, 2*time.Millisecond, 50*time.Millisecond, rate), 0.4)

	case SoundDeath:
		osc := NewSweep(300, 80, deathDuration, WaveSaw, rate)
		st = newVolume(NewEnvelope(osc, deathDuration, shortAttack, 300*time.Millisecond, rate), 0.3)

	case SoundTurn:
		osc := NewOscillator(880, turnDuration, WaveSine, rate)
		st = newVolume(NewEnvelope(osc, turnDuration, shortAttack, 100*time.Millisecond, rate), 0.25)

	case SoundGameOver:
		n1 := NewEnvelope(NewOscillator(659.25, chimeNoteDuration, WaveSquare, rate),
			chimeNoteDuration, shortAttack, 120*time.Millisecond, rate)
		n2 := NewEnvelope(NewOscillator(987.77, 2*chimeNoteDuration, WaveSquare, rate),
			2*chimeNoteDuration, shortAttack, 300*time.Millisecond, rate)
		st = newVolume(beep.Seq(n1, n2), 0.3)

	default:
		return nil
	}
	return newVolume(st, volume)
}
