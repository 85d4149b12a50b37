// Package audio plays synthesized sound effects for match events through
// the beep speaker.
package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/Garsondee/Crater/internal/sim"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/rs/zerolog"
)

const (
	sampleRate   = beep.SampleRate(44100)
	bufferLength = 100 * time.Millisecond
	maxVoices    = 16 // effects beyond this are dropped until some finish
)

// Player turns simulation events into sound. A player that is disabled, or
// whose device failed to open, accepts events and does nothing.
type Player struct {
	mu          sync.Mutex
	enabled     bool
	volume      float64
	mixer       *beep.Mixer
	initialized bool
	log         zerolog.Logger
	played      map[Sound]int
}

// NewPlayer creates a player. volume is linear in [0, 1].
func NewPlayer(enabled bool, volume float64, log zerolog.Logger) *Player {
	return &Player{
		enabled: enabled,
		volume:  volume,
		mixer:   &beep.Mixer{},
		log:     log,
		played:  map[Sound]int{},
	}
}

// Initialize opens the audio device. It is a no-op for a disabled player or
// one already started.
func (p *Player) Initialize() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.enabled || p.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(bufferLength)); err != nil {
		return fmt.Errorf("failed to open audio device: %w", err)
	}
	speaker.Play(p.mixer)
	p.initialized = true
	p.log.Debug().Int("sampleRate", int(sampleRate)).Msg("audio started")
	return nil
}

// Close silences everything and releases the device.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}
	speaker.Lock()
	p.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
	p.initialized = false
}

// Active reports whether events will be heard.
func (p *Player) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enabled && p.initialized
}

// Played returns how many times s has been queued.
func (p *Player) Played(s Sound) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.played[s]
}

// Handle queues the effect for ev. It satisfies sim.Listener.
func (p *Player) Handle(ev sim.Event) {
	s := SoundFor(ev)
	if s == SoundNone {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.enabled || !p.initialized {
		return
	}
	st := Build(s, p.volume*gainFor(ev), sampleRate)
	if st == nil {
		return
	}

	speaker.Lock()
	defer speaker.Unlock()
	if p.mixer.Len() >= maxVoices {
		p.log.Trace().Stringer("sound", s).Msg("voice limit reached")
		return
	}
	p.mixer.Add(st)
	p.played[s]++
}
