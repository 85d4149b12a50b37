package tui

import (
	"context"
	"errors"
	"time"

	"github.com/Garsondee/Crater/internal/sim"
	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"
)

const (
	frameInterval = 16 * time.Millisecond
	maxSpeed      = 8
	gameOverHold  = 3 * time.Second // pause on the result before the next match
)

// MatchFactory builds the match for a seed.
type MatchFactory func(seed int64) *sim.Match

// Spectator plays matches back to back in a terminal. Keys: q or Esc quits,
// p pauses, + and - change speed, n skips to the next seed.
type Spectator struct {
	screen  tcell.Screen
	build   MatchFactory
	log     zerolog.Logger
	view    *View
	match   *sim.Match
	seed    int64
	step    int64
	speed   int
	paused  bool
	overAt  time.Time
	results []sim.MatchReport
}

// NewSpectator prepares a spectator starting at seed and advancing by step
// after each match.
func NewSpectator(screen tcell.Screen, build MatchFactory, seed, step int64, log zerolog.Logger) *Spectator {
	if step == 0 {
		step = 1
	}
	s := &Spectator{
		screen: screen,
		build:  build,
		log:    log,
		view:   NewView(),
		seed:   seed,
		step:   step,
		speed:  1,
	}
	s.start(seed)
	return s
}

func (s *Spectator) start(seed int64) {
	s.seed = seed
	s.match = s.build(seed)
	s.match.Subscribe(sim.ListenerFunc(s.view.Note))
	s.overAt = time.Time{}
	s.log.Info().Int64("seed", seed).Msg("spectating match")
}

// Match returns the match being shown.
func (s *Spectator) Match() *sim.Match { return s.match }

// Results returns the reports of every finished match so far.
func (s *Spectator) Results() []sim.MatchReport { return s.results }

// Speed is the number of simulation steps per frame.
func (s *Spectator) Speed() int { return s.speed }

// Paused reports whether the simulation is frozen.
func (s *Spectator) Paused() bool { return s.paused }

// HandleEvent applies one terminal event and reports whether to keep running.
func (s *Spectator) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() != tcell.KeyRune {
			return true
		}
		switch ev.Rune() {
		case 'q':
			return false
		case 'p':
			s.paused = !s.paused
		case '+', '=':
			if s.speed < maxSpeed {
				s.speed *= 2
			}
		case '-':
			if s.speed > 1 {
				s.speed /= 2
			}
		case 'n':
			s.next()
		}
	case *tcell.EventResize:
		s.screen.Sync()
	}
	return true
}

func (s *Spectator) next() {
	if s.match.Over() {
		s.results = append(s.results, s.match.Report())
	}
	s.start(s.seed + s.step)
}

// Frame advances the simulation by one frame's worth of steps and redraws.
func (s *Spectator) Frame(now time.Time) {
	if !s.paused {
		for i := 0; i < s.speed && !s.match.Over(); i++ {
			s.match.Step(sim.DefaultStep, sim.Input{})
		}
	}
	if s.match.Over() {
		if s.overAt.IsZero() {
			s.overAt = now
			r := s.match.Report()
			s.log.Info().
				Int64("seed", r.Seed).
				Str("winner", r.WinnerName()).
				Int("ticks", r.Ticks).
				Msg("match finished")
		} else if now.Sub(s.overAt) >= gameOverHold {
			s.next()
		}
	}
	s.view.Draw(s.screen, s.match.Snapshot())
	s.screen.Show()
}

// Run drives the spectator until the context ends or the user quits.
// Cancellation is a normal stop and returns nil; an expired deadline is
// returned as an error.
func (s *Spectator) Run(ctx context.Context) error {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := s.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case ev, ok := <-events:
			if !ok || !s.HandleEvent(ev) {
				return nil
			}
		case now := <-ticker.C:
			s.Frame(now)
		}
	}
}
