// Package game is the ebiten front end: it samples keyboard and mouse into
// match input, steps the simulation at a fixed rate and draws the result.
package game

import (
	"fmt"

	"github.com/Garsondee/Crater/internal/sim"
	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/rs/zerolog"
	"golang.org/x/image/font/basicfont"
)

// borderWidth is the pixel gap between the window edge and the field.
const borderWidth = 24

// noticeTicks is how long a status notice stays on screen.
const noticeTicks = 180

var simSpeeds = []float64{0, 0.5, 1, 2, 4}

// MatchFactory builds the match for a seed.
type MatchFactory func(seed int64) *sim.Match

// Options configures a Game.
type Options struct {
	Seed      int64
	Build     MatchFactory
	Listeners []sim.Listener // subscribed to every match, e.g. the audio player
	Log       zerolog.Logger
}

type Game struct {
	width  int
	height int
	fieldW int
	fieldH int
	offX   int // pixel offset from window left to field left
	offY   int // pixel offset from window top to field top

	build     MatchFactory
	listeners []sim.Listener
	match     *sim.Match
	seed      int64
	feed      *EventFeed
	log       zerolog.Logger

	src      inputSource
	prevKeys map[ebiten.Key]bool
	showHelp bool
	copyText func(string) error

	// Simulation speed control.
	simSpeed  float64 // multiplier: 0=paused, 0.5, 1, 2, 4
	tickAccum float64 // fractional step accumulator for sub-1x speeds

	// Terrain is rasterised into terrainImg whenever its revision changes.
	terrainImg *ebiten.Image
	terrainPix []byte
	terrainRev int

	face       text.Face
	notice     string
	noticeLeft int
}

// New creates a game and starts the first match.
func New(opts Options) *Game {
	build := opts.Build
	if build == nil {
		build = func(seed int64) *sim.Match { return sim.NewMatch(sim.WithSeed(seed)) }
	}
	g := &Game{
		build:     build,
		listeners: opts.Listeners,
		feed:      NewEventFeed(),
		log:       opts.Log,
		src:       ebitenSource{},
		prevKeys:  make(map[ebiten.Key]bool),
		showHelp:  true,
		copyText:  clipboard.WriteAll,
		simSpeed:  1.0,
		face:      text.NewGoXFace(basicfont.Face7x13),
	}
	g.feed.Bind(func(id int) *sim.Entity { return g.match.Entity(id) })
	g.startMatch(opts.Seed)
	return g
}

// startMatch replaces the current match. The window layout follows the new
// field size.
func (g *Game) startMatch(seed int64) {
	g.seed = seed
	g.match = g.build(seed)
	g.match.Subscribe(g.feed)
	for _, l := range g.listeners {
		g.match.Subscribe(l)
	}

	t := g.match.Terrain()
	if t.Width() != g.fieldW || t.Height() != g.fieldH {
		g.fieldW, g.fieldH = t.Width(), t.Height()
		g.width = borderWidth + g.fieldW + borderWidth + feedPanelWidth
		g.height = borderWidth + g.fieldH + borderWidth
		g.offX, g.offY = borderWidth, borderWidth
		g.terrainImg = nil
		g.terrainPix = nil
	}
	g.terrainRev = -1
	g.tickAccum = 0

	g.feed.Add(0, "", sim.TeamRed, fmt.Sprintf("--- match seed %d ---", seed))
	g.log.Info().Int64("seed", seed).Int("width", g.fieldW).Int("height", g.fieldH).Msg("match started")
}

// Match returns the match being played.
func (g *Game) Match() *sim.Match { return g.match }

// Speed returns the simulation speed multiplier.
func (g *Game) Speed() float64 { return g.simSpeed }

// WindowSize is the unscaled size the game lays itself out at.
func (g *Game) WindowSize() (int, int) { return g.width, g.height }

func (g *Game) Update() error {
	in, cmds := g.readInput(g.src)
	for _, c := range cmds {
		g.apply(c)
	}
	if g.noticeLeft > 0 {
		g.noticeLeft--
	}

	if g.simSpeed <= 0 {
		return nil
	}
	g.tickAccum += g.simSpeed
	for g.tickAccum >= 1.0 {
		g.tickAccum -= 1.0
		g.match.Step(sim.DefaultStep, in)
	}
	return nil
}

func (g *Game) apply(c command) {
	switch c {
	case cmdPause:
		if g.simSpeed > 0 {
			g.simSpeed = 0
		} else {
			g.simSpeed = 1
		}
	case cmdSlower:
		for i := len(simSpeeds) - 1; i >= 0; i-- {
			if simSpeeds[i] < g.simSpeed {
				g.simSpeed = simSpeeds[i]
				break
			}
		}
	case cmdFaster:
		for _, s := range simSpeeds {
			if s > g.simSpeed {
				g.simSpeed = s
				break
			}
		}
	case cmdRestart:
		g.startMatch(g.seed + 1)
		g.setNotice(fmt.Sprintf("new match, seed %d", g.seed))
	case cmdCopyReport:
		g.copyReport()
	case cmdToggleHelp:
		g.showHelp = !g.showHelp
	}
}

func (g *Game) setNotice(msg string) {
	g.notice = msg
	g.noticeLeft = noticeTicks
}

// reportText is the clipboard export: the match report followed by the
// per-entity log summary.
func (g *Game) reportText() string {
	return g.match.Report().Format() + "\n" +
		g.match.SimLog().Summary(g.match.Tick(), g.match.Entities())
}

func (g *Game) copyReport() {
	if err := g.copyText(g.reportText()); err != nil {
		g.log.Warn().Err(err).Msg("clipboard copy failed")
		g.setNotice("clipboard unavailable")
		return
	}
	g.setNotice("report copied to clipboard")
}

func (g *Game) Layout(_, _ int) (int, int) {
	return g.width, g.height
}
