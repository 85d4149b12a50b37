// Package tui renders a match into a terminal with tcell and runs an
// AI-versus-AI spectator loop.
package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/Garsondee/Crater/internal/sim"
	"github.com/gdamore/tcell/v2"
)

const hudRows = 2 // status line and event line beneath the field

var (
	styleSky        = tcell.StyleDefault.Background(tcell.ColorBlack)
	styleGrass      = tcell.StyleDefault.Foreground(tcell.ColorGreen).Background(tcell.ColorBlack)
	styleDirt       = tcell.StyleDefault.Foreground(tcell.ColorOlive).Background(tcell.ColorBlack)
	styleProjectile = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleStatus     = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorNavy)
	styleEvent      = tcell.StyleDefault.Foreground(tcell.ColorSilver)
	styleBanner     = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorYellow).Bold(true)
)

func teamStyle(t sim.Team) tcell.Style {
	switch t {
	case sim.TeamRed:
		return tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	case sim.TeamBlue:
		return tcell.StyleDefault.Foreground(tcell.ColorDodgerBlue).Bold(true)
	default:
		return tcell.StyleDefault.Foreground(tcell.ColorFuchsia).Bold(true)
	}
}

// View maps the field onto a grid of terminal cells. The downsampled terrain
// is cached until the terrain revision or the screen size changes.
type View struct {
	cols, rows int
	revision   int
	terrain    *sim.Terrain
	cells      []sim.Material
	lastEvent  string
}

// NewView returns an empty view; the first Draw sizes it.
func NewView() *View {
	return &View{revision: -1}
}

// Note records the line shown beneath the status bar.
func (v *View) Note(ev sim.Event) {
	if ev.Kind == sim.EventDamage || ev.Kind == sim.EventBounce {
		return
	}
	v.lastEvent = ev.String()
}

// cellOf converts a field position to a screen cell in the map area.
func (v *View) cellOf(t *sim.Terrain, x, y float64) (col, row int, ok bool) {
	if v.cols == 0 || v.rows == 0 {
		return 0, 0, false
	}
	col = int(math.Floor(x / float64(t.Width()) * float64(v.cols)))
	row = int(math.Floor(y / float64(t.Height()) * float64(v.rows)))
	if col < 0 || col >= v.cols || row < 0 || row >= v.rows {
		return 0, 0, false
	}
	return col, row, true
}

func (v *View) resample(t *sim.Terrain, cols, rows, revision int) {
	if v.terrain == t && v.cols == cols && v.rows == rows && v.revision == revision {
		return
	}
	v.terrain, v.cols, v.rows, v.revision = t, cols, rows, revision
	v.cells = make([]sim.Material, cols*rows)
	sx := float64(t.Width()) / float64(cols)
	sy := float64(t.Height()) / float64(rows)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			px := int((float64(col) + 0.5) * sx)
			py := int((float64(row) + 0.5) * sy)
			v.cells[row*cols+col] = t.MaterialAt(px, py)
		}
	}
}

// Draw paints snap onto screen without calling Show.
func (v *View) Draw(screen tcell.Screen, snap sim.Snapshot) {
	w, h := screen.Size()
	rows := h - hudRows
	if w <= 0 || rows <= 0 {
		return
	}
	v.resample(snap.Terrain, w, rows, snap.TerrainRevision)
	screen.Clear()

	for row := 0; row < rows; row++ {
		for col := 0; col < w; col++ {
			switch v.cells[row*w+col] {
			case sim.MaterialGrass:
				screen.SetContent(col, row, '▀', nil, styleGrass)
			case sim.MaterialDirt:
				screen.SetContent(col, row, '█', nil, styleDirt)
			default:
				screen.SetContent(col, row, ' ', nil, styleSky)
			}
		}
	}

	for _, p := range snap.Projectiles {
		if col, row, ok := v.cellOf(snap.Terrain, p.X, p.Y); ok {
			r := '*'
			if p.Kind == sim.KindBouncing {
				r = 'o'
			}
			screen.SetContent(col, row, r, nil, styleProjectile)
		}
	}

	for _, e := range snap.Entities {
		col, row, ok := v.cellOf(snap.Terrain, e.X, e.Y)
		if !ok {
			continue
		}
		r := rune(e.Label[0])
		style := teamStyle(e.Team)
		if e.Dead {
			r = 'x'
		}
		if e.Active {
			style = style.Reverse(true)
		}
		screen.SetContent(col, row, r, nil, style)
		if row > 0 && !e.Dead {
			drawText(screen, col, row-1, fmt.Sprintf("%d", e.Health), teamStyle(e.Team))
		}
	}

	drawLine(screen, rows, w, StatusLine(snap), styleStatus)
	drawLine(screen, rows+1, w, v.lastEvent, styleEvent)

	if snap.Over {
		banner := " " + Banner(snap) + " "
		drawText(screen, (w-len(banner))/2, rows/2, banner, styleBanner)
	}
}

// StatusLine summarises the turn for the bottom bar.
func StatusLine(snap sim.Snapshot) string {
	if snap.Over {
		return fmt.Sprintf(" T=%d  %s", snap.Tick, Banner(snap))
	}
	label := "-"
	for _, e := range snap.Entities {
		if e.ID == snap.ActiveID {
			label = e.Label
		}
	}
	timer := snap.TurnTimer
	if snap.State == sim.StateRetreat {
		timer = snap.RetreatTimer
	}
	return fmt.Sprintf(" T=%d  %s %s  %s %4.1fs  %s %3.0f%%  wind %s",
		snap.Tick, snap.ActiveTeam, label, snap.State, timer,
		snap.Weapon, 100*snap.Power/snap.MaxPower, WindGauge(snap.Wind, snap.MaxWind, 5))
}

// Banner is the game-over headline.
func Banner(snap sim.Snapshot) string {
	if snap.Draw || !snap.HasWinner {
		return "DRAW"
	}
	return fmt.Sprintf("%s WINS", teamName(snap.Winner))
}

func teamName(t sim.Team) string {
	return strings.ToUpper(t.String())
}

// WindGauge draws wind as arrows, up to width of them, pointing downwind.
func WindGauge(wind, maxWind float64, width int) string {
	if maxWind <= 0 || width <= 0 {
		return "="
	}
	n := int(math.Round(math.Abs(wind) / maxWind * float64(width)))
	if n == 0 {
		return "="
	}
	arrow := ">"
	if wind < 0 {
		arrow = "<"
	}
	return strings.Repeat(arrow, n)
}

func drawText(screen tcell.Screen, x, y int, s string, style tcell.Style) {
	for i, r := range []rune(s) {
		screen.SetContent(x+i, y, r, nil, style)
	}
}

func drawLine(screen tcell.Screen, y, width int, s string, style tcell.Style) {
	runes := []rune(s)
	for x := 0; x < width; x++ {
		r := ' '
		if x < len(runes) {
			r = runes[x]
		}
		screen.SetContent(x, y, r, nil, style)
	}
}
