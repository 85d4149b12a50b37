package game

import (
	"fmt"
	"image/color"

	"github.com/Garsondee/Crater/internal/sim"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	feedPanelWidth = 320
	feedMaxEntries = 60
	feedLineHeight = 14
	feedHighlight  = 3 // newest entries drawn on a lit row
)

// FeedEntry is a single line in the event feed.
type FeedEntry struct {
	Tick    int
	Label   string // e.g. "R1", "B0"; empty for match-wide lines
	Team    sim.Team
	Message string
}

// EventFeed is a ring buffer of match events rendered beside the field.
type EventFeed struct {
	entries []FeedEntry
	head    int
	count   int
	lookup  func(id int) *sim.Entity
}

// NewEventFeed creates a feed with a fixed capacity.
func NewEventFeed() *EventFeed {
	return &EventFeed{
		entries: make([]FeedEntry, feedMaxEntries),
	}
}

// Bind sets how entity IDs in events are resolved to labels.
func (f *EventFeed) Bind(lookup func(id int) *sim.Entity) { f.lookup = lookup }

// Add appends an entry, overwriting the oldest once full.
func (f *EventFeed) Add(tick int, label string, team sim.Team, msg string) {
	f.entries[f.head] = FeedEntry{
		Tick:    tick,
		Label:   label,
		Team:    team,
		Message: msg,
	}
	f.head = (f.head + 1) % feedMaxEntries
	if f.count < feedMaxEntries {
		f.count++
	}
}

// Recent returns entries oldest first.
func (f *EventFeed) Recent() []FeedEntry {
	result := make([]FeedEntry, f.count)
	for i := 0; i < f.count; i++ {
		idx := (f.head - f.count + i + feedMaxEntries) % feedMaxEntries
		result[i] = f.entries[idx]
	}
	return result
}

// Handle turns a match event into a feed line. Bounces are too frequent to
// be worth a line.
func (f *EventFeed) Handle(ev sim.Event) {
	label, team := "", ev.Team
	if f.lookup != nil && ev.Entity >= 0 {
		if e := f.lookup(ev.Entity); e != nil {
			label, team = e.Label(), e.Team()
		}
	}

	var msg string
	switch ev.Kind {
	case sim.EventTurnStart:
		msg = "takes the turn"
	case sim.EventJump:
		msg = "jumps"
	case sim.EventFire:
		msg = fmt.Sprintf("fires %s", ev.Weapon)
	case sim.EventExplosion:
		msg = fmt.Sprintf("%s blast at %.0f,%.0f", ev.Weapon, ev.X, ev.Y)
	case sim.EventDamage:
		msg = fmt.Sprintf("takes %d damage", ev.Amount)
	case sim.EventDeath:
		msg = "is killed"
	case sim.EventGameOver:
		label = ""
		if ev.Draw {
			msg = "match drawn"
		} else {
			msg = fmt.Sprintf("%s team wins", ev.Team)
		}
	default:
		return
	}
	f.Add(ev.Tick, label, team, msg)
}

func teamColor(t sim.Team) color.RGBA {
	switch t {
	case sim.TeamRed:
		return color.RGBA{R: 210, G: 70, B: 70, A: 255}
	case sim.TeamBlue:
		return color.RGBA{R: 70, G: 110, B: 210, A: 255}
	default:
		return color.RGBA{R: 190, G: 90, B: 200, A: 255}
	}
}

// Draw renders the feed panel at panelX.
func (f *EventFeed) Draw(screen *ebiten.Image, face text.Face, panelX, panelH int) {
	px := float32(panelX)
	vector.FillRect(screen, px, 0, feedPanelWidth, float32(panelH), color.RGBA{R: 14, G: 14, B: 20, A: 248}, false)
	vector.StrokeLine(screen, px, 0, px, float32(panelH), 1.0, color.RGBA{R: 60, G: 60, B: 80, A: 255}, false)

	vector.FillRect(screen, px, 0, feedPanelWidth, 18, color.RGBA{R: 26, G: 26, B: 40, A: 255}, false)
	drawText(screen, face, "EVENTS", panelX+8, 3, color.White)
	vector.StrokeLine(screen, px, 18, px+feedPanelWidth, 18, 1.0, color.RGBA{R: 60, G: 60, B: 90, A: 200}, false)

	entries := f.Recent()
	maxVisible := (panelH - 24) / feedLineHeight
	if len(entries) > maxVisible {
		entries = entries[len(entries)-maxVisible:]
	}

	y := 22
	for i, e := range entries {
		lit := i >= len(entries)-feedHighlight
		if lit {
			vector.FillRect(screen, px+2, float32(y), feedPanelWidth-4, feedLineHeight, color.RGBA{R: 34, G: 34, B: 50, A: 160}, false)
		}
		vector.FillRect(screen, px+5, float32(y+4), 3, 6, teamColor(e.Team), false)

		line := fmt.Sprintf("%5d %s", e.Tick, e.Message)
		if e.Label != "" {
			line = fmt.Sprintf("%5d [%s] %s", e.Tick, e.Label, e.Message)
		}
		clr := color.RGBA{R: 150, G: 150, B: 160, A: 255}
		if lit {
			clr = color.RGBA{R: 240, G: 240, B: 240, A: 255}
		}
		drawText(screen, face, line, panelX+12, y, clr)
		y += feedLineHeight
	}
}
