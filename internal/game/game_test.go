package game

import (
	"errors"
	"strings"
	"testing"

	"github.com/Garsondee/Crater/internal/sim"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"
)

// fakeInput is a scripted inputSource.
type fakeInput struct {
	keys   map[ebiten.Key]bool
	mouse  bool
	cx, cy int
}

func newFakeInput() *fakeInput {
	return &fakeInput{keys: map[ebiten.Key]bool{}, cx: -1, cy: -1}
}

func (f *fakeInput) KeyPressed(k ebiten.Key) bool           { return f.keys[k] }
func (f *fakeInput) MousePressed(b ebiten.MouseButton) bool { return b == ebiten.MouseButtonLeft && f.mouse }
func (f *fakeInput) Cursor() (x, y int)                     { return f.cx, f.cy }

func newTestGame(t *testing.T) (*Game, *fakeInput) {
	t.Helper()
	g := New(Options{Seed: 1, Log: zerolog.Nop()})
	in := newFakeInput()
	g.src = in
	return g, in
}

// --- Input ---

func TestReadInput_MovementAndWeapon(t *testing.T) {
	g, src := newTestGame(t)
	src.keys[ebiten.KeyArrowLeft] = true
	src.keys[ebiten.KeySpace] = true
	src.keys[ebiten.Key2] = true
	src.mouse = true

	in, _ := g.readInput(src)
	if !in.Left || in.Right || !in.Jump || !in.Fire {
		t.Fatalf("unexpected input %+v", in)
	}
	if in.Weapon != sim.WeaponGrenade {
		t.Fatalf("expected grenade, got %s", in.Weapon)
	}
}

func TestReadInput_PointerIsFieldRelative(t *testing.T) {
	g, src := newTestGame(t)
	src.cx, src.cy = borderWidth+100, borderWidth+50
	in, _ := g.readInput(src)
	if !in.HasPointer || in.PointerX != 100 || in.PointerY != 50 {
		t.Fatalf("expected pointer at (100,50), got %+v", in)
	}

	src.cx = borderWidth + g.fieldW + 10 // over the feed panel
	in, _ = g.readInput(src)
	if in.HasPointer {
		t.Fatal("a cursor outside the field should not aim")
	}
}

func TestReadInput_CommandsAreEdgeTriggered(t *testing.T) {
	g, src := newTestGame(t)
	src.keys[ebiten.KeyP] = true

	_, cmds := g.readInput(src)
	if len(cmds) != 1 || cmds[0] != cmdPause {
		t.Fatalf("expected one pause command, got %v", cmds)
	}
	_, cmds = g.readInput(src)
	if len(cmds) != 0 {
		t.Fatal("a held key must not repeat its command")
	}
	src.keys[ebiten.KeyP] = false
	g.readInput(src)
	src.keys[ebiten.KeyP] = true
	if _, cmds = g.readInput(src); len(cmds) != 1 {
		t.Fatal("pressing again should fire again")
	}
}

// --- Speed ---

func TestUpdate_StepsAtSimSpeed(t *testing.T) {
	g, _ := newTestGame(t)
	m := g.Match()

	_ = g.Update()
	if m.Tick() != 1 {
		t.Fatalf("1x should step once per frame, tick=%d", m.Tick())
	}

	g.apply(cmdSlower)
	if g.Speed() != 0.5 {
		t.Fatalf("expected 0.5x, got %g", g.Speed())
	}
	_ = g.Update()
	_ = g.Update()
	if m.Tick() != 2 {
		t.Fatalf("0.5x should step once per two frames, tick=%d", m.Tick())
	}

	g.apply(cmdFaster)
	g.apply(cmdFaster)
	g.apply(cmdFaster)
	if g.Speed() != 4 {
		t.Fatalf("expected 4x, got %g", g.Speed())
	}
	g.apply(cmdFaster)
	if g.Speed() != 4 {
		t.Fatal("speed should cap at 4x")
	}
	_ = g.Update()
	if m.Tick() != 6 {
		t.Fatalf("4x should step four times, tick=%d", m.Tick())
	}

	g.apply(cmdPause)
	_ = g.Update()
	if m.Tick() != 6 {
		t.Fatal("paused game must not step")
	}
	g.apply(cmdPause)
	if g.Speed() != 1 {
		t.Fatalf("unpausing resumes at 1x, got %g", g.Speed())
	}
}

func TestUpdate_HumanChargeAndRelease(t *testing.T) {
	g, src := newTestGame(t)
	m := g.Match()
	if a := m.Active(); a == nil || a.Control() != sim.ControlHuman {
		t.Fatal("the default roster opens with a human turn")
	}

	src.mouse = true
	for i := 0; i < 20; i++ {
		_ = g.Update()
	}
	if !m.Charging() {
		t.Fatal("holding the mouse should charge")
	}
	src.mouse = false
	_ = g.Update()
	if m.Stats().Shots != 1 {
		t.Fatalf("releasing should fire, shots=%d", m.Stats().Shots)
	}
}

// --- Commands ---

func TestRestart_StartsNextSeed(t *testing.T) {
	g, _ := newTestGame(t)
	first := g.Match()
	g.apply(cmdRestart)
	if g.Match() == first || g.Match().Seed() != 2 {
		t.Fatalf("expected a fresh match at seed 2, got seed %d", g.Match().Seed())
	}
	recent := g.feed.Recent()
	if !strings.Contains(recent[len(recent)-1].Message, "seed 2") {
		t.Fatalf("feed should announce the new match, got %q", recent[len(recent)-1].Message)
	}
}

func TestCopyReport(t *testing.T) {
	g, _ := newTestGame(t)
	var copied string
	g.copyText = func(s string) error {
		copied = s
		return nil
	}
	g.apply(cmdCopyReport)
	if !strings.Contains(copied, "=== Match seed=1 ===") {
		t.Fatalf("clipboard should receive the match report, got %q", copied)
	}
	if g.notice != "report copied to clipboard" || g.noticeLeft == 0 {
		t.Fatalf("expected a confirmation notice, got %q", g.notice)
	}

	g.copyText = func(string) error { return errors.New("no display") }
	g.apply(cmdCopyReport)
	if g.notice != "clipboard unavailable" {
		t.Fatalf("expected a failure notice, got %q", g.notice)
	}
}

func TestListenersFollowRestart(t *testing.T) {
	var turns int
	l := sim.ListenerFunc(func(ev sim.Event) {
		if ev.Kind == sim.EventTurnStart {
			turns++
		}
	})
	g := New(Options{Seed: 4, Listeners: []sim.Listener{l}, Log: zerolog.Nop()})
	g.src = newFakeInput()
	_ = g.Update()
	g.apply(cmdRestart)
	_ = g.Update()
	if turns != 2 {
		t.Fatalf("listener should hear both matches open, got %d", turns)
	}
}

// --- Rendering helpers ---

func TestTerrainPixels(t *testing.T) {
	m := sim.NewMatch(sim.WithSeed(0))
	tr := m.Terrain()
	pix := terrainPixels(tr, nil)
	if len(pix) != tr.Width()*tr.Height()*4 {
		t.Fatalf("unexpected buffer size %d", len(pix))
	}
	at := func(col, row int) []byte {
		i := (row*tr.Width() + col) * 4
		return pix[i : i+4]
	}
	if a := at(0, 0); a[3] != 0 {
		t.Fatal("sky should be transparent")
	}
	// Surface at x=0 is row 432 for seed 0: grass just below, dirt further down.
	if g := at(0, 435); g[0] != colGrass.R || g[1] != colGrass.G || g[3] != 255 {
		t.Fatalf("expected grass at row 435, got %v", g)
	}
	if d := at(0, 600); d[2] != colDirt.B || d[3] != 255 {
		t.Fatalf("expected dirt at row 600, got %v", d)
	}

	again := terrainPixels(tr, pix)
	if &again[0] != &pix[0] {
		t.Fatal("a correctly sized buffer should be reused")
	}
}

func TestHUDLines(t *testing.T) {
	snap := sim.Snapshot{
		State:        sim.StateRetreat,
		ActiveTeam:   sim.TeamBlue,
		RetreatTimer: 1.2,
		Weapon:       sim.WeaponGrenade,
		Wind:         -37.4,
	}
	lines := HUDLines(snap, 0, false)
	if lines[0] != "BLUE team (AI) (Retreat)" {
		t.Fatalf("unexpected team line %q", lines[0])
	}
	if lines[1] != "Time: 2   Weapon: grenade" {
		t.Fatalf("unexpected timer line %q", lines[1])
	}
	if lines[2] != "Wind: -37" || lines[3] != "Sim: PAUSED" {
		t.Fatalf("unexpected lines %q", lines)
	}
	if len(HUDLines(snap, 1, true)) <= len(lines) {
		t.Fatal("help adds key legend lines")
	}
}

func TestBannerText(t *testing.T) {
	if s := BannerText(sim.Snapshot{Over: true, HasWinner: true, Winner: sim.TeamRed}); !strings.HasPrefix(s, "RED TEAM WINS") {
		t.Fatalf("unexpected banner %q", s)
	}
	if s := BannerText(sim.Snapshot{Over: true, Draw: true}); !strings.HasPrefix(s, "DRAW") {
		t.Fatalf("unexpected banner %q", s)
	}
}

// --- Feed ---

func TestEventFeed_RingOrder(t *testing.T) {
	f := NewEventFeed()
	for i := 0; i < feedMaxEntries+5; i++ {
		f.Add(i, "R0", sim.TeamRed, "x")
	}
	recent := f.Recent()
	if len(recent) != feedMaxEntries {
		t.Fatalf("expected %d entries, got %d", feedMaxEntries, len(recent))
	}
	if recent[0].Tick != 5 || recent[len(recent)-1].Tick != feedMaxEntries+4 {
		t.Fatalf("expected ticks 5..%d, got %d..%d", feedMaxEntries+4, recent[0].Tick, recent[len(recent)-1].Tick)
	}
}

func TestEventFeed_HandleResolvesLabels(t *testing.T) {
	m := sim.NewMatch(sim.WithSeed(1))
	f := NewEventFeed()
	f.Bind(m.Entity)

	f.Handle(sim.Event{Kind: sim.EventDamage, Tick: 9, Entity: 2, Amount: 12})
	f.Handle(sim.Event{Kind: sim.EventBounce, Tick: 10, Entity: -1})
	f.Handle(sim.Event{Kind: sim.EventGameOver, Tick: 11, Entity: -1, Team: sim.TeamBlue})

	recent := f.Recent()
	if len(recent) != 2 {
		t.Fatalf("bounces are not listed; expected 2 entries, got %d", len(recent))
	}
	if recent[0].Label != "B0" || recent[0].Team != sim.TeamBlue || recent[0].Message != "takes 12 damage" {
		t.Fatalf("unexpected damage entry %+v", recent[0])
	}
	if recent[1].Label != "" || recent[1].Message != "blue team wins" {
		t.Fatalf("unexpected game over entry %+v", recent[1])
	}
}
