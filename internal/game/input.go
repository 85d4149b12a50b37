package game

import (
	"github.com/Garsondee/Crater/internal/sim"
	"github.com/hajimehoshi/ebiten/v2"
)

// inputSource is the slice of ebiten's input API the game reads, so tests
// can drive it without a window.
type inputSource interface {
	KeyPressed(k ebiten.Key) bool
	MousePressed(b ebiten.MouseButton) bool
	Cursor() (x, y int)
}

type ebitenSource struct{}

func (ebitenSource) KeyPressed(k ebiten.Key) bool           { return ebiten.IsKeyPressed(k) }
func (ebitenSource) MousePressed(b ebiten.MouseButton) bool { return ebiten.IsMouseButtonPressed(b) }
func (ebitenSource) Cursor() (x, y int)                     { return ebiten.CursorPosition() }

// command is a one-shot request from an edge-triggered key.
type command int

const (
	cmdNone command = iota
	cmdPause
	cmdSlower
	cmdFaster
	cmdRestart
	cmdCopyReport
	cmdToggleHelp
)

var commandKeys = []struct {
	key ebiten.Key
	cmd command
}{
	{ebiten.KeyP, cmdPause},
	{ebiten.KeyComma, cmdSlower},
	{ebiten.KeyPeriod, cmdFaster},
	{ebiten.KeyR, cmdRestart},
	{ebiten.KeyC, cmdCopyReport},
	{ebiten.KeyH, cmdToggleHelp},
}

// readInput samples src into the per-step control input and the list of
// commands whose key went down since the previous call.
func (g *Game) readInput(src inputSource) (sim.Input, []command) {
	in := sim.Input{
		Left:  src.KeyPressed(ebiten.KeyA) || src.KeyPressed(ebiten.KeyArrowLeft),
		Right: src.KeyPressed(ebiten.KeyD) || src.KeyPressed(ebiten.KeyArrowRight),
		Jump:  src.KeyPressed(ebiten.KeySpace),
		Fire:  src.MousePressed(ebiten.MouseButtonLeft),
	}
	switch {
	case src.KeyPressed(ebiten.Key1):
		in.Weapon = sim.WeaponBazooka
	case src.KeyPressed(ebiten.Key2):
		in.Weapon = sim.WeaponGrenade
	}

	mx, my := src.Cursor()
	fx, fy := float64(mx-g.offX), float64(my-g.offY)
	if fx >= 0 && fy >= 0 && fx < float64(g.fieldW) && fy < float64(g.fieldH) {
		in.HasPointer = true
		in.PointerX, in.PointerY = fx, fy
	}

	var cmds []command
	current := make(map[ebiten.Key]bool, len(commandKeys))
	for _, ck := range commandKeys {
		current[ck.key] = src.KeyPressed(ck.key)
		if current[ck.key] && !g.prevKeys[ck.key] {
			cmds = append(cmds, ck.cmd)
		}
	}
	g.prevKeys = current
	return in, cmds
}
